package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "greenpark/internal/errors"
	"greenpark/internal/utils"
)

const maxCodeCandidates = 50

// IdentityGenerator derives booking codes: creation date (YYYYMMDD, lot time)
// followed by the uppercased plate. Collisions get "-2", "-3"... suffixes.
type IdentityGenerator struct {
	loc     *time.Location
	newUUID func() uuid.UUID
}

func NewIdentityGenerator(loc *time.Location) *IdentityGenerator {
	return &IdentityGenerator{loc: loc, newUUID: uuid.New}
}

func normalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// BaseCode is the first candidate for a plate. Without a plate the date is
// followed by "*" and eight hex digits, which no plate can produce.
func (g *IdentityGenerator) BaseCode(createdAt time.Time, plate string) string {
	date := createdAt.In(g.loc).Format("20060102")
	if p := normalizePlate(plate); p != "" {
		return date + p
	}
	id := g.newUUID()
	return date + "*" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// Generate returns the first candidate exists reports as free.
func (g *IdentityGenerator) Generate(ctx context.Context, createdAt time.Time, plate string, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	withPlate := normalizePlate(plate) != ""
	base := g.BaseCode(createdAt, plate)
	for i := 1; i <= maxCodeCandidates; i++ {
		candidate := base
		switch {
		case i > 1 && withPlate:
			candidate = fmt.Sprintf("%s-%d", base, i)
		case i > 1:
			candidate = g.BaseCode(createdAt, "")
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check booking code %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperrors.New(apperrors.KindIdentityCollision, "no free booking code for %s after %d candidates", base, maxCodeCandidates)
}

var vipYearCodes = map[int]string{
	2023: "112",
	2024: "113",
	2025: "114",
	2026: "115",
	2027: "116",
	2028: "117",
	2029: "118",
	2030: "119",
}

const baselineVIPYearCode = "114"

func vipYearCode(year int) string {
	if code, ok := vipYearCodes[year]; ok {
		return code
	}
	return baselineVIPYearCode
}

// VIPCode derives a VIP member code from a phone number and issuance year.
func VIPCode(phone string, year int) (string, error) {
	digits := utils.NormalizePhone(phone)
	if digits == "" {
		return "", apperrors.Validation("phone %q has no digits", phone)
	}
	return vipYearCode(year) + digits, nil
}
