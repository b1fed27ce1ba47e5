package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"greenpark/internal/db"
	apperrors "greenpark/internal/errors"
	"greenpark/internal/repository"
	"greenpark/internal/utils"
)

type VIPService struct {
	repo  repository.VIPRepository
	clock utils.Clock
}

func NewVIPService(repo repository.VIPRepository, clock utils.Clock) *VIPService {
	return &VIPService{repo: repo, clock: clock}
}

// IssueVIPCode derives the code for phone and year and checks it is not held
// by any existing profile. A zero year means the current one.
func (s *VIPService) IssueVIPCode(ctx context.Context, phone string, year int) (string, error) {
	if year == 0 {
		year = s.clock.Now().Year()
	}
	code, err := VIPCode(phone, year)
	if err != nil {
		return "", err
	}
	taken, err := s.repo.CodeExists(ctx, code)
	if err != nil {
		return "", fmt.Errorf("check vip code: %w", err)
	}
	if taken {
		log.Printf("vip: code %s already issued, skipping issuance", code)
		return "", apperrors.New(apperrors.KindConflict, "vip code %s is already issued", code)
	}
	return code, nil
}

// GrantVIP issues a code and stores the profile holding the discount.
func (s *VIPService) GrantVIP(ctx context.Context, customerRef, phone string, year, discountPct int) (*db.VIPProfile, error) {
	customerRef = strings.TrimSpace(customerRef)
	if customerRef == "" {
		return nil, apperrors.Validation("customer reference is required")
	}
	if discountPct < 0 || discountPct > 100 {
		return nil, apperrors.Validation("discount must be between 0 and 100, got %d", discountPct)
	}
	if year == 0 {
		year = s.clock.Now().Year()
	}
	code, err := s.IssueVIPCode(ctx, phone, year)
	if err != nil {
		return nil, err
	}

	profile := &db.VIPProfile{
		CustomerRef: customerRef,
		Phone:       utils.NormalizePhone(phone),
		Code:        code,
		DiscountPct: discountPct,
		IssuedYear:  year,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			log.Printf("vip: grant for %s collided on code %s, skipping issuance", customerRef, code)
			return nil, apperrors.New(apperrors.KindConflict, "customer %s already has a vip profile or code %s is taken", customerRef, code)
		}
		return nil, fmt.Errorf("create vip profile: %w", err)
	}
	log.Printf("vip: granted %s to %s (%d%%)", code, customerRef, discountPct)
	return profile, nil
}

// DiscountFor resolves a VIP code to its discount. An empty code means none.
func (s *VIPService) DiscountFor(ctx context.Context, code string) (int, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, nil
	}
	profile, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperrors.Validation("unknown vip code %s", code)
		}
		return 0, fmt.Errorf("find vip profile: %w", err)
	}
	return profile.DiscountPct, nil
}
