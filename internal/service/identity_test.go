package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "greenpark/internal/errors"
)

func takenCodes(codes ...string) func(context.Context, string) (bool, error) {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return func(_ context.Context, code string) (bool, error) { return set[code], nil }
}

func TestBaseCode(t *testing.T) {
	g := NewIdentityGenerator(time.UTC)
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "20250301AB-123CD", g.BaseCode(created, " ab-123cd "))
	assert.Equal(t, "20250301GR 4X.9", g.BaseCode(created, "gr 4x.9"))
}

func TestBaseCodeUsesLotDate(t *testing.T) {
	rome, _ := time.LoadLocation("Europe/Rome")
	g := NewIdentityGenerator(rome)
	assert.Equal(t, "20250302XY1", g.BaseCode(time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC), "xy1"))
}

func TestGenerateSuffixesDeterministically(t *testing.T) {
	g := NewIdentityGenerator(time.UTC)
	ctx := context.Background()

	code, err := g.Generate(ctx, testNow, "ab123", takenCodes())
	require.NoError(t, err)
	assert.Equal(t, "20250301AB123", code)

	code, err = g.Generate(ctx, testNow, "ab123", takenCodes("20250301AB123"))
	require.NoError(t, err)
	assert.Equal(t, "20250301AB123-2", code)

	code, err = g.Generate(ctx, testNow, "ab123", takenCodes("20250301AB123", "20250301AB123-2"))
	require.NoError(t, err)
	assert.Equal(t, "20250301AB123-3", code)
}

func TestGenerateExhausted(t *testing.T) {
	g := NewIdentityGenerator(time.UTC)
	always := func(context.Context, string) (bool, error) { return true, nil }

	_, err := g.Generate(context.Background(), testNow, "ab123", always)
	assert.Equal(t, apperrors.KindIdentityCollision, apperrors.KindOf(err))
}

func TestGeneratePropagatesLookupError(t *testing.T) {
	g := NewIdentityGenerator(time.UTC)
	boom := errors.New("db down")
	_, err := g.Generate(context.Background(), testNow, "ab123", func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestGenerateWithoutPlate(t *testing.T) {
	g := NewIdentityGenerator(time.UTC)
	ids := []uuid.UUID{
		uuid.MustParse("0a1b2c3d-0000-4000-8000-000000000000"),
		uuid.MustParse("ffeeddcc-0000-4000-8000-000000000000"),
	}
	g.newUUID = func() uuid.UUID {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	code, err := g.Generate(context.Background(), testNow, "  ", takenCodes("20250301*0A1B2C3D"))
	require.NoError(t, err)
	assert.Equal(t, "20250301*FFEEDDCC", code)
}

func TestVIPCode(t *testing.T) {
	tests := []struct {
		phone string
		year  int
		want  string
	}{
		{"0908805805", 2025, "1140908805805"},
		{"+886-912-345-678", 2025, "114912345678"},
		{"0908805805", 2023, "1120908805805"},
		{"0908805805", 2030, "1190908805805"},
		{"0908805805", 2040, "1140908805805"},
		{"(02) 2345-6789 ext", 2026, "1150223456789"},
	}
	for _, tt := range tests {
		got, err := VIPCode(tt.phone, tt.year)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%d", tt.phone, tt.year)
	}

	_, err := VIPCode("n/a", 2025)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
