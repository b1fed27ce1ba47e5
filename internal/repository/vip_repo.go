package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"greenpark/internal/db"
)

type PgVIPRepository struct {
	DB *sql.DB
}

func NewVIPRepository(db *sql.DB) *PgVIPRepository {
	return &PgVIPRepository{DB: db}
}

func (r *PgVIPRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM vip_profiles WHERE code = $1)`, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking vip code: %w", err)
	}
	return exists, nil
}

func (r *PgVIPRepository) Create(ctx context.Context, p *db.VIPProfile) error {
	err := r.DB.QueryRowContext(ctx, `INSERT INTO vip_profiles (customer_ref, phone, code, discount_pct, issued_year, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_at`,
		p.CustomerRef, p.Phone, p.Code, p.DiscountPct, p.IssuedYear,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("error creating vip profile: %w", err)
	}
	return nil
}

func (r *PgVIPRepository) FindByCode(ctx context.Context, code string) (*db.VIPProfile, error) {
	var p db.VIPProfile
	err := r.DB.QueryRowContext(ctx, `SELECT id, customer_ref, phone, code, discount_pct, issued_year, created_at FROM vip_profiles WHERE code = $1`, code).
		Scan(&p.ID, &p.CustomerRef, &p.Phone, &p.Code, &p.DiscountPct, &p.IssuedYear, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying vip profile: %w", err)
	}
	return &p, nil
}
