package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"greenpark/internal/db"
)

type staffRepository struct {
	db *sql.DB
}

func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*db.StaffAccount, error) {
	var acc db.StaffAccount
	err := r.db.QueryRowContext(ctx, "SELECT id, email, password_hash, role, created_at FROM staff_accounts WHERE email = $1", email).
		Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.Role, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// Create stores an account whose PasswordHash is already a bcrypt hash.
func (r *staffRepository) Create(ctx context.Context, acc *db.StaffAccount) error {
	query := "INSERT INTO staff_accounts (email, password_hash, role, created_at) VALUES ($1, $2, $3, NOW()) RETURNING id, created_at"
	err := r.db.QueryRowContext(ctx, query, acc.Email, acc.PasswordHash, acc.Role).Scan(&acc.ID, &acc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("error creating staff account: %w", err)
	}
	return nil
}
