package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"greenpark/internal/db"
)

const categoryColumns = `id, name, capacity, base_price_per_day, day_length_minutes, active, created_at, updated_at`

func scanCategory(row rowScanner) (*db.ParkingCategory, error) {
	var c db.ParkingCategory
	if err := row.Scan(&c.ID, &c.Name, &c.Capacity, &c.BasePricePerDay, &c.DayLengthMinutes, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// PgCatalogRepository stores the administrator-maintained catalog in PostgreSQL.
type PgCatalogRepository struct {
	DB *sql.DB
}

func NewCatalogRepository(db *sql.DB) *PgCatalogRepository {
	return &PgCatalogRepository{DB: db}
}

func (r *PgCatalogRepository) ListCategories(ctx context.Context) ([]db.ParkingCategory, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+categoryColumns+` FROM parking_categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	defer rows.Close()

	var out []db.ParkingCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *PgCatalogRepository) GetCategory(ctx context.Context, id int64) (*db.ParkingCategory, error) {
	c, err := scanCategory(r.DB.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM parking_categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying category %d: %w", id, err)
	}
	return c, nil
}

func (r *PgCatalogRepository) CreateCategory(ctx context.Context, c *db.ParkingCategory) error {
	err := r.DB.QueryRowContext(ctx, `INSERT INTO parking_categories (name, capacity, base_price_per_day, day_length_minutes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		c.Name, c.Capacity, c.BasePricePerDay, c.DayLengthMinutes, c.Active,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating category: %w", err)
	}
	return nil
}

func (r *PgCatalogRepository) UpdateCategory(ctx context.Context, c *db.ParkingCategory) error {
	return execOne(r.DB.ExecContext(ctx, `UPDATE parking_categories
		SET name = $1, base_price_per_day = $2, day_length_minutes = $3, active = $4, updated_at = NOW()
		WHERE id = $5`, c.Name, c.BasePricePerDay, c.DayLengthMinutes, c.Active, c.ID))
}

func (r *PgCatalogRepository) ListSpecialPrices(ctx context.Context) ([]db.SpecialPrice, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, category_id, start_date, end_date, price, reason, active, created_at
		FROM special_prices ORDER BY category_id, start_date`)
	if err != nil {
		return nil, fmt.Errorf("error listing special prices: %w", err)
	}
	defer rows.Close()

	var out []db.SpecialPrice
	for rows.Next() {
		var sp db.SpecialPrice
		if err := rows.Scan(&sp.ID, &sp.CategoryID, &sp.StartDate, &sp.EndDate, &sp.Price, &sp.Reason, &sp.Active, &sp.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning special price: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (r *PgCatalogRepository) CreateSpecialPrice(ctx context.Context, sp *db.SpecialPrice) error {
	err := r.DB.QueryRowContext(ctx, `INSERT INTO special_prices (category_id, start_date, end_date, price, reason, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING id, created_at`,
		sp.CategoryID, sp.StartDate, sp.EndDate, sp.Price, sp.Reason, sp.Active,
	).Scan(&sp.ID, &sp.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating special price: %w", err)
	}
	return nil
}

func (r *PgCatalogRepository) UpdateSpecialPrice(ctx context.Context, sp *db.SpecialPrice) error {
	return execOne(r.DB.ExecContext(ctx, `UPDATE special_prices
		SET category_id = $1, start_date = $2, end_date = $3, price = $4, reason = $5, active = $6
		WHERE id = $7`, sp.CategoryID, sp.StartDate, sp.EndDate, sp.Price, sp.Reason, sp.Active, sp.ID))
}

func (r *PgCatalogRepository) DeleteSpecialPrice(ctx context.Context, id int64) error {
	return execOne(r.DB.ExecContext(ctx, `DELETE FROM special_prices WHERE id = $1`, id))
}

func (r *PgCatalogRepository) ListMaintenanceWindows(ctx context.Context) ([]db.MaintenanceWindow, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, start_date, end_date, reason, category_ids, active, created_at, updated_at
		FROM maintenance_windows ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("error listing maintenance windows: %w", err)
	}
	defer rows.Close()

	var out []db.MaintenanceWindow
	for rows.Next() {
		var w db.MaintenanceWindow
		if err := rows.Scan(&w.ID, &w.StartDate, &w.EndDate, &w.Reason, &w.CategoryIDs, &w.Active, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning maintenance window: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *PgCatalogRepository) CreateMaintenanceWindow(ctx context.Context, w *db.MaintenanceWindow) error {
	err := r.DB.QueryRowContext(ctx, `INSERT INTO maintenance_windows (start_date, end_date, reason, category_ids, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		w.StartDate, w.EndDate, w.Reason, w.CategoryIDs, w.Active,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating maintenance window: %w", err)
	}
	return nil
}

func (r *PgCatalogRepository) UpdateMaintenanceWindow(ctx context.Context, w *db.MaintenanceWindow) error {
	return execOne(r.DB.ExecContext(ctx, `UPDATE maintenance_windows
		SET start_date = $1, end_date = $2, reason = $3, category_ids = $4, active = $5, updated_at = NOW()
		WHERE id = $6`, w.StartDate, w.EndDate, w.Reason, w.CategoryIDs, w.Active, w.ID))
}

func (r *PgCatalogRepository) DeleteMaintenanceWindow(ctx context.Context, id int64) error {
	return execOne(r.DB.ExecContext(ctx, `DELETE FROM maintenance_windows WHERE id = $1`, id))
}

func (r *PgCatalogRepository) ListAddons(ctx context.Context) ([]db.AddonService, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, code, name, price, per_day, active FROM addon_services ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("error listing addons: %w", err)
	}
	defer rows.Close()

	var out []db.AddonService
	for rows.Next() {
		var a db.AddonService
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Price, &a.PerDay, &a.Active); err != nil {
			return nil, fmt.Errorf("error scanning addon: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PgCatalogRepository) CreateAddon(ctx context.Context, a *db.AddonService) error {
	err := r.DB.QueryRowContext(ctx, `INSERT INTO addon_services (code, name, price, per_day, active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`, a.Code, a.Name, a.Price, a.PerDay, a.Active).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("error creating addon: %w", err)
	}
	return nil
}

func (r *PgCatalogRepository) GetPromoCode(ctx context.Context, code string) (*db.PromoCode, error) {
	var p db.PromoCode
	err := r.DB.QueryRowContext(ctx, `SELECT id, code, discount_type, discount_value, valid_from, valid_to, max_usage, used_count, category_ids, active
		FROM promo_codes WHERE UPPER(code) = $1`, strings.ToUpper(strings.TrimSpace(code))).
		Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.ValidFrom, &p.ValidTo, &p.MaxUsage, &p.UsedCount, &p.CategoryIDs, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying promo code: %w", err)
	}
	return &p, nil
}

func (r *PgCatalogRepository) CreatePromoCode(ctx context.Context, p *db.PromoCode) error {
	err := r.DB.QueryRowContext(ctx, `INSERT INTO promo_codes (code, discount_type, discount_value, valid_from, valid_to, max_usage, used_count, category_ids, active)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8) RETURNING id`,
		strings.ToUpper(strings.TrimSpace(p.Code)), p.DiscountType, p.DiscountValue, p.ValidFrom, p.ValidTo, p.MaxUsage, p.CategoryIDs, p.Active,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("error creating promo code: %w", err)
	}
	return nil
}

// execOne turns a single-row write with no affected rows into ErrNotFound.
func execOne(result sql.Result, err error) error {
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("error executing statement: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
