package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"greenpark/internal/db"
)

const reservationColumns = `id, code, category_id, check_in, check_out, driver_name, driver_email, driver_phone,
	vehicle_plate, vehicle_model, passengers, luggage, addons, total_price, vip_code, promo_code, status,
	manual, created_by, language, checked_in_at, checked_out_at, cancelled_at, created_at, updated_at`

const overlapCondition = `category_id = $1 AND status <> 'cancelled' AND check_in < $3 AND check_out > $2`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*db.Reservation, error) {
	var res db.Reservation
	err := row.Scan(
		&res.ID, &res.Code, &res.CategoryID, &res.CheckIn, &res.CheckOut, &res.DriverName, &res.DriverEmail, &res.DriverPhone,
		&res.VehiclePlate, &res.VehicleModel, &res.Passengers, &res.Luggage, &res.Addons, &res.TotalPrice, &res.VIPCode, &res.PromoCode, &res.Status,
		&res.Manual, &res.CreatedBy, &res.Language, &res.CheckedInAt, &res.CheckedOutAt, &res.CancelledAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type PgReservationRepository struct {
	DB *sql.DB
	// Location is the lot timezone the date filter of List is read in.
	Location *time.Location
}

func NewReservationRepository(db *sql.DB, loc *time.Location) *PgReservationRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PgReservationRepository{DB: db, Location: loc}
}

func (r *PgReservationRepository) CountOverlapping(ctx context.Context, categoryID int64, start, end time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE `+overlapCondition, categoryID, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting overlapping reservations: %w", err)
	}
	return count, nil
}

func (r *PgReservationRepository) WithCategoryLock(ctx context.Context, categoryID int64, fn func(tx ReservationTx) error) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	cat, err := scanCategory(tx.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM parking_categories WHERE id = $1 FOR UPDATE`, categoryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("error locking category %d: %w", categoryID, err)
	}

	if err = fn(&pgReservationTx{tx: tx, category: cat}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PgReservationRepository) FindByID(ctx context.Context, id int64) (*db.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying reservation %d: %w", id, err)
	}
	return res, nil
}

func (r *PgReservationRepository) FindByCode(ctx context.Context, code string) (*db.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying reservation '%s': %w", code, err)
	}
	return res, nil
}

func (r *PgReservationRepository) List(ctx context.Context, filter db.ReservationFilter) ([]db.Reservation, int64, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filter.Date != "" {
		where += " AND DATE(check_in AT TIME ZONE $" + strconv.Itoa(idx) + ") = $" + strconv.Itoa(idx+1)
		args = append(args, r.Location.String(), filter.Date)
		idx += 2
	}
	if filter.CategoryID != 0 {
		where += " AND category_id = $" + strconv.Itoa(idx)
		args = append(args, filter.CategoryID)
		idx++
	}
	if filter.Status != "" {
		where += " AND status = $" + strconv.Itoa(idx)
		args = append(args, filter.Status)
		idx++
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting reservations: %w", err)
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations` + where + ` ORDER BY check_in DESC, id DESC`
	if filter.Limit > 0 {
		query += " LIMIT $" + strconv.Itoa(idx) + " OFFSET $" + strconv.Itoa(idx+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing reservations: %w", err)
	}
	defer rows.Close()

	var reservations []db.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error after iterating reservations: %w", err)
	}
	return reservations, total, nil
}

var statusStampColumn = map[db.ReservationStatus]string{
	db.StatusCheckedIn:  "checked_in_at",
	db.StatusCheckedOut: "checked_out_at",
	db.StatusCancelled:  "cancelled_at",
}

func (r *PgReservationRepository) UpdateStatus(ctx context.Context, id int64, from, to db.ReservationStatus, at time.Time) (*db.Reservation, error) {
	column, ok := statusStampColumn[to]
	if !ok {
		return nil, fmt.Errorf("no transition stamp for status %q", to)
	}
	query := fmt.Sprintf(`UPDATE reservations SET status = $1, updated_at = $2, %s = $2
		WHERE id = $3 AND status = $4
		RETURNING `+reservationColumns, column)

	res, err := scanReservation(r.DB.QueryRowContext(ctx, query, to, at, id, from))
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("error updating reservation %d status: %w", id, err)
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("error checking reservation %d: %w", id, err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrStatusChanged
}

type pgReservationTx struct {
	tx       *sql.Tx
	category *db.ParkingCategory
}

func (t *pgReservationTx) Category(ctx context.Context) (*db.ParkingCategory, error) {
	c := *t.category
	return &c, nil
}

func (t *pgReservationTx) CountOverlapping(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE `+overlapCondition, t.category.ID, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting overlapping reservations: %w", err)
	}
	return count, nil
}

func (t *pgReservationTx) ListActive(ctx context.Context, since time.Time) ([]db.Reservation, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE category_id = $1 AND status <> 'cancelled' AND check_out > $2
		ORDER BY check_in`, t.category.ID, since)
	if err != nil {
		return nil, fmt.Errorf("error listing active reservations: %w", err)
	}
	defer rows.Close()

	var out []db.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation: %w", err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (t *pgReservationTx) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking reservation code: %w", err)
	}
	return exists, nil
}

func (t *pgReservationTx) Insert(ctx context.Context, res *db.Reservation) error {
	query := `
		INSERT INTO reservations
		(code, category_id, check_in, check_out, driver_name, driver_email, driver_phone, vehicle_plate, vehicle_model,
		 passengers, luggage, addons, total_price, vip_code, promo_code, status, manual, created_by, language, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id`
	err := t.tx.QueryRowContext(ctx, query,
		res.Code,
		res.CategoryID,
		res.CheckIn,
		res.CheckOut,
		res.DriverName,
		res.DriverEmail,
		res.DriverPhone,
		res.VehiclePlate,
		res.VehicleModel,
		res.Passengers,
		res.Luggage,
		res.Addons,
		res.TotalPrice,
		res.VIPCode,
		res.PromoCode,
		res.Status,
		res.Manual,
		res.CreatedBy,
		res.Language,
		res.CreatedAt,
		res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("error inserting reservation: %w", err)
	}
	return nil
}

func (t *pgReservationTx) ConsumePromo(ctx context.Context, promoID int64) error {
	result, err := t.tx.ExecContext(ctx, `UPDATE promo_codes SET used_count = used_count + 1
		WHERE id = $1 AND (max_usage = 0 OR used_count < max_usage)`, promoID)
	if err != nil {
		return fmt.Errorf("error consuming promo code %d: %w", promoID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading promo update result: %w", err)
	}
	if n == 0 {
		return ErrPromoExhausted
	}
	return nil
}

func (t *pgReservationTx) SetCapacity(ctx context.Context, capacity int) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE parking_categories SET capacity = $1, updated_at = NOW() WHERE id = $2`, capacity, t.category.ID)
	if err != nil {
		return fmt.Errorf("error updating capacity of category %d: %w", t.category.ID, err)
	}
	t.category.Capacity = capacity
	return nil
}

func (t *pgReservationTx) DeleteCategory(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM special_prices WHERE category_id = $1`, t.category.ID); err != nil {
		return fmt.Errorf("error deleting special prices of category %d: %w", t.category.ID, err)
	}
	return execOne(t.tx.ExecContext(ctx, `DELETE FROM parking_categories WHERE id = $1`, t.category.ID))
}
