package repository

import (
	"context"
	"fmt"
	"time"

	"greenpark/internal/db"
)

// ListCheckedInPastCheckout returns checked-in reservations whose check-out already passed.
func (r *PgReservationRepository) ListCheckedInPastCheckout(ctx context.Context, now time.Time) ([]db.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE status = 'checked_in' AND check_out < $1 ORDER BY check_out`
	rows, err := r.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("error querying checked-in reservations past check-out: %w", err)
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
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return out, nil
}
