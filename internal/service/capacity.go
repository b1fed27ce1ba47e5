package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"greenpark/internal/db"
	apperrors "greenpark/internal/errors"
	"greenpark/internal/repository"
)

// CapacityLedger compares a category's capacity with the reservations
// overlapping an interval.
type CapacityLedger struct {
	repo repository.ReservationRepository
}

func NewCapacityLedger(repo repository.ReservationRepository) *CapacityLedger {
	return &CapacityLedger{repo: repo}
}

func remaining(capacity, used int) int {
	if free := capacity - used; free > 0 {
		return free
	}
	return 0
}

// AvailableCount is an unlocked read, good for quotes and availability pages.
func (l *CapacityLedger) AvailableCount(ctx context.Context, category db.ParkingCategory, start, end time.Time) (int, error) {
	used, err := l.repo.CountOverlapping(ctx, category.ID, start, end)
	if err != nil {
		return 0, fmt.Errorf("count overlapping reservations: %w", err)
	}
	return remaining(category.Capacity, used), nil
}

// Reserve checks that units are free under the category lock held by tx.
// The caller's insert in the same tx is what consumes them.
func (l *CapacityLedger) Reserve(ctx context.Context, tx repository.ReservationTx, start, end time.Time, units int) error {
	category, err := tx.Category(ctx)
	if err != nil {
		return err
	}
	used, err := tx.CountOverlapping(ctx, start, end)
	if err != nil {
		return fmt.Errorf("count overlapping reservations: %w", err)
	}
	if free := remaining(category.Capacity, used); free < units {
		return apperrors.New(apperrors.KindCapacity, "no space left in category %q for the requested interval (%d free, %d requested)", category.Name, free, units)
	}
	return nil
}

// PeakUsage returns the largest number of reservations in reservations that
// are simultaneously active at any instant.
func PeakUsage(reservations []db.Reservation) int {
	type edge struct {
		at    time.Time
		delta int
	}
	edges := make([]edge, 0, 2*len(reservations))
	for _, r := range reservations {
		edges = append(edges, edge{r.CheckIn, 1}, edge{r.CheckOut, -1})
	}
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].at.Equal(edges[j].at) {
			return edges[i].at.Before(edges[j].at)
		}
		// A check-out frees its space before a check-in at the same instant takes it.
		return edges[i].delta < edges[j].delta
	})
	peak, cur := 0, 0
	for _, e := range edges {
		cur += e.delta
		if cur > peak {
			peak = cur
		}
	}
	return peak
}
