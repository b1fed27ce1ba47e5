package service

import (
	"context"
	"fmt"
	"log"
	"time"
)

type JobService struct {
	reservations *ReservationService
	catalog      *CatalogCache
}

func NewJobService(reservations *ReservationService, catalog *CatalogCache) *JobService {
	return &JobService{reservations: reservations, catalog: catalog}
}

// RefreshCatalog reloads the catalog snapshot. Writes already invalidate it;
// this bounds staleness from changes made outside the service.
func (s *JobService) RefreshCatalog(ctx context.Context) error {
	snap, err := s.catalog.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("cron job: failed to refresh catalog: %w", err)
	}
	log.Printf("Cron Job: catalog snapshot v%d loaded (%d categories, %d maintenance windows)", snap.Version, len(snap.Categories), len(snap.Windows))
	return nil
}

// ReportOverdue logs checked-in reservations past their check-out. Overdue
// is never written back; the reservations stay checked in.
func (s *JobService) ReportOverdue(ctx context.Context) (int, error) {
	log.Println("Cron Job: Checking for overdue reservations...")

	overdue, err := s.reservations.ListOverdue(ctx)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to list overdue reservations: %w", err)
	}
	if len(overdue) == 0 {
		log.Println("Cron Job: No overdue reservations.")
		return 0, nil
	}

	now := s.reservations.Now()
	for _, r := range overdue {
		log.Printf("Cron Job: reservation %s (category %d, plate %s) is %s past check-out",
			r.Code, r.CategoryID, r.VehiclePlate, now.Sub(r.CheckOut).Round(time.Minute))
	}
	log.Printf("Cron Job: Found %d overdue reservations.", len(overdue))
	return len(overdue), nil
}
