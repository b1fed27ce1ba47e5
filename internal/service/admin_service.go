package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"greenpark/internal/db"
	"greenpark/internal/entities"
	apperrors "greenpark/internal/errors"
	"greenpark/internal/repository"
	"greenpark/internal/utils"
)

// AdminService maintains the catalog. Every successful write invalidates the
// catalog snapshot before returning.
type AdminService struct {
	catalogRepo  repository.CatalogRepository
	reservations repository.ReservationRepository
	cache        *CatalogCache
	clock        utils.Clock
}

func NewAdminService(catalogRepo repository.CatalogRepository, reservations repository.ReservationRepository, cache *CatalogCache, clock utils.Clock) *AdminService {
	return &AdminService{catalogRepo: catalogRepo, reservations: reservations, cache: cache, clock: clock}
}

func mapRepoErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("%s not found", what)
	case errors.Is(err, repository.ErrDuplicateEntry):
		return apperrors.New(apperrors.KindConflict, "%s already exists", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *AdminService) written(err error, what string) error {
	if err != nil {
		return mapRepoErr(err, what)
	}
	s.cache.Invalidate()
	return nil
}

func validateCategory(c *db.ParkingCategory) error {
	c.Name = strings.TrimSpace(c.Name)
	switch {
	case c.Name == "":
		return apperrors.Validation("category name is required")
	case c.Capacity < 0:
		return apperrors.Validation("capacity cannot be negative")
	case c.BasePricePerDay < 0:
		return apperrors.Validation("base price cannot be negative")
	case c.DayLengthMinutes < 0:
		return apperrors.Validation("day length cannot be negative")
	}
	if c.DayLengthMinutes == 0 {
		c.DayLengthMinutes = db.DefaultDayLengthMinutes
	}
	return nil
}

func (s *AdminService) ListCategories(ctx context.Context) ([]db.ParkingCategory, error) {
	list, err := s.catalogRepo.ListCategories(ctx)
	return list, mapRepoErr(err, "categories")
}

func (s *AdminService) CreateCategory(ctx context.Context, c *db.ParkingCategory) error {
	if err := validateCategory(c); err != nil {
		return err
	}
	return s.written(s.catalogRepo.CreateCategory(ctx, c), "category")
}

// UpdateCategory changes name, pricing and the active flag. Capacity moves
// through UpdateCapacity only.
func (s *AdminService) UpdateCategory(ctx context.Context, c *db.ParkingCategory) error {
	if err := validateCategory(c); err != nil {
		return err
	}
	return s.written(s.catalogRepo.UpdateCategory(ctx, c), fmt.Sprintf("category %d", c.ID))
}

// UpdateCapacity sets a category's capacity after checking, under the
// category lock, that the reservations still to come fit in it.
func (s *AdminService) UpdateCapacity(ctx context.Context, categoryID int64, capacity int) (*db.ParkingCategory, error) {
	if capacity < 0 {
		return nil, apperrors.Validation("capacity cannot be negative")
	}
	var updated *db.ParkingCategory
	err := s.reservations.WithCategoryLock(ctx, categoryID, func(tx repository.ReservationTx) error {
		active, err := tx.ListActive(ctx, s.clock.Now())
		if err != nil {
			return err
		}
		if peak := PeakUsage(active); capacity < peak {
			return apperrors.New(apperrors.KindConflict, "capacity %d would overbook: %d reservations overlap at peak", capacity, peak)
		}
		if err := tx.SetCapacity(ctx, capacity); err != nil {
			return err
		}
		updated, err = tx.Category(ctx)
		return err
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindUnknown {
			return nil, err
		}
		return nil, mapRepoErr(err, fmt.Sprintf("category %d", categoryID))
	}
	s.cache.Invalidate()
	log.Printf("Category %d capacity set to %d", categoryID, capacity)
	return updated, nil
}

// DeleteCategory removes a category and its special prices. Categories with
// reservations still to come cannot be deleted.
func (s *AdminService) DeleteCategory(ctx context.Context, categoryID int64) error {
	err := s.reservations.WithCategoryLock(ctx, categoryID, func(tx repository.ReservationTx) error {
		active, err := tx.ListActive(ctx, s.clock.Now())
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return apperrors.New(apperrors.KindConflict, "category %d still has %d upcoming reservations", categoryID, len(active))
		}
		return tx.DeleteCategory(ctx)
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindUnknown {
			return err
		}
		return mapRepoErr(err, fmt.Sprintf("category %d", categoryID))
	}
	s.cache.Invalidate()
	log.Printf("Category %d deleted", categoryID)
	return nil
}

func validateSpecialPrice(sp *db.SpecialPrice) error {
	switch {
	case sp.CategoryID == 0:
		return apperrors.Validation("category is required")
	case sp.StartDate.IsZero() || sp.EndDate.IsZero():
		return apperrors.Validation("start and end dates are required")
	case sp.EndDate.Before(sp.StartDate):
		return apperrors.Validation("end date must not be before start date")
	case sp.Price < 0:
		return apperrors.Validation("price cannot be negative")
	}
	return nil
}

func (s *AdminService) ListSpecialPrices(ctx context.Context) ([]db.SpecialPrice, error) {
	list, err := s.catalogRepo.ListSpecialPrices(ctx)
	return list, mapRepoErr(err, "special prices")
}

func (s *AdminService) CreateSpecialPrice(ctx context.Context, sp *db.SpecialPrice) error {
	if err := validateSpecialPrice(sp); err != nil {
		return err
	}
	if _, err := s.catalogRepo.GetCategory(ctx, sp.CategoryID); err != nil {
		return mapRepoErr(err, fmt.Sprintf("category %d", sp.CategoryID))
	}
	return s.written(s.catalogRepo.CreateSpecialPrice(ctx, sp), "special price")
}

func (s *AdminService) UpdateSpecialPrice(ctx context.Context, sp *db.SpecialPrice) error {
	if err := validateSpecialPrice(sp); err != nil {
		return err
	}
	return s.written(s.catalogRepo.UpdateSpecialPrice(ctx, sp), fmt.Sprintf("special price %d", sp.ID))
}

func (s *AdminService) DeleteSpecialPrice(ctx context.Context, id int64) error {
	return s.written(s.catalogRepo.DeleteSpecialPrice(ctx, id), fmt.Sprintf("special price %d", id))
}

func validateWindow(w *db.MaintenanceWindow) error {
	switch {
	case w.StartDate.IsZero() || w.EndDate.IsZero():
		return apperrors.Validation("start and end dates are required")
	case w.EndDate.Before(w.StartDate):
		return apperrors.Validation("end date must not be before start date")
	}
	return nil
}

func (s *AdminService) ListMaintenanceWindows(ctx context.Context) ([]db.MaintenanceWindow, error) {
	list, err := s.catalogRepo.ListMaintenanceWindows(ctx)
	return list, mapRepoErr(err, "maintenance windows")
}

// CreateMaintenanceWindow blocks future bookings only; reservations already
// committed over the window are left alone.
func (s *AdminService) CreateMaintenanceWindow(ctx context.Context, w *db.MaintenanceWindow) error {
	if err := validateWindow(w); err != nil {
		return err
	}
	return s.written(s.catalogRepo.CreateMaintenanceWindow(ctx, w), "maintenance window")
}

func (s *AdminService) UpdateMaintenanceWindow(ctx context.Context, w *db.MaintenanceWindow) error {
	if err := validateWindow(w); err != nil {
		return err
	}
	return s.written(s.catalogRepo.UpdateMaintenanceWindow(ctx, w), fmt.Sprintf("maintenance window %d", w.ID))
}

func (s *AdminService) DeleteMaintenanceWindow(ctx context.Context, id int64) error {
	return s.written(s.catalogRepo.DeleteMaintenanceWindow(ctx, id), fmt.Sprintf("maintenance window %d", id))
}

func (s *AdminService) ListAddons(ctx context.Context) ([]db.AddonService, error) {
	list, err := s.catalogRepo.ListAddons(ctx)
	return list, mapRepoErr(err, "addons")
}

func (s *AdminService) CreateAddon(ctx context.Context, a *db.AddonService) error {
	a.Code = strings.TrimSpace(a.Code)
	if a.Code == "" {
		return apperrors.Validation("add-on code is required")
	}
	if a.Price < 0 {
		return apperrors.Validation("price cannot be negative")
	}
	return s.written(s.catalogRepo.CreateAddon(ctx, a), fmt.Sprintf("add-on %s", a.Code))
}

func (s *AdminService) CreatePromoCode(ctx context.Context, p *db.PromoCode) error {
	if strings.TrimSpace(p.Code) == "" {
		return apperrors.Validation("promo code is required")
	}
	switch p.DiscountType {
	case db.DiscountPercentage:
		if p.DiscountValue < 0 || p.DiscountValue > 100 {
			return apperrors.Validation("percentage must be between 0 and 100")
		}
	case db.DiscountFixed:
		if p.DiscountValue < 0 {
			return apperrors.Validation("discount cannot be negative")
		}
	default:
		return apperrors.Validation("discount type must be %q or %q", db.DiscountPercentage, db.DiscountFixed)
	}
	if p.MaxUsage < 0 {
		return apperrors.Validation("max usage cannot be negative")
	}
	if p.ValidFrom.Valid && p.ValidTo.Valid && p.ValidTo.Time.Before(p.ValidFrom.Time) {
		return apperrors.Validation("valid_to must not be before valid_from")
	}
	return mapRepoErr(s.catalogRepo.CreatePromoCode(ctx, p), fmt.Sprintf("promo code %s", p.Code))
}

// GetPrices is the public price list built from the current snapshot.
func (s *AdminService) GetPrices(ctx context.Context) ([]entities.PriceResponse, error) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	out := make([]entities.PriceResponse, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		if !c.Active {
			continue
		}
		pr := entities.PriceResponse{
			CategoryID:      c.ID,
			Category:        c.Name,
			BasePricePerDay: c.BasePricePerDay,
			DayLengthMinute: c.DayLengthMinutes,
		}
		for _, o := range snap.Overrides[c.ID] {
			pr.SpecialPrices = append(pr.SpecialPrices, entities.SpecialPriceInfo{
				ID:        o.ID,
				StartDate: utils.FormatDate(o.From),
				EndDate:   utils.FormatDate(o.To),
				Price:     o.Price,
				Reason:    o.Reason,
			})
		}
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}
