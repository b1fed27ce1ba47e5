package repository

import (
	"context"
	"errors"
	"time"

	"greenpark/internal/db"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("record already exists")
	ErrPromoExhausted = errors.New("promo code usage limit reached")
	ErrStatusChanged  = errors.New("reservation status changed concurrently")
)

// CatalogRepository holds administrator-maintained configuration: categories,
// special prices, maintenance windows, add-ons and promo codes.
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]db.ParkingCategory, error)
	GetCategory(ctx context.Context, id int64) (*db.ParkingCategory, error)
	CreateCategory(ctx context.Context, c *db.ParkingCategory) error
	// UpdateCategory changes everything except capacity, which only moves
	// through ReservationTx.SetCapacity under the category lock.
	UpdateCategory(ctx context.Context, c *db.ParkingCategory) error

	ListSpecialPrices(ctx context.Context) ([]db.SpecialPrice, error)
	CreateSpecialPrice(ctx context.Context, sp *db.SpecialPrice) error
	UpdateSpecialPrice(ctx context.Context, sp *db.SpecialPrice) error
	DeleteSpecialPrice(ctx context.Context, id int64) error

	ListMaintenanceWindows(ctx context.Context) ([]db.MaintenanceWindow, error)
	CreateMaintenanceWindow(ctx context.Context, w *db.MaintenanceWindow) error
	UpdateMaintenanceWindow(ctx context.Context, w *db.MaintenanceWindow) error
	DeleteMaintenanceWindow(ctx context.Context, id int64) error

	ListAddons(ctx context.Context) ([]db.AddonService, error)
	CreateAddon(ctx context.Context, a *db.AddonService) error

	GetPromoCode(ctx context.Context, code string) (*db.PromoCode, error)
	CreatePromoCode(ctx context.Context, p *db.PromoCode) error
}

type ReservationRepository interface {
	// CountOverlapping counts non-cancelled reservations of the category whose
	// [check_in, check_out) overlaps [start, end). Unlocked read.
	CountOverlapping(ctx context.Context, categoryID int64, start, end time.Time) (int, error)
	// WithCategoryLock runs fn while holding the category's exclusive lock.
	// Everything fn writes commits together, or nothing does when fn fails.
	WithCategoryLock(ctx context.Context, categoryID int64, fn func(tx ReservationTx) error) error

	FindByID(ctx context.Context, id int64) (*db.Reservation, error)
	FindByCode(ctx context.Context, code string) (*db.Reservation, error)
	List(ctx context.Context, filter db.ReservationFilter) ([]db.Reservation, int64, error)
	// UpdateStatus moves a reservation from one status to another only if it
	// is still in `from`; otherwise ErrStatusChanged.
	UpdateStatus(ctx context.Context, id int64, from, to db.ReservationStatus, at time.Time) (*db.Reservation, error)
	ListCheckedInPastCheckout(ctx context.Context, now time.Time) ([]db.Reservation, error)
}

// ReservationTx is the view of the store available under a category lock.
type ReservationTx interface {
	Category(ctx context.Context) (*db.ParkingCategory, error)
	CountOverlapping(ctx context.Context, start, end time.Time) (int, error)
	// ListActive returns non-cancelled reservations still running after since.
	ListActive(ctx context.Context, since time.Time) ([]db.Reservation, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Insert(ctx context.Context, r *db.Reservation) error
	ConsumePromo(ctx context.Context, promoID int64) error
	SetCapacity(ctx context.Context, capacity int) error
	// DeleteCategory removes the locked category and its special prices.
	DeleteCategory(ctx context.Context) error
}

type VIPRepository interface {
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, p *db.VIPProfile) error
	FindByCode(ctx context.Context, code string) (*db.VIPProfile, error)
}

type StaffRepository interface {
	GetByEmail(ctx context.Context, email string) (*db.StaffAccount, error)
	Create(ctx context.Context, a *db.StaffAccount) error
}
