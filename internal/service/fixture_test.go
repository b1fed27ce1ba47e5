package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"greenpark/internal/db"
	"greenpark/internal/entities"
	"greenpark/internal/repository/memory"
	"greenpark/internal/utils"
)

var testNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	clock *utils.FixedClock
	cache *CatalogCache
	svc   *ReservationService
	admin *AdminService
	vip   *VIPService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(time.UTC)
	clock := utils.NewFixedClock(testNow)
	cache := NewCatalogCache(store.Catalog(), clock)
	vip := NewVIPService(store.VIP(), clock)
	svc := NewReservationService(ReservationDeps{
		Catalog:            cache,
		CatalogRepo:        store.Catalog(),
		Reservations:       store.Reservations(),
		VIP:                vip,
		Clock:              clock,
		Location:           time.UTC,
		CancellationCutoff: 12 * time.Hour,
	})
	return &fixture{
		store: store,
		clock: clock,
		cache: cache,
		svc:   svc,
		admin: NewAdminService(store.Catalog(), store.Reservations(), cache, clock),
		vip:   vip,
	}
}

func (f *fixture) category(t *testing.T, name string, capacity int, price int64) db.ParkingCategory {
	t.Helper()
	c := &db.ParkingCategory{Name: name, Capacity: capacity, BasePricePerDay: price, Active: true}
	require.NoError(t, f.admin.CreateCategory(context.Background(), c))
	return *c
}

// day returns 10:00 UTC on the given day of March 2025.
func day(d int) time.Time {
	return time.Date(2025, 3, d, 10, 0, 0, 0, time.UTC)
}

func date(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func request(categoryID int64, checkIn, checkOut time.Time, plate string) *entities.ReservationRequest {
	return &entities.ReservationRequest{
		CategoryID:   categoryID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		DriverName:   "Luca Bianchi",
		DriverEmail:  "luca@example.com",
		DriverPhone:  "+39 347 1234567",
		VehiclePlate: plate,
		Language:     "it",
	}
}

var customer = Actor{Role: ActorCustomer}
var staff = Actor{Role: ActorStaff, Ref: "desk@greenpark.it"}
var admin = Actor{Role: ActorAdmin, Ref: "boss@greenpark.it"}
