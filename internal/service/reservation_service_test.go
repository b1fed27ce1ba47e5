package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenpark/internal/db"
	"greenpark/internal/entities"
	apperrors "greenpark/internal/errors"
)

func TestCreateReservationHappyPath(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Covered", 5, 1500)

	res, err := f.svc.CreateReservation(context.Background(), request(cat.ID, day(10), day(12), "ab-123"), customer)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, res.Status)
	assert.Equal(t, "20250301AB-123", res.Code)
	assert.Equal(t, int64(3000), res.TotalPrice)
	assert.False(t, res.Manual)
	assert.False(t, res.CreatedBy.Valid)

	stored, err := f.svc.GetReservationByCode(context.Background(), "20250301ab-123", "LUCA@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.ID, stored.ID)

	_, err = f.svc.GetReservationByCode(context.Background(), res.Code, "someone@else.com")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCancelByCodeChecksOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 5, 1500)
	res, err := f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(11), "OWN1"), customer)
	require.NoError(t, err)

	for _, email := range []string{"", "   "} {
		_, err = f.svc.CancelByCode(ctx, res.Code, email)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err), "email %q", email)
	}
	_, err = f.svc.CancelByCode(ctx, res.Code, "someone@else.com")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	stored, err := f.svc.FindByCode(ctx, res.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, stored.Status)

	cancelled, err := f.svc.CancelByCode(ctx, res.Code, "luca@example.com")
	require.NoError(t, err)
	assert.Equal(t, db.StatusCancelled, cancelled.Status)
}

func TestCreateReservationCapacityExhausted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 1, 1500)

	_, err := f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(12), "AA1"), customer)
	require.NoError(t, err)

	_, err = f.svc.CreateReservation(ctx, request(cat.ID, day(11), day(13), "BB2"), customer)
	assert.Equal(t, apperrors.KindCapacity, apperrors.KindOf(err))

	// Back-to-back intervals do not overlap.
	_, err = f.svc.CreateReservation(ctx, request(cat.ID, day(12), day(13), "CC3"), customer)
	assert.NoError(t, err)
}

func TestCapacityReportedBeforePromoAndVIPProblems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 1, 1500)
	_, err := f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(12), "FULL1"), customer)
	require.NoError(t, err)

	req := request(cat.ID, day(10), day(11), "FULL2")
	req.PromoCode = "NOSUCHCODE"
	req.VIPCode = "1149999999999"
	_, err = f.svc.CreateReservation(ctx, req, customer)
	assert.Equal(t, apperrors.KindCapacity, apperrors.KindOf(err))

	_, err = f.svc.QuotePrice(ctx, entities.QuoteRequest{
		CategoryID: cat.ID, CheckIn: day(10), CheckOut: day(11), PromoCode: "NOSUCHCODE", VIPCode: "1149999999999",
	})
	assert.Equal(t, apperrors.KindCapacity, apperrors.KindOf(err))

	req.CheckIn, req.CheckOut = day(12), day(13)
	req.VIPCode = ""
	_, err = f.svc.CreateReservation(ctx, req, customer)
	assert.Equal(t, apperrors.KindPromoCode, apperrors.KindOf(err))
}

func TestCancelledReservationFreesCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 1, 1500)

	first, err := f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(12), "AA1"), customer)
	require.NoError(t, err)
	_, err = f.svc.TransitionStatus(ctx, first.ID, db.StatusCancelled, customer)
	require.NoError(t, err)

	_, err = f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(12), "BB2"), customer)
	assert.NoError(t, err)
}

func TestGlobalMaintenanceBlocksEveryCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.category(t, "X", 5, 1500)
	y := f.category(t, "Y", 5, 1500)

	require.NoError(t, f.admin.CreateMaintenanceWindow(ctx, &db.MaintenanceWindow{StartDate: date(10), EndDate: date(10), Reason: "resurfacing", Active: true}))

	_, err := f.svc.CreateReservation(ctx, request(y.ID, day(9), day(11), "AA1"), customer)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindMaintenanceConflict, apperrors.KindOf(err))
	var mce *MaintenanceConflictError
	require.ErrorAs(t, err, &mce)
	require.Len(t, mce.Windows, 1)
	assert.Equal(t, "resurfacing", mce.Windows[0].Reason)

	avail, err := f.svc.CheckAvailability(ctx, x.ID, day(10), day(11))
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, entities.ReasonMaintenance, avail.Reason)
	assert.Len(t, avail.MaintenanceWindows, 1)
}

func TestTargetedMaintenanceLeavesOthersBookable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.category(t, "X", 5, 1500)
	y := f.category(t, "Y", 5, 1500)
	require.NoError(t, f.admin.CreateMaintenanceWindow(ctx, &db.MaintenanceWindow{StartDate: date(10), EndDate: date(10), CategoryIDs: pq.Int64Array{x.ID}, Active: true}))

	_, err := f.svc.CreateReservation(ctx, request(x.ID, day(10), day(11), "AA1"), customer)
	assert.Equal(t, apperrors.KindMaintenanceConflict, apperrors.KindOf(err))
	_, err = f.svc.CreateReservation(ctx, request(y.ID, day(10), day(11), "AA1"), customer)
	assert.NoError(t, err)
}

func TestMaintenanceDoesNotTouchCommittedReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 5, 1500)
	res, err := f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(11), "AA1"), customer)
	require.NoError(t, err)

	require.NoError(t, f.admin.CreateMaintenanceWindow(ctx, &db.MaintenanceWindow{StartDate: date(10), EndDate: date(10), Active: true}))

	stored, err := f.svc.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, stored.Status)
	_, err = f.svc.TransitionStatus(ctx, res.ID, db.StatusCheckedIn, staff)
	assert.NoError(t, err)
}

func TestManualBookingIsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 5, 1500)

	req := request(cat.ID, testNow.Add(-2*time.Hour), testNow.Add(22*time.Hour), "AA1")
	req.Manual = true
	res, err := f.svc.CreateReservation(ctx, req, staff)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, res.Status)
	assert.True(t, res.Manual)
	assert.Equal(t, staff.Ref, res.CreatedBy.String)

	_, err = f.svc.CreateReservation(ctx, req, customer)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	_, err = f.svc.CreateReservation(ctx, req, Actor{Role: ActorStaff})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err), "manual bookings need a creator")
}

func TestSelfServiceCannotBackdate(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Covered", 5, 1500)

	_, err := f.svc.CreateReservation(context.Background(), request(cat.ID, testNow.Add(-time.Minute), day(3), "AA1"), customer)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestInvertedIntervalRejectedBeforeAnyLookup(t *testing.T) {
	f := newFixture(t)
	// The category does not exist: a validation error proves nothing was looked up.
	_, err := f.svc.CreateReservation(context.Background(), request(999, day(12), day(10), "AA1"), customer)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.svc.CheckAvailability(context.Background(), 999, day(10), day(10))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.svc.QuotePrice(context.Background(), entities.QuoteRequest{CategoryID: 999, CheckIn: day(12), CheckOut: day(10)})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateReservationValidatesContact(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Covered", 5, 1500)

	req := request(cat.ID, day(10), day(11), "AA1")
	req.DriverPhone = " "
	_, err := f.svc.CreateReservation(context.Background(), req, customer)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	req = request(cat.ID, day(10), day(11), "AA1")
	req.Passengers = -1
	_, err = f.svc.CreateReservation(context.Background(), req, customer)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.svc.CreateReservation(context.Background(), request(cat.ID, day(10), day(11), "AB/12"), customer)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestInactiveCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 5, 1500)
	cat.Active = false
	require.NoError(t, f.admin.UpdateCategory(ctx, &cat))

	avail, err := f.svc.CheckAvailability(ctx, cat.ID, day(10), day(11))
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, entities.ReasonCategoryInactive, avail.Reason)

	_, err = f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(11), "AA1"), customer)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSamePlateSameDayGetsSuffixAcrossCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.category(t, "A", 5, 1500)
	b := f.category(t, "B", 5, 1500)

	codes := map[string]bool{}
	for i, catID := range []int64{a.ID, b.ID, a.ID} {
		res, err := f.svc.CreateReservation(ctx, request(catID, day(10+i), day(11+i), "zz 99"), customer)
		require.NoError(t, err)
		codes[res.Code] = true
	}
	assert.Equal(t, map[string]bool{"20250301ZZ 99": true, "20250301ZZ 99-2": true, "20250301ZZ 99-3": true}, codes)

	// Next day starts over.
	f.clock.Advance(24 * time.Hour)
	res, err := f.svc.CreateReservation(ctx, request(a.ID, day(20), day(21), "zz 99"), customer)
	require.NoError(t, err)
	assert.Equal(t, "20250302ZZ 99", res.Code)
}

func TestCheckAvailabilityIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 3, 1500)
	_, err := f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(12), "AA1"), customer)
	require.NoError(t, err)

	first, err := f.svc.CheckAvailability(ctx, cat.ID, day(11), day(13))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := f.svc.CheckAvailability(ctx, cat.ID, day(11), day(13))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.True(t, first.Available)
	assert.Equal(t, 2, first.AvailableCount)
	assert.Equal(t, 3, first.Capacity)

	empty, err := f.svc.CheckAvailability(ctx, cat.ID, day(20), day(21))
	require.NoError(t, err)
	assert.Equal(t, empty.Capacity, empty.AvailableCount)
}

func TestAvailableCountNeverExceedsCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 2, 1500)
	for i, plate := range []string{"A", "B"} {
		_, err := f.svc.CreateReservation(ctx, request(cat.ID, day(10+i), day(20), plate), customer)
		require.NoError(t, err)
	}
	_, err := f.admin.UpdateCapacity(ctx, cat.ID, 2)
	require.NoError(t, err)

	for _, iv := range [][2]time.Time{{day(1), day(2)}, {day(10), day(11)}, {day(12), day(13)}, {day(1), day(31)}} {
		avail, err := f.svc.CheckAvailability(ctx, cat.ID, iv[0], iv[1])
		require.NoError(t, err)
		assert.LessOrEqual(t, avail.AvailableCount, avail.Capacity)
		assert.GreaterOrEqual(t, avail.AvailableCount, 0)
	}
}

func TestConcurrentBookingsNeverOverbook(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Last spot", 1, 1500)

	const workers = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := f.svc.CreateReservation(context.Background(), request(cat.ID, day(10), day(11), fmt.Sprintf("CAR%02d", i)), customer)
			errs <- err
		}(i)
	}
	close(start)
	wg.Wait()
	close(errs)

	var ok, full int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case apperrors.Is(err, apperrors.KindCapacity):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, full)
}

func TestConcurrentSamePlateGetsDistinctCodes(t *testing.T) {
	f := newFixture(t)
	cats := []db.ParkingCategory{f.category(t, "A", 10, 1500), f.category(t, "B", 10, 1500)}

	const workers = 8
	var wg sync.WaitGroup
	codes := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.CreateReservation(context.Background(), request(cats[i%2].ID, day(10), day(11), "SAME1"), customer)
			if assert.NoError(t, err) {
				codes <- res.Code
			}
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := map[string]bool{}
	for c := range codes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, workers)
}

func TestQuotePriceDoesNotReserve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 1, 1500)

	q, err := f.svc.QuotePrice(ctx, entities.QuoteRequest{CategoryID: cat.ID, CheckIn: day(10), CheckOut: day(12)})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), q.Total)

	avail, err := f.svc.CheckAvailability(ctx, cat.ID, day(10), day(12))
	require.NoError(t, err)
	assert.Equal(t, 1, avail.AvailableCount)

	_, err = f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(12), "AA1"), customer)
	require.NoError(t, err)
	_, err = f.svc.QuotePrice(ctx, entities.QuoteRequest{CategoryID: cat.ID, CheckIn: day(11), CheckOut: day(12)})
	assert.Equal(t, apperrors.KindCapacity, apperrors.KindOf(err))
}

func TestVIPAndPromoFlowIntoReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 5, 2000)

	profile, err := f.vip.GrantVIP(ctx, "cust-1", "0908805805", 2025, 10)
	require.NoError(t, err)
	require.NoError(t, f.admin.CreatePromoCode(ctx, &db.PromoCode{Code: "once", DiscountType: db.DiscountFixed, DiscountValue: 600, MaxUsage: 1, Active: true}))

	req := request(cat.ID, day(10), day(12), "AA1")
	req.VIPCode = profile.Code
	req.PromoCode = "ONCE"
	res, err := f.svc.CreateReservation(ctx, req, customer)
	require.NoError(t, err)
	// 4000 - 10% = 3600, minus 600.
	assert.Equal(t, int64(3000), res.TotalPrice)
	assert.Equal(t, "1140908805805", res.VIPCode.String)
	assert.Equal(t, "ONCE", res.PromoCode.String)

	req.VehiclePlate = "BB2"
	_, err = f.svc.CreateReservation(ctx, req, customer)
	assert.Equal(t, apperrors.KindPromoCode, apperrors.KindOf(err), "usage limit reached")

	req.PromoCode = "NOPE"
	_, err = f.svc.CreateReservation(ctx, req, customer)
	assert.Equal(t, apperrors.KindPromoCode, apperrors.KindOf(err))

	req.PromoCode = ""
	req.VIPCode = "999"
	_, err = f.svc.CreateReservation(ctx, req, customer)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestFailedCommitLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 1, 1500)
	require.NoError(t, f.admin.CreatePromoCode(ctx, &db.PromoCode{Code: "BIG", DiscountType: db.DiscountFixed, DiscountValue: 999999, Active: true}))

	req := request(cat.ID, day(10), day(11), "AA1")
	req.PromoCode = "BIG"
	_, err := f.svc.CreateReservation(ctx, req, customer)
	assert.Equal(t, apperrors.KindPricingConfiguration, apperrors.KindOf(err))

	avail, err := f.svc.CheckAvailability(ctx, cat.ID, day(10), day(11))
	require.NoError(t, err)
	assert.Equal(t, 1, avail.AvailableCount)
}

func TestTransitionStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 5, 1500)
	create := func(plate string) *db.Reservation {
		res, err := f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(11), plate), customer)
		require.NoError(t, err)
		return res
	}

	t.Run("happy path", func(t *testing.T) {
		res := create("HP1")
		in, err := f.svc.TransitionStatus(ctx, res.ID, db.StatusCheckedIn, staff)
		require.NoError(t, err)
		assert.True(t, in.CheckedInAt.Valid)
		out, err := f.svc.TransitionStatus(ctx, res.ID, db.StatusCheckedOut, staff)
		require.NoError(t, err)
		assert.Equal(t, db.StatusCheckedOut, out.Status)

		_, err = f.svc.TransitionStatus(ctx, res.ID, db.StatusCancelled, admin)
		assert.Equal(t, apperrors.KindInvalidTransition, apperrors.KindOf(err), "checked_out is terminal")
	})

	t.Run("no skipping", func(t *testing.T) {
		res := create("NS1")
		_, err := f.svc.TransitionStatus(ctx, res.ID, db.StatusCheckedOut, admin)
		assert.Equal(t, apperrors.KindInvalidTransition, apperrors.KindOf(err))
		_, err = f.svc.TransitionStatus(ctx, res.ID, db.StatusPending, admin)
		assert.Equal(t, apperrors.KindInvalidTransition, apperrors.KindOf(err))
		_, err = f.svc.TransitionStatus(ctx, res.ID, "parked", admin)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	})

	t.Run("only admins cancel checked-in", func(t *testing.T) {
		res := create("CI1")
		_, err := f.svc.TransitionStatus(ctx, res.ID, db.StatusCheckedIn, staff)
		require.NoError(t, err)
		_, err = f.svc.TransitionStatus(ctx, res.ID, db.StatusCancelled, staff)
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
		cancelled, err := f.svc.TransitionStatus(ctx, res.ID, db.StatusCancelled, admin)
		require.NoError(t, err)
		assert.True(t, cancelled.CancelledAt.Valid)
	})

	t.Run("customer cancellation cutoff", func(t *testing.T) {
		res := create("CC1")
		_, err := f.svc.TransitionStatus(ctx, res.ID, db.StatusCheckedIn, customer)
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

		f.clock.Set(day(10).Add(-11 * time.Hour))
		defer f.clock.Set(testNow)
		_, err = f.svc.CancelByCode(ctx, res.Code, "luca@example.com")
		assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

		f.clock.Set(day(10).Add(-13 * time.Hour))
		cancelled, err := f.svc.CancelByCode(ctx, res.Code, "luca@example.com")
		require.NoError(t, err)
		assert.Equal(t, db.StatusCancelled, cancelled.Status)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		_, err := f.svc.TransitionStatus(ctx, 424242, db.StatusCheckedIn, admin)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to db.ReservationStatus
		want     bool
	}{
		{db.StatusPending, db.StatusCheckedIn, true},
		{db.StatusPending, db.StatusCancelled, true},
		{db.StatusPending, db.StatusCheckedOut, false},
		{db.StatusCheckedIn, db.StatusCheckedOut, true},
		{db.StatusCheckedIn, db.StatusCancelled, true},
		{db.StatusCheckedIn, db.StatusPending, false},
		{db.StatusCheckedOut, db.StatusCancelled, false},
		{db.StatusCheckedOut, db.StatusCheckedIn, false},
		{db.StatusCancelled, db.StatusPending, false},
		{db.StatusCancelled, db.StatusCheckedIn, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
		if tt.from.Terminal() {
			assert.False(t, tt.want)
		}
	}
	assert.False(t, db.StatusPending.Terminal())
	assert.False(t, db.StatusCheckedIn.Terminal())
}

func TestOverdueIsDerived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Covered", 5, 1500)
	res, err := f.svc.CreateReservation(ctx, request(cat.ID, day(10), day(11), "OD1"), customer)
	require.NoError(t, err)
	_, err = f.svc.TransitionStatus(ctx, res.ID, db.StatusCheckedIn, staff)
	require.NoError(t, err)

	overdue, err := f.svc.ListOverdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	f.clock.Set(day(11).Add(time.Hour))
	overdue, err = f.svc.ListOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, db.StatusCheckedIn, overdue[0].Status)

	list, err := f.svc.ListReservations(ctx, db.ReservationFilter{Status: db.StatusCheckedIn})
	require.NoError(t, err)
	require.Len(t, list.Reservations, 1)
	assert.True(t, list.Reservations[0].Overdue)
	assert.Equal(t, "checked_in", list.Reservations[0].Status)
}

func TestListReservationsValidatesFilter(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListReservations(context.Background(), db.ReservationFilter{Date: "01/03/2025"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	_, err = f.svc.ListReservations(context.Background(), db.ReservationFilter{Status: "finished"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
