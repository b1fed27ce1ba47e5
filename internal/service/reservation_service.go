package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gopkg.in/guregu/null.v4"

	"greenpark/internal/db"
	"greenpark/internal/entities"
	apperrors "greenpark/internal/errors"
	"greenpark/internal/notify"
	"greenpark/internal/repository"
	"greenpark/internal/utils"
)

// maxCommitAttempts bounds retries when another category commits the same
// booking code between our uniqueness check and insert.
const maxCommitAttempts = 3

type ActorRole string

const (
	ActorCustomer ActorRole = "customer"
	ActorStaff    ActorRole = "staff"
	ActorAdmin    ActorRole = "admin"
)

// Actor is whoever triggers an operation. Ref identifies staff members and is
// recorded as the creator of manual bookings.
type Actor struct {
	Role ActorRole
	Ref  string
}

func (a Actor) IsStaff() bool {
	return a.Role == ActorStaff || a.Role == ActorAdmin
}

// MaintenanceConflictError carries the windows blocking a request.
type MaintenanceConflictError struct {
	CategoryID int64
	Windows    []db.MaintenanceWindow
}

func (e *MaintenanceConflictError) Error() string {
	reasons := make([]string, 0, len(e.Windows))
	for _, w := range e.Windows {
		reasons = append(reasons, fmt.Sprintf("%s..%s %s", utils.FormatDate(w.StartDate), utils.FormatDate(w.EndDate), w.Reason))
	}
	return fmt.Sprintf("category %d is under maintenance: %s", e.CategoryID, strings.Join(reasons, "; "))
}

func (e *MaintenanceConflictError) Unwrap() error {
	return &apperrors.Error{Kind: apperrors.KindMaintenanceConflict, Message: "interval blocked by maintenance"}
}

var transitions = map[db.ReservationStatus][]db.ReservationStatus{
	db.StatusPending:   {db.StatusCheckedIn, db.StatusCancelled},
	db.StatusCheckedIn: {db.StatusCheckedOut, db.StatusCancelled},
}

func canTransition(from, to db.ReservationStatus) bool {
	if from.Terminal() {
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ReservationDeps struct {
	Catalog            *CatalogCache
	CatalogRepo        repository.CatalogRepository
	Reservations       repository.ReservationRepository
	VIP                *VIPService
	Notifier           notify.Notifier
	Clock              utils.Clock
	Location           *time.Location
	CancellationCutoff time.Duration
}

type ReservationService struct {
	catalog     *CatalogCache
	catalogRepo repository.CatalogRepository
	repo        repository.ReservationRepository
	vip         *VIPService
	notifier    notify.Notifier
	clock       utils.Clock
	loc         *time.Location
	cutoff      time.Duration

	maintenance *MaintenanceIndex
	ledger      *CapacityLedger
	pricer      *PriceResolver
	identity    *IdentityGenerator
}

func NewReservationService(deps ReservationDeps) *ReservationService {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = utils.RealClock{}
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &ReservationService{
		catalog:     deps.Catalog,
		catalogRepo: deps.CatalogRepo,
		repo:        deps.Reservations,
		vip:         deps.VIP,
		notifier:    deps.Notifier,
		clock:       deps.Clock,
		loc:         deps.Location,
		cutoff:      deps.CancellationCutoff,
		maintenance: NewMaintenanceIndex(deps.Location),
		ledger:      NewCapacityLedger(deps.Reservations),
		pricer:      NewPriceResolver(deps.Location),
		identity:    NewIdentityGenerator(deps.Location),
	}
}

func validateInterval(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return apperrors.Validation("check-in and check-out are required")
	}
	if !checkIn.Before(checkOut) {
		return apperrors.Validation("check-out must be after check-in")
	}
	return nil
}

func (s *ReservationService) category(ctx context.Context, categoryID int64) (*Snapshot, db.ParkingCategory, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, db.ParkingCategory{}, fmt.Errorf("load catalog: %w", err)
	}
	category, ok := snap.Category(categoryID)
	if !ok {
		return nil, db.ParkingCategory{}, apperrors.NotFound("category %d not found", categoryID)
	}
	return snap, category, nil
}

func (s *ReservationService) CheckAvailability(ctx context.Context, categoryID int64, checkIn, checkOut time.Time) (*entities.AvailabilityResponse, error) {
	if err := validateInterval(checkIn, checkOut); err != nil {
		return nil, err
	}
	snap, category, err := s.category(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	resp := &entities.AvailabilityResponse{
		CategoryID: categoryID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Capacity:   category.Capacity,
	}
	resp.AvailableCount, err = s.ledger.AvailableCount(ctx, category, checkIn, checkOut)
	if err != nil {
		log.Printf("Error checking availability for category %d: %v", categoryID, err)
		return nil, fmt.Errorf("internal error checking availability: %w", err)
	}

	blocked, windows := s.maintenance.IsBlocked(snap, categoryID, checkIn, checkOut)
	switch {
	case !category.Active:
		resp.Reason = entities.ReasonCategoryInactive
	case blocked:
		resp.Reason = entities.ReasonMaintenance
		resp.MaintenanceWindows = WindowInfos(windows)
	case resp.AvailableCount < 1:
		resp.Reason = entities.ReasonCapacity
	default:
		resp.Available = true
	}
	return resp, nil
}

// QuotePrice runs every check of a booking and prices it without reserving.
func (s *ReservationService) QuotePrice(ctx context.Context, req entities.QuoteRequest) (*entities.PriceQuote, error) {
	if err := validateInterval(req.CheckIn, req.CheckOut); err != nil {
		return nil, err
	}
	snap, category, err := s.bookableCategory(ctx, req.CategoryID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := s.checkCapacity(ctx, category, req.CheckIn, req.CheckOut); err != nil {
		return nil, err
	}

	input, err := s.priceInput(ctx, req.CategoryID, req.CheckIn, req.CheckOut, req.Addons, req.VIPCode, req.PromoCode)
	if err != nil {
		return nil, err
	}
	quote, err := s.pricer.Compute(snap, input, s.clock.Now())
	if err != nil {
		s.logPricingFailure(req.CategoryID, err)
		return nil, err
	}
	return quote, nil
}

// bookableCategory returns the snapshot and category when the category is
// active and not blocked by maintenance over the interval.
func (s *ReservationService) bookableCategory(ctx context.Context, categoryID int64, checkIn, checkOut time.Time) (*Snapshot, db.ParkingCategory, error) {
	snap, category, err := s.category(ctx, categoryID)
	if err != nil {
		return nil, category, err
	}
	if !category.Active {
		return nil, category, apperrors.Validation("category %q is not accepting reservations", category.Name)
	}
	if blocked, windows := s.maintenance.IsBlocked(snap, categoryID, checkIn, checkOut); blocked {
		return nil, category, &MaintenanceConflictError{CategoryID: categoryID, Windows: windows}
	}
	return snap, category, nil
}

// checkCapacity is the unlocked capacity read that runs before pricing so a
// full category reports capacity ahead of any promo or VIP problem. The locked
// Reserve in commit is the one that counts.
func (s *ReservationService) checkCapacity(ctx context.Context, category db.ParkingCategory, checkIn, checkOut time.Time) error {
	free, err := s.ledger.AvailableCount(ctx, category, checkIn, checkOut)
	if err != nil {
		return fmt.Errorf("internal error checking availability: %w", err)
	}
	if free < 1 {
		return apperrors.New(apperrors.KindCapacity, "no space left in category %q for the requested interval", category.Name)
	}
	return nil
}

func (s *ReservationService) priceInput(ctx context.Context, categoryID int64, checkIn, checkOut time.Time, addons []string, vipCode, promoCode string) (PriceInput, error) {
	input := PriceInput{CategoryID: categoryID, Start: checkIn, End: checkOut, Addons: addons}
	if s.vip != nil {
		pct, err := s.vip.DiscountFor(ctx, vipCode)
		if err != nil {
			return input, err
		}
		input.VIPDiscountPct = pct
	} else if strings.TrimSpace(vipCode) != "" {
		return input, apperrors.Validation("vip codes are not accepted")
	}

	if code := strings.TrimSpace(promoCode); code != "" {
		promo, err := s.catalogRepo.GetPromoCode(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return input, apperrors.New(apperrors.KindPromoCode, "promo code %s does not exist", strings.ToUpper(code))
			}
			return input, fmt.Errorf("load promo code: %w", err)
		}
		input.Promo = promo
	}
	return input, nil
}

func (s *ReservationService) logPricingFailure(categoryID int64, err error) {
	if apperrors.Is(err, apperrors.KindPricingConfiguration) {
		log.Printf("PRICING CONFIGURATION ERROR for category %d: %v", categoryID, err)
	}
}

func validateContact(req *entities.ReservationRequest) error {
	if strings.TrimSpace(req.DriverName) == "" {
		return apperrors.Validation("driver name is required")
	}
	if strings.TrimSpace(req.DriverPhone) == "" {
		return apperrors.Validation("driver phone is required")
	}
	// Booking codes embed the plate and travel as a single URL path segment.
	if strings.Contains(req.VehiclePlate, "/") {
		return apperrors.Validation("vehicle plate cannot contain '/'")
	}
	if req.Passengers < 0 || req.Luggage < 0 {
		return apperrors.Validation("passengers and luggage cannot be negative")
	}
	return nil
}

// CreateReservation books one space. The capacity check, promo consumption,
// code allocation and insert happen under the category lock and commit
// together. New reservations are always pending.
func (s *ReservationService) CreateReservation(ctx context.Context, req *entities.ReservationRequest, actor Actor) (*db.Reservation, error) {
	if err := validateInterval(req.CheckIn, req.CheckOut); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if req.Manual {
		if !actor.IsStaff() {
			return nil, apperrors.New(apperrors.KindForbidden, "manual bookings are reserved to staff")
		}
		if strings.TrimSpace(actor.Ref) == "" {
			return nil, apperrors.Validation("manual bookings need a creator reference")
		}
	} else if !req.CheckIn.After(now) {
		return nil, apperrors.Validation("check-in must be in the future")
	}
	if err := validateContact(req); err != nil {
		return nil, err
	}

	snap, category, err := s.bookableCategory(ctx, req.CategoryID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := s.checkCapacity(ctx, category, req.CheckIn, req.CheckOut); err != nil {
		return nil, err
	}
	input, err := s.priceInput(ctx, req.CategoryID, req.CheckIn, req.CheckOut, req.Addons, req.VIPCode, req.PromoCode)
	if err != nil {
		return nil, err
	}

	var res *db.Reservation
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		res, err = s.commit(ctx, snap, input, req, actor, now)
		if !errors.Is(err, repository.ErrDuplicateEntry) {
			break
		}
		log.Printf("Booking code collided on commit (attempt %d/%d), retrying", attempt, maxCommitAttempts)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEntry):
			return nil, apperrors.Wrap(apperrors.KindIdentityCollision, err, "could not allocate a unique booking code")
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("category %d not found", req.CategoryID)
		case errors.Is(err, repository.ErrPromoExhausted):
			return nil, apperrors.New(apperrors.KindPromoCode, "promo code %s has reached its usage limit", input.Promo.Code)
		}
		s.logPricingFailure(req.CategoryID, err)
		if apperrors.KindOf(err) == apperrors.KindUnknown {
			log.Printf("Error creating reservation in repository: %v", err)
		}
		return nil, err
	}

	log.Printf("Reservation %s created for category %d (%s..%s, total %d)", res.Code, res.CategoryID,
		res.CheckIn.Format(time.RFC3339), res.CheckOut.Format(time.RFC3339), res.TotalPrice)
	s.notifyAsync(*res, category.Name)
	return res, nil
}

func (s *ReservationService) commit(ctx context.Context, snap *Snapshot, input PriceInput, req *entities.ReservationRequest, actor Actor, now time.Time) (*db.Reservation, error) {
	var res *db.Reservation
	err := s.repo.WithCategoryLock(ctx, req.CategoryID, func(tx repository.ReservationTx) error {
		if err := s.ledger.Reserve(ctx, tx, req.CheckIn, req.CheckOut, 1); err != nil {
			return err
		}
		quote, err := s.pricer.Compute(snap, input, now)
		if err != nil {
			return err
		}
		code, err := s.identity.Generate(ctx, now, req.VehiclePlate, tx.CodeExists)
		if err != nil {
			return err
		}
		if input.Promo != nil {
			if err := tx.ConsumePromo(ctx, input.Promo.ID); err != nil {
				return err
			}
		}

		res = &db.Reservation{
			Code:         code,
			CategoryID:   req.CategoryID,
			CheckIn:      req.CheckIn,
			CheckOut:     req.CheckOut,
			DriverName:   strings.TrimSpace(req.DriverName),
			DriverEmail:  strings.TrimSpace(req.DriverEmail),
			DriverPhone:  strings.TrimSpace(req.DriverPhone),
			VehiclePlate: normalizePlate(req.VehiclePlate),
			VehicleModel: req.VehicleModel,
			Passengers:   req.Passengers,
			Luggage:      req.Luggage,
			Addons:       dedupe(req.Addons),
			TotalPrice:   quote.Total,
			Status:       db.StatusPending,
			Manual:       req.Manual,
			Language:     req.Language,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if vip := strings.TrimSpace(req.VIPCode); vip != "" {
			res.VIPCode = null.StringFrom(vip)
		}
		if input.Promo != nil {
			res.PromoCode = null.StringFrom(input.Promo.Code)
		}
		if req.Manual {
			res.CreatedBy = null.StringFrom(actor.Ref)
		}
		return tx.Insert(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// TransitionStatus moves a reservation along its lifecycle on behalf of actor.
func (s *ReservationService) TransitionStatus(ctx context.Context, id int64, target db.ReservationStatus, actor Actor) (*db.Reservation, error) {
	if !target.Valid() {
		return nil, apperrors.Validation("unknown status %q", target)
	}
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("reservation %d not found", id)
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if res.Status.Terminal() {
		return nil, apperrors.New(apperrors.KindInvalidTransition, "reservation %s is already %s", res.Code, res.Status)
	}
	if !canTransition(res.Status, target) {
		return nil, apperrors.New(apperrors.KindInvalidTransition, "reservation %s cannot move from %s to %s", res.Code, res.Status, target)
	}
	now := s.clock.Now()
	if err := s.authorize(res, target, actor, now); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, res.Status, target, now)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusChanged):
			return nil, apperrors.New(apperrors.KindConflict, "reservation %s changed while updating, reload and retry", res.Code)
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NotFound("reservation %d not found", id)
		}
		return nil, fmt.Errorf("update reservation status: %w", err)
	}

	log.Printf("Reservation %s moved %s -> %s by %s %s", updated.Code, res.Status, target, actor.Role, actor.Ref)
	s.notifyAsync(*updated, s.categoryName(ctx, updated.CategoryID))
	return updated, nil
}

func (s *ReservationService) authorize(res *db.Reservation, target db.ReservationStatus, actor Actor, now time.Time) error {
	switch actor.Role {
	case ActorAdmin:
		return nil
	case ActorStaff:
		if res.Status == db.StatusCheckedIn && target == db.StatusCancelled {
			return apperrors.New(apperrors.KindForbidden, "only administrators can cancel a checked-in reservation")
		}
		return nil
	case ActorCustomer:
		if target != db.StatusCancelled || res.Status != db.StatusPending {
			return apperrors.New(apperrors.KindForbidden, "customers can only cancel pending reservations")
		}
		if res.CheckIn.Sub(now) < s.cutoff {
			return apperrors.New(apperrors.KindForbidden, "reservations can only be cancelled more than %s before check-in", s.cutoff)
		}
		return nil
	}
	return apperrors.New(apperrors.KindForbidden, "unknown actor role %q", actor.Role)
}

// CancelByCode is the customer self-service cancellation. The e-mail must
// match the one on the reservation.
func (s *ReservationService) CancelByCode(ctx context.Context, code, email string) (*db.Reservation, error) {
	res, err := s.GetReservationByCode(ctx, code, email)
	if err != nil {
		return nil, err
	}
	return s.TransitionStatus(ctx, res.ID, db.StatusCancelled, Actor{Role: ActorCustomer})
}

func (s *ReservationService) GetReservation(ctx context.Context, id int64) (*db.Reservation, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("reservation %d not found", id)
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return res, nil
}

// FindByCode looks a reservation up without an ownership check. Staff and
// payment callbacks only.
func (s *ReservationService) FindByCode(ctx context.Context, code string) (*db.Reservation, error) {
	res, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("reservation %s not found", code)
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return res, nil
}

// GetReservationByCode looks a reservation up for its driver, whose e-mail
// must match the one on the reservation.
func (s *ReservationService) GetReservationByCode(ctx context.Context, code, email string) (*db.Reservation, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	res, err := s.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(email, res.DriverEmail) {
		return nil, apperrors.NotFound("reservation %s not found", code)
	}
	return res, nil
}

func (s *ReservationService) ListReservations(ctx context.Context, filter db.ReservationFilter) (*entities.ReservationsList, error) {
	if filter.Date != "" {
		if _, err := utils.ParseDate(filter.Date); err != nil {
			return nil, apperrors.Validation("date must be YYYY-MM-DD")
		}
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.Validation("unknown status %q", filter.Status)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperrors.Validation("limit and offset cannot be negative")
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	now := s.clock.Now()
	out := &entities.ReservationsList{Total: total, Limit: filter.Limit, Offset: filter.Offset, Reservations: []entities.ReservationResponse{}}
	for _, r := range list {
		out.Reservations = append(out.Reservations, ToResponse(r, now))
	}
	return out, nil
}

// ListOverdue returns checked-in reservations past their check-out.
func (s *ReservationService) ListOverdue(ctx context.Context) ([]db.Reservation, error) {
	list, err := s.repo.ListCheckedInPastCheckout(ctx, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list overdue reservations: %w", err)
	}
	return list, nil
}

func (s *ReservationService) Now() time.Time { return s.clock.Now() }

func (s *ReservationService) categoryName(ctx context.Context, id int64) string {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return ""
	}
	c, _ := snap.Category(id)
	return c.Name
}

func (s *ReservationService) notifyAsync(res db.Reservation, category string) {
	go func() {
		if err := s.notifier.Notify(context.Background(), res, category); err != nil {
			log.Printf("ALERT (async): notification for reservation %s failed: %v", res.Code, err)
		}
	}()
}

func WindowInfos(windows []db.MaintenanceWindow) []entities.MaintenanceWindowInfo {
	out := make([]entities.MaintenanceWindowInfo, 0, len(windows))
	for _, w := range windows {
		out = append(out, entities.MaintenanceWindowInfo{
			ID:          w.ID,
			StartDate:   utils.FormatDate(w.StartDate),
			EndDate:     utils.FormatDate(w.EndDate),
			Reason:      w.Reason,
			CategoryIDs: []int64(w.CategoryIDs),
		})
	}
	return out
}

func nullTimePtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func ToResponse(r db.Reservation, now time.Time) entities.ReservationResponse {
	return entities.ReservationResponse{
		ID:           r.ID,
		Code:         r.Code,
		CategoryID:   r.CategoryID,
		CheckIn:      r.CheckIn,
		CheckOut:     r.CheckOut,
		DriverName:   r.DriverName,
		DriverEmail:  r.DriverEmail,
		DriverPhone:  r.DriverPhone,
		VehiclePlate: r.VehiclePlate,
		VehicleModel: r.VehicleModel,
		Passengers:   r.Passengers,
		Luggage:      r.Luggage,
		Addons:       []string(r.Addons),
		TotalPrice:   r.TotalPrice,
		VIPCode:      r.VIPCode.String,
		PromoCode:    r.PromoCode.String,
		Status:       string(r.Status),
		Overdue:      r.Overdue(now),
		Manual:       r.Manual,
		CreatedBy:    r.CreatedBy.String,
		Language:     r.Language,
		CheckedInAt:  nullTimePtr(r.CheckedInAt),
		CheckedOutAt: nullTimePtr(r.CheckedOutAt),
		CancelledAt:  nullTimePtr(r.CancelledAt),
		CreatedAt:    r.CreatedAt,
	}
}
