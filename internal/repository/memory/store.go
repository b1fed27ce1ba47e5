// Package memory keeps the whole reservation store in process memory. It backs
// STORE=memory deployments and the service and API tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"greenpark/internal/db"
	"greenpark/internal/repository"
)

type Store struct {
	mu     sync.RWMutex
	nextID int64
	loc    *time.Location

	categories    map[int64]*db.ParkingCategory
	specialPrices map[int64]*db.SpecialPrice
	windows       map[int64]*db.MaintenanceWindow
	addons        map[int64]*db.AddonService
	promos        map[int64]*db.PromoCode
	reservations  map[int64]*db.Reservation
	codes         map[string]int64
	vips          map[int64]*db.VIPProfile
	staff         map[int64]*db.StaffAccount

	lockMu        sync.Mutex
	categoryLocks map[int64]*sync.Mutex
}

// NewStore returns an empty store. loc is used to match the date filter of
// reservation listings against check-in.
func NewStore(loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		loc:           loc,
		categories:    make(map[int64]*db.ParkingCategory),
		specialPrices: make(map[int64]*db.SpecialPrice),
		windows:       make(map[int64]*db.MaintenanceWindow),
		addons:        make(map[int64]*db.AddonService),
		promos:        make(map[int64]*db.PromoCode),
		reservations:  make(map[int64]*db.Reservation),
		codes:         make(map[string]int64),
		vips:          make(map[int64]*db.VIPProfile),
		staff:         make(map[int64]*db.StaffAccount),
		categoryLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *Store) Catalog() repository.CatalogRepository { return catalogView{s} }
func (s *Store) Reservations() repository.ReservationRepository { return reservationView{s} }
func (s *Store) VIP() repository.VIPRepository { return vipView{s} }
func (s *Store) Staff() repository.StaffRepository { return staffView{s} }

func (s *Store) newIDLocked() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) categoryLock(id int64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.categoryLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.categoryLocks[id] = l
	}
	return l
}

func cloneReservation(r *db.Reservation) db.Reservation {
	c := *r
	if r.Addons != nil {
		c.Addons = append([]string(nil), r.Addons...)
	}
	return c
}

func cloneInt64s(in []int64) []int64 {
	if in == nil {
		return nil
	}
	return append([]int64(nil), in...)
}

// ---- catalog ----

type catalogView struct{ s *Store }

func (v catalogView) ListCategories(ctx context.Context) ([]db.ParkingCategory, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]db.ParkingCategory, 0, len(v.s.categories))
	for _, c := range v.s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v catalogView) GetCategory(ctx context.Context, id int64) (*db.ParkingCategory, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	c, ok := v.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (v catalogView) CreateCategory(ctx context.Context, c *db.ParkingCategory) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	c.ID = v.s.newIDLocked()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	cp.SpecialPrices = nil
	v.s.categories[c.ID] = &cp
	return nil
}

func (v catalogView) UpdateCategory(ctx context.Context, c *db.ParkingCategory) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	existing, ok := v.s.categories[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = c.Name
	existing.BasePricePerDay = c.BasePricePerDay
	existing.DayLengthMinutes = c.DayLengthMinutes
	existing.Active = c.Active
	existing.UpdatedAt = time.Now()
	return nil
}

func (v catalogView) ListSpecialPrices(ctx context.Context) ([]db.SpecialPrice, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]db.SpecialPrice, 0, len(v.s.specialPrices))
	for _, sp := range v.s.specialPrices {
		out = append(out, *sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v catalogView) CreateSpecialPrice(ctx context.Context, sp *db.SpecialPrice) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.categories[sp.CategoryID]; !ok {
		return repository.ErrNotFound
	}
	sp.ID = v.s.newIDLocked()
	if sp.CreatedAt.IsZero() {
		sp.CreatedAt = time.Now()
	}
	cp := *sp
	v.s.specialPrices[sp.ID] = &cp
	return nil
}

func (v catalogView) UpdateSpecialPrice(ctx context.Context, sp *db.SpecialPrice) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	existing, ok := v.s.specialPrices[sp.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *sp
	cp.CreatedAt = existing.CreatedAt
	v.s.specialPrices[sp.ID] = &cp
	return nil
}

func (v catalogView) DeleteSpecialPrice(ctx context.Context, id int64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.specialPrices[id]; !ok {
		return repository.ErrNotFound
	}
	delete(v.s.specialPrices, id)
	return nil
}

func (v catalogView) ListMaintenanceWindows(ctx context.Context) ([]db.MaintenanceWindow, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]db.MaintenanceWindow, 0, len(v.s.windows))
	for _, w := range v.s.windows {
		cp := *w
		cp.CategoryIDs = cloneInt64s(w.CategoryIDs)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v catalogView) CreateMaintenanceWindow(ctx context.Context, w *db.MaintenanceWindow) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	w.ID = v.s.newIDLocked()
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	cp := *w
	cp.CategoryIDs = cloneInt64s(w.CategoryIDs)
	v.s.windows[w.ID] = &cp
	return nil
}

func (v catalogView) UpdateMaintenanceWindow(ctx context.Context, w *db.MaintenanceWindow) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	existing, ok := v.s.windows[w.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *w
	cp.CategoryIDs = cloneInt64s(w.CategoryIDs)
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now()
	v.s.windows[w.ID] = &cp
	return nil
}

func (v catalogView) DeleteMaintenanceWindow(ctx context.Context, id int64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.windows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(v.s.windows, id)
	return nil
}

func (v catalogView) ListAddons(ctx context.Context) ([]db.AddonService, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]db.AddonService, 0, len(v.s.addons))
	for _, a := range v.s.addons {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (v catalogView) CreateAddon(ctx context.Context, a *db.AddonService) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, existing := range v.s.addons {
		if existing.Code == a.Code {
			return repository.ErrDuplicateEntry
		}
	}
	a.ID = v.s.newIDLocked()
	cp := *a
	v.s.addons[a.ID] = &cp
	return nil
}

func (v catalogView) GetPromoCode(ctx context.Context, code string) (*db.PromoCode, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, p := range v.s.promos {
		if p.Code == code {
			cp := *p
			cp.CategoryIDs = cloneInt64s(p.CategoryIDs)
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v catalogView) CreatePromoCode(ctx context.Context, p *db.PromoCode) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, existing := range v.s.promos {
		if existing.Code == p.Code {
			return repository.ErrDuplicateEntry
		}
	}
	p.ID = v.s.newIDLocked()
	p.UsedCount = 0
	cp := *p
	cp.CategoryIDs = cloneInt64s(p.CategoryIDs)
	v.s.promos[p.ID] = &cp
	return nil
}

// ---- reservations ----

type reservationView struct{ s *Store }

func overlapsLocked(r *db.Reservation, categoryID int64, start, end time.Time) bool {
	return r.CategoryID == categoryID &&
		r.Status != db.StatusCancelled &&
		r.CheckIn.Before(end) && start.Before(r.CheckOut)
}

func (s *Store) countOverlappingLocked(categoryID int64, start, end time.Time) int {
	n := 0
	for _, r := range s.reservations {
		if overlapsLocked(r, categoryID, start, end) {
			n++
		}
	}
	return n
}

func (v reservationView) CountOverlapping(ctx context.Context, categoryID int64, start, end time.Time) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return v.s.countOverlappingLocked(categoryID, start, end), nil
}

func (v reservationView) WithCategoryLock(ctx context.Context, categoryID int64, fn func(tx repository.ReservationTx) error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	lock := v.s.categoryLock(categoryID)
	lock.Lock()
	defer lock.Unlock()

	v.s.mu.RLock()
	_, ok := v.s.categories[categoryID]
	v.s.mu.RUnlock()
	if !ok {
		return repository.ErrNotFound
	}

	tx := &memTx{s: v.s, categoryID: categoryID}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (v reservationView) FindByID(ctx context.Context, id int64) (*db.Reservation, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	r, ok := v.s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := cloneReservation(r)
	return &cp, nil
}

func (v reservationView) FindByCode(ctx context.Context, code string) (*db.Reservation, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	id, ok := v.s.codes[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := cloneReservation(v.s.reservations[id])
	return &cp, nil
}

func (v reservationView) List(ctx context.Context, filter db.ReservationFilter) ([]db.Reservation, int64, error) {
	if ctx.Err() != nil {
		return nil, 0, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	var out []db.Reservation
	for _, r := range v.s.reservations {
		if filter.Date != "" && r.CheckIn.In(v.s.loc).Format("2006-01-02") != filter.Date {
			continue
		}
		if filter.CategoryID != 0 && r.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, cloneReservation(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].CheckIn.After(out[j].CheckIn)
		}
		return out[i].ID > out[j].ID
	})

	total := int64(len(out))
	if filter.Limit > 0 {
		if filter.Offset >= len(out) {
			return nil, total, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[filter.Offset:end]
	}
	return out, total, nil
}

func (v reservationView) UpdateStatus(ctx context.Context, id int64, from, to db.ReservationStatus, at time.Time) (*db.Reservation, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	r, ok := v.s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if r.Status != from {
		return nil, repository.ErrStatusChanged
	}
	r.Status = to
	r.UpdatedAt = at
	switch to {
	case db.StatusCheckedIn:
		r.CheckedInAt.SetValid(at)
	case db.StatusCheckedOut:
		r.CheckedOutAt.SetValid(at)
	case db.StatusCancelled:
		r.CancelledAt.SetValid(at)
	}
	cp := cloneReservation(r)
	return &cp, nil
}

func (v reservationView) ListCheckedInPastCheckout(ctx context.Context, now time.Time) ([]db.Reservation, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []db.Reservation
	for _, r := range v.s.reservations {
		if r.Overdue(now) {
			out = append(out, cloneReservation(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckOut.Before(out[j].CheckOut) })
	return out, nil
}

// memTx records an undo step for every write so a failed unit of work leaves
// the store as it found it.
type memTx struct {
	s          *Store
	categoryID int64
	undo       []func()
}

func (t *memTx) rollback() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) Category(ctx context.Context) (*db.ParkingCategory, error) {
	return reservationView{t.s}.categoryCopy(t.categoryID)
}

func (v reservationView) categoryCopy(id int64) (*db.ParkingCategory, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	c, ok := v.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) CountOverlapping(ctx context.Context, start, end time.Time) (int, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.s.countOverlappingLocked(t.categoryID, start, end), nil
}

func (t *memTx) ListActive(ctx context.Context, since time.Time) ([]db.Reservation, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	var out []db.Reservation
	for _, r := range t.s.reservations {
		if r.CategoryID == t.categoryID && r.Status != db.StatusCancelled && r.CheckOut.After(since) {
			out = append(out, cloneReservation(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}

func (t *memTx) CodeExists(ctx context.Context, code string) (bool, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	_, ok := t.s.codes[code]
	return ok, nil
}

func (t *memTx) Insert(ctx context.Context, r *db.Reservation) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, taken := t.s.codes[r.Code]; taken {
		return repository.ErrDuplicateEntry
	}
	r.ID = t.s.newIDLocked()
	cp := cloneReservation(r)
	t.s.reservations[r.ID] = &cp
	t.s.codes[r.Code] = r.ID

	id, code := r.ID, r.Code
	t.undo = append(t.undo, func() {
		delete(t.s.reservations, id)
		delete(t.s.codes, code)
	})
	return nil
}

func (t *memTx) ConsumePromo(ctx context.Context, promoID int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, ok := t.s.promos[promoID]
	if !ok {
		return repository.ErrNotFound
	}
	if p.MaxUsage > 0 && p.UsedCount >= p.MaxUsage {
		return repository.ErrPromoExhausted
	}
	p.UsedCount++
	t.undo = append(t.undo, func() { p.UsedCount-- })
	return nil
}

func (t *memTx) SetCapacity(ctx context.Context, capacity int) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	c, ok := t.s.categories[t.categoryID]
	if !ok {
		return repository.ErrNotFound
	}
	prev := c.Capacity
	c.Capacity = capacity
	c.UpdatedAt = time.Now()
	t.undo = append(t.undo, func() { c.Capacity = prev })
	return nil
}

func (t *memTx) DeleteCategory(ctx context.Context) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	c, ok := t.s.categories[t.categoryID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(t.s.categories, t.categoryID)
	var removed []*db.SpecialPrice
	for spID, sp := range t.s.specialPrices {
		if sp.CategoryID == t.categoryID {
			removed = append(removed, sp)
			delete(t.s.specialPrices, spID)
		}
	}
	t.undo = append(t.undo, func() {
		t.s.categories[c.ID] = c
		for _, sp := range removed {
			t.s.specialPrices[sp.ID] = sp
		}
	})
	return nil
}

// ---- vip ----

type vipView struct{ s *Store }

func (v vipView) CodeExists(ctx context.Context, code string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, p := range v.s.vips {
		if p.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (v vipView) Create(ctx context.Context, p *db.VIPProfile) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, existing := range v.s.vips {
		if existing.Code == p.Code || existing.CustomerRef == p.CustomerRef {
			return repository.ErrDuplicateEntry
		}
	}
	p.ID = v.s.newIDLocked()
	p.CreatedAt = time.Now()
	cp := *p
	v.s.vips[p.ID] = &cp
	return nil
}

func (v vipView) FindByCode(ctx context.Context, code string) (*db.VIPProfile, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, p := range v.s.vips {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ---- staff ----

type staffView struct{ s *Store }

func (v staffView) GetByEmail(ctx context.Context, email string) (*db.StaffAccount, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, a := range v.s.staff {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v staffView) Create(ctx context.Context, a *db.StaffAccount) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, existing := range v.s.staff {
		if strings.EqualFold(existing.Email, a.Email) {
			return repository.ErrDuplicateEntry
		}
	}
	a.ID = v.s.newIDLocked()
	a.CreatedAt = time.Now()
	cp := *a
	v.s.staff[a.ID] = &cp
	return nil
}
