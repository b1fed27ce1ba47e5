package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"greenpark/internal/db"
	"greenpark/internal/repository"
	"greenpark/internal/utils"
)

// PriceOverride is a date-scoped replacement of a category's base price.
// From and To are inclusive calendar dates at UTC midnight.
type PriceOverride struct {
	ID         int64
	CategoryID int64
	From       time.Time
	To         time.Time
	Price      int64
	Reason     string
	CreatedAt  time.Time
}

func (o PriceOverride) Covers(date time.Time) bool {
	return utils.DateWithin(date, o.From, o.To)
}

// newerThan orders overrides for precedence: latest creation first, then higher id.
func (o PriceOverride) newerThan(other PriceOverride) bool {
	if !o.CreatedAt.Equal(other.CreatedAt) {
		return o.CreatedAt.After(other.CreatedAt)
	}
	return o.ID > other.ID
}

// Snapshot is an immutable, versioned view of the catalog. Engine calls receive
// it explicitly and never reach for shared state.
type Snapshot struct {
	Version    uint64
	LoadedAt   time.Time
	Categories map[int64]db.ParkingCategory
	// Overrides holds the active overrides per category, highest precedence first.
	Overrides map[int64][]PriceOverride
	// Windows holds active maintenance windows only.
	Windows []db.MaintenanceWindow
	// Addons holds active add-ons keyed by code.
	Addons map[string]db.AddonService
}

func (s *Snapshot) Category(id int64) (db.ParkingCategory, bool) {
	c, ok := s.Categories[id]
	return c, ok
}

// OverrideFor returns the override that wins on date, if any.
func (s *Snapshot) OverrideFor(categoryID int64, date time.Time) (PriceOverride, bool) {
	for _, o := range s.Overrides[categoryID] {
		if o.Covers(date) {
			return o, true
		}
	}
	return PriceOverride{}, false
}

// CatalogCache serves catalog snapshots. Administrative writes call
// Invalidate synchronously; the next reader reloads.
type CatalogCache struct {
	repo  repository.CatalogRepository
	clock utils.Clock

	mu         sync.Mutex
	current    *Snapshot
	generation uint64
	version    uint64
}

func NewCatalogCache(repo repository.CatalogRepository, clock utils.Clock) *CatalogCache {
	return &CatalogCache{repo: repo, clock: clock}
}

func (c *CatalogCache) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	if c.current != nil {
		snap := c.current
		c.mu.Unlock()
		return snap, nil
	}
	gen := c.generation
	c.mu.Unlock()

	return c.load(ctx, gen)
}

// Invalidate drops the current snapshot. A load that started before the call
// is not installed.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.generation++
	c.mu.Unlock()
}

// Refresh reloads the catalog unconditionally.
func (c *CatalogCache) Refresh(ctx context.Context) (*Snapshot, error) {
	c.Invalidate()
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	return c.load(ctx, gen)
}

func (c *CatalogCache) load(ctx context.Context, gen uint64) (*Snapshot, error) {
	categories, err := c.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	specials, err := c.repo.ListSpecialPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("load special prices: %w", err)
	}
	windows, err := c.repo.ListMaintenanceWindows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load maintenance windows: %w", err)
	}
	addons, err := c.repo.ListAddons(ctx)
	if err != nil {
		return nil, fmt.Errorf("load addons: %w", err)
	}

	snap := buildSnapshot(categories, specials, windows, addons)
	snap.LoadedAt = c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	snap.Version = c.version
	if gen == c.generation {
		c.current = snap
	} else {
		log.Printf("catalog: snapshot v%d superseded by a concurrent write, not cached", snap.Version)
	}
	return snap, nil
}

func buildSnapshot(categories []db.ParkingCategory, specials []db.SpecialPrice, windows []db.MaintenanceWindow, addons []db.AddonService) *Snapshot {
	snap := &Snapshot{
		Categories: make(map[int64]db.ParkingCategory, len(categories)),
		Overrides:  make(map[int64][]PriceOverride),
		Addons:     make(map[string]db.AddonService, len(addons)),
	}
	for _, cat := range categories {
		cat.SpecialPrices = nil
		snap.Categories[cat.ID] = cat
	}
	for _, sp := range specials {
		if !sp.Active {
			continue
		}
		snap.Overrides[sp.CategoryID] = append(snap.Overrides[sp.CategoryID], PriceOverride{
			ID:         sp.ID,
			CategoryID: sp.CategoryID,
			From:       utils.DateOf(sp.StartDate, time.UTC),
			To:         utils.DateOf(sp.EndDate, time.UTC),
			Price:      sp.Price,
			Reason:     sp.Reason,
			CreatedAt:  sp.CreatedAt,
		})
	}
	for id := range snap.Overrides {
		list := snap.Overrides[id]
		sort.SliceStable(list, func(i, j int) bool { return list[i].newerThan(list[j]) })
	}
	for _, w := range windows {
		if w.Active {
			snap.Windows = append(snap.Windows, w)
		}
	}
	for _, a := range addons {
		if a.Active {
			snap.Addons[a.Code] = a
		}
	}
	return snap
}
