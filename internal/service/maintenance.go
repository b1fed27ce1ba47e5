package service

import (
	"time"

	"greenpark/internal/db"
	"greenpark/internal/utils"
)

// MaintenanceIndex answers whether a category is blocked over an interval.
// Window dates are interpreted as whole calendar days in the lot's location.
type MaintenanceIndex struct {
	loc *time.Location
}

func NewMaintenanceIndex(loc *time.Location) *MaintenanceIndex {
	return &MaintenanceIndex{loc: loc}
}

// IsBlocked returns every active window of snap that affects categoryID and
// overlaps [start, end).
func (m *MaintenanceIndex) IsBlocked(snap *Snapshot, categoryID int64, start, end time.Time) (bool, []db.MaintenanceWindow) {
	var matches []db.MaintenanceWindow
	for _, w := range snap.Windows {
		if !w.Affects(categoryID) {
			continue
		}
		wStart, wEnd := utils.DateRangeInterval(w.StartDate, w.EndDate, m.loc)
		if utils.Overlaps(start, end, wStart, wEnd) {
			matches = append(matches, w)
		}
	}
	return len(matches) > 0, matches
}
