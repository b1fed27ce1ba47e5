package service

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"greenpark/internal/db"
)

func TestIsBlocked(t *testing.T) {
	windows := []db.MaintenanceWindow{
		{ID: 1, StartDate: date(10), EndDate: date(10), Reason: "line painting", CategoryIDs: pq.Int64Array{1}, Active: true},
		{ID: 2, StartDate: date(15), EndDate: date(16), Reason: "power works", Active: true},
		{ID: 3, StartDate: date(20), EndDate: date(20), Reason: "cancelled works", Active: false},
	}
	snap := buildSnapshot(nil, nil, windows, nil)
	idx := NewMaintenanceIndex(time.UTC)

	tests := []struct {
		name     string
		category int64
		start    time.Time
		end      time.Time
		want     []int64
	}{
		{"targeted category on the day", 1, day(9), day(10), []int64{1}},
		{"other category not targeted", 2, day(9), day(11), nil},
		{"global window blocks every category", 7, day(16), day(17), []int64{2}},
		{"ending at the window's first midnight", 1, day(9), date(10), nil},
		{"starting at the midnight after the window", 1, date(11), day(12), nil},
		{"spanning both windows", 1, day(1), day(31), []int64{1, 2}},
		{"inactive windows never block", 1, day(19), day(21), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, matches := idx.IsBlocked(snap, tt.category, tt.start, tt.end)
			var ids []int64
			for _, w := range matches {
				ids = append(ids, w.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want) > 0, blocked)
		})
	}
}

func TestIsBlockedUsesLotTimezone(t *testing.T) {
	rome, _ := time.LoadLocation("Europe/Rome")
	snap := buildSnapshot(nil, nil, []db.MaintenanceWindow{{ID: 1, StartDate: date(10), EndDate: date(10), Active: true}}, nil)
	idx := NewMaintenanceIndex(rome)

	// 23:30 UTC on the 9th is 00:30 on the 10th in Rome.
	blocked, _ := idx.IsBlocked(snap, 1, time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC), time.Date(2025, 3, 9, 23, 45, 0, 0, time.UTC))
	assert.True(t, blocked)
}
