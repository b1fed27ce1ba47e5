package entities

import "time"

type MaintenanceWindowInfo struct {
	ID          int64   `json:"id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Reason      string  `json:"reason"`
	CategoryIDs []int64 `json:"category_ids,omitempty"`
}

const (
	ReasonCategoryInactive = "category_inactive"
	ReasonMaintenance      = "maintenance"
	ReasonCapacity         = "capacity"
)

type AvailabilityResponse struct {
	CategoryID         int64                   `json:"category_id"`
	CheckIn            time.Time               `json:"check_in"`
	CheckOut           time.Time               `json:"check_out"`
	Available          bool                    `json:"available"`
	Reason             string                  `json:"reason,omitempty"`
	MaintenanceWindows []MaintenanceWindowInfo `json:"maintenance_windows,omitempty"`
	AvailableCount     int                     `json:"available_count"`
	Capacity           int                     `json:"capacity"`
}
