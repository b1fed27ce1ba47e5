package db

import (
	"time"

	"github.com/lib/pq"
	"gopkg.in/guregu/null.v4"
)

type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusCheckedIn  ReservationStatus = "checked_in"
	StatusCheckedOut ReservationStatus = "checked_out"
	StatusCancelled  ReservationStatus = "cancelled"
)

// Terminal reports whether no further transition can leave the status.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

const DefaultDayLengthMinutes = 24 * 60

// ParkingCategory is a class of parking space sharing capacity and base pricing.
type ParkingCategory struct {
	ID               int64          `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name" gorm:"not null"`
	Capacity         int            `json:"capacity" gorm:"not null;default:0"`
	BasePricePerDay  int64          `json:"base_price_per_day" gorm:"not null"`
	DayLengthMinutes int            `json:"day_length_minutes" gorm:"not null;default:1440"`
	Active           bool           `json:"active" gorm:"not null;default:true"`
	SpecialPrices    []SpecialPrice `json:"special_prices,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (c ParkingCategory) DayLength() time.Duration {
	if c.DayLengthMinutes <= 0 {
		return DefaultDayLengthMinutes * time.Minute
	}
	return time.Duration(c.DayLengthMinutes) * time.Minute
}

// SpecialPrice overrides the base price of one category on an inclusive date range.
// StartDate and EndDate are calendar dates stored at UTC midnight.
type SpecialPrice struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	CategoryID int64     `json:"category_id" gorm:"not null;index"`
	StartDate  time.Time `json:"start_date" gorm:"type:date;not null"`
	EndDate    time.Time `json:"end_date" gorm:"type:date;not null"`
	Price      int64     `json:"price" gorm:"not null"`
	Reason     string    `json:"reason"`
	Active     bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt  time.Time `json:"created_at"`
}

// MaintenanceWindow blocks reservations on an inclusive date range. An empty
// CategoryIDs set affects every category.
type MaintenanceWindow struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	StartDate   time.Time     `json:"start_date" gorm:"type:date;not null"`
	EndDate     time.Time     `json:"end_date" gorm:"type:date;not null"`
	Reason      string        `json:"reason"`
	CategoryIDs pq.Int64Array `json:"category_ids" gorm:"type:bigint[]"`
	Active      bool          `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (w MaintenanceWindow) Affects(categoryID int64) bool {
	if len(w.CategoryIDs) == 0 {
		return true
	}
	for _, id := range w.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// AddonService is an optional extra sold with a reservation (car wash, shuttle...).
type AddonService struct {
	ID     int64  `json:"id" gorm:"primaryKey"`
	Code   string `json:"code" gorm:"uniqueIndex;not null"`
	Name   string `json:"name"`
	Price  int64  `json:"price" gorm:"not null"`
	PerDay bool   `json:"per_day"`
	Active bool   `json:"active" gorm:"not null;default:true"`
}

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type PromoCode struct {
	ID            int64         `json:"id" gorm:"primaryKey"`
	Code          string        `json:"code" gorm:"uniqueIndex;not null"`
	DiscountType  string        `json:"discount_type" gorm:"not null"`
	DiscountValue int64         `json:"discount_value" gorm:"not null"`
	ValidFrom     null.Time     `json:"valid_from" gorm:"type:timestamptz"`
	ValidTo       null.Time     `json:"valid_to" gorm:"type:timestamptz"`
	MaxUsage      int           `json:"max_usage" gorm:"not null;default:0"`
	UsedCount     int           `json:"used_count" gorm:"not null;default:0"`
	CategoryIDs   pq.Int64Array `json:"category_ids" gorm:"type:bigint[]"`
	Active        bool          `json:"active" gorm:"not null;default:true"`
}

func (p PromoCode) AppliesTo(categoryID int64) bool {
	if len(p.CategoryIDs) == 0 {
		return true
	}
	for _, id := range p.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

type Reservation struct {
	ID           int64             `json:"id" gorm:"primaryKey"`
	Code         string            `json:"code" gorm:"uniqueIndex;not null"`
	CategoryID   int64             `json:"category_id" gorm:"not null;index:idx_reservation_window"`
	CheckIn      time.Time         `json:"check_in" gorm:"not null;index:idx_reservation_window"`
	CheckOut     time.Time         `json:"check_out" gorm:"not null;index:idx_reservation_window"`
	DriverName   string            `json:"driver_name" gorm:"not null"`
	DriverEmail  string            `json:"driver_email"`
	DriverPhone  string            `json:"driver_phone"`
	VehiclePlate string            `json:"vehicle_plate"`
	VehicleModel string            `json:"vehicle_model"`
	Passengers   int               `json:"passengers"`
	Luggage      int               `json:"luggage"`
	Addons       pq.StringArray    `json:"addons" gorm:"type:text[]"`
	TotalPrice   int64             `json:"total_price" gorm:"not null"`
	VIPCode      null.String       `json:"vip_code" gorm:"type:text"`
	PromoCode    null.String       `json:"promo_code" gorm:"type:text"`
	Status       ReservationStatus `json:"status" gorm:"type:text;not null;index"`
	Manual       bool              `json:"manual"`
	CreatedBy    null.String       `json:"created_by" gorm:"type:text"`
	Language     string            `json:"language"`
	CheckedInAt  null.Time         `json:"checked_in_at" gorm:"type:timestamptz"`
	CheckedOutAt null.Time         `json:"checked_out_at" gorm:"type:timestamptz"`
	CancelledAt  null.Time         `json:"cancelled_at" gorm:"type:timestamptz"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Overdue is a read-time classification: checked in and past check-out.
func (r Reservation) Overdue(now time.Time) bool {
	return r.Status == StatusCheckedIn && r.CheckOut.Before(now)
}

type ReservationFilter struct {
	Date       string // YYYY-MM-DD, matched against check-in
	CategoryID int64
	Status     ReservationStatus
	Limit      int
	Offset     int
}

type VIPProfile struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	CustomerRef string    `json:"customer_ref" gorm:"uniqueIndex;not null"`
	Phone       string    `json:"phone"`
	Code        string    `json:"code" gorm:"uniqueIndex;not null"`
	DiscountPct int       `json:"discount_pct" gorm:"not null"`
	IssuedYear  int       `json:"issued_year"`
	CreatedAt   time.Time `json:"created_at"`
}

type StaffRole string

const (
	RoleStaff StaffRole = "staff"
	RoleAdmin StaffRole = "admin"
)

type StaffAccount struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         StaffRole `json:"role" gorm:"type:text;not null;default:'staff'"`
	CreatedAt    time.Time `json:"created_at"`
}
