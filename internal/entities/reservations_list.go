package entities

import "time"

type ReservationResponse struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	CategoryID   int64      `json:"category_id"`
	CheckIn      time.Time  `json:"check_in"`
	CheckOut     time.Time  `json:"check_out"`
	DriverName   string     `json:"driver_name"`
	DriverEmail  string     `json:"driver_email,omitempty"`
	DriverPhone  string     `json:"driver_phone,omitempty"`
	VehiclePlate string     `json:"vehicle_plate"`
	VehicleModel string     `json:"vehicle_model,omitempty"`
	Passengers   int        `json:"passengers"`
	Luggage      int        `json:"luggage"`
	Addons       []string   `json:"addons,omitempty"`
	TotalPrice   int64      `json:"total_price"`
	VIPCode      string     `json:"vip_code,omitempty"`
	PromoCode    string     `json:"promo_code,omitempty"`
	Status       string     `json:"status"`
	Overdue      bool       `json:"overdue"`
	Manual       bool       `json:"manual"`
	CreatedBy    string     `json:"created_by,omitempty"`
	Language     string     `json:"language,omitempty"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type ReservationsList struct {
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
	Reservations []ReservationResponse `json:"reservations"`
}
