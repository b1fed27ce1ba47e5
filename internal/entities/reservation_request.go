package entities

import "time"

type ReservationRequest struct {
	CategoryID   int64     `json:"category_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	DriverName   string    `json:"driver_name"`
	DriverEmail  string    `json:"driver_email"`
	DriverPhone  string    `json:"driver_phone"`
	VehiclePlate string    `json:"vehicle_plate"`
	VehicleModel string    `json:"vehicle_model"`
	Passengers   int       `json:"passengers"`
	Luggage      int       `json:"luggage"`
	Addons       []string  `json:"addons,omitempty"`
	VIPCode      string    `json:"vip_code,omitempty"`
	PromoCode    string    `json:"promo_code,omitempty"`
	Manual       bool      `json:"manual,omitempty"`
	Language     string    `json:"language,omitempty"`
}

type QuoteRequest struct {
	CategoryID int64     `json:"category_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Addons     []string  `json:"addons,omitempty"`
	VIPCode    string    `json:"vip_code,omitempty"`
	PromoCode  string    `json:"promo_code,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type ReservationCreatedResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	CheckoutURL string              `json:"checkout_url,omitempty"`
	SessionID   string              `json:"session_id,omitempty"`
}
