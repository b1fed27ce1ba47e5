package mq

import (
	"encoding/json"
	"time"
)

// CommandType names a command sent to the booking queue.
type CommandType string

const (
	CommandCheckAvailability CommandType = "CheckAvailability"
	CommandQuotePrice        CommandType = "QuotePrice"
	CommandCreateReservation CommandType = "CreateReservation"
	CommandCancelReservation CommandType = "CancelReservation"
	CommandTransitionStatus  CommandType = "TransitionStatus"
)

type CommandEnvelope struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Request payloads

type CheckAvailabilityPayload struct {
	CategoryID int64     `json:"category_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
}

type CancelReservationPayload struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}

// TransitionStatusPayload is sent by on-site systems (gate readers, kiosks)
// acting as a staff member.
type TransitionStatusPayload struct {
	ReservationID int64  `json:"reservation_id"`
	Status        string `json:"status"`
	StaffRef      string `json:"staff_ref"`
}

// Response envelope

type Response struct {
	OK            bool            `json:"ok"`
	Error         string          `json:"error,omitempty"`
	Kind          string          `json:"kind,omitempty"`
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlation_id"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}
