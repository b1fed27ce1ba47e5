package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"greenpark/internal/entities"
	"greenpark/internal/payment"
	"greenpark/internal/service"
)

type UserReservationHandler struct {
	Service  *service.ReservationService
	Admin    *service.AdminService
	Checkout payment.Checkout
}

// NewUserReservationHandler wires the public endpoints. checkout may be nil,
// in which case reservations are created without a payment hand-off.
func NewUserReservationHandler(svc *service.ReservationService, admin *service.AdminService, checkout payment.Checkout) *UserReservationHandler {
	return &UserReservationHandler{Service: svc, Admin: admin, Checkout: checkout}
}

func (h *UserReservationHandler) ListPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.Admin.GetPrices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

func (h *UserReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req entities.QuoteRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.Service.CheckAvailability(r.Context(), req.CategoryID, req.CheckIn, req.CheckOut)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserReservationHandler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	var req entities.QuoteRequest
	if !decode(w, r, &req) {
		return
	}
	quote, err := h.Service.QuotePrice(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *UserReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.ReservationRequest
	if !decode(w, r, &req) {
		return
	}
	req.Manual = false
	res, err := h.Service.CreateReservation(r.Context(), &req, service.Actor{Role: service.ActorCustomer})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := entities.ReservationCreatedResponse{Reservation: service.ToResponse(*res, h.Service.Now())}
	if h.Checkout != nil && res.TotalPrice > 0 {
		sess, err := h.Checkout.CreateCheckoutSession(r.Context(), *res, "Parking reservation "+res.Code)
		if err != nil {
			// The reservation stays pending; staff can still collect payment at the desk.
			log.Printf("api: checkout session for reservation %s failed: %v", res.Code, err)
		} else {
			resp.CheckoutURL = sess.URL
			resp.SessionID = sess.ID
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *UserReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		badRequest(w, "email is required")
		return
	}
	res, err := h.Service.GetReservationByCode(r.Context(), mux.Vars(r)["code"], email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToResponse(*res, h.Service.Now()))
}

func (h *UserReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		badRequest(w, "email is required")
		return
	}
	res, err := h.Service.CancelByCode(r.Context(), mux.Vars(r)["code"], email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToResponse(*res, h.Service.Now()))
}
