package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"greenpark/internal/db"
	apperrors "greenpark/internal/errors"
	"greenpark/internal/payment"
	"greenpark/internal/service"
)

// stripeActor cancels reservations whose checkout expired unpaid.
var stripeActor = service.Actor{Role: service.ActorStaff, Ref: "stripe"}

type StripeWebhookHandler struct {
	StripeSecret       string
	reservationService *service.ReservationService
}

func NewStripeWebhookHandler(stripeSecret string, reservationService *service.ReservationService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		StripeSecret:       stripeSecret,
		reservationService: reservationService,
	}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.StripeSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	h.handleEvent(w, r, event)
}

func (h *StripeWebhookHandler) handleEvent(w http.ResponseWriter, r *http.Request, event stripe.Event) {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("Error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		code := sess.Metadata[payment.MetadataReservationCode]
		if code == "" {
			log.Printf("No reservation code in %s for session %s", event.Type, sess.ID)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		res, err := h.reservationService.FindByCode(r.Context(), code)
		if err != nil {
			log.Printf("Webhook %s: reservation %s: %v", event.Type, code, err)
			w.WriteHeader(http.StatusOK)
			return
		}

		if event.Type == stripe.EventTypeCheckoutSessionCompleted {
			log.Printf("Payment received for reservation %s (session %s)", res.Code, sess.ID)
			break
		}
		if res.Status != db.StatusPending {
			break
		}
		if _, err := h.reservationService.TransitionStatus(r.Context(), res.ID, db.StatusCancelled, stripeActor); err != nil {
			if apperrors.KindOf(err) == apperrors.KindUnknown {
				log.Printf("DB error: %v", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			log.Printf("Could not cancel unpaid reservation %s: %v", res.Code, err)
			break
		}
		log.Printf("Reservation %s cancelled: checkout session %s expired unpaid", res.Code, sess.ID)
	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
