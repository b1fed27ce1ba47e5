// Package payment hands reservation totals to Stripe Checkout.
package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"greenpark/internal/db"
)

// MetadataReservationCode is the checkout session metadata key holding the
// booking code, read back by the webhook.
const MetadataReservationCode = "reservation_code"

type CheckoutSession struct {
	ID  string
	URL string
}

type Checkout interface {
	CreateCheckoutSession(ctx context.Context, res db.Reservation, description string) (*CheckoutSession, error)
}

type StripeCheckout struct {
	currency   string
	successURL string
	cancelURL  string
}

// NewStripeCheckout returns nil when no secret key is configured.
func NewStripeCheckout(secretKey, currency, successURL, cancelURL string) *StripeCheckout {
	if secretKey == "" {
		return nil
	}
	stripe.Key = secretKey
	return &StripeCheckout{currency: currency, successURL: successURL, cancelURL: cancelURL}
}

func (s *StripeCheckout) params(ctx context.Context, res db.Reservation, description string) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					UnitAmount: stripe.Int64(res.TotalPrice),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(res.Code),
	}
	if res.DriverEmail != "" {
		params.CustomerEmail = stripe.String(res.DriverEmail)
	}
	params.AddMetadata(MetadataReservationCode, res.Code)
	params.Context = ctx
	return params
}

// CreateCheckoutSession opens a one-line checkout for the reservation total.
func (s *StripeCheckout) CreateCheckoutSession(ctx context.Context, res db.Reservation, description string) (*CheckoutSession, error) {
	if res.TotalPrice <= 0 {
		return nil, fmt.Errorf("reservation %s has nothing to pay", res.Code)
	}
	sess, err := session.New(s.params(ctx, res, description))
	if err != nil {
		return nil, fmt.Errorf("create checkout session for %s: %w", res.Code, err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}
