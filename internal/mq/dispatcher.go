// Package mq exposes the reservation engine over a RabbitMQ command queue.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"greenpark/internal/db"
	"greenpark/internal/entities"
	apperrors "greenpark/internal/errors"
	"greenpark/internal/service"
)

const commandTimeout = 5 * time.Second

// Publisher is the part of *amqp.Channel used to send replies.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Dispatcher struct {
	svc *service.ReservationService
}

func NewDispatcher(svc *service.ReservationService) *Dispatcher {
	return &Dispatcher{svc: svc}
}

// Handle runs one command and always returns a response.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) Response {
	var env CommandEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Printf("mq: invalid command envelope: %v", err)
		return errorResponse(apperrors.Validation("invalid command format: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var (
		result interface{}
		err    error
	)
	switch env.Type {
	case CommandCheckAvailability:
		var req CheckAvailabilityPayload
		if err = decodePayload(env.Payload, &req); err == nil {
			result, err = d.svc.CheckAvailability(ctx, req.CategoryID, req.CheckIn, req.CheckOut)
		}
	case CommandQuotePrice:
		var req entities.QuoteRequest
		if err = decodePayload(env.Payload, &req); err == nil {
			result, err = d.svc.QuotePrice(ctx, req)
		}
	case CommandCreateReservation:
		var req entities.ReservationRequest
		if err = decodePayload(env.Payload, &req); err == nil {
			req.Manual = false
			var res *db.Reservation
			if res, err = d.svc.CreateReservation(ctx, &req, service.Actor{Role: service.ActorCustomer}); err == nil {
				result = service.ToResponse(*res, d.svc.Now())
			}
		}
	case CommandCancelReservation:
		var req CancelReservationPayload
		if err = decodePayload(env.Payload, &req); err == nil {
			var res *db.Reservation
			if res, err = d.svc.CancelByCode(ctx, req.Code, req.Email); err == nil {
				result = service.ToResponse(*res, d.svc.Now())
			}
		}
	case CommandTransitionStatus:
		var req TransitionStatusPayload
		if err = decodePayload(env.Payload, &req); err == nil {
			err = d.transition(ctx, req, &result)
		}
	default:
		log.Printf("mq: unknown command type: %s", env.Type)
		err = apperrors.Validation("unknown command type: %s", env.Type)
	}

	if err != nil {
		return errorResponse(err)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("mq: failed to marshal %s result: %v", env.Type, err)
		return errorResponse(err)
	}
	return Response{OK: true, Type: string(env.Type) + "Response", Payload: payload}
}

func (d *Dispatcher) transition(ctx context.Context, req TransitionStatusPayload, result *interface{}) error {
	if strings.TrimSpace(req.StaffRef) == "" {
		return apperrors.Validation("staff_ref is required")
	}
	actor := service.Actor{Role: service.ActorStaff, Ref: req.StaffRef}
	res, err := d.svc.TransitionStatus(ctx, req.ReservationID, db.ReservationStatus(req.Status), actor)
	if err != nil {
		return err
	}
	*result = service.ToResponse(*res, d.svc.Now())
	return nil
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return apperrors.Validation("payload is required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.Validation("invalid payload: %v", err)
	}
	return nil
}

// errorResponse shares the HTTP masking rules: internal failures are logged
// and reported without detail.
func errorResponse(err error) Response {
	httpErr := apperrors.ToHTTP(err)
	if httpErr.Kind == apperrors.KindUnknown || httpErr.Kind == apperrors.KindPricingConfiguration || httpErr.Kind == apperrors.KindIdentityCollision {
		log.Printf("mq: internal error: %v", err)
	}
	resp := Response{OK: false, Error: httpErr.Message, Kind: string(httpErr.Kind), Type: "Error"}
	var mce *service.MaintenanceConflictError
	if errors.As(err, &mce) {
		resp.Payload, _ = json.Marshal(service.WindowInfos(mce.Windows))
	}
	return resp
}

// HandleDelivery runs a delivery, replies when ReplyTo is set and acks it.
// Every delivery is acked so a bad command is never redelivered forever.
func (d *Dispatcher) HandleDelivery(ctx context.Context, msg amqp.Delivery, pub Publisher) {
	defer func() {
		if err := msg.Ack(false); err != nil {
			log.Printf("mq: failed to ack message: %v", err)
		}
	}()

	resp := d.Handle(ctx, msg.Body)
	resp.CorrelationID = msg.CorrelationId
	if resp.CorrelationID == "" {
		resp.CorrelationID = uuid.NewString()
	}
	if msg.ReplyTo == "" {
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		log.Printf("mq: failed to marshal response: %v", err)
		return
	}
	err = pub.PublishWithContext(ctx, "", msg.ReplyTo, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: resp.CorrelationID,
		Body:          body,
	})
	if err != nil {
		log.Printf("mq: failed to publish response: %v", err)
	}
}

// Consume declares the queue and dispatches deliveries until ctx is done or
// the channel closes.
func (d *Dispatcher) Consume(ctx context.Context, ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	log.Printf("mq: worker listening on queue %s", queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			d.HandleDelivery(ctx, msg, ch)
		}
	}
}
