package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"greenpark/internal/db"
	"greenpark/internal/entities"
	"greenpark/internal/repository/memory"
	"greenpark/internal/service"
	"greenpark/internal/utils"
)

var testNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(key, msg).Error(0)
}

type mockAcker struct{ mock.Mock }

func (m *mockAcker) Ack(tag uint64, multiple bool) error { return m.Called(tag, multiple).Error(0) }
func (m *mockAcker) Nack(tag uint64, multiple, requeue bool) error {
	return m.Called(tag, multiple, requeue).Error(0)
}
func (m *mockAcker) Reject(tag uint64, requeue bool) error { return m.Called(tag, requeue).Error(0) }

func setup(t *testing.T) (*Dispatcher, *service.AdminService, int64) {
	t.Helper()
	store := memory.NewStore(time.UTC)
	clock := utils.NewFixedClock(testNow)
	cache := service.NewCatalogCache(store.Catalog(), clock)
	svc := service.NewReservationService(service.ReservationDeps{
		Catalog:            cache,
		CatalogRepo:        store.Catalog(),
		Reservations:       store.Reservations(),
		Clock:              clock,
		Location:           time.UTC,
		CancellationCutoff: 12 * time.Hour,
	})
	admin := service.NewAdminService(store.Catalog(), store.Reservations(), cache, clock)
	cat := &db.ParkingCategory{Name: "Open air", Capacity: 1, BasePricePerDay: 900, Active: true}
	require.NoError(t, admin.CreateCategory(context.Background(), cat))
	return NewDispatcher(svc), admin, cat.ID
}

func command(t *testing.T, typ CommandType, payload interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	body, err := json.Marshal(CommandEnvelope{Type: typ, Payload: raw})
	require.NoError(t, err)
	return body
}

func reservationPayload(categoryID int64) entities.ReservationRequest {
	return entities.ReservationRequest{
		CategoryID:   categoryID,
		CheckIn:      time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		CheckOut:     time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC),
		DriverName:   "Ana",
		DriverEmail:  "ana@example.com",
		DriverPhone:  "3331234567",
		VehiclePlate: "MQ1",
	}
}

func TestDispatcherReservationCommands(t *testing.T) {
	d, _, catID := setup(t)
	ctx := context.Background()

	resp := d.Handle(ctx, command(t, CommandCreateReservation, reservationPayload(catID)))
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, "CreateReservationResponse", resp.Type)
	var res entities.ReservationResponse
	require.NoError(t, json.Unmarshal(resp.Payload, &res))
	assert.Equal(t, "20250301MQ1", res.Code)
	assert.Equal(t, int64(900), res.TotalPrice)

	resp = d.Handle(ctx, command(t, CommandCreateReservation, reservationPayload(catID)))
	assert.False(t, resp.OK)
	assert.Equal(t, "capacity", resp.Kind)

	resp = d.Handle(ctx, command(t, CommandCheckAvailability, CheckAvailabilityPayload{
		CategoryID: catID, CheckIn: res.CheckIn, CheckOut: res.CheckOut,
	}))
	require.True(t, resp.OK)
	var avail entities.AvailabilityResponse
	require.NoError(t, json.Unmarshal(resp.Payload, &avail))
	assert.False(t, avail.Available)
	assert.Equal(t, entities.ReasonCapacity, avail.Reason)

	resp = d.Handle(ctx, command(t, CommandTransitionStatus, TransitionStatusPayload{ReservationID: res.ID, Status: "checked_in"}))
	assert.Equal(t, "validation", resp.Kind)
	resp = d.Handle(ctx, command(t, CommandTransitionStatus, TransitionStatusPayload{ReservationID: res.ID, Status: "checked_in", StaffRef: "gate-2"}))
	require.True(t, resp.OK, resp.Error)

	resp = d.Handle(ctx, command(t, CommandCancelReservation, CancelReservationPayload{Code: res.Code, Email: "ana@example.com"}))
	assert.Equal(t, "forbidden", resp.Kind)
}

func TestDispatcherCancelRequiresOwnerEmail(t *testing.T) {
	d, _, catID := setup(t)
	ctx := context.Background()

	resp := d.Handle(ctx, command(t, CommandCreateReservation, reservationPayload(catID)))
	require.True(t, resp.OK, resp.Error)
	var res entities.ReservationResponse
	require.NoError(t, json.Unmarshal(resp.Payload, &res))

	resp = d.Handle(ctx, command(t, CommandCancelReservation, CancelReservationPayload{Code: res.Code}))
	assert.False(t, resp.OK)
	assert.Equal(t, "validation", resp.Kind)

	resp = d.Handle(ctx, command(t, CommandCancelReservation, CancelReservationPayload{Code: res.Code, Email: "intruder@example.com"}))
	assert.False(t, resp.OK)
	assert.Equal(t, "not_found", resp.Kind)

	resp = d.Handle(ctx, command(t, CommandCheckAvailability, CheckAvailabilityPayload{
		CategoryID: catID, CheckIn: res.CheckIn, CheckOut: res.CheckOut,
	}))
	require.True(t, resp.OK)
	var avail entities.AvailabilityResponse
	require.NoError(t, json.Unmarshal(resp.Payload, &avail))
	assert.Equal(t, 0, avail.AvailableCount)

	resp = d.Handle(ctx, command(t, CommandCancelReservation, CancelReservationPayload{Code: res.Code, Email: "ana@example.com"}))
	require.True(t, resp.OK, resp.Error)
	var cancelled entities.ReservationResponse
	require.NoError(t, json.Unmarshal(resp.Payload, &cancelled))
	assert.Equal(t, string(db.StatusCancelled), cancelled.Status)
}

func TestDispatcherMaintenanceConflictCarriesWindows(t *testing.T) {
	d, admin, catID := setup(t)
	require.NoError(t, admin.CreateMaintenanceWindow(context.Background(), &db.MaintenanceWindow{
		StartDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Reason:    "resurfacing",
		Active:    true,
	}))

	resp := d.Handle(context.Background(), command(t, CommandQuotePrice, entities.QuoteRequest{
		CategoryID: catID,
		CheckIn:    time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC),
	}))
	assert.Equal(t, "maintenance_conflict", resp.Kind)
	var windows []entities.MaintenanceWindowInfo
	require.NoError(t, json.Unmarshal(resp.Payload, &windows))
	require.Len(t, windows, 1)
	assert.Equal(t, "resurfacing", windows[0].Reason)
}

func TestDispatcherRejectsMalformedCommands(t *testing.T) {
	d, _, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		body []byte
	}{
		{"not json", []byte("{")},
		{"unknown type", []byte(`{"type":"Teleport","payload":{}}`)},
		{"missing payload", []byte(`{"type":"QuotePrice"}`)},
		{"bad payload", []byte(`{"type":"QuotePrice","payload":"x"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := d.Handle(ctx, tt.body)
			assert.False(t, resp.OK)
			assert.Equal(t, "validation", resp.Kind)
			assert.Equal(t, "Error", resp.Type)
		})
	}
}

func TestHandleDeliveryRepliesAndAcks(t *testing.T) {
	d, _, catID := setup(t)
	acker := &mockAcker{}
	acker.On("Ack", uint64(7), false).Return(nil).Twice()
	pub := &mockPublisher{}
	pub.On("PublishWithContext", "replies", mock.MatchedBy(func(msg amqp.Publishing) bool {
		var resp Response
		return json.Unmarshal(msg.Body, &resp) == nil && resp.OK && msg.CorrelationId == "corr-1" && resp.CorrelationID == "corr-1"
	})).Return(nil).Once()

	d.HandleDelivery(context.Background(), amqp.Delivery{
		Acknowledger:  acker,
		DeliveryTag:   7,
		ReplyTo:       "replies",
		CorrelationId: "corr-1",
		Body:          command(t, CommandCreateReservation, reservationPayload(catID)),
	}, pub)

	// Fire-and-forget: no reply queue, still acked.
	d.HandleDelivery(context.Background(), amqp.Delivery{Acknowledger: acker, DeliveryTag: 7, Body: []byte("{")}, pub)

	acker.AssertExpectations(t)
	pub.AssertExpectations(t)
}
