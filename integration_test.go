//go:build integration

package main_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dton04/BookingHotel-sub000/internal/application"
	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/booking"
	"github.com/Dton04/BookingHotel-sub000/internal/events"
	"github.com/Dton04/BookingHotel-sub000/internal/repository"
)

// TestPaymentSucceeded_ConfirmsBooking verifies that when the gateway
// publishes a payment.succeeded callback, the engine confirms the
// booking, posts loyalty points, and publishes booking.confirmed.
func TestPaymentSucceeded_ConfirmsBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	roomTypeID := seedRoomType(t, infra.DB, 5, 120_00)
	bookingID := seedPendingMobileBooking(t, infra.DB, roomTypeID, 360_00)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := events.PaymentCallbackEvent{
		BookingID:  bookingID,
		ChargeID:   "ch_mock_settled",
		Amount:     360_00,
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicPaymentEvents,
		"mock-gateway", events.PaymentSucceeded, evt)

	model := waitForBookingStatus(t, infra.DB, bookingID, "confirmed", "paid", 15*time.Second)
	assert.NotNil(t, model.ConfirmedAt, "confirmed_at should be set")

	// Points ledger: one earn entry keyed by the booking.
	var txn repository.TransactionModel
	require.Eventually(t, func() bool {
		return infra.DB.Where("booking_id = ?", bookingID).First(&txn).Error == nil
	}, 10*time.Second, 200*time.Millisecond, "points entry was not posted")
	assert.Equal(t, int64(360), txn.Points)
	assert.Equal(t, "earn", txn.Type)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingConfirmed, 15*time.Second)

	var confirmed events.BookingConfirmedEvent
	require.NoError(t, ce.ParseData(&confirmed))
	assert.Equal(t, bookingID, confirmed.BookingID)
	assert.Equal(t, int64(360_00), confirmed.NetAmount)
	assert.Equal(t, int64(360), confirmed.PointsEarned)
}

// TestPaymentFailed_CancelsBookingAndReleasesRooms verifies that a
// payment.failed callback cancels the pending booking and frees its
// reservation.
func TestPaymentFailed_CancelsBookingAndReleasesRooms(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	roomTypeID := seedRoomType(t, infra.DB, 5, 120_00)
	bookingID := seedPendingMobileBooking(t, infra.DB, roomTypeID, 360_00)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second)

	evt := events.PaymentCallbackEvent{
		BookingID:  bookingID,
		ChargeID:   "ch_mock_declined",
		Amount:     360_00,
		Reason:     "card declined",
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicPaymentEvents,
		"mock-gateway", events.PaymentFailed, evt)

	model := waitForBookingStatus(t, infra.DB, bookingID, "canceled", "pending", 15*time.Second)
	assert.Equal(t, "card declined", model.CancelReason)
	assert.NotNil(t, model.CanceledAt)

	// The reservation row must be gone so the rooms are sellable again.
	require.Eventually(t, func() bool {
		var count int64
		infra.DB.Model(&repository.ReservationModel{}).
			Where("booking_id = ?", bookingID).Count(&count)
		return count == 0
	}, 10*time.Second, 200*time.Millisecond, "reservation was not released")

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingCancelled, 15*time.Second)

	var cancelled events.BookingCancelledEvent
	require.NoError(t, ce.ParseData(&cancelled))
	assert.Equal(t, bookingID, cancelled.BookingID)
	assert.False(t, cancelled.Refunded)
}

// TestCreateBooking_EndToEnd exercises the full create flow against real
// storage: inventory is committed, the booking persists as pending, and
// booking.created is published.
func TestCreateBooking_EndToEnd(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	roomTypeID := seedRoomType(t, infra.DB, 2, 150_00)

	checkin := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	checkout := checkin.Add(48 * time.Hour)

	res, err := stack.Bookings.CreateBooking(context.Background(), createRequest(roomTypeID, checkin, checkout))
	require.NoError(t, err)
	require.NotNil(t, res.Booking)
	assert.Equal(t, int64(2*150_00), res.Booking.Amount())
	require.NotNil(t, res.Instructions)
	assert.NotEmpty(t, res.Instructions.RedirectURL, "gateway redirect expected for mobile payment")

	var count int64
	infra.DB.Model(&repository.ReservationModel{}).
		Where("booking_id = ?", res.Booking.ID()).Count(&count)
	assert.Equal(t, int64(1), count, "reservation should be committed")

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingCreated, 15*time.Second)
	var created events.BookingCreatedEvent
	require.NoError(t, ce.ParseData(&created))
	assert.Equal(t, res.Booking.ID(), created.BookingID)

	// A second identical party exhausts the two rooms; a third must be
	// rejected with a conflict, not overbooked.
	_, err = stack.Bookings.CreateBooking(context.Background(), createRequest(roomTypeID, checkin, checkout))
	require.NoError(t, err)
	_, err = stack.Bookings.CreateBooking(context.Background(), createRequest(roomTypeID, checkin, checkout))
	require.Error(t, err, "third booking should not fit two rooms")
}

// TestCounterLedger_ExtendReservation keeps the counter representation's
// error taxonomy aligned with interval mode: an unknown reservation is
// not-found, a non-later checkout is a validation error.
func TestCounterLedger_ExtendReservation(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	ledger := repository.NewUnitOfWork(infra.DB, repository.ModeCounter).Stores().Inventory

	roomTypeID := seedRoomType(t, infra.DB, 2, 120_00)
	bookingID := uuid.New()
	checkin := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	checkout := checkin.Add(24 * time.Hour)
	require.NoError(t, ledger.Reserve(context.Background(), roomTypeID, bookingID, checkin, checkout, 1))

	err := ledger.ExtendReservation(context.Background(), roomTypeID, uuid.New(), checkout.Add(24*time.Hour))
	assert.True(t, domain.IsNotFound(err), "unknown reservation should be not-found, got %v", err)

	err = ledger.ExtendReservation(context.Background(), roomTypeID, bookingID, checkout.Add(-time.Hour))
	assert.True(t, domain.IsValidation(err), "non-later checkout should be a validation error, got %v", err)

	require.NoError(t, ledger.ExtendReservation(context.Background(), roomTypeID, bookingID, checkout.Add(48*time.Hour)))
}

func createRequest(roomTypeID uuid.UUID, checkin, checkout time.Time) application.CreateBookingRequest {
	return application.CreateBookingRequest{
		RoomTypeID:    roomTypeID,
		GuestName:     "Minh Anh",
		GuestEmail:    fmt.Sprintf("guest-%s@example.com", uuid.New().String()[:8]),
		Checkin:       checkin,
		Checkout:      checkout,
		Adults:        2,
		PaymentMethod: booking.MethodMobile,
	}
}
