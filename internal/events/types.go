package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types published on booking.events.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingExpired   = "booking.expired"
)

// Event types consumed from payment.events (gateway callbacks).
const (
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"
)

// BookingCreatedEvent announces a new pending booking.
type BookingCreatedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	RoomTypeID    uuid.UUID `json:"room_type_id"`
	HotelID       uuid.UUID `json:"hotel_id"`
	GuestEmail    string    `json:"guest_email"`
	Checkin       time.Time `json:"checkin"`
	Checkout      time.Time `json:"checkout"`
	Amount        int64     `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent announces a confirmed, paid booking.
type BookingConfirmedEvent struct {
	BookingID    uuid.UUID `json:"booking_id"`
	GuestEmail   string    `json:"guest_email"`
	NetAmount    int64     `json:"net_amount"`
	PointsEarned int64     `json:"points_earned"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// BookingCancelledEvent announces a cancellation (guest or expiry).
type BookingCancelledEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reason     string    `json:"reason"`
	Refunded   bool      `json:"refunded"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentCallbackEvent is the gateway's asynchronous settlement notice.
type PaymentCallbackEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ChargeID   string    `json:"charge_id"`
	Amount     int64     `json:"amount"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
