package booking

import (
	"net/mail"
	"strings"
	"time"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	"github.com/google/uuid"
)

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCanceled  Status = "canceled"
)

// PaymentStatus tracks payment independently of the booking lifecycle.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod is how the guest intends to pay.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMobile       PaymentMethod = "mobile"
	MethodCredit       PaymentMethod = "credit"
)

const (
	// BankTransferDeadline is how long a bank-transfer booking may stay
	// unpaid before it is treated as expired.
	BankTransferDeadline = 5 * time.Minute

	// CancellationWindow is how long after creation the normal cancel
	// path remains open.
	CancellationWindow = 24 * time.Hour
)

// GuestInfo is the contact recorded on a booking.
type GuestInfo struct {
	Name  string
	Email string
	Phone string
}

// AppliedDiscount records one discount consumed by this booking.
type AppliedDiscount struct {
	DiscountID uuid.UUID
	Code       string
	Amount     int64
}

// Booking is the aggregate root for a single reservation. All mutation
// goes through the transition methods; repositories rebuild instances
// with Reconstitute.
type Booking struct {
	id              uuid.UUID
	roomTypeID      uuid.UUID
	hotelID         uuid.UUID
	guest           GuestInfo
	checkin         time.Time
	checkout        time.Time
	adults          int
	children        int
	roomsBooked     int
	amount          int64
	voucherDiscount int64
	applied         []AppliedDiscount
	paymentMethod   PaymentMethod
	status          Status
	paymentStatus   PaymentStatus
	paymentDeadline *time.Time
	gatewayChargeID string
	cancelReason    string
	confirmedAt     *time.Time
	canceledAt      *time.Time
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// NewBooking validates the request and creates a pending booking.
// amount is the gross price (per-night price * nights * rooms) in minor
// currency units; the caller computes it from catalog data.
func NewBooking(
	roomTypeID, hotelID uuid.UUID,
	guest GuestInfo,
	checkin, checkout time.Time,
	adults, children, roomsBooked int,
	method PaymentMethod,
	amount int64,
) (*Booking, error) {
	now := time.Now().UTC()

	guest.Name = strings.TrimSpace(guest.Name)
	if guest.Name == "" {
		return nil, domain.NewValidationError("guest name is required")
	}
	if _, err := mail.ParseAddress(guest.Email); err != nil {
		return nil, domain.NewValidationError("guest email %q is invalid", guest.Email)
	}
	if !checkin.Before(checkout) {
		return nil, domain.NewValidationError("checkin must be before checkout")
	}
	if checkin.Before(now.Truncate(24 * time.Hour)) {
		return nil, domain.NewValidationError("checkin must not be in the past")
	}
	if adults < 1 {
		return nil, domain.NewValidationError("at least one adult is required")
	}
	if roomsBooked < 1 {
		return nil, domain.NewValidationError("at least one room is required")
	}
	switch method {
	case MethodCash, MethodBankTransfer, MethodMobile, MethodCredit:
	default:
		return nil, domain.NewValidationError("invalid payment method: %s", method)
	}
	if amount < 0 {
		return nil, domain.NewValidationError("amount must not be negative")
	}

	b := &Booking{
		id:            uuid.New(),
		roomTypeID:    roomTypeID,
		hotelID:       hotelID,
		guest:         guest,
		checkin:       checkin,
		checkout:      checkout,
		adults:        adults,
		children:      children,
		roomsBooked:   roomsBooked,
		amount:        amount,
		paymentMethod: method,
		status:        StatusPending,
		paymentStatus: PaymentPending,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}

	// Only bank transfers carry a payment deadline; cash waits for staff
	// confirmation at check-in and card/mobile settle via the gateway.
	if method == MethodBankTransfer {
		deadline := now.Add(BankTransferDeadline)
		b.paymentDeadline = &deadline
	}

	return b, nil
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID          { return b.id }
func (b *Booking) RoomTypeID() uuid.UUID  { return b.roomTypeID }
func (b *Booking) HotelID() uuid.UUID     { return b.hotelID }
func (b *Booking) Guest() GuestInfo       { return b.guest }
func (b *Booking) Checkin() time.Time     { return b.checkin }
func (b *Booking) Checkout() time.Time    { return b.checkout }
func (b *Booking) Adults() int            { return b.adults }
func (b *Booking) Children() int          { return b.children }
func (b *Booking) RoomsBooked() int       { return b.roomsBooked }
func (b *Booking) Amount() int64          { return b.amount }
func (b *Booking) VoucherDiscount() int64 { return b.voucherDiscount }
func (b *Booking) AppliedDiscounts() []AppliedDiscount {
	out := make([]AppliedDiscount, len(b.applied))
	copy(out, b.applied)
	return out
}
func (b *Booking) PaymentMethod() PaymentMethod { return b.paymentMethod }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) PaymentDeadline() *time.Time  { return b.paymentDeadline }
func (b *Booking) GatewayChargeID() string      { return b.gatewayChargeID }
func (b *Booking) CancelReason() string         { return b.cancelReason }
func (b *Booking) ConfirmedAt() *time.Time      { return b.confirmedAt }
func (b *Booking) CanceledAt() *time.Time       { return b.canceledAt }
func (b *Booking) Version() int64               { return b.version }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }

// Nights counts the nights in [checkin, checkout) as the calendar-day
// difference, so a 14:00 check-in against a 10:00 next-day check-out is
// one night, not zero. A stay is never shorter than one night.
func Nights(checkin, checkout time.Time) int {
	in := time.Date(checkin.Year(), checkin.Month(), checkin.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkout.Year(), checkout.Month(), checkout.Day(), 0, 0, 0, 0, time.UTC)
	n := int(out.Sub(in).Hours() / 24)
	if n < 1 {
		n = 1
	}
	return n
}

// Nights returns the length of stay for the interval [checkin, checkout).
func (b *Booking) Nights() int {
	return Nights(b.checkin, b.checkout)
}

// NetAmount is the payable amount after discounts, never negative.
func (b *Booking) NetAmount() int64 {
	net := b.amount - b.voucherDiscount
	if net < 0 {
		net = 0
	}
	return net
}

// IsPaymentExpired reports whether the bank-transfer deadline has lapsed
// while the booking is still unpaid. Expiry is evaluated lazily on read;
// there is no server-side timer.
func (b *Booking) IsPaymentExpired(now time.Time) bool {
	return b.paymentDeadline != nil &&
		b.paymentStatus == PaymentPending &&
		now.After(*b.paymentDeadline)
}

// --- Transitions ---

// Confirm moves pending -> confirmed and marks the payment as paid.
func (b *Booking) Confirm(now time.Time) error {
	if b.status == StatusCanceled {
		return domain.NewInvalidStateError(string(StatusCanceled), string(StatusConfirmed))
	}
	if b.status == StatusConfirmed {
		return domain.NewConflictError("booking %s is already confirmed", b.id)
	}
	if b.IsPaymentExpired(now) {
		return domain.NewConflictError("payment deadline for booking %s has expired", b.id)
	}
	b.status = StatusConfirmed
	b.paymentStatus = PaymentPaid
	t := now
	b.confirmedAt = &t
	b.updatedAt = now
	return nil
}

// Cancel moves pending|confirmed -> canceled. A confirmed and paid
// booking must go through the admin refund path instead, and the normal
// path closes 24 hours after creation.
func (b *Booking) Cancel(now time.Time, reason string) error {
	if b.status == StatusCanceled {
		return domain.NewConflictError("booking %s is already canceled", b.id)
	}
	if b.status == StatusConfirmed && b.paymentStatus == PaymentPaid {
		return domain.NewConflictError("booking %s is confirmed and paid; refund it through the admin path", b.id)
	}
	if now.Sub(b.createdAt) > CancellationWindow {
		return domain.NewConflictError("cancellation window for booking %s has closed", b.id)
	}
	if b.paymentStatus == PaymentPaid {
		b.paymentStatus = PaymentRefunded
	}
	b.status = StatusCanceled
	b.cancelReason = reason
	t := now
	b.canceledAt = &t
	b.updatedAt = now
	return nil
}

// Expire cancels an unpaid bank-transfer booking whose deadline lapsed.
func (b *Booking) Expire(now time.Time) error {
	if !b.IsPaymentExpired(now) {
		return domain.NewConflictError("booking %s has not expired", b.id)
	}
	if b.status == StatusCanceled {
		return domain.NewConflictError("booking %s is already canceled", b.id)
	}
	b.status = StatusCanceled
	b.cancelReason = "payment deadline expired"
	t := now
	b.canceledAt = &t
	b.updatedAt = now
	return nil
}

// ExtendStay pushes checkout later. The caller has already verified the
// added tail is free and recomputed the gross amount.
func (b *Booking) ExtendStay(newCheckout time.Time, newAmount int64) error {
	if b.status == StatusCanceled {
		return domain.NewInvalidStateError(string(StatusCanceled), "extended")
	}
	if !newCheckout.After(b.checkout) {
		return domain.NewValidationError("new checkout must be after the current checkout")
	}
	b.checkout = newCheckout
	b.amount = newAmount
	b.updatedAt = time.Now().UTC()
	return nil
}

// ReassignRoom swaps the booking onto a different room-type. Inventory
// for the old and the new room-type is exchanged by the caller in the
// same transaction.
func (b *Booking) ReassignRoom(newRoomTypeID uuid.UUID, newAmount int64) error {
	if b.status == StatusCanceled {
		return domain.NewInvalidStateError(string(StatusCanceled), "reassigned")
	}
	if newRoomTypeID == b.roomTypeID {
		return domain.NewValidationError("booking already occupies this room type")
	}
	b.roomTypeID = newRoomTypeID
	b.amount = newAmount
	b.updatedAt = time.Now().UTC()
	return nil
}

// ApplyDiscounts records the outcome of a discount-engine run. Usage
// consumption is committed by the caller in the same transaction.
func (b *Booking) ApplyDiscounts(total int64, applied []AppliedDiscount) error {
	if b.status != StatusPending {
		return domain.NewConflictError("discounts can only be applied to a pending booking")
	}
	if len(b.applied) > 0 {
		return domain.NewConflictError("booking %s already has discounts applied", b.id)
	}
	b.voucherDiscount = total
	b.applied = applied
	b.updatedAt = time.Now().UTC()
	return nil
}

// AttachCharge records the gateway charge reference created for a
// mobile/card booking.
func (b *Booking) AttachCharge(chargeID string) {
	b.gatewayChargeID = chargeID
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// Reconstitute rebuilds a Booking from persisted data.
func Reconstitute(
	id, roomTypeID, hotelID uuid.UUID,
	guest GuestInfo,
	checkin, checkout time.Time,
	adults, children, roomsBooked int,
	amount, voucherDiscount int64,
	applied []AppliedDiscount,
	method PaymentMethod,
	status Status,
	paymentStatus PaymentStatus,
	paymentDeadline *time.Time,
	gatewayChargeID string,
	cancelReason string,
	confirmedAt, canceledAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		roomTypeID:      roomTypeID,
		hotelID:         hotelID,
		guest:           guest,
		checkin:         checkin,
		checkout:        checkout,
		adults:          adults,
		children:        children,
		roomsBooked:     roomsBooked,
		amount:          amount,
		voucherDiscount: voucherDiscount,
		applied:         applied,
		paymentMethod:   method,
		status:          status,
		paymentStatus:   paymentStatus,
		paymentDeadline: paymentDeadline,
		gatewayChargeID: gatewayChargeID,
		cancelReason:    cancelReason,
		confirmedAt:     confirmedAt,
		canceledAt:      canceledAt,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}
