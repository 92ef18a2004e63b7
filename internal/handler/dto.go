package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/Dton04/BookingHotel-sub000/internal/application"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/booking"
)

// BookingDTO is the wire shape of a booking.
type BookingDTO struct {
	ID              uuid.UUID             `json:"id"`
	RoomTypeID      uuid.UUID             `json:"room_type_id"`
	HotelID         uuid.UUID             `json:"hotel_id"`
	GuestName       string                `json:"guest_name"`
	GuestEmail      string                `json:"guest_email"`
	GuestPhone      string                `json:"guest_phone,omitempty"`
	Checkin         time.Time             `json:"checkin"`
	Checkout        time.Time             `json:"checkout"`
	Nights          int                   `json:"nights"`
	Adults          int                   `json:"adults"`
	Children        int                   `json:"children"`
	RoomsBooked     int                   `json:"rooms_booked"`
	Amount          int64                 `json:"amount"`
	VoucherDiscount int64                 `json:"voucher_discount"`
	NetAmount       int64                 `json:"net_amount"`
	AppliedVouchers []AppliedDTO          `json:"applied_vouchers,omitempty"`
	PaymentMethod   booking.PaymentMethod `json:"payment_method"`
	Status          booking.Status        `json:"status"`
	PaymentStatus   booking.PaymentStatus `json:"payment_status"`
	PaymentDeadline *time.Time            `json:"payment_deadline,omitempty"`
	CancelReason    string                `json:"cancel_reason,omitempty"`
	ConfirmedAt     *time.Time            `json:"confirmed_at,omitempty"`
	CanceledAt      *time.Time            `json:"canceled_at,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// AppliedDTO is one accepted discount on a booking.
type AppliedDTO struct {
	DiscountID uuid.UUID `json:"discount_id"`
	Code       string    `json:"code,omitempty"`
	Amount     int64     `json:"amount"`
}

func toBookingDTO(b *booking.Booking) BookingDTO {
	applied := make([]AppliedDTO, 0, len(b.AppliedDiscounts()))
	for _, a := range b.AppliedDiscounts() {
		applied = append(applied, AppliedDTO{
			DiscountID: a.DiscountID,
			Code:       a.Code,
			Amount:     a.Amount,
		})
	}
	return BookingDTO{
		ID:              b.ID(),
		RoomTypeID:      b.RoomTypeID(),
		HotelID:         b.HotelID(),
		GuestName:       b.Guest().Name,
		GuestEmail:      b.Guest().Email,
		GuestPhone:      b.Guest().Phone,
		Checkin:         b.Checkin(),
		Checkout:        b.Checkout(),
		Nights:          b.Nights(),
		Adults:          b.Adults(),
		Children:        b.Children(),
		RoomsBooked:     b.RoomsBooked(),
		Amount:          b.Amount(),
		VoucherDiscount: b.VoucherDiscount(),
		NetAmount:       b.NetAmount(),
		AppliedVouchers: applied,
		PaymentMethod:   b.PaymentMethod(),
		Status:          b.Status(),
		PaymentStatus:   b.PaymentStatus(),
		PaymentDeadline: b.PaymentDeadline(),
		CancelReason:    b.CancelReason(),
		ConfirmedAt:     b.ConfirmedAt(),
		CanceledAt:      b.CanceledAt(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

// BookingEnvelopeDTO pairs a booking with its side-band payment data.
type BookingEnvelopeDTO struct {
	Booking      BookingDTO                       `json:"booking"`
	Payment      *application.PaymentInstructions `json:"payment,omitempty"`
	PointsEarned int64                            `json:"points_earned,omitempty"`
	Warning      string                           `json:"warning,omitempty"`
}

func toEnvelopeDTO(res *application.BookingResult) BookingEnvelopeDTO {
	return BookingEnvelopeDTO{
		Booking:      toBookingDTO(res.Booking),
		Payment:      res.Instructions,
		PointsEarned: res.PointsEarned,
		Warning:      res.Warning,
	}
}
