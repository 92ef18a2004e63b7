package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/booking"
	"github.com/Dton04/BookingHotel-sub000/internal/events"
	"github.com/Dton04/BookingHotel-sub000/internal/repository"
	"github.com/Dton04/BookingHotel-sub000/internal/saga"
)

// BookingService drives the booking lifecycle: creation, confirmation,
// cancellation, stay changes, and the lazily evaluated bank-transfer
// payment deadline.
type BookingService struct {
	uow     *repository.UnitOfWork
	sagas   *saga.BookingSagaService
	loyalty *LoyaltyService
	logger  *zap.Logger
}

// NewBookingService creates the booking service.
func NewBookingService(
	uow *repository.UnitOfWork,
	sagas *saga.BookingSagaService,
	loyalty *LoyaltyService,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		uow:     uow,
		sagas:   sagas,
		loyalty: loyalty,
		logger:  logger,
	}
}

// CreateBookingRequest carries everything needed to open a booking.
type CreateBookingRequest struct {
	RoomTypeID    uuid.UUID
	GuestName     string
	GuestEmail    string
	GuestPhone    string
	Checkin       time.Time
	Checkout      time.Time
	Adults        int
	Children      int
	PaymentMethod booking.PaymentMethod
}

// PaymentInstructions tell the guest how to settle a pending booking.
type PaymentInstructions struct {
	Method           string `json:"method"`
	RedirectURL      string `json:"redirect_url,omitempty"`
	DeadlineAt       string `json:"deadline_at,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
	Note             string `json:"note,omitempty"`
}

// BookingResult is a booking plus the side-band data a handler returns.
type BookingResult struct {
	Booking      *booking.Booking
	Instructions *PaymentInstructions
	PointsEarned int64
	Warning      string
}

// CreateBooking prices the stay, reserves inventory, persists the pending
// booking, and opens a gateway charge for mobile/card payments.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingResult, error) {
	st := s.uow.Stores()

	rt, err := st.Inventory.FindRoomType(ctx, req.RoomTypeID)
	if err != nil {
		return nil, err
	}

	avail, err := st.Inventory.CheckAvailability(ctx, req.RoomTypeID, req.Checkin, req.Checkout, req.Adults+req.Children)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		return nil, domain.NewConflictError(
			"room type %s has only %d rooms free for the selected dates, %d needed",
			rt.Name, avail.Remaining, avail.RoomsNeeded,
		)
	}

	guest := booking.GuestInfo{
		Name:  req.GuestName,
		Email: req.GuestEmail,
		Phone: req.GuestPhone,
	}

	nights := int64(booking.Nights(req.Checkin, req.Checkout))
	amount := rt.PricePerNight * nights * int64(avail.RoomsNeeded)

	b, err := booking.NewBooking(
		rt.ID, rt.HotelID, guest,
		req.Checkin, req.Checkout,
		req.Adults, req.Children, avail.RoomsNeeded,
		req.PaymentMethod, amount,
	)
	if err != nil {
		return nil, err
	}

	redirectURL, err := s.sagas.CreateBooking(ctx, b)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("room_type_id", rt.ID.String()),
		zap.Int64("amount", b.Amount()),
		zap.String("method", string(b.PaymentMethod())),
	)

	return &BookingResult{
		Booking:      b,
		Instructions: s.instructions(b, redirectURL, time.Now().UTC()),
	}, nil
}

// GetBooking loads a booking, expiring it first when its bank-transfer
// deadline has lapsed. Expiry is evaluated on access, not by a timer.
func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*BookingResult, error) {
	b, err := s.loadCurrent(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BookingResult{
		Booking:      b,
		Instructions: s.instructions(b, "", time.Now().UTC()),
	}, nil
}

// ConfirmBooking settles payment and confirms the stay, then posts
// loyalty points. A points failure does not unwind the confirmation; it
// surfaces as a warning and the idempotent award can be retried.
func (s *BookingService) ConfirmBooking(ctx context.Context, id uuid.UUID) (*BookingResult, error) {
	b, err := s.loadCurrent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.sagas.ConfirmBooking(ctx, b); err != nil {
		return nil, err
	}

	res := &BookingResult{Booking: b}
	earned, err := s.loyalty.EarnPoints(ctx, b.Guest().Email, b.ID(), b.NetAmount())
	if err != nil {
		s.logger.Warn("points award failed after confirmation",
			zap.String("booking_id", b.ID().String()),
			zap.Error(err),
		)
		res.Warning = "booking confirmed but points could not be awarded yet"
	} else {
		res.PointsEarned = earned.Points
	}
	return res, nil
}

// CancelBooking cancels a booking within the allowed window, refunding
// paid amounts and releasing the rooms.
func (s *BookingService) CancelBooking(ctx context.Context, id uuid.UUID, reason string) (*BookingResult, error) {
	b, err := s.loadCurrent(ctx, id)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "canceled by guest"
	}
	if err := s.sagas.CancelBooking(ctx, b, reason); err != nil {
		return nil, err
	}
	return &BookingResult{Booking: b}, nil
}

// ExtendStay moves the checkout later, re-pricing the booking at the
// room-type's nightly rate and committing the added nights atomically.
func (s *BookingService) ExtendStay(ctx context.Context, id uuid.UUID, newCheckout time.Time) (*BookingResult, error) {
	b, err := s.loadCurrent(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(st *repository.Stores) error {
		rt, err := st.Inventory.FindRoomType(ctx, b.RoomTypeID())
		if err != nil {
			return err
		}
		if err := st.Inventory.ExtendReservation(ctx, b.RoomTypeID(), b.ID(), newCheckout); err != nil {
			return err
		}
		nights := int64(booking.Nights(b.Checkin(), newCheckout))
		newAmount := rt.PricePerNight * nights * int64(b.RoomsBooked())
		if err := b.ExtendStay(newCheckout, newAmount); err != nil {
			return err
		}
		b.IncrementVersion()
		return st.Bookings.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return &BookingResult{Booking: b}, nil
}

// ReassignRoom moves the booking onto a different room type, exchanging
// the committed inventory in one transaction. The new room type must fit
// the party and have capacity over the stay.
func (s *BookingService) ReassignRoom(ctx context.Context, id, newRoomTypeID uuid.UUID) (*BookingResult, error) {
	b, err := s.loadCurrent(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(st *repository.Stores) error {
		rt, err := st.Inventory.FindRoomType(ctx, newRoomTypeID)
		if err != nil {
			return err
		}
		avail, err := st.Inventory.CheckAvailability(ctx, newRoomTypeID, b.Checkin(), b.Checkout(), b.Adults()+b.Children())
		if err != nil {
			return err
		}
		if !avail.Available {
			return domain.NewConflictError("room type %s cannot host this stay", rt.Name)
		}
		if err := st.Inventory.Release(ctx, b.RoomTypeID(), b.ID()); err != nil {
			return err
		}
		if err := st.Inventory.Reserve(ctx, newRoomTypeID, b.ID(), b.Checkin(), b.Checkout(), avail.RoomsNeeded); err != nil {
			return err
		}
		newAmount := rt.PricePerNight * int64(b.Nights()) * int64(avail.RoomsNeeded)
		if err := b.ReassignRoom(newRoomTypeID, newAmount); err != nil {
			return err
		}
		b.IncrementVersion()
		return st.Bookings.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return &BookingResult{Booking: b}, nil
}

// DeadlineResult reports the state of a bank-transfer payment deadline.
type DeadlineResult struct {
	BookingID        uuid.UUID `json:"booking_id"`
	Expired          bool      `json:"expired"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// CheckPaymentDeadline reports how long the guest has left to pay,
// expiring the booking on the spot when the deadline has passed.
func (s *BookingService) CheckPaymentDeadline(ctx context.Context, id uuid.UUID) (*DeadlineResult, error) {
	b, err := s.loadCurrent(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &DeadlineResult{BookingID: b.ID()}
	if b.Status() == booking.StatusCanceled {
		res.Expired = true
		return res, nil
	}
	if d := b.PaymentDeadline(); d != nil {
		remaining := int64(time.Until(*d).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		res.RemainingSeconds = remaining
	}
	return res, nil
}

// EarnPointsForBooking re-runs the points award for a confirmed booking.
// It exists as a retry path for awards that failed during confirmation;
// the ledger's unique booking entry makes repeats return the stored
// prior result.
func (s *BookingService) EarnPointsForBooking(ctx context.Context, id uuid.UUID) (*EarnPointsResult, error) {
	b, err := s.loadCurrent(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status() != booking.StatusConfirmed || b.PaymentStatus() != booking.PaymentPaid {
		return nil, domain.NewConflictError("points are only awarded for confirmed, paid bookings")
	}
	return s.loyalty.EarnPoints(ctx, b.Guest().Email, b.ID(), b.NetAmount())
}

// AvailabilityResult answers a guest's availability probe.
type AvailabilityResult struct {
	RoomTypeID  uuid.UUID `json:"room_type_id"`
	RoomType    string    `json:"room_type"`
	Available   bool      `json:"available"`
	RoomsNeeded int       `json:"rooms_needed"`
	Remaining   int       `json:"remaining"`
	NightlyRate int64     `json:"nightly_rate"`
}

// CheckAvailability answers whether a party fits a room type over a
// window, without committing anything.
func (s *BookingService) CheckAvailability(ctx context.Context, roomTypeID uuid.UUID, checkin, checkout time.Time, guests int) (*AvailabilityResult, error) {
	if !checkin.Before(checkout) {
		return nil, domain.NewValidationError("checkin must be before checkout")
	}
	st := s.uow.Stores()

	rt, err := st.Inventory.FindRoomType(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	avail, err := st.Inventory.CheckAvailability(ctx, roomTypeID, checkin, checkout, guests)
	if err != nil {
		return nil, err
	}

	return &AvailabilityResult{
		RoomTypeID:  rt.ID,
		RoomType:    rt.Name,
		Available:   avail.Available,
		RoomsNeeded: avail.RoomsNeeded,
		Remaining:   avail.Remaining,
		NightlyRate: rt.PricePerNight,
	}, nil
}

// ListBookings returns all bookings, paginated (staff/admin).
func (s *BookingService) ListBookings(ctx context.Context, page, limit int) ([]*booking.Booking, int64, error) {
	return s.uow.Stores().Bookings.ListAll(ctx, page, limit)
}

// StatsResult aggregates revenue and status counts (admin).
type StatsResult struct {
	TotalPaid     int64            `json:"total_paid"`
	CountByStatus map[string]int64 `json:"count_by_status"`
}

// GetStats returns paid revenue net of discounts plus booking counts.
func (s *BookingService) GetStats(ctx context.Context) (*StatsResult, error) {
	total, counts, err := s.uow.Stores().Bookings.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsResult{TotalPaid: total, CountByStatus: counts}, nil
}

// HandlePaymentSucceeded confirms the booking named by a gateway
// settlement callback. Redeliveries land on an already confirmed booking
// and are ignored.
func (s *BookingService) HandlePaymentSucceeded(ctx context.Context, ev events.PaymentCallbackEvent) error {
	_, err := s.ConfirmBooking(ctx, ev.BookingID)
	if err != nil && domain.IsConflict(err) {
		s.logger.Info("payment callback on already settled booking",
			zap.String("booking_id", ev.BookingID.String()),
		)
		return nil
	}
	return err
}

// HandlePaymentFailed cancels the booking named by a gateway failure
// callback and frees its rooms.
func (s *BookingService) HandlePaymentFailed(ctx context.Context, ev events.PaymentCallbackEvent) error {
	reason := ev.Reason
	if reason == "" {
		reason = "payment failed"
	}
	_, err := s.CancelBooking(ctx, ev.BookingID, reason)
	if err != nil && domain.IsConflict(err) {
		s.logger.Info("payment failure callback on already settled booking",
			zap.String("booking_id", ev.BookingID.String()),
		)
		return nil
	}
	return err
}

// loadCurrent fetches a booking and applies lazy deadline expiry before
// handing it to any flow.
func (s *BookingService) loadCurrent(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, err := s.uow.Stores().Bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.IsPaymentExpired(time.Now().UTC()) {
		if err := s.sagas.ExpireBooking(ctx, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *BookingService) instructions(b *booking.Booking, redirectURL string, now time.Time) *PaymentInstructions {
	if b.Status() != booking.StatusPending || b.PaymentStatus() != booking.PaymentPending {
		return nil
	}

	ins := &PaymentInstructions{Method: string(b.PaymentMethod())}
	switch b.PaymentMethod() {
	case booking.MethodBankTransfer:
		if d := b.PaymentDeadline(); d != nil {
			ins.DeadlineAt = d.Format(time.RFC3339)
			remaining := int64(d.Sub(now).Seconds())
			if remaining < 0 {
				remaining = 0
			}
			ins.RemainingSeconds = remaining
		}
		ins.Note = "transfer the full amount before the deadline or the booking expires"
	case booking.MethodCash:
		ins.Note = "pay at the front desk on arrival"
	default:
		ins.RedirectURL = redirectURL
	}
	return ins
}
