package saga

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Dton04/BookingHotel-sub000/internal/adapter"
	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/booking"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/loyalty"
	"github.com/Dton04/BookingHotel-sub000/internal/events"
	"github.com/Dton04/BookingHotel-sub000/internal/repository"
)

const eventSource = "booking-engine"

// BookingSagaService orchestrates the multi-system booking flows: the
// database transaction, the payment gateway, and the event stream each
// live in their own saga step so a failure in one unwinds the others.
type BookingSagaService struct {
	uow      *repository.UnitOfWork
	gateway  adapter.PaymentGateway
	producer *events.Producer
	logger   *zap.Logger
}

// NewBookingSagaService creates the saga service.
func NewBookingSagaService(
	uow *repository.UnitOfWork,
	gateway adapter.PaymentGateway,
	producer *events.Producer,
	logger *zap.Logger,
) *BookingSagaService {
	return &BookingSagaService{
		uow:      uow,
		gateway:  gateway,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking reserves inventory, persists the pending booking, opens a
// gateway charge for online methods, and announces the booking. Returns
// the gateway redirect URL ("" for cash and bank transfer).
func (s *BookingSagaService) CreateBooking(ctx context.Context, b *booking.Booking) (string, error) {
	var redirectURL string

	sg := New("create_booking", s.logger)

	sg.AddStep(Step{
		Name: "reserve_and_persist",
		Execute: func(ctx context.Context) error {
			return s.uow.Do(ctx, func(st *repository.Stores) error {
				avail, err := st.Inventory.CheckAvailability(ctx, b.RoomTypeID(), b.Checkin(), b.Checkout(), b.Adults()+b.Children())
				if err != nil {
					return err
				}
				if !avail.Available {
					return domain.NewConflictError("not enough rooms available for the selected dates")
				}
				if err := st.Inventory.Reserve(ctx, b.RoomTypeID(), b.ID(), b.Checkin(), b.Checkout(), b.RoomsBooked()); err != nil {
					return err
				}
				return st.Bookings.Save(ctx, b)
			})
		},
		Compensate: func(ctx context.Context) error {
			return s.uow.Do(ctx, func(st *repository.Stores) error {
				if err := st.Inventory.Release(ctx, b.RoomTypeID(), b.ID()); err != nil {
					return err
				}
				if err := b.Cancel(time.Now().UTC(), "creation failed"); err != nil {
					return err
				}
				b.IncrementVersion()
				return st.Bookings.Update(ctx, b)
			})
		},
	})

	if b.PaymentMethod() == booking.MethodMobile || b.PaymentMethod() == booking.MethodCredit {
		sg.AddStep(Step{
			Name: "create_gateway_charge",
			Execute: func(ctx context.Context) error {
				chargeID, url, err := s.gateway.CreateCharge(ctx, b.Amount(), b.ID().String(), b.Guest().Email)
				if err != nil {
					return err
				}
				b.AttachCharge(chargeID)
				redirectURL = url
				b.IncrementVersion()
				return s.uow.Stores().Bookings.Update(ctx, b)
			},
			Compensate: func(ctx context.Context) error {
				return s.gateway.CancelCharge(ctx, b.GatewayChargeID())
			},
		})
	}

	sg.AddStep(Step{
		Name: "publish_booking_created",
		Execute: func(ctx context.Context) error {
			return s.publish(ctx, events.TopicBookingEvents, events.BookingCreated, events.BookingCreatedEvent{
				BookingID:     b.ID(),
				RoomTypeID:    b.RoomTypeID(),
				HotelID:       b.HotelID(),
				GuestEmail:    b.Guest().Email,
				Checkin:       b.Checkin(),
				Checkout:      b.Checkout(),
				Amount:        b.Amount(),
				PaymentMethod: string(b.PaymentMethod()),
				OccurredAt:    time.Now().UTC(),
			})
		},
	})

	if err := sg.Execute(ctx); err != nil {
		return "", err
	}
	return redirectURL, nil
}

// ConfirmBooking settles the gateway charge (when one exists), flips the
// booking to confirmed/paid, and announces the confirmation. If the
// database write fails after capture, the capture is refunded.
func (s *BookingSagaService) ConfirmBooking(ctx context.Context, b *booking.Booking) error {
	sg := New("confirm_booking", s.logger)

	if b.GatewayChargeID() != "" {
		sg.AddStep(Step{
			Name: "capture_gateway_charge",
			Execute: func(ctx context.Context) error {
				return s.gateway.CaptureCharge(ctx, b.GatewayChargeID())
			},
			Compensate: func(ctx context.Context) error {
				return s.gateway.RefundCharge(ctx, b.GatewayChargeID(), b.NetAmount())
			},
		})
	}

	sg.AddStep(Step{
		Name: "confirm_and_persist",
		Execute: func(ctx context.Context) error {
			return s.uow.Do(ctx, func(st *repository.Stores) error {
				if err := b.Confirm(time.Now().UTC()); err != nil {
					return err
				}
				b.IncrementVersion()
				return st.Bookings.Update(ctx, b)
			})
		},
	})

	sg.AddStep(Step{
		Name: "publish_booking_confirmed",
		Execute: func(ctx context.Context) error {
			return s.publish(ctx, events.TopicBookingEvents, events.BookingConfirmed, events.BookingConfirmedEvent{
				BookingID:    b.ID(),
				GuestEmail:   b.Guest().Email,
				NetAmount:    b.NetAmount(),
				PointsEarned: loyalty.PointsFor(b.NetAmount()),
				OccurredAt:   time.Now().UTC(),
			})
		},
	})

	return sg.Execute(ctx)
}

// CancelBooking refunds or voids the gateway charge first, then cancels
// the booking and returns its rooms, then announces the cancellation.
func (s *BookingSagaService) CancelBooking(ctx context.Context, b *booking.Booking, reason string) error {
	wasPaid := b.PaymentStatus() == booking.PaymentPaid

	sg := New("cancel_booking", s.logger)

	if b.GatewayChargeID() != "" {
		sg.AddStep(Step{
			Name: "settle_gateway_charge",
			Execute: func(ctx context.Context) error {
				if wasPaid {
					return s.gateway.RefundCharge(ctx, b.GatewayChargeID(), b.NetAmount())
				}
				return s.gateway.CancelCharge(ctx, b.GatewayChargeID())
			},
		})
	}

	sg.AddStep(Step{
		Name: "cancel_and_release",
		Execute: func(ctx context.Context) error {
			return s.uow.Do(ctx, func(st *repository.Stores) error {
				if err := b.Cancel(time.Now().UTC(), reason); err != nil {
					return err
				}
				b.IncrementVersion()
				if err := st.Bookings.Update(ctx, b); err != nil {
					return err
				}
				return st.Inventory.Release(ctx, b.RoomTypeID(), b.ID())
			})
		},
	})

	sg.AddStep(Step{
		Name: "publish_booking_cancelled",
		Execute: func(ctx context.Context) error {
			return s.publish(ctx, events.TopicBookingEvents, events.BookingCancelled, events.BookingCancelledEvent{
				BookingID:  b.ID(),
				Reason:     reason,
				Refunded:   wasPaid,
				OccurredAt: time.Now().UTC(),
			})
		},
	})

	return sg.Execute(ctx)
}

// ExpireBooking cancels a booking whose payment deadline has passed:
// voids the gateway charge if one was opened, releases the rooms, and
// announces the expiry.
func (s *BookingSagaService) ExpireBooking(ctx context.Context, b *booking.Booking) error {
	sg := New("expire_booking", s.logger)

	if b.GatewayChargeID() != "" {
		sg.AddStep(Step{
			Name: "void_gateway_charge",
			Execute: func(ctx context.Context) error {
				return s.gateway.CancelCharge(ctx, b.GatewayChargeID())
			},
		})
	}

	sg.AddStep(Step{
		Name: "expire_and_release",
		Execute: func(ctx context.Context) error {
			return s.uow.Do(ctx, func(st *repository.Stores) error {
				if err := b.Expire(time.Now().UTC()); err != nil {
					return err
				}
				b.IncrementVersion()
				if err := st.Bookings.Update(ctx, b); err != nil {
					return err
				}
				return st.Inventory.Release(ctx, b.RoomTypeID(), b.ID())
			})
		},
	})

	sg.AddStep(Step{
		Name: "publish_booking_expired",
		Execute: func(ctx context.Context) error {
			return s.publish(ctx, events.TopicBookingEvents, events.BookingExpired, events.BookingCancelledEvent{
				BookingID:  b.ID(),
				Reason:     "payment deadline exceeded",
				Refunded:   false,
				OccurredAt: time.Now().UTC(),
			})
		},
	})

	return sg.Execute(ctx)
}

func (s *BookingSagaService) publish(ctx context.Context, topic, eventType string, data any) error {
	ce, err := events.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		return err
	}
	return s.producer.PublishEvent(ctx, topic, ce)
}
