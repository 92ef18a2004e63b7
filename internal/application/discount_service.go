package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dton04/BookingHotel-sub000/internal/domain/booking"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/discount"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/loyalty"
	"github.com/Dton04/BookingHotel-sub000/internal/repository"
)

// DiscountService evaluates and applies discounts to bookings and owns
// the admin-facing discount catalog.
type DiscountService struct {
	uow    *repository.UnitOfWork
	logger *zap.Logger
}

// NewDiscountService creates the discount service.
func NewDiscountService(uow *repository.UnitOfWork, logger *zap.Logger) *DiscountService {
	return &DiscountService{uow: uow, logger: logger}
}

// ApplyResult reports the outcome of a discount application.
type ApplyResult struct {
	BookingID   uuid.UUID                 `json:"booking_id"`
	GrossAmount int64                     `json:"gross_amount"`
	NetAmount   int64                     `json:"net_amount"`
	TotalOff    int64                     `json:"total_off"`
	Applied     []booking.AppliedDiscount `json:"applied"`
}

// ApplyToBooking evaluates the named voucher codes plus every active
// automatic discount against a pending booking, then records the
// accepted set, consumes per-user usage, and re-prices the booking in
// one transaction. Ineligible candidates are skipped, not rejected.
func (s *DiscountService) ApplyToBooking(ctx context.Context, bookingID uuid.UUID, codes []string) (*ApplyResult, error) {
	var res ApplyResult
	now := time.Now().UTC()

	err := s.uow.Do(ctx, func(st *repository.Stores) error {
		b, err := st.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}

		userID, err := st.Loyalty.FindOrCreateUserByEmail(ctx, b.Guest().Email)
		if err != nil {
			return err
		}

		candidates, err := s.gatherCandidates(ctx, st, codes, now)
		if err != nil {
			return err
		}

		user, err := s.snapshotUser(ctx, st, userID, candidates)
		if err != nil {
			return err
		}

		outcome := discount.Apply(b.Amount(), b.RoomTypeID(), user, now, candidates)

		applied := make([]booking.AppliedDiscount, 0, len(outcome.Applied))
		for _, a := range outcome.Applied {
			applied = append(applied, booking.AppliedDiscount{
				DiscountID: a.DiscountID,
				Code:       a.Code,
				Amount:     a.Amount,
			})
		}

		totalOff := b.Amount() - outcome.NetAmount
		if err := b.ApplyDiscounts(totalOff, applied); err != nil {
			return err
		}

		for _, a := range outcome.Applied {
			usage := &discount.Usage{
				ID:         uuid.New(),
				DiscountID: a.DiscountID,
				UserID:     userID,
				BookingID:  b.ID(),
				Amount:     a.Amount,
				UsedAt:     now,
			}
			if err := st.Discounts.ConsumeUsage(ctx, usage); err != nil {
				return err
			}
		}

		b.IncrementVersion()
		if err := st.Bookings.Update(ctx, b); err != nil {
			return err
		}

		res = ApplyResult{
			BookingID:   b.ID(),
			GrossAmount: b.Amount(),
			NetAmount:   outcome.NetAmount,
			TotalOff:    totalOff,
			Applied:     applied,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("discounts applied",
		zap.String("booking_id", res.BookingID.String()),
		zap.Int64("total_off", res.TotalOff),
		zap.Int("applied", len(res.Applied)),
	)
	return &res, nil
}

// ValidateRequest describes a prospective booking to price-check.
type ValidateRequest struct {
	Codes      []string
	Amount     int64
	RoomTypeID uuid.UUID
	GuestEmail string
}

// ValidateResult previews a discount evaluation without consuming usage.
type ValidateResult struct {
	GrossAmount int64                     `json:"gross_amount"`
	NetAmount   int64                     `json:"net_amount"`
	TotalOff    int64                     `json:"total_off"`
	Applied     []booking.AppliedDiscount `json:"applied"`
}

// Validate runs the same evaluation as ApplyToBooking against a
// prospective booking, writing nothing. The preview can go stale: usage
// consumed between validate and apply changes the apply outcome.
func (s *DiscountService) Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error) {
	now := time.Now().UTC()
	st := s.uow.Stores()

	userID, err := st.Loyalty.FindOrCreateUserByEmail(ctx, req.GuestEmail)
	if err != nil {
		return nil, err
	}
	candidates, err := s.gatherCandidates(ctx, st, req.Codes, now)
	if err != nil {
		return nil, err
	}
	user, err := s.snapshotUser(ctx, st, userID, candidates)
	if err != nil {
		return nil, err
	}

	outcome := discount.Apply(req.Amount, req.RoomTypeID, user, now, candidates)
	applied := make([]booking.AppliedDiscount, 0, len(outcome.Applied))
	for _, a := range outcome.Applied {
		applied = append(applied, booking.AppliedDiscount{
			DiscountID: a.DiscountID,
			Code:       a.Code,
			Amount:     a.Amount,
		})
	}

	return &ValidateResult{
		GrossAmount: req.Amount,
		NetAmount:   outcome.NetAmount,
		TotalOff:    req.Amount - outcome.NetAmount,
		Applied:     applied,
	}, nil
}

// gatherCandidates resolves explicit voucher codes first (guest intent
// wins the evaluation order), then appends active automatic discounts.
func (s *DiscountService) gatherCandidates(ctx context.Context, st *repository.Stores, codes []string, now time.Time) ([]*discount.Discount, error) {
	seen := make(map[uuid.UUID]bool)
	candidates := make([]*discount.Discount, 0, len(codes))

	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		d, err := st.Discounts.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if !seen[d.ID()] {
			seen[d.ID()] = true
			candidates = append(candidates, d)
		}
	}

	active, err := st.Discounts.FindActive(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, d := range active {
		// Vouchers are opt-in; only the codes the guest presented count.
		if d.Type() == discount.TypeVoucher {
			continue
		}
		if !seen[d.ID()] {
			seen[d.ID()] = true
			candidates = append(candidates, d)
		}
	}
	return candidates, nil
}

func (s *DiscountService) snapshotUser(ctx context.Context, st *repository.Stores, userID uuid.UUID, candidates []*discount.Discount) (discount.UserSnapshot, error) {
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, d := range candidates {
		ids = append(ids, d.ID())
	}

	used, err := st.Discounts.UsageCounts(ctx, userID, ids)
	if err != nil {
		return discount.UserSnapshot{}, err
	}
	balance, err := st.Loyalty.Balance(ctx, userID)
	if err != nil {
		return discount.UserSnapshot{}, err
	}
	spend, err := st.Loyalty.AccumulatedSpend(ctx, userID)
	if err != nil {
		return discount.UserSnapshot{}, err
	}

	return discount.UserSnapshot{
		ID:               userID,
		MembershipLevel:  loyalty.TierFor(balance).Level(),
		AccumulatedSpend: spend,
		UsedCounts:       used,
	}, nil
}

// CreateDiscountRequest carries the admin catalog input.
type CreateDiscountRequest struct {
	Code             string
	Type             discount.Type
	ValueType        discount.ValueType
	Value            int64
	RoomTypeIDs      []uuid.UUID
	StartDate        time.Time
	EndDate          time.Time
	MinBookingAmount int64
	MaxDiscount      int64
	Stackable        bool
	MembershipLevel  int
	MinSpending      int64
}

// CreateDiscount registers a new discount (admin).
func (s *DiscountService) CreateDiscount(ctx context.Context, req CreateDiscountRequest) (*discount.Discount, error) {
	d, err := discount.New(
		req.Code, req.Type, req.ValueType, req.Value,
		req.RoomTypeIDs,
		req.StartDate, req.EndDate,
		req.MinBookingAmount, req.MaxDiscount,
		req.Stackable,
		req.MembershipLevel, req.MinSpending,
	)
	if err != nil {
		return nil, err
	}
	if err := s.uow.Stores().Discounts.Save(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("discount created",
		zap.String("discount_id", d.ID().String()),
		zap.String("type", string(d.Type())),
		zap.String("code", d.Code()),
	)
	return d, nil
}

// GetByCode resolves a voucher code so a guest can preview it.
func (s *DiscountService) GetByCode(ctx context.Context, code string) (*discount.Discount, error) {
	return s.uow.Stores().Discounts.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// ListActive returns every discount live at this instant.
func (s *DiscountService) ListActive(ctx context.Context) ([]*discount.Discount, error) {
	return s.uow.Stores().Discounts.FindActive(ctx, time.Now().UTC())
}

// Deactivate soft-deletes a discount (admin); past usages keep their
// reference.
func (s *DiscountService) Deactivate(ctx context.Context, id uuid.UUID) error {
	st := s.uow.Stores()
	d, err := st.Discounts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	d.SoftDelete()
	return st.Discounts.Update(ctx, d)
}
