package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/loyalty"
	"github.com/Dton04/BookingHotel-sub000/internal/repository"
)

// LoyaltyService manages the points ledger and membership tiers.
type LoyaltyService struct {
	uow    *repository.UnitOfWork
	logger *zap.Logger
}

// NewLoyaltyService creates the loyalty service.
func NewLoyaltyService(uow *repository.UnitOfWork, logger *zap.Logger) *LoyaltyService {
	return &LoyaltyService{uow: uow, logger: logger}
}

// EarnPointsResult reports a points award.
type EarnPointsResult struct {
	UserID        uuid.UUID `json:"user_id"`
	BookingID     uuid.UUID `json:"booking_id"`
	Points        int64     `json:"points"`
	AlreadyPosted bool      `json:"already_posted"`
}

// EarnPoints awards floor(netAmount/100) points for a confirmed booking.
// Awarding is idempotent: a booking that already earned points returns
// the recorded entry instead of crediting twice.
func (s *LoyaltyService) EarnPoints(ctx context.Context, guestEmail string, bookingID uuid.UUID, netAmount int64) (*EarnPointsResult, error) {
	var res EarnPointsResult

	err := s.uow.Do(ctx, func(st *repository.Stores) error {
		userID, err := st.Loyalty.FindOrCreateUserByEmail(ctx, guestEmail)
		if err != nil {
			return err
		}

		entry := loyalty.NewEarnEntry(userID, bookingID, netAmount)
		if err := st.Loyalty.AppendEntry(ctx, entry); err != nil {
			if !domain.IsConflict(err) {
				return err
			}
			prior, ferr := st.Loyalty.FindEntryByBooking(ctx, bookingID)
			if ferr != nil {
				return ferr
			}
			res = EarnPointsResult{
				UserID:        prior.UserID,
				BookingID:     bookingID,
				Points:        prior.Points,
				AlreadyPosted: true,
			}
			return nil
		}

		res = EarnPointsResult{
			UserID:    userID,
			BookingID: bookingID,
			Points:    entry.Points,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("points posted",
		zap.String("booking_id", bookingID.String()),
		zap.Int64("points", res.Points),
		zap.Bool("already_posted", res.AlreadyPosted),
	)
	return &res, nil
}

// BalanceResult is a user's points balance with the derived tier.
type BalanceResult struct {
	UserID  uuid.UUID    `json:"user_id"`
	Balance int64        `json:"balance"`
	Tier    loyalty.Tier `json:"tier"`
}

// GetBalance returns the caller's current balance and membership tier.
func (s *LoyaltyService) GetBalance(ctx context.Context, email string) (*BalanceResult, error) {
	st := s.uow.Stores()

	userID, err := st.Loyalty.FindOrCreateUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	balance, err := st.Loyalty.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BalanceResult{
		UserID:  userID,
		Balance: balance,
		Tier:    loyalty.TierFor(balance),
	}, nil
}
