package discount

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for discounts and their
// per-user usage relation.
type Repository interface {
	Save(ctx context.Context, d *Discount) error
	Update(ctx context.Context, d *Discount) error
	FindByID(ctx context.Context, id uuid.UUID) (*Discount, error)
	FindByCode(ctx context.Context, code string) (*Discount, error)
	FindActive(ctx context.Context, now time.Time) ([]*Discount, error)

	// UsageCounts returns the user's consumption count per discount.
	UsageCounts(ctx context.Context, userID uuid.UUID, discountIDs []uuid.UUID) (map[uuid.UUID]int, error)

	// ConsumeUsage increments the user's usage counter for a discount,
	// rejecting with a conflict once the one-per-user cap is reached.
	// It must be called inside the same transaction as the booking write
	// it gates.
	ConsumeUsage(ctx context.Context, usage *Usage) error
}

// Usage is one consumption of a discount by a user on a booking.
type Usage struct {
	ID         uuid.UUID
	DiscountID uuid.UUID
	UserID     uuid.UUID
	BookingID  uuid.UUID
	Amount     int64
	UsedAt     time.Time
}
