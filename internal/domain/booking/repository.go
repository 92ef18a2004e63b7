package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for Booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// ListAll retrieves bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// GetStats returns booking counts by status and paid gross volume (admin).
	GetStats(ctx context.Context) (totalPaid int64, countByStatus map[string]int64, err error)

	// Save persists a new booking aggregate.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, b *Booking) error
}
