package loyalty

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for the points ledger and user balances.
type Repository interface {
	// FindEntryByBooking returns the earn entry for a booking, or a
	// not-found error when no points were posted yet.
	FindEntryByBooking(ctx context.Context, bookingID uuid.UUID) (*Entry, error)

	// AppendEntry inserts a ledger entry and credits the user's balance
	// atomically. Inserting a second earn entry for the same booking
	// fails with a conflict (unique booking index).
	AppendEntry(ctx context.Context, entry *Entry) error

	// Balance returns the user's current points balance.
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)

	// AccumulatedSpend returns the user's lifetime paid booking volume,
	// feeding accumulated-spend discount eligibility.
	AccumulatedSpend(ctx context.Context, userID uuid.UUID) (int64, error)

	// FindOrCreateUserByEmail resolves a guest email to a loyalty user,
	// creating the account on first sight.
	FindOrCreateUserByEmail(ctx context.Context, email string) (uuid.UUID, error)
}
