package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CatalogReader exposes the read-only room-type lookups the engine needs.
type CatalogReader interface {
	FindRoomType(ctx context.Context, id uuid.UUID) (*RoomType, error)
}

// Ledger is the sole inventory contract: call sites are agnostic to
// whether stock is tracked as overlapping intervals or a scalar counter.
//
// Reserve re-validates availability inside the caller's transaction so a
// check/reserve race cannot push committed rooms above capacity, and
// Release is idempotent — releasing a booking twice is a no-op.
type Ledger interface {
	CatalogReader

	// CheckAvailability answers whether guestCount guests fit in
	// [checkin, checkout), and how many rooms that takes.
	CheckAvailability(ctx context.Context, roomTypeID uuid.UUID, checkin, checkout time.Time, guestCount int) (Availability, error)

	// Reserve atomically commits rooms for the interval, rejecting with a
	// conflict if capacity would be exceeded.
	Reserve(ctx context.Context, roomTypeID, bookingID uuid.UUID, checkin, checkout time.Time, rooms int) error

	// ExtendReservation moves a committed interval's checkout later,
	// rejecting if the added tail is not free.
	ExtendReservation(ctx context.Context, roomTypeID, bookingID uuid.UUID, newCheckout time.Time) error

	// Release returns a booking's rooms to the pool.
	Release(ctx context.Context, roomTypeID, bookingID uuid.UUID) error
}
