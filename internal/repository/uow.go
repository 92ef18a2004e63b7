package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Dton04/BookingHotel-sub000/internal/domain/booking"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/discount"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/inventory"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/loyalty"
)

// Stores bundles every repository bound to one database handle.
type Stores struct {
	Bookings  booking.Repository
	Inventory inventory.Ledger
	Discounts discount.Repository
	Loyalty   loyalty.Repository
}

// UnitOfWork is the transaction coordinator: any operation touching more
// than one of inventory, booking, discount usage, or the points ledger
// runs through Do so all of its writes commit or roll back together.
type UnitOfWork struct {
	db   *gorm.DB
	mode string
}

// NewUnitOfWork creates a UnitOfWork with the configured inventory mode.
func NewUnitOfWork(db *gorm.DB, mode string) *UnitOfWork {
	return &UnitOfWork{db: db, mode: mode}
}

func newStores(db *gorm.DB, mode string) *Stores {
	return &Stores{
		Bookings:  NewBookingRepository(db),
		Inventory: NewLedger(db, mode),
		Discounts: NewGormDiscountRepository(db),
		Loyalty:   NewGormLoyaltyRepository(db),
	}
}

// Stores returns repositories outside any transaction, for reads.
func (u *UnitOfWork) Stores() *Stores {
	return newStores(u.db, u.mode)
}

// Do runs fn inside one database transaction. Returning an error rolls
// back every write made through the provided stores.
func (u *UnitOfWork) Do(ctx context.Context, fn func(s *Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newStores(tx, u.mode))
	})
}
