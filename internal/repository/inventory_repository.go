package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/inventory"
)

// Inventory representations supported by the ledger.
const (
	ModeInterval = "interval"
	ModeCounter  = "counter"
)

// RoomTypeModel is the GORM model for the room_types table. Catalog CRUD
// lives in another service; this engine owns the quantity columns.
type RoomTypeModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	HotelID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Name              string    `gorm:"type:varchar(100);not null"`
	PricePerNight     int64     `gorm:"not null"`
	MaxOccupancy      int       `gorm:"not null"`
	Quantity          int       `gorm:"not null"`
	QuantityAvailable int       `gorm:"not null"` // counter mode only
	CreatedAt         time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt         time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (RoomTypeModel) TableName() string { return "room_types" }

// ReservationModel is one committed interval. The (room_type_id,
// booking_id) pair is unique so reserve is race-safe and release is
// idempotent.
type ReservationModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_room_booking,priority:1"`
	BookingID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_room_booking,priority:2"`
	Checkin    time.Time `gorm:"type:timestamptz;not null"`
	Checkout   time.Time `gorm:"type:timestamptz;not null"`
	Rooms      int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (ReservationModel) TableName() string { return "room_reservations" }

// NewLedger returns the inventory ledger for the configured mode.
func NewLedger(db *gorm.DB, mode string) inventory.Ledger {
	if mode == ModeCounter {
		return &CounterLedger{db: db}
	}
	return &IntervalLedger{db: db}
}

// --- shared helpers ---

func findRoomType(ctx context.Context, db *gorm.DB, id uuid.UUID, forUpdate bool) (*RoomTypeModel, error) {
	q := db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model RoomTypeModel
	if err := q.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("room type", id.String())
		}
		return nil, err
	}
	return &model, nil
}

func toRoomType(m *RoomTypeModel) *inventory.RoomType {
	return &inventory.RoomType{
		ID:            m.ID,
		HotelID:       m.HotelID,
		Name:          m.Name,
		PricePerNight: m.PricePerNight,
		MaxOccupancy:  m.MaxOccupancy,
		Quantity:      m.Quantity,
	}
}

func insertReservation(ctx context.Context, db *gorm.DB, roomTypeID, bookingID uuid.UUID, checkin, checkout time.Time, rooms int) error {
	res := ReservationModel{
		ID:         uuid.New(),
		RoomTypeID: roomTypeID,
		BookingID:  bookingID,
		Checkin:    checkin,
		Checkout:   checkout,
		Rooms:      rooms,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("booking %s already holds a reservation on this room type", bookingID)
		}
		return err
	}
	return nil
}

// --- interval representation ---

// IntervalLedger tracks inventory as overlapping [checkin, checkout)
// reservations against the room-type's total quantity.
type IntervalLedger struct {
	db *gorm.DB
}

// FindRoomType returns the catalog view of a room type.
func (l *IntervalLedger) FindRoomType(ctx context.Context, id uuid.UUID) (*inventory.RoomType, error) {
	m, err := findRoomType(ctx, l.db, id, false)
	if err != nil {
		return nil, err
	}
	return toRoomType(m), nil
}

// overlapping loads reservations intersecting [checkin, checkout),
// excluding the given booking when set.
func (l *IntervalLedger) overlapping(ctx context.Context, roomTypeID uuid.UUID, checkin, checkout time.Time, excludeBooking uuid.UUID) ([]inventory.Reservation, error) {
	q := l.db.WithContext(ctx).
		Where("room_type_id = ? AND checkin < ? AND ? < checkout", roomTypeID, checkout, checkin)
	if excludeBooking != uuid.Nil {
		q = q.Where("booking_id <> ?", excludeBooking)
	}
	var models []ReservationModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.Reservation, len(models))
	for i, m := range models {
		out[i] = inventory.Reservation{
			RoomTypeID: m.RoomTypeID,
			BookingID:  m.BookingID,
			Checkin:    m.Checkin,
			Checkout:   m.Checkout,
			Rooms:      m.Rooms,
		}
	}
	return out, nil
}

func (l *IntervalLedger) availability(ctx context.Context, rt *RoomTypeModel, checkin, checkout time.Time, guestCount int, excludeBooking uuid.UUID) (inventory.Availability, error) {
	needed, err := inventory.RoomsNeeded(guestCount, rt.MaxOccupancy)
	if err != nil {
		return inventory.Availability{}, err
	}
	reservations, err := l.overlapping(ctx, rt.ID, checkin, checkout, excludeBooking)
	if err != nil {
		return inventory.Availability{}, err
	}
	remaining := rt.Quantity - inventory.CommittedOver(reservations, checkin, checkout)
	return inventory.Availability{
		Available:   needed <= remaining,
		RoomsNeeded: needed,
		Remaining:   remaining,
	}, nil
}

// CheckAvailability answers the availability question without locking.
func (l *IntervalLedger) CheckAvailability(ctx context.Context, roomTypeID uuid.UUID, checkin, checkout time.Time, guestCount int) (inventory.Availability, error) {
	rt, err := findRoomType(ctx, l.db, roomTypeID, false)
	if err != nil {
		return inventory.Availability{}, err
	}
	return l.availability(ctx, rt, checkin, checkout, guestCount, uuid.Nil)
}

// Reserve commits rooms for the interval. The room-type row is locked and
// availability re-validated inside the caller's transaction, closing the
// race between check and reserve.
func (l *IntervalLedger) Reserve(ctx context.Context, roomTypeID, bookingID uuid.UUID, checkin, checkout time.Time, rooms int) error {
	rt, err := findRoomType(ctx, l.db, roomTypeID, true)
	if err != nil {
		return err
	}
	reservations, err := l.overlapping(ctx, roomTypeID, checkin, checkout, bookingID)
	if err != nil {
		return err
	}
	committed := inventory.CommittedOver(reservations, checkin, checkout)
	if committed+rooms > rt.Quantity {
		return domain.NewConflictError("room type %s has insufficient inventory for the requested interval", roomTypeID)
	}
	return insertReservation(ctx, l.db, roomTypeID, bookingID, checkin, checkout, rooms)
}

// ExtendReservation moves the interval's checkout later after verifying
// the added tail is free of other bookings.
func (l *IntervalLedger) ExtendReservation(ctx context.Context, roomTypeID, bookingID uuid.UUID, newCheckout time.Time) error {
	rt, err := findRoomType(ctx, l.db, roomTypeID, true)
	if err != nil {
		return err
	}

	var res ReservationModel
	if err := l.db.WithContext(ctx).
		Where("room_type_id = ? AND booking_id = ?", roomTypeID, bookingID).
		First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("reservation", bookingID.String())
		}
		return err
	}
	if !newCheckout.After(res.Checkout) {
		return domain.NewValidationError("new checkout must be after the current checkout")
	}

	// Only the added tail [old checkout, new checkout) needs headroom.
	others, err := l.overlapping(ctx, roomTypeID, res.Checkout, newCheckout, bookingID)
	if err != nil {
		return err
	}
	committed := inventory.CommittedOver(others, res.Checkout, newCheckout)
	if committed+res.Rooms > rt.Quantity {
		return domain.NewConflictError("room type %s is committed to another booking over the extension", roomTypeID)
	}

	return l.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ?", res.ID).
		Update("checkout", newCheckout).Error
}

// Release removes the booking's interval. Releasing twice is a no-op.
func (l *IntervalLedger) Release(ctx context.Context, roomTypeID, bookingID uuid.UUID) error {
	return l.db.WithContext(ctx).
		Where("room_type_id = ? AND booking_id = ?", roomTypeID, bookingID).
		Delete(&ReservationModel{}).Error
}

// --- counter representation ---

// CounterLedger tracks inventory as a scalar quantity_available column,
// decremented on reserve and restored on release. Reservation rows are
// still written so release stays idempotent per booking.
type CounterLedger struct {
	db *gorm.DB
}

// FindRoomType returns the catalog view of a room type.
func (l *CounterLedger) FindRoomType(ctx context.Context, id uuid.UUID) (*inventory.RoomType, error) {
	m, err := findRoomType(ctx, l.db, id, false)
	if err != nil {
		return nil, err
	}
	return toRoomType(m), nil
}

// CheckAvailability answers from the scalar counter.
func (l *CounterLedger) CheckAvailability(ctx context.Context, roomTypeID uuid.UUID, checkin, checkout time.Time, guestCount int) (inventory.Availability, error) {
	rt, err := findRoomType(ctx, l.db, roomTypeID, false)
	if err != nil {
		return inventory.Availability{}, err
	}
	needed, err := inventory.RoomsNeeded(guestCount, rt.MaxOccupancy)
	if err != nil {
		return inventory.Availability{}, err
	}
	return inventory.Availability{
		Available:   needed <= rt.QuantityAvailable,
		RoomsNeeded: needed,
		Remaining:   rt.QuantityAvailable,
	}, nil
}

// Reserve decrements the counter under a guarded update so two concurrent
// requests for the last room cannot both succeed.
func (l *CounterLedger) Reserve(ctx context.Context, roomTypeID, bookingID uuid.UUID, checkin, checkout time.Time, rooms int) error {
	result := l.db.WithContext(ctx).
		Model(&RoomTypeModel{}).
		Where("id = ? AND quantity_available >= ?", roomTypeID, rooms).
		Update("quantity_available", gorm.Expr("quantity_available - ?", rooms))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := findRoomType(ctx, l.db, roomTypeID, false); err != nil {
			return err
		}
		return domain.NewConflictError("room type %s has insufficient inventory", roomTypeID)
	}
	return insertReservation(ctx, l.db, roomTypeID, bookingID, checkin, checkout, rooms)
}

// ExtendReservation updates the recorded interval. The counter holds the
// rooms for the whole stay, so a longer stay needs no extra capacity.
func (l *CounterLedger) ExtendReservation(ctx context.Context, roomTypeID, bookingID uuid.UUID, newCheckout time.Time) error {
	var res ReservationModel
	if err := l.db.WithContext(ctx).
		Where("room_type_id = ? AND booking_id = ?", roomTypeID, bookingID).
		First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("reservation", bookingID.String())
		}
		return err
	}
	if !newCheckout.After(res.Checkout) {
		return domain.NewValidationError("new checkout must be after the current checkout")
	}

	return l.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ?", res.ID).
		Update("checkout", newCheckout).Error
}

// Release restores the counter and drops the reservation row. A second
// release finds no row and is a no-op.
func (l *CounterLedger) Release(ctx context.Context, roomTypeID, bookingID uuid.UUID) error {
	var res ReservationModel
	err := l.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("room_type_id = ? AND booking_id = ?", roomTypeID, bookingID).
		First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := l.db.WithContext(ctx).Delete(&ReservationModel{}, "id = ?", res.ID).Error; err != nil {
		return err
	}
	return l.db.WithContext(ctx).
		Model(&RoomTypeModel{}).
		Where("id = ?", roomTypeID).
		Update("quantity_available", gorm.Expr("quantity_available + ?", res.Rooms)).Error
}
