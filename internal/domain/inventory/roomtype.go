package inventory

import (
	"time"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	"github.com/google/uuid"
)

// RoomType is a bookable unit category within a hotel. Catalog CRUD lives
// elsewhere; this engine reads the pricing/occupancy fields and owns the
// quantity accounting.
type RoomType struct {
	ID            uuid.UUID
	HotelID       uuid.UUID
	Name          string
	PricePerNight int64
	MaxOccupancy  int
	Quantity      int
}

// Reservation is one committed interval against a room-type.
type Reservation struct {
	RoomTypeID uuid.UUID
	BookingID  uuid.UUID
	Checkin    time.Time
	Checkout   time.Time
	Rooms      int
}

// Availability is the answer to "can this party fit in this window".
type Availability struct {
	Available   bool
	RoomsNeeded int
	Remaining   int
}

// Overlaps reports whether [a,b) and [c,d) intersect.
func Overlaps(a, b, c, d time.Time) bool {
	return a.Before(d) && c.Before(b)
}

// Overlaps reports whether the reservation intersects [checkin, checkout).
func (r Reservation) Overlaps(checkin, checkout time.Time) bool {
	return Overlaps(r.Checkin, r.Checkout, checkin, checkout)
}

// RoomsNeeded returns ceil(guests / maxOccupancy).
func RoomsNeeded(guests, maxOccupancy int) (int, error) {
	if maxOccupancy < 1 {
		return 0, domain.NewValidationError("room type has no occupancy capacity")
	}
	if guests < 1 {
		return 0, domain.NewValidationError("at least one guest is required")
	}
	return (guests + maxOccupancy - 1) / maxOccupancy, nil
}

// CommittedOver returns the peak number of rooms committed by the given
// reservations at any instant inside [checkin, checkout). Interval
// boundaries are the only points where commitment can change, so checking
// each reservation start (plus the window start) is sufficient.
func CommittedOver(reservations []Reservation, checkin, checkout time.Time) int {
	points := []time.Time{checkin}
	for _, r := range reservations {
		if r.Checkin.After(checkin) && r.Checkin.Before(checkout) {
			points = append(points, r.Checkin)
		}
	}

	peak := 0
	for _, p := range points {
		at := 0
		for _, r := range reservations {
			if !p.Before(r.Checkin) && p.Before(r.Checkout) {
				at += r.Rooms
			}
		}
		if at > peak {
			peak = at
		}
	}
	return peak
}
