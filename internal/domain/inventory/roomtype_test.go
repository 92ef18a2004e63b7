package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2026, 9, n, 14, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		a, b, c, d     time.Time
		expectOverlaps bool
	}{
		{"identical", day(1), day(5), day(1), day(5), true},
		{"contained", day(1), day(10), day(3), day(5), true},
		{"partial tail", day(1), day(5), day(4), day(8), true},
		{"back to back", day(1), day(5), day(5), day(8), false},
		{"disjoint", day(1), day(3), day(6), day(8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectOverlaps, Overlaps(tt.a, tt.b, tt.c, tt.d))
		})
	}
}

func TestRoomsNeeded(t *testing.T) {
	n, err := RoomsNeeded(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = RoomsNeeded(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = RoomsNeeded(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = RoomsNeeded(7, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = RoomsNeeded(0, 2)
	assert.Error(t, err)

	_, err = RoomsNeeded(2, 0)
	assert.Error(t, err)
}

func reservation(rooms int, checkin, checkout time.Time) Reservation {
	return Reservation{
		RoomTypeID: uuid.New(),
		BookingID:  uuid.New(),
		Checkin:    checkin,
		Checkout:   checkout,
		Rooms:      rooms,
	}
}

func TestCommittedOver(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0, CommittedOver(nil, day(1), day(5)))
	})

	t.Run("single overlap", func(t *testing.T) {
		res := []Reservation{reservation(2, day(1), day(5))}
		assert.Equal(t, 2, CommittedOver(res, day(3), day(7)))
	})

	t.Run("peak at interior boundary", func(t *testing.T) {
		// Two reservations stack only in the middle of the window.
		res := []Reservation{
			reservation(1, day(1), day(6)),
			reservation(2, day(4), day(9)),
		}
		assert.Equal(t, 3, CommittedOver(res, day(1), day(9)))
	})

	t.Run("sequential do not stack", func(t *testing.T) {
		res := []Reservation{
			reservation(2, day(1), day(4)),
			reservation(3, day(4), day(8)),
		}
		assert.Equal(t, 3, CommittedOver(res, day(1), day(8)))
	})

	t.Run("counts only inside the window", func(t *testing.T) {
		res := []Reservation{
			reservation(5, day(1), day(3)),
			reservation(1, day(4), day(8)),
		}
		// The 5-room block ends before the probe window starts.
		assert.Equal(t, 1, CommittedOver(res, day(3), day(8)))
	})
}
