package loyalty

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPointsFor(t *testing.T) {
	assert.Equal(t, int64(0), PointsFor(0))
	assert.Equal(t, int64(0), PointsFor(99))
	assert.Equal(t, int64(1), PointsFor(100))
	assert.Equal(t, int64(1), PointsFor(199))
	assert.Equal(t, int64(123), PointsFor(12_345))
	assert.Equal(t, int64(0), PointsFor(-500), "negative nets earn nothing")
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierStandard, TierFor(0))
	assert.Equal(t, TierStandard, TierFor(9_999))
	assert.Equal(t, TierSilver, TierFor(10_000))
	assert.Equal(t, TierSilver, TierFor(49_999))
	assert.Equal(t, TierGold, TierFor(50_000))
	assert.Equal(t, TierGold, TierFor(99_999))
	assert.Equal(t, TierPlatinum, TierFor(100_000))
}

func TestTierLevelOrdering(t *testing.T) {
	assert.Less(t, TierStandard.Level(), TierSilver.Level())
	assert.Less(t, TierSilver.Level(), TierGold.Level())
	assert.Less(t, TierGold.Level(), TierPlatinum.Level())
}

func TestNewEarnEntry(t *testing.T) {
	userID := uuid.New()
	bookingID := uuid.New()

	e := NewEarnEntry(userID, bookingID, 25_050)
	assert.Equal(t, userID, e.UserID)
	assert.Equal(t, bookingID, e.BookingID)
	assert.Equal(t, int64(25_050), e.Amount)
	assert.Equal(t, int64(250), e.Points)
	assert.Equal(t, EntryEarn, e.Type)
	assert.Equal(t, EntryCompleted, e.Status)
}
