package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// EntryType distinguishes credits from redemptions in the points ledger.
type EntryType string

const (
	EntryEarn   EntryType = "earn"
	EntryRedeem EntryType = "redeem"
)

// EntryStatus is the settlement state of a ledger entry.
type EntryStatus string

const (
	EntryCompleted EntryStatus = "completed"
)

// Tier is a membership classification derived from accumulated points.
type Tier string

const (
	TierStandard Tier = "standard"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Tier point thresholds.
const (
	silverThreshold   = 10_000
	goldThreshold     = 50_000
	platinumThreshold = 100_000
)

// Entry is one immutable points-ledger record. At most one earn entry
// may exist per booking; the unique booking index in the store enforces it.
type Entry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	BookingID uuid.UUID
	Amount    int64
	Points    int64
	Type      EntryType
	Status    EntryStatus
	CreatedAt time.Time
}

// NewEarnEntry builds the single earn entry for a paid booking.
func NewEarnEntry(userID, bookingID uuid.UUID, netAmount int64) *Entry {
	return &Entry{
		ID:        uuid.New(),
		UserID:    userID,
		BookingID: bookingID,
		Amount:    netAmount,
		Points:    PointsFor(netAmount),
		Type:      EntryEarn,
		Status:    EntryCompleted,
		CreatedAt: time.Now().UTC(),
	}
}

// PointsFor converts a net amount into points: 1 point per 100 currency
// units, truncated toward zero and never negative.
func PointsFor(netAmount int64) int64 {
	if netAmount < 0 {
		netAmount = 0
	}
	return netAmount / 100
}

// TierFor derives a membership tier from a points balance.
func TierFor(points int64) Tier {
	switch {
	case points >= platinumThreshold:
		return TierPlatinum
	case points >= goldThreshold:
		return TierGold
	case points >= silverThreshold:
		return TierSilver
	default:
		return TierStandard
	}
}

// Level orders tiers for member-discount gating.
func (t Tier) Level() int {
	switch t {
	case TierPlatinum:
		return 3
	case TierGold:
		return 2
	case TierSilver:
		return 1
	default:
		return 0
	}
}
