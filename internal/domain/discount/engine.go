package discount

import (
	"time"

	"github.com/google/uuid"
)

// UserSnapshot is the eligibility view of the caller at evaluation time.
// The service assembles it from the loyalty and booking stores so the
// engine itself stays pure and store-free.
type UserSnapshot struct {
	ID               uuid.UUID
	MembershipLevel  int
	AccumulatedSpend int64
	// UsedCounts maps discount ID to how many times this user has
	// already consumed it. The per-user cap is one use.
	UsedCounts map[uuid.UUID]int
}

// Applied records one accepted discount.
type Applied struct {
	DiscountID uuid.UUID
	Code       string
	Amount     int64
}

// Result is the outcome of evaluating candidates against a booking.
type Result struct {
	NetAmount int64
	Applied   []Applied
	// Consumed lists the discount IDs whose per-user usage must be
	// incremented in the same transaction as the booking write.
	Consumed []uuid.UUID
}

// Apply evaluates candidates in input order against the booking amount.
// Skipped candidates are silent; an empty or all-skipped list yields the
// original amount with nothing applied, which is not an error.
func Apply(amount int64, roomTypeID uuid.UUID, user UserSnapshot, now time.Time, candidates []*Discount) Result {
	res := Result{NetAmount: amount}
	var total int64

	for _, d := range candidates {
		if d == nil || !d.activeAt(now) {
			continue
		}
		if !d.appliesToRoomType(roomTypeID) {
			continue
		}
		if amount < d.minBookingAmount {
			continue
		}
		if user.UsedCounts[d.id] >= 1 {
			continue
		}
		// A non-stackable discount cannot join a booking that already
		// has one applied.
		if len(res.Applied) > 0 && !d.stackable {
			continue
		}
		switch d.typ {
		case TypeMember:
			if user.MembershipLevel < d.membershipLevel {
				continue
			}
		case TypeAccumulated:
			if user.AccumulatedSpend < d.minSpending {
				continue
			}
		}

		raw := d.rawAmount(amount)
		if raw <= 0 {
			continue
		}

		total += raw
		res.Applied = append(res.Applied, Applied{DiscountID: d.id, Code: d.code, Amount: raw})
		res.Consumed = append(res.Consumed, d.id)

		// An accepted exclusive discount closes the set; later
		// candidates cannot join it either.
		if !d.stackable {
			break
		}
	}

	if total > amount {
		total = amount
	}
	res.NetAmount = amount - total
	return res
}
