package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
)

func validBooking(t *testing.T, method PaymentMethod) *Booking {
	t.Helper()
	checkin := time.Now().UTC().Add(48 * time.Hour)
	b, err := NewBooking(
		uuid.New(), uuid.New(),
		GuestInfo{Name: "Lan Pham", Email: "lan@example.com"},
		checkin, checkin.Add(48*time.Hour),
		2, 1, 1,
		method, 200_00,
	)
	require.NoError(t, err)
	return b
}

func TestNewBooking_Validation(t *testing.T) {
	checkin := time.Now().UTC().Add(48 * time.Hour)
	checkout := checkin.Add(24 * time.Hour)
	guest := GuestInfo{Name: "Lan Pham", Email: "lan@example.com"}

	tests := []struct {
		name string
		fn   func() (*Booking, error)
	}{
		{"empty guest name", func() (*Booking, error) {
			return NewBooking(uuid.New(), uuid.New(), GuestInfo{Email: "a@b.com"}, checkin, checkout, 1, 0, 1, MethodCash, 100)
		}},
		{"bad email", func() (*Booking, error) {
			return NewBooking(uuid.New(), uuid.New(), GuestInfo{Name: "x", Email: "not-an-email"}, checkin, checkout, 1, 0, 1, MethodCash, 100)
		}},
		{"checkout before checkin", func() (*Booking, error) {
			return NewBooking(uuid.New(), uuid.New(), guest, checkout, checkin, 1, 0, 1, MethodCash, 100)
		}},
		{"checkin in the past", func() (*Booking, error) {
			past := time.Now().UTC().Add(-72 * time.Hour)
			return NewBooking(uuid.New(), uuid.New(), guest, past, past.Add(24*time.Hour), 1, 0, 1, MethodCash, 100)
		}},
		{"no adults", func() (*Booking, error) {
			return NewBooking(uuid.New(), uuid.New(), guest, checkin, checkout, 0, 2, 1, MethodCash, 100)
		}},
		{"unknown payment method", func() (*Booking, error) {
			return NewBooking(uuid.New(), uuid.New(), guest, checkin, checkout, 1, 0, 1, "crypto", 100)
		}},
		{"negative amount", func() (*Booking, error) {
			return NewBooking(uuid.New(), uuid.New(), guest, checkin, checkout, 1, 0, 1, MethodCash, -1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestNewBooking_DeadlineOnlyForBankTransfer(t *testing.T) {
	assert.Nil(t, validBooking(t, MethodCash).PaymentDeadline())
	assert.Nil(t, validBooking(t, MethodMobile).PaymentDeadline())

	b := validBooking(t, MethodBankTransfer)
	require.NotNil(t, b.PaymentDeadline())
	remaining := time.Until(*b.PaymentDeadline())
	assert.InDelta(t, BankTransferDeadline.Seconds(), remaining.Seconds(), 5)
}

func TestConfirm(t *testing.T) {
	b := validBooking(t, MethodMobile)
	now := time.Now().UTC()

	require.NoError(t, b.Confirm(now))
	assert.Equal(t, StatusConfirmed, b.Status())
	assert.Equal(t, PaymentPaid, b.PaymentStatus())
	require.NotNil(t, b.ConfirmedAt())

	// Confirming twice is a conflict, not a silent success.
	err := b.Confirm(now)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestConfirm_RejectsExpiredDeadline(t *testing.T) {
	b := validBooking(t, MethodBankTransfer)
	late := time.Now().UTC().Add(BankTransferDeadline + time.Minute)

	err := b.Confirm(late)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, StatusPending, b.Status())
}

func TestCancel(t *testing.T) {
	b := validBooking(t, MethodCash)
	now := time.Now().UTC()

	require.NoError(t, b.Cancel(now, "change of plans"))
	assert.Equal(t, StatusCanceled, b.Status())
	assert.Equal(t, "change of plans", b.CancelReason())
	require.NotNil(t, b.CanceledAt())

	err := b.Cancel(now, "again")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestCancel_WindowCloses(t *testing.T) {
	b := validBooking(t, MethodCash)
	late := time.Now().UTC().Add(CancellationWindow + time.Hour)

	err := b.Cancel(late, "too late")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, StatusPending, b.Status())
}

func TestCancel_ConfirmedPaidNeedsRefundPath(t *testing.T) {
	b := validBooking(t, MethodMobile)
	now := time.Now().UTC()
	require.NoError(t, b.Confirm(now))

	err := b.Cancel(now, "regret")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestExpire(t *testing.T) {
	b := validBooking(t, MethodBankTransfer)
	late := time.Now().UTC().Add(BankTransferDeadline + time.Minute)

	assert.True(t, b.IsPaymentExpired(late))
	require.NoError(t, b.Expire(late))
	assert.Equal(t, StatusCanceled, b.Status())
	assert.Equal(t, "payment deadline expired", b.CancelReason())

	// Cash bookings never expire on their own.
	cash := validBooking(t, MethodCash)
	assert.False(t, cash.IsPaymentExpired(late))
	require.Error(t, cash.Expire(late))
}

func TestExtendStay(t *testing.T) {
	b := validBooking(t, MethodCash)
	newCheckout := b.Checkout().Add(24 * time.Hour)

	require.NoError(t, b.ExtendStay(newCheckout, 300_00))
	assert.Equal(t, newCheckout, b.Checkout())
	assert.Equal(t, int64(300_00), b.Amount())

	// Shrinking is not an extension.
	err := b.ExtendStay(b.Checkout().Add(-48*time.Hour), 100_00)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestReassignRoom(t *testing.T) {
	b := validBooking(t, MethodCash)
	newRoom := uuid.New()

	require.NoError(t, b.ReassignRoom(newRoom, 250_00))
	assert.Equal(t, newRoom, b.RoomTypeID())
	assert.Equal(t, int64(250_00), b.Amount())

	err := b.ReassignRoom(newRoom, 250_00)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestApplyDiscounts(t *testing.T) {
	b := validBooking(t, MethodCash)
	applied := []AppliedDiscount{{DiscountID: uuid.New(), Code: "SUMMER", Amount: 50_00}}

	require.NoError(t, b.ApplyDiscounts(50_00, applied))
	assert.Equal(t, int64(50_00), b.VoucherDiscount())
	assert.Equal(t, int64(150_00), b.NetAmount())

	// Re-applying is a conflict.
	err := b.ApplyDiscounts(10_00, applied)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestNetAmount_NeverNegative(t *testing.T) {
	b := validBooking(t, MethodCash)
	require.NoError(t, b.ApplyDiscounts(999_99, nil))
	assert.Equal(t, int64(0), b.NetAmount())
}

func TestNights_CalendarDays(t *testing.T) {
	at := func(day, hour int) time.Time {
		return time.Date(2026, time.September, day, hour, 0, 0, 0, time.UTC)
	}
	tests := []struct {
		name     string
		checkin  time.Time
		checkout time.Time
		want     int
	}{
		{"standard one-night stay", at(10, 14), at(11, 10), 1},
		{"two nights under 48 hours", at(10, 14), at(12, 10), 2},
		{"midnight-aligned week", at(1, 0), at(8, 0), 7},
		{"same-day use still bills one night", at(10, 9), at(10, 17), 1},
		{"late checkout does not add a night", at(10, 14), at(11, 23), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Nights(tt.checkin, tt.checkout))
		})
	}
}

func TestNights_NonMidnightStay(t *testing.T) {
	checkin := time.Now().UTC().Truncate(24 * time.Hour).Add(48*time.Hour + 14*time.Hour)
	checkout := checkin.Add(20 * time.Hour) // 10:00 the next day

	b, err := NewBooking(
		uuid.New(), uuid.New(),
		GuestInfo{Name: "Lan Pham", Email: "lan@example.com"},
		checkin, checkout,
		2, 0, 1,
		MethodCash, 150_00,
	)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Nights())
}
