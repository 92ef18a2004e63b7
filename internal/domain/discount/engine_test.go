package discount

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDiscount(t *testing.T, code string, typ Type, vt ValueType, value int64, opts ...func(*builder)) *Discount {
	t.Helper()
	b := &builder{
		start: time.Now().UTC().Add(-time.Hour),
		end:   time.Now().UTC().Add(24 * time.Hour),
	}
	for _, opt := range opts {
		opt(b)
	}
	d, err := New(code, typ, vt, value, b.roomTypes, b.start, b.end, b.minAmount, b.maxOff, b.stackable, b.memberLevel, b.minSpending)
	require.NoError(t, err)
	return d
}

type builder struct {
	roomTypes   []uuid.UUID
	start, end  time.Time
	minAmount   int64
	maxOff      int64
	stackable   bool
	memberLevel int
	minSpending int64
}

func stackable() func(*builder) {
	return func(b *builder) { b.stackable = true }
}

func minAmount(v int64) func(*builder) {
	return func(b *builder) { b.minAmount = v }
}

func maxOff(v int64) func(*builder) {
	return func(b *builder) { b.maxOff = v }
}

func memberLevel(l int) func(*builder) {
	return func(b *builder) { b.memberLevel = l }
}

func minSpending(v int64) func(*builder) {
	return func(b *builder) { b.minSpending = v }
}
func forRooms(ids ...uuid.UUID) func(*builder) {
	return func(b *builder) { b.roomTypes = ids }
}
func window(start, end time.Time) func(*builder) {
	return func(b *builder) { b.start = start; b.end = end }
}

func freshUser() UserSnapshot {
	return UserSnapshot{ID: uuid.New(), UsedCounts: map[uuid.UUID]int{}}
}

func TestApply_EmptyCandidates(t *testing.T) {
	res := Apply(100_00, uuid.New(), freshUser(), time.Now().UTC(), nil)
	assert.Equal(t, int64(100_00), res.NetAmount)
	assert.Empty(t, res.Applied)
	assert.Empty(t, res.Consumed)
}

func TestApply_PercentageAndFixed(t *testing.T) {
	now := time.Now().UTC()
	pct := mustDiscount(t, "TEN", TypeVoucher, ValuePercentage, 10, stackable())
	fixed := mustDiscount(t, "OFF5", TypeVoucher, ValueFixed, 5_00, stackable())

	res := Apply(100_00, uuid.New(), freshUser(), now, []*Discount{pct, fixed})
	require.Len(t, res.Applied, 2)
	assert.Equal(t, int64(10_00), res.Applied[0].Amount)
	assert.Equal(t, int64(5_00), res.Applied[1].Amount)
	assert.Equal(t, int64(85_00), res.NetAmount)
	assert.ElementsMatch(t, []uuid.UUID{pct.ID(), fixed.ID()}, res.Consumed)
}

func TestApply_PercentageCap(t *testing.T) {
	d := mustDiscount(t, "BIG", TypeVoucher, ValuePercentage, 50, maxOff(20_00))
	res := Apply(100_00, uuid.New(), freshUser(), time.Now().UTC(), []*Discount{d})
	require.Len(t, res.Applied, 1)
	assert.Equal(t, int64(20_00), res.Applied[0].Amount)
}

func TestApply_SkipsInactiveWindow(t *testing.T) {
	now := time.Now().UTC()
	past := mustDiscount(t, "PAST", TypeVoucher, ValuePercentage, 10,
		window(now.Add(-48*time.Hour), now.Add(-24*time.Hour)))
	future := mustDiscount(t, "SOON", TypeVoucher, ValuePercentage, 10,
		window(now.Add(24*time.Hour), now.Add(48*time.Hour)))

	res := Apply(100_00, uuid.New(), freshUser(), now, []*Discount{past, future})
	assert.Empty(t, res.Applied)
	assert.Equal(t, int64(100_00), res.NetAmount)
}

func TestApply_SkipsDeleted(t *testing.T) {
	d := mustDiscount(t, "GONE", TypeVoucher, ValuePercentage, 10)
	d.SoftDelete()
	res := Apply(100_00, uuid.New(), freshUser(), time.Now().UTC(), []*Discount{d})
	assert.Empty(t, res.Applied)
}

func TestApply_RoomTypeScope(t *testing.T) {
	target := uuid.New()
	other := uuid.New()
	scoped := mustDiscount(t, "SUITE", TypeVoucher, ValuePercentage, 10, forRooms(target))

	res := Apply(100_00, other, freshUser(), time.Now().UTC(), []*Discount{scoped})
	assert.Empty(t, res.Applied)

	res = Apply(100_00, target, freshUser(), time.Now().UTC(), []*Discount{scoped})
	assert.Len(t, res.Applied, 1)
}

func TestApply_MinBookingAmount(t *testing.T) {
	d := mustDiscount(t, "SPEND", TypeVoucher, ValueFixed, 10_00, minAmount(200_00))
	res := Apply(100_00, uuid.New(), freshUser(), time.Now().UTC(), []*Discount{d})
	assert.Empty(t, res.Applied)
}

func TestApply_OneUsePerUser(t *testing.T) {
	d := mustDiscount(t, "ONCE", TypeVoucher, ValueFixed, 10_00)
	user := freshUser()
	user.UsedCounts[d.ID()] = 1

	res := Apply(100_00, uuid.New(), user, time.Now().UTC(), []*Discount{d})
	assert.Empty(t, res.Applied)
}

func TestApply_NonStackableCannotJoin(t *testing.T) {
	first := mustDiscount(t, "FIRST", TypeVoucher, ValueFixed, 10_00, stackable())
	exclusive := mustDiscount(t, "SOLO", TypeVoucher, ValueFixed, 20_00)

	res := Apply(100_00, uuid.New(), freshUser(), time.Now().UTC(), []*Discount{first, exclusive})
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "FIRST", res.Applied[0].Code)

	// Alone, the non-stackable one applies fine.
	res = Apply(100_00, uuid.New(), freshUser(), time.Now().UTC(), []*Discount{exclusive})
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "SOLO", res.Applied[0].Code)
}

func TestApply_NonStackableClosesTheSet(t *testing.T) {
	exclusive := mustDiscount(t, "SOLO", TypeVoucher, ValueFixed, 20_00)
	later := mustDiscount(t, "AFTER", TypeVoucher, ValueFixed, 10_00, stackable())

	// Exclusivity cuts both ways: a stackable candidate evaluated after
	// an accepted non-stackable one is rejected too.
	res := Apply(100_00, uuid.New(), freshUser(), time.Now().UTC(), []*Discount{exclusive, later})
	require.Len(t, res.Applied, 1)
	assert.Equal(t, "SOLO", res.Applied[0].Code)
	assert.Equal(t, int64(80_00), res.NetAmount)
}

func TestApply_MemberLevelGate(t *testing.T) {
	gold := mustDiscount(t, "", TypeMember, ValuePercentage, 15, memberLevel(2))

	user := freshUser()
	user.MembershipLevel = 1
	res := Apply(100_00, uuid.New(), user, time.Now().UTC(), []*Discount{gold})
	assert.Empty(t, res.Applied)

	user.MembershipLevel = 2
	res = Apply(100_00, uuid.New(), user, time.Now().UTC(), []*Discount{gold})
	assert.Len(t, res.Applied, 1)
}

func TestApply_AccumulatedSpendGate(t *testing.T) {
	loyal := mustDiscount(t, "", TypeAccumulated, ValueFixed, 25_00, minSpending(1_000_00))

	user := freshUser()
	user.AccumulatedSpend = 500_00
	res := Apply(100_00, uuid.New(), user, time.Now().UTC(), []*Discount{loyal})
	assert.Empty(t, res.Applied)

	user.AccumulatedSpend = 1_500_00
	res = Apply(100_00, uuid.New(), user, time.Now().UTC(), []*Discount{loyal})
	assert.Len(t, res.Applied, 1)
}

func TestApply_TotalClampedToAmount(t *testing.T) {
	a := mustDiscount(t, "A", TypeVoucher, ValueFixed, 80_00, stackable())
	b := mustDiscount(t, "B", TypeVoucher, ValueFixed, 80_00, stackable())

	res := Apply(100_00, uuid.New(), freshUser(), time.Now().UTC(), []*Discount{a, b})
	assert.Equal(t, int64(0), res.NetAmount)
}

func TestNew_Validation(t *testing.T) {
	now := time.Now().UTC()

	_, err := New("", TypeVoucher, ValuePercentage, 10, nil, now, now.Add(time.Hour), 0, 0, false, 0, 0)
	assert.Error(t, err, "voucher without code")

	_, err = New("X", TypeVoucher, ValuePercentage, 120, nil, now, now.Add(time.Hour), 0, 0, false, 0, 0)
	assert.Error(t, err, "percentage over 100")

	_, err = New("X", TypeVoucher, ValueFixed, 10, nil, now.Add(time.Hour), now, 0, 0, false, 0, 0)
	assert.Error(t, err, "inverted window")

	_, err = New("", TypeMember, ValuePercentage, 10, nil, now, now.Add(time.Hour), 0, 0, false, 0, 0)
	assert.Error(t, err, "member discount without level")

	d, err := New("  summer10 ", TypeVoucher, ValuePercentage, 10, nil, now, now.Add(time.Hour), 0, 0, false, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", d.Code(), "codes normalize to upper case")
}
