package discount

import (
	"strings"
	"time"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	"github.com/google/uuid"
)

// Type classifies how a discount is triggered.
type Type string

const (
	TypeVoucher     Type = "voucher"     // redeemed by code
	TypeFestival    Type = "festival"    // date-window promotion
	TypeMember      Type = "member"      // gated on membership tier
	TypeAccumulated Type = "accumulated" // gated on lifetime paid spend
)

// ValueType is how the discount value is interpreted.
type ValueType string

const (
	ValuePercentage ValueType = "percentage"
	ValueFixed      ValueType = "fixed"
)

// Discount is a promotional rule. A code is required and unique only for
// voucher-type discounts; the other types are matched by eligibility.
type Discount struct {
	id               uuid.UUID
	code             string
	typ              Type
	valueType        ValueType
	value            int64
	roomTypeIDs      []uuid.UUID // empty = applies to all room types
	startDate        time.Time
	endDate          time.Time
	minBookingAmount int64
	maxDiscount      int64 // cap for percentage discounts, 0 = uncapped
	stackable        bool
	membershipLevel  int   // member type only
	minSpending      int64 // accumulated type only
	deleted          bool
	createdAt        time.Time
	updatedAt        time.Time
}

// New validates and creates a discount definition.
func New(
	code string,
	typ Type,
	valueType ValueType,
	value int64,
	roomTypeIDs []uuid.UUID,
	startDate, endDate time.Time,
	minBookingAmount, maxDiscount int64,
	stackable bool,
	membershipLevel int,
	minSpending int64,
) (*Discount, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	switch typ {
	case TypeVoucher:
		if code == "" {
			return nil, domain.NewValidationError("voucher discounts require a code")
		}
	case TypeFestival, TypeMember, TypeAccumulated:
	default:
		return nil, domain.NewValidationError("invalid discount type: %s", typ)
	}
	if valueType != ValuePercentage && valueType != ValueFixed {
		return nil, domain.NewValidationError("invalid discount value type: %s", valueType)
	}
	if value <= 0 {
		return nil, domain.NewValidationError("discount value must be positive")
	}
	if valueType == ValuePercentage && value > 100 {
		return nil, domain.NewValidationError("percentage discount cannot exceed 100")
	}
	if !startDate.Before(endDate) {
		return nil, domain.NewValidationError("start date must be before end date")
	}
	if typ == TypeMember && membershipLevel < 1 {
		return nil, domain.NewValidationError("member discounts require a membership level")
	}
	if typ == TypeAccumulated && minSpending <= 0 {
		return nil, domain.NewValidationError("accumulated discounts require a minimum spending")
	}

	now := time.Now().UTC()
	return &Discount{
		id:               uuid.New(),
		code:             code,
		typ:              typ,
		valueType:        valueType,
		value:            value,
		roomTypeIDs:      roomTypeIDs,
		startDate:        startDate,
		endDate:          endDate,
		minBookingAmount: minBookingAmount,
		maxDiscount:      maxDiscount,
		stackable:        stackable,
		membershipLevel:  membershipLevel,
		minSpending:      minSpending,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstitute rebuilds a Discount from persistence.
func Reconstitute(
	id uuid.UUID,
	code string,
	typ Type,
	valueType ValueType,
	value int64,
	roomTypeIDs []uuid.UUID,
	startDate, endDate time.Time,
	minBookingAmount, maxDiscount int64,
	stackable bool,
	membershipLevel int,
	minSpending int64,
	deleted bool,
	createdAt, updatedAt time.Time,
) *Discount {
	return &Discount{
		id:               id,
		code:             code,
		typ:              typ,
		valueType:        valueType,
		value:            value,
		roomTypeIDs:      roomTypeIDs,
		startDate:        startDate,
		endDate:          endDate,
		minBookingAmount: minBookingAmount,
		maxDiscount:      maxDiscount,
		stackable:        stackable,
		membershipLevel:  membershipLevel,
		minSpending:      minSpending,
		deleted:          deleted,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (d *Discount) ID() uuid.UUID        { return d.id }
func (d *Discount) Code() string         { return d.code }
func (d *Discount) Type() Type           { return d.typ }
func (d *Discount) ValueType() ValueType { return d.valueType }
func (d *Discount) Value() int64         { return d.value }
func (d *Discount) RoomTypeIDs() []uuid.UUID {
	out := make([]uuid.UUID, len(d.roomTypeIDs))
	copy(out, d.roomTypeIDs)
	return out
}
func (d *Discount) StartDate() time.Time    { return d.startDate }
func (d *Discount) EndDate() time.Time      { return d.endDate }
func (d *Discount) MinBookingAmount() int64 { return d.minBookingAmount }
func (d *Discount) MaxDiscount() int64      { return d.maxDiscount }
func (d *Discount) Stackable() bool         { return d.stackable }
func (d *Discount) MembershipLevel() int    { return d.membershipLevel }
func (d *Discount) MinSpending() int64      { return d.minSpending }
func (d *Discount) Deleted() bool           { return d.deleted }
func (d *Discount) CreatedAt() time.Time    { return d.createdAt }
func (d *Discount) UpdatedAt() time.Time    { return d.updatedAt }

// SoftDelete retires the discount without breaking usage history.
func (d *Discount) SoftDelete() {
	d.deleted = true
	d.updatedAt = time.Now().UTC()
}

// activeAt reports whether now falls inside [startDate, endDate).
func (d *Discount) activeAt(now time.Time) bool {
	return !d.deleted && !now.Before(d.startDate) && now.Before(d.endDate)
}

// appliesToRoomType reports whether the discount targets the room type.
func (d *Discount) appliesToRoomType(roomTypeID uuid.UUID) bool {
	if len(d.roomTypeIDs) == 0 {
		return true
	}
	for _, id := range d.roomTypeIDs {
		if id == roomTypeID {
			return true
		}
	}
	return false
}

// rawAmount computes the discount against an amount, applying the
// percentage cap when set. It never exceeds the amount itself.
func (d *Discount) rawAmount(amount int64) int64 {
	var raw int64
	switch d.valueType {
	case ValuePercentage:
		raw = amount * d.value / 100
		if d.maxDiscount > 0 && raw > d.maxDiscount {
			raw = d.maxDiscount
		}
	case ValueFixed:
		raw = d.value
	}
	if raw > amount {
		raw = amount
	}
	return raw
}
