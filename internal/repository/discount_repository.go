package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	discountDomain "github.com/Dton04/BookingHotel-sub000/internal/domain/discount"
)

// DiscountModel is the GORM model for the discounts table.
type DiscountModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code             string    `gorm:"type:varchar(50);uniqueIndex:uniq_discount_code,where:code <> ''"`
	Type             string    `gorm:"type:varchar(20);not null"`
	ValueType        string    `gorm:"type:varchar(20);not null"`
	Value            int64     `gorm:"not null"`
	StartDate        time.Time `gorm:"type:timestamptz;not null"`
	EndDate          time.Time `gorm:"type:timestamptz;not null"`
	MinBookingAmount int64     `gorm:"not null;default:0"`
	MaxDiscount      int64     `gorm:"not null;default:0"`
	Stackable        bool      `gorm:"not null;default:false"`
	MembershipLevel  int       `gorm:"not null;default:0"`
	MinSpending      int64     `gorm:"not null;default:0"`
	IsDeleted        bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt        time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (DiscountModel) TableName() string { return "discounts" }

// DiscountRoomTypeModel scopes a discount to specific room types. No rows
// means the discount applies to all.
type DiscountRoomTypeModel struct {
	DiscountID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomTypeID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName specifies the table name for GORM.
func (DiscountRoomTypeModel) TableName() string { return "discount_room_types" }

// DiscountUsageModel is the keyed per-user usage relation. The unique
// (discount_id, user_id) index makes check-and-increment race-safe.
type DiscountUsageModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DiscountID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_discount_user,priority:1"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_discount_user,priority:2"`
	BookingID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount     int64     `gorm:"not null"`
	Count      int       `gorm:"not null;default:1"`
	UsedAt     time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (DiscountUsageModel) TableName() string { return "discount_usages" }

// GormDiscountRepository implements the discount repository using GORM.
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository.
func NewGormDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// Save persists a new discount and its room-type scope.
func (r *GormDiscountRepository) Save(ctx context.Context, d *discountDomain.Discount) error {
	model := toDiscountModel(d)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("discount code %s already exists", d.Code())
		}
		return err
	}
	return r.saveRoomTypeScope(ctx, d)
}

// Update persists changes to a discount.
func (r *GormDiscountRepository) Update(ctx context.Context, d *discountDomain.Discount) error {
	model := toDiscountModel(d)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Where("discount_id = ?", d.ID()).Delete(&DiscountRoomTypeModel{}).Error; err != nil {
		return err
	}
	return r.saveRoomTypeScope(ctx, d)
}

func (r *GormDiscountRepository) saveRoomTypeScope(ctx context.Context, d *discountDomain.Discount) error {
	ids := d.RoomTypeIDs()
	if len(ids) == 0 {
		return nil
	}
	rows := make([]DiscountRoomTypeModel, len(ids))
	for i, id := range ids {
		rows[i] = DiscountRoomTypeModel{DiscountID: d.ID(), RoomTypeID: id}
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByID returns a discount by ID.
func (r *GormDiscountRepository) FindByID(ctx context.Context, id uuid.UUID) (*discountDomain.Discount, error) {
	var model DiscountModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("discount", id.String())
		}
		return nil, err
	}
	return r.toDomain(ctx, &model)
}

// FindByCode returns a voucher discount by its code.
func (r *GormDiscountRepository) FindByCode(ctx context.Context, code string) (*discountDomain.Discount, error) {
	var model DiscountModel
	if err := r.db.WithContext(ctx).Where("code = ? AND is_deleted = false", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("discount", code)
		}
		return nil, err
	}
	return r.toDomain(ctx, &model)
}

// FindActive returns all non-deleted discounts whose window contains now.
func (r *GormDiscountRepository) FindActive(ctx context.Context, now time.Time) ([]*discountDomain.Discount, error) {
	var models []DiscountModel
	if err := r.db.WithContext(ctx).
		Where("is_deleted = false AND start_date <= ? AND end_date > ?", now, now).
		Order("created_at").
		Find(&models).Error; err != nil {
		return nil, err
	}

	discounts := make([]*discountDomain.Discount, len(models))
	for i := range models {
		d, err := r.toDomain(ctx, &models[i])
		if err != nil {
			return nil, err
		}
		discounts[i] = d
	}
	return discounts, nil
}

// UsageCounts returns the user's consumption count per discount.
func (r *GormDiscountRepository) UsageCounts(ctx context.Context, userID uuid.UUID, discountIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(discountIDs))
	if len(discountIDs) == 0 {
		return counts, nil
	}

	var rows []DiscountUsageModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND discount_id IN ?", userID, discountIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.DiscountID] = row.Count
	}
	return counts, nil
}

// ConsumeUsage records one consumption. The unique (discount_id,
// user_id) index turns a concurrent double-redeem into a conflict instead
// of a second row.
func (r *GormDiscountRepository) ConsumeUsage(ctx context.Context, usage *discountDomain.Usage) error {
	model := DiscountUsageModel{
		ID:         usage.ID,
		DiscountID: usage.DiscountID,
		UserID:     usage.UserID,
		BookingID:  usage.BookingID,
		Amount:     usage.Amount,
		Count:      1,
		UsedAt:     usage.UsedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("discount already used by this user")
		}
		return err
	}
	return nil
}

func (r *GormDiscountRepository) toDomain(ctx context.Context, m *DiscountModel) (*discountDomain.Discount, error) {
	var scope []DiscountRoomTypeModel
	if err := r.db.WithContext(ctx).Where("discount_id = ?", m.ID).Find(&scope).Error; err != nil {
		return nil, err
	}
	roomTypeIDs := make([]uuid.UUID, len(scope))
	for i, s := range scope {
		roomTypeIDs[i] = s.RoomTypeID
	}

	return discountDomain.Reconstitute(
		m.ID, m.Code,
		discountDomain.Type(m.Type),
		discountDomain.ValueType(m.ValueType),
		m.Value,
		roomTypeIDs,
		m.StartDate, m.EndDate,
		m.MinBookingAmount, m.MaxDiscount,
		m.Stackable,
		m.MembershipLevel,
		m.MinSpending,
		m.IsDeleted,
		m.CreatedAt, m.UpdatedAt,
	), nil
}

func toDiscountModel(d *discountDomain.Discount) DiscountModel {
	return DiscountModel{
		ID:               d.ID(),
		Code:             d.Code(),
		Type:             string(d.Type()),
		ValueType:        string(d.ValueType()),
		Value:            d.Value(),
		StartDate:        d.StartDate(),
		EndDate:          d.EndDate(),
		MinBookingAmount: d.MinBookingAmount(),
		MaxDiscount:      d.MaxDiscount(),
		Stackable:        d.Stackable(),
		MembershipLevel:  d.MembershipLevel(),
		MinSpending:      d.MinSpending(),
		IsDeleted:        d.Deleted(),
		CreatedAt:        d.CreatedAt(),
		UpdatedAt:        d.UpdatedAt(),
	}
}
