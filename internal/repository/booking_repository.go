package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	bookingDomain "github.com/Dton04/BookingHotel-sub000/internal/domain/booking"
)

// BookingModel is the GORM persistence model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoomTypeID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	HotelID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	GuestName       string     `gorm:"type:varchar(255);not null"`
	GuestEmail      string     `gorm:"type:varchar(255);not null;index"`
	GuestPhone      string     `gorm:"type:varchar(30)"`
	Checkin         time.Time  `gorm:"type:timestamptz;not null"`
	Checkout        time.Time  `gorm:"type:timestamptz;not null"`
	Adults          int        `gorm:"not null"`
	Children        int        `gorm:"not null;default:0"`
	RoomsBooked     int        `gorm:"not null;default:1"`
	Amount          int64      `gorm:"not null"`
	VoucherDiscount int64      `gorm:"not null;default:0"`
	PaymentMethod   string     `gorm:"type:varchar(20);not null"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus   string     `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentDeadline *time.Time `gorm:"type:timestamptz"`
	GatewayChargeID string     `gorm:"type:varchar(255)"`
	CancelReason    string     `gorm:"type:text"`
	ConfirmedAt     *time.Time `gorm:"type:timestamptz"`
	CanceledAt      *time.Time `gorm:"type:timestamptz"`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt       time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (BookingModel) TableName() string { return "bookings" }

// BookingRepositoryImpl is the GORM-based implementation of the booking
// repository.
type BookingRepositoryImpl struct {
	db *gorm.DB
}

// NewBookingRepository creates a new GORM-based booking repository.
func NewBookingRepository(db *gorm.DB) *BookingRepositoryImpl {
	return &BookingRepositoryImpl{db: db}
}

// FindByID retrieves a booking together with its applied discounts.
func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, err
	}

	applied, err := r.loadApplied(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookingDomain(&model, applied), nil
}

// loadApplied reads the booking's consumed discounts from the usage
// relation, joined for the code.
func (r *BookingRepositoryImpl) loadApplied(ctx context.Context, bookingID uuid.UUID) ([]bookingDomain.AppliedDiscount, error) {
	type row struct {
		DiscountID uuid.UUID
		Code       string
		Amount     int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("discount_usages").
		Select("discount_usages.discount_id, discounts.code, discount_usages.amount").
		Joins("JOIN discounts ON discounts.id = discount_usages.discount_id").
		Where("discount_usages.booking_id = ?", bookingID).
		Order("discount_usages.used_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	applied := make([]bookingDomain.AppliedDiscount, len(rows))
	for i, u := range rows {
		applied[i] = bookingDomain.AppliedDiscount{DiscountID: u.DiscountID, Code: u.Code, Amount: u.Amount}
	}
	return applied, nil
}

// Save persists a new booking aggregate.
func (r *BookingRepositoryImpl) Save(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("booking %s already exists", b.ID())
		}
		return err
	}
	return nil
}

// Update persists changes with optimistic locking on the version column.
func (r *BookingRepositoryImpl) Update(ctx context.Context, b *bookingDomain.Booking) error {
	model := toBookingModel(b)
	previousVersion := b.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Select("*").Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking %s was modified by another transaction", b.ID())
	}
	return nil
}

// ListAll retrieves bookings with pagination (admin).
func (r *BookingRepositoryImpl) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total)

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		applied, err := r.loadApplied(ctx, models[i].ID)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = toBookingDomain(&models[i], applied)
	}
	return bookings, total, nil
}

// GetStats returns booking counts by status and paid net volume (admin).
func (r *BookingRepositoryImpl) GetStats(ctx context.Context) (int64, map[string]int64, error) {
	var totalPaid int64
	r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("payment_status = ?", string(bookingDomain.PaymentPaid)).
		Select("COALESCE(SUM(amount - voucher_discount), 0)").
		Scan(&totalPaid)

	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return 0, nil, err
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return totalPaid, counts, nil
}

// toBookingDomain maps a BookingModel to the domain aggregate.
func toBookingDomain(m *BookingModel, applied []bookingDomain.AppliedDiscount) *bookingDomain.Booking {
	return bookingDomain.Reconstitute(
		m.ID, m.RoomTypeID, m.HotelID,
		bookingDomain.GuestInfo{Name: m.GuestName, Email: m.GuestEmail, Phone: m.GuestPhone},
		m.Checkin, m.Checkout,
		m.Adults, m.Children, m.RoomsBooked,
		m.Amount, m.VoucherDiscount,
		applied,
		bookingDomain.PaymentMethod(m.PaymentMethod),
		bookingDomain.Status(m.Status),
		bookingDomain.PaymentStatus(m.PaymentStatus),
		m.PaymentDeadline,
		m.GatewayChargeID,
		m.CancelReason,
		m.ConfirmedAt, m.CanceledAt,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}

// toBookingModel maps the domain aggregate to a BookingModel.
func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              b.ID(),
		RoomTypeID:      b.RoomTypeID(),
		HotelID:         b.HotelID(),
		GuestName:       b.Guest().Name,
		GuestEmail:      b.Guest().Email,
		GuestPhone:      b.Guest().Phone,
		Checkin:         b.Checkin(),
		Checkout:        b.Checkout(),
		Adults:          b.Adults(),
		Children:        b.Children(),
		RoomsBooked:     b.RoomsBooked(),
		Amount:          b.Amount(),
		VoucherDiscount: b.VoucherDiscount(),
		PaymentMethod:   string(b.PaymentMethod()),
		Status:          string(b.Status()),
		PaymentStatus:   string(b.PaymentStatus()),
		PaymentDeadline: b.PaymentDeadline(),
		GatewayChargeID: b.GatewayChargeID(),
		CancelReason:    b.CancelReason(),
		ConfirmedAt:     b.ConfirmedAt(),
		CanceledAt:      b.CanceledAt(),
		Version:         b.Version(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}
