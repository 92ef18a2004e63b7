package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/booking"
	loyaltyDomain "github.com/Dton04/BookingHotel-sub000/internal/domain/loyalty"
)

// UserModel is the loyalty view of a user. Account management is owned
// by the user service; this engine creates rows lazily by guest email and
// only ever touches the points column.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Points    int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (UserModel) TableName() string { return "users" }

// TransactionModel is one points-ledger entry. The unique booking index
// is the idempotency guard: concurrent confirms produce at most one earn.
type TransactionModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Amount    int64     `gorm:"not null"`
	Points    int64     `gorm:"not null"`
	Type      string    `gorm:"type:varchar(10);not null"`
	Status    string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the table name for GORM.
func (TransactionModel) TableName() string { return "transactions" }

// GormLoyaltyRepository implements the loyalty repository using GORM.
type GormLoyaltyRepository struct {
	db *gorm.DB
}

// NewGormLoyaltyRepository creates a new GormLoyaltyRepository.
func NewGormLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// FindEntryByBooking returns the earn entry for a booking.
func (r *GormLoyaltyRepository) FindEntryByBooking(ctx context.Context, bookingID uuid.UUID) (*loyaltyDomain.Entry, error) {
	var model TransactionModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("points entry", bookingID.String())
		}
		return nil, err
	}
	return toEntry(&model), nil
}

// AppendEntry inserts the ledger entry and credits the balance. Run it
// inside a transaction so the two writes commit together; a duplicate
// booking surfaces as a conflict for the caller's idempotency handling.
func (r *GormLoyaltyRepository) AppendEntry(ctx context.Context, entry *loyaltyDomain.Entry) error {
	model := TransactionModel{
		ID:        entry.ID,
		UserID:    entry.UserID,
		BookingID: entry.BookingID,
		Amount:    entry.Amount,
		Points:    entry.Points,
		Type:      string(entry.Type),
		Status:    string(entry.Status),
		CreatedAt: entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("points already posted for booking %s", entry.BookingID)
		}
		return err
	}

	delta := entry.Points
	if entry.Type == loyaltyDomain.EntryRedeem {
		delta = -delta
	}
	return r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", entry.UserID).
		Updates(map[string]any{
			"points":     gorm.Expr("points + ?", delta),
			"updated_at": time.Now().UTC(),
		}).Error
}

// Balance returns the user's current points balance.
func (r *GormLoyaltyRepository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.NewNotFoundError("user", userID.String())
		}
		return 0, err
	}
	return model.Points, nil
}

// AccumulatedSpend sums the user's paid booking volume by guest email.
func (r *GormLoyaltyRepository) AccumulatedSpend(ctx context.Context, userID uuid.UUID) (int64, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.NewNotFoundError("user", userID.String())
		}
		return 0, err
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("guest_email = ? AND payment_status = ?", model.Email, string(booking.PaymentPaid)).
		Select("COALESCE(SUM(amount - voucher_discount), 0)").
		Scan(&total).Error
	return total, err
}

// FindOrCreateUserByEmail resolves a guest email to a loyalty user.
func (r *GormLoyaltyRepository) FindOrCreateUserByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()
	model := UserModel{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Insert-or-ignore, then read back, so concurrent first sightings of
	// the same guest converge on one row.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&model).Error; err != nil {
		return uuid.Nil, err
	}

	var found UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&found).Error; err != nil {
		return uuid.Nil, err
	}
	return found.ID, nil
}

func toEntry(m *TransactionModel) *loyaltyDomain.Entry {
	return &loyaltyDomain.Entry{
		ID:        m.ID,
		UserID:    m.UserID,
		BookingID: m.BookingID,
		Amount:    m.Amount,
		Points:    m.Points,
		Type:      loyaltyDomain.EntryType(m.Type),
		Status:    loyaltyDomain.EntryStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
}
