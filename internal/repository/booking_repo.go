package repository

import (
	"context"
	"errors"
	"strings"

	"weddinghub/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ErrDuplicateIdempotencyKey signals a replayed create: the booking for this
// key already exists and should be returned instead of inserted again.
var ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateIdempotencyKey
		}
		return err
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) ListByVendor(ctx context.Context, vendorID int64, limit, offset int) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// IsUniqueViolation detects duplicate-key failures across the postgres and
// sqlite backends.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
