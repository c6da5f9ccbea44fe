package repository

import (
	"context"

	"weddinghub/internal/domain"

	"gorm.io/gorm"
)

// AcknowledgmentRepository is append-only. Stored content and hashes are
// evidence; nothing here rewrites them.
type AcknowledgmentRepository struct {
	db *gorm.DB
}

func NewAcknowledgmentRepository(db *gorm.DB) *AcknowledgmentRepository {
	return &AcknowledgmentRepository{db: db}
}

func (r *AcknowledgmentRepository) Create(ctx context.Context, a *domain.Acknowledgment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AcknowledgmentRepository) GetByID(ctx context.Context, id int64) (*domain.Acknowledgment, error) {
	var a domain.Acknowledgment
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AcknowledgmentRepository) ListByBooking(ctx context.Context, bookingID int64, limit, offset int) ([]domain.Acknowledgment, error) {
	var out []domain.Acknowledgment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}
