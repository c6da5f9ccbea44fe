package repository

import (
	"context"

	"weddinghub/internal/domain"

	"gorm.io/gorm"
)

type EscrowReleaseRepository struct {
	db *gorm.DB
}

func NewEscrowReleaseRepository(db *gorm.DB) *EscrowReleaseRepository {
	return &EscrowReleaseRepository{db: db}
}

func (r *EscrowReleaseRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.EscrowRelease, error) {
	var out []domain.EscrowRelease
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *EscrowReleaseRepository) GetByBooking(ctx context.Context, bookingID int64) (*domain.EscrowRelease, error) {
	var rel domain.EscrowRelease
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&rel).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}
