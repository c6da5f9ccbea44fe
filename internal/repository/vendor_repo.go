package repository

import (
	"context"

	"weddinghub/internal/domain"

	"gorm.io/gorm"
)

// VendorRepository reads the vendor directory slice this core needs: the
// current tier and payout account. Vendor management lives elsewhere.
type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) GetByID(ctx context.Context, id int64) (*domain.Vendor, error) {
	var v domain.Vendor
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
