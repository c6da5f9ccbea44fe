package repository

import (
	"context"

	"weddinghub/internal/domain"

	"gorm.io/gorm"
)

// AuditRepository is append-only: entries are created and listed, never
// updated or deleted, except the explicit client-acknowledgment flip.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, e *domain.AuditEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) GetByID(ctx context.Context, id int64) (*domain.AuditEntry, error) {
	var e domain.AuditEntry
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Action             domain.AuditAction
	InvolvesClientOnly bool
}

func (r *AuditRepository) List(ctx context.Context, bookingID int64, f ListFilter, limit, offset int) ([]domain.AuditEntry, error) {
	q := r.db.WithContext(ctx).Where("booking_id = ?", bookingID)
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.InvolvesClientOnly {
		q = q.Where("involves_client = ?", true)
	}

	var out []domain.AuditEntry
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, err
}

// MarkClientAcknowledged flips the acknowledgment flag on one entry. The
// caller records a companion entry describing the flip; history itself is
// never rewritten beyond this flag.
func (r *AuditRepository) MarkClientAcknowledged(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&domain.AuditEntry{}).
		Where("id = ?", id).
		Update("client_acknowledged", true).Error
}
