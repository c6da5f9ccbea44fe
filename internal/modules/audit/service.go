package audit

import (
	"context"

	"weddinghub/internal/domain"
	"weddinghub/internal/repository"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Recorder appends and lists booking audit entries. History is never
// rewritten: the only mutation is the client-acknowledgment flip, invoked by
// the acknowledgment flow which logs its own companion entry.
type Recorder struct {
	repo *repository.AuditRepository
}

func NewRecorder(repo *repository.AuditRepository) *Recorder {
	return &Recorder{repo: repo}
}

type RecordParams struct {
	BookingID      int64
	Action         domain.AuditAction
	Actor          domain.Actor
	Before         *string
	After          *string
	Description    string
	InvolvesClient bool
	Meta           domain.RequestMeta
}

func (r *Recorder) Record(ctx context.Context, p RecordParams) (*domain.AuditEntry, error) {
	entry := &domain.AuditEntry{
		BookingID:      p.BookingID,
		Action:         p.Action,
		ActorID:        p.Actor.ID,
		ActorRole:      p.Actor.Role,
		ActorName:      p.Actor.Name,
		BeforeState:    p.Before,
		AfterState:     p.After,
		Description:    p.Description,
		InvolvesClient: p.InvolvesClient,
		SourceIP:       p.Meta.SourceIP,
		UserAgent:      p.Meta.UserAgent,
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns entries newest first. The limit is always bounded: unbounded
// history reads are not offered.
func (r *Recorder) List(ctx context.Context, bookingID int64, filter repository.ListFilter, limit, offset int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return r.repo.List(ctx, bookingID, filter, limit, offset)
}

func (r *Recorder) GetByID(ctx context.Context, id int64) (*domain.AuditEntry, error) {
	return r.repo.GetByID(ctx, id)
}

// MarkClientAcknowledged flips the flag on one entry. Exposed for the
// acknowledgment flow only.
func (r *Recorder) MarkClientAcknowledged(ctx context.Context, entryID int64) error {
	return r.repo.MarkClientAcknowledged(ctx, entryID)
}
