package acknowledgment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"weddinghub/internal/domain"
	"weddinghub/internal/modules/audit"
	"weddinghub/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type NotificationSender interface {
	NotifyAcknowledgmentCreated(ctx context.Context, a *domain.Acknowledgment) error
}

// Service persists tamper-evident client acknowledgments. Content is
// serialized canonically and stored next to its SHA-256 digest, so any later
// alteration of the stored content is detectable by re-hashing.
type Service struct {
	acks     *repository.AcknowledgmentRepository
	recorder *audit.Recorder
	notifs   NotificationSender
	log      *logrus.Logger
}

func NewService(acks *repository.AcknowledgmentRepository, recorder *audit.Recorder, notifs NotificationSender, log *logrus.Logger) *Service {
	return &Service{acks: acks, recorder: recorder, notifs: notifs, log: log}
}

// Acknowledge stores the evidence and logs it. When the acknowledgment
// answers a specific audit entry, that entry's flag is flipped and the flip
// is itself recorded as a new entry; history is never rewritten in place.
func (s *Service) Acknowledge(ctx context.Context, bookingID int64, req AcknowledgeRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.Acknowledgment, error) {
	serialized, err := canonicalJSON(req.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: content is not valid JSON", ErrValidation)
	}

	ack := &domain.Acknowledgment{
		BookingID:        bookingID,
		Type:             domain.AcknowledgmentType(req.Type),
		Content:          serialized,
		ContentHash:      digest(serialized),
		Method:           req.Method,
		CannotBeDisputed: true,
		SourceIP:         meta.SourceIP,
		UserAgent:        meta.UserAgent,
	}

	if req.AuditEntryID != nil {
		entry, err := s.recorder.GetByID(ctx, *req.AuditEntryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if entry.BookingID != bookingID {
			return nil, ErrAuditEntryMismatch
		}
	}

	if err := s.acks.Create(ctx, ack); err != nil {
		return nil, err
	}

	if req.AuditEntryID != nil {
		if err := s.recorder.MarkClientAcknowledged(ctx, *req.AuditEntryID); err != nil {
			s.log.WithFields(logrus.Fields{"audit_entry_id": *req.AuditEntryID, "err": err}).
				Warn("failed to flip client-acknowledged flag")
		}
	}

	description := fmt.Sprintf("client acknowledged %s (method=%s, hash=%s)", req.Type, req.Method, ack.ContentHash)
	if req.AuditEntryID != nil {
		description = fmt.Sprintf("%s, answering audit entry %d", description, *req.AuditEntryID)
	}
	if _, err := s.recorder.Record(ctx, audit.RecordParams{
		BookingID:      bookingID,
		Action:         domain.AuditClientAcknowledged,
		Actor:          actor,
		Description:    description,
		InvolvesClient: true,
		Meta:           meta,
	}); err != nil {
		s.log.WithFields(logrus.Fields{"booking_id": bookingID, "err": err}).
			Warn("audit write failed for acknowledgment; acknowledgment stands")
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyAcknowledgmentCreated(ctx, ack)
	}
	return ack, nil
}

// Verify recomputes the digest over the stored serialized content and
// reports. A mismatch means the stored evidence was altered after the fact;
// it is logged and returned, never repaired.
func (s *Service) Verify(ctx context.Context, id int64) (*VerifyResult, error) {
	ack, err := s.acks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	recomputed := digest(ack.Content)
	result := &VerifyResult{
		AcknowledgmentID: ack.ID,
		IsValid:          recomputed == ack.ContentHash,
		StoredHash:       ack.ContentHash,
		RecomputedHash:   recomputed,
	}
	if !result.IsValid {
		s.log.WithFields(logrus.Fields{
			"acknowledgment_id": ack.ID,
			"booking_id":        ack.BookingID,
			"stored_hash":       ack.ContentHash,
			"recomputed_hash":   recomputed,
		}).Error("acknowledgment content hash mismatch: possible tampering")
	}
	return result, nil
}

func (s *Service) ListByBooking(ctx context.Context, bookingID int64, limit, offset int) ([]domain.Acknowledgment, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.acks.ListByBooking(ctx, bookingID, limit, offset)
}

// canonicalJSON re-encodes arbitrary JSON deterministically (object keys
// sorted, insignificant whitespace dropped) so equal content always hashes
// to the same digest.
func canonicalJSON(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func digest(serialized string) string {
	sum := sha256.Sum256([]byte(serialized))
	return hex.EncodeToString(sum[:])
}
