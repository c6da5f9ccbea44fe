package escrow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"weddinghub/internal/domain"
	"weddinghub/internal/gateway"
	"weddinghub/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service is the custody state machine for held funds. Booking status is the
// client/vendor-visible workflow; escrow status answers one question only:
// has the held money moved, and in which direction. Keeping them separate
// means cancellation policy can evolve without weakening the guarantee that
// money moves at most once.
type Service struct {
	db       *gorm.DB
	releases *repository.EscrowReleaseRepository
	audits   *repository.AuditRepository
	gateway  gateway.PaymentGateway
	notifs   NotificationSender
	log      *logrus.Logger
}

func NewService(
	db *gorm.DB,
	releases *repository.EscrowReleaseRepository,
	audits *repository.AuditRepository,
	gw gateway.PaymentGateway,
	notifs NotificationSender,
	log *logrus.Logger,
) *Service {
	return &Service{
		db:       db,
		releases: releases,
		audits:   audits,
		gateway:  gw,
		notifs:   notifs,
		log:      log,
	}
}

// releaseIdempotencyKey is stable per booking so any retry of a failed
// release reuses it and the provider dedupes the transfer.
func releaseIdempotencyKey(bookingID int64) string {
	return fmt.Sprintf("escrow-release-%d", bookingID)
}

// Release moves escrow held -> released: transfers exactly the escrow amount
// to the vendor's payout account, stamps the booking, and writes the one
// EscrowRelease record. Calling it again after success is a no-op that
// returns the existing release.
func (s *Service) Release(ctx context.Context, bookingID int64, actor domain.Actor, reason string, meta domain.RequestMeta) (*domain.EscrowRelease, error) {
	var (
		booking domain.Booking
		release *domain.EscrowRelease
		noop    bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		switch booking.EscrowStatus {
		case domain.EscrowReleased:
			// Idempotent replay: the transfer already happened exactly once.
			var existing domain.EscrowRelease
			if err := tx.Where("booking_id = ?", bookingID).First(&existing).Error; err != nil {
				return err
			}
			release = &existing
			noop = true
			return nil
		case domain.EscrowRefunded:
			return ErrAlreadyFinalized
		}

		if booking.Status != domain.BookingCompleted {
			return fmt.Errorf("%w: booking is %s, not completed", ErrInvalidTransition, booking.Status)
		}

		transferRef, err := s.gateway.Transfer(ctx, booking.EscrowAmount, booking.PayoutAccountRef, releaseIdempotencyKey(bookingID))
		if err != nil {
			if errors.Is(err, gateway.ErrRejected) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}

		now := time.Now().UTC()
		res := tx.Model(&domain.Booking{}).
			Where("id = ? AND version = ?", bookingID, booking.Version).
			Updates(map[string]any{
				"escrow_status":      domain.EscrowReleased,
				"escrow_released_at": now,
				"version":            booking.Version + 1,
				"updated_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("booking row changed under escrow release lock")
		}
		booking.EscrowStatus = domain.EscrowReleased
		booking.EscrowReleasedAt = &now

		release = &domain.EscrowRelease{
			BookingID:   bookingID,
			Amount:      booking.EscrowAmount,
			TransferRef: transferRef,
			ReleasedBy:  actor.Ref(),
			Reason:      reason,
		}
		return tx.Create(release).Error
	})
	if err != nil {
		return nil, err
	}

	if !noop {
		s.recordAudit(ctx, &booking, domain.AuditEscrowReleased, domain.EscrowReleased, actor, meta,
			fmt.Sprintf("escrow of %d released to %s via transfer %s", release.Amount, booking.PayoutAccountRef, release.TransferRef))
		if s.notifs != nil {
			_ = s.notifs.NotifyEscrowReleased(ctx, &booking, release)
		}
	}
	return release, nil
}

// Refund moves escrow held -> refunded when the booking was cancelled or
// refunded. No vendor transfer happens; returning the charge to the client is
// the gateway's refund path, outside escrow custody.
func (s *Service) Refund(ctx context.Context, bookingID int64, actor domain.Actor, reason string, meta domain.RequestMeta) (*domain.Booking, error) {
	var (
		booking domain.Booking
		noop    bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		switch booking.EscrowStatus {
		case domain.EscrowRefunded:
			noop = true
			return nil
		case domain.EscrowReleased:
			return ErrAlreadyFinalized
		}

		if booking.Status != domain.BookingCancelled && booking.Status != domain.BookingRefunded {
			return fmt.Errorf("%w: booking is %s, not cancelled or refunded", ErrInvalidTransition, booking.Status)
		}

		now := time.Now().UTC()
		res := tx.Model(&domain.Booking{}).
			Where("id = ? AND version = ?", bookingID, booking.Version).
			Updates(map[string]any{
				"escrow_status": domain.EscrowRefunded,
				"version":       booking.Version + 1,
				"updated_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("booking row changed under escrow refund lock")
		}
		booking.EscrowStatus = domain.EscrowRefunded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !noop {
		s.recordAudit(ctx, &booking, domain.AuditEscrowRefunded, domain.EscrowRefunded, actor, meta,
			fmt.Sprintf("escrow of %d marked refunded: %s", booking.EscrowAmount, reason))
		if s.notifs != nil {
			_ = s.notifs.NotifyEscrowRefunded(ctx, &booking)
		}
	}
	return &booking, nil
}

func (s *Service) ListReleases(ctx context.Context, bookingID int64) ([]domain.EscrowRelease, error) {
	return s.releases.ListByBooking(ctx, bookingID)
}

// recordAudit runs after the financial commit. The money already moved, so a
// failed audit write must not roll anything back; it is logged for alerting
// and retried out of band.
func (s *Service) recordAudit(ctx context.Context, b *domain.Booking, action domain.AuditAction, newEscrow domain.EscrowStatus, actor domain.Actor, meta domain.RequestMeta, description string) {
	before := escrowSnapshot(b.Status, domain.EscrowHeld)
	after := escrowSnapshot(b.Status, newEscrow)
	entry := &domain.AuditEntry{
		BookingID:      b.ID,
		Action:         action,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		ActorName:      actor.Name,
		BeforeState:    before,
		AfterState:     after,
		Description:    description,
		InvolvesClient: action == domain.AuditEscrowRefunded,
		SourceIP:       meta.SourceIP,
		UserAgent:      meta.UserAgent,
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		s.log.WithFields(logrus.Fields{
			"booking_id": b.ID,
			"action":     action,
			"err":        err,
		}).Warn("audit write failed after escrow transition; transition stands")
	}
}

func escrowSnapshot(status domain.BookingStatus, escrow domain.EscrowStatus) *string {
	raw, _ := json.Marshal(map[string]string{
		"status":        string(status),
		"escrow_status": string(escrow),
	})
	s := string(raw)
	return &s
}
