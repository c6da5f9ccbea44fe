package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"weddinghub/internal/domain"
	"weddinghub/internal/gateway"
	"weddinghub/internal/modules/commission"
	"weddinghub/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// statusTransitions is the booking workflow graph. Escrow custody has its own
// machine in the escrow module; this one is the client/vendor-visible state.
var statusTransitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:  {domain.BookingAccepted, domain.BookingDeclined, domain.BookingCancelled},
	domain.BookingAccepted: {domain.BookingCompleted, domain.BookingCancelled, domain.BookingRefunded},
}

func transitionAllowed(from, to domain.BookingStatus) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Service struct {
	db       *gorm.DB
	bookings *repository.BookingRepository
	table    commission.Table
	gateway  gateway.PaymentGateway
	vendors  VendorDirectory
	notifs   NotificationSender
	log      *logrus.Logger
}

func NewService(
	db *gorm.DB,
	bookings *repository.BookingRepository,
	table commission.Table,
	gw gateway.PaymentGateway,
	vendors VendorDirectory,
	notifs NotificationSender,
	log *logrus.Logger,
) *Service {
	return &Service{
		db:       db,
		bookings: bookings,
		table:    table,
		gateway:  gw,
		vendors:  vendors,
		notifs:   notifs,
		log:      log,
	}
}

// Create authorizes the charge and persists the booking in pending status
// with escrow held. The idempotency key makes the whole operation replayable:
// a second call with the same key returns the already-created booking without
// touching the gateway again.
func (s *Service) Create(ctx context.Context, clientID int64, req CreateBookingRequest, actor domain.Actor, meta domain.RequestMeta) (*domain.Booking, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	} else if existing, err := s.bookings.GetByIdempotencyKey(ctx, key); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	vendor, err := s.vendors.GetByID(ctx, req.VendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}

	tier := commission.Tier(vendor.Tier)
	split, err := s.table.ComputeSplit(req.GrossAmount, tier)
	if err != nil {
		return nil, err
	}
	rate, err := s.table.Rate(tier)
	if err != nil {
		return nil, err
	}

	// Authorize before persisting: a declined charge leaves no partial state.
	chargeID, err := s.gateway.AuthorizeCharge(ctx, req.GrossAmount, fmt.Sprintf("client-%d", clientID), map[string]string{
		"idempotency_key": key,
		"vendor_id":       fmt.Sprintf("%d", req.VendorID),
	})
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		ClientID:         clientID,
		VendorID:         req.VendorID,
		ServiceType:      req.ServiceType,
		EventDate:        req.EventDate,
		GrossAmount:      req.GrossAmount,
		CommissionRate:   rate,
		CommissionAmount: split.CommissionAmount,
		VendorNetAmount:  split.VendorNetAmount,
		DepositAmount:    split.DepositAmount,
		EscrowAmount:     split.EscrowAmount,
		PayoutAccountRef: vendor.PayoutAccountRef,
		ChargeID:         chargeID,
		IdempotencyKey:   key,
		Status:           domain.BookingPending,
		EscrowStatus:     domain.EscrowHeld,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		entry := newAuditEntry(b.ID, domain.AuditBookingCreated, actor, nil, statusSnapshot(b.Status, b.EscrowStatus), meta)
		entry.Description = fmt.Sprintf("booking created: gross=%d commission=%d deposit=%d escrow=%d charge=%s",
			b.GrossAmount, b.CommissionAmount, b.DepositAmount, b.EscrowAmount, chargeID)
		entry.InvolvesClient = true
		return tx.Create(entry).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			// Charge authorized, insert raced a replay: the first writer won,
			// return its row.
			s.log.WithField("idempotency_key", key).Info("booking create raced a replay; returning existing row")
			return s.bookings.GetByIdempotencyKey(ctx, key)
		}
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCreated(ctx, b)
	}
	return b, nil
}

// UpdateStatus applies one workflow transition and its audit entry in a
// single transaction, guarded by an optimistic version check. Replaying an
// already-applied transition is a no-op success so at-least-once webhook
// delivery stays safe; a conflicting concurrent writer loses with
// ErrConcurrentModification and must decide against the new state.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, newStatus domain.BookingStatus, reason string, actor domain.Actor, meta domain.RequestMeta) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if b.Status == newStatus {
		return b, nil
	}
	if !transitionAllowed(b.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, newStatus)
	}
	previous := b.Status

	now := time.Now().UTC()
	updates := map[string]any{
		"status":     newStatus,
		"version":    b.Version + 1,
		"updated_at": now,
	}
	if newStatus == domain.BookingCompleted {
		updates["completed_at"] = now
	}
	if (newStatus == domain.BookingCancelled || newStatus == domain.BookingDeclined) && reason != "" {
		updates["cancellation_reason"] = reason
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Booking{}).
			Where("id = ? AND version = ?", bookingID, b.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConcurrentModification
		}

		entry := newAuditEntry(bookingID, domain.AuditStatusChanged, actor,
			statusSnapshot(b.Status, b.EscrowStatus), statusSnapshot(newStatus, b.EscrowStatus), meta)
		entry.Description = fmt.Sprintf("status changed from %s to %s", b.Status, newStatus)
		if reason != "" {
			entry.Description += ": " + reason
		}
		entry.InvolvesClient = actor.Role == "client" || newStatus == domain.BookingCancelled
		return tx.Create(entry).Error
	})
	if err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			// Someone else transitioned first. A replay of the same target is
			// still a no-op success; anything else is a real conflict.
			current, readErr := s.bookings.GetByID(ctx, bookingID)
			if readErr == nil && current.Status == newStatus {
				return current, nil
			}
		}
		return nil, err
	}

	updated, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if s.notifs != nil {
		_ = s.notifs.NotifyStatusChanged(ctx, updated, previous)
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByClient(ctx, clientID, boundLimit(limit), offset)
}

func (s *Service) ListByVendor(ctx context.Context, vendorID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByVendor(ctx, vendorID, boundLimit(limit), offset)
}

func boundLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}

func statusSnapshot(status domain.BookingStatus, escrow domain.EscrowStatus) *string {
	raw, _ := json.Marshal(map[string]string{
		"status":        string(status),
		"escrow_status": string(escrow),
	})
	s := string(raw)
	return &s
}

func newAuditEntry(bookingID int64, action domain.AuditAction, actor domain.Actor, before, after *string, meta domain.RequestMeta) *domain.AuditEntry {
	return &domain.AuditEntry{
		BookingID:   bookingID,
		Action:      action,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		ActorName:   actor.Name,
		BeforeState: before,
		AfterState:  after,
		SourceIP:    meta.SourceIP,
		UserAgent:   meta.UserAgent,
	}
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, repository.ErrDuplicateIdempotencyKey) || repository.IsUniqueViolation(err)
}
