package escrow

import (
	"context"

	"weddinghub/internal/domain"
)

type NotificationSender interface {
	NotifyEscrowReleased(ctx context.Context, b *domain.Booking, rel *domain.EscrowRelease) error
	NotifyEscrowRefunded(ctx context.Context, b *domain.Booking) error
}
