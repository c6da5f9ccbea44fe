package booking

import (
	"context"

	"weddinghub/internal/domain"
)

// VendorDirectory supplies the vendor's current tier and payout account at
// booking-creation time. The tier is snapshotted onto the booking; later
// directory changes never alter an existing booking.
type VendorDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.Vendor, error)
}

// NotificationSender receives fire-and-forget events. The core never waits
// on delivery.
type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, b *domain.Booking) error
	NotifyStatusChanged(ctx context.Context, b *domain.Booking, previous domain.BookingStatus) error
}
