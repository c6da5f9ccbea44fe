package notification

import "time"

const (
	EventBookingCreated        = "booking.created"
	EventBookingStatusChanged  = "booking.status_changed"
	EventEscrowReleased        = "escrow.released"
	EventEscrowRefunded        = "escrow.refunded"
	EventAcknowledgmentCreated = "acknowledgment.created"
)

// Event is what the core emits to subscribed operator clients. Delivery is
// fire-and-forget: the financial flow never waits on it.
type Event struct {
	Type      string    `json:"type"`
	BookingID int64     `json:"booking_id"`
	Payload   any       `json:"payload,omitempty"`
	At        time.Time `json:"at"`
}
