package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingDeclined  BookingStatus = "declined"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingRefunded  BookingStatus = "refunded"
)

type EscrowStatus string

const (
	EscrowHeld     EscrowStatus = "held"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
)

// Booking is one paid engagement between a client and a vendor. All money
// fields are minor currency units (cents). The commission rate is snapshotted
// from the vendor tier at creation, so later tier changes never alter an
// existing booking's split.
type Booking struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"id"`
	ClientID    int64     `gorm:"column:client_id;index" json:"client_id"`
	VendorID    int64     `gorm:"column:vendor_id;index" json:"vendor_id"`
	ServiceType string    `gorm:"column:service_type" json:"service_type"`
	EventDate   time.Time `gorm:"column:event_date" json:"event_date"`

	GrossAmount      int64   `gorm:"column:gross_amount" json:"gross_amount"`
	CommissionRate   float64 `gorm:"column:commission_rate" json:"commission_rate"`
	CommissionAmount int64   `gorm:"column:commission_amount" json:"commission_amount"`
	VendorNetAmount  int64   `gorm:"column:vendor_net_amount" json:"vendor_net_amount"`
	DepositAmount    int64   `gorm:"column:deposit_amount" json:"deposit_amount"`
	EscrowAmount     int64   `gorm:"column:escrow_amount" json:"escrow_amount"`

	PayoutAccountRef string `gorm:"column:payout_account_ref" json:"payout_account_ref"`
	ChargeID         string `gorm:"column:charge_id" json:"charge_id"`
	IdempotencyKey   string `gorm:"column:idempotency_key;uniqueIndex" json:"-"`

	Status       BookingStatus `gorm:"column:status" json:"status"`
	EscrowStatus EscrowStatus  `gorm:"column:escrow_status" json:"escrow_status"`

	// Version guards concurrent status/escrow transitions (optimistic check).
	Version int64 `gorm:"column:version" json:"-"`

	CancellationReason string `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason,omitempty"`

	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	EscrowReleasedAt *time.Time `gorm:"column:escrow_released_at" json:"escrow_released_at,omitempty"`
}

func (Booking) TableName() string { return "bookings" }

// EscrowTerminal reports whether the escrow status can no longer change.
func (b *Booking) EscrowTerminal() bool {
	return b.EscrowStatus == EscrowReleased || b.EscrowStatus == EscrowRefunded
}

// EscrowRelease records one transfer of held funds to a vendor.
// Created only by a successful held -> released transition, never mutated.
type EscrowRelease struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"id"`
	BookingID   int64     `gorm:"column:booking_id;index:idx_escrow_releases_booking,priority:1" json:"booking_id"`
	Amount      int64     `gorm:"column:amount" json:"amount"`
	TransferRef string    `gorm:"column:transfer_ref" json:"transfer_ref"`
	ReleasedBy  string    `gorm:"column:released_by" json:"released_by"`
	Reason      string    `gorm:"column:reason;type:text" json:"reason,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;index:idx_escrow_releases_booking,priority:2" json:"created_at"`
}

func (EscrowRelease) TableName() string { return "escrow_releases" }
