package domain

import "time"

type AuditAction string

const (
	AuditBookingCreated     AuditAction = "booking_created"
	AuditStatusChanged      AuditAction = "status_changed"
	AuditEscrowReleased     AuditAction = "escrow_released"
	AuditEscrowRefunded     AuditAction = "escrow_refunded"
	AuditClientAcknowledged AuditAction = "client_acknowledged"
)

// Actor identifies who performed a state-changing action. IDs come from the
// identity middleware, never from request bodies. ActorSystem is used for
// reconciliation and other non-interactive transitions.
type Actor struct {
	ID   int64
	Role string
	Name string
}

const ActorSystem = "system"

// RequestMeta carries the request provenance recorded on audit rows and
// acknowledgments.
type RequestMeta struct {
	SourceIP  string
	UserAgent string
}

func (a Actor) Ref() string {
	if a.Role == ActorSystem {
		return ActorSystem
	}
	return a.Name
}

// AuditEntry is an append-only record of one state-changing action on a
// booking. It is a side log: current state lives on the booking itself.
// The only permitted update is the client-acknowledgment flip, and the flip
// itself is logged as a separate new entry by the acknowledgment flow.
type AuditEntry struct {
	ID        int64       `gorm:"column:id;primaryKey" json:"id"`
	BookingID int64       `gorm:"column:booking_id;index:idx_audit_booking,priority:1" json:"booking_id"`
	Action    AuditAction `gorm:"column:action" json:"action"`

	ActorID   int64  `gorm:"column:actor_id" json:"actor_id"`
	ActorRole string `gorm:"column:actor_role" json:"actor_role"`
	ActorName string `gorm:"column:actor_name" json:"actor_name"`

	BeforeState *string `gorm:"column:before_state;type:text" json:"before_state,omitempty"`
	AfterState  *string `gorm:"column:after_state;type:text" json:"after_state,omitempty"`
	Description string  `gorm:"column:description;type:text" json:"description"`

	InvolvesClient     bool `gorm:"column:involves_client" json:"involves_client"`
	ClientAcknowledged bool `gorm:"column:client_acknowledged" json:"client_acknowledged"`

	SourceIP  string    `gorm:"column:source_ip" json:"source_ip"`
	UserAgent string    `gorm:"column:user_agent" json:"user_agent"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_audit_booking,priority:2" json:"created_at"`
}

func (AuditEntry) TableName() string { return "audit_entries" }
