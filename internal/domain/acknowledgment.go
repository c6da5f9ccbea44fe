package domain

import "time"

type AcknowledgmentType string

const (
	AckTimelineChange AcknowledgmentType = "timeline_change"
	AckAuditReview    AcknowledgmentType = "audit_review"
)

// Acknowledgment is tamper-evident evidence that a client reviewed specific
// content. The serialized content and its digest are stored together;
// re-hashing the stored content must reproduce the stored hash, and any
// mismatch is reported, never repaired.
type Acknowledgment struct {
	ID        int64              `gorm:"column:id;primaryKey" json:"id"`
	BookingID int64              `gorm:"column:booking_id;index:idx_acks_booking,priority:1" json:"booking_id"`
	Type      AcknowledgmentType `gorm:"column:type" json:"type"`

	Content     string `gorm:"column:content;type:text" json:"content"`
	ContentHash string `gorm:"column:content_hash" json:"content_hash"`
	Method      string `gorm:"column:method" json:"method"`

	CannotBeDisputed bool `gorm:"column:cannot_be_disputed" json:"cannot_be_disputed"`

	SourceIP  string    `gorm:"column:source_ip" json:"source_ip"`
	UserAgent string    `gorm:"column:user_agent" json:"user_agent"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_acks_booking,priority:2" json:"created_at"`
}

func (Acknowledgment) TableName() string { return "acknowledgments" }
