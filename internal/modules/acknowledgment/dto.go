package acknowledgment

import "encoding/json"

type AcknowledgeRequest struct {
	Type         string          `json:"type" validate:"required"`
	Content      json.RawMessage `json:"content" validate:"required"`
	Method       string          `json:"method" validate:"required,oneof=checkbox signature button"`
	AuditEntryID *int64          `json:"audit_entry_id"`
}

// VerifyResult reports a digest comparison. Both hashes are exposed so a
// mismatch can be inspected forensically; nothing is ever corrected.
type VerifyResult struct {
	AcknowledgmentID int64  `json:"acknowledgment_id"`
	IsValid          bool   `json:"is_valid"`
	StoredHash       string `json:"stored_hash"`
	RecomputedHash   string `json:"recomputed_hash"`
}
