package acknowledgment

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("acknowledgment not found")
	ErrAuditEntryMismatch = errors.New("audit entry does not belong to this booking")
)
