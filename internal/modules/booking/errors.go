package booking

import "errors"

var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("booking not found")
	ErrForbidden              = errors.New("forbidden")
	ErrVendorNotFound         = errors.New("vendor not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)
