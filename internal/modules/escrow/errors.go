package escrow

import "errors"

var (
	ErrNotFound          = errors.New("booking not found")
	ErrInvalidTransition = errors.New("booking status does not permit this escrow transition")

	// ErrAlreadyFinalized means the escrow is in a different terminal state
	// than the one requested. Terminal states are immutable: this is reported,
	// never retried.
	ErrAlreadyFinalized = errors.New("escrow already finalized")

	// ErrTransferFailed means the gateway transfer did not confirm. Escrow
	// stays held; retrying with the same booking reuses the same idempotency
	// key, so the provider dedupes any transfer that actually went through.
	ErrTransferFailed = errors.New("escrow transfer failed")
)
