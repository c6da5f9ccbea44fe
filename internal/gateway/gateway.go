package gateway

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means the provider could not be reached or answered with
	// a server error. The outcome is unknown: callers must reconcile against
	// the provider before retrying destructively.
	ErrUnavailable = errors.New("payment gateway unavailable")

	// ErrRejected means the provider definitively refused the operation
	// (insufficient funds, invalid account). Funds did not move; the request
	// is safe to fix and retry.
	ErrRejected = errors.New("payment gateway rejected the operation")
)

// PaymentGateway is the external charge/transfer/payout provider. The core
// owns no provider business rules; implementations only translate requests
// and responses. Amounts are minor currency units.
type PaymentGateway interface {
	// AuthorizeCharge places a charge against the payer and returns the
	// provider's charge reference.
	AuthorizeCharge(ctx context.Context, amount int64, payerRef string, metadata map[string]string) (string, error)

	// Transfer moves funds to the payee account. The idempotency key is
	// forwarded to the provider so a retried transfer is deduplicated there.
	Transfer(ctx context.Context, amount int64, payeeAccountRef, idempotencyKey string) (string, error)

	// Refund returns amount of a previously authorized charge to the payer.
	Refund(ctx context.Context, chargeID string, amount int64) (string, error)
}
