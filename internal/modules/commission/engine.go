package commission

import "errors"

var (
	ErrInvalidAmount = errors.New("gross amount must be positive")
	ErrUnknownTier   = errors.New("unknown vendor tier")
)

type Tier string

const (
	TierFree     Tier = "free"
	TierPremium  Tier = "premium"
	TierFeatured Tier = "featured"
	TierElite    Tier = "elite"
)

// Table maps vendor tiers to commission rates in basis points. Rates are
// integers so the split never touches floating point.
type Table struct {
	rates      map[Tier]int64
	depositBps int64
}

// DefaultTable returns the marketplace rate card: higher tiers pay lower
// commission, and 30% of the vendor net is paid out immediately as deposit.
func DefaultTable() Table {
	return Table{
		rates: map[Tier]int64{
			TierFree:     1500,
			TierPremium:  500,
			TierFeatured: 400,
			TierElite:    300,
		},
		depositBps: 3000,
	}
}

// NewTable builds a custom rate card. Used by tests and by deployments with
// negotiated rates; rates and depositBps are basis points.
func NewTable(rates map[Tier]int64, depositBps int64) Table {
	cp := make(map[Tier]int64, len(rates))
	for k, v := range rates {
		cp[k] = v
	}
	return Table{rates: cp, depositBps: depositBps}
}

// Rate returns the commission rate for a tier as a fraction (0..1).
func (t Table) Rate(tier Tier) (float64, error) {
	bps, ok := t.rates[tier]
	if !ok {
		return 0, ErrUnknownTier
	}
	return float64(bps) / 10000, nil
}

// Split is the result of dividing a gross booking amount. All values are
// minor currency units and always satisfy
// Commission+VendorNet == gross and Deposit+Escrow == VendorNet.
type Split struct {
	CommissionAmount int64
	VendorNetAmount  int64
	DepositAmount    int64
	EscrowAmount     int64
}

// ComputeSplit divides gross between marketplace commission and vendor net,
// then vendor net between immediate deposit and held escrow.
//
// Rounding rule: commission is floored, so any fractional cent of the fee
// stays with the vendor; the deposit is floored, so any fractional cent of
// the vendor share stays in escrow. Both sums are computed by subtraction,
// which makes the identities exact for every positive gross, including 1.
func (t Table) ComputeSplit(gross int64, tier Tier) (Split, error) {
	if gross <= 0 {
		return Split{}, ErrInvalidAmount
	}
	bps, ok := t.rates[tier]
	if !ok {
		return Split{}, ErrUnknownTier
	}

	commission := gross * bps / 10000
	vendorNet := gross - commission
	deposit := vendorNet * t.depositBps / 10000
	escrow := vendorNet - deposit

	return Split{
		CommissionAmount: commission,
		VendorNetAmount:  vendorNet,
		DepositAmount:    deposit,
		EscrowAmount:     escrow,
	}, nil
}
