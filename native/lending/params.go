package lending

import (
	"math/big"

	cerrors "nftfi/core/errors"
)

const (
	// PercentageRate is the denominator of every lender rate.
	PercentageRate = 10_000
	// MinBlockOffset quantises continuous accrual.
	MinBlockOffset = 10

	safeZoneBps      = 3_333
	expensiveZoneBps = 6_666
)

// Params shapes the terms offered to new loans.
type Params struct {
	FixedInterestRate       *big.Int `json:"fixed_interest_rate"`
	FixedDuration           uint64   `json:"fixed_duration"`
	ContinuousSafeRate      *big.Int `json:"continuous_safe_rate"`
	ContinuousExpensiveRate *big.Int `json:"continuous_expensive_rate"`
}

// DefaultParams returns the terms used when instantiation leaves them out.
func DefaultParams() Params {
	return Params{
		FixedInterestRate:       big.NewInt(77),
		FixedDuration:           100,
		ContinuousSafeRate:      big.NewInt(1),
		ContinuousExpensiveRate: big.NewInt(3),
	}
}

// Clone returns a deep copy of the params.
func (p Params) Clone() Params {
	clone := Params{FixedDuration: p.FixedDuration}
	if p.FixedInterestRate != nil {
		clone.FixedInterestRate = new(big.Int).Set(p.FixedInterestRate)
	}
	if p.ContinuousSafeRate != nil {
		clone.ContinuousSafeRate = new(big.Int).Set(p.ContinuousSafeRate)
	}
	if p.ContinuousExpensiveRate != nil {
		clone.ContinuousExpensiveRate = new(big.Int).Set(p.ContinuousExpensiveRate)
	}
	return clone
}

// Validate requires a positive duration and an expensive rate at least as
// high as the safe one.
func (p Params) Validate() error {
	if p.FixedInterestRate == nil || p.ContinuousSafeRate == nil || p.ContinuousExpensiveRate == nil {
		return cerrors.ErrInvalidMessage.Wrapf("missing rate")
	}
	if p.FixedDuration == 0 {
		return cerrors.ErrInvalidMessage.Wrapf("fixed duration must be positive")
	}
	if p.FixedInterestRate.Sign() < 0 || p.ContinuousSafeRate.Sign() < 0 {
		return cerrors.ErrInvalidMessage.Wrapf("negative rate")
	}
	if p.ContinuousExpensiveRate.Cmp(p.ContinuousSafeRate) < 0 {
		return cerrors.ErrInvalidMessage.Wrapf("expensive rate below safe rate")
	}
	return nil
}

// merge overlays the non-nil fields of update.
func (p Params) merge(update ParamsUpdate) Params {
	out := p.Clone()
	if update.FixedInterestRate != nil {
		out.FixedInterestRate = new(big.Int).Set(update.FixedInterestRate)
	}
	if update.FixedDuration != nil {
		out.FixedDuration = *update.FixedDuration
	}
	if update.ContinuousSafeRate != nil {
		out.ContinuousSafeRate = new(big.Int).Set(update.ContinuousSafeRate)
	}
	if update.ContinuousExpensiveRate != nil {
		out.ContinuousExpensiveRate = new(big.Int).Set(update.ContinuousExpensiveRate)
	}
	return out
}
