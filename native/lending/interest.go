package lending

import (
	"math/big"

	"nftfi/native/common"
)

// ZoneLimits returns the safe and expensive zone upper bounds for an oracle
// price.
func ZoneLimits(price *big.Int) (safe, expensive *big.Int, err error) {
	safe, err = common.MulDiv(price, big.NewInt(safeZoneBps), percentageRate)
	if err != nil {
		return nil, nil, err
	}
	expensive, err = common.MulDiv(price, big.NewInt(expensiveZoneBps), percentageRate)
	if err != nil {
		return nil, nil, err
	}
	return safe, expensive, nil
}

// ZoneOf classifies a loan value against an oracle price.
func ZoneOf(value, price *big.Int) (BorrowZone, error) {
	safe, expensive, err := ZoneLimits(price)
	if err != nil {
		return "", err
	}
	switch {
	case value.Cmp(safe) <= 0:
		return SafeZone, nil
	case value.Cmp(expensive) <= 0:
		return ExpensiveZone, nil
	default:
		return LiquidationZone, nil
	}
}

// accrual returns rate*principle*quantise(now-start)/PercentageRate.
func accrual(rate, principle *big.Int, start, now uint64) (*big.Int, error) {
	delta := new(big.Int).SetUint64(quantise(blocksSince(start, now)))
	if delta.Sign() == 0 || rate.Sign() <= 0 {
		return new(big.Int), nil
	}
	ratePrinciple := new(big.Int).Mul(rate, common.Amount(principle))
	return common.MulDiv(ratePrinciple, delta, percentageRate)
}

// Interests returns what the loan owes on top of its principle at height now.
func Interests(l Loan, now uint64) (*big.Int, error) {
	if l.Interests.Fixed != nil {
		return common.Amount(l.Interests.Fixed.Interests), nil
	}
	c := l.Interests.Continuous
	fresh, err := accrual(c.LastInterestRate, l.Principle, l.StartBlock, now)
	if err != nil {
		return nil, err
	}
	return common.Add128(c.InterestsAccrued, fresh)
}

// Value is principle plus interests at height now.
func Value(l Loan, now uint64) (*big.Int, error) {
	interests, err := Interests(l, now)
	if err != nil {
		return nil, err
	}
	return common.Add128(l.Principle, interests)
}

// IncreasorBounty is the increasor's share of the extra interest produced by
// the rate bump since the loan was last updated. The elapsed blocks are
// quantised the same way as interest accrual.
func IncreasorBounty(l Loan, now uint64, incentives *big.Int) (*big.Int, error) {
	if l.RateIncreasor == nil || l.Interests.Continuous == nil {
		return new(big.Int), nil
	}
	bump := new(big.Int).Sub(l.Interests.Continuous.LastInterestRate, l.RateIncreasor.PreviousRate)
	if bump.Sign() <= 0 {
		return new(big.Int), nil
	}
	extra, err := accrual(bump, l.Principle, l.StartBlock, now)
	if err != nil {
		return nil, err
	}
	return percentOf(extra, incentives)
}

// capitalise folds accrued continuous interest into the loan and restarts
// accrual at now.
func capitalise(l *Loan, now uint64) error {
	if l.Interests.Continuous == nil {
		l.StartBlock = now
		return nil
	}
	interests, err := Interests(*l, now)
	if err != nil {
		return err
	}
	l.Interests.Continuous.InterestsAccrued = interests
	l.StartBlock = now
	return nil
}

// fixedDefaulted reports whether a fixed loan ran past its duration.
func fixedDefaulted(l Loan, now uint64) bool {
	return l.Interests.Fixed != nil && l.StartBlock+l.Interests.Fixed.Duration < now
}
