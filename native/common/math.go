package common

import (
	"math/big"

	"github.com/holiman/uint256"

	cerrors "nftfi/core/errors"
)

var (
	// MaxUint128 is the largest storable amount.
	MaxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	ErrDivideByZero = cerrors.New(cerrors.KindValue, "divide_by_zero", "divide by zero")
)

// Zero returns a fresh zero amount.
func Zero() *big.Int { return new(big.Int) }

// Amount normalises nil to zero and copies the value.
func Amount(x *big.Int) *big.Int {
	if x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(x)
}

// CheckU128 fails when x is negative or wider than 128 bits.
func CheckU128(x *big.Int) error {
	if x == nil {
		return nil
	}
	if x.Sign() < 0 || x.Cmp(MaxUint128) > 0 {
		return cerrors.ErrOverflow.With("value", x.String())
	}
	return nil
}

func toU256(x *big.Int) (*uint256.Int, error) {
	if x == nil {
		return new(uint256.Int), nil
	}
	if x.Sign() < 0 {
		return nil, cerrors.ErrOverflow.With("value", x.String())
	}
	v, overflow := uint256.FromBig(x)
	if overflow {
		return nil, cerrors.ErrOverflow.With("value", x.String())
	}
	return v, nil
}

// MulDiv returns floor(a*b/c) computed with a 512-bit intermediate product.
// The result must fit in 128 bits.
func MulDiv(a, b, c *big.Int) (*big.Int, error) {
	q, _, err := mulDiv(a, b, c)
	return q, err
}

// MulDivCeil returns ceil(a*b/c).
func MulDivCeil(a, b, c *big.Int) (*big.Int, error) {
	q, rem, err := mulDiv(a, b, c)
	if err != nil {
		return nil, err
	}
	if rem {
		q.Add(q, big.NewInt(1))
		if err := CheckU128(q); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func mulDiv(a, b, c *big.Int) (*big.Int, bool, error) {
	x, err := toU256(a)
	if err != nil {
		return nil, false, err
	}
	y, err := toU256(b)
	if err != nil {
		return nil, false, err
	}
	d, err := toU256(c)
	if err != nil {
		return nil, false, err
	}
	if d.IsZero() {
		return nil, false, ErrDivideByZero
	}
	q, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, false, cerrors.ErrOverflow
	}
	product := new(uint256.Int)
	_, mulOverflow := product.MulOverflow(x, y)
	rem := false
	if mulOverflow {
		exact := new(big.Int).Mul(Amount(a), Amount(b))
		rem = new(big.Int).Mod(exact, Amount(c)).Sign() != 0
	} else {
		rem = !new(uint256.Int).Mod(product, d).IsZero()
	}
	out := q.ToBig()
	if err := CheckU128(out); err != nil {
		return nil, false, err
	}
	return out, rem, nil
}

// Add128 returns a+b, failing when the sum leaves the 128-bit range.
func Add128(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(Amount(a), Amount(b))
	if err := CheckU128(sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// Sub returns a-b and fails on underflow.
func Sub(a, b *big.Int) (*big.Int, error) {
	diff := new(big.Int).Sub(Amount(a), Amount(b))
	if diff.Sign() < 0 {
		return nil, cerrors.ErrOverflow.With("minuend", Amount(a).String(), "subtrahend", Amount(b).String())
	}
	return diff, nil
}

// SatSub returns max(a-b, 0).
func SatSub(a, b *big.Int) *big.Int {
	diff := new(big.Int).Sub(Amount(a), Amount(b))
	if diff.Sign() < 0 {
		return new(big.Int)
	}
	return diff
}

// Min returns the smaller of a and b.
func Min(a, b *big.Int) *big.Int {
	if Amount(a).Cmp(Amount(b)) <= 0 {
		return Amount(a)
	}
	return Amount(b)
}
