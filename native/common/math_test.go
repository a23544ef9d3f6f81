package common

import (
	"errors"
	"math/big"
	"testing"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
)

func TestMulDivRounding(t *testing.T) {
	got, err := MulDiv(big.NewInt(10), big.NewInt(3), big.NewInt(4))
	if err != nil || got.Int64() != 7 {
		t.Fatalf("floor: got %v err %v", got, err)
	}
	got, err = MulDivCeil(big.NewInt(10), big.NewInt(3), big.NewInt(4))
	if err != nil || got.Int64() != 8 {
		t.Fatalf("ceil: got %v err %v", got, err)
	}
	got, err = MulDivCeil(big.NewInt(8), big.NewInt(3), big.NewInt(4))
	if err != nil || got.Int64() != 6 {
		t.Fatalf("exact ceil: got %v err %v", got, err)
	}
	if _, err := MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0)); !errors.Is(err, ErrDivideByZero) {
		t.Fatalf("expected divide by zero, got %v", err)
	}
}

func TestMulDivWideIntermediate(t *testing.T) {
	// (2^128-1) * (2^128-1) / (2^128-1) needs a 256-bit product.
	got, err := MulDiv(MaxUint128, MaxUint128, MaxUint128)
	if err != nil {
		t.Fatalf("mul div: %v", err)
	}
	if got.Cmp(MaxUint128) != 0 {
		t.Fatalf("unexpected result %s", got)
	}
	if _, err := MulDiv(MaxUint128, big.NewInt(2), big.NewInt(1)); !errors.Is(err, cerrors.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestCheckedArithmetic(t *testing.T) {
	if _, err := Add128(MaxUint128, big.NewInt(1)); !errors.Is(err, cerrors.ErrOverflow) {
		t.Fatalf("expected add overflow, got %v", err)
	}
	if _, err := Sub(big.NewInt(1), big.NewInt(2)); !errors.Is(err, cerrors.ErrOverflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
	if SatSub(big.NewInt(1), big.NewInt(2)).Sign() != 0 {
		t.Fatalf("expected saturation at zero")
	}
	if Min(big.NewInt(3), big.NewInt(2)).Int64() != 2 {
		t.Fatalf("unexpected min")
	}
}

func TestPageAndFunds(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	limit := uint32(2)
	page := Page(items, func(v int) bool { return v > 2 }, &limit)
	if len(page) != 2 || page[0] != 3 || page[1] != 4 {
		t.Fatalf("unexpected page %v", page)
	}
	wide := uint32(100)
	if Limit(&wide) != MaxLimit || Limit(nil) != DefaultLimit {
		t.Fatalf("unexpected limits")
	}

	if _, err := OneCoin(nil); !errors.Is(err, ErrNoFunds) {
		t.Fatalf("expected no funds, got %v", err)
	}
	if _, err := OneCoin([]types.Coin{types.NewCoin("a", 1), types.NewCoin("b", 1)}); !errors.Is(err, ErrMultipleCoins) {
		t.Fatalf("expected multiple coins, got %v", err)
	}
	if _, err := MustPay([]types.Coin{types.NewCoin("a", 1)}, "b"); !errors.Is(err, ErrWrongDenom) {
		t.Fatalf("expected wrong denom, got %v", err)
	}
	if err := ValidateName("ab"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected invalid name")
	}
}

type lockFlag bool

func (l lockFlag) IsLocked() bool { return bool(l) }

func TestGuard(t *testing.T) {
	if err := Guard(lockFlag(false), "raffle"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := Guard(lockFlag(true), "raffle"); !errors.Is(err, ErrContractLocked) {
		t.Fatalf("expected locked error, got %v", err)
	}
}
