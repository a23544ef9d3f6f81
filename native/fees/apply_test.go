package fees

import (
	"math/big"
	"testing"
)

func TestApplySplitsDeposit(t *testing.T) {
	cases := []struct {
		name       string
		gross      int64
		allocation uint64
		addresses  int
		each       int64
		treasury   int64
	}{
		{name: "single collection", gross: 54, allocation: 75, addresses: 1, each: 40, treasury: 14},
		{name: "dust to treasury", gross: 100, allocation: 75, addresses: 3, each: 25, treasury: 25},
		{name: "no collections", gross: 250, allocation: 75, addresses: 0, each: 0, treasury: 250},
		{name: "full allocation", gross: 90, allocation: 100, addresses: 2, each: 45, treasury: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Apply(ApplyInput{Gross: big.NewInt(tc.gross), Allocation: tc.allocation, Addresses: tc.addresses})
			if res.PerAddress.Int64() != tc.each || res.Treasury.Int64() != tc.treasury {
				t.Fatalf("unexpected split each=%s treasury=%s", res.PerAddress, res.Treasury)
			}
		})
	}
}

func TestApplyNilGross(t *testing.T) {
	res := Apply(ApplyInput{Allocation: 75, Addresses: 1})
	if res.PerAddress.Sign() != 0 || res.Treasury.Sign() != 0 {
		t.Fatalf("expected empty split, got %+v", res)
	}
}
