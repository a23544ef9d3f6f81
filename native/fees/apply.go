package fees

import (
	"math/big"
)

// DefaultProjectsAllocation is the percentage of each deposit credited to
// the tagged collections.
const DefaultProjectsAllocation uint64 = 75

// ApplyInput captures a single fee deposit.
type ApplyInput struct {
	Gross      *big.Int
	Allocation uint64
	Addresses  int
}

// ApplyResult splits a deposit between the tagged addresses and the treasury.
type ApplyResult struct {
	PerAddress *big.Int
	Treasury   *big.Int
}

// Apply evaluates a deposit. Each address receives
// gross·allocation/100/n and the treasury keeps whatever is left, including
// the rounding dust.
func Apply(input ApplyInput) ApplyResult {
	gross := new(big.Int)
	if input.Gross != nil {
		gross.Set(input.Gross)
	}
	result := ApplyResult{PerAddress: new(big.Int), Treasury: gross}
	if input.Addresses <= 0 || gross.Sign() <= 0 {
		return result
	}
	each := new(big.Int).Mul(gross, new(big.Int).SetUint64(input.Allocation))
	each.Quo(each, big.NewInt(100))
	each.Quo(each, big.NewInt(int64(input.Addresses)))
	credited := new(big.Int).Mul(each, big.NewInt(int64(input.Addresses)))
	result.PerAddress = each
	result.Treasury = new(big.Int).Sub(gross, credited)
	return result
}
