package lending

import (
	"math/big"

	"nftfi/native/common"
)

var percentageRate = big.NewInt(PercentageRate)

// percentOf returns floor(amount*rate/PercentageRate).
func percentOf(amount, rate *big.Int) (*big.Int, error) {
	return common.MulDiv(amount, rate, percentageRate)
}

// quantise rounds a block delta down to a multiple of MinBlockOffset.
func quantise(delta uint64) uint64 {
	return delta / MinBlockOffset * MinBlockOffset
}

func blocksSince(start, now uint64) uint64 {
	if now <= start {
		return 0
	}
	return now - start
}
