package fees

import (
	"math/big"

	"nftfi/core/types"
)

var infoKey = []byte("fees/info")

const (
	allocatedPrefix  = "fees/allocated/"
	associatedPrefix = "fees/associated/"
)

// addressesKey indexes every address that was ever credited.
var addressesKey = []byte("fees/addresses")

func allocatedKey(addr string) []byte  { return []byte(allocatedPrefix + addr) }
func associatedKey(addr string) []byte { return []byte(associatedPrefix + addr) }

type storedInfo struct {
	Name               string
	Owner              string
	Treasury           string
	ProjectsAllocation uint64
}

type storedCoin struct {
	Denom  string
	Amount *big.Int
}

func encodeCoins(coins []types.Coin) []storedCoin {
	out := make([]storedCoin, 0, len(coins))
	for _, c := range coins {
		out = append(out, storedCoin{Denom: c.Denom, Amount: c.Clone().Amount})
	}
	return out
}

func decodeCoins(stored []storedCoin) []types.Coin {
	out := make([]types.Coin, 0, len(stored))
	for _, c := range stored {
		out = append(out, types.NewCoinBig(c.Denom, c.Amount))
	}
	return out
}

// credit adds amount of denom to the balance list, keeping first-seen order.
func credit(coins []types.Coin, denom string, amount *big.Int) []types.Coin {
	for i := range coins {
		if coins[i].Denom == denom {
			coins[i] = types.NewCoinBig(denom, new(big.Int).Add(coins[i].Amount, amount))
			return coins
		}
	}
	return append(coins, types.NewCoinBig(denom, amount))
}
