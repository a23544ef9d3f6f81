package types

import (
	"fmt"
	"math/big"
	"sort"
)

// Coin is an amount of a native denomination.
type Coin struct {
	Denom  string   `json:"denom"`
	Amount *big.Int `json:"amount"`
}

func NewCoin(denom string, amount int64) Coin {
	return Coin{Denom: denom, Amount: big.NewInt(amount)}
}

func NewCoinBig(denom string, amount *big.Int) Coin {
	if amount == nil {
		amount = new(big.Int)
	}
	return Coin{Denom: denom, Amount: new(big.Int).Set(amount)}
}

func (c Coin) String() string {
	return fmt.Sprintf("%s%s", c.amount().String(), c.Denom)
}

func (c Coin) amount() *big.Int {
	if c.Amount == nil {
		return new(big.Int)
	}
	return c.Amount
}

func (c Coin) IsZero() bool {
	return c.amount().Sign() == 0
}

func (c Coin) Equal(other Coin) bool {
	return c.Denom == other.Denom && c.amount().Cmp(other.amount()) == 0
}

func (c Coin) Clone() Coin {
	return NewCoinBig(c.Denom, c.Amount)
}

// Coins is a list of coins as attached to a message.
type Coins []Coin

// AmountOf returns the summed amount of denom.
func (cs Coins) AmountOf(denom string) *big.Int {
	total := new(big.Int)
	for _, c := range cs {
		if c.Denom == denom && c.Amount != nil {
			total.Add(total, c.Amount)
		}
	}
	return total
}

// Normalize merges duplicate denoms, drops zero amounts and sorts by denom.
func (cs Coins) Normalize() Coins {
	merged := make(map[string]*big.Int)
	for _, c := range cs {
		if c.Amount == nil || c.Amount.Sign() == 0 {
			continue
		}
		if cur, ok := merged[c.Denom]; ok {
			cur.Add(cur, c.Amount)
			continue
		}
		merged[c.Denom] = new(big.Int).Set(c.Amount)
	}
	out := make(Coins, 0, len(merged))
	for denom, amount := range merged {
		out = append(out, Coin{Denom: denom, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out
}
