package core

import (
	"math/big"
	"sort"

	cerrors "nftfi/core/errors"
	"nftfi/core/state"
	"nftfi/core/types"
	"nftfi/storage"
)

// Bank keeps native coin balances under the bank/ prefix.
type Bank struct {
	kv *state.Manager
}

func NewBank(db storage.Database) *Bank {
	return &Bank{kv: state.NewManager(db).Scoped("bank")}
}

func balanceKey(addr, denom string) []byte { return []byte("balance/" + addr + "/" + denom) }
func denomsKey(addr string) []byte         { return []byte("denoms/" + addr) }

func (b *Bank) Balance(addr, denom string) (*big.Int, error) {
	var amount big.Int
	if _, err := b.kv.KVGet(balanceKey(addr, denom), &amount); err != nil {
		return nil, err
	}
	return &amount, nil
}

// Balances lists every non-zero balance of addr sorted by denom.
func (b *Bank) Balances(addr string) (types.Coins, error) {
	var denoms [][]byte
	if err := b.kv.KVGetList(denomsKey(addr), &denoms); err != nil {
		return nil, err
	}
	out := make(types.Coins, 0, len(denoms))
	for _, d := range denoms {
		amount, err := b.Balance(addr, string(d))
		if err != nil {
			return nil, err
		}
		if amount.Sign() > 0 {
			out = append(out, types.NewCoinBig(string(d), amount))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out, nil
}

func (b *Bank) SetBalance(addr string, coin types.Coin) error {
	amount := coin.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	if amount.Sign() < 0 {
		return cerrors.ErrOverflow.With("amount", amount)
	}
	if err := b.kv.KVAppend(denomsKey(addr), []byte(coin.Denom)); err != nil {
		return err
	}
	return b.kv.KVPut(balanceKey(addr, coin.Denom), amount)
}

// Send moves coins from one account to another, failing without side effects
// on the first short balance.
func (b *Bank) Send(from, to string, coins []types.Coin) error {
	coins = types.Coins(coins).Normalize()
	for _, c := range coins {
		if c.Amount.Sign() < 0 {
			return cerrors.ErrOverflow.With("amount", c.Amount)
		}
		have, err := b.Balance(from, c.Denom)
		if err != nil {
			return err
		}
		if have.Cmp(c.Amount) < 0 {
			return ErrInsufficientFunds.With("address", from, "denom", c.Denom, "have", have, "want", c.Amount)
		}
	}
	for _, c := range coins {
		have, err := b.Balance(from, c.Denom)
		if err != nil {
			return err
		}
		if err := b.SetBalance(from, types.NewCoinBig(c.Denom, new(big.Int).Sub(have, c.Amount))); err != nil {
			return err
		}
		got, err := b.Balance(to, c.Denom)
		if err != nil {
			return err
		}
		if err := b.SetBalance(to, types.NewCoinBig(c.Denom, new(big.Int).Add(got, c.Amount))); err != nil {
			return err
		}
	}
	return nil
}
