package vault

import (
	"math/big"

	"nftfi/core/types"
	"nftfi/native/common"
	"nftfi/native/tokens/cw20"
)

// totals is a snapshot of the share supply and the assets backing it.
type totals struct {
	shares *big.Int
	assets *big.Int
}

// underlyingBalance is what the vault itself holds of the underlying asset.
func underlyingBalance(deps types.Deps, env types.Env, st State) (*big.Int, error) {
	if st.Underlying.IsNative() {
		return deps.Querier.QueryBalance(env.Contract.Address, *st.Underlying.Coin)
	}
	var res cw20.BalanceResponse
	q := cw20.QueryMsg{Balance: &cw20.BalanceQuery{Address: env.Contract.Address}}
	if err := deps.Querier.QueryWasmSmart(*st.Underlying.Cw20, q, &res); err != nil {
		return nil, err
	}
	return common.Amount(res.Balance), nil
}

// loadTotals reads supply and managed assets. incoming is subtracted from the
// held balance because native funds are credited before the call runs.
func loadTotals(deps types.Deps, env types.Env, st State, incoming *big.Int) (totals, error) {
	info, err := cw20.NewLedger(deps.Storage).TokenInfo()
	if err != nil {
		return totals{}, err
	}
	held, err := underlyingBalance(deps, env, st)
	if err != nil {
		return totals{}, err
	}
	assets, err := common.Add128(common.SatSub(held, incoming), st.TotalBorrowed)
	if err != nil {
		return totals{}, err
	}
	return totals{shares: common.Amount(info.TotalSupply), assets: assets}, nil
}

// toShares converts assets at the current rate. An empty supply converts
// one to one. Outstanding shares backed by nothing convert to zero, so a
// deposit into such a vault fails with ErrZeroShares.
func (t totals) toShares(assets *big.Int, ceil bool) (*big.Int, error) {
	if t.shares.Sign() == 0 {
		return common.Amount(assets), nil
	}
	if t.assets.Sign() == 0 {
		if ceil && assets.Sign() > 0 {
			return nil, ErrEmptyVault
		}
		return new(big.Int), nil
	}
	if ceil {
		return common.MulDivCeil(assets, t.shares, t.assets)
	}
	return common.MulDiv(assets, t.shares, t.assets)
}

func (t totals) toAssets(shares *big.Int, ceil bool) (*big.Int, error) {
	if t.shares.Sign() == 0 {
		return common.Amount(shares), nil
	}
	if ceil {
		return common.MulDivCeil(shares, t.assets, t.shares)
	}
	return common.MulDiv(shares, t.assets, t.shares)
}
