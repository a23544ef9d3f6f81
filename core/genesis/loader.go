// Package genesis applies a genesis document to an empty host.
package genesis

import (
	"errors"
	"fmt"

	"nftfi/config"
	"nftfi/core"
	"nftfi/core/types"
)

var ErrAlreadyInitialized = errors.New("genesis: host already initialized")

// Apply sets the first block, the initial balances and then instantiates
// every genesis contract in file order. It returns the address of each
// contract keyed by label.
func Apply(app *core.App, g *config.Genesis) (map[string]string, error) {
	if app == nil || g == nil {
		return nil, fmt.Errorf("genesis: app and document must not be nil")
	}
	done, err := app.Initialized()
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrAlreadyInitialized
	}
	if chainID := app.BlockInfo().ChainID; g.ChainID != "" && g.ChainID != chainID {
		return nil, fmt.Errorf("genesis: chain id %q does not match node chain id %q", g.ChainID, chainID)
	}

	ts := g.GenesisTimestamp().Unix()
	if ts < 0 {
		return nil, fmt.Errorf("genesis: time before unix epoch")
	}
	if err := app.InitChain(g.InitialHeight, uint64(ts)); err != nil {
		return nil, fmt.Errorf("init chain: %w", err)
	}

	// 1) Balances (addresses sorted; denoms sorted)
	for _, b := range g.SortedBalances() {
		if err := app.SetBalance(b.Address, types.NewCoinBig(b.Denom, b.Amount)); err != nil {
			return nil, fmt.Errorf("balances[%q][%q]: %w", b.Address, b.Denom, err)
		}
	}

	// 2) Contracts (file order)
	addrs := make(map[string]string, len(g.Contracts))
	for _, c := range g.Contracts {
		msg, err := c.MsgJSON(addrs)
		if err != nil {
			return nil, err
		}
		var funds []types.Coin
		for _, f := range c.SortedFunds() {
			funds = append(funds, types.NewCoinBig(f.Denom, f.Amount))
		}
		addr, err := app.Instantiate(c.Admin, c.Code, c.Label, msg, funds)
		if err != nil {
			return nil, fmt.Errorf("instantiate %q: %w", c.Label, err)
		}
		addrs[c.Label] = addr
	}
	return addrs, nil
}
