package vault

import (
	"math/big"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/asset"
	"nftfi/native/common"
)

var stateKey = []byte("vault/state")

// State is the vault bookkeeping kept next to the share ledger.
type State struct {
	Underlying    asset.Info
	TotalBorrowed *big.Int
	Borrower      string
	Admin         string
}

type storedState struct {
	Underlying    asset.StoredInfo
	TotalBorrowed *big.Int
	Borrower      string
	Admin         string
}

func loadState(store types.Store) (State, error) {
	var s storedState
	ok, err := store.KVGet(stateKey, &s)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return State{}, cerrors.ErrNotFound.Wrapf("vault state")
	}
	return State{
		Underlying:    s.Underlying.Info(),
		TotalBorrowed: common.Amount(s.TotalBorrowed),
		Borrower:      s.Borrower,
		Admin:         s.Admin,
	}, nil
}

func saveState(store types.Store, s State) error {
	return store.KVPut(stateKey, storedState{
		Underlying:    s.Underlying.Stored(),
		TotalBorrowed: s.TotalBorrowed,
		Borrower:      s.Borrower,
		Admin:         s.Admin,
	})
}
