package common

import (
	cerrors "nftfi/core/errors"
)

var ErrContractLocked = cerrors.New(cerrors.KindState, "contract_locked", "contract is locked")

// LockView reports whether the owner has frozen a contract.
type LockView interface {
	IsLocked() bool
}

// Guard rejects mutating calls on a locked contract.
func Guard(v LockView, module string) error {
	if v == nil || module == "" {
		return nil
	}
	if v.IsLocked() {
		return ErrContractLocked.With("contract", module)
	}
	return nil
}
