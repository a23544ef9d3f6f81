package common

import (
	"math/big"
	"strings"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
)

var (
	ErrNoFunds       = cerrors.New(cerrors.KindValue, "no_funds", "no funds sent")
	ErrMultipleCoins = cerrors.New(cerrors.KindValidation, "multiple_coins", "more than one coin sent")
	ErrWrongDenom    = cerrors.New(cerrors.KindValidation, "wrong_denom", "unexpected denomination")
	ErrInvalidName   = cerrors.New(cerrors.KindValidation, "invalid_name", "name must be between 3 and 50 bytes")
)

// OneCoin returns the single non-zero coin attached to a message.
func OneCoin(funds []types.Coin) (types.Coin, error) {
	coins := types.Coins(funds).Normalize()
	switch len(coins) {
	case 0:
		return types.Coin{}, ErrNoFunds
	case 1:
		return coins[0], nil
	default:
		return types.Coin{}, ErrMultipleCoins
	}
}

// MustPay returns the amount of denom sent, requiring it to be the only coin.
func MustPay(funds []types.Coin, denom string) (*big.Int, error) {
	coin, err := OneCoin(funds)
	if err != nil {
		return nil, err
	}
	if coin.Denom != denom {
		return nil, ErrWrongDenom.With("expected", denom, "got", coin.Denom)
	}
	return coin.Amount, nil
}

// ValidateName checks a contract display name.
func ValidateName(name string) error {
	n := len(strings.TrimSpace(name))
	if n < 3 || n > 50 || n != len(name) {
		return ErrInvalidName
	}
	return nil
}

// ValidateAddr runs addr through the host API and maps failures to a
// contract error.
func ValidateAddr(api types.API, addr string) (string, error) {
	valid, err := api.AddrValidate(addr)
	if err != nil {
		return "", cerrors.ErrInvalidAddress.With("address", addr)
	}
	return valid, nil
}
