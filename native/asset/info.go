package asset

import (
	"math/big"

	"nftfi/core/types"
)

// Info describes a fungible underlying: a native denom or a cw20 contract.
type Info struct {
	Coin *string `json:"coin,omitempty"`
	Cw20 *string `json:"cw20,omitempty"`
}

func NativeInfo(denom string) Info { return Info{Coin: &denom} }
func Cw20Info(addr string) Info    { return Info{Cw20: &addr} }

func (i Info) IsNative() bool { return i.Coin != nil && i.Cw20 == nil }
func (i Info) IsCw20() bool   { return i.Cw20 != nil && i.Coin == nil }

// Validate requires exactly one variant.
func (i Info) Validate(api types.API) error {
	switch {
	case i.IsNative():
		if *i.Coin == "" {
			return ErrWrongAssetType.Wrapf("empty denom")
		}
		return nil
	case i.IsCw20():
		if _, err := api.AddrValidate(*i.Cw20); err != nil {
			return ErrWrongAssetType.Wrapf("invalid cw20 address")
		}
		return nil
	}
	return ErrWrongAssetType
}

// WithAmount materialises the descriptor into an Asset.
func (i Info) WithAmount(amount *big.Int) Asset {
	if i.IsNative() {
		return Coin(*i.Coin, amount)
	}
	if i.IsCw20() {
		return Cw20(*i.Cw20, amount)
	}
	return Asset{}
}

// Key is the denom or token address.
func (i Info) Key() string {
	if i.Coin != nil {
		return *i.Coin
	}
	if i.Cw20 != nil {
		return *i.Cw20
	}
	return ""
}

// StoredInfo is the RLP form of Info.
type StoredInfo struct {
	Cw20  bool
	Value string
}

func (i Info) Stored() StoredInfo {
	return StoredInfo{Cw20: i.IsCw20(), Value: i.Key()}
}

func (s StoredInfo) Info() Info {
	if s.Cw20 {
		return Cw20Info(s.Value)
	}
	return NativeInfo(s.Value)
}
