// Package asset models every transferable value as a tagged variant: native
// coins, fungible tokens, non-fungible tokens and semi-fungible tokens.
package asset

import (
	"fmt"
	"math/big"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
	"nftfi/native/tokens/cw1155"
	"nftfi/native/tokens/cw20"
	"nftfi/native/tokens/cw721"
)

var (
	ErrWrongAssetType = cerrors.New(cerrors.KindValidation, "wrong_asset_type", "wrong asset type")
	ErrWrongFundsType = cerrors.New(cerrors.KindValidation, "wrong_funds_type", "wrong funds type")
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindCoin
	KindCw20
	KindCw721
	KindCw1155
)

func (k Kind) String() string {
	switch k {
	case KindCoin:
		return "coin"
	case KindCw20:
		return "cw20"
	case KindCw721:
		return "cw721"
	case KindCw1155:
		return "cw1155"
	default:
		return "unknown"
	}
}

type Cw20Coin struct {
	Address string   `json:"address"`
	Amount  *big.Int `json:"amount"`
}

type Cw721Coin struct {
	Address string `json:"address"`
	TokenID string `json:"token_id"`
}

type Cw1155Coin struct {
	Address string   `json:"address"`
	TokenID string   `json:"token_id"`
	Value   *big.Int `json:"value"`
}

// Asset holds exactly one of its variants.
type Asset struct {
	Coin       *types.Coin `json:"coin,omitempty"`
	Cw20Coin   *Cw20Coin   `json:"cw20_coin,omitempty"`
	Cw721Coin  *Cw721Coin  `json:"cw721_coin,omitempty"`
	Cw1155Coin *Cw1155Coin `json:"cw1155_coin,omitempty"`
}

func Coin(denom string, amount *big.Int) Asset {
	c := types.NewCoinBig(denom, amount)
	return Asset{Coin: &c}
}

func Cw20(address string, amount *big.Int) Asset {
	return Asset{Cw20Coin: &Cw20Coin{Address: address, Amount: common.Amount(amount)}}
}

func Cw721(address, tokenID string) Asset {
	return Asset{Cw721Coin: &Cw721Coin{Address: address, TokenID: tokenID}}
}

func Cw1155(address, tokenID string, value *big.Int) Asset {
	return Asset{Cw1155Coin: &Cw1155Coin{Address: address, TokenID: tokenID, Value: common.Amount(value)}}
}

func (a Asset) Kind() Kind {
	n := 0
	kind := KindUnknown
	if a.Coin != nil {
		n++
		kind = KindCoin
	}
	if a.Cw20Coin != nil {
		n++
		kind = KindCw20
	}
	if a.Cw721Coin != nil {
		n++
		kind = KindCw721
	}
	if a.Cw1155Coin != nil {
		n++
		kind = KindCw1155
	}
	if n != 1 {
		return KindUnknown
	}
	return kind
}

// IsNFT reports whether the asset is a cw721 or cw1155 token.
func (a Asset) IsNFT() bool {
	k := a.Kind()
	return k == KindCw721 || k == KindCw1155
}

// Validate checks that one variant is set and its addresses are valid.
func (a Asset) Validate(api types.API) error {
	switch a.Kind() {
	case KindCoin:
		if a.Coin.Denom == "" {
			return ErrWrongAssetType.Wrapf("empty denom")
		}
		return common.CheckU128(a.Coin.Amount)
	case KindCw20:
		_, err := common.ValidateAddr(api, a.Cw20Coin.Address)
		if err != nil {
			return err
		}
		return common.CheckU128(a.Cw20Coin.Amount)
	case KindCw721:
		_, err := common.ValidateAddr(api, a.Cw721Coin.Address)
		return err
	case KindCw1155:
		_, err := common.ValidateAddr(api, a.Cw1155Coin.Address)
		if err != nil {
			return err
		}
		return common.CheckU128(a.Cw1155Coin.Value)
	}
	return ErrWrongAssetType
}

// Address returns the token contract, or the denom for coins.
func (a Asset) Address() string {
	switch a.Kind() {
	case KindCoin:
		return a.Coin.Denom
	case KindCw20:
		return a.Cw20Coin.Address
	case KindCw721:
		return a.Cw721Coin.Address
	case KindCw1155:
		return a.Cw1155Coin.Address
	}
	return ""
}

// TokenID returns the id of non-fungible variants.
func (a Asset) TokenID() string {
	switch a.Kind() {
	case KindCw721:
		return a.Cw721Coin.TokenID
	case KindCw1155:
		return a.Cw1155Coin.TokenID
	}
	return ""
}

// Amount is the quantity carried by the asset; a cw721 token counts as one.
func (a Asset) Amount() *big.Int {
	switch a.Kind() {
	case KindCoin:
		return common.Amount(a.Coin.Amount)
	case KindCw20:
		return common.Amount(a.Cw20Coin.Amount)
	case KindCw721:
		return big.NewInt(1)
	case KindCw1155:
		return common.Amount(a.Cw1155Coin.Value)
	}
	return new(big.Int)
}

// WithAmount returns a copy of a fungible asset carrying amount.
func (a Asset) WithAmount(amount *big.Int) (Asset, error) {
	switch a.Kind() {
	case KindCoin:
		return Coin(a.Coin.Denom, amount), nil
	case KindCw20:
		return Cw20(a.Cw20Coin.Address, amount), nil
	case KindCw1155:
		return Cw1155(a.Cw1155Coin.Address, a.Cw1155Coin.TokenID, amount), nil
	}
	return Asset{}, ErrWrongAssetType
}

// Equal compares the variant tag and every field.
func (a Asset) Equal(other Asset) bool {
	if a.Kind() != other.Kind() || a.Kind() == KindUnknown {
		return false
	}
	return a.Address() == other.Address() &&
		a.TokenID() == other.TokenID() &&
		a.Amount().Cmp(other.Amount()) == 0
}

func (a Asset) String() string {
	switch a.Kind() {
	case KindCoin:
		return a.Coin.String()
	case KindCw20:
		return fmt.Sprintf("%s:%s", a.Cw20Coin.Address, a.Amount())
	case KindCw721:
		return fmt.Sprintf("%s:%s", a.Cw721Coin.Address, a.Cw721Coin.TokenID)
	case KindCw1155:
		return fmt.Sprintf("%s:%s:%s", a.Cw1155Coin.Address, a.Cw1155Coin.TokenID, a.Amount())
	}
	return "unknown"
}

// TransferMsg moves the asset out of the contract self to recipient.
func (a Asset) TransferMsg(self, recipient string) (types.CosmosMsg, error) {
	switch a.Kind() {
	case KindCoin:
		return types.NewBankSend(recipient, a.Coin.Clone()), nil
	case KindCw20:
		return cw20.TransferMsg(a.Cw20Coin.Address, recipient, a.Amount())
	case KindCw721:
		return cw721.TransferMsg(a.Cw721Coin.Address, recipient, a.Cw721Coin.TokenID)
	case KindCw1155:
		return cw1155.SendFromMsg(a.Cw1155Coin.Address, self, recipient, a.Cw1155Coin.TokenID, a.Amount())
	}
	return types.CosmosMsg{}, ErrWrongAssetType
}

// PullMsg moves the asset from owner into the contract self. Coins cannot be
// pulled and must be attached to the message instead.
func (a Asset) PullMsg(owner, self string) (types.CosmosMsg, error) {
	switch a.Kind() {
	case KindCw20:
		return cw20.TransferFromMsg(a.Cw20Coin.Address, owner, self, a.Amount())
	case KindCw721:
		return cw721.TransferMsg(a.Cw721Coin.Address, self, a.Cw721Coin.TokenID)
	case KindCw1155:
		return cw1155.SendFromMsg(a.Cw1155Coin.Address, owner, self, a.Cw1155Coin.TokenID, a.Amount())
	}
	return types.CosmosMsg{}, ErrWrongAssetType
}

// Stored is the RLP form of an Asset.
type Stored struct {
	Kind    uint8
	Denom   string
	Address string
	TokenID string
	Amount  *big.Int
}

func (a Asset) Stored() Stored {
	s := Stored{Kind: uint8(a.Kind()), Amount: a.Amount()}
	switch a.Kind() {
	case KindCoin:
		s.Denom = a.Coin.Denom
	case KindCw20, KindCw721, KindCw1155:
		s.Address = a.Address()
		s.TokenID = a.TokenID()
	}
	return s
}

func (s Stored) Asset() Asset {
	switch Kind(s.Kind) {
	case KindCoin:
		return Coin(s.Denom, s.Amount)
	case KindCw20:
		return Cw20(s.Address, s.Amount)
	case KindCw721:
		return Cw721(s.Address, s.TokenID)
	case KindCw1155:
		return Cw1155(s.Address, s.TokenID, s.Amount)
	}
	return Asset{}
}
