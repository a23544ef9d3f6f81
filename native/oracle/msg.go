package oracle

import (
	"math/big"

	"nftfi/native/asset"
)

type InstantiateMsg struct {
	Name    string  `json:"name"`
	Owner   *string `json:"owner,omitempty"`
	Timeout *uint64 `json:"timeout,omitempty"`
}

type SetNftPrice struct {
	Contract    string     `json:"contract"`
	OracleOwner *string    `json:"oracle_owner,omitempty"`
	Price       *big.Int   `json:"price"`
	Unit        asset.Info `json:"unit"`
}

type SetOwner struct {
	Owner string `json:"owner"`
}

type SetTimeout struct {
	Timeout uint64 `json:"timeout"`
}

type ExecuteMsg struct {
	SetNftPrice *SetNftPrice `json:"set_nft_price,omitempty"`
	SetOwner    *SetOwner    `json:"set_owner,omitempty"`
	SetTimeout  *SetTimeout  `json:"set_timeout,omitempty"`
}

type NftPriceQuery struct {
	Contract string     `json:"contract"`
	Unit     asset.Info `json:"unit"`
}

type QueryMsg struct {
	NftPrice     *NftPriceQuery `json:"nft_price,omitempty"`
	ContractInfo *struct{}      `json:"contract_info,omitempty"`
}

// NftPriceResponse reports a collection floor price. Timeout is set once
// the price is older than the oracle timeout.
type NftPriceResponse struct {
	Contract    string     `json:"contract"`
	Price       *big.Int   `json:"price"`
	Unit        asset.Info `json:"unit"`
	OracleOwner string     `json:"oracle_owner"`
	Timeout     bool       `json:"timeout"`
}

type ContractInfoResponse struct {
	Name    string `json:"name"`
	Owner   string `json:"owner"`
	Timeout uint64 `json:"timeout"`
}

// PriceQuery builds the query consumers send to learn a collection price.
func PriceQuery(collection string, unit asset.Info) QueryMsg {
	return QueryMsg{NftPrice: &NftPriceQuery{Contract: collection, Unit: unit}}
}
