package cw721

import (
	"encoding/json"

	"nftfi/core/types"
)

type TransferNft struct {
	Recipient string `json:"recipient"`
	TokenID   string `json:"token_id"`
}

type SendNft struct {
	Contract string `json:"contract"`
	TokenID  string `json:"token_id"`
	Msg      []byte `json:"msg"`
}

type Approve struct {
	Spender string `json:"spender"`
	TokenID string `json:"token_id"`
}

type ApproveAll struct {
	Operator string `json:"operator"`
}

type RevokeAll struct {
	Operator string `json:"operator"`
}

type Mint struct {
	TokenID  string `json:"token_id"`
	Owner    string `json:"owner"`
	TokenURI string `json:"token_uri,omitempty"`
}

type ExecuteMsg struct {
	TransferNft *TransferNft `json:"transfer_nft,omitempty"`
	SendNft     *SendNft     `json:"send_nft,omitempty"`
	Approve     *Approve     `json:"approve,omitempty"`
	ApproveAll  *ApproveAll  `json:"approve_all,omitempty"`
	RevokeAll   *RevokeAll   `json:"revoke_all,omitempty"`
	Mint        *Mint        `json:"mint,omitempty"`
}

// ReceiveMsg is the hook delivered by SendNft.
type ReceiveMsg struct {
	Sender  string `json:"sender"`
	TokenID string `json:"token_id"`
	Msg     []byte `json:"msg"`
}

// IntoCosmosMsg wraps the hook as {"receive_nft": ...}.
func (r ReceiveMsg) IntoCosmosMsg(contract string) (types.CosmosMsg, error) {
	return types.NewWasmExecute(contract, struct {
		ReceiveNft ReceiveMsg `json:"receive_nft"`
	}{r})
}

type InstantiateMsg struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Minter string `json:"minter"`
}

type QueryMsg struct {
	OwnerOf      *TokenQuery `json:"owner_of,omitempty"`
	NftInfo      *TokenQuery `json:"nft_info,omitempty"`
	ContractInfo *struct{}   `json:"contract_info,omitempty"`
}

type TokenQuery struct {
	TokenID string `json:"token_id"`
}

type OwnerOfResponse struct {
	Owner     string   `json:"owner"`
	Approvals []string `json:"approvals"`
}

type NftInfoResponse struct {
	TokenURI string `json:"token_uri,omitempty"`
}

type ContractInfoResponse struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// TransferMsg builds a TransferNft call on collection.
func TransferMsg(collection, recipient, tokenID string) (types.CosmosMsg, error) {
	return types.NewWasmExecute(collection, ExecuteMsg{TransferNft: &TransferNft{Recipient: recipient, TokenID: tokenID}})
}

// SendMsg builds a SendNft call whose hook payload is the JSON of inner.
func SendMsg(collection, contract, tokenID string, inner interface{}) (types.CosmosMsg, error) {
	raw, err := json.Marshal(inner)
	if err != nil {
		return types.CosmosMsg{}, err
	}
	return types.NewWasmExecute(collection, ExecuteMsg{SendNft: &SendNft{Contract: contract, TokenID: tokenID, Msg: raw}})
}
