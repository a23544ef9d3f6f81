package cw1155

import (
	"math/big"

	"nftfi/core/types"
)

type SendFrom struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	TokenID string   `json:"token_id"`
	Value   *big.Int `json:"value"`
	Msg     []byte   `json:"msg,omitempty"`
}

type Mint struct {
	To      string   `json:"to"`
	TokenID string   `json:"token_id"`
	Value   *big.Int `json:"value"`
}

type ApproveAll struct {
	Operator string `json:"operator"`
}

type ExecuteMsg struct {
	SendFrom   *SendFrom   `json:"send_from,omitempty"`
	Mint       *Mint       `json:"mint,omitempty"`
	ApproveAll *ApproveAll `json:"approve_all,omitempty"`
}

// ReceiveMsg is delivered to the recipient of a SendFrom carrying a payload.
type ReceiveMsg struct {
	Operator string   `json:"operator"`
	From     string   `json:"from"`
	TokenID  string   `json:"token_id"`
	Amount   *big.Int `json:"amount"`
	Msg      []byte   `json:"msg"`
}

// IntoCosmosMsg wraps the hook as {"cw1155_receive_msg": ...}.
func (r ReceiveMsg) IntoCosmosMsg(contract string) (types.CosmosMsg, error) {
	return types.NewWasmExecute(contract, struct {
		Receive ReceiveMsg `json:"cw1155_receive_msg"`
	}{r})
}

type InstantiateMsg struct {
	Minter string `json:"minter"`
}

type QueryMsg struct {
	Balance *BalanceQuery `json:"balance,omitempty"`
}

type BalanceQuery struct {
	Owner   string `json:"owner"`
	TokenID string `json:"token_id"`
}

type BalanceResponse struct {
	Balance *big.Int `json:"balance"`
}

// SendFromMsg builds a SendFrom call on contract.
func SendFromMsg(contract, from, to, tokenID string, value *big.Int) (types.CosmosMsg, error) {
	return types.NewWasmExecute(contract, ExecuteMsg{SendFrom: &SendFrom{From: from, To: to, TokenID: tokenID, Value: value}})
}
