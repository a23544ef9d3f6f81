package cw20

import (
	"encoding/json"
	"math/big"

	"nftfi/core/types"
)

// Expiration bounds an allowance. Exactly one field is set; the zero value
// never expires. AtTime is in unix seconds.
type Expiration struct {
	AtHeight *uint64   `json:"at_height,omitempty"`
	AtTime   *uint64   `json:"at_time,omitempty"`
	Never    *struct{} `json:"never,omitempty"`
}

func AtHeight(h uint64) Expiration { return Expiration{AtHeight: &h} }
func AtTime(t uint64) Expiration   { return Expiration{AtTime: &t} }
func Never() Expiration            { return Expiration{Never: &struct{}{}} }

// IsExpired evaluates the expiration against the executing block.
func (e Expiration) IsExpired(block types.BlockInfo) bool {
	switch {
	case e.AtHeight != nil:
		return block.Height >= *e.AtHeight
	case e.AtTime != nil:
		return block.Time >= *e.AtTime
	default:
		return false
	}
}

// StoredExpiration is the RLP form of Expiration.
type StoredExpiration struct {
	Kind  uint8
	Value uint64
}

const (
	expNever uint8 = iota
	expHeight
	expTime
)

func (e Expiration) Stored() StoredExpiration {
	switch {
	case e.AtHeight != nil:
		return StoredExpiration{Kind: expHeight, Value: *e.AtHeight}
	case e.AtTime != nil:
		return StoredExpiration{Kind: expTime, Value: *e.AtTime}
	default:
		return StoredExpiration{Kind: expNever}
	}
}

func (s StoredExpiration) Expiration() Expiration {
	switch s.Kind {
	case expHeight:
		return AtHeight(s.Value)
	case expTime:
		return AtTime(s.Value)
	default:
		return Never()
	}
}

type Transfer struct {
	Recipient string   `json:"recipient"`
	Amount    *big.Int `json:"amount"`
}

type TransferFrom struct {
	Owner     string   `json:"owner"`
	Recipient string   `json:"recipient"`
	Amount    *big.Int `json:"amount"`
}

type Send struct {
	Contract string   `json:"contract"`
	Amount   *big.Int `json:"amount"`
	Msg      []byte   `json:"msg"`
}

type SendFrom struct {
	Owner    string   `json:"owner"`
	Contract string   `json:"contract"`
	Amount   *big.Int `json:"amount"`
	Msg      []byte   `json:"msg"`
}

type Burn struct {
	Amount *big.Int `json:"amount"`
}

type BurnFrom struct {
	Owner  string   `json:"owner"`
	Amount *big.Int `json:"amount"`
}

type IncreaseAllowance struct {
	Spender string      `json:"spender"`
	Amount  *big.Int    `json:"amount"`
	Expires *Expiration `json:"expires,omitempty"`
}

type DecreaseAllowance struct {
	Spender string      `json:"spender"`
	Amount  *big.Int    `json:"amount"`
	Expires *Expiration `json:"expires,omitempty"`
}

type Mint struct {
	Recipient string   `json:"recipient"`
	Amount    *big.Int `json:"amount"`
}

// ExecuteMsg is the execute surface of the reference token.
type ExecuteMsg struct {
	Transfer          *Transfer          `json:"transfer,omitempty"`
	TransferFrom      *TransferFrom      `json:"transfer_from,omitempty"`
	Send              *Send              `json:"send,omitempty"`
	SendFrom          *SendFrom          `json:"send_from,omitempty"`
	Burn              *Burn              `json:"burn,omitempty"`
	BurnFrom          *BurnFrom          `json:"burn_from,omitempty"`
	IncreaseAllowance *IncreaseAllowance `json:"increase_allowance,omitempty"`
	DecreaseAllowance *DecreaseAllowance `json:"decrease_allowance,omitempty"`
	Mint              *Mint              `json:"mint,omitempty"`
}

// ReceiveMsg is delivered to a contract by Send/SendFrom.
type ReceiveMsg struct {
	Sender string   `json:"sender"`
	Amount *big.Int `json:"amount"`
	Msg    []byte   `json:"msg"`
}

// IntoCosmosMsg wraps the hook as {"receive": ...} on contract.
func (r ReceiveMsg) IntoCosmosMsg(contract string) (types.CosmosMsg, error) {
	return types.NewWasmExecute(contract, struct {
		Receive ReceiveMsg `json:"receive"`
	}{r})
}

type InstantiateMsg struct {
	Name            string          `json:"name"`
	Symbol          string          `json:"symbol"`
	Decimals        uint8           `json:"decimals"`
	InitialBalances []Balance       `json:"initial_balances"`
	Mint            *MinterResponse `json:"mint,omitempty"`
}

type Balance struct {
	Address string   `json:"address"`
	Amount  *big.Int `json:"amount"`
}

type QueryMsg struct {
	Balance   *BalanceQuery   `json:"balance,omitempty"`
	TokenInfo *struct{}       `json:"token_info,omitempty"`
	Allowance *AllowanceQuery `json:"allowance,omitempty"`
	Minter    *struct{}       `json:"minter,omitempty"`
}

type BalanceQuery struct {
	Address string `json:"address"`
}

type AllowanceQuery struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

type BalanceResponse struct {
	Balance *big.Int `json:"balance"`
}

type TokenInfoResponse struct {
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	Decimals    uint8    `json:"decimals"`
	TotalSupply *big.Int `json:"total_supply"`
}

type AllowanceResponse struct {
	Allowance *big.Int   `json:"allowance"`
	Expires   Expiration `json:"expires"`
}

type MinterResponse struct {
	Minter string   `json:"minter"`
	Cap    *big.Int `json:"cap,omitempty"`
}

// ExecuteCall encodes msg as a call on the token contract.
func ExecuteCall(token string, msg ExecuteMsg, funds ...types.Coin) (types.CosmosMsg, error) {
	return types.NewWasmExecute(token, msg, funds...)
}

// TransferMsg builds a Transfer on token.
func TransferMsg(token, recipient string, amount *big.Int) (types.CosmosMsg, error) {
	return ExecuteCall(token, ExecuteMsg{Transfer: &Transfer{Recipient: recipient, Amount: amount}})
}

// TransferFromMsg builds a TransferFrom on token.
func TransferFromMsg(token, owner, recipient string, amount *big.Int) (types.CosmosMsg, error) {
	return ExecuteCall(token, ExecuteMsg{TransferFrom: &TransferFrom{Owner: owner, Recipient: recipient, Amount: amount}})
}

// SendMsg builds a Send on token whose hook payload is the JSON of inner.
func SendMsg(token, contract string, amount *big.Int, inner interface{}) (types.CosmosMsg, error) {
	raw, err := json.Marshal(inner)
	if err != nil {
		return types.CosmosMsg{}, err
	}
	return ExecuteCall(token, ExecuteMsg{Send: &Send{Contract: contract, Amount: amount, Msg: raw}})
}
