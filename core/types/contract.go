package types

import (
	"encoding/json"
	"math/big"
)

// MessageInfo carries the caller and the funds moved to the contract before
// the entry point runs.
type MessageInfo struct {
	Sender string `json:"sender"`
	Funds  []Coin `json:"funds"`
}

// BankSend moves native coins out of the calling contract.
type BankSend struct {
	ToAddress string `json:"to_address"`
	Amount    []Coin `json:"amount"`
}

type BankMsg struct {
	Send *BankSend `json:"send,omitempty"`
}

// WasmExecute calls another contract with the caller as sender.
type WasmExecute struct {
	ContractAddr string          `json:"contract_addr"`
	Msg          json.RawMessage `json:"msg"`
	Funds        []Coin          `json:"funds"`
}

type WasmMsg struct {
	Execute *WasmExecute `json:"execute,omitempty"`
}

// CosmosMsg is an outbound message dispatched by the host after the entry
// point returns.
type CosmosMsg struct {
	Bank *BankMsg `json:"bank,omitempty"`
	Wasm *WasmMsg `json:"wasm,omitempty"`
}

func NewBankSend(to string, coins ...Coin) CosmosMsg {
	return CosmosMsg{Bank: &BankMsg{Send: &BankSend{ToAddress: to, Amount: coins}}}
}

// NewWasmExecute JSON-encodes msg into a contract call.
func NewWasmExecute(contract string, msg interface{}, funds ...Coin) (CosmosMsg, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return CosmosMsg{}, err
	}
	return CosmosMsg{Wasm: &WasmMsg{Execute: &WasmExecute{ContractAddr: contract, Msg: raw, Funds: funds}}}, nil
}

type ReplyOn uint8

const (
	ReplyNever ReplyOn = iota
	ReplySuccess
)

type SubMsg struct {
	ID      uint64    `json:"id"`
	Msg     CosmosMsg `json:"msg"`
	ReplyOn ReplyOn   `json:"reply_on"`
}

type SubMsgResult struct {
	Events []Event `json:"events"`
	Data   []byte  `json:"data,omitempty"`
}

// Reply is delivered to the caller after a sub-message registered with
// ReplySuccess completes.
type Reply struct {
	ID     uint64       `json:"id"`
	Result SubMsgResult `json:"result"`
}

// Response is returned by every mutating entry point.
type Response struct {
	Messages   []SubMsg    `json:"messages"`
	Attributes []Attribute `json:"attributes"`
	Events     []Event     `json:"events"`
	Data       []byte      `json:"data,omitempty"`
}

func NewResponse() *Response {
	return &Response{}
}

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

func (r *Response) AddMessage(msg CosmosMsg) *Response {
	r.Messages = append(r.Messages, SubMsg{Msg: msg, ReplyOn: ReplyNever})
	return r
}

func (r *Response) AddMessages(msgs ...CosmosMsg) *Response {
	for _, msg := range msgs {
		r.AddMessage(msg)
	}
	return r
}

func (r *Response) AddSubMessage(sub SubMsg) *Response {
	r.Messages = append(r.Messages, sub)
	return r
}

func (r *Response) AddEvent(ev Event) *Response {
	r.Events = append(r.Events, ev)
	return r
}

func (r *Response) SetData(data []byte) *Response {
	r.Data = data
	return r
}

// Attribute returns the first attribute value for key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, attr := range r.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Store is the per-instance key/value keyspace handed to contracts.
type Store interface {
	KVPut(key []byte, value interface{}) error
	KVGet(key []byte, out interface{}) (bool, error)
	KVDelete(key []byte) error
	KVAppend(key []byte, value []byte) error
	KVRemove(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
}

// API validates human readable addresses.
type API interface {
	AddrValidate(addr string) (string, error)
}

// Querier gives contracts read access to the bank and other contracts.
type Querier interface {
	QueryBalance(address, denom string) (*big.Int, error)
	QueryWasmSmart(contract string, msg interface{}, out interface{}) error
}

// Deps bundles what a contract may touch during a call.
type Deps struct {
	Storage Store
	API     API
	Querier Querier
}

// Contract is implemented by every code registered with the host. Messages are
// raw JSON so the host stays agnostic of contract types.
type Contract interface {
	Instantiate(deps Deps, env Env, info MessageInfo, msg []byte) (*Response, error)
	Execute(deps Deps, env Env, info MessageInfo, msg []byte) (*Response, error)
	Query(deps Deps, env Env, msg []byte) ([]byte, error)
}

// Replier is implemented by contracts that register sub-messages with a reply.
type Replier interface {
	Reply(deps Deps, env Env, reply Reply) (*Response, error)
}
