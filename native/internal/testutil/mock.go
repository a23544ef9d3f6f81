// Package testutil provides mock host collaborators for contract unit tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"nftfi/core/state"
	"nftfi/core/types"
	"nftfi/storage"
)

const (
	ContractAddr = "cosmos2contract"
	ChainID      = "nftfi-testing"
)

// MockAPI accepts any lower-case address without spaces.
type MockAPI struct{}

func (MockAPI) AddrValidate(addr string) (string, error) {
	if addr == "" || strings.ContainsAny(addr, " \t\n") || strings.ToLower(addr) != addr {
		return "", fmt.Errorf("invalid address %q", addr)
	}
	return addr, nil
}

// SmartHandler answers a smart query sent to a contract.
type SmartHandler func(msg []byte) (interface{}, error)

// MockQuerier serves bank balances and canned smart-query responses.
type MockQuerier struct {
	Balances map[string]map[string]*big.Int
	Smart    map[string]SmartHandler
}

func NewMockQuerier() *MockQuerier {
	return &MockQuerier{Balances: map[string]map[string]*big.Int{}, Smart: map[string]SmartHandler{}}
}

func (q *MockQuerier) SetBalance(addr, denom string, amount int64) {
	if q.Balances[addr] == nil {
		q.Balances[addr] = map[string]*big.Int{}
	}
	q.Balances[addr][denom] = big.NewInt(amount)
}

func (q *MockQuerier) QueryBalance(address, denom string) (*big.Int, error) {
	if bal, ok := q.Balances[address][denom]; ok {
		return new(big.Int).Set(bal), nil
	}
	return new(big.Int), nil
}

func (q *MockQuerier) QueryWasmSmart(contract string, msg interface{}, out interface{}) error {
	handler, ok := q.Smart[contract]
	if !ok {
		return fmt.Errorf("no such contract: %s", contract)
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	res, err := handler(raw)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, out)
}

// NewDeps returns deps over a fresh in-memory keyspace.
func NewDeps() (types.Deps, *MockQuerier) {
	q := NewMockQuerier()
	deps := types.Deps{
		Storage: state.NewManager(storage.NewMemDB()).Scoped("contract/" + ContractAddr),
		API:     MockAPI{},
		Querier: q,
	}
	return deps, q
}

// Env returns a block environment at the given height and unix time.
func Env(height, time uint64) types.Env {
	return types.Env{
		Block:    types.BlockInfo{Height: height, Time: time, ChainID: ChainID},
		Contract: types.ContractInfo{Address: ContractAddr},
	}
}

// Info builds message info with the supplied funds.
func Info(sender string, funds ...types.Coin) types.MessageInfo {
	return types.MessageInfo{Sender: sender, Funds: funds}
}

// WasmCall decodes the contract call carried by msg, failing when msg is not
// a wasm execute.
func WasmCall(msg types.SubMsg, out interface{}) (string, []types.Coin, error) {
	if msg.Msg.Wasm == nil || msg.Msg.Wasm.Execute == nil {
		return "", nil, fmt.Errorf("not a wasm execute: %+v", msg.Msg)
	}
	exec := msg.Msg.Wasm.Execute
	if err := json.Unmarshal(exec.Msg, out); err != nil {
		return "", nil, err
	}
	return exec.ContractAddr, exec.Funds, nil
}

// BankSend returns the bank send carried by msg.
func BankSend(msg types.SubMsg) (*types.BankSend, error) {
	if msg.Msg.Bank == nil || msg.Msg.Bank.Send == nil {
		return nil, fmt.Errorf("not a bank send: %+v", msg.Msg)
	}
	return msg.Msg.Bank.Send, nil
}

func MustJSON(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
