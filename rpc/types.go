package rpc

import (
	"encoding/json"

	"nftfi/core"
	"nftfi/core/types"
	"nftfi/indexer"
)

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ContractErrorData is attached to -32000 errors raised by a contract.
type ContractErrorData struct {
	Kind   string            `json:"kind"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
	Hash   string            `json:"hash,omitempty"`
}

// TxResult summarises an executed transaction for RPC consumers.
type TxResult struct {
	Hash     string        `json:"hash,omitempty"`
	Height   uint64        `json:"height"`
	Time     uint64        `json:"time"`
	Sender   string        `json:"sender,omitempty"`
	Contract string        `json:"contract,omitempty"`
	Action   string        `json:"action,omitempty"`
	Events   []types.Event `json:"events"`
	Data     []byte        `json:"data,omitempty"`
}

func txResultFromHost(res *core.TxResult) TxResult {
	if res == nil {
		return TxResult{Events: []types.Event{}}
	}
	evs := res.Events
	if evs == nil {
		evs = []types.Event{}
	}
	return TxResult{
		Hash:     res.Hash,
		Height:   res.Height,
		Time:     res.Time,
		Sender:   res.Sender,
		Contract: res.Contract,
		Action:   res.Action,
		Events:   evs,
		Data:     res.Data,
	}
}

type QueryParams struct {
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
}

type BalanceResponse struct {
	Address  string      `json:"address"`
	Balances types.Coins `json:"balances"`
}

type StatusResponse struct {
	ChainID   string `json:"chain_id"`
	Height    uint64 `json:"height"`
	Time      uint64 `json:"time"`
	Contracts int    `json:"contracts"`
}

// IndexedTx is the tx_get result.
type IndexedTx struct {
	Hash     string        `json:"hash"`
	Height   uint64        `json:"height"`
	Time     uint64        `json:"time"`
	Sender   string        `json:"sender"`
	Contract string        `json:"contract,omitempty"`
	Action   string        `json:"action,omitempty"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Events   []types.Event `json:"events"`
}

func indexedTx(tx *indexer.TxRecord, evs []indexer.EventRecord) (IndexedTx, error) {
	out := IndexedTx{
		Hash:     tx.Hash,
		Height:   tx.Height,
		Time:     tx.Time,
		Sender:   tx.Sender,
		Contract: tx.Contract,
		Action:   tx.Action,
		Success:  tx.Success,
		Error:    tx.Error,
		Events:   make([]types.Event, 0, len(evs)),
	}
	for _, ev := range evs {
		attrs, err := ev.Attrs()
		if err != nil {
			return out, err
		}
		out.Events = append(out.Events, types.Event{Type: ev.Type, Attributes: attrs})
	}
	return out, nil
}
