package core

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	cerrors "nftfi/core/errors"
	"nftfi/core/state"
	"nftfi/core/types"
	"nftfi/crypto"
	"nftfi/storage"
)

// subResult is what a dispatched message hands back to its caller.
type subResult struct {
	events []types.Event
	data   []byte
}

func (r *subResult) merge(other *subResult) {
	if other == nil {
		return
	}
	r.events = append(r.events, other.events...)
}

// txContext routes every message of one transaction over a shared write
// buffer.
type txContext struct {
	app   *App
	cache *storage.CacheDB
	bank  *Bank
	host  *state.Manager
}

func (a *App) newTx(cache *storage.CacheDB) *txContext {
	return &txContext{app: a, cache: cache, bank: NewBank(cache), host: hostState(cache)}
}

func (tx *txContext) deps(contract string) types.Deps {
	return types.Deps{
		Storage: state.NewManager(tx.cache).Scoped("contract/" + contract),
		API:     tx.app.api,
		Querier: &querier{tx: tx},
	}
}

func (tx *txContext) env(contract string) types.Env {
	return types.Env{Block: tx.app.block, Contract: types.ContractInfo{Address: contract}}
}

func (tx *txContext) load(addr string) (types.Contract, error) {
	var stored storedContract
	ok, err := tx.host.KVGet(contractKey(addr), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrContractNotFound.With("address", addr)
	}
	factory, ok := tx.app.codes[stored.Code]
	if !ok {
		return nil, ErrUnknownCode.With("code", stored.Code)
	}
	return factory(), nil
}

func (tx *txContext) nextSeq() (uint64, error) {
	var seq uint64
	if _, err := tx.host.KVGet(seqKey, &seq); err != nil {
		return 0, err
	}
	seq++
	return seq, tx.host.KVPut(seqKey, seq)
}

func (tx *txContext) instantiate(sender, code, label string, msg []byte, funds []types.Coin) (string, *subResult, error) {
	if _, err := tx.app.api.AddrValidate(sender); err != nil {
		return "", nil, cerrors.ErrInvalidAddress.Wrapf("sender: %v", err)
	}
	factory, ok := tx.app.codes[code]
	if !ok {
		return "", nil, ErrUnknownCode.With("code", code)
	}
	seq, err := tx.nextSeq()
	if err != nil {
		return "", nil, err
	}
	addr := crypto.ContractAddress(tx.app.prefix, code, label, seq).String()
	if err := tx.host.KVPut(contractKey(addr), storedContract{Code: code, Label: label, Creator: sender}); err != nil {
		return "", nil, err
	}
	if err := tx.host.KVAppend(contractsKey, []byte(addr)); err != nil {
		return "", nil, err
	}
	out := &subResult{}
	if len(funds) > 0 {
		sent, err := tx.send(sender, addr, funds)
		if err != nil {
			return "", nil, err
		}
		out.merge(sent)
	}
	res, err := factory().Instantiate(tx.deps(addr), tx.env(addr), types.MessageInfo{Sender: sender, Funds: funds}, msg)
	if err != nil {
		return "", nil, failedIn(addr, err)
	}
	out.events = append(out.events, types.Event{Type: "instantiate", Attributes: map[string]string{
		"_contract_address": addr,
		"code":              code,
		"label":             label,
	}})
	handled, err := tx.handleResponse(addr, res, 0)
	if err != nil {
		return "", nil, err
	}
	out.merge(handled)
	out.data = handled.data
	return addr, out, nil
}

// failedIn tags err with the address of the innermost contract that
// returned it.
func failedIn(contract string, err error) error {
	ce, ok := cerrors.As(err)
	if !ok {
		return fmt.Errorf("contract %s: %w", contract, err)
	}
	if _, tagged := ce.Fields["contract_address"]; tagged {
		return err
	}
	return ce.With("contract_address", contract)
}

// execute calls contract with sender as caller. Funds move before the entry
// point runs.
func (tx *txContext) execute(sender, contract string, msg []byte, funds []types.Coin, depth int) (*subResult, error) {
	if depth > tx.app.maxDepth {
		return nil, ErrCallDepthExceeded.With("depth", depth)
	}
	if _, err := tx.app.api.AddrValidate(sender); err != nil {
		return nil, cerrors.ErrInvalidAddress.Wrapf("sender: %v", err)
	}
	c, err := tx.load(contract)
	if err != nil {
		return nil, err
	}
	out := &subResult{}
	if len(funds) > 0 {
		sent, err := tx.send(sender, contract, funds)
		if err != nil {
			return nil, err
		}
		out.merge(sent)
	}
	res, err := c.Execute(tx.deps(contract), tx.env(contract), types.MessageInfo{Sender: sender, Funds: funds}, msg)
	if err != nil {
		return nil, failedIn(contract, err)
	}
	handled, err := tx.handleResponse(contract, res, depth)
	if err != nil {
		return nil, err
	}
	out.merge(handled)
	out.data = handled.data
	return out, nil
}

func (tx *txContext) send(from, to string, coins []types.Coin) (*subResult, error) {
	if _, err := tx.app.api.AddrValidate(to); err != nil {
		return nil, cerrors.ErrInvalidAddress.Wrapf("recipient: %v", err)
	}
	if err := tx.bank.Send(from, to, coins); err != nil {
		return nil, err
	}
	amount := ""
	for i, c := range types.Coins(coins).Normalize() {
		if i > 0 {
			amount += ","
		}
		amount += c.String()
	}
	return &subResult{events: []types.Event{{Type: "transfer", Attributes: map[string]string{
		"sender":    from,
		"recipient": to,
		"amount":    amount,
	}}}}, nil
}

// dispatch runs one outbound message on behalf of sender.
func (tx *txContext) dispatch(sender string, msg types.CosmosMsg, depth int) (*subResult, error) {
	switch {
	case msg.Bank != nil && msg.Bank.Send != nil:
		tx.app.metrics.ObserveMessage("bank_send")
		return tx.send(sender, msg.Bank.Send.ToAddress, msg.Bank.Send.Amount)
	case msg.Wasm != nil && msg.Wasm.Execute != nil:
		tx.app.metrics.ObserveMessage("wasm_execute")
		exec := msg.Wasm.Execute
		return tx.execute(sender, exec.ContractAddr, exec.Msg, exec.Funds, depth+1)
	}
	return nil, ErrUnsupportedMessage
}

// handleResponse turns a contract response into events and runs its
// messages in order. A reply is delivered before the next message runs.
func (tx *txContext) handleResponse(contract string, res *types.Response, depth int) (*subResult, error) {
	out := &subResult{}
	if res == nil {
		return out, nil
	}
	out.data = res.Data
	wasm := types.Event{Type: "wasm", Attributes: map[string]string{"_contract_address": contract}}
	for _, attr := range res.Attributes {
		wasm.Attributes[attr.Key] = attr.Value
	}
	out.events = append(out.events, wasm)
	for _, ev := range res.Events {
		custom := types.Event{Type: "wasm-" + ev.Type, Attributes: map[string]string{"_contract_address": contract}}
		for k, v := range ev.Attributes {
			custom.Attributes[k] = v
		}
		out.events = append(out.events, custom)
	}
	for _, sub := range res.Messages {
		sent, err := tx.dispatch(contract, sub.Msg, depth)
		if err != nil {
			return nil, err
		}
		out.merge(sent)
		if sub.ReplyOn != types.ReplySuccess {
			continue
		}
		replied, err := tx.reply(contract, sub.ID, sent, depth)
		if err != nil {
			return nil, err
		}
		out.merge(replied)
		if replied.data != nil {
			out.data = replied.data
		}
	}
	return out, nil
}

func (tx *txContext) reply(contract string, id uint64, result *subResult, depth int) (*subResult, error) {
	c, err := tx.load(contract)
	if err != nil {
		return nil, err
	}
	replier, ok := c.(types.Replier)
	if !ok {
		return nil, ErrNoReplyHandler.With("contract", contract, "id", strconv.FormatUint(id, 10))
	}
	res, err := replier.Reply(tx.deps(contract), tx.env(contract), types.Reply{
		ID:     id,
		Result: types.SubMsgResult{Events: result.events, Data: result.data},
	})
	if err != nil {
		return nil, err
	}
	return tx.handleResponse(contract, res, depth)
}

func (tx *txContext) query(contract string, msg []byte) ([]byte, error) {
	c, err := tx.load(contract)
	if err != nil {
		return nil, err
	}
	return c.Query(tx.deps(contract), tx.env(contract), msg)
}

// querier serves contract queries against the state of the running
// transaction.
type querier struct {
	tx *txContext
}

func (q *querier) QueryBalance(address, denom string) (*big.Int, error) {
	return q.tx.bank.Balance(address, denom)
}

func (q *querier) QueryWasmSmart(contract string, msg interface{}, out interface{}) error {
	var raw []byte
	switch m := msg.(type) {
	case []byte:
		raw = m
	case json.RawMessage:
		raw = m
	default:
		encoded, err := json.Marshal(msg)
		if err != nil {
			return cerrors.ErrInvalidMessage.Wrapf("encode query: %v", err)
		}
		raw = encoded
	}
	resp, err := q.tx.query(contract, raw)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp, out)
}
