package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nftfi/core/events"
	"nftfi/core/state"
	"nftfi/core/types"
	"nftfi/crypto"
	"nftfi/observability/metrics"
	"nftfi/storage"
)

// DefaultMaxCallDepth bounds nested contract calls within one transaction.
const DefaultMaxCallDepth = 16

// Factory builds a fresh contract handler for a registered code.
type Factory func() types.Contract

// TxResult describes one executed transaction.
type TxResult struct {
	Hash     string        `json:"hash"`
	Height   uint64        `json:"height"`
	Time     uint64        `json:"time"`
	Sender   string        `json:"sender"`
	Contract string        `json:"contract,omitempty"`
	Action   string        `json:"action,omitempty"`
	Events   []types.Event `json:"events"`
	Data     []byte        `json:"data,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func (r *TxResult) Success() bool { return r.Error == "" }

// TxSink receives every executed transaction, successful or not.
type TxSink interface {
	Record(ctx context.Context, res *TxResult) error
}

type Options struct {
	ChainID      string
	Prefix       crypto.AddressPrefix
	API          types.API
	MaxCallDepth int
	GenesisTime  uint64
	Logger       *slog.Logger
	Emitter      events.Emitter
	Sink         TxSink
	Metrics      *metrics.HostMetrics
}

// App is the contract host. Calls are serialised; each transaction runs
// against a write buffer that is committed only when every message succeeds.
type App struct {
	mu       sync.Mutex
	db       storage.Database
	codes    map[string]Factory
	chainID  string
	prefix   crypto.AddressPrefix
	api      types.API
	maxDepth int
	block    types.BlockInfo
	txIndex  uint64
	logger   *slog.Logger
	emitter  events.Emitter
	sink     TxSink
	metrics  *metrics.HostMetrics
}

type storedBlock struct {
	Height uint64
	Time   uint64
}

type storedContract struct {
	Code    string
	Label   string
	Creator string
}

var (
	blockKey     = []byte("block")
	seqKey       = []byte("seq")
	contractsKey = []byte("contracts")
)

func contractKey(addr string) []byte { return []byte("contract/" + addr) }
func nonceKey(addr string) []byte    { return []byte("nonce/" + addr) }

func hostState(db storage.Database) *state.Manager {
	return state.NewManager(db).Scoped("host")
}

func NewApp(db storage.Database, opts Options) (*App, error) {
	if opts.Prefix == "" {
		opts.Prefix = crypto.DefaultPrefix
	}
	if opts.API == nil {
		opts.API = crypto.Bech32API{Prefix: opts.Prefix}
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Emitter == nil {
		opts.Emitter = events.NoopEmitter{}
	}
	a := &App{
		db:       db,
		codes:    make(map[string]Factory),
		chainID:  opts.ChainID,
		prefix:   opts.Prefix,
		api:      opts.API,
		maxDepth: opts.MaxCallDepth,
		logger:   opts.Logger.With("component", "host"),
		emitter:  opts.Emitter,
		sink:     opts.Sink,
		metrics:  opts.Metrics,
	}
	var stored storedBlock
	ok, err := hostState(db).KVGet(blockKey, &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		stored = storedBlock{Height: 1, Time: opts.GenesisTime}
	}
	a.block = types.BlockInfo{Height: stored.Height, Time: stored.Time, ChainID: opts.ChainID}
	return a, nil
}

func (a *App) SetSink(sink TxSink) {
	a.mu.Lock()
	a.sink = sink
	a.mu.Unlock()
}

func (a *App) SetEmitter(emitter events.Emitter) {
	a.mu.Lock()
	a.emitter = emitter
	a.mu.Unlock()
}

// Register makes a contract code available for instantiation.
func (a *App) Register(code string, factory Factory) {
	a.mu.Lock()
	a.codes[code] = factory
	a.mu.Unlock()
}

func (a *App) Prefix() crypto.AddressPrefix { return a.prefix }

// BlockInfo returns the current block context.
func (a *App) BlockInfo() types.BlockInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.block
}

// Initialized reports whether a block was ever persisted.
func (a *App) Initialized() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return hostState(a.db).KVGet(blockKey, nil)
}

// InitChain sets the first block. It is called once when applying genesis.
func (a *App) InitChain(height, t uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setBlock(height, t)
}

// AdvanceBlocks moves the chain forward by n blocks of the given duration.
func (a *App) AdvanceBlocks(n, secondsPerBlock uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setBlock(a.block.Height+n, a.block.Time+n*secondsPerBlock)
}

// ProduceBlock opens the next block at wall-clock time now.
func (a *App) ProduceBlock(now time.Time) (types.BlockInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := uint64(now.Unix())
	if t < a.block.Time {
		t = a.block.Time
	}
	if err := a.setBlock(a.block.Height+1, t); err != nil {
		return types.BlockInfo{}, err
	}
	return a.block, nil
}

func (a *App) setBlock(height, t uint64) error {
	if err := hostState(a.db).KVPut(blockKey, storedBlock{Height: height, Time: t}); err != nil {
		return err
	}
	a.block.Height = height
	a.block.Time = t
	a.txIndex = 0
	a.metrics.SetBlockHeight(height)
	return nil
}

// SetBalance overwrites a balance outside of any transaction. It is meant for
// genesis and tests.
func (a *App) SetBalance(addr string, coin types.Coin) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return NewBank(a.db).SetBalance(addr, coin)
}

func (a *App) Balance(addr, denom string) (types.Coin, error) {
	if _, err := a.api.AddrValidate(addr); err != nil {
		return types.Coin{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	amount, err := NewBank(a.db).Balance(addr, denom)
	if err != nil {
		return types.Coin{}, err
	}
	return types.NewCoinBig(denom, amount), nil
}

func (a *App) Balances(addr string) (types.Coins, error) {
	if _, err := a.api.AddrValidate(addr); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return NewBank(a.db).Balances(addr)
}

// ContractInfo describes a deployed instance.
type ContractInfo struct {
	Address string `json:"address"`
	Code    string `json:"code"`
	Label   string `json:"label"`
	Creator string `json:"creator"`
}

// Contracts lists every instance sorted by address.
func (a *App) Contracts() ([]ContractInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	kv := hostState(a.db)
	var addrs [][]byte
	if err := kv.KVGetList(contractsKey, &addrs); err != nil {
		return nil, err
	}
	out := make([]ContractInfo, 0, len(addrs))
	for _, raw := range addrs {
		var stored storedContract
		if _, err := kv.KVGet(contractKey(string(raw)), &stored); err != nil {
			return nil, err
		}
		out = append(out, ContractInfo{Address: string(raw), Code: stored.Code, Label: stored.Label, Creator: stored.Creator})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

// Instantiate deploys a new instance of code and runs its constructor.
func (a *App) Instantiate(sender, code, label string, msg []byte, funds []types.Coin) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var addr string
	res := a.run(sender, "", "instantiate", msg, func(tx *txContext) (*subResult, error) {
		var (
			out *subResult
			err error
		)
		addr, out, err = tx.instantiate(sender, code, label, msg, funds)
		return out, err
	})
	res.Contract = addr
	if !res.Success() {
		return "", res.err
	}
	return addr, nil
}

// Execute runs a contract call as one atomic transaction.
func (a *App) Execute(sender, contract string, msg []byte, funds []types.Coin) (*TxResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	res := a.run(sender, contract, actionOf(msg), msg, func(tx *txContext) (*subResult, error) {
		return tx.execute(sender, contract, msg, funds, 0)
	})
	return res.TxResult, res.err
}

// Send moves native coins between accounts as one transaction.
func (a *App) Send(from, to string, coins []types.Coin) (*TxResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	res := a.run(from, "", "bank_send", nil, func(tx *txContext) (*subResult, error) {
		return tx.dispatch(from, types.NewBankSend(to, coins...), 0)
	})
	return res.TxResult, res.err
}

// ApplyTx verifies a signed transaction and executes it for the derived
// sender.
func (a *App) ApplyTx(tx *types.Transaction) (*TxResult, string, error) {
	if err := tx.Verify(); err != nil {
		return nil, "", err
	}
	sender := crypto.AccountAddress(a.prefix, tx.PubKey).String()
	if err := a.useNonce(sender, tx.Nonce); err != nil {
		return nil, "", err
	}
	switch tx.Type {
	case types.TxTypeExecute:
		res, err := a.Execute(sender, tx.Contract, tx.Msg, tx.Funds)
		return res, "", err
	case types.TxTypeInstantiate:
		addr, err := a.Instantiate(sender, tx.Code, tx.Label, tx.Msg, tx.Funds)
		return nil, addr, err
	case types.TxTypeBankSend:
		res, err := a.Send(sender, tx.To, tx.Funds)
		return res, "", err
	}
	return nil, "", ErrUnsupportedMessage.With("type", tx.Type)
}

func (a *App) useNonce(sender string, nonce uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	kv := hostState(a.db)
	var next uint64
	if _, err := kv.KVGet(nonceKey(sender), &next); err != nil {
		return err
	}
	if nonce != next {
		return ErrBadNonce.With("expected", next, "got", nonce)
	}
	return kv.KVPut(nonceKey(sender), next+1)
}

// Nonce returns the next expected transaction nonce of addr.
func (a *App) Nonce(addr string) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var next uint64
	_, err := hostState(a.db).KVGet(nonceKey(addr), &next)
	return next, err
}

// Query runs a read-only smart query against committed state.
func (a *App) Query(contract string, msg []byte) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cache := storage.NewCacheDB(a.db)
	defer cache.Discard()
	return a.newTx(cache).query(contract, msg)
}

type runResult struct {
	*TxResult
	err error
}

// run executes fn inside a write buffer and commits it only on success.
func (a *App) run(sender, contract, action string, msg []byte, fn func(tx *txContext) (*subResult, error)) runResult {
	start := time.Now()
	a.txIndex++
	res := &TxResult{
		Hash:     a.txHash(sender, contract, msg),
		Height:   a.block.Height,
		Time:     a.block.Time,
		Sender:   sender,
		Contract: contract,
		Action:   action,
	}
	cache := storage.NewCacheDB(a.db)
	tx := a.newTx(cache)
	out, err := fn(tx)
	if err == nil {
		err = cache.Commit()
	} else {
		cache.Discard()
	}
	if err != nil {
		res.Error = err.Error()
		a.logger.Warn("transaction failed", "hash", res.Hash, "sender", sender, "contract", contract, "action", action, "error", err)
	} else {
		res.Events = out.events
		res.Data = out.data
		if res.Contract == "" {
			if ev, ok := firstOfType(out.events, "instantiate"); ok {
				res.Contract = ev.Attributes["_contract_address"]
			}
		}
		for _, ev := range out.events {
			a.emitter.Emit(ev)
		}
		a.logger.Debug("transaction executed", "hash", res.Hash, "sender", sender, "contract", contract, "action", action, "events", len(out.events))
	}
	a.metrics.ObserveTx(a.codeOf(contract), action, err == nil, time.Since(start))
	if a.sink != nil {
		if sinkErr := a.sink.Record(context.Background(), res); sinkErr != nil {
			a.logger.Error("tx sink failed", "hash", res.Hash, "error", sinkErr)
		}
	}
	return runResult{TxResult: res, err: err}
}

func (a *App) txHash(sender, contract string, msg []byte) string {
	payload := fmt.Sprintf("%s/%d/%d/%s/%s/%x", a.chainID, a.block.Height, a.txIndex, sender, contract, msg)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(payload)).String()
}

func (a *App) codeOf(contract string) string {
	if contract == "" {
		return ""
	}
	var stored storedContract
	if _, err := hostState(a.db).KVGet(contractKey(contract), &stored); err != nil {
		return ""
	}
	return stored.Code
}

func firstOfType(evs []types.Event, typ string) (types.Event, bool) {
	for _, ev := range evs {
		if ev.Type == typ {
			return ev, true
		}
	}
	return types.Event{}, false
}

// actionOf returns the variant name of a tagged JSON message.
func actionOf(msg []byte) string {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(msg, &tagged); err != nil || len(tagged) != 1 {
		return ""
	}
	for k := range tagged {
		return k
	}
	return ""
}
