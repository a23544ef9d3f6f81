package rpc

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"nftfi/core"
	"nftfi/core/types"
	"nftfi/crypto"
	"nftfi/indexer"
	"nftfi/native/tokens/cw721"
	"nftfi/storage"
)

type rpcEnv struct {
	app    *core.App
	server *httptest.Server
	key    *ecdsa.PrivateKey
	sender string
	nonce  uint64
}

func newRPCEnv(t *testing.T, limit RateLimit) *rpcEnv {
	t.Helper()
	store, err := indexer.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	app, err := core.NewApp(storage.NewMemDB(), core.Options{ChainID: "nftfi-test", GenesisTime: 1_000, Sink: store})
	require.NoError(t, err)
	app.Register(cw721.CodeName, func() types.Contract { return cw721.New() })

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	sender := crypto.AccountAddress(crypto.DefaultPrefix, ethcrypto.CompressPubkey(&key.PublicKey)).String()

	srv := httptest.NewServer(NewServer(app, Options{Index: store, RateLimit: limit}).Router())
	t.Cleanup(srv.Close)
	return &rpcEnv{app: app, server: srv, key: key, sender: sender}
}

func (e *rpcEnv) call(t *testing.T, method string, params ...interface{}) (int, RPCResponse) {
	t.Helper()
	raw := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		b, err := json.Marshal(p)
		require.NoError(t, err)
		raw = append(raw, b)
	}
	body, err := json.Marshal(RPCRequest{JSONRPC: jsonRPCVersion, Method: method, Params: raw, ID: 1})
	require.NoError(t, err)
	resp, err := http.Post(e.server.URL+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (e *rpcEnv) signed(t *testing.T, tx types.Transaction) types.Transaction {
	t.Helper()
	tx.Nonce = e.nonce
	e.nonce++
	require.NoError(t, tx.Sign(ethcrypto.FromECDSA(e.key)))
	return tx
}

func decodeResult(t *testing.T, resp RPCResponse, out interface{}) {
	t.Helper()
	require.Nil(t, resp.Error)
	b, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, out))
}

func TestExecuteQueryAndIndex(t *testing.T) {
	env := newRPCEnv(t, RateLimit{})

	initMsg := []byte(fmt.Sprintf(`{"name":"punks","symbol":"PNK","minter":%q}`, env.sender))
	status, resp := env.call(t, "wasm_execute", env.signed(t, types.Transaction{
		Type:  types.TxTypeInstantiate,
		Code:  cw721.CodeName,
		Label: "punks",
		Msg:   initMsg,
	}))
	require.Equal(t, http.StatusOK, status)
	var created TxResult
	decodeResult(t, resp, &created)
	require.NotEmpty(t, created.Contract)

	status, resp = env.call(t, "wasm_execute", env.signed(t, types.Transaction{
		Type:     types.TxTypeExecute,
		Contract: created.Contract,
		Msg:      []byte(fmt.Sprintf(`{"mint":{"token_id":"7","owner":%q}}`, env.sender)),
	}))
	require.Equal(t, http.StatusOK, status)
	var minted TxResult
	decodeResult(t, resp, &minted)
	require.Equal(t, "mint", minted.Action)
	require.NotEmpty(t, minted.Hash)

	_, resp = env.call(t, "wasm_query", QueryParams{Contract: created.Contract, Msg: json.RawMessage(`{"owner_of":{"token_id":"7"}}`)})
	var owner cw721.OwnerOfResponse
	decodeResult(t, resp, &owner)
	require.Equal(t, env.sender, owner.Owner)

	_, resp = env.call(t, "tx_get", minted.Hash)
	var indexed IndexedTx
	decodeResult(t, resp, &indexed)
	require.True(t, indexed.Success)
	require.Equal(t, created.Contract, indexed.Contract)
	require.NotEmpty(t, indexed.Events)

	_, resp = env.call(t, "contract_events", created.Contract, 1)
	var evs []types.Event
	decodeResult(t, resp, &evs)
	require.Len(t, evs, 1)
	require.Equal(t, "wasm", evs[0].Type)

	_, resp = env.call(t, "chain_status")
	var st StatusResponse
	decodeResult(t, resp, &st)
	require.Equal(t, "nftfi-test", st.ChainID)
	require.Equal(t, 1, st.Contracts)
}

func TestContractErrorCarriesCode(t *testing.T) {
	env := newRPCEnv(t, RateLimit{})
	minter := crypto.AccountAddress(crypto.DefaultPrefix, []byte("minter")).String()
	collection, err := env.app.Instantiate(minter, cw721.CodeName, "punks", []byte(fmt.Sprintf(`{"name":"punks","symbol":"PNK","minter":%q}`, minter)), nil)
	require.NoError(t, err)

	status, resp := env.call(t, "wasm_execute", env.signed(t, types.Transaction{
		Type:     types.TxTypeExecute,
		Contract: collection,
		Msg:      []byte(fmt.Sprintf(`{"mint":{"token_id":"1","owner":%q}}`, env.sender)),
	}))
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeServerError, resp.Error.Code)
	data, ok := resp.Error.Data.(map[string]interface{})
	require.True(t, ok, "data %T", resp.Error.Data)
	require.Equal(t, "unauthorized", data["code"])
	require.Equal(t, "authorization", data["kind"])
	require.NotEmpty(t, data["hash"])

	_, resp = env.call(t, "tx_get", data["hash"])
	var indexed IndexedTx
	decodeResult(t, resp, &indexed)
	require.False(t, indexed.Success)
}

func TestRejectsBadRequests(t *testing.T) {
	env := newRPCEnv(t, RateLimit{})

	status, resp := env.call(t, "no_such_method")
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)

	tx := env.signed(t, types.Transaction{Type: types.TxTypeBankSend, To: env.sender})
	tx.Nonce = 9
	status, resp = env.call(t, "wasm_execute", tx)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, codeInvalidParams, resp.Error.Code)

	status, resp = env.call(t, "wasm_query", QueryParams{})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, codeInvalidParams, resp.Error.Code)

	r, err := http.Post(env.server.URL+"/rpc", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer r.Body.Close()
	require.Equal(t, http.StatusBadRequest, r.StatusCode)
	var parsed RPCResponse
	require.NoError(t, json.NewDecoder(r.Body).Decode(&parsed))
	require.Equal(t, codeParseError, parsed.Error.Code)
}

func TestBalanceLookup(t *testing.T) {
	env := newRPCEnv(t, RateLimit{})
	require.NoError(t, env.app.SetBalance(env.sender, types.NewCoin("unft", 250)))

	_, resp := env.call(t, "bank_balance", env.sender, "unft")
	var bal BalanceResponse
	decodeResult(t, resp, &bal)
	require.Len(t, bal.Balances, 1)
	require.Equal(t, "250", bal.Balances[0].Amount.String())

	_, resp = env.call(t, "bank_balance", "not-an-address")
	require.NotNil(t, resp.Error)
}

func TestRateLimitAndRequestID(t *testing.T) {
	env := newRPCEnv(t, RateLimit{RequestsPerMinute: 1, Burst: 1})

	status, _ := env.call(t, "chain_status")
	require.Equal(t, http.StatusOK, status)
	status, resp := env.call(t, "chain_status")
	require.Equal(t, http.StatusTooManyRequests, status)
	require.Equal(t, codeRateLimited, resp.Error.Code)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, env.server.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-42")
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer r.Body.Close()
	require.Equal(t, http.StatusOK, r.StatusCode)
	require.Equal(t, "req-42", r.Header.Get(requestIDHeader))
}
