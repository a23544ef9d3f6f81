package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nftfi/core"
	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/indexer"
	"nftfi/observability/logging"
	"nftfi/observability/metrics"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeRateLimited    = -32020
)

// TxIndex serves historical transactions.
type TxIndex interface {
	TxByHash(ctx context.Context, hash string) (*indexer.TxRecord, []indexer.EventRecord, error)
	EventsByContract(ctx context.Context, addr string, limit int) ([]indexer.EventRecord, error)
}

type Options struct {
	Index     TxIndex
	RateLimit RateLimit
	Logger    *slog.Logger
	Metrics   *metrics.HostMetrics
}

type Server struct {
	app     *core.App
	index   TxIndex
	limiter *RateLimiter
	logger  *slog.Logger
	metrics *metrics.HostMetrics
}

func NewServer(app *core.App, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *RateLimiter
	if opts.RateLimit.RequestsPerMinute > 0 {
		limiter = NewRateLimiter(opts.RateLimit)
	}
	return &Server{
		app:     app,
		index:   opts.Index,
		limiter: limiter,
		logger:  logger.With("component", "rpc"),
		metrics: opts.Metrics,
	}
}

// Router returns the HTTP routes served by the node.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(gr chi.Router) {
		if s.limiter != nil {
			gr.Use(s.limiter.middleware)
		}
		gr.Post("/rpc", s.handle)
	})
	return r
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting JSON-RPC server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// handle is the main request handler that routes to specific handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	var rpcErr *RPCError
	var result interface{}
	switch req.Method {
	case "wasm_execute":
		result, rpcErr = s.handleExecute(r, req)
	case "wasm_query":
		result, rpcErr = s.handleQuery(req)
	case "bank_balance":
		result, rpcErr = s.handleBalance(req)
	case "chain_status":
		result, rpcErr = s.handleStatus()
	case "tx_get":
		result, rpcErr = s.handleTxGet(r, req)
	case "contract_events":
		result, rpcErr = s.handleContractEvents(r, req)
	default:
		rpcErr = &RPCError{Code: codeMethodNotFound, Message: "method not found", Data: req.Method}
	}

	outcome := "ok"
	if rpcErr != nil {
		outcome = "error"
	}
	s.metrics.ObserveRPC(req.Method, outcome)
	s.logger.Debug("rpc request", "method", req.Method, "request_id", RequestID(r.Context()), "outcome", outcome)

	if rpcErr != nil {
		status := http.StatusBadRequest
		switch rpcErr.Code {
		case codeServerError:
			status = http.StatusOK
		case codeMethodNotFound:
			status = http.StatusNotFound
		}
		writeError(w, status, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	writeResult(w, req.ID, result)
}

func invalidParams(message string, err error) *RPCError {
	e := &RPCError{Code: codeInvalidParams, Message: message}
	if err != nil {
		e.Data = err.Error()
	}
	return e
}

// hostError maps a host or contract failure onto a JSON-RPC error.
func hostError(err error, hash string) *RPCError {
	if ce, ok := cerrors.As(err); ok {
		return &RPCError{
			Code:    codeServerError,
			Message: ce.Error(),
			Data:    ContractErrorData{Kind: ce.Kind.String(), Code: ce.Code, Fields: ce.Fields, Hash: hash},
		}
	}
	return &RPCError{Code: codeServerError, Message: err.Error()}
}

func (s *Server) handleExecute(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	if len(req.Params) == 0 {
		return nil, invalidParams("transaction parameter required", nil)
	}
	var tx types.Transaction
	if err := json.Unmarshal(req.Params[0], &tx); err != nil {
		return nil, invalidParams("invalid transaction format", err)
	}
	res, addr, err := s.app.ApplyTx(&tx)
	if err != nil {
		if errors.Is(err, types.ErrBadSignature) || errors.Is(err, types.ErrMissingSignature) {
			s.logger.Warn("rejected transaction",
				"request_id", RequestID(r.Context()),
				logging.MaskBytes("pubkey", tx.PubKey),
				"error", err)
			return nil, invalidParams("invalid transaction signature", err)
		}
		hash := ""
		if res != nil {
			hash = res.Hash
		}
		return nil, hostError(err, hash)
	}
	if tx.Type == types.TxTypeInstantiate {
		return TxResult{Contract: addr, Height: s.app.BlockInfo().Height, Events: []types.Event{}}, nil
	}
	return txResultFromHost(res), nil
}

func (s *Server) handleQuery(req *RPCRequest) (interface{}, *RPCError) {
	if len(req.Params) != 1 {
		return nil, invalidParams("parameter object required", nil)
	}
	var params QueryParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		return nil, invalidParams("invalid query parameters", err)
	}
	if strings.TrimSpace(params.Contract) == "" || len(params.Msg) == 0 {
		return nil, invalidParams("contract and msg are required", nil)
	}
	raw, err := s.app.Query(params.Contract, params.Msg)
	if err != nil {
		return nil, hostError(err, "")
	}
	return json.RawMessage(raw), nil
}

func (s *Server) handleBalance(req *RPCRequest) (interface{}, *RPCError) {
	if len(req.Params) == 0 {
		return nil, invalidParams("address parameter required", nil)
	}
	var addr string
	if err := json.Unmarshal(req.Params[0], &addr); err != nil {
		return nil, invalidParams("invalid address parameter", err)
	}
	if len(req.Params) > 1 {
		var denom string
		if err := json.Unmarshal(req.Params[1], &denom); err != nil {
			return nil, invalidParams("invalid denom parameter", err)
		}
		coin, err := s.app.Balance(addr, denom)
		if err != nil {
			return nil, hostError(err, "")
		}
		return BalanceResponse{Address: addr, Balances: types.Coins{coin}}, nil
	}
	coins, err := s.app.Balances(addr)
	if err != nil {
		return nil, hostError(err, "")
	}
	return BalanceResponse{Address: addr, Balances: coins}, nil
}

func (s *Server) handleStatus() (interface{}, *RPCError) {
	block := s.app.BlockInfo()
	contracts, err := s.app.Contracts()
	if err != nil {
		return nil, hostError(err, "")
	}
	return StatusResponse{ChainID: block.ChainID, Height: block.Height, Time: block.Time, Contracts: len(contracts)}, nil
}

func (s *Server) handleTxGet(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	if s.index == nil {
		return nil, &RPCError{Code: codeServerError, Message: "transaction index not configured"}
	}
	if len(req.Params) == 0 {
		return nil, invalidParams("hash parameter required", nil)
	}
	var hash string
	if err := json.Unmarshal(req.Params[0], &hash); err != nil {
		return nil, invalidParams("invalid hash parameter", err)
	}
	tx, evs, err := s.index.TxByHash(r.Context(), hash)
	if errors.Is(err, indexer.ErrNotFound) {
		return nil, &RPCError{Code: codeServerError, Message: "transaction not found", Data: hash}
	}
	if err != nil {
		return nil, hostError(err, hash)
	}
	out, err := indexedTx(tx, evs)
	if err != nil {
		return nil, hostError(err, hash)
	}
	return out, nil
}

func (s *Server) handleContractEvents(r *http.Request, req *RPCRequest) (interface{}, *RPCError) {
	if s.index == nil {
		return nil, &RPCError{Code: codeServerError, Message: "transaction index not configured"}
	}
	if len(req.Params) == 0 {
		return nil, invalidParams("contract parameter required", nil)
	}
	var addr string
	if err := json.Unmarshal(req.Params[0], &addr); err != nil {
		return nil, invalidParams("invalid contract parameter", err)
	}
	limit := 0
	if len(req.Params) > 1 {
		if err := json.Unmarshal(req.Params[1], &limit); err != nil {
			return nil, invalidParams("invalid limit parameter", err)
		}
	}
	evs, err := s.index.EventsByContract(r.Context(), addr, limit)
	if err != nil {
		return nil, hostError(err, "")
	}
	out := make([]types.Event, 0, len(evs))
	for _, ev := range evs {
		attrs, err := ev.Attrs()
		if err != nil {
			return nil, hostError(err, "")
		}
		out = append(out, types.Event{Type: ev.Type, Attributes: attrs})
	}
	return out, nil
}
