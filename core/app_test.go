package core

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"nftfi/core/events"
	"nftfi/core/types"
	"nftfi/crypto"
	"nftfi/native/asset"
	"nftfi/native/fees"
	"nftfi/native/lending"
	"nftfi/native/loans"
	"nftfi/native/oracle"
	"nftfi/native/raffle"
	"nftfi/native/tokens/cw721"
	"nftfi/native/vault"
	"nftfi/native/verifier"
	"nftfi/storage"
)

func addr(name string) string {
	return crypto.AccountAddress(crypto.DefaultPrefix, []byte(name)).String()
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

type recordingSink struct {
	mu      sync.Mutex
	results []*TxResult
}

func (s *recordingSink) Record(_ context.Context, res *TxResult) error {
	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) last() *TxResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[len(s.results)-1]
}

// looper is a test contract: "loop" calls itself, "ping" calls a target with
// a reply it cannot handle, "noop" does nothing.
type looper struct{}

func (looper) Instantiate(types.Deps, types.Env, types.MessageInfo, []byte) (*types.Response, error) {
	return types.NewResponse(), nil
}

func (looper) Execute(_ types.Deps, env types.Env, _ types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg struct {
		Loop *struct{} `json:"loop"`
		Ping *string   `json:"ping"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Loop != nil:
		call, err := types.NewWasmExecute(env.Contract.Address, msg)
		if err != nil {
			return nil, err
		}
		return types.NewResponse().AddMessage(call), nil
	case msg.Ping != nil:
		call, err := types.NewWasmExecute(*msg.Ping, map[string]struct{}{"noop": {}})
		if err != nil {
			return nil, err
		}
		return types.NewResponse().AddSubMessage(types.SubMsg{ID: 7, Msg: call, ReplyOn: types.ReplySuccess}), nil
	}
	return types.NewResponse().AddAttribute("action", "noop"), nil
}

func (looper) Query(types.Deps, types.Env, []byte) ([]byte, error) {
	return []byte(`{}`), nil
}

func newTestApp(t *testing.T, opts Options) (*App, storage.Database) {
	t.Helper()
	db := storage.NewMemDB()
	if opts.ChainID == "" {
		opts.ChainID = "nftfi-test"
	}
	if opts.GenesisTime == 0 {
		opts.GenesisTime = 1_000
	}
	app, err := NewApp(db, opts)
	require.NoError(t, err)
	app.Register(cw721.CodeName, func() types.Contract { return cw721.New() })
	app.Register(raffle.CodeName, func() types.Contract { return raffle.New() })
	app.Register(verifier.CodeName, func() types.Contract { return verifier.New() })
	app.Register(vault.CodeName, func() types.Contract { return vault.New() })
	app.Register(lending.CodeName, func() types.Contract { return lending.New() })
	app.Register(loans.CodeName, func() types.Contract { return loans.New() })
	app.Register(oracle.CodeName, func() types.Contract { return oracle.New() })
	app.Register(fees.CodeName, func() types.Contract { return fees.New() })
	app.Register("looper", func() types.Contract { return looper{} })
	return app, db
}

func beacon(t *testing.T, sk *big.Int, round uint64) ([]byte, verifier.DrandRandomness) {
	t.Helper()
	_, _, g1, _ := bls12381.Generators()
	var pk bls12381.G1Affine
	pk.ScalarMultiplication(&g1, sk)
	previous := []byte("previous round signature")
	hm, err := bls12381.HashToG2(verifier.BeaconMessage(previous, round), []byte(verifier.DST))
	require.NoError(t, err)
	var sig bls12381.G2Affine
	sig.ScalarMultiplication(&hm, sk)
	rawPk := pk.Bytes()
	rawSig := sig.Bytes()
	return rawPk[:], verifier.DrandRandomness{Round: round, PreviousSignature: previous, Signature: rawSig[:]}
}

func findEvent(evs []types.Event, typ, key, value string) (types.Event, bool) {
	for _, ev := range evs {
		if ev.Type == typ && ev.Attributes[key] == value {
			return ev, true
		}
	}
	return types.Event{}, false
}

func TestRaffleThroughHost(t *testing.T) {
	recorder := &events.Recorder{}
	sink := &recordingSink{}
	app, _ := newTestApp(t, Options{Emitter: recorder, Sink: sink})

	owner, treasury, provider := addr("owner"), addr("treasury"), addr("provider")
	buyers := []string{addr("alice"), addr("bob"), addr("carol")}
	for _, b := range buyers {
		require.NoError(t, app.SetBalance(b, types.NewCoin("unft", 1_000_000)))
	}
	pubkey, drand := beacon(t, big.NewInt(424_242), 90)

	verifierAddr, err := app.Instantiate(owner, verifier.CodeName, "verifier", []byte(`{}`), nil)
	require.NoError(t, err)
	raffleAddr, err := app.Instantiate(owner, raffle.CodeName, "raffle", mustJSON(t, raffle.InstantiateMsg{
		Name:                    "nft raffle",
		FeeAddr:                 &treasury,
		RaffleFee:               big.NewInt(2),
		RandFee:                 big.NewInt(1),
		RandomPubkey:            pubkey,
		VerifySignatureContract: verifierAddr,
	}), nil)
	require.NoError(t, err)
	collection, err := app.Instantiate(owner, cw721.CodeName, "punks", mustJSON(t, cw721.InstantiateMsg{Name: "punks", Symbol: "PNK", Minter: owner}), nil)
	require.NoError(t, err)
	_, err = app.Execute(owner, collection, mustJSON(t, cw721.ExecuteMsg{Mint: &cw721.Mint{TokenID: "1", Owner: owner}}), nil)
	require.NoError(t, err)

	duration, timeout := uint64(100), uint64(200)
	price := asset.Coin("unft", big.NewInt(100_000))
	create := raffle.ExecuteMsg{CreateRaffle: &raffle.CreateRaffle{
		Asset:             asset.Cw721(collection, "1"),
		RaffleOptions:     raffle.RaffleOptionsMsg{RaffleDuration: &duration, RaffleTimeout: &timeout},
		RaffleTicketPrice: price,
	}}
	innerRaw := mustJSON(t, create)
	res, err := app.Execute(owner, collection, mustJSON(t, cw721.ExecuteMsg{SendNft: &cw721.SendNft{Contract: raffleAddr, TokenID: "1", Msg: innerRaw}}), nil)
	require.NoError(t, err)
	_, ok := findEvent(res.Events, "wasm", "action", "create_raffle")
	require.True(t, ok)

	for _, b := range buyers {
		_, err := app.Execute(b, raffleAddr, mustJSON(t, raffle.ExecuteMsg{BuyTicket: &raffle.BuyTicket{RaffleID: 0, SentAssets: price}}), []types.Coin{types.NewCoin("unft", 100_000)})
		require.NoError(t, err)
	}
	bal, err := app.Balance(raffleAddr, "unft")
	require.NoError(t, err)
	require.Equal(t, "300000", bal.Amount.String())

	require.NoError(t, app.AdvanceBlocks(25, 6))
	res, err = app.Execute(provider, raffleAddr, mustJSON(t, raffle.ExecuteMsg{UpdateRandomness: &raffle.UpdateRandomness{RaffleID: 0, Randomness: drand}}), nil)
	require.NoError(t, err)
	_, ok = findEvent(res.Events, "wasm", "action", "verify")
	require.True(t, ok)

	forged := drand
	forged.Round = 91
	_, err = app.Execute(provider, raffleAddr, mustJSON(t, raffle.ExecuteMsg{UpdateRandomness: &raffle.UpdateRandomness{RaffleID: 0, Randomness: forged}}), nil)
	require.True(t, errors.Is(err, verifier.ErrInvalidSignature), "got %v", err)
	require.False(t, sink.last().Success())

	_, err = app.Execute(provider, raffleAddr, mustJSON(t, raffle.ExecuteMsg{ClaimNft: &raffle.RaffleID{RaffleID: 0}}), nil)
	require.True(t, errors.Is(err, raffle.ErrWrongStateForClaim), "got %v", err)

	require.NoError(t, app.AdvanceBlocks(42, 6))
	res, err = app.Execute(provider, raffleAddr, mustJSON(t, raffle.ExecuteMsg{ClaimNft: &raffle.RaffleID{RaffleID: 0}}), nil)
	require.NoError(t, err)
	claim, ok := findEvent(res.Events, "wasm", "action", "claim")
	require.True(t, ok)
	winner := claim.Attributes["winner"]
	require.Contains(t, buyers, winner)

	raw, err := app.Query(collection, mustJSON(t, cw721.QueryMsg{OwnerOf: &cw721.TokenQuery{TokenID: "1"}}))
	require.NoError(t, err)
	var ownerOf cw721.OwnerOfResponse
	require.NoError(t, json.Unmarshal(raw, &ownerOf))
	require.Equal(t, winner, ownerOf.Owner)

	for who, want := range map[string]string{provider: "30", treasury: "60", owner: "299910", raffleAddr: "0"} {
		got, err := app.Balance(who, "unft")
		require.NoError(t, err)
		require.Equal(t, want, got.Amount.String(), who)
	}
	require.NotEmpty(t, recorder.Events())
}

func queryJSON(t *testing.T, app *App, contract string, msg, out interface{}) {
	t.Helper()
	raw, err := app.Query(contract, mustJSON(t, msg))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func requireBalance(t *testing.T, app *App, who, denom, want string) {
	t.Helper()
	got, err := app.Balance(who, denom)
	require.NoError(t, err)
	require.Equal(t, want, got.Amount.String(), who)
}

func mintNft(t *testing.T, app *App, minter, holder, tokenID string) string {
	t.Helper()
	collection, err := app.Instantiate(minter, cw721.CodeName, "punks", mustJSON(t, cw721.InstantiateMsg{Name: "punks", Symbol: "PNK", Minter: minter}), nil)
	require.NoError(t, err)
	_, err = app.Execute(minter, collection, mustJSON(t, cw721.ExecuteMsg{Mint: &cw721.Mint{TokenID: tokenID, Owner: holder}}), nil)
	require.NoError(t, err)
	return collection
}

func TestLenderVaultThroughHost(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	owner, treasury, depositor, borrower := addr("owner"), addr("treasury"), addr("alice"), addr("borrower")
	unit := asset.NativeInfo("uusd")
	require.NoError(t, app.SetBalance(depositor, types.NewCoin("uusd", 1_000_000)))
	require.NoError(t, app.SetBalance(borrower, types.NewCoin("uusd", 20_000)))

	vaultAddr, err := app.Instantiate(owner, vault.CodeName, "vault", mustJSON(t, vault.InstantiateMsg{
		Name: "nft vault", Symbol: "vusd", Decimals: 6, Asset: unit,
	}), nil)
	require.NoError(t, err)
	oracleAddr, err := app.Instantiate(owner, oracle.CodeName, "oracle", mustJSON(t, oracle.InstantiateMsg{Name: "floor prices"}), nil)
	require.NoError(t, err)
	distributor, err := app.Instantiate(owner, fees.CodeName, "fees", mustJSON(t, fees.InstantiateMsg{Name: "fees", Treasury: treasury}), nil)
	require.NoError(t, err)
	lender, err := app.Instantiate(owner, lending.CodeName, "lender", mustJSON(t, lending.InstantiateMsg{
		Name:                "nft lender",
		Owner:               &owner,
		Oracle:              &oracleAddr,
		VaultToken:          vaultAddr,
		IncreasorIncentives: big.NewInt(5_000),
		InterestsFeeRate:    big.NewInt(1_000),
		FeeDistributor:      distributor,
	}), nil)
	require.NoError(t, err)
	_, err = app.Execute(owner, vaultAddr, mustJSON(t, vault.ExecuteMsg{SetBorrower: &vault.SetBorrower{Borrower: &lender}}), nil)
	require.NoError(t, err)

	collection := mintNft(t, app, owner, borrower, "token_id")
	_, err = app.Execute(owner, oracleAddr, mustJSON(t, oracle.ExecuteMsg{SetNftPrice: &oracle.SetNftPrice{
		Contract: collection, Price: big.NewInt(161_000_000), Unit: unit,
	}}), nil)
	require.NoError(t, err)
	_, err = app.Execute(depositor, vaultAddr, mustJSON(t, vault.ExecuteMsg{Deposit: &vault.Deposit{Assets: big.NewInt(1_000_000), Receiver: depositor}}),
		[]types.Coin{types.NewCoin("uusd", 1_000_000)})
	require.NoError(t, err)

	_, err = app.Execute(borrower, collection, mustJSON(t, cw721.ExecuteMsg{Approve: &cw721.Approve{Spender: lender, TokenID: "token_id"}}), nil)
	require.NoError(t, err)
	res, err := app.Execute(borrower, lender, mustJSON(t, lending.ExecuteMsg{Borrow: &lending.Borrow{
		AssetInfo:      lending.Cw721Info{NftAddress: collection, TokenID: "token_id"},
		AssetsToBorrow: big.NewInt(8742),
		BorrowMode:     lending.BorrowModeFixed,
	}}), nil)
	require.NoError(t, err)
	_, ok := findEvent(res.Events, "wasm", "action", "borrow")
	require.True(t, ok)
	requireBalance(t, app, borrower, "uusd", "28742")

	var ownerOf cw721.OwnerOfResponse
	queryJSON(t, app, collection, cw721.QueryMsg{OwnerOf: &cw721.TokenQuery{TokenID: "token_id"}}, &ownerOf)
	require.Equal(t, lender, ownerOf.Owner)
	var info vault.VaultInfoResponse
	queryJSON(t, app, vaultAddr, vault.QueryMsg{VaultInfo: &struct{}{}}, &info)
	require.Equal(t, "8742", info.TotalBorrowed.String())

	require.NoError(t, app.AdvanceBlocks(67, 6))
	repay := lending.ExecuteMsg{Repay: &lending.Repay{Borrower: borrower, LoanID: 0, Assets: big.NewInt(8809)}}
	_, err = app.Execute(borrower, lender, mustJSON(t, repay), []types.Coin{types.NewCoin("uusd", 8809)})
	require.NoError(t, err)

	queryJSON(t, app, collection, cw721.QueryMsg{OwnerOf: &cw721.TokenQuery{TokenID: "token_id"}}, &ownerOf)
	require.Equal(t, borrower, ownerOf.Owner)
	queryJSON(t, app, vaultAddr, vault.QueryMsg{VaultInfo: &struct{}{}}, &info)
	require.Zero(t, info.TotalBorrowed.Sign())
	var total vault.TotalAssetsResponse
	queryJSON(t, app, vaultAddr, vault.QueryMsg{TotalAssets: &struct{}{}}, &total)
	require.Equal(t, "1000061", total.TotalManagedAssets.String())
	requireBalance(t, app, lender, "uusd", "0")

	feeHeld, err := app.Balance(distributor, "uusd")
	require.NoError(t, err)
	feePaid, err := app.Balance(treasury, "uusd")
	require.NoError(t, err)
	require.Equal(t, int64(6), new(big.Int).Add(feeHeld.Amount, feePaid.Amount).Int64())

	_, err = app.Execute(borrower, lender, mustJSON(t, repay), []types.Coin{types.NewCoin("uusd", 8809)})
	require.True(t, errors.Is(err, lending.ErrAssetAlreadyWithdrawn), "got %v", err)
	requireBalance(t, app, borrower, "uusd", "19933")
}

func TestLoanMarketplaceThroughHost(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	owner, treasury, borrower, lender := addr("owner"), addr("treasury"), addr("borrower"), addr("lender")
	require.NoError(t, app.SetBalance(lender, types.NewCoin("uluna", 100_000)))
	require.NoError(t, app.SetBalance(borrower, types.NewCoin("uluna", 5_000)))

	distributor, err := app.Instantiate(owner, fees.CodeName, "fees", mustJSON(t, fees.InstantiateMsg{Name: "fees", Treasury: treasury}), nil)
	require.NoError(t, err)
	market, err := app.Instantiate(owner, loans.CodeName, "loans", mustJSON(t, loans.InstantiateMsg{
		Name: "nft loans", Owner: &owner, FeeDistributor: distributor, FeeRate: big.NewInt(5_000),
	}), nil)
	require.NoError(t, err)
	collection := mintNft(t, app, owner, borrower, "token_id")

	_, err = app.Execute(borrower, collection, mustJSON(t, cw721.ExecuteMsg{Approve: &cw721.Approve{Spender: market, TokenID: "token_id"}}), nil)
	require.NoError(t, err)
	terms := loans.LoanTerms{Principle: types.NewCoin("uluna", 100_000), Interest: big.NewInt(5_000), DurationInBlocks: 500}
	res, err := app.Execute(borrower, market, mustJSON(t, loans.ExecuteMsg{DepositCollaterals: &loans.DepositCollaterals{
		Tokens: []asset.Asset{asset.Cw721(collection, "token_id")},
		Terms:  &terms,
	}}), nil)
	require.NoError(t, err)
	ev, ok := findEvent(res.Events, "wasm", "action", "deposit_collaterals")
	require.True(t, ok)
	require.Equal(t, "0", ev.Attributes["loan_id"])

	res, err = app.Execute(lender, market, mustJSON(t, loans.ExecuteMsg{MakeOffer: &loans.MakeOffer{Borrower: borrower, LoanID: 0, Terms: terms}}),
		[]types.Coin{terms.Principle})
	require.NoError(t, err)
	ev, ok = findEvent(res.Events, "wasm", "action", "make_offer")
	require.True(t, ok)
	offerID := ev.Attributes["offer_id"]
	require.NotEmpty(t, offerID)
	requireBalance(t, app, market, "uluna", "100000")

	_, err = app.Execute(borrower, market, mustJSON(t, loans.ExecuteMsg{AcceptOffer: &loans.OfferID{OfferID: offerID}}), nil)
	require.NoError(t, err)
	requireBalance(t, app, borrower, "uluna", "105000")
	requireBalance(t, app, market, "uluna", "0")

	require.NoError(t, app.AdvanceBlocks(100, 6))
	_, err = app.Execute(borrower, market, mustJSON(t, loans.ExecuteMsg{RepayBorrowedFunds: &loans.LoanID{LoanID: 0}}),
		[]types.Coin{types.NewCoin("uluna", 105_000)})
	require.NoError(t, err)

	requireBalance(t, app, lender, "uluna", "104750")
	requireBalance(t, app, borrower, "uluna", "0")
	feeHeld, err := app.Balance(distributor, "uluna")
	require.NoError(t, err)
	feePaid, err := app.Balance(treasury, "uluna")
	require.NoError(t, err)
	require.Equal(t, int64(250), new(big.Int).Add(feeHeld.Amount, feePaid.Amount).Int64())

	var ownerOf cw721.OwnerOfResponse
	queryJSON(t, app, collection, cw721.QueryMsg{OwnerOf: &cw721.TokenQuery{TokenID: "token_id"}}, &ownerOf)
	require.Equal(t, borrower, ownerOf.Owner)

	var collateral loans.CollateralInfo
	queryJSON(t, app, market, loans.QueryMsg{CollateralInfo: &loans.LoanRef{Borrower: borrower, LoanID: 0}}, &collateral)
	require.Equal(t, loans.LoanEnded, collateral.State)
}

func TestFailedTxRollsBack(t *testing.T) {
	sink := &recordingSink{}
	app, _ := newTestApp(t, Options{MaxCallDepth: 3, Sink: sink})
	alice := addr("alice")
	require.NoError(t, app.SetBalance(alice, types.NewCoin("unft", 50)))

	loop, err := app.Instantiate(alice, "looper", "loop", []byte(`{}`), nil)
	require.NoError(t, err)

	res, err := app.Execute(alice, loop, []byte(`{"loop":{}}`), []types.Coin{types.NewCoin("unft", 5)})
	require.True(t, errors.Is(err, ErrCallDepthExceeded), "got %v", err)
	require.False(t, res.Success())
	require.Equal(t, "loop", res.Action)
	require.Equal(t, res, sink.last())

	got, err := app.Balance(alice, "unft")
	require.NoError(t, err)
	require.Equal(t, "50", got.Amount.String())
	got, err = app.Balance(loop, "unft")
	require.NoError(t, err)
	require.Zero(t, got.Amount.Sign())
}

func TestReplyRequiresHandler(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	alice := addr("alice")
	caller, err := app.Instantiate(alice, "looper", "caller", []byte(`{}`), nil)
	require.NoError(t, err)
	target, err := app.Instantiate(alice, "looper", "target", []byte(`{}`), nil)
	require.NoError(t, err)
	require.NotEqual(t, caller, target)

	_, err = app.Execute(alice, caller, mustJSON(t, map[string]string{"ping": target}), nil)
	require.True(t, errors.Is(err, ErrNoReplyHandler), "got %v", err)

	res, err := app.Execute(alice, target, []byte(`{"noop":{}}`), nil)
	require.NoError(t, err)
	ev, ok := findEvent(res.Events, "wasm", "_contract_address", target)
	require.True(t, ok)
	require.Equal(t, "noop", ev.Attributes["action"])
}

func TestHostLookupErrors(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	alice := addr("alice")
	_, err := app.Instantiate(alice, "missing", "x", []byte(`{}`), nil)
	require.True(t, errors.Is(err, ErrUnknownCode), "got %v", err)

	_, err = app.Execute(alice, addr("nobody"), []byte(`{"noop":{}}`), nil)
	require.True(t, errors.Is(err, ErrContractNotFound), "got %v", err)

	_, err = app.Query(addr("nobody"), []byte(`{}`))
	require.True(t, errors.Is(err, ErrContractNotFound), "got %v", err)

	contracts, err := app.Contracts()
	require.NoError(t, err)
	require.Empty(t, contracts)
}

func TestSendAndSignedTransactions(t *testing.T) {
	app, _ := newTestApp(t, Options{})
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	sender := crypto.AccountAddress(crypto.DefaultPrefix, ethcrypto.CompressPubkey(&key.PublicKey)).String()
	bob := addr("bob")
	require.NoError(t, app.SetBalance(sender, types.NewCoin("unft", 100)))

	_, err = app.Send(sender, bob, []types.Coin{types.NewCoin("unft", 101)})
	require.True(t, errors.Is(err, ErrInsufficientFunds), "got %v", err)

	tx := &types.Transaction{Type: types.TxTypeBankSend, Nonce: 0, To: bob, Funds: []types.Coin{types.NewCoin("unft", 40)}}
	require.NoError(t, tx.Sign(ethcrypto.FromECDSA(key)))
	res, _, err := app.ApplyTx(tx)
	require.NoError(t, err)
	_, ok := findEvent(res.Events, "transfer", "recipient", bob)
	require.True(t, ok)

	_, _, err = app.ApplyTx(tx)
	require.True(t, errors.Is(err, ErrBadNonce), "got %v", err)
	nonce, err := app.Nonce(sender)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)

	tampered := *tx
	tampered.Nonce = 1
	_, _, err = app.ApplyTx(&tampered)
	require.True(t, errors.Is(err, types.ErrBadSignature), "got %v", err)

	got, err := app.Balance(bob, "unft")
	require.NoError(t, err)
	require.Equal(t, "40", got.Amount.String())
}

func TestBlocksPersist(t *testing.T) {
	app, db := newTestApp(t, Options{})
	require.Equal(t, uint64(1), app.BlockInfo().Height)
	require.NoError(t, app.AdvanceBlocks(10, 6))
	info := app.BlockInfo()
	require.Equal(t, uint64(11), info.Height)
	require.Equal(t, uint64(1_060), info.Time)

	reopened, err := NewApp(db, Options{ChainID: "nftfi-test"})
	require.NoError(t, err)
	require.Equal(t, info, reopened.BlockInfo())
}
