package raffle

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/asset"
	"nftfi/native/common"
	"nftfi/native/internal/testutil"
	"nftfi/native/tokens/cw1155"
	"nftfi/native/tokens/cw20"
	"nftfi/native/tokens/cw721"
	"nftfi/native/verifier"
)

const seedRandomness = "89580f6a639add6c90dcf3d222e35415f89d9ee2cd6ef6fc4f23134cdffa5d1e"

type fixture struct {
	deps types.Deps
	c    *Contract
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	deps, _ := testutil.NewDeps()
	f := &fixture{deps: deps, c: New()}
	owner := "owner"
	feeAddr := "treasury"
	_, err := f.c.Instantiate(deps, testutil.Env(1, 1_000), testutil.Info("creator"), testutil.MustJSON(InstantiateMsg{
		Name:                    "nft raffle",
		Owner:                   &owner,
		FeeAddr:                 &feeAddr,
		RaffleFee:               big.NewInt(2),
		RandFee:                 big.NewInt(1),
		RandomPubkey:            []byte{1, 2, 3},
		VerifySignatureContract: "verifier",
	}))
	require.NoError(t, err)
	return f
}

func (f *fixture) exec(now uint64, sender string, msg ExecuteMsg, funds ...types.Coin) (*types.Response, error) {
	return f.c.Execute(f.deps, testutil.Env(now/6, now), testutil.Info(sender, funds...), testutil.MustJSON(msg))
}

func (f *fixture) reply(now uint64, attrs map[string]string) (*types.Response, error) {
	ev := types.Event{Type: "wasm", Attributes: attrs}
	return f.c.Reply(f.deps, testutil.Env(now/6, now), types.Reply{ID: 0, Result: types.SubMsgResult{Events: []types.Event{ev}}})
}

func (f *fixture) query(t *testing.T, now uint64, msg QueryMsg, out interface{}) {
	t.Helper()
	raw, err := f.c.Query(f.deps, testutil.Env(now/6, now), testutil.MustJSON(msg))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func u64(v uint64) *uint64 { return &v }
func u32(v uint32) *uint32 { return &v }

func ticketPrice() asset.Asset { return asset.Coin("uluna", big.NewInt(10_000)) }

// create opens a raffle at t=1000 that sells until 1100 and finishes at 1300.
func (f *fixture) create(t *testing.T, opts RaffleOptionsMsg) uint64 {
	t.Helper()
	if opts.RaffleDuration == nil {
		opts.RaffleDuration = u64(100)
	}
	if opts.RaffleTimeout == nil {
		opts.RaffleTimeout = u64(200)
	}
	res, err := f.exec(1_000, "owner", ExecuteMsg{CreateRaffle: &CreateRaffle{
		Asset:             asset.Cw721("nft", "token_id"),
		RaffleOptions:     opts,
		RaffleTicketPrice: ticketPrice(),
	}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	id, ok := res.Attribute("raffle_id")
	require.True(t, ok)
	var raffleID uint64
	require.NoError(t, json.Unmarshal([]byte(id), &raffleID))
	return raffleID
}

func (f *fixture) buy(t *testing.T, now uint64, buyer string, id uint64) {
	t.Helper()
	_, err := f.exec(now, buyer, ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: id, SentAssets: ticketPrice()}}, types.NewCoin("uluna", 10_000))
	require.NoError(t, err)
}

func beaconAttrs(round, raffleID, owner string) map[string]string {
	seed, _ := hex.DecodeString(seedRandomness)
	return map[string]string{
		"_contract_address": "verifier",
		"round":             round,
		"randomness":        base64.StdEncoding.EncodeToString(seed),
		"raffle_id":         raffleID,
		"owner":             owner,
	}
}

func requireBankSend(t *testing.T, msg types.SubMsg, to string, coin types.Coin) {
	t.Helper()
	send, err := testutil.BankSend(msg)
	require.NoError(t, err)
	require.Equal(t, to, send.ToAddress)
	require.Len(t, send.Amount, 1)
	require.True(t, send.Amount[0].Equal(coin), "got %s want %s", send.Amount[0], coin)
}

func TestRaffleEndToEnd(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, RaffleOptionsMsg{})
	require.Equal(t, uint64(0), id)

	for _, buyer := range []string{"second", "third", "fourth", "first", "first"} {
		f.buy(t, 1_050, buyer, id)
	}

	res, err := f.exec(1_150, "provider", ExecuteMsg{UpdateRandomness: &UpdateRandomness{
		RaffleID:   id,
		Randomness: verifier.DrandRandomness{Round: 90, PreviousSignature: []byte{1}, Signature: []byte{2}},
	}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	require.Equal(t, types.ReplySuccess, res.Messages[0].ReplyOn)
	require.Equal(t, uint64(0), res.Messages[0].ID)
	var call verifier.ExecuteMsg
	contract, funds, err := testutil.WasmCall(res.Messages[0], &call)
	require.NoError(t, err)
	require.Equal(t, "verifier", contract)
	require.Empty(t, funds)
	require.NotNil(t, call.Verify)
	require.Equal(t, "provider", call.Verify.Owner)
	require.Equal(t, []byte{1, 2, 3}, call.Verify.Pubkey)
	require.Equal(t, uint64(90), call.Verify.Randomness.Round)

	// Nothing is stored until the verifier confirms.
	r, err := newStore(f.deps.Storage).raffle(id)
	require.NoError(t, err)
	require.Nil(t, r.Randomness)

	_, err = f.reply(1_150, beaconAttrs("90", "0", "provider"))
	require.NoError(t, err)
	r, err = newStore(f.deps.Storage).raffle(id)
	require.NoError(t, err)
	require.NotNil(t, r.Randomness)
	require.Equal(t, uint64(90), r.Randomness.Round)
	require.Equal(t, "provider", r.Randomness.Owner)

	_, err = f.exec(1_200, "owner", ExecuteMsg{ClaimNft: &RaffleID{RaffleID: id}})
	require.True(t, errors.Is(err, ErrWrongStateForClaim), "got %v", err)

	res, err = f.exec(1_400, "anyone", ExecuteMsg{ClaimNft: &RaffleID{RaffleID: id}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 4)
	var transfer cw721.ExecuteMsg
	contract, _, err = testutil.WasmCall(res.Messages[0], &transfer)
	require.NoError(t, err)
	require.Equal(t, "nft", contract)
	require.NotNil(t, transfer.TransferNft)
	require.Equal(t, "first", transfer.TransferNft.Recipient)
	require.Equal(t, "token_id", transfer.TransferNft.TokenID)
	requireBankSend(t, res.Messages[1], "provider", types.NewCoin("uluna", 5))
	requireBankSend(t, res.Messages[2], "treasury", types.NewCoin("uluna", 10))
	requireBankSend(t, res.Messages[3], "owner", types.NewCoin("uluna", 49_985))
	winner, _ := res.Attribute("winner")
	require.Equal(t, "first", winner)

	var info RaffleResponse
	f.query(t, 1_400, QueryMsg{RaffleInfo: &RaffleID{RaffleID: id}}, &info)
	require.Equal(t, StateClaimed, info.RaffleState)
	require.Equal(t, uint32(5), info.RaffleInfo.NumberOfTickets)

	_, err = f.exec(1_500, "anyone", ExecuteMsg{ClaimNft: &RaffleID{RaffleID: id}})
	require.True(t, errors.Is(err, ErrWrongStateForClaim), "got %v", err)
}

func TestRandomnessRoundsIncrease(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, RaffleOptionsMsg{})
	f.buy(t, 1_050, "first", id)

	_, err := f.exec(1_050, "provider", ExecuteMsg{UpdateRandomness: &UpdateRandomness{RaffleID: id, Randomness: verifier.DrandRandomness{Round: 90}}})
	require.True(t, errors.Is(err, ErrWrongStateForRandomness), "got %v", err)

	_, err = f.reply(1_150, beaconAttrs("90", "0", "provider"))
	require.NoError(t, err)

	_, err = f.exec(1_160, "provider", ExecuteMsg{UpdateRandomness: &UpdateRandomness{RaffleID: id, Randomness: verifier.DrandRandomness{Round: 76}}})
	require.True(t, errors.Is(err, ErrRandomnessNotAccepted), "got %v", err)
	_, err = f.reply(1_160, beaconAttrs("90", "0", "provider"))
	require.True(t, errors.Is(err, ErrRandomnessNotAccepted), "got %v", err)

	_, err = f.exec(1_160, "provider", ExecuteMsg{UpdateRandomness: &UpdateRandomness{RaffleID: id, Randomness: verifier.DrandRandomness{Round: 91}}})
	require.NoError(t, err)
}

func TestReplyParsing(t *testing.T) {
	f := newFixture(t)
	f.create(t, RaffleOptionsMsg{})

	attrs := beaconAttrs("90", "0", "provider")
	attrs["_contract_address"] = "impostor"
	_, err := f.reply(1_150, attrs)
	require.True(t, errors.Is(err, ErrParseReply), "got %v", err)

	attrs = beaconAttrs("90", "0", "provider")
	attrs["randomness"] = base64.StdEncoding.EncodeToString([]byte("short"))
	_, err = f.reply(1_150, attrs)
	require.True(t, errors.Is(err, ErrParseReply), "got %v", err)

	attrs = beaconAttrs("90", "0", "provider")
	delete(attrs, "owner")
	_, err = f.reply(1_150, attrs)
	require.True(t, errors.Is(err, ErrParseReply), "got %v", err)

	_, err = f.c.Reply(f.deps, testutil.Env(1, 1_150), types.Reply{ID: 7})
	require.True(t, errors.Is(err, cerrors.ErrInvalidMessage), "got %v", err)
}

func TestTicketLimits(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, RaffleOptionsMsg{MaxParticipantNumber: u32(2), MaxTicketPerAddress: u32(1)})

	f.buy(t, 1_010, "alice", id)
	_, err := f.exec(1_010, "alice", ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: id, SentAssets: ticketPrice()}}, types.NewCoin("uluna", 10_000))
	require.True(t, errors.Is(err, ErrTooMuchTickets), "got %v", err)
	f.buy(t, 1_010, "bob", id)
	_, err = f.exec(1_010, "carol", ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: id, SentAssets: ticketPrice()}}, types.NewCoin("uluna", 10_000))
	require.True(t, errors.Is(err, ErrTooMuchTickets), "got %v", err)

	cheap := asset.Coin("uluna", big.NewInt(5_000))
	_, err = f.exec(1_010, "carol", ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: id, SentAssets: cheap}}, types.NewCoin("uluna", 5_000))
	require.True(t, errors.Is(err, ErrPaymentNotSufficient), "got %v", err)

	_, err = f.exec(1_200, "carol", ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: id, SentAssets: ticketPrice()}}, types.NewCoin("uluna", 10_000))
	require.True(t, errors.Is(err, ErrCantBuyTickets), "got %v", err)
}

func TestTicketPaymentMustMatch(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, RaffleOptionsMsg{RaffleStartTimestamp: u64(2_000)})

	_, err := f.exec(1_500, "alice", ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: id, SentAssets: ticketPrice()}}, types.NewCoin("uluna", 10_000))
	require.True(t, errors.Is(err, ErrCantBuyTickets), "got %v", err)

	_, err = f.exec(2_010, "alice", ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: id, SentAssets: ticketPrice()}}, types.NewCoin("uluna", 9_999))
	require.True(t, errors.Is(err, ErrAssetMismatch), "got %v", err)
	_, err = f.exec(2_010, "alice", ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: id, SentAssets: ticketPrice()}})
	require.True(t, errors.Is(err, ErrAssetMismatch), "got %v", err)

	_, err = f.exec(2_010, "alice", ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: 9, SentAssets: ticketPrice()}})
	require.True(t, errors.Is(err, ErrRaffleNotFound), "got %v", err)
}

func TestCw20Tickets(t *testing.T) {
	f := newFixture(t)
	price := asset.Cw20("token", big.NewInt(100))
	_, err := f.exec(1_000, "owner", ExecuteMsg{CreateRaffle: &CreateRaffle{
		Asset:             asset.Cw721("nft", "token_id"),
		RaffleOptions:     RaffleOptionsMsg{RaffleDuration: u64(100)},
		RaffleTicketPrice: price,
	}})
	require.NoError(t, err)

	res, err := f.exec(1_010, "alice", ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: 0, SentAssets: price}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	var pull cw20.ExecuteMsg
	contract, _, err := testutil.WasmCall(res.Messages[0], &pull)
	require.NoError(t, err)
	require.Equal(t, "token", contract)
	require.NotNil(t, pull.TransferFrom)

	hook := func(inner ExecuteMsg) *cw20.ReceiveMsg {
		return &cw20.ReceiveMsg{Sender: "bob", Amount: big.NewInt(100), Msg: testutil.MustJSON(inner)}
	}
	buy := ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: 0, SentAssets: price}}
	res, err = f.exec(1_010, "token", ExecuteMsg{Receive: hook(buy)})
	require.NoError(t, err)
	require.Empty(t, res.Messages)

	_, err = f.exec(1_010, "other-token", ExecuteMsg{Receive: hook(buy)})
	require.True(t, errors.Is(err, ErrAssetMismatch), "got %v", err)

	_, err = f.exec(1_010, "token", ExecuteMsg{Receive: hook(ExecuteMsg{ClaimNft: &RaffleID{RaffleID: 0}})})
	require.True(t, errors.Is(err, cerrors.ErrInvalidMessage), "got %v", err)

	var n uint32
	f.query(t, 1_010, QueryMsg{TicketNumber: &TicketNumberQuery{Owner: "bob", RaffleID: 0}}, &n)
	require.Equal(t, uint32(1), n)
	var info RaffleResponse
	f.query(t, 1_010, QueryMsg{RaffleInfo: &RaffleID{RaffleID: 0}}, &info)
	require.Equal(t, "200", info.RaffleInfo.AccumulatedTicketFee.Amount().String())
}

func TestCreateRaffleValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.exec(1_000, "owner", ExecuteMsg{CreateRaffle: &CreateRaffle{
		Asset:             asset.Coin("uluna", big.NewInt(1)),
		RaffleTicketPrice: ticketPrice(),
	}})
	require.True(t, errors.Is(err, asset.ErrWrongAssetType), "got %v", err)

	_, err = f.exec(1_000, "owner", ExecuteMsg{CreateRaffle: &CreateRaffle{
		Asset:             asset.Cw721("nft", "token_id"),
		RaffleTicketPrice: asset.Cw721("nft", "other"),
	}})
	require.True(t, errors.Is(err, asset.ErrWrongFundsType), "got %v", err)

	create := ExecuteMsg{CreateRaffle: &CreateRaffle{
		Asset: asset.Cw721("nft", "token_id"),
		RaffleOptions: RaffleOptionsMsg{
			RaffleStartTimestamp: u64(10),
			RaffleDuration:       u64(0),
			RaffleTimeout:        u64(5),
			MaxParticipantNumber: u32(5_000),
		},
		RaffleTicketPrice: ticketPrice(),
	}}
	_, err = f.exec(1_000, "nft", ExecuteMsg{ReceiveNft: &cw721.ReceiveMsg{Sender: "alice", TokenID: "other", Msg: testutil.MustJSON(create)}})
	require.True(t, errors.Is(err, ErrAssetMismatch), "got %v", err)

	res, err := f.exec(1_000, "nft", ExecuteMsg{ReceiveNft: &cw721.ReceiveMsg{Sender: "alice", TokenID: "token_id", Msg: testutil.MustJSON(create)}})
	require.NoError(t, err)
	require.Empty(t, res.Messages)

	r, err := newStore(f.deps.Storage).raffle(0)
	require.NoError(t, err)
	require.Equal(t, "alice", r.Owner)
	require.Equal(t, uint64(1_000), r.Options.RaffleStartTimestamp)
	require.Equal(t, MinimumRaffleDuration, r.Options.RaffleDuration)
	require.Equal(t, MinimumRaffleTimeout, r.Options.RaffleTimeout)
	require.Equal(t, MaximumParticipantNumber, r.Options.MaxParticipantNumber)
	require.Equal(t, "0", r.AccumulatedTicketFee.Amount().String())

	sft := ExecuteMsg{CreateRaffle: &CreateRaffle{Asset: asset.Cw1155("sft", "gem", big.NewInt(5)), RaffleTicketPrice: ticketPrice()}}
	res, err = f.exec(1_000, "sft", ExecuteMsg{Cw1155ReceiveMsg: &cw1155.ReceiveMsg{
		Operator: "bob", From: "bob", TokenID: "gem", Amount: big.NewInt(5), Msg: testutil.MustJSON(sft),
	}})
	require.NoError(t, err)
	id, _ := res.Attribute("raffle_id")
	require.Equal(t, "1", id)
	owner, _ := res.Attribute("owner")
	require.Equal(t, "bob", owner)

	buy := ExecuteMsg{BuyTicket: &BuyTicket{RaffleID: 0, SentAssets: ticketPrice()}}
	_, err = f.exec(1_000, "nft", ExecuteMsg{ReceiveNft: &cw721.ReceiveMsg{Sender: "alice", TokenID: "token_id", Msg: testutil.MustJSON(buy)}})
	require.True(t, errors.Is(err, cerrors.ErrInvalidMessage), "got %v", err)
}

func TestEmptyRaffleReturnsPrize(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, RaffleOptionsMsg{})

	_, err := f.exec(1_200, "owner", ExecuteMsg{ClaimNft: &RaffleID{RaffleID: id}})
	require.True(t, errors.Is(err, ErrWrongStateForClaim), "got %v", err)

	res, err := f.exec(1_300, "owner", ExecuteMsg{ClaimNft: &RaffleID{RaffleID: id}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	var transfer cw721.ExecuteMsg
	_, _, err = testutil.WasmCall(res.Messages[0], &transfer)
	require.NoError(t, err)
	require.Equal(t, "owner", transfer.TransferNft.Recipient)
}

func TestAdminParameters(t *testing.T) {
	f := newFixture(t)
	change := func(sender, parameter, value string) error {
		_, err := f.exec(1_000, sender, ExecuteMsg{ChangeParameter: &ChangeParameter{Parameter: parameter, Value: value}})
		return err
	}
	require.True(t, errors.Is(change("mallory", "fee_addr", "mallory"), cerrors.ErrUnauthorized))
	require.True(t, errors.Is(change("owner", "colour", "blue"), ErrParameterNotFound))
	require.True(t, errors.Is(change("owner", "raffle_fee", "20000"), ErrInvalidFee))
	require.True(t, errors.Is(change("owner", "minimum_raffle_timeout", "soon"), cerrors.ErrInvalidMessage))
	require.NoError(t, change("owner", "rand_fee", "0"))
	require.NoError(t, change("owner", "minimum_raffle_timeout", "10"))
	require.NoError(t, change("owner", "random_pubkey", base64.StdEncoding.EncodeToString([]byte{9, 9})))
	require.NoError(t, change("owner", "drand_url", "https://api.drand.sh/"))

	var info ContractInfo
	f.query(t, 1_000, QueryMsg{ContractInfo: &struct{}{}}, &info)
	require.Equal(t, "1", info.RandFee.String())
	require.Equal(t, MinimumRaffleTimeout, info.MinimumRaffleTimeout)
	require.Equal(t, []byte{9, 9}, info.RandomPubkey)
	require.Equal(t, "https://api.drand.sh/", info.DrandURL)

	_, err := f.exec(1_000, "owner", ExecuteMsg{ToggleLock: &ToggleLock{Lock: true}})
	require.NoError(t, err)
	_, err = f.exec(1_000, "owner", ExecuteMsg{CreateRaffle: &CreateRaffle{Asset: asset.Cw721("nft", "token_id"), RaffleTicketPrice: ticketPrice()}})
	require.True(t, errors.Is(err, common.ErrContractLocked), "got %v", err)

	_, err = f.exec(1_000, "owner", ExecuteMsg{Renounce: &struct{}{}})
	require.NoError(t, err)
	require.True(t, errors.Is(change("owner", "drand_url", "x"), cerrors.ErrUnauthorized))
	f.query(t, 1_000, QueryMsg{ContractInfo: &struct{}{}}, &info)
	require.Equal(t, testutil.ContractAddr, info.Owner)
}

func TestRaffleQueries(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.create(t, RaffleOptionsMsg{})
	}
	f.buy(t, 1_010, "alice", 1)
	f.buy(t, 1_010, "bob", 1)
	f.buy(t, 1_010, "alice", 1)

	var all AllRafflesResponse
	f.query(t, 1_010, QueryMsg{AllRaffles: &AllRafflesQuery{}}, &all)
	require.Len(t, all.Raffles, 3)
	require.Equal(t, uint64(2), all.Raffles[0].RaffleID)
	require.Equal(t, StateStarted, all.Raffles[0].RaffleState)

	f.query(t, 1_010, QueryMsg{AllRaffles: &AllRafflesQuery{StartAfter: u64(2), Limit: u32(1)}}, &all)
	require.Len(t, all.Raffles, 1)
	require.Equal(t, uint64(1), all.Raffles[0].RaffleID)

	bob := "bob"
	f.query(t, 1_010, QueryMsg{AllRaffles: &AllRafflesQuery{Filters: &QueryFilters{TicketDepositor: &bob}}}, &all)
	require.Len(t, all.Raffles, 1)
	require.Equal(t, uint64(1), all.Raffles[0].RaffleID)

	f.query(t, 1_200, QueryMsg{AllRaffles: &AllRafflesQuery{Filters: &QueryFilters{States: []RaffleState{StateStarted}}}}, &all)
	require.Empty(t, all.Raffles)

	var tickets []string
	f.query(t, 1_010, QueryMsg{AllTickets: &AllTicketsQuery{RaffleID: 1}}, &tickets)
	require.Equal(t, []string{"alice", "bob", "alice"}, tickets)
	f.query(t, 1_010, QueryMsg{AllTickets: &AllTicketsQuery{RaffleID: 1, StartAfter: u32(0), Limit: u32(1)}}, &tickets)
	require.Equal(t, []string{"bob"}, tickets)

	var n uint32
	f.query(t, 1_010, QueryMsg{TicketNumber: &TicketNumberQuery{Owner: "alice", RaffleID: 1}}, &n)
	require.Equal(t, uint32(2), n)
}
