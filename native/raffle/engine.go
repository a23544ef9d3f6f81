package raffle

import (
	"math/big"
	"strconv"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/asset"
	"nftfi/native/common"
	"nftfi/native/tokens/cw1155"
	"nftfi/native/tokens/cw20"
	"nftfi/native/tokens/cw721"
)

var (
	ErrRaffleNotFound          = cerrors.New(cerrors.KindState, "not_found_in_raffle_info", "raffle not found")
	ErrCantBuyTickets          = cerrors.New(cerrors.KindState, "cant_buy_tickets", "tickets can't be bought in this state")
	ErrAssetMismatch           = cerrors.New(cerrors.KindValidation, "asset_mismatch", "the sent asset doesn't match the announced asset")
	ErrPaymentNotSufficient    = cerrors.New(cerrors.KindValue, "payment_not_sufficient", "the ticket payment doesn't match the ticket price")
	ErrTooMuchTickets          = cerrors.New(cerrors.KindValue, "too_much_tickets", "too many tickets")
	ErrRandomnessNotAccepted   = cerrors.New(cerrors.KindState, "randomness_not_accepted", "the randomness round must be newer than the stored one")
	ErrWrongStateForRandomness = cerrors.New(cerrors.KindState, "wrong_state_for_randomness", "randomness can only be provided while the raffle is closed")
	ErrWrongStateForClaim      = cerrors.New(cerrors.KindState, "wrong_state_for_claim", "the prize can only be claimed once the raffle is finished")
	ErrParseReply              = cerrors.New(cerrors.KindExternal, "parse_reply_error", "could not parse the verifier reply")
	ErrParameterNotFound       = cerrors.New(cerrors.KindValidation, "parameter_not_found", "unknown parameter")
	ErrInvalidFee              = cerrors.New(cerrors.KindValidation, "invalid_fee", "raffle and randomness fees must not exceed the fee scale")
)

const (
	moduleName = "raffle"

	// verifyReplyID tags the verifier sub-call.
	verifyReplyID uint64 = 0
)

// Engine executes a single raffle call against the contract keyspace.
type Engine struct {
	deps  types.Deps
	env   types.Env
	store *store
	info  ContractInfo
}

func newEngine(deps types.Deps, env types.Env) (*Engine, error) {
	s := newStore(deps.Storage)
	info, err := s.info()
	if err != nil {
		return nil, err
	}
	return &Engine{deps: deps, env: env, store: s, info: info}, nil
}

func (e *Engine) now() uint64 { return e.env.Block.Time }

func (e *Engine) self() string { return e.env.Contract.Address }

func (e *Engine) requireOwner(sender string) error {
	if sender != e.info.Owner {
		return cerrors.ErrUnauthorized.With("sender", sender)
	}
	return nil
}

func validateFees(raffleFee, randFee *big.Int) error {
	if raffleFee == nil || randFee == nil || raffleFee.Sign() < 0 || randFee.Sign() < 0 {
		return ErrInvalidFee
	}
	if new(big.Int).Add(raffleFee, randFee).Cmp(FeeScale) > 0 {
		return ErrInvalidFee.With("raffle_fee", raffleFee, "rand_fee", randFee)
	}
	return nil
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func randFeeFloor(fee *big.Int) *big.Int {
	if fee == nil || fee.Cmp(MinimumRandFee) < 0 {
		return new(big.Int).Set(MinimumRandFee)
	}
	return new(big.Int).Set(fee)
}

// clampOptions applies the contract minima to the caller's options.
func (e *Engine) clampOptions(msg RaffleOptionsMsg) RaffleOptions {
	o := RaffleOptions{
		RaffleStartTimestamp: e.now(),
		RaffleDuration:       e.info.MinimumRaffleDuration,
		RaffleTimeout:        e.info.MinimumRaffleTimeout,
		Comment:              msg.Comment,
		MaxParticipantNumber: MaximumParticipantNumber,
		MaxTicketPerAddress:  msg.MaxTicketPerAddress,
	}
	if msg.RaffleStartTimestamp != nil {
		o.RaffleStartTimestamp = maxU64(*msg.RaffleStartTimestamp, e.now())
	}
	if msg.RaffleDuration != nil {
		o.RaffleDuration = maxU64(*msg.RaffleDuration, e.info.MinimumRaffleDuration)
	}
	if msg.RaffleTimeout != nil {
		o.RaffleTimeout = maxU64(*msg.RaffleTimeout, e.info.MinimumRaffleTimeout)
	}
	if msg.MaxParticipantNumber != nil && *msg.MaxParticipantNumber < MaximumParticipantNumber {
		o.MaxParticipantNumber = *msg.MaxParticipantNumber
	}
	return o
}

// CreateRaffle pulls the prize from the sender and opens a raffle.
func (e *Engine) CreateRaffle(sender string, msg CreateRaffle) (*types.Response, error) {
	if !msg.Asset.IsNFT() {
		return nil, asset.ErrWrongAssetType.With("asset", msg.Asset)
	}
	pull, err := msg.Asset.PullMsg(sender, e.self())
	if err != nil {
		return nil, err
	}
	res, err := e.createRaffle(sender, msg)
	if err != nil {
		return nil, err
	}
	return res.AddMessage(pull), nil
}

// createRaffle stores a raffle whose prize is already held or about to be
// pulled by the caller.
func (e *Engine) createRaffle(sender string, msg CreateRaffle) (*types.Response, error) {
	if err := common.Guard(e.info, moduleName); err != nil {
		return nil, err
	}
	if !msg.Asset.IsNFT() {
		return nil, asset.ErrWrongAssetType.With("asset", msg.Asset)
	}
	if err := msg.Asset.Validate(e.deps.API); err != nil {
		return nil, err
	}
	switch msg.RaffleTicketPrice.Kind() {
	case asset.KindCoin, asset.KindCw20:
	default:
		return nil, asset.ErrWrongFundsType.With("price", msg.RaffleTicketPrice)
	}
	if err := msg.RaffleTicketPrice.Validate(e.deps.API); err != nil {
		return nil, err
	}
	owner := sender
	if msg.Owner != nil {
		var err error
		if owner, err = common.ValidateAddr(e.deps.API, *msg.Owner); err != nil {
			return nil, err
		}
	}
	accumulated, err := msg.RaffleTicketPrice.WithAmount(common.Zero())
	if err != nil {
		return nil, err
	}
	id := uint64(0)
	if e.info.LastRaffleID != nil {
		id = *e.info.LastRaffleID + 1
	}
	e.info.LastRaffleID = &id
	r := RaffleInfo{
		Owner:                owner,
		Asset:                msg.Asset,
		RaffleTicketPrice:    msg.RaffleTicketPrice,
		AccumulatedTicketFee: accumulated,
		Options:              e.clampOptions(msg.RaffleOptions),
	}
	if err := e.store.putInfo(e.info); err != nil {
		return nil, err
	}
	if err := e.store.putRaffle(id, r); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "create_raffle").
		AddAttribute("raffle_id", strconv.FormatUint(id, 10)).
		AddAttribute("owner", owner).
		SetData([]byte(strconv.FormatUint(id, 10))), nil
}

// ReceiveNft opens a raffle for a cw721 token sent with SendNft.
func (e *Engine) ReceiveNft(info types.MessageInfo, msg cw721.ReceiveMsg) (*types.Response, error) {
	create, err := receivedCreate(msg.Msg)
	if err != nil {
		return nil, err
	}
	received := asset.Cw721(info.Sender, msg.TokenID)
	if !create.Asset.Equal(received) {
		return nil, ErrAssetMismatch.With("announced", create.Asset, "received", received)
	}
	return e.createRaffle(msg.Sender, create)
}

// ReceiveCw1155 opens a raffle for semi-fungible tokens sent with SendFrom.
func (e *Engine) ReceiveCw1155(info types.MessageInfo, msg cw1155.ReceiveMsg) (*types.Response, error) {
	create, err := receivedCreate(msg.Msg)
	if err != nil {
		return nil, err
	}
	received := asset.Cw1155(info.Sender, msg.TokenID, msg.Amount)
	if !create.Asset.Equal(received) {
		return nil, ErrAssetMismatch.With("announced", create.Asset, "received", received)
	}
	from := msg.From
	if from == "" {
		from = msg.Operator
	}
	return e.createRaffle(from, create)
}

func receivedCreate(raw []byte) (CreateRaffle, error) {
	var inner ExecuteMsg
	if err := common.DecodeMsg(raw, &inner); err != nil {
		return CreateRaffle{}, err
	}
	if inner.CreateRaffle == nil {
		return CreateRaffle{}, cerrors.ErrInvalidMessage.Wrapf("only create_raffle is accepted with an nft")
	}
	return *inner.CreateRaffle, nil
}

// BuyTicket sells one ticket paid with native coins or a cw20 allowance.
func (e *Engine) BuyTicket(info types.MessageInfo, msg BuyTicket) (*types.Response, error) {
	r, err := e.ticketSale(msg)
	if err != nil {
		return nil, err
	}
	res := types.NewResponse()
	switch msg.SentAssets.Kind() {
	case asset.KindCoin:
		price := msg.SentAssets.Coin
		if price.IsZero() {
			if len(types.Coins(info.Funds).Normalize()) != 0 {
				return nil, ErrAssetMismatch.With("expected", "no funds")
			}
			break
		}
		if len(info.Funds) != 1 || !info.Funds[0].Equal(*price) {
			return nil, ErrAssetMismatch.With("expected", price.String())
		}
	case asset.KindCw20:
		pull, err := msg.SentAssets.PullMsg(info.Sender, e.self())
		if err != nil {
			return nil, err
		}
		res.AddMessage(pull)
	default:
		return nil, asset.ErrWrongFundsType.With("asset", msg.SentAssets)
	}
	return e.sellTicket(res, info.Sender, msg.RaffleID, r)
}

// Receive sells a ticket paid with a cw20 Send.
func (e *Engine) Receive(info types.MessageInfo, msg cw20.ReceiveMsg) (*types.Response, error) {
	var inner ExecuteMsg
	if err := common.DecodeMsg(msg.Msg, &inner); err != nil {
		return nil, err
	}
	if inner.BuyTicket == nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("only buy_ticket is accepted with a cw20 token")
	}
	buy := *inner.BuyTicket
	received := asset.Cw20(info.Sender, msg.Amount)
	if !buy.SentAssets.Equal(received) {
		return nil, ErrAssetMismatch.With("announced", buy.SentAssets, "received", received)
	}
	buyer, err := common.ValidateAddr(e.deps.API, msg.Sender)
	if err != nil {
		return nil, err
	}
	r, err := e.ticketSale(buy)
	if err != nil {
		return nil, err
	}
	return e.sellTicket(types.NewResponse(), buyer, buy.RaffleID, r)
}

// ticketSale loads a raffle and checks that the announced payment matches its
// price and that it is open.
func (e *Engine) ticketSale(msg BuyTicket) (RaffleInfo, error) {
	if err := common.Guard(e.info, moduleName); err != nil {
		return RaffleInfo{}, err
	}
	r, err := e.store.raffle(msg.RaffleID)
	if err != nil {
		return RaffleInfo{}, err
	}
	if !msg.SentAssets.Equal(r.RaffleTicketPrice) {
		return RaffleInfo{}, ErrPaymentNotSufficient.With("wanted", r.RaffleTicketPrice, "received", msg.SentAssets)
	}
	if state := r.State(e.now()); state != StateStarted {
		return RaffleInfo{}, ErrCantBuyTickets.With("state", state)
	}
	return r, nil
}

func (e *Engine) sellTicket(res *types.Response, buyer string, id uint64, r RaffleInfo) (*types.Response, error) {
	if limit := r.Options.MaxTicketPerAddress; limit != nil {
		held, err := e.store.ticketCount(buyer, id)
		if err != nil {
			return nil, err
		}
		if held >= *limit {
			return nil, ErrTooMuchTickets.With("max_per_address", *limit)
		}
	}
	if r.NumberOfTickets >= r.Options.MaxParticipantNumber {
		return nil, ErrTooMuchTickets.With("max_participants", r.Options.MaxParticipantNumber)
	}
	if _, err := e.store.addTicket(id, r.NumberOfTickets, buyer); err != nil {
		return nil, err
	}
	seq := r.NumberOfTickets
	r.NumberOfTickets++
	total, err := common.Add128(r.AccumulatedTicketFee.Amount(), r.RaffleTicketPrice.Amount())
	if err != nil {
		return nil, err
	}
	if r.AccumulatedTicketFee, err = r.AccumulatedTicketFee.WithAmount(total); err != nil {
		return nil, err
	}
	if err := e.store.putRaffle(id, r); err != nil {
		return nil, err
	}
	return res.
		AddAttribute("action", "buy_ticket").
		AddAttribute("raffle_id", strconv.FormatUint(id, 10)).
		AddAttribute("owner", buyer).
		AddAttribute("ticket_number", strconv.FormatUint(uint64(seq), 10)), nil
}

// ClaimNft draws the winner, hands over the prize and splits the proceeds.
func (e *Engine) ClaimNft(msg RaffleID) (*types.Response, error) {
	r, err := e.store.raffle(msg.RaffleID)
	if err != nil {
		return nil, err
	}
	if state := r.State(e.now()); state != StateFinished {
		return nil, ErrWrongStateForClaim.With("status", state)
	}
	winner := r.Owner
	if r.NumberOfTickets > 0 {
		if winner, err = e.drawWinner(msg.RaffleID, r); err != nil {
			return nil, err
		}
	}
	r.Winner = &winner
	if err := e.store.putRaffle(msg.RaffleID, r); err != nil {
		return nil, err
	}
	prize, err := r.Asset.TransferMsg(e.self(), winner)
	if err != nil {
		return nil, err
	}
	res := types.NewResponse().AddMessage(prize)
	if r.NumberOfTickets > 0 {
		if err := e.payProceeds(res, r); err != nil {
			return nil, err
		}
	}
	return res.
		AddAttribute("action", "claim").
		AddAttribute("raffle_id", strconv.FormatUint(msg.RaffleID, 10)).
		AddAttribute("winner", winner), nil
}

func (e *Engine) drawWinner(id uint64, r RaffleInfo) (string, error) {
	if r.Randomness == nil {
		return "", ErrWrongStateForClaim.With("status", StateClosed)
	}
	idx, err := NewPrng(r.Randomness.Randomness).RandomBetween(0, r.NumberOfTickets-1)
	if err != nil {
		return "", err
	}
	return e.store.ticket(id, idx)
}

// payProceeds splits the accumulated ticket fees between the randomness
// provider, the fee address and the raffle owner.
func (e *Engine) payProceeds(res *types.Response, r RaffleInfo) error {
	total := r.AccumulatedTicketFee.Amount()
	randAmount, err := common.MulDiv(total, e.info.RandFee, FeeScale)
	if err != nil {
		return err
	}
	treasury, err := common.MulDiv(total, e.info.RaffleFee, FeeScale)
	if err != nil {
		return err
	}
	rest, err := common.Sub(total, randAmount)
	if err != nil {
		return err
	}
	if rest, err = common.Sub(rest, treasury); err != nil {
		return err
	}
	payouts := []struct {
		to     string
		amount *big.Int
	}{
		{r.Randomness.Owner, randAmount},
		{e.info.FeeAddr, treasury},
		{r.Owner, rest},
	}
	for _, p := range payouts {
		if p.amount.Sign() == 0 {
			continue
		}
		part, err := r.AccumulatedTicketFee.WithAmount(p.amount)
		if err != nil {
			return err
		}
		send, err := part.TransferMsg(e.self(), p.to)
		if err != nil {
			return err
		}
		res.AddMessage(send)
	}
	return nil
}
