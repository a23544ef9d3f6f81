// Package raffle runs NFT raffles whose winners are drawn from drand
// randomness checked by a verifier contract.
package raffle

import (
	"encoding/json"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

const CodeName = "nft_raffle"

type Contract struct{}

func New() *Contract { return &Contract{} }

func (c *Contract) Instantiate(deps types.Deps, _ types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("%v", err)
	}
	if err := common.ValidateName(msg.Name); err != nil {
		return nil, err
	}
	cfg := ContractInfo{
		Name:                  msg.Name,
		Owner:                 info.Sender,
		FeeAddr:               info.Sender,
		MinimumRaffleDuration: MinimumRaffleDuration,
		MinimumRaffleTimeout:  MinimumRaffleTimeout,
		RaffleFee:             common.Amount(msg.RaffleFee),
		RandFee:               randFeeFloor(msg.RandFee),
		RandomPubkey:          msg.RandomPubkey,
	}
	var err error
	if msg.Owner != nil {
		if cfg.Owner, err = common.ValidateAddr(deps.API, *msg.Owner); err != nil {
			return nil, err
		}
	}
	if msg.FeeAddr != nil {
		if cfg.FeeAddr, err = common.ValidateAddr(deps.API, *msg.FeeAddr); err != nil {
			return nil, err
		}
	}
	if msg.MinimumRaffleDuration != nil {
		cfg.MinimumRaffleDuration = maxU64(*msg.MinimumRaffleDuration, MinimumRaffleDuration)
	}
	if msg.MinimumRaffleTimeout != nil {
		cfg.MinimumRaffleTimeout = maxU64(*msg.MinimumRaffleTimeout, MinimumRaffleTimeout)
	}
	if msg.DrandURL != nil {
		cfg.DrandURL = *msg.DrandURL
	}
	if err := validateFees(cfg.RaffleFee, cfg.RandFee); err != nil {
		return nil, err
	}
	if cfg.VerifySignatureContract, err = common.ValidateAddr(deps.API, msg.VerifySignatureContract); err != nil {
		return nil, err
	}
	if err := newStore(deps.Storage).putInfo(cfg); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "init").
		AddAttribute("contract", CodeName).
		AddAttribute("owner", cfg.Owner), nil
}

func (c *Contract) Execute(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	e, err := newEngine(deps, env)
	if err != nil {
		return nil, err
	}
	switch {
	case msg.CreateRaffle != nil:
		return e.CreateRaffle(info.Sender, *msg.CreateRaffle)
	case msg.BuyTicket != nil:
		return e.BuyTicket(info, *msg.BuyTicket)
	case msg.Receive != nil:
		return e.Receive(info, *msg.Receive)
	case msg.ReceiveNft != nil:
		return e.ReceiveNft(info, *msg.ReceiveNft)
	case msg.Cw1155ReceiveMsg != nil:
		return e.ReceiveCw1155(info, *msg.Cw1155ReceiveMsg)
	case msg.ClaimNft != nil:
		return e.ClaimNft(*msg.ClaimNft)
	case msg.UpdateRandomness != nil:
		return e.UpdateRandomness(info.Sender, *msg.UpdateRandomness)
	case msg.ToggleLock != nil:
		return e.ToggleLock(info.Sender, *msg.ToggleLock)
	case msg.Renounce != nil:
		return e.Renounce(info.Sender)
	case msg.ChangeParameter != nil:
		return e.ChangeParameter(info.Sender, *msg.ChangeParameter)
	}
	return nil, cerrors.ErrInvalidMessage
}

func (c *Contract) Reply(deps types.Deps, env types.Env, reply types.Reply) (*types.Response, error) {
	e, err := newEngine(deps, env)
	if err != nil {
		return nil, err
	}
	return e.Reply(reply)
}

func (c *Contract) Query(deps types.Deps, env types.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	e, err := newEngine(deps, env)
	if err != nil {
		return nil, err
	}
	switch {
	case msg.ContractInfo != nil:
		return common.EncodeResponse(e.info, nil)
	case msg.RaffleInfo != nil:
		return common.EncodeResponse(e.QueryRaffle(msg.RaffleInfo.RaffleID))
	case msg.AllRaffles != nil:
		return common.EncodeResponse(e.QueryAllRaffles(*msg.AllRaffles))
	case msg.AllTickets != nil:
		return common.EncodeResponse(e.QueryAllTickets(*msg.AllTickets))
	case msg.TicketNumber != nil:
		return common.EncodeResponse(e.store.ticketCount(msg.TicketNumber.Owner, msg.TicketNumber.RaffleID))
	}
	return nil, cerrors.ErrInvalidMessage
}

func (e *Engine) QueryRaffle(id uint64) (RaffleResponse, error) {
	r, err := e.store.raffle(id)
	if err != nil {
		return RaffleResponse{}, err
	}
	return RaffleResponse{RaffleID: id, RaffleState: r.State(e.now()), RaffleInfo: r}, nil
}

// QueryAllRaffles lists raffles newest first.
func (e *Engine) QueryAllRaffles(q AllRafflesQuery) (AllRafflesResponse, error) {
	out := AllRafflesResponse{Raffles: []RaffleResponse{}}
	if e.info.LastRaffleID == nil {
		return out, nil
	}
	limit := common.Limit(q.Limit)
	next := *e.info.LastRaffleID + 1
	if q.StartAfter != nil && *q.StartAfter < next {
		next = *q.StartAfter
	}
	for id := next; id > 0 && len(out.Raffles) < limit; id-- {
		resp, err := e.QueryRaffle(id - 1)
		if err != nil {
			return AllRafflesResponse{}, err
		}
		ok, err := e.matches(id-1, resp, q.Filters)
		if err != nil {
			return AllRafflesResponse{}, err
		}
		if ok {
			out.Raffles = append(out.Raffles, resp)
		}
	}
	return out, nil
}

func (e *Engine) matches(id uint64, resp RaffleResponse, f *QueryFilters) (bool, error) {
	if f == nil {
		return true, nil
	}
	if len(f.States) > 0 {
		found := false
		for _, s := range f.States {
			if s == resp.RaffleState {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	if f.Owner != nil && *f.Owner != resp.RaffleInfo.Owner {
		return false, nil
	}
	if f.ContainsToken != nil && *f.ContainsToken != resp.RaffleInfo.Asset.Address() {
		return false, nil
	}
	if f.TicketDepositor != nil {
		n, err := e.store.ticketCount(*f.TicketDepositor, id)
		if err != nil || n == 0 {
			return false, err
		}
	}
	return true, nil
}

// QueryAllTickets lists ticket holders in purchase order.
func (e *Engine) QueryAllTickets(q AllTicketsQuery) ([]string, error) {
	r, err := e.store.raffle(q.RaffleID)
	if err != nil {
		return nil, err
	}
	start := uint32(0)
	if q.StartAfter != nil {
		start = *q.StartAfter + 1
	}
	limit := common.Limit(q.Limit)
	out := []string{}
	for seq := start; seq < r.NumberOfTickets && len(out) < limit; seq++ {
		owner, err := e.store.ticket(q.RaffleID, seq)
		if err != nil {
			return nil, err
		}
		out = append(out, owner)
	}
	return out, nil
}
