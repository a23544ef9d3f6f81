package raffle

import (
	"encoding/base64"
	"strconv"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/verifier"
)

// UpdateRandomness forwards a drand beacon to the verifier. The randomness is
// only stored once the verifier's reply comes back.
func (e *Engine) UpdateRandomness(sender string, msg UpdateRandomness) (*types.Response, error) {
	r, err := e.store.raffle(msg.RaffleID)
	if err != nil {
		return nil, err
	}
	if state := r.State(e.now()); state != StateClosed {
		return nil, ErrWrongStateForRandomness.With("status", state)
	}
	if msg.Randomness.Round <= r.randomnessRound() {
		return nil, ErrRandomnessNotAccepted.With("round", r.randomnessRound())
	}
	call, err := verifier.VerifyMsg(e.info.VerifySignatureContract, verifier.Verify{
		Randomness: msg.Randomness,
		Pubkey:     e.info.RandomPubkey,
		RaffleID:   msg.RaffleID,
		Owner:      sender,
	})
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddSubMessage(types.SubMsg{ID: verifyReplyID, Msg: call, ReplyOn: types.ReplySuccess}).
		AddAttribute("action", "update_randomness").
		AddAttribute("raffle_id", strconv.FormatUint(msg.RaffleID, 10)).
		AddAttribute("sender", sender), nil
}

type verifiedBeacon struct {
	round      uint64
	randomness []byte
	raffleID   uint64
	owner      string
}

// parseVerifierEvent extracts the verified beacon from the verifier's wasm
// event.
func (e *Engine) parseVerifierEvent(events []types.Event) (verifiedBeacon, error) {
	for _, ev := range events {
		attrs := ev.Attributes
		if addr, ok := attrs["_contract_address"]; ok && addr != e.info.VerifySignatureContract {
			continue
		}
		round, hasRound := attrs["round"]
		rnd, hasRnd := attrs["randomness"]
		id, hasID := attrs["raffle_id"]
		owner, hasOwner := attrs["owner"]
		if !hasRound || !hasRnd || !hasID || !hasOwner {
			continue
		}
		var (
			b   verifiedBeacon
			err error
		)
		if b.round, err = strconv.ParseUint(round, 10, 64); err != nil {
			return verifiedBeacon{}, ErrParseReply.With("round", round)
		}
		if b.raffleID, err = strconv.ParseUint(id, 10, 64); err != nil {
			return verifiedBeacon{}, ErrParseReply.With("raffle_id", id)
		}
		if b.randomness, err = base64.StdEncoding.DecodeString(rnd); err != nil || len(b.randomness) != 32 {
			return verifiedBeacon{}, ErrParseReply.With("randomness", rnd)
		}
		if b.owner, err = e.deps.API.AddrValidate(owner); err != nil {
			return verifiedBeacon{}, ErrParseReply.With("owner", owner)
		}
		return b, nil
	}
	return verifiedBeacon{}, ErrParseReply.Wrapf("no verifier event")
}

// Reply stores the randomness confirmed by the verifier.
func (e *Engine) Reply(reply types.Reply) (*types.Response, error) {
	if reply.ID != verifyReplyID {
		return nil, cerrors.ErrInvalidMessage.Wrapf("unknown reply id %d", reply.ID)
	}
	b, err := e.parseVerifierEvent(reply.Result.Events)
	if err != nil {
		return nil, err
	}
	r, err := e.store.raffle(b.raffleID)
	if err != nil {
		return nil, err
	}
	if b.round <= r.randomnessRound() {
		return nil, ErrRandomnessNotAccepted.With("round", r.randomnessRound())
	}
	r.Randomness = &Randomness{Randomness: b.randomness, Round: b.round, Owner: b.owner}
	if err := e.store.putRaffle(b.raffleID, r); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "update_randomness").
		AddAttribute("raffle_id", strconv.FormatUint(b.raffleID, 10)).
		AddAttribute("round", strconv.FormatUint(b.round, 10)).
		AddAttribute("sender", b.owner), nil
}
