// Package verifier checks drand beacons for the raffle contract and reports
// the derived randomness as response attributes.
package verifier

import (
	"encoding/base64"
	"strconv"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

const CodeName = "drand_verifier"

type Contract struct{}

func New() *Contract { return &Contract{} }

func (c *Contract) Instantiate(types.Deps, types.Env, types.MessageInfo, []byte) (*types.Response, error) {
	return types.NewResponse().
		AddAttribute("action", "init").
		AddAttribute("contract", CodeName), nil
}

func (c *Contract) Execute(deps types.Deps, _ types.Env, _ types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	if msg.Verify == nil {
		return nil, cerrors.ErrInvalidMessage
	}
	v := *msg.Verify
	owner, err := common.ValidateAddr(deps.API, v.Owner)
	if err != nil {
		return nil, err
	}
	if err := VerifyBeacon(v.Pubkey, v.Randomness); err != nil {
		return nil, err
	}
	randomness := Randomness(v.Randomness.Signature)
	return types.NewResponse().
		AddAttribute("action", "verify").
		AddAttribute("round", strconv.FormatUint(v.Randomness.Round, 10)).
		AddAttribute("randomness", base64.StdEncoding.EncodeToString(randomness)).
		AddAttribute("raffle_id", strconv.FormatUint(v.RaffleID, 10)).
		AddAttribute("owner", owner).
		SetData(randomness), nil
}

func (c *Contract) Query(_ types.Deps, _ types.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	if msg.Verify == nil {
		return nil, cerrors.ErrInvalidMessage
	}
	v := *msg.Verify
	if err := VerifyBeacon(v.Pubkey, v.Randomness); err != nil {
		return common.EncodeResponse(VerifyResponse{Valid: false}, nil)
	}
	return common.EncodeResponse(VerifyResponse{Valid: true, Randomness: Randomness(v.Randomness.Signature)}, nil)
}
