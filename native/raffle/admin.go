package raffle

import (
	"encoding/base64"
	"math/big"
	"strconv"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

func (e *Engine) saveParameter(parameter, value string) (*types.Response, error) {
	if err := e.store.putInfo(e.info); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "modify_parameter").
		AddAttribute("parameter", parameter).
		AddAttribute("value", value), nil
}

// ToggleLock freezes or unfreezes raffle creation and ticket sales.
func (e *Engine) ToggleLock(sender string, msg ToggleLock) (*types.Response, error) {
	if err := e.requireOwner(sender); err != nil {
		return nil, err
	}
	e.info.Lock = msg.Lock
	return e.saveParameter("contract_lock", strconv.FormatBool(msg.Lock))
}

// Renounce hands ownership to the contract itself.
func (e *Engine) Renounce(sender string) (*types.Response, error) {
	if err := e.requireOwner(sender); err != nil {
		return nil, err
	}
	e.info.Owner = e.self()
	return e.saveParameter("owner", e.info.Owner)
}

func (e *Engine) ChangeParameter(sender string, msg ChangeParameter) (*types.Response, error) {
	if err := e.requireOwner(sender); err != nil {
		return nil, err
	}
	var err error
	switch msg.Parameter {
	case "fee_addr":
		e.info.FeeAddr, err = common.ValidateAddr(e.deps.API, msg.Value)
	case "minimum_raffle_duration":
		var v uint64
		if v, err = parseUint(msg.Value); err == nil {
			e.info.MinimumRaffleDuration = maxU64(v, MinimumRaffleDuration)
		}
	case "minimum_raffle_timeout":
		var v uint64
		if v, err = parseUint(msg.Value); err == nil {
			e.info.MinimumRaffleTimeout = maxU64(v, MinimumRaffleTimeout)
		}
	case "raffle_fee":
		var v *big.Int
		if v, err = parseAmount(msg.Value); err == nil {
			err = validateFees(v, e.info.RandFee)
			e.info.RaffleFee = v
		}
	case "rand_fee":
		var v *big.Int
		if v, err = parseAmount(msg.Value); err == nil {
			v = randFeeFloor(v)
			err = validateFees(e.info.RaffleFee, v)
			e.info.RandFee = v
		}
	case "drand_url":
		e.info.DrandURL = msg.Value
	case "verify_signature_contract":
		e.info.VerifySignatureContract, err = common.ValidateAddr(e.deps.API, msg.Value)
	case "random_pubkey":
		var key []byte
		if key, err = base64.StdEncoding.DecodeString(msg.Value); err != nil {
			err = cerrors.ErrInvalidMessage.Wrapf("random_pubkey: %v", err)
		} else {
			e.info.RandomPubkey = key
		}
	default:
		return nil, ErrParameterNotFound.With("parameter", msg.Parameter)
	}
	if err != nil {
		return nil, err
	}
	return e.saveParameter(msg.Parameter, msg.Value)
}

func parseUint(value string) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, cerrors.ErrInvalidMessage.Wrapf("not an integer: %q", value)
	}
	return v, nil
}

func parseAmount(value string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok || v.Sign() < 0 {
		return nil, cerrors.ErrInvalidMessage.Wrapf("not an amount: %q", value)
	}
	return v, nil
}
