package cw1155

import (
	"encoding/json"
	"math/big"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

const CodeName = "cw1155"

var ErrInsufficientFunds = cerrors.New(cerrors.KindValue, "insufficient_funds", "insufficient funds")

var minterKey = []byte("cw1155/minter")

func balanceKey(owner, tokenID string) []byte {
	return []byte("cw1155/balance/" + owner + "/" + tokenID)
}

func operatorKey(owner, operator string) []byte {
	return []byte("cw1155/operator/" + owner + "/" + operator)
}

// Contract is a minimal semi-fungible token contract.
type Contract struct{}

func New() *Contract { return &Contract{} }

func (c *Contract) Instantiate(deps types.Deps, _ types.Env, _ types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("%v", err)
	}
	minter, err := common.ValidateAddr(deps.API, msg.Minter)
	if err != nil {
		return nil, err
	}
	if err := deps.Storage.KVPut(minterKey, minter); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "instantiate"), nil
}

func balance(store types.Store, owner, tokenID string) (*big.Int, error) {
	var bal big.Int
	ok, err := store.KVGet(balanceKey(owner, tokenID), &bal)
	if err != nil || !ok {
		return new(big.Int), err
	}
	return &bal, nil
}

func (c *Contract) Execute(deps types.Deps, _ types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Mint != nil:
		var minter string
		if _, err := deps.Storage.KVGet(minterKey, &minter); err != nil {
			return nil, err
		}
		if minter != info.Sender {
			return nil, cerrors.ErrUnauthorized
		}
		to, err := common.ValidateAddr(deps.API, msg.Mint.To)
		if err != nil {
			return nil, err
		}
		bal, err := balance(deps.Storage, to, msg.Mint.TokenID)
		if err != nil {
			return nil, err
		}
		next, err := common.Add128(bal, msg.Mint.Value)
		if err != nil {
			return nil, err
		}
		if err := deps.Storage.KVPut(balanceKey(to, msg.Mint.TokenID), next); err != nil {
			return nil, err
		}
		return types.NewResponse().AddAttribute("action", "mint").AddAttribute("to", to).AddAttribute("token_id", msg.Mint.TokenID), nil
	case msg.SendFrom != nil:
		return c.sendFrom(deps, info, *msg.SendFrom)
	case msg.ApproveAll != nil:
		operator, err := common.ValidateAddr(deps.API, msg.ApproveAll.Operator)
		if err != nil {
			return nil, err
		}
		if err := deps.Storage.KVPut(operatorKey(info.Sender, operator), true); err != nil {
			return nil, err
		}
		return types.NewResponse().AddAttribute("action", "approve_all").AddAttribute("operator", operator), nil
	}
	return nil, cerrors.ErrInvalidMessage
}

func (c *Contract) sendFrom(deps types.Deps, info types.MessageInfo, msg SendFrom) (*types.Response, error) {
	if msg.From != info.Sender {
		approved, err := deps.Storage.KVGet(operatorKey(msg.From, info.Sender), nil)
		if err != nil {
			return nil, err
		}
		if !approved {
			return nil, cerrors.ErrUnauthorized
		}
	}
	to, err := common.ValidateAddr(deps.API, msg.To)
	if err != nil {
		return nil, err
	}
	value := common.Amount(msg.Value)
	from, err := balance(deps.Storage, msg.From, msg.TokenID)
	if err != nil {
		return nil, err
	}
	if from.Cmp(value) < 0 {
		return nil, ErrInsufficientFunds.With("balance", from.String(), "required", value.String())
	}
	if err := deps.Storage.KVPut(balanceKey(msg.From, msg.TokenID), new(big.Int).Sub(from, value)); err != nil {
		return nil, err
	}
	dest, err := balance(deps.Storage, to, msg.TokenID)
	if err != nil {
		return nil, err
	}
	next, err := common.Add128(dest, value)
	if err != nil {
		return nil, err
	}
	if err := deps.Storage.KVPut(balanceKey(to, msg.TokenID), next); err != nil {
		return nil, err
	}
	res := types.NewResponse().
		AddAttribute("action", "transfer").
		AddAttribute("from", msg.From).
		AddAttribute("to", to).
		AddAttribute("token_id", msg.TokenID).
		AddAttribute("amount", value.String())
	if msg.Msg != nil {
		hook, err := ReceiveMsg{Operator: info.Sender, From: msg.From, TokenID: msg.TokenID, Amount: value, Msg: msg.Msg}.IntoCosmosMsg(to)
		if err != nil {
			return nil, err
		}
		res.AddMessage(hook)
	}
	return res, nil
}

func (c *Contract) Query(deps types.Deps, _ types.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	if msg.Balance == nil {
		return nil, cerrors.ErrInvalidMessage
	}
	bal, err := balance(deps.Storage, msg.Balance.Owner, msg.Balance.TokenID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(BalanceResponse{Balance: bal})
}
