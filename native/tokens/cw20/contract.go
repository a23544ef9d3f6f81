package cw20

import (
	"encoding/json"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

// CodeName is the registry name of the reference fungible token.
const CodeName = "cw20"

// Contract is a plain fungible token used as vault underlying and ticket
// currency.
type Contract struct{}

func New() *Contract { return &Contract{} }

func (c *Contract) Instantiate(deps types.Deps, _ types.Env, _ types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("%v", err)
	}
	if err := InitLedger(deps, msg); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "instantiate").AddAttribute("symbol", msg.Symbol), nil
}

func (c *Contract) Execute(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Transfer != nil:
		return ExecuteTransfer(deps, info, *msg.Transfer)
	case msg.TransferFrom != nil:
		return ExecuteTransferFrom(deps, env, info, *msg.TransferFrom)
	case msg.Send != nil:
		return ExecuteSend(deps, info, *msg.Send)
	case msg.SendFrom != nil:
		return ExecuteSendFrom(deps, env, info, *msg.SendFrom)
	case msg.Burn != nil:
		return ExecuteBurn(deps, info, *msg.Burn)
	case msg.BurnFrom != nil:
		return ExecuteBurnFrom(deps, env, info, *msg.BurnFrom)
	case msg.IncreaseAllowance != nil:
		return ExecuteIncreaseAllowance(deps, env, info, *msg.IncreaseAllowance)
	case msg.DecreaseAllowance != nil:
		return ExecuteDecreaseAllowance(deps, env, info, *msg.DecreaseAllowance)
	case msg.Mint != nil:
		return ExecuteMint(deps, info, *msg.Mint)
	}
	return nil, cerrors.ErrInvalidMessage
}

func (c *Contract) Query(deps types.Deps, env types.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Balance != nil:
		return common.EncodeResponse(QueryBalance(deps, msg.Balance.Address))
	case msg.TokenInfo != nil:
		return common.EncodeResponse(QueryTokenInfo(deps))
	case msg.Allowance != nil:
		return common.EncodeResponse(QueryAllowance(deps, env, msg.Allowance.Owner, msg.Allowance.Spender))
	case msg.Minter != nil:
		return common.EncodeResponse(QueryMinter(deps))
	}
	return nil, cerrors.ErrInvalidMessage
}
