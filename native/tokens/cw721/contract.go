package cw721

import (
	"encoding/json"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

const CodeName = "cw721"

var (
	ErrClaimed       = cerrors.New(cerrors.KindState, "token_claimed", "token_id already claimed")
	ErrTokenNotFound = cerrors.New(cerrors.KindState, "token_not_found", "token not found")
)

type storedInfo struct {
	Name   string
	Symbol string
	Minter string
}

type storedToken struct {
	Owner     string
	TokenURI  string
	Approvals []string
}

var infoKey = []byte("cw721/info")

func tokenKey(id string) []byte { return []byte("cw721/token/" + id) }

func operatorKey(owner, operator string) []byte {
	return []byte("cw721/operator/" + owner + "/" + operator)
}

// Contract is a minimal non-fungible token collection.
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
	if err := deps.Storage.KVPut(infoKey, storedInfo{Name: msg.Name, Symbol: msg.Symbol, Minter: minter}); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "instantiate"), nil
}

func loadToken(store types.Store, id string) (storedToken, error) {
	var tok storedToken
	ok, err := store.KVGet(tokenKey(id), &tok)
	if err != nil {
		return tok, err
	}
	if !ok {
		return tok, ErrTokenNotFound.With("token_id", id)
	}
	return tok, nil
}

func canSend(store types.Store, tok storedToken, sender string) (bool, error) {
	if tok.Owner == sender {
		return true, nil
	}
	for _, spender := range tok.Approvals {
		if spender == sender {
			return true, nil
		}
	}
	return store.KVGet(operatorKey(tok.Owner, sender), nil)
}

func transfer(deps types.Deps, sender, recipient, id string) error {
	tok, err := loadToken(deps.Storage, id)
	if err != nil {
		return err
	}
	ok, err := canSend(deps.Storage, tok, sender)
	if err != nil {
		return err
	}
	if !ok {
		return cerrors.ErrUnauthorized
	}
	tok.Owner = recipient
	tok.Approvals = nil
	return deps.Storage.KVPut(tokenKey(id), tok)
}

func (c *Contract) Execute(deps types.Deps, _ types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Mint != nil:
		var meta storedInfo
		if _, err := deps.Storage.KVGet(infoKey, &meta); err != nil {
			return nil, err
		}
		if meta.Minter != info.Sender {
			return nil, cerrors.ErrUnauthorized
		}
		owner, err := common.ValidateAddr(deps.API, msg.Mint.Owner)
		if err != nil {
			return nil, err
		}
		if exists, err := deps.Storage.KVGet(tokenKey(msg.Mint.TokenID), nil); err != nil {
			return nil, err
		} else if exists {
			return nil, ErrClaimed
		}
		if err := deps.Storage.KVPut(tokenKey(msg.Mint.TokenID), storedToken{Owner: owner, TokenURI: msg.Mint.TokenURI}); err != nil {
			return nil, err
		}
		return types.NewResponse().AddAttribute("action", "mint").AddAttribute("token_id", msg.Mint.TokenID).AddAttribute("owner", owner), nil
	case msg.TransferNft != nil:
		recipient, err := common.ValidateAddr(deps.API, msg.TransferNft.Recipient)
		if err != nil {
			return nil, err
		}
		if err := transfer(deps, info.Sender, recipient, msg.TransferNft.TokenID); err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddAttribute("action", "transfer_nft").
			AddAttribute("sender", info.Sender).
			AddAttribute("recipient", recipient).
			AddAttribute("token_id", msg.TransferNft.TokenID), nil
	case msg.SendNft != nil:
		contract, err := common.ValidateAddr(deps.API, msg.SendNft.Contract)
		if err != nil {
			return nil, err
		}
		if err := transfer(deps, info.Sender, contract, msg.SendNft.TokenID); err != nil {
			return nil, err
		}
		hook, err := ReceiveMsg{Sender: info.Sender, TokenID: msg.SendNft.TokenID, Msg: msg.SendNft.Msg}.IntoCosmosMsg(contract)
		if err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddAttribute("action", "send_nft").
			AddAttribute("sender", info.Sender).
			AddAttribute("recipient", contract).
			AddAttribute("token_id", msg.SendNft.TokenID).
			AddMessage(hook), nil
	case msg.Approve != nil:
		tok, err := loadToken(deps.Storage, msg.Approve.TokenID)
		if err != nil {
			return nil, err
		}
		isOperator, err := deps.Storage.KVGet(operatorKey(tok.Owner, info.Sender), nil)
		if err != nil {
			return nil, err
		}
		if tok.Owner != info.Sender && !isOperator {
			return nil, cerrors.ErrUnauthorized
		}
		spender, err := common.ValidateAddr(deps.API, msg.Approve.Spender)
		if err != nil {
			return nil, err
		}
		tok.Approvals = append(tok.Approvals, spender)
		if err := deps.Storage.KVPut(tokenKey(msg.Approve.TokenID), tok); err != nil {
			return nil, err
		}
		return types.NewResponse().AddAttribute("action", "approve").AddAttribute("spender", spender).AddAttribute("token_id", msg.Approve.TokenID), nil
	case msg.ApproveAll != nil:
		operator, err := common.ValidateAddr(deps.API, msg.ApproveAll.Operator)
		if err != nil {
			return nil, err
		}
		if err := deps.Storage.KVPut(operatorKey(info.Sender, operator), true); err != nil {
			return nil, err
		}
		return types.NewResponse().AddAttribute("action", "approve_all").AddAttribute("operator", operator), nil
	case msg.RevokeAll != nil:
		if err := deps.Storage.KVDelete(operatorKey(info.Sender, msg.RevokeAll.Operator)); err != nil {
			return nil, err
		}
		return types.NewResponse().AddAttribute("action", "revoke_all").AddAttribute("operator", msg.RevokeAll.Operator), nil
	}
	return nil, cerrors.ErrInvalidMessage
}

func (c *Contract) Query(deps types.Deps, _ types.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.OwnerOf != nil:
		tok, err := loadToken(deps.Storage, msg.OwnerOf.TokenID)
		if err != nil {
			return nil, err
		}
		approvals := tok.Approvals
		if approvals == nil {
			approvals = []string{}
		}
		return json.Marshal(OwnerOfResponse{Owner: tok.Owner, Approvals: approvals})
	case msg.NftInfo != nil:
		tok, err := loadToken(deps.Storage, msg.NftInfo.TokenID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(NftInfoResponse{TokenURI: tok.TokenURI})
	case msg.ContractInfo != nil:
		var meta storedInfo
		if _, err := deps.Storage.KVGet(infoKey, &meta); err != nil {
			return nil, err
		}
		return json.Marshal(ContractInfoResponse{Name: meta.Name, Symbol: meta.Symbol})
	}
	return nil, cerrors.ErrInvalidMessage
}
