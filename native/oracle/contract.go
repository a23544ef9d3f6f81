// Package oracle stores owner-curated NFT collection prices per unit of
// account.
package oracle

import (
	"encoding/json"
	"math/big"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/asset"
	"nftfi/native/common"
)

const (
	CodeName = "oracle"
	// DefaultTimeout is the price lifetime in seconds.
	DefaultTimeout uint64 = 8 * 3600
)

var ErrPriceNotFound = cerrors.New(cerrors.KindExternal, "price_not_found", "no price for collection")

var infoKey = []byte("oracle/info")

func priceKey(contract string, unit asset.Info) []byte {
	kind := "coin"
	if unit.IsCw20() {
		kind = "cw20"
	}
	return []byte("oracle/price/" + contract + "/" + kind + "/" + unit.Key())
}

type storedInfo struct {
	Name    string
	Owner   string
	Timeout uint64
}

type storedPrice struct {
	Price       *big.Int
	OracleOwner string
	LastUpdate  uint64
}

type Contract struct{}

func New() *Contract { return &Contract{} }

func loadInfo(store types.Store) (storedInfo, error) {
	var info storedInfo
	ok, err := store.KVGet(infoKey, &info)
	if err != nil {
		return storedInfo{}, err
	}
	if !ok {
		return storedInfo{}, cerrors.ErrNotFound.Wrapf("oracle info")
	}
	return info, nil
}

func (c *Contract) Instantiate(deps types.Deps, _ types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("%v", err)
	}
	if err := common.ValidateName(msg.Name); err != nil {
		return nil, err
	}
	stored := storedInfo{Name: msg.Name, Owner: info.Sender, Timeout: DefaultTimeout}
	if msg.Owner != nil {
		owner, err := common.ValidateAddr(deps.API, *msg.Owner)
		if err != nil {
			return nil, err
		}
		stored.Owner = owner
	}
	if msg.Timeout != nil {
		stored.Timeout = *msg.Timeout
	}
	if err := deps.Storage.KVPut(infoKey, stored); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "instantiate").AddAttribute("owner", stored.Owner), nil
}

func (c *Contract) Execute(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	stored, err := loadInfo(deps.Storage)
	if err != nil {
		return nil, err
	}
	switch {
	case msg.SetNftPrice != nil:
		return setNftPrice(deps, env, info, stored, *msg.SetNftPrice)
	case msg.SetOwner != nil:
		if info.Sender != stored.Owner {
			return nil, cerrors.ErrUnauthorized
		}
		owner, err := common.ValidateAddr(deps.API, msg.SetOwner.Owner)
		if err != nil {
			return nil, err
		}
		stored.Owner = owner
		if err := deps.Storage.KVPut(infoKey, stored); err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddAttribute("action", "parameter_update").
			AddAttribute("parameter", "owner").
			AddAttribute("value", owner), nil
	case msg.SetTimeout != nil:
		if info.Sender != stored.Owner {
			return nil, cerrors.ErrUnauthorized
		}
		stored.Timeout = msg.SetTimeout.Timeout
		if err := deps.Storage.KVPut(infoKey, stored); err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddAttribute("action", "parameter_update").
			AddAttribute("parameter", "timeout").
			AddAttribute("value", big.NewInt(0).SetUint64(stored.Timeout).String()), nil
	}
	return nil, cerrors.ErrInvalidMessage
}

// setNftPrice lets the contract owner publish a first price for a
// collection; afterwards only that price's oracle owner may update it.
func setNftPrice(deps types.Deps, env types.Env, info types.MessageInfo, stored storedInfo, msg SetNftPrice) (*types.Response, error) {
	contract, err := common.ValidateAddr(deps.API, msg.Contract)
	if err != nil {
		return nil, err
	}
	if err := msg.Unit.Validate(deps.API); err != nil {
		return nil, err
	}
	if msg.Price == nil || msg.Price.Sign() < 0 {
		return nil, cerrors.ErrInvalidMessage.Wrapf("price must be set")
	}
	if err := common.CheckU128(msg.Price); err != nil {
		return nil, err
	}
	oracleOwner := info.Sender
	if msg.OracleOwner != nil {
		if oracleOwner, err = common.ValidateAddr(deps.API, *msg.OracleOwner); err != nil {
			return nil, err
		}
	}
	key := priceKey(contract, msg.Unit)
	var current storedPrice
	ok, err := deps.Storage.KVGet(key, &current)
	if err != nil {
		return nil, err
	}
	allowed := stored.Owner
	if ok {
		allowed = current.OracleOwner
	}
	if info.Sender != allowed {
		return nil, cerrors.ErrUnauthorized
	}
	next := storedPrice{Price: msg.Price, OracleOwner: oracleOwner, LastUpdate: env.Block.Time}
	if err := deps.Storage.KVPut(key, next); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "set_oracle_price").
		AddAttribute("nft", contract).
		AddAttribute("unit", msg.Unit.Key()).
		AddAttribute("price", msg.Price.String()), nil
}

func (c *Contract) Query(deps types.Deps, env types.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.NftPrice != nil:
		return common.EncodeResponse(QueryNftPrice(deps, env, msg.NftPrice.Contract, msg.NftPrice.Unit))
	case msg.ContractInfo != nil:
		info, err := loadInfo(deps.Storage)
		return common.EncodeResponse(ContractInfoResponse{Name: info.Name, Owner: info.Owner, Timeout: info.Timeout}, err)
	}
	return nil, cerrors.ErrInvalidMessage
}

func QueryNftPrice(deps types.Deps, env types.Env, contract string, unit asset.Info) (NftPriceResponse, error) {
	info, err := loadInfo(deps.Storage)
	if err != nil {
		return NftPriceResponse{}, err
	}
	var price storedPrice
	ok, err := deps.Storage.KVGet(priceKey(contract, unit), &price)
	if err != nil {
		return NftPriceResponse{}, err
	}
	if !ok {
		return NftPriceResponse{}, ErrPriceNotFound.With("contract", contract, "unit", unit.Key())
	}
	return NftPriceResponse{
		Contract:    contract,
		Price:       common.Amount(price.Price),
		Unit:        unit,
		OracleOwner: price.OracleOwner,
		Timeout:     env.Block.Time > price.LastUpdate+info.Timeout,
	}, nil
}
