// Package fees implements the fee distributor: protocol fees are split
// between the collections that generated them and a treasury.
package fees

import (
	"encoding/json"
	"sort"
	"strconv"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

const CodeName = "fee_distributor"

var (
	ErrDepositNotCorrect = cerrors.New(cerrors.KindValidation, "deposit_not_correct", "exactly one coin must be deposited")
	ErrAllocationTooHigh = cerrors.New(cerrors.KindValidation, "allocation_too_high", "projects allocation above 100 percent")
)

type Contract struct{}

func New() *Contract { return &Contract{} }

func loadInfo(store types.Store) (storedInfo, error) {
	var info storedInfo
	ok, err := store.KVGet(infoKey, &info)
	if err != nil {
		return storedInfo{}, err
	}
	if !ok {
		return storedInfo{}, cerrors.ErrNotFound.Wrapf("fee distributor info")
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
	treasury, err := common.ValidateAddr(deps.API, msg.Treasury)
	if err != nil {
		return nil, err
	}
	stored := storedInfo{Name: msg.Name, Owner: info.Sender, Treasury: treasury, ProjectsAllocation: DefaultProjectsAllocation}
	if msg.Owner != nil {
		if stored.Owner, err = common.ValidateAddr(deps.API, *msg.Owner); err != nil {
			return nil, err
		}
	}
	if msg.ProjectsAllocation != nil {
		stored.ProjectsAllocation = *msg.ProjectsAllocation
	}
	if stored.ProjectsAllocation > 100 {
		return nil, ErrAllocationTooHigh
	}
	if err := deps.Storage.KVPut(infoKey, stored); err != nil {
		return nil, err
	}
	return types.NewResponse().AddAttribute("action", "init").AddAttribute("contract_name", CodeName), nil
}

func (c *Contract) Execute(deps types.Deps, _ types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	stored, err := loadInfo(deps.Storage)
	if err != nil {
		return nil, err
	}
	switch {
	case msg.DepositFees != nil:
		return depositFees(deps, info, stored, msg.DepositFees.Addresses)
	case msg.WithdrawFees != nil:
		msgs, err := withdrawRegistered(deps, msg.WithdrawFees.Addresses)
		if err != nil {
			return nil, err
		}
		return types.NewResponse().AddAttribute("action", "distributed_fee").AddMessages(msgs...), nil
	case msg.AddAssociatedAddress != nil:
		if info.Sender != stored.Owner {
			return nil, cerrors.ErrUnauthorized
		}
		addr, err := common.ValidateAddr(deps.API, msg.AddAssociatedAddress.Address)
		if err != nil {
			return nil, err
		}
		feeAddr, err := common.ValidateAddr(deps.API, msg.AddAssociatedAddress.FeeAddress)
		if err != nil {
			return nil, err
		}
		if err := deps.Storage.KVPut(associatedKey(addr), feeAddr); err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddAttribute("action", "associated_address_update").
			AddAttribute("address", addr).
			AddAttribute("associated_address", feeAddr), nil
	case msg.ModifyContractInfo != nil:
		if info.Sender != stored.Owner {
			return nil, cerrors.ErrUnauthorized
		}
		m := msg.ModifyContractInfo
		if m.Owner != nil {
			if stored.Owner, err = common.ValidateAddr(deps.API, *m.Owner); err != nil {
				return nil, err
			}
		}
		if m.Treasury != nil {
			if stored.Treasury, err = common.ValidateAddr(deps.API, *m.Treasury); err != nil {
				return nil, err
			}
		}
		if m.ProjectsAllocation != nil {
			stored.ProjectsAllocation = *m.ProjectsAllocation
		}
		if stored.ProjectsAllocation > 100 {
			return nil, ErrAllocationTooHigh
		}
		if err := deps.Storage.KVPut(infoKey, stored); err != nil {
			return nil, err
		}
		return types.NewResponse().
			AddAttribute("action", "parameter_update").
			AddAttribute("projects_allocation", allocationString(stored.ProjectsAllocation)), nil
	}
	return nil, cerrors.ErrInvalidMessage
}

func depositFees(deps types.Deps, info types.MessageInfo, stored storedInfo, addresses []string) (*types.Response, error) {
	if len(info.Funds) != 1 {
		return nil, ErrDepositNotCorrect
	}
	fund := info.Funds[0]
	split := Apply(ApplyInput{Gross: fund.Amount, Allocation: stored.ProjectsAllocation, Addresses: len(addresses)})
	for _, raw := range addresses {
		addr, err := common.ValidateAddr(deps.API, raw)
		if err != nil {
			return nil, err
		}
		balance, err := allocated(deps.Storage, addr)
		if err != nil {
			return nil, err
		}
		balance = credit(balance, fund.Denom, split.PerAddress)
		if err := deps.Storage.KVPut(allocatedKey(addr), encodeCoins(balance)); err != nil {
			return nil, err
		}
		if err := deps.Storage.KVAppend(addressesKey, []byte(addr)); err != nil {
			return nil, err
		}
	}
	payouts, err := withdrawRegistered(deps, addresses)
	if err != nil {
		return nil, err
	}
	res := types.NewResponse().
		AddAttribute("action", "saved_fee").
		AddAttribute("action", "distributed_fee").
		AddAttribute("per_address", split.PerAddress.String()).
		AddAttribute("treasury", split.Treasury.String())
	if split.Treasury.Sign() > 0 {
		res.AddMessage(types.NewBankSend(stored.Treasury, types.NewCoinBig(fund.Denom, split.Treasury)))
	}
	return res.AddMessages(payouts...), nil
}

// withdrawRegistered pays out the balances of the listed addresses that have
// an associated fee address. Unregistered addresses are skipped.
func withdrawRegistered(deps types.Deps, addresses []string) ([]types.CosmosMsg, error) {
	seen := make(map[string]struct{}, len(addresses))
	var msgs []types.CosmosMsg
	for _, raw := range addresses {
		addr, err := common.ValidateAddr(deps.API, raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		var feeAddr string
		ok, err := deps.Storage.KVGet(associatedKey(addr), &feeAddr)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		balance, err := allocated(deps.Storage, addr)
		if err != nil {
			return nil, err
		}
		balance = types.Coins(balance).Normalize()
		if len(balance) == 0 {
			continue
		}
		msgs = append(msgs, types.NewBankSend(feeAddr, balance...))
		if err := deps.Storage.KVPut(allocatedKey(addr), []storedCoin{}); err != nil {
			return nil, err
		}
	}
	return msgs, nil
}

func allocated(store types.Store, addr string) ([]types.Coin, error) {
	var stored []storedCoin
	if _, err := store.KVGet(allocatedKey(addr), &stored); err != nil {
		return nil, err
	}
	return decodeCoins(stored), nil
}

func (c *Contract) Query(deps types.Deps, _ types.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.ContractInfo != nil:
		info, err := loadInfo(deps.Storage)
		return common.EncodeResponse(ContractInfoResponse{
			Name:               info.Name,
			Owner:              info.Owner,
			Treasury:           info.Treasury,
			ProjectsAllocation: info.ProjectsAllocation,
		}, err)
	case msg.Amount != nil:
		return common.EncodeResponse(QueryAmount(deps, msg.Amount.Address))
	case msg.Addresses != nil:
		return common.EncodeResponse(QueryAddresses(deps, msg.Addresses.StartAfter, msg.Addresses.Limit))
	}
	return nil, cerrors.ErrInvalidMessage
}

func QueryAmount(deps types.Deps, address string) ([]types.Coin, error) {
	addr, err := common.ValidateAddr(deps.API, address)
	if err != nil {
		return nil, err
	}
	return allocated(deps.Storage, addr)
}

// QueryAddresses lists credited addresses in ascending order.
func QueryAddresses(deps types.Deps, startAfter *string, limit *uint32) ([]string, error) {
	var raw [][]byte
	if err := deps.Storage.KVGetList(addressesKey, &raw); err != nil {
		return nil, err
	}
	addrs := make([]string, 0, len(raw))
	for _, a := range raw {
		addrs = append(addrs, string(a))
	}
	sort.Strings(addrs)
	after := func(string) bool { return true }
	if startAfter != nil {
		start := *startAfter
		after = func(a string) bool { return a > start }
	}
	return common.Page(addrs, after, limit), nil
}

func allocationString(v uint64) string { return strconv.FormatUint(v, 10) }
