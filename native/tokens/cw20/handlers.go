package cw20

import (
	"math/big"
	"sort"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

func nonZero(amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return ErrInvalidZeroAmount
	}
	if amount.Sign() < 0 {
		return cerrors.ErrInvalidMessage.Wrapf("negative amount")
	}
	return common.CheckU128(amount)
}

// InitLedger validates and stores token info and initial balances.
func InitLedger(deps types.Deps, msg InstantiateMsg) error {
	info := TokenInfo{Name: msg.Name, Symbol: msg.Symbol, Decimals: msg.Decimals, TotalSupply: new(big.Int)}
	if err := info.Validate(); err != nil {
		return err
	}
	if msg.Mint != nil {
		minter, err := common.ValidateAddr(deps.API, msg.Mint.Minter)
		if err != nil {
			return err
		}
		info.Minter = minter
		if msg.Mint.Cap != nil {
			info.Cap = common.Amount(msg.Mint.Cap)
		}
	}
	seen := make(map[string]struct{}, len(msg.InitialBalances))
	ledger := NewLedger(deps.Storage)
	total := new(big.Int)
	for _, bal := range msg.InitialBalances {
		addr, err := common.ValidateAddr(deps.API, bal.Address)
		if err != nil {
			return err
		}
		if _, dup := seen[addr]; dup {
			return ErrDuplicateInitialAddr
		}
		seen[addr] = struct{}{}
		amount := common.Amount(bal.Amount)
		next, err := common.Add128(total, amount)
		if err != nil {
			return err
		}
		total = next
		if err := ledger.setBalance(addr, amount, false); err != nil {
			return err
		}
	}
	if info.Cap != nil && total.Cmp(info.Cap) > 0 {
		return ErrCannotExceedCap
	}
	info.TotalSupply = total
	return ledger.SetTokenInfo(info)
}

func ExecuteTransfer(deps types.Deps, info types.MessageInfo, msg Transfer) (*types.Response, error) {
	if err := nonZero(msg.Amount); err != nil {
		return nil, err
	}
	recipient, err := common.ValidateAddr(deps.API, msg.Recipient)
	if err != nil {
		return nil, err
	}
	if err := NewLedger(deps.Storage).Move(info.Sender, recipient, msg.Amount); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "transfer").
		AddAttribute("from", info.Sender).
		AddAttribute("to", recipient).
		AddAttribute("amount", msg.Amount.String()), nil
}

func ExecuteTransferFrom(deps types.Deps, env types.Env, info types.MessageInfo, msg TransferFrom) (*types.Response, error) {
	if err := nonZero(msg.Amount); err != nil {
		return nil, err
	}
	owner, err := common.ValidateAddr(deps.API, msg.Owner)
	if err != nil {
		return nil, err
	}
	recipient, err := common.ValidateAddr(deps.API, msg.Recipient)
	if err != nil {
		return nil, err
	}
	ledger := NewLedger(deps.Storage)
	if err := ledger.DeductAllowance(env.Block, owner, info.Sender, msg.Amount); err != nil {
		return nil, err
	}
	if err := ledger.Move(owner, recipient, msg.Amount); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "transfer_from").
		AddAttribute("from", owner).
		AddAttribute("to", recipient).
		AddAttribute("by", info.Sender).
		AddAttribute("amount", msg.Amount.String()), nil
}

func ExecuteSend(deps types.Deps, info types.MessageInfo, msg Send) (*types.Response, error) {
	if err := nonZero(msg.Amount); err != nil {
		return nil, err
	}
	contract, err := common.ValidateAddr(deps.API, msg.Contract)
	if err != nil {
		return nil, err
	}
	if err := NewLedger(deps.Storage).Move(info.Sender, contract, msg.Amount); err != nil {
		return nil, err
	}
	hook, err := ReceiveMsg{Sender: info.Sender, Amount: msg.Amount, Msg: msg.Msg}.IntoCosmosMsg(contract)
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "send").
		AddAttribute("from", info.Sender).
		AddAttribute("to", contract).
		AddAttribute("amount", msg.Amount.String()).
		AddMessage(hook), nil
}

func ExecuteSendFrom(deps types.Deps, env types.Env, info types.MessageInfo, msg SendFrom) (*types.Response, error) {
	if err := nonZero(msg.Amount); err != nil {
		return nil, err
	}
	owner, err := common.ValidateAddr(deps.API, msg.Owner)
	if err != nil {
		return nil, err
	}
	contract, err := common.ValidateAddr(deps.API, msg.Contract)
	if err != nil {
		return nil, err
	}
	ledger := NewLedger(deps.Storage)
	if err := ledger.DeductAllowance(env.Block, owner, info.Sender, msg.Amount); err != nil {
		return nil, err
	}
	if err := ledger.Move(owner, contract, msg.Amount); err != nil {
		return nil, err
	}
	hook, err := ReceiveMsg{Sender: info.Sender, Amount: msg.Amount, Msg: msg.Msg}.IntoCosmosMsg(contract)
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "send_from").
		AddAttribute("from", owner).
		AddAttribute("to", contract).
		AddAttribute("by", info.Sender).
		AddAttribute("amount", msg.Amount.String()).
		AddMessage(hook), nil
}

func ExecuteBurn(deps types.Deps, info types.MessageInfo, msg Burn) (*types.Response, error) {
	if err := nonZero(msg.Amount); err != nil {
		return nil, err
	}
	if err := NewLedger(deps.Storage).Burn(info.Sender, msg.Amount); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "burn").
		AddAttribute("from", info.Sender).
		AddAttribute("amount", msg.Amount.String()), nil
}

func ExecuteBurnFrom(deps types.Deps, env types.Env, info types.MessageInfo, msg BurnFrom) (*types.Response, error) {
	if err := nonZero(msg.Amount); err != nil {
		return nil, err
	}
	owner, err := common.ValidateAddr(deps.API, msg.Owner)
	if err != nil {
		return nil, err
	}
	ledger := NewLedger(deps.Storage)
	if err := ledger.DeductAllowance(env.Block, owner, info.Sender, msg.Amount); err != nil {
		return nil, err
	}
	if err := ledger.Burn(owner, msg.Amount); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "burn_from").
		AddAttribute("from", owner).
		AddAttribute("by", info.Sender).
		AddAttribute("amount", msg.Amount.String()), nil
}

func ExecuteIncreaseAllowance(deps types.Deps, env types.Env, info types.MessageInfo, msg IncreaseAllowance) (*types.Response, error) {
	spender, err := common.ValidateAddr(deps.API, msg.Spender)
	if err != nil {
		return nil, err
	}
	if _, err := NewLedger(deps.Storage).IncreaseAllowance(env.Block, info.Sender, spender, common.Amount(msg.Amount), msg.Expires); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "increase_allowance").
		AddAttribute("owner", info.Sender).
		AddAttribute("spender", spender).
		AddAttribute("amount", common.Amount(msg.Amount).String()), nil
}

func ExecuteDecreaseAllowance(deps types.Deps, env types.Env, info types.MessageInfo, msg DecreaseAllowance) (*types.Response, error) {
	spender, err := common.ValidateAddr(deps.API, msg.Spender)
	if err != nil {
		return nil, err
	}
	if _, err := NewLedger(deps.Storage).DecreaseAllowance(env.Block, info.Sender, spender, common.Amount(msg.Amount), msg.Expires); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "decrease_allowance").
		AddAttribute("owner", info.Sender).
		AddAttribute("spender", spender).
		AddAttribute("amount", common.Amount(msg.Amount).String()), nil
}

func ExecuteMint(deps types.Deps, info types.MessageInfo, msg Mint) (*types.Response, error) {
	if err := nonZero(msg.Amount); err != nil {
		return nil, err
	}
	ledger := NewLedger(deps.Storage)
	token, err := ledger.TokenInfo()
	if err != nil {
		return nil, err
	}
	if token.Minter == "" || token.Minter != info.Sender {
		return nil, cerrors.ErrUnauthorized
	}
	recipient, err := common.ValidateAddr(deps.API, msg.Recipient)
	if err != nil {
		return nil, err
	}
	if err := ledger.Mint(recipient, msg.Amount); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "mint").
		AddAttribute("to", recipient).
		AddAttribute("amount", msg.Amount.String()), nil
}

func QueryBalance(deps types.Deps, addr string) (BalanceResponse, error) {
	bal, err := NewLedger(deps.Storage).Balance(addr)
	if err != nil {
		return BalanceResponse{}, err
	}
	return BalanceResponse{Balance: bal}, nil
}

func QueryTokenInfo(deps types.Deps) (TokenInfoResponse, error) {
	info, err := NewLedger(deps.Storage).TokenInfo()
	if err != nil {
		return TokenInfoResponse{}, err
	}
	return TokenInfoResponse{Name: info.Name, Symbol: info.Symbol, Decimals: info.Decimals, TotalSupply: info.TotalSupply}, nil
}

func QueryMinter(deps types.Deps) (*MinterResponse, error) {
	info, err := NewLedger(deps.Storage).TokenInfo()
	if err != nil {
		return nil, err
	}
	if info.Minter == "" {
		return nil, nil
	}
	return &MinterResponse{Minter: info.Minter, Cap: info.Cap}, nil
}

// QueryAllowance reports an expired grant as zero.
func QueryAllowance(deps types.Deps, env types.Env, owner, spender string) (AllowanceResponse, error) {
	a, err := NewLedger(deps.Storage).Allowance(owner, spender)
	if err != nil {
		return AllowanceResponse{}, err
	}
	if a.Expires.IsExpired(env.Block) {
		return AllowanceResponse{Allowance: new(big.Int), Expires: a.Expires}, nil
	}
	return AllowanceResponse{Allowance: a.Amount, Expires: a.Expires}, nil
}

type AllowanceInfo struct {
	Spender   string     `json:"spender"`
	Allowance *big.Int   `json:"allowance"`
	Expires   Expiration `json:"expires"`
}

type AllAllowancesResponse struct {
	Allowances []AllowanceInfo `json:"allowances"`
}

type AllAccountsResponse struct {
	Accounts []string `json:"accounts"`
}

func QueryAllAllowances(deps types.Deps, owner string, startAfter *string, limit *uint32) (AllAllowancesResponse, error) {
	grants, err := NewLedger(deps.Storage).Allowances(owner)
	if err != nil {
		return AllAllowancesResponse{}, err
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].Spender < grants[j].Spender })
	page := common.Page(grants, func(a Allowance) bool { return startAfter == nil || a.Spender > *startAfter }, limit)
	out := AllAllowancesResponse{Allowances: make([]AllowanceInfo, 0, len(page))}
	for _, a := range page {
		out.Allowances = append(out.Allowances, AllowanceInfo{Spender: a.Spender, Allowance: a.Amount, Expires: a.Expires})
	}
	return out, nil
}

func QueryAllAccounts(deps types.Deps, startAfter *string, limit *uint32) (AllAccountsResponse, error) {
	accounts, err := NewLedger(deps.Storage).Accounts()
	if err != nil {
		return AllAccountsResponse{}, err
	}
	sort.Strings(accounts)
	page := common.Page(accounts, func(a string) bool { return startAfter == nil || a > *startAfter }, limit)
	return AllAccountsResponse{Accounts: page}, nil
}
