package vault

import (
	"encoding/json"
	"math/big"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
	"nftfi/native/tokens/cw20"
)

func positive(amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return ErrZeroDeposit
	}
	if amount.Sign() < 0 {
		return cerrors.ErrInvalidMessage.Wrapf("negative amount")
	}
	return common.CheckU128(amount)
}

// sentUnderlying returns the amount of native underlying attached to the
// call. Vaults over a cw20 underlying accept no native funds at all.
func sentUnderlying(st State, funds []types.Coin) (*big.Int, error) {
	coins := types.Coins(funds).Normalize()
	if st.Underlying.IsCw20() {
		if len(coins) > 0 {
			return nil, ErrWrongAssetDeposited.With("sent", coins[0].Denom, "expected", st.Underlying.Key())
		}
		return new(big.Int), nil
	}
	denom := *st.Underlying.Coin
	switch len(coins) {
	case 0:
		return new(big.Int), nil
	case 1:
		if coins[0].Denom != denom {
			return nil, ErrWrongAssetDeposited.With("sent", coins[0].Denom, "expected", denom)
		}
		return common.Amount(coins[0].Amount), nil
	}
	return nil, ErrWrongAssetDeposited.With("sent", coins[1].Denom, "expected", denom)
}

// pull moves amount of underlying into the vault. Native coins are already
// attached, so only cw20 underlyings need a message.
func pull(st State, env types.Env, owner string, amount *big.Int) ([]types.CosmosMsg, error) {
	if !st.Underlying.IsCw20() {
		return nil, nil
	}
	msg, err := cw20.TransferFromMsg(*st.Underlying.Cw20, owner, env.Contract.Address, amount)
	if err != nil {
		return nil, err
	}
	return []types.CosmosMsg{msg}, nil
}

func payOut(st State, env types.Env, receiver string, amount *big.Int) (types.CosmosMsg, error) {
	return st.Underlying.WithAmount(amount).TransferMsg(env.Contract.Address, receiver)
}

func deposit(deps types.Deps, env types.Env, info types.MessageInfo, msg Deposit) (*types.Response, error) {
	if err := positive(msg.Assets); err != nil {
		return nil, err
	}
	receiver, err := common.ValidateAddr(deps.API, msg.Receiver)
	if err != nil {
		return nil, err
	}
	st, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	sent, err := sentUnderlying(st, info.Funds)
	if err != nil {
		return nil, err
	}
	if st.Underlying.IsNative() && sent.Cmp(msg.Assets) != 0 {
		return nil, ErrInsufficientAssetDeposited.With("sent", sent.String(), "expected", msg.Assets.String())
	}
	t, err := loadTotals(deps, env, st, sent)
	if err != nil {
		return nil, err
	}
	shares, err := t.toShares(msg.Assets, false)
	if err != nil {
		return nil, err
	}
	if shares.Sign() == 0 {
		return nil, ErrZeroShares
	}
	if err := cw20.NewLedger(deps.Storage).Mint(receiver, shares); err != nil {
		return nil, err
	}
	msgs, err := pull(st, env, info.Sender, msg.Assets)
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddMessages(msgs...).
		AddAttribute("action", "deposit").
		AddAttribute("caller", info.Sender).
		AddAttribute("owner", receiver).
		AddAttribute("assets", msg.Assets.String()).
		AddAttribute("shares", shares.String()), nil
}

func mint(deps types.Deps, env types.Env, info types.MessageInfo, msg Mint) (*types.Response, error) {
	if err := positive(msg.Shares); err != nil {
		return nil, err
	}
	receiver, err := common.ValidateAddr(deps.API, msg.Receiver)
	if err != nil {
		return nil, err
	}
	st, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	sent, err := sentUnderlying(st, info.Funds)
	if err != nil {
		return nil, err
	}
	t, err := loadTotals(deps, env, st, sent)
	if err != nil {
		return nil, err
	}
	assets, err := t.toAssets(msg.Shares, true)
	if err != nil {
		return nil, err
	}
	if assets.Sign() == 0 {
		return nil, ErrZeroAssets
	}
	res := types.NewResponse()
	if st.Underlying.IsNative() {
		if sent.Cmp(assets) < 0 {
			return nil, ErrInsufficientAssetDeposited.With("sent", sent.String(), "expected", assets.String())
		}
		if surplus := new(big.Int).Sub(sent, assets); surplus.Sign() > 0 {
			res.AddMessage(types.NewBankSend(receiver, types.NewCoinBig(*st.Underlying.Coin, surplus)))
		}
	} else {
		msgs, err := pull(st, env, info.Sender, assets)
		if err != nil {
			return nil, err
		}
		res.AddMessages(msgs...)
	}
	if err := cw20.NewLedger(deps.Storage).Mint(receiver, msg.Shares); err != nil {
		return nil, err
	}
	return res.
		AddAttribute("action", "mint").
		AddAttribute("caller", info.Sender).
		AddAttribute("owner", receiver).
		AddAttribute("assets", assets.String()).
		AddAttribute("shares", msg.Shares.String()), nil
}

// burnShares removes shares from owner, spending the caller's allowance when
// it acts on someone else's behalf.
func burnShares(deps types.Deps, env types.Env, sender, owner string, shares *big.Int) error {
	ledger := cw20.NewLedger(deps.Storage)
	if sender != owner {
		if err := ledger.DeductAllowance(env.Block, owner, sender, shares); err != nil {
			return err
		}
	}
	return ledger.Burn(owner, shares)
}

func withdraw(deps types.Deps, env types.Env, info types.MessageInfo, msg Withdraw) (*types.Response, error) {
	if err := positive(msg.Assets); err != nil {
		return nil, err
	}
	owner, err := common.ValidateAddr(deps.API, msg.Owner)
	if err != nil {
		return nil, err
	}
	receiver, err := common.ValidateAddr(deps.API, msg.Receiver)
	if err != nil {
		return nil, err
	}
	st, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	t, err := loadTotals(deps, env, st, nil)
	if err != nil {
		return nil, err
	}
	shares, err := t.toShares(msg.Assets, true)
	if err != nil {
		return nil, err
	}
	if err := burnShares(deps, env, info.Sender, owner, shares); err != nil {
		return nil, err
	}
	out, err := payOut(st, env, receiver, msg.Assets)
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddMessage(out).
		AddAttribute("action", "withdraw").
		AddAttribute("caller", info.Sender).
		AddAttribute("receiver", receiver).
		AddAttribute("owner", owner).
		AddAttribute("assets", msg.Assets.String()).
		AddAttribute("shares", shares.String()), nil
}

func redeem(deps types.Deps, env types.Env, info types.MessageInfo, msg Redeem) (*types.Response, error) {
	if err := positive(msg.Shares); err != nil {
		return nil, err
	}
	owner, err := common.ValidateAddr(deps.API, msg.Owner)
	if err != nil {
		return nil, err
	}
	receiver, err := common.ValidateAddr(deps.API, msg.Receiver)
	if err != nil {
		return nil, err
	}
	st, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	t, err := loadTotals(deps, env, st, nil)
	if err != nil {
		return nil, err
	}
	assets, err := t.toAssets(msg.Shares, false)
	if err != nil {
		return nil, err
	}
	if assets.Sign() == 0 {
		return nil, ErrZeroAssets
	}
	if err := burnShares(deps, env, info.Sender, owner, msg.Shares); err != nil {
		return nil, err
	}
	out, err := payOut(st, env, receiver, assets)
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddMessage(out).
		AddAttribute("action", "redeem").
		AddAttribute("caller", info.Sender).
		AddAttribute("receiver", receiver).
		AddAttribute("owner", owner).
		AddAttribute("assets", assets.String()).
		AddAttribute("shares", msg.Shares.String()), nil
}

func borrow(deps types.Deps, env types.Env, info types.MessageInfo, msg Borrow) (*types.Response, error) {
	st, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	if st.Borrower == "" || info.Sender != st.Borrower {
		return nil, cerrors.ErrUnauthorized
	}
	if err := positive(msg.Assets); err != nil {
		return nil, err
	}
	receiver, err := common.ValidateAddr(deps.API, msg.Receiver)
	if err != nil {
		return nil, err
	}
	total, err := common.Add128(st.TotalBorrowed, msg.Assets)
	if err != nil {
		return nil, err
	}
	st.TotalBorrowed = total
	if err := saveState(deps.Storage, st); err != nil {
		return nil, err
	}
	out, err := payOut(st, env, receiver, msg.Assets)
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddMessage(out).
		AddAttribute("action", "borrow").
		AddAttribute("caller", info.Sender).
		AddAttribute("receiver", receiver).
		AddAttribute("assets", msg.Assets.String()), nil
}

func repay(deps types.Deps, env types.Env, info types.MessageInfo, msg Repay) (*types.Response, error) {
	if err := positive(msg.Assets); err != nil {
		return nil, err
	}
	st, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	sent, err := sentUnderlying(st, info.Funds)
	if err != nil {
		return nil, err
	}
	res := types.NewResponse()
	if st.Underlying.IsNative() {
		if sent.Cmp(msg.Assets) != 0 {
			return nil, ErrInsufficientAssetDeposited.With("sent", sent.String(), "expected", msg.Assets.String())
		}
	} else {
		owner := info.Sender
		if msg.Owner != nil {
			if owner, err = common.ValidateAddr(deps.API, *msg.Owner); err != nil {
				return nil, err
			}
		}
		msgs, err := pull(st, env, owner, msg.Assets)
		if err != nil {
			return nil, err
		}
		res.AddMessages(msgs...)
	}
	return settleRepay(deps, st, info.Sender, msg.Assets, res)
}

// settleRepay clears up to assets of outstanding debt. Anything above the
// debt stays in the vault and raises the share price.
func settleRepay(deps types.Deps, st State, caller string, assets *big.Int, res *types.Response) (*types.Response, error) {
	repaid := common.Min(assets, st.TotalBorrowed)
	remaining, err := common.Sub(st.TotalBorrowed, repaid)
	if err != nil {
		return nil, err
	}
	st.TotalBorrowed = remaining
	if err := saveState(deps.Storage, st); err != nil {
		return nil, err
	}
	return res.
		AddAttribute("action", "repay").
		AddAttribute("caller", caller).
		AddAttribute("assets", assets.String()).
		AddAttribute("debt_repaid", repaid.String()).
		AddAttribute("raw_deposit", new(big.Int).Sub(assets, repaid).String()), nil
}

// receive handles underlying cw20 tokens sent with a Repay payload. Any other
// inner message is refused.
func receive(deps types.Deps, info types.MessageInfo, msg cw20.ReceiveMsg) (*types.Response, error) {
	st, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	if !st.Underlying.IsCw20() || info.Sender != *st.Underlying.Cw20 {
		return nil, ErrWrongAssetDeposited.With("sent", info.Sender, "expected", st.Underlying.Key())
	}
	var inner ExecuteMsg
	if err := json.Unmarshal(msg.Msg, &inner); err != nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("%v", err)
	}
	if _, err := common.Variant(&inner); err != nil || inner.Repay == nil {
		return nil, cerrors.ErrInvalidMessage
	}
	if err := positive(inner.Repay.Assets); err != nil {
		return nil, err
	}
	if common.Amount(msg.Amount).Cmp(inner.Repay.Assets) != 0 {
		return nil, ErrInsufficientAssetDeposited.With("sent", common.Amount(msg.Amount).String(), "expected", inner.Repay.Assets.String())
	}
	return settleRepay(deps, st, msg.Sender, inner.Repay.Assets, types.NewResponse())
}

func setBorrower(deps types.Deps, info types.MessageInfo, msg SetBorrower) (*types.Response, error) {
	st, err := loadState(deps.Storage)
	if err != nil {
		return nil, err
	}
	allowed := st.Borrower
	if allowed == "" {
		allowed = st.Admin
	}
	if info.Sender != allowed {
		return nil, cerrors.ErrUnauthorized
	}
	st.Borrower = ""
	if msg.Borrower != nil {
		if st.Borrower, err = common.ValidateAddr(deps.API, *msg.Borrower); err != nil {
			return nil, err
		}
	}
	if err := saveState(deps.Storage, st); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "set_borrower").
		AddAttribute("borrower", st.Borrower), nil
}
