// Package vault implements a tokenized yield vault: fungible shares are
// minted against an underlying asset and a single borrower may draw and
// repay underlying against the pool.
package vault

import (
	"encoding/json"
	"math/big"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
	"nftfi/native/tokens/cw20"
)

// CodeName is the registry name of the vault code.
const CodeName = "vault"

type Contract struct{}

func New() *Contract { return &Contract{} }

func (c *Contract) Instantiate(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("%v", err)
	}
	if err := msg.Asset.Validate(deps.API); err != nil {
		return nil, err
	}
	st := State{Underlying: msg.Asset, TotalBorrowed: new(big.Int), Admin: info.Sender}
	if msg.Borrower != nil {
		borrower, err := common.ValidateAddr(deps.API, *msg.Borrower)
		if err != nil {
			return nil, err
		}
		st.Borrower = borrower
	}
	if err := saveState(deps.Storage, st); err != nil {
		return nil, err
	}
	// The vault is the only minter of its shares.
	mint := &cw20.MinterResponse{Minter: env.Contract.Address}
	if msg.Mint != nil {
		mint.Cap = msg.Mint.Cap
	}
	token := cw20.InstantiateMsg{
		Name:            msg.Name,
		Symbol:          msg.Symbol,
		Decimals:        msg.Decimals,
		InitialBalances: msg.InitialBalances,
		Mint:            mint,
	}
	if err := cw20.InitLedger(deps, token); err != nil {
		return nil, err
	}
	if err := cw20.InitMarketing(deps, msg.Marketing); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "instantiate").
		AddAttribute("underlying", msg.Asset.Key()).
		AddAttribute("borrower", st.Borrower), nil
}

func (c *Contract) Execute(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	switch {
	case msg.Transfer != nil:
		return cw20.ExecuteTransfer(deps, info, *msg.Transfer)
	case msg.TransferFrom != nil:
		return cw20.ExecuteTransferFrom(deps, env, info, *msg.TransferFrom)
	case msg.Send != nil:
		return cw20.ExecuteSend(deps, info, *msg.Send)
	case msg.SendFrom != nil:
		return cw20.ExecuteSendFrom(deps, env, info, *msg.SendFrom)
	case msg.Burn != nil:
		return cw20.ExecuteBurn(deps, info, *msg.Burn)
	case msg.BurnFrom != nil:
		return cw20.ExecuteBurnFrom(deps, env, info, *msg.BurnFrom)
	case msg.IncreaseAllowance != nil:
		return cw20.ExecuteIncreaseAllowance(deps, env, info, *msg.IncreaseAllowance)
	case msg.DecreaseAllowance != nil:
		return cw20.ExecuteDecreaseAllowance(deps, env, info, *msg.DecreaseAllowance)
	case msg.UpdateMarketing != nil:
		return cw20.ExecuteUpdateMarketing(deps, info, *msg.UpdateMarketing)
	case msg.UploadLogo != nil:
		return cw20.ExecuteUploadLogo(deps, info, *msg.UploadLogo)
	case msg.Deposit != nil:
		return deposit(deps, env, info, *msg.Deposit)
	case msg.Mint != nil:
		return mint(deps, env, info, *msg.Mint)
	case msg.Withdraw != nil:
		return withdraw(deps, env, info, *msg.Withdraw)
	case msg.Redeem != nil:
		return redeem(deps, env, info, *msg.Redeem)
	case msg.Borrow != nil:
		return borrow(deps, env, info, *msg.Borrow)
	case msg.Repay != nil:
		return repay(deps, env, info, *msg.Repay)
	case msg.SetBorrower != nil:
		return setBorrower(deps, info, *msg.SetBorrower)
	case msg.Receive != nil:
		return receive(deps, info, *msg.Receive)
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
		return common.EncodeResponse(cw20.QueryBalance(deps, msg.Balance.Address))
	case msg.TokenInfo != nil:
		return common.EncodeResponse(cw20.QueryTokenInfo(deps))
	case msg.Minter != nil:
		return common.EncodeResponse(cw20.QueryMinter(deps))
	case msg.Allowance != nil:
		return common.EncodeResponse(cw20.QueryAllowance(deps, env, msg.Allowance.Owner, msg.Allowance.Spender))
	case msg.AllAllowances != nil:
		q := msg.AllAllowances
		return common.EncodeResponse(cw20.QueryAllAllowances(deps, q.Owner, q.StartAfter, q.Limit))
	case msg.AllAccounts != nil:
		return common.EncodeResponse(cw20.QueryAllAccounts(deps, msg.AllAccounts.StartAfter, msg.AllAccounts.Limit))
	case msg.MarketingInfo != nil:
		return common.EncodeResponse(cw20.QueryMarketingInfo(deps))
	case msg.DownloadLogo != nil:
		return common.EncodeResponse(cw20.QueryDownloadLogo(deps))
	case msg.Asset != nil:
		st, err := loadState(deps.Storage)
		return common.EncodeResponse(st.Underlying, err)
	case msg.TotalAssets != nil:
		return common.EncodeResponse(QueryTotalAssets(deps, env))
	case msg.ConvertToShares != nil:
		return common.EncodeResponse(QueryConvertToShares(deps, env, msg.ConvertToShares.Assets))
	case msg.ConvertToAssets != nil:
		return common.EncodeResponse(QueryConvertToAssets(deps, env, msg.ConvertToAssets.Shares))
	case msg.PreviewDeposit != nil:
		return common.EncodeResponse(QueryConvertToShares(deps, env, msg.PreviewDeposit.Assets))
	case msg.PreviewMint != nil:
		return common.EncodeResponse(QueryPreviewMint(deps, env, msg.PreviewMint.Shares))
	case msg.PreviewWithdraw != nil:
		return common.EncodeResponse(QueryPreviewWithdraw(deps, env, msg.PreviewWithdraw.Assets))
	case msg.PreviewRedeem != nil:
		return common.EncodeResponse(QueryConvertToAssets(deps, env, msg.PreviewRedeem.Shares))
	case msg.MaxDeposit != nil, msg.MaxMint != nil:
		return common.EncodeResponse(AmountResponse{Amount: common.Amount(common.MaxUint128)}, nil)
	case msg.MaxWithdraw != nil:
		return common.EncodeResponse(QueryMaxWithdraw(deps, env, msg.MaxWithdraw.Owner))
	case msg.MaxRedeem != nil:
		bal, err := cw20.QueryBalance(deps, msg.MaxRedeem.Owner)
		return common.EncodeResponse(AmountResponse{Amount: bal.Balance}, err)
	case msg.VaultInfo != nil:
		return common.EncodeResponse(QueryVaultInfo(deps))
	}
	return nil, cerrors.ErrInvalidMessage
}

// QueryTotalAssets reports the underlying held plus what is lent out.
func QueryTotalAssets(deps types.Deps, env types.Env) (TotalAssetsResponse, error) {
	st, err := loadState(deps.Storage)
	if err != nil {
		return TotalAssetsResponse{}, err
	}
	t, err := loadTotals(deps, env, st, nil)
	if err != nil {
		return TotalAssetsResponse{}, err
	}
	return TotalAssetsResponse{TotalManagedAssets: t.assets}, nil
}

func QueryConvertToShares(deps types.Deps, env types.Env, assets *big.Int) (AmountResponse, error) {
	return previewShares(deps, env, assets, false)
}

// QueryPreviewWithdraw reports the shares burnt by withdraw, rounded up.
func QueryPreviewWithdraw(deps types.Deps, env types.Env, assets *big.Int) (AmountResponse, error) {
	return previewShares(deps, env, assets, true)
}

func previewShares(deps types.Deps, env types.Env, assets *big.Int, ceil bool) (AmountResponse, error) {
	st, err := loadState(deps.Storage)
	if err != nil {
		return AmountResponse{}, err
	}
	t, err := loadTotals(deps, env, st, nil)
	if err != nil {
		return AmountResponse{}, err
	}
	shares, err := t.toShares(common.Amount(assets), ceil)
	return AmountResponse{Amount: shares}, err
}

func QueryConvertToAssets(deps types.Deps, env types.Env, shares *big.Int) (AmountResponse, error) {
	return previewAssets(deps, env, shares, false)
}

// QueryPreviewMint reports the assets charged by mint, rounded up.
func QueryPreviewMint(deps types.Deps, env types.Env, shares *big.Int) (AmountResponse, error) {
	return previewAssets(deps, env, shares, true)
}

func previewAssets(deps types.Deps, env types.Env, shares *big.Int, ceil bool) (AmountResponse, error) {
	st, err := loadState(deps.Storage)
	if err != nil {
		return AmountResponse{}, err
	}
	t, err := loadTotals(deps, env, st, nil)
	if err != nil {
		return AmountResponse{}, err
	}
	assets, err := t.toAssets(common.Amount(shares), ceil)
	return AmountResponse{Amount: assets}, err
}

// QueryMaxWithdraw converts the owner's share balance with the share
// conversion, matching the reference vault interface.
func QueryMaxWithdraw(deps types.Deps, env types.Env, owner string) (AmountResponse, error) {
	bal, err := cw20.QueryBalance(deps, owner)
	if err != nil {
		return AmountResponse{}, err
	}
	return QueryConvertToShares(deps, env, bal.Balance)
}

func QueryVaultInfo(deps types.Deps) (VaultInfoResponse, error) {
	st, err := loadState(deps.Storage)
	if err != nil {
		return VaultInfoResponse{}, err
	}
	info, err := cw20.NewLedger(deps.Storage).TokenInfo()
	if err != nil {
		return VaultInfoResponse{}, err
	}
	return VaultInfoResponse{
		Underlying:    st.Underlying,
		TotalBorrowed: st.TotalBorrowed,
		Borrower:      st.Borrower,
		TotalSupply:   info.TotalSupply,
	}, nil
}
