package vault

import (
	"math/big"

	"nftfi/native/asset"
	"nftfi/native/tokens/cw20"
)

type InstantiateMsg struct {
	Name            string                         `json:"name"`
	Symbol          string                         `json:"symbol"`
	Decimals        uint8                          `json:"decimals"`
	InitialBalances []cw20.Balance                 `json:"initial_balances"`
	Mint            *cw20.MinterResponse           `json:"mint,omitempty"`
	Marketing       *cw20.InstantiateMarketingInfo `json:"marketing,omitempty"`
	Asset           asset.Info                     `json:"asset"`
	Borrower        *string                        `json:"borrower,omitempty"`
}

type Deposit struct {
	Assets   *big.Int `json:"assets"`
	Receiver string   `json:"receiver"`
}

type Mint struct {
	Shares   *big.Int `json:"shares"`
	Receiver string   `json:"receiver"`
}

type Withdraw struct {
	Assets   *big.Int `json:"assets"`
	Receiver string   `json:"receiver"`
	Owner    string   `json:"owner"`
}

type Redeem struct {
	Shares   *big.Int `json:"shares"`
	Receiver string   `json:"receiver"`
	Owner    string   `json:"owner"`
}

type Borrow struct {
	Assets   *big.Int `json:"assets"`
	Receiver string   `json:"receiver"`
}

// Repay returns borrowed assets. Owner is the account the cw20 underlying is
// pulled from; it defaults to the sender.
type Repay struct {
	Assets *big.Int `json:"assets"`
	Owner  *string  `json:"owner,omitempty"`
}

type SetBorrower struct {
	Borrower *string `json:"borrower,omitempty"`
}

// ExecuteMsg is the share token surface plus the vault operations.
type ExecuteMsg struct {
	Transfer          *cw20.Transfer          `json:"transfer,omitempty"`
	TransferFrom      *cw20.TransferFrom      `json:"transfer_from,omitempty"`
	Send              *cw20.Send              `json:"send,omitempty"`
	SendFrom          *cw20.SendFrom          `json:"send_from,omitempty"`
	Burn              *cw20.Burn              `json:"burn,omitempty"`
	BurnFrom          *cw20.BurnFrom          `json:"burn_from,omitempty"`
	IncreaseAllowance *cw20.IncreaseAllowance `json:"increase_allowance,omitempty"`
	DecreaseAllowance *cw20.DecreaseAllowance `json:"decrease_allowance,omitempty"`
	UpdateMarketing   *cw20.UpdateMarketing   `json:"update_marketing,omitempty"`
	UploadLogo        *cw20.Logo              `json:"upload_logo,omitempty"`

	Deposit     *Deposit         `json:"deposit,omitempty"`
	Mint        *Mint            `json:"mint,omitempty"`
	Withdraw    *Withdraw        `json:"withdraw,omitempty"`
	Redeem      *Redeem          `json:"redeem,omitempty"`
	Borrow      *Borrow          `json:"borrow,omitempty"`
	Repay       *Repay           `json:"repay,omitempty"`
	SetBorrower *SetBorrower     `json:"set_borrower,omitempty"`
	Receive     *cw20.ReceiveMsg `json:"receive,omitempty"`
}

type AssetsQuery struct {
	Assets *big.Int `json:"assets"`
}

type SharesQuery struct {
	Shares *big.Int `json:"shares"`
}

type ReceiverQuery struct {
	Receiver string `json:"receiver"`
}

type OwnerQuery struct {
	Owner string `json:"owner"`
}

type QueryMsg struct {
	Balance       *cw20.BalanceQuery   `json:"balance,omitempty"`
	TokenInfo     *struct{}            `json:"token_info,omitempty"`
	Minter        *struct{}            `json:"minter,omitempty"`
	Allowance     *cw20.AllowanceQuery `json:"allowance,omitempty"`
	AllAllowances *AllAllowancesQuery  `json:"all_allowances,omitempty"`
	AllAccounts   *AllAccountsQuery    `json:"all_accounts,omitempty"`
	MarketingInfo *struct{}            `json:"marketing_info,omitempty"`
	DownloadLogo  *struct{}            `json:"download_logo,omitempty"`

	Asset           *struct{}      `json:"asset,omitempty"`
	TotalAssets     *struct{}      `json:"total_assets,omitempty"`
	ConvertToShares *AssetsQuery   `json:"convert_to_shares,omitempty"`
	ConvertToAssets *SharesQuery   `json:"convert_to_assets,omitempty"`
	MaxDeposit      *ReceiverQuery `json:"max_deposit,omitempty"`
	PreviewDeposit  *AssetsQuery   `json:"preview_deposit,omitempty"`
	MaxMint         *ReceiverQuery `json:"max_mint,omitempty"`
	PreviewMint     *SharesQuery   `json:"preview_mint,omitempty"`
	MaxWithdraw     *OwnerQuery    `json:"max_withdraw,omitempty"`
	PreviewWithdraw *AssetsQuery   `json:"preview_withdraw,omitempty"`
	MaxRedeem       *OwnerQuery    `json:"max_redeem,omitempty"`
	PreviewRedeem   *SharesQuery   `json:"preview_redeem,omitempty"`
	VaultInfo       *struct{}      `json:"vault_info,omitempty"`
}

type AllAllowancesQuery struct {
	Owner      string  `json:"owner"`
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type AllAccountsQuery struct {
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type TotalAssetsResponse struct {
	TotalManagedAssets *big.Int `json:"total_managed_assets"`
}

// AmountResponse answers conversion, preview and max queries.
type AmountResponse struct {
	Amount *big.Int `json:"amount"`
}

type VaultInfoResponse struct {
	Underlying    asset.Info `json:"underlying"`
	TotalBorrowed *big.Int   `json:"total_borrowed"`
	Borrower      string     `json:"borrower,omitempty"`
	TotalSupply   *big.Int   `json:"total_supply"`
}

// AssetQueryMsg is the query other contracts send to learn the underlying.
func AssetQueryMsg() QueryMsg { return QueryMsg{Asset: &struct{}{}} }

// RepayMsg builds the call that returns assets to the vault.
func RepayMsg(assets *big.Int) ExecuteMsg {
	return ExecuteMsg{Repay: &Repay{Assets: assets}}
}

// BorrowMsg builds the call the registered borrower uses to draw assets.
func BorrowMsg(assets *big.Int, receiver string) ExecuteMsg {
	return ExecuteMsg{Borrow: &Borrow{Assets: assets, Receiver: receiver}}
}
