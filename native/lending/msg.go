package lending

import (
	"math/big"

	"nftfi/native/tokens/cw20"
)

type InstantiateMsg struct {
	Name                string        `json:"name"`
	Owner               *string       `json:"owner,omitempty"`
	Oracle              *string       `json:"oracle,omitempty"`
	VaultToken          string        `json:"vault_token"`
	IncreasorIncentives *big.Int      `json:"increasor_incentives"`
	InterestsFeeRate    *big.Int      `json:"interests_fee_rate"`
	FeeDistributor      string        `json:"fee_distributor"`
	Params              *ParamsUpdate `json:"params,omitempty"`
}

// ParamsUpdate overlays the non-nil fields on the current configuration.
type ParamsUpdate struct {
	FixedInterestRate       *big.Int `json:"fixed_interest_rate,omitempty"`
	FixedDuration           *uint64  `json:"fixed_duration,omitempty"`
	ContinuousSafeRate      *big.Int `json:"continuous_safe_rate,omitempty"`
	ContinuousExpensiveRate *big.Int `json:"continuous_expensive_rate,omitempty"`
	IncreasorIncentives     *big.Int `json:"increasor_incentives,omitempty"`
	InterestsFeeRate        *big.Int `json:"interests_fee_rate,omitempty"`
}

type Borrow struct {
	AssetInfo      Cw721Info  `json:"asset_info"`
	AssetsToBorrow *big.Int   `json:"assets_to_borrow"`
	BorrowMode     BorrowMode `json:"borrow_mode"`
}

type BorrowMore struct {
	LoanID         uint64   `json:"loan_id"`
	AssetsToBorrow *big.Int `json:"assets_to_borrow"`
}

type Repay struct {
	Borrower string   `json:"borrower"`
	LoanID   uint64   `json:"loan_id"`
	Assets   *big.Int `json:"assets"`
}

// LoanRef points at a loan by its borrower and per-borrower id.
type LoanRef struct {
	Borrower string `json:"borrower"`
	LoanID   uint64 `json:"loan_id"`
}

type SetOwner struct {
	Owner string `json:"owner"`
}

type SetOracle struct {
	Oracle string `json:"oracle"`
}

type ToggleLock struct {
	Lock bool `json:"lock"`
}

type ExecuteMsg struct {
	Borrow     *Borrow          `json:"borrow,omitempty"`
	BorrowMore *BorrowMore      `json:"borrow_more,omitempty"`
	Repay      *Repay           `json:"repay,omitempty"`
	Receive    *cw20.ReceiveMsg `json:"receive,omitempty"`
	RaiseRate  *LoanRef         `json:"raise_rate,omitempty"`
	LowerRate  *LoanRef         `json:"lower_rate,omitempty"`
	SetOwner   *SetOwner        `json:"set_owner,omitempty"`
	SetOracle  *SetOracle       `json:"set_oracle,omitempty"`
	ToggleLock *ToggleLock      `json:"toggle_lock,omitempty"`
	SetParams  *ParamsUpdate    `json:"set_params,omitempty"`
}

type LoansQuery struct {
	Borrower   string  `json:"borrower"`
	StartAfter *uint64 `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type QueryMsg struct {
	ContractInfo *struct{}   `json:"contract_info,omitempty"`
	Loan         *LoanRef    `json:"loan,omitempty"`
	Loans        *LoansQuery `json:"loans,omitempty"`
	LoanValue    *LoanRef    `json:"loan_value,omitempty"`
	BorrowZone   *LoanRef    `json:"borrow_zone,omitempty"`
	Params       *struct{}   `json:"params,omitempty"`
}

type LoanResponse struct {
	Borrower string `json:"borrower"`
	LoanID   uint64 `json:"loan_id"`
	Loan     Loan   `json:"loan"`
}

type LoanValueResponse struct {
	Principle *big.Int `json:"principle"`
	Interests *big.Int `json:"interests"`
	Value     *big.Int `json:"value"`
}

type BorrowZoneResponse struct {
	Zone      BorrowZone `json:"zone"`
	Value     *big.Int   `json:"value"`
	Price     *big.Int   `json:"price"`
	SafeLimit *big.Int   `json:"safe_limit"`
}
