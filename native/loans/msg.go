package loans

import (
	"math/big"

	"nftfi/native/asset"
)

type InstantiateMsg struct {
	Name           string   `json:"name"`
	Owner          *string  `json:"owner,omitempty"`
	FeeDistributor string   `json:"fee_distributor"`
	FeeRate        *big.Int `json:"fee_rate"`
}

type DepositCollaterals struct {
	Tokens  []asset.Asset `json:"tokens"`
	Terms   *LoanTerms    `json:"terms,omitempty"`
	Comment *string       `json:"comment,omitempty"`
}

type ModifyCollaterals struct {
	LoanID  uint64     `json:"loan_id"`
	Terms   *LoanTerms `json:"terms,omitempty"`
	Comment *string    `json:"comment,omitempty"`
}

type LoanID struct {
	LoanID uint64 `json:"loan_id"`
}

// LoanRef addresses a loan owned by another account.
type LoanRef struct {
	Borrower string  `json:"borrower"`
	LoanID   uint64  `json:"loan_id"`
	Comment  *string `json:"comment,omitempty"`
}

type MakeOffer struct {
	Borrower string    `json:"borrower"`
	LoanID   uint64    `json:"loan_id"`
	Terms    LoanTerms `json:"terms"`
	Comment  *string   `json:"comment,omitempty"`
}

type OfferID struct {
	OfferID string `json:"offer_id"`
}

type SetOwner struct {
	Owner string `json:"owner"`
}

type SetFeeDistributor struct {
	FeeDistributor string `json:"fee_distributor"`
}

type SetFeeRate struct {
	FeeRate *big.Int `json:"fee_rate"`
}

type SetLock struct {
	Lock bool `json:"lock"`
}

type ExecuteMsg struct {
	DepositCollaterals    *DepositCollaterals `json:"deposit_collaterals,omitempty"`
	ModifyCollaterals     *ModifyCollaterals  `json:"modify_collaterals,omitempty"`
	WithdrawCollaterals   *LoanID             `json:"withdraw_collaterals,omitempty"`
	AcceptLoan            *LoanRef            `json:"accept_loan,omitempty"`
	AcceptOffer           *OfferID            `json:"accept_offer,omitempty"`
	MakeOffer             *MakeOffer          `json:"make_offer,omitempty"`
	CancelOffer           *OfferID            `json:"cancel_offer,omitempty"`
	RefuseOffer           *OfferID            `json:"refuse_offer,omitempty"`
	WithdrawRefusedOffer  *OfferID            `json:"withdraw_refused_offer,omitempty"`
	RepayBorrowedFunds    *LoanID             `json:"repay_borrowed_funds,omitempty"`
	WithdrawDefaultedLoan *LoanRef            `json:"withdraw_defaulted_loan,omitempty"`
	SetOwner              *SetOwner           `json:"set_owner,omitempty"`
	SetFeeDistributor     *SetFeeDistributor  `json:"set_fee_distributor,omitempty"`
	SetFeeRate            *SetFeeRate         `json:"set_fee_rate,omitempty"`
	SetLock               *SetLock            `json:"set_lock,omitempty"`
}

type BorrowerQuery struct {
	Borrower string `json:"borrower"`
}

type CollateralsQuery struct {
	Borrower   string  `json:"borrower"`
	StartAfter *uint64 `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type OffersQuery struct {
	Borrower   string  `json:"borrower"`
	LoanID     uint64  `json:"loan_id"`
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type LenderOffersQuery struct {
	Lender     string  `json:"lender"`
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type QueryMsg struct {
	ContractInfo   *struct{}          `json:"contract_info,omitempty"`
	CollateralInfo *LoanRef           `json:"collateral_info,omitempty"`
	BorrowerInfo   *BorrowerQuery     `json:"borrower_info,omitempty"`
	Collaterals    *CollateralsQuery  `json:"collaterals,omitempty"`
	OfferInfo      *OfferID           `json:"offer_info,omitempty"`
	Offers         *OffersQuery       `json:"offers,omitempty"`
	LenderOffers   *LenderOffersQuery `json:"lender_offers,omitempty"`
}

type CollateralResponse struct {
	Borrower   string         `json:"borrower"`
	LoanID     uint64         `json:"loan_id"`
	Collateral CollateralInfo `json:"collateral"`
}
