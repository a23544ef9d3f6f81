package lending

import (
	"math/big"

	"nftfi/native/common"
)

// Cw721Info identifies the NFT pledged for a loan.
type Cw721Info struct {
	NftAddress string `json:"nft_address"`
	TokenID    string `json:"token_id"`
}

// BorrowMode selects the interest model of a new loan.
type BorrowMode string

const (
	BorrowModeFixed      BorrowMode = "fixed"
	BorrowModeContinuous BorrowMode = "continuous"
)

func (m BorrowMode) Valid() bool {
	return m == BorrowModeFixed || m == BorrowModeContinuous
}

// BorrowZone classifies a loan by its value relative to the collateral price.
type BorrowZone string

const (
	SafeZone        BorrowZone = "safe_zone"
	ExpensiveZone   BorrowZone = "expensive_zone"
	LiquidationZone BorrowZone = "liquidation_zone"
)

// FixedInterests is a flat fee owed after Duration blocks.
type FixedInterests struct {
	Interests *big.Int `json:"interests"`
	Duration  uint64   `json:"duration"`
}

// ContinuousInterests accrue per block at LastInterestRate, expressed in
// 1/PercentageRate of the principle.
type ContinuousInterests struct {
	LastInterestRate *big.Int `json:"last_interest_rate"`
	InterestsAccrued *big.Int `json:"interests_accrued"`
}

// InterestType holds exactly one interest model.
type InterestType struct {
	Fixed      *FixedInterests      `json:"fixed,omitempty"`
	Continuous *ContinuousInterests `json:"continuous,omitempty"`
}

// RateIncreasor records who raised a loan's rate and the rate it replaced.
type RateIncreasor struct {
	Address      string   `json:"address"`
	PreviousRate *big.Int `json:"previous_rate"`
}

// Loan is the lender's view of a single collateralised position. A nil
// Collateral means the NFT already left the contract.
type Loan struct {
	Collateral    *Cw721Info     `json:"collateral,omitempty"`
	Principle     *big.Int       `json:"principle"`
	Interests     InterestType   `json:"interests"`
	StartBlock    uint64         `json:"start_block"`
	BorrowZone    BorrowZone     `json:"borrow_zone"`
	RateIncreasor *RateIncreasor `json:"rate_increasor,omitempty"`
}

func (l Loan) IsFixed() bool { return l.Interests.Fixed != nil }

type storedLoan struct {
	HasCollateral bool
	NftAddress    string
	TokenID       string
	Principle     *big.Int
	Fixed         bool
	FixedAmount   *big.Int
	Duration      uint64
	Rate          *big.Int
	Accrued       *big.Int
	StartBlock    uint64
	Zone          string
	HasIncreasor  bool
	Increasor     string
	PreviousRate  *big.Int
}

func (l Loan) stored() storedLoan {
	s := storedLoan{
		Principle:  common.Amount(l.Principle),
		StartBlock: l.StartBlock,
		Zone:       string(l.BorrowZone),
	}
	if l.Collateral != nil {
		s.HasCollateral = true
		s.NftAddress = l.Collateral.NftAddress
		s.TokenID = l.Collateral.TokenID
	}
	if l.Interests.Fixed != nil {
		s.Fixed = true
		s.FixedAmount = common.Amount(l.Interests.Fixed.Interests)
		s.Duration = l.Interests.Fixed.Duration
	} else if l.Interests.Continuous != nil {
		s.Rate = common.Amount(l.Interests.Continuous.LastInterestRate)
		s.Accrued = common.Amount(l.Interests.Continuous.InterestsAccrued)
	}
	if l.RateIncreasor != nil {
		s.HasIncreasor = true
		s.Increasor = l.RateIncreasor.Address
		s.PreviousRate = common.Amount(l.RateIncreasor.PreviousRate)
	}
	return s
}

func (s storedLoan) loan() Loan {
	l := Loan{
		Principle:  common.Amount(s.Principle),
		StartBlock: s.StartBlock,
		BorrowZone: BorrowZone(s.Zone),
	}
	if s.HasCollateral {
		l.Collateral = &Cw721Info{NftAddress: s.NftAddress, TokenID: s.TokenID}
	}
	if s.Fixed {
		l.Interests.Fixed = &FixedInterests{Interests: common.Amount(s.FixedAmount), Duration: s.Duration}
	} else {
		l.Interests.Continuous = &ContinuousInterests{
			LastInterestRate: common.Amount(s.Rate),
			InterestsAccrued: common.Amount(s.Accrued),
		}
	}
	if s.HasIncreasor {
		l.RateIncreasor = &RateIncreasor{Address: s.Increasor, PreviousRate: common.Amount(s.PreviousRate)}
	}
	return l
}
