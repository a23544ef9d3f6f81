package lending

import (
	"math/big"

	cerrors "nftfi/core/errors"
	"nftfi/native/common"
)

// ContractInfo captures the lender configuration and its collaborators.
type ContractInfo struct {
	Name                string   `json:"name"`
	Owner               string   `json:"owner"`
	Oracle              string   `json:"oracle"`
	VaultToken          string   `json:"vault_token"`
	FeeDistributor      string   `json:"fee_distributor"`
	IncreasorIncentives *big.Int `json:"increasor_incentives"`
	InterestsFeeRate    *big.Int `json:"interests_fee_rate"`
	BorrowLocked        bool     `json:"borrow_locked"`
	Params              Params   `json:"params"`
}

// EnsureDefaults populates nil big.Int fields so JSON/RLP handling is safe.
func (c *ContractInfo) EnsureDefaults() {
	if c.IncreasorIncentives == nil {
		c.IncreasorIncentives = big.NewInt(0)
	}
	if c.InterestsFeeRate == nil {
		c.InterestsFeeRate = big.NewInt(0)
	}
	defaults := DefaultParams()
	if c.Params.FixedInterestRate == nil {
		c.Params.FixedInterestRate = defaults.FixedInterestRate
	}
	if c.Params.FixedDuration == 0 {
		c.Params.FixedDuration = defaults.FixedDuration
	}
	if c.Params.ContinuousSafeRate == nil {
		c.Params.ContinuousSafeRate = defaults.ContinuousSafeRate
	}
	if c.Params.ContinuousExpensiveRate == nil {
		c.Params.ContinuousExpensiveRate = defaults.ContinuousExpensiveRate
	}
}

// Validate bounds the fee and incentive rates by PercentageRate.
func (c ContractInfo) Validate() error {
	if err := common.ValidateName(c.Name); err != nil {
		return err
	}
	limit := big.NewInt(PercentageRate)
	if c.IncreasorIncentives.Sign() < 0 || c.IncreasorIncentives.Cmp(limit) > 0 {
		return cerrors.ErrInvalidMessage.Wrapf("increasor incentives above %d", PercentageRate)
	}
	if c.InterestsFeeRate.Sign() < 0 || c.InterestsFeeRate.Cmp(limit) > 0 {
		return cerrors.ErrInvalidMessage.Wrapf("interests fee rate above %d", PercentageRate)
	}
	return c.Params.Validate()
}

type storedContractInfo struct {
	Name                    string
	Owner                   string
	Oracle                  string
	VaultToken              string
	FeeDistributor          string
	IncreasorIncentives     *big.Int
	InterestsFeeRate        *big.Int
	BorrowLocked            bool
	FixedInterestRate       *big.Int
	FixedDuration           uint64
	ContinuousSafeRate      *big.Int
	ContinuousExpensiveRate *big.Int
}

func (c ContractInfo) stored() storedContractInfo {
	return storedContractInfo{
		Name:                    c.Name,
		Owner:                   c.Owner,
		Oracle:                  c.Oracle,
		VaultToken:              c.VaultToken,
		FeeDistributor:          c.FeeDistributor,
		IncreasorIncentives:     common.Amount(c.IncreasorIncentives),
		InterestsFeeRate:        common.Amount(c.InterestsFeeRate),
		BorrowLocked:            c.BorrowLocked,
		FixedInterestRate:       common.Amount(c.Params.FixedInterestRate),
		FixedDuration:           c.Params.FixedDuration,
		ContinuousSafeRate:      common.Amount(c.Params.ContinuousSafeRate),
		ContinuousExpensiveRate: common.Amount(c.Params.ContinuousExpensiveRate),
	}
}

func (s storedContractInfo) info() ContractInfo {
	return ContractInfo{
		Name:                s.Name,
		Owner:               s.Owner,
		Oracle:              s.Oracle,
		VaultToken:          s.VaultToken,
		FeeDistributor:      s.FeeDistributor,
		IncreasorIncentives: common.Amount(s.IncreasorIncentives),
		InterestsFeeRate:    common.Amount(s.InterestsFeeRate),
		BorrowLocked:        s.BorrowLocked,
		Params: Params{
			FixedInterestRate:       common.Amount(s.FixedInterestRate),
			FixedDuration:           s.FixedDuration,
			ContinuousSafeRate:      common.Amount(s.ContinuousSafeRate),
			ContinuousExpensiveRate: common.Amount(s.ContinuousExpensiveRate),
		},
	}
}
