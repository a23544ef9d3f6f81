package loans

import (
	"math/big"

	"nftfi/core/types"
	"nftfi/native/asset"
	"nftfi/native/common"
)

// FeeBase is the denominator of the marketplace fee rate.
var FeeBase = big.NewInt(100_000)

// LoanState is the lifecycle of a collateral bundle.
type LoanState string

const (
	LoanPublished      LoanState = "published"
	LoanStarted        LoanState = "started"
	LoanDefaulted      LoanState = "defaulted"
	LoanEnded          LoanState = "ended"
	LoanAssetWithdrawn LoanState = "asset_withdrawn"
)

// OfferState is the lifecycle of a lender offer.
type OfferState string

const (
	OfferPublished OfferState = "published"
	OfferAccepted  OfferState = "accepted"
	OfferRefused   OfferState = "refused"
	OfferCancelled OfferState = "cancelled"
)

// LoanTerms are the conditions a borrower asks for or a lender proposes.
type LoanTerms struct {
	Principle        types.Coin `json:"principle"`
	Interest         *big.Int   `json:"interest"`
	DurationInBlocks uint64     `json:"duration_in_blocks"`
}

func (t LoanTerms) Validate() error {
	if t.Principle.Denom == "" || t.Principle.Amount == nil || t.Principle.Amount.Sign() <= 0 {
		return ErrInvalidTerms.Wrapf("principle must be a positive coin")
	}
	if err := common.CheckU128(t.Principle.Amount); err != nil {
		return err
	}
	if t.Interest != nil && t.Interest.Sign() < 0 {
		return ErrInvalidTerms.Wrapf("negative interest")
	}
	if _, err := t.Total(); err != nil {
		return err
	}
	if t.DurationInBlocks == 0 {
		return ErrInvalidTerms.Wrapf("duration must be positive")
	}
	return nil
}

// Total is principle plus interest.
func (t LoanTerms) Total() (*big.Int, error) {
	return common.Add128(t.Principle.Amount, t.Interest)
}

// CollateralInfo is a borrower's NFT bundle and its loan.
type CollateralInfo struct {
	Borrower         string        `json:"borrower"`
	AssociatedAssets []asset.Asset `json:"associated_assets"`
	Terms            *LoanTerms    `json:"terms,omitempty"`
	State            LoanState     `json:"state"`
	ActiveOffer      *string       `json:"active_offer,omitempty"`
	StartBlock       *uint64       `json:"start_block,omitempty"`
	ListDate         uint64        `json:"list_date"`
	Comment          *string       `json:"comment,omitempty"`
	OfferAmount      uint64        `json:"offer_amount"`
}

// Collections lists the distinct token contracts of the bundle in order.
func (c CollateralInfo) Collections() []string {
	seen := make(map[string]struct{}, len(c.AssociatedAssets))
	out := make([]string, 0, len(c.AssociatedAssets))
	for _, a := range c.AssociatedAssets {
		addr := a.Address()
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// OfferInfo is an escrowed lender bid on a collateral bundle.
type OfferInfo struct {
	OfferID        string      `json:"offer_id"`
	Lender         string      `json:"lender"`
	Borrower       string      `json:"borrower"`
	LoanID         uint64      `json:"loan_id"`
	Terms          LoanTerms   `json:"terms"`
	State          OfferState  `json:"state"`
	DepositedFunds *types.Coin `json:"deposited_funds,omitempty"`
	ListDate       uint64      `json:"list_date"`
	Comment        *string     `json:"comment,omitempty"`
	GlobalIndex    uint64      `json:"global_index"`
}

type BorrowerInfo struct {
	LastCollateralID uint64 `json:"last_collateral_id"`
}

type ContractInfo struct {
	Name             string   `json:"name"`
	Owner            string   `json:"owner"`
	FeeDistributor   string   `json:"fee_distributor"`
	FeeRate          *big.Int `json:"fee_rate"`
	GlobalOfferIndex uint64   `json:"global_offer_index"`
	Locked           bool     `json:"locked"`
}

func (c ContractInfo) IsLocked() bool { return c.Locked }

type storedTerms struct {
	Denom     string
	Principle *big.Int
	Interest  *big.Int
	Duration  uint64
}

func (t LoanTerms) stored() storedTerms {
	return storedTerms{
		Denom:     t.Principle.Denom,
		Principle: common.Amount(t.Principle.Amount),
		Interest:  common.Amount(t.Interest),
		Duration:  t.DurationInBlocks,
	}
}

func (s storedTerms) terms() LoanTerms {
	return LoanTerms{
		Principle:        types.NewCoinBig(s.Denom, s.Principle),
		Interest:         common.Amount(s.Interest),
		DurationInBlocks: s.Duration,
	}
}

type storedCollateral struct {
	Borrower    string
	Assets      []asset.Stored
	HasTerms    bool
	Terms       storedTerms
	State       string
	ActiveOffer string
	Started     bool
	StartBlock  uint64
	ListDate    uint64
	HasComment  bool
	Comment     string
	OfferAmount uint64
}

func (c CollateralInfo) stored() storedCollateral {
	s := storedCollateral{
		Borrower:    c.Borrower,
		Assets:      make([]asset.Stored, 0, len(c.AssociatedAssets)),
		State:       string(c.State),
		ListDate:    c.ListDate,
		OfferAmount: c.OfferAmount,
		Terms:       storedTerms{Principle: new(big.Int), Interest: new(big.Int)},
	}
	for _, a := range c.AssociatedAssets {
		s.Assets = append(s.Assets, a.Stored())
	}
	if c.Terms != nil {
		s.HasTerms = true
		s.Terms = c.Terms.stored()
	}
	if c.ActiveOffer != nil {
		s.ActiveOffer = *c.ActiveOffer
	}
	if c.StartBlock != nil {
		s.Started = true
		s.StartBlock = *c.StartBlock
	}
	if c.Comment != nil {
		s.HasComment = true
		s.Comment = *c.Comment
	}
	return s
}

func (s storedCollateral) collateral() CollateralInfo {
	c := CollateralInfo{
		Borrower:         s.Borrower,
		AssociatedAssets: make([]asset.Asset, 0, len(s.Assets)),
		State:            LoanState(s.State),
		ListDate:         s.ListDate,
		OfferAmount:      s.OfferAmount,
	}
	for _, a := range s.Assets {
		c.AssociatedAssets = append(c.AssociatedAssets, a.Asset())
	}
	if s.HasTerms {
		t := s.Terms.terms()
		c.Terms = &t
	}
	if s.ActiveOffer != "" {
		id := s.ActiveOffer
		c.ActiveOffer = &id
	}
	if s.Started {
		start := s.StartBlock
		c.StartBlock = &start
	}
	if s.HasComment {
		comment := s.Comment
		c.Comment = &comment
	}
	return c
}

type storedOffer struct {
	OfferID     string
	Lender      string
	Borrower    string
	LoanID      uint64
	Terms       storedTerms
	State       string
	HasFunds    bool
	FundsDenom  string
	FundsAmount *big.Int
	ListDate    uint64
	HasComment  bool
	Comment     string
	GlobalIndex uint64
}

func (o OfferInfo) stored() storedOffer {
	s := storedOffer{
		OfferID:     o.OfferID,
		Lender:      o.Lender,
		Borrower:    o.Borrower,
		LoanID:      o.LoanID,
		Terms:       o.Terms.stored(),
		State:       string(o.State),
		FundsAmount: new(big.Int),
		ListDate:    o.ListDate,
		GlobalIndex: o.GlobalIndex,
	}
	if o.DepositedFunds != nil {
		s.HasFunds = true
		s.FundsDenom = o.DepositedFunds.Denom
		s.FundsAmount = common.Amount(o.DepositedFunds.Amount)
	}
	if o.Comment != nil {
		s.HasComment = true
		s.Comment = *o.Comment
	}
	return s
}

func (s storedOffer) offer() OfferInfo {
	o := OfferInfo{
		OfferID:     s.OfferID,
		Lender:      s.Lender,
		Borrower:    s.Borrower,
		LoanID:      s.LoanID,
		Terms:       s.Terms.terms(),
		State:       OfferState(s.State),
		ListDate:    s.ListDate,
		GlobalIndex: s.GlobalIndex,
	}
	if s.HasFunds {
		funds := types.NewCoinBig(s.FundsDenom, s.FundsAmount)
		o.DepositedFunds = &funds
	}
	if s.HasComment {
		comment := s.Comment
		o.Comment = &comment
	}
	return o
}

type storedContractInfo struct {
	Name             string
	Owner            string
	FeeDistributor   string
	FeeRate          *big.Int
	GlobalOfferIndex uint64
	Locked           bool
}

func (c ContractInfo) stored() storedContractInfo {
	return storedContractInfo{
		Name:             c.Name,
		Owner:            c.Owner,
		FeeDistributor:   c.FeeDistributor,
		FeeRate:          common.Amount(c.FeeRate),
		GlobalOfferIndex: c.GlobalOfferIndex,
		Locked:           c.Locked,
	}
}

func (s storedContractInfo) info() ContractInfo {
	return ContractInfo{
		Name:             s.Name,
		Owner:            s.Owner,
		FeeDistributor:   s.FeeDistributor,
		FeeRate:          common.Amount(s.FeeRate),
		GlobalOfferIndex: s.GlobalOfferIndex,
		Locked:           s.Locked,
	}
}
