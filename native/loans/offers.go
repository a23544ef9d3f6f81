package loans

import (
	"strconv"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

// publishedLoan loads a loan that still accepts offers.
func (e *Engine) publishedLoan(borrower string, id uint64, notPublished *cerrors.Error) (CollateralInfo, error) {
	c, err := e.store.collateral(borrower, id)
	if err != nil {
		return CollateralInfo{}, err
	}
	if c.State != LoanPublished {
		return CollateralInfo{}, notPublished.With("state", c.State)
	}
	return c, nil
}

// newOffer escrows funds as a published offer and indexes it.
func (e *Engine) newOffer(lender, borrower string, loanID uint64, c *CollateralInfo, terms LoanTerms, funds types.Coin, comment *string) (OfferInfo, error) {
	e.info.GlobalOfferIndex++
	c.OfferAmount++
	deposited := funds.Clone()
	o := OfferInfo{
		OfferID:        formatOfferID(borrower, loanID, e.info.GlobalOfferIndex),
		Lender:         lender,
		Borrower:       borrower,
		LoanID:         loanID,
		Terms:          terms,
		State:          OfferPublished,
		DepositedFunds: &deposited,
		ListDate:       e.env.Block.Time,
		Comment:        comment,
		GlobalIndex:    e.info.GlobalOfferIndex,
	}
	if err := e.store.putInfo(e.info); err != nil {
		return OfferInfo{}, err
	}
	if err := e.store.putOffer(o); err != nil {
		return OfferInfo{}, err
	}
	if err := e.store.indexOffer(o); err != nil {
		return OfferInfo{}, err
	}
	return o, nil
}

// startLoan accepts o on c and releases the escrowed principle to the
// borrower.
func (e *Engine) startLoan(c *CollateralInfo, loanID uint64, o *OfferInfo) (types.CosmosMsg, error) {
	if o.DepositedFunds == nil {
		return types.CosmosMsg{}, ErrWrongOfferState.With("state", o.State, "reason", "no escrowed funds")
	}
	payout := types.NewBankSend(o.Borrower, o.DepositedFunds.Clone())
	o.State = OfferAccepted
	o.DepositedFunds = nil
	start := e.height()
	id := o.OfferID
	c.State = LoanStarted
	c.StartBlock = &start
	c.ActiveOffer = &id
	if err := e.store.putOffer(*o); err != nil {
		return types.CosmosMsg{}, err
	}
	if err := e.store.putCollateral(loanID, *c); err != nil {
		return types.CosmosMsg{}, err
	}
	return payout, nil
}

// MakeOffer escrows the attached principle as a bid on a published loan.
func (e *Engine) MakeOffer(info types.MessageInfo, msg MakeOffer) (*types.Response, error) {
	if err := common.Guard(e.info, moduleName); err != nil {
		return nil, err
	}
	borrower, err := common.ValidateAddr(e.deps.API, msg.Borrower)
	if err != nil {
		return nil, err
	}
	c, err := e.publishedLoan(borrower, msg.LoanID, ErrNotCounterable)
	if err != nil {
		return nil, err
	}
	if err := msg.Terms.Validate(); err != nil {
		return nil, err
	}
	if err := exactFunds(info.Funds, msg.Terms.Principle); err != nil {
		return nil, err
	}
	o, err := e.newOffer(info.Sender, borrower, msg.LoanID, &c, msg.Terms, info.Funds[0], msg.Comment)
	if err != nil {
		return nil, err
	}
	if err := e.store.putCollateral(msg.LoanID, c); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "make_offer").
		AddAttribute("borrower", borrower).
		AddAttribute("loan_id", strconv.FormatUint(msg.LoanID, 10)).
		AddAttribute("lender", info.Sender).
		AddAttribute("offer_id", o.OfferID).
		SetData([]byte(o.OfferID)), nil
}

// CancelOffer refunds a published offer to its lender.
func (e *Engine) CancelOffer(sender string, msg OfferID) (*types.Response, error) {
	o, err := e.store.offer(msg.OfferID)
	if err != nil {
		return nil, err
	}
	if sender != o.Lender {
		return nil, cerrors.ErrUnauthorized.With("sender", sender)
	}
	if o.State != OfferPublished {
		return nil, ErrWrongOfferState.With("state", o.State)
	}
	if _, err := e.publishedLoan(o.Borrower, o.LoanID, ErrWrongLoanState); err != nil {
		return nil, err
	}
	return e.refund(o, OfferCancelled, "cancel_offer")
}

// RefuseOffer lets the borrower turn an offer down. The lender withdraws the
// escrow separately.
func (e *Engine) RefuseOffer(sender string, msg OfferID) (*types.Response, error) {
	o, err := e.store.offer(msg.OfferID)
	if err != nil {
		return nil, err
	}
	if sender != o.Borrower {
		return nil, cerrors.ErrUnauthorized.With("sender", sender)
	}
	if o.State != OfferPublished {
		return nil, ErrCantChangeOffer.With("from", o.State, "to", OfferRefused)
	}
	o.State = OfferRefused
	if err := e.store.putOffer(o); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "refuse_offer").
		AddAttribute("borrower", sender).
		AddAttribute("offer_id", o.OfferID), nil
}

// WithdrawRefusedOffer refunds a refused offer. A published offer whose loan
// was started with another offer or withdrawn counts as refused.
func (e *Engine) WithdrawRefusedOffer(sender string, msg OfferID) (*types.Response, error) {
	o, err := e.store.offer(msg.OfferID)
	if err != nil {
		return nil, err
	}
	if sender != o.Lender {
		return nil, cerrors.ErrUnauthorized.With("sender", sender)
	}
	switch o.State {
	case OfferRefused:
	case OfferPublished:
		c, err := e.store.collateral(o.Borrower, o.LoanID)
		if err != nil {
			return nil, err
		}
		if c.State == LoanPublished {
			return nil, ErrWrongOfferState.With("state", o.State)
		}
	default:
		return nil, ErrWrongOfferState.With("state", o.State)
	}
	if o.DepositedFunds == nil {
		return nil, ErrWrongOfferState.With("state", o.State, "reason", "already withdrawn")
	}
	return e.refund(o, OfferRefused, "withdraw_refused_offer")
}

func (e *Engine) refund(o OfferInfo, state OfferState, action string) (*types.Response, error) {
	res := types.NewResponse()
	if o.DepositedFunds != nil && !o.DepositedFunds.IsZero() {
		res.AddMessage(types.NewBankSend(o.Lender, o.DepositedFunds.Clone()))
	}
	o.State = state
	o.DepositedFunds = nil
	if err := e.store.putOffer(o); err != nil {
		return nil, err
	}
	return res.
		AddAttribute("action", action).
		AddAttribute("lender", o.Lender).
		AddAttribute("offer_id", o.OfferID), nil
}

// AcceptOffer starts the loan with the chosen offer and pays the borrower.
func (e *Engine) AcceptOffer(sender string, msg OfferID) (*types.Response, error) {
	o, err := e.store.offer(msg.OfferID)
	if err != nil {
		return nil, err
	}
	if sender != o.Borrower {
		return nil, cerrors.ErrUnauthorized.With("sender", sender)
	}
	if o.State != OfferPublished {
		return nil, ErrWrongOfferState.With("state", o.State)
	}
	c, err := e.publishedLoan(o.Borrower, o.LoanID, ErrNotAcceptable)
	if err != nil {
		return nil, err
	}
	payout, err := e.startLoan(&c, o.LoanID, &o)
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddMessage(payout).
		AddAttribute("action", "accept_offer").
		AddAttribute("borrower", o.Borrower).
		AddAttribute("lender", o.Lender).
		AddAttribute("loan_id", strconv.FormatUint(o.LoanID, 10)).
		AddAttribute("offer_id", o.OfferID), nil
}

// AcceptLoan funds a loan on the borrower's own terms in one step.
func (e *Engine) AcceptLoan(info types.MessageInfo, msg LoanRef) (*types.Response, error) {
	if err := common.Guard(e.info, moduleName); err != nil {
		return nil, err
	}
	borrower, err := common.ValidateAddr(e.deps.API, msg.Borrower)
	if err != nil {
		return nil, err
	}
	c, err := e.publishedLoan(borrower, msg.LoanID, ErrNotAcceptable)
	if err != nil {
		return nil, err
	}
	if c.Terms == nil {
		return nil, ErrNoTermsSpecified.With("borrower", borrower, "loan_id", msg.LoanID)
	}
	terms := *c.Terms
	if err := exactFunds(info.Funds, terms.Principle); err != nil {
		return nil, err
	}
	o, err := e.newOffer(info.Sender, borrower, msg.LoanID, &c, terms, info.Funds[0], msg.Comment)
	if err != nil {
		return nil, err
	}
	payout, err := e.startLoan(&c, msg.LoanID, &o)
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddMessage(payout).
		AddAttribute("action", "accept_loan").
		AddAttribute("borrower", borrower).
		AddAttribute("lender", info.Sender).
		AddAttribute("loan_id", strconv.FormatUint(msg.LoanID, 10)).
		AddAttribute("offer_id", o.OfferID), nil
}
