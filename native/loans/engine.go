package loans

import (
	"math/big"
	"strconv"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
	"nftfi/native/fees"
)

var (
	ErrWrongAssetDeposited  = cerrors.New(cerrors.KindValidation, "wrong_asset_deposited", "only nft and semi-fungible tokens can be used as collateral")
	ErrInvalidTerms         = cerrors.New(cerrors.KindValidation, "invalid_terms", "invalid loan terms")
	ErrInvalidFeeRate       = cerrors.New(cerrors.KindValidation, "invalid_fee_rate", "fee rate must not exceed the fee base")
	ErrFundsDontMatchTerms  = cerrors.New(cerrors.KindValue, "funds_dont_match_terms", "the funds sent don't match the loan terms")
	ErrNotWithdrawable      = cerrors.New(cerrors.KindState, "not_withdrawable", "the collateral can't be withdrawn in this state")
	ErrNotModifiable        = cerrors.New(cerrors.KindState, "not_modifiable", "the loan can't be modified in this state")
	ErrNotAcceptable        = cerrors.New(cerrors.KindState, "not_acceptable", "the loan can't be accepted in this state")
	ErrNotCounterable       = cerrors.New(cerrors.KindState, "not_counterable", "the loan doesn't accept offers in this state")
	ErrNoTermsSpecified     = cerrors.New(cerrors.KindState, "no_terms_specified", "the borrower didn't specify loan terms")
	ErrLoanNotFound         = cerrors.New(cerrors.KindState, "loan_not_found", "loan not found")
	ErrOfferNotFound        = cerrors.New(cerrors.KindState, "offer_not_found", "offer not found")
	ErrWrongLoanState       = cerrors.New(cerrors.KindState, "wrong_loan_state", "wrong loan state")
	ErrWrongOfferState      = cerrors.New(cerrors.KindState, "wrong_offer_state", "wrong offer state")
	ErrCantChangeOffer      = cerrors.New(cerrors.KindState, "cant_change_offer_state", "the offer state can't change")
	ErrLoanAlreadyDefaulted = cerrors.New(cerrors.KindState, "loan_already_defaulted", "the loan is defaulted and can't be repaid")
	ErrLoanNotDefaulted     = cerrors.New(cerrors.KindState, "loan_not_defaulted", "the loan is not defaulted yet")
)

const moduleName = "loans"

// Engine executes a single marketplace call against the contract keyspace.
type Engine struct {
	deps  types.Deps
	env   types.Env
	store *store
	info  ContractInfo
}

func newEngine(deps types.Deps, env types.Env) (*Engine, error) {
	s := newStore(deps.Storage)
	info, err := s.info()
	if err != nil {
		return nil, err
	}
	return &Engine{deps: deps, env: env, store: s, info: info}, nil
}

func (e *Engine) height() uint64 { return e.env.Block.Height }

func (e *Engine) self() string { return e.env.Contract.Address }

func (e *Engine) requireOwner(sender string) error {
	if sender != e.info.Owner {
		return cerrors.ErrUnauthorized.With("sender", sender)
	}
	return nil
}

func validateFeeRate(rate *big.Int) error {
	if rate == nil || rate.Sign() < 0 || rate.Cmp(FeeBase) > 0 {
		return ErrInvalidFeeRate.With("fee_rate", common.Amount(rate))
	}
	return nil
}

// exactFunds requires a single attached coin equal to want.
func exactFunds(funds []types.Coin, want types.Coin) error {
	if len(funds) != 1 || !funds[0].Equal(want) {
		provided := "none"
		if len(funds) == 1 {
			provided = funds[0].String()
		} else if len(funds) > 1 {
			provided = strconv.Itoa(len(funds)) + " coins"
		}
		return ErrFundsDontMatchTerms.With("expected", want.String(), "provided", provided)
	}
	return nil
}

// isDefaulted reports whether a started loan is past its duration.
func (e *Engine) isDefaulted(c CollateralInfo, terms LoanTerms) bool {
	if c.State != LoanStarted || c.StartBlock == nil {
		return false
	}
	return e.height() > *c.StartBlock+terms.DurationInBlocks
}

// DepositCollaterals pulls the tokens into escrow and publishes a new loan.
func (e *Engine) DepositCollaterals(sender string, msg DepositCollaterals) (*types.Response, error) {
	if err := common.Guard(e.info, moduleName); err != nil {
		return nil, err
	}
	if len(msg.Tokens) == 0 {
		return nil, ErrWrongAssetDeposited.Wrapf("no tokens")
	}
	if msg.Terms != nil {
		if err := msg.Terms.Validate(); err != nil {
			return nil, err
		}
	}
	res := types.NewResponse()
	for _, token := range msg.Tokens {
		if !token.IsNFT() {
			return nil, ErrWrongAssetDeposited.With("asset", token.String())
		}
		if err := token.Validate(e.deps.API); err != nil {
			return nil, err
		}
		pull, err := token.PullMsg(sender, e.self())
		if err != nil {
			return nil, err
		}
		res.AddMessage(pull)
	}
	id, err := e.store.nextLoanID(sender)
	if err != nil {
		return nil, err
	}
	c := CollateralInfo{
		Borrower:         sender,
		AssociatedAssets: msg.Tokens,
		Terms:            msg.Terms,
		State:            LoanPublished,
		ListDate:         e.env.Block.Time,
		Comment:          msg.Comment,
	}
	if err := e.store.putCollateral(id, c); err != nil {
		return nil, err
	}
	return res.
		AddAttribute("action", "deposit_collaterals").
		AddAttribute("borrower", sender).
		AddAttribute("loan_id", strconv.FormatUint(id, 10)).
		SetData([]byte(strconv.FormatUint(id, 10))), nil
}

// ModifyCollaterals updates the terms or comment of a published loan.
func (e *Engine) ModifyCollaterals(sender string, msg ModifyCollaterals) (*types.Response, error) {
	c, err := e.store.collateral(sender, msg.LoanID)
	if err != nil {
		return nil, err
	}
	if c.State != LoanPublished {
		return nil, ErrNotModifiable.With("state", c.State)
	}
	if msg.Terms != nil {
		if err := msg.Terms.Validate(); err != nil {
			return nil, err
		}
		c.Terms = msg.Terms
	}
	if msg.Comment != nil {
		c.Comment = msg.Comment
	}
	c.ListDate = e.env.Block.Time
	if err := e.store.putCollateral(msg.LoanID, c); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "modify_collaterals").
		AddAttribute("borrower", sender).
		AddAttribute("loan_id", strconv.FormatUint(msg.LoanID, 10)), nil
}

// WithdrawCollaterals takes an unstarted bundle off the market. An ended loan
// already returned its tokens at repayment, so only the state moves.
func (e *Engine) WithdrawCollaterals(sender string, msg LoanID) (*types.Response, error) {
	c, err := e.store.collateral(sender, msg.LoanID)
	if err != nil {
		return nil, err
	}
	if c.State != LoanPublished && c.State != LoanEnded {
		return nil, ErrNotWithdrawable.With("state", c.State)
	}
	res := types.NewResponse()
	if c.State == LoanPublished {
		out, err := e.returnAssets(c, sender)
		if err != nil {
			return nil, err
		}
		res.AddMessages(out...)
	}
	c.State = LoanAssetWithdrawn
	if err := e.store.putCollateral(msg.LoanID, c); err != nil {
		return nil, err
	}
	return res.
		AddAttribute("action", "withdraw_collaterals").
		AddAttribute("borrower", sender).
		AddAttribute("loan_id", strconv.FormatUint(msg.LoanID, 10)).
		AddAttribute("assets_returned", strconv.Itoa(len(res.Messages))), nil
}

func (e *Engine) returnAssets(c CollateralInfo, recipient string) ([]types.CosmosMsg, error) {
	out := make([]types.CosmosMsg, 0, len(c.AssociatedAssets))
	for _, a := range c.AssociatedAssets {
		msg, err := a.TransferMsg(e.self(), recipient)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// RepayBorrowedFunds settles a started loan. The fee is taken from the
// interest only.
func (e *Engine) RepayBorrowedFunds(info types.MessageInfo, msg LoanID) (*types.Response, error) {
	c, err := e.store.collateral(info.Sender, msg.LoanID)
	if err != nil {
		return nil, err
	}
	if c.State != LoanStarted || c.ActiveOffer == nil {
		return nil, ErrWrongLoanState.With("state", c.State)
	}
	offer, err := e.store.offer(*c.ActiveOffer)
	if err != nil {
		return nil, err
	}
	if e.isDefaulted(c, offer.Terms) {
		return nil, ErrLoanAlreadyDefaulted.With("start_block", *c.StartBlock, "duration", offer.Terms.DurationInBlocks)
	}
	total, err := offer.Terms.Total()
	if err != nil {
		return nil, err
	}
	denom := offer.Terms.Principle.Denom
	if err := exactFunds(info.Funds, types.NewCoinBig(denom, total)); err != nil {
		return nil, err
	}
	fee, err := common.MulDiv(offer.Terms.Interest, e.info.FeeRate, FeeBase)
	if err != nil {
		return nil, err
	}
	toLender, err := common.Sub(total, fee)
	if err != nil {
		return nil, err
	}

	res := types.NewResponse()
	res.AddMessage(types.NewBankSend(offer.Lender, types.NewCoinBig(denom, toLender)))
	if fee.Sign() > 0 {
		deposit, err := fees.DepositMsg(e.info.FeeDistributor, types.NewCoinBig(denom, fee), c.Collections()...)
		if err != nil {
			return nil, err
		}
		res.AddMessage(deposit)
	}
	back, err := e.returnAssets(c, info.Sender)
	if err != nil {
		return nil, err
	}
	res.AddMessages(back...)

	c.State = LoanEnded
	if err := e.store.putCollateral(msg.LoanID, c); err != nil {
		return nil, err
	}
	return res.
		AddAttribute("action", "repay_borrowed_funds").
		AddAttribute("borrower", info.Sender).
		AddAttribute("lender", offer.Lender).
		AddAttribute("loan_id", strconv.FormatUint(msg.LoanID, 10)).
		AddAttribute("offer_id", offer.OfferID).
		AddAttribute("lender_payment", toLender.String()).
		AddAttribute("fee", fee.String()), nil
}

// WithdrawDefaultedLoan hands the collateral of an overdue loan to its
// lender.
func (e *Engine) WithdrawDefaultedLoan(sender string, msg LoanRef) (*types.Response, error) {
	c, err := e.store.collateral(msg.Borrower, msg.LoanID)
	if err != nil {
		return nil, err
	}
	if c.State != LoanStarted || c.ActiveOffer == nil {
		return nil, ErrWrongLoanState.With("state", c.State)
	}
	offer, err := e.store.offer(*c.ActiveOffer)
	if err != nil {
		return nil, err
	}
	if sender != offer.Lender {
		return nil, cerrors.ErrUnauthorized.With("sender", sender)
	}
	if !e.isDefaulted(c, offer.Terms) {
		return nil, ErrLoanNotDefaulted.With("start_block", *c.StartBlock, "duration", offer.Terms.DurationInBlocks, "height", e.height())
	}
	out, err := e.returnAssets(c, offer.Lender)
	if err != nil {
		return nil, err
	}
	c.State = LoanDefaulted
	if err := e.store.putCollateral(msg.LoanID, c); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddMessages(out...).
		AddAttribute("action", "withdraw_defaulted_loan").
		AddAttribute("borrower", msg.Borrower).
		AddAttribute("lender", offer.Lender).
		AddAttribute("loan_id", strconv.FormatUint(msg.LoanID, 10)), nil
}

func (e *Engine) SetOwner(sender string, msg SetOwner) (*types.Response, error) {
	if err := e.requireOwner(sender); err != nil {
		return nil, err
	}
	owner, err := common.ValidateAddr(e.deps.API, msg.Owner)
	if err != nil {
		return nil, err
	}
	e.info.Owner = owner
	return e.saveParameter("owner", owner)
}

func (e *Engine) SetFeeDistributor(sender string, msg SetFeeDistributor) (*types.Response, error) {
	if err := e.requireOwner(sender); err != nil {
		return nil, err
	}
	addr, err := common.ValidateAddr(e.deps.API, msg.FeeDistributor)
	if err != nil {
		return nil, err
	}
	e.info.FeeDistributor = addr
	return e.saveParameter("fee_distributor", addr)
}

func (e *Engine) SetFeeRate(sender string, msg SetFeeRate) (*types.Response, error) {
	if err := e.requireOwner(sender); err != nil {
		return nil, err
	}
	if err := validateFeeRate(msg.FeeRate); err != nil {
		return nil, err
	}
	e.info.FeeRate = common.Amount(msg.FeeRate)
	return e.saveParameter("fee_rate", e.info.FeeRate.String())
}

func (e *Engine) SetLock(sender string, msg SetLock) (*types.Response, error) {
	if err := e.requireOwner(sender); err != nil {
		return nil, err
	}
	e.info.Locked = msg.Lock
	return e.saveParameter("lock", strconv.FormatBool(msg.Lock))
}

func (e *Engine) saveParameter(name, value string) (*types.Response, error) {
	if err := e.store.putInfo(e.info); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "parameter_update").
		AddAttribute("parameter", name).
		AddAttribute("value", value), nil
}
