// Package loans implements the peer-to-peer NFT loan marketplace. Borrowers
// escrow NFT bundles, lenders escrow principle as offers, and the contract
// settles repayment or default.
package loans

import (
	"encoding/json"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

const CodeName = "nft_loans"

type Contract struct{}

func New() *Contract { return &Contract{} }

func (c *Contract) Instantiate(deps types.Deps, _ types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("%v", err)
	}
	if err := common.ValidateName(msg.Name); err != nil {
		return nil, err
	}
	cfg := ContractInfo{Name: msg.Name, Owner: info.Sender, FeeRate: common.Amount(msg.FeeRate)}
	var err error
	if msg.Owner != nil {
		if cfg.Owner, err = common.ValidateAddr(deps.API, *msg.Owner); err != nil {
			return nil, err
		}
	}
	if cfg.FeeDistributor, err = common.ValidateAddr(deps.API, msg.FeeDistributor); err != nil {
		return nil, err
	}
	if err := validateFeeRate(cfg.FeeRate); err != nil {
		return nil, err
	}
	if err := newStore(deps.Storage).putInfo(cfg); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "init").
		AddAttribute("contract", CodeName).
		AddAttribute("owner", cfg.Owner), nil
}

func (c *Contract) Execute(deps types.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	e, err := newEngine(deps, env)
	if err != nil {
		return nil, err
	}
	switch {
	case msg.DepositCollaterals != nil:
		return e.DepositCollaterals(info.Sender, *msg.DepositCollaterals)
	case msg.ModifyCollaterals != nil:
		return e.ModifyCollaterals(info.Sender, *msg.ModifyCollaterals)
	case msg.WithdrawCollaterals != nil:
		return e.WithdrawCollaterals(info.Sender, *msg.WithdrawCollaterals)
	case msg.AcceptLoan != nil:
		return e.AcceptLoan(info, *msg.AcceptLoan)
	case msg.AcceptOffer != nil:
		return e.AcceptOffer(info.Sender, *msg.AcceptOffer)
	case msg.MakeOffer != nil:
		return e.MakeOffer(info, *msg.MakeOffer)
	case msg.CancelOffer != nil:
		return e.CancelOffer(info.Sender, *msg.CancelOffer)
	case msg.RefuseOffer != nil:
		return e.RefuseOffer(info.Sender, *msg.RefuseOffer)
	case msg.WithdrawRefusedOffer != nil:
		return e.WithdrawRefusedOffer(info.Sender, *msg.WithdrawRefusedOffer)
	case msg.RepayBorrowedFunds != nil:
		return e.RepayBorrowedFunds(info, *msg.RepayBorrowedFunds)
	case msg.WithdrawDefaultedLoan != nil:
		return e.WithdrawDefaultedLoan(info.Sender, *msg.WithdrawDefaultedLoan)
	case msg.SetOwner != nil:
		return e.SetOwner(info.Sender, *msg.SetOwner)
	case msg.SetFeeDistributor != nil:
		return e.SetFeeDistributor(info.Sender, *msg.SetFeeDistributor)
	case msg.SetFeeRate != nil:
		return e.SetFeeRate(info.Sender, *msg.SetFeeRate)
	case msg.SetLock != nil:
		return e.SetLock(info.Sender, *msg.SetLock)
	}
	return nil, cerrors.ErrInvalidMessage
}

func (c *Contract) Query(deps types.Deps, env types.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := common.DecodeMsg(raw, &msg); err != nil {
		return nil, err
	}
	e, err := newEngine(deps, env)
	if err != nil {
		return nil, err
	}
	switch {
	case msg.ContractInfo != nil:
		return common.EncodeResponse(e.info, nil)
	case msg.CollateralInfo != nil:
		return common.EncodeResponse(e.store.collateral(msg.CollateralInfo.Borrower, msg.CollateralInfo.LoanID))
	case msg.BorrowerInfo != nil:
		return common.EncodeResponse(e.QueryBorrowerInfo(msg.BorrowerInfo.Borrower))
	case msg.Collaterals != nil:
		return common.EncodeResponse(e.QueryCollaterals(*msg.Collaterals))
	case msg.OfferInfo != nil:
		return common.EncodeResponse(e.store.offer(msg.OfferInfo.OfferID))
	case msg.Offers != nil:
		offers, err := e.store.loanOffers(msg.Offers.Borrower, msg.Offers.LoanID)
		return common.EncodeResponse(pageOffers(offers, msg.Offers.StartAfter, msg.Offers.Limit), err)
	case msg.LenderOffers != nil:
		offers, err := e.store.lenderOffers(msg.LenderOffers.Lender)
		return common.EncodeResponse(pageOffers(offers, msg.LenderOffers.StartAfter, msg.LenderOffers.Limit), err)
	}
	return nil, cerrors.ErrInvalidMessage
}

func (e *Engine) QueryBorrowerInfo(borrower string) (BorrowerInfo, error) {
	info, ok, err := e.store.borrowerInfo(borrower)
	if err != nil {
		return BorrowerInfo{}, err
	}
	if !ok {
		return BorrowerInfo{}, cerrors.ErrNotFound.With("borrower", borrower)
	}
	return info, nil
}

func (e *Engine) QueryCollaterals(q CollateralsQuery) ([]CollateralResponse, error) {
	ids, err := e.store.collateralIDs(q.Borrower)
	if err != nil {
		return nil, err
	}
	after := func(uint64) bool { return true }
	if q.StartAfter != nil {
		start := *q.StartAfter
		after = func(id uint64) bool { return id > start }
	}
	page := common.Page(ids, after, q.Limit)
	out := make([]CollateralResponse, 0, len(page))
	for _, id := range page {
		c, err := e.store.collateral(q.Borrower, id)
		if err != nil {
			return nil, err
		}
		out = append(out, CollateralResponse{Borrower: q.Borrower, LoanID: id, Collateral: c})
	}
	return out, nil
}

// pageOffers pages offers ordered by their global index.
func pageOffers(offers []OfferInfo, startAfter *string, limit *uint32) []OfferInfo {
	after := func(OfferInfo) bool { return true }
	if startAfter != nil {
		start, ok := offerIndex(*startAfter)
		if ok {
			after = func(o OfferInfo) bool { return o.GlobalIndex > start }
		}
	}
	return common.Page(offers, after, limit)
}
