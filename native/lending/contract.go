// Package lending implements the NFT-collateral lender. Borrowers pledge a
// cw721 token, draw principle from the vault and repay it with interest;
// overdue or under-collateralised loans can be liquidated by anyone.
package lending

import (
	"encoding/json"
	"math/big"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

const CodeName = "lender"

type Contract struct{}

func New() *Contract { return &Contract{} }

func (c *Contract) Instantiate(deps types.Deps, _ types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("%v", err)
	}
	cfg := ContractInfo{
		Name:                msg.Name,
		Owner:               info.Sender,
		Oracle:              info.Sender,
		IncreasorIncentives: msg.IncreasorIncentives,
		InterestsFeeRate:    msg.InterestsFeeRate,
		Params:              DefaultParams(),
	}
	var err error
	if msg.Owner != nil {
		if cfg.Owner, err = common.ValidateAddr(deps.API, *msg.Owner); err != nil {
			return nil, err
		}
	}
	if msg.Oracle != nil {
		if cfg.Oracle, err = common.ValidateAddr(deps.API, *msg.Oracle); err != nil {
			return nil, err
		}
	}
	if cfg.VaultToken, err = common.ValidateAddr(deps.API, msg.VaultToken); err != nil {
		return nil, err
	}
	if cfg.FeeDistributor, err = common.ValidateAddr(deps.API, msg.FeeDistributor); err != nil {
		return nil, err
	}
	if msg.Params != nil {
		cfg.Params = cfg.Params.merge(*msg.Params)
		if msg.Params.IncreasorIncentives != nil && cfg.IncreasorIncentives == nil {
			cfg.IncreasorIncentives = msg.Params.IncreasorIncentives
		}
		if msg.Params.InterestsFeeRate != nil && cfg.InterestsFeeRate == nil {
			cfg.InterestsFeeRate = msg.Params.InterestsFeeRate
		}
	}
	cfg.EnsureDefaults()
	if err := cfg.Validate(); err != nil {
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
	case msg.Borrow != nil:
		return e.Borrow(info.Sender, *msg.Borrow)
	case msg.BorrowMore != nil:
		return e.BorrowMore(info.Sender, *msg.BorrowMore)
	case msg.Repay != nil:
		return e.Repay(info, *msg.Repay)
	case msg.Receive != nil:
		return e.Receive(info, *msg.Receive)
	case msg.RaiseRate != nil:
		return e.RaiseRate(info.Sender, *msg.RaiseRate)
	case msg.LowerRate != nil:
		return e.LowerRate(info.Sender, *msg.LowerRate)
	case msg.SetOwner != nil:
		return e.SetOwner(info.Sender, *msg.SetOwner)
	case msg.SetOracle != nil:
		return e.SetOracle(info.Sender, *msg.SetOracle)
	case msg.ToggleLock != nil:
		return e.ToggleLock(info.Sender, *msg.ToggleLock)
	case msg.SetParams != nil:
		return e.SetParams(info.Sender, *msg.SetParams)
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
	case msg.Params != nil:
		return common.EncodeResponse(e.info.Params, nil)
	case msg.Loan != nil:
		return common.EncodeResponse(e.QueryLoan(*msg.Loan))
	case msg.Loans != nil:
		return common.EncodeResponse(e.QueryLoans(*msg.Loans))
	case msg.LoanValue != nil:
		return common.EncodeResponse(e.QueryLoanValue(*msg.LoanValue))
	case msg.BorrowZone != nil:
		return common.EncodeResponse(e.QueryBorrowZone(*msg.BorrowZone))
	}
	return nil, cerrors.ErrInvalidMessage
}

func (e *Engine) QueryLoan(ref LoanRef) (LoanResponse, error) {
	l, err := e.store.loan(ref.Borrower, ref.LoanID)
	if err != nil {
		return LoanResponse{}, err
	}
	return LoanResponse{Borrower: ref.Borrower, LoanID: ref.LoanID, Loan: l}, nil
}

func (e *Engine) QueryLoans(q LoansQuery) ([]LoanResponse, error) {
	ids, err := e.store.loanIDs(q.Borrower)
	if err != nil {
		return nil, err
	}
	after := func(uint64) bool { return true }
	if q.StartAfter != nil {
		start := *q.StartAfter
		after = func(id uint64) bool { return id > start }
	}
	page := common.Page(ids, after, q.Limit)
	out := make([]LoanResponse, 0, len(page))
	for _, id := range page {
		l, err := e.store.loan(q.Borrower, id)
		if err != nil {
			return nil, err
		}
		out = append(out, LoanResponse{Borrower: q.Borrower, LoanID: id, Loan: l})
	}
	return out, nil
}

func (e *Engine) QueryLoanValue(ref LoanRef) (LoanValueResponse, error) {
	l, err := e.store.loan(ref.Borrower, ref.LoanID)
	if err != nil {
		return LoanValueResponse{}, err
	}
	interests, err := Interests(l, e.now())
	if err != nil {
		return LoanValueResponse{}, err
	}
	value, err := common.Add128(l.Principle, interests)
	if err != nil {
		return LoanValueResponse{}, err
	}
	return LoanValueResponse{Principle: common.Amount(l.Principle), Interests: interests, Value: value}, nil
}

func (e *Engine) QueryBorrowZone(ref LoanRef) (BorrowZoneResponse, error) {
	l, err := e.activeLoan(ref.Borrower, ref.LoanID)
	if err != nil {
		return BorrowZoneResponse{}, err
	}
	zone, price, err := e.zone(l)
	if err != nil {
		return BorrowZoneResponse{}, err
	}
	value, err := Value(l, e.now())
	if err != nil {
		return BorrowZoneResponse{}, err
	}
	safe, _, err := ZoneLimits(price)
	if err != nil {
		return BorrowZoneResponse{}, err
	}
	return BorrowZoneResponse{Zone: zone, Value: value, Price: new(big.Int).Set(price), SafeLimit: safe}, nil
}
