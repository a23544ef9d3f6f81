package lending

import (
	"math/big"
	"strconv"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/asset"
	"nftfi/native/common"
	"nftfi/native/fees"
	"nftfi/native/oracle"
	"nftfi/native/tokens/cw20"
	"nftfi/native/vault"
)

var (
	ErrBorrowLocked                  = cerrors.New(cerrors.KindState, "borrow_locked", "the contract doesn't accept borrowing, debts can only be repaid")
	ErrTooMuchBorrowed               = cerrors.New(cerrors.KindValue, "too_much_borrowed", "too much borrowed against the collateral")
	ErrCannotLiquidateBeforeDefault  = cerrors.New(cerrors.KindState, "cannot_liquidate_before_default", "only the borrower can repay a loan that is not defaulted")
	ErrCannotRepayWhenDefaulted      = cerrors.New(cerrors.KindState, "cannot_repay_when_defaulted", "the loan is defaulted and can't be repaid by the borrower")
	ErrCanOnlyRepayWholeFixedLoan    = cerrors.New(cerrors.KindValue, "can_only_repay_whole_fixed_loan", "fixed loans cannot be repaid partially")
	ErrCanOnlyLiquidateWholeLoan     = cerrors.New(cerrors.KindValue, "can_only_liquidate_whole_loan", "loans cannot be liquidated partially")
	ErrAssetAlreadyWithdrawn         = cerrors.New(cerrors.KindState, "asset_already_withdrawn", "the collateral has already been withdrawn")
	ErrOnlyBorrowerCanLowerRate      = cerrors.New(cerrors.KindAuthorization, "only_borrower_can_lower_rate", "only the borrower can lower the rate")
	ErrCantIncreaseRateMultipleTimes = cerrors.New(cerrors.KindState, "cant_increase_rate_multiple_times", "the rate was already increased")
	ErrOnlyFromExpensiveZone         = cerrors.New(cerrors.KindState, "only_from_expensive_zone", "the loan must be in the expensive zone")
	ErrOnlyFromSafeZone              = cerrors.New(cerrors.KindState, "only_from_safe_zone", "the loan must be in the safe zone")
	ErrFixedLoanNoInterestRate       = cerrors.New(cerrors.KindValidation, "fixed_loan_no_interest_rate", "fixed loans have no interest rate")
	ErrAssetsSentDontMatch           = cerrors.New(cerrors.KindValidation, "assets_sent_dont_match", "the assets sent don't match the announced amount")
	ErrMustAtLeastCoverIncreasor     = cerrors.New(cerrors.KindValue, "must_at_least_cover_increasor", "a partial repayment must at least cover the increasor bounty")
	ErrIncreasorNotPaid              = cerrors.New(cerrors.KindState, "increasor_not_paid", "the rate increasor has not been paid yet")
	ErrLoanNotFound                  = cerrors.New(cerrors.KindState, "loan_not_found", "loan not found")
	ErrPriceUnavailable              = cerrors.New(cerrors.KindExternal, "price_unavailable", "no usable oracle price for the collateral")
	ErrInvalidBorrowMode             = cerrors.New(cerrors.KindValidation, "invalid_borrow_mode", "unknown borrow mode")
	ErrZeroAmount                    = cerrors.New(cerrors.KindValidation, "zero_amount", "amount must be positive")
)

const moduleName = "lender"

// IsLocked lets the contract info act as the lock view of the borrow path.
func (c ContractInfo) IsLocked() bool { return c.BorrowLocked }

// Engine executes a single lender call against the contract keyspace.
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

func (e *Engine) now() uint64 { return e.env.Block.Height }

func (e *Engine) self() string { return e.env.Contract.Address }

func positive(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	return common.CheckU128(amount)
}

// unit asks the vault which asset it lends.
func (e *Engine) unit() (asset.Info, error) {
	var info asset.Info
	if err := e.deps.Querier.QueryWasmSmart(e.info.VaultToken, vault.AssetQueryMsg(), &info); err != nil {
		return asset.Info{}, ErrPriceUnavailable.Wrapf("vault asset: %v", err)
	}
	return info, nil
}

// price returns the fresh oracle price of collection in unit.
func (e *Engine) price(collection string, unit asset.Info) (*big.Int, error) {
	var res oracle.NftPriceResponse
	if err := e.deps.Querier.QueryWasmSmart(e.info.Oracle, oracle.PriceQuery(collection, unit), &res); err != nil {
		return nil, ErrPriceUnavailable.With("collection", collection).Wrapf("%v", err)
	}
	if res.Timeout {
		return nil, ErrPriceUnavailable.With("collection", collection, "reason", "timeout")
	}
	if res.Price == nil {
		return nil, ErrPriceUnavailable.With("collection", collection)
	}
	return res.Price, nil
}

func (e *Engine) activeLoan(borrower string, id uint64) (Loan, error) {
	l, err := e.store.loan(borrower, id)
	if err != nil {
		return Loan{}, err
	}
	if l.Collateral == nil {
		return Loan{}, ErrAssetAlreadyWithdrawn
	}
	return l, nil
}

func (e *Engine) vaultBorrow(amount *big.Int, receiver string) (types.CosmosMsg, error) {
	return types.NewWasmExecute(e.info.VaultToken, vault.BorrowMsg(amount, receiver))
}

// Borrow pledges an NFT and draws principle from the vault.
func (e *Engine) Borrow(sender string, msg Borrow) (*types.Response, error) {
	if err := common.Guard(e.info, moduleName); err != nil {
		return nil, ErrBorrowLocked
	}
	if err := positive(msg.AssetsToBorrow); err != nil {
		return nil, err
	}
	if !msg.BorrowMode.Valid() {
		return nil, ErrInvalidBorrowMode.With("mode", msg.BorrowMode)
	}
	collection, err := common.ValidateAddr(e.deps.API, msg.AssetInfo.NftAddress)
	if err != nil {
		return nil, err
	}
	unit, err := e.unit()
	if err != nil {
		return nil, err
	}
	price, err := e.price(collection, unit)
	if err != nil {
		return nil, err
	}
	safe, _, err := ZoneLimits(price)
	if err != nil {
		return nil, err
	}
	if msg.AssetsToBorrow.Cmp(safe) > 0 {
		return nil, ErrTooMuchBorrowed.With("wanted", msg.AssetsToBorrow, "limit", safe)
	}

	l := Loan{
		Collateral: &Cw721Info{NftAddress: collection, TokenID: msg.AssetInfo.TokenID},
		Principle:  common.Amount(msg.AssetsToBorrow),
		StartBlock: e.now(),
		BorrowZone: SafeZone,
	}
	if msg.BorrowMode == BorrowModeFixed {
		interests, err := percentOf(l.Principle, e.info.Params.FixedInterestRate)
		if err != nil {
			return nil, err
		}
		l.Interests.Fixed = &FixedInterests{Interests: interests, Duration: e.info.Params.FixedDuration}
	} else {
		l.Interests.Continuous = &ContinuousInterests{
			LastInterestRate: common.Amount(e.info.Params.ContinuousSafeRate),
			InterestsAccrued: new(big.Int),
		}
	}
	id, err := e.store.nextLoanID(sender)
	if err != nil {
		return nil, err
	}
	if err := e.store.putLoan(sender, id, l); err != nil {
		return nil, err
	}

	pull, err := asset.Cw721(collection, msg.AssetInfo.TokenID).PullMsg(sender, e.self())
	if err != nil {
		return nil, err
	}
	draw, err := e.vaultBorrow(l.Principle, sender)
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddMessage(pull).
		AddMessage(draw).
		AddAttribute("action", "borrow").
		AddAttribute("borrower", sender).
		AddAttribute("loan_id", strconv.FormatUint(id, 10)).
		AddAttribute("collateral_address", collection).
		AddAttribute("collateral_token_id", msg.AssetInfo.TokenID).
		AddAttribute("assets", l.Principle.String()).
		AddAttribute("borrow_mode", string(msg.BorrowMode)), nil
}

// BorrowMore grows a continuous loan that is still in the safe zone.
func (e *Engine) BorrowMore(sender string, msg BorrowMore) (*types.Response, error) {
	if err := common.Guard(e.info, moduleName); err != nil {
		return nil, ErrBorrowLocked
	}
	if err := positive(msg.AssetsToBorrow); err != nil {
		return nil, err
	}
	l, err := e.activeLoan(sender, msg.LoanID)
	if err != nil {
		return nil, err
	}
	if l.IsFixed() {
		return nil, ErrFixedLoanNoInterestRate.Wrapf("fixed loans cannot be extended")
	}
	if l.RateIncreasor != nil {
		return nil, ErrIncreasorNotPaid
	}
	unit, err := e.unit()
	if err != nil {
		return nil, err
	}
	price, err := e.price(l.Collateral.NftAddress, unit)
	if err != nil {
		return nil, err
	}
	value, err := Value(l, e.now())
	if err != nil {
		return nil, err
	}
	zone, err := ZoneOf(value, price)
	if err != nil {
		return nil, err
	}
	if zone != SafeZone {
		return nil, ErrOnlyFromSafeZone.With("zone", zone)
	}
	if err := capitalise(&l, e.now()); err != nil {
		return nil, err
	}
	if l.Principle, err = common.Add128(l.Principle, msg.AssetsToBorrow); err != nil {
		return nil, err
	}
	total, err := common.Add128(l.Principle, l.Interests.Continuous.InterestsAccrued)
	if err != nil {
		return nil, err
	}
	safe, _, err := ZoneLimits(price)
	if err != nil {
		return nil, err
	}
	if total.Cmp(safe) > 0 {
		return nil, ErrTooMuchBorrowed.With("wanted", total, "limit", safe)
	}
	l.Interests.Continuous.LastInterestRate = common.Amount(e.info.Params.ContinuousSafeRate)
	l.BorrowZone = SafeZone
	if err := e.store.putLoan(sender, msg.LoanID, l); err != nil {
		return nil, err
	}
	draw, err := e.vaultBorrow(msg.AssetsToBorrow, sender)
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddMessage(draw).
		AddAttribute("action", "borrow_more").
		AddAttribute("borrower", sender).
		AddAttribute("loan_id", strconv.FormatUint(msg.LoanID, 10)).
		AddAttribute("assets", msg.AssetsToBorrow.String()), nil
}

// RaiseRate moves an expensive-zone continuous loan to the expensive rate and
// records the caller as increasor.
func (e *Engine) RaiseRate(sender string, ref LoanRef) (*types.Response, error) {
	borrower, err := common.ValidateAddr(e.deps.API, ref.Borrower)
	if err != nil {
		return nil, err
	}
	l, err := e.activeLoan(borrower, ref.LoanID)
	if err != nil {
		return nil, err
	}
	if l.IsFixed() {
		return nil, ErrFixedLoanNoInterestRate
	}
	if l.RateIncreasor != nil {
		return nil, ErrCantIncreaseRateMultipleTimes
	}
	zone, _, err := e.zone(l)
	if err != nil {
		return nil, err
	}
	if zone != ExpensiveZone {
		return nil, ErrOnlyFromExpensiveZone.With("zone", zone)
	}
	if err := capitalise(&l, e.now()); err != nil {
		return nil, err
	}
	l.RateIncreasor = &RateIncreasor{Address: sender, PreviousRate: common.Amount(l.Interests.Continuous.LastInterestRate)}
	l.Interests.Continuous.LastInterestRate = common.Amount(e.info.Params.ContinuousExpensiveRate)
	l.BorrowZone = ExpensiveZone
	if err := e.store.putLoan(borrower, ref.LoanID, l); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "raise_rate").
		AddAttribute("borrower", borrower).
		AddAttribute("loan_id", strconv.FormatUint(ref.LoanID, 10)).
		AddAttribute("increasor", sender).
		AddAttribute("rate", l.Interests.Continuous.LastInterestRate.String()), nil
}

// LowerRate lets the borrower return a safe-zone loan to the safe rate once
// any increasor has been paid.
func (e *Engine) LowerRate(sender string, ref LoanRef) (*types.Response, error) {
	borrower, err := common.ValidateAddr(e.deps.API, ref.Borrower)
	if err != nil {
		return nil, err
	}
	if sender != borrower {
		return nil, ErrOnlyBorrowerCanLowerRate
	}
	l, err := e.activeLoan(borrower, ref.LoanID)
	if err != nil {
		return nil, err
	}
	if l.IsFixed() {
		return nil, ErrFixedLoanNoInterestRate
	}
	if l.RateIncreasor != nil {
		return nil, ErrIncreasorNotPaid
	}
	zone, _, err := e.zone(l)
	if err != nil {
		return nil, err
	}
	if zone != SafeZone {
		return nil, ErrOnlyFromSafeZone.With("zone", zone)
	}
	if err := capitalise(&l, e.now()); err != nil {
		return nil, err
	}
	l.Interests.Continuous.LastInterestRate = common.Amount(e.info.Params.ContinuousSafeRate)
	l.BorrowZone = SafeZone
	if err := e.store.putLoan(borrower, ref.LoanID, l); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("action", "lower_rate").
		AddAttribute("borrower", borrower).
		AddAttribute("loan_id", strconv.FormatUint(ref.LoanID, 10)).
		AddAttribute("rate", l.Interests.Continuous.LastInterestRate.String()), nil
}

// zone derives the loan's current zone from its value and the oracle price.
func (e *Engine) zone(l Loan) (BorrowZone, *big.Int, error) {
	unit, err := e.unit()
	if err != nil {
		return "", nil, err
	}
	price, err := e.price(l.Collateral.NftAddress, unit)
	if err != nil {
		return "", nil, err
	}
	value, err := Value(l, e.now())
	if err != nil {
		return "", nil, err
	}
	zone, err := ZoneOf(value, price)
	return zone, price, err
}

// payment describes the funds that came with a repayment.
type payment struct {
	payer  string
	amount *big.Int
	unit   asset.Info
}

// paymentFromFunds checks that the coins attached to a direct repay are
// exactly the announced amount of the vault's native underlying.
func (e *Engine) paymentFromFunds(info types.MessageInfo, assets *big.Int) (payment, error) {
	unit, err := e.unit()
	if err != nil {
		return payment{}, err
	}
	if !unit.IsNative() {
		return payment{}, ErrAssetsSentDontMatch.Wrapf("repay through the token contract")
	}
	paid, err := common.MustPay(info.Funds, *unit.Coin)
	if err != nil {
		return payment{}, ErrAssetsSentDontMatch.Wrapf("%v", err)
	}
	if paid.Cmp(assets) != 0 {
		return payment{}, ErrAssetsSentDontMatch.With("announced", assets, "sent", paid)
	}
	return payment{payer: info.Sender, amount: paid, unit: unit}, nil
}

// Receive accepts a repayment delivered by the vault's cw20 underlying.
func (e *Engine) Receive(info types.MessageInfo, msg cw20.ReceiveMsg) (*types.Response, error) {
	unit, err := e.unit()
	if err != nil {
		return nil, err
	}
	if !unit.IsCw20() || *unit.Cw20 != info.Sender {
		return nil, ErrAssetsSentDontMatch.With("token", info.Sender)
	}
	var inner ExecuteMsg
	if err := common.DecodeMsg(msg.Msg, &inner); err != nil {
		return nil, err
	}
	if inner.Repay == nil {
		return nil, cerrors.ErrInvalidMessage.Wrapf("only repay is accepted through receive")
	}
	if err := positive(inner.Repay.Assets); err != nil {
		return nil, err
	}
	if msg.Amount == nil || msg.Amount.Cmp(inner.Repay.Assets) != 0 {
		return nil, ErrAssetsSentDontMatch.With("announced", inner.Repay.Assets, "sent", common.Amount(msg.Amount))
	}
	sender, err := common.ValidateAddr(e.deps.API, msg.Sender)
	if err != nil {
		return nil, err
	}
	return e.repay(*inner.Repay, payment{payer: sender, amount: common.Amount(msg.Amount), unit: unit})
}

// Repay settles a loan with native coins.
func (e *Engine) Repay(info types.MessageInfo, msg Repay) (*types.Response, error) {
	if err := positive(msg.Assets); err != nil {
		return nil, err
	}
	pay, err := e.paymentFromFunds(info, msg.Assets)
	if err != nil {
		return nil, err
	}
	return e.repay(msg, pay)
}

func (e *Engine) defaulted(l Loan, unit asset.Info) (bool, *big.Int, error) {
	if l.IsFixed() {
		return fixedDefaulted(l, e.now()), nil, nil
	}
	price, err := e.price(l.Collateral.NftAddress, unit)
	if err != nil {
		return false, nil, err
	}
	value, err := Value(l, e.now())
	if err != nil {
		return false, nil, err
	}
	_, expensive, err := ZoneLimits(price)
	if err != nil {
		return false, nil, err
	}
	return value.Cmp(expensive) > 0, price, nil
}

func (e *Engine) repay(msg Repay, pay payment) (*types.Response, error) {
	borrower, err := common.ValidateAddr(e.deps.API, msg.Borrower)
	if err != nil {
		return nil, err
	}
	l, err := e.activeLoan(borrower, msg.LoanID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	value, err := Value(l, now)
	if err != nil {
		return nil, err
	}
	interests, err := Interests(l, now)
	if err != nil {
		return nil, err
	}
	bounty, err := IncreasorBounty(l, now, e.info.IncreasorIncentives)
	if err != nil {
		return nil, err
	}
	isDefaulted, price, err := e.defaulted(l, pay.unit)
	if err != nil {
		return nil, err
	}
	if pay.payer == borrower {
		if isDefaulted {
			return nil, ErrCannotRepayWhenDefaulted
		}
	} else {
		if !isDefaulted {
			return nil, ErrCannotLiquidateBeforeDefault
		}
		if pay.amount.Cmp(value) < 0 {
			return nil, ErrCanOnlyLiquidateWholeLoan.With("expected", value, "provided", pay.amount)
		}
	}

	res := types.NewResponse()
	collection := l.Collateral.NftAddress
	var interestPaid *big.Int
	full := pay.amount.Cmp(value) >= 0
	if full {
		transfer, err := asset.Cw721(collection, l.Collateral.TokenID).TransferMsg(e.self(), pay.payer)
		if err != nil {
			return nil, err
		}
		res.AddMessage(transfer)
		interestPaid = interests
		l.Collateral = nil
		l.Principle = new(big.Int)
		if l.Interests.Continuous != nil {
			l.Interests.Continuous.InterestsAccrued = new(big.Int)
		}
	} else {
		if l.IsFixed() {
			return nil, ErrCanOnlyRepayWholeFixedLoan.With("expected", value, "provided", pay.amount)
		}
		if pay.amount.Cmp(bounty) < 0 {
			return nil, ErrMustAtLeastCoverIncreasor.With("bounty", bounty, "provided", pay.amount)
		}
		if err := capitalise(&l, now); err != nil {
			return nil, err
		}
		rest := new(big.Int).Sub(pay.amount, bounty)
		c := l.Interests.Continuous
		interestPaid = common.Min(rest, c.InterestsAccrued)
		c.InterestsAccrued = new(big.Int).Sub(c.InterestsAccrued, interestPaid)
		l.Principle, err = common.Sub(l.Principle, new(big.Int).Sub(rest, interestPaid))
		if err != nil {
			return nil, err
		}
		newValue, err := common.Add128(l.Principle, c.InterestsAccrued)
		if err != nil {
			return nil, err
		}
		zone, err := ZoneOf(newValue, price)
		if err != nil {
			return nil, err
		}
		if zone == SafeZone {
			c.LastInterestRate = common.Amount(e.info.Params.ContinuousSafeRate)
		}
		l.BorrowZone = zone
	}

	fee, err := percentOf(interestPaid, e.info.InterestsFeeRate)
	if err != nil {
		return nil, err
	}
	if fee.Cmp(pay.amount) > 0 {
		fee = common.Amount(pay.amount)
	}
	toVault := new(big.Int).Sub(pay.amount, fee)
	if l.RateIncreasor != nil {
		bounty = common.Min(bounty, toVault)
		if bounty.Sign() > 0 {
			out, err := pay.unit.WithAmount(bounty).TransferMsg(e.self(), l.RateIncreasor.Address)
			if err != nil {
				return nil, err
			}
			res.AddMessage(out)
		}
		toVault.Sub(toVault, bounty)
		res.AddAttribute("increasor", l.RateIncreasor.Address)
		l.RateIncreasor = nil
	} else {
		bounty = new(big.Int)
	}
	if fee.Sign() > 0 {
		out, err := e.feeMsg(pay.unit, fee, collection)
		if err != nil {
			return nil, err
		}
		res.AddMessage(out)
	}
	if toVault.Sign() > 0 {
		out, err := e.vaultRepay(pay.unit, toVault)
		if err != nil {
			return nil, err
		}
		res.AddMessage(out)
	}
	l.StartBlock = now
	if err := e.store.putLoan(borrower, msg.LoanID, l); err != nil {
		return nil, err
	}
	return res.
		AddAttribute("action", "repay").
		AddAttribute("caller", pay.payer).
		AddAttribute("borrower", borrower).
		AddAttribute("loan_id", strconv.FormatUint(msg.LoanID, 10)).
		AddAttribute("assets", pay.amount.String()).
		AddAttribute("fee", fee.String()).
		AddAttribute("increasor_bounty", bounty.String()).
		AddAttribute("vault_repay", toVault.String()).
		AddAttribute("collateral_withdrawn", strconv.FormatBool(full)), nil
}

func (e *Engine) feeMsg(unit asset.Info, fee *big.Int, collection string) (types.CosmosMsg, error) {
	if unit.IsNative() {
		return fees.DepositMsg(e.info.FeeDistributor, types.NewCoinBig(*unit.Coin, fee), collection)
	}
	return cw20.TransferMsg(*unit.Cw20, e.info.FeeDistributor, fee)
}

func (e *Engine) vaultRepay(unit asset.Info, amount *big.Int) (types.CosmosMsg, error) {
	if unit.IsNative() {
		return types.NewWasmExecute(e.info.VaultToken, vault.RepayMsg(amount), types.NewCoinBig(*unit.Coin, amount))
	}
	return cw20.SendMsg(*unit.Cw20, e.info.VaultToken, amount, vault.RepayMsg(amount))
}

func (e *Engine) requireOwner(sender string) error {
	if sender != e.info.Owner {
		return cerrors.ErrUnauthorized
	}
	return nil
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

func (e *Engine) SetOracle(sender string, msg SetOracle) (*types.Response, error) {
	if err := e.requireOwner(sender); err != nil {
		return nil, err
	}
	addr, err := common.ValidateAddr(e.deps.API, msg.Oracle)
	if err != nil {
		return nil, err
	}
	e.info.Oracle = addr
	return e.saveParameter("oracle", addr)
}

func (e *Engine) ToggleLock(sender string, msg ToggleLock) (*types.Response, error) {
	if err := e.requireOwner(sender); err != nil {
		return nil, err
	}
	e.info.BorrowLocked = msg.Lock
	return e.saveParameter("borrow_locked", strconv.FormatBool(msg.Lock))
}

func (e *Engine) SetParams(sender string, update ParamsUpdate) (*types.Response, error) {
	if err := e.requireOwner(sender); err != nil {
		return nil, err
	}
	e.info.Params = e.info.Params.merge(update)
	if update.IncreasorIncentives != nil {
		e.info.IncreasorIncentives = common.Amount(update.IncreasorIncentives)
	}
	if update.InterestsFeeRate != nil {
		e.info.InterestsFeeRate = common.Amount(update.InterestsFeeRate)
	}
	if err := e.info.Validate(); err != nil {
		return nil, err
	}
	return e.saveParameter("params", "updated")
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
