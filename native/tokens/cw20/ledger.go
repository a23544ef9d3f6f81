package cw20

import (
	"fmt"
	"math/big"
	"regexp"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/common"
)

var symbolPattern = regexp.MustCompile(`^[a-zA-Z\-]{3,12}$`)

// TokenInfo describes a fungible token. Minter is empty when minting is
// disabled.
type TokenInfo struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
	Minter      string
	Cap         *big.Int
}

// Validate applies the cw20 naming rules.
func (t TokenInfo) Validate() error {
	if n := len(t.Name); n < 3 || n > 50 {
		return ErrInvalidTokenName
	}
	if !symbolPattern.MatchString(t.Symbol) {
		return ErrInvalidTokenSymbol
	}
	if t.Decimals > 18 {
		return ErrInvalidDecimals
	}
	return nil
}

type storedTokenInfo struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
	Minter      string
	HasCap      bool
	Cap         *big.Int
}

// Allowance is the spendable amount granted by an owner.
type Allowance struct {
	Spender string
	Amount  *big.Int
	Expires Expiration
}

type storedAllowance struct {
	Amount  *big.Int
	Expires StoredExpiration
}

var (
	tokenInfoKey   = []byte("cw20/token_info")
	accountsKey    = []byte("cw20/accounts")
	balancePrefix  = "cw20/balance/"
	allowancePfx   = "cw20/allowance/"
	spenderListPfx = "cw20/spenders/"
)

func balanceKey(addr string) []byte { return []byte(balancePrefix + addr) }

func allowanceKey(owner, spender string) []byte {
	return []byte(fmt.Sprintf("%s%s/%s", allowancePfx, owner, spender))
}

func spendersKey(owner string) []byte { return []byte(spenderListPfx + owner) }

// Ledger keeps balances, supply and allowances of a fungible token inside a
// contract keyspace.
type Ledger struct {
	store types.Store
}

func NewLedger(store types.Store) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) TokenInfo() (TokenInfo, error) {
	var stored storedTokenInfo
	ok, err := l.store.KVGet(tokenInfoKey, &stored)
	if err != nil {
		return TokenInfo{}, err
	}
	if !ok {
		return TokenInfo{}, cerrors.ErrNotFound.With("item", "token_info")
	}
	info := TokenInfo{
		Name:        stored.Name,
		Symbol:      stored.Symbol,
		Decimals:    stored.Decimals,
		TotalSupply: common.Amount(stored.TotalSupply),
		Minter:      stored.Minter,
	}
	if stored.HasCap {
		info.Cap = common.Amount(stored.Cap)
	}
	return info, nil
}

func (l *Ledger) SetTokenInfo(info TokenInfo) error {
	stored := storedTokenInfo{
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: common.Amount(info.TotalSupply),
		Minter:      info.Minter,
		HasCap:      info.Cap != nil,
		Cap:         common.Amount(info.Cap),
	}
	return l.store.KVPut(tokenInfoKey, stored)
}

func (l *Ledger) Balance(addr string) (*big.Int, error) {
	bal, _, err := l.account(addr)
	return bal, err
}

// account loads the balance and reports whether addr is already indexed.
func (l *Ledger) account(addr string) (*big.Int, bool, error) {
	var bal big.Int
	ok, err := l.store.KVGet(balanceKey(addr), &bal)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return new(big.Int), false, nil
	}
	return &bal, true, nil
}

// setBalance stores amount. The accounts list is only touched for a new
// holder.
func (l *Ledger) setBalance(addr string, amount *big.Int, known bool) error {
	if err := l.store.KVPut(balanceKey(addr), amount); err != nil {
		return err
	}
	if known {
		return nil
	}
	return l.store.KVAppend(accountsKey, []byte(addr))
}

func (l *Ledger) credit(addr string, amount *big.Int) error {
	bal, known, err := l.account(addr)
	if err != nil {
		return err
	}
	next, err := common.Add128(bal, amount)
	if err != nil {
		return err
	}
	return l.setBalance(addr, next, known)
}

func (l *Ledger) debit(addr string, amount *big.Int) error {
	bal, known, err := l.account(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientFunds.With("balance", bal.String(), "required", amount.String())
	}
	return l.setBalance(addr, new(big.Int).Sub(bal, amount), known)
}

// Mint credits amount to addr and grows the supply, honouring the cap.
func (l *Ledger) Mint(addr string, amount *big.Int) error {
	info, err := l.TokenInfo()
	if err != nil {
		return err
	}
	supply, err := common.Add128(info.TotalSupply, amount)
	if err != nil {
		return err
	}
	if info.Cap != nil && supply.Cmp(info.Cap) > 0 {
		return ErrCannotExceedCap.With("cap", info.Cap.String(), "supply", supply.String())
	}
	info.TotalSupply = supply
	if err := l.SetTokenInfo(info); err != nil {
		return err
	}
	return l.credit(addr, amount)
}

// Burn removes amount from addr and shrinks the supply.
func (l *Ledger) Burn(addr string, amount *big.Int) error {
	if err := l.debit(addr, amount); err != nil {
		return err
	}
	info, err := l.TokenInfo()
	if err != nil {
		return err
	}
	supply, err := common.Sub(info.TotalSupply, amount)
	if err != nil {
		return err
	}
	info.TotalSupply = supply
	return l.SetTokenInfo(info)
}

// Move transfers amount between two accounts.
func (l *Ledger) Move(from, to string, amount *big.Int) error {
	if err := l.debit(from, amount); err != nil {
		return err
	}
	return l.credit(to, amount)
}

// Allowance returns the stored grant. Expired grants are returned as stored;
// callers decide how to treat them.
func (l *Ledger) Allowance(owner, spender string) (Allowance, error) {
	var stored storedAllowance
	ok, err := l.store.KVGet(allowanceKey(owner, spender), &stored)
	if err != nil {
		return Allowance{}, err
	}
	if !ok {
		return Allowance{Spender: spender, Amount: new(big.Int), Expires: Never()}, nil
	}
	return Allowance{Spender: spender, Amount: common.Amount(stored.Amount), Expires: stored.Expires.Expiration()}, nil
}

func (l *Ledger) putAllowance(owner string, a Allowance) error {
	if a.Amount.Sign() == 0 {
		if err := l.store.KVDelete(allowanceKey(owner, a.Spender)); err != nil {
			return err
		}
		return l.store.KVRemove(spendersKey(owner), []byte(a.Spender))
	}
	var prev storedAllowance
	known, err := l.store.KVGet(allowanceKey(owner, a.Spender), &prev)
	if err != nil {
		return err
	}
	if err := l.store.KVPut(allowanceKey(owner, a.Spender), storedAllowance{Amount: a.Amount, Expires: a.Expires.Stored()}); err != nil {
		return err
	}
	if known {
		return nil
	}
	return l.store.KVAppend(spendersKey(owner), []byte(a.Spender))
}

// IncreaseAllowance adds amount to the owner's grant for spender. An expired
// grant restarts from zero.
func (l *Ledger) IncreaseAllowance(block types.BlockInfo, owner, spender string, amount *big.Int, expires *Expiration) (Allowance, error) {
	if owner == spender {
		return Allowance{}, ErrCannotSetOwnAccount
	}
	current, err := l.Allowance(owner, spender)
	if err != nil {
		return Allowance{}, err
	}
	if current.Expires.IsExpired(block) {
		current.Amount = new(big.Int)
	}
	if expires != nil {
		if expires.IsExpired(block) {
			return Allowance{}, ErrInvalidExpiration
		}
		current.Expires = *expires
	}
	next, err := common.Add128(current.Amount, amount)
	if err != nil {
		return Allowance{}, err
	}
	current.Amount = next
	return current, l.putAllowance(owner, current)
}

// DecreaseAllowance lowers the grant, saturating at zero.
func (l *Ledger) DecreaseAllowance(block types.BlockInfo, owner, spender string, amount *big.Int, expires *Expiration) (Allowance, error) {
	if owner == spender {
		return Allowance{}, ErrCannotSetOwnAccount
	}
	current, err := l.Allowance(owner, spender)
	if err != nil {
		return Allowance{}, err
	}
	if current.Expires.IsExpired(block) {
		current.Amount = new(big.Int)
	}
	current.Amount = common.SatSub(current.Amount, amount)
	if expires != nil && current.Amount.Sign() > 0 {
		if expires.IsExpired(block) {
			return Allowance{}, ErrInvalidExpiration
		}
		current.Expires = *expires
	}
	return current, l.putAllowance(owner, current)
}

// DeductAllowance consumes amount from the grant at the executing block.
func (l *Ledger) DeductAllowance(block types.BlockInfo, owner, spender string, amount *big.Int) error {
	current, err := l.Allowance(owner, spender)
	if err != nil {
		return err
	}
	if current.Amount.Sign() == 0 {
		return ErrNoAllowance
	}
	if current.Expires.IsExpired(block) {
		return ErrExpired
	}
	if current.Amount.Cmp(amount) < 0 {
		return ErrNoAllowance.With("allowance", current.Amount.String(), "required", amount.String())
	}
	current.Amount = new(big.Int).Sub(current.Amount, amount)
	return l.putAllowance(owner, current)
}

// Accounts lists every address that ever held a balance, in first-seen order.
func (l *Ledger) Accounts() ([]string, error) {
	var raw [][]byte
	if err := l.store.KVGetList(accountsKey, &raw); err != nil {
		return nil, err
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = string(v)
	}
	return out, nil
}

// Allowances lists the grants made by owner, expired ones included.
func (l *Ledger) Allowances(owner string) ([]Allowance, error) {
	var raw [][]byte
	if err := l.store.KVGetList(spendersKey(owner), &raw); err != nil {
		return nil, err
	}
	out := make([]Allowance, 0, len(raw))
	for _, spender := range raw {
		a, err := l.Allowance(owner, string(spender))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
