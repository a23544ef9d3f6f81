package vault

import (
	"errors"
	"math/big"
	"testing"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
	"nftfi/native/asset"
	"nftfi/native/internal/testutil"
	"nftfi/native/tokens/cw20"
)

func strPtr(s string) *string { return &s }

func setupVault(t *testing.T, underlying asset.Info) (types.Deps, *testutil.MockQuerier, *Contract) {
	t.Helper()
	deps, q := testutil.NewDeps()
	c := New()
	msg := InstantiateMsg{
		Name:     "Iliq treasury token",
		Symbol:   "ailiq",
		Decimals: 6,
		Asset:    underlying,
		Borrower: strPtr("borrower"),
	}
	if _, err := c.Instantiate(deps, testutil.Env(1, 1_000), testutil.Info("creator"), testutil.MustJSON(msg)); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return deps, q, c
}

func exec(deps types.Deps, c *Contract, info types.MessageInfo, msg ExecuteMsg) (*types.Response, error) {
	return c.Execute(deps, testutil.Env(2, 1_010), info, testutil.MustJSON(msg))
}

func shareBalance(t *testing.T, deps types.Deps, addr string) int64 {
	t.Helper()
	bal, err := cw20.NewLedger(deps.Storage).Balance(addr)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal.Int64()
}

func TestVaultSanity(t *testing.T) {
	deps, _, c := setupVault(t, asset.NativeInfo("uluna"))
	res, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 1_000_000)),
		ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(1_000_000), Receiver: "alice"}})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if shares, _ := res.Attribute("shares"); shares != "1000000" {
		t.Fatalf("unexpected shares attribute %q", shares)
	}
	if got := shareBalance(t, deps, "alice"); got != 1_000_000 {
		t.Fatalf("unexpected balance %d", got)
	}
	total, err := QueryTotalAssets(deps, testutil.Env(2, 1_010))
	if err != nil || total.TotalManagedAssets.Sign() != 0 {
		t.Fatalf("unexpected total assets %v err %v", total.TotalManagedAssets, err)
	}

	if _, err := exec(deps, c, testutil.Info("alice"), ExecuteMsg{Burn: &cw20.Burn{Amount: big.NewInt(500_000)}}); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if got := shareBalance(t, deps, "alice"); got != 500_000 {
		t.Fatalf("unexpected balance after burn %d", got)
	}

	env := testutil.Env(3, 1_020)
	shares, err := QueryConvertToShares(deps, env, big.NewInt(1_000_000))
	if err != nil {
		t.Fatalf("convert to shares: %v", err)
	}
	if shares.Amount.Cmp(big.NewInt(1_000_000)) > 0 {
		t.Fatalf("shares %s exceed assets", shares.Amount)
	}
	assets, err := QueryConvertToAssets(deps, env, shares.Amount)
	if err != nil {
		t.Fatalf("convert to assets: %v", err)
	}
	if assets.Amount.Cmp(big.NewInt(1_000_000)) > 0 {
		t.Fatalf("round trip %s exceeds input", assets.Amount)
	}
}

func TestMintRefundsSurplus(t *testing.T) {
	deps, q, c := setupVault(t, asset.NativeInfo("uluna"))
	res, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 100_000)),
		ExecuteMsg{Mint: &Mint{Shares: big.NewInt(30_762), Receiver: "alice"}})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if len(res.Messages) != 1 {
		t.Fatalf("expected one refund message, got %d", len(res.Messages))
	}
	send, err := testutil.BankSend(res.Messages[0])
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if send.ToAddress != "alice" || len(send.Amount) != 1 || send.Amount[0].Amount.Int64() != 69_238 {
		t.Fatalf("unexpected refund %+v", send)
	}
	if assets, _ := res.Attribute("assets"); assets != "30762" {
		t.Fatalf("unexpected assets attribute %q", assets)
	}
	if got := shareBalance(t, deps, "alice"); got != 30_762 {
		t.Fatalf("unexpected balance %d", got)
	}

	q.SetBalance(testutil.ContractAddr, "uluna", 30_762+10)
	_, err = exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 10)),
		ExecuteMsg{Mint: &Mint{Shares: big.NewInt(1_000), Receiver: "alice"}})
	if !errors.Is(err, ErrInsufficientAssetDeposited) {
		t.Fatalf("expected insufficient deposit, got %v", err)
	}
}

func TestPreviewsMatchExecution(t *testing.T) {
	deps, q, c := setupVault(t, asset.NativeInfo("uluna"))
	if _, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 3)),
		ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(3), Receiver: "alice"}}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	q.SetBalance(testutil.ContractAddr, "uluna", 10)
	env := testutil.Env(2, 1_010)

	converted, err := QueryConvertToAssets(deps, env, big.NewInt(1))
	if err != nil || converted.Amount.Int64() != 3 {
		t.Fatalf("unexpected conversion %v err %v", converted.Amount, err)
	}
	preview, err := QueryPreviewMint(deps, env, big.NewInt(1))
	if err != nil || preview.Amount.Int64() != 4 {
		t.Fatalf("unexpected mint preview %v err %v", preview.Amount, err)
	}

	q.SetBalance(testutil.ContractAddr, "uluna", 10+4)
	res, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", preview.Amount.Int64())),
		ExecuteMsg{Mint: &Mint{Shares: big.NewInt(1), Receiver: "alice"}})
	if err != nil {
		t.Fatalf("mint at previewed price: %v", err)
	}
	if len(res.Messages) != 0 {
		t.Fatalf("unexpected refund %+v", res.Messages)
	}
	if v, _ := res.Attribute("assets"); v != "4" {
		t.Fatalf("unexpected assets attribute %q", v)
	}

	burn, err := QueryPreviewWithdraw(deps, env, big.NewInt(4))
	if err != nil || burn.Amount.Int64() != 2 {
		t.Fatalf("unexpected withdraw preview %v err %v", burn.Amount, err)
	}
	floor, err := QueryConvertToShares(deps, env, big.NewInt(4))
	if err != nil || floor.Amount.Int64() != 1 {
		t.Fatalf("unexpected conversion %v err %v", floor.Amount, err)
	}
	res, err = exec(deps, c, testutil.Info("alice"), ExecuteMsg{Withdraw: &Withdraw{Assets: big.NewInt(4), Owner: "alice", Receiver: "alice"}})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if v, _ := res.Attribute("shares"); v != burn.Amount.String() {
		t.Fatalf("withdraw burnt %q, preview said %s", v, burn.Amount)
	}
	if got := shareBalance(t, deps, "alice"); got != 2 {
		t.Fatalf("unexpected balance %d", got)
	}
}

func TestDepositIntoWorthlessSupplyRejected(t *testing.T) {
	deps, q, c := setupVault(t, asset.NativeInfo("uluna"))
	if _, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 1_000)),
		ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(1_000), Receiver: "alice"}}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	// Every asset left the pool while the shares stayed outstanding.
	q.SetBalance(testutil.ContractAddr, "uluna", 100)
	_, err := exec(deps, c, testutil.Info("bob", types.NewCoin("uluna", 100)),
		ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(100), Receiver: "bob"}})
	if !errors.Is(err, ErrZeroShares) {
		t.Fatalf("expected zero shares, got %v", err)
	}
	if got := shareBalance(t, deps, "bob"); got != 0 {
		t.Fatalf("unexpected balance %d", got)
	}
	if _, err := exec(deps, c, testutil.Info("bob", types.NewCoin("uluna", 100)),
		ExecuteMsg{Mint: &Mint{Shares: big.NewInt(10), Receiver: "bob"}}); !errors.Is(err, ErrZeroAssets) {
		t.Fatalf("expected zero assets, got %v", err)
	}
}

func TestZeroAmountsRejected(t *testing.T) {
	deps, _, c := setupVault(t, asset.NativeInfo("uluna"))
	zero := big.NewInt(0)
	cases := map[string]ExecuteMsg{
		"deposit":  {Deposit: &Deposit{Assets: zero, Receiver: "alice"}},
		"mint":     {Mint: &Mint{Shares: zero, Receiver: "alice"}},
		"withdraw": {Withdraw: &Withdraw{Assets: zero, Owner: "alice", Receiver: "alice"}},
		"redeem":   {Redeem: &Redeem{Shares: zero, Owner: "alice", Receiver: "alice"}},
		"repay":    {Repay: &Repay{Assets: zero}},
	}
	for name, msg := range cases {
		if _, err := exec(deps, c, testutil.Info("alice"), msg); !errors.Is(err, ErrZeroDeposit) {
			t.Fatalf("%s: expected zero deposit error, got %v", name, err)
		}
	}
}

func TestDepositFundsMismatch(t *testing.T) {
	deps, _, c := setupVault(t, asset.NativeInfo("uluna"))
	msg := ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(100), Receiver: "alice"}}
	if _, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uatom", 100)), msg); !errors.Is(err, ErrWrongAssetDeposited) {
		t.Fatalf("expected wrong asset, got %v", err)
	}
	if _, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 99)), msg); !errors.Is(err, ErrInsufficientAssetDeposited) {
		t.Fatalf("expected insufficient asset, got %v", err)
	}
	_, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 99)), msg)
	ce, ok := cerrors.As(err)
	if !ok || ce.Fields["sent"] != "99" || ce.Fields["expected"] != "100" {
		t.Fatalf("expected sent/expected fields, got %v", err)
	}
}

func TestBorrowAndRepay(t *testing.T) {
	deps, q, c := setupVault(t, asset.NativeInfo("uluna"))
	if _, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 1_000)),
		ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(1_000), Receiver: "alice"}}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	q.SetBalance(testutil.ContractAddr, "uluna", 1_000)

	if _, err := exec(deps, c, testutil.Info("alice"), ExecuteMsg{Borrow: BorrowMsg(big.NewInt(400), "alice").Borrow}); !errors.Is(err, cerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	res, err := exec(deps, c, testutil.Info("borrower"), BorrowMsg(big.NewInt(400), "lender"))
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	send, err := testutil.BankSend(res.Messages[0])
	if err != nil || send.ToAddress != "lender" || send.Amount[0].Amount.Int64() != 400 {
		t.Fatalf("unexpected borrow transfer %+v err %v", send, err)
	}
	q.SetBalance(testutil.ContractAddr, "uluna", 600)

	// Lending out does not change the share price.
	total, err := QueryTotalAssets(deps, testutil.Env(3, 1_020))
	if err != nil || total.TotalManagedAssets.Int64() != 1_000 {
		t.Fatalf("unexpected total assets %v err %v", total.TotalManagedAssets, err)
	}

	res, err = exec(deps, c, testutil.Info("borrower", types.NewCoin("uluna", 500)), RepayMsg(big.NewInt(500)))
	if err != nil {
		t.Fatalf("repay: %v", err)
	}
	if v, _ := res.Attribute("debt_repaid"); v != "400" {
		t.Fatalf("unexpected debt_repaid %q", v)
	}
	if v, _ := res.Attribute("raw_deposit"); v != "100" {
		t.Fatalf("unexpected raw_deposit %q", v)
	}
	info, err := QueryVaultInfo(deps)
	if err != nil || info.TotalBorrowed.Sign() != 0 {
		t.Fatalf("expected debt cleared, got %v err %v", info.TotalBorrowed, err)
	}
	if info.TotalSupply.Int64() != 1_000 {
		t.Fatalf("repay must not mint shares, supply %s", info.TotalSupply)
	}
}

func TestWithdrawSpendsAllowance(t *testing.T) {
	deps, q, c := setupVault(t, asset.NativeInfo("uluna"))
	if _, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 1_000)),
		ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(1_000), Receiver: "alice"}}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	q.SetBalance(testutil.ContractAddr, "uluna", 1_000)

	withdrawMsg := ExecuteMsg{Withdraw: &Withdraw{Assets: big.NewInt(100), Owner: "alice", Receiver: "bob"}}
	if _, err := exec(deps, c, testutil.Info("bob"), withdrawMsg); !errors.Is(err, cw20.ErrNoAllowance) {
		t.Fatalf("expected missing allowance, got %v", err)
	}
	if _, err := exec(deps, c, testutil.Info("alice"), ExecuteMsg{IncreaseAllowance: &cw20.IncreaseAllowance{Spender: "bob", Amount: big.NewInt(100)}}); err != nil {
		t.Fatalf("increase allowance: %v", err)
	}
	res, err := exec(deps, c, testutil.Info("bob"), withdrawMsg)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	send, err := testutil.BankSend(res.Messages[0])
	if err != nil || send.ToAddress != "bob" || send.Amount[0].Amount.Int64() != 100 {
		t.Fatalf("unexpected withdraw transfer %+v err %v", send, err)
	}
	if got := shareBalance(t, deps, "alice"); got != 900 {
		t.Fatalf("unexpected balance %d", got)
	}
}

func TestRedeemPaysAccruedValue(t *testing.T) {
	deps, q, c := setupVault(t, asset.NativeInfo("uluna"))
	if _, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 1_000)),
		ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(1_000), Receiver: "alice"}}); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	// Surplus repayments doubled the pool.
	q.SetBalance(testutil.ContractAddr, "uluna", 2_000)

	res, err := exec(deps, c, testutil.Info("alice"), ExecuteMsg{Redeem: &Redeem{Shares: big.NewInt(100), Owner: "alice", Receiver: "alice"}})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if v, _ := res.Attribute("assets"); v != "200" {
		t.Fatalf("unexpected redeemed assets %q", v)
	}
	if got := shareBalance(t, deps, "alice"); got != 900 {
		t.Fatalf("unexpected balance %d", got)
	}

	// A deposit at the new rate receives half as many shares.
	q.SetBalance(testutil.ContractAddr, "uluna", 1_800+300)
	res, err = exec(deps, c, testutil.Info("bob", types.NewCoin("uluna", 300)),
		ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(300), Receiver: "bob"}})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if v, _ := res.Attribute("shares"); v != "150" {
		t.Fatalf("unexpected shares %q", v)
	}
}

func TestConversionNeverCreatesValue(t *testing.T) {
	snapshots := []totals{
		{shares: big.NewInt(1), assets: big.NewInt(1)},
		{shares: big.NewInt(3), assets: big.NewInt(10)},
		{shares: big.NewInt(1_000_000), assets: big.NewInt(999_999)},
		{shares: big.NewInt(7_919), assets: big.NewInt(104_729)},
		{shares: new(big.Int).Lsh(big.NewInt(1), 64), assets: big.NewInt(12_345_678_901)},
	}
	inputs := []int64{1, 2, 3, 17, 1_000, 123_456_789, 6_764_562_356_574_737_676}
	for _, snap := range snapshots {
		for _, in := range inputs {
			x := big.NewInt(in)
			shares, err := snap.toShares(x, false)
			if err != nil {
				t.Fatalf("to shares: %v", err)
			}
			back, err := snap.toAssets(shares, false)
			if err != nil {
				t.Fatalf("to assets: %v", err)
			}
			if back.Cmp(x) > 0 {
				t.Fatalf("assets round trip %s > %s for %+v", back, x, snap)
			}
			assets, err := snap.toAssets(x, false)
			if err != nil {
				t.Fatalf("to assets: %v", err)
			}
			again, err := snap.toShares(assets, false)
			if err != nil {
				t.Fatalf("to shares: %v", err)
			}
			if again.Cmp(x) > 0 {
				t.Fatalf("shares round trip %s > %s for %+v", again, x, snap)
			}
		}
	}
}

func TestCw20UnderlyingFlows(t *testing.T) {
	deps, q, c := setupVault(t, asset.Cw20Info("token"))
	held := int64(0)
	q.Smart["token"] = func([]byte) (interface{}, error) {
		return cw20.BalanceResponse{Balance: big.NewInt(held)}, nil
	}

	res, err := exec(deps, c, testutil.Info("alice"), ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(500), Receiver: "alice"}})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	var pull cw20.ExecuteMsg
	contract, _, err := testutil.WasmCall(res.Messages[0], &pull)
	if err != nil || contract != "token" || pull.TransferFrom == nil {
		t.Fatalf("expected transfer_from on token, got %+v err %v", pull, err)
	}
	if pull.TransferFrom.Owner != "alice" || pull.TransferFrom.Recipient != testutil.ContractAddr || pull.TransferFrom.Amount.Int64() != 500 {
		t.Fatalf("unexpected pull %+v", pull.TransferFrom)
	}
	held = 500

	if _, err := exec(deps, c, testutil.Info("alice", types.NewCoin("uluna", 5)),
		ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(5), Receiver: "alice"}}); !errors.Is(err, ErrWrongAssetDeposited) {
		t.Fatalf("native funds on cw20 vault: got %v", err)
	}

	if _, err := exec(deps, c, testutil.Info("borrower"), BorrowMsg(big.NewInt(200), "borrower")); err != nil {
		t.Fatalf("borrow: %v", err)
	}
	held = 300

	inner := testutil.MustJSON(ExecuteMsg{Deposit: &Deposit{Assets: big.NewInt(10), Receiver: "alice"}})
	hook := ExecuteMsg{Receive: &cw20.ReceiveMsg{Sender: "borrower", Amount: big.NewInt(10), Msg: inner}}
	if _, err := exec(deps, c, testutil.Info("token"), hook); !errors.Is(err, cerrors.ErrInvalidMessage) {
		t.Fatalf("expected invalid message for non repay hook, got %v", err)
	}

	repay := testutil.MustJSON(RepayMsg(big.NewInt(200)))
	hook = ExecuteMsg{Receive: &cw20.ReceiveMsg{Sender: "borrower", Amount: big.NewInt(200), Msg: repay}}
	if _, err := exec(deps, c, testutil.Info("other-token"), hook); !errors.Is(err, ErrWrongAssetDeposited) {
		t.Fatalf("expected wrong asset for foreign token, got %v", err)
	}
	mismatch := ExecuteMsg{Receive: &cw20.ReceiveMsg{Sender: "borrower", Amount: big.NewInt(150), Msg: repay}}
	if _, err := exec(deps, c, testutil.Info("token"), mismatch); !errors.Is(err, ErrInsufficientAssetDeposited) {
		t.Fatalf("expected amount mismatch, got %v", err)
	}
	res, err = exec(deps, c, testutil.Info("token"), hook)
	if err != nil {
		t.Fatalf("receive repay: %v", err)
	}
	if v, _ := res.Attribute("debt_repaid"); v != "200" {
		t.Fatalf("unexpected debt_repaid %q", v)
	}
}

func TestSetBorrowerAuthorization(t *testing.T) {
	deps, _, c := setupVault(t, asset.NativeInfo("uluna"))
	if _, err := exec(deps, c, testutil.Info("creator"), ExecuteMsg{SetBorrower: &SetBorrower{Borrower: strPtr("lender")}}); !errors.Is(err, cerrors.ErrUnauthorized) {
		t.Fatalf("admin must not replace an existing borrower, got %v", err)
	}
	if _, err := exec(deps, c, testutil.Info("borrower"), ExecuteMsg{SetBorrower: &SetBorrower{Borrower: strPtr("lender")}}); err != nil {
		t.Fatalf("set borrower: %v", err)
	}
	info, err := QueryVaultInfo(deps)
	if err != nil || info.Borrower != "lender" {
		t.Fatalf("unexpected borrower %q err %v", info.Borrower, err)
	}
}
