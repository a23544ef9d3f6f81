package lending

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"nftfi/core/types"
	"nftfi/native/asset"
	"nftfi/native/internal/testutil"
	"nftfi/native/tokens/cw721"
)

func cw20Unit() asset.Info { return asset.Cw20Info("token") }

func TestContinuousLiquidation(t *testing.T) {
	f := newFixture(t)
	f.price = big.NewInt(100_000)
	f.borrow(t, 100, 30_000, BorrowModeContinuous)

	_, err := f.exec(100, "liquidator", repayMsg(0, 30_000), types.NewCoin("uusd", 30_000))
	if !errors.Is(err, ErrCannotLiquidateBeforeDefault) {
		t.Fatalf("expected CannotLiquidateBeforeDefault, got %v", err)
	}

	f.price = big.NewInt(40_000)
	_, err = f.exec(100, "borrower", repayMsg(0, 30_000), types.NewCoin("uusd", 30_000))
	if !errors.Is(err, ErrCannotRepayWhenDefaulted) {
		t.Fatalf("expected CannotRepayWhenDefaulted, got %v", err)
	}
	_, err = f.exec(100, "liquidator", repayMsg(0, 29_999), types.NewCoin("uusd", 29_999))
	if !errors.Is(err, ErrCanOnlyLiquidateWholeLoan) {
		t.Fatalf("expected CanOnlyLiquidateWholeLoan, got %v", err)
	}

	res, err := f.exec(100, "liquidator", repayMsg(0, 30_000), types.NewCoin("uusd", 30_000))
	require.NoError(t, err)
	require.Len(t, res.Messages, 2)
	var transfer cw721.ExecuteMsg
	_, _, err = testutil.WasmCall(res.Messages[0], &transfer)
	require.NoError(t, err)
	require.Equal(t, "liquidator", transfer.TransferNft.Recipient)
	withdrawn, _ := res.Attribute("collateral_withdrawn")
	require.Equal(t, "true", withdrawn)

	l := f.loan(t, 0)
	require.Nil(t, l.Collateral)
	require.Equal(t, int64(0), l.Principle.Int64())
}

func TestFixedLiquidationAfterDuration(t *testing.T) {
	f := newFixture(t)
	f.borrow(t, 100, 8742, BorrowModeFixed)

	_, err := f.exec(200, "liquidator", repayMsg(0, 8809), types.NewCoin("uusd", 8809))
	if !errors.Is(err, ErrCannotLiquidateBeforeDefault) {
		t.Fatalf("expected CannotLiquidateBeforeDefault, got %v", err)
	}
	_, err = f.exec(201, "borrower", repayMsg(0, 8809), types.NewCoin("uusd", 8809))
	if !errors.Is(err, ErrCannotRepayWhenDefaulted) {
		t.Fatalf("expected CannotRepayWhenDefaulted, got %v", err)
	}
	res, err := f.exec(201, "liquidator", repayMsg(0, 8809), types.NewCoin("uusd", 8809))
	require.NoError(t, err)
	caller, _ := res.Attribute("caller")
	require.Equal(t, "liquidator", caller)
	fee, _ := res.Attribute("fee")
	require.Equal(t, "6", fee)
}
