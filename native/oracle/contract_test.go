package oracle

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	cerrors "nftfi/core/errors"
	"nftfi/native/asset"
	"nftfi/native/internal/testutil"
)

func TestPriceOwnershipAndTimeout(t *testing.T) {
	deps, _ := testutil.NewDeps()
	c := New()
	timeout := uint64(100)
	if _, err := c.Instantiate(deps, testutil.Env(1, 1_000), testutil.Info("owner"), testutil.MustJSON(InstantiateMsg{Name: "floor oracle", Timeout: &timeout})); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	unit := asset.NativeInfo("uusd")
	feeder := "feeder"
	set := ExecuteMsg{SetNftPrice: &SetNftPrice{Contract: "nft", OracleOwner: &feeder, Price: big.NewInt(10_000), Unit: unit}}

	if _, err := c.Execute(deps, testutil.Env(2, 1_000), testutil.Info("feeder"), testutil.MustJSON(set)); !errors.Is(err, cerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized first publish, got %v", err)
	}
	if _, err := c.Execute(deps, testutil.Env(2, 1_000), testutil.Info("owner"), testutil.MustJSON(set)); err != nil {
		t.Fatalf("owner publish: %v", err)
	}
	set.SetNftPrice.Price = big.NewInt(12_000)
	if _, err := c.Execute(deps, testutil.Env(3, 1_050), testutil.Info("owner"), testutil.MustJSON(set)); !errors.Is(err, cerrors.ErrUnauthorized) {
		t.Fatalf("owner must not overwrite feeder price, got %v", err)
	}
	if _, err := c.Execute(deps, testutil.Env(3, 1_050), testutil.Info("feeder"), testutil.MustJSON(set)); err != nil {
		t.Fatalf("feeder update: %v", err)
	}

	res, err := QueryNftPrice(deps, testutil.Env(4, 1_150), "nft", unit)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Price.Int64() != 12_000 || res.OracleOwner != "feeder" || res.Timeout {
		t.Fatalf("unexpected price %+v", res)
	}
	res, err = QueryNftPrice(deps, testutil.Env(5, 1_151), "nft", unit)
	if err != nil || !res.Timeout {
		t.Fatalf("expected stale price, got %+v err=%v", res, err)
	}
	if _, err := QueryNftPrice(deps, testutil.Env(5, 1_151), "nft", asset.NativeInfo("uatom")); !errors.Is(err, ErrPriceNotFound) {
		t.Fatalf("expected missing unit, got %v", err)
	}
}

func TestOwnerParameters(t *testing.T) {
	deps, _ := testutil.NewDeps()
	c := New()
	if _, err := c.Instantiate(deps, testutil.Env(1, 1), testutil.Info("owner"), testutil.MustJSON(InstantiateMsg{Name: "floor oracle"})); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	raw, err := c.Query(deps, testutil.Env(1, 1), testutil.MustJSON(QueryMsg{ContractInfo: &struct{}{}}))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var info ContractInfoResponse
	if err := json.Unmarshal(raw, &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Timeout != DefaultTimeout || info.Owner != "owner" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := c.Execute(deps, testutil.Env(2, 2), testutil.Info("mallory"), testutil.MustJSON(ExecuteMsg{SetTimeout: &SetTimeout{Timeout: 5}})); !errors.Is(err, cerrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	res, err := c.Execute(deps, testutil.Env(2, 2), testutil.Info("owner"), testutil.MustJSON(ExecuteMsg{SetOwner: &SetOwner{Owner: "next"}}))
	if err != nil {
		t.Fatalf("set owner: %v", err)
	}
	if v, _ := res.Attribute("value"); v != "next" {
		t.Fatalf("unexpected attribute %q", v)
	}
}
