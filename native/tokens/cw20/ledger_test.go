package cw20

import (
	"math/big"
	"testing"

	"nftfi/core/types"
	"nftfi/native/internal/testutil"
)

type countingStore struct {
	types.Store
	appends int
}

func (s *countingStore) KVAppend(key []byte, value []byte) error {
	s.appends++
	return s.Store.KVAppend(key, value)
}

func TestIndexListsOnlyGrowForNewEntries(t *testing.T) {
	deps, _ := testutil.NewDeps()
	store := &countingStore{Store: deps.Storage}
	ledger := NewLedger(store)
	block := testutil.Env(5, 1_000).Block

	for i := 0; i < 5; i++ {
		if err := ledger.credit("alice", big.NewInt(100)); err != nil {
			t.Fatalf("credit: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := ledger.Move("alice", "bob", big.NewInt(10)); err != nil {
			t.Fatalf("move: %v", err)
		}
		if err := ledger.Move("bob", "alice", big.NewInt(5)); err != nil {
			t.Fatalf("move back: %v", err)
		}
	}
	if store.appends != 2 {
		t.Fatalf("expected 2 account appends, got %d", store.appends)
	}
	accounts, err := ledger.Accounts()
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if len(accounts) != 2 || accounts[0] != "alice" || accounts[1] != "bob" {
		t.Fatalf("unexpected accounts %v", accounts)
	}

	for i := 0; i < 4; i++ {
		if _, err := ledger.IncreaseAllowance(block, "alice", "carol", big.NewInt(7), nil); err != nil {
			t.Fatalf("increase allowance: %v", err)
		}
	}
	if store.appends != 3 {
		t.Fatalf("expected one spender append, got %d total", store.appends)
	}

	// A grant cleared to zero leaves the index and comes back on the next raise.
	if _, err := ledger.DecreaseAllowance(block, "alice", "carol", big.NewInt(28), nil); err != nil {
		t.Fatalf("decrease allowance: %v", err)
	}
	grants, err := ledger.Allowances("alice")
	if err != nil || len(grants) != 0 {
		t.Fatalf("expected no grants, got %v err %v", grants, err)
	}
	if _, err := ledger.IncreaseAllowance(block, "alice", "carol", big.NewInt(1), nil); err != nil {
		t.Fatalf("increase allowance: %v", err)
	}
	grants, err = ledger.Allowances("alice")
	if err != nil || len(grants) != 1 || grants[0].Amount.Int64() != 1 {
		t.Fatalf("unexpected grants %v err %v", grants, err)
	}
	if store.appends != 4 {
		t.Fatalf("expected 4 appends, got %d", store.appends)
	}
}
