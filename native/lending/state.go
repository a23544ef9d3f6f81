package lending

import (
	"encoding/binary"
	"sort"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
)

var infoKey = []byte("lender/info")

func loanKey(borrower string, id uint64) []byte {
	key := make([]byte, 0, len("lender/loan/")+len(borrower)+9)
	key = append(key, "lender/loan/"...)
	key = append(key, borrower...)
	key = append(key, '/')
	return binary.BigEndian.AppendUint64(key, id)
}

func loanIndexKey(borrower string) []byte { return []byte("lender/loans/" + borrower) }
func lastIDKey(borrower string) []byte    { return []byte("lender/last-id/" + borrower) }

// store wraps the contract keyspace with typed accessors.
type store struct {
	kv types.Store
}

func newStore(kv types.Store) *store { return &store{kv: kv} }

func (s *store) info() (ContractInfo, error) {
	var stored storedContractInfo
	ok, err := s.kv.KVGet(infoKey, &stored)
	if err != nil {
		return ContractInfo{}, err
	}
	if !ok {
		return ContractInfo{}, cerrors.ErrNotFound.Wrapf("lender info")
	}
	return stored.info(), nil
}

func (s *store) putInfo(info ContractInfo) error {
	return s.kv.KVPut(infoKey, info.stored())
}

func (s *store) loan(borrower string, id uint64) (Loan, error) {
	var stored storedLoan
	ok, err := s.kv.KVGet(loanKey(borrower, id), &stored)
	if err != nil {
		return Loan{}, err
	}
	if !ok {
		return Loan{}, ErrLoanNotFound.With("borrower", borrower, "loan_id", id)
	}
	return stored.loan(), nil
}

func (s *store) putLoan(borrower string, id uint64, l Loan) error {
	return s.kv.KVPut(loanKey(borrower, id), l.stored())
}

// nextLoanID allocates the next per-borrower loan id, starting at 0.
func (s *store) nextLoanID(borrower string) (uint64, error) {
	var last uint64
	ok, err := s.kv.KVGet(lastIDKey(borrower), &last)
	if err != nil {
		return 0, err
	}
	next := uint64(0)
	if ok {
		next = last + 1
	}
	if err := s.kv.KVPut(lastIDKey(borrower), next); err != nil {
		return 0, err
	}
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], next)
	if err := s.kv.KVAppend(loanIndexKey(borrower), raw[:]); err != nil {
		return 0, err
	}
	return next, nil
}

// loanIDs lists the borrower's loan ids in ascending order.
func (s *store) loanIDs(borrower string) ([]uint64, error) {
	var raw [][]byte
	if err := s.kv.KVGetList(loanIndexKey(borrower), &raw); err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(raw))
	for _, r := range raw {
		if len(r) != 8 {
			continue
		}
		ids = append(ids, binary.BigEndian.Uint64(r))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
