package loans

import (
	"encoding/binary"
	"sort"
	"strconv"
	"strings"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
)

var infoKey = []byte("loans/info")

func collateralKey(borrower string, id uint64) []byte {
	key := make([]byte, 0, len("loans/collateral/")+len(borrower)+9)
	key = append(key, "loans/collateral/"...)
	key = append(key, borrower...)
	key = append(key, '/')
	return binary.BigEndian.AppendUint64(key, id)
}

func loanOffersKey(borrower string, id uint64) []byte {
	key := make([]byte, 0, len("loans/loan-offers/")+len(borrower)+9)
	key = append(key, "loans/loan-offers/"...)
	key = append(key, borrower...)
	key = append(key, '/')
	return binary.BigEndian.AppendUint64(key, id)
}

func borrowerKey(borrower string) []byte    { return []byte("loans/borrower/" + borrower) }
func collateralsKey(borrower string) []byte { return []byte("loans/collaterals/" + borrower) }
func offerKey(id string) []byte             { return []byte("loans/offer/" + id) }
func lenderOffersKey(lender string) []byte  { return []byte("loans/lender-offers/" + lender) }

// formatOfferID builds the global offer identifier.
func formatOfferID(borrower string, loanID, index uint64) string {
	return borrower + "-" + strconv.FormatUint(loanID, 10) + "-" + strconv.FormatUint(index, 10)
}

// offerIndex extracts the global counter from an offer id.
func offerIndex(id string) (uint64, bool) {
	pos := strings.LastIndexByte(id, '-')
	if pos < 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(id[pos+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

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
		return ContractInfo{}, cerrors.ErrNotFound.Wrapf("loans info")
	}
	return stored.info(), nil
}

func (s *store) putInfo(info ContractInfo) error {
	return s.kv.KVPut(infoKey, info.stored())
}

func (s *store) borrowerInfo(borrower string) (BorrowerInfo, bool, error) {
	var info BorrowerInfo
	ok, err := s.kv.KVGet(borrowerKey(borrower), &info.LastCollateralID)
	if err != nil {
		return BorrowerInfo{}, false, err
	}
	return info, ok, nil
}

// nextLoanID allocates the borrower's next collateral id, starting at 0.
func (s *store) nextLoanID(borrower string) (uint64, error) {
	info, ok, err := s.borrowerInfo(borrower)
	if err != nil {
		return 0, err
	}
	next := uint64(0)
	if ok {
		next = info.LastCollateralID + 1
	}
	if err := s.kv.KVPut(borrowerKey(borrower), next); err != nil {
		return 0, err
	}
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], next)
	if err := s.kv.KVAppend(collateralsKey(borrower), raw[:]); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *store) collateral(borrower string, id uint64) (CollateralInfo, error) {
	var stored storedCollateral
	ok, err := s.kv.KVGet(collateralKey(borrower, id), &stored)
	if err != nil {
		return CollateralInfo{}, err
	}
	if !ok {
		return CollateralInfo{}, ErrLoanNotFound.With("borrower", borrower, "loan_id", id)
	}
	return stored.collateral(), nil
}

func (s *store) putCollateral(id uint64, c CollateralInfo) error {
	return s.kv.KVPut(collateralKey(c.Borrower, id), c.stored())
}

func (s *store) collateralIDs(borrower string) ([]uint64, error) {
	var raw [][]byte
	if err := s.kv.KVGetList(collateralsKey(borrower), &raw); err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(raw))
	for _, r := range raw {
		if len(r) == 8 {
			ids = append(ids, binary.BigEndian.Uint64(r))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *store) offer(id string) (OfferInfo, error) {
	var stored storedOffer
	ok, err := s.kv.KVGet(offerKey(id), &stored)
	if err != nil {
		return OfferInfo{}, err
	}
	if !ok {
		return OfferInfo{}, ErrOfferNotFound.With("offer_id", id)
	}
	return stored.offer(), nil
}

func (s *store) putOffer(o OfferInfo) error {
	return s.kv.KVPut(offerKey(o.OfferID), o.stored())
}

// indexOffer records a new offer under its loan and its lender.
func (s *store) indexOffer(o OfferInfo) error {
	if err := s.kv.KVAppend(loanOffersKey(o.Borrower, o.LoanID), []byte(o.OfferID)); err != nil {
		return err
	}
	return s.kv.KVAppend(lenderOffersKey(o.Lender), []byte(o.OfferID))
}

func (s *store) offersByKey(key []byte) ([]OfferInfo, error) {
	var raw [][]byte
	if err := s.kv.KVGetList(key, &raw); err != nil {
		return nil, err
	}
	out := make([]OfferInfo, 0, len(raw))
	for _, id := range raw {
		o, err := s.offer(string(id))
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GlobalIndex < out[j].GlobalIndex })
	return out, nil
}

func (s *store) loanOffers(borrower string, id uint64) ([]OfferInfo, error) {
	return s.offersByKey(loanOffersKey(borrower, id))
}

func (s *store) lenderOffers(lender string) ([]OfferInfo, error) {
	return s.offersByKey(lenderOffersKey(lender))
}
