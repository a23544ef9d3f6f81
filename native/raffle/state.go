package raffle

import (
	"encoding/binary"

	cerrors "nftfi/core/errors"
	"nftfi/core/types"
)

var infoKey = []byte("raffle/info")

func raffleKey(id uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte("raffle/raffle/"), id)
}

func ticketKey(id uint64, seq uint32) []byte {
	key := binary.BigEndian.AppendUint64([]byte("raffle/ticket/"), id)
	return binary.BigEndian.AppendUint32(key, seq)
}

func userTicketsKey(owner string, id uint64) []byte {
	key := make([]byte, 0, len("raffle/user-tickets/")+len(owner)+9)
	key = append(key, "raffle/user-tickets/"...)
	key = append(key, owner...)
	key = append(key, '/')
	return binary.BigEndian.AppendUint64(key, id)
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
		return ContractInfo{}, cerrors.ErrNotFound.Wrapf("raffle info")
	}
	return stored.info(), nil
}

func (s *store) putInfo(info ContractInfo) error {
	return s.kv.KVPut(infoKey, info.stored())
}

func (s *store) raffle(id uint64) (RaffleInfo, error) {
	var stored storedRaffle
	ok, err := s.kv.KVGet(raffleKey(id), &stored)
	if err != nil {
		return RaffleInfo{}, err
	}
	if !ok {
		return RaffleInfo{}, ErrRaffleNotFound.With("raffle_id", id)
	}
	return stored.raffle(), nil
}

func (s *store) putRaffle(id uint64, r RaffleInfo) error {
	return s.kv.KVPut(raffleKey(id), r.stored())
}

func (s *store) ticket(id uint64, seq uint32) (string, error) {
	var owner string
	ok, err := s.kv.KVGet(ticketKey(id, seq), &owner)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrRaffleNotFound.With("raffle_id", id, "ticket", seq)
	}
	return owner, nil
}

// addTicket records owner as holder of ticket seq and bumps their count.
func (s *store) addTicket(id uint64, seq uint32, owner string) (uint32, error) {
	if err := s.kv.KVPut(ticketKey(id, seq), owner); err != nil {
		return 0, err
	}
	count, err := s.ticketCount(owner, id)
	if err != nil {
		return 0, err
	}
	count++
	if err := s.kv.KVPut(userTicketsKey(owner, id), count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *store) ticketCount(owner string, id uint64) (uint32, error) {
	var count uint32
	if _, err := s.kv.KVGet(userTicketsKey(owner, id), &count); err != nil {
		return 0, err
	}
	return count, nil
}
