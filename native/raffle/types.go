package raffle

import (
	"math/big"

	"nftfi/native/asset"
	"nftfi/native/common"
)

const (
	MinimumRaffleDuration    uint64 = 1
	MinimumRaffleTimeout     uint64 = 120
	MaximumParticipantNumber uint32 = 1000
)

var (
	// FeeScale is the denominator of raffle_fee and rand_fee.
	FeeScale = big.NewInt(10_000)
	// MinimumRandFee is the smallest share paid to the randomness provider.
	MinimumRandFee = big.NewInt(1)
)

// RaffleState is derived from the block time and the raffle record; it is
// never stored.
type RaffleState string

const (
	StateCreated  RaffleState = "created"
	StateStarted  RaffleState = "started"
	StateClosed   RaffleState = "closed"
	StateFinished RaffleState = "finished"
	StateClaimed  RaffleState = "claimed"
)

type ContractInfo struct {
	Name                    string   `json:"name"`
	Owner                   string   `json:"owner"`
	FeeAddr                 string   `json:"fee_addr"`
	LastRaffleID            *uint64  `json:"last_raffle_id,omitempty"`
	MinimumRaffleDuration   uint64   `json:"minimum_raffle_duration"`
	MinimumRaffleTimeout    uint64   `json:"minimum_raffle_timeout"`
	RaffleFee               *big.Int `json:"raffle_fee"`
	RandFee                 *big.Int `json:"rand_fee"`
	Lock                    bool     `json:"lock"`
	DrandURL                string   `json:"drand_url"`
	VerifySignatureContract string   `json:"verify_signature_contract"`
	RandomPubkey            []byte   `json:"random_pubkey"`
}

func (c ContractInfo) IsLocked() bool { return c.Lock }

type RaffleOptions struct {
	RaffleStartTimestamp uint64  `json:"raffle_start_timestamp"`
	RaffleDuration       uint64  `json:"raffle_duration"`
	RaffleTimeout        uint64  `json:"raffle_timeout"`
	Comment              *string `json:"comment,omitempty"`
	MaxParticipantNumber uint32  `json:"max_participant_number"`
	MaxTicketPerAddress  *uint32 `json:"max_ticket_per_address,omitempty"`
}

// Randomness is a verified drand output attached to a raffle.
type Randomness struct {
	Randomness []byte `json:"randomness"`
	Round      uint64 `json:"randomness_round"`
	Owner      string `json:"randomness_owner"`
}

type RaffleInfo struct {
	Owner                string        `json:"owner"`
	Asset                asset.Asset   `json:"asset"`
	RaffleTicketPrice    asset.Asset   `json:"raffle_ticket_price"`
	AccumulatedTicketFee asset.Asset   `json:"accumulated_ticket_fee"`
	NumberOfTickets      uint32        `json:"number_of_tickets"`
	Randomness           *Randomness   `json:"randomness,omitempty"`
	Winner               *string       `json:"winner,omitempty"`
	Options              RaffleOptions `json:"raffle_options"`
}

// State derives the lifecycle stage at time now.
func (r RaffleInfo) State(now uint64) RaffleState {
	o := r.Options
	end := o.RaffleStartTimestamp + o.RaffleDuration
	switch {
	case r.Winner != nil:
		return StateClaimed
	case now < o.RaffleStartTimestamp:
		return StateCreated
	case now < end:
		return StateStarted
	case now < end+o.RaffleTimeout:
		return StateClosed
	case r.Randomness == nil && r.NumberOfTickets > 0:
		return StateClosed
	}
	return StateFinished
}

func (r RaffleInfo) randomnessRound() uint64 {
	if r.Randomness == nil {
		return 0
	}
	return r.Randomness.Round
}

type storedContractInfo struct {
	Name                    string
	Owner                   string
	FeeAddr                 string
	HasLastRaffleID         bool
	LastRaffleID            uint64
	MinimumRaffleDuration   uint64
	MinimumRaffleTimeout    uint64
	RaffleFee               *big.Int
	RandFee                 *big.Int
	Lock                    bool
	DrandURL                string
	VerifySignatureContract string
	RandomPubkey            []byte
}

func (c ContractInfo) stored() storedContractInfo {
	s := storedContractInfo{
		Name:                    c.Name,
		Owner:                   c.Owner,
		FeeAddr:                 c.FeeAddr,
		MinimumRaffleDuration:   c.MinimumRaffleDuration,
		MinimumRaffleTimeout:    c.MinimumRaffleTimeout,
		RaffleFee:               common.Amount(c.RaffleFee),
		RandFee:                 common.Amount(c.RandFee),
		Lock:                    c.Lock,
		DrandURL:                c.DrandURL,
		VerifySignatureContract: c.VerifySignatureContract,
		RandomPubkey:            c.RandomPubkey,
	}
	if c.LastRaffleID != nil {
		s.HasLastRaffleID = true
		s.LastRaffleID = *c.LastRaffleID
	}
	return s
}

func (s storedContractInfo) info() ContractInfo {
	c := ContractInfo{
		Name:                    s.Name,
		Owner:                   s.Owner,
		FeeAddr:                 s.FeeAddr,
		MinimumRaffleDuration:   s.MinimumRaffleDuration,
		MinimumRaffleTimeout:    s.MinimumRaffleTimeout,
		RaffleFee:               common.Amount(s.RaffleFee),
		RandFee:                 common.Amount(s.RandFee),
		Lock:                    s.Lock,
		DrandURL:                s.DrandURL,
		VerifySignatureContract: s.VerifySignatureContract,
		RandomPubkey:            s.RandomPubkey,
	}
	if s.HasLastRaffleID {
		id := s.LastRaffleID
		c.LastRaffleID = &id
	}
	return c
}

type storedRaffle struct {
	Owner                string
	Asset                asset.Stored
	RaffleTicketPrice    asset.Stored
	AccumulatedTicketFee asset.Stored
	NumberOfTickets      uint32
	HasRandomness        bool
	Randomness           []byte
	RandomnessRound      uint64
	RandomnessOwner      string
	Winner               string
	StartTimestamp       uint64
	Duration             uint64
	Timeout              uint64
	HasComment           bool
	Comment              string
	MaxParticipants      uint32
	HasMaxPerAddress     bool
	MaxPerAddress        uint32
}

func (r RaffleInfo) stored() storedRaffle {
	s := storedRaffle{
		Owner:                r.Owner,
		Asset:                r.Asset.Stored(),
		RaffleTicketPrice:    r.RaffleTicketPrice.Stored(),
		AccumulatedTicketFee: r.AccumulatedTicketFee.Stored(),
		NumberOfTickets:      r.NumberOfTickets,
		StartTimestamp:       r.Options.RaffleStartTimestamp,
		Duration:             r.Options.RaffleDuration,
		Timeout:              r.Options.RaffleTimeout,
		MaxParticipants:      r.Options.MaxParticipantNumber,
	}
	if r.Randomness != nil {
		s.HasRandomness = true
		s.Randomness = r.Randomness.Randomness
		s.RandomnessRound = r.Randomness.Round
		s.RandomnessOwner = r.Randomness.Owner
	}
	if r.Winner != nil {
		s.Winner = *r.Winner
	}
	if r.Options.Comment != nil {
		s.HasComment = true
		s.Comment = *r.Options.Comment
	}
	if r.Options.MaxTicketPerAddress != nil {
		s.HasMaxPerAddress = true
		s.MaxPerAddress = *r.Options.MaxTicketPerAddress
	}
	return s
}

func (s storedRaffle) raffle() RaffleInfo {
	r := RaffleInfo{
		Owner:                s.Owner,
		Asset:                s.Asset.Asset(),
		RaffleTicketPrice:    s.RaffleTicketPrice.Asset(),
		AccumulatedTicketFee: s.AccumulatedTicketFee.Asset(),
		NumberOfTickets:      s.NumberOfTickets,
		Options: RaffleOptions{
			RaffleStartTimestamp: s.StartTimestamp,
			RaffleDuration:       s.Duration,
			RaffleTimeout:        s.Timeout,
			MaxParticipantNumber: s.MaxParticipants,
		},
	}
	if s.HasRandomness {
		r.Randomness = &Randomness{Randomness: s.Randomness, Round: s.RandomnessRound, Owner: s.RandomnessOwner}
	}
	if s.Winner != "" {
		w := s.Winner
		r.Winner = &w
	}
	if s.HasComment {
		c := s.Comment
		r.Options.Comment = &c
	}
	if s.HasMaxPerAddress {
		m := s.MaxPerAddress
		r.Options.MaxTicketPerAddress = &m
	}
	return r
}
