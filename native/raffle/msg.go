package raffle

import (
	"math/big"

	"nftfi/native/asset"
	"nftfi/native/tokens/cw1155"
	"nftfi/native/tokens/cw20"
	"nftfi/native/tokens/cw721"
	"nftfi/native/verifier"
)

type InstantiateMsg struct {
	Name                    string   `json:"name"`
	Owner                   *string  `json:"owner,omitempty"`
	FeeAddr                 *string  `json:"fee_addr,omitempty"`
	MinimumRaffleDuration   *uint64  `json:"minimum_raffle_duration,omitempty"`
	MinimumRaffleTimeout    *uint64  `json:"minimum_raffle_timeout,omitempty"`
	RaffleFee               *big.Int `json:"raffle_fee,omitempty"`
	RandFee                 *big.Int `json:"rand_fee,omitempty"`
	DrandURL                *string  `json:"drand_url,omitempty"`
	RandomPubkey            []byte   `json:"random_pubkey"`
	VerifySignatureContract string   `json:"verify_signature_contract"`
}

// RaffleOptionsMsg is the caller's view of the raffle options before they are
// clamped to the contract minima.
type RaffleOptionsMsg struct {
	RaffleStartTimestamp *uint64 `json:"raffle_start_timestamp,omitempty"`
	RaffleDuration       *uint64 `json:"raffle_duration,omitempty"`
	RaffleTimeout        *uint64 `json:"raffle_timeout,omitempty"`
	Comment              *string `json:"comment,omitempty"`
	MaxParticipantNumber *uint32 `json:"max_participant_number,omitempty"`
	MaxTicketPerAddress  *uint32 `json:"max_ticket_per_address,omitempty"`
}

type CreateRaffle struct {
	Owner             *string          `json:"owner,omitempty"`
	Asset             asset.Asset      `json:"asset"`
	RaffleOptions     RaffleOptionsMsg `json:"raffle_options"`
	RaffleTicketPrice asset.Asset      `json:"raffle_ticket_price"`
}

type BuyTicket struct {
	RaffleID   uint64      `json:"raffle_id"`
	SentAssets asset.Asset `json:"sent_assets"`
}

type RaffleID struct {
	RaffleID uint64 `json:"raffle_id"`
}

type UpdateRandomness struct {
	RaffleID   uint64                   `json:"raffle_id"`
	Randomness verifier.DrandRandomness `json:"randomness"`
}

type ToggleLock struct {
	Lock bool `json:"lock"`
}

type ChangeParameter struct {
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
}

type ExecuteMsg struct {
	CreateRaffle     *CreateRaffle      `json:"create_raffle,omitempty"`
	BuyTicket        *BuyTicket         `json:"buy_ticket,omitempty"`
	Receive          *cw20.ReceiveMsg   `json:"receive,omitempty"`
	ReceiveNft       *cw721.ReceiveMsg  `json:"receive_nft,omitempty"`
	Cw1155ReceiveMsg *cw1155.ReceiveMsg `json:"cw1155_receive_msg,omitempty"`
	ClaimNft         *RaffleID          `json:"claim_nft,omitempty"`
	UpdateRandomness *UpdateRandomness  `json:"update_randomness,omitempty"`
	ToggleLock       *ToggleLock        `json:"toggle_lock,omitempty"`
	Renounce         *struct{}          `json:"renounce,omitempty"`
	ChangeParameter  *ChangeParameter   `json:"change_parameter,omitempty"`
}

type QueryFilters struct {
	States          []RaffleState `json:"states,omitempty"`
	Owner           *string       `json:"owner,omitempty"`
	TicketDepositor *string       `json:"ticket_depositor,omitempty"`
	ContainsToken   *string       `json:"contains_token,omitempty"`
}

type AllRafflesQuery struct {
	StartAfter *uint64       `json:"start_after,omitempty"`
	Limit      *uint32       `json:"limit,omitempty"`
	Filters    *QueryFilters `json:"filters,omitempty"`
}

type AllTicketsQuery struct {
	RaffleID   uint64  `json:"raffle_id"`
	StartAfter *uint32 `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type TicketNumberQuery struct {
	Owner    string `json:"owner"`
	RaffleID uint64 `json:"raffle_id"`
}

type QueryMsg struct {
	ContractInfo *struct{}          `json:"contract_info,omitempty"`
	RaffleInfo   *RaffleID          `json:"raffle_info,omitempty"`
	AllRaffles   *AllRafflesQuery   `json:"all_raffles,omitempty"`
	AllTickets   *AllTicketsQuery   `json:"all_tickets,omitempty"`
	TicketNumber *TicketNumberQuery `json:"ticket_number,omitempty"`
}

type RaffleResponse struct {
	RaffleID    uint64      `json:"raffle_id"`
	RaffleState RaffleState `json:"raffle_state"`
	RaffleInfo  RaffleInfo  `json:"raffle_info"`
}

type AllRafflesResponse struct {
	Raffles []RaffleResponse `json:"raffles"`
}
