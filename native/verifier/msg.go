package verifier

import (
	"nftfi/core/types"
)

// DrandRandomness is one beacon output as published by a drand network.
type DrandRandomness struct {
	Round             uint64 `json:"round"`
	PreviousSignature []byte `json:"previous_signature"`
	Signature         []byte `json:"signature"`
}

// Verify asks the verifier to check a beacon against pubkey on behalf of a
// raffle.
type Verify struct {
	Randomness DrandRandomness `json:"randomness"`
	Pubkey     []byte          `json:"pubkey"`
	RaffleID   uint64          `json:"raffle_id"`
	Owner      string          `json:"owner"`
}

type InstantiateMsg struct{}

type ExecuteMsg struct {
	Verify *Verify `json:"verify,omitempty"`
}

type QueryMsg struct {
	Verify *Verify `json:"verify,omitempty"`
}

type VerifyResponse struct {
	Valid      bool   `json:"valid"`
	Randomness []byte `json:"randomness,omitempty"`
}

// VerifyMsg builds the Verify call on the verifier contract.
func VerifyMsg(contract string, v Verify) (types.CosmosMsg, error) {
	return types.NewWasmExecute(contract, ExecuteMsg{Verify: &v})
}
