package types

import (
	"crypto/sha256"
	"encoding/json"
)

// BlockHeader is the minimal header produced by the host for every block.
type BlockHeader struct {
	Height    uint64 `json:"height"`
	Timestamp uint64 `json:"timestamp"`
	PrevHash  []byte `json:"prevHash"`
	TxCount   uint32 `json:"txCount"`
}

// Hash calculates and returns the SHA-256 hash of the block header.
func (h *BlockHeader) Hash() ([]byte, error) {
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256(b)
	return hash[:], nil
}

// BlockInfo is the block context visible to contracts. Time is in unix
// seconds.
type BlockInfo struct {
	Height  uint64 `json:"height"`
	Time    uint64 `json:"time"`
	ChainID string `json:"chain_id"`
}

type ContractInfo struct {
	Address string `json:"address"`
}

// Env is passed to every contract entry point.
type Env struct {
	Block    BlockInfo    `json:"block"`
	Contract ContractInfo `json:"contract"`
}
