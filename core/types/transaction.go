package types

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrMissingSignature = errors.New("tx: missing signature")
	ErrBadSignature     = errors.New("tx: signature does not match public key")
)

// TxType defines the purpose of a transaction.
type TxType byte

const (
	TxTypeExecute     TxType = 0x01
	TxTypeInstantiate TxType = 0x02
	TxTypeBankSend    TxType = 0x03
)

// Transaction is the signed envelope accepted over RPC. Sender is derived
// from PubKey by the host.
type Transaction struct {
	Type     TxType          `json:"type"`
	Nonce    uint64          `json:"nonce"`
	Contract string          `json:"contract,omitempty"`
	Code     string          `json:"code,omitempty"`
	Label    string          `json:"label,omitempty"`
	To       string          `json:"to,omitempty"`
	Msg      json.RawMessage `json:"msg,omitempty"`
	Funds    []Coin          `json:"funds,omitempty"`

	PubKey    []byte `json:"pubkey"`
	Signature []byte `json:"signature"`
}

// SigningBytes is the canonical payload covered by the signature.
func (tx *Transaction) SigningBytes() ([]byte, error) {
	txData := struct {
		Type     TxType
		Nonce    uint64
		Contract string
		Code     string
		Label    string
		To       string
		Msg      json.RawMessage
		Funds    []Coin
	}{tx.Type, tx.Nonce, tx.Contract, tx.Code, tx.Label, tx.To, tx.Msg, tx.Funds}
	return json.Marshal(txData)
}

// Hash returns the sha256 of the signing bytes.
func (tx *Transaction) Hash() ([]byte, error) {
	b, err := tx.SigningBytes()
	if err != nil {
		return nil, err
	}
	h := sha256.Sum256(b)
	return h[:], nil
}

// Sign fills PubKey and Signature with a secp256k1 signature over the
// keccak256 of the signing bytes.
func (tx *Transaction) Sign(privKey []byte) error {
	key, err := crypto.ToECDSA(privKey)
	if err != nil {
		return err
	}
	payload, err := tx.SigningBytes()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(crypto.Keccak256(payload), key)
	if err != nil {
		return err
	}
	tx.PubKey = crypto.CompressPubkey(&key.PublicKey)
	tx.Signature = sig
	return nil
}

// Verify checks the signature against the embedded public key.
func (tx *Transaction) Verify() error {
	if len(tx.PubKey) == 0 || len(tx.Signature) == 0 {
		return ErrMissingSignature
	}
	if len(tx.Signature) != 65 {
		return fmt.Errorf("%w: length %d", ErrBadSignature, len(tx.Signature))
	}
	payload, err := tx.SigningBytes()
	if err != nil {
		return err
	}
	if !crypto.VerifySignature(tx.PubKey, crypto.Keccak256(payload), tx.Signature[:64]) {
		return ErrBadSignature
	}
	return nil
}
