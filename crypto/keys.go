package crypto

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressPrefix defines the human-readable part of a bech32 address.
type AddressPrefix string

// DefaultPrefix is used when the node configuration does not override it.
const DefaultPrefix AddressPrefix = "nftfi"

var (
	ErrEmptyAddress  = errors.New("address: empty")
	ErrWrongPrefix   = errors.New("address: unexpected prefix")
	ErrAddressLength = errors.New("address: unexpected length")
)

// Address represents an account or contract address with a specific prefix.
// Accounts carry 20 bytes, contracts 32.
type Address struct {
	prefix AddressPrefix
	bytes  []byte
}

func NewAddress(prefix AddressPrefix, b []byte) (Address, error) {
	if len(b) != 20 && len(b) != 32 {
		return Address{}, fmt.Errorf("%w: %d", ErrAddressLength, len(b))
	}
	return Address{prefix: prefix, bytes: append([]byte(nil), b...)}, nil
}

func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes, 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

func (a Address) Bytes() []byte {
	return append([]byte(nil), a.bytes...)
}

// Prefix returns the human-readable prefix associated with the address.
func (a Address) Prefix() AddressPrefix {
	return a.prefix
}

func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("error converting bits: %w", err)
	}
	return NewAddress(AddressPrefix(prefix), conv)
}

// AccountAddress derives a 20-byte account address from arbitrary key material.
func AccountAddress(prefix AddressPrefix, pubkey []byte) Address {
	hash := crypto.Keccak256(pubkey)
	addr, _ := NewAddress(prefix, hash[12:])
	return addr
}

// ContractAddress derives the deterministic address of a contract instance from
// its code name, label and the host's instance sequence.
func ContractAddress(prefix AddressPrefix, code, label string, seq uint64) Address {
	hash := crypto.Keccak256([]byte(code), []byte{0}, []byte(label), []byte{0}, []byte(strconv.FormatUint(seq, 10)))
	addr, _ := NewAddress(prefix, hash)
	return addr
}

// Bech32API validates human addresses against a fixed prefix. Validation
// requires the canonical lower-case form.
type Bech32API struct {
	Prefix AddressPrefix
}

func (api Bech32API) AddrValidate(addr string) (string, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return "", ErrEmptyAddress
	}
	if strings.ToLower(trimmed) != trimmed {
		return "", fmt.Errorf("address %q is not normalized", addr)
	}
	decoded, err := DecodeAddress(trimmed)
	if err != nil {
		return "", err
	}
	if api.Prefix != "" && decoded.Prefix() != api.Prefix {
		return "", fmt.Errorf("%w: got %s, want %s", ErrWrongPrefix, decoded.Prefix(), api.Prefix)
	}
	return trimmed, nil
}
