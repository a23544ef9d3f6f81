package raffle

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

const (
	chachaBlockSize  = 64 // keystream bytes per block
	chachaBlockWords = chachaBlockSize / 4
)

// Prng draws raffle winners from drand randomness. The key is the SHA-256 of
// the seed; each draw reads one little-endian word of the ChaCha20 keystream
// and moves the word position forward by 8.
type Prng struct {
	key [32]byte
	pos uint64
}

func NewPrng(seed []byte) *Prng {
	return &Prng{key: sha256.Sum256(seed)}
}

// RandomBetween returns a value in [from, to], or 0 when the range is empty.
func (p *Prng) RandomBetween(from, to uint32) (uint32, error) {
	if from > to {
		return 0, nil
	}
	r, err := p.randU32()
	if err != nil {
		return 0, err
	}
	span := uint64(to-from) + 1
	return from + uint32(uint64(r)%span), nil
}

func (p *Prng) randU32() (uint32, error) {
	word, err := p.wordAt(p.pos)
	if err != nil {
		return 0, err
	}
	p.pos += 8
	return word, nil
}

func (p *Prng) wordAt(pos uint64) (uint32, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(p.key[:], nonce[:])
	if err != nil {
		return 0, err
	}
	c.SetCounter(uint32(pos / chachaBlockWords))
	var block [chachaBlockSize]byte
	c.XORKeyStream(block[:], block[:])
	offset := (pos % chachaBlockWords) * 4
	return binary.LittleEndian.Uint32(block[offset : offset+4]), nil
}
