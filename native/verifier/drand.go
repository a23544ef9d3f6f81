package verifier

import (
	"crypto/sha256"
	"encoding/binary"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	cerrors "nftfi/core/errors"
)

// DST is the hash-to-curve domain separation tag of drand's chained scheme.
const DST = "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_"

var (
	ErrInvalidPubkey    = cerrors.New(cerrors.KindExternal, "invalid_pubkey", "invalid drand public key")
	ErrInvalidSignature = cerrors.New(cerrors.KindExternal, "invalid_signature", "invalid drand signature")
)

// BeaconMessage is the digest signed for a chained drand round.
func BeaconMessage(previousSignature []byte, round uint64) []byte {
	h := sha256.New()
	h.Write(previousSignature)
	var r [8]byte
	binary.BigEndian.PutUint64(r[:], round)
	h.Write(r[:])
	return h.Sum(nil)
}

// Randomness derives the beacon output from its signature.
func Randomness(signature []byte) []byte {
	sum := sha256.Sum256(signature)
	return sum[:]
}

// VerifyBeacon checks the G2 signature of a round against a compressed G1
// public key.
func VerifyBeacon(pubkey []byte, b DrandRandomness) error {
	var pk bls12381.G1Affine
	if _, err := pk.SetBytes(pubkey); err != nil {
		return ErrInvalidPubkey.Wrapf("%v", err)
	}
	var sig bls12381.G2Affine
	if _, err := sig.SetBytes(b.Signature); err != nil {
		return ErrInvalidSignature.Wrapf("%v", err)
	}
	hm, err := bls12381.HashToG2(BeaconMessage(b.PreviousSignature, b.Round), []byte(DST))
	if err != nil {
		return ErrInvalidSignature.Wrapf("%v", err)
	}
	_, _, g1, _ := bls12381.Generators()
	var negG1 bls12381.G1Affine
	negG1.Neg(&g1)
	ok, err := bls12381.PairingCheck([]bls12381.G1Affine{negG1, pk}, []bls12381.G2Affine{sig, hm})
	if err != nil {
		return ErrInvalidSignature.Wrapf("%v", err)
	}
	if !ok {
		return ErrInvalidSignature.With("round", b.Round)
	}
	return nil
}
