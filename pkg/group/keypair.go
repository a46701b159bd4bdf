// Copyright 2025 Certen Protocol
//
// Package group implements the BIP-340-style Schnorr-on-secp256k1
// signing core Olivia's announcements and attestations are built on:
// keypair derivation, one-shot announcement signing/verification, and
// the fixed-nonce attestation-scalar primitives a DLC oracle needs.
package group

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// ScalarSize is the byte length of a secret scalar, nonce, or
// attestation scalar.
const ScalarSize = 32

// XOnlySize is the byte length of an x-only (BIP-340) public point.
const XOnlySize = 32

// SignatureSize is the byte length of a serialized Schnorr signature.
const SignatureSize = 64

// ErrZeroScalar is returned when secret material reduces to zero mod
// the group order — a practically-impossible but checked condition.
var ErrZeroScalar = errors.New("group: zero scalar")

// Keypair is a secp256k1 secret scalar and its associated public point.
// The public point is not guaranteed to have even Y; callers that need
// the BIP-340 x-only form use XOnly.
type Keypair struct {
	priv *secp256k1.PrivateKey
	pub  *secp256k1.PublicKey
}

// KeypairFromSecretBytes derives a keypair whose secret is bytes mod n.
// Callers are responsible for ensuring bytes is not a degenerate input
// (e.g. by hashing seed material, which makes a zero result
// astronomically unlikely but not impossible to rule out structurally).
func KeypairFromSecretBytes(bytes [ScalarSize]byte) (Keypair, error) {
	var scalar secp256k1.ModNScalar
	scalar.SetBytes(&bytes)
	if scalar.IsZero() {
		return Keypair{}, ErrZeroScalar
	}
	priv := secp256k1.NewPrivateKey(&scalar)
	return Keypair{priv: priv, pub: priv.PubKey()}, nil
}

// NonceKeypairFromSecretBytes derives a keypair the same way as
// KeypairFromSecretBytes, additionally negating the scalar if needed so
// the resulting nonce point has even Y, matching the BIP-340 nonce
// convention.
func NonceKeypairFromSecretBytes(bytes [ScalarSize]byte) (Keypair, error) {
	kp, err := KeypairFromSecretBytes(bytes)
	if err != nil {
		return Keypair{}, err
	}
	if isOddY(kp.pub) {
		var negated secp256k1.ModNScalar
		negated.Set(&kp.priv.Key)
		negated.Negate()
		priv := secp256k1.NewPrivateKey(&negated)
		kp = Keypair{priv: priv, pub: priv.PubKey()}
	}
	return kp, nil
}

// XOnly returns the keypair's public point in BIP-340 x-only form (the
// 32-byte X coordinate; Y parity is implied even for a nonce keypair
// and handled internally by the signing/attestation primitives for an
// arbitrary keypair).
func (kp Keypair) XOnly() [XOnlySize]byte {
	return xOnlyBytes(kp.pub)
}

// PublicKey exposes the underlying *secp256k1.PublicKey for callers
// that need full point arithmetic (anticipate_attestations).
func (kp Keypair) PublicKey() *secp256k1.PublicKey {
	return kp.pub
}

func xOnlyBytes(pub *secp256k1.PublicKey) [XOnlySize]byte {
	comp := pub.SerializeCompressed()
	var out [XOnlySize]byte
	copy(out[:], comp[1:])
	return out
}

func isOddY(pub *secp256k1.PublicKey) bool {
	return pub.SerializeCompressed()[0] == 0x03
}

// ParseXOnlyPubKey reconstructs a full public key from its BIP-340
// x-only form, assuming the even-Y convention.
func ParseXOnlyPubKey(x [XOnlySize]byte) (*secp256k1.PublicKey, error) {
	buf := make([]byte, 33)
	buf[0] = 0x02
	copy(buf[1:], x[:])
	return secp256k1.ParsePubKey(buf)
}

// ValidateXOnly reports whether b (which must be XOnlySize bytes) is
// the X coordinate of a point on the curve. Used as a
// hexcodec.Validator so a nonce or public-key hex that decodes to an
// off-curve point fails with ErrInvalidEncoding instead of being
// accepted as-is.
func ValidateXOnly(b []byte) error {
	var x [XOnlySize]byte
	copy(x[:], b)
	_, err := ParseXOnlyPubKey(x)
	return err
}

// ValidateScalar reports whether b (which must be ScalarSize bytes) is
// a canonical scalar: strictly less than the group order and nonzero.
// Used as a hexcodec.Validator for attestation scalars (nonces are
// x-only points and use ValidateXOnly).
func ValidateScalar(b []byte) error {
	var raw [ScalarSize]byte
	copy(raw[:], b)
	var s secp256k1.ModNScalar
	if overflow := s.SetBytes(&raw); overflow != 0 {
		return errors.New("group: non-canonical scalar")
	}
	if s.IsZero() {
		return ErrZeroScalar
	}
	return nil
}

// ValidateSignature reports whether b (which must be SignatureSize
// bytes) parses as a well-formed Schnorr signature: R's x-coordinate
// below the field prime and s below the group order. Whether R is on
// the curve is not checked here.
func ValidateSignature(b []byte) error {
	_, err := schnorr.ParseSignature(b)
	return err
}
