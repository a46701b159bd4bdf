// Copyright 2025 Certen Protocol
//
// Package seed implements Olivia's root secret and its keyed-BLAKE2b
// child derivation. Every signing key, nonce, and attestation scalar the
// oracle ever produces traces back to one Seed.
package seed

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/oliviaoracle/olivia/pkg/hexcodec"
)

// Size is the fixed length of a Seed in bytes.
const Size = 64

// ErrInvalidLength is returned when a seed is constructed from the wrong
// number of bytes. It is hexcodec's own sentinel: a Seed is just a
// fixed-length byte string with no further structural validity to
// check, so FromHex's only failure modes are hexcodec's.
var ErrInvalidLength = hexcodec.ErrInvalidLength

// Seed is an immutable 64-byte secret and the root of all oracle key
// material. Identical seeds produce identical oracle keys, nonces, and
// attestations.
type Seed struct {
	bytes [Size]byte
}

// FromBytes constructs a Seed from exactly Size bytes.
func FromBytes(b []byte) (Seed, error) {
	var s Seed
	if len(b) != Size {
		return s, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), Size)
	}
	copy(s.bytes[:], b)
	return s, nil
}

// FromHex decodes a hex-encoded seed.
func FromHex(h string) (Seed, error) {
	b, err := hexcodec.DecodeFixed(h, Size)
	if err != nil {
		return Seed{}, fmt.Errorf("seed: %w", err)
	}
	return FromBytes(b)
}

// Bytes returns the seed's 64 raw bytes.
func (s Seed) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, s.bytes[:])
	return out
}

// String renders the seed as lowercase hex. Seeds are secret; callers
// should think carefully before logging the result of this method.
func (s Seed) String() string {
	return hexcodec.Encode(s.bytes[:])
}

// Child derives a new Seed by keying a BLAKE2b-512 hash with this seed
// and hashing tag as the message. Distinct tags yield independent,
// cryptographically unrelated children of the same root secret.
func (s Seed) Child(tag []byte) Seed {
	h, err := blake2b.New512(s.bytes[:])
	if err != nil {
		// blake2b.New512 only fails if the key exceeds 64 bytes; Seed is
		// fixed at 64, so this is unreachable.
		panic(fmt.Sprintf("seed: blake2b keyed hash: %v", err))
	}
	h.Write(tag)
	sum := h.Sum(nil)

	var child Seed
	copy(child.bytes[:], sum)
	return child
}

// ChildString is a convenience wrapper around Child for string tags.
func (s Seed) ChildString(tag string) Seed {
	return s.Child([]byte(tag))
}

// ToBlake2b32 returns the keyed 32-byte BLAKE2b digest of this seed,
// using the seed itself as both key and message. This is the raw
// scalar-seeding material handed to Group.KeypairFromSecretBytes and
// Group.NonceKeypairFromSecretBytes.
func (s Seed) ToBlake2b32() [32]byte {
	h, err := blake2b.New256(s.bytes[:])
	if err != nil {
		panic(fmt.Sprintf("seed: blake2b keyed hash: %v", err))
	}
	h.Write(s.bytes[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
