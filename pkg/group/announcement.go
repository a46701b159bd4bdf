// Copyright 2025 Certen Protocol
//

package group

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// SignAnnouncement deterministically signs message under keypair using
// decred's BIP-340-style Schnorr implementation. The message is
// pre-hashed with SHA-256 before signing, per the announcement
// signature scheme.
func SignAnnouncement(kp Keypair, message []byte) ([SignatureSize]byte, error) {
	hash := sha256.Sum256(message)
	sig, err := schnorr.Sign(kp.priv, hash[:])
	if err != nil {
		return [SignatureSize]byte{}, fmt.Errorf("group: sign announcement: %w", err)
	}
	var out [SignatureSize]byte
	copy(out[:], sig.Serialize())
	return out, nil
}

// VerifyAnnouncementSignature reports whether sig is a valid
// announcement signature over message under the x-only public key
// pubXOnly.
func VerifyAnnouncementSignature(pubXOnly [XOnlySize]byte, message []byte, sig [SignatureSize]byte) bool {
	pub, err := ParseXOnlyPubKey(pubXOnly)
	if err != nil {
		return false
	}
	parsed, err := schnorr.ParseSignature(sig[:])
	if err != nil {
		return false
	}
	hash := sha256.Sum256(message)
	return parsed.Verify(hash[:], pub)
}
