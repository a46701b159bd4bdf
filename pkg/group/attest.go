// Copyright 2025 Certen Protocol
//

package group

import (
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// taggedHash implements the BIP-340 tagged hash construction:
// sha256(sha256(tag) || sha256(tag) || msgs...).
func taggedHash(tag string, msgs ...[]byte) [32]byte {
	tagHash := sha256.Sum256([]byte(tag))
	h := sha256.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	for _, m := range msgs {
		h.Write(m)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// bip340Challenge computes e = taggedHash("BIP0340/challenge", R_x,
// P_x, m) reduced mod the group order, as in BIP-340 signing/
// verification.
func bip340Challenge(rX, pX [XOnlySize]byte, msgHash [32]byte) secp256k1.ModNScalar {
	e := taggedHash("BIP0340/challenge", rX[:], pX[:], msgHash[:])
	var c secp256k1.ModNScalar
	c.SetBytes(&e)
	return c
}

// RevealAttestScalar is the critical oracle primitive: given the
// permanent signing keypair, a previously-announced per-event nonce
// keypair, and the bytes of one fragment's attestation string, it
// computes s = r + c*x (mod n), c = bip340Challenge(R, X, sha256(m)),
// following the even-Y negation convention BIP-340 requires of both the
// nonce and the signing key at the point they're used in a signature.
func RevealAttestScalar(signingKP, nonceKP Keypair, fragmentMessage []byte) [ScalarSize]byte {
	msgHash := sha256.Sum256(fragmentMessage)
	rX := xOnlyBytes(nonceKP.pub)
	pX := xOnlyBytes(signingKP.pub)
	c := bip340Challenge(rX, pX, msgHash)

	var x secp256k1.ModNScalar
	x.Set(&signingKP.priv.Key)
	if isOddY(signingKP.pub) {
		x.Negate()
	}

	var r secp256k1.ModNScalar
	r.Set(&nonceKP.priv.Key)
	if isOddY(nonceKP.pub) {
		r.Negate()
	}

	c.Mul(&x)
	s := new(secp256k1.ModNScalar)
	s.Set(&r)
	s.Add(&c)

	out := s.Bytes()
	return out
}

// VerifyAttestScalar reconstructs the signature (R, s) from the
// revealed scalar and the announced nonce, and verifies it against
// fragmentMessage under pubXOnly.
func VerifyAttestScalar(pubXOnly, nonceXOnly [XOnlySize]byte, fragmentMessage []byte, scalar [ScalarSize]byte) bool {
	pub, err := ParseXOnlyPubKey(pubXOnly)
	if err != nil {
		return false
	}

	var rField secp256k1.FieldVal
	if overflow := rField.SetByteSlice(nonceXOnly[:]); overflow {
		return false
	}

	var s secp256k1.ModNScalar
	if overflow := s.SetBytes(&scalar); overflow != 0 {
		return false
	}

	sig := schnorr.NewSignature(&rField, &s)
	hash := sha256.Sum256(fragmentMessage)
	return sig.Verify(hash[:], pub)
}

// AnticipateAttestations returns, for each of the n outcomes a fragment
// admits, the public point T_k = R + c_k*X that the oracle's
// attestation scalar would satisfy s_k*G = T_k for, without requiring
// the oracle's secret. fragmentMessages must have length n and be in
// outcome order (index k's message is the attestation string for
// outcome k).
func AnticipateAttestations(pubXOnly, nonceXOnly [XOnlySize]byte, fragmentMessages [][]byte) ([][33]byte, error) {
	pub, err := ParseXOnlyPubKey(pubXOnly)
	if err != nil {
		return nil, err
	}
	noncePub, err := ParseXOnlyPubKey(nonceXOnly)
	if err != nil {
		return nil, err
	}

	var xJacobian, rJacobian secp256k1.JacobianPoint
	pub.AsJacobian(&xJacobian)
	noncePub.AsJacobian(&rJacobian)

	out := make([][33]byte, len(fragmentMessages))
	for k, msg := range fragmentMessages {
		msgHash := sha256.Sum256(msg)
		c := bip340Challenge(nonceXOnly, pubXOnly, msgHash)

		var cx secp256k1.JacobianPoint
		secp256k1.ScalarMultNonConst(&c, &xJacobian, &cx)

		var sum secp256k1.JacobianPoint
		secp256k1.AddNonConst(&rJacobian, &cx, &sum)
		sum.ToAffine()

		point := secp256k1.NewPublicKey(&sum.X, &sum.Y)
		copy(out[k][:], point.SerializeCompressed())
	}
	return out, nil
}
