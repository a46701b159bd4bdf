package group

import (
	"bytes"
	"testing"
)

func fixedScalarBytes(fill byte) [ScalarSize]byte {
	var b [ScalarSize]byte
	for i := range b {
		b[i] = fill
	}
	return b
}

func TestKeypairFromSecretBytesDeterministic(t *testing.T) {
	b := fixedScalarBytes(0x11)
	kp1, err := KeypairFromSecretBytes(b)
	if err != nil {
		t.Fatalf("KeypairFromSecretBytes: %v", err)
	}
	kp2, err := KeypairFromSecretBytes(b)
	if err != nil {
		t.Fatalf("KeypairFromSecretBytes: %v", err)
	}
	x1, x2 := kp1.XOnly(), kp2.XOnly()
	if !bytes.Equal(x1[:], x2[:]) {
		t.Errorf("derivation not deterministic: %x != %x", x1, x2)
	}
}

func TestKeypairFromSecretBytesRejectsZero(t *testing.T) {
	var zero [ScalarSize]byte
	if _, err := KeypairFromSecretBytes(zero); err == nil {
		t.Errorf("expected error for zero scalar")
	}
}

func TestSignAndVerifyAnnouncement(t *testing.T) {
	kp, err := KeypairFromSecretBytes(fixedScalarBytes(0x22))
	if err != nil {
		t.Fatalf("KeypairFromSecretBytes: %v", err)
	}
	msg := []byte(`{"id":"/foo/bar.occur"}`)
	sig, err := SignAnnouncement(kp, msg)
	if err != nil {
		t.Fatalf("SignAnnouncement: %v", err)
	}
	if !VerifyAnnouncementSignature(kp.XOnly(), msg, sig) {
		t.Errorf("VerifyAnnouncementSignature: expected valid")
	}
	tampered := append([]byte(nil), msg...)
	tampered[0] = 'x'
	if VerifyAnnouncementSignature(kp.XOnly(), tampered, sig) {
		t.Errorf("VerifyAnnouncementSignature: expected invalid for tampered message")
	}
}

func TestRevealAndVerifyAttestScalar(t *testing.T) {
	signingKP, err := KeypairFromSecretBytes(fixedScalarBytes(0x33))
	if err != nil {
		t.Fatalf("KeypairFromSecretBytes: %v", err)
	}
	nonceKP, err := NonceKeypairFromSecretBytes(fixedScalarBytes(0x44))
	if err != nil {
		t.Fatalf("NonceKeypairFromSecretBytes: %v", err)
	}
	fragment := []byte("/foo/bar/baz.occur=true")

	scalar := RevealAttestScalar(signingKP, nonceKP, fragment)
	if !VerifyAttestScalar(signingKP.XOnly(), nonceKP.XOnly(), fragment, scalar) {
		t.Errorf("VerifyAttestScalar: expected valid")
	}
	if VerifyAttestScalar(signingKP.XOnly(), nonceKP.XOnly(), []byte("wrong"), scalar) {
		t.Errorf("VerifyAttestScalar: expected invalid for wrong fragment")
	}
}

func TestAnticipateAttestationsMatchesRevealed(t *testing.T) {
	signingKP, err := KeypairFromSecretBytes(fixedScalarBytes(0x55))
	if err != nil {
		t.Fatalf("KeypairFromSecretBytes: %v", err)
	}
	nonceKP, err := NonceKeypairFromSecretBytes(fixedScalarBytes(0x66))
	if err != nil {
		t.Fatalf("NonceKeypairFromSecretBytes: %v", err)
	}
	fragments := [][]byte{
		[]byte("/m/A_B.vs=A_win"),
		[]byte("/m/A_B.vs=B_win"),
		[]byte("/m/A_B.vs=draw"),
	}

	points, err := AnticipateAttestations(signingKP.XOnly(), nonceKP.XOnly(), fragments)
	if err != nil {
		t.Fatalf("AnticipateAttestations: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(points))
	}

	scalar := RevealAttestScalar(signingKP, nonceKP, fragments[0])
	sg, err := KeypairFromSecretBytes(scalar)
	if err != nil {
		t.Fatalf("KeypairFromSecretBytes(scalar): %v", err)
	}
	// s*G's compressed form should match the anticipated point for
	// outcome 0, modulo the even-Y normalization KeypairFromSecretBytes
	// does not perform (it only rejects zero); compare x-coordinates.
	sg_x := sg.XOnly()
	if !bytes.Equal(sg_x[:], points[0][1:]) {
		t.Errorf("anticipated point x-coordinate mismatch:\n got  %x\n want %x", points[0][1:], sg_x)
	}
}

func TestValidateXOnlyAcceptsOnCurvePoint(t *testing.T) {
	kp, err := KeypairFromSecretBytes(fixedScalarBytes(0x77))
	if err != nil {
		t.Fatalf("KeypairFromSecretBytes: %v", err)
	}
	x := kp.XOnly()
	if err := ValidateXOnly(x[:]); err != nil {
		t.Errorf("ValidateXOnly: expected valid point, got %v", err)
	}
}

func TestValidateXOnlyRejectsOffCurvePoint(t *testing.T) {
	// The all-zero x-coordinate is not on the secp256k1 curve.
	var x [XOnlySize]byte
	if err := ValidateXOnly(x[:]); err == nil {
		t.Errorf("ValidateXOnly: expected error for off-curve point")
	}
}

func TestValidateScalarRejectsOverflow(t *testing.T) {
	// secp256k1's group order n is 0xFFFFFFFF...FFFEBAAEDCE6AF48A03BBFD25E8CD0364141;
	// 0xFF-filled bytes overflow n.
	overflow := fixedScalarBytes(0xff)
	if err := ValidateScalar(overflow[:]); err == nil {
		t.Errorf("ValidateScalar: expected error for non-canonical scalar")
	}
}

func TestValidateScalarAcceptsCanonical(t *testing.T) {
	canonical := fixedScalarBytes(0x11)
	if err := ValidateScalar(canonical[:]); err != nil {
		t.Errorf("ValidateScalar: expected valid scalar, got %v", err)
	}
}

func TestValidateScalarRejectsZero(t *testing.T) {
	var zero [ScalarSize]byte
	if err := ValidateScalar(zero[:]); err == nil {
		t.Errorf("ValidateScalar: expected error for zero scalar")
	}
}

func TestValidateSignatureRejectsWrongLength(t *testing.T) {
	if err := ValidateSignature(make([]byte, 10)); err == nil {
		t.Errorf("ValidateSignature: expected error for short input")
	}
}

func TestValidateSignatureAcceptsWellFormed(t *testing.T) {
	kp, err := KeypairFromSecretBytes(fixedScalarBytes(0x88))
	if err != nil {
		t.Fatalf("KeypairFromSecretBytes: %v", err)
	}
	sig, err := SignAnnouncement(kp, []byte("hello"))
	if err != nil {
		t.Fatalf("SignAnnouncement: %v", err)
	}
	if err := ValidateSignature(sig[:]); err != nil {
		t.Errorf("ValidateSignature: expected valid signature, got %v", err)
	}
}
