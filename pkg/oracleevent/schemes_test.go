package oracleevent

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/oliviaoracle/olivia/pkg/hexcodec"
)

func TestAnnouncementSchemesRoundTrip(t *testing.T) {
	var nonce [32]byte
	nonce[31] = 0x01
	s := AnnouncementSchemes{OliviaV1: &OliviaV1Announcement{Nonces: [][32]byte{nonce}}}
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded AnnouncementSchemes
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.OliviaV1 == nil || decoded.OliviaV1.Nonces[0] != nonce {
		t.Errorf("round trip mismatch: %+v", decoded.OliviaV1)
	}
}

func TestAnnouncementSchemesRejectsOffCurveNonce(t *testing.T) {
	// All-0xff bytes exceed the secp256k1 field prime, so this can never
	// be a valid x-coordinate.
	invalidHex := strings.Repeat("ff", 32)
	raw := []byte(`{"olivia-v1":{"nonces":["` + invalidHex + `"]}}`)
	var s AnnouncementSchemes
	err := json.Unmarshal(raw, &s)
	if err == nil {
		t.Fatalf("expected error for off-curve nonce")
	}
	if !errors.Is(err, hexcodec.ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestAttestationSchemesRejectsNonCanonicalScalar(t *testing.T) {
	overflowHex := strings.Repeat("ff", 32)
	raw := []byte(`{"olivia-v1":{"scalars":["` + overflowHex + `"]}}`)
	var s AttestationSchemes
	err := json.Unmarshal(raw, &s)
	if err == nil {
		t.Fatalf("expected error for non-canonical scalar")
	}
	if !errors.Is(err, hexcodec.ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestAttestationSchemesRejectsWrongLength(t *testing.T) {
	raw := []byte(`{"olivia-v1":{"scalars":["0102"]}}`)
	var s AttestationSchemes
	err := json.Unmarshal(raw, &s)
	if !errors.Is(err, hexcodec.ErrInvalidLength) {
		t.Errorf("expected ErrInvalidLength, got %v", err)
	}
}
