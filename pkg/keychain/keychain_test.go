package keychain

import (
	"testing"
	"time"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/group"
	"github.com/oliviaoracle/olivia/pkg/outcomepkg"
	"github.com/oliviaoracle/olivia/pkg/seed"
)

func fixedSeed(t *testing.T) seed.Seed {
	t.Helper()
	b := make([]byte, seed.Size)
	for i := range b {
		b[i] = 0x2a
	}
	s, err := seed.FromBytes(b)
	if err != nil {
		t.Fatalf("seed.FromBytes: %v", err)
	}
	return s
}

func TestNoncesForEventDeterministic(t *testing.T) {
	kc, err := New(fixedSeed(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := eventpath.ParseEventId("/price/BTCUSD.digits_6")
	if err != nil {
		t.Fatalf("ParseEventId: %v", err)
	}
	n1, err := kc.NoncesForEvent(id)
	if err != nil {
		t.Fatalf("NoncesForEvent: %v", err)
	}
	n2, err := kc.NoncesForEvent(id)
	if err != nil {
		t.Fatalf("NoncesForEvent: %v", err)
	}
	if len(n1) != 6 {
		t.Fatalf("len(n1) = %d, want 6", len(n1))
	}
	for i := range n1 {
		if n1[i].XOnly() != n2[i].XOnly() {
			t.Errorf("nonce %d not deterministic", i)
		}
	}
	for i := 0; i < len(n1); i++ {
		for j := i + 1; j < len(n1); j++ {
			if n1[i].XOnly() == n1[j].XOnly() {
				t.Errorf("nonces %d and %d collided", i, j)
			}
		}
	}
}

func TestScalarsForOutcomeVerify(t *testing.T) {
	kc, err := New(fixedSeed(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := eventpath.ParseEventId("/price/BTCUSD.digits_6")
	if err != nil {
		t.Fatalf("ParseEventId: %v", err)
	}
	outcome, err := outcomepkg.ParseOutcome(id, "123456")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	stamped := outcomepkg.NewStampedOutcome(outcome, time.Unix(0, 0))

	scalars, err := kc.ScalarsForOutcome(stamped)
	if err != nil {
		t.Fatalf("ScalarsForOutcome: %v", err)
	}
	if len(scalars) != 6 {
		t.Fatalf("len(scalars) = %d, want 6", len(scalars))
	}
	nonces, err := kc.NoncesForEvent(id)
	if err != nil {
		t.Fatalf("NoncesForEvent: %v", err)
	}
	frags, err := outcome.Fragments()
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}
	for i, sc := range scalars {
		if !group.VerifyAttestScalar(kc.AnnouncementKey(), nonces[i].XOnly(), []byte(frags[i].AttestationString), sc) {
			t.Errorf("scalar %d does not verify against nonce %d", i, i)
		}
	}
}
