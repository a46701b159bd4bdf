package oracleevent_test

import (
	"testing"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/keychain"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
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

func TestCreateAnnouncementVerifiesAgainstID(t *testing.T) {
	kc, err := keychain.New(fixedSeed(t))
	if err != nil {
		t.Fatalf("keychain.New: %v", err)
	}
	id, err := eventpath.ParseEventId("/foo/bar/baz.occur")
	if err != nil {
		t.Fatalf("ParseEventId: %v", err)
	}
	event := oracleevent.Event{ID: id}

	ann, err := kc.CreateAnnouncement(event)
	if err != nil {
		t.Fatalf("CreateAnnouncement: %v", err)
	}

	decoded, ok := ann.VerifyAgainstID(id, kc.AnnouncementKey())
	if !ok {
		t.Fatalf("VerifyAgainstID: expected success")
	}
	if decoded.Event.ID.String() != id.String() {
		t.Errorf("decoded id = %s, want %s", decoded.Event.ID.String(), id.String())
	}
	if decoded.Schemes.OliviaV1 == nil || len(decoded.Schemes.OliviaV1.Nonces) != 1 {
		t.Errorf("expected exactly one olivia-v1 nonce, got %+v", decoded.Schemes.OliviaV1)
	}

	other, err := eventpath.ParseEventId("/foo/bar/qux.occur")
	if err != nil {
		t.Fatalf("ParseEventId: %v", err)
	}
	if _, ok := ann.VerifyAgainstID(other, kc.AnnouncementKey()); ok {
		t.Errorf("VerifyAgainstID: expected failure against mismatched id")
	}
}

func TestCreateAnnouncementIsDeterministic(t *testing.T) {
	kc, err := keychain.New(fixedSeed(t))
	if err != nil {
		t.Fatalf("keychain.New: %v", err)
	}
	id, err := eventpath.ParseEventId("/foo/bar/baz.occur")
	if err != nil {
		t.Fatalf("ParseEventId: %v", err)
	}
	event := oracleevent.Event{ID: id}

	a1, err := kc.CreateAnnouncement(event)
	if err != nil {
		t.Fatalf("CreateAnnouncement: %v", err)
	}
	a2, err := kc.CreateAnnouncement(event)
	if err != nil {
		t.Fatalf("CreateAnnouncement: %v", err)
	}
	if string(a1.OracleEvent.Data) != string(a2.OracleEvent.Data) {
		t.Errorf("announcement bytes not deterministic")
	}
	if a1.Signature != a2.Signature {
		t.Errorf("signature not deterministic")
	}
}
