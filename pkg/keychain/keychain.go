// Copyright 2025 Certen Protocol
//
// Package keychain derives the oracle's permanent signing key and every
// per-event nonce and attestation scalar from a single root Seed, and
// assembles signed announcements from those derived keys.
package keychain

import (
	"encoding/json"
	"fmt"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/group"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
	"github.com/oliviaoracle/olivia/pkg/outcomepkg"
	"github.com/oliviaoracle/olivia/pkg/seed"
)

// Keychain holds the seed-derived oracle signing key and the seed used
// to derive per-event nonces. It is immutable after construction.
type Keychain struct {
	oracleKeypair group.Keypair
	eventsSeed    seed.Seed
}

// New derives a Keychain from root: the oracle key from
// root.Child("oracle-key"), and the per-event nonce seed from
// root.Child("oracle-events").
func New(root seed.Seed) (Keychain, error) {
	oracleKeySeed := root.ChildString("oracle-key")
	kp, err := group.KeypairFromSecretBytes(oracleKeySeed.ToBlake2b32())
	if err != nil {
		return Keychain{}, fmt.Errorf("keychain: derive oracle key: %w", err)
	}
	return Keychain{
		oracleKeypair: kp,
		eventsSeed:    root.ChildString("oracle-events"),
	}, nil
}

// AnnouncementKey returns the oracle's public key in BIP-340 x-only
// form. Published once and pinned for the life of the database.
func (k Keychain) AnnouncementKey() [group.XOnlySize]byte {
	return k.oracleKeypair.XOnly()
}

func (k Keychain) eventSeed(id eventpath.EventId) seed.Seed {
	return k.eventsSeed.Child([]byte(id.String()))
}

func nonceTag(index int) []byte {
	return []byte(fmt.Sprintf("nonce-%d", index))
}

// NoncesForEvent derives the id.NNonces() nonce keypairs for id. Calling
// this twice for the same id (and the same root seed) always yields the
// same nonces.
func (k Keychain) NoncesForEvent(id eventpath.EventId) ([]group.Keypair, error) {
	base := k.eventSeed(id)
	n := id.NNonces()
	nonces := make([]group.Keypair, n)
	for i := 0; i < n; i++ {
		child := base.Child(nonceTag(i))
		kp, err := group.NonceKeypairFromSecretBytes(child.ToBlake2b32())
		if err != nil {
			return nil, fmt.Errorf("keychain: derive nonce %d for %s: %w", i, id, err)
		}
		nonces[i] = kp
	}
	return nonces, nil
}

// ScalarsForOutcome reveals one attestation scalar per fragment of
// stamped.Outcome, each computed against the corresponding derived
// nonce.
func (k Keychain) ScalarsForOutcome(stamped outcomepkg.StampedOutcome) ([][group.ScalarSize]byte, error) {
	fragments, err := stamped.Outcome.Fragments()
	if err != nil {
		return nil, fmt.Errorf("keychain: fragments: %w", err)
	}
	nonces, err := k.NoncesForEvent(stamped.Outcome.ID)
	if err != nil {
		return nil, err
	}
	if len(fragments) != len(nonces) {
		return nil, fmt.Errorf("keychain: %d fragments but %d nonces for %s", len(fragments), len(nonces), stamped.Outcome.ID)
	}
	scalars := make([][group.ScalarSize]byte, len(fragments))
	for i, frag := range fragments {
		scalars[i] = group.RevealAttestScalar(k.oracleKeypair, nonces[i], []byte(frag.AttestationString))
	}
	return scalars, nil
}

// CreateAnnouncement assembles the OracleEvent for event, serializes it
// as the exact bytes that get signed, signs those bytes under the
// oracle key, and returns the resulting RawAnnouncement. The serialized
// bytes are retained verbatim in the envelope: they are never
// re-derived from the decoded struct.
func (k Keychain) CreateAnnouncement(event oracleevent.Event) (oracleevent.RawAnnouncement, error) {
	nonces, err := k.NoncesForEvent(event.ID)
	if err != nil {
		return oracleevent.RawAnnouncement{}, err
	}
	nonceXOnly := make([][group.XOnlySize]byte, len(nonces))
	for i, kp := range nonces {
		nonceXOnly[i] = kp.XOnly()
	}

	descriptor, err := outcomepkg.DescriptorForEventId(event.ID)
	if err != nil {
		return oracleevent.RawAnnouncement{}, fmt.Errorf("keychain: descriptor: %w", err)
	}

	oracleEvent := oracleevent.OracleEvent{
		Event:      event,
		Descriptor: descriptor,
		Schemes: oracleevent.AnnouncementSchemes{
			OliviaV1: &oracleevent.OliviaV1Announcement{Nonces: nonceXOnly},
		},
	}

	data, err := json.Marshal(oracleEvent)
	if err != nil {
		return oracleevent.RawAnnouncement{}, fmt.Errorf("keychain: marshal oracle event: %w", err)
	}

	sig, err := group.SignAnnouncement(k.oracleKeypair, data)
	if err != nil {
		return oracleevent.RawAnnouncement{}, fmt.Errorf("keychain: sign announcement: %w", err)
	}

	return oracleevent.RawAnnouncement{
		OracleEvent: oracleevent.RawOracleEvent{Encoding: "json", Data: data},
		Signature:   sig,
	}, nil
}
