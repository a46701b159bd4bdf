// Copyright 2025 Certen Protocol
//

package oracleevent

import (
	"encoding/json"
	"fmt"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/group"
	"github.com/oliviaoracle/olivia/pkg/hexcodec"
)

// RawOracleEvent is the byte-exact signed payload: the literal JSON
// bytes produced at announcement time, never re-serialized. Only Data
// is what gets signed and verified.
type RawOracleEvent struct {
	Encoding string // always "json"
	Data     []byte
}

type rawOracleEventWire struct {
	Encoding string `json:"encoding"`
	Data     string `json:"data"`
}

// MarshalJSON implements json.Marshaler.
func (r RawOracleEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(rawOracleEventWire{Encoding: r.Encoding, Data: string(r.Data)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RawOracleEvent) UnmarshalJSON(b []byte) error {
	var w rawOracleEventWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	r.Encoding = w.Encoding
	r.Data = []byte(w.Data)
	return nil
}

// Decode parses Data as an OracleEvent, applying the round-trip checks
// OracleEvent.UnmarshalJSON enforces.
func (r RawOracleEvent) Decode() (OracleEvent, error) {
	if r.Encoding != "json" {
		return OracleEvent{}, fmt.Errorf("oracleevent: unsupported raw encoding %q", r.Encoding)
	}
	var oe OracleEvent
	if err := json.Unmarshal(r.Data, &oe); err != nil {
		return OracleEvent{}, fmt.Errorf("oracleevent: decode: %w", err)
	}
	return oe, nil
}

// RawAnnouncement is a signed RawOracleEvent.
type RawAnnouncement struct {
	OracleEvent RawOracleEvent
	Signature   [group.SignatureSize]byte
}

type rawAnnouncementWire struct {
	OracleEvent RawOracleEvent `json:"oracle_event"`
	Signature   string         `json:"signature"`
}

// MarshalJSON implements json.Marshaler.
func (a RawAnnouncement) MarshalJSON() ([]byte, error) {
	return json.Marshal(rawAnnouncementWire{
		OracleEvent: a.OracleEvent,
		Signature:   hexcodec.Encode(a.Signature[:]),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *RawAnnouncement) UnmarshalJSON(b []byte) error {
	var w rawAnnouncementWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	raw, err := hexcodec.DecodeValidated(w.Signature, group.SignatureSize, group.ValidateSignature)
	if err != nil {
		return fmt.Errorf("oracleevent: signature: %w", err)
	}
	a.OracleEvent = w.OracleEvent
	copy(a.Signature[:], raw)
	return nil
}

// VerifyAgainstID verifies the announcement's signature over its raw
// bytes under announcementKey, decodes the OracleEvent, and additionally
// requires the decoded event id to equal id. Returns the decoded event
// and true on success.
func (a RawAnnouncement) VerifyAgainstID(id eventpath.EventId, announcementKey [group.XOnlySize]byte) (OracleEvent, bool) {
	if !group.VerifyAnnouncementSignature(announcementKey, a.OracleEvent.Data, a.Signature) {
		return OracleEvent{}, false
	}
	decoded, err := a.OracleEvent.Decode()
	if err != nil {
		return OracleEvent{}, false
	}
	if decoded.Event.ID.String() != id.String() {
		return OracleEvent{}, false
	}
	return decoded, true
}
