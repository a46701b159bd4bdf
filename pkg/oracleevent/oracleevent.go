// Copyright 2025 Certen Protocol
//

package oracleevent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/outcomepkg"
)

// OracleEvent is the canonical, signed payload: an event bound to the
// descriptor its kind admits and the announcement scheme blocks backing
// it. Its JSON form is what RawOracleEvent.Data freezes verbatim.
type OracleEvent struct {
	Event      Event
	Descriptor outcomepkg.Descriptor
	Schemes    AnnouncementSchemes
}

type oracleEventWire struct {
	ID                  string                `json:"id"`
	ExpectedOutcomeTime *time.Time            `json:"expected_outcome_time"`
	Descriptor          outcomepkg.Descriptor `json:"descriptor"`
	Schemes             AnnouncementSchemes   `json:"schemes"`
}

// MarshalJSON implements json.Marshaler.
func (e OracleEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(oracleEventWire{
		ID:                  e.Event.ID.String(),
		ExpectedOutcomeTime: e.Event.ExpectedOutcomeTime,
		Descriptor:          e.Descriptor,
		Schemes:             e.Schemes,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Decoding enforces the
// round-trip invariant: the descriptor field must equal the one derived
// from the id, and any olivia-v1 nonce list must be at least as long as
// the id's kind requires.
func (e *OracleEvent) UnmarshalJSON(b []byte) error {
	var w oracleEventWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	id, err := eventpath.ParseEventId(w.ID)
	if err != nil {
		return fmt.Errorf("oracleevent: id: %w", err)
	}
	derived, err := outcomepkg.DescriptorForEventId(id)
	if err != nil {
		return fmt.Errorf("oracleevent: deriving descriptor: %w", err)
	}
	if !w.Descriptor.Equal(derived) {
		return fmt.Errorf("oracleevent: descriptor does not match the one derived from id %s", id)
	}
	if w.Schemes.OliviaV1 != nil && len(w.Schemes.OliviaV1.Nonces) < id.NNonces() {
		return fmt.Errorf("oracleevent: %d nonces, want at least %d for %s", len(w.Schemes.OliviaV1.Nonces), id.NNonces(), id)
	}
	e.Event = Event{ID: id, ExpectedOutcomeTime: w.ExpectedOutcomeTime}
	e.Descriptor = w.Descriptor
	e.Schemes = w.Schemes
	return nil
}
