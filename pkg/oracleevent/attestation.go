// Copyright 2025 Certen Protocol
//

package oracleevent

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/group"
	"github.com/oliviaoracle/olivia/pkg/outcomepkg"
)

// Attestation reveals the realized outcome of a previously announced
// event, and the per-scheme scalars/signature that make it verifiable.
type Attestation struct {
	Outcome string
	Schemes AttestationSchemes
	Time    time.Time
}

type attestationWire struct {
	Outcome string              `json:"outcome"`
	Schemes AttestationSchemes  `json:"schemes"`
	Time    time.Time           `json:"time"`
}

// MarshalJSON implements json.Marshaler.
func (a Attestation) MarshalJSON() ([]byte, error) {
	return json.Marshal(attestationWire{Outcome: a.Outcome, Schemes: a.Schemes, Time: a.Time})
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Attestation) UnmarshalJSON(b []byte) error {
	var w attestationWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	a.Outcome = w.Outcome
	a.Schemes = w.Schemes
	a.Time = w.Time
	return nil
}

// ErrNoOliviaV1Block is returned when VerifyOliviaV1 is called on an
// attestation that carries no olivia-v1 scheme block.
var ErrNoOliviaV1Block = errors.New("oracleevent: attestation has no olivia-v1 block")

// VerifyOliviaV1 verifies every fragment scalar against the
// corresponding announced nonce. id and nonces come from the
// announcement this attestation completes; pubKey is the oracle's
// announcement key.
func (a Attestation) VerifyOliviaV1(id eventpath.EventId, pubKey [group.XOnlySize]byte, nonces [][group.XOnlySize]byte) (bool, error) {
	if a.Schemes.OliviaV1 == nil {
		return false, ErrNoOliviaV1Block
	}
	outcome, err := outcomepkg.ParseOutcome(id, a.Outcome)
	if err != nil {
		return false, fmt.Errorf("oracleevent: parse outcome: %w", err)
	}
	fragments, err := outcome.Fragments()
	if err != nil {
		return false, fmt.Errorf("oracleevent: fragments: %w", err)
	}
	scalars := a.Schemes.OliviaV1.Scalars
	if len(fragments) != len(nonces) || len(fragments) != len(scalars) {
		return false, fmt.Errorf("oracleevent: length mismatch: %d fragments, %d nonces, %d scalars", len(fragments), len(nonces), len(scalars))
	}
	for i, frag := range fragments {
		if !group.VerifyAttestScalar(pubKey, nonces[i], []byte(frag.AttestationString), scalars[i]) {
			return false, nil
		}
	}
	return true, nil
}
