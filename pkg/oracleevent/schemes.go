// Copyright 2025 Certen Protocol
//

package oracleevent

import (
	"encoding/json"
	"fmt"

	"github.com/oliviaoracle/olivia/pkg/group"
	"github.com/oliviaoracle/olivia/pkg/hexcodec"
)

// OliviaV1Announcement is the olivia-v1 scheme's announcement block: one
// nonce per fragment the event's kind admits.
type OliviaV1Announcement struct {
	Nonces [][group.XOnlySize]byte
}

// EcdsaV1Announcement is the reserved, never-populated ecdsa-v1
// announcement block. See the design notes on the reserved scheme.
type EcdsaV1Announcement struct{}

// AnnouncementSchemes holds the optional per-scheme announcement
// blocks. The core only ever populates OliviaV1; EcdsaV1 is a reserved
// channel, kept nil until its exact message-binding is specified.
type AnnouncementSchemes struct {
	OliviaV1 *OliviaV1Announcement
	EcdsaV1  *EcdsaV1Announcement
}

type oliviaV1AnnouncementWire struct {
	Nonces []string `json:"nonces"`
}

type announcementSchemesWire struct {
	OliviaV1 *oliviaV1AnnouncementWire `json:"olivia-v1,omitempty"`
	EcdsaV1  *struct{}                 `json:"ecdsa-v1,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s AnnouncementSchemes) MarshalJSON() ([]byte, error) {
	var w announcementSchemesWire
	if s.OliviaV1 != nil {
		nonces := make([]string, len(s.OliviaV1.Nonces))
		for i, n := range s.OliviaV1.Nonces {
			nonces[i] = hexcodec.Encode(n[:])
		}
		w.OliviaV1 = &oliviaV1AnnouncementWire{Nonces: nonces}
	}
	if s.EcdsaV1 != nil {
		w.EcdsaV1 = &struct{}{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *AnnouncementSchemes) UnmarshalJSON(b []byte) error {
	var w announcementSchemesWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.OliviaV1 != nil {
		nonces := make([][group.XOnlySize]byte, len(w.OliviaV1.Nonces))
		for i, hexStr := range w.OliviaV1.Nonces {
			raw, err := hexcodec.DecodeValidated(hexStr, group.XOnlySize, group.ValidateXOnly)
			if err != nil {
				return fmt.Errorf("oracleevent: nonce %d: %w", i, err)
			}
			copy(nonces[i][:], raw)
		}
		s.OliviaV1 = &OliviaV1Announcement{Nonces: nonces}
	} else {
		s.OliviaV1 = nil
	}
	if w.EcdsaV1 != nil {
		s.EcdsaV1 = &EcdsaV1Announcement{}
	} else {
		s.EcdsaV1 = nil
	}
	return nil
}

// OliviaV1Attestation is the olivia-v1 scheme's attestation block: one
// revealed scalar per fragment.
type OliviaV1Attestation struct {
	Scalars [][group.ScalarSize]byte
}

// EcdsaV1Attestation is the reserved, never-populated ecdsa-v1
// attestation block.
type EcdsaV1Attestation struct {
	Signature [group.SignatureSize]byte
}

// AttestationSchemes holds the optional per-scheme attestation blocks.
// A scheme present in the announcement must have a matching block here;
// a scheme absent from the announcement must be absent here too.
type AttestationSchemes struct {
	OliviaV1 *OliviaV1Attestation
	EcdsaV1  *EcdsaV1Attestation
}

type oliviaV1AttestationWire struct {
	Scalars []string `json:"scalars"`
}

type ecdsaV1AttestationWire struct {
	Signature string `json:"signature"`
}

type attestationSchemesWire struct {
	OliviaV1 *oliviaV1AttestationWire `json:"olivia-v1,omitempty"`
	EcdsaV1  *ecdsaV1AttestationWire  `json:"ecdsa-v1,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s AttestationSchemes) MarshalJSON() ([]byte, error) {
	var w attestationSchemesWire
	if s.OliviaV1 != nil {
		scalars := make([]string, len(s.OliviaV1.Scalars))
		for i, sc := range s.OliviaV1.Scalars {
			scalars[i] = hexcodec.Encode(sc[:])
		}
		w.OliviaV1 = &oliviaV1AttestationWire{Scalars: scalars}
	}
	if s.EcdsaV1 != nil {
		w.EcdsaV1 = &ecdsaV1AttestationWire{Signature: hexcodec.Encode(s.EcdsaV1.Signature[:])}
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *AttestationSchemes) UnmarshalJSON(b []byte) error {
	var w attestationSchemesWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.OliviaV1 != nil {
		scalars := make([][group.ScalarSize]byte, len(w.OliviaV1.Scalars))
		for i, hexStr := range w.OliviaV1.Scalars {
			raw, err := hexcodec.DecodeValidated(hexStr, group.ScalarSize, group.ValidateScalar)
			if err != nil {
				return fmt.Errorf("oracleevent: scalar %d: %w", i, err)
			}
			copy(scalars[i][:], raw)
		}
		s.OliviaV1 = &OliviaV1Attestation{Scalars: scalars}
	} else {
		s.OliviaV1 = nil
	}
	if w.EcdsaV1 != nil {
		raw, err := hexcodec.DecodeValidated(w.EcdsaV1.Signature, group.SignatureSize, group.ValidateSignature)
		if err != nil {
			return fmt.Errorf("oracleevent: ecdsa-v1 signature: %w", err)
		}
		att := &EcdsaV1Attestation{}
		copy(att.Signature[:], raw)
		s.EcdsaV1 = att
	} else {
		s.EcdsaV1 = nil
	}
	return nil
}
