// Copyright 2025 Certen Protocol
//
// Package outcomepkg implements outcome values, their canonical string
// forms, fragment decomposition for multi-nonce events, and the
// descriptor that announcements embed to describe what outcomes an
// event admits.
package outcomepkg

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
)

// DescriptorKind discriminates the two Descriptor shapes.
type DescriptorKind int

const (
	// DescriptorEnum lists the finite set of outcome strings (occur,
	// win, vs, predicate).
	DescriptorEnum DescriptorKind = iota
	// DescriptorDigitDecomposition describes an n-digit unsigned
	// decimal value.
	DescriptorDigitDecomposition
)

// Descriptor enumerates the outcomes a given EventKind admits. It is
// embedded in the signed announcement payload so consumers can validate
// outcome strings without re-deriving the event's naming rules.
type Descriptor struct {
	Kind     DescriptorKind
	Outcomes []string // populated when Kind == DescriptorEnum
	NDigits  uint8    // populated when Kind == DescriptorDigitDecomposition
	IsSigned bool     // always false; reserved for a future signed-digit scheme
}

func splitVsName(name string) (string, string) {
	parts := strings.SplitN(name, "_", 2)
	return parts[0], parts[1]
}

// DescriptorForEventId derives the Descriptor an EventId's kind admits.
func DescriptorForEventId(id eventpath.EventId) (Descriptor, error) {
	kind := id.Kind()
	switch kind.Kind {
	case eventpath.KindOccur:
		return Descriptor{Kind: DescriptorEnum, Outcomes: []string{"true"}}, nil
	case eventpath.KindWin:
		left, right := splitVsName(id.Name())
		return Descriptor{Kind: DescriptorEnum, Outcomes: []string{left + "_win", right + "_win"}}, nil
	case eventpath.KindVs:
		left, right := splitVsName(id.Name())
		return Descriptor{Kind: DescriptorEnum, Outcomes: []string{left + "_win", right + "_win", "draw"}}, nil
	case eventpath.KindDigits:
		return Descriptor{Kind: DescriptorDigitDecomposition, NDigits: kind.Digits}, nil
	case eventpath.KindPredicate:
		return Descriptor{Kind: DescriptorEnum, Outcomes: []string{"true", "false"}}, nil
	default:
		return Descriptor{}, fmt.Errorf("outcomepkg: unknown event kind %v", kind.Kind)
	}
}

// Equal reports whether two descriptors are structurally identical.
// Used to enforce the round-trip check on decode: the descriptor field
// must equal the one derived from the id.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.Kind != other.Kind {
		return false
	}
	if d.Kind == DescriptorDigitDecomposition {
		return d.NDigits == other.NDigits && d.IsSigned == other.IsSigned
	}
	if len(d.Outcomes) != len(other.Outcomes) {
		return false
	}
	for i := range d.Outcomes {
		if d.Outcomes[i] != other.Outcomes[i] {
			return false
		}
	}
	return true
}

// Contains reports whether s is one of the enumerated outcome strings.
// Only meaningful for DescriptorEnum.
func (d Descriptor) Contains(s string) bool {
	for _, o := range d.Outcomes {
		if o == s {
			return true
		}
	}
	return false
}

type enumWire struct {
	Outcomes []string `json:"outcomes"`
}

type digitDecompositionWire struct {
	IsSigned bool    `json:"is_signed"`
	NDigits  uint8   `json:"n_digits"`
	Unit     *string `json:"unit"`
}

type descriptorWire struct {
	Enum               *enumWire               `json:"Enum,omitempty"`
	DigitDecomposition *digitDecompositionWire `json:"DigitDecomposition,omitempty"`
}

// MarshalJSON implements json.Marshaler, rendering the externally-tagged
// enum shape the wire format uses.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	var w descriptorWire
	switch d.Kind {
	case DescriptorEnum:
		w.Enum = &enumWire{Outcomes: d.Outcomes}
	case DescriptorDigitDecomposition:
		w.DigitDecomposition = &digitDecompositionWire{IsSigned: d.IsSigned, NDigits: d.NDigits}
	default:
		return nil, fmt.Errorf("outcomepkg: unknown descriptor kind %v", d.Kind)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Descriptor) UnmarshalJSON(b []byte) error {
	var w descriptorWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch {
	case w.Enum != nil:
		*d = Descriptor{Kind: DescriptorEnum, Outcomes: w.Enum.Outcomes}
	case w.DigitDecomposition != nil:
		*d = Descriptor{Kind: DescriptorDigitDecomposition, NDigits: w.DigitDecomposition.NDigits, IsSigned: w.DigitDecomposition.IsSigned}
	default:
		return fmt.Errorf("outcomepkg: descriptor has neither Enum nor DigitDecomposition")
	}
	return nil
}
