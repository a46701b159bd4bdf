// Copyright 2025 Certen Protocol
//

package outcomepkg

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
)

// ErrInvalidOutcome is returned when an outcome string does not match
// the EventKind it is being parsed against.
var ErrInvalidOutcome = errors.New("outcomepkg: invalid outcome")

// ValueKind discriminates the OutcomeValue variants.
type ValueKind int

const (
	ValueOccurred ValueKind = iota
	ValueVs
	ValueWin
	ValueDigits
	ValuePredicateResult
)

// OutcomeValue is the realized value of an event's outcome. Which
// fields are meaningful depends on Kind.
type OutcomeValue struct {
	Kind ValueKind

	// ValueVs
	VsDraw   bool
	VsWinner string // meaningful when !VsDraw

	// ValueWin
	WinSide    string // the name of the side that won
	PositedWon bool   // whether the winner matches the posited (left) side

	// ValueDigits
	Digits uint64

	// ValuePredicateResult
	PredicateResult bool
}

// Occurred constructs the single-occurrence outcome value.
func Occurred() OutcomeValue { return OutcomeValue{Kind: ValueOccurred} }

// VsDrawValue constructs a versus-match draw outcome.
func VsDrawValue() OutcomeValue { return OutcomeValue{Kind: ValueVs, VsDraw: true} }

// VsWinnerValue constructs a versus-match outcome naming the winner.
func VsWinnerValue(winner string) OutcomeValue {
	return OutcomeValue{Kind: ValueVs, VsWinner: winner}
}

// WinValue constructs a no-draw versus-match outcome.
func WinValue(side string, positedWon bool) OutcomeValue {
	return OutcomeValue{Kind: ValueWin, WinSide: side, PositedWon: positedWon}
}

// DigitsValue constructs an n-digit decimal outcome.
func DigitsValue(v uint64) OutcomeValue { return OutcomeValue{Kind: ValueDigits, Digits: v} }

// PredicateValue constructs a derived predicate outcome.
func PredicateValue(result bool) OutcomeValue {
	return OutcomeValue{Kind: ValuePredicateResult, PredicateResult: result}
}

// Outcome pairs an EventId with its realized value.
type Outcome struct {
	ID    eventpath.EventId
	Value OutcomeValue
}

// String renders the outcome's canonical wire string: "true" for
// single-occurrence, "draw" or "<name>_win" for versus-matches, and the
// decimal value for digit events. The value's natural decimal string
// must span exactly the kind's digit count; there is no zero-padding.
func (o Outcome) String() (string, error) {
	kind := o.ID.Kind()
	switch o.Value.Kind {
	case ValueOccurred:
		if kind.Kind != eventpath.KindOccur {
			return "", fmt.Errorf("%w: occurred value on kind %s", ErrInvalidOutcome, kind)
		}
		return "true", nil
	case ValueVs:
		if kind.Kind != eventpath.KindVs {
			return "", fmt.Errorf("%w: vs value on kind %s", ErrInvalidOutcome, kind)
		}
		if o.Value.VsDraw {
			return "draw", nil
		}
		return o.Value.VsWinner + "_win", nil
	case ValueWin:
		if kind.Kind != eventpath.KindWin {
			return "", fmt.Errorf("%w: win value on kind %s", ErrInvalidOutcome, kind)
		}
		return o.Value.WinSide + "_win", nil
	case ValueDigits:
		if kind.Kind != eventpath.KindDigits {
			return "", fmt.Errorf("%w: digits value on kind %s", ErrInvalidOutcome, kind)
		}
		s := strconv.FormatUint(o.Value.Digits, 10)
		n := int(kind.Digits)
		if len(s) != n {
			return "", fmt.Errorf("%w: %d does not have exactly %d digits", ErrInvalidOutcome, o.Value.Digits, n)
		}
		return s, nil
	case ValuePredicateResult:
		if kind.Kind != eventpath.KindPredicate {
			return "", fmt.Errorf("%w: predicate value on kind %s", ErrInvalidOutcome, kind)
		}
		if o.Value.PredicateResult {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("%w: unknown value kind", ErrInvalidOutcome)
	}
}

// ParseOutcome parses s as the outcome string for id's kind.
func ParseOutcome(id eventpath.EventId, s string) (Outcome, error) {
	kind := id.Kind()
	switch kind.Kind {
	case eventpath.KindOccur:
		if s != "true" {
			return Outcome{}, fmt.Errorf("%w: occur outcome must be \"true\", got %q", ErrInvalidOutcome, s)
		}
		return Outcome{ID: id, Value: Occurred()}, nil
	case eventpath.KindVs:
		left, right := splitVsName(id.Name())
		switch s {
		case "draw":
			return Outcome{ID: id, Value: VsDrawValue()}, nil
		case left + "_win":
			return Outcome{ID: id, Value: VsWinnerValue(left)}, nil
		case right + "_win":
			return Outcome{ID: id, Value: VsWinnerValue(right)}, nil
		default:
			return Outcome{}, fmt.Errorf("%w: %q is not a valid vs outcome for %s", ErrInvalidOutcome, s, id)
		}
	case eventpath.KindWin:
		left, right := splitVsName(id.Name())
		switch s {
		case left + "_win":
			return Outcome{ID: id, Value: WinValue(left, true)}, nil
		case right + "_win":
			return Outcome{ID: id, Value: WinValue(right, false)}, nil
		default:
			return Outcome{}, fmt.Errorf("%w: %q is not a valid win outcome for %s", ErrInvalidOutcome, s, id)
		}
	case eventpath.KindDigits:
		n := int(kind.Digits)
		if len(s) != n {
			return Outcome{}, fmt.Errorf("%w: %q must have exactly %d digits", ErrInvalidOutcome, s, n)
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: %q: %v", ErrInvalidOutcome, s, err)
		}
		if strconv.FormatUint(v, 10) != s {
			return Outcome{}, fmt.Errorf("%w: %q is not a canonical %d-digit value", ErrInvalidOutcome, s, n)
		}
		return Outcome{ID: id, Value: DigitsValue(v)}, nil
	case eventpath.KindPredicate:
		switch s {
		case "true":
			return Outcome{ID: id, Value: PredicateValue(true)}, nil
		case "false":
			return Outcome{ID: id, Value: PredicateValue(false)}, nil
		default:
			return Outcome{}, fmt.Errorf("%w: predicate outcome must be \"true\" or \"false\", got %q", ErrInvalidOutcome, s)
		}
	default:
		return Outcome{}, fmt.Errorf("%w: unsupported kind %s", ErrInvalidOutcome, kind)
	}
}

// Fragment is one (outcome, index) pair with its own nonce and
// attestation scalar. Non-digit events have exactly one fragment;
// digit events have one fragment per digit.
type Fragment struct {
	Index             int
	Value             string // the fragment's own value text: full outcome string, or one digit character
	AttestationString string // the exact bytes whose Schnorr "s" becomes the attestation scalar
}

// Fragments decomposes the outcome into its per-nonce fragments.
func (o Outcome) Fragments() ([]Fragment, error) {
	outcomeStr, err := o.String()
	if err != nil {
		return nil, err
	}
	n := o.ID.NNonces()
	frags := make([]Fragment, n)
	if o.ID.Kind().Kind == eventpath.KindDigits {
		if len(outcomeStr) != n {
			return nil, fmt.Errorf("%w: outcome %q has %d characters, want %d", ErrInvalidOutcome, outcomeStr, len(outcomeStr), n)
		}
		for i := 0; i < n; i++ {
			digit := string(outcomeStr[i])
			frags[i] = Fragment{
				Index:             i,
				Value:             digit,
				AttestationString: fmt.Sprintf("%s.%d=%s", o.ID.String(), i, digit),
			}
		}
		return frags, nil
	}
	frags[0] = Fragment{
		Index:             0,
		Value:             outcomeStr,
		AttestationString: fmt.Sprintf("%s=%s", o.ID.String(), outcomeStr),
	}
	return frags, nil
}
