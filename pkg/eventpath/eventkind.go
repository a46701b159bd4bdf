// Copyright 2025 Certen Protocol
//

package eventpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the admissible EventKind variants.
type Kind int

const (
	// KindOccur is a single-occurrence event ("occur"): its only
	// outcome is "true", attested once the event has occurred.
	KindOccur Kind = iota
	// KindWin is a versus-match with no draw ("win"): exactly one of
	// two named sides wins.
	KindWin
	// KindVs is a versus-match allowing a draw ("vs").
	KindVs
	// KindDigits is an n-digit decimal value ("digits_n").
	KindDigits
	// KindPredicate is a derived true/false event over an inner kind.
	KindPredicate
)

// ErrInvalidKind is returned when a kind string fails to parse.
var ErrInvalidKind = errors.New("eventpath: invalid event kind")

// EventKind is the parsed form of the suffix after the last '.' in an
// EventId, e.g. "occur", "vs", "digits_6", or a predicate over an inner
// kind.
type EventKind struct {
	Kind    Kind
	Digits  uint8  // valid when Kind == KindDigits
	Inner   *EventKind
	EqValue string // valid when Kind == KindPredicate
}

// Occur constructs a single-occurrence kind.
func Occur() EventKind { return EventKind{Kind: KindOccur} }

// Win constructs a no-draw versus-match kind.
func Win() EventKind { return EventKind{Kind: KindWin} }

// Vs constructs a draw-permitting versus-match kind.
func Vs() EventKind { return EventKind{Kind: KindVs} }

// Digits constructs an n-digit kind. n must be in [1,255].
func Digits(n uint8) (EventKind, error) {
	if n == 0 {
		return EventKind{}, fmt.Errorf("%w: digits_0 is not permitted", ErrInvalidKind)
	}
	return EventKind{Kind: KindDigits, Digits: n}, nil
}

// Predicate constructs a derived equality predicate over inner.
func Predicate(inner EventKind, eqValue string) EventKind {
	cp := inner
	return EventKind{Kind: KindPredicate, Inner: &cp, EqValue: eqValue}
}

// ParseEventKind parses the textual kind suffix.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "occur":
		return Occur(), nil
	case "win":
		return Win(), nil
	case "vs":
		return Vs(), nil
	}
	if rest, ok := strings.CutPrefix(s, "digits_"); ok {
		n, err := strconv.ParseUint(rest, 10, 8)
		if err != nil || n == 0 {
			return EventKind{}, fmt.Errorf("%w: %q: bad digit count", ErrInvalidKind, s)
		}
		return Digits(uint8(n))
	}
	if rest, ok := strings.CutPrefix(s, "predicate:"); ok {
		// "predicate:<inner-kind>:eq:<value>"
		fields := strings.SplitN(rest, ":eq:", 2)
		if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
			return EventKind{}, fmt.Errorf("%w: %q: malformed predicate", ErrInvalidKind, s)
		}
		inner, err := ParseEventKind(fields[0])
		if err != nil {
			return EventKind{}, fmt.Errorf("%w: %q: bad inner kind: %v", ErrInvalidKind, s, err)
		}
		return Predicate(inner, fields[1]), nil
	}
	return EventKind{}, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// String renders the kind back to its textual suffix form.
func (k EventKind) String() string {
	switch k.Kind {
	case KindOccur:
		return "occur"
	case KindWin:
		return "win"
	case KindVs:
		return "vs"
	case KindDigits:
		return fmt.Sprintf("digits_%d", k.Digits)
	case KindPredicate:
		return fmt.Sprintf("predicate:%s:eq:%s", k.Inner.String(), k.EqValue)
	default:
		return "unknown"
	}
}

// NNonces returns the number of nonces an event of this kind requires:
// Digits(n) needs n, every other kind needs exactly 1.
func (k EventKind) NNonces() int {
	if k.Kind == KindDigits {
		return int(k.Digits)
	}
	return 1
}

// NOutcomesForNonce returns how many distinct outcomes nonce i admits.
func (k EventKind) NOutcomesForNonce(i int) (int, error) {
	if i < 0 || i >= k.NNonces() {
		return 0, fmt.Errorf("eventpath: nonce index %d out of range for %s", i, k)
	}
	switch k.Kind {
	case KindOccur:
		return 1, nil
	case KindVs:
		return 3, nil // left_win, right_win, draw
	case KindWin:
		return 2, nil
	case KindDigits:
		return 10, nil // per nonce
	case KindPredicate:
		return 2, nil // true, false
	default:
		return 0, fmt.Errorf("eventpath: unknown kind %v", k.Kind)
	}
}
