// Copyright 2025 Certen Protocol
//

package eventpath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEventId is returned when a path does not qualify as an
// EventId: missing kind suffix, bad vs/win naming, or bad digit count.
var ErrInvalidEventId = errors.New("eventpath: invalid event id")

// EventId is a Path whose last segment splits into a name and a parsable
// EventKind on the last '.'.
type EventId struct {
	stripped Path // parent segments + bare name, no kind suffix
	name     string
	kind     EventKind
}

// ParseEventId parses s as an absolute path ending in "name.kind".
func ParseEventId(s string) (EventId, error) {
	p, err := ParsePath(s)
	if err != nil {
		return EventId{}, err
	}
	stripped, kindStr, ok := p.StripEvent()
	if !ok {
		return EventId{}, fmt.Errorf("%w: %q: last segment has no kind suffix", ErrInvalidEventId, s)
	}
	kind, err := ParseEventKind(kindStr)
	if err != nil {
		return EventId{}, fmt.Errorf("%w: %q: %v", ErrInvalidEventId, s, err)
	}
	name, err := stripped.Last()
	if err != nil {
		return EventId{}, fmt.Errorf("%w: %q: no name segment", ErrInvalidEventId, s)
	}
	if kind.Kind == KindVs || kind.Kind == KindWin {
		if err := validateVsName(name); err != nil {
			return EventId{}, fmt.Errorf("%w: %q: %v", ErrInvalidEventId, s, err)
		}
	}
	return EventId{stripped: stripped, name: name, kind: kind}, nil
}

func validateVsName(name string) error {
	parts := strings.Split(name, "_")
	if len(parts) != 2 {
		return fmt.Errorf("name %q must be LEFT_RIGHT", name)
	}
	left, right := parts[0], parts[1]
	if left == "" || right == "" {
		return fmt.Errorf("name %q: empty side", name)
	}
	if left == right {
		return fmt.Errorf("name %q: left and right must differ", name)
	}
	return nil
}

// Name returns the event's bare name segment (kind suffix stripped).
func (e EventId) Name() string { return e.name }

// Kind returns the event's kind.
func (e EventId) Kind() EventKind { return e.kind }

// ParentPath returns the path of the node this event lives under.
func (e EventId) ParentPath() (Path, error) {
	return e.stripped.Parent()
}

// Path returns the event's path component with the bare name as its
// final segment (kind suffix removed) — the tree location the event is
// filed under.
func (e EventId) Path() Path {
	return e.stripped
}

// NNonces delegates to the event's kind.
func (e EventId) NNonces() int { return e.kind.NNonces() }

// NOutcomesForNonce delegates to the event's kind.
func (e EventId) NOutcomesForNonce(i int) (int, error) { return e.kind.NOutcomesForNonce(i) }

// String renders the canonical "/path/to/name.kind" form.
func (e EventId) String() string {
	return e.stripped.String() + "." + e.kind.String()
}

// ReplaceKind returns a copy of e with its kind suffix replaced; the
// path and name are unchanged.
func (e EventId) ReplaceKind(k EventKind) EventId {
	return EventId{stripped: e.stripped, name: e.name, kind: k}
}

// PrefixPath prepends prefix to e's path component, preserving the kind
// suffix.
func (e EventId) PrefixPath(prefix Path) EventId {
	return EventId{stripped: e.stripped.PrefixPath(prefix), name: e.name, kind: e.kind}
}

// StripPrefixPath removes prefix from e's path component, preserving the
// kind suffix. Reports false if prefix is not actually a prefix.
func (e EventId) StripPrefixPath(prefix Path) (EventId, bool) {
	stripped, ok := e.stripped.StripPrefixPath(prefix)
	if !ok {
		return EventId{}, false
	}
	return EventId{stripped: stripped, name: e.name, kind: e.kind}, true
}

// MarshalText implements encoding.TextMarshaler.
func (e EventId) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EventId) UnmarshalText(text []byte) error {
	parsed, err := ParseEventId(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
