// Copyright 2025 Certen Protocol
//
// Package eventpath implements Olivia's hierarchical path and event
// identifier grammar: the `/a/b/c.kind` namespace that every node, event,
// and stream update is addressed by.
package eventpath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is returned when a string does not parse as a Path.
var ErrInvalidPath = errors.New("eventpath: invalid path")

// Path is an absolute, `/`-delimited sequence of segments. The zero value
// is not a valid Path; construct one with Root or ParsePath.
type Path struct {
	segments []string
	valid    bool
}

// Root returns the singleton root path "/".
func Root() Path {
	return Path{segments: nil, valid: true}
}

func isLegalSegmentByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_', b == '-', b == ':', b == '.':
		return true
	default:
		return false
	}
}

func validSegment(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isLegalSegmentByte(s[i]) {
			return false
		}
	}
	return true
}

// ParsePath parses s, which must be "/" or "/seg(/seg)*" with no trailing
// slash and no empty segments.
func ParsePath(s string) (Path, error) {
	if s == "" || s[0] != '/' {
		return Path{}, fmt.Errorf("%w: %q: must start with /", ErrInvalidPath, s)
	}
	if s == "/" {
		return Root(), nil
	}
	if strings.HasSuffix(s, "/") {
		return Path{}, fmt.Errorf("%w: %q: trailing slash", ErrInvalidPath, s)
	}
	parts := strings.Split(s[1:], "/")
	for _, seg := range parts {
		if !validSegment(seg) {
			return Path{}, fmt.Errorf("%w: %q: illegal segment %q", ErrInvalidPath, s, seg)
		}
	}
	return Path{segments: parts, valid: true}, nil
}

// String renders the path in canonical form.
func (p Path) String() string {
	if !p.valid || len(p.segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.segments, "/")
}

// IsRoot reports whether p is the root path.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Len returns the number of segments (0 for root).
func (p Path) Len() int {
	return len(p.segments)
}

// Segment returns the i-th segment (0-indexed).
func (p Path) Segment(i int) (string, error) {
	if i < 0 || i >= len(p.segments) {
		return "", fmt.Errorf("eventpath: segment index %d out of range (len %d)", i, len(p.segments))
	}
	return p.segments[i], nil
}

// Last returns the final segment. Fails on the root path.
func (p Path) Last() (string, error) {
	if p.IsRoot() {
		return "", errors.New("eventpath: root path has no last segment")
	}
	return p.segments[len(p.segments)-1], nil
}

// Parent returns the path with its last segment removed. Fails on the
// root path.
func (p Path) Parent() (Path, error) {
	if p.IsRoot() {
		return Path{}, errors.New("eventpath: root path has no parent")
	}
	return Path{segments: append([]string(nil), p.segments[:len(p.segments)-1]...), valid: true}, nil
}

// Append returns a new path with segment appended.
func (p Path) Append(segment string) (Path, error) {
	if !validSegment(segment) {
		return Path{}, fmt.Errorf("%w: illegal segment %q", ErrInvalidPath, segment)
	}
	next := append(append([]string(nil), p.segments...), segment)
	return Path{segments: next, valid: true}, nil
}

// StripEvent succeeds iff the last segment contains a '.', splitting it
// into the path with that segment replaced by the name half, and the
// kind string from the other half.
func (p Path) StripEvent() (Path, string, bool) {
	last, err := p.Last()
	if err != nil {
		return Path{}, "", false
	}
	idx := strings.LastIndexByte(last, '.')
	if idx < 0 {
		return Path{}, "", false
	}
	name, kindStr := last[:idx], last[idx+1:]
	if name == "" || kindStr == "" {
		return Path{}, "", false
	}
	segs := append([]string(nil), p.segments[:len(p.segments)-1]...)
	segs = append(segs, name)
	return Path{segments: segs, valid: true}, kindStr, true
}

// PrefixPath returns prefix followed by p's segments.
func (p Path) PrefixPath(prefix Path) Path {
	segs := append(append([]string(nil), prefix.segments...), p.segments...)
	return Path{segments: segs, valid: true}
}

// StripPrefixPath removes prefix from the front of p, reporting false if
// p does not have prefix as a prefix.
func (p Path) StripPrefixPath(prefix Path) (Path, bool) {
	if len(prefix.segments) > len(p.segments) {
		return Path{}, false
	}
	for i, seg := range prefix.segments {
		if p.segments[i] != seg {
			return Path{}, false
		}
	}
	rest := append([]string(nil), p.segments[len(prefix.segments):]...)
	return Path{segments: rest, valid: true}, true
}

// EndsWith reports whether p's trailing segments equal suffix's segments.
// The root path is treated as matching anything, per the query_events
// "ends_with" semantics.
func (p Path) EndsWith(suffix Path) bool {
	if suffix.IsRoot() {
		return true
	}
	if len(suffix.segments) > len(p.segments) {
		return false
	}
	offset := len(p.segments) - len(suffix.segments)
	for i, seg := range suffix.segments {
		if p.segments[offset+i] != seg {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether p is an ancestor of (or equal to) other,
// the LTREE "ancestor @> path" predicate.
func (p Path) IsAncestorOf(other Path) bool {
	if len(p.segments) > len(other.segments) {
		return false
	}
	for i, seg := range p.segments {
		if other.segments[i] != seg {
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
