package eventpath

import "testing"

func TestParsePathRoundTrip(t *testing.T) {
	cases := []string{
		"/",
		"/foo",
		"/foo/bar/baz",
		"/EPL/match/2021-08-13/BRE_ARS.vs",
		"/price/BTCUSD.digits_6",
	}
	for _, s := range cases {
		p, err := ParsePath(s)
		if err != nil {
			t.Fatalf("ParsePath(%q): %v", s, err)
		}
		if got := p.String(); got != s {
			t.Errorf("ParsePath(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParsePathRejects(t *testing.T) {
	cases := []string{"", "foo", "/foo/", "/foo//bar", "/foo bar"}
	for _, s := range cases {
		if _, err := ParsePath(s); err == nil {
			t.Errorf("ParsePath(%q): expected error, got nil", s)
		}
	}
}

func TestPathParentLastSegment(t *testing.T) {
	p, err := ParsePath("/a/b/c")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if last, err := p.Last(); err != nil || last != "c" {
		t.Errorf("Last() = %q, %v; want c, nil", last, err)
	}
	parent, err := p.Parent()
	if err != nil {
		t.Fatalf("Parent(): %v", err)
	}
	if got := parent.String(); got != "/a/b" {
		t.Errorf("Parent().String() = %q, want /a/b", got)
	}
	if _, err := Root().Parent(); err == nil {
		t.Errorf("Root().Parent(): expected error")
	}
}

func TestStripEvent(t *testing.T) {
	p, err := ParsePath("/foo/bar/baz.occur")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	stripped, kindStr, ok := p.StripEvent()
	if !ok {
		t.Fatalf("StripEvent: not ok")
	}
	if got := stripped.String(); got != "/foo/bar/baz" {
		t.Errorf("stripped = %q, want /foo/bar/baz", got)
	}
	if kindStr != "occur" {
		t.Errorf("kindStr = %q, want occur", kindStr)
	}

	node, err := ParsePath("/foo/bar")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if _, _, ok := node.StripEvent(); ok {
		t.Errorf("StripEvent on node path: expected not ok")
	}
}

func TestPrefixAndStripPrefixPath(t *testing.T) {
	prefix, _ := ParsePath("/base")
	p, _ := ParsePath("/foo/bar")

	prefixed := p.PrefixPath(prefix)
	if got := prefixed.String(); got != "/base/foo/bar" {
		t.Errorf("PrefixPath = %q, want /base/foo/bar", got)
	}

	stripped, ok := prefixed.StripPrefixPath(prefix)
	if !ok {
		t.Fatalf("StripPrefixPath: not ok")
	}
	if got := stripped.String(); got != "/foo/bar" {
		t.Errorf("StripPrefixPath = %q, want /foo/bar", got)
	}

	if _, ok := p.StripPrefixPath(prefix); ok {
		t.Errorf("StripPrefixPath: expected not ok when prefix absent")
	}
}

func TestEndsWith(t *testing.T) {
	p, _ := ParsePath("/a/b/c")
	suffix, _ := ParsePath("/b/c")
	if !p.EndsWith(suffix) {
		t.Errorf("EndsWith: expected true")
	}
	if !p.EndsWith(Root()) {
		t.Errorf("EndsWith(Root()): expected true (root matches anything)")
	}
	other, _ := ParsePath("/x/c")
	if p.EndsWith(other) {
		t.Errorf("EndsWith: expected false")
	}
}
