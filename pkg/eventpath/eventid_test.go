package eventpath

import "testing"

func TestParseEventIdRoundTrip(t *testing.T) {
	cases := []string{
		"/foo/bar/baz.occur",
		"/EPL/match/2021-08-13/BRE_ARS.vs",
		"/EPL/match/2021-08-13/BRE_ARS.win",
		"/price/BTCUSD.digits_6",
	}
	for _, s := range cases {
		id, err := ParseEventId(s)
		if err != nil {
			t.Fatalf("ParseEventId(%q): %v", s, err)
		}
		if got := id.String(); got != s {
			t.Errorf("ParseEventId(%q).String() = %q, want %q", s, got, s)
		}
	}
}

func TestParseEventIdVsNameValidation(t *testing.T) {
	bad := []string{
		"/m/ARS_ARS.vs", // left == right
		"/m/ARSvs.vs",   // no underscore
		"/m/_ARS.vs",    // empty left
	}
	for _, s := range bad {
		if _, err := ParseEventId(s); err == nil {
			t.Errorf("ParseEventId(%q): expected error", s)
		}
	}
}

func TestParseEventIdDigitsBounds(t *testing.T) {
	if _, err := ParseEventId("/x.digits_0"); err == nil {
		t.Errorf("digits_0: expected error")
	}
	id, err := ParseEventId("/x.digits_6")
	if err != nil {
		t.Fatalf("digits_6: %v", err)
	}
	if n := id.NNonces(); n != 6 {
		t.Errorf("NNonces() = %d, want 6", n)
	}
}

func TestEventIdNOutcomesForNonce(t *testing.T) {
	cases := []struct {
		id   string
		want int
	}{
		{"/x.occur", 1},
		{"/m/A_B.win", 2},
		{"/m/A_B.vs", 3},
		{"/x.digits_3", 10},
	}
	for _, c := range cases {
		id, err := ParseEventId(c.id)
		if err != nil {
			t.Fatalf("ParseEventId(%q): %v", c.id, err)
		}
		got, err := id.NOutcomesForNonce(0)
		if err != nil {
			t.Fatalf("NOutcomesForNonce(0): %v", err)
		}
		if got != c.want {
			t.Errorf("%s: NOutcomesForNonce(0) = %d, want %d", c.id, got, c.want)
		}
	}
}

func TestEventIdReplaceKindAndPrefix(t *testing.T) {
	id, err := ParseEventId("/foo/bar.occur")
	if err != nil {
		t.Fatalf("ParseEventId: %v", err)
	}
	replaced := id.ReplaceKind(Vs())
	if replaced.String() != "/foo/bar.vs" {
		t.Errorf("ReplaceKind: got %q, want /foo/bar.vs", replaced.String())
	}

	prefix, _ := ParsePath("/base")
	prefixed := id.PrefixPath(prefix)
	if got := prefixed.String(); got != "/base/foo/bar.occur" {
		t.Errorf("PrefixPath: got %q, want /base/foo/bar.occur", got)
	}
	back, ok := prefixed.StripPrefixPath(prefix)
	if !ok || back.String() != id.String() {
		t.Errorf("StripPrefixPath: got %q, %v; want %q, true", back.String(), ok, id.String())
	}
}
