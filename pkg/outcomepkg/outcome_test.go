package outcomepkg

import (
	"encoding/json"
	"testing"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
)

func mustID(t *testing.T, s string) eventpath.EventId {
	t.Helper()
	id, err := eventpath.ParseEventId(s)
	if err != nil {
		t.Fatalf("ParseEventId(%q): %v", s, err)
	}
	return id
}

func TestOutcomeStringOccur(t *testing.T) {
	id := mustID(t, "/foo/bar/baz.occur")
	o := Outcome{ID: id, Value: Occurred()}
	got, err := o.String()
	if err != nil {
		t.Fatalf("String(): %v", err)
	}
	if got != "true" {
		t.Errorf("String() = %q, want true", got)
	}
}

func TestOutcomeStringVs(t *testing.T) {
	id := mustID(t, "/EPL/match/2021-08-13/BRE_ARS.vs")
	o, err := ParseOutcome(id, "ARS_win")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	got, err := o.String()
	if err != nil {
		t.Fatalf("String(): %v", err)
	}
	if got != "ARS_win" {
		t.Errorf("String() = %q, want ARS_win", got)
	}

	draw, err := ParseOutcome(id, "draw")
	if err != nil {
		t.Fatalf("ParseOutcome(draw): %v", err)
	}
	if s, _ := draw.String(); s != "draw" {
		t.Errorf("draw String() = %q, want draw", s)
	}
}

func TestOutcomeStringDigitsExactLength(t *testing.T) {
	id := mustID(t, "/price/BTCUSD.digits_6")
	o := Outcome{ID: id, Value: DigitsValue(123456)}
	got, err := o.String()
	if err != nil {
		t.Fatalf("String(): %v", err)
	}
	if got != "123456" {
		t.Errorf("String() = %q, want 123456", got)
	}
}

func TestOutcomeStringDigitsRejectsShortValue(t *testing.T) {
	id := mustID(t, "/price/BTCUSD.digits_6")
	o := Outcome{ID: id, Value: DigitsValue(42)}
	if _, err := o.String(); err == nil {
		t.Errorf("String(): expected error for value not spanning all 6 digits")
	}
}

func TestParseOutcomeDigitsRejectsLeadingZeros(t *testing.T) {
	id := mustID(t, "/price/BTCUSD.digits_6")
	if _, err := ParseOutcome(id, "000042"); err == nil {
		t.Errorf("ParseOutcome: expected error for non-canonical leading-zero value")
	}
}

func TestOutcomeFragmentsDigits(t *testing.T) {
	id := mustID(t, "/price/BTCUSD.digits_6")
	o, err := ParseOutcome(id, "123456")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	frags, err := o.Fragments()
	if err != nil {
		t.Fatalf("Fragments(): %v", err)
	}
	if len(frags) != 6 {
		t.Fatalf("len(frags) = %d, want 6", len(frags))
	}
	want := []string{"1", "2", "3", "4", "5", "6"}
	for i, f := range frags {
		if f.Value != want[i] {
			t.Errorf("frags[%d].Value = %q, want %q", i, f.Value, want[i])
		}
		wantStr := "/price/BTCUSD.digits_6." + itoa(i) + "=" + want[i]
		if f.AttestationString != wantStr {
			t.Errorf("frags[%d].AttestationString = %q, want %q", i, f.AttestationString, wantStr)
		}
	}
}

func TestOutcomeFragmentsSingle(t *testing.T) {
	id := mustID(t, "/foo/bar/baz.occur")
	o := Outcome{ID: id, Value: Occurred()}
	frags, err := o.Fragments()
	if err != nil {
		t.Fatalf("Fragments(): %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("len(frags) = %d, want 1", len(frags))
	}
	want := "/foo/bar/baz.occur=true"
	if frags[0].AttestationString != want {
		t.Errorf("AttestationString = %q, want %q", frags[0].AttestationString, want)
	}
}

func TestDescriptorForEventIdRoundTrip(t *testing.T) {
	id := mustID(t, "/EPL/match/2021-08-13/BRE_ARS.vs")
	d, err := DescriptorForEventId(id)
	if err != nil {
		t.Fatalf("DescriptorForEventId: %v", err)
	}
	want := []string{"BRE_win", "ARS_win", "draw"}
	if len(d.Outcomes) != len(want) {
		t.Fatalf("Outcomes = %v, want %v", d.Outcomes, want)
	}
	for i := range want {
		if d.Outcomes[i] != want[i] {
			t.Errorf("Outcomes[%d] = %q, want %q", i, d.Outcomes[i], want[i])
		}
	}
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	var back Descriptor
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip = %+v, want %+v", back, d)
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}
