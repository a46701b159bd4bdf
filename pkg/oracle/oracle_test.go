package oracle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/keychain"
	"github.com/oliviaoracle/olivia/pkg/oracle"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
	"github.com/oliviaoracle/olivia/pkg/outcomepkg"
	"github.com/oliviaoracle/olivia/pkg/seed"
	"github.com/oliviaoracle/olivia/pkg/storage/memstore"
)

func testSeed(t *testing.T) seed.Seed {
	t.Helper()
	var raw [64]byte
	for i := range raw {
		raw[i] = 0x2a
	}
	s, err := seed.FromBytes(raw[:])
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	return s
}

func mustEventId(t *testing.T, s string) eventpath.EventId {
	t.Helper()
	id, err := eventpath.ParseEventId(s)
	if err != nil {
		t.Fatalf("ParseEventId(%q): %v", s, err)
	}
	return id
}

func newTestOracle(t *testing.T) *oracle.Oracle {
	t.Helper()
	kc, err := keychain.New(testSeed(t))
	if err != nil {
		t.Fatalf("keychain.New: %v", err)
	}
	store := memstore.New()
	o, err := oracle.New(context.Background(), store, kc)
	if err != nil {
		t.Fatalf("oracle.New: %v", err)
	}
	return o
}

func TestNewPinsAndVerifiesPublicKeys(t *testing.T) {
	ctx := context.Background()
	kc, err := keychain.New(testSeed(t))
	if err != nil {
		t.Fatalf("keychain.New: %v", err)
	}
	store := memstore.New()

	if _, err := oracle.New(ctx, store, kc); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := oracle.New(ctx, store, kc); err != nil {
		t.Fatalf("second New (same seed): %v", err)
	}

	otherSeedBytes := make([]byte, 64)
	for i := range otherSeedBytes {
		otherSeedBytes[i] = 0x7b
	}
	otherSeed, err := seed.FromBytes(otherSeedBytes)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	otherKC, err := keychain.New(otherSeed)
	if err != nil {
		t.Fatalf("keychain.New: %v", err)
	}
	if _, err := oracle.New(ctx, store, otherKC); !errors.Is(err, oracle.ErrKeyMismatch) {
		t.Fatalf("New with mismatched seed: got %v, want ErrKeyMismatch", err)
	}
}

func TestAddEventThenAddEventAgainIsAlreadyExists(t *testing.T) {
	ctx := context.Background()
	o := newTestOracle(t)
	id := mustEventId(t, "/sports/foo.occur")
	event := oracleevent.Event{ID: id}

	if err := o.AddEvent(ctx, event); err != nil {
		t.Fatalf("first AddEvent: %v", err)
	}
	if err := o.AddEvent(ctx, event); !errors.Is(err, oracle.ErrAlreadyExists) {
		t.Fatalf("second AddEvent: got %v, want ErrAlreadyExists", err)
	}
}

func TestCompleteEventThenAddEventIsAlreadyCompleted(t *testing.T) {
	ctx := context.Background()
	o := newTestOracle(t)
	id := mustEventId(t, "/sports/foo.occur")
	event := oracleevent.Event{ID: id}

	if err := o.AddEvent(ctx, event); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	outcome, err := outcomepkg.ParseOutcome(id, "true")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	stamped := outcomepkg.NewStampedOutcome(outcome, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC))
	if err := o.CompleteEvent(ctx, stamped); err != nil {
		t.Fatalf("CompleteEvent: %v", err)
	}

	if err := o.AddEvent(ctx, event); !errors.Is(err, oracle.ErrAlreadyCompleted) {
		t.Fatalf("AddEvent after completion: got %v, want ErrAlreadyCompleted", err)
	}
}

func TestCompleteEventWithoutAnnouncementIsEventNotExist(t *testing.T) {
	ctx := context.Background()
	o := newTestOracle(t)
	id := mustEventId(t, "/sports/foo.occur")
	outcome, err := outcomepkg.ParseOutcome(id, "true")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	stamped := outcomepkg.NewStampedOutcome(outcome, time.Now())

	if err := o.CompleteEvent(ctx, stamped); !errors.Is(err, oracle.ErrEventNotExist) {
		t.Fatalf("CompleteEvent: got %v, want ErrEventNotExist", err)
	}
}

func TestCompleteEventTwiceSameOutcomeIsAlreadyCompleted(t *testing.T) {
	ctx := context.Background()
	o := newTestOracle(t)
	id := mustEventId(t, "/sports/foo.occur")
	if err := o.AddEvent(ctx, oracleevent.Event{ID: id}); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	outcome, err := outcomepkg.ParseOutcome(id, "true")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	stamped := outcomepkg.NewStampedOutcome(outcome, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC))
	if err := o.CompleteEvent(ctx, stamped); err != nil {
		t.Fatalf("first CompleteEvent: %v", err)
	}
	if err := o.CompleteEvent(ctx, stamped); !errors.Is(err, oracle.ErrAlreadyCompleted) {
		t.Fatalf("second CompleteEvent: got %v, want ErrAlreadyCompleted", err)
	}
}

func TestCompleteEventChangedOutcomeNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	o := newTestOracle(t)
	id := mustEventId(t, "/sports/LEFT_RIGHT.vs")
	if err := o.AddEvent(ctx, oracleevent.Event{ID: id}); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	first, err := outcomepkg.ParseOutcome(id, "LEFT_win")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	stampedFirst := outcomepkg.NewStampedOutcome(first, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC))
	if err := o.CompleteEvent(ctx, stampedFirst); err != nil {
		t.Fatalf("first CompleteEvent: %v", err)
	}

	second, err := outcomepkg.ParseOutcome(id, "draw")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	stampedSecond := outcomepkg.NewStampedOutcome(second, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC))
	err = o.CompleteEvent(ctx, stampedSecond)
	var changed *oracle.OutcomeChangedError
	if !errors.As(err, &changed) {
		t.Fatalf("second CompleteEvent: got %v, want *OutcomeChangedError", err)
	}
	if changed.Existing != "LEFT_win" || changed.New != "draw" {
		t.Fatalf("OutcomeChangedError = %+v, want existing=LEFT_win new=draw", changed)
	}
}

func TestCompleteRelatedResolvesPredicateSibling(t *testing.T) {
	ctx := context.Background()
	o := newTestOracle(t)

	innerID := mustEventId(t, "/sports/LEFT_RIGHT.vs")
	predicateKind := eventpath.Predicate(eventpath.Vs(), "LEFT_win")
	predicateID := innerID.ReplaceKind(predicateKind)

	if err := o.AddEvent(ctx, oracleevent.Event{ID: innerID}); err != nil {
		t.Fatalf("AddEvent(inner): %v", err)
	}
	if err := o.AddEvent(ctx, oracleevent.Event{ID: predicateID}); err != nil {
		t.Fatalf("AddEvent(predicate): %v", err)
	}

	outcome, err := outcomepkg.ParseOutcome(innerID, "LEFT_win")
	if err != nil {
		t.Fatalf("ParseOutcome: %v", err)
	}
	when := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	stamped := outcomepkg.NewStampedOutcome(outcome, when)
	if err := o.CompleteEvent(ctx, stamped); err != nil {
		t.Fatalf("CompleteEvent(inner): %v", err)
	}
	if err := o.CompleteRelated(ctx, stamped); err != nil {
		t.Fatalf("CompleteRelated: %v", err)
	}

	predicateOutcome, err := outcomepkg.ParseOutcome(predicateID, "true")
	if err != nil {
		t.Fatalf("ParseOutcome(predicate): %v", err)
	}
	predicateAgain := outcomepkg.NewStampedOutcome(predicateOutcome, when)
	if err := o.CompleteEvent(ctx, predicateAgain); !errors.Is(err, oracle.ErrAlreadyCompleted) {
		t.Fatalf("predicate event after CompleteRelated: got %v, want ErrAlreadyCompleted (resolved to true)", err)
	}
}
