// Copyright 2025 Certen Protocol
//
// Package oracle implements the event lifecycle state machine:
// announcing events (minting nonces and a signed announcement) and
// attesting them (revealing the outcome's scalars), enforcing the
// absent -> announced -> attested state machine against a storage
// contract handle.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/keychain"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
	"github.com/oliviaoracle/olivia/pkg/outcomepkg"
	"github.com/oliviaoracle/olivia/pkg/storage"
)

// State-machine violation sentinels, per the error taxonomy: each maps
// to one of add_event/complete_event's named outcomes.
var (
	// ErrAlreadyExists is returned by AddEvent when the event is
	// already announced (and not yet attested).
	ErrAlreadyExists = errors.New("oracle: event already exists")
	// ErrAlreadyCompleted is returned by AddEvent when the event is
	// already attested, and by CompleteEvent when the new outcome
	// string matches the existing attestation.
	ErrAlreadyCompleted = errors.New("oracle: event already completed")
	// ErrEventNotExist is returned by CompleteEvent when there is no
	// stored announcement for the id.
	ErrEventNotExist = errors.New("oracle: event does not exist")
	// ErrAnnouncementWasBogus is returned by CompleteEvent when the
	// stored announcement fails to re-verify against the id and the
	// keychain's announcement key.
	ErrAnnouncementWasBogus = errors.New("oracle: stored announcement failed re-verification")
	// ErrKeyMismatch is returned by New when the seed-derived
	// announcement key differs from the one already pinned in storage.
	ErrKeyMismatch = errors.New("oracle: seed-derived public key does not match stored key")
)

// OutcomeChangedError is returned by CompleteEvent when an event is
// already attested with a different outcome string than the one being
// applied now. The existing attestation is never overwritten.
type OutcomeChangedError struct {
	Existing string
	New      string
}

func (e *OutcomeChangedError) Error() string {
	return fmt.Sprintf("oracle: outcome changed: existing %q, new %q", e.Existing, e.New)
}

// Oracle holds an immutable storage handle and Keychain, enforcing the
// event lifecycle state machine across them. Both fields are safe for
// concurrent use by the caller's own concurrency model (the oracle loop
// serializes access by construction; see pkg/oracleloop).
type Oracle struct {
	store    storage.Store
	keychain keychain.Keychain
	logger   *log.Logger
}

// Option configures an Oracle at construction.
type Option func(*Oracle)

// WithLogger overrides the Oracle's default component logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Oracle) { o.logger = l }
}

// New derives the oracle's public keys from kc and pins them in store:
// if store has no stored keys, they are written; if it does and they
// differ from the seed-derived keys, New fails with ErrKeyMismatch —
// the seed is wrong for this database.
func New(ctx context.Context, store storage.Store, kc keychain.Keychain, opts ...Option) (*Oracle, error) {
	o := &Oracle{
		store:    store,
		keychain: kc,
		logger:   log.New(log.Writer(), "[Oracle] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(o)
	}

	derived := kc.AnnouncementKey()
	stored, ok, err := store.GetPublicKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("oracle: read public keys: %w", err)
	}
	if !ok {
		if err := store.SetPublicKeys(ctx, derived); err != nil {
			return nil, fmt.Errorf("oracle: pin public keys: %w", err)
		}
		o.logger.Printf("pinned announcement key %x", derived[:])
		return o, nil
	}
	if stored != derived {
		o.logger.Printf("critical: seed-derived key does not match stored key")
		return nil, ErrKeyMismatch
	}
	return o, nil
}

// AddEvent announces event: if storage has no record for its id, a
// fresh announcement is created via the keychain and persisted. If the
// event is already attested, ErrAlreadyCompleted is returned; if it
// exists but is unattested, ErrAlreadyExists is returned.
func (o *Oracle) AddEvent(ctx context.Context, event oracleevent.Event) error {
	existing, ok, err := o.store.GetAnnouncedEvent(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("oracle: DbReadErr: %w", err)
	}
	if ok {
		if existing.IsAttested() {
			o.logger.Printf("debug: add_event %s: already completed", event.ID)
			return ErrAlreadyCompleted
		}
		o.logger.Printf("debug: add_event %s: already exists", event.ID)
		return ErrAlreadyExists
	}

	announcement, err := o.keychain.CreateAnnouncement(event)
	if err != nil {
		return fmt.Errorf("oracle: create announcement for %s: %w", event.ID, err)
	}
	announced := oracleevent.AnnouncedEvent{Event: event, Announcement: announcement}
	if err := o.store.InsertEvent(ctx, announced); err != nil {
		o.logger.Printf("critical: add_event %s: DbWriteErr: %v", event.ID, err)
		return fmt.Errorf("oracle: DbWriteErr: %w", err)
	}
	o.logger.Printf("announced %s", event.ID)
	return nil
}

// CompleteEvent attests stamped.Outcome.ID with the outcome and time
// carried by stamped. The stored announcement is re-verified against
// the id and the keychain's announcement key before any scheme scalars
// are computed; only schemes present in the announcement are populated
// in the resulting attestation.
func (o *Oracle) CompleteEvent(ctx context.Context, stamped outcomepkg.StampedOutcome) error {
	id := stamped.Outcome.ID
	existing, ok, err := o.store.GetAnnouncedEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("oracle: DbReadErr: %w", err)
	}
	if !ok {
		o.logger.Printf("error: complete_event %s: does not exist", id)
		return ErrEventNotExist
	}

	newOutcomeStr, err := stamped.Outcome.String()
	if err != nil {
		return fmt.Errorf("oracle: render outcome for %s: %w", id, err)
	}

	if existing.IsAttested() {
		if existing.Attestation.Outcome == newOutcomeStr {
			o.logger.Printf("debug: complete_event %s: already completed", id)
			return ErrAlreadyCompleted
		}
		o.logger.Printf("critical: complete_event %s: outcome changed %q -> %q", id, existing.Attestation.Outcome, newOutcomeStr)
		return &OutcomeChangedError{Existing: existing.Attestation.Outcome, New: newOutcomeStr}
	}

	announcementKey := o.keychain.AnnouncementKey()
	decoded, verified := existing.Announcement.VerifyAgainstID(id, announcementKey)
	if !verified {
		o.logger.Printf("error: complete_event %s: announcement was bogus", id)
		return ErrAnnouncementWasBogus
	}

	schemes, err := o.buildAttestationSchemes(decoded, stamped)
	if err != nil {
		return fmt.Errorf("oracle: build attestation schemes for %s: %w", id, err)
	}

	attestation := oracleevent.Attestation{
		Outcome: newOutcomeStr,
		Schemes: schemes,
		Time:    stamped.Time,
	}
	if err := o.store.CompleteEvent(ctx, id, attestation); err != nil {
		o.logger.Printf("critical: complete_event %s: DbWriteErr: %v", id, err)
		return fmt.Errorf("oracle: DbWriteErr: %w", err)
	}
	o.logger.Printf("attested %s", id)
	return nil
}

// buildAttestationSchemes populates exactly the schemes present in the
// announcement: olivia-v1 gets its fragment scalars from the keychain;
// ecdsa-v1 is reserved and never populated (no signer exists for it
// yet; see DESIGN.md).
func (o *Oracle) buildAttestationSchemes(decoded oracleevent.OracleEvent, stamped outcomepkg.StampedOutcome) (oracleevent.AttestationSchemes, error) {
	var schemes oracleevent.AttestationSchemes
	if decoded.Schemes.OliviaV1 != nil {
		scalars, err := o.keychain.ScalarsForOutcome(stamped)
		if err != nil {
			return oracleevent.AttestationSchemes{}, err
		}
		schemes.OliviaV1 = &oracleevent.OliviaV1Attestation{Scalars: scalars}
	}
	return schemes, nil
}

// CompleteRelated resolves predicate events derived from id: after a
// successful CompleteEvent for a non-predicate event, it looks up
// sibling events at id's parent path whose kind is Predicate{inner:
// id.Kind(), eq: v}, computes each one's boolean outcome by comparing
// the just-completed outcome string against v, and attests each via
// CompleteEvent. This never overwrites an existing attestation (the
// state machine is unchanged) and failures for one sibling do not
// prevent attempting the rest.
func (o *Oracle) CompleteRelated(ctx context.Context, completed outcomepkg.StampedOutcome) error {
	id := completed.Outcome.ID
	if id.Kind().Kind == eventpath.KindPredicate {
		return nil
	}
	completedOutcomeStr, err := completed.Outcome.String()
	if err != nil {
		return fmt.Errorf("oracle: complete_related: render outcome for %s: %w", id, err)
	}
	parent, err := id.ParentPath()
	if err != nil {
		return nil
	}

	siblings, err := o.store.QueryEvents(ctx, storage.EventQuery{Path: &parent})
	if err != nil {
		return fmt.Errorf("oracle: complete_related: query siblings of %s: %w", id, err)
	}

	var firstErr error
	for _, sibling := range siblings {
		k := sibling.ID.Kind()
		if k.Kind != eventpath.KindPredicate || k.Inner == nil {
			continue
		}
		if k.Inner.String() != id.Kind().String() {
			continue
		}
		predicateOutcome := outcomepkg.Outcome{
			ID:    sibling.ID,
			Value: outcomepkg.PredicateValue(completedOutcomeStr == k.EqValue),
		}
		stampedPredicate := outcomepkg.NewStampedOutcome(predicateOutcome, completed.Time)
		if err := o.CompleteEvent(ctx, stampedPredicate); err != nil {
			if !errors.Is(err, ErrAlreadyCompleted) && firstErr == nil {
				firstErr = fmt.Errorf("oracle: complete_related: resolve %s: %w", sibling.ID, err)
			}
		}
	}
	return firstErr
}
