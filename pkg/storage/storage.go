// Copyright 2025 Certen Protocol
//
// Package storage defines the contract every Olivia persistence backend
// implements: inserting and completing events, querying them by path and
// time, recording node kinds, and holding the oracle's pinned public
// keys. See pkg/storage/memstore and pkg/storage/sqlstore for the two
// reference implementations.
package storage

import (
	"context"
	"errors"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/group"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
)

// Sentinel errors distinguishing "not found" (reported via the ok bool
// on lookups, never an error) from genuine backend failures. A missing
// row is never a (nil, nil) or bare error — callers get an explicit
// signal either way.
var (
	// ErrAlreadyExists is returned by InsertEvent when id is already
	// present.
	ErrAlreadyExists = errors.New("storage: event already exists")
	// ErrEventNotExist is returned by CompleteEvent when id has no
	// stored announcement.
	ErrEventNotExist = errors.New("storage: event does not exist")
	// ErrUnknownOrder names an EventQuery with an unrecognized Order
	// value. Neither backend returns it: both sort any Order other
	// than Latest as Earliest.
	ErrUnknownOrder = errors.New("storage: unknown query order")
)

// Order controls query_event(s) result ordering by expected outcome
// time.
type Order int

const (
	// Earliest orders by expected_outcome_time ascending.
	Earliest Order = iota
	// Latest orders by expected_outcome_time descending.
	Latest
)

// EventQuery filters and orders the events returned by QueryEvent /
// QueryEvents.
type EventQuery struct {
	// Path, if set, is an ancestor filter: only events whose id lives
	// under this path are considered.
	Path *eventpath.Path
	// Attested, if set, filters on attestation presence.
	Attested *bool
	// Order controls result ordering.
	Order Order
	// EndsWith filters to events whose path ends with this suffix; the
	// root path matches anything.
	EndsWith eventpath.Path
	// Kind, if set, filters on the event-kind suffix.
	Kind *eventpath.EventKind
}

// Store is the storage contract every backend implements. All
// operations are fallible; a missing row is reported via the returned
// bool, never conflated with an error.
type Store interface {
	// GetAnnouncedEvent looks up the full lifecycle record for id.
	GetAnnouncedEvent(ctx context.Context, id eventpath.EventId) (oracleevent.AnnouncedEvent, bool, error)

	// InsertEvent atomically persists a freshly announced event: the
	// event row, its announcement, and all missing ancestor nodes are
	// either all present after the call or none are. Returns
	// ErrAlreadyExists if id is already present.
	InsertEvent(ctx context.Context, event oracleevent.AnnouncedEvent) error

	// CompleteEvent applies attestation to id, which must currently be
	// unattested. Returns ErrEventNotExist if id has no stored
	// announcement. The caller (Oracle) guarantees it is only invoked
	// on unattested events; idempotence is not required here.
	CompleteEvent(ctx context.Context, id eventpath.EventId, attestation oracleevent.Attestation) error

	// SetNode upserts a node's kind and ensures its ancestor nodes
	// exist.
	SetNode(ctx context.Context, path eventpath.Path, kind oracleevent.NodeKind) error

	// GetNode combines the events filed directly at path with the
	// child description computed from the node's kind, capping
	// listings at 100 children.
	GetNode(ctx context.Context, path eventpath.Path) (oracleevent.PathNode, bool, error)

	// QueryEvent returns the single best match for q (by its Order).
	QueryEvent(ctx context.Context, q EventQuery) (oracleevent.Event, bool, error)

	// QueryEvents returns every event matching q, in Order.
	QueryEvents(ctx context.Context, q EventQuery) ([]oracleevent.Event, error)

	// SetPublicKeys writes the oracle's public keys. Exactly-once
	// semantics are not required at this layer: the Oracle only calls
	// this if GetPublicKeys reports absence.
	SetPublicKeys(ctx context.Context, key [group.XOnlySize]byte) error

	// GetPublicKeys reads the previously stored public keys, if any.
	GetPublicKeys(ctx context.Context) ([group.XOnlySize]byte, bool, error)
}
