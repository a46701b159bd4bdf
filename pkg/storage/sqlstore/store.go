// Copyright 2025 Certen Protocol
//

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/group"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
	"github.com/oliviaoracle/olivia/pkg/storage"
)

// Store aggregates the per-concern repositories behind the storage
// contract.
type Store struct {
	client *Client
	events *eventRepository
	nodes  *nodeRepository
	keys   *keyRepository
}

var _ storage.Store = (*Store)(nil)

// NewStore builds a Store over an already-connected Client.
func NewStore(client *Client) *Store {
	return &Store{
		client: client,
		events: &eventRepository{db: client.db},
		nodes:  &nodeRepository{db: client.db},
		keys:   &keyRepository{db: client.db},
	}
}

func (s *Store) GetAnnouncedEvent(ctx context.Context, id eventpath.EventId) (oracleevent.AnnouncedEvent, bool, error) {
	return s.events.get(ctx, id)
}

func (s *Store) InsertEvent(ctx context.Context, event oracleevent.AnnouncedEvent) error {
	tx, err := s.client.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.events.insert(ctx, tx, event); err != nil {
		return err
	}
	if err := s.nodes.ensureAncestors(ctx, tx, event.Event.ID.Path()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) CompleteEvent(ctx context.Context, id eventpath.EventId, attestation oracleevent.Attestation) error {
	return s.events.complete(ctx, id, attestation)
}

func (s *Store) SetNode(ctx context.Context, path eventpath.Path, kind oracleevent.NodeKind) error {
	return s.nodes.setNode(ctx, path, kind)
}

func (s *Store) GetNode(ctx context.Context, path eventpath.Path) (oracleevent.PathNode, bool, error) {
	return s.nodes.getNode(ctx, path)
}

func (s *Store) SetPublicKeys(ctx context.Context, key [group.XOnlySize]byte) error {
	return s.keys.set(ctx, key)
}

func (s *Store) GetPublicKeys(ctx context.Context) ([group.XOnlySize]byte, bool, error) {
	return s.keys.get(ctx)
}

func (s *Store) QueryEvent(ctx context.Context, q storage.EventQuery) (oracleevent.Event, bool, error) {
	events, err := s.QueryEvents(ctx, q)
	if err != nil || len(events) == 0 {
		return oracleevent.Event{}, false, err
	}
	return events[0], true, nil
}

// QueryEvents scans all rows under the path prefix (an LTREE ancestor
// query in the real schema would avoid the scan; see the nominal
// schema note) and applies the remaining filters and ordering in Go.
func (s *Store) QueryEvents(ctx context.Context, q storage.EventQuery) ([]oracleevent.Event, error) {
	var rows *sql.Rows
	var err error
	if q.Path == nil || q.Path.IsRoot() {
		rows, err = s.client.db.QueryContext(ctx, `
			SELECT id, expected_outcome_time, ann_oracle_event, ann_signature,
			       att_outcome, att_olivia_v1_scalars, att_ecdsa_v1_signature, att_time
			FROM event`)
	} else {
		pathPrefix := q.Path.String()
		rows, err = s.client.db.QueryContext(ctx, `
			SELECT id, expected_outcome_time, ann_oracle_event, ann_signature,
			       att_outcome, att_olivia_v1_scalars, att_ecdsa_v1_signature, att_time
			FROM event
			WHERE path = $1 OR path LIKE $1 || '/%'`, pathPrefix)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: query events: %w", err)
	}
	defer rows.Close()

	var matched []oracleevent.AnnouncedEvent
	for rows.Next() {
		ev, ok, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if !ev.Event.ID.Path().EndsWith(q.EndsWith) {
			continue
		}
		if q.Attested != nil && ev.IsAttested() != *q.Attested {
			continue
		}
		if q.Kind != nil && ev.Event.ID.Kind().String() != q.Kind.String() {
			continue
		}
		matched = append(matched, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: query events: %w", err)
	}

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := matched[i].Event.ExpectedOutcomeTime, matched[j].Event.ExpectedOutcomeTime
		switch {
		case ti == nil || tj == nil:
			return tj == nil && ti != nil
		case q.Order == storage.Latest:
			return ti.After(*tj)
		default:
			return ti.Before(*tj)
		}
	})

	out := make([]oracleevent.Event, len(matched))
	for i, ev := range matched {
		out[i] = ev.Event
	}
	return out, nil
}
