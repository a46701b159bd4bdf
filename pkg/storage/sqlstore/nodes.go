// Copyright 2025 Certen Protocol
//

package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
)

const maxChildListing = 100

type nodeRepository struct {
	db *sql.DB
}

func encodeKind(kind oracleevent.NodeKind) ([]byte, error) {
	return json.Marshal(kind)
}

func decodeKind(raw []byte) (oracleevent.NodeKind, error) {
	if len(raw) == 0 {
		return oracleevent.DefaultNodeKind(), nil
	}
	var kind oracleevent.NodeKind
	if err := json.Unmarshal(raw, &kind); err != nil {
		return oracleevent.NodeKind{}, err
	}
	return kind, nil
}

// ensureAncestors upserts every ancestor of path as a default-kind node,
// matching the contract's "ensures ancestor nodes exist" requirement.
func (r *nodeRepository) ensureAncestors(ctx context.Context, tx *sql.Tx, path eventpath.Path) error {
	for {
		parent, err := path.Parent()
		if err != nil {
			return nil // reached root
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tree (id, parent, kind) VALUES ($1, $2, NULL)
			ON CONFLICT (id) DO NOTHING`, parent.String(), ancestorOf(parent)); err != nil {
			return fmt.Errorf("sqlstore: ensure ancestor %s: %w", parent, err)
		}
		path = parent
	}
}

func ancestorOf(p eventpath.Path) interface{} {
	gp, err := p.Parent()
	if err != nil {
		return nil
	}
	return gp.String()
}

func (r *nodeRepository) setNode(ctx context.Context, path eventpath.Path, kind oracleevent.NodeKind) error {
	raw, err := encodeKind(kind)
	if err != nil {
		return fmt.Errorf("sqlstore: encode node kind: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tree (id, parent, kind) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET kind = EXCLUDED.kind`,
		path.String(), ancestorOf(path), raw); err != nil {
		return fmt.Errorf("sqlstore: upsert node: %w", err)
	}
	if err := r.ensureAncestors(ctx, tx, path); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *nodeRepository) getNode(ctx context.Context, path eventpath.Path) (oracleevent.PathNode, bool, error) {
	var kindRaw []byte
	err := r.db.QueryRowContext(ctx, `SELECT kind FROM tree WHERE id = $1`, path.String()).Scan(&kindRaw)
	nodeExists := true
	if errors.Is(err, sql.ErrNoRows) {
		nodeExists = false
	} else if err != nil {
		return oracleevent.PathNode{}, false, fmt.Errorf("sqlstore: get node: %w", err)
	}
	kind, err := decodeKind(kindRaw)
	if err != nil {
		return oracleevent.PathNode{}, false, fmt.Errorf("sqlstore: decode node kind: %w", err)
	}

	events, err := r.eventsAt(ctx, path)
	if err != nil {
		return oracleevent.PathNode{}, false, err
	}

	children, hasChildren, err := r.childDesc(ctx, path, kind)
	if err != nil {
		return oracleevent.PathNode{}, false, err
	}

	if !nodeExists && len(events) == 0 && !hasChildren {
		return oracleevent.PathNode{}, false, nil
	}
	return oracleevent.PathNode{Events: events, Children: children}, true, nil
}

func (r *nodeRepository) eventsAt(ctx context.Context, path eventpath.Path) ([]eventpath.EventKind, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM event WHERE path = $1`, path.String())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: events at node: %w", err)
	}
	defer rows.Close()
	var kinds []eventpath.EventKind
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, fmt.Errorf("sqlstore: scan event id: %w", err)
		}
		id, err := eventpath.ParseEventId(idStr)
		if err != nil {
			continue
		}
		kinds = append(kinds, id.Kind())
	}
	return kinds, rows.Err()
}

// childInfo tracks what's known about one direct child segment of a
// node: whether it names an event filed right there, and if so whether
// that event is attested yet.
type childInfo struct {
	hasEvent bool
	attested bool
}

func (r *nodeRepository) childDesc(ctx context.Context, path eventpath.Path, kind oracleevent.NodeKind) (oracleevent.ChildDesc, bool, error) {
	childSet := map[string]*childInfo{}
	dateGroups := map[string]map[string]struct{}{}

	nodeRows, err := r.db.QueryContext(ctx, `SELECT id FROM tree WHERE parent = $1 LIMIT $2`, path.String(), maxChildListing)
	if err != nil {
		return oracleevent.ChildDesc{}, false, fmt.Errorf("sqlstore: child nodes: %w", err)
	}
	defer nodeRows.Close()
	for nodeRows.Next() {
		var idStr string
		if err := nodeRows.Scan(&idStr); err != nil {
			return oracleevent.ChildDesc{}, false, fmt.Errorf("sqlstore: scan child id: %w", err)
		}
		childPath, err := eventpath.ParsePath(idStr)
		if err != nil {
			continue
		}
		rest, ok := childPath.StripPrefixPath(path)
		if !ok || rest.Len() == 0 {
			continue
		}
		seg0, _ := rest.Segment(0)
		if childSet[seg0] == nil {
			childSet[seg0] = &childInfo{}
		}
		addDateGroup(dateGroups, rest, seg0)
	}
	if err := nodeRows.Err(); err != nil {
		return oracleevent.ChildDesc{}, false, err
	}

	eventRows, err := r.db.QueryContext(ctx, `SELECT id, att_outcome IS NOT NULL FROM event WHERE path = $1`, path.String())
	if err != nil {
		return oracleevent.ChildDesc{}, false, fmt.Errorf("sqlstore: child events: %w", err)
	}
	defer eventRows.Close()
	for eventRows.Next() {
		var idStr string
		var attested bool
		if err := eventRows.Scan(&idStr, &attested); err != nil {
			return oracleevent.ChildDesc{}, false, fmt.Errorf("sqlstore: scan child event: %w", err)
		}
		id, err := eventpath.ParseEventId(idStr)
		if err != nil {
			continue
		}
		rest, ok := id.Path().StripPrefixPath(path)
		if !ok || rest.Len() == 0 {
			continue
		}
		seg0, _ := rest.Segment(0)
		info := childSet[seg0]
		if info == nil {
			info = &childInfo{}
			childSet[seg0] = info
		}
		if rest.Len() == 1 {
			info.hasEvent = true
			info.attested = attested
		}
		addDateGroup(dateGroups, rest, seg0)
	}
	if err := eventRows.Err(); err != nil {
		return oracleevent.ChildDesc{}, false, err
	}

	switch {
	case kind.Tag == oracleevent.NodeKindRangeTime:
		return rangeChildDesc(childSet), len(childSet) > 0, nil
	case isDateMapInferred(childSet):
		return dateMapChildDesc(dateGroups), len(childSet) > 0, nil
	default:
		return listChildDesc(childSet), len(childSet) > 0, nil
	}
}

// addDateGroup records the segment one level below seg0 (if rest goes
// that deep) as filed under seg0, for the DateMap inference's "date ->
// set<segment>" grouping.
func addDateGroup(dateGroups map[string]map[string]struct{}, rest eventpath.Path, seg0 string) {
	if dateGroups[seg0] == nil {
		dateGroups[seg0] = map[string]struct{}{}
	}
	if rest.Len() >= 2 {
		seg1, _ := rest.Segment(1)
		dateGroups[seg0][seg1] = struct{}{}
	}
}

// isISODate reports whether seg parses as an ISO-8601 calendar date.
func isISODate(seg string) bool {
	_, err := time.Parse("2006-01-02", seg)
	return err == nil
}

// isDateMapInferred reports whether every direct child segment parses
// as an ISO date, the condition for inferring a DateMap child
// description regardless of the node's declared kind.
func isDateMapInferred(childSet map[string]*childInfo) bool {
	if len(childSet) == 0 {
		return false
	}
	for seg := range childSet {
		if !isISODate(seg) {
			return false
		}
	}
	return true
}

func listChildDesc(childSet map[string]*childInfo) oracleevent.ChildDesc {
	segments := make([]string, 0, len(childSet))
	for seg := range childSet {
		segments = append(segments, seg)
	}
	sort.Strings(segments)
	if len(segments) > maxChildListing {
		segments = segments[:maxChildListing]
	}
	entries := make([]oracleevent.ChildEntry, len(segments))
	for i, seg := range segments {
		entries[i] = oracleevent.ChildEntry{Segment: seg, HasEvent: childSet[seg].hasEvent}
	}
	return oracleevent.ChildDesc{Tag: oracleevent.ChildDescList, List: entries}
}

func rangeChildDesc(childSet map[string]*childInfo) oracleevent.ChildDesc {
	segments := make([]string, 0, len(childSet))
	for seg := range childSet {
		segments = append(segments, seg)
	}
	sort.Strings(segments)
	if len(segments) == 0 {
		return oracleevent.ChildDesc{Tag: oracleevent.ChildDescRange}
	}
	start, end := segments[0], segments[len(segments)-1]
	desc := oracleevent.ChildDesc{Tag: oracleevent.ChildDescRange, RangeStart: &start, RangeEnd: &end}
	for _, seg := range segments {
		if info := childSet[seg]; info.hasEvent && !info.attested {
			next := seg
			desc.RangeNextUnattested = &next
			break
		}
	}
	return desc
}

func dateMapChildDesc(dateGroups map[string]map[string]struct{}) oracleevent.ChildDesc {
	out := make(map[string][]string, len(dateGroups))
	for date, segs := range dateGroups {
		list := make([]string, 0, len(segs))
		for seg := range segs {
			list = append(list, seg)
		}
		sort.Strings(list)
		out[date] = list
	}
	return oracleevent.ChildDesc{Tag: oracleevent.ChildDescDateMap, DateMap: out}
}
