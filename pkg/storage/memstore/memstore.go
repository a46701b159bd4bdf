// Copyright 2025 Certen Protocol
//
// Package memstore implements the storage contract in process memory,
// guarded by a single mutex: a map-backed store protected by
// sync.RWMutex, holding Olivia's typed event/node/key records. It
// backs fast, hermetic tests and the no-database development path.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/group"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
	"github.com/oliviaoracle/olivia/pkg/storage"
)

const maxChildListing = 100

// Store is an in-memory storage.Store.
type Store struct {
	mu         sync.RWMutex
	events     map[string]oracleevent.AnnouncedEvent // keyed by EventId.String()
	nodeKinds  map[string]oracleevent.NodeKind        // keyed by Path.String()
	publicKeys *[group.XOnlySize]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		events:    make(map[string]oracleevent.AnnouncedEvent),
		nodeKinds: make(map[string]oracleevent.NodeKind),
	}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) GetAnnouncedEvent(_ context.Context, id eventpath.EventId) (oracleevent.AnnouncedEvent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id.String()]
	return ev, ok, nil
}

func (s *Store) ensureAncestors(path eventpath.Path) {
	for {
		parent, err := path.Parent()
		if err != nil {
			return // reached root
		}
		key := parent.String()
		if _, ok := s.nodeKinds[key]; !ok {
			s.nodeKinds[key] = oracleevent.DefaultNodeKind()
		}
		path = parent
	}
}

func (s *Store) InsertEvent(_ context.Context, event oracleevent.AnnouncedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := event.Event.ID.String()
	if _, ok := s.events[key]; ok {
		return storage.ErrAlreadyExists
	}
	s.events[key] = event
	parentPath, err := event.Event.ID.ParentPath()
	if err == nil {
		s.ensureAncestors(parentPath)
		if _, ok := s.nodeKinds[parentPath.String()]; !ok {
			s.nodeKinds[parentPath.String()] = oracleevent.DefaultNodeKind()
		}
	}
	return nil
}

func (s *Store) CompleteEvent(_ context.Context, id eventpath.EventId, attestation oracleevent.Attestation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := id.String()
	ev, ok := s.events[key]
	if !ok {
		return storage.ErrEventNotExist
	}
	att := attestation
	ev.Attestation = &att
	s.events[key] = ev
	return nil
}

func (s *Store) SetNode(_ context.Context, path eventpath.Path, kind oracleevent.NodeKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeKinds[path.String()] = kind
	s.ensureAncestors(path)
	return nil
}

// childInfo tracks what's known about one direct child segment of a
// node: whether it names an event filed right there, and if so whether
// that event is attested yet.
type childInfo struct {
	hasEvent bool
	attested bool
}

func (s *Store) GetNode(_ context.Context, path eventpath.Path) (oracleevent.PathNode, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kind, nodeExists := s.nodeKinds[path.String()]

	var events []eventpath.EventKind
	childSet := map[string]*childInfo{}
	dateGroups := map[string]map[string]struct{}{}

	for _, ev := range s.events {
		parent, err := ev.Event.ID.ParentPath()
		if err == nil && parent.String() == path.String() {
			events = append(events, ev.Event.ID.Kind())
		}

		rest, ok := ev.Event.ID.Path().StripPrefixPath(path)
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
			info.attested = ev.IsAttested()
		}
		addDateGroup(dateGroups, rest, seg0)
	}

	for k := range s.nodeKinds {
		childPath, err := eventpath.ParsePath(k)
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

	if !nodeExists && len(events) == 0 && len(childSet) == 0 {
		return oracleevent.PathNode{}, false, nil
	}

	switch {
	case kind.Tag == oracleevent.NodeKindRangeTime:
		return oracleevent.PathNode{Events: events, Children: rangeChildDesc(childSet)}, true, nil
	case isDateMapInferred(childSet):
		return oracleevent.PathNode{Events: events, Children: dateMapChildDesc(dateGroups)}, true, nil
	default:
		return oracleevent.PathNode{Events: events, Children: listChildDesc(childSet)}, true, nil
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

func (s *Store) SetPublicKeys(_ context.Context, key [group.XOnlySize]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key
	s.publicKeys = &k
	return nil
}

func (s *Store) GetPublicKeys(_ context.Context) ([group.XOnlySize]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.publicKeys == nil {
		return [group.XOnlySize]byte{}, false, nil
	}
	return *s.publicKeys, true, nil
}

func (s *Store) QueryEvent(ctx context.Context, q storage.EventQuery) (oracleevent.Event, bool, error) {
	events, err := s.QueryEvents(ctx, q)
	if err != nil || len(events) == 0 {
		return oracleevent.Event{}, false, err
	}
	return events[0], true, nil
}

func (s *Store) QueryEvents(_ context.Context, q storage.EventQuery) ([]oracleevent.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []oracleevent.AnnouncedEvent
	for _, ev := range s.events {
		if q.Path != nil && !q.Path.IsAncestorOf(ev.Event.ID.Path()) {
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

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := matched[i].Event.ExpectedOutcomeTime, matched[j].Event.ExpectedOutcomeTime
		switch {
		case ti == nil && tj == nil:
			return false
		case ti == nil:
			return false
		case tj == nil:
			return true
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
