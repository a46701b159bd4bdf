// Copyright 2025 Certen Protocol
//
// Package oracleloop implements the cooperative multiplexer that drives
// the oracle's state machine from three independent update streams:
// new events, new outcomes, and new node declarations. Each stream is
// configured with a base path its updates are relative to; the loop
// rewrites every payload's path to absolute before dispatching to the
// Oracle or Storage.
package oracleloop

import (
	"context"
	"log"
	"reflect"

	"github.com/google/uuid"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
	"github.com/oliviaoracle/olivia/pkg/outcomepkg"
)

// Update carries one item from a stream plus an optional one-shot
// acknowledgment channel. The loop sends true on Ack iff the attempted
// operation failed, false iff it succeeded; if nothing reads from Ack
// the send is dropped rather than blocking the loop — producers must
// tolerate a lost ack.
type Update[T any] struct {
	Payload T
	Ack     chan<- bool
}

func (u Update[T]) ack(failed bool) {
	if u.Ack == nil {
		return
	}
	select {
	case u.Ack <- failed:
	default:
	}
}

// Node is a node declaration as produced by an ingest source: a path
// (relativized against the stream's Base by the loop) and the kind to
// upsert there.
type Node struct {
	Path eventpath.Path
	Kind oracleevent.NodeKind
}

// EventAdder is the subset of Oracle the loop dispatches events to.
type EventAdder interface {
	AddEvent(ctx context.Context, event oracleevent.Event) error
}

// OutcomeCompleter is the subset of Oracle the loop dispatches outcomes
// to.
type OutcomeCompleter interface {
	CompleteEvent(ctx context.Context, stamped outcomepkg.StampedOutcome) error
}

// NodeSetter is the subset of Storage the loop dispatches node
// declarations to.
type NodeSetter interface {
	SetNode(ctx context.Context, path eventpath.Path, kind oracleevent.NodeKind) error
}

// source is one registered stream of any of the three update kinds,
// normalized to a single dispatch closure so Run can fan them all in
// with one reflect.Select call regardless of how many of each kind are
// registered.
type source struct {
	base     eventpath.Path
	channel  reflect.Value // chan Update[T], receive direction
	dispatch func(ctx context.Context, base eventpath.Path, payload, ack reflect.Value)
}

// Loop is the single-threaded cooperative multiplexer over event,
// outcome, and node streams. It processes exactly one
// update at a time, in arrival order within each stream, with
// non-deterministic interleaving across streams, and terminates once
// every registered stream is closed (or ctx is cancelled).
type Loop struct {
	oracle  EventAdder
	outcome OutcomeCompleter
	nodes   NodeSetter
	logger  *log.Logger

	sources []source
}

// Option configures a Loop at construction.
type Option func(*Loop)

// WithLogger overrides the Loop's default component logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Loop) { p.logger = l }
}

// New constructs a Loop dispatching events and outcomes to oracle and
// node declarations to nodeStore.
func New(oracle interface {
	EventAdder
	OutcomeCompleter
}, nodeStore NodeSetter, opts ...Option) *Loop {
	l := &Loop{
		oracle:  oracle,
		outcome: oracle,
		nodes:   nodeStore,
		logger:  log.New(log.Writer(), "[OracleLoop] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddEventStream registers an event source relative to base.
func (l *Loop) AddEventStream(base eventpath.Path, stream <-chan Update[oracleevent.Event]) {
	l.sources = append(l.sources, source{
		base:    base,
		channel: reflect.ValueOf(stream),
		dispatch: func(ctx context.Context, base eventpath.Path, payload, _ reflect.Value) {
			u := payload.Interface().(Update[oracleevent.Event])
			l.dispatchEvent(ctx, base, u)
		},
	})
}

// AddOutcomeStream registers an outcome source relative to base.
func (l *Loop) AddOutcomeStream(base eventpath.Path, stream <-chan Update[outcomepkg.StampedOutcome]) {
	l.sources = append(l.sources, source{
		base:    base,
		channel: reflect.ValueOf(stream),
		dispatch: func(ctx context.Context, base eventpath.Path, payload, _ reflect.Value) {
			u := payload.Interface().(Update[outcomepkg.StampedOutcome])
			l.dispatchOutcome(ctx, base, u)
		},
	})
}

// AddNodeStream registers a node-declaration source relative to base.
func (l *Loop) AddNodeStream(base eventpath.Path, stream <-chan Update[Node]) {
	l.sources = append(l.sources, source{
		base:    base,
		channel: reflect.ValueOf(stream),
		dispatch: func(ctx context.Context, base eventpath.Path, payload, _ reflect.Value) {
			u := payload.Interface().(Update[Node])
			l.dispatchNode(ctx, base, u)
		},
	})
}

// Run blocks, fanning in every registered stream, until all of them
// are closed or ctx is cancelled. Cancellation stops the loop from
// accepting new updates; an update already being dispatched keeps
// running with ctx, so a backend that honours cancellation may abort
// its storage call, but every write is a single statement or a
// transaction, so partial state is never observable.
func (l *Loop) Run(ctx context.Context) error {
	active := append([]source(nil), l.sources...)
	if len(active) == 0 {
		return nil
	}

	for len(active) > 0 {
		cases := make([]reflect.SelectCase, 0, len(active)+1)
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
		for _, s := range active {
			cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: s.channel})
		}

		chosen, recv, ok := reflect.Select(cases)
		if chosen == 0 {
			return ctx.Err()
		}
		idx := chosen - 1
		if !ok {
			// This stream closed: retire it and keep going.
			active = append(active[:idx], active[idx+1:]...)
			continue
		}
		active[idx].dispatch(ctx, active[idx].base, recv, reflect.Value{})
	}
	return nil
}

func (l *Loop) dispatchEvent(ctx context.Context, base eventpath.Path, u Update[oracleevent.Event]) {
	ev := u.Payload
	ev.ID = ev.ID.PrefixPath(base)
	updateID := uuid.New()
	if err := l.oracle.AddEvent(ctx, ev); err != nil {
		l.logger.Printf("update=%s event=%s failed: %v", updateID, ev.ID, err)
		u.ack(true)
		return
	}
	l.logger.Printf("update=%s event=%s ok", updateID, ev.ID)
	u.ack(false)
}

func (l *Loop) dispatchOutcome(ctx context.Context, base eventpath.Path, u Update[outcomepkg.StampedOutcome]) {
	stamped := u.Payload
	stamped.Outcome.ID = stamped.Outcome.ID.PrefixPath(base)
	updateID := uuid.New()
	if err := l.outcome.CompleteEvent(ctx, stamped); err != nil {
		l.logger.Printf("update=%s outcome=%s failed: %v", updateID, stamped.Outcome.ID, err)
		u.ack(true)
		return
	}
	l.logger.Printf("update=%s outcome=%s ok", updateID, stamped.Outcome.ID)
	u.ack(false)
}

func (l *Loop) dispatchNode(ctx context.Context, base eventpath.Path, u Update[Node]) {
	node := u.Payload
	path := node.Path.PrefixPath(base)
	updateID := uuid.New()
	if err := l.nodes.SetNode(ctx, path, node.Kind); err != nil {
		l.logger.Printf("update=%s node=%s failed: %v", updateID, path, err)
		u.ack(true)
		return
	}
	l.logger.Printf("update=%s node=%s ok", updateID, path)
	u.ack(false)
}
