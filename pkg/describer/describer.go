// Copyright 2025 Certen Protocol
//
// Package describer renders small, dependency-free human-readable
// descriptions of paths, events, and outcomes. It is peripheral to the
// oracle's state machine but needed for user-facing surfaces such as
// REST, where every description must be a non-empty string.
package describer

import (
	"fmt"
	"strings"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/outcomepkg"
)

// Describer renders human-readable strings for paths, events, and
// outcomes. Olivia ships one concrete implementation, DefaultDescriber;
// the interface exists so a REST or CLI layer can substitute a
// localized or domain-specific renderer without touching the core.
type Describer interface {
	DescribePath(p eventpath.Path) string
	DescribeEvent(id eventpath.EventId) string
	DescribeOutcome(id eventpath.EventId, value outcomepkg.OutcomeValue) string
}

// DefaultDescriber is the plain-English Describer every Olivia deployment
// gets unless it supplies its own.
type DefaultDescriber struct{}

var _ Describer = DefaultDescriber{}

// DescribePath renders a node path as a slash-separated phrase, e.g.
// "/" -> "the root", "/EPL/match" -> "EPL / match".
func (DefaultDescriber) DescribePath(p eventpath.Path) string {
	if p.IsRoot() {
		return "the root"
	}
	segs := make([]string, 0, p.Len())
	for i := 0; i < p.Len(); i++ {
		seg, err := p.Segment(i)
		if err != nil {
			continue
		}
		segs = append(segs, seg)
	}
	return strings.Join(segs, " / ")
}

// DescribeEvent renders an event id's name and kind as a short English
// phrase, e.g. "/EPL/match/2021-08-13/BRE_ARS.vs" -> "BRE vs ARS (with
// draw)".
func (DefaultDescriber) DescribeEvent(id eventpath.EventId) string {
	kind := id.Kind()
	switch kind.Kind {
	case eventpath.KindOccur:
		return fmt.Sprintf("whether %s occurs", id.Name())
	case eventpath.KindVs:
		left, right := splitVsName(id.Name())
		return fmt.Sprintf("%s vs %s (with draw)", left, right)
	case eventpath.KindWin:
		left, right := splitVsName(id.Name())
		return fmt.Sprintf("%s vs %s (no draw)", left, right)
	case eventpath.KindDigits:
		return fmt.Sprintf("%s (%d-digit value)", id.Name(), kind.Digits)
	case eventpath.KindPredicate:
		inner := id.ReplaceKind(*kind.Inner)
		return fmt.Sprintf("whether %s equals %q", DefaultDescriber{}.DescribeEvent(inner), kind.EqValue)
	default:
		return id.Name()
	}
}

// DescribeOutcome renders a realized outcome value in plain English,
// given the id it belongs to (for side names).
func (DefaultDescriber) DescribeOutcome(id eventpath.EventId, value outcomepkg.OutcomeValue) string {
	switch value.Kind {
	case outcomepkg.ValueOccurred:
		return fmt.Sprintf("%s occurred", id.Name())
	case outcomepkg.ValueVs:
		if value.VsDraw {
			return "the match was a draw"
		}
		return fmt.Sprintf("%s won", value.VsWinner)
	case outcomepkg.ValueWin:
		return fmt.Sprintf("%s won", value.WinSide)
	case outcomepkg.ValueDigits:
		return fmt.Sprintf("the value was %d", value.Digits)
	case outcomepkg.ValuePredicateResult:
		if value.PredicateResult {
			return "true"
		}
		return "false"
	default:
		return "unknown outcome"
	}
}

func splitVsName(name string) (string, string) {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 {
		return name, ""
	}
	return parts[0], parts[1]
}
