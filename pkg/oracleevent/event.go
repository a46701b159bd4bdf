// Copyright 2025 Certen Protocol
//
// Package oracleevent defines the signed payload types Olivia publishes
// and persists: the event descriptor, the canonical OracleEvent and its
// byte-exact Raw envelope, announcements, attestations, and the node
// tree's path/child description types.
package oracleevent

import (
	"time"

	"github.com/oliviaoracle/olivia/pkg/eventpath"
)

// Event is the part of an announced event that never changes after
// creation: its identifier and (if scheduled) when its outcome is
// expected to be known.
type Event struct {
	ID                  eventpath.EventId
	ExpectedOutcomeTime *time.Time
}
