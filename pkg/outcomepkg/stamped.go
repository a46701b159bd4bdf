package outcomepkg

import "time"

// StampedOutcome pairs an Outcome with the wall-clock time it was
// recorded at, truncated to whole seconds (nanoseconds = 0): the time
// is signed and persisted at second resolution, never sub-second.
type StampedOutcome struct {
	Outcome Outcome
	Time    time.Time
}

// NewStampedOutcome constructs a StampedOutcome, truncating t to whole
// seconds.
func NewStampedOutcome(outcome Outcome, t time.Time) StampedOutcome {
	return StampedOutcome{Outcome: outcome, Time: t.Truncate(time.Second)}
}
