package oracleevent

// AnnouncedEvent is the persisted lifecycle record for one event: its
// static Event data, the announcement binding it to nonces, and — once
// the outcome is known — its attestation. The transition from nil to
// non-nil Attestation happens exactly once; no other mutation is
// permitted.
type AnnouncedEvent struct {
	Event       Event
	Announcement RawAnnouncement
	Attestation *Attestation
}

// IsAttested reports whether this event has completed its lifecycle.
func (a AnnouncedEvent) IsAttested() bool {
	return a.Attestation != nil
}
