package domain

import "context"

// Status classifies what Apply did with one event
type Status uint8

// Apply statuses
const (
	// StatusApplied means the transition ran and succeeded
	StatusApplied Status = iota
	// StatusDuplicate means the fingerprint was already recorded; nothing changed
	StatusDuplicate
	// StatusRejected means the envelope was invalid; nothing changed
	StatusRejected
	// StatusUnknownType means the type is not recognised; bookkeeping still ran
	StatusUnknownType
	// StatusFailed means the transition failed; bookkeeping still ran
	StatusFailed
)

var statusNames = [...]string{"applied", "duplicate", "rejected", "unknown_type", "failed"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "invalid"
}

// Statuses lists every status, for pre-declaring metric labels
func Statuses() []Status {
	return []Status{StatusApplied, StatusDuplicate, StatusRejected, StatusUnknownType, StatusFailed}
}

// Outcome is the internal result of one Apply. It never reaches the event source;
// observers use it for metrics, logs and tests
type Outcome struct {
	Event       Event
	Fingerprint string
	Status      Status
	Err         error
}

// Observer is notified after every Apply, outside the reducer lock
type Observer func(ctx context.Context, o Outcome)
