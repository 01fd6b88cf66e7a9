package ledger

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a video record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAttempting Status = "attempting"
	StatusPublished  Status = "published"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusAttempting,
	StatusPublished,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// terminalStatuses are the statuses a record can never leave.
var terminalStatuses = map[Status]struct{}{
	StatusPublished: {},
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status permits no further attempts.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// Record tracks a single video identifier's publish state. Records are never
// deleted; together with the attempts table they form the audit trail.
type Record struct {
	VideoID      string
	Status       Status
	FirstSeenAt  time.Time
	UpdatedAt    time.Time
	AttemptCount int
	LastError    string
}

// Attempt is one audit row in the append-style attempt history.
type Attempt struct {
	ID         string
	VideoID    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Outcome    Status
	Reason     string
}

// AttemptToken identifies an in-flight attempt returned by BeginAttempt and
// consumed exactly once by RecordOutcome.
type AttemptToken struct {
	ID      string
	VideoID string
}

// Outcome is the terminal result recorded for an attempt.
type Outcome struct {
	Status Status
	Reason string
}

// Published builds the successful terminal outcome.
func Published() Outcome {
	return Outcome{Status: StatusPublished}
}

// Failed builds the failed terminal outcome with a reason.
func Failed(reason string) Outcome {
	return Outcome{Status: StatusFailed, Reason: reason}
}
