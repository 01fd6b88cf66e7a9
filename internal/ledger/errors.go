package ledger

import "errors"

var (
	// ErrAlreadyPublished is returned by BeginAttempt when a published record
	// already exists for the video identifier.
	ErrAlreadyPublished = errors.New("video already published")

	// ErrLocked is returned when another process holds the ledger lock.
	// Overlapping scheduled runs fail fast rather than queueing.
	ErrLocked = errors.New("ledger locked by another process")

	// ErrConflictingOutcome is returned when RecordOutcome is called with a
	// terminal outcome different from the one already stored. This indicates
	// broken single-writer discipline and should never occur in practice.
	ErrConflictingOutcome = errors.New("conflicting terminal outcome")

	// ErrUnknownAttempt is returned when an attempt token does not match any
	// stored attempt row.
	ErrUnknownAttempt = errors.New("unknown attempt token")
)
