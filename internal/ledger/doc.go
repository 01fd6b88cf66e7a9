// Package ledger persists publish attempts in SQLite and provides the
// at-most-once guarantee for the pipeline.
//
// The Store keeps one record per video identifier plus an append-style attempt
// history. A record moves pending -> attempting -> published|failed and never
// regresses; published is terminal and is the sole basis for skip decisions.
// BeginAttempt persists the attempting state before any external side effect
// runs, so a crash mid-run leaves a durable ambiguous record that the next run
// surfaces for manual review instead of silently retrying.
//
// Cross-process exclusion is handled by Lock, a flock-based advisory lock that
// fails fast on contention. Records are never deleted; the database is the
// audit trail.
package ledger
