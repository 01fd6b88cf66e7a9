package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sermoncast/internal/config"
)

// Store manages publish-attempt persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open initializes or connects to the ledger database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LedgerPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the ledger database location.
func (s *Store) Path() string {
	return s.path
}

// Get fetches the record for a video identifier, or nil when none exists.
func (s *Store) Get(ctx context.Context, videoID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT video_id, status, first_seen_at, updated_at, attempt_count, last_error
         FROM records WHERE video_id = ?`, videoID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// HasPublished reports whether a published record exists for the identifier.
// Read-only, no side effects.
func (s *Store) HasPublished(ctx context.Context, videoID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM records WHERE video_id = ? AND status = ?",
		videoID, StatusPublished,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check published: %w", err)
	}
	return count > 0, nil
}

// Ambiguous returns the record for an identifier when a prior run left it in
// attempting state without reaching a terminal outcome. The prior run may have
// created a half-finished draft downstream, so callers must route these to
// manual review rather than silently re-attempting.
func (s *Store) Ambiguous(ctx context.Context, videoID string) (*Record, error) {
	record, err := s.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if record == nil || record.Status != StatusAttempting {
		return nil, nil
	}
	return record, nil
}

// BeginAttempt marks the identifier as attempting and returns a token for the
// attempt. The write is durable before any external side effect runs, so a
// crash mid-run leaves an attempting record rather than silence.
func (s *Store) BeginAttempt(ctx context.Context, videoID string) (AttemptToken, error) {
	if videoID == "" {
		return AttemptToken{}, errors.New("video id required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttemptToken{}, fmt.Errorf("begin attempt tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	row := tx.QueryRowContext(ctx,
		`SELECT video_id, status, first_seen_at, updated_at, attempt_count, last_error
         FROM records WHERE video_id = ?`, videoID)
	record, err := scanRecord(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (video_id, status, first_seen_at, updated_at, attempt_count)
             VALUES (?, ?, ?, ?, 1)`,
			videoID, StatusAttempting, now, now,
		)
		if err != nil {
			return AttemptToken{}, fmt.Errorf("insert record: %w", err)
		}
	case err != nil:
		return AttemptToken{}, fmt.Errorf("load record: %w", err)
	default:
		if record.Status == StatusPublished {
			return AttemptToken{}, fmt.Errorf("%w: %s", ErrAlreadyPublished, videoID)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE records SET status = ?, updated_at = ?, attempt_count = attempt_count + 1
             WHERE video_id = ?`,
			StatusAttempting, now, videoID,
		)
		if err != nil {
			return AttemptToken{}, fmt.Errorf("update record: %w", err)
		}
	}

	token := AttemptToken{ID: uuid.NewString(), VideoID: videoID}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO attempts (id, video_id, started_at) VALUES (?, ?, ?)",
		token.ID, videoID, now,
	)
	if err != nil {
		return AttemptToken{}, fmt.Errorf("insert attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return AttemptToken{}, fmt.Errorf("commit attempt: %w", err)
	}
	return token, nil
}

// RecordOutcome writes the terminal outcome for an attempt. Calling it twice
// with the same outcome is a no-op; a different terminal outcome returns
// ErrConflictingOutcome.
func (s *Store) RecordOutcome(ctx context.Context, token AttemptToken, outcome Outcome) error {
	if outcome.Status != StatusPublished && outcome.Status != StatusFailed {
		return fmt.Errorf("outcome must be terminal, got %q", outcome.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outcome tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var stored sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT outcome FROM attempts WHERE id = ?", token.ID,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrUnknownAttempt, token.ID)
	}
	if err != nil {
		return fmt.Errorf("load attempt: %w", err)
	}

	if stored.Valid && stored.String != "" {
		if Status(stored.String) == outcome.Status {
			return nil
		}
		return fmt.Errorf("%w: attempt %s already %s, refusing %s",
			ErrConflictingOutcome, token.ID, stored.String, outcome.Status)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx,
		"UPDATE attempts SET finished_at = ?, outcome = ?, reason = ? WHERE id = ?",
		now, outcome.Status, nullableString(outcome.Reason), token.ID,
	)
	if err != nil {
		return fmt.Errorf("close attempt: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE records SET status = ?, updated_at = ?, last_error = ? WHERE video_id = ?",
		outcome.Status, now, nullableString(outcome.Reason), token.VideoID,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outcome: %w", err)
	}
	return nil
}

// Resolve clears an ambiguous attempting record after manual review, closing
// any open attempt rows with the supplied terminal outcome.
func (s *Store) Resolve(ctx context.Context, videoID string, outcome Outcome) error {
	if outcome.Status != StatusPublished && outcome.Status != StatusFailed {
		return fmt.Errorf("outcome must be terminal, got %q", outcome.Status)
	}

	record, err := s.Get(ctx, videoID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no record for %s", videoID)
	}
	if record.Status != StatusAttempting {
		return fmt.Errorf("record %s is %s, not attempting", videoID, record.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin resolve tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx,
		`UPDATE attempts SET finished_at = ?, outcome = ?, reason = ?
         WHERE video_id = ? AND outcome IS NULL`,
		now, outcome.Status, nullableString(outcome.Reason), videoID,
	)
	if err != nil {
		return fmt.Errorf("close open attempts: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE records SET status = ?, updated_at = ?, last_error = ? WHERE video_id = ?",
		outcome.Status, now, nullableString(outcome.Reason), videoID,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit resolve: %w", err)
	}
	return nil
}

// History returns the most recent attempts, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]*Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, video_id, started_at, finished_at, outcome, reason
         FROM attempts ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record    Record
		status    string
		firstSeen string
		updated   string
		lastError sql.NullString
	)
	if err := row.Scan(&record.VideoID, &status, &firstSeen, &updated, &record.AttemptCount, &lastError); err != nil {
		return nil, err
	}

	parsed, ok := ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown record status %q", status)
	}
	record.Status = parsed
	record.LastError = lastError.String

	var err error
	if record.FirstSeenAt, err = parseTimestamp(firstSeen); err != nil {
		return nil, fmt.Errorf("parse first_seen_at: %w", err)
	}
	if record.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &record, nil
}

func scanAttempt(row rowScanner) (*Attempt, error) {
	var (
		attempt  Attempt
		started  string
		finished sql.NullString
		outcome  sql.NullString
		reason   sql.NullString
	)
	if err := row.Scan(&attempt.ID, &attempt.VideoID, &started, &finished, &outcome, &reason); err != nil {
		return nil, fmt.Errorf("scan attempt: %w", err)
	}

	var err error
	if attempt.StartedAt, err = parseTimestamp(started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finished.Valid {
		ts, err := parseTimestamp(finished.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		attempt.FinishedAt = &ts
	}
	if outcome.Valid {
		attempt.Outcome = Status(outcome.String)
	}
	attempt.Reason = reason.String
	return &attempt, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
