package ledger

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d",
			ErrSchemaMismatch, version, schemaVersion)
	}

	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if err := migrateLegacyUploads(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// migrateLegacyUploads imports rows from the pre-ledger uploads table, which
// recorded only the identifiers of successfully published videos. Each row
// becomes a published record so the skip decision survives the upgrade.
func migrateLegacyUploads(ctx context.Context, tx execQuerier) error {
	var legacyExists int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='uploads'",
	).Scan(&legacyExists)
	if err != nil {
		return fmt.Errorf("check legacy uploads table: %w", err)
	}
	if legacyExists == 0 {
		return nil
	}

	rows, err := tx.QueryContext(ctx, "SELECT video_id, uploaded_at FROM uploads ORDER BY id")
	if err != nil {
		return fmt.Errorf("read legacy uploads: %w", err)
	}
	defer rows.Close()

	type legacyRow struct {
		videoID    string
		uploadedAt string
	}
	var legacy []legacyRow
	for rows.Next() {
		var row legacyRow
		if err := rows.Scan(&row.videoID, &row.uploadedAt); err != nil {
			return fmt.Errorf("scan legacy upload: %w", err)
		}
		legacy = append(legacy, row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate legacy uploads: %w", err)
	}

	for _, row := range legacy {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO records (video_id, status, first_seen_at, updated_at, attempt_count)
             VALUES (?, ?, ?, ?, 1)`,
			row.videoID, StatusPublished, row.uploadedAt, row.uploadedAt,
		)
		if err != nil {
			return fmt.Errorf("migrate legacy upload %q: %w", row.videoID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE uploads"); err != nil {
		return fmt.Errorf("drop legacy uploads table: %w", err)
	}
	return nil
}
