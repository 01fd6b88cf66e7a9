package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"sermoncast/internal/ledger"
	"sermoncast/internal/testsupport"
)

func TestBeginAttemptCreatesRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	token, err := store.BeginAttempt(ctx, "vid-1")
	if err != nil {
		t.Fatalf("BeginAttempt failed: %v", err)
	}
	if token.ID == "" || token.VideoID != "vid-1" {
		t.Fatalf("unexpected token: %#v", token)
	}

	record, err := store.Get(ctx, "vid-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected record to exist")
	}
	if record.Status != ledger.StatusAttempting {
		t.Fatalf("expected attempting, got %s", record.Status)
	}
	if record.AttemptCount != 1 {
		t.Fatalf("expected attempt count 1, got %d", record.AttemptCount)
	}
	if record.FirstSeenAt.IsZero() {
		t.Fatal("expected first_seen_at to be set")
	}
}

func TestBeginAttemptIncrementsCountOnRetry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.MustBeginAttempt(t, store, "vid-2")
	if err := store.RecordOutcome(ctx, first, ledger.Failed("network down")); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}

	second := testsupport.MustBeginAttempt(t, store, "vid-2")
	if second.ID == first.ID {
		t.Fatal("expected a fresh attempt token")
	}

	record, err := store.Get(ctx, "vid-2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.AttemptCount != 2 {
		t.Fatalf("expected attempt count 2, got %d", record.AttemptCount)
	}
}

func TestBeginAttemptRejectsPublished(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	token := testsupport.MustBeginAttempt(t, store, "vid-3")
	if err := store.RecordOutcome(ctx, token, ledger.Published()); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}

	if _, err := store.BeginAttempt(ctx, "vid-3"); !errors.Is(err, ledger.ErrAlreadyPublished) {
		t.Fatalf("expected ErrAlreadyPublished, got %v", err)
	}

	published, err := store.HasPublished(ctx, "vid-3")
	if err != nil {
		t.Fatalf("HasPublished failed: %v", err)
	}
	if !published {
		t.Fatal("expected HasPublished true")
	}
}

func TestRecordOutcomeIdempotentAndConflicting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	token := testsupport.MustBeginAttempt(t, store, "vid-4")
	if err := store.RecordOutcome(ctx, token, ledger.Published()); err != nil {
		t.Fatalf("first RecordOutcome failed: %v", err)
	}
	if err := store.RecordOutcome(ctx, token, ledger.Published()); err != nil {
		t.Fatalf("same outcome should be idempotent, got %v", err)
	}
	err := store.RecordOutcome(ctx, token, ledger.Failed("oops"))
	if !errors.Is(err, ledger.ErrConflictingOutcome) {
		t.Fatalf("expected ErrConflictingOutcome, got %v", err)
	}
}

func TestRecordOutcomeUnknownToken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	err := store.RecordOutcome(context.Background(),
		ledger.AttemptToken{ID: "missing", VideoID: "vid"}, ledger.Published())
	if !errors.Is(err, ledger.ErrUnknownAttempt) {
		t.Fatalf("expected ErrUnknownAttempt, got %v", err)
	}
}

func TestAmbiguousSurfacesStaleAttempt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// Simulated crash: attempt begun, no terminal outcome recorded.
	testsupport.MustBeginAttempt(t, store, "vid-5")

	record, err := store.Ambiguous(ctx, "vid-5")
	if err != nil {
		t.Fatalf("Ambiguous failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected ambiguous record")
	}

	if record, err = store.Ambiguous(ctx, "vid-unknown"); err != nil || record != nil {
		t.Fatalf("expected nil for unknown id, got %#v err=%v", record, err)
	}
}

func TestResolveClosesAmbiguousRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.MustBeginAttempt(t, store, "vid-6")
	if err := store.Resolve(ctx, "vid-6", ledger.Failed("operator reviewed")); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	record, err := store.Get(ctx, "vid-6")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Status != ledger.StatusFailed {
		t.Fatalf("expected failed after resolve, got %s", record.Status)
	}

	history, err := store.History(ctx, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one attempt, got %d", len(history))
	}
	if history[0].FinishedAt == nil {
		t.Fatal("expected open attempt to be closed")
	}

	if err := store.Resolve(ctx, "vid-6", ledger.Failed("again")); err == nil {
		t.Fatal("expected error resolving a non-attempting record")
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"vid-a", "vid-b", "vid-c"} {
		token := testsupport.MustBeginAttempt(t, store, id)
		if err := store.RecordOutcome(ctx, token, ledger.Published()); err != nil {
			t.Fatalf("RecordOutcome failed: %v", err)
		}
	}

	history, err := store.History(ctx, 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(history))
	}
	if history[0].VideoID != "vid-c" {
		t.Fatalf("expected newest first, got %s", history[0].VideoID)
	}
}

func TestLegacyUploadsMigration(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	// Seed a database shaped like the pre-ledger schema.
	db, err := sql.Open("sqlite", cfg.LedgerPath())
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE uploads (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        video_id TEXT NOT NULL,
        uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP
    )`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO uploads (video_id) VALUES ('legacy-video')"); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close seed db: %v", err)
	}

	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	published, err := store.HasPublished(ctx, "legacy-video")
	if err != nil {
		t.Fatalf("HasPublished failed: %v", err)
	}
	if !published {
		t.Fatal("expected legacy upload to migrate as published")
	}
}

func TestLockContention(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first := ledger.NewLock(cfg)
	if err := first.Acquire(); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer first.Release()

	second := ledger.NewLock(cfg)
	err := second.Acquire()
	if !errors.Is(err, ledger.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := second.Acquire(); err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	if err := second.Release(); err != nil {
		t.Fatalf("second Release failed: %v", err)
	}
}
