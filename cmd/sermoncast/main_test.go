package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sermoncast/internal/ledger"
	"sermoncast/internal/testsupport"
)

func TestCLIHistoryEmpty(t *testing.T) {
	_, configPath := setupCLIConfig(t)

	out, _, err := runCLI(t, configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No publish attempts recorded")
}

func TestCLIHistoryListsAttempts(t *testing.T) {
	cfg, configPath := setupCLIConfig(t)
	ctx := context.Background()

	store := testsupport.MustOpenStore(t, cfg)
	published := testsupport.MustBeginAttempt(t, store, "vid-published")
	if err := store.RecordOutcome(ctx, published, ledger.Published()); err != nil {
		t.Fatalf("record published: %v", err)
	}
	failed := testsupport.MustBeginAttempt(t, store, "vid-failed")
	if err := store.RecordOutcome(ctx, failed, ledger.Failed("upload timed out")); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	testsupport.MustBeginAttempt(t, store, "vid-open")
	store.Close()

	out, _, err := runCLI(t, configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "vid-published")
	requireContains(t, out, "published")
	requireContains(t, out, "vid-failed")
	requireContains(t, out, "upload timed out")
	requireContains(t, out, "in progress")
}

func TestCLIHistoryLimit(t *testing.T) {
	cfg, configPath := setupCLIConfig(t)
	ctx := context.Background()

	store := testsupport.MustOpenStore(t, cfg)
	for _, id := range []string{"vid-a", "vid-b", "vid-c"} {
		token := testsupport.MustBeginAttempt(t, store, id)
		if err := store.RecordOutcome(ctx, token, ledger.Published()); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}
	store.Close()

	out, _, err := runCLI(t, configPath, "history", "--limit", "1")
	if err != nil {
		t.Fatalf("history --limit: %v", err)
	}
	if count := strings.Count(out, "vid-"); count != 1 {
		t.Fatalf("expected 1 attempt with --limit 1, saw %d in %q", count, out)
	}
}

func TestCLIResolvePublished(t *testing.T) {
	cfg, configPath := setupCLIConfig(t)
	ctx := context.Background()

	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MustBeginAttempt(t, store, "vid-stuck")
	store.Close()

	out, _, err := runCLI(t, configPath, "resolve", "vid-stuck", "--published")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "Resolved vid-stuck as published")

	verify := testsupport.MustOpenStore(t, cfg)
	defer verify.Close()
	record, err := verify.Get(ctx, "vid-stuck")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Status != ledger.StatusPublished {
		t.Fatalf("expected published after resolve, got %s", record.Status)
	}
}

func TestCLIResolveFailedWithReason(t *testing.T) {
	cfg, configPath := setupCLIConfig(t)
	ctx := context.Background()

	store := testsupport.MustOpenStore(t, cfg)
	testsupport.MustBeginAttempt(t, store, "vid-stuck")
	store.Close()

	out, _, err := runCLI(t, configPath, "resolve", "vid-stuck", "--reason", "draft never saved")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "Resolved vid-stuck as failed")

	verify := testsupport.MustOpenStore(t, cfg)
	defer verify.Close()
	record, err := verify.Get(ctx, "vid-stuck")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Status != ledger.StatusFailed {
		t.Fatalf("expected failed after resolve, got %s", record.Status)
	}
	if record.LastError != "draft never saved" {
		t.Fatalf("expected reason recorded, got %q", record.LastError)
	}
}

func TestCLIResolveUnknownVideo(t *testing.T) {
	_, configPath := setupCLIConfig(t)

	_, _, err := runCLI(t, configPath, "resolve", "vid-missing")
	if err == nil {
		t.Fatal("expected error resolving unknown video")
	}
	requireContains(t, err.Error(), "no record")
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCLIConfigShowRedactsPassword(t *testing.T) {
	_, configPath := setupCLIConfig(t)

	out, _, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "playlist")
	requireContains(t, out, "<redacted>")
	if strings.Contains(out, "secret") {
		t.Fatalf("expected password redacted, got:\n%s", out)
	}
}

func TestCLIUnknownCommand(t *testing.T) {
	_, configPath := setupCLIConfig(t)
	if _, _, err := runCLI(t, configPath, "bogus"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
