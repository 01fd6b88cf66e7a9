package testsupport

import (
	"context"
	"testing"

	"sermoncast/internal/config"
	"sermoncast/internal/ledger"
)

// MustOpenStore opens a ledger.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustBeginAttempt starts an attempt for tests.
func MustBeginAttempt(t testing.TB, store *ledger.Store, videoID string) ledger.AttemptToken {
	t.Helper()

	token, err := store.BeginAttempt(context.Background(), videoID)
	if err != nil {
		t.Fatalf("store.BeginAttempt: %v", err)
	}
	return token
}
