package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"sermoncast/internal/ledger"
)

func historyFixture() []*ledger.Attempt {
	started := time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC)
	finished := started.Add(12 * time.Minute)
	return []*ledger.Attempt{
		{
			ID:         "a1",
			VideoID:    "vid-1",
			StartedAt:  started,
			FinishedAt: &finished,
			Outcome:    ledger.StatusPublished,
		},
		{
			ID:         "a2",
			VideoID:    "vid-2",
			StartedAt:  started,
			FinishedAt: &finished,
			Outcome:    ledger.StatusFailed,
			Reason:     "upload timed out",
		},
		{
			ID:        "a3",
			VideoID:   "vid-3",
			StartedAt: started,
		},
	}
}

func TestRenderHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	out := renderHistoryTable(&buf, historyFixture())

	// StyleRounded upper-cases header cells.
	for _, want := range []string{"STARTED", "VIDEO", "OUTCOME", "DURATION", "REASON"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected header %q in output:\n%s", want, out)
		}
	}
	for _, want := range []string{"vid-1", "published", "720s", "vid-2", "failed", "upload timed out", "vid-3", "in progress"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderHistoryTablePlainForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	out := renderHistoryTable(&buf, historyFixture())
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no escape sequences for buffer writer:\n%q", out)
	}
}

func TestAttemptDurationOpenAttempt(t *testing.T) {
	attempt := &ledger.Attempt{StartedAt: time.Now()}
	if got := attemptDuration(attempt); got != "-" {
		t.Fatalf("expected placeholder for open attempt, got %q", got)
	}
}
