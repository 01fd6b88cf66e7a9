package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sermoncast/internal/config"
)

func TestLoadDefaultsUseEnvOverridesAndExpandPaths(t *testing.T) {
	t.Setenv("SERMONCAST_PLAYLIST_ID", "PLtest123")
	t.Setenv("SERMONCAST_EMAIL", "pastor@example.com")
	t.Setenv("SERMONCAST_PASSWORD", "hunter2")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "sermoncast", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Playlist.ID != "PLtest123" {
		t.Fatalf("expected playlist id from env, got %q", cfg.Playlist.ID)
	}
	if cfg.Publisher.Email != "pastor@example.com" {
		t.Fatalf("expected email from env, got %q", cfg.Publisher.Email)
	}
	if cfg.Chapters.MissingPolicy != config.MissingPolicyFullDuration {
		t.Fatalf("unexpected missing policy: %q", cfg.Chapters.MissingPolicy)
	}
	if !cfg.Publisher.Headless {
		t.Fatal("expected headless publisher by default")
	}
	if cfg.Publisher.PublishImmediately {
		t.Fatal("expected draft mode by default")
	}
	if cfg.LedgerPath() != filepath.Join(cfg.Paths.LogDir, "ledger.db") {
		t.Fatalf("unexpected ledger path: %q", cfg.LedgerPath())
	}
}

func TestLoadParsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := strings.Join([]string{
		`[paths]`,
		`staging_dir = "` + filepath.Join(dir, "staging") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`[playlist]`,
		`id = "PLfile"`,
		`[chapters]`,
		`missing_policy = "ABORT"`,
		`[publisher]`,
		`email = "a@b.c"`,
		`password = "pw"`,
		`publish_immediately = true`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SERMONCAST_PLAYLIST_ID", "")
	t.Setenv("SERMONCAST_EMAIL", "")
	t.Setenv("SERMONCAST_PASSWORD", "")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be used, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Playlist.ID != "PLfile" {
		t.Fatalf("unexpected playlist id: %q", cfg.Playlist.ID)
	}
	if cfg.Chapters.MissingPolicy != config.MissingPolicyAbort {
		t.Fatalf("expected missing policy normalized to abort, got %q", cfg.Chapters.MissingPolicy)
	}
	if !cfg.Publisher.PublishImmediately {
		t.Fatal("expected publish_immediately true from file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Playlist.ID = "PL1"
		cfg.Publisher.Email = "a@b.c"
		cfg.Publisher.Password = "pw"
		return cfg
	}

	cases := []struct {
		name    string
		mutate  func(*config.Config)
		keyword string
	}{
		{"missing playlist", func(c *config.Config) { c.Playlist.ID = "" }, "playlist.id"},
		{"missing email", func(c *config.Config) { c.Publisher.Email = "" }, "publisher.email"},
		{"bad policy", func(c *config.Config) { c.Chapters.MissingPolicy = "maybe" }, "missing_policy"},
		{"inverted delays", func(c *config.Config) {
			c.Publisher.ActionDelayMinMs = 5000
			c.Publisher.ActionDelayMaxMs = 100
		}, "action_delay_min_ms"},
		{"zero run timeout", func(c *config.Config) { c.Workflow.RunTimeout = 0 }, "workflow.run_timeout"},
		{"zero retries", func(c *config.Config) { c.Workflow.TransientRetries = 0 }, "transient_retries"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.keyword) {
				t.Fatalf("expected error mentioning %q, got %v", tc.keyword, err)
			}
		})
	}
}
