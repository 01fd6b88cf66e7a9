package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Playlist contains configuration for the monitored YouTube playlist.
type Playlist struct {
	ID           string `toml:"id"`
	BaseURL      string `toml:"base_url"`
	FetchTimeout int    `toml:"fetch_timeout"`
}

// Download contains configuration for the yt-dlp download step.
type Download struct {
	Binary  string `toml:"binary"`
	Format  string `toml:"format"`
	Timeout int    `toml:"timeout"`
}

// Audio contains configuration for audio segment isolation.
type Audio struct {
	Codec               string  `toml:"codec"`
	ToleranceSeconds    float64 `toml:"tolerance_seconds"`
	RetainIntermediates bool    `toml:"retain_intermediates"`
	TrimTimeout         int     `toml:"trim_timeout"`
}

// Chapters contains configuration for chapter-window extraction policy.
type Chapters struct {
	// MissingPolicy decides what happens when no chapter markers are found:
	// "full_duration" publishes the whole recording, "abort" fails the run.
	MissingPolicy string `toml:"missing_policy"`
}

// Publisher contains configuration for the browser upload session.
type Publisher struct {
	BaseURL            string `toml:"base_url"`
	Email              string `toml:"email"`
	Password           string `toml:"password"`
	Headless           bool   `toml:"headless"`
	ActionDelayMinMs   int    `toml:"action_delay_min_ms"`
	ActionDelayMaxMs   int    `toml:"action_delay_max_ms"`
	UploadTimeout      int    `toml:"upload_timeout"`
	AttachThumbnail    bool   `toml:"attach_thumbnail"`
	PublishImmediately bool   `toml:"publish_immediately"`
	CookieCache        bool   `toml:"cookie_cache"`
	EpisodeDescription string `toml:"episode_description"`
}

// Workflow contains run-level timing and retry configuration.
type Workflow struct {
	RunTimeout       int `toml:"run_timeout"`
	TransientRetries int `toml:"transient_retries"`
	RetryBaseSeconds int `toml:"retry_base_seconds"`
	RetryMaxSeconds  int `toml:"retry_max_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for sermoncast.
//
// Configuration sections by subsystem:
//   - Paths: staging and log directories (the ledger database lives in LogDir)
//   - Playlist: monitored playlist and fetch timeout
//   - Download: yt-dlp invocation settings
//   - Audio: trim codec, duration tolerance, intermediate retention
//   - Chapters: policy when no chapter markers are found
//   - Publisher: authoring UI credentials, delays, and upload behaviour
//   - Workflow: run deadline and transient retry budget
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Playlist  Playlist  `toml:"playlist"`
	Download  Download  `toml:"download"`
	Audio     Audio     `toml:"audio"`
	Chapters  Chapters  `toml:"chapters"`
	Publisher Publisher `toml:"publisher"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/sermoncast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sermoncast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs before any stage executes.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the path of the SQLite ledger database.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.LogDir, "ledger.db")
}

// LockPath returns the path of the advisory lock file guarding a run.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "sermoncast.lock")
}

// CookiePath returns the path of the cached browser session cookies.
func (c *Config) CookiePath() string {
	return filepath.Join(c.Paths.LogDir, "session_cookies.json")
}

// FFmpegBinary returns the ffmpeg executable name used for audio trimming.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for artifact validation.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(target string) error {
	if err := os.WriteFile(target, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves ~ prefixes and returns a cleaned absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
