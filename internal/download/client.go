package download

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"sermoncast/internal/config"
	"sermoncast/internal/services"
)

var commandContext = exec.CommandContext

const watchBaseURL = "https://www.youtube.com/watch?v="

// Metadata describes a downloaded video and its on-disk location.
type Metadata struct {
	VideoID     string
	Title       string
	Description string
	Duration    int
	Path        string
	// ThumbnailPath is the cover image yt-dlp wrote alongside the video,
	// empty when none was produced.
	ThumbnailPath string
}

// Client downloads a single video and returns its metadata.
type Client interface {
	Download(ctx context.Context, videoID string) (Metadata, error)
}

// Option configures the CLI client.
type Option func(*YtDlpCLI)

// WithBinary overrides the configured yt-dlp binary.
func WithBinary(binary string) Option {
	return func(c *YtDlpCLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// YtDlpCLI wraps the yt-dlp command-line downloader.
type YtDlpCLI struct {
	binary     string
	format     string
	stagingDir string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewYtDlpCLI constructs a downloader from configuration.
func NewYtDlpCLI(cfg *config.Config, logger *slog.Logger, opts ...Option) *YtDlpCLI {
	if logger == nil {
		logger = slog.Default()
	}
	cli := &YtDlpCLI{
		binary:     cfg.Download.Binary,
		format:     cfg.Download.Format,
		stagingDir: cfg.Paths.StagingDir,
		timeout:    time.Duration(cfg.Download.Timeout) * time.Second,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Download fetches the video into the staging directory and returns parsed
// metadata. The title is sanitized before it reaches the episode draft.
func (c *YtDlpCLI) Download(ctx context.Context, videoID string) (Metadata, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return Metadata{}, errors.New("video id required")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	outputTemplate := filepath.Join(c.stagingDir, "video.%(ext)s")
	args := []string{
		"--format", c.format,
		"--print-json",
		"--no-playlist",
		"--write-thumbnail",
		"--output", outputTemplate,
		watchBaseURL + videoID,
	}
	c.logger.Info("downloading video", "video_id", videoID, "format", c.format)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return Metadata{}, services.Wrap(services.ErrTimeout, "download", "yt-dlp", "download timed out", ctx.Err())
		}
		var exitErr *exec.ExitError
		detail := ""
		if errors.As(err, &exitErr) {
			detail = lastLine(string(exitErr.Stderr))
		}
		return Metadata{}, services.Wrap(services.ErrTransient, "download", "yt-dlp", detail, err)
	}

	var payload struct {
		Type        string  `json:"_type"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Duration    float64 `json:"duration"`
		Ext         string  `json:"ext"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return Metadata{}, services.Wrap(services.ErrExternalTool, "download", "yt-dlp", "parse metadata", err)
	}
	if payload.Type == "playlist" {
		return Metadata{}, services.Wrap(services.ErrValidation, "download", "yt-dlp",
			"expected a single video, got a playlist", nil)
	}

	ext := payload.Ext
	if ext == "" {
		ext = c.format
	}
	meta := Metadata{
		VideoID:       videoID,
		Title:         SanitizeTitle(payload.Title),
		Description:   payload.Description,
		Duration:      int(payload.Duration),
		Path:          filepath.Join(c.stagingDir, "video."+ext),
		ThumbnailPath: c.locateThumbnail(),
	}
	c.logger.Info("download complete", "video_id", videoID, "title", meta.Title, "duration_seconds", meta.Duration)
	return meta, nil
}

// SanitizeTitle normalizes a raw video title for use as an episode title.
// Titles often carry channel branding after pipe separators; at most the
// first two segments survive, rejoined with a single normalized separator.
func SanitizeTitle(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Untitled"
	}
	parts := strings.Split(raw, "|")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	if len(parts) >= 2 {
		return parts[0] + " | " + parts[1]
	}
	return parts[0]
}

// locateThumbnail finds the cover image matching the output template.
// yt-dlp picks the image format, so every extension it emits is probed.
func (c *YtDlpCLI) locateThumbnail() string {
	for _, ext := range []string{"jpg", "jpeg", "png", "webp"} {
		candidate := filepath.Join(c.stagingDir, "video."+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

var _ Client = (*YtDlpCLI)(nil)
