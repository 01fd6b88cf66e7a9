package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"sermoncast/internal/config"
	"sermoncast/internal/services"
)

// ErrNoVideos is returned when the playlist page contains no video entries.
var ErrNoVideos = errors.New("no videos found in playlist")

// videoIDPattern matches video references embedded in the playlist page's
// initial data payload. Entries appear oldest first, so the last match is
// the newest upload.
var videoIDPattern = regexp.MustCompile(`"videoId":"([^"]+)"`)

const maxPageBytes = 16 << 20

// Fetcher resolves the newest video in the monitored playlist.
type Fetcher struct {
	baseURL string
	listID  string
	client  *http.Client
	logger  *slog.Logger
}

// Option customizes the fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// NewFetcher constructs a fetcher from configuration.
func NewFetcher(cfg *config.Config, logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := time.Duration(cfg.Playlist.FetchTimeout) * time.Second
	f := &Fetcher{
		baseURL: cfg.Playlist.BaseURL,
		listID:  cfg.Playlist.ID,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Newest fetches the playlist page and returns the identifier of the most
// recent upload.
func (f *Fetcher) Newest(ctx context.Context) (string, error) {
	target := f.baseURL + "?list=" + url.QueryEscape(f.listID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "fetch", "build request", target, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "fetch", "get playlist page", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		marker := services.ErrExternalTool
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			marker = services.ErrTransient
		}
		return "", services.Wrap(marker, "fetch", "get playlist page",
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "fetch", "read playlist page", target, err)
	}

	matches := videoIDPattern.FindAllSubmatch(body, -1)
	if len(matches) == 0 {
		return "", services.Wrap(ErrNoVideos, "fetch", "scan playlist page", f.listID, nil)
	}
	videoID := string(matches[len(matches)-1][1])
	f.logger.Debug("resolved newest playlist entry", "playlist", f.listID, "video_id", videoID, "entries", len(matches))
	return videoID, nil
}
