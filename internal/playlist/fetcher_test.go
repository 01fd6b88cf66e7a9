package playlist_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sermoncast/internal/config"
	"sermoncast/internal/logging"
	"sermoncast/internal/playlist"
	"sermoncast/internal/services"
	"sermoncast/internal/testsupport"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *playlist.Fetcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Playlist.BaseURL = server.URL + "/playlist"
		c.Playlist.ID = "PLabc123"
	})
	return playlist.NewFetcher(cfg, logging.NewNop())
}

func TestNewestReturnsLastMatch(t *testing.T) {
	page := `{"videoId":"oldest111"} filler {"videoId":"middle222"} filler {"videoId":"newest333"}`
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("list"); got != "PLabc123" {
			t.Errorf("expected list query PLabc123, got %q", got)
		}
		w.Write([]byte(page))
	})

	videoID, err := fetcher.Newest(context.Background())
	if err != nil {
		t.Fatalf("Newest returned error: %v", err)
	}
	if videoID != "newest333" {
		t.Fatalf("expected newest333, got %q", videoID)
	}
}

func TestNewestEmptyPage(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>nothing here</body></html>"))
	})

	_, err := fetcher.Newest(context.Background())
	if !errors.Is(err, playlist.ErrNoVideos) {
		t.Fatalf("expected ErrNoVideos, got %v", err)
	}
	if services.IsRetryable(err) {
		t.Fatal("empty playlist must not be retried in-run")
	}
}

func TestNewestServerErrorIsTransient(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})

	_, err := fetcher.Newest(context.Background())
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient for 502, got %v", err)
	}
}

func TestNewestClientErrorIsNotRetryable(t *testing.T) {
	fetcher := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	_, err := fetcher.Newest(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool for 404, got %v", err)
	}
	if services.IsRetryable(err) {
		t.Fatal("4xx responses must not be retried in-run")
	}
}

func TestNewestConnectionRefusedIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Playlist.BaseURL = server.URL + "/playlist"
		c.Playlist.ID = "PLabc123"
	})
	fetcher := playlist.NewFetcher(cfg, logging.NewNop())

	_, err := fetcher.Newest(context.Background())
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient for refused connection, got %v", err)
	}
}
