package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"sermoncast/internal/chapters"
	"sermoncast/internal/config"
	"sermoncast/internal/download"
	"sermoncast/internal/ledger"
	"sermoncast/internal/publisher"
)

// Fetcher resolves the newest playlist entry.
type Fetcher interface {
	Newest(ctx context.Context) (string, error)
}

// Extractor derives the chapter window from a description.
type Extractor interface {
	Extract(description string, durationSeconds int) (chapters.Window, error)
}

// Isolator produces the trimmed audio artifact.
type Isolator interface {
	Isolate(ctx context.Context, inputPath, outputPath string, window chapters.Window) error
}

// Publisher consumes one episode draft.
type Publisher interface {
	Publish(ctx context.Context, draft publisher.EpisodeDraft) error
}

// Store is the ledger surface the runner needs.
type Store interface {
	HasPublished(ctx context.Context, videoID string) (bool, error)
	Ambiguous(ctx context.Context, videoID string) (*ledger.Record, error)
	BeginAttempt(ctx context.Context, videoID string) (ledger.AttemptToken, error)
	RecordOutcome(ctx context.Context, token ledger.AttemptToken, outcome ledger.Outcome) error
}

// Locker serializes runs against each other.
type Locker interface {
	Acquire() error
	Release() error
}

// Deps bundles the runner's collaborators.
type Deps struct {
	Fetcher    Fetcher
	Downloader download.Client
	Extractor  Extractor
	Isolator   Isolator
	Publisher  Publisher
	Store      Store
	Lock       Locker
}

// Runner executes one end-to-end pipeline invocation.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   Deps
	retry  retryPolicy
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSleeper overrides how retry backoff sleeps are performed.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(r *Runner) {
		if sleeper != nil {
			r.retry.sleep = sleeper
		}
	}
}

// New constructs a Runner.
func New(cfg *config.Config, logger *slog.Logger, deps Deps, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		cfg:    cfg,
		logger: logger,
		deps:   deps,
		retry: retryPolicy{
			attempts:  cfg.Workflow.TransientRetries,
			baseDelay: time.Duration(cfg.Workflow.RetryBaseSeconds) * time.Second,
			maxDelay:  time.Duration(cfg.Workflow.RetryMaxSeconds) * time.Second,
			sleep:     time.Sleep,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline once and classifies how it ended. The returned
// error carries detail for logging; the Outcome alone decides the exit code.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	if r.cfg.Workflow.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.Workflow.RunTimeout)*time.Second)
		defer cancel()
	}

	var videoID string
	err := r.retry.run(ctx, r.logger, "fetch", func(ctx context.Context) error {
		var err error
		videoID, err = r.deps.Fetcher.Newest(ctx)
		return err
	})
	if err != nil {
		return OutcomeFetchFailed, fmt.Errorf("resolve newest video: %w", err)
	}
	r.logger.Info("newest playlist entry", "video_id", videoID)

	published, err := r.deps.Store.HasPublished(ctx, videoID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("check ledger: %w", err)
	}
	if published {
		r.logger.Info("already published, skipping", "video_id", videoID)
		return OutcomeSkipped, nil
	}

	ambiguous, err := r.deps.Store.Ambiguous(ctx, videoID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("check ledger: %w", err)
	}
	if ambiguous != nil {
		r.logger.Error("previous attempt never resolved, manual review required",
			"video_id", videoID, "attempts", ambiguous.AttemptCount, "last_error", ambiguous.LastError)
		return OutcomeManualReview, fmt.Errorf("video %s has an unresolved attempt", videoID)
	}

	if err := r.deps.Lock.Acquire(); err != nil {
		if errors.Is(err, ledger.ErrLocked) {
			r.logger.Warn("another run holds the lock, exiting")
			return OutcomeLockContention, err
		}
		return OutcomeFailed, fmt.Errorf("acquire lock: %w", err)
	}
	defer func() {
		if err := r.deps.Lock.Release(); err != nil {
			r.logger.Warn("lock release failed", "error", err)
		}
	}()

	token, err := r.deps.Store.BeginAttempt(ctx, videoID)
	if err != nil {
		if errors.Is(err, ledger.ErrAlreadyPublished) {
			r.logger.Info("already published, skipping", "video_id", videoID)
			return OutcomeSkipped, nil
		}
		return OutcomeFailed, fmt.Errorf("begin attempt: %w", err)
	}

	outcome, runErr := r.execute(ctx, videoID)

	// The terminal ledger write happens only after the publisher session is
	// fully torn down, which execute guarantees.
	result := ledger.Published()
	if runErr != nil {
		result = ledger.Failed(runErr.Error())
	}
	if recordErr := r.deps.Store.RecordOutcome(ctx, token, result); recordErr != nil {
		r.logger.Error("could not record attempt outcome", "video_id", videoID, "error", recordErr)
		if runErr == nil {
			// Episode went out but the ledger disagrees; a human has to
			// reconcile before the next run re-publishes it.
			return OutcomeManualReview, fmt.Errorf("published but outcome not recorded: %w", recordErr)
		}
	}
	return outcome, runErr
}

// execute runs the download-to-publish stages for one attempt.
func (r *Runner) execute(ctx context.Context, videoID string) (Outcome, error) {
	var meta download.Metadata
	err := r.retry.run(ctx, r.logger, "download", func(ctx context.Context) error {
		var err error
		meta, err = r.deps.Downloader.Download(ctx, videoID)
		return err
	})
	if err != nil {
		return OutcomeDownloadFailed, fmt.Errorf("download %s: %w", videoID, err)
	}

	window, err := r.resolveWindow(meta)
	if err != nil {
		return OutcomeExtractionFailed, err
	}
	r.logger.Info("chapter window resolved",
		"start_seconds", window.Start, "end_seconds", window.End, "label", window.Label)

	audioPath := filepath.Join(r.cfg.Paths.StagingDir, "episode.mp3")
	if err := r.deps.Isolator.Isolate(ctx, meta.Path, audioPath, window); err != nil {
		return OutcomeExtractionFailed, fmt.Errorf("isolate segment: %w", err)
	}

	draft := publisher.EpisodeDraft{
		AudioPath:     audioPath,
		Title:         meta.Title,
		Description:   r.cfg.Publisher.EpisodeDescription,
		ThumbnailPath: meta.ThumbnailPath,
	}
	if err := r.deps.Publisher.Publish(ctx, draft); err != nil {
		return OutcomeUploadFailed, fmt.Errorf("publish episode: %w", err)
	}

	r.logger.Info("episode published", "video_id", videoID, "title", meta.Title)
	return OutcomePublished, nil
}

// resolveWindow extracts the chapter window, applying the configured policy
// when the description yields no markers.
func (r *Runner) resolveWindow(meta download.Metadata) (chapters.Window, error) {
	window, err := r.deps.Extractor.Extract(meta.Description, meta.Duration)
	if err == nil {
		return window, nil
	}
	if !errors.Is(err, chapters.ErrNoChapter) {
		return chapters.Window{}, fmt.Errorf("extract chapter window: %w", err)
	}

	switch r.cfg.Chapters.MissingPolicy {
	case config.MissingPolicyFullDuration:
		r.logger.Warn("no chapter markers, using full duration", "video_id", meta.VideoID)
		return chapters.Window{Start: 0, End: meta.Duration}, nil
	default:
		return chapters.Window{}, fmt.Errorf("no chapter markers in %s: %w", meta.VideoID, err)
	}
}
