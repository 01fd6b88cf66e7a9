package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"sermoncast/internal/config"
	"sermoncast/internal/services"
)

const defaultRetryBackoff = 3 * time.Second

// Guard owns one authoring session per Publish call and guarantees the
// session is torn down on every exit path.
type Guard struct {
	cfg          *config.Config
	logger       *slog.Logger
	newBrowser   func(ctx context.Context) (Browser, error)
	sleep        func(time.Duration)
	rng          *rand.Rand
	retryBackoff time.Duration
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithBrowser fixes the browser instance instead of launching one per run.
func WithBrowser(b Browser) GuardOption {
	return func(g *Guard) {
		g.newBrowser = func(context.Context) (Browser, error) {
			return b, nil
		}
	}
}

// WithSleeper overrides how delays are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) GuardOption {
	return func(g *Guard) {
		if sleeper != nil {
			g.sleep = sleeper
		}
	}
}

// WithRetryBackoff overrides the backoff before a transition's single retry.
func WithRetryBackoff(d time.Duration) GuardOption {
	return func(g *Guard) {
		if d > 0 {
			g.retryBackoff = d
		}
	}
}

// NewGuard constructs a Guard from configuration.
func NewGuard(cfg *config.Config, logger *slog.Logger, opts ...GuardOption) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Guard{
		cfg:          cfg,
		logger:       logger,
		sleep:        time.Sleep,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		retryBackoff: defaultRetryBackoff,
	}
	g.newBrowser = func(ctx context.Context) (Browser, error) {
		return NewSession(ctx, cfg, logger)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Publish drives the draft through the authoring flow. The session is closed
// exactly once before Publish returns, whatever state was reached; close
// failures are logged and never override the flow's error.
func (g *Guard) Publish(ctx context.Context, draft EpisodeDraft) (err error) {
	if err := draft.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "publish", "validate draft", "", err)
	}

	browser, err := g.newBrowser(ctx)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "publish", "start session", "", err)
	}

	current := StateInit
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			g.logger.Warn("session teardown reported error", "error", closeErr, "last_state", current.String())
		}
		g.logger.Info("session closed", "last_state", current.String())
	}()

	steps := []struct {
		to   State
		run  func(context.Context, Browser, EpisodeDraft) error
		skip bool
	}{
		{to: StateLoggedIn, run: g.login},
		{to: StateDraftCreated, run: g.openWizard},
		{to: StateMetadataFilled, run: g.fillMetadata},
		{to: StateAudioUploaded, run: g.uploadAudio},
		{to: StateThumbnailUploaded, run: g.attachThumbnail,
			skip: !g.cfg.Publisher.AttachThumbnail || draft.ThumbnailPath == ""},
		{to: StateSaved, run: g.save},
	}

	for _, step := range steps {
		if step.skip {
			continue
		}
		if !CanTransition(current, step.to) {
			return fmt.Errorf("illegal transition %s -> %s", current, step.to)
		}
		if err := g.runTransition(ctx, current, step.to, func(ctx context.Context) error {
			return step.run(ctx, browser, draft)
		}); err != nil {
			return err
		}
		current = step.to
		g.logger.Info("transition complete", "state", current.String())
	}
	return nil
}

// runTransition executes one transition with at most one retry. Captcha and
// unexpected-UI failures are fatal immediately.
func (g *Guard) runTransition(ctx context.Context, from, to State, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}
	if fatal(err) || ctx.Err() != nil {
		return err
	}
	g.logger.Warn("transition failed, retrying once",
		"from", from.String(), "to", to.String(), "error", err)
	g.sleep(g.retryBackoff)
	return fn(ctx)
}

// pause inserts a randomized human-like delay between remote actions.
func (g *Guard) pause() {
	minDelay := time.Duration(g.cfg.Publisher.ActionDelayMinMs) * time.Millisecond
	maxDelay := time.Duration(g.cfg.Publisher.ActionDelayMaxMs) * time.Millisecond
	delay := minDelay
	if span := maxDelay - minDelay; span > 0 {
		delay += time.Duration(g.rng.Int63n(int64(span) + 1))
	}
	g.sleep(delay)
}

func (g *Guard) login(ctx context.Context, b Browser, _ EpisodeDraft) error {
	pub := g.cfg.Publisher

	if pub.CookieCache {
		if g.resumeFromCookies(ctx, b) {
			g.logger.Info("session restored from cached cookies")
			return nil
		}
	}

	if err := b.Navigate(ctx, pub.BaseURL); err != nil {
		return fmt.Errorf("open landing page: %w", err)
	}
	g.pause()
	if err := b.Click(ctx, selLoginLink); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "login", "login link missing", err)
	}
	g.pause()
	if err := b.Click(ctx, selContinueSpotify); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "login", "continue-with-spotify missing", err)
	}
	g.pause()
	if err := b.SendKeys(ctx, selEmailInput, pub.Email); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "login", "email field missing", err)
	}
	g.pause()
	if err := b.Click(ctx, selContinueButton); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "login", "continue button missing", err)
	}
	g.pause()

	if err := g.checkCaptcha(ctx, b); err != nil {
		return err
	}

	// Some accounts land on a passwordless prompt first.
	if ok, _ := b.Exists(ctx, selPasswordToggle); ok {
		if err := b.Click(ctx, selPasswordToggle); err == nil {
			g.pause()
		}
	}
	if err := b.WaitVisible(ctx, selPasswordInput); err != nil {
		return services.Wrap(ErrLoginFailed, "publish", "login", "password field never appeared", err)
	}
	if err := b.SendKeys(ctx, selPasswordInput, pub.Password); err != nil {
		return services.Wrap(ErrLoginFailed, "publish", "login", "could not enter password", err)
	}
	g.pause()
	if err := b.Click(ctx, selLoginSubmit); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "login", "submit button missing", err)
	}
	g.pause()

	if err := g.checkCaptcha(ctx, b); err != nil {
		return err
	}
	if err := b.WaitVisible(ctx, selDashboardNav); err != nil {
		return services.Wrap(ErrLoginFailed, "publish", "login", "credentials rejected", err)
	}

	if pub.CookieCache {
		g.persistCookies(ctx, b)
	}
	return nil
}

// resumeFromCookies restores a cached cookie jar and probes whether it still
// authenticates. Any failure falls back to the login form.
func (g *Guard) resumeFromCookies(ctx context.Context, b Browser) bool {
	data, err := os.ReadFile(g.cfg.CookiePath())
	if err != nil {
		return false
	}
	if err := b.ImportCookies(ctx, data); err != nil {
		g.logger.Warn("cookie restore failed", "error", err)
		return false
	}
	if err := b.Navigate(ctx, g.cfg.Publisher.BaseURL+wizardPath); err != nil {
		return false
	}
	g.pause()
	ok, err := b.Exists(ctx, selAudioFileInput)
	if err != nil {
		return false
	}
	return ok
}

func (g *Guard) persistCookies(ctx context.Context, b Browser) {
	data, err := b.ExportCookies(ctx)
	if err != nil {
		g.logger.Warn("cookie export failed", "error", err)
		return
	}
	if err := os.WriteFile(g.cfg.CookiePath(), data, 0o600); err != nil {
		g.logger.Warn("cookie cache write failed", "path", g.cfg.CookiePath(), "error", err)
	}
}

func (g *Guard) checkCaptcha(ctx context.Context, b Browser) error {
	ok, err := b.Exists(ctx, selCaptchaFrame)
	if err != nil {
		return nil
	}
	if ok {
		return services.Wrap(ErrCaptchaDetected, "publish", "login", "challenge present on page", nil)
	}
	return nil
}

func (g *Guard) openWizard(ctx context.Context, b Browser, _ EpisodeDraft) error {
	if err := b.Navigate(ctx, g.cfg.Publisher.BaseURL+wizardPath); err != nil {
		return fmt.Errorf("open episode wizard: %w", err)
	}
	g.pause()
	if err := b.WaitVisible(ctx, selAudioFileInput); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "open wizard", "upload control missing", err)
	}
	return nil
}

func (g *Guard) fillMetadata(ctx context.Context, b Browser, draft EpisodeDraft) error {
	if err := b.WaitVisible(ctx, selTitleInput); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "fill metadata", "title field missing", err)
	}
	if err := b.SendKeys(ctx, selTitleInput, draft.Title); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "fill metadata", "could not set title", err)
	}
	g.pause()

	// The description editor needs focus before it accepts keystrokes.
	if err := b.Click(ctx, selDescriptionEditor); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "fill metadata", "description editor missing", err)
	}
	g.pause()
	if err := b.SendKeys(ctx, selDescriptionEditor, draft.Description); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "fill metadata", "could not set description", err)
	}
	g.pause()
	return nil
}

func (g *Guard) uploadAudio(ctx context.Context, b Browser, draft EpisodeDraft) error {
	if ok, _ := b.Exists(ctx, selSelectFileButton); ok {
		if err := b.Click(ctx, selSelectFileButton); err == nil {
			g.pause()
		}
	}
	if err := b.SetFiles(ctx, selAudioFileInput, draft.AudioPath); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "upload audio", "file input rejected path", err)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.Publisher.UploadTimeout)*time.Second)
	defer cancel()
	if err := b.WaitVisible(uploadCtx, selUploadComplete); err != nil {
		timedOut := uploadCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded)
		if timedOut && ctx.Err() == nil {
			return services.Wrap(ErrUploadTimeout, "publish", "upload audio", draft.AudioPath, err)
		}
		return fmt.Errorf("wait for upload: %w", err)
	}
	g.pause()
	return nil
}

func (g *Guard) attachThumbnail(ctx context.Context, b Browser, draft EpisodeDraft) error {
	if err := b.SetFiles(ctx, selThumbnailInput, draft.ThumbnailPath); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "attach thumbnail", "thumbnail input missing", err)
	}
	g.pause()
	return nil
}

func (g *Guard) save(ctx context.Context, b Browser, _ EpisodeDraft) error {
	if g.cfg.Publisher.PublishImmediately {
		return g.publishNow(ctx, b)
	}
	return g.saveDraft(ctx, b)
}

// saveDraft closes the wizard and confirms the save-draft dialog.
func (g *Guard) saveDraft(ctx context.Context, b Browser) error {
	if err := b.Click(ctx, selWizardClose); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "save draft", "close button missing", err)
	}
	g.pause()
	if err := b.Click(ctx, selSaveDraftButton); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "save draft", "save-draft dialog missing", err)
	}
	g.pause()
	g.logger.Info("episode saved as draft")
	return nil
}

// publishNow walks the review step and schedules immediate publication.
func (g *Guard) publishNow(ctx context.Context, b Browser) error {
	if err := b.Click(ctx, selDetailsNext); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "publish now", "next button missing", err)
	}
	g.pause()
	if err := b.WaitVisible(ctx, selPublishNow); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "publish now", "schedule options missing", err)
	}
	if err := b.Click(ctx, selPublishNow); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "publish now", "now option missing", err)
	}
	g.pause()
	if err := b.Click(ctx, selReviewSubmit); err != nil {
		return services.Wrap(ErrUnexpectedUIState, "publish", "publish now", "schedule button missing", err)
	}
	g.pause()
	g.logger.Info("episode published")
	return nil
}
