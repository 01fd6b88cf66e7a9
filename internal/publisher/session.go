package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"sermoncast/internal/config"
)

// Session owns a chromedp browser context and the exec allocator behind it.
// Close is idempotent and tears down the browser process.
type Session struct {
	ctx           context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	closeOnce     sync.Once
	logger        *slog.Logger
}

// NewSession starts a browser. The supplied context bounds the session's
// lifetime: when it is cancelled the browser dies with it.
func NewSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Publisher.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so startup failures surface
	// here instead of on the first action.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Session{
		ctx:           browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		logger:        logger,
	}, nil
}

// Close releases the browser context and allocator exactly once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Debug("closing browser session")
		s.browserCancel()
		s.allocCancel()
	})
	return nil
}

// run executes actions on the session's browser context while honoring the
// caller's cancellation and deadline.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// queryOpt picks the chromedp query strategy for a selector. XPath selectors
// start with "//"; everything else is CSS.
func queryOpt(selector string) chromedp.QueryOption {
	if strings.HasPrefix(selector, "//") {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// Navigate loads the URL.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

// WaitVisible blocks until the selector is visible.
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitVisible(selector, queryOpt(selector)))
}

// Click clicks the first node matching the selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, queryOpt(selector)))
}

// SendKeys types text into the node matching the selector.
func (s *Session) SendKeys(ctx context.Context, selector, text string) error {
	return s.run(ctx, chromedp.SendKeys(selector, text, queryOpt(selector)))
}

// SetFiles attaches a local file to the matching file input.
func (s *Session) SetFiles(ctx context.Context, selector, path string) error {
	return s.run(ctx, chromedp.SetUploadFiles(selector, []string{path}, queryOpt(selector)))
}

// Exists reports whether at least one node matches without waiting for it.
func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Nodes(selector, &nodes, queryOpt(selector), chromedp.AtLeast(0)))
	if err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

// ExportCookies serializes the browser's cookie jar.
func (s *Session) ExportCookies(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		payload, err = json.Marshal(cookies)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("export cookies: %w", err)
	}
	return payload, nil
}

// ImportCookies loads a previously exported cookie jar into the browser.
func (s *Session) ImportCookies(ctx context.Context, data []byte) error {
	var cookies []*network.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("import cookies: %w", err)
	}

	err := s.run(ctx, network.Enable(), chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			setter := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly).
				WithSameSite(c.SameSite)
			if c.Expires > 0 {
				expires := cdp.TimeSinceEpoch(epochTime(c.Expires))
				setter = setter.WithExpires(&expires)
			}
			if err := setter.Do(ctx); err != nil {
				s.logger.Warn("could not restore cookie", "name", c.Name, "error", err)
			}
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("import cookies: %w", err)
	}
	return nil
}

// epochTime converts the cookie expiry (seconds since epoch, fractional) to
// a time.Time for the devtools protocol.
func epochTime(seconds float64) time.Time {
	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

var _ Browser = (*Session)(nil)
