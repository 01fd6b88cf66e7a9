package pipeline

import (
	"context"
	"log/slog"
	"time"

	"sermoncast/internal/services"
)

// retryPolicy bounds in-run retries of transient failures. Backoff doubles
// from the base until it hits the cap.
type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	sleep     func(time.Duration)
}

func (p retryPolicy) run(ctx context.Context, logger *slog.Logger, stage string, fn func(context.Context) error) error {
	delay := p.baseDelay
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !services.IsRetryable(err) || ctx.Err() != nil || attempt == p.attempts {
			return err
		}
		logger.Warn("stage failed, backing off",
			"stage", stage, "attempt", attempt, "delay", delay.String(), "error", err)
		p.sleep(delay)
		delay *= 2
		if delay > p.maxDelay {
			delay = p.maxDelay
		}
	}
	return err
}
