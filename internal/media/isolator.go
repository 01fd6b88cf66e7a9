package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"sermoncast/internal/chapters"
	"sermoncast/internal/config"
	"sermoncast/internal/services"
)

// ErrTrimValidation reports a produced artifact whose duration strays too far
// from the requested window. The artifact is removed before returning.
var ErrTrimValidation = errors.New("trimmed artifact failed duration validation")

// Isolator cuts a chapter window out of raw media and validates the result.
type Isolator struct {
	transcoder Transcoder
	prober     Prober
	tolerance  float64
	retain     bool
	timeout    time.Duration
	logger     *slog.Logger
}

// NewIsolator wires an Isolator from configuration and its collaborators.
func NewIsolator(cfg *config.Config, transcoder Transcoder, prober Prober, logger *slog.Logger) *Isolator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Isolator{
		transcoder: transcoder,
		prober:     prober,
		tolerance:  cfg.Audio.ToleranceSeconds,
		retain:     cfg.Audio.RetainIntermediates,
		timeout:    time.Duration(cfg.Audio.TrimTimeout) * time.Second,
		logger:     logger,
	}
}

// Isolate trims the window out of inputPath into outputPath, then probes the
// artifact and rejects it when its duration differs from the window by more
// than the configured tolerance. On success the raw input is removed unless
// intermediates are retained.
func (i *Isolator) Isolate(ctx context.Context, inputPath, outputPath string, window chapters.Window) error {
	if window.Duration() <= 0 {
		return services.Wrap(services.ErrValidation, "isolate", "isolate segment",
			fmt.Sprintf("window %d-%d has no duration", window.Start, window.End), nil)
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	i.logger.Info("isolating audio segment",
		"input", inputPath,
		"output", outputPath,
		"start_seconds", window.Start,
		"duration_seconds", window.Duration())

	if err := i.transcoder.Trim(ctx, inputPath, outputPath, window.Start, window.Duration()); err != nil {
		return err
	}

	produced, err := i.prober.Duration(ctx, outputPath)
	if err != nil {
		return err
	}
	drift := math.Abs(produced - float64(window.Duration()))
	if drift > i.tolerance {
		if removeErr := os.Remove(outputPath); removeErr != nil {
			i.logger.Warn("could not remove invalid artifact", "path", outputPath, "error", removeErr)
		}
		return services.Wrap(ErrTrimValidation, "isolate", "validate artifact",
			fmt.Sprintf("expected %ds, produced %.2fs (tolerance %.2fs)", window.Duration(), produced, i.tolerance), nil)
	}

	if !i.retain {
		if err := os.Remove(inputPath); err != nil {
			i.logger.Warn("could not remove raw media", "path", inputPath, "error", err)
		}
	}

	i.logger.Info("audio segment ready", "output", outputPath, "duration_seconds", produced)
	return nil
}
