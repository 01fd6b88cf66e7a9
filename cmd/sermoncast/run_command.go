package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sermoncast/internal/chapters"
	"sermoncast/internal/download"
	"sermoncast/internal/ledger"
	"sermoncast/internal/logging"
	"sermoncast/internal/media"
	"sermoncast/internal/pipeline"
	"sermoncast/internal/playlist"
	"sermoncast/internal/publisher"
)

// exitError carries a pipeline outcome's exit code through Cobra back to main.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error {
	return e.err
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one publish pipeline invocation",
		Long: "Resolves the newest video in the monitored playlist and, unless the " +
			"ledger already records it as published, downloads it, isolates the " +
			"sermon audio, and creates the podcast episode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			runner := pipeline.New(cfg, logger, pipeline.Deps{
				Fetcher:    playlist.NewFetcher(cfg, logger),
				Downloader: download.NewYtDlpCLI(cfg, logger, download.WithBinary(cfg.Download.Binary)),
				Extractor:  chapters.New(),
				Isolator: media.NewIsolator(cfg,
					media.NewFFmpegCLI(media.WithFFmpegBinary(cfg.FFmpegBinary()), media.WithCodec(cfg.Audio.Codec)),
					media.NewFFprobeCLI(cfg.FFprobeBinary()),
					logger),
				Publisher: publisher.NewGuard(cfg, logger),
				Store:     store,
				Lock:      ledger.NewLock(cfg),
			})

			outcome, runErr := runner.Run(cmd.Context())
			logger.Info("run finished", "outcome", outcome.String(), "exit_code", outcome.ExitCode())
			if code := outcome.ExitCode(); code != 0 {
				return &exitError{code: code, err: runErr}
			}
			return nil
		},
	}
}
