package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sermoncast/internal/ledger"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var markPublished bool
	var reason string

	cmd := &cobra.Command{
		Use:   "resolve <video-id>",
		Short: "Resolve an attempt that was interrupted mid-publish",
		Long: "A run killed between draft creation and save leaves the ledger in an " +
			"ambiguous attempting state, and later runs refuse to touch that video. " +
			"After checking the authoring dashboard by hand, mark the video as " +
			"published or failed so automation can continue.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			videoID := args[0]
			outcome := ledger.Failed(reason)
			if markPublished {
				outcome = ledger.Published()
			} else if reason == "" {
				outcome = ledger.Failed("resolved manually")
			}

			if err := store.Resolve(cmd.Context(), videoID, outcome); err != nil {
				return fmt.Errorf("resolve %s: %w", videoID, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s as %s\n", videoID, outcome.Status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&markPublished, "published", false, "Mark the video as published (episode exists upstream)")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason recorded with a failed resolution")
	return cmd
}
