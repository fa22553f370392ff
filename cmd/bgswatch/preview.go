package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bgswatch/internal/shoutout"
)

func previewCmd() *cobra.Command {
	var tickID string
	var before string
	var send bool
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Build the tick summaries and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			db, err := openStore(ctx, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close(context.Background())

			switch {
			case tickID != "":
			case before != "":
				at, err := time.Parse(time.RFC3339, before)
				if err != nil {
					return fmt.Errorf("--before must be an RFC3339 time: %w", err)
				}
				if tickID, err = db.TickIDBefore(ctx, at); err != nil {
					return err
				}
			default:
				if tickID, err = db.LatestTickID(ctx); err != nil {
					return err
				}
			}
			if tickID == "" {
				return fmt.Errorf("no stored events for that tick")
			}

			scheduler := shoutout.New(shoutout.Config{
				Store:    db,
				Notifier: newRouter(cfg, logger),
				Faction:  cfg.Faction,
				Enabled:  true,
				Logger:   logger,
			})
			summary := scheduler.Build(ctx, tickID)

			if send {
				scheduler.Dispatch(ctx, summary)
			}
			return printSummary(cmd, summary)
		},
	}
	cmd.Flags().StringVar(&tickID, "tick", "", "Tick hash to summarise")
	cmd.Flags().StringVar(&before, "before", "", "Summarise the tick that ended at this RFC3339 time")
	cmd.Flags().BoolVar(&send, "send", false, "Also post the summaries to the configured webhooks")
	cmd.MarkFlagsMutuallyExclusive("tick", "before")
	return cmd
}

func printSummary(cmd *cobra.Command, summary shoutout.Summary) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tick %s\n", summary.TickID)
	if summary.Empty() {
		fmt.Fprintln(out, shoutout.NoActivityMessage)
		return nil
	}
	for _, job := range summary.Jobs {
		fmt.Fprintf(out, "\n== %s → %s\n", job.Name, job.Category)
		if job.Err != nil {
			fmt.Fprintf(out, "error: %v\n", job.Err)
			continue
		}
		if len(job.Embeds) == 0 {
			fmt.Fprintln(out, "(nothing)")
			continue
		}
		for _, embed := range job.Embeds {
			fmt.Fprintf(out, "%s\n\n", embed.Description)
		}
	}
	return nil
}
