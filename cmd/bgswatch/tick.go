package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"bgswatch/internal/tick"
)

type tickReport struct {
	Current      string `json:"current"`
	Observed     string `json:"observed,omitempty"`
	LatestTickID string `json:"latest_tick_id,omitempty"`
	Changed      bool   `json:"changed"`
}

func tickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Fetch the current tick and compare it with the last observed one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			fetcher := tick.NewFetcher(&http.Client{}, cfg.Tick.URL, cfg.Tick.Path, cfg.Tick.Timeout)
			current, err := fetcher.Fetch(ctx)
			if err != nil {
				return err
			}

			db, err := openStore(ctx, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close(context.Background())

			report := tickReport{Current: current}
			state, ok, err := db.LastTick(ctx)
			if err != nil {
				return err
			}
			if ok {
				report.Observed = state.Tick
			}
			report.Changed = report.Observed != current

			if report.LatestTickID, err = db.LatestTickID(ctx); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}
