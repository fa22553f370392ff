package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"bgswatch/internal/conflict"
)

func conflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List the undecided conflicts being tracked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			db, err := openStore(ctx, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close(context.Background())

			rows, err := db.ListConflicts(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	}
	cmd.AddCommand(conflictsReconcileCmd())
	return cmd
}

type transitionOutput struct {
	System  string `json:"system"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

func conflictsReconcileCmd() *cobra.Command {
	var tickID string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile conflicts against one tick and post the resulting notifications",
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

			if tickID == "" {
				if tickID, err = db.LatestTickID(ctx); err != nil {
					return err
				}
				if tickID == "" {
					return fmt.Errorf("no stored events")
				}
			}

			scheduler := conflict.New(conflict.Config{
				Store:    db,
				Notifier: newRouter(cfg, logger),
				Faction:  cfg.Faction,
				Enabled:  true,
				Logger:   logger,
			})
			report, err := scheduler.Reconcile(ctx, tickID)
			if err != nil {
				return err
			}

			out := make([]transitionOutput, 0, len(report.Transitions))
			for _, tr := range report.Transitions {
				item := transitionOutput{System: tr.System, Outcome: tr.Outcome.String()}
				if tr.Err != nil {
					item.Error = tr.Err.Error()
				}
				out = append(out, item)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&tickID, "tick", "", "Tick hash to reconcile (defaults to the latest stored tick)")
	return cmd
}
