package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the event store and notification tables",
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

			if err := db.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensuring schema: %w", err)
			}
			cmd.Println("schema ready")
			return nil
		},
	}
}
