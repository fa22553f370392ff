package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var faction string
	var dsn string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(faction) == "" {
				return fmt.Errorf("--faction is required")
			}
			if err := runInit(configPath, faction, dsn); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", configPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&faction, "faction", "", "Name of the tracked faction")
	cmd.Flags().StringVar(&dsn, "dsn", "sqlite://bgswatch.db", "Event store DSN")
	return cmd
}

func runInit(path, faction, dsn string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	contents := fmt.Sprintf(`faction: %q
enabled: true

database:
  dsn: %q

tick:
  url: https://elitebgs.app/api/ebgs/v5/ticks
  path: "0.time"
  poll_interval: 5m

shoutout:
  settle_delay: 15m

webhooks:
  bgs: []
  conflict: []
  shoutout: []
  debug: []

log:
  level: info
  format: text
`, faction, dsn)

	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
