package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bgswatch/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "bgswatch",
		Short: "Tick-driven faction notifications for chat webhooks",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the config file")
	root.AddCommand(serveCmd())
	root.AddCommand(initCmd())
	root.AddCommand(initDBCmd())
	root.AddCommand(tickCmd())
	root.AddCommand(conflictsCmd())
	root.AddCommand(previewCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
