package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bgswatch/internal/config"
	"bgswatch/internal/discord"
	"bgswatch/internal/store"
	"bgswatch/internal/store/postgres"
	"bgswatch/internal/store/sqlite"
)

// loadConfig reads --config. The default path may be absent so a deployment
// can be configured from BGSWATCH_* variables alone.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configPath, !cmd.Flags().Changed("config"))
}

func openStore(ctx context.Context, dsn string) (store.Store, error) {
	if strings.HasPrefix(dsn, "sqlite://") {
		return sqlite.New(ctx, dsn)
	}
	return postgres.New(ctx, dsn)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return cfg.Log.Logger(os.Stderr)
}

func newRouter(cfg *config.Config, logger *slog.Logger) *discord.Router {
	client := discord.NewClient(&http.Client{}, cfg.Webhooks.Timeout, logger)
	return discord.NewRouter(client, map[discord.Category][]string{
		discord.CategoryBGS:      cfg.Webhooks.BGS,
		discord.CategoryConflict: cfg.Webhooks.Conflict,
		discord.CategoryShoutout: cfg.Webhooks.Shoutout,
		discord.CategoryDebug:    cfg.Webhooks.Debug,
	}, logger)
}
