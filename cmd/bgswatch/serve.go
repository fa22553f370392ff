package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bgswatch/internal/conflict"
	"bgswatch/internal/shoutout"
	"bgswatch/internal/tick"
	"bgswatch/internal/tickbus"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Watch the tick and post notifications until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
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

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	router := newRouter(cfg, logger)
	bus := tickbus.New()

	// Both schedulers subscribe before the monitor can publish.
	conflictSignals := bus.Subscribe()
	defer conflictSignals.Close()
	shoutoutSignals := bus.Subscribe()
	defer shoutoutSignals.Close()

	conflicts := conflict.New(conflict.Config{
		Store:    db,
		Notifier: router,
		Faction:  cfg.Faction,
		Enabled:  cfg.Enabled,
		Logger:   logger.With("component", "conflict"),
	})
	shoutouts := shoutout.New(shoutout.Config{
		Store:       db,
		Notifier:    router,
		Faction:     cfg.Faction,
		Enabled:     cfg.Enabled,
		SettleDelay: cfg.Shoutout.SettleDelay,
		Logger:      logger.With("component", "shoutout"),
	})
	monitor := tick.NewMonitor(tick.Config{
		Source:    tick.NewFetcher(&http.Client{}, cfg.Tick.URL, cfg.Tick.Path, cfg.Tick.Timeout),
		Publisher: bus,
		State:     db,
		Interval:  cfg.Tick.PollInterval,
		Logger:    logger.With("component", "tick"),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return conflicts.Run(gctx, conflictSignals)
	})
	g.Go(func() error {
		return shoutouts.Run(gctx, shoutoutSignals)
	})
	g.Go(func() error {
		defer bus.Close()
		return monitor.Run(gctx)
	})

	logger.Info("bgswatch started",
		"faction", cfg.Faction,
		"enabled", cfg.Enabled,
		"poll_interval", cfg.Tick.PollInterval,
		"settle_delay", cfg.Shoutout.SettleDelay,
	)
	err = g.Wait()
	logger.Info("bgswatch stopped")
	return err
}
