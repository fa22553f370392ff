package main

import (
	"context"

	"github.com/spf13/cobra"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"bgswatch/internal/mcp"
	"bgswatch/internal/shoutout"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the read-only operator MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runMCP,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
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

	// Logs go to stderr; stdout carries the protocol.
	preview := shoutout.New(shoutout.Config{
		Store:   db,
		Faction: cfg.Faction,
		Enabled: true,
		Logger:  newLogger(cfg),
	})

	server := mcp.NewServer(db, preview, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
