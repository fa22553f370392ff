// Package mcp exposes read-only operator tools over the Model Context
// Protocol: the stored conflict rows, the tick state, leaderboards and a
// preview of the next summary.
package mcp

import (
	"context"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"bgswatch/internal/shoutout"
	"bgswatch/internal/store"
)

type Querier interface {
	LatestTickID(ctx context.Context) (string, error)
	LastTick(ctx context.Context) (store.TickState, bool, error)
	ListConflicts(ctx context.Context) ([]store.ConflictState, error)
	Leaders(ctx context.Context, tickID string, metric store.Metric, limit int) ([]store.LeaderRow, error)
	TickIDBefore(ctx context.Context, before time.Time) (string, error)
}

type Previewer interface {
	Build(ctx context.Context, tickID string) shoutout.Summary
}

type Server struct {
	db      Querier
	preview Previewer
	mcp     *sdk.Server
}

func NewServer(db Querier, preview Previewer, version string) *Server {
	s := &Server{
		db:      db,
		preview: preview,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "bgswatch",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
