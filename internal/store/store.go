package store

import (
	"context"
	"strings"
	"time"
)

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	LatestTickID(ctx context.Context) (string, error)
	TickIDBefore(ctx context.Context, before time.Time) (string, error)

	ConflictDeclarations(ctx context.Context, tickID, faction string) ([]ConflictDeclaration, error)
	ListConflicts(ctx context.Context) ([]ConflictState, error)
	UpsertConflict(ctx context.Context, c ConflictState) error
	TouchConflict(ctx context.Context, system, tickID string, at time.Time) error
	DeleteConflict(ctx context.Context, system string) error

	Leaders(ctx context.Context, tickID string, metric Metric, limit int) ([]LeaderRow, error)
	CombatZones(ctx context.Context, tickID string, ground bool) ([]CombatZoneCount, error)
	FactionPresence(ctx context.Context, systems []string) ([]FactionPresence, error)

	LastTick(ctx context.Context) (TickState, bool, error)
	SaveTick(ctx context.Context, state TickState) error

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// SplitStates parses the comma-separated state list stored with a faction
// presence row.
func SplitStates(raw string) []string {
	states := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		states = append(states, part)
	}
	return states
}
