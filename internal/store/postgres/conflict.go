package postgres

import (
	"context"
	"fmt"
	"time"

	"bgswatch/internal/store"
)

// ConflictDeclarations returns, per system, the latest conflict recorded in
// tickID that involves faction on either side.
func (c *Client) ConflictDeclarations(ctx context.Context, tickID, faction string) ([]store.ConflictDeclaration, error) {
	query := `
SELECT DISTINCT ON (cd.system_name)
    cd.system_name, cd.war_type,
    cd.faction1, cd.stake1, cd.won_days1,
    cd.faction2, cd.stake2, cd.won_days2
FROM conflict_declaration cd
JOIN event e ON e.id = cd.event_id
WHERE e.tickid = $1
  AND (lower(cd.faction1) = lower($2) OR lower(cd.faction2) = lower($2))
ORDER BY cd.system_name, e.timestamp DESC, cd.id DESC
`

	rows, err := c.pool.Query(ctx, query, tickID, faction)
	if err != nil {
		return nil, fmt.Errorf("querying conflict declarations: %w", err)
	}
	defer rows.Close()

	var declarations []store.ConflictDeclaration
	for rows.Next() {
		var d store.ConflictDeclaration
		if err := rows.Scan(&d.System, &d.WarType, &d.Faction1, &d.Stake1, &d.WonDays1, &d.Faction2, &d.Stake2, &d.WonDays2); err != nil {
			return nil, fmt.Errorf("scanning conflict declaration: %w", err)
		}
		declarations = append(declarations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conflict declarations: %w", err)
	}

	return declarations, nil
}

func (c *Client) ListConflicts(ctx context.Context) ([]store.ConflictState, error) {
	query := `
SELECT system_name, faction1, faction2, war_type, won_days1, won_days2, stake1, stake2, last_tick_id, updated_at
FROM conflict_state
ORDER BY system_name
`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing conflicts: %w", err)
	}
	defer rows.Close()

	conflicts := []store.ConflictState{}
	for rows.Next() {
		var s store.ConflictState
		err := rows.Scan(&s.System, &s.Faction1, &s.Faction2, &s.WarType, &s.WonDays1, &s.WonDays2, &s.Stake1, &s.Stake2, &s.LastTickID, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning conflict: %w", err)
		}
		conflicts = append(conflicts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conflicts: %w", err)
	}

	return conflicts, nil
}

func (c *Client) UpsertConflict(ctx context.Context, s store.ConflictState) error {
	query := `
INSERT INTO conflict_state (system_name, faction1, faction2, war_type, won_days1, won_days2, stake1, stake2, last_tick_id, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (system_name) DO UPDATE SET
    faction1 = EXCLUDED.faction1,
    faction2 = EXCLUDED.faction2,
    war_type = EXCLUDED.war_type,
    won_days1 = EXCLUDED.won_days1,
    won_days2 = EXCLUDED.won_days2,
    stake1 = EXCLUDED.stake1,
    stake2 = EXCLUDED.stake2,
    last_tick_id = EXCLUDED.last_tick_id,
    updated_at = EXCLUDED.updated_at
`

	_, err := c.pool.Exec(ctx, query,
		s.System,
		s.Faction1,
		s.Faction2,
		s.WarType,
		s.WonDays1,
		s.WonDays2,
		s.Stake1,
		s.Stake2,
		s.LastTickID,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting conflict %s: %w", s.System, err)
	}
	return nil
}

func (c *Client) TouchConflict(ctx context.Context, system, tickID string, at time.Time) error {
	_, err := c.pool.Exec(ctx,
		"UPDATE conflict_state SET last_tick_id = $2, updated_at = $3 WHERE system_name = $1",
		system, tickID, at,
	)
	if err != nil {
		return fmt.Errorf("touching conflict %s: %w", system, err)
	}
	return nil
}

func (c *Client) DeleteConflict(ctx context.Context, system string) error {
	_, err := c.pool.Exec(ctx, "DELETE FROM conflict_state WHERE system_name = $1", system)
	if err != nil {
		return fmt.Errorf("deleting conflict %s: %w", system, err)
	}
	return nil
}
