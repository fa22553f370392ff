package sqlite

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
	SELECT system_name, war_type, faction1, stake1, won_days1, faction2, stake2, won_days2
	FROM (
		SELECT cd.*, ROW_NUMBER() OVER (
			PARTITION BY cd.system_name
			ORDER BY e.timestamp DESC, cd.id DESC
		) AS rn
		FROM conflict_declaration cd
		JOIN event e ON e.id = cd.event_id
		WHERE e.tickid = ?
		  AND (cd.faction1 = ? COLLATE NOCASE OR cd.faction2 = ? COLLATE NOCASE)
	)
	WHERE rn = 1
	ORDER BY system_name
	`

	rows, err := c.db.QueryContext(ctx, query, tickID, faction, faction)
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

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing conflicts: %w", err)
	}
	defer rows.Close()

	conflicts := []store.ConflictState{}
	for rows.Next() {
		var s store.ConflictState
		var updatedAt string
		err := rows.Scan(&s.System, &s.Faction1, &s.Faction2, &s.WarType, &s.WonDays1, &s.WonDays2, &s.Stake1, &s.Stake2, &s.LastTickID, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning conflict: %w", err)
		}
		if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("scanning conflict %s: %w", s.System, err)
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
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (system_name) DO UPDATE SET
		faction1 = excluded.faction1,
		faction2 = excluded.faction2,
		war_type = excluded.war_type,
		won_days1 = excluded.won_days1,
		won_days2 = excluded.won_days2,
		stake1 = excluded.stake1,
		stake2 = excluded.stake2,
		last_tick_id = excluded.last_tick_id,
		updated_at = excluded.updated_at
	`

	_, err := c.db.ExecContext(ctx, query,
		s.System,
		s.Faction1,
		s.Faction2,
		s.WarType,
		s.WonDays1,
		s.WonDays2,
		s.Stake1,
		s.Stake2,
		s.LastTickID,
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting conflict %s: %w", s.System, err)
	}
	return nil
}

func (c *Client) TouchConflict(ctx context.Context, system, tickID string, at time.Time) error {
	_, err := c.db.ExecContext(ctx,
		"UPDATE conflict_state SET last_tick_id = ?, updated_at = ? WHERE system_name = ?",
		tickID, formatTime(at), system,
	)
	if err != nil {
		return fmt.Errorf("touching conflict %s: %w", system, err)
	}
	return nil
}

func (c *Client) DeleteConflict(ctx context.Context, system string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM conflict_state WHERE system_name = ?", system)
	if err != nil {
		return fmt.Errorf("deleting conflict %s: %w", system, err)
	}
	return nil
}
