package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"bgswatch/internal/store"
)

func (c *Client) LatestTickID(ctx context.Context) (string, error) {
	var tickID string
	err := c.pool.QueryRow(ctx, `
SELECT tickid FROM event
WHERE tickid <> ''
ORDER BY timestamp DESC
LIMIT 1
`).Scan(&tickID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying latest tick id: %w", err)
	}
	return tickID, nil
}

func (c *Client) TickIDBefore(ctx context.Context, before time.Time) (string, error) {
	var tickID string
	err := c.pool.QueryRow(ctx, `
SELECT tickid FROM event
WHERE tickid <> ''
  AND timestamp < $1
ORDER BY timestamp DESC
LIMIT 1
`, before).Scan(&tickID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying tick id before %s: %w", before.Format(time.RFC3339), err)
	}
	return tickID, nil
}

func (c *Client) LastTick(ctx context.Context) (store.TickState, bool, error) {
	var state store.TickState
	err := c.pool.QueryRow(ctx, "SELECT tick, observed_at FROM tick_state WHERE id = 1").Scan(&state.Tick, &state.ObservedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.TickState{}, false, nil
	}
	if err != nil {
		return store.TickState{}, false, fmt.Errorf("querying last tick: %w", err)
	}
	return state, true, nil
}

func (c *Client) SaveTick(ctx context.Context, state store.TickState) error {
	_, err := c.pool.Exec(ctx, `
INSERT INTO tick_state (id, tick, observed_at)
VALUES (1, $1, $2)
ON CONFLICT (id) DO UPDATE SET
    tick = EXCLUDED.tick,
    observed_at = EXCLUDED.observed_at
`, state.Tick, state.ObservedAt)
	if err != nil {
		return fmt.Errorf("saving tick: %w", err)
	}
	return nil
}
