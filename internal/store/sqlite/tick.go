package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bgswatch/internal/store"
)

func (c *Client) LatestTickID(ctx context.Context) (string, error) {
	var tickID string
	err := c.db.QueryRowContext(ctx, `
	SELECT tickid FROM event
	WHERE tickid <> ''
	ORDER BY timestamp DESC
	LIMIT 1
	`).Scan(&tickID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying latest tick id: %w", err)
	}
	return tickID, nil
}

func (c *Client) TickIDBefore(ctx context.Context, before time.Time) (string, error) {
	var tickID string
	err := c.db.QueryRowContext(ctx, `
	SELECT tickid FROM event
	WHERE tickid <> ''
	  AND timestamp < ?
	ORDER BY timestamp DESC
	LIMIT 1
	`, formatTime(before)).Scan(&tickID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying tick id before %s: %w", formatTime(before), err)
	}
	return tickID, nil
}

func (c *Client) LastTick(ctx context.Context) (store.TickState, bool, error) {
	var tick, observed string
	err := c.db.QueryRowContext(ctx, "SELECT tick, observed_at FROM tick_state WHERE id = 1").Scan(&tick, &observed)
	if errors.Is(err, sql.ErrNoRows) {
		return store.TickState{}, false, nil
	}
	if err != nil {
		return store.TickState{}, false, fmt.Errorf("querying last tick: %w", err)
	}
	observedAt, err := parseTime(observed)
	if err != nil {
		return store.TickState{}, false, fmt.Errorf("querying last tick: %w", err)
	}
	return store.TickState{Tick: tick, ObservedAt: observedAt}, true, nil
}

func (c *Client) SaveTick(ctx context.Context, state store.TickState) error {
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO tick_state (id, tick, observed_at)
	VALUES (1, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		tick = excluded.tick,
		observed_at = excluded.observed_at
	`, state.Tick, formatTime(state.ObservedAt))
	if err != nil {
		return fmt.Errorf("saving tick: %w", err)
	}
	return nil
}
