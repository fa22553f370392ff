package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// The event tables belong to the journal ingestion path; they are created
	// here too so a fresh database can be queried before ingestion has run.
	ddl := `
CREATE TABLE IF NOT EXISTS event (
    id         TEXT PRIMARY KEY,
    event      TEXT NOT NULL,
    timestamp  TIMESTAMPTZ NOT NULL,
    tickid     TEXT NOT NULL DEFAULT '',
    cmdr       TEXT NOT NULL DEFAULT '',
    starsystem TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS conflict_declaration (
    id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    event_id    TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    system_name TEXT NOT NULL,
    war_type    TEXT NOT NULL DEFAULT '',
    faction1    TEXT NOT NULL,
    stake1      TEXT NOT NULL DEFAULT '',
    won_days1   INTEGER NOT NULL DEFAULT 0,
    faction2    TEXT NOT NULL,
    stake2      TEXT NOT NULL DEFAULT '',
    won_days2   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS mission_completed (
    id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    event_id         TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    awarding_faction TEXT NOT NULL,
    mission_name     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS mission_influence (
    id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    event_id     TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    system_name  TEXT NOT NULL,
    faction_name TEXT NOT NULL,
    influence    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS market_trade (
    id        BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    event_id  TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    kind      TEXT NOT NULL CHECK (kind IN ('buy', 'sell')),
    commodity TEXT NOT NULL DEFAULT '',
    count     INTEGER NOT NULL DEFAULT 0,
    value     BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS combat_zone (
    id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    event_id   TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    ground     BOOLEAN NOT NULL DEFAULT FALSE,
    cz_type    TEXT NOT NULL,
    faction    TEXT NOT NULL DEFAULT '',
    settlement TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS faction_presence (
    system_name  TEXT NOT NULL,
    faction_name TEXT NOT NULL,
    influence    DOUBLE PRECISION NOT NULL DEFAULT 0,
    states       TEXT NOT NULL DEFAULT '',
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (system_name, faction_name)
);

CREATE TABLE IF NOT EXISTS conflict_state (
    system_name  TEXT PRIMARY KEY,
    faction1     TEXT NOT NULL,
    faction2     TEXT NOT NULL,
    war_type     TEXT NOT NULL DEFAULT '',
    won_days1    INTEGER NOT NULL DEFAULT 0 CHECK (won_days1 BETWEEN 0 AND 3),
    won_days2    INTEGER NOT NULL DEFAULT 0 CHECK (won_days2 BETWEEN 0 AND 3),
    stake1       TEXT NOT NULL DEFAULT '',
    stake2       TEXT NOT NULL DEFAULT '',
    last_tick_id TEXT NOT NULL DEFAULT '',
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tick_state (
    id          INTEGER PRIMARY KEY CHECK (id = 1),
    tick        TEXT NOT NULL,
    observed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_tickid ON event (tickid);
CREATE INDEX IF NOT EXISTS idx_event_timestamp ON event (timestamp);
CREATE INDEX IF NOT EXISTS idx_conflict_declaration_event ON conflict_declaration (event_id);
CREATE INDEX IF NOT EXISTS idx_mission_completed_event ON mission_completed (event_id);
CREATE INDEX IF NOT EXISTS idx_mission_influence_event ON mission_influence (event_id);
CREATE INDEX IF NOT EXISTS idx_market_trade_event ON market_trade (event_id);
CREATE INDEX IF NOT EXISTS idx_combat_zone_event ON combat_zone (event_id);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
