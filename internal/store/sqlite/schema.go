package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS event (
		id         TEXT PRIMARY KEY,
		event      TEXT NOT NULL,
		timestamp  TEXT NOT NULL,
		tickid     TEXT NOT NULL DEFAULT '',
		cmdr       TEXT NOT NULL DEFAULT '',
		starsystem TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS conflict_declaration (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
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
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id         TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
		awarding_faction TEXT NOT NULL,
		mission_name     TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS mission_influence (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id     TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
		system_name  TEXT NOT NULL,
		faction_name TEXT NOT NULL,
		influence    TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS market_trade (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id  TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
		kind      TEXT NOT NULL CHECK (kind IN ('buy', 'sell')),
		commodity TEXT NOT NULL DEFAULT '',
		count     INTEGER NOT NULL DEFAULT 0,
		value     INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS combat_zone (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id   TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
		ground     INTEGER NOT NULL DEFAULT 0,
		cz_type    TEXT NOT NULL,
		faction    TEXT NOT NULL DEFAULT '',
		settlement TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS faction_presence (
		system_name  TEXT NOT NULL,
		faction_name TEXT NOT NULL,
		influence    REAL NOT NULL DEFAULT 0,
		states       TEXT NOT NULL DEFAULT '',
		updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
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
		updated_at   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tick_state (
		id          INTEGER PRIMARY KEY CHECK (id = 1),
		tick        TEXT NOT NULL,
		observed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_event_tickid ON event (tickid);
	CREATE INDEX IF NOT EXISTS idx_event_timestamp ON event (timestamp);
	CREATE INDEX IF NOT EXISTS idx_conflict_declaration_event ON conflict_declaration (event_id);
	CREATE INDEX IF NOT EXISTS idx_mission_completed_event ON mission_completed (event_id);
	CREATE INDEX IF NOT EXISTS idx_mission_influence_event ON mission_influence (event_id);
	CREATE INDEX IF NOT EXISTS idx_market_trade_event ON market_trade (event_id);
	CREATE INDEX IF NOT EXISTS idx_combat_zone_event ON combat_zone (event_id);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
