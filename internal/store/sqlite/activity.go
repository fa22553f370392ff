package sqlite

import (
	"context"
	"fmt"
	"strings"

	"bgswatch/internal/store"
)

var leaderQueries = map[store.Metric]string{
	store.MetricInfluence: `
	SELECT mi.system_name, mi.faction_name, e.cmdr, SUM(length(mi.influence)) AS total
	FROM mission_influence mi
	JOIN event e ON e.id = mi.event_id
	WHERE e.tickid = ? AND e.cmdr <> ''
	GROUP BY mi.system_name, mi.faction_name, e.cmdr
	HAVING SUM(length(mi.influence)) > 0
	ORDER BY total DESC, e.cmdr
	LIMIT ?
	`,
	store.MetricMissions: `
	SELECT e.starsystem, mc.awarding_faction, e.cmdr, COUNT(*) AS total
	FROM mission_completed mc
	JOIN event e ON e.id = mc.event_id
	WHERE e.tickid = ? AND e.cmdr <> ''
	GROUP BY e.starsystem, mc.awarding_faction, e.cmdr
	ORDER BY total DESC, e.cmdr
	LIMIT ?
	`,
	store.MetricMarket: `
	SELECT e.starsystem, '', e.cmdr, SUM(mt.value) AS total
	FROM market_trade mt
	JOIN event e ON e.id = mt.event_id
	WHERE e.tickid = ? AND e.cmdr <> ''
	GROUP BY e.starsystem, e.cmdr
	HAVING SUM(mt.value) > 0
	ORDER BY total DESC, e.cmdr
	LIMIT ?
	`,
	store.MetricCombatZones: `
	SELECT e.starsystem, cz.faction, e.cmdr, COUNT(*) AS total
	FROM combat_zone cz
	JOIN event e ON e.id = cz.event_id
	WHERE e.tickid = ? AND e.cmdr <> ''
	GROUP BY e.starsystem, cz.faction, e.cmdr
	ORDER BY total DESC, e.cmdr
	LIMIT ?
	`,
}

func (c *Client) Leaders(ctx context.Context, tickID string, metric store.Metric, limit int) ([]store.LeaderRow, error) {
	query, ok := leaderQueries[metric]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", metric)
	}

	rows, err := c.db.QueryContext(ctx, query, tickID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying %s leaders: %w", metric, err)
	}
	defer rows.Close()

	var leaders []store.LeaderRow
	for rows.Next() {
		var r store.LeaderRow
		if err := rows.Scan(&r.System, &r.Faction, &r.Cmdr, &r.Value); err != nil {
			return nil, fmt.Errorf("scanning %s leader: %w", metric, err)
		}
		leaders = append(leaders, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s leaders: %w", metric, err)
	}

	return leaders, nil
}

func (c *Client) CombatZones(ctx context.Context, tickID string, ground bool) ([]store.CombatZoneCount, error) {
	query := `
	SELECT e.starsystem, cz.settlement, cz.cz_type, e.cmdr, COUNT(*) AS total
	FROM combat_zone cz
	JOIN event e ON e.id = cz.event_id
	WHERE e.tickid = ? AND cz.ground = ? AND e.cmdr <> ''
	GROUP BY e.starsystem, cz.settlement, cz.cz_type, e.cmdr
	ORDER BY e.starsystem, cz.settlement, cz.cz_type, total DESC, e.cmdr
	`

	groundFlag := 0
	if ground {
		groundFlag = 1
	}

	rows, err := c.db.QueryContext(ctx, query, tickID, groundFlag)
	if err != nil {
		return nil, fmt.Errorf("querying combat zones: %w", err)
	}
	defer rows.Close()

	var counts []store.CombatZoneCount
	for rows.Next() {
		var cz store.CombatZoneCount
		if err := rows.Scan(&cz.System, &cz.Settlement, &cz.Tier, &cz.Cmdr, &cz.Count); err != nil {
			return nil, fmt.Errorf("scanning combat zone: %w", err)
		}
		counts = append(counts, cz)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating combat zones: %w", err)
	}

	return counts, nil
}

func (c *Client) FactionPresence(ctx context.Context, systems []string) ([]store.FactionPresence, error) {
	if len(systems) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(systems))
	args := make([]any, len(systems))
	for i, system := range systems {
		placeholders[i] = "?"
		args[i] = system
	}

	query := fmt.Sprintf(`
	SELECT system_name, faction_name, influence, states, updated_at
	FROM faction_presence
	WHERE system_name IN (%s)
	ORDER BY system_name, influence DESC
	`, strings.Join(placeholders, ", "))

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying faction presence: %w", err)
	}
	defer rows.Close()

	var presence []store.FactionPresence
	for rows.Next() {
		var p store.FactionPresence
		var states, updatedAt string
		if err := rows.Scan(&p.System, &p.Faction, &p.Influence, &states, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning faction presence: %w", err)
		}
		p.States = store.SplitStates(states)
		if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("scanning faction presence: %w", err)
		}
		presence = append(presence, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating faction presence: %w", err)
	}

	return presence, nil
}
