package shoutout

import (
	"context"
	"fmt"
	"strings"

	"bgswatch/internal/discord"
	"bgswatch/internal/fault"
	"bgswatch/internal/store"
)

// TopN is the number of rows in each BGS section.
const TopN = 5

type section struct {
	metric store.Metric
	title  string
}

var bgsSections = []section{
	{store.MetricInfluence, "📈 **Top influence gained**"},
	{store.MetricMissions, "📜 **Top missions completed**"},
	{store.MetricMarket, "💰 **Top market volume**"},
	{store.MetricCombatZones, "🎯 **Top combat zones**"},
}

func presenceKey(system, faction string) string {
	return system + "\x00" + strings.ToLower(faction)
}

// buildBGS renders one embed per non-empty leaderboard. Rows are annotated
// with the live influence and states of their faction in their system; rows
// without a faction (market) use the tracked faction. A failed snapshot
// lookup drops the annotations but keeps the leaderboards.
func (s *Scheduler) buildBGS(ctx context.Context, tickID string) ([]discord.Embed, error) {
	leaders := make(map[store.Metric][]store.LeaderRow, len(bgsSections))
	seen := map[string]bool{}
	var systems []string

	for _, sec := range bgsSections {
		rows, err := s.store.Leaders(ctx, tickID, sec.metric, TopN)
		if err != nil {
			return nil, fault.Persistence(fmt.Sprintf("loading %s leaders", sec.metric), err)
		}
		leaders[sec.metric] = rows
		for _, row := range rows {
			if !seen[row.System] {
				seen[row.System] = true
				systems = append(systems, row.System)
			}
		}
	}

	presence := map[string]store.FactionPresence{}
	if len(systems) > 0 {
		snapshot, err := s.store.FactionPresence(ctx, systems)
		if err != nil {
			s.logger.Warn("faction snapshot lookup failed", "tick_id", tickID, "kind", fault.KindPersistence, "error", err)
		}
		for _, p := range snapshot {
			presence[presenceKey(p.System, p.Faction)] = p
		}
	}

	var embeds []discord.Embed
	for _, sec := range bgsSections {
		rows := leaders[sec.metric]
		if len(rows) == 0 {
			continue
		}

		var b strings.Builder
		b.WriteString(sec.title)
		for i, row := range rows {
			faction := row.Faction
			if faction == "" {
				faction = s.faction
			}

			p, annotated := presence[presenceKey(row.System, faction)]
			label := row.Faction
			if label == "" && annotated {
				label = p.Faction
			}

			fmt.Fprintf(&b, "\n%d. **%s** · %s", i+1, row.Cmdr, row.System)
			if label != "" {
				fmt.Fprintf(&b, " · %s", label)
			}
			if annotated {
				fmt.Fprintf(&b, " %s", s.format.presence(p))
			}
			fmt.Fprintf(&b, " · %s", s.format.metricValue(sec.metric, row.Value))
		}

		embeds = append(embeds, discord.Embed{Description: b.String(), Color: discord.ColorInfo})
	}

	return embeds, nil
}
