package shoutout

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"bgswatch/internal/discord"
	"bgswatch/internal/fault"
	"bgswatch/internal/store"
)

type zoneGroup struct {
	system     string
	settlement string
	tiers      map[string][]cmdrCount
}

func groupZones(counts []store.CombatZoneCount, bySettlement bool) []*zoneGroup {
	index := map[string]*zoneGroup{}
	var groups []*zoneGroup

	for _, c := range counts {
		settlement := ""
		if bySettlement {
			settlement = c.Settlement
		}
		key := c.System + "\x00" + settlement
		g, ok := index[key]
		if !ok {
			g = &zoneGroup{system: c.System, settlement: settlement, tiers: map[string][]cmdrCount{}}
			index[key] = g
			groups = append(groups, g)
		}
		tier := strings.ToLower(c.Tier)
		g.tiers[tier] = append(g.tiers[tier], cmdrCount{Cmdr: c.Cmdr, Count: c.Count})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].system != groups[j].system {
			return groups[i].system < groups[j].system
		}
		return groups[i].settlement < groups[j].settlement
	})
	for _, g := range groups {
		for _, list := range g.tiers {
			sort.SliceStable(list, func(i, j int) bool {
				if list[i].Count != list[j].Count {
					return list[i].Count > list[j].Count
				}
				return list[i].Cmdr < list[j].Cmdr
			})
		}
	}
	return groups
}

func renderZones(groups []*zoneGroup, icon string, color int) []discord.Embed {
	embeds := make([]discord.Embed, 0, len(groups))
	for _, g := range groups {
		var b strings.Builder
		fmt.Fprintf(&b, "%s **%s**", icon, g.system)
		if g.settlement != "" {
			fmt.Fprintf(&b, " · %s", g.settlement)
		}

		tiers := make([]string, 0, len(g.tiers))
		for tier := range g.tiers {
			tiers = append(tiers, tier)
		}
		sortTiers(tiers)
		for _, tier := range tiers {
			fmt.Fprintf(&b, "\n**%s**: %s", tierLabel(tier), cmdrList(g.tiers[tier]))
		}

		embeds = append(embeds, discord.Embed{Description: b.String(), Color: color})
	}
	return embeds
}

func (s *Scheduler) buildSpaceZones(ctx context.Context, tickID string) ([]discord.Embed, error) {
	counts, err := s.store.CombatZones(ctx, tickID, false)
	if err != nil {
		return nil, fault.Persistence("loading space combat zones", err)
	}
	return renderZones(groupZones(counts, false), "🚀", discord.ColorWarning), nil
}

func (s *Scheduler) buildGroundZones(ctx context.Context, tickID string) ([]discord.Embed, error) {
	counts, err := s.store.CombatZones(ctx, tickID, true)
	if err != nil {
		return nil, fault.Persistence("loading ground combat zones", err)
	}
	return renderZones(groupZones(counts, true), "🪖", discord.ColorWarning), nil
}
