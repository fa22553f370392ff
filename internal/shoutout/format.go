package shoutout

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bgswatch/internal/store"
)

// tierOrder lists combat zone tiers from hardest to easiest.
var tierOrder = []string{"high", "medium", "low"}

func tierRank(tier string) int {
	for i, t := range tierOrder {
		if t == tier {
			return i
		}
	}
	return len(tierOrder)
}

func tierLabel(tier string) string {
	if tier == "" {
		return "Unknown"
	}
	return strings.ToUpper(tier[:1]) + tier[1:]
}

// sortTiers orders tiers high, medium, low, then anything unrecognised
// alphabetically.
func sortTiers(tiers []string) {
	sort.SliceStable(tiers, func(i, j int) bool {
		ri, rj := tierRank(tiers[i]), tierRank(tiers[j])
		if ri != rj {
			return ri < rj
		}
		return tiers[i] < tiers[j]
	})
}

type formatter struct {
	printer *message.Printer
}

func newFormatter(tag language.Tag) formatter {
	return formatter{printer: message.NewPrinter(tag)}
}

func (f formatter) number(n int64) string {
	return f.printer.Sprintf("%d", n)
}

func (f formatter) percent(fraction float64) string {
	return f.printer.Sprintf("%.1f%%", fraction*100)
}

func (f formatter) metricValue(metric store.Metric, v int64) string {
	switch metric {
	case store.MetricInfluence:
		return "+" + f.number(v)
	case store.MetricMarket:
		return f.number(v) + " cr"
	case store.MetricMissions:
		if v == 1 {
			return "1 mission"
		}
		return f.number(v) + " missions"
	case store.MetricCombatZones:
		if v == 1 {
			return "1 zone"
		}
		return f.number(v) + " zones"
	default:
		return f.number(v)
	}
}

func (f formatter) presence(p store.FactionPresence) string {
	parts := []string{f.percent(p.Influence)}
	if len(p.States) > 0 {
		parts = append(parts, strings.Join(p.States, ", "))
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " · "))
}

type cmdrCount struct {
	Cmdr  string
	Count int
}

func cmdrList(counts []cmdrCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s ×%d", c.Cmdr, c.Count))
	}
	return strings.Join(parts, ", ")
}
