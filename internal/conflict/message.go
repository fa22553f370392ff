package conflict

import (
	"fmt"
	"strings"

	"bgswatch/internal/discord"
	"bgswatch/internal/store"
)

func warLabel(warType string) string {
	switch strings.ToLower(warType) {
	case "civilwar":
		return "Civil war"
	case "election":
		return "Election"
	case "war", "":
		return "War"
	default:
		return strings.ToUpper(warType[:1]) + warType[1:]
	}
}

func score(e Evidence) string {
	return fmt.Sprintf("%s **%d** – **%d** %s", e.Faction1, e.WonDays1, e.WonDays2, e.Faction2)
}

func stakes(e Evidence) string {
	s1, s2 := e.Stake1, e.Stake2
	if s1 == "" {
		s1 = "nothing"
	}
	if s2 == "" {
		s2 = "nothing"
	}
	return fmt.Sprintf("Stakes: %s vs %s", s1, s2)
}

// Message renders the notification for a transition. Unchanged and cleanup
// transitions have none.
func Message(outcome Outcome, stored *store.ConflictState, e Evidence) (discord.Embed, bool) {
	var b strings.Builder

	switch outcome {
	case OutcomeNew:
		fmt.Fprintf(&b, "⚔️ **New conflict in %s**\n", e.System)
		fmt.Fprintf(&b, "%s between **%s** and **%s**\n", warLabel(e.WarType), e.Faction1, e.Faction2)
		b.WriteString(stakes(e))
		return discord.Embed{Description: b.String(), Color: discord.ColorWarning}, true

	case OutcomeDayScored:
		fmt.Fprintf(&b, "📅 **Day scored in %s**\n", e.System)
		for _, line := range advanced(stored, e) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteString(score(e))
		return discord.Embed{Description: b.String(), Color: discord.ColorInfo}, true

	case OutcomeWon:
		fmt.Fprintf(&b, "🏆 **Victory in %s**\n", e.System)
		fmt.Fprintf(&b, "**%s** won the %s against %s\n", e.Faction1, strings.ToLower(warLabel(e.WarType)), e.Faction2)
		b.WriteString(score(e))
		if e.Stake2 != "" {
			fmt.Fprintf(&b, "\nGained: %s", e.Stake2)
		}
		return discord.Embed{Description: b.String(), Color: discord.ColorVictory}, true

	case OutcomeLost:
		fmt.Fprintf(&b, "💀 **Defeat in %s**\n", e.System)
		fmt.Fprintf(&b, "**%s** lost the %s against %s\n", e.Faction1, strings.ToLower(warLabel(e.WarType)), e.Faction2)
		b.WriteString(score(e))
		if e.Stake1 != "" {
			fmt.Fprintf(&b, "\nLost: %s", e.Stake1)
		}
		return discord.Embed{Description: b.String(), Color: discord.ColorDefeat}, true
	}

	return discord.Embed{}, false
}

func advanced(stored *store.ConflictState, e Evidence) []string {
	if stored == nil {
		return nil
	}
	var lines []string
	if e.WonDays1 != stored.WonDays1 {
		lines = append(lines, dayLine(e.Faction1, stored.WonDays1, e.WonDays1))
	}
	if e.WonDays2 != stored.WonDays2 {
		lines = append(lines, dayLine(e.Faction2, stored.WonDays2, e.WonDays2))
	}
	return lines
}

func dayLine(faction string, before, after int) string {
	if after > before {
		return fmt.Sprintf("**%s** won a day (%d/%d)", faction, after, store.WinningDays)
	}
	return fmt.Sprintf("**%s** corrected to %d/%d", faction, after, store.WinningDays)
}
