// Package conflict keeps one persisted row per undecided conflict of the
// tracked faction and announces every transition of that row.
//
// A system moves from absent to active when a conflict is first seen, stays
// active while both sides are below store.WinningDays, and leaves the table
// when either side reaches it (won or lost) or when the current tick carries
// no evidence for it (cleanup).
package conflict

import (
	"strings"

	"bgswatch/internal/store"
)

type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeNew
	OutcomeDayScored
	OutcomeWon
	OutcomeLost
	OutcomeCleanup
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNew:
		return "new"
	case OutcomeDayScored:
		return "day_scored"
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	case OutcomeCleanup:
		return "cleanup"
	default:
		return "unchanged"
	}
}

// Evidence is a conflict declaration seen from the tracked faction's side:
// Faction1 and its counters and stake always belong to the tracked faction.
type Evidence struct {
	System   string
	WarType  string
	Faction1 string
	Faction2 string
	WonDays1 int
	WonDays2 int
	Stake1   string
	Stake2   string
}

// Resolved reports whether either side has reached the winning threshold.
func (e Evidence) Resolved() bool {
	return e.WonDays1 >= store.WinningDays || e.WonDays2 >= store.WinningDays
}

// Normalize orients a declaration so the tracked faction is side 1. The
// second result is false when faction is on neither side.
func Normalize(d store.ConflictDeclaration, faction string) (Evidence, bool) {
	switch {
	case strings.EqualFold(d.Faction1, faction):
		return Evidence{
			System:   d.System,
			WarType:  d.WarType,
			Faction1: d.Faction1,
			Faction2: d.Faction2,
			WonDays1: d.WonDays1,
			WonDays2: d.WonDays2,
			Stake1:   d.Stake1,
			Stake2:   d.Stake2,
		}, true
	case strings.EqualFold(d.Faction2, faction):
		return Evidence{
			System:   d.System,
			WarType:  d.WarType,
			Faction1: d.Faction2,
			Faction2: d.Faction1,
			WonDays1: d.WonDays2,
			WonDays2: d.WonDays1,
			Stake1:   d.Stake2,
			Stake2:   d.Stake1,
		}, true
	default:
		return Evidence{}, false
	}
}

// Decide returns the transition for one system. stored is nil when no row
// exists; evidence is nil when the current tick has none for the system.
//
// The tracked faction's threshold is checked before the rival's, so evidence
// with both sides at the threshold resolves as a win. Resolved evidence for a
// system without a row is unchanged: the row is gone because the result was
// already announced, or it was never tracked.
func Decide(stored *store.ConflictState, evidence *Evidence) Outcome {
	if evidence == nil {
		if stored == nil {
			return OutcomeUnchanged
		}
		return OutcomeCleanup
	}
	if stored == nil && evidence.Resolved() {
		return OutcomeUnchanged
	}

	switch {
	case evidence.WonDays1 >= store.WinningDays:
		return OutcomeWon
	case evidence.WonDays2 >= store.WinningDays:
		return OutcomeLost
	case stored == nil:
		return OutcomeNew
	case stored.WonDays1 != evidence.WonDays1 || stored.WonDays2 != evidence.WonDays2:
		return OutcomeDayScored
	default:
		return OutcomeUnchanged
	}
}
