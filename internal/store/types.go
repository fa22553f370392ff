package store

import "time"

// WinningDays is the number of won days that resolves a conflict.
const WinningDays = 4

// ConflictState is the persisted view of one undecided conflict involving
// the tracked faction. Faction1 is always the tracked faction.
type ConflictState struct {
	System     string
	Faction1   string
	Faction2   string
	WarType    string
	WonDays1   int
	WonDays2   int
	Stake1     string
	Stake2     string
	LastTickID string
	UpdatedAt  time.Time
}

// ConflictDeclaration is the most recent conflict entry recorded for a system
// within one tick, as written by the journal ingestion path.
type ConflictDeclaration struct {
	System   string
	WarType  string
	Faction1 string
	Stake1   string
	WonDays1 int
	Faction2 string
	Stake2   string
	WonDays2 int
}

type Metric string

const (
	MetricInfluence   Metric = "influence"
	MetricMissions    Metric = "missions"
	MetricMarket      Metric = "market"
	MetricCombatZones Metric = "combat_zones"
)

// LeaderRow is one commander's contribution to a metric in a system, on
// behalf of a faction. Faction is empty for metrics without one (market).
type LeaderRow struct {
	System  string
	Faction string
	Cmdr    string
	Value   int64
}

// CombatZoneCount counts the combat zones of one tier a commander completed
// in a system. Settlement is empty for space zones.
type CombatZoneCount struct {
	System     string
	Settlement string
	Tier       string
	Cmdr       string
	Count      int
}

// FactionPresence is the live snapshot of a faction in a system.
// Influence is a fraction between 0 and 1.
type FactionPresence struct {
	System    string
	Faction   string
	Influence float64
	States    []string
	UpdatedAt time.Time
}

type TickState struct {
	Tick       string
	ObservedAt time.Time
}
