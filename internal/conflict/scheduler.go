package conflict

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sort"
	"time"

	"bgswatch/internal/discord"
	"bgswatch/internal/fault"
	"bgswatch/internal/store"
)

type Store interface {
	LatestTickID(ctx context.Context) (string, error)
	TickIDBefore(ctx context.Context, before time.Time) (string, error)
	ConflictDeclarations(ctx context.Context, tickID, faction string) ([]store.ConflictDeclaration, error)
	ListConflicts(ctx context.Context) ([]store.ConflictState, error)
	UpsertConflict(ctx context.Context, c store.ConflictState) error
	TouchConflict(ctx context.Context, system, tickID string, at time.Time) error
	DeleteConflict(ctx context.Context, system string) error
}

type Notifier interface {
	SendEmbeds(ctx context.Context, category discord.Category, embeds []discord.Embed) error
}

type Signals interface {
	Seq(ctx context.Context) iter.Seq[string]
}

type Config struct {
	Store    Store
	Notifier Notifier
	Faction  string
	Enabled  bool
	Logger   *slog.Logger
	Now      func() time.Time
}

type Scheduler struct {
	store    Store
	notifier Notifier
	faction  string
	enabled  bool
	logger   *slog.Logger
	now      func() time.Time
}

func New(cfg Config) *Scheduler {
	s := &Scheduler{
		store:    cfg.Store,
		notifier: cfg.Notifier,
		faction:  cfg.Faction,
		enabled:  cfg.Enabled,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Transition records what happened to one system during a reconcile.
type Transition struct {
	System  string
	Outcome Outcome
	// Err is set when persisting or announcing the transition failed.
	Err error
}

type Report struct {
	TickID      string
	Transitions []Transition
}

// Failed counts the transitions that hit an error.
func (r Report) Failed() int {
	n := 0
	for _, t := range r.Transitions {
		if t.Err != nil {
			n++
		}
	}
	return n
}

// Run reconciles once per received tick signal until the signals end.
func (s *Scheduler) Run(ctx context.Context, signals Signals) error {
	for signal := range signals.Seq(ctx) {
		s.HandleSignal(ctx, signal)
	}
	return nil
}

// HandleSignal resolves the tick that ended at signal and reconciles it.
// Signals that are not RFC3339 timestamps fall back to the tick of the newest
// stored event. Failures are logged.
func (s *Scheduler) HandleSignal(ctx context.Context, signal string) {
	logger := s.logger.With("signal", signal)
	if !s.enabled {
		logger.Info("notifications disabled, ignoring tick")
		return
	}

	tickID, err := s.completedTick(ctx, signal)
	if err != nil {
		logger.Error("resolving completed tick failed", "kind", fault.KindPersistence, "error", err)
		return
	}
	if tickID == "" {
		logger.Info("no events stored for the completed tick, skipping conflict check")
		return
	}

	report, err := s.Reconcile(ctx, tickID)
	if err != nil {
		logger.Error("conflict reconcile failed", "tick_id", tickID, "kind", fault.KindOf(err), "error", err)
		return
	}
	logger.Info("conflicts reconciled", "tick_id", tickID, "transitions", len(report.Transitions), "failed", report.Failed())
}

// completedTick maps a tick signal to the hash of the tick it closed. Events
// of the new tick may already be stored when the signal arrives, so the
// lookup is bounded by the signal time.
func (s *Scheduler) completedTick(ctx context.Context, signal string) (string, error) {
	at, err := time.Parse(time.RFC3339, signal)
	if err != nil {
		s.logger.Debug("tick signal is not a timestamp, using latest stored tick", "signal", signal)
		return s.store.LatestTickID(ctx)
	}
	return s.store.TickIDBefore(ctx, at)
}

// Reconcile brings the stored conflict rows in line with the declarations
// recorded in tickID. Systems are handled one at a time in name order; a
// failure on one system is recorded in the report and does not stop the
// others. The returned error covers only loading the inputs.
func (s *Scheduler) Reconcile(ctx context.Context, tickID string) (Report, error) {
	report := Report{TickID: tickID}

	declarations, err := s.store.ConflictDeclarations(ctx, tickID, s.faction)
	if err != nil {
		return report, fault.Persistence("loading conflict declarations", err)
	}
	rows, err := s.store.ListConflicts(ctx)
	if err != nil {
		return report, fault.Persistence("loading conflict state", err)
	}

	evidence := make(map[string]Evidence, len(declarations))
	for _, d := range declarations {
		e, ok := Normalize(d, s.faction)
		if !ok {
			continue
		}
		evidence[e.System] = e
	}
	stored := make(map[string]store.ConflictState, len(rows))
	for _, row := range rows {
		stored[row.System] = row
	}

	systems := make([]string, 0, len(evidence)+len(stored))
	for system := range evidence {
		systems = append(systems, system)
	}
	for system := range stored {
		if _, ok := evidence[system]; !ok {
			systems = append(systems, system)
		}
	}
	sort.Strings(systems)

	for _, system := range systems {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var row *store.ConflictState
		if r, ok := stored[system]; ok {
			row = &r
		}
		var ev *Evidence
		if e, ok := evidence[system]; ok {
			ev = &e
		}

		outcome := Decide(row, ev)
		if outcome == OutcomeUnchanged && row == nil {
			if ev != nil {
				s.logger.Debug("ignoring resolved conflict without tracked state", "system", system, "tick_id", tickID)
			}
			continue
		}

		err := s.apply(ctx, tickID, outcome, row, ev)
		if err != nil {
			s.logger.Warn("conflict transition failed",
				"system", system,
				"outcome", outcome,
				"kind", fault.KindOf(err),
				"error", err,
			)
		} else if outcome != OutcomeUnchanged {
			s.logger.Info("conflict transition", "system", system, "outcome", outcome, "tick_id", tickID)
		}
		report.Transitions = append(report.Transitions, Transition{System: system, Outcome: outcome, Err: err})
	}

	return report, nil
}

// apply persists the transition and then announces it. A failed write skips
// the announcement so the next tick retries from the same stored row.
func (s *Scheduler) apply(ctx context.Context, tickID string, outcome Outcome, row *store.ConflictState, ev *Evidence) error {
	now := s.now().UTC()

	switch outcome {
	case OutcomeNew, OutcomeDayScored:
		state := store.ConflictState{
			System:     ev.System,
			Faction1:   ev.Faction1,
			Faction2:   ev.Faction2,
			WarType:    ev.WarType,
			WonDays1:   ev.WonDays1,
			WonDays2:   ev.WonDays2,
			Stake1:     ev.Stake1,
			Stake2:     ev.Stake2,
			LastTickID: tickID,
			UpdatedAt:  now,
		}
		if err := s.store.UpsertConflict(ctx, state); err != nil {
			return fault.Persistence("saving conflict", err)
		}

	case OutcomeWon, OutcomeLost:
		if err := s.store.DeleteConflict(ctx, row.System); err != nil {
			return fault.Persistence("resolving conflict", err)
		}

	case OutcomeCleanup:
		if err := s.store.DeleteConflict(ctx, row.System); err != nil {
			return fault.Persistence("cleaning up conflict", err)
		}
		return nil

	case OutcomeUnchanged:
		if err := s.store.TouchConflict(ctx, row.System, tickID, now); err != nil {
			return fault.Persistence("touching conflict", err)
		}
		return nil
	}

	embed, ok := Message(outcome, row, *ev)
	if !ok {
		return nil
	}
	if err := s.notifier.SendEmbeds(ctx, discord.CategoryConflict, []discord.Embed{embed}); err != nil {
		return fmt.Errorf("announcing %s: %w", outcome, err)
	}
	return nil
}
