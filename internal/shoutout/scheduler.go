// Package shoutout posts per-tick activity summaries once the data for the
// just-completed tick has had time to settle.
//
// Each tick produces up to three independent summaries: the BGS leaderboards,
// space combat zones and ground combat zones. A failing summary is reported on
// the debug category and never blocks the other two.
package shoutout

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"bgswatch/internal/discord"
	"bgswatch/internal/fault"
	"bgswatch/internal/store"
)

const (
	DefaultSettleDelay = 15 * time.Minute

	NoActivityMessage = "📭 No tracked activity during the last tick."
)

// noActivityOrder is the category preference for the no-activity notice.
var noActivityOrder = []discord.Category{
	discord.CategoryShoutout,
	discord.CategoryBGS,
	discord.CategoryConflict,
	discord.CategoryDebug,
}

type Store interface {
	TickIDBefore(ctx context.Context, before time.Time) (string, error)
	Leaders(ctx context.Context, tickID string, metric store.Metric, limit int) ([]store.LeaderRow, error)
	CombatZones(ctx context.Context, tickID string, ground bool) ([]store.CombatZoneCount, error)
	FactionPresence(ctx context.Context, systems []string) ([]store.FactionPresence, error)
}

type Notifier interface {
	Configured(category discord.Category) bool
	SendEmbeds(ctx context.Context, category discord.Category, embeds []discord.Embed) error
	SendText(ctx context.Context, category discord.Category, content string) error
}

type Signals interface {
	Seq(ctx context.Context) iter.Seq[string]
}

type Config struct {
	Store    Store
	Notifier Notifier
	// Faction annotates leaderboard rows that carry no faction of their own.
	Faction     string
	Enabled     bool
	SettleDelay time.Duration
	Logger      *slog.Logger
	// Language selects number formatting. Defaults to English.
	Language language.Tag
	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

type Scheduler struct {
	store    Store
	notifier Notifier
	faction  string
	enabled  bool
	settle   time.Duration
	logger   *slog.Logger
	format   formatter
	sleep    func(ctx context.Context, d time.Duration) error
}

func New(cfg Config) *Scheduler {
	s := &Scheduler{
		store:    cfg.Store,
		notifier: cfg.Notifier,
		faction:  cfg.Faction,
		enabled:  cfg.Enabled,
		settle:   cfg.SettleDelay,
		logger:   cfg.Logger,
		sleep:    cfg.Sleep,
	}
	if s.settle <= 0 {
		s.settle = DefaultSettleDelay
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.sleep == nil {
		s.sleep = sleep
	}
	tag := cfg.Language
	if tag == language.Und {
		tag = language.English
	}
	s.format = newFormatter(tag)
	return s
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Job is one summary built for a tick.
type Job struct {
	Name     string
	Category discord.Category
	Embeds   []discord.Embed
	Err      error
}

type Summary struct {
	TickID string
	Jobs   []Job
}

// Empty reports whether every job succeeded without producing content.
func (s Summary) Empty() bool {
	for _, job := range s.Jobs {
		if job.Err != nil || len(job.Embeds) > 0 {
			return false
		}
	}
	return true
}

// Run handles each received signal in turn until the signals end.
func (s *Scheduler) Run(ctx context.Context, signals Signals) error {
	for signal := range signals.Seq(ctx) {
		s.HandleSignal(ctx, signal)
	}
	return nil
}

// HandleSignal waits for the settling delay, resolves the tick that ended at
// signal and dispatches its summaries.
func (s *Scheduler) HandleSignal(ctx context.Context, signal string) {
	logger := s.logger.With("signal", signal)
	if !s.enabled {
		logger.Info("notifications disabled, ignoring tick")
		return
	}

	tickTime, err := time.Parse(time.RFC3339, signal)
	if err != nil {
		logger.Warn("tick signal is not a timestamp, skipping summary", "kind", fault.KindDecode, "error", err)
		return
	}

	logger.Debug("waiting for data to settle", "delay", s.settle)
	if err := s.sleep(ctx, s.settle); err != nil {
		return
	}

	tickID, err := s.store.TickIDBefore(ctx, tickTime)
	if err != nil {
		logger.Error("resolving completed tick failed", "kind", fault.KindPersistence, "error", err)
		return
	}
	if tickID == "" {
		logger.Info("no events before tick, skipping summary")
		return
	}

	s.Dispatch(ctx, s.Build(ctx, tickID))
}

// Build runs the three summary jobs for tickID. Job failures are recorded on
// the job and do not affect the others.
func (s *Scheduler) Build(ctx context.Context, tickID string) Summary {
	jobs := []struct {
		name     string
		category discord.Category
		build    func(context.Context, string) ([]discord.Embed, error)
	}{
		{"bgs", discord.CategoryBGS, s.buildBGS},
		{"space_cz", discord.CategoryConflict, s.buildSpaceZones},
		{"ground_cz", discord.CategoryShoutout, s.buildGroundZones},
	}

	summary := Summary{TickID: tickID}
	for _, job := range jobs {
		embeds, err := job.build(ctx, tickID)
		summary.Jobs = append(summary.Jobs, Job{
			Name:     job.name,
			Category: job.category,
			Embeds:   embeds,
			Err:      err,
		})
	}
	return summary
}

// Dispatch delivers a built summary. Failed jobs are reported on the debug
// category; a summary with no content at all produces a single no-activity
// notice on the first configured category.
func (s *Scheduler) Dispatch(ctx context.Context, summary Summary) {
	logger := s.logger.With("tick_id", summary.TickID)

	if summary.Empty() {
		for _, category := range noActivityOrder {
			if !s.notifier.Configured(category) {
				continue
			}
			if err := s.notifier.SendText(ctx, category, NoActivityMessage); err != nil {
				logger.Warn("no-activity notice failed", "category", category, "kind", fault.KindOf(err), "error", err)
			}
			logger.Info("no activity for tick", "category", category)
			return
		}
		logger.Info("no activity for tick and no webhooks configured")
		return
	}

	for _, job := range summary.Jobs {
		if job.Err != nil {
			logger.Error("summary job failed", "job", job.Name, "kind", fault.KindOf(job.Err), "error", job.Err)
			s.reportFailure(ctx, summary.TickID, job)
			continue
		}
		if len(job.Embeds) == 0 {
			logger.Debug("summary job produced nothing", "job", job.Name)
			continue
		}
		if err := s.notifier.SendEmbeds(ctx, job.Category, job.Embeds); err != nil {
			logger.Warn("summary delivery failed", "job", job.Name, "category", job.Category, "kind", fault.KindOf(err), "error", err)
			continue
		}
		logger.Info("summary delivered", "job", job.Name, "category", job.Category, "embeds", len(job.Embeds))
	}
}

func (s *Scheduler) reportFailure(ctx context.Context, tickID string, job Job) {
	text := fmt.Sprintf("⚠️ %s summary failed for tick %s (%s): %v", job.Name, tickID, fault.KindOf(job.Err), job.Err)
	if err := s.notifier.SendText(ctx, discord.CategoryDebug, text); err != nil {
		s.logger.Warn("debug report failed", "job", job.Name, "error", err)
	}
}
