package shoutout

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"bgswatch/internal/discord"
	"bgswatch/internal/fault"
	"bgswatch/internal/store"
	"bgswatch/internal/tickbus"
)

type fakeStore struct {
	tickID      string
	tickErr     error
	askedBefore time.Time

	leaders     map[store.Metric][]store.LeaderRow
	leadersErr  error
	space       []store.CombatZoneCount
	ground      []store.CombatZoneCount
	groundErr   error
	presence    []store.FactionPresence
	presenceErr error
}

func (s *fakeStore) TickIDBefore(ctx context.Context, before time.Time) (string, error) {
	s.askedBefore = before
	return s.tickID, s.tickErr
}

func (s *fakeStore) Leaders(ctx context.Context, tickID string, metric store.Metric, limit int) ([]store.LeaderRow, error) {
	if s.leadersErr != nil {
		return nil, s.leadersErr
	}
	rows := s.leaders[metric]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *fakeStore) CombatZones(ctx context.Context, tickID string, ground bool) ([]store.CombatZoneCount, error) {
	if ground {
		return s.ground, s.groundErr
	}
	return s.space, nil
}

func (s *fakeStore) FactionPresence(ctx context.Context, systems []string) ([]store.FactionPresence, error) {
	return s.presence, s.presenceErr
}

type sent struct {
	category discord.Category
	embeds   []discord.Embed
	text     string
}

type fakeNotifier struct {
	configured map[discord.Category]bool
	sent       []sent
}

func (n *fakeNotifier) Configured(category discord.Category) bool {
	return n.configured[category]
}

func (n *fakeNotifier) SendEmbeds(ctx context.Context, category discord.Category, embeds []discord.Embed) error {
	n.sent = append(n.sent, sent{category: category, embeds: embeds})
	return nil
}

func (n *fakeNotifier) SendText(ctx context.Context, category discord.Category, content string) error {
	n.sent = append(n.sent, sent{category: category, text: content})
	return nil
}

func allConfigured() *fakeNotifier {
	return &fakeNotifier{configured: map[discord.Category]bool{
		discord.CategoryBGS:      true,
		discord.CategoryConflict: true,
		discord.CategoryShoutout: true,
		discord.CategoryDebug:    true,
	}}
}

func newTestScheduler(st Store, n Notifier, logs *bytes.Buffer) (*Scheduler, *[]time.Duration) {
	var slept []time.Duration
	if logs == nil {
		logs = &bytes.Buffer{}
	}
	s := New(Config{
		Store:       st,
		Notifier:    n,
		Faction:     "Sinistra Collective",
		Enabled:     true,
		SettleDelay: 15 * time.Minute,
		Logger:      slog.New(slog.NewTextHandler(logs, nil)),
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return ctx.Err()
		},
	})
	return s, &slept
}

func TestScenarioE_NoTickBeforeSignal(t *testing.T) {
	st := &fakeStore{}
	notifier := allConfigured()
	var logs bytes.Buffer
	s, slept := newTestScheduler(st, notifier, &logs)

	s.HandleSignal(context.Background(), "2026-10-17T15:12:00.000Z")

	if len(*slept) != 1 || (*slept)[0] != 15*time.Minute {
		t.Fatalf("slept = %v, want one settle delay", *slept)
	}
	want := time.Date(2026, 10, 17, 15, 12, 0, 0, time.UTC)
	if !st.askedBefore.Equal(want) {
		t.Fatalf("resolved tick before %v, want %v", st.askedBefore, want)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("sent = %+v, want nothing", notifier.sent)
	}
	if n := strings.Count(strings.TrimSpace(logs.String()), "\n") + 1; n != 1 {
		t.Fatalf("log lines = %d, want 1:\n%s", n, logs.String())
	}
	if !strings.Contains(logs.String(), "skipping summary") {
		t.Fatalf("log = %q", logs.String())
	}
}

func TestZeroSettleDelayUsesDefault(t *testing.T) {
	st := &fakeStore{}
	var slept []time.Duration
	s := New(Config{
		Store:    st,
		Notifier: allConfigured(),
		Enabled:  true,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	})

	s.HandleSignal(context.Background(), "2026-10-17T15:12:00Z")

	if len(slept) != 1 || slept[0] != DefaultSettleDelay {
		t.Fatalf("slept = %v, want %v", slept, DefaultSettleDelay)
	}
}

func TestHandleSignalRejectsNonTimestamp(t *testing.T) {
	st := &fakeStore{tickID: "abc"}
	notifier := allConfigured()
	s, slept := newTestScheduler(st, notifier, nil)

	s.HandleSignal(context.Background(), "not-a-time")

	if len(*slept) != 0 || len(notifier.sent) != 0 {
		t.Fatalf("slept = %v sent = %+v", *slept, notifier.sent)
	}
}

func TestHandleSignalCancelledDuringSettle(t *testing.T) {
	st := &fakeStore{tickID: "abc"}
	notifier := allConfigured()
	s := New(Config{Store: st, Notifier: notifier, Enabled: true, SettleDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.HandleSignal(ctx, "2026-10-17T15:12:00Z")

	if !st.askedBefore.IsZero() || len(notifier.sent) != 0 {
		t.Fatalf("scheduler worked after cancellation")
	}
}

func TestDispatchRoutesJobs(t *testing.T) {
	st := &fakeStore{
		tickID: "abc",
		leaders: map[store.Metric][]store.LeaderRow{
			store.MetricInfluence: {{System: "Sol", Faction: "Sinistra Collective", Cmdr: "Nova", Value: 12}},
		},
		space:  []store.CombatZoneCount{{System: "Sol", Tier: "high", Cmdr: "Nova", Count: 2}},
		ground: []store.CombatZoneCount{{System: "Lave", Settlement: "Hub", Tier: "low", Cmdr: "Kestrel", Count: 1}},
	}
	notifier := allConfigured()
	s, _ := newTestScheduler(st, notifier, nil)

	s.HandleSignal(context.Background(), "2026-10-17T15:12:00Z")

	want := []discord.Category{discord.CategoryBGS, discord.CategoryConflict, discord.CategoryShoutout}
	if len(notifier.sent) != len(want) {
		t.Fatalf("sent %d messages, want %d: %+v", len(notifier.sent), len(want), notifier.sent)
	}
	for i, category := range want {
		if notifier.sent[i].category != category {
			t.Fatalf("message %d category = %s, want %s", i, notifier.sent[i].category, category)
		}
		if len(notifier.sent[i].embeds) == 0 {
			t.Fatalf("message %d has no embeds", i)
		}
	}
}

func TestDispatchIsolatesFailedJob(t *testing.T) {
	st := &fakeStore{
		tickID:    "abc",
		space:     []store.CombatZoneCount{{System: "Sol", Tier: "medium", Cmdr: "Nova", Count: 3}},
		groundErr: errors.New("relation combat_zone does not exist"),
	}
	notifier := allConfigured()
	s, _ := newTestScheduler(st, notifier, nil)

	s.HandleSignal(context.Background(), "2026-10-17T15:12:00Z")

	var conflict, debug int
	for _, m := range notifier.sent {
		switch m.category {
		case discord.CategoryConflict:
			conflict++
		case discord.CategoryDebug:
			debug++
			if !strings.Contains(m.text, "ground_cz") || !strings.Contains(m.text, "persistence") {
				t.Fatalf("debug report = %q", m.text)
			}
		default:
			t.Fatalf("unexpected delivery to %s", m.category)
		}
	}
	if conflict != 1 || debug != 1 {
		t.Fatalf("conflict = %d debug = %d, want 1 and 1", conflict, debug)
	}
}

func TestNoActivityNotice(t *testing.T) {
	tests := []struct {
		name       string
		configured []discord.Category
		want       discord.Category
	}{
		{"shoutout preferred", []discord.Category{discord.CategoryDebug, discord.CategoryShoutout, discord.CategoryBGS}, discord.CategoryShoutout},
		{"falls back to bgs", []discord.Category{discord.CategoryConflict, discord.CategoryBGS}, discord.CategoryBGS},
		{"debug last", []discord.Category{discord.CategoryDebug}, discord.CategoryDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{configured: map[discord.Category]bool{}}
			for _, c := range tt.configured {
				notifier.configured[c] = true
			}
			s, _ := newTestScheduler(&fakeStore{tickID: "abc"}, notifier, nil)

			s.HandleSignal(context.Background(), "2026-10-17T15:12:00Z")

			if len(notifier.sent) != 1 {
				t.Fatalf("sent = %+v, want a single notice", notifier.sent)
			}
			if notifier.sent[0].category != tt.want || notifier.sent[0].text != NoActivityMessage {
				t.Fatalf("sent %q to %s, want notice to %s", notifier.sent[0].text, notifier.sent[0].category, tt.want)
			}
		})
	}
}

func TestBuildBGS(t *testing.T) {
	st := &fakeStore{
		leaders: map[store.Metric][]store.LeaderRow{
			store.MetricInfluence: {
				{System: "Sol", Faction: "Sinistra Collective", Cmdr: "Nova", Value: 14},
				{System: "Lave", Faction: "Lave Radio", Cmdr: "Kestrel", Value: 3},
			},
			store.MetricMarket: {
				{System: "Sol", Cmdr: "Hauler", Value: 12345678},
			},
			store.MetricMissions: {
				{System: "Sol", Faction: "Sinistra Collective", Cmdr: "Nova", Value: 1},
			},
		},
		presence: []store.FactionPresence{
			{System: "Sol", Faction: "Sinistra Collective", Influence: 0.345, States: []string{"Boom", "War"}},
		},
	}
	s, _ := newTestScheduler(st, allConfigured(), nil)

	summary := s.Build(context.Background(), "abc")
	bgs := summary.Jobs[0]
	if bgs.Err != nil {
		t.Fatalf("bgs job error: %v", bgs.Err)
	}
	if len(bgs.Embeds) != 3 {
		t.Fatalf("bgs embeds = %d, want 3 (empty sections skipped)", len(bgs.Embeds))
	}

	influence := bgs.Embeds[0].Description
	for _, want := range []string{
		"Top influence gained",
		"1. **Nova** · Sol · Sinistra Collective (34.5% · Boom, War) · +14",
		"2. **Kestrel** · Lave · Lave Radio · +3",
	} {
		if !strings.Contains(influence, want) {
			t.Fatalf("influence section missing %q:\n%s", want, influence)
		}
	}

	if missions := bgs.Embeds[1].Description; !strings.Contains(missions, "· 1 mission") {
		t.Fatalf("missions section = %q", missions)
	}

	market := bgs.Embeds[2].Description
	if !strings.Contains(market, "1. **Hauler** · Sol · Sinistra Collective (34.5% · Boom, War) · 12,345,678 cr") {
		t.Fatalf("market section = %q", market)
	}
}

func TestBuildBGSSurvivesSnapshotFailure(t *testing.T) {
	st := &fakeStore{
		leaders: map[store.Metric][]store.LeaderRow{
			store.MetricCombatZones: {{System: "Sol", Faction: "Sinistra Collective", Cmdr: "Nova", Value: 4}},
		},
		presenceErr: errors.New("timeout"),
	}
	s, _ := newTestScheduler(st, allConfigured(), nil)

	job := s.Build(context.Background(), "abc").Jobs[0]
	if job.Err != nil {
		t.Fatalf("bgs job error: %v", job.Err)
	}
	if len(job.Embeds) != 1 || !strings.Contains(job.Embeds[0].Description, "· 4 zones") {
		t.Fatalf("embeds = %+v", job.Embeds)
	}
}

func TestBuildBGSLeaderFailure(t *testing.T) {
	st := &fakeStore{leadersErr: errors.New("connection reset")}
	s, _ := newTestScheduler(st, allConfigured(), nil)

	job := s.Build(context.Background(), "abc").Jobs[0]
	if fault.KindOf(job.Err) != fault.KindPersistence {
		t.Fatalf("error = %v, want persistence fault", job.Err)
	}
}

func TestBuildZones(t *testing.T) {
	st := &fakeStore{
		space: []store.CombatZoneCount{
			{System: "Sol", Tier: "low", Cmdr: "Kestrel", Count: 1},
			{System: "Sol", Tier: "high", Cmdr: "Nova", Count: 1},
			{System: "Sol", Tier: "high", Cmdr: "Arden", Count: 3},
			{System: "Achenar", Tier: "medium", Cmdr: "Nova", Count: 2},
		},
		ground: []store.CombatZoneCount{
			{System: "Sol", Settlement: "Zeta Works", Tier: "high", Cmdr: "Nova", Count: 1},
			{System: "Sol", Settlement: "Alpha Camp", Tier: "Medium", Cmdr: "Arden", Count: 2},
		},
	}
	s, _ := newTestScheduler(st, allConfigured(), nil)
	summary := s.Build(context.Background(), "abc")

	space := summary.Jobs[1].Embeds
	if len(space) != 2 {
		t.Fatalf("space embeds = %d, want 2", len(space))
	}
	if want := "🚀 **Achenar**\n**Medium**: Nova ×2"; space[0].Description != want {
		t.Fatalf("space[0] = %q, want %q", space[0].Description, want)
	}
	if want := "🚀 **Sol**\n**High**: Arden ×3, Nova ×1\n**Low**: Kestrel ×1"; space[1].Description != want {
		t.Fatalf("space[1] = %q, want %q", space[1].Description, want)
	}

	ground := summary.Jobs[2].Embeds
	if len(ground) != 2 {
		t.Fatalf("ground embeds = %d, want 2", len(ground))
	}
	if want := "🪖 **Sol** · Alpha Camp\n**Medium**: Arden ×2"; ground[0].Description != want {
		t.Fatalf("ground[0] = %q, want %q", ground[0].Description, want)
	}
	if !strings.HasPrefix(ground[1].Description, "🪖 **Sol** · Zeta Works") {
		t.Fatalf("ground[1] = %q", ground[1].Description)
	}
}

func TestRunHandlesEachSignal(t *testing.T) {
	st := &fakeStore{}
	s, slept := newTestScheduler(st, allConfigured(), nil)

	bus := tickbus.New()
	sub := bus.Subscribe()
	bus.Publish("2026-10-16T15:00:00Z")
	bus.Publish("2026-10-17T15:00:00Z")
	bus.Close()

	if err := s.Run(context.Background(), sub); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(*slept) != 2 {
		t.Fatalf("handled %d signals, want 2", len(*slept))
	}
	if want := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC); !st.askedBefore.Equal(want) {
		t.Fatalf("last resolved before %v, want %v", st.askedBefore, want)
	}
}
