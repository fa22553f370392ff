package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"bgswatch/internal/discord"
	"bgswatch/internal/shoutout"
	"bgswatch/internal/store"
)

type mockQuerier struct {
	latest      string
	before      string
	lastTick    store.TickState
	hasLastTick bool
	conflicts   []store.ConflictState
	leaders     []store.LeaderRow
	err         error

	lastLeadersTick   string
	lastLeadersMetric store.Metric
	lastLeadersLimit  int
	lastBefore        time.Time
}

func (m *mockQuerier) LatestTickID(ctx context.Context) (string, error) {
	return m.latest, m.err
}

func (m *mockQuerier) LastTick(ctx context.Context) (store.TickState, bool, error) {
	return m.lastTick, m.hasLastTick, m.err
}

func (m *mockQuerier) ListConflicts(ctx context.Context) ([]store.ConflictState, error) {
	return m.conflicts, m.err
}

func (m *mockQuerier) Leaders(ctx context.Context, tickID string, metric store.Metric, limit int) ([]store.LeaderRow, error) {
	m.lastLeadersTick = tickID
	m.lastLeadersMetric = metric
	m.lastLeadersLimit = limit
	return m.leaders, m.err
}

func (m *mockQuerier) TickIDBefore(ctx context.Context, before time.Time) (string, error) {
	m.lastBefore = before
	return m.before, m.err
}

type mockPreviewer struct {
	lastTick string
}

func (m *mockPreviewer) Build(ctx context.Context, tickID string) shoutout.Summary {
	m.lastTick = tickID
	return shoutout.Summary{
		TickID: tickID,
		Jobs: []shoutout.Job{
			{Name: "bgs", Category: discord.CategoryBGS, Embeds: []discord.Embed{{Description: "📈 **Top influence gained**"}}},
			{Name: "space_cz", Category: discord.CategoryConflict},
			{Name: "ground_cz", Category: discord.CategoryShoutout, Err: errors.New("boom")},
		},
	}
}

func TestListConflicts(t *testing.T) {
	querier := &mockQuerier{conflicts: []store.ConflictState{
		{System: "Sol", Faction1: "Sinistra Collective", Faction2: "Rival Party", WonDays1: 2, WonDays2: 1, LastTickID: "abc"},
	}}
	server := NewServer(querier, nil, "test")

	_, output, err := server.handleListConflicts(context.Background(), nil, ListConflictsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Conflicts) != 1 || output.Conflicts[0].System != "Sol" || output.Conflicts[0].WonDays1 != 2 {
		t.Fatalf("unexpected conflicts output: %+v", output)
	}
}

func TestGetTick(t *testing.T) {
	observed := time.Date(2026, 10, 17, 15, 20, 0, 0, time.UTC)
	querier := &mockQuerier{
		latest:      "abc",
		lastTick:    store.TickState{Tick: "2026-10-17T15:12:00Z", ObservedAt: observed},
		hasLastTick: true,
	}
	server := NewServer(querier, nil, "test")

	_, output, err := server.handleGetTick(context.Background(), nil, GetTickInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Observed != "2026-10-17T15:12:00Z" || output.ObservedAt != "2026-10-17T15:20:00Z" {
		t.Fatalf("unexpected observed tick: %+v", output)
	}
	if output.LatestTickID != "abc" {
		t.Fatalf("latest tick = %q", output.LatestTickID)
	}
}

func TestGetTickNothingObserved(t *testing.T) {
	server := NewServer(&mockQuerier{}, nil, "test")

	_, output, err := server.handleGetTick(context.Background(), nil, GetTickInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.ObservedAt != "" || output.Observed != "" {
		t.Fatalf("unexpected output: %+v", output)
	}
}

func TestTopLeaders(t *testing.T) {
	querier := &mockQuerier{
		latest:  "abc",
		leaders: []store.LeaderRow{{System: "Sol", Cmdr: "Nova", Value: 12}},
	}
	server := NewServer(querier, nil, "test")

	_, output, err := server.handleTopLeaders(context.Background(), nil, TopLeadersInput{Metric: "market", Limit: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.TickID != "abc" || len(output.Leaders) != 1 || output.Leaders[0].Cmdr != "Nova" {
		t.Fatalf("unexpected leaders output: %+v", output)
	}
	if querier.lastLeadersMetric != store.MetricMarket || querier.lastLeadersLimit != maxLeaderLimit || querier.lastLeadersTick != "abc" {
		t.Fatalf("unexpected leader params: %s %d %s", querier.lastLeadersMetric, querier.lastLeadersLimit, querier.lastLeadersTick)
	}
}

func TestTopLeadersValidation(t *testing.T) {
	server := NewServer(&mockQuerier{latest: "abc"}, nil, "test")

	tests := []struct {
		name  string
		input TopLeadersInput
	}{
		{"missing metric", TopLeadersInput{}},
		{"unknown metric", TopLeadersInput{Metric: "exploration"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := server.handleTopLeaders(context.Background(), nil, tt.input); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	empty := NewServer(&mockQuerier{}, nil, "test")
	if _, _, err := empty.handleTopLeaders(context.Background(), nil, TopLeadersInput{Metric: "missions"}); err == nil {
		t.Fatalf("expected error without stored events")
	}
}

func TestPreviewSummary(t *testing.T) {
	querier := &mockQuerier{before: "prev"}
	previewer := &mockPreviewer{}
	server := NewServer(querier, previewer, "test")

	_, output, err := server.handlePreviewSummary(context.Background(), nil, PreviewSummaryInput{Before: "2026-10-17T15:12:00Z"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if previewer.lastTick != "prev" || output.TickID != "prev" {
		t.Fatalf("previewed tick %q, want prev", previewer.lastTick)
	}
	if !querier.lastBefore.Equal(time.Date(2026, 10, 17, 15, 12, 0, 0, time.UTC)) {
		t.Fatalf("resolved before %v", querier.lastBefore)
	}
	if output.Empty || len(output.Jobs) != 3 {
		t.Fatalf("unexpected preview: %+v", output)
	}
	if output.Jobs[0].Embeds[0] != "📈 **Top influence gained**" || output.Jobs[2].Error != "boom" {
		t.Fatalf("unexpected jobs: %+v", output.Jobs)
	}
}

func TestPreviewSummaryBadBefore(t *testing.T) {
	server := NewServer(&mockQuerier{}, &mockPreviewer{}, "test")

	if _, _, err := server.handlePreviewSummary(context.Background(), nil, PreviewSummaryInput{Before: "yesterday"}); err == nil {
		t.Fatalf("expected error")
	}
}
