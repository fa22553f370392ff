package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"bgswatch/internal/shoutout"
	"bgswatch/internal/store"
)

const maxLeaderLimit = 25

type ListConflictsInput struct{}

type GetTickInput struct{}

type TopLeadersInput struct {
	Metric string `json:"metric" jsonschema:"influence, missions, market or combat_zones"`
	TickID string `json:"tick_id,omitempty" jsonschema:"tick hash; defaults to the latest stored tick"`
	Limit  int    `json:"limit,omitempty" jsonschema:"number of rows, at most 25"`
}

type PreviewSummaryInput struct {
	TickID string `json:"tick_id,omitempty" jsonschema:"tick hash to summarise"`
	Before string `json:"before,omitempty" jsonschema:"RFC3339 tick time; summarises the tick that ended then"`
}

type ConflictOutput struct {
	System     string `json:"system"`
	Faction1   string `json:"faction1"`
	Faction2   string `json:"faction2"`
	WarType    string `json:"war_type"`
	WonDays1   int    `json:"won_days1"`
	WonDays2   int    `json:"won_days2"`
	Stake1     string `json:"stake1,omitempty"`
	Stake2     string `json:"stake2,omitempty"`
	LastTickID string `json:"last_tick_id"`
	UpdatedAt  string `json:"updated_at"`
}

type ListConflictsOutput struct {
	Conflicts []ConflictOutput `json:"conflicts"`
}

type GetTickOutput struct {
	Observed     string `json:"observed,omitempty"`
	ObservedAt   string `json:"observed_at,omitempty"`
	LatestTickID string `json:"latest_tick_id,omitempty"`
}

type LeaderOutput struct {
	System  string `json:"system"`
	Faction string `json:"faction,omitempty"`
	Cmdr    string `json:"cmdr"`
	Value   int64  `json:"value"`
}

type TopLeadersOutput struct {
	TickID  string         `json:"tick_id"`
	Metric  string         `json:"metric"`
	Leaders []LeaderOutput `json:"leaders"`
}

type JobOutput struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Embeds   []string `json:"embeds"`
	Error    string   `json:"error,omitempty"`
}

type PreviewSummaryOutput struct {
	TickID string      `json:"tick_id"`
	Empty  bool        `json:"empty"`
	Jobs   []JobOutput `json:"jobs"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_conflicts",
		Description: "List the undecided conflicts currently tracked",
	}, s.handleListConflicts)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_tick",
		Description: "Return the last observed tick and the latest stored tick hash",
	}, s.handleGetTick)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "top_leaders",
		Description: "Rank commanders by one activity metric for a tick",
	}, s.handleTopLeaders)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "preview_summary",
		Description: "Build the tick summaries without posting them",
	}, s.handlePreviewSummary)
}

func (s *Server) handleListConflicts(ctx context.Context, req *sdk.CallToolRequest, input ListConflictsInput) (*sdk.CallToolResult, ListConflictsOutput, error) {
	rows, err := s.db.ListConflicts(ctx)
	if err != nil {
		return nil, ListConflictsOutput{}, err
	}

	output := make([]ConflictOutput, 0, len(rows))
	for _, row := range rows {
		output = append(output, conflictOutputFromStore(row))
	}
	return nil, ListConflictsOutput{Conflicts: output}, nil
}

func (s *Server) handleGetTick(ctx context.Context, req *sdk.CallToolRequest, input GetTickInput) (*sdk.CallToolResult, GetTickOutput, error) {
	var out GetTickOutput

	state, ok, err := s.db.LastTick(ctx)
	if err != nil {
		return nil, GetTickOutput{}, err
	}
	if ok {
		out.Observed = state.Tick
		out.ObservedAt = state.ObservedAt.UTC().Format(time.RFC3339)
	}

	out.LatestTickID, err = s.db.LatestTickID(ctx)
	if err != nil {
		return nil, GetTickOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleTopLeaders(ctx context.Context, req *sdk.CallToolRequest, input TopLeadersInput) (*sdk.CallToolResult, TopLeadersOutput, error) {
	metric := store.Metric(input.Metric)
	switch metric {
	case store.MetricInfluence, store.MetricMissions, store.MetricMarket, store.MetricCombatZones:
	case "":
		return nil, TopLeadersOutput{}, fmt.Errorf("metric is required")
	default:
		return nil, TopLeadersOutput{}, fmt.Errorf("unknown metric %q", input.Metric)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = shoutout.TopN
	}
	limit = min(limit, maxLeaderLimit)

	tickID, err := s.resolveTick(ctx, input.TickID, "")
	if err != nil {
		return nil, TopLeadersOutput{}, err
	}

	rows, err := s.db.Leaders(ctx, tickID, metric, limit)
	if err != nil {
		return nil, TopLeadersOutput{}, err
	}

	output := make([]LeaderOutput, 0, len(rows))
	for _, row := range rows {
		output = append(output, LeaderOutput{System: row.System, Faction: row.Faction, Cmdr: row.Cmdr, Value: row.Value})
	}
	return nil, TopLeadersOutput{TickID: tickID, Metric: string(metric), Leaders: output}, nil
}

func (s *Server) handlePreviewSummary(ctx context.Context, req *sdk.CallToolRequest, input PreviewSummaryInput) (*sdk.CallToolResult, PreviewSummaryOutput, error) {
	if s.preview == nil {
		return nil, PreviewSummaryOutput{}, fmt.Errorf("summary preview is not available")
	}

	tickID, err := s.resolveTick(ctx, input.TickID, input.Before)
	if err != nil {
		return nil, PreviewSummaryOutput{}, err
	}

	return nil, previewOutputFromSummary(s.preview.Build(ctx, tickID)), nil
}

// resolveTick picks the tick hash a tool works on: an explicit hash, the
// tick that ended at before, or the latest stored tick.
func (s *Server) resolveTick(ctx context.Context, tickID, before string) (string, error) {
	if tickID != "" {
		return tickID, nil
	}

	if before != "" {
		at, err := time.Parse(time.RFC3339, before)
		if err != nil {
			return "", fmt.Errorf("before must be an RFC3339 time: %w", err)
		}
		tickID, err = s.db.TickIDBefore(ctx, at)
		if err != nil {
			return "", err
		}
	} else {
		var err error
		tickID, err = s.db.LatestTickID(ctx)
		if err != nil {
			return "", err
		}
	}

	if tickID == "" {
		return "", fmt.Errorf("no stored events for that tick")
	}
	return tickID, nil
}

func conflictOutputFromStore(row store.ConflictState) ConflictOutput {
	return ConflictOutput{
		System:     row.System,
		Faction1:   row.Faction1,
		Faction2:   row.Faction2,
		WarType:    row.WarType,
		WonDays1:   row.WonDays1,
		WonDays2:   row.WonDays2,
		Stake1:     row.Stake1,
		Stake2:     row.Stake2,
		LastTickID: row.LastTickID,
		UpdatedAt:  row.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func previewOutputFromSummary(summary shoutout.Summary) PreviewSummaryOutput {
	out := PreviewSummaryOutput{
		TickID: summary.TickID,
		Empty:  summary.Empty(),
		Jobs:   make([]JobOutput, 0, len(summary.Jobs)),
	}
	for _, job := range summary.Jobs {
		jobOut := JobOutput{
			Name:     job.Name,
			Category: string(job.Category),
			Embeds:   make([]string, 0, len(job.Embeds)),
		}
		for _, embed := range job.Embeds {
			jobOut.Embeds = append(jobOut.Embeds, embed.Description)
		}
		if job.Err != nil {
			jobOut.Error = job.Err.Error()
		}
		out.Jobs = append(out.Jobs, jobOut)
	}
	return out
}
