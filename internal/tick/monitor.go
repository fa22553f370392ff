package tick

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"bgswatch/internal/fault"
	"bgswatch/internal/store"
)

const DefaultInterval = 5 * time.Minute

type Source interface {
	Fetch(ctx context.Context) (string, error)
}

type Publisher interface {
	Publish(signal string)
}

// StateStore persists the last observed tick so a restart does not publish
// the same tick again.
type StateStore interface {
	LastTick(ctx context.Context) (store.TickState, bool, error)
	SaveTick(ctx context.Context, state store.TickState) error
}

type Config struct {
	Source    Source
	Publisher Publisher
	// State is optional. Without it the first successful poll after start-up
	// always publishes.
	State    StateStore
	Interval time.Duration
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Monitor struct {
	source    Source
	publisher Publisher
	state     StateStore
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.Mutex
	last string
}

func NewMonitor(cfg Config) *Monitor {
	m := &Monitor{
		source:    cfg.Source,
		publisher: cfg.Publisher,
		state:     cfg.State,
		interval:  cfg.Interval,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Run polls once immediately and then once per interval until ctx is done.
// Poll failures are logged and never stop the loop.
func (m *Monitor) Run(ctx context.Context) error {
	m.seed(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.Poll(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Monitor) seed(ctx context.Context) {
	if m.state == nil {
		return
	}
	state, ok, err := m.state.LastTick(ctx)
	if err != nil {
		m.logger.Warn("loading last tick failed", "kind", fault.KindPersistence, "error", err)
		return
	}
	if ok {
		m.setLast(state.Tick)
		m.logger.Info("resuming from stored tick", "tick", state.Tick, "observed_at", state.ObservedAt)
	}
}

// Poll performs one fetch-compare-publish cycle and reports whether a new
// tick was published.
func (m *Monitor) Poll(ctx context.Context) bool {
	current, err := m.source.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		m.logger.Warn("tick fetch failed", "kind", fault.KindOf(err), "error", err)
		return false
	}
	previous := m.Last()
	if current == previous {
		m.logger.Debug("tick unchanged", "tick", current)
		return false
	}

	if m.state != nil {
		state := store.TickState{Tick: current, ObservedAt: m.now().UTC()}
		if err := m.state.SaveTick(ctx, state); err != nil {
			m.logger.Warn("saving tick failed", "kind", fault.KindPersistence, "tick", current, "error", err)
		}
	}

	m.setLast(current)
	m.logger.Info("tick changed", "tick", current, "previous", previous)
	m.publisher.Publish(current)
	return true
}

// Last returns the most recently observed tick. It is safe to call while Run
// is polling.
func (m *Monitor) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Monitor) setLast(tick string) {
	m.mu.Lock()
	m.last = tick
	m.mu.Unlock()
}
