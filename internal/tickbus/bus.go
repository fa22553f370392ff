// Package tickbus carries tick-change signals from the tick monitor to every
// scheduler that subscribed before the signal was published.
//
// Each subscription owns an unbounded FIFO queue, so a slow consumer never
// blocks the publisher or its sibling subscribers. Signals published before a
// subscription exists are not replayed, and nothing survives a restart.
package tickbus

import (
	"context"
	"errors"
	"iter"
	"sync"
)

// ErrClosed is returned by Next once the subscription or bus is closed and
// the queue is drained.
var ErrClosed = errors.New("tickbus: subscription closed")

type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func New() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Publish enqueues signal on every current subscription and returns
// immediately. Publishing on a closed bus is a no-op.
func (b *Bus) Publish(signal string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for sub := range b.subs {
		sub.push(signal)
	}
}

func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus:   b,
		ready: make(chan struct{}, 1),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.closed = true
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Close stops accepting publishes. Subscribers still receive whatever was
// queued before Close, then ErrClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		sub.finish(false)
	}
	b.subs = nil
}

// Subscribers reports how many subscriptions are currently attached.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub)
}

type Subscription struct {
	bus   *Bus
	ready chan struct{}

	mu     sync.Mutex
	queue  []string
	closed bool
}

func (s *Subscription) push(signal string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, signal)
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription) finish(discard bool) {
	s.mu.Lock()
	s.closed = true
	if discard {
		s.queue = nil
	}
	s.mu.Unlock()
	s.wake()
}

func (s *Subscription) wake() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Next blocks until a signal is available, ctx is done, or the subscription
// is closed and drained.
func (s *Subscription) Next(ctx context.Context) (string, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			signal := s.queue[0]
			s.queue[0] = ""
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return signal, nil
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return "", ErrClosed
		}

		select {
		case <-s.ready:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Seq yields signals until ctx is done or the subscription closes. Stopping
// early leaves unread signals queued for the next call.
func (s *Subscription) Seq(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			signal, err := s.Next(ctx)
			if err != nil {
				return
			}
			if !yield(signal) {
				return
			}
		}
	}
}

// Pending reports the number of queued, unread signals.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close detaches the subscription and discards anything still queued.
func (s *Subscription) Close() {
	s.bus.remove(s)
	s.finish(true)
}
