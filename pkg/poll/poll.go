// Package poll re-fetches pending-item counters on an interval and raises a
// notification whenever one grows.
package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/zdash/pkg/api"
	"tableflip.dev/zdash/pkg/metrics"
)

// DefaultInterval between ticks.
const DefaultInterval = 30 * time.Second

// Counter is one tracked count.
type Counter struct {
	Name string
	// Message is a fmt format taking the delta, e.g.
	// "%d new registration(s) pending approval!".
	Message string
	Fetch   func(ctx context.Context) (int, error)
}

// Ticker is the part of time.Ticker the notifier uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Notifier polls Counters every Interval while started.
type Notifier struct {
	Counters []Counter
	Interval time.Duration
	// Notify receives the formatted message for each increase.
	Notify func(message string)
	// OnAuthExpired runs when a fetch reports the session expired; the
	// notifier has stopped itself by then.
	OnAuthExpired func()

	NewTicker func(d time.Duration) Ticker
	Log       zerolog.Logger
	Metrics   *metrics.Metrics

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	last    map[string]int
	running bool
}

// Start seeds the counters immediately and then ticks every Interval until
// Stop, ctx cancellation or an expired session. Starting a running notifier
// is a no-op; starting one that is still stopping waits for the old loop to
// exit first. Baselines are reset on every start.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	for n.running {
		if n.cancel != nil {
			n.mu.Unlock()
			return
		}
		// Stopping: Stop has taken the cancel func but the loop is still up.
		done := n.done
		n.mu.Unlock()
		<-done
		n.mu.Lock()
	}
	if n.cancel != nil {
		// Left over from a loop that stopped itself.
		n.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.done = make(chan struct{})
	n.last = make(map[string]int, len(n.Counters))
	n.running = true
	done := n.done
	n.mu.Unlock()

	go n.loop(ctx, done)
}

// Stop cancels the loop and waits for it to exit. Safe to call repeatedly
// and on a notifier that never started.
func (n *Notifier) Stop() {
	n.mu.Lock()
	cancel, done := n.cancel, n.done
	n.cancel = nil
	n.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (n *Notifier) Running() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

// LastKnown is a copy of the current baselines.
func (n *Notifier) LastKnown() map[string]int {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string]int, len(n.last))
	for k, v := range n.last {
		out[k] = v
	}
	return out
}

func (n *Notifier) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		n.mu.Lock()
		n.running = false
		n.mu.Unlock()
		close(done)
	}()

	if n.expired(n.Tick(ctx)) {
		return
	}

	interval := n.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	newTicker := n.NewTicker
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	ticker := newTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if n.expired(n.Tick(ctx)) {
				return
			}
		}
	}
}

func (n *Notifier) expired(err error) bool {
	if !errors.Is(err, api.ErrAuthExpired) {
		return false
	}
	n.Log.Info().Msg("poll: session expired, stopping")
	if n.OnAuthExpired != nil {
		n.OnAuthExpired()
	}
	return true
}

// Tick fetches every counter once. A failed fetch leaves that counter's
// baseline alone. It returns api.ErrAuthExpired as soon as a fetch does.
func (n *Notifier) Tick(ctx context.Context) error {
	n.Metrics.PollTick()
	for _, c := range n.Counters {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		count, err := c.Fetch(ctx)
		if err != nil {
			if errors.Is(err, api.ErrAuthExpired) {
				return err
			}
			n.Log.Warn().Err(err).Str("counter", c.Name).Msg("poll: fetch failed")
			continue
		}

		n.mu.Lock()
		if n.last == nil {
			n.last = make(map[string]int, len(n.Counters))
		}
		prev, seeded := n.last[c.Name]
		n.last[c.Name] = count
		n.mu.Unlock()

		if seeded && count > prev && n.Notify != nil {
			n.Notify(fmt.Sprintf(c.Message, count-prev))
		}
	}
	return nil
}
