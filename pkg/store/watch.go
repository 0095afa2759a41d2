package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventSessionChanged indicates the token or user was written, for
	// example by `zdash login` in another terminal.
	EventSessionChanged EventType = iota

	// EventSessionCleared indicates the token was removed. Callers holding a
	// session should treat it as logged out.
	EventSessionCleared

	// EventValueChanged indicates a non-session key changed.
	EventValueChanged
)

func (t EventType) String() string {
	switch t {
	case EventSessionChanged:
		return "session-changed"
	case EventSessionCleared:
		return "session-cleared"
	case EventValueChanged:
		return "value-changed"
	default:
		return "unknown"
	}
}

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType
	Key  string
}

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel to avoid blocking the watcher. The channel is closed once
// ctx is done or the watcher encounters an unrecoverable error.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if p.basePath == "" {
		return nil, errors.New("store: persistence base path unknown")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				p.log.Warn().Err(err).Msg("store: watcher close")
			}
		})
	}

	if err := watcher.Add(p.basePath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", p.basePath, err)
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// A slow consumer reloads the session anyway; drop.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-throttle.Ready():
				for _, ev := range throttle.Drain() {
					send(ev)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Debug().Err(err).Msg("store: watcher error")
				throttle.Enqueue(Event{Type: EventSessionChanged})
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev, ok := p.classify(evt); ok {
					throttle.Enqueue(ev)
				}
			}
		}
	}()

	return events, nil
}

// classify maps a filesystem event on the flat diskv layout onto a store event.
func (p *persistence) classify(evt fsnotify.Event) (Event, bool) {
	if filepath.Clean(filepath.Dir(evt.Name)) != filepath.Clean(p.basePath) {
		return Event{}, false
	}
	key := filepath.Base(evt.Name)
	if key == tempDirName || key == "" {
		return Event{}, false
	}

	removed := evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0
	switch key {
	case keyToken:
		if removed {
			if _, err := os.Stat(evt.Name); errors.Is(err, os.ErrNotExist) {
				return Event{Type: EventSessionCleared}, true
			}
		}
		return Event{Type: EventSessionChanged}, true
	case keyUser:
		return Event{Type: EventSessionChanged}, true
	default:
		return Event{Type: EventValueChanged, Key: key}, true
	}
}

// eventThrottle coalesces rapid change notifications so a burst of writes
// (token then user on login) reaches the consumer once. Its timer only
// signals Ready; the watch goroutine drains and sends, so nothing writes to
// the events channel after it is closed.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]map[string]struct{}
	delay   time.Duration
	ready   chan struct{}
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]map[string]struct{}),
		ready:   make(chan struct{}, 1),
	}
}

func (t *eventThrottle) Enqueue(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending[ev.Type] == nil {
		t.pending[ev.Type] = make(map[string]struct{})
	}
	t.pending[ev.Type][ev.Key] = struct{}{}

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, t.signal)
	}
}

func (t *eventThrottle) signal() {
	select {
	case t.ready <- struct{}{}:
	default:
	}
}

// Ready receives once a burst has settled.
func (t *eventThrottle) Ready() <-chan struct{} {
	return t.ready
}

// Drain takes the pending burst. Changes come before clears so the last
// event of a burst that ended in a logout is the clear.
func (t *eventThrottle) Drain() []Event {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	var out []Event
	for _, eventType := range []EventType{EventValueChanged, EventSessionChanged, EventSessionCleared} {
		for key := range pending[eventType] {
			out = append(out, Event{Type: eventType, Key: key})
		}
	}
	return out
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
