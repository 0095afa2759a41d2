package store

import (
	"context"
	"testing"
	"time"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string {
	return t.path
}

func TestPersistenceWatchEmitsSessionEvents(t *testing.T) {
	base := t.TempDir()
	p, err := New(testConfig{path: base})
	if err != nil {
		t.Fatalf("new persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe before writing.
	time.Sleep(50 * time.Millisecond)

	if err := p.Save(Session{Token: "opaque", User: User{SelfID: "admin", UserType: RoleAdmin}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	waitFor(t, ch, EventSessionChanged)

	if err := p.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	waitFor(t, ch, EventSessionCleared)
}

func TestPersistenceWatchReportsValueKeys(t *testing.T) {
	p, err := New(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("new persistence: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := p.Set(KeySnakeHighScore, "12"); err != nil {
		t.Fatalf("set: %v", err)
	}
	ev := waitFor(t, ch, EventValueChanged)
	if ev.Key != KeySnakeHighScore {
		t.Fatalf("expected key %q, got %q", KeySnakeHighScore, ev.Key)
	}
}

func TestPersistenceWatchClosesOnCancel(t *testing.T) {
	p, err := New(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("new persistence: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancel")
		}
	}
}

func TestPersistenceWatchCancelWithBurstPending(t *testing.T) {
	for i := 0; i < 5; i++ {
		p, err := New(testConfig{path: t.TempDir()})
		if err != nil {
			t.Fatalf("new persistence: %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := p.Watch(ctx)
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
		if err := p.Set(KeySnakeHighScore, "3"); err != nil {
			t.Fatalf("set: %v", err)
		}
		// Cancel near the end of the throttle window.
		time.Sleep(time.Duration(90+5*i) * time.Millisecond)
		cancel()
		for range ch {
		}
	}
	// A timer that fired around the cancel must not write to a closed channel.
	time.Sleep(200 * time.Millisecond)
}

func TestEventThrottleDrainsInOrder(t *testing.T) {
	th := newEventThrottle(10 * time.Millisecond)
	th.Enqueue(Event{Type: EventSessionCleared})
	th.Enqueue(Event{Type: EventSessionChanged})
	th.Enqueue(Event{Type: EventSessionChanged})
	th.Enqueue(Event{Type: EventValueChanged, Key: "k"})

	select {
	case <-th.Ready():
	case <-time.After(time.Second):
		t.Fatal("throttle never became ready")
	}
	got := th.Drain()
	want := []Event{{Type: EventValueChanged, Key: "k"}, {Type: EventSessionChanged}, {Type: EventSessionCleared}}
	if len(got) != len(want) {
		t.Fatalf("drain = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("drain[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if rest := th.Drain(); len(rest) != 0 {
		t.Errorf("second drain = %+v", rest)
	}
}

func TestEventThrottleStopAfterFire(t *testing.T) {
	th := newEventThrottle(time.Millisecond)
	th.Enqueue(Event{Type: EventSessionChanged})
	time.Sleep(20 * time.Millisecond)
	th.Stop()
	// The fired timer only signals; nothing is sent anywhere.
	select {
	case <-th.Ready():
	default:
		t.Fatal("fired timer did not signal")
	}
}

func waitFor(t *testing.T, ch <-chan Event, want EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				t.Fatalf("watch channel closed waiting for %s", want)
			}
			if evt.Type == want {
				return evt
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}
