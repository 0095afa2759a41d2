// Package notify keeps the stack of transient notifications shown over the
// dashboard. Each notification expires on its own timer.
package notify

import (
	"sync"
	"time"

	"tableflip.dev/zdash/pkg/metrics"
)

// Severity of a notification.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

const (
	// ShortLifetime applies to plain notifications.
	ShortLifetime = 5 * time.Second
	// LongLifetime applies to detailed notifications.
	LongLifetime = 8 * time.Second
)

// ID identifies a notification for dismissal.
type ID uint64

// Detail is one line of a detailed notification.
type Detail struct {
	Label string
	Value string
}

// Detailed is a notification with a title and a key/value list.
type Detailed struct {
	Title    string
	Message  string
	Severity Severity
	Details  []Detail
}

// Notification is a snapshot of one visible notification.
type Notification struct {
	ID       ID
	Title    string
	Message  string
	Severity Severity
	Details  []Detail
	Created  time.Time
	Expires  time.Time
}

// Timer is the handle returned by the scheduling function.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type item struct {
	n     Notification
	timer Timer
}

// Presenter owns the notification stack.
type Presenter struct {
	mu       sync.Mutex
	stack    []*item
	mounted  bool
	nextID   ID
	after    AfterFunc
	now      func() time.Time
	onChange func([]Notification)
	metrics  *metrics.Metrics
}

// Option customizes a Presenter.
type Option func(*Presenter)

// WithAfterFunc replaces time.AfterFunc, for tests.
func WithAfterFunc(f AfterFunc) Option {
	return func(p *Presenter) { p.after = f }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Presenter) { p.now = now }
}

// WithMetrics counts presented notifications.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Presenter) { p.metrics = m }
}

// New returns an empty presenter.
func New(opts ...Option) *Presenter {
	p := &Presenter{after: realAfterFunc, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnChange registers fn to receive the stack after every change. fn runs
// outside the presenter lock.
func (p *Presenter) OnChange(fn func([]Notification)) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Notify shows a plain notification for ShortLifetime.
func (p *Presenter) Notify(message string, severity Severity) ID {
	return p.push(Notification{Message: message, Severity: severity}, ShortLifetime)
}

// NotifyDetailed shows a detailed notification for LongLifetime.
func (p *Presenter) NotifyDetailed(d Detailed) ID {
	if d.Severity == "" {
		d.Severity = Info
	}
	return p.push(Notification{
		Title:    d.Title,
		Message:  d.Message,
		Severity: d.Severity,
		Details:  append([]Detail(nil), d.Details...),
	}, LongLifetime)
}

func (p *Presenter) push(n Notification, lifetime time.Duration) ID {
	if n.Severity == "" {
		n.Severity = Info
	}

	p.mu.Lock()
	if !p.mounted {
		p.stack = make([]*item, 0, 4)
		p.mounted = true
	}
	p.nextID++
	id := p.nextID
	n.ID = id
	n.Created = p.now()
	n.Expires = n.Created.Add(lifetime)
	it := &item{n: n}
	p.stack = append(p.stack, it)
	// The callback's Dismiss blocks on p.mu until the timer is recorded.
	it.timer = p.after(lifetime, func() { p.Dismiss(id) })
	snapshot, hook := p.snapshotLocked(), p.onChange
	p.mu.Unlock()

	p.metrics.Notification(string(n.Severity))
	if hook != nil {
		hook(snapshot)
	}
	return id
}

// Dismiss removes the notification and cancels its timer. It reports
// whether anything was removed; dismissing twice is harmless.
func (p *Presenter) Dismiss(id ID) bool {
	p.mu.Lock()
	idx := -1
	for i, it := range p.stack {
		if it.n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.mu.Unlock()
		return false
	}
	it := p.stack[idx]
	p.stack = append(p.stack[:idx], p.stack[idx+1:]...)
	snapshot, hook := p.snapshotLocked(), p.onChange
	p.mu.Unlock()

	if it.timer != nil {
		it.timer.Stop()
	}
	if hook != nil {
		hook(snapshot)
	}
	return true
}

// DismissAll clears the stack.
func (p *Presenter) DismissAll() {
	p.mu.Lock()
	items := p.stack
	p.stack = p.stack[:0:0]
	hook := p.onChange
	p.mu.Unlock()

	for _, it := range items {
		if it.timer != nil {
			it.timer.Stop()
		}
	}
	if hook != nil && len(items) > 0 {
		hook(nil)
	}
}

// Active is the visible stack, oldest first.
func (p *Presenter) Active() []Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Mounted reports whether anything has been shown yet.
func (p *Presenter) Mounted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounted
}

func (p *Presenter) snapshotLocked() []Notification {
	if len(p.stack) == 0 {
		return nil
	}
	out := make([]Notification, len(p.stack))
	for i, it := range p.stack {
		out[i] = it.n
	}
	return out
}
