package nav

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/zdash/pkg/metrics"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/view"
)

// Host is the chrome around the content pane.
type Host interface {
	SetActive(id SectionID)
	SetTitle(title string)
	SetBackVisible(visible bool)
}

// Presenter raises transient notifications.
type Presenter interface {
	Notify(message string, severity notify.Severity) notify.ID
}

// Controller is the navigation state machine. It owns the current section,
// the back history and the active section's cleanup.
type Controller struct {
	registry  *Registry
	host      Host
	container Container
	presenter Presenter

	home    SectionID
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	current SectionID
	history []SectionID
	cleanup Cleanup
	// frame increments on every navigation; loaders render through a
	// frame and their writes are dropped once it is stale.
	frame uint64

	renderMu sync.Mutex
}

// Option customizes a Controller.
type Option func(*Controller)

// WithHome sets the section error panels return to. Defaults to Dashboard.
func WithHome(id SectionID) Option {
	return func(c *Controller) { c.home = id }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithClock replaces time.Now in error panels.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController wires a controller. presenter may be nil.
func NewController(registry *Registry, host Host, container Container, presenter Presenter, opts ...Option) *Controller {
	c := &Controller{
		registry:  registry,
		host:      host,
		container: container,
		presenter: presenter,
		home:      Dashboard,
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current is the section on screen, or "" before the first navigation.
func (c *Controller) Current() SectionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// History is a copy of the back stack, most recent last.
func (c *Controller) History() []SectionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SectionID(nil), c.history...)
}

// Home is the section error panels return to.
func (c *Controller) Home() SectionID {
	return c.home
}

// Registry is the controller's section table.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// NavigateTo switches to id. With skipHistoryPush the history keeps its
// length and its top is made id. The error return is the loader's fault, if
// any; it has already been rendered.
func (c *Controller) NavigateTo(ctx context.Context, id SectionID, skipHistoryPush bool) error {
	c.mu.Lock()
	switch {
	case !skipHistoryPush, len(c.history) == 0:
		c.history = append(c.history, id)
	default:
		c.history[len(c.history)-1] = id
	}
	e := c.enterLocked(id)
	c.mu.Unlock()
	return c.load(ctx, id, e)
}

// Back pops the current entry and shows the one beneath. It is a no-op with
// less than two entries.
func (c *Controller) Back(ctx context.Context) error {
	c.mu.Lock()
	if len(c.history) < 2 {
		c.mu.Unlock()
		return nil
	}
	c.history = c.history[:len(c.history)-1]
	target := c.history[len(c.history)-1]
	e := c.enterLocked(target)
	c.mu.Unlock()
	return c.load(ctx, target, e)
}

// entry is what a navigation took over from its predecessor.
type entry struct {
	prev  Cleanup
	frame uint64
	depth int
}

// enterLocked makes id current once history is settled. c.mu must be held.
func (c *Controller) enterLocked(id SectionID) entry {
	e := entry{prev: c.cleanup, depth: len(c.history)}
	c.cleanup = nil
	c.current = id
	c.frame++
	e.frame = c.frame
	return e
}

func (c *Controller) load(ctx context.Context, id SectionID, e entry) error {
	c.runCleanup(e.prev)

	title := c.registry.DisplayName(id)
	if c.host != nil {
		c.host.SetActive(id)
		c.host.SetTitle(title)
		c.host.SetBackVisible(e.depth > 1)
	}
	c.metrics.Navigation(string(id))
	c.log.Debug().Str("section", string(id)).Int("depth", e.depth).Msg("nav: navigate")

	out := &frameContainer{c: c, frame: e.frame}
	out.Render(view.Panel{Kind: view.KindLoading, Title: title, Message: "Loading..."})

	cleanup, fault := c.invoke(ctx, id, out)
	if cleanup != nil {
		c.mu.Lock()
		if c.frame == e.frame {
			c.cleanup = once(cleanup)
			cleanup = nil
		}
		c.mu.Unlock()
		// A newer navigation already started; nothing will ever run this.
		c.runCleanup(cleanup)
	}

	if fault != nil {
		c.log.Warn().Err(fault).Str("section", string(id)).Msg("nav: loader failed")
		out.Render(c.errorPanel(title, fault))
		return fault
	}
	return nil
}

// Refresh re-runs the current loader without touching history.
func (c *Controller) Refresh(ctx context.Context) error {
	current := c.Current()
	if current == "" {
		return nil
	}
	if err := c.NavigateTo(ctx, current, true); err != nil {
		return err
	}
	if c.presenter != nil {
		c.presenter.Notify("Data refreshed", notify.Success)
	}
	return nil
}

// Retry re-runs the current loader quietly, for the error panel's
// "Try again".
func (c *Controller) Retry(ctx context.Context) error {
	current := c.Current()
	if current == "" {
		current = c.home
	}
	return c.NavigateTo(ctx, current, true)
}

// HandleAction runs the controller's own panel actions. It reports false for
// ids it does not own.
func (c *Controller) HandleAction(ctx context.Context, actionID string) (bool, error) {
	switch actionID {
	case view.ActionBackToDashboard:
		return true, c.NavigateTo(ctx, c.home, false)
	case view.ActionRetry:
		return true, c.Retry(ctx)
	}
	return false, nil
}

// Shutdown runs the active cleanup and turns any in-flight loader's frame
// stale. The controller can be navigated again afterwards.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	prev := c.cleanup
	c.cleanup = nil
	c.frame++
	c.mu.Unlock()
	c.runCleanup(prev)
}

func (c *Controller) invoke(ctx context.Context, id SectionID, out Container) (cleanup Cleanup, fault *LoaderFault) {
	defer func() {
		if r := recover(); r != nil {
			fault = &LoaderFault{Section: id, Panic: r}
		}
	}()
	cleanup, err := c.registry.Loader(id).Load(ctx, out)
	if err != nil {
		return cleanup, &LoaderFault{Section: id, Err: err}
	}
	return cleanup, nil
}

func (c *Controller) runCleanup(fn Cleanup) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("nav: cleanup panicked")
		}
	}()
	fn()
}

func (c *Controller) errorPanel(title string, fault *LoaderFault) view.Panel {
	return view.Panel{
		Kind:    view.KindError,
		Title:   "Error Loading Content",
		Message: fmt.Sprintf("Failed to load %s", title),
		Fields: []view.Field{
			{Label: "Error", Value: fault.Reason()},
			{Label: "Time", Value: c.now().Format("2006-01-02 15:04:05")},
		},
		Actions: []view.Action{
			{ID: view.ActionRetry, Label: "Try again", Key: "r"},
			{ID: view.ActionBackToDashboard, Label: "Back to Dashboard", Key: "h"},
		},
	}
}

func (c *Controller) isCurrent(frame uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame == frame
}

// frameContainer forwards renders while its navigation is still current.
type frameContainer struct {
	c     *Controller
	frame uint64
}

func (f *frameContainer) Render(p view.Panel) {
	f.c.renderMu.Lock()
	defer f.c.renderMu.Unlock()
	if !f.c.isCurrent(f.frame) || f.c.container == nil {
		return
	}
	f.c.container.Render(p)
}

// once wraps fn so only the first call runs it.
func once(fn Cleanup) Cleanup {
	var o sync.Once
	return func() { o.Do(fn) }
}
