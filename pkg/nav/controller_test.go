package nav

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/view"
)

type recordingHost struct {
	mu     sync.Mutex
	active SectionID
	title  string
	back   bool
}

func (h *recordingHost) SetActive(id SectionID) {
	h.mu.Lock()
	h.active = id
	h.mu.Unlock()
}

func (h *recordingHost) SetTitle(title string) {
	h.mu.Lock()
	h.title = title
	h.mu.Unlock()
}

func (h *recordingHost) SetBackVisible(v bool) {
	h.mu.Lock()
	h.back = v
	h.mu.Unlock()
}

type recordingContainer struct {
	mu     sync.Mutex
	panels []view.Panel
}

func (r *recordingContainer) Render(p view.Panel) {
	r.mu.Lock()
	r.panels = append(r.panels, p)
	r.mu.Unlock()
}

func (r *recordingContainer) last() view.Panel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.panels) == 0 {
		return view.Panel{}
	}
	return r.panels[len(r.panels)-1]
}

type recordingPresenter struct {
	messages []string
}

func (p *recordingPresenter) Notify(msg string, _ notify.Severity) notify.ID {
	p.messages = append(p.messages, msg)
	return notify.ID(len(p.messages))
}

func static(title string) Loader {
	return LoaderFunc(func(_ context.Context, c Container) (Cleanup, error) {
		c.Render(view.Panel{Title: title})
		return nil, nil
	})
}

func newTestController(t *testing.T, extra ...Section) (*Controller, *recordingHost, *recordingContainer, *recordingPresenter) {
	t.Helper()
	reg := NewRegistry().MustRegister(
		Section{ID: Dashboard, Title: "Dashboard", Loader: static("dash")},
		Section{ID: "all-registrations", Title: "All Registrations", Loader: static("all")},
		Section{ID: "pending-registrations", Loader: static("pending")},
	)
	for _, s := range extra {
		if err := reg.Register(s); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	host := &recordingHost{}
	out := &recordingContainer{}
	pres := &recordingPresenter{}
	return NewController(reg, host, out, pres), host, out, pres
}

func TestNavigateBackScenario(t *testing.T) {
	c, host, out, _ := newTestController(t)
	ctx := context.Background()

	if len(c.History()) != 0 || c.Current() != "" {
		t.Fatal("expected empty initial state")
	}

	if err := c.NavigateTo(ctx, Dashboard, false); err != nil {
		t.Fatal(err)
	}
	if got := c.History(); !reflect.DeepEqual(got, []SectionID{Dashboard}) {
		t.Fatalf("history = %v", got)
	}
	if host.back {
		t.Fatal("back should be hidden at depth 1")
	}

	if err := c.NavigateTo(ctx, "all-registrations", false); err != nil {
		t.Fatal(err)
	}
	if got := c.History(); !reflect.DeepEqual(got, []SectionID{Dashboard, "all-registrations"}) {
		t.Fatalf("history = %v", got)
	}
	if !host.back || host.active != "all-registrations" || host.title != "All Registrations" {
		t.Fatalf("host = %+v", host)
	}
	if out.last().Title != "all" {
		t.Fatalf("content = %+v", out.last())
	}

	if err := c.Back(ctx); err != nil {
		t.Fatal(err)
	}
	if got := c.History(); !reflect.DeepEqual(got, []SectionID{Dashboard}) {
		t.Fatalf("history after back = %v", got)
	}
	if c.Current() != Dashboard || host.active != Dashboard || host.back {
		t.Fatalf("current = %s host = %+v", c.Current(), host)
	}
}

func TestBackAtRootIsNoop(t *testing.T) {
	c, _, _, _ := newTestController(t)
	ctx := context.Background()
	if err := c.Back(ctx); err != nil {
		t.Fatal(err)
	}
	c.NavigateTo(ctx, Dashboard, false)
	c.Back(ctx)
	if got := c.History(); !reflect.DeepEqual(got, []SectionID{Dashboard}) {
		t.Fatalf("history = %v", got)
	}
}

func TestHistoryInvariantsUnderRandomOps(t *testing.T) {
	c, _, _, _ := newTestController(t)
	ctx := context.Background()
	ids := []SectionID{Dashboard, "all-registrations", "pending-registrations", "unknown-section"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		before := len(c.History())
		switch op := rng.Intn(4); op {
		case 0, 1:
			c.NavigateTo(ctx, ids[rng.Intn(len(ids))], false)
		case 2:
			c.NavigateTo(ctx, ids[rng.Intn(len(ids))], true)
			if after := len(c.History()); before > 0 && after > before {
				t.Fatalf("skipHistoryPush grew history %d -> %d", before, after)
			}
		case 3:
			c.Back(ctx)
			if after := len(c.History()); after > before {
				t.Fatalf("back grew history %d -> %d", before, after)
			}
		}
		h := c.History()
		if len(h) == 0 {
			t.Fatalf("history empty after navigation started (op %d)", i)
		}
		if h[len(h)-1] != c.Current() {
			t.Fatalf("top %s != current %s", h[len(h)-1], c.Current())
		}
	}
}

func TestConcurrentBackNeverDuplicatesTop(t *testing.T) {
	c, _, _, _ := newTestController(t)
	ctx := context.Background()
	c.NavigateTo(ctx, Dashboard, false)

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			c.NavigateTo(ctx, SectionID(fmt.Sprintf("s-%d", i)), false)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			c.Back(ctx)
		}
	}()
	wg.Wait()

	// Every pushed id is unique, so equal neighbours mean a push was
	// overwritten by a back.
	h := c.History()
	for i := 1; i < len(h); i++ {
		if h[i] == h[i-1] {
			t.Fatalf("history %v repeats %s at %d", h, h[i], i)
		}
	}
	if h[len(h)-1] != c.Current() {
		t.Fatalf("top %s != current %s", h[len(h)-1], c.Current())
	}
}

func TestUnknownSectionUsesPlaceholder(t *testing.T) {
	c, host, out, _ := newTestController(t)
	if err := c.NavigateTo(context.Background(), "team-reports", false); err != nil {
		t.Fatal(err)
	}
	p := out.last()
	if p.Kind != view.KindPlaceholder || p.Message != "The 'Team Reports' section is not yet implemented." {
		t.Fatalf("panel = %+v", p)
	}
	if host.title != "Team Reports" {
		t.Fatalf("title = %q", host.title)
	}
}

func TestCleanupRunsBeforeNextNavigation(t *testing.T) {
	var order []string
	game := Section{ID: "snake-game", Loader: LoaderFunc(func(_ context.Context, c Container) (Cleanup, error) {
		order = append(order, "load snake")
		return func() { order = append(order, "cleanup snake") }, nil
	})}
	next := Section{ID: "memory-game", Loader: LoaderFunc(func(_ context.Context, c Container) (Cleanup, error) {
		order = append(order, "load memory")
		return nil, nil
	})}
	c, _, _, _ := newTestController(t, game, next)
	ctx := context.Background()

	c.NavigateTo(ctx, "snake-game", false)
	c.NavigateTo(ctx, "memory-game", false)
	c.NavigateTo(ctx, Dashboard, false)

	want := []string{"load snake", "cleanup snake", "load memory"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestCleanupRunsOnceAcrossRapidBack(t *testing.T) {
	calls := 0
	game := Section{ID: "tic-tac-toe", Loader: LoaderFunc(func(_ context.Context, c Container) (Cleanup, error) {
		return func() { calls++ }, nil
	})}
	c, _, _, _ := newTestController(t, game)
	ctx := context.Background()

	c.NavigateTo(ctx, Dashboard, false)
	c.NavigateTo(ctx, "tic-tac-toe", false)
	c.Back(ctx)
	c.Back(ctx)
	c.Shutdown()
	c.Shutdown()
	if calls != 1 {
		t.Fatalf("cleanup ran %d times", calls)
	}
}

func TestOnceWrapperIdempotent(t *testing.T) {
	calls := 0
	fn := once(func() { calls++ })
	fn()
	fn()
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestLoaderPanicRendersErrorPanel(t *testing.T) {
	broken := Section{ID: "contact-statistics", Title: "Contact Statistics", Loader: LoaderFunc(func(context.Context, Container) (Cleanup, error) {
		panic("nil map")
	})}
	c, host, out, _ := newTestController(t, broken)
	ctx := context.Background()
	c.NavigateTo(ctx, Dashboard, false)

	err := c.NavigateTo(ctx, "contact-statistics", false)
	var fault *LoaderFault
	if !errors.As(err, &fault) || fault.Panic == nil {
		t.Fatalf("err = %v", err)
	}
	p := out.last()
	if p.Kind != view.KindError || p.Message != "Failed to load Contact Statistics" {
		t.Fatalf("panel = %+v", p)
	}
	if _, ok := p.Action(view.ActionBackToDashboard); !ok {
		t.Fatal("error panel needs a Back to Dashboard action")
	}
	// State updated before the loader ran stays as it was.
	if c.Current() != "contact-statistics" || host.active != "contact-statistics" || len(c.History()) != 2 {
		t.Fatalf("state after fault: %s %v", c.Current(), c.History())
	}

	handled, err := c.HandleAction(ctx, view.ActionBackToDashboard)
	if !handled || err != nil {
		t.Fatalf("back to dashboard: %v %v", handled, err)
	}
	if c.Current() != Dashboard || out.last().Title != "dash" {
		t.Fatalf("dashboard not shown: %s %+v", c.Current(), out.last())
	}
}

func TestLoaderErrorAndRetry(t *testing.T) {
	fail := true
	flaky := Section{ID: "pending-contacts", Loader: LoaderFunc(func(_ context.Context, c Container) (Cleanup, error) {
		if fail {
			return nil, errors.New("HTTP error! Status: 502")
		}
		c.Render(view.Panel{Title: "ok"})
		return nil, nil
	})}
	c, _, out, _ := newTestController(t, flaky)
	ctx := context.Background()

	c.NavigateTo(ctx, "pending-contacts", false)
	p := out.last()
	if p.Kind != view.KindError || p.Fields[0].Value != "HTTP error! Status: 502" {
		t.Fatalf("panel = %+v", p)
	}

	fail = false
	if handled, err := c.HandleAction(ctx, view.ActionRetry); !handled || err != nil {
		t.Fatalf("retry: %v %v", handled, err)
	}
	if out.last().Title != "ok" || len(c.History()) != 1 {
		t.Fatalf("retry result %+v history %v", out.last(), c.History())
	}
}

func TestRefreshNotifies(t *testing.T) {
	loads := 0
	counted := Section{ID: "all-contacts", Loader: LoaderFunc(func(context.Context, Container) (Cleanup, error) {
		loads++
		return nil, nil
	})}
	c, _, _, pres := newTestController(t, counted)
	ctx := context.Background()

	if err := c.Refresh(ctx); err != nil || loads != 0 {
		t.Fatal("refresh before navigation should do nothing")
	}
	c.NavigateTo(ctx, "all-contacts", false)
	c.Refresh(ctx)
	if loads != 2 || len(c.History()) != 1 {
		t.Fatalf("loads = %d history = %v", loads, c.History())
	}
	if len(pres.messages) != 1 || pres.messages[0] != "Data refreshed" {
		t.Fatalf("messages = %v", pres.messages)
	}
}

func TestStaleLoaderIsDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	staleCleanups := 0
	slow := Section{ID: "all-registrations-slow", Loader: LoaderFunc(func(_ context.Context, c Container) (Cleanup, error) {
		close(started)
		<-release
		c.Render(view.Panel{Title: "stale"})
		return func() { staleCleanups++ }, nil
	})}
	c, _, out, _ := newTestController(t, slow)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		c.NavigateTo(ctx, "all-registrations-slow", false)
		close(done)
	}()
	<-started
	c.NavigateTo(ctx, Dashboard, false)
	close(release)
	<-done

	if out.last().Title != "dash" {
		t.Fatalf("stale loader overwrote content: %+v", out.last())
	}
	if staleCleanups != 1 {
		t.Fatalf("stale cleanup ran %d times", staleCleanups)
	}
	if c.Current() != Dashboard {
		t.Fatalf("current = %s", c.Current())
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Section{ID: "a", Loader: static("a")}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(Section{ID: "a", Loader: static("again")}); err == nil {
		t.Fatal("duplicate registration should fail")
	}
	if err := reg.Register(Section{ID: "b"}); err == nil {
		t.Fatal("missing loader should fail")
	}
	reg.MustRegister(Section{ID: "hidden", Loader: static("h"), Hidden: true})
	if got := reg.Sections(); len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("sections = %+v", got)
	}
	if !reg.Has("hidden") {
		t.Fatal("hidden section should still be routable")
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"pending-registrations": "Pending Registrations",
		"tic-tac-toe":           "Tic Tac Toe",
		"dashboard":             "Dashboard",
		"":                      "",
	}
	for in, want := range tests {
		if got := TitleCase(in); got != want {
			t.Errorf("TitleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
