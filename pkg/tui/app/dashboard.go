package teaui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/zdash/pkg/export"
	"tableflip.dev/zdash/pkg/nav"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/poll"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/sections"
	"tableflip.dev/zdash/pkg/store"
	"tableflip.dev/zdash/pkg/tui/components/content"
	"tableflip.dev/zdash/pkg/view"
)

type focus int

const (
	focusSidebar focus = iota
	focusContent
)

// sectionItem is one sidebar row.
type sectionItem struct {
	section nav.Section
	title   string
}

func (i sectionItem) Title() string       { return i.title }
func (i sectionItem) Description() string { return i.section.Group }
func (i sectionItem) FilterValue() string { return i.title }

// dashboard is everything that lives for one signed-in session.
type dashboard struct {
	root *Model
	user store.User

	ctx    context.Context
	cancel context.CancelFunc

	registry *nav.Registry
	ctrl     *nav.Controller
	keys     *sections.Keys
	surface  *surface
	poller   *poll.Notifier

	sidebar list.Model
	content *content.Model
	focus   focus
	prompt  *actionPrompt

	width, height int
	seen          uint64
	active        nav.SectionID
	title         string
	back          bool
}

func newDashboard(root *Model, sess store.Session) *dashboard {
	cfg := root.cfg
	ctx, cancel := context.WithCancel(root.ctx)
	d := &dashboard{
		root:    root,
		user:    sess.User,
		ctx:     ctx,
		cancel:  cancel,
		keys:    &sections.Keys{},
		surface: newSurface(root.send),
		content: content.New(root.theme.Content),
		focus:   focusSidebar,
	}

	deps := sections.Deps{
		User:      sess.User,
		Presenter: cfg.Presenter,
		Keys:      d.keys,
	}
	if cfg.Client != nil {
		deps.API = cfg.Client
	}
	if cfg.Service != nil && cfg.Service.Persistence != nil {
		deps.Scores = cfg.Service.Persistence
	}
	d.registry = sections.For(sess.User.UserType, deps)
	d.ctrl = nav.NewController(d.registry, d.surface, d.surface, cfg.Presenter,
		nav.WithLogger(cfg.Log),
		nav.WithMetrics(cfg.Metrics),
	)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	items := make([]list.Item, 0)
	for _, s := range d.registry.Sections() {
		items = append(items, sectionItem{section: s, title: d.registry.DisplayName(s.ID)})
	}
	d.sidebar = list.New(items, delegate, 28, 20)
	d.sidebar.SetShowHelp(false)
	d.sidebar.SetShowStatusBar(false)
	d.sidebar.SetShowTitle(false)
	d.sidebar.SetFilteringEnabled(false)

	if cfg.Client != nil {
		if counters := poll.CountersFor(sess.User.UserType, cfg.Client); len(counters) > 0 {
			d.poller = &poll.Notifier{
				Counters: counters,
				Interval: cfg.PollInterval,
				Notify: func(message string) {
					cfg.Presenter.Notify(message, notify.Info)
				},
				OnAuthExpired: func() { root.deliver(authExpiredMsg{}) },
				Log:           cfg.Log,
				Metrics:       cfg.Metrics,
			}
			d.poller.Start(ctx)
		}
	}
	return d
}

func (d *dashboard) home() nav.SectionID {
	return d.ctrl.Home()
}

// close stops the poller, runs the section cleanup and cancels in-flight
// loads.
func (d *dashboard) close() {
	if d.poller != nil {
		d.poller.Stop()
	}
	d.ctrl.Shutdown()
	d.cancel()
}

func (d *dashboard) navigate(id nav.SectionID, skipHistory bool) tea.Cmd {
	ctrl, ctx := d.ctrl, d.ctx
	return func() tea.Msg {
		return navDoneMsg{err: ctrl.NavigateTo(ctx, id, skipHistory)}
	}
}

func (d *dashboard) run(fn func(context.Context) error) tea.Cmd {
	ctx := d.ctx
	return func() tea.Msg {
		return navDoneMsg{err: fn(ctx)}
	}
}

// reload re-runs the current loader without the "Data refreshed" toast.
func (d *dashboard) reload() tea.Cmd {
	return d.run(d.ctrl.Retry)
}

// sync pulls the latest surface state into the widgets.
func (d *dashboard) sync() {
	st := d.surface.snapshot()
	if st.seq == d.seen {
		return
	}
	d.seen = st.seq
	d.title, d.back = st.title, st.back
	if st.active != d.active {
		d.active = st.active
		for i, it := range d.sidebar.Items() {
			if si, ok := it.(sectionItem); ok && si.section.ID == st.active {
				d.sidebar.Select(i)
				break
			}
		}
	}
	d.content.SetPanel(st.panel)
}

func (d *dashboard) setSize(width, height int) {
	d.width, d.height = width, height
	side := min(max(width/4, 24), 34)
	frame := d.root.theme.Sidebar.Frame
	// One line for the header above the list.
	d.sidebar.SetSize(max(side-frame.GetHorizontalFrameSize(), 1), max(height-frame.GetVerticalFrameSize()-2, 1))
	d.content.SetSize(max(width-side, 10), height)
}

func (d *dashboard) setFocus(f focus) {
	d.focus = f
	d.content.SetFocused(f == focusContent)
}

func (d *dashboard) hints() string {
	return "tab focus · enter open · b back · R refresh · e export · ? help · O logout · q quit"
}

func (d *dashboard) helpNotes() string {
	var b strings.Builder
	b.WriteString("## Sections\n\n")
	for _, s := range d.registry.Sections() {
		fmt.Fprintf(&b, "* %s\n", d.registry.DisplayName(s.ID))
	}
	return b.String()
}

func (d *dashboard) handleKey(root *Model, msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()

	if d.prompt != nil {
		cmd, done, cancelled := d.prompt.update(msg)
		switch {
		case cancelled:
			d.prompt = nil
			root.footer.SetStatus("Cancelled")
		case done:
			p := d.prompt
			d.prompt = nil
			return d.perform(p.action, p.row, p.answers)
		}
		return cmd
	}

	switch key {
	case "q":
		root.Shutdown()
		return tea.Quit
	case "?":
		root.toggleHelp()
		return nil
	case "tab":
		if d.focus == focusSidebar {
			d.setFocus(focusContent)
		} else {
			d.setFocus(focusSidebar)
		}
		return nil
	case "esc", "b":
		return d.run(d.ctrl.Back)
	case "R":
		return d.run(d.ctrl.Refresh)
	case "O":
		return root.logout()
	case "d":
		root.cfg.Presenter.DismissAll()
		return nil
	case "E":
		if _, ok := d.content.Panel().Action(view.ActionExport); ok {
			return d.exportAs(export.XLSX)
		}
		return nil
	}

	if d.focus == focusContent && d.keys.Dispatch(key) {
		return nil
	}

	if d.focus == focusSidebar {
		switch key {
		case "up", "k":
			d.sidebar.CursorUp()
			return nil
		case "down", "j":
			d.sidebar.CursorDown()
			return nil
		case "enter":
			if it, ok := d.sidebar.SelectedItem().(sectionItem); ok {
				d.setFocus(focusContent)
				return d.navigate(it.section.ID, false)
			}
			return nil
		}
	} else {
		switch key {
		case "up", "k":
			d.content.Move(-1)
			return nil
		case "down", "j":
			d.content.Move(1)
			return nil
		case "pgup":
			d.content.Scroll(-1)
			return nil
		case "pgdown":
			d.content.Scroll(1)
			return nil
		}
	}

	if a, ok := d.content.Panel().ActionForKey(key); ok {
		return d.trigger(a)
	}
	return nil
}

// trigger runs a panel action, asking for its inputs first.
func (d *dashboard) trigger(a view.Action) tea.Cmd {
	switch a.ID {
	case view.ActionNavigate:
		return d.navigate(nav.SectionID(a.Target), false)
	case view.ActionBackToDashboard, view.ActionRetry:
		ctrl := d.ctrl
		return d.run(func(ctx context.Context) error {
			_, err := ctrl.HandleAction(ctx, a.ID)
			return err
		})
	case view.ActionExport:
		return d.exportAs(export.CSV)
	}
	if !a.Row {
		// Game actions; their keys are bound while the game is on screen.
		return nil
	}

	row, ok := d.content.SelectedRow()
	if !ok {
		d.root.cfg.Presenter.Notify("Select a record first", notify.Warning)
		return nil
	}
	if len(a.Prompts) > 0 {
		p, cmd := newActionPrompt(d.root.theme.Prompt, a, row.ID)
		d.prompt = p
		return cmd
	}
	return d.perform(a, row.ID, nil)
}

func (d *dashboard) perform(a view.Action, id record.ID, inputs []string) tea.Cmd {
	svc, ctx := d.root.cfg.Service, d.ctx
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		res, err := svc.Perform(ctx, a.ID, id, inputs...)
		return actionDoneMsg{result: res, err: err}
	}
}

func (d *dashboard) exportAs(f export.Format) tea.Cmd {
	svc, ctx, dir := d.root.cfg.Service, d.ctx, d.root.cfg.ExportDir
	section := string(d.ctrl.Current())
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := svc.Export(ctx, section, f, dir)
		return navDoneMsg{err: err}
	}
}

func (d *dashboard) view() string {
	th := d.root.theme.Sidebar
	header := th.Header.Render(roleHeader(d.user.UserType))
	crumb := d.title
	if d.back {
		crumb = "‹ " + crumb
	}
	header += "\n" + th.Group.Render(crumb)
	sidebar := th.Frame.
		Width(min(max(d.width/4, 24), 34) - th.Frame.GetHorizontalBorderSize()).
		Height(d.height - th.Frame.GetVerticalBorderSize()).
		Render(header + "\n" + d.sidebar.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, d.content.View())
}

func roleHeader(r store.Role) string {
	switch r {
	case store.RoleEmployee:
		return "Z+ Employee"
	case store.RoleClient:
		return "Z+ Client"
	}
	return "Z+ Admin"
}
