// Package teaui hosts the Bubble Tea program for the zdash dashboards.
package teaui

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/rs/zerolog"

	"tableflip.dev/zdash/pkg/api"
	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/metrics"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/store"
	"tableflip.dev/zdash/pkg/tui/components/footer"
	"tableflip.dev/zdash/pkg/tui/components/help"
	"tableflip.dev/zdash/pkg/tui/components/toast"
	"tableflip.dev/zdash/pkg/tui/theme"
	"tableflip.dev/zdash/pkg/tui/ui/overlay"
)

// Config wires the program to the rest of zdash.
type Config struct {
	Service   *app.Service
	Client    *api.Client
	Presenter *notify.Presenter

	PollInterval time.Duration
	// ExportDir receives exported files. Defaults to the working directory.
	ExportDir string
	// Watch follows session changes made by other zdash processes.
	Watch bool

	Log     zerolog.Logger
	Metrics *metrics.Metrics
}

type screen int

const (
	screenLogin screen = iota
	screenDashboard
)

// Model is the root model. It shows the login form until a session exists
// and the role's dashboard afterwards.
type Model struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	send   func(tea.Msg)

	theme  theme.Theme
	width  int
	height int

	screen screen
	login  *loginForm
	dash   *dashboard

	toasts *toast.Model
	footer *footer.Model
	help   *help.Model

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc
}

// New creates the root model. send delivers messages from background work;
// Run sets it to the program's Send.
func New(cfg Config, send func(tea.Msg)) *Model {
	if cfg.Presenter == nil {
		cfg.Presenter = notify.New(notify.WithMetrics(cfg.Metrics))
	}
	th := theme.Default()
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		send:   send,
		theme:  th,
		login:  newLoginForm(th.Prompt),
		toasts: toast.New(th.Toast),
		footer: footer.New(th.Footer),
	}
	cfg.Presenter.OnChange(func([]notify.Notification) { m.deliver(toastMsg{}) })
	if cfg.Client != nil {
		cfg.Client.OnAuthExpired = func() { m.deliver(authExpiredMsg{}) }
	}
	if sess, ok := m.session(); ok {
		m.enterDashboard(sess)
	}
	return m
}

// Run launches the interactive TUI program.
func Run(cfg Config) error {
	var program atomic.Pointer[tea.Program]
	m := New(cfg, func(msg tea.Msg) {
		// Messages raised before the program exists are dropped; Update
		// rereads state from its sources either way.
		if p := program.Load(); p != nil {
			p.Send(msg)
		}
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	program.Store(p)
	defer m.Shutdown()
	_, err := p.Run()
	return err
}

type (
	toastMsg       struct{}
	authExpiredMsg struct{}
	navDoneMsg     struct{ err error }
	loginDoneMsg   struct {
		sess store.Session
		err  error
	}
	actionDoneMsg struct {
		result app.Result
		err    error
	}
)

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event store.Event
}

type watchStoppedMsg struct{}

// Init starts the dashboard's first navigation and the session watcher.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.dash != nil {
		cmds = append(cmds, m.dash.navigate(m.dash.home(), false))
	}
	if m.cfg.Watch {
		cmds = append(cmds, m.startWatch())
	}
	return tea.Batch(cmds...)
}

// Shutdown stops every background loop. It is safe to call more than once.
func (m *Model) Shutdown() {
	m.leaveDashboard()
	m.stopWatch()
	m.cfg.Presenter.DismissAll()
	m.cancel()
}

func (m *Model) deliver(msg tea.Msg) {
	if m.send != nil {
		go m.send(msg)
	}
}

func (m *Model) session() (store.Session, bool) {
	if m.cfg.Service == nil {
		return store.Session{}, false
	}
	return m.cfg.Service.Session()
}

// Update routes Bubble Tea messages to the active screen.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case toastMsg:
		m.toasts.SetItems(m.cfg.Presenter.Active())
		return m, nil
	case surfaceMsg:
		if m.dash != nil {
			m.dash.sync()
		}
		return m, nil
	case navDoneMsg:
		if msg.err != nil {
			m.cfg.Log.Debug().Err(msg.err).Msg("tui: navigation failed")
		}
		return m, nil
	case actionDoneMsg:
		if msg.err == nil && m.dash != nil {
			m.footer.SetStatus(msg.result.Message)
			return m, m.dash.reload()
		}
		return m, nil
	case authExpiredMsg:
		if m.screen == screenDashboard {
			return m, m.toLogin(api.ErrAuthExpired.Error())
		}
		return m, nil
	case loginDoneMsg:
		if msg.err != nil {
			return m, m.login.reset(msg.err.Error())
		}
		m.enterDashboard(msg.sess)
		return m, m.dash.navigate(m.dash.home(), false)
	case watchStartedMsg:
		if msg.err != nil {
			m.cfg.Log.Warn().Err(msg.err).Msg("tui: session watch unavailable")
			return m, nil
		}
		m.stopWatch()
		m.watchCh, m.watchCancel = msg.ch, msg.cancel
		return m, m.waitForWatch()
	case watchEventMsg:
		cmds = append(cmds, m.handleWatchEvent(msg.event), m.waitForWatch())
		return m, tea.Batch(cmds...)
	case watchStoppedMsg:
		m.stopWatch()
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	if m.screen == screenLogin {
		cmd, _ := m.login.update(msg)
		return m, cmd
	}
	if m.dash != nil && m.dash.prompt != nil {
		cmd, _, _ := m.dash.prompt.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		m.Shutdown()
		return tea.Quit
	}

	if m.help != nil {
		switch key {
		case "?", "esc", "q":
			m.help = nil
			return nil
		}
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return cmd
	}

	if m.screen == screenLogin {
		cmd, submit := m.login.update(msg)
		if submit {
			return m.submitLogin()
		}
		return cmd
	}
	return m.dash.handleKey(m, msg)
}

func (m *Model) submitLogin() tea.Cmd {
	selfID, password := m.login.values()
	m.login.busy = true
	m.login.message = ""
	svc, ctx := m.cfg.Service, m.ctx
	return func() tea.Msg {
		if svc == nil {
			return loginDoneMsg{err: app.ErrNoAPI}
		}
		sess, err := svc.Login(ctx, selfID, password)
		return loginDoneMsg{sess: sess, err: err}
	}
}

func (m *Model) enterDashboard(sess store.Session) {
	m.leaveDashboard()
	m.dash = newDashboard(m, sess)
	m.screen = screenDashboard
	m.login.busy = false
	m.login.message = ""
	m.footer.SetUser(sess.User.DisplayName() + " (" + sess.User.UserType.Label() + ")")
	m.footer.SetStatus("")
	m.footer.SetHelp(m.dash.hints())
	m.layout()
}

func (m *Model) leaveDashboard() {
	if m.dash == nil {
		return
	}
	m.dash.close()
	m.dash = nil
}

// toLogin tears the dashboard down and shows the login form with message.
func (m *Model) toLogin(message string) tea.Cmd {
	m.leaveDashboard()
	m.help = nil
	m.screen = screenLogin
	m.footer.SetUser("")
	m.footer.SetHelp("")
	m.footer.SetStatus("")
	return m.login.reset(message)
}

func (m *Model) logout() tea.Cmd {
	if m.cfg.Service != nil {
		if err := m.cfg.Service.Logout(); err != nil {
			m.cfg.Log.Warn().Err(err).Msg("tui: logout")
		}
	}
	m.cfg.Presenter.DismissAll()
	return m.toLogin("Signed out.")
}

func (m *Model) toggleHelp() {
	if m.help != nil {
		m.help = nil
		return
	}
	extra := ""
	if m.dash != nil {
		extra = m.dash.helpNotes()
	}
	m.help = help.New(m.width*3/4, m.height*3/4, extra)
}

func (m *Model) startWatch() tea.Cmd {
	svc, parent := m.cfg.Service, m.ctx
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := svc.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

// handleWatchEvent follows logins and logouts made in other terminals.
func (m *Model) handleWatchEvent(ev store.Event) tea.Cmd {
	switch ev.Type {
	case store.EventSessionCleared:
		if m.screen == screenDashboard {
			m.cfg.Presenter.DismissAll()
			return m.toLogin("Signed out from another session.")
		}
	case store.EventSessionChanged:
		sess, ok := m.session()
		switch {
		case !ok && m.screen == screenDashboard:
			return m.toLogin(api.ErrAuthExpired.Error())
		case !ok:
			return nil
		case m.dash != nil && m.dash.user == sess.User:
			return nil
		}
		m.enterDashboard(sess)
		return m.dash.navigate(m.dash.home(), false)
	}
	return nil
}

func (m *Model) layout() {
	m.footer.SetWidth(m.width)
	if m.dash != nil {
		m.dash.setSize(m.width, max(m.height-1, 3))
	}
	if m.help != nil {
		m.help.SetSize(m.width*3/4, m.height*3/4)
	}
}

// View renders the active screen with toasts and overlays on top.
func (m *Model) View() (string, *tea.Cursor) {
	if m.width <= 0 || m.height <= 0 {
		return "initializing…", nil
	}
	bodyHeight := max(m.height-1, 1)

	var body string
	switch {
	case m.screen == screenLogin:
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.login.view())
	case m.dash != nil:
		body = m.dash.view()
		if m.dash.prompt != nil {
			body = overlay.Compose(body, m.width, bodyHeight, m.dash.prompt.view(), overlay.Centered)
		}
	}
	if m.help != nil {
		view, _ := m.help.View()
		body = overlay.Compose(body, m.width, bodyHeight, view, overlay.Centered)
	}
	if m.toasts.Len() > 0 {
		body = overlay.Compose(body, m.width, bodyHeight, m.toasts.View(), overlay.TopRight)
	}
	return strings.Join([]string{body, m.footer.View()}, "\n"), nil
}
