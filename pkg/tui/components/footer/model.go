// Package footer renders the one-line status bar under the dashboard.
package footer

import (
	"strings"

	"github.com/muesli/reflow/truncate"

	"tableflip.dev/zdash/pkg/tui/theme"
)

// Model tracks footer/help/status rendering state.
type Model struct {
	theme  theme.FooterTheme
	help   string
	status string
	user   string
	width  int
}

// New returns a footer model with sensible defaults.
func New(th theme.FooterTheme) *Model {
	return &Model{theme: th}
}

// SetHelp sets the contextual key hints.
func (m *Model) SetHelp(help string) {
	m.help = help
}

// SetStatus sets the status message to display.
func (m *Model) SetStatus(status string) {
	m.status = status
}

func (m *Model) Status() string {
	return m.status
}

// SetUser shows who is signed in, e.g. "Ada Admin (Administrator)".
func (m *Model) SetUser(user string) {
	m.user = user
}

func (m *Model) SetWidth(width int) {
	m.width = width
}

// View renders the status line, cut to the terminal width.
func (m *Model) View() string {
	var segments []string
	if m.user != "" {
		segments = append(segments, m.theme.User.Render(m.user))
	}
	if m.status != "" {
		segments = append(segments, m.theme.Status.Render(m.status))
	}
	if m.help != "" {
		segments = append(segments, m.theme.Help.Render(m.help))
	}
	if len(segments) == 0 {
		return " "
	}
	line := strings.Join(segments, " │ ")
	if m.width > 0 {
		line = truncate.StringWithTail(line, uint(m.width), "…")
	}
	return line
}
