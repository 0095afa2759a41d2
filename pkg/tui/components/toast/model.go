// Package toast renders the notification stack in the top right corner.
package toast

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/tui/theme"
)

const (
	width = 44
	// limit keeps a burst of poll notifications from covering the screen;
	// the newest are shown.
	limit = 4
)

var glyphs = map[notify.Severity]string{
	notify.Success: "✓",
	notify.Warning: "!",
	notify.Error:   "✗",
	notify.Info:    "i",
}

// Model holds the last snapshot handed over by the presenter.
type Model struct {
	theme theme.ToastTheme
	items []notify.Notification
}

func New(th theme.ToastTheme) *Model {
	return &Model{theme: th}
}

// SetItems replaces the snapshot, oldest first.
func (m *Model) SetItems(items []notify.Notification) {
	m.items = append(m.items[:0:0], items...)
}

func (m *Model) Len() int { return len(m.items) }

// View stacks the visible notifications, newest at the bottom.
func (m *Model) View() string {
	items := m.items
	if len(items) > limit {
		items = items[len(items)-limit:]
	}
	boxes := make([]string, 0, len(items))
	for _, n := range items {
		boxes = append(boxes, m.box(n))
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}

func (m *Model) box(n notify.Notification) string {
	accent := theme.Severity(n.Severity)
	inner := width - m.theme.Frame.GetHorizontalFrameSize()

	var lines []string
	head := accent.Render(glyphs[n.Severity])
	if n.Title != "" {
		lines = append(lines, head+" "+m.theme.Title.Render(n.Title))
		if n.Message != "" {
			lines = append(lines, n.Message)
		}
	} else {
		lines = append(lines, head+" "+n.Message)
	}
	for _, d := range n.Details {
		lines = append(lines, m.theme.Label.Render(d.Label+":")+" "+m.theme.Detail.Render(d.Value))
	}

	frame := m.theme.Frame.BorderForeground(accent.GetForeground())
	return frame.Width(width).Render(lipgloss.NewStyle().Width(inner).Render(strings.Join(lines, "\n")))
}
