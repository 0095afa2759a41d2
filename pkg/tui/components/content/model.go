// Package content draws a view.Panel into the dashboard's content pane.
package content

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/zdash/pkg/tui/theme"
	"tableflip.dev/zdash/pkg/view"
)

// maxCell caps a table column so one long email does not push the rest off
// screen.
const maxCell = 32

// Model renders the current panel inside a scrollable viewport and tracks
// the highlighted table row.
type Model struct {
	viewport viewport.Model
	theme    theme.ContentTheme
	width    int
	height   int
	focused  bool

	panel  view.Panel
	cursor int
	// rowLine is the line of the first table row in the rendered body.
	rowLine int
	// offset and bodyHeight mirror the viewport's scroll state.
	offset     int
	bodyHeight int
	bodyLines  int

	markdown      string
	markdownWidth int
	markdownOut   string
}

// New returns an empty pane.
func New(th theme.ContentTheme) *Model {
	vp := viewport.New(viewport.WithWidth(1), viewport.WithHeight(1))
	return &Model{viewport: vp, theme: th, rowLine: -1, bodyHeight: 1}
}

// SetSize sets the outer size, frame included.
func (m *Model) SetSize(width, height int) {
	m.width = max(width, 10)
	m.height = max(height, 3)
	m.viewport.SetWidth(m.innerWidth())
	m.bodyHeight = max(m.height-m.theme.Frame.GetVerticalFrameSize(), 1)
	m.viewport.SetHeight(m.bodyHeight)
	m.refresh()
}

// SetFocused toggles the highlighted border and row cursor.
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
	m.refresh()
}

// SetPanel replaces the panel. The row cursor stays on the same record when
// it is still listed.
func (m *Model) SetPanel(p view.Panel) {
	prev, hadPrev := m.SelectedRow()
	m.panel = p
	m.cursor = 0
	m.offset = 0
	if hadPrev && p.Table != nil {
		for i, r := range p.Table.Rows {
			if r.ID == prev.ID {
				m.cursor = i
				break
			}
		}
	}
	m.refresh()
}

// Panel is the panel on screen.
func (m *Model) Panel() view.Panel {
	return m.panel
}

// SelectedRow is the highlighted table row.
func (m *Model) SelectedRow() (view.Row, bool) {
	if m.panel.Table == nil || len(m.panel.Table.Rows) == 0 {
		return view.Row{}, false
	}
	if m.cursor < 0 || m.cursor >= len(m.panel.Table.Rows) {
		return view.Row{}, false
	}
	return m.panel.Table.Rows[m.cursor], true
}

// Move shifts the row cursor by delta, clamped to the table.
func (m *Model) Move(delta int) {
	if m.panel.Table == nil || len(m.panel.Table.Rows) == 0 {
		m.scrollTo(m.offset + delta)
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.panel.Table.Rows)-1)
	m.refresh()
}

// Scroll moves the viewport by a page.
func (m *Model) Scroll(pages int) {
	m.scrollTo(m.offset + pages*m.bodyHeight)
}

func (m *Model) scrollTo(offset int) {
	m.offset = min(max(offset, 0), max(m.bodyLines-m.bodyHeight, 0))
	m.viewport.SetYOffset(m.offset)
}

// View renders the framed pane.
func (m *Model) View() string {
	frame := m.theme.Frame
	if m.focused {
		frame = frame.BorderForeground(lipgloss.Color("212"))
	}
	return frame.
		Width(m.width - frame.GetHorizontalBorderSize()).
		Height(m.height - frame.GetVerticalBorderSize()).
		Render(m.viewport.View())
}

// Body renders the panel without frame or scrolling, wrapped to the pane.
func (m *Model) Body() string {
	body, _ := m.render()
	return body
}

func (m *Model) innerWidth() int {
	return max(m.width-m.theme.Frame.GetHorizontalFrameSize(), 1)
}

func (m *Model) refresh() {
	body, rowLine := m.render()
	m.rowLine = rowLine
	m.bodyLines = strings.Count(body, "\n") + 1
	m.viewport.SetContent(body)
	offset := m.offset
	if rowLine >= 0 {
		line := rowLine + m.cursor
		switch {
		case line < offset:
			offset = line
		case line >= offset+m.bodyHeight:
			offset = line - m.bodyHeight + 1
		}
	}
	m.scrollTo(offset)
}

func (m *Model) render() (string, int) {
	p := m.panel
	var lines []string
	add := func(s ...string) { lines = append(lines, s...) }

	if p.Title != "" {
		add(m.theme.Title.Render(p.Title), "")
	}
	if p.Message != "" {
		style := m.theme.Message
		if p.Kind == view.KindError {
			style = m.theme.Error
		}
		if p.Kind == view.KindPlaceholder {
			add(m.theme.Muted.Render("🚧"))
		}
		add(style.Width(m.innerWidth()).Render(p.Message), "")
	}
	if p.Markdown != "" {
		add(strings.Split(strings.TrimRight(m.renderMarkdown(p.Markdown), "\n"), "\n")...)
		add("")
	}
	if len(p.Fields) > 0 {
		add(m.fields(p.Fields)...)
		add("")
	}

	rowLine := -1
	if p.Table != nil {
		table, first := m.table(p.Table)
		if first >= 0 {
			rowLine = len(lines) + first
		}
		add(table...)
		add("")
	}
	if p.Body != "" {
		add(strings.Split(p.Body, "\n")...)
		add("")
	}
	if len(p.Actions) > 0 {
		add(m.actions(p.Actions))
	}
	return strings.Join(lines, "\n"), rowLine
}

func (m *Model) fields(fields []view.Field) []string {
	width := 0
	for _, f := range fields {
		width = max(width, lipgloss.Width(f.Label))
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		label := fmt.Sprintf("%*s", width, f.Label)
		out = append(out, m.theme.Label.Render(label)+"  "+f.Value)
	}
	return out
}

// table lays out t and reports the index of its first row line, or -1 when
// only the empty message is shown.
func (m *Model) table(t *view.Table) ([]string, int) {
	if len(t.Rows) == 0 {
		empty := t.Empty
		if empty == "" {
			empty = "No records found."
		}
		return []string{m.theme.Muted.Render(empty)}, -1
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = min(lipgloss.Width(h), maxCell)
	}
	for _, r := range t.Rows {
		for i, c := range r.Cells {
			if i < len(widths) {
				widths[i] = max(widths[i], min(lipgloss.Width(c.Text), maxCell))
			}
		}
	}

	cell := func(s string, w int) string {
		s = truncate.StringWithTail(s, uint(w), "…")
		return s + strings.Repeat(" ", max(w-lipgloss.Width(s), 0))
	}

	header := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = m.theme.Header.Render(cell(h, widths[i]))
	}
	out := []string{strings.Join(header, "  ")}

	for ri, r := range t.Rows {
		parts := make([]string, 0, len(widths))
		for i := range widths {
			var c view.Cell
			if i < len(r.Cells) {
				c = r.Cells[i]
			}
			text := cell(c.Text, widths[i])
			if c.Style != "" && !(m.focused && ri == m.cursor) {
				text = theme.Badge(c.Style).Render(text)
			}
			parts = append(parts, text)
		}
		line := strings.Join(parts, "  ")
		if m.focused && ri == m.cursor {
			line = m.theme.Selected.Render(line)
		}
		out = append(out, line)
	}
	return out, 1
}

func (m *Model) actions(actions []view.Action) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.Key == "" {
			continue
		}
		parts = append(parts, m.theme.ActionKey.Render("["+a.Key+"]")+" "+m.theme.Action.Render(a.Label))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderMarkdown(md string) string {
	width := m.innerWidth()
	if md == m.markdown && width == m.markdownWidth {
		return m.markdownOut
	}
	out := md
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width, 10)),
	)
	if err == nil {
		if rendered, err := renderer.Render(md); err == nil {
			out = rendered
		}
	}
	m.markdown, m.markdownWidth, m.markdownOut = md, width, out
	return out
}
