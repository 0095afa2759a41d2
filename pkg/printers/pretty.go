package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/view"
)

// PrettyPrint writes panels and notifications for a terminal.
type PrettyPrint struct {
	Out io.Writer
	// MaxCellWidth truncates table cells; 0 means 40.
	MaxCellWidth uint
	// Width wraps free text; 0 means 80.
	Width int
	// ShowActions lists the panel's actions under it.
	ShowActions bool
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) width() int {
	if pp.Width <= 0 {
		return 80
	}
	return pp.Width
}

func (pp *PrettyPrint) cellWidth() uint {
	if pp.MaxCellWidth == 0 {
		return 40
	}
	return pp.MaxCellWidth
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " record")
	default:
		_, _ = c.Fprintln(pp.out(), " records")
	}
}

// Panel prints everything a section rendered.
func (pp *PrettyPrint) Panel(p view.Panel) {
	w := pp.out()
	switch {
	case p.Table != nil:
		pp.TitleWithCount(p.Title, len(p.Table.Rows))
	case p.Title != "":
		pp.Title(p.Title)
	}

	if p.Message != "" {
		msg := color.New()
		switch p.Kind {
		case view.KindError:
			msg = color.New(color.FgRed)
		case view.KindPlaceholder, view.KindLoading:
			msg = color.New(color.Faint, color.Italic)
		}
		_, _ = msg.Fprintln(w, wordwrap.String(p.Message, pp.width()))
	}
	if p.Markdown != "" {
		_, _ = fmt.Fprintln(w, wordwrap.String(strings.TrimSpace(p.Markdown), pp.width()))
	}
	if len(p.Fields) > 0 {
		pp.Fields(p.Fields)
	}
	if p.Table != nil {
		pp.Table(p.Table)
	}
	if p.Body != "" {
		_, _ = fmt.Fprintln(w, p.Body)
	}
	if pp.ShowActions && len(p.Actions) > 0 {
		pp.Actions(p.Actions)
	}
	pp.NewLine()
}

// Fields prints label/value pairs, labels right aligned.
func (pp *PrettyPrint) Fields(fields []view.Field) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, f := range fields {
		tbl.AddRow(bold.Sprint(f.Label+":"), f.Value)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Table prints rows with status badges coloured by style.
func (pp *PrettyPrint) Table(t *view.Table) {
	if len(t.Rows) == 0 {
		f := color.New(color.Faint, color.Italic)
		msg := t.Empty
		if msg == "" {
			msg = "none"
		}
		_, _ = f.Fprintf(pp.out(), " %s\n", msg)
		return
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	headers := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = bold.Sprint(h)
	}
	tbl.AddRow(headers...)
	for _, r := range t.Rows {
		cells := make([]interface{}, len(r.Cells))
		for i, c := range r.Cells {
			cells[i] = pp.cell(c)
		}
		tbl.AddRow(cells...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func (pp *PrettyPrint) cell(c view.Cell) string {
	text := truncate.StringWithTail(c.Text, pp.cellWidth(), "…")
	if c.Style == "" {
		return text
	}
	return StyleColor(c.Style).Sprint(strings.ReplaceAll(text, "_", " "))
}

// Actions lists key bindings.
func (pp *PrettyPrint) Actions(actions []view.Action) {
	f := color.New(color.Faint)
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, fmt.Sprintf("[%s] %s", a.Key, a.Label))
	}
	_, _ = f.Fprintln(pp.out(), wordwrap.String(strings.Join(parts, "  "), pp.width()))
}

// Notification prints one toast as a line, with details indented below.
func (pp *PrettyPrint) Notification(n notify.Notification) {
	w := pp.out()
	c := SeverityColor(n.Severity)
	_, _ = c.Fprintf(w, "%s ", SeverityGlyph(n.Severity))
	if n.Title != "" {
		_, _ = color.New(color.Bold).Fprintf(w, "%s: ", n.Title)
	}
	_, _ = fmt.Fprintln(w, n.Message)
	if len(n.Details) == 0 {
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, d := range n.Details {
		tbl.AddRow("   "+d.Label+":", d.Value)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

// Message prints a bare message with a severity glyph.
func (pp *PrettyPrint) Message(msg string, sev notify.Severity) {
	pp.Notification(notify.Notification{Message: msg, Severity: sev})
}

// StyleColor maps badge styles onto terminal colours.
func StyleColor(s record.Style) *color.Color {
	switch s {
	case record.StyleWarning:
		return color.New(color.FgYellow)
	case record.StyleSuccess:
		return color.New(color.FgGreen)
	case record.StyleDanger:
		return color.New(color.FgRed)
	case record.StyleInfo:
		return color.New(color.FgCyan)
	case record.StylePrimary:
		return color.New(color.FgBlue)
	case record.StyleSecondary:
		return color.New(color.Faint)
	}
	return color.New(color.FgWhite)
}

func SeverityColor(s notify.Severity) *color.Color {
	switch s {
	case notify.Success:
		return color.New(color.FgGreen, color.Bold)
	case notify.Warning:
		return color.New(color.FgYellow, color.Bold)
	case notify.Error:
		return color.New(color.FgRed, color.Bold)
	}
	return color.New(color.FgCyan, color.Bold)
}

func SeverityGlyph(s notify.Severity) string {
	switch s {
	case notify.Success:
		return "✓"
	case notify.Warning:
		return "!"
	case notify.Error:
		return "✗"
	}
	return "i"
}
