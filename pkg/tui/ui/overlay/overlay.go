// Package overlay draws one block of text over another, for toasts, prompts
// and the help screen.
package overlay

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

// Placement controls overlay alignment and sizing.
type Placement struct {
	Horizontal lipgloss.Position
	Vertical   lipgloss.Position
	MarginX    int
	MarginY    int
}

// TopRight is where toasts stack.
var TopRight = Placement{Horizontal: lipgloss.Right, Vertical: lipgloss.Top, MarginX: 1, MarginY: 1}

// Centered is where prompts and help open.
var Centered = Placement{Horizontal: lipgloss.Center, Vertical: lipgloss.Center}

// Compose draws foreground atop background, a width x height canvas. Cells of
// the background outside the foreground's box survive, escape sequences
// included.
func Compose(background string, width, height int, foreground string, placement Placement) string {
	bgLines := canvas(background, width, height)
	if foreground == "" || width <= 0 || height <= 0 {
		return strings.Join(bgLines, "\n")
	}

	fgLines := strings.Split(foreground, "\n")
	fgWidth := 0
	for _, line := range fgLines {
		fgWidth = max(fgWidth, lipgloss.Width(line))
	}
	fgWidth = min(fgWidth, width)
	fgHeight := min(len(fgLines), height)
	if fgWidth == 0 {
		return strings.Join(bgLines, "\n")
	}

	x, y := offsets(width, height, fgWidth, fgHeight, placement)
	for row := 0; row < fgHeight; row++ {
		base := bgLines[y+row]
		fg := pad(truncate.String(fgLines[row], uint(fgWidth)), fgWidth)
		// Reset after the prefix so its colours do not bleed into fg.
		bgLines[y+row] = truncate.String(base, uint(x)) + "\x1b[0m" + fg + "\x1b[0m" + skip(base, x+fgWidth)
	}
	return strings.Join(bgLines, "\n")
}

func canvas(view string, width, height int) []string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = pad(lines[i], width)
	}
	return lines
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

var escape = regexp.MustCompile(`^\x1b\[[0-9;:?]*[A-Za-z~]`)

// skip drops the first n visible cells of s. Escape sequences met on the way
// are kept so the remainder renders with the colours in effect.
func skip(s string, n int) string {
	var kept strings.Builder
	seen := 0
	for i := 0; i < len(s); {
		if loc := escape.FindStringIndex(s[i:]); loc != nil {
			kept.WriteString(s[i : i+loc[1]])
			i += loc[1]
			continue
		}
		if seen >= n {
			return kept.String() + s[i:]
		}
		r := []rune(s[i:])[0]
		seen += runewidth.RuneWidth(r)
		i += len(string(r))
	}
	return kept.String()
}

func offsets(width, height, w, h int, p Placement) (int, int) {
	x := p.MarginX
	switch p.Horizontal {
	case lipgloss.Right:
		x = width - w - p.MarginX
	case lipgloss.Center:
		x = (width - w) / 2
	}
	y := p.MarginY
	switch p.Vertical {
	case lipgloss.Bottom:
		y = height - h - p.MarginY
	case lipgloss.Center:
		y = (height - h) / 2
	}
	return clamp(x, 0, width-w), clamp(y, 0, height-h)
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
