package teaui

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/tui/theme"
	"tableflip.dev/zdash/pkg/view"
)

// actionPrompt collects one answer per action prompt, in order.
type actionPrompt struct {
	theme   theme.PromptTheme
	action  view.Action
	row     record.ID
	input   textinput.Model
	answers []string
}

func newActionPrompt(th theme.PromptTheme, a view.Action, row record.ID) (*actionPrompt, tea.Cmd) {
	p := &actionPrompt{theme: th, action: a, row: row, input: newInput("")}
	return p, p.input.Focus()
}

func (p *actionPrompt) question() string {
	return p.action.Prompts[len(p.answers)]
}

// update reports done once every prompt is answered, and cancelled on esc.
func (p *actionPrompt) update(msg tea.Msg) (cmd tea.Cmd, done, cancelled bool) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "esc":
			return nil, false, true
		case "enter":
			p.answers = append(p.answers, strings.TrimSpace(p.input.Value()))
			if len(p.answers) == len(p.action.Prompts) {
				return nil, true, false
			}
			p.input.Reset()
			return nil, false, false
		}
	}
	p.input, cmd = p.input.Update(msg)
	return cmd, false, false
}

func (p *actionPrompt) view() string {
	lines := []string{
		p.theme.Title.Render(p.action.Label + " #" + p.row.String()),
		"",
		p.theme.Body.Render(p.question()),
		"  " + p.input.View(),
		"",
		p.theme.Body.Render("enter confirm · esc cancel"),
	}
	return p.theme.Frame.Width(56).Render(strings.Join(lines, "\n"))
}
