package teaui

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/zdash/pkg/tui/theme"
)

// loginForm asks for a Self ID and password.
type loginForm struct {
	theme   theme.PromptTheme
	id      textinput.Model
	pass    textinput.Model
	focus   int
	message string
	busy    bool
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.VirtualCursor = true
	ti.Styles.Cursor.Color = lipgloss.Color("212")
	ti.Styles.Cursor.Shape = tea.CursorBlock
	ti.Styles.Cursor.Blink = true
	return ti
}

func newLoginForm(th theme.PromptTheme) *loginForm {
	id := newInput("e.g. ADMIN001")
	pass := newInput("Password")
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	f := &loginForm{theme: th, id: id, pass: pass}
	f.id.Focus()
	return f
}

// reset clears the password and shows message, keeping the Self ID for a
// quick retry.
func (f *loginForm) reset(message string) tea.Cmd {
	f.message = message
	f.busy = false
	f.pass.Reset()
	if strings.TrimSpace(f.id.Value()) == "" {
		return f.setFocus(0)
	}
	return f.setFocus(1)
}

func (f *loginForm) setFocus(i int) tea.Cmd {
	f.focus = i
	if i == 0 {
		f.pass.Blur()
		return f.id.Focus()
	}
	f.id.Blur()
	return f.pass.Focus()
}

func (f *loginForm) values() (string, string) {
	return strings.TrimSpace(f.id.Value()), f.pass.Value()
}

// update reports submit when enter is pressed on the password field.
func (f *loginForm) update(msg tea.Msg) (cmd tea.Cmd, submit bool) {
	if f.busy {
		return nil, false
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "tab", "down", "shift+tab", "up":
			return f.setFocus(1 - f.focus), false
		case "enter":
			if f.focus == 0 {
				return f.setFocus(1), false
			}
			return nil, true
		}
	}
	if f.focus == 0 {
		f.id, cmd = f.id.Update(msg)
	} else {
		f.pass, cmd = f.pass.Update(msg)
	}
	return cmd, false
}

func (f *loginForm) view() string {
	lines := []string{
		f.theme.Title.Render("Z+ Management Platform"),
		"",
		f.theme.Body.Render("Self ID"),
		"  " + f.id.View(),
		f.theme.Body.Render("Password"),
		"  " + f.pass.View(),
		"",
	}
	switch {
	case f.busy:
		lines = append(lines, f.theme.Body.Render("Signing in..."))
	case f.message != "":
		lines = append(lines, f.theme.Error.Render(f.message))
	default:
		lines = append(lines, f.theme.Body.Render("enter sign in · tab switch field · ctrl+c quit"))
	}
	return f.theme.Frame.Width(48).Render(strings.Join(lines, "\n"))
}
