package theme

import (
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/record"
)

// Theme centralizes Lip Gloss styles for the dashboard.
type Theme struct {
	Sidebar SidebarTheme
	Content ContentTheme
	Footer  FooterTheme
	Toast   ToastTheme
	Prompt  PromptTheme
}

// SidebarTheme styles the section list.
type SidebarTheme struct {
	Frame  lipgloss.Style
	Header lipgloss.Style
	Group  lipgloss.Style
}

// ContentTheme styles the content pane and the panels drawn in it.
type ContentTheme struct {
	Frame     lipgloss.Style
	Title     lipgloss.Style
	Message   lipgloss.Style
	Label     lipgloss.Style
	Header    lipgloss.Style
	Selected  lipgloss.Style
	ActionKey lipgloss.Style
	Action    lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	User   lipgloss.Style
}

// ToastTheme styles the notification stack.
type ToastTheme struct {
	Frame  lipgloss.Style
	Title  lipgloss.Style
	Label  lipgloss.Style
	Detail lipgloss.Style
}

// PromptTheme styles centered input overlays (action prompts, login).
type PromptTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
	Error lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	accent := lipgloss.Color("212")
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	return Theme{
		Sidebar: SidebarTheme{
			Frame:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
			Header: lipgloss.NewStyle().Foreground(accent).Bold(true),
			Group:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		},
		Content: ContentTheme{
			Frame:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
			Title:     lipgloss.NewStyle().Bold(true),
			Message:   lipgloss.NewStyle(),
			Label:     lipgloss.NewStyle().Bold(true),
			Header:    lipgloss.NewStyle().Bold(true).Underline(true),
			Selected:  lipgloss.NewStyle().Reverse(true),
			ActionKey: lipgloss.NewStyle().Foreground(accent).Bold(true),
			Action:    muted,
			Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Muted:     muted,
		},
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: muted,
			User:   lipgloss.NewStyle().Foreground(accent),
		},
		Toast: ToastTheme{
			Frame:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
			Title:  lipgloss.NewStyle().Bold(true),
			Label:  lipgloss.NewStyle().Bold(true),
			Detail: lipgloss.NewStyle(),
		},
		Prompt: PromptTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
			Error: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		},
	}
}

// Badge returns the style for a status badge.
func Badge(s record.Style) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch s {
	case record.StyleWarning:
		return base.Foreground(lipgloss.Color("11"))
	case record.StyleSuccess:
		return base.Foreground(lipgloss.Color("10"))
	case record.StyleDanger:
		return base.Foreground(lipgloss.Color("9"))
	case record.StyleInfo:
		return base.Foreground(lipgloss.Color("14"))
	case record.StylePrimary:
		return base.Foreground(lipgloss.Color("12"))
	case record.StyleSecondary:
		return base.Foreground(lipgloss.Color("244"))
	}
	return base
}

// Severity returns the border colour of a toast.
func Severity(s notify.Severity) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch s {
	case notify.Success:
		return base.Foreground(lipgloss.Color("10"))
	case notify.Warning:
		return base.Foreground(lipgloss.Color("11"))
	case notify.Error:
		return base.Foreground(lipgloss.Color("9"))
	}
	return base.Foreground(lipgloss.Color("14"))
}
