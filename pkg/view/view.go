// Package view is the renderer-neutral description of what a section puts
// in the content pane. The TUI and the CLI printers both draw it.
package view

import (
	"tableflip.dev/zdash/pkg/record"
)

// Kind distinguishes ordinary content from the controller's own panels.
type Kind int

const (
	KindContent Kind = iota
	KindLoading
	KindError
	KindPlaceholder
)

// Well known action ids.
const (
	ActionBackToDashboard = "back-to-dashboard"
	ActionRetry           = "retry"
	ActionNavigate        = "navigate"
	ActionExport          = "export"

	ActionApproveRegistration = "approve-registration"
	ActionRejectRegistration  = "reject-registration"
	ActionShareRegistration   = "share-registration"
	ActionAssignContact       = "assign-contact"
	ActionResolveContact      = "resolve-contact"
	ActionShareContact        = "share-contact"
	ActionTaskStatus          = "task-status"
	ActionTaskNote            = "task-note"
	ActionTaskHours           = "task-hours"
)

// Action is a button on a panel. Row actions apply to the selected row.
type Action struct {
	ID    string
	Label string
	Key   string
	// Row marks actions that need a selected table row.
	Row bool
	// Prompts ask for one line of input each before the action runs.
	Prompts []string
	// Target is the section a navigate action opens.
	Target string
}

// Navigate is an action that opens section target.
func Navigate(label, key, target string) Action {
	return Action{ID: ActionNavigate, Label: label, Key: key, Target: target}
}

// Cell is one table cell. Style is set for status badges.
type Cell struct {
	Text  string
	Style record.Style
}

// Row is one table row keyed by the record id.
type Row struct {
	ID    record.ID
	Cells []Cell
}

// Table is a list of records.
type Table struct {
	Headers []string
	Rows    []Row
	// Empty is shown instead of the table when there are no rows.
	Empty string
}

// Field is a label/value pair, used for statistics and error details.
type Field struct {
	Label string
	Value string
}

// Panel is everything a loader renders.
type Panel struct {
	Kind    Kind
	Title   string
	Message string
	// Markdown is rendered with glamour in the TUI.
	Markdown string
	Fields   []Field
	Table    *Table
	Actions  []Action
	// Body is free text for games and other custom content.
	Body string
}

// Text returns a plain cell.
func Text(s string) Cell {
	return Cell{Text: s}
}

// Badge returns a styled status cell.
func Badge(kind record.Kind, s record.Status) Cell {
	return Cell{Text: s.Label(), Style: record.StyleFor(kind, s)}
}

// Action returns the action with id, if the panel has one.
func (p Panel) Action(id string) (Action, bool) {
	for _, a := range p.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// ActionForKey returns the action bound to key.
func (p Panel) ActionForKey(key string) (Action, bool) {
	for _, a := range p.Actions {
		if a.Key != "" && a.Key == key {
			return a, true
		}
	}
	return Action{}, false
}

// Row returns the row with id.
func (t *Table) Row(id record.ID) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	for _, r := range t.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}
