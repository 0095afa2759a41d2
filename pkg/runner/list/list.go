// Package list prints dashboard records and sections on the command line.
package list

import (
	"context"
	"fmt"
	"io"
	"strings"

	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/printers"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/sections"
	"tableflip.dev/zdash/pkg/view"
)

// Kinds of records List knows.
const (
	Registrations = "registrations"
	Contacts      = "contacts"
	Statistics    = "statistics"
	Tasks         = "tasks"
	Projects      = "projects"
)

// Kinds lists the accepted kinds, for completion and help.
func Kinds() []string {
	return []string{Registrations, Contacts, Statistics, Tasks, Projects}
}

// List prints one kind of record, filtered by Status.
type List struct {
	Service *app.Service
	Kind    string
	Status  string

	JSON bool
	Out  io.Writer
}

func (l *List) Do(ctx context.Context) error {
	if l.Service == nil {
		return app.ErrNoAPI
	}
	var (
		panel view.Panel
		data  any
	)
	switch strings.ToLower(strings.TrimSpace(l.Kind)) {
	case Registrations, "registration", "reg":
		items, err := l.Service.Registrations(ctx, l.Status)
		if err != nil {
			return err
		}
		filter, _ := app.StatusFilter(record.KindRegistration, l.Status)
		panel, data = sections.RegistrationPanel(filter, items), items
	case Contacts, "contact":
		items, err := l.Service.Contacts(ctx, l.Status)
		if err != nil {
			return err
		}
		filter, _ := app.StatusFilter(record.KindContact, l.Status)
		panel, data = sections.ContactPanel(strings.ToLower(filter), items), items
	case Statistics, "stats":
		stats, err := l.Service.ContactStatistics(ctx)
		if err != nil {
			return err
		}
		panel = view.Panel{Title: "Contact Statistics", Fields: sections.StatisticsFields(stats)}
		data = stats
	case Tasks, "task":
		items, err := l.Service.Tasks(ctx, l.Status)
		if err != nil {
			return err
		}
		filter, _ := app.StatusFilter(record.KindTask, l.Status)
		panel, data = sections.TaskPanel(strings.ToLower(filter), items), items
	case Projects, "project":
		items, err := l.Service.Projects(ctx)
		if err != nil {
			return err
		}
		panel, data = sections.ProjectPanel(items), items
	default:
		return fmt.Errorf("unknown kind %q (expected one of %s)", l.Kind, strings.Join(Kinds(), ", "))
	}

	if l.JSON {
		return printers.JSON(l.Out, data)
	}
	pp := printers.PrettyPrint{Out: l.Out}
	pp.Panel(panel)
	return nil
}

// Show prints one dashboard section as the TUI would draw it.
type Show struct {
	Service *app.Service
	Section string

	JSON bool
	Out  io.Writer
}

func (s *Show) Do(ctx context.Context) error {
	if s.Service == nil {
		return app.ErrNoAPI
	}
	panel, err := s.Service.Section(ctx, s.Section)
	if err != nil {
		return err
	}
	if s.JSON {
		return printers.JSON(s.Out, panel)
	}
	pp := printers.PrettyPrint{Out: s.Out, ShowActions: true}
	pp.Panel(panel)
	return nil
}

// Sections prints the sidebar of the signed-in dashboard.
type Sections struct {
	Service *app.Service

	JSON bool
	Out  io.Writer
}

type sectionDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Group string `json:"group,omitempty"`
}

func (s *Sections) Do(_ context.Context) error {
	if s.Service == nil {
		return app.ErrNoAPI
	}
	sess, err := s.Service.Require()
	if err != nil {
		return err
	}
	reg, err := s.Service.Registry(sess)
	if err != nil {
		return err
	}
	out := make([]sectionDTO, 0)
	table := &view.Table{Headers: []string{"ID", "Title", "Group"}}
	for _, sec := range reg.Sections() {
		dto := sectionDTO{ID: string(sec.ID), Title: reg.DisplayName(sec.ID), Group: sec.Group}
		out = append(out, dto)
		table.Rows = append(table.Rows, view.Row{ID: record.ID(dto.ID), Cells: []view.Cell{view.Text(dto.ID), view.Text(dto.Title), view.Text(dto.Group)}})
	}
	if s.JSON {
		return printers.JSON(s.Out, out)
	}
	pp := printers.PrettyPrint{Out: s.Out}
	pp.Panel(view.Panel{Title: sess.User.UserType.Label() + " Sections", Table: table})
	return nil
}
