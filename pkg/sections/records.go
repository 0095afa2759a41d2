package sections

import (
	"context"
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"

	"tableflip.dev/zdash/pkg/nav"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/view"
)

var refreshExport = []view.Action{
	{ID: view.ActionExport, Label: "Export", Key: "e"},
}

var registrationActions = []view.Action{
	{ID: view.ActionApproveRegistration, Label: "Approve", Key: "a", Row: true},
	{ID: view.ActionRejectRegistration, Label: "Reject", Key: "x", Row: true, Prompts: []string{"Reason for rejection"}},
	{ID: view.ActionShareRegistration, Label: "Share", Key: "s", Row: true, Prompts: []string{"Share with (project ID or email)"}},
}

var contactActions = []view.Action{
	{ID: view.ActionAssignContact, Label: "Assign", Key: "g", Row: true, Prompts: []string{"Assign to (employee Self ID)"}},
	{ID: view.ActionResolveContact, Label: "Mark Resolved", Key: "c", Row: true},
	{ID: view.ActionShareContact, Label: "Share", Key: "s", Row: true, Prompts: []string{"Share with (project ID or email)", "Sharing notes (optional)"}},
}

var taskActions = []view.Action{
	{ID: view.ActionTaskStatus, Label: "Set Status", Key: "t", Row: true, Prompts: []string{"New status (TODO, IN_PROGRESS, IN_REVIEW, COMPLETED, ON_HOLD)"}},
	{ID: view.ActionTaskNote, Label: "Add Note", Key: "n", Row: true, Prompts: []string{"Note"}},
	{ID: view.ActionTaskHours, Label: "Log Hours", Key: "l", Row: true, Prompts: []string{"Actual hours"}},
}

// Registrations lists registrations with filter "all", "pending",
// "approved" or "rejected". Only pending rows can be acted on.
func (d Deps) Registrations(filter string) nav.Loader {
	return nav.LoaderFunc(func(ctx context.Context, c nav.Container) (nav.Cleanup, error) {
		items, err := d.API.Registrations(ctx, filter)
		if err != nil {
			return nil, err
		}
		c.Render(RegistrationPanel(filter, items))
		return nil, nil
	})
}

// RegistrationPanel is the table a registrations section shows.
func RegistrationPanel(filter string, items []record.Registration) view.Panel {
	t := &view.Table{
		Headers: []string{"ID", "Name", "Email", "Department", "Project ID", "Status", "Actions/Details"},
		Empty:   "No Registrations Yet. There are currently no registrations in the system.",
	}
	for _, r := range items {
		details := "-"
		switch {
		case filter == "pending":
			details = "approve / reject / share"
		case r.RejectionReason != "":
			details = "Reason: " + r.RejectionReason
		case r.SharedWith != "":
			details = "Shared with: " + r.SharedWith
		}
		t.Rows = append(t.Rows, view.Row{ID: r.ID, Cells: []view.Cell{
			view.Text(r.ID.String()),
			view.Text(r.FullName()),
			view.Text(dash(r.Email)),
			view.Text(dash(r.Department)),
			view.Text(dash(r.ProjectID.String())),
			view.Badge(record.KindRegistration, statusOr(r.Status, "PENDING")),
			view.Text(details),
		}})
	}
	p := view.Panel{
		Title:   nav.TitleCase(filter + "-registrations"),
		Table:   t,
		Actions: refreshExport,
	}
	if filter == "pending" {
		p.Actions = append(append([]view.Action{}, registrationActions...), refreshExport...)
	}
	return p
}

// Contacts lists inquiries with filter "all", "pending" or "resolved".
// Resolved inquiries are read only.
func (d Deps) Contacts(filter string) nav.Loader {
	return nav.LoaderFunc(func(ctx context.Context, c nav.Container) (nav.Cleanup, error) {
		items, err := d.API.Contacts(ctx, filter)
		if err != nil {
			return nil, err
		}
		c.Render(ContactPanel(filter, items))
		return nil, nil
	})
}

// ContactPanel is the table a contacts section shows.
func ContactPanel(filter string, items []record.ContactInquiry) view.Panel {
	t := &view.Table{
		Headers: []string{"ID", "Name", "Email", "Subject", "Message Preview", "Status", "Date", "Assigned To"},
		Empty:   "No Contact Inquiries. New inquiries will appear here when submitted.",
	}
	for _, c := range items {
		t.Rows = append(t.Rows, view.Row{ID: c.ID, Cells: []view.Cell{
			view.Text(c.ID.String()),
			view.Text(dash(c.FullName)),
			view.Text(dash(c.Email)),
			view.Text(dash(c.Subject)),
			view.Text(preview(c.Message, 50)),
			view.Badge(record.KindContact, statusOr(c.Status, "NEW")),
			view.Text(c.CreatedAt.Date("-")),
			view.Text(orElse(c.AssignedTo, "Unassigned")),
		}})
	}
	p := view.Panel{
		Title:   nav.TitleCase(filter + "-contact-inquiries"),
		Table:   t,
		Actions: refreshExport,
	}
	if filter != "resolved" {
		p.Actions = append(append([]view.Action{}, contactActions...), refreshExport...)
	}
	return p
}

func (d Deps) contactStatistics() nav.Loader {
	return nav.LoaderFunc(func(ctx context.Context, c nav.Container) (nav.Cleanup, error) {
		stats, err := d.API.ContactStatistics(ctx)
		if err != nil {
			return nil, err
		}
		c.Render(view.Panel{Title: "Contact Statistics", Fields: StatisticsFields(stats)})
		return nil, nil
	})
}

// Tasks lists the caller's tasks by status, "all" for every task.
func (d Deps) Tasks(status string) nav.Loader {
	return nav.LoaderFunc(func(ctx context.Context, c nav.Container) (nav.Cleanup, error) {
		items, err := d.API.MyTasks(ctx, status)
		if err != nil {
			return nil, err
		}
		c.Render(TaskPanel(status, items))
		return nil, nil
	})
}

// TaskPanel is the table a tasks section shows.
func TaskPanel(status string, items []record.Task) view.Panel {
	t := &view.Table{
		Headers: []string{"ID", "Title", "Priority", "Status", "Due", "Hours", "Progress"},
		Empty:   "No tasks assigned.",
	}
	for _, task := range items {
		due := task.DueDate.Date("-")
		if task.Overdue {
			due += " (overdue)"
		}
		t.Rows = append(t.Rows, view.Row{ID: task.ID, Cells: []view.Cell{
			view.Text(task.ID.String()),
			view.Text(task.Title),
			view.Badge(record.KindTask, statusOr(task.Priority, "MEDIUM")),
			view.Badge(record.KindTask, statusOr(task.Status, "TODO")),
			view.Text(due),
			view.Text(fmt.Sprintf("%s / %s", task.ActualHours, task.EstimatedHours)),
			view.Text(task.ProgressPercentage.String() + "%"),
		}})
	}
	title := "My Tasks"
	if s := strings.ToLower(status); s != "" && s != "all" {
		title = nav.TitleCase(s) + " Tasks"
	}
	return view.Panel{Title: title, Table: t, Actions: taskActions}
}

// Projects lists the client's own projects when own is set, otherwise every
// project the caller can see.
func (d Deps) Projects(own bool) nav.Loader {
	return nav.LoaderFunc(func(ctx context.Context, c nav.Container) (nav.Cleanup, error) {
		var (
			items []record.Project
			err   error
		)
		if own {
			items, err = d.API.ClientProjects(ctx, d.User.SelfID)
		} else {
			items, err = d.API.Projects(ctx)
		}
		if err != nil {
			return nil, err
		}
		c.Render(ProjectPanel(items))
		return nil, nil
	})
}

// ProjectPanel is the table a projects section shows.
func ProjectPanel(items []record.Project) view.Panel {
	t := &view.Table{
		Headers: []string{"ID", "Project", "Status", "Priority", "Progress", "Budget", "Start", "End"},
		Empty:   "No projects yet.",
	}
	for _, p := range items {
		id := p.ProjectID
		if id == "" {
			id = p.ID
		}
		t.Rows = append(t.Rows, view.Row{ID: p.ID, Cells: []view.Cell{
			view.Text(id.String()),
			view.Text(p.ProjectName),
			view.Badge(record.KindProject, statusOr(p.Status, "PLANNING")),
			view.Badge(record.KindTask, statusOr(p.Priority, "MEDIUM")),
			view.Text(p.ProgressPercentage.String() + "%"),
			view.Text(p.Budget.String()),
			view.Text(p.StartDate.Date("-")),
			view.Text(p.EndDate.Date("-")),
		}})
	}
	return view.Panel{Title: "Projects", Table: t}
}

func statusOr(s record.Status, def string) record.Status {
	if s.Name == "" {
		return record.S(def)
	}
	return s
}

func dash(s string) string {
	return orElse(s, "-")
}

func orElse(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// preview cuts a message to n cells and marks the cut.
func preview(msg string, n uint) string {
	msg = strings.Join(strings.Fields(msg), " ")
	if msg == "" {
		return "-"
	}
	return truncate.StringWithTail(msg, n, "...")
}
