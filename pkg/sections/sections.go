// Package sections holds the concrete section loaders of the three
// dashboards and the registries that group them per role.
package sections

import (
	"context"
	"math/rand"
	"time"

	"tableflip.dev/zdash/pkg/games"
	"tableflip.dev/zdash/pkg/nav"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/poll"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/store"
)

// Source is the part of the API client the loaders read from.
type Source interface {
	Registrations(ctx context.Context, filter string) ([]record.Registration, error)
	Contacts(ctx context.Context, filter string) ([]record.ContactInquiry, error)
	ContactStatistics(ctx context.Context) (record.Statistics, error)
	DashboardStats(ctx context.Context, role, selfID string) (record.Statistics, error)
	MyTasks(ctx context.Context, status string) ([]record.Task, error)
	Projects(ctx context.Context) ([]record.Project, error)
	ClientProjects(ctx context.Context, clientID string) ([]record.Project, error)
}

// Presenter shows game results.
type Presenter interface {
	Notify(message string, severity notify.Severity) notify.ID
}

// Deps is what loaders close over.
type Deps struct {
	API       Source
	User      store.User
	Presenter Presenter
	// Scores keeps the snake high score; usually the session store.
	Scores games.Scores
	// Keys receives key presses the host does not handle itself.
	Keys *Keys

	Now       func() time.Time
	Seed      func() int64
	AfterFunc notify.AfterFunc
	NewTicker func(time.Duration) poll.Ticker
}

func (d *Deps) defaults() {
	if d.Keys == nil {
		d.Keys = &Keys{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Seed == nil {
		d.Seed = func() int64 { return rand.Int63() }
	}
	if d.AfterFunc == nil {
		d.AfterFunc = func(dur time.Duration, f func()) notify.Timer { return time.AfterFunc(dur, f) }
	}
	if d.NewTicker == nil {
		d.NewTicker = poll.NewRealTicker
	}
}

func (d Deps) notify(msg string, sev notify.Severity) {
	if d.Presenter != nil && msg != "" {
		d.Presenter.Notify(msg, sev)
	}
}

// Admin section ids.
const (
	AllRegistrations      nav.SectionID = "all-registrations"
	PendingRegistrations  nav.SectionID = "pending-registrations"
	ApprovedRegistrations nav.SectionID = "approved-registrations"
	RejectedRegistrations nav.SectionID = "rejected-registrations"
	RegistrationApproval  nav.SectionID = "registration-approval"
	AllContacts           nav.SectionID = "all-contacts"
	PendingContacts       nav.SectionID = "pending-contacts"
	ResolvedContacts      nav.SectionID = "resolved-contacts"
	ContactStatistics     nav.SectionID = "contact-statistics"
	GamesOverview         nav.SectionID = "games-overview"
	TicTacToe             nav.SectionID = "tic-tac-toe"
	MemoryGame            nav.SectionID = "memory-game"
	SnakeGame             nav.SectionID = "snake-game"
)

// Employee and client section ids.
const (
	MyTasks          nav.SectionID = "my-tasks"
	TodoTasks        nav.SectionID = "todo-tasks"
	InProgressTasks  nav.SectionID = "in-progress-tasks"
	CompletedTasks   nav.SectionID = "completed-tasks"
	AssignedProjects nav.SectionID = "assigned-projects"
	MyProjects       nav.SectionID = "my-projects"
)

// For returns the dashboard of role.
func For(role store.Role, d Deps) *nav.Registry {
	switch role {
	case store.RoleEmployee:
		return Employee(d)
	case store.RoleClient:
		return Client(d)
	}
	return Admin(d)
}

// Admin is the administrator dashboard.
func Admin(d Deps) *nav.Registry {
	d.defaults()
	tally := games.NewTicTacToe()
	return nav.NewRegistry().MustRegister(
		nav.Section{ID: nav.Dashboard, Title: "Dashboard", Loader: d.adminOverview()},
		nav.Section{ID: AllRegistrations, Group: "Registrations", Loader: d.Registrations("all")},
		nav.Section{ID: PendingRegistrations, Group: "Registrations", Loader: d.Registrations("pending")},
		nav.Section{ID: ApprovedRegistrations, Group: "Registrations", Loader: d.Registrations("approved")},
		nav.Section{ID: RejectedRegistrations, Group: "Registrations", Loader: d.Registrations("rejected")},
		nav.Section{ID: RegistrationApproval, Group: "Registrations", Loader: d.Registrations("all")},
		nav.Section{ID: AllContacts, Title: "All Contact Inquiries", Group: "Contacts", Loader: d.Contacts("all")},
		nav.Section{ID: PendingContacts, Title: "Pending Inquiries", Group: "Contacts", Loader: d.Contacts("pending")},
		nav.Section{ID: ResolvedContacts, Title: "Resolved Inquiries", Group: "Contacts", Loader: d.Contacts("resolved")},
		nav.Section{ID: ContactStatistics, Group: "Contacts", Loader: d.contactStatistics()},
		nav.Section{ID: GamesOverview, Title: "Mini Games", Group: "Games", Loader: d.gamesOverview()},
		nav.Section{ID: TicTacToe, Title: "Tic Tac Toe", Group: "Games", Loader: d.TicTacToe(tally)},
		nav.Section{ID: MemoryGame, Group: "Games", Loader: d.Memory()},
		nav.Section{ID: SnakeGame, Group: "Games", Loader: d.Snake()},
	)
}

// Employee is the employee dashboard.
func Employee(d Deps) *nav.Registry {
	d.defaults()
	r := nav.NewRegistry().MustRegister(
		nav.Section{ID: nav.Dashboard, Title: "Dashboard", Loader: d.statsOverview(employeeStats)},
		nav.Section{ID: MyTasks, Group: "Tasks", Loader: d.Tasks("all")},
		nav.Section{ID: TodoTasks, Title: "To Do", Group: "Tasks", Loader: d.Tasks("todo")},
		nav.Section{ID: InProgressTasks, Title: "In Progress", Group: "Tasks", Loader: d.Tasks("in_progress")},
		nav.Section{ID: CompletedTasks, Title: "Completed", Group: "Tasks", Loader: d.Tasks("completed")},
		nav.Section{ID: AssignedProjects, Group: "Projects", Loader: d.Projects(false)},
	)
	return placeholders(r, "time-tracking", "reports", "documents", "team-collaboration", "leave-management")
}

// Client is the client dashboard.
func Client(d Deps) *nav.Registry {
	d.defaults()
	r := nav.NewRegistry().MustRegister(
		nav.Section{ID: nav.Dashboard, Title: "Dashboard", Loader: d.statsOverview(clientStats)},
		nav.Section{ID: MyProjects, Group: "Projects", Loader: d.Projects(true)},
	)
	return placeholders(r, "project-reports", "documents", "communications", "billing", "support", "profile-settings")
}

func placeholders(r *nav.Registry, ids ...nav.SectionID) *nav.Registry {
	for _, id := range ids {
		r.MustRegister(nav.Section{ID: id, Group: "More", Loader: nav.Placeholder(nav.TitleCase(string(id)))})
	}
	return r
}
