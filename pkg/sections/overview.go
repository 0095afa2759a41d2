package sections

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"tableflip.dev/zdash/pkg/nav"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/view"
)

const adminWelcome = `## Welcome to Z+ Admin Panel

Manage your system users, registrations, and administrative tasks efficiently.

| Card | Opens |
|---|---|
| User Management | pending registrations |
| Approved Users | approved registrations |
| Rejected Users | rejected registrations |
| All Registrations | every registration |
`

// adminOverview makes no API calls so the landing page always renders.
func (d Deps) adminOverview() nav.Loader {
	return nav.LoaderFunc(func(_ context.Context, c nav.Container) (nav.Cleanup, error) {
		c.Render(view.Panel{
			Title:    "Dashboard",
			Markdown: adminWelcome,
			Fields: []view.Field{
				{Label: "Signed in as", Value: d.User.DisplayName()},
				{Label: "Status", Value: "Online"},
				{Label: "Last Updated", Value: d.Now().Format("2006-01-02 15:04:05")},
			},
			Actions: []view.Action{
				view.Navigate("View Pending", "p", string(PendingRegistrations)),
				view.Navigate("Approved Users", "A", string(ApprovedRegistrations)),
				view.Navigate("Rejected Users", "X", string(RejectedRegistrations)),
				view.Navigate("All Registrations", "L", string(AllRegistrations)),
				view.Navigate("Contact Inquiries", "C", string(AllContacts)),
				view.Navigate("Mini Games", "G", string(GamesOverview)),
			},
		})
		return nil, nil
	})
}

const gamesWelcome = `## Mini Games Collection

Interactive games for users and entertainment features.

* **Tic Tac Toe**: classic strategy game for two players
* **Memory Game**: test your memory with card matching
* **Snake Game**: classic arcade-style snake game
`

func (d Deps) gamesOverview() nav.Loader {
	return nav.LoaderFunc(func(_ context.Context, c nav.Container) (nav.Cleanup, error) {
		c.Render(view.Panel{
			Title:    "Mini Games",
			Markdown: gamesWelcome,
			Actions: []view.Action{
				view.Navigate("Tic Tac Toe", "1", string(TicTacToe)),
				view.Navigate("Memory Game", "2", string(MemoryGame)),
				view.Navigate("Snake Game", "3", string(SnakeGame)),
			},
		})
		return nil, nil
	})
}

type statLine struct {
	key, label string
}

var employeeStats = []statLine{
	{"totalTasks", "Total Tasks"},
	{"completedTasks", "Completed Tasks"},
	{"pendingTasks", "Pending Tasks"},
	{"hoursWorked", "Hours Worked"},
	{"activeProjects", "Active Projects"},
}

var clientStats = []statLine{
	{"totalProjects", "Total Projects"},
	{"activeProjects", "Active Projects"},
	{"completedProjects", "Completed Projects"},
	{"totalSpent", "Total Spent"},
	{"recentReports", "Recent Reports"},
}

// statsOverview is the employee and client landing page.
func (d Deps) statsOverview(lines []statLine) nav.Loader {
	return nav.LoaderFunc(func(ctx context.Context, c nav.Container) (nav.Cleanup, error) {
		stats, err := d.API.DashboardStats(ctx, string(d.User.UserType), d.User.SelfID)
		if err != nil {
			return nil, err
		}
		fields := []view.Field{{Label: "Welcome", Value: d.User.DisplayName()}}
		for _, l := range lines {
			fields = append(fields, view.Field{Label: l.label, Value: statValue(stats[l.key])})
		}
		c.Render(view.Panel{Title: d.User.UserType.Label() + " Dashboard", Fields: fields})
		return nil, nil
	})
}

// StatisticsFields flattens the contact statistics map: the total first,
// then one line per status in name order.
func StatisticsFields(stats record.Statistics) []view.Field {
	fields := []view.Field{{Label: "Total Inquiries", Value: statValue(stats["total"])}}
	byStatus, _ := stats["byStatus"].(map[string]any)
	keys := make([]string, 0, len(byStatus))
	for k := range byStatus {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, view.Field{Label: nav.TitleCase(k), Value: statValue(byStatus[k])})
	}
	return fields
}

func statValue(v any) string {
	switch n := v.(type) {
	case nil:
		return "0"
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		return n
	}
	return fmt.Sprint(v)
}
