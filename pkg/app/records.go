package app

import (
	"context"
	"fmt"
	"strings"

	"tableflip.dev/zdash/pkg/nav"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/sections"
	"tableflip.dev/zdash/pkg/store"
	"tableflip.dev/zdash/pkg/view"
)

// Require returns the stored session when its role is one of roles. With no
// roles any signed-in user passes.
//
// The backend answers a wrong-role request with 403, which the client
// treats as an expired session, so the role is checked here first.
func (s *Service) Require(roles ...store.Role) (store.Session, error) {
	sess, ok := s.Session()
	if !ok {
		return store.Session{}, ErrNotLoggedIn
	}
	if len(roles) == 0 {
		return sess, nil
	}
	for _, r := range roles {
		if sess.User.UserType == r {
			return sess, nil
		}
	}
	return sess, fmt.Errorf("%w %s", ErrForbidden, sess.User.UserType.Label())
}

// RolesFor returns the roles allowed to run actionID. Unknown actions have
// no roles.
func RolesFor(actionID string) []store.Role {
	switch actionID {
	case view.ActionApproveRegistration, view.ActionRejectRegistration, view.ActionShareRegistration,
		view.ActionAssignContact, view.ActionResolveContact, view.ActionShareContact:
		return []store.Role{store.RoleAdmin}
	case view.ActionTaskStatus, view.ActionTaskNote, view.ActionTaskHours:
		return []store.Role{store.RoleEmployee}
	}
	return nil
}

// Registry builds the dashboard of the session's role. Games and
// notifications are not wired; it is meant for one-shot Render calls.
func (s *Service) Registry(sess store.Session) (*nav.Registry, error) {
	if s.API == nil {
		return nil, ErrNoAPI
	}
	return sections.For(sess.User.UserType, sections.Deps{
		API:    s.API,
		User:   sess.User,
		Scores: s.Persistence,
	}), nil
}

// Section renders section id of the signed-in dashboard. An empty id is the
// overview.
func (s *Service) Section(ctx context.Context, id string) (view.Panel, error) {
	sess, err := s.Require()
	if err != nil {
		return view.Panel{}, err
	}
	reg, err := s.Registry(sess)
	if err != nil {
		return view.Panel{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = string(nav.Dashboard)
	}
	return sections.Render(ctx, reg, nav.SectionID(id))
}

// Registrations lists registrations with status, "" or "all".
func (s *Service) Registrations(ctx context.Context, status string) ([]record.Registration, error) {
	if _, err := s.Require(store.RoleAdmin); err != nil {
		return nil, err
	}
	filter, err := StatusFilter(record.KindRegistration, status)
	if err != nil {
		return nil, err
	}
	return s.API.Registrations(ctx, filter)
}

// Contacts lists contact inquiries with status, "" or "all".
func (s *Service) Contacts(ctx context.Context, status string) ([]record.ContactInquiry, error) {
	if _, err := s.Require(store.RoleAdmin); err != nil {
		return nil, err
	}
	filter, err := StatusFilter(record.KindContact, status)
	if err != nil {
		return nil, err
	}
	return s.API.Contacts(ctx, filter)
}

// ContactStatistics returns the contact counters.
func (s *Service) ContactStatistics(ctx context.Context) (record.Statistics, error) {
	if _, err := s.Require(store.RoleAdmin); err != nil {
		return nil, err
	}
	return s.API.ContactStatistics(ctx)
}

// Tasks lists the employee's own tasks with status, "" or "all".
func (s *Service) Tasks(ctx context.Context, status string) ([]record.Task, error) {
	if _, err := s.Require(store.RoleEmployee); err != nil {
		return nil, err
	}
	filter, err := StatusFilter(record.KindTask, status)
	if err != nil {
		return nil, err
	}
	return s.API.MyTasks(ctx, filter)
}

// Projects lists every project for employees and the client's own for
// clients.
func (s *Service) Projects(ctx context.Context) ([]record.Project, error) {
	sess, err := s.Require(store.RoleEmployee, store.RoleClient)
	if err != nil {
		return nil, err
	}
	if sess.User.UserType == store.RoleClient {
		return s.API.ClientProjects(ctx, sess.User.SelfID)
	}
	return s.API.Projects(ctx)
}

// StatusFilter maps a user supplied status onto the list endpoint filter.
// Case and dashes are ignored; "" and "all" list everything.
func StatusFilter(kind record.Kind, status string) (string, error) {
	status = strings.TrimSpace(status)
	if status == "" || strings.EqualFold(status, "all") {
		return "all", nil
	}
	up := strings.ToUpper(strings.ReplaceAll(status, "-", "_"))
	allowed := record.Statuses(kind)
	if kind == record.KindRegistration {
		// The backend only has list endpoints for these three.
		allowed = []string{"PENDING", "APPROVED", "REJECTED"}
	}
	for _, s := range allowed {
		if s == up {
			if kind == record.KindRegistration {
				return strings.ToLower(up), nil
			}
			return up, nil
		}
	}
	return "", fmt.Errorf("unknown %s status %q (expected all or one of %s)", kind, status, strings.ToLower(strings.Join(allowed, ", ")))
}
