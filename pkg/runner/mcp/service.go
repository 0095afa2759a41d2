// Package mcp provides the Model Context Protocol server integration for zdash.
package mcp

import (
	"context"
	"strings"

	"tableflip.dev/zdash/pkg/app"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/view"
)

// Service exposes the signed-in user's dashboard to MCP tools and resources.
type Service struct {
	App *app.Service
}

// SessionDTO describes who the server acts as.
type SessionDTO struct {
	SelfID   string `json:"selfId"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
	Role     string `json:"role"`
}

// SectionDTO is one sidebar entry.
type SectionDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Group string `json:"group,omitempty"`
}

// ActionDTO is the outcome of a dashboard action.
type ActionDTO struct {
	Action   string            `json:"action"`
	ID       string            `json:"id"`
	Message  string            `json:"message"`
	Severity string            `json:"severity"`
	Details  map[string]string `json:"details,omitempty"`
}

// NewService builds a service wrapper over the dashboard operations.
func NewService(svc *app.Service) *Service {
	return &Service{App: svc}
}

// Whoami returns the stored user.
func (s *Service) Whoami() (SessionDTO, error) {
	sess, err := s.App.Require()
	if err != nil {
		return SessionDTO{}, err
	}
	return SessionDTO{
		SelfID:   sess.User.SelfID,
		Name:     sess.User.DisplayName(),
		UserType: string(sess.User.UserType),
		Role:     sess.User.UserType.Label(),
	}, nil
}

// Sections lists the dashboard of the signed-in role.
func (s *Service) Sections() ([]SectionDTO, error) {
	sess, err := s.App.Require()
	if err != nil {
		return nil, err
	}
	reg, err := s.App.Registry(sess)
	if err != nil {
		return nil, err
	}
	out := make([]SectionDTO, 0)
	for _, sec := range reg.Sections() {
		out = append(out, SectionDTO{ID: string(sec.ID), Title: reg.DisplayName(sec.ID), Group: sec.Group})
	}
	return out, nil
}

// Section renders one section the way the dashboard would.
func (s *Service) Section(ctx context.Context, id string) (view.Panel, error) {
	return s.App.Section(ctx, id)
}

func (s *Service) Registrations(ctx context.Context, status string) ([]record.Registration, error) {
	return s.App.Registrations(ctx, status)
}

func (s *Service) Contacts(ctx context.Context, status string) ([]record.ContactInquiry, error) {
	return s.App.Contacts(ctx, status)
}

func (s *Service) ContactStatistics(ctx context.Context) (record.Statistics, error) {
	return s.App.ContactStatistics(ctx)
}

func (s *Service) Tasks(ctx context.Context, status string) ([]record.Task, error) {
	return s.App.Tasks(ctx, status)
}

func (s *Service) Projects(ctx context.Context) ([]record.Project, error) {
	return s.App.Projects(ctx)
}

// Perform runs a dashboard action on record id.
func (s *Service) Perform(ctx context.Context, action string, id string, inputs ...string) (ActionDTO, error) {
	if _, err := s.App.Require(app.RolesFor(action)...); err != nil {
		return ActionDTO{}, err
	}
	id = strings.TrimSpace(id)
	res, err := s.App.Perform(ctx, action, record.ID(id), inputs...)
	if err != nil {
		return ActionDTO{}, err
	}
	out := ActionDTO{Action: action, ID: id, Message: res.Message, Severity: string(res.Severity)}
	if res.Detail != nil {
		out.Details = map[string]string{}
		for _, d := range res.Detail.Details {
			out.Details[d.Label] = d.Value
		}
	}
	return out, nil
}
