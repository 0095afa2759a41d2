package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"tableflip.dev/zdash/pkg/api"
	"tableflip.dev/zdash/pkg/export"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/sections"
	"tableflip.dev/zdash/pkg/store"
	"tableflip.dev/zdash/pkg/view"
)

// API is the part of the backend client the service drives.
type API interface {
	sections.Source
	Login(ctx context.Context, selfID, password string) (*api.LoginResponse, error)

	ApproveRegistration(ctx context.Context, id record.ID) error
	RejectRegistration(ctx context.Context, id record.ID, reason string) error
	ShareRegistration(ctx context.Context, id record.ID, sharedWith string) error
	AssignContact(ctx context.Context, id record.ID, assignedTo string) error
	ResolveContact(ctx context.Context, id record.ID) error
	ShareContact(ctx context.Context, id record.ID, sharedWith, notes string) (*api.ShareResult, error)
	UpdateTaskStatus(ctx context.Context, id record.ID, status string) error
	AddTaskNote(ctx context.Context, id record.ID, note string) error
	LogTaskHours(ctx context.Context, id record.ID, hours int) error
}

// Notifier is the notification presenter. It is optional; the CLI prints
// results instead.
type Notifier interface {
	Notify(message string, severity notify.Severity) notify.ID
	NotifyDetailed(d notify.Detailed) notify.ID
}

// Service provides the dashboard operations shared by the TUI, the CLI and
// the MCP server.
type Service struct {
	API         API
	Persistence store.Persistence
	Notifier    Notifier
	Log         zerolog.Logger
	Now         func() time.Time
}

var (
	ErrNoPersistence = errors.New("app: no persistence configured")
	ErrNoAPI         = errors.New("app: no api configured")
	ErrUnknownAction = errors.New("app: unknown action")
	// ErrNotLoggedIn is returned when no usable session is stored.
	ErrNotLoggedIn = errors.New("not logged in, run `zdash login` first")
	// ErrForbidden is returned for data the session's role cannot see.
	ErrForbidden = errors.New("not available for this role")
)

var validate = validator.New()

// Result describes a completed action.
type Result struct {
	Message  string
	Severity notify.Severity
	Detail   *notify.Detailed
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login exchanges credentials and stores the session.
func (s *Service) Login(ctx context.Context, selfID, password string) (store.Session, error) {
	if s.API == nil {
		return store.Session{}, ErrNoAPI
	}
	if s.Persistence == nil {
		return store.Session{}, ErrNoPersistence
	}
	selfID = strings.TrimSpace(selfID)
	if err := validate.Var(selfID, "required"); err != nil {
		return store.Session{}, fmt.Errorf("%w: Self ID is required", api.ErrLoginFailed)
	}
	if err := validate.Var(password, "required"); err != nil {
		return store.Session{}, fmt.Errorf("%w: password is required", api.ErrLoginFailed)
	}

	resp, err := s.API.Login(ctx, selfID, password)
	if err != nil {
		return store.Session{}, err
	}
	role, ok := store.ParseRole(resp.UserType)
	if !ok {
		return store.Session{}, fmt.Errorf("%w: unsupported user type %q", api.ErrLoginFailed, resp.UserType)
	}
	id := resp.SelfID
	if id == "" {
		id = selfID
	}
	sess := store.Session{Token: resp.Token, User: store.User{SelfID: id, Name: resp.Name, UserType: role}}
	if err := s.Persistence.Save(sess); err != nil {
		return store.Session{}, err
	}
	s.Log.Info().Str("selfId", id).Str("role", string(role)).Msg("app: logged in")
	return sess, nil
}

// Logout clears the stored session.
func (s *Service) Logout() error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	return s.Persistence.Clear()
}

// Session returns the stored session, if it is still usable.
func (s *Service) Session() (store.Session, bool) {
	if s.Persistence == nil {
		return store.Session{}, false
	}
	return s.Persistence.Load()
}

// Watch subscribes to session storage changes.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

// Perform runs a row action against record id. inputs carry the answers to
// the action's prompts in order.
func (s *Service) Perform(ctx context.Context, actionID string, id record.ID, inputs ...string) (Result, error) {
	res, err := s.perform(ctx, actionID, id, inputs)
	if err != nil {
		s.Log.Warn().Err(err).Str("action", actionID).Str("id", id.String()).Msg("app: action failed")
		if !api.IsAuthExpired(err) {
			s.notify(Result{Message: "Error: " + errorText(err), Severity: notify.Error})
		}
		return Result{}, err
	}
	s.notify(res)
	return res, nil
}

func (s *Service) perform(ctx context.Context, actionID string, id record.ID, inputs []string) (Result, error) {
	if s.API == nil {
		return Result{}, ErrNoAPI
	}
	roles := RolesFor(actionID)
	if roles == nil {
		return Result{}, fmt.Errorf("%w %q", ErrUnknownAction, actionID)
	}
	if _, err := s.Require(roles...); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(id.String()) == "" {
		return Result{}, errors.New("app: record id required")
	}
	arg := func(i int) string {
		if i < len(inputs) {
			return strings.TrimSpace(inputs[i])
		}
		return ""
	}
	required := func(i int, what string) (string, error) {
		v := arg(i)
		if err := validate.Var(v, "required"); err != nil {
			return "", fmt.Errorf("app: %s is required", what)
		}
		return v, nil
	}

	switch actionID {
	case view.ActionApproveRegistration:
		if err := s.API.ApproveRegistration(ctx, id); err != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("Registration #%s has been approved.", id), Severity: notify.Success}, nil

	case view.ActionRejectRegistration:
		reason, err := required(0, "rejection reason")
		if err != nil {
			return Result{}, err
		}
		if err := s.API.RejectRegistration(ctx, id, reason); err != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("Registration #%s has been rejected.", id), Severity: notify.Info}, nil

	case view.ActionShareRegistration:
		to, err := required(0, "recipient")
		if err != nil {
			return Result{}, err
		}
		if err := s.API.ShareRegistration(ctx, id, to); err != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("Registration #%s has been shared.", id), Severity: notify.Success}, nil

	case view.ActionAssignContact:
		to, err := required(0, "assignee")
		if err != nil {
			return Result{}, err
		}
		if err := s.API.AssignContact(ctx, id, to); err != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("Contact inquiry #%s assigned successfully to %s", id, to), Severity: notify.Success}, nil

	case view.ActionResolveContact:
		if err := s.API.ResolveContact(ctx, id); err != nil {
			return Result{}, err
		}
		return Result{Message: fmt.Sprintf("Contact inquiry #%s marked as resolved", id), Severity: notify.Success}, nil

	case view.ActionShareContact:
		to, err := required(0, "recipient")
		if err != nil {
			return Result{}, err
		}
		notes := arg(1)
		share, err := s.API.ShareContact(ctx, id, to, notes)
		if err != nil {
			return Result{}, err
		}
		sharedAt := share.SharedAt.Time
		if sharedAt.IsZero() {
			sharedAt = s.now()
		}
		if notes == "" {
			notes = "No notes provided"
		}
		return Result{
			Message:  fmt.Sprintf("Contact inquiry #%s shared successfully with %s", id, to),
			Severity: notify.Success,
			Detail: &notify.Detailed{
				Title:    "Contact Inquiry Shared",
				Message:  fmt.Sprintf("Contact inquiry #%s has been shared with %s", id, to),
				Severity: notify.Success,
				Details: []notify.Detail{
					{Label: "Inquiry ID", Value: id.String()},
					{Label: "Shared With", Value: to},
					{Label: "Shared At", Value: sharedAt.Format("2006-01-02 15:04:05")},
					{Label: "Notes", Value: notes},
				},
			},
		}, nil

	case view.ActionTaskStatus:
		status, err := required(0, "status")
		if err != nil {
			return Result{}, err
		}
		status = strings.ToUpper(strings.ReplaceAll(status, " ", "_"))
		if !known(record.KindTask, status) {
			return Result{}, fmt.Errorf("app: unknown task status %q", status)
		}
		if err := s.API.UpdateTaskStatus(ctx, id, status); err != nil {
			return Result{}, err
		}
		return Result{Message: "Task status updated to " + status, Severity: notify.Success}, nil

	case view.ActionTaskNote:
		note, err := required(0, "note")
		if err != nil {
			return Result{}, err
		}
		if err := s.API.AddTaskNote(ctx, id, note); err != nil {
			return Result{}, err
		}
		return Result{Message: "Note added successfully", Severity: notify.Success}, nil

	case view.ActionTaskHours:
		raw, err := required(0, "hours")
		if err != nil {
			return Result{}, err
		}
		hours, err := strconv.Atoi(raw)
		if err != nil || hours < 0 {
			return Result{}, fmt.Errorf("app: hours must be a whole number of at least 0, got %q", raw)
		}
		if err := s.API.LogTaskHours(ctx, id, hours); err != nil {
			return Result{}, err
		}
		return Result{Message: "Task progress updated", Severity: notify.Success}, nil
	}
	return Result{}, fmt.Errorf("%w %q", ErrUnknownAction, actionID)
}

// Exported describes a written export file.
type Exported struct {
	Path    string
	Records int
}

// Export writes the records of section to dir in format f. The file is
// named after the section and today's date.
func (s *Service) Export(ctx context.Context, section string, f export.Format, dir string) (Exported, error) {
	out, err := s.export(ctx, section, f, dir)
	switch {
	case err == nil:
		s.notify(Result{
			Message:  fmt.Sprintf("Successfully exported %d records to %s", out.Records, filepath.Base(out.Path)),
			Severity: notify.Success,
		})
	case errors.Is(err, export.ErrNotExportable), errors.Is(err, export.ErrNoData):
		s.notify(Result{Message: err.Error(), Severity: notify.Warning})
	case api.IsAuthExpired(err):
	default:
		s.notify(Result{Message: "Export failed: " + errorText(err), Severity: notify.Error})
	}
	return out, err
}

func (s *Service) export(ctx context.Context, section string, f export.Format, dir string) (Exported, error) {
	target, err := export.TargetFor(section)
	if err != nil {
		return Exported{}, err
	}
	if s.API == nil {
		return Exported{}, ErrNoAPI
	}

	var data export.Dataset
	switch target.Kind {
	case record.KindRegistration:
		items, err := s.API.Registrations(ctx, target.Filter)
		if err != nil {
			return Exported{}, err
		}
		data = export.Registrations(items)
	default:
		items, err := s.API.Contacts(ctx, target.Filter)
		if err != nil {
			return Exported{}, err
		}
		data = export.Contacts(items)
	}
	if data.Len() == 0 {
		return Exported{}, export.ErrNoData
	}

	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, target.Filename(f, s.now()))
	file, err := os.Create(path)
	if err != nil {
		return Exported{}, fmt.Errorf("app: create %s: %w", path, err)
	}
	if err := export.Write(file, f, data); err != nil {
		file.Close()
		os.Remove(path)
		return Exported{}, err
	}
	if err := file.Close(); err != nil {
		return Exported{}, fmt.Errorf("app: close %s: %w", path, err)
	}
	s.Log.Info().Str("path", path).Int("records", data.Len()).Msg("app: exported")
	return Exported{Path: path, Records: data.Len()}, nil
}

func (s *Service) notify(r Result) {
	if s.Notifier == nil || r.Message == "" {
		return
	}
	s.Notifier.Notify(r.Message, r.Severity)
	if r.Detail != nil {
		s.Notifier.NotifyDetailed(*r.Detail)
	}
}

// errorText unwraps the server's message from request failures.
func errorText(err error) string {
	var failed *api.RequestFailedError
	if errors.As(err, &failed) {
		var body struct {
			Message string `json:"message"`
		}
		if json.Unmarshal([]byte(failed.Body), &body) == nil && body.Message != "" {
			return body.Message
		}
		return failed.Error()
	}
	return err.Error()
}

func known(kind record.Kind, status string) bool {
	for _, s := range record.Statuses(kind) {
		if s == status {
			return true
		}
	}
	return false
}
