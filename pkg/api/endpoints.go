package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tableflip.dev/zdash/pkg/record"
)

// LoginResponse is the body of POST /auth/login.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	UserType string `json:"userType"`
	SelfID   string `json:"selfId"`
	Name     string `json:"name"`
	Message  string `json:"message"`
}

// ErrLoginFailed wraps the server's reason for refusing credentials.
var ErrLoginFailed = errors.New("login failed")

// Login exchanges credentials for a token. It never touches the session;
// callers save the result.
func (c *Client) Login(ctx context.Context, selfID, password string) (*LoginResponse, error) {
	body, err := c.login(ctx, map[string]string{"selfId": selfID, "password": password})
	if err != nil {
		return nil, err
	}
	out := &LoginResponse{}
	if err := body.Decode(out); err != nil {
		return nil, err
	}
	if !out.Success || out.Token == "" {
		msg := out.Message
		if msg == "" {
			msg = "invalid credentials"
		}
		return nil, fmt.Errorf("%w: %s", ErrLoginFailed, msg)
	}
	return out, nil
}

// login bypasses the session entirely: there is nothing to expire, and a 401
// here means bad credentials.
func (c *Client) login(ctx context.Context, creds map[string]string) (*Body, error) {
	anon := *c
	anon.Session = nil
	anon.OnAuthExpired = nil
	body, err := anon.Request(ctx, "/auth/login", RequestOptions{Method: http.MethodPost, JSON: creds})
	if errors.Is(err, ErrAuthExpired) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrLoginFailed)
	}
	var failed *RequestFailedError
	if errors.As(err, &failed) {
		resp := LoginResponse{}
		if json.Unmarshal([]byte(failed.Body), &resp) == nil && resp.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrLoginFailed, resp.Message)
		}
	}
	return body, err
}

// Registrations lists registrations; filter is "", "all", "pending",
// "approved" or "rejected".
func (c *Client) Registrations(ctx context.Context, filter string) ([]record.Registration, error) {
	endpoint := "/registrations"
	if f := strings.ToLower(strings.TrimSpace(filter)); f != "" && f != "all" {
		endpoint += "/" + url.PathEscape(f)
	}
	return getList[record.Registration](ctx, c, endpoint, nil)
}

// Contacts lists contact inquiries; an empty or "all" filter lists every
// inquiry, otherwise filter is a contact status.
func (c *Client) Contacts(ctx context.Context, filter string) ([]record.ContactInquiry, error) {
	endpoint := "/contact/inquiries"
	if f := strings.ToUpper(strings.TrimSpace(filter)); f != "" && f != "ALL" {
		endpoint = "/contact/status/" + url.PathEscape(f)
	}
	return getList[record.ContactInquiry](ctx, c, endpoint, nil)
}

// ContactStatistics returns the server's counter map.
func (c *Client) ContactStatistics(ctx context.Context) (record.Statistics, error) {
	return c.statistics(ctx, "/contact/statistics")
}

// DashboardStats returns the per-user stats for employees and clients.
func (c *Client) DashboardStats(ctx context.Context, role, selfID string) (record.Statistics, error) {
	prefix := "/employees/"
	if strings.EqualFold(role, "CLIENT") {
		prefix = "/clients/"
	}
	return c.statistics(ctx, prefix+url.PathEscape(selfID)+"/dashboard-stats")
}

func (c *Client) statistics(ctx context.Context, endpoint string) (record.Statistics, error) {
	body, err := c.Request(ctx, endpoint, RequestOptions{})
	if err != nil {
		return nil, err
	}
	stats := record.Statistics{}
	if err := body.Decode(&stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// MyTasks lists the caller's tasks, optionally by status.
func (c *Client) MyTasks(ctx context.Context, status string) ([]record.Task, error) {
	endpoint := "/tasks/my-tasks"
	if s := strings.ToUpper(strings.TrimSpace(status)); s != "" && s != "ALL" {
		endpoint += "/status/" + url.PathEscape(s)
	}
	return getList[record.Task](ctx, c, endpoint, nil)
}

// Projects lists every project visible to the caller.
func (c *Client) Projects(ctx context.Context) ([]record.Project, error) {
	return getList[record.Project](ctx, c, "/projects", nil)
}

// ClientProjects lists the projects of one client.
func (c *Client) ClientProjects(ctx context.Context, clientID string) ([]record.Project, error) {
	return getList[record.Project](ctx, c, "/clients/"+url.PathEscape(clientID)+"/projects", nil)
}

func (c *Client) ApproveRegistration(ctx context.Context, id record.ID) error {
	return c.action(ctx, http.MethodPost, "/registrations/"+escapeID(id)+"/approve", nil)
}

func (c *Client) RejectRegistration(ctx context.Context, id record.ID, reason string) error {
	return c.action(ctx, http.MethodPost, "/registrations/"+escapeID(id)+"/reject",
		url.Values{"reason": {strings.TrimSpace(reason)}})
}

func (c *Client) ShareRegistration(ctx context.Context, id record.ID, sharedWith string) error {
	return c.action(ctx, http.MethodPost, "/registrations/"+escapeID(id)+"/share",
		url.Values{"sharedWith": {strings.TrimSpace(sharedWith)}})
}

func (c *Client) AssignContact(ctx context.Context, id record.ID, assignedTo string) error {
	return c.action(ctx, http.MethodPut, "/contact/"+escapeID(id)+"/assign",
		url.Values{"assignedTo": {strings.TrimSpace(assignedTo)}})
}

// ResolveContact moves an inquiry to RESOLVED through the status endpoint.
func (c *Client) ResolveContact(ctx context.Context, id record.ID) error {
	return c.UpdateContactStatus(ctx, id, "RESOLVED")
}

func (c *Client) UpdateContactStatus(ctx context.Context, id record.ID, status string) error {
	return c.action(ctx, http.MethodPut, "/contact/"+escapeID(id)+"/status",
		url.Values{"status": {strings.ToUpper(strings.TrimSpace(status))}})
}

// ShareResult is the body of a contact share.
type ShareResult struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	SharedAt record.Timestamp `json:"sharedAt"`
}

func (c *Client) ShareContact(ctx context.Context, id record.ID, sharedWith, notes string) (*ShareResult, error) {
	body, err := c.Request(ctx, "/contact/"+escapeID(id)+"/share", RequestOptions{
		Method: http.MethodPost,
		Query:  url.Values{"sharedWith": {strings.TrimSpace(sharedWith)}, "shareNotes": {notes}},
	})
	if err != nil {
		return nil, err
	}
	out := &ShareResult{Success: true}
	if body.IsJSON && len(bytes.TrimSpace(body.Raw())) > 0 {
		if err := body.Decode(out); err != nil {
			return nil, err
		}
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "share rejected"
		}
		return nil, &RequestFailedError{Status: http.StatusOK, Body: msg}
	}
	return out, nil
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id record.ID, status string) error {
	return c.action(ctx, http.MethodPut, "/tasks/"+escapeID(id)+"/status",
		url.Values{"status": {strings.ToUpper(strings.TrimSpace(status))}})
}

func (c *Client) AddTaskNote(ctx context.Context, id record.ID, note string) error {
	return c.action(ctx, http.MethodPut, "/tasks/"+escapeID(id)+"/notes",
		url.Values{"note": {note}})
}

func (c *Client) LogTaskHours(ctx context.Context, id record.ID, hours int) error {
	if hours < 0 {
		return fmt.Errorf("api: hours must not be negative, got %d", hours)
	}
	return c.action(ctx, http.MethodPut, "/tasks/"+escapeID(id)+"/progress",
		url.Values{"actualHours": {strconv.Itoa(hours)}})
}

// Count returns the number of items at a list endpoint. The polling
// notifier uses it for pending counters.
func (c *Client) Count(ctx context.Context, endpoint string) (int, error) {
	items, err := getList[json.RawMessage](ctx, c, endpoint, nil)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (c *Client) action(ctx context.Context, method, endpoint string, query url.Values) error {
	_, err := c.Request(ctx, endpoint, RequestOptions{Method: method, Query: query})
	return err
}

func escapeID(id record.ID) string {
	return url.PathEscape(id.String())
}

func getList[T any](ctx context.Context, c *Client, endpoint string, query url.Values) ([]T, error) {
	body, err := c.Request(ctx, endpoint, RequestOptions{Query: query})
	if err != nil {
		return nil, err
	}
	return DecodeList[T](body)
}

// DecodeList accepts a bare JSON array or a page object with a content
// array. Anything else is ErrMalformedResponse.
func DecodeList[T any](body *Body) ([]T, error) {
	if body == nil || !body.IsJSON {
		return nil, ErrMalformedResponse
	}
	raw := bytes.TrimSpace(body.Raw())
	if len(raw) == 0 {
		return nil, ErrMalformedResponse
	}
	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return items, nil
	case '{':
		var page struct {
			Content *[]T `json:"content"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if page.Content == nil {
			return nil, ErrMalformedResponse
		}
		return *page.Content, nil
	}
	return nil, ErrMalformedResponse
}
