package fakeapi_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tableflip.dev/zdash/pkg/api"
	"tableflip.dev/zdash/pkg/fakeapi"
	"tableflip.dev/zdash/pkg/record"
)

type session struct{ token string }

func (s *session) Token() string { return s.token }
func (s *session) Clear() error  { s.token = ""; return nil }

func start(t *testing.T, opts ...fakeapi.Option) (*fakeapi.Server, string) {
	t.Helper()
	fake := fakeapi.New(opts...)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv.URL + "/api"
}

func loginAs(t *testing.T, baseURL string, a fakeapi.Account) *api.Client {
	t.Helper()
	sess := &session{}
	c := api.New(baseURL, sess, 5*time.Second)
	resp, err := c.Login(context.Background(), a.SelfID, a.Password)
	if err != nil {
		t.Fatalf("Login(%s): %v", a.SelfID, err)
	}
	if resp.UserType != a.UserType || resp.Name != a.Name {
		t.Fatalf("login response = %+v", resp)
	}
	sess.token = resp.Token
	return c
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, base := start(t)
	c := api.New(base, &session{}, 5*time.Second)
	_, err := c.Login(context.Background(), fakeapi.Admin.SelfID, "nope")
	if !errors.Is(err, api.ErrLoginFailed) {
		t.Fatalf("err = %v, want ErrLoginFailed", err)
	}
}

func TestAdminFlows(t *testing.T) {
	fake, base := start(t)
	c := loginAs(t, base, fakeapi.Admin)
	ctx := context.Background()

	pending, err := c.Registrations(ctx, "pending")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].FullName() != "Priya Nair" {
		t.Fatalf("pending = %+v", pending)
	}
	if err := c.ApproveRegistration(ctx, pending[0].ID); err != nil {
		t.Fatal(err)
	}
	if r, _ := fake.Registration(pending[0].ID); r.Status.Key() != "APPROVED" {
		t.Errorf("status = %s", r.Status.Key())
	}
	var failed *api.RequestFailedError
	if err := c.ApproveRegistration(ctx, pending[0].ID); !errors.As(err, &failed) || failed.Status != 400 {
		t.Errorf("second approve = %v", err)
	}

	all, err := c.Contacts(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("contacts = %d", len(all))
	}
	if err := c.ResolveContact(ctx, all[0].ID); err != nil {
		t.Fatal(err)
	}
	res, err := c.ShareContact(ctx, all[0].ID, "EMP001", "please follow up")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success || res.SharedAt.IsZero() {
		t.Errorf("share = %+v", res)
	}
	if _, err := c.ShareContact(ctx, all[0].ID, " ", ""); !errors.As(err, &failed) {
		t.Errorf("empty share = %v", err)
	}

	stats, err := c.ContactStatistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats["total"] != float64(3) {
		t.Errorf("stats = %v", stats)
	}

	n, err := c.Count(ctx, "/contact/status/PENDING")
	if err != nil || n != 0 {
		t.Errorf("pending contacts = %d, %v", n, err)
	}
	fake.AddContact(record.ContactInquiry{FullName: "New Person", Message: "hi"})
	if n, _ := c.Count(ctx, "/contact/status/PENDING"); n != 1 {
		t.Errorf("pending after add = %d", n)
	}
}

func TestEmployeeFlows(t *testing.T) {
	fake, base := start(t)
	c := loginAs(t, base, fakeapi.Employee)
	ctx := context.Background()

	todo, err := c.MyTasks(ctx, "todo")
	if err != nil {
		t.Fatal(err)
	}
	if len(todo) != 1 {
		t.Fatalf("todo = %+v", todo)
	}
	id := todo[0].ID
	if err := c.UpdateTaskStatus(ctx, id, "in_progress"); err != nil {
		t.Fatal(err)
	}
	if err := c.LogTaskHours(ctx, id, 3); err != nil {
		t.Fatal(err)
	}
	if err := c.AddTaskNote(ctx, id, "started"); err != nil {
		t.Fatal(err)
	}
	task, _ := fake.Task(fakeapi.Employee.SelfID, id)
	if task.Status.Key() != "IN_PROGRESS" || task.ActualHours != 3 || task.Notes != "started" {
		t.Errorf("task = %+v", task)
	}

	stats, err := c.DashboardStats(ctx, "EMPLOYEE", fakeapi.Employee.SelfID)
	if err != nil {
		t.Fatal(err)
	}
	if stats["totalTasks"] != float64(3) || stats["completedTasks"] != float64(1) {
		t.Errorf("stats = %v", stats)
	}

	if _, err := c.Registrations(ctx, ""); err == nil || !api.IsAuthExpired(err) {
		t.Errorf("employee listing registrations = %v, want auth expired", err)
	}
}

func TestClientFlows(t *testing.T) {
	_, base := start(t)
	c := loginAs(t, base, fakeapi.Client)
	ctx := context.Background()

	projects, err := c.ClientProjects(ctx, fakeapi.Client.SelfID)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Fatalf("projects = %+v", projects)
	}
	stats, err := c.DashboardStats(ctx, "CLIENT", fakeapi.Client.SelfID)
	if err != nil {
		t.Fatal(err)
	}
	if stats["totalProjects"] != float64(2) || stats["activeProjects"] != float64(1) {
		t.Errorf("stats = %v", stats)
	}
}

func TestRevokeExpiresSession(t *testing.T) {
	fake, base := start(t)
	sess := &session{}
	c := api.New(base, sess, 5*time.Second)
	token, err := fake.Issue(fakeapi.Admin.SelfID)
	if err != nil {
		t.Fatal(err)
	}
	sess.token = token
	expired := 0
	c.OnAuthExpired = func() { expired++ }

	if _, err := c.Projects(context.Background()); err != nil {
		t.Fatal(err)
	}
	fake.Revoke()
	if _, err := c.Projects(context.Background()); !errors.Is(err, api.ErrAuthExpired) {
		t.Fatalf("err = %v, want ErrAuthExpired", err)
	}
	if expired != 1 || sess.token != "" {
		t.Errorf("expired=%d token=%q", expired, sess.token)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	var offset atomic.Int64
	clock := func() time.Time { return time.Now().Add(time.Duration(offset.Load())) }
	fake, base := start(t, fakeapi.WithTTL(time.Minute), fakeapi.WithClock(clock))
	token, err := fake.Issue(fakeapi.Admin.SelfID)
	if err != nil {
		t.Fatal(err)
	}
	offset.Store(int64(2 * time.Minute))
	c := api.New(base, &session{token: token}, 5*time.Second)
	if _, err := c.Projects(context.Background()); !errors.Is(err, api.ErrAuthExpired) {
		t.Fatalf("err = %v, want ErrAuthExpired", err)
	}
}
