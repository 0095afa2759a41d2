package app

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"tableflip.dev/zdash/pkg/api"
	"tableflip.dev/zdash/pkg/export"
	"tableflip.dev/zdash/pkg/fakeapi"
	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/store"
	"tableflip.dev/zdash/pkg/view"
)

type dirConfig string

func (d dirConfig) BasePath() string { return string(d) }

type recorder struct {
	mu       sync.Mutex
	messages []string
	severity []notify.Severity
	detailed []notify.Detailed
}

func (r *recorder) Notify(msg string, sev notify.Severity) notify.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	r.severity = append(r.severity, sev)
	return notify.ID(len(r.messages))
}

func (r *recorder) NotifyDetailed(d notify.Detailed) notify.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detailed = append(r.detailed, d)
	return notify.ID(len(r.detailed))
}

func (r *recorder) last() (string, notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return "", ""
	}
	return r.messages[len(r.messages)-1], r.severity[len(r.severity)-1]
}

type fixture struct {
	fake  *fakeapi.Server
	svc   *Service
	notes *recorder
}

func newFixture(t *testing.T, opts ...fakeapi.Option) *fixture {
	t.Helper()
	fake := fakeapi.New(opts...)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	p, err := store.New(dirConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	notes := &recorder{}
	client := api.New(srv.URL+"/api", p, 5*time.Second)
	svc := &Service{
		API:         client,
		Persistence: p,
		Notifier:    notes,
		Now:         func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) },
	}
	return &fixture{fake: fake, svc: svc, notes: notes}
}

func (f *fixture) login(t *testing.T, a fakeapi.Account) store.Session {
	t.Helper()
	sess, err := f.svc.Login(context.Background(), a.SelfID, a.Password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return sess
}

func TestLoginSavesSession(t *testing.T) {
	f := newFixture(t)
	sess := f.login(t, fakeapi.Employee)
	if sess.User.UserType != store.RoleEmployee || sess.User.Name != fakeapi.Employee.Name {
		t.Errorf("session user = %+v", sess.User)
	}
	got, ok := f.svc.Session()
	if !ok || got.Token != sess.Token {
		t.Fatalf("stored session = %+v, %v", got, ok)
	}

	if err := f.svc.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.svc.Session(); ok {
		t.Error("session survived logout")
	}
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)
	tests := map[string]struct{ id, password string }{
		"missing id":       {"  ", "x"},
		"missing password": {"ADMIN001", ""},
		"wrong password":   {"ADMIN001", "nope"},
	}
	for n, tc := range tests {
		t.Run(n, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tc.id, tc.password)
			if !errors.Is(err, api.ErrLoginFailed) {
				t.Errorf("err = %v, want ErrLoginFailed", err)
			}
		})
	}
	if _, ok := f.svc.Session(); ok {
		t.Error("failed login stored a session")
	}
}

func TestPerformRegistrationActions(t *testing.T) {
	f := newFixture(t)
	f.login(t, fakeapi.Admin)
	ctx := context.Background()

	a := f.fake.AddRegistration(record.Registration{FirstName: "A"})
	res, err := f.svc.Perform(ctx, view.ActionApproveRegistration, a)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Registration #" + a.String() + " has been approved."; res.Message != want {
		t.Errorf("message = %q, want %q", res.Message, want)
	}
	if msg, sev := f.notes.last(); msg != res.Message || sev != notify.Success {
		t.Errorf("notified %q (%s)", msg, sev)
	}

	b := f.fake.AddRegistration(record.Registration{FirstName: "B"})
	if _, err := f.svc.Perform(ctx, view.ActionRejectRegistration, b); err == nil {
		t.Fatal("reject without reason succeeded")
	}
	if msg, sev := f.notes.last(); !strings.HasPrefix(msg, "Error: ") || sev != notify.Error {
		t.Errorf("notified %q (%s)", msg, sev)
	}
	if _, err := f.svc.Perform(ctx, view.ActionRejectRegistration, b, "duplicate"); err != nil {
		t.Fatal(err)
	}
	if r, _ := f.fake.Registration(b); r.Status.Key() != "REJECTED" || r.RejectionReason != "duplicate" {
		t.Errorf("registration = %+v", r)
	}

	// The server refuses to approve twice; its message reaches the user.
	if _, err := f.svc.Perform(ctx, view.ActionApproveRegistration, a); err == nil {
		t.Fatal("second approve succeeded")
	}
	if msg, _ := f.notes.last(); msg != "Error: Registration is not pending" {
		t.Errorf("notified %q", msg)
	}
}

func TestPerformShareContactRaisesDetail(t *testing.T) {
	f := newFixture(t)
	f.login(t, fakeapi.Admin)
	id := f.fake.AddContact(record.ContactInquiry{FullName: "C", Message: "hello"})

	res, err := f.svc.Perform(context.Background(), view.ActionShareContact, id, "EMP001")
	if err != nil {
		t.Fatal(err)
	}
	if res.Detail == nil || res.Detail.Title != "Contact Inquiry Shared" {
		t.Fatalf("detail = %+v", res.Detail)
	}
	if got := res.Detail.Details[3]; got.Label != "Notes" || got.Value != "No notes provided" {
		t.Errorf("notes detail = %+v", got)
	}
	if len(f.notes.detailed) != 1 {
		t.Errorf("detailed notifications = %d", len(f.notes.detailed))
	}
	if c, _ := f.fake.Contact(id); c.SharedWith != "EMP001" {
		t.Errorf("contact = %+v", c)
	}
}

func TestPerformTaskActions(t *testing.T) {
	f := newFixture(t)
	f.login(t, fakeapi.Employee)
	ctx := context.Background()
	id := f.fake.AddTask(fakeapi.Employee.SelfID, record.Task{Title: "t"})

	tests := []struct {
		action string
		input  string
		want   string
		fails  bool
	}{
		{action: view.ActionTaskStatus, input: "in progress", want: "Task status updated to IN_PROGRESS"},
		{action: view.ActionTaskStatus, input: "sleeping", fails: true},
		{action: view.ActionTaskNote, input: "halfway", want: "Note added successfully"},
		{action: view.ActionTaskHours, input: "4", want: "Task progress updated"},
		{action: view.ActionTaskHours, input: "-1", fails: true},
		{action: "launch-rocket", fails: true},
	}
	for _, tc := range tests {
		res, err := f.svc.Perform(ctx, tc.action, id, tc.input)
		if tc.fails {
			if err == nil {
				t.Errorf("%s(%q) succeeded", tc.action, tc.input)
			}
			continue
		}
		if err != nil || res.Message != tc.want {
			t.Errorf("%s(%q) = %q, %v", tc.action, tc.input, res.Message, err)
		}
	}
	task, _ := f.fake.Task(fakeapi.Employee.SelfID, id)
	if task.Status.Key() != "IN_PROGRESS" || task.Notes != "halfway" || task.ActualHours != 4 {
		t.Errorf("task = %+v", task)
	}
}

func TestPerformAfterRevokeDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	f.login(t, fakeapi.Admin)
	f.fake.Revoke()
	before := len(f.notes.messages)
	_, err := f.svc.Perform(context.Background(), view.ActionResolveContact, "4")
	if !api.IsAuthExpired(err) {
		t.Fatalf("err = %v", err)
	}
	if len(f.notes.messages) != before {
		t.Errorf("auth expiry raised a notification: %q", f.notes.messages)
	}
	if _, ok := f.svc.Session(); ok {
		t.Error("session survived a 401")
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	f.login(t, fakeapi.Admin)
	ctx := context.Background()
	dir := t.TempDir()

	out, err := f.svc.Export(ctx, "all-registrations", export.CSV, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(out.Path) != "registrations_all_2024-05-06.csv" || out.Records != 3 {
		t.Errorf("export = %+v", out)
	}
	data, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "ID,Name,Email,Department") {
		t.Errorf("csv = %q", data)
	}
	if msg, _ := f.notes.last(); msg != "Successfully exported 3 records to registrations_all_2024-05-06.csv" {
		t.Errorf("notified %q", msg)
	}

	if _, err := f.svc.Export(ctx, "contact-statistics", export.CSV, dir); !errors.Is(err, export.ErrNotExportable) {
		t.Errorf("err = %v", err)
	}
	if msg, sev := f.notes.last(); msg != "Export not available for this section" || sev != notify.Warning {
		t.Errorf("notified %q (%s)", msg, sev)
	}

	out, err = f.svc.Export(ctx, "pending-contacts", export.XLSX, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(out.Path) != ".xlsx" || out.Records != 1 {
		t.Errorf("export = %+v", out)
	}
}

func TestExportEmpty(t *testing.T) {
	f := newFixture(t, fakeapi.WithEmpty())
	f.login(t, fakeapi.Admin)
	dir := t.TempDir()
	if _, err := f.svc.Export(context.Background(), "pending-registrations", export.CSV, dir); !errors.Is(err, export.ErrNoData) {
		t.Fatalf("err = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("empty export left %d files", len(entries))
	}
}

func TestStatusFilter(t *testing.T) {
	tests := []struct {
		name   string
		kind   record.Kind
		status string
		want   string
		err    bool
	}{
		{name: "empty", kind: record.KindRegistration, want: "all"},
		{name: "registration lower", kind: record.KindRegistration, status: "APPROVED", want: "approved"},
		{name: "contact upper", kind: record.KindContact, status: "resolved", want: "RESOLVED"},
		{name: "task dashed", kind: record.KindTask, status: "in-progress", want: "IN_PROGRESS"},
		{name: "unknown", kind: record.KindTask, status: "nope", err: true},
		{name: "no list endpoint", kind: record.KindRegistration, status: "suspended", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StatusFilter(tt.kind, tt.status)
			if (err != nil) != tt.err {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordListsCheckRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.svc.Registrations(ctx, ""); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}

	f.login(t, fakeapi.Client)
	if _, err := f.svc.Contacts(ctx, ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("contacts err = %v, want ErrForbidden", err)
	}
	if _, ok := f.svc.Session(); !ok {
		t.Fatal("a wrong-role request cleared the session")
	}
	projects, err := f.svc.Projects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Errorf("client projects = %d", len(projects))
	}

	panel, err := f.svc.Section(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if panel.Title == "" || len(panel.Fields) == 0 {
		t.Errorf("overview = %+v", panel)
	}
}

func TestPerformChecksRole(t *testing.T) {
	ctx := context.Background()
	tests := map[string]struct {
		account fakeapi.Account
		action  string
		inputs  []string
		want    error
	}{
		"employee approves":   {account: fakeapi.Employee, action: view.ActionApproveRegistration, want: ErrForbidden},
		"client resolves":     {account: fakeapi.Client, action: view.ActionResolveContact, want: ErrForbidden},
		"admin logs hours":    {account: fakeapi.Admin, action: view.ActionTaskHours, inputs: []string{"2"}, want: ErrForbidden},
		"unknown action":      {account: fakeapi.Admin, action: "launch-rocket", want: ErrUnknownAction},
		"signed out approves": {action: view.ActionApproveRegistration, want: ErrNotLoggedIn},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			if tc.account.SelfID != "" {
				f.login(t, tc.account)
			}
			if _, err := f.svc.Perform(ctx, tc.action, "1", tc.inputs...); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if _, ok := f.svc.Session(); tc.account.SelfID != "" && !ok {
				t.Error("a refused action cleared the session")
			}
			if r, _ := f.fake.Registration("1"); r.Status.Key() != "PENDING" {
				t.Errorf("registration = %+v", r)
			}
		})
	}
}

func TestRolesFor(t *testing.T) {
	tests := map[string]store.Role{
		view.ActionApproveRegistration: store.RoleAdmin,
		view.ActionShareContact:        store.RoleAdmin,
		view.ActionTaskStatus:          store.RoleEmployee,
		view.ActionTaskNote:            store.RoleEmployee,
	}
	for action, want := range tests {
		if got := RolesFor(action); len(got) != 1 || got[0] != want {
			t.Errorf("RolesFor(%q) = %v, want [%s]", action, got, want)
		}
	}
	if got := RolesFor("nope"); got != nil {
		t.Errorf("unknown action roles = %v", got)
	}
}
