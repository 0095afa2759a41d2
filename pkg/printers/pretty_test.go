package printers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/zdash/pkg/notify"
	"tableflip.dev/zdash/pkg/record"
	"tableflip.dev/zdash/pkg/view"
)

func init() {
	color.NoColor = true
}

func TestPanelTable(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, MaxCellWidth: 10, ShowActions: true}
	pp.Panel(view.Panel{
		Title: "Pending Registrations",
		Table: &view.Table{
			Headers: []string{"ID", "Name", "Status"},
			Rows: []view.Row{{ID: "1", Cells: []view.Cell{
				view.Text("1"),
				view.Text("A very long person name"),
				view.Badge(record.KindRegistration, record.S("IN_REVIEW")),
			}}},
		},
		Actions: []view.Action{{ID: view.ActionApproveRegistration, Label: "Approve", Key: "a"}},
	})
	out := buf.String()
	for _, want := range []string{"Pending Registrations - 1 record", "ID", "A very lo…", "IN REVIEW", "[a] Approve"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPanelEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Panel(view.Panel{Title: "Contacts", Table: &view.Table{Empty: "No Contact Inquiries."}})
	out := buf.String()
	if !strings.Contains(out, "Contacts - 0 records") || !strings.Contains(out, "No Contact Inquiries.") {
		t.Errorf("output:\n%s", out)
	}
}

func TestPanelFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Panel(view.Panel{
		Kind:    view.KindError,
		Title:   "Error Loading Content",
		Message: "Failed to load Contacts",
		Fields:  []view.Field{{Label: "Error", Value: "boom"}},
	})
	out := buf.String()
	for _, want := range []string{"Error Loading Content", "Failed to load Contacts", "Error:", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[") {
		t.Errorf("actions printed without ShowActions:\n%s", out)
	}
}

func TestNotification(t *testing.T) {
	tests := map[string]struct {
		n    notify.Notification
		want []string
	}{
		"plain": {
			n:    notify.Notification{Message: "Data refreshed", Severity: notify.Success},
			want: []string{"✓ Data refreshed"},
		},
		"detailed": {
			n: notify.Notification{
				Title:    "Contact Inquiry Shared",
				Message:  "shared with EMP001",
				Severity: notify.Info,
				Details:  []notify.Detail{{Label: "Inquiry ID", Value: "4"}},
			},
			want: []string{"i Contact Inquiry Shared: shared with EMP001", "Inquiry ID:", "4"},
		},
	}
	for n, tc := range tests {
		t.Run(n, func(t *testing.T) {
			var buf bytes.Buffer
			(&PrettyPrint{Out: &buf}).Notification(tc.n)
			for _, want := range tc.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, map[string]int{"count": 2}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\n  \"count\": 2\n}\n" {
		t.Errorf("got %q", got)
	}
}
