package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"tableflip.dev/zdash/pkg/record"
)

func sampleRegistrations() []record.Registration {
	created := record.Timestamp{Time: time.Date(2024, 3, 9, 8, 0, 0, 0, time.Local)}
	return []record.Registration{
		{ID: "1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@zplus.test", Department: "R&D", ProjectID: "PRJ-1", Status: record.S("PENDING"), CreatedAt: created, Phone: "555"},
		{ID: "2", FirstName: `Bob "The Builder"`, Email: "bob@zplus.test", Status: record.S("APPROVED")},
	}
}

func TestTargetFor(t *testing.T) {
	tests := []struct {
		section string
		kind    record.Kind
		filter  string
		err     error
	}{
		{"pending-registrations", record.KindRegistration, "pending", nil},
		{"all-registrations", record.KindRegistration, "all", nil},
		{"resolved-contacts", record.KindContact, "resolved", nil},
		{"dashboard", "", "", ErrNotExportable},
		{"contact-statistics", "", "", ErrNotExportable},
	}
	for _, tc := range tests {
		got, err := TargetFor(tc.section)
		if !errors.Is(err, tc.err) {
			t.Fatalf("%s: err = %v", tc.section, err)
		}
		if got.Kind != tc.kind || got.Filter != tc.filter {
			t.Errorf("%s: got %+v", tc.section, got)
		}
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if got := (Target{Kind: record.KindRegistration, Filter: "pending"}).Filename(CSV, now); got != "registrations_pending_2024-05-01.csv" {
		t.Errorf("got %q", got)
	}
	if got := (Target{Kind: record.KindContact, Filter: "all"}).Filename(XLSX, now); got != "contact_inquiries_all_2024-05-01.xlsx" {
		t.Errorf("got %q", got)
	}
}

func TestWriteCSVRegistrations(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, CSV, Registrations(sampleRegistrations())); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"ID,Name,Email,Department,Project ID,Status,Created Date,Phone",
		`1,"Ada Lovelace","ada@zplus.test","R&D","PRJ-1",PENDING,2024-03-09,"555"`,
		`2,"Bob ""The Builder""","bob@zplus.test","","",APPROVED,,""`,
	}, "\n")
	if buf.String() != want {
		t.Fatalf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteCSVEscapesPlainColumns(t *testing.T) {
	var buf bytes.Buffer
	regs := []record.Registration{{ID: "7,8", FirstName: "Al", Status: record.S("PENDING")}}
	if err := Write(&buf, CSV, Registrations(regs)); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 2 || len(rows[1]) != 8 || rows[1][0] != "7,8" {
		t.Fatalf("rows = %q", rows)
	}
}

func TestContactsTruncateMessage(t *testing.T) {
	long := strings.Repeat("x", 150)
	d := Contacts([]record.ContactInquiry{{ID: "9", FullName: "Cy", Message: long, Status: record.S("RESOLVED"), SharedWith: "ops"}})
	if got := d.Rows[0][4]; len(got) != 100 {
		t.Fatalf("message length = %d", len(got))
	}
	if d.Headers()[3] != "Subject" || d.Headers()[7] != "Shared With" {
		t.Fatalf("headers = %v", d.Headers())
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, CSV, Registrations(nil)); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v", err)
	}
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, XLSX, Registrations(sampleRegistrations())); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][1] != "Name" || rows[1][1] != "Ada Lovelace" || rows[2][1] != `Bob "The Builder"` {
		t.Fatalf("rows = %v", rows)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": CSV, "CSV": CSV, "xlsx": XLSX, "excel": XLSX} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}
