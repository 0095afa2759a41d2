// Package export turns registration and contact lists into CSV or XLSX
// files with the same columns the web dashboard exported.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tableflip.dev/zdash/pkg/record"
)

var (
	ErrNotExportable = errors.New("Export not available for this section")
	ErrNoData        = errors.New("No data available to export")
)

// Format is the output file type.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ParseFormat accepts "csv" and "xlsx", defaulting to csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

const messageLimit = 100

// Target says what an exportable section holds.
type Target struct {
	Kind record.Kind
	// Filter is the list filter, e.g. "pending" or "all".
	Filter string
}

// TargetFor maps a section id like "pending-registrations" to its export
// target.
func TargetFor(section string) (Target, error) {
	switch {
	case strings.HasSuffix(section, "-registrations"):
		return Target{Kind: record.KindRegistration, Filter: strings.TrimSuffix(section, "-registrations")}, nil
	case strings.HasSuffix(section, "-contacts"):
		return Target{Kind: record.KindContact, Filter: strings.TrimSuffix(section, "-contacts")}, nil
	}
	return Target{}, ErrNotExportable
}

// Filename is registrations_<filter>_<date>.<ext> or
// contact_inquiries_<filter>_<date>.<ext>.
func (t Target) Filename(f Format, now time.Time) string {
	prefix := "registrations"
	if t.Kind == record.KindContact {
		prefix = "contact_inquiries"
	}
	return fmt.Sprintf("%s_%s_%s.%s", prefix, t.Filter, now.UTC().Format("2006-01-02"), f)
}

// column is one exported field. Quoted columns are always wrapped in
// quotes in CSV output.
type column struct {
	header string
	quoted bool
}

// Dataset is a header row plus records flattened to strings.
type Dataset struct {
	columns []column
	Rows    [][]string
}

// Headers are the column titles.
func (d Dataset) Headers() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.header
	}
	return out
}

// Len is the number of records.
func (d Dataset) Len() int {
	return len(d.Rows)
}

var registrationColumns = []column{
	{"ID", false}, {"Name", true}, {"Email", true}, {"Department", true},
	{"Project ID", true}, {"Status", false}, {"Created Date", false}, {"Phone", true},
}

var contactColumns = []column{
	{"ID", false}, {"Name", true}, {"Email", true}, {"Subject", true},
	{"Message", true}, {"Status", false}, {"Created Date", false}, {"Shared With", true},
}

// Registrations flattens registrations.
func Registrations(items []record.Registration) Dataset {
	d := Dataset{columns: registrationColumns, Rows: make([][]string, 0, len(items))}
	for _, r := range items {
		d.Rows = append(d.Rows, []string{
			r.ID.String(),
			r.FullName(),
			r.Email,
			r.Department,
			r.ProjectID.String(),
			r.Status.Name,
			r.CreatedAt.Date(""),
			r.Phone,
		})
	}
	return d
}

// Contacts flattens contact inquiries. Messages are cut to 100 characters.
func Contacts(items []record.ContactInquiry) Dataset {
	d := Dataset{columns: contactColumns, Rows: make([][]string, 0, len(items))}
	for _, c := range items {
		d.Rows = append(d.Rows, []string{
			c.ID.String(),
			c.FullName,
			c.Email,
			c.Subject,
			truncate(c.Message, messageLimit),
			c.Status.Name,
			c.CreatedAt.Date(""),
			c.SharedWith,
		})
	}
	return d
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Write encodes d in format f.
func Write(w io.Writer, f Format, d Dataset) error {
	if d.Len() == 0 {
		return ErrNoData
	}
	switch f {
	case CSV:
		return WriteCSV(w, d)
	case XLSX:
		return WriteXLSX(w, d)
	}
	return fmt.Errorf("export: unknown format %q", f)
}
