// Package record holds the backend's record shapes and the handful of
// fields zdash interprets: ids, statuses and timestamps.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a record identifier. The backend sends numeric ids for rows it owns
// and string ids for business keys; both decode to the same type.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record: id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Status is a server enum. It arrives either as its name or as an object
// {name, displayName, description}.
type Status struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
}

func (s *Status) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = Status{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*s = Status{Name: name}
		return nil
	}
	type plain Status
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("record: status %s: %w", data, err)
	}
	*s = Status(p)
	return nil
}

// MarshalJSON always writes the name form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Name)
}

// Key is the upper-cased name used for style lookups.
func (s Status) Key() string {
	return strings.ToUpper(strings.TrimSpace(s.Name))
}

// Label prefers the server's display name.
func (s Status) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	if s.Name == "" {
		return "Unknown"
	}
	return s.Name
}

// S builds a Status from its name.
func S(name string) Status {
	return Status{Name: name}
}

// Timestamp decodes the backend's LocalDateTime in either its ISO string
// form or the [y, m, d, h, min, s, ns] array form.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || len(data) == 0 {
		t.Time = time.Time{}
		return nil
	}
	if data[0] == '[' {
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("record: timestamp %s: %w", data, err)
		}
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		if parts[1] == 0 {
			parts[1] = 1
		}
		if parts[2] == 0 {
			parts[2] = 1
		}
		t.Time = time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.Local)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("record: timestamp %s: %w", data, err)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format("2006-01-02T15:04:05"))
}

// ParseTime accepts the string layouts the backend emits.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("record: unrecognised timestamp %q", s)
}

// Date renders the day, or def when unset.
func (t Timestamp) Date(def string) string {
	if t.IsZero() {
		return def
	}
	return t.Format("2006-01-02")
}

// Number decodes integers and decimals sent as numbers or strings.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("record: number %q: %w", s, err)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}
