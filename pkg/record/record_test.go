package record

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusForms(t *testing.T) {
	tests := map[string]Status{
		`"PENDING"`: {Name: "PENDING"},
		`{"name":"APPROVED","displayName":"Approved","description":"ok"}`: {Name: "APPROVED", DisplayName: "Approved", Description: "ok"},
		`null`: {},
	}
	for in, want := range tests {
		var got Status
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got != want {
			t.Errorf("%s: got %+v want %+v", in, got, want)
		}
	}
}

func TestIDForms(t *testing.T) {
	var r struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 42, "b": "PRJ-7"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.A != "42" || r.B != "PRJ-7" {
		t.Fatalf("got %q %q", r.A, r.B)
	}
}

func TestTimestampForms(t *testing.T) {
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)
	for _, in := range []string{`"2024-01-15T10:30:00"`, `"2024-01-15T10:30:00.000"`, `[2024,1,15,10,30]`} {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if !ts.Equal(want) {
			t.Errorf("%s: got %v", in, ts.Time)
		}
	}
	var zero Timestamp
	if err := json.Unmarshal([]byte(`null`), &zero); err != nil || zero.Date("N/A") != "N/A" {
		t.Fatalf("null timestamp: %v %q", err, zero.Date("N/A"))
	}
	var bad Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &bad); err == nil {
		t.Fatal("expected error for unparseable timestamp")
	}
}

func TestNumberForms(t *testing.T) {
	var r struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 3.5, "b": "12", "c": null}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.A != 3.5 || r.B != 12 || r.C != 0 {
		t.Fatalf("got %v %v %v", r.A, r.B, r.C)
	}
	if r.B.String() != "12" {
		t.Fatalf("string = %q", r.B.String())
	}
}

func TestStyleFor(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
		want Style
	}{
		{KindRegistration, "pending", StyleWarning},
		{KindRegistration, "APPROVED", StyleSuccess},
		{KindRegistration, "REJECTED", StyleDanger},
		{KindRegistration, "DEACTIVATED", StyleSecondary},
		{KindContact, "RESOLVED", StyleSuccess},
		{KindContact, "IN_PROGRESS", StyleInfo},
		{KindContact, "CLOSED", StyleSecondary},
		{KindContact, "SOMETHING", StyleLight},
		{KindTask, "COMPLETED", StyleSuccess},
	}
	for _, tc := range tests {
		if got := StyleFor(tc.kind, S(tc.name)); got != tc.want {
			t.Errorf("StyleFor(%s, %s) = %s, want %s", tc.kind, tc.name, got, tc.want)
		}
	}
}

func TestRegistrationFullName(t *testing.T) {
	r := Registration{FirstName: " Ada ", LastName: ""}
	if r.FullName() != "Ada" {
		t.Fatalf("got %q", r.FullName())
	}
}
