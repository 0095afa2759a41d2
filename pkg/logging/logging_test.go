package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestGetBeforeInitIsNop(t *testing.T) {
	Reset()
	defer Reset()
	log := Get()
	log.Error().Msg("dropped")
	if log.GetLevel() != zerolog.Disabled {
		t.Fatalf("expected disabled logger before Init, got %v", log.GetLevel())
	}
}

func TestInitWritesJSON(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	log := Init(Options{Level: "debug", Output: &buf})
	log.Debug().Str("section", "dashboard").Msg("navigate")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if line["section"] != "dashboard" || line["message"] != "navigate" || line["level"] != "debug" {
		t.Fatalf("unexpected line %v", line)
	}
}

func TestInitOnlyOnce(t *testing.T) {
	Reset()
	defer Reset()

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})
	Get().Info().Msg("hello")
	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("second Init should be ignored: first=%q second=%q", first.String(), second.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"chatty":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpenFileCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "zdash.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}
