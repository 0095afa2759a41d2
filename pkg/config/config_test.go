package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(defaults(), Overrides{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.Timeout != DefaultTimeout || cfg.PollInterval != DefaultPollInterval {
		t.Errorf("durations = %v / %v", cfg.Timeout, cfg.PollInterval)
	}
	home, err := homedir.Dir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	if want := filepath.Join(home, ".zdash", "session"); cfg.SessionPath != want {
		t.Errorf("session path = %q, want %q", cfg.SessionPath, want)
	}
	if cfg.BasePath() != cfg.SessionPath {
		t.Errorf("BasePath mismatch")
	}
}

func TestOverridesWin(t *testing.T) {
	v := defaults()
	v.Set("base_url", "http://from-file.example/api/")
	cfg, err := fromViper(v, Overrides{BaseURL: "http://flag.example/api/", LogLevel: "DEBUG"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://flag.example/api" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestDurationStrings(t *testing.T) {
	v := defaults()
	v.Set("poll_interval", "45s")
	v.Set("timeout", "2m")
	cfg, err := fromViper(v, Overrides{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != 45*time.Second || cfg.Timeout != 2*time.Minute {
		t.Fatalf("got %v / %v", cfg.PollInterval, cfg.Timeout)
	}
}

func TestValidation(t *testing.T) {
	tests := map[string]func(v *viper.Viper){
		"bad url":       func(v *viper.Viper) { v.Set("base_url", "not a url") },
		"tiny interval": func(v *viper.Viper) { v.Set("poll_interval", "10ms") },
		"bad level":     func(v *viper.Viper) { v.Set("log_level", "loud") },
		"no session":    func(v *viper.Viper) { v.Set("session_path", "") },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			v := defaults()
			mutate(v)
			if _, err := fromViper(v, Overrides{}); err == nil {
				t.Fatal("expected validation error")
			} else if !strings.HasPrefix(err.Error(), "config: ") {
				t.Fatalf("unprefixed error: %v", err)
			}
		})
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	body := "base_url: http://localhost:8080/api\nsession_path: " + filepath.Join(dir, "s") + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".zdash.yaml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ZDASH_CONFIG_PATH", dir)
	t.Setenv("ZDASH_LOG_LEVEL", "warn")

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080/api" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.SessionPath != filepath.Join(dir, "s") {
		t.Errorf("session path = %q", cfg.SessionPath)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}
