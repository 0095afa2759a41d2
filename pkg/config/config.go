// Package config loads zdash settings from .zdash.yaml and ZDASH_ environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	DefaultBaseURL      = "https://z-management-production.up.railway.app/api"
	DefaultTimeout      = 15 * time.Second
	DefaultPollInterval = 30 * time.Second
	DefaultSessionPath  = "~/.zdash/session"
	DefaultLogFile      = "~/.zdash/zdash.log"
	DefaultLogLevel     = "info"
)

// Config is the resolved zdash configuration.
type Config struct {
	BaseURL      string        `mapstructure:"base_url" validate:"required,url"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"min=1s"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"min=1s"`
	SessionPath  string        `mapstructure:"session_path" validate:"required"`
	LogFile      string        `mapstructure:"log_file"`
	LogLevel     string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error disabled"`
}

// BasePath satisfies store.Config.
func (c *Config) BasePath() string {
	return c.SessionPath
}

// Overrides are command line values that win over file and environment.
type Overrides struct {
	BaseURL  string
	LogLevel string
}

// Load walks the usual locations for a .zdash.yaml and merges ZDASH_
// environment variables over it.
func Load(o Overrides) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(".zdash") // .yaml is implicit
	v.SetEnvPrefix("ZDASH")
	v.AutomaticEnv()

	if override := os.Getenv("ZDASH_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".zdash"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	return fromViper(v, o)
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("session_path", DefaultSessionPath)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("log_level", DefaultLogLevel)
}

func fromViper(v *viper.Viper, o Overrides) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	var err error
	if c.SessionPath, err = homedir.Expand(strings.TrimSpace(c.SessionPath)); err != nil {
		return fmt.Errorf("config: session_path: %w", err)
	}
	if c.LogFile != "" {
		if c.LogFile, err = homedir.Expand(strings.TrimSpace(c.LogFile)); err != nil {
			return fmt.Errorf("config: log_file: %w", err)
		}
	}
	return nil
}

var validate = validator.New()

// Validate reports the first invalid field in a readable form.
func Validate(c *Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("config: %s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("config: %w", err)
}
