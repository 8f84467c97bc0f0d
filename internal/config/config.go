// Package config loads client and dev server settings from a YAML file, a
// .env file and LEDGER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration.
type Config struct {
	// BaseURL of the backend API. The notification socket URL is derived from it.
	BaseURL        string        `json:"base_url" yaml:"base_url"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	// Credentials used by the CLI to sign in when no session is active.
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`

	// Notifications
	NotificationsDisabled bool          `json:"notifications_disabled" yaml:"notifications_disabled"`
	ReconnectDelay        time.Duration `json:"reconnect_delay" yaml:"reconnect_delay"`
	HistorySize           int           `json:"history_size" yaml:"history_size"`

	// CacheDB is the SQLite snapshot cache path; empty disables the cache.
	CacheDB string `json:"cache_db" yaml:"cache_db"`

	LogFile  string `json:"log_file" yaml:"log_file"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`

	// ListenAddr is where the dev server listens.
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// DefaultConfig returns a sane default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:8000",
		RequestTimeout: 30 * time.Second,
		ReconnectDelay: time.Second,
		HistorySize:    64,
		LogLevel:       "info",
		ListenAddr:     ":8000",
	}
}

// Validate returns a list of non-fatal configuration warnings.
func (c *Config) Validate() []string {
	var warnings []string
	checks := []struct {
		cond bool
		msg  string
	}{
		{c.BaseURL == "", "base URL is empty; API calls will fail"},
		{c.Username != "" && c.Password == "", "username provided but password is missing"},
		{c.Password != "" && c.Username == "", "password provided but username is missing"},
		{c.ReconnectDelay <= 0, "reconnect delay is not positive; the default of 1s is used"},
		{c.RequestTimeout <= 0, "request timeout is not positive; the default of 30s is used"},
	}
	for _, ch := range checks {
		if ch.cond {
			warnings = append(warnings, ch.msg)
		}
	}
	return warnings
}

// LoadConfigFromFile loads config from a YAML/JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Load builds the configuration: defaults, then the YAML file at path when
// non-empty, then variables from envFile when it exists, then the process
// environment. Variables already set in the environment win over envFile.
func Load(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		cfg, err = LoadConfigFromFile(path)
		if err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
