package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
//
// Environment variables supported:
// - LEDGER_BASE_URL (string, e.g. "http://localhost:8000")
// - LEDGER_REQUEST_TIMEOUT (duration, e.g. "30s")
// - LEDGER_USERNAME, LEDGER_PASSWORD (string)
// - LEDGER_NOTIFICATIONS_DISABLED (bool)
// - LEDGER_RECONNECT_DELAY (duration, e.g. "1s")
// - LEDGER_HISTORY_SIZE (int)
// - LEDGER_CACHE_DB (path)
// - LEDGER_LOG_FILE (path), LEDGER_LOG_LEVEL ("debug", "info", "warn", "error")
// - LEDGER_METRICS_ADDR (e.g. ":9090")
// - LEDGER_LISTEN_ADDR (e.g. ":8000")
func ApplyEnvOverrides(cfg *Config) error {
	stringVars := map[string]*string{
		"LEDGER_BASE_URL":     &cfg.BaseURL,
		"LEDGER_USERNAME":     &cfg.Username,
		"LEDGER_PASSWORD":     &cfg.Password,
		"LEDGER_CACHE_DB":     &cfg.CacheDB,
		"LEDGER_LOG_FILE":     &cfg.LogFile,
		"LEDGER_LOG_LEVEL":    &cfg.LogLevel,
		"LEDGER_METRICS_ADDR": &cfg.MetricsAddr,
		"LEDGER_LISTEN_ADDR":  &cfg.ListenAddr,
	}
	for env, field := range stringVars {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}

	if err := setDurationEnv("LEDGER_REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return err
	}
	if err := setDurationEnv("LEDGER_RECONNECT_DELAY", &cfg.ReconnectDelay); err != nil {
		return err
	}
	if err := setBoolEnv("LEDGER_NOTIFICATIONS_DISABLED", func(b bool) { cfg.NotificationsDisabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("LEDGER_HISTORY_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_HISTORY_SIZE: %w", err)
		}
		cfg.HistorySize = n
	}
	return nil
}

func setDurationEnv(env string, field *time.Duration) error {
	if v := os.Getenv(env); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		*field = d
	}
	return nil
}

func setBoolEnv(env string, setter func(bool)) error {
	if v := os.Getenv(env); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(b)
	}
	return nil
}
