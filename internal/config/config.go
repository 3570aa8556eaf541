// Package config loads service configuration from an optional YAML file
// overlaid with environment variables. Environment always wins, so a
// container can override a checked-in config file without editing it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     int    `yaml:"port"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`

	// Scheduling
	IntervalCapDays float64 `yaml:"interval_cap_days"`

	// Ingestion
	QueueSize        int           `yaml:"queue_size"`
	DedupWindow      time.Duration `yaml:"dedup_window"`
	PersistRetries   int           `yaml:"persist_retries"`
	DrainGraceWindow time.Duration `yaml:"drain_grace_window"`

	// Producers
	ProducersEnabled bool          `yaml:"producers_enabled"`
	PollInterval     time.Duration `yaml:"poll_interval"`
}

// Load reads the YAML file at path (skipped when path is empty or the
// file is absent), overlays environment variables, and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:             8762,
		DBPath:           "data/tracker.db",
		LogLevel:         "info",
		IntervalCapDays:  365,
		QueueSize:        1024,
		DedupWindow:      20 * time.Second,
		PersistRetries:   3,
		DrainGraceWindow: 2 * time.Second,
		ProducersEnabled: false,
		PollInterval:     20 * time.Second,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.DBPath = envStr("TRACKER_DB_PATH", cfg.DBPath)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.IntervalCapDays = envFloat("INTERVAL_CAP_DAYS", cfg.IntervalCapDays)
	cfg.QueueSize = envInt("QUEUE_SIZE", cfg.QueueSize)
	cfg.DedupWindow = envDuration("DEDUP_WINDOW", cfg.DedupWindow)
	cfg.PersistRetries = envInt("PERSIST_RETRIES", cfg.PersistRetries)
	cfg.DrainGraceWindow = envDuration("DRAIN_GRACE_WINDOW", cfg.DrainGraceWindow)
	cfg.ProducersEnabled = envBool("PRODUCERS_ENABLED", cfg.ProducersEnabled)
	cfg.PollInterval = envDuration("POLL_INTERVAL", cfg.PollInterval)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("TRACKER_DB_PATH must not be empty")
	}
	if c.IntervalCapDays < 1 {
		return fmt.Errorf("INTERVAL_CAP_DAYS must be at least 1, got %v", c.IntervalCapDays)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be positive, got %d", c.QueueSize)
	}
	if c.DedupWindow < 0 {
		return fmt.Errorf("DEDUP_WINDOW must not be negative, got %v", c.DedupWindow)
	}
	// Validated here because the retry count is converted to an unsigned
	// type downstream; a negative value must not wrap around.
	if c.PersistRetries < 0 {
		return fmt.Errorf("PERSIST_RETRIES must not be negative, got %d", c.PersistRetries)
	}
	if c.DrainGraceWindow <= 0 {
		return fmt.Errorf("DRAIN_GRACE_WINDOW must be positive, got %v", c.DrainGraceWindow)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
