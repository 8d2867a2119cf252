// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration for broadcast operations.
type Config struct {
	// Timezone is the fixed zone used for all scheduling and rendering
	Timezone string `json:"timezone"`
	// Title is the display name used in broadcast and stream titles
	Title string `json:"title"`
	// DefaultDuration is the target length of a broadcast window
	DefaultDuration time.Duration `json:"default_duration"`
	// RoundingGranularityHours is the boundary end times are rounded to.
	// Must divide 24 so rounded windows tile the day.
	RoundingGranularityHours int `json:"rounding_granularity_hours"`
	// PrivacyStatus is applied to new broadcasts and week playlists
	PrivacyStatus string `json:"privacy_status"`
	// CategoryID is the video category applied on metadata updates
	CategoryID string `json:"category_id"`
	// Tags are the video tags applied on metadata updates
	Tags []string `json:"tags"`

	// MaxScheduled is the scheduling-window depth the runner keeps topped up
	MaxScheduled int `json:"max_scheduled"`
	// PollInterval is the wait between attempts of every bounded status poll
	PollInterval time.Duration `json:"poll_interval"`
	// PollTimeout is the total budget of every bounded status poll
	PollTimeout time.Duration `json:"poll_timeout"`
	// LoopInterval is the cadence of runner passes
	LoopInterval time.Duration `json:"loop_interval"`
	// HealthLogInterval is the cadence of stream-health log lines
	HealthLogInterval time.Duration `json:"health_log_interval"`

	// MaxRetries is the number of retries after the first failed API attempt
	MaxRetries int `json:"max_retries"`
	// RetryBackoff is the fixed sleep between retry attempts
	RetryBackoff time.Duration `json:"retry_backoff"`
	// APIRate is the Data API request budget in requests per second
	APIRate float64 `json:"api_rate"`

	// ClientSecretFile is the path to the OAuth installed-app credentials
	ClientSecretFile string `json:"client_secret_file"`
	// TokenFile is the path the OAuth token is persisted to
	TokenFile string `json:"token_file"`

	// MetricsAddr is the optional Prometheus listen address (empty = disabled)
	MetricsAddr string `json:"metrics_addr"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"log_level"`
	// LogFormat is one of text, json
	LogFormat string `json:"log_format"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		Timezone:                 "Europe/London",
		Title:                    "Livestream",
		DefaultDuration:          6 * time.Hour,
		RoundingGranularityHours: 6,
		PrivacyStatus:            "unlisted",
		CategoryID:               "22",
		MaxScheduled:             2,
		PollInterval:             5 * time.Second,
		PollTimeout:              5 * time.Minute,
		LoopInterval:             1 * time.Minute,
		HealthLogInterval:        5 * time.Minute,
		MaxRetries:               4,
		RetryBackoff:             1 * time.Minute,
		APIRate:                  1.0,
		ClientSecretFile:         "client_secret.json",
		TokenFile:                "token.json",
		LogLevel:                 "info",
		LogFormat:                "text",
	}
}

// Load loads configuration from environment variables, config file, and applies defaults.
// Priority: env vars > config file > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// Override with environment variables
	cfg.loadFromEnv()

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from ytlive.json in current directory or home directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"ytlive.json",
		filepath.Join(os.Getenv("HOME"), ".config", "ytlive", "ytlive.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YTLIVE_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("YTLIVE_TITLE"); v != "" {
		c.Title = v
	}
	if v := os.Getenv("YTLIVE_DEFAULT_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DefaultDuration = d
		}
	}
	if v := os.Getenv("YTLIVE_ROUNDING_GRANULARITY_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RoundingGranularityHours = n
		}
	}
	if v := os.Getenv("YTLIVE_PRIVACY_STATUS"); v != "" {
		c.PrivacyStatus = v
	}
	if v := os.Getenv("YTLIVE_CATEGORY_ID"); v != "" {
		c.CategoryID = v
	}
	if v := os.Getenv("YTLIVE_TAGS"); v != "" {
		c.Tags = splitTags(v)
	}
	if v := os.Getenv("YTLIVE_MAX_SCHEDULED"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxScheduled = n
		}
	}
	if v := os.Getenv("YTLIVE_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollInterval = d
		}
	}
	if v := os.Getenv("YTLIVE_POLL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollTimeout = d
		}
	}
	if v := os.Getenv("YTLIVE_LOOP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.LoopInterval = d
		}
	}
	if v := os.Getenv("YTLIVE_HEALTH_LOG_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HealthLogInterval = d
		}
	}
	if v := os.Getenv("YTLIVE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("YTLIVE_RETRY_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RetryBackoff = d
		}
	}
	if v := os.Getenv("YTLIVE_API_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.APIRate = f
		}
	}
	if v := os.Getenv("YTLIVE_CLIENT_SECRET_FILE"); v != "" {
		c.ClientSecretFile = v
	}
	if v := os.Getenv("YTLIVE_TOKEN_FILE"); v != "" {
		c.TokenFile = v
	}
	if v := os.Getenv("YTLIVE_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv("YTLIVE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("YTLIVE_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

// splitTags parses a comma-separated tag list, dropping empty entries.
func splitTags(v string) []string {
	var tags []string
	for _, tag := range strings.Split(v, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Validate checks that configuration values are valid and consistent.
// It returns an error if any configuration value is invalid.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q is not a valid location: %w", c.Timezone, err)
	}
	if c.Title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if c.DefaultDuration <= 0 {
		return fmt.Errorf("default_duration must be positive")
	}
	if c.RoundingGranularityHours < 1 || c.RoundingGranularityHours > 24 {
		return fmt.Errorf("rounding_granularity_hours must be between 1 and 24")
	}
	if 24%c.RoundingGranularityHours != 0 {
		return fmt.Errorf("rounding_granularity_hours must divide 24")
	}
	switch c.PrivacyStatus {
	case "public", "private", "unlisted":
	default:
		return fmt.Errorf("privacy_status must be public, private or unlisted")
	}
	if c.MaxScheduled < 1 {
		return fmt.Errorf("max_scheduled must be at least 1")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("poll_timeout must be positive")
	}
	if c.LoopInterval <= 0 {
		return fmt.Errorf("loop_interval must be positive")
	}
	if c.HealthLogInterval <= 0 {
		return fmt.Errorf("health_log_interval must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.RetryBackoff <= 0 {
		return fmt.Errorf("retry_backoff must be positive")
	}
	if c.APIRate <= 0 {
		return fmt.Errorf("api_rate must be positive")
	}
	return nil
}
