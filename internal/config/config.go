// Package config provides configuration loading and validation for the
// service. Retry counts, timeouts, fan-out and retention are deliberately
// configuration parameters, not baked-in constants.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents service configuration loadable from a JSON file, with
// environment variables taking precedence. All fields are optional; missing
// values use defaults.
type Config struct {
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL URL; empty selects the in-memory store
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key

	// Generation-service policy
	MalformedRetries   int `json:"malformed_retries,omitempty"`    // same-prompt retries on malformed responses
	CallTimeoutSeconds int `json:"call_timeout_seconds,omitempty"` // per-call deadline

	// Pipeline policy
	FanOut               int `json:"fan_out,omitempty"`                // per-question concurrency bound
	LivenessMinutes      int `json:"liveness_minutes,omitempty"`       // stale-job threshold
	RetentionDays        int `json:"retention_days,omitempty"`         // job retention window
	SweepIntervalSeconds int `json:"sweep_interval_seconds,omitempty"` // janitor period
}

// Load reads an optional JSON config file, overlays environment variables,
// and applies defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.MalformedRetries == 0 {
		c.MalformedRetries = 2
	}
	if c.CallTimeoutSeconds == 0 {
		c.CallTimeoutSeconds = 60
	}
	if c.FanOut == 0 {
		c.FanOut = 4
	}
	if c.LivenessMinutes == 0 {
		c.LivenessMinutes = 10
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = 30
	}
	if c.SweepIntervalSeconds == 0 {
		c.SweepIntervalSeconds = 60
	}
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}
	if c.MalformedRetries < 0 {
		return fmt.Errorf("config error: 'malformed_retries' must be non-negative")
	}
	if c.FanOut < 1 {
		return fmt.Errorf("config error: 'fan_out' must be at least 1")
	}
	if c.CallTimeoutSeconds < 1 {
		return fmt.Errorf("config error: 'call_timeout_seconds' must be positive")
	}
	if c.LivenessMinutes < 1 {
		return fmt.Errorf("config error: 'liveness_minutes' must be positive")
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("config error: 'retention_days' must be positive")
	}
	return nil
}

// CallTimeout returns the per-call deadline as a duration.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// Liveness returns the stale-job threshold as a duration.
func (c *Config) Liveness() time.Duration {
	return time.Duration(c.LivenessMinutes) * time.Minute
}

// Retention returns the job retention window as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// SweepInterval returns the janitor period as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
