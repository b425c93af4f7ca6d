package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 2, cfg.MalformedRetries)
	assert.Equal(t, 4, cfg.FanOut)
	assert.Equal(t, 60*time.Second, cfg.CallTimeout())
	assert.Equal(t, 10*time.Minute, cfg.Liveness())
	assert.Equal(t, 30*24*time.Hour, cfg.Retention())
	assert.Equal(t, time.Minute, cfg.SweepInterval())
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"port": 9090,
		"malformed_retries": 5,
		"fan_out": 8,
		"liveness_minutes": 3,
		"retention_days": 7
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5, cfg.MalformedRetries)
	assert.Equal(t, 8, cfg.FanOut)
	assert.Equal(t, 3*time.Minute, cfg.Liveness())
	assert.Equal(t, 7*24*time.Hour, cfg.Retention())
	// Unset fields still default
	assert.Equal(t, 60, cfg.CallTimeoutSeconds)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `{"port": 9090, "api_key": "from-file"}`)
	t.Setenv("PORT", "7070")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Port = 70000 }, "'port'"},
		{"negative retries", func(c *Config) { c.MalformedRetries = -1 }, "'malformed_retries'"},
		{"zero fan out", func(c *Config) { c.FanOut = -2 }, "'fan_out'"},
		{"zero retention", func(c *Config) { c.RetentionDays = -1 }, "'retention_days'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
