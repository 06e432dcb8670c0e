package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DEFAULT_WINDOW_DAYS", "FORECAST_WEEKS", "SYNC_CONCURRENCY", "DEMO_MODE", "PLAID_ENV"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_WINDOW_DAYS", "14")
	t.Setenv("FORECAST_WEEKS", "not-a-number")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("PLAID_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://demo.example.com")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 14, cfg.DefaultWindowDays)
	assert.Equal(t, 12, cfg.ForecastWeeks, "unparseable values fall back")
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, "production", cfg.PlaidEnv)
	assert.Equal(t, []string{"https://app.example.com", "https://demo.example.com"}, cfg.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DatabaseURL:       "postgres://localhost/finsight",
		JWTSecret:         "secret",
		PlaidEnv:          "sandbox",
		DefaultWindowDays: 30,
		SyncConcurrency:   4,
		SiblingMatch:      "exact",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }},
		{"bad plaid env", func(c *Config) { c.PlaidEnv = "development" }},
		{"zero window", func(c *Config) { c.DefaultWindowDays = 0 }},
		{"zero concurrency", func(c *Config) { c.SyncConcurrency = 0 }},
		{"unknown sibling matcher", func(c *Config) { c.SiblingMatch = "phonetic" }},
		{"negative sibling lookback", func(c *Config) { c.SiblingLookback = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
