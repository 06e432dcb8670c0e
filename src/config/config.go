package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	JWTSecret         string
	PlaidClientID     string
	PlaidSecret       string
	PlaidEnv          string
	DemoMode          bool
	DefaultWindowDays int
	ForecastWeeks     int
	SyncConcurrency   int
	LogLevel          string
	AllowedOrigins    []string
	SiblingMatch      string
	SiblingLookback   int
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	return Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		PlaidClientID:     getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:       getEnv("PLAID_SECRET", ""),
		PlaidEnv:          getEnv("PLAID_ENV", "sandbox"),
		DemoMode:          getEnvBool("DEMO_MODE", false),
		DefaultWindowDays: getEnvInt("DEFAULT_WINDOW_DAYS", 30),
		ForecastWeeks:     getEnvInt("FORECAST_WEEKS", 12),
		SyncConcurrency:   getEnvInt("SYNC_CONCURRENCY", 4),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS"),
		SiblingMatch:      getEnv("SIBLING_MATCH", "exact"),
		SiblingLookback:   getEnvInt("SIBLING_LOOKBACK_DAYS", 0),
	}
}

// Validate reports the first missing or out-of-range setting the server needs.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.PlaidEnv != "sandbox" && c.PlaidEnv != "production" {
		return fmt.Errorf("invalid PLAID_ENV %q", c.PlaidEnv)
	}
	if c.DefaultWindowDays < 1 {
		return fmt.Errorf("DEFAULT_WINDOW_DAYS must be positive, got %d", c.DefaultWindowDays)
	}
	if c.SiblingMatch != "exact" && c.SiblingMatch != "fuzzy" {
		return fmt.Errorf("invalid SIBLING_MATCH %q", c.SiblingMatch)
	}
	if c.SiblingLookback < 0 {
		return fmt.Errorf("SIBLING_LOOKBACK_DAYS must not be negative, got %d", c.SiblingLookback)
	}
	if c.SyncConcurrency < 1 {
		return fmt.Errorf("SYNC_CONCURRENCY must be positive, got %d", c.SyncConcurrency)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
