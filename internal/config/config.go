package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// Telegram
	TelegramToken string

	// Database
	DBDriver      string
	DBDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Providers
	RemotiveBaseURL    string
	AdzunaBaseURL      string
	AdzunaAppID        string
	AdzunaAppKey       string
	AdzunaCountry      string
	JoobleBaseURL      string
	JoobleAPIKey       string
	ProviderTimeout    time.Duration
	ProviderRatePerSec float64
	ResultsPerProvider int
	SearchCacheTTL     time.Duration

	// Scheduler
	TickInterval      time.Duration
	CycleTimeout      time.Duration
	Concurrency       int
	MaxSendPerRun     int
	MaxKeywordsPerRun int
	RetentionDays     int

	// Logging
	LogLevel string
}

// Load reads configuration from the environment. Variables from an optional
// .env file in the working directory are applied first and never override
// variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Defaults
		DBDriver:           DriverSQLite,
		DBDSN:              "jobs.db",
		RemotiveBaseURL:    "https://remotive.com",
		AdzunaBaseURL:      "https://api.adzuna.com",
		AdzunaCountry:      "in",
		JoobleBaseURL:      "https://jooble.org",
		ProviderTimeout:    30 * time.Second,
		ProviderRatePerSec: 2,
		ResultsPerProvider: 25,
		SearchCacheTTL:     5 * time.Minute,
		TickInterval:       60 * time.Second,
		CycleTimeout:       5 * time.Minute,
		Concurrency:        4,
		MaxSendPerRun:      8,
		MaxKeywordsPerRun:  10,
		RetentionDays:      30,
		LogLevel:           "info",
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DBDSN, "DB_DSN")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	setString(&cfg.RemotiveBaseURL, "REMOTIVE_BASE_URL")
	setString(&cfg.AdzunaBaseURL, "ADZUNA_BASE_URL")
	cfg.AdzunaAppID = os.Getenv("ADZUNA_APP_ID")
	cfg.AdzunaAppKey = os.Getenv("ADZUNA_APP_KEY")
	setString(&cfg.AdzunaCountry, "ADZUNA_COUNTRY")
	setString(&cfg.JoobleBaseURL, "JOOBLE_BASE_URL")
	cfg.JoobleAPIKey = os.Getenv("JOOBLE_API_KEY")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	ints := []struct {
		name string
		dst  *int
	}{
		{"REDIS_DB", &cfg.RedisDB},
		{"RESULTS_PER_PROVIDER", &cfg.ResultsPerProvider},
		{"SCHEDULER_CONCURRENCY", &cfg.Concurrency},
		{"MAX_SEND_PER_RUN", &cfg.MaxSendPerRun},
		{"MAX_KEYWORDS_PER_RUN", &cfg.MaxKeywordsPerRun},
		{"RETENTION_DAYS", &cfg.RetentionDays},
	}
	for _, v := range ints {
		if err := setInt(v.dst, v.name); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"PROVIDER_TIMEOUT", &cfg.ProviderTimeout},
		{"SEARCH_CACHE_TTL", &cfg.SearchCacheTTL},
		{"TICK_INTERVAL", &cfg.TickInterval},
		{"CYCLE_TIMEOUT", &cfg.CycleTimeout},
	}
	for _, v := range durations {
		if err := setDuration(v.dst, v.name); err != nil {
			return nil, err
		}
	}

	if rps := os.Getenv("PROVIDER_RATE_PER_SEC"); rps != "" {
		f, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid PROVIDER_RATE_PER_SEC: %w", err)
		}
		cfg.ProviderRatePerSec = f
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("telegram token is empty")
	}

	if c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres {
		return fmt.Errorf("unsupported database driver: %s", c.DBDriver)
	}

	if c.DBDSN == "" {
		return fmt.Errorf("database DSN is empty")
	}

	if c.TickInterval < time.Second {
		return fmt.Errorf("tick interval too small: %v", c.TickInterval)
	}

	if c.CycleTimeout <= 0 || c.ProviderTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	if c.ProviderRatePerSec <= 0 {
		return fmt.Errorf("provider rate must be positive")
	}

	if c.SearchCacheTTL < 0 {
		return fmt.Errorf("search cache TTL must not be negative")
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("scheduler concurrency must be at least 1")
	}

	if c.MaxSendPerRun < 1 || c.MaxSendPerRun > 50 {
		return fmt.Errorf("max send per run must be between 1 and 50")
	}

	if c.MaxKeywordsPerRun < 1 || c.MaxKeywordsPerRun > 50 {
		return fmt.Errorf("max keywords per run must be between 1 and 50")
	}

	if c.ResultsPerProvider < 1 || c.ResultsPerProvider > 100 {
		return fmt.Errorf("results per provider must be between 1 and 100")
	}

	if c.RetentionDays < 1 {
		return fmt.Errorf("retention must be at least one day")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// Retention is how long delivery records are kept.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, name string) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}
