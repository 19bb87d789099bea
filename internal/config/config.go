// Package config defines service configuration and its layered loading.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabaseURL is the Postgres DSN. Empty serves a synthetic chapter from
	// memory.
	DatabaseURL string `koanf:"database_url"`

	// DatabaseSchema qualifies the chapter tables.
	DatabaseSchema string `koanf:"database_schema"`

	// RedisURL points at the dashboard cache. Empty uses an in-process cache.
	RedisURL string `koanf:"redis_url"`

	// MemberPageSize and EventPageSize size the paginated fetches.
	MemberPageSize int `koanf:"member_page_size"`
	EventPageSize  int `koanf:"event_page_size"`

	// DateRangeDays is the initial event window, ending now.
	DateRangeDays int `koanf:"date_range_days"`

	// LeaderboardLimit is the default leaderboard size; MaxLeaderboardLimit
	// caps GET /leaderboard?limit.
	LeaderboardLimit    int `koanf:"leaderboard_limit"`
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RefreshInterval is the scheduler period in seconds. Zero disables it.
	RefreshInterval int `koanf:"refresh_interval"`

	// RetryMaxElapsedMS bounds retries of a failing fetch.
	RetryMaxElapsedMS int `koanf:"retry_max_elapsed_ms"`

	// CacheTTLSeconds expires cached dashboards. Zero keeps them forever.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// SynthMembers, SynthEvents and SynthSeed shape the demo chapter.
	SynthMembers int    `koanf:"synth_members"`
	SynthEvents  int    `koanf:"synth_events"`
	SynthSeed    uint64 `koanf:"synth_seed"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		DatabaseSchema:      "public",
		MemberPageSize:      50,
		EventPageSize:       25,
		DateRangeDays:       365,
		LeaderboardLimit:    10,
		MaxLeaderboardLimit: 100,
		RefreshInterval:     300,
		RetryMaxElapsedMS:   5_000,
		CacheTTLSeconds:     600,
		SynthMembers:        60,
		SynthEvents:         40,
		SynthSeed:           7,
	}
}

// RefreshPeriod returns the scheduler period.
func (c *Config) RefreshPeriod() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// RetryMaxElapsed returns the fetch retry budget.
func (c *Config) RetryMaxElapsed() time.Duration {
	return time.Duration(c.RetryMaxElapsedMS) * time.Millisecond
}

// CacheTTL returns the dashboard cache expiry.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !oneOf(c.LogLevel, "debug", "info", "warn", "warning", "error"):
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	case !oneOf(c.LogFormat, "text", "json"):
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.MemberPageSize <= 0:
		return fmt.Errorf("%w: member_page_size must be positive", ErrInvalidConfig)
	case c.EventPageSize <= 0:
		return fmt.Errorf("%w: event_page_size must be positive", ErrInvalidConfig)
	case c.DateRangeDays <= 0:
		return fmt.Errorf("%w: date_range_days must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.LeaderboardLimit <= 0 || c.LeaderboardLimit > c.MaxLeaderboardLimit:
		return fmt.Errorf("%w: leaderboard_limit must be in [1, %d]", ErrInvalidConfig, c.MaxLeaderboardLimit)
	case c.RefreshInterval < 0:
		return fmt.Errorf("%w: refresh_interval must not be negative", ErrInvalidConfig)
	case c.RetryMaxElapsedMS < 0:
		return fmt.Errorf("%w: retry_max_elapsed_ms must not be negative", ErrInvalidConfig)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.SynthMembers < 0 || c.SynthEvents < 0:
		return fmt.Errorf("%w: synth sizes must not be negative", ErrInvalidConfig)
	}
	return nil
}

func oneOf(v string, options ...string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
