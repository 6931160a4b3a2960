// Package config defines the portal's configuration and its loading hooks.
//
// Conventions:
// - New(ctx) returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and PORTAL_* environment variables on top.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// APIBase is the base URL of the persistence/auth API. Trailing slashes are trimmed.
	APIBase string `koanf:"api_base"`

	// CodeforcesBase is the base URL of the Codeforces public API.
	CodeforcesBase string `koanf:"codeforces_base"`

	// HTTPTimeoutMS bounds every outbound request.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// LeaderboardSyncIntervalMS schedules periodic leaderboard syncs. Zero disables them.
	LeaderboardSyncIntervalMS int `koanf:"leaderboard_sync_interval_ms"`

	// SessionCookie is the raw Cookie header the CLI sends to the API.
	SessionCookie string `koanf:"session_cookie"`

	// RatingTiers overrides the rating title/color bands, highest minimum first.
	RatingTiers []RatingTier `koanf:"rating_tiers"`
}

// RatingTier is one configurable rating band.
type RatingTier struct {
	Min   int    `koanf:"min"`
	Title string `koanf:"title"`
	Color string `koanf:"color"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                  "info",
		LogFormat:                 "text",
		Addr:                      ":9080",
		APIBase:                   "http://localhost:8000",
		CodeforcesBase:            "https://codeforces.com",
		HTTPTimeoutMS:             10_000,
		ShutdownTimeoutMS:         5_000,
		LeaderboardSyncIntervalMS: 0,
	}
}

// HTTPTimeout returns HTTPTimeoutMS as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// LeaderboardSyncInterval returns LeaderboardSyncIntervalMS as a duration.
func (c *Config) LeaderboardSyncInterval() time.Duration {
	return time.Duration(c.LeaderboardSyncIntervalMS) * time.Millisecond
}
