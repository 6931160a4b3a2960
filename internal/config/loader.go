package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "PORTAL_"
	envFileVar = "PORTAL_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if PORTAL_CONFIG is set
//  3. env (prefix PORTAL_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// PORTAL_API_BASE -> api_base. Underscores are kept to match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	c.APIBase = strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	if err := absoluteHTTP(c.APIBase); err != nil {
		return fmt.Errorf("%w: api_base: %w", ErrInvalidConfig, err)
	}
	c.CodeforcesBase = strings.TrimRight(strings.TrimSpace(c.CodeforcesBase), "/")
	if err := absoluteHTTP(c.CodeforcesBase); err != nil {
		return fmt.Errorf("%w: codeforces_base: %w", ErrInvalidConfig, err)
	}
	if c.HTTPTimeoutMS <= 0 {
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.LeaderboardSyncIntervalMS < 0 {
		return fmt.Errorf("%w: leaderboard_sync_interval_ms must not be negative", ErrInvalidConfig)
	}
	for i, t := range c.RatingTiers {
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("%w: rating_tiers[%d]: title must not be empty", ErrInvalidConfig, i)
		}
		if i > 0 && t.Min >= c.RatingTiers[i-1].Min {
			return fmt.Errorf("%w: rating_tiers must be ordered by descending min", ErrInvalidConfig)
		}
	}
	return nil
}

func absoluteHTTP(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
