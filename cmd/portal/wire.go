package main

import (
	"fmt"
	"net/http"

	"github.com/itbasis/go-clock"

	"github.com/algoritmia-up/portal/internal/adapters/codeforces"
	"github.com/algoritmia-up/portal/internal/adapters/remote"
	service "github.com/algoritmia-up/portal/internal/app"
	"github.com/algoritmia-up/portal/internal/config"
	"github.com/algoritmia-up/portal/internal/domain/tier"
	"github.com/algoritmia-up/portal/internal/session"
	"github.com/algoritmia-up/portal/pkg/logger"
)

// components are the long-lived pieces shared by the server and the CLI.
type components struct {
	remote *remote.Client
	svc    *service.Service
	gate   *session.Gate
	creds  remote.Credentials
}

func wire(cfg *config.Config, log logger.Logger) (*components, error) {
	creds, err := remote.ParseCookieHeader(cfg.SessionCookie)
	if err != nil {
		return nil, fmt.Errorf("session_cookie: %w", err)
	}

	clk := clock.New()
	api := remote.New(cfg.APIBase,
		remote.WithTimeout(cfg.HTTPTimeout()),
		remote.WithLogger(log.Named("remote")))
	cf := codeforces.New(cfg.CodeforcesBase,
		codeforces.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}),
		codeforces.WithLogger(log.Named("codeforces")))

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithClock(clk),
		service.WithCredentials(creds),
		service.WithSyncInterval(cfg.LeaderboardSyncInterval()),
	}
	if len(cfg.RatingTiers) > 0 {
		opts = append(opts, service.WithTiers(tiersFrom(cfg.RatingTiers)))
	}

	return &components{
		remote: api,
		svc:    service.New(api, cf, opts...),
		gate:   session.NewGate(api, session.WithClock(clk), session.WithLogger(log.Named("session"))),
		creds:  creds,
	}, nil
}

func tiersFrom(rows []config.RatingTier) *tier.Table {
	bands := make([]tier.Band, len(rows))
	for i, r := range rows {
		bands[i] = tier.Band{Min: r.Min, Title: r.Title, Color: r.Color}
	}
	return tier.New(bands)
}
