// Package service coordinates the portal's collections: it loads them from
// the persistence API, applies confirmed mutations and keeps the leaderboard
// in sync with Codeforces.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/algoritmia-up/portal/internal/adapters/codeforces"
	"github.com/algoritmia-up/portal/internal/adapters/remote"
	"github.com/algoritmia-up/portal/internal/adapters/repository"
	"github.com/algoritmia-up/portal/internal/domain/inflight"
	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/internal/domain/tier"
	"github.com/algoritmia-up/portal/pkg/logger"
)

// Remote is the part of the persistence API the service needs.
type Remote interface {
	ListContests(ctx context.Context, creds remote.Credentials) ([]model.Contest, error)
	CreateContest(ctx context.Context, creds remote.Credentials, in model.ContestInput) (model.Contest, error)
	UpdateContest(ctx context.Context, creds remote.Credentials, id string, in model.ContestInput) (model.Contest, error)
	DeleteContest(ctx context.Context, creds remote.Credentials, id string) error

	ListResources(ctx context.Context, creds remote.Credentials) ([]model.Resource, error)
	CreateResource(ctx context.Context, creds remote.Credentials, in model.ResourceInput) (model.Resource, error)
	UpdateResource(ctx context.Context, creds remote.Credentials, id string, in model.ResourceInput) (model.Resource, error)
	DeleteResource(ctx context.Context, creds remote.Credentials, id string) error

	ListEvents(ctx context.Context, creds remote.Credentials) ([]model.Event, error)
	UploadEventBanner(ctx context.Context, creds remote.Credentials, b model.Banner) (string, error)
	CreateEvent(ctx context.Context, creds remote.Credentials, in model.EventInput) (model.Event, error)
	UpdateEvent(ctx context.Context, creds remote.Credentials, id string, in model.EventInput) (model.Event, error)
	DeleteEvent(ctx context.Context, creds remote.Credentials, id string) error

	ListUsers(ctx context.Context, creds remote.Credentials) ([]remote.User, error)
}

// Ratings looks up Codeforces ratings by handle.
type Ratings interface {
	UserInfo(ctx context.Context, handles []string) ([]codeforces.User, error)
}

// Service implements the dependencies of the HTTP API.
type Service struct {
	mu sync.Mutex

	remote  Remote
	ratings Ratings
	guard   inflight.Guard
	clock   clock.Clock
	tiers   *tier.Table

	contests  *repository.Collection[model.Contest]
	resources *repository.Collection[model.Resource]
	events    *repository.Collection[model.Event]
	board     *repository.Board

	creds        remote.Credentials
	syncInterval time.Duration
	syncGroup    singleflight.Group

	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for sync timestamps and contest status.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTiers replaces the default Codeforces rating bands.
func WithTiers(t *tier.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.tiers = t
		}
	}
}

// WithGuard replaces the in-flight guard.
func WithGuard(g inflight.Guard) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
		}
	}
}

// WithCredentials sets the session the service uses for its own reads
// (initial load and background leaderboard sync).
func WithCredentials(c remote.Credentials) Option {
	return func(s *Service) {
		s.creds = c
	}
}

// WithSyncInterval enables periodic leaderboard sync. Zero disables it.
func WithSyncInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.syncInterval = d
		}
	}
}

// New constructs a Service.
func New(r Remote, ratings Ratings, opts ...Option) *Service {
	s := &Service{
		remote:    r,
		ratings:   ratings,
		guard:     inflight.NewGuard(),
		clock:     clock.New(),
		tiers:     tier.Codeforces(),
		contests:  repository.NewCollection[model.Contest](repository.WithKind(KindContest)),
		resources: repository.NewCollection[model.Resource](repository.WithKind(KindResource)),
		events:    repository.NewCollection[model.Event](repository.WithKind(KindEvent)),
		board:     repository.NewBoard(),
		logger:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads every collection and starts the periodic leaderboard sync.
// A failed initial load is logged, not returned: the portal serves empty
// collections until the next reload.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting portal service...")

	if err := s.Reload(ctx, s.creds); err != nil {
		s.logger.Warn(ctx, "initial load failed", logger.Error(err))
	}

	s.stopCh = make(chan struct{})
	if s.syncInterval > 0 {
		s.startPeriodicSync(context.WithoutCancel(ctx), s.stopCh)
	}

	s.started = true
	s.logger.Info(ctx, "portal service started",
		logger.Int("contests", s.contests.Len()),
		logger.Int("resources", s.resources.Len()),
		logger.Int("events", s.events.Len()),
		logger.Duration("syncInterval", s.syncInterval),
	)
	return nil
}

// Stop halts the periodic sync and waits for it to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping portal service...")

	close(s.stopCh)
	s.wg.Wait()

	s.started = false
	s.logger.Info(context.Background(), "portal service stopped")
}

func (s *Service) startPeriodicSync(ctx context.Context, stop <-chan struct{}) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.syncInterval)
		defer ticker.Stop()

		if _, err := s.SyncLeaderboard(ctx, s.creds); err != nil {
			s.logger.Warn(ctx, "leaderboard sync failed", logger.Error(err))
		}
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := s.SyncLeaderboard(ctx, s.creds); err != nil {
					s.logger.Warn(ctx, "leaderboard sync failed", logger.Error(err))
				}
			}
		}
	}()
}

// reloadAttempts bounds how often Reload refetches a collection that a
// mutation changed while the fetch was running.
const reloadAttempts = 3

// Reload fetches contests, resources and events in parallel and replaces the
// cached collections. A collection whose fetch fails keeps its old contents,
// and a fetch that raced a reconciled mutation is retried rather than
// overwriting it.
func (s *Service) Reload(ctx context.Context, creds remote.Credentials) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reload(gctx, s.logger, KindContest, s.contests, func(ctx context.Context) ([]model.Contest, error) {
			return s.remote.ListContests(ctx, creds)
		})
	})
	g.Go(func() error {
		return reload(gctx, s.logger, KindResource, s.resources, func(ctx context.Context) ([]model.Resource, error) {
			return s.remote.ListResources(ctx, creds)
		})
	})
	g.Go(func() error {
		return reload(gctx, s.logger, KindEvent, s.events, func(ctx context.Context) ([]model.Event, error) {
			return s.remote.ListEvents(ctx, creds)
		})
	})
	return g.Wait()
}

func reload[T repository.Identified](ctx context.Context, log logger.Logger, kind string, c *repository.Collection[T], fetch func(context.Context) ([]T, error)) error {
	for range reloadAttempts {
		version := c.Version()
		items, err := fetch(ctx)
		if err != nil {
			return err
		}
		if c.ResetIfUnchanged(items, version) {
			return nil
		}
	}
	log.Warn(ctx, "reload kept the cached collection, it kept changing during fetch",
		logger.String("kind", kind))
	return nil
}

// Tiers returns the rating bands, highest first.
func (s *Service) Tiers() []tier.Band {
	return s.tiers.Bands()
}
