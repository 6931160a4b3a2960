package service

import (
	"context"
	"strings"

	"github.com/algoritmia-up/portal/internal/adapters/remote"
	"github.com/algoritmia-up/portal/internal/adapters/repository"
	"github.com/algoritmia-up/portal/internal/domain/inflight"
	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/internal/domain/validate"
	"github.com/algoritmia-up/portal/pkg/logger"
	"github.com/algoritmia-up/portal/pkg/metrics"
)

// Entity kinds, used in operation keys, logs and metrics.
const (
	KindContest  = "contests"
	KindResource = "resources"
	KindEvent    = "events"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// mutation is one create, update or delete. It runs validate, then claims
// the operation key, then calls the API, then reconciles the collection.
// Nothing is reconciled unless the API confirmed the change.
type mutation[T any] struct {
	kind, op, key string
	invalid       error
	call          func(ctx context.Context) (T, error)
	reconcile     func(T)
}

func run[T any](ctx context.Context, s *Service, m mutation[T]) (T, error) {
	var zero T
	log := s.logger.Named("coordinator")

	if m.invalid != nil {
		metrics.RecordMutation(m.kind, m.op, "invalid")
		return zero, m.invalid
	}

	release, err := inflight.Begin(ctx, s.guard, inflight.Key(m.kind, m.op, m.key))
	if err != nil {
		metrics.RecordInFlightRejection(m.kind)
		metrics.RecordMutation(m.kind, m.op, "inflight")
		return zero, err
	}
	defer release()

	// once sent, a mutation is not abandoned because the caller went away
	out, err := m.call(context.WithoutCancel(ctx))
	if err != nil {
		outcome := "error"
		if e, ok := remote.AsError(err); ok {
			outcome = e.Kind.String()
		}
		metrics.RecordMutation(m.kind, m.op, outcome)
		log.Warn(ctx, "mutation failed",
			logger.String("kind", m.kind),
			logger.String("op", m.op),
			logger.Error(err))
		return zero, err
	}

	m.reconcile(out)
	metrics.RecordMutation(m.kind, m.op, "ok")
	log.Info(ctx, "mutation applied",
		logger.String("kind", m.kind),
		logger.String("op", m.op))
	return out, nil
}

// createKey identifies a create by who submits it and what it is called.
func createKey(creds remote.Credentials, title string) string {
	return creds.Key() + "|" + strings.ToLower(strings.TrimSpace(title))
}

// upsertSince swaps an updated entity in place. An entity the cache has not
// seen yet goes to the front, unless a delete of it was reconciled after
// since was read.
func upsertSince[T repository.Identified](log logger.Logger, c *repository.Collection[T], item T, since uint64) {
	if !c.Upsert(item, since) {
		log.Debug(context.Background(), "update of a deleted entity dropped",
			logger.String("id", item.EntityID()))
	}
}

func removeByID[T repository.Identified](c *repository.Collection[T], id string) {
	_ = c.Remove(id)
}

// CreateContest validates in and stores it; on success the contest is the
// first element of the collection.
func (s *Service) CreateContest(ctx context.Context, creds remote.Credentials, in model.ContestInput) (model.Contest, error) {
	in = in.Normalize()
	return run(ctx, s, mutation[model.Contest]{
		kind: KindContest, op: opCreate, key: createKey(creds, in.Title),
		invalid:   validate.Contest(in),
		call:      func(ctx context.Context) (model.Contest, error) { return s.remote.CreateContest(ctx, creds, in) },
		reconcile: s.contests.Prepend,
	})
}

// UpdateContest replaces contest id.
func (s *Service) UpdateContest(ctx context.Context, creds remote.Credentials, id string, in model.ContestInput) (model.Contest, error) {
	in = in.Normalize()
	since := s.contests.Version()
	return run(ctx, s, mutation[model.Contest]{
		kind: KindContest, op: opUpdate, key: id,
		invalid:   validate.Contest(in),
		call:      func(ctx context.Context) (model.Contest, error) { return s.remote.UpdateContest(ctx, creds, id, in) },
		reconcile: func(c model.Contest) { upsertSince(s.logger, s.contests, c, since) },
	})
}

// DeleteContest removes contest id.
func (s *Service) DeleteContest(ctx context.Context, creds remote.Credentials, id string) error {
	_, err := run(ctx, s, mutation[struct{}]{
		kind: KindContest, op: opDelete, key: id,
		call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.remote.DeleteContest(ctx, creds, id)
		},
		reconcile: func(struct{}) { removeByID(s.contests, id) },
	})
	return err
}

// CreateResource validates in and stores it.
func (s *Service) CreateResource(ctx context.Context, creds remote.Credentials, in model.ResourceInput) (model.Resource, error) {
	in = in.Normalize()
	return run(ctx, s, mutation[model.Resource]{
		kind: KindResource, op: opCreate, key: createKey(creds, in.Title),
		invalid:   validate.Resource(in, validate.Create),
		call:      func(ctx context.Context) (model.Resource, error) { return s.remote.CreateResource(ctx, creds, in) },
		reconcile: s.resources.Prepend,
	})
}

// UpdateResource replaces resource id.
func (s *Service) UpdateResource(ctx context.Context, creds remote.Credentials, id string, in model.ResourceInput) (model.Resource, error) {
	in = in.Normalize()
	since := s.resources.Version()
	return run(ctx, s, mutation[model.Resource]{
		kind: KindResource, op: opUpdate, key: id,
		invalid:   validate.Resource(in, validate.Update),
		call:      func(ctx context.Context) (model.Resource, error) { return s.remote.UpdateResource(ctx, creds, id, in) },
		reconcile: func(r model.Resource) { upsertSince(s.logger, s.resources, r, since) },
	})
}

// DeleteResource removes resource id.
func (s *Service) DeleteResource(ctx context.Context, creds remote.Credentials, id string) error {
	_, err := run(ctx, s, mutation[struct{}]{
		kind: KindResource, op: opDelete, key: id,
		call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.remote.DeleteResource(ctx, creds, id)
		},
		reconcile: func(struct{}) { removeByID(s.resources, id) },
	})
	return err
}

// CreateEvent uploads the banner, then stores the event with the banner's
// URL. A failed upload aborts the create.
func (s *Service) CreateEvent(ctx context.Context, creds remote.Credentials, in model.EventInput) (model.Event, error) {
	in = in.Normalize()
	return run(ctx, s, mutation[model.Event]{
		kind: KindEvent, op: opCreate, key: createKey(creds, in.Title),
		invalid:   validate.Event(in, validate.Create),
		call:      func(ctx context.Context) (model.Event, error) { return s.saveEvent(ctx, creds, "", in) },
		reconcile: s.events.Prepend,
	})
}

// UpdateEvent replaces event id, uploading a new banner first if one is given.
func (s *Service) UpdateEvent(ctx context.Context, creds remote.Credentials, id string, in model.EventInput) (model.Event, error) {
	in = in.Normalize()
	if in.Banner == nil && in.ImageURL == "" {
		if cur, ok := s.events.Get(id); ok {
			in.ImageURL = cur.ImageURL
		}
	}
	since := s.events.Version()
	return run(ctx, s, mutation[model.Event]{
		kind: KindEvent, op: opUpdate, key: id,
		invalid:   validate.Event(in, validate.Update),
		call:      func(ctx context.Context) (model.Event, error) { return s.saveEvent(ctx, creds, id, in) },
		reconcile: func(e model.Event) { upsertSince(s.logger, s.events, e, since) },
	})
}

func (s *Service) saveEvent(ctx context.Context, creds remote.Credentials, id string, in model.EventInput) (model.Event, error) {
	if in.Banner != nil {
		url, err := s.remote.UploadEventBanner(ctx, creds, *in.Banner)
		if err != nil {
			return model.Event{}, err
		}
		in.ImageURL = url
		in.Banner = nil
	}
	if id == "" {
		return s.remote.CreateEvent(ctx, creds, in)
	}
	return s.remote.UpdateEvent(ctx, creds, id, in)
}

// DeleteEvent removes event id.
func (s *Service) DeleteEvent(ctx context.Context, creds remote.Credentials, id string) error {
	_, err := run(ctx, s, mutation[struct{}]{
		kind: KindEvent, op: opDelete, key: id,
		call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.remote.DeleteEvent(ctx, creds, id)
		},
		reconcile: func(struct{}) { removeByID(s.events, id) },
	})
	return err
}
