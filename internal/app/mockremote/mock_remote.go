// Package mockremote provides testify mocks of the service's collaborators.
package mockremote

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/algoritmia-up/portal/internal/adapters/codeforces"
	"github.com/algoritmia-up/portal/internal/adapters/remote"
	"github.com/algoritmia-up/portal/internal/domain/model"
)

type Remote struct {
	mock.Mock
}

func (r *Remote) ListContests(ctx context.Context, creds remote.Credentials) ([]model.Contest, error) {
	args := r.Called(ctx, creds)

	var res []model.Contest
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Contest)
	}
	return res, args.Error(1)
}

func (r *Remote) CreateContest(ctx context.Context, creds remote.Credentials, in model.ContestInput) (model.Contest, error) {
	args := r.Called(ctx, creds, in)
	return args.Get(0).(model.Contest), args.Error(1)
}

func (r *Remote) UpdateContest(ctx context.Context, creds remote.Credentials, id string, in model.ContestInput) (model.Contest, error) {
	args := r.Called(ctx, creds, id, in)
	return args.Get(0).(model.Contest), args.Error(1)
}

func (r *Remote) DeleteContest(ctx context.Context, creds remote.Credentials, id string) error {
	return r.Called(ctx, creds, id).Error(0)
}

func (r *Remote) ListResources(ctx context.Context, creds remote.Credentials) ([]model.Resource, error) {
	args := r.Called(ctx, creds)

	var res []model.Resource
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Resource)
	}
	return res, args.Error(1)
}

func (r *Remote) CreateResource(ctx context.Context, creds remote.Credentials, in model.ResourceInput) (model.Resource, error) {
	args := r.Called(ctx, creds, in)
	return args.Get(0).(model.Resource), args.Error(1)
}

func (r *Remote) UpdateResource(ctx context.Context, creds remote.Credentials, id string, in model.ResourceInput) (model.Resource, error) {
	args := r.Called(ctx, creds, id, in)
	return args.Get(0).(model.Resource), args.Error(1)
}

func (r *Remote) DeleteResource(ctx context.Context, creds remote.Credentials, id string) error {
	return r.Called(ctx, creds, id).Error(0)
}

func (r *Remote) ListEvents(ctx context.Context, creds remote.Credentials) ([]model.Event, error) {
	args := r.Called(ctx, creds)

	var res []model.Event
	if args.Get(0) != nil {
		res = args.Get(0).([]model.Event)
	}
	return res, args.Error(1)
}

func (r *Remote) UploadEventBanner(ctx context.Context, creds remote.Credentials, b model.Banner) (string, error) {
	args := r.Called(ctx, creds, b)
	return args.String(0), args.Error(1)
}

func (r *Remote) CreateEvent(ctx context.Context, creds remote.Credentials, in model.EventInput) (model.Event, error) {
	args := r.Called(ctx, creds, in)
	return args.Get(0).(model.Event), args.Error(1)
}

func (r *Remote) UpdateEvent(ctx context.Context, creds remote.Credentials, id string, in model.EventInput) (model.Event, error) {
	args := r.Called(ctx, creds, id, in)
	return args.Get(0).(model.Event), args.Error(1)
}

func (r *Remote) DeleteEvent(ctx context.Context, creds remote.Credentials, id string) error {
	return r.Called(ctx, creds, id).Error(0)
}

func (r *Remote) ListUsers(ctx context.Context, creds remote.Credentials) ([]remote.User, error) {
	args := r.Called(ctx, creds)

	var res []remote.User
	if args.Get(0) != nil {
		res = args.Get(0).([]remote.User)
	}
	return res, args.Error(1)
}

type Ratings struct {
	mock.Mock
}

func (r *Ratings) UserInfo(ctx context.Context, handles []string) ([]codeforces.User, error) {
	args := r.Called(ctx, handles)

	var res []codeforces.User
	if args.Get(0) != nil {
		res = args.Get(0).([]codeforces.User)
	}
	return res, args.Error(1)
}

// Checker mocks the session endpoint.
type Checker struct {
	mock.Mock
}

func (c *Checker) Me(ctx context.Context, creds remote.Credentials) (remote.Identity, error) {
	args := c.Called(ctx, creds)
	return args.Get(0).(remote.Identity), args.Error(1)
}
