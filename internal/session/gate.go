package session

import (
	"context"

	"github.com/itbasis/go-clock"
	"golang.org/x/sync/singleflight"

	"github.com/algoritmia-up/portal/internal/adapters/remote"
	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/pkg/logger"
	"github.com/algoritmia-up/portal/pkg/metrics"
)

// Checker asks the API who owns a set of credentials.
type Checker interface {
	Me(ctx context.Context, creds remote.Credentials) (remote.Identity, error)
}

// Gate turns credentials into a State. It never fails: any problem reaching
// or understanding the API resolves to unauthenticated.
type Gate struct {
	checker Checker
	clock   clock.Clock
	log     logger.Logger
	group   singleflight.Group
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock sets the clock used for CheckedAt.
func WithClock(c clock.Clock) GateOption {
	return func(g *Gate) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithLogger sets the gate logger.
func WithLogger(l logger.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.log = l
		}
	}
}

// NewGate creates a Gate backed by checker.
func NewGate(checker Checker, opts ...GateOption) *Gate {
	g := &Gate{checker: checker, clock: clock.New(), log: logger.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve checks creds. Concurrent calls with the same credentials share one
// request. If ctx ends first the result is StatusUnknown.
func (g *Gate) Resolve(ctx context.Context, creds remote.Credentials) State {
	if creds.Empty() {
		metrics.RecordSessionCheck(StatusUnauthenticated.String())
		return unauthenticated(g.clock.Now())
	}

	ch := g.group.DoChan(creds.Key(), func() (any, error) {
		return g.check(context.WithoutCancel(ctx), creds), nil
	})
	select {
	case <-ctx.Done():
		return State{Status: StatusUnknown, Role: model.RoleUnknown}
	case res := <-ch:
		st := res.Val.(State)
		metrics.RecordSessionCheck(st.Status.String())
		return st
	}
}

func (g *Gate) check(ctx context.Context, creds remote.Credentials) State {
	id, err := g.checker.Me(ctx, creds)
	now := g.clock.Now()
	if err != nil {
		g.log.Debug(ctx, "session check rejected", logger.Error(err))
		return unauthenticated(now)
	}

	role := model.RoleUser
	if id.Role != nil {
		parsed, ok := model.ParseRole(*id.Role)
		if !ok {
			g.log.Warn(ctx, "unrecognised role, treating as user", logger.String("role", *id.Role))
		}
		role = parsed
	}
	return State{Status: StatusAuthenticated, Role: role, UserID: id.UserID, CheckedAt: now}
}
