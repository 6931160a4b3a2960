package session

import (
	"context"
	"sync"

	"github.com/algoritmia-up/portal/internal/adapters/remote"
	"github.com/algoritmia-up/portal/internal/domain/model"
)

// Resolver produces a State for credentials. *Gate implements it.
type Resolver interface {
	Resolve(ctx context.Context, creds remote.Credentials) State
}

// Provider holds one shared session state and pushes changes to subscribers.
//
// Every Refresh takes a new generation. A result is applied only if no later
// refresh has started and its context is still live; otherwise it is
// dropped without notifying anyone.
type Provider struct {
	resolver Resolver

	notifyMu sync.Mutex // orders apply+notify

	mu      sync.Mutex
	state   State
	gen     uint64
	subs    map[uint64]func(State)
	nextSub uint64
	closed  bool

	wg sync.WaitGroup
}

// NewProvider creates a Provider in the unknown state.
func NewProvider(r Resolver) *Provider {
	return &Provider{
		resolver: r,
		state:    State{Status: StatusUnknown, Role: model.RoleUnknown},
		subs:     make(map[uint64]func(State)),
	}
}

// State returns the current state.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers fn for state changes. The returned func removes it and
// is safe to call more than once.
func (p *Provider) Subscribe(fn func(State)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return func() {}
	}
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Refresh re-checks the session and blocks until the check completes. It
// reports whether the result was applied.
func (p *Provider) Refresh(ctx context.Context, creds remote.Credentials) (State, bool) {
	p.mu.Lock()
	if p.closed {
		st := p.state
		p.mu.Unlock()
		return st, false
	}
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	st := p.resolver.Resolve(ctx, creds)
	return st, p.apply(ctx, gen, st)
}

// RefreshAsync runs Refresh in the background. Close waits for it.
func (p *Provider) RefreshAsync(ctx context.Context, creds remote.Credentials) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.Refresh(ctx, creds)
	}()
}

func (p *Provider) apply(ctx context.Context, gen uint64, st State) bool {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	if p.closed || gen != p.gen || ctx.Err() != nil || st.Status == StatusUnknown {
		p.mu.Unlock()
		return false
	}
	p.state = st
	subs := make([]func(State), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
	return true
}

// Close detaches every subscriber and waits for background refreshes.
// Results that arrive afterwards are discarded.
func (p *Provider) Close() {
	p.mu.Lock()
	p.closed = true
	clear(p.subs)
	p.mu.Unlock()
	p.wg.Wait()
}
