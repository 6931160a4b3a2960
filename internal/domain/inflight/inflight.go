// Package inflight tracks mutations that have been submitted but not yet
// answered, so the same logical operation is never sent twice concurrently.
package inflight

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// Guard records operation keys while their request is outstanding.
type Guard interface {
	// SeenAndRecord atomically checks whether key is in flight and records it if not.
	// Returns true when key was already in flight.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord releases key once its request has completed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds an operation key such as "contest:update:42".
func Key(kind, op, id string) string {
	return strings.Join([]string{kind, op, id}, ":")
}

type memoryGuard struct {
	mu   sync.Mutex
	keys map[string]struct{}
	size atomic.Int64
}

// NewGuard creates an in-memory guard.
func NewGuard() Guard {
	return &memoryGuard{keys: make(map[string]struct{})}
}

func (g *memoryGuard) SeenAndRecord(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.keys[key]; ok {
		return true
	}
	g.keys[key] = struct{}{}
	g.size.Add(1)
	return false
}

func (g *memoryGuard) Unrecord(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.keys[key]; ok {
		delete(g.keys, key)
		g.size.Add(-1)
	}
}

func (g *memoryGuard) Size() int64 { return g.size.Load() }

// Begin records key and returns the function that releases it. It fails with
// ErrInFlight when key is already recorded.
func Begin(ctx context.Context, g Guard, key string) (func(), error) {
	if g.SeenAndRecord(ctx, key) {
		return nil, ErrInFlight
	}
	var once sync.Once
	return func() { once.Do(func() { g.Unrecord(ctx, key) }) }, nil
}
