package repository

import (
	"slices"
	"sync"

	"github.com/algoritmia-up/portal/pkg/metrics"
)

// Collection is an in-memory Store guarded by a RWMutex.
// Writers publish a fresh slice, so a slice handed to a reader is never
// written again. Every write bumps the version.
type Collection[T Identified] struct {
	mu      sync.RWMutex
	items   []T
	kind    string
	version uint64
	// removed maps a deleted id to the version its removal produced.
	removed map[string]uint64
}

var _ Store[Identified] = (*Collection[Identified])(nil)

// NewCollection returns an empty collection.
func NewCollection[T Identified](opts ...Option) *Collection[T] {
	o := options{kind: "unknown"}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collection[T]{kind: o.kind, removed: make(map[string]uint64)}
}

func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]T, 0, len(c.items)+1)
	next = append(next, item)
	for _, it := range c.items {
		if it.EntityID() != item.EntityID() {
			next = append(next, it)
		}
	}
	c.publish(next)
	delete(c.removed, item.EntityID())
}

func (c *Collection[T]) Replace(item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(item.EntityID())
	if i < 0 {
		return ErrNotFound
	}
	next := slices.Clone(c.items)
	next[i] = item
	c.publish(next)
	return nil
}

func (c *Collection[T]) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		// still remembered, so a late Upsert cannot bring it back
		c.version++
		c.removed[id] = c.version
		return ErrNotFound
	}
	next := make([]T, 0, len(c.items)-1)
	next = append(next, c.items[:i]...)
	next = append(next, c.items[i+1:]...)
	c.publish(next)
	c.removed[id] = c.version
	return nil
}

func (c *Collection[T]) Reset(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset(items)
}

// Version returns the number of writes applied so far.
func (c *Collection[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// ResetIfUnchanged replaces the collection only if no write happened since
// version was read. It reports whether the reset was applied.
func (c *Collection[T]) ResetIfUnchanged(items []T, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return false
	}
	c.reset(items)
	return true
}

// Upsert swaps item in place, or prepends it if its id is unknown. An id
// removed after version since is left out, and Upsert reports false.
func (c *Collection[T]) Upsert(item T, since uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := item.EntityID()
	if i := c.index(id); i >= 0 {
		next := slices.Clone(c.items)
		next[i] = item
		c.publish(next)
		return true
	}
	if at, ok := c.removed[id]; ok && at > since {
		return false
	}
	next := make([]T, 0, len(c.items)+1)
	next = append(next, item)
	next = append(next, c.items...)
	c.publish(next)
	return true
}

func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// index assumes the lock is held.
func (c *Collection[T]) index(id string) int {
	return slices.IndexFunc(c.items, func(it T) bool { return it.EntityID() == id })
}

// reset assumes the write lock is held. An id the server lists again is no
// longer considered removed.
func (c *Collection[T]) reset(items []T) {
	c.publish(slices.Clone(items))
	for _, it := range items {
		delete(c.removed, it.EntityID())
	}
}

// publish assumes the write lock is held.
func (c *Collection[T]) publish(next []T) {
	c.items = next
	c.version++
	metrics.UpdateCollectionSize(c.kind, len(next))
}
