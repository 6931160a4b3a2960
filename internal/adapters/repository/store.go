// Package repository holds the portal's last known copy of each collection.
package repository

// Identified is an entity addressable by id.
type Identified interface {
	EntityID() string
}

// Store is the local cache of one entity collection, most recent first.
type Store[T Identified] interface {
	// Prepend puts item at the front, dropping any older copy with its id.
	Prepend(item T)
	// Replace swaps the entity with item's id for item.
	// Returns ErrNotFound if the id is unknown.
	Replace(item T) error
	// Remove deletes the entity with id. Returns ErrNotFound if absent.
	// Either way the id counts as removed for Upsert.
	Remove(id string) error
	// Reset replaces the whole collection.
	Reset(items []T)
	// Version returns a counter bumped by every write.
	Version() uint64
	// ResetIfUnchanged resets only if Version still equals version.
	ResetIfUnchanged(items []T, version uint64) bool
	// Upsert replaces or prepends item unless its id was removed after since.
	Upsert(item T, since uint64) bool
	// Snapshot returns a copy of the collection.
	Snapshot() []T
	// Get returns the entity with id.
	Get(id string) (T, bool)
	// Len returns the number of entities.
	Len() int
}
