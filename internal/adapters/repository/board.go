package repository

import (
	"slices"
	"sync"
	"time"

	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/internal/domain/rank"
	"github.com/algoritmia-up/portal/pkg/metrics"
)

// Board holds the last synced leaderboard.
type Board struct {
	mu       sync.RWMutex
	rows     []rank.Ranked[model.Member]
	syncedAt time.Time
	lastErr  error
}

// NewBoard returns a board that has never been synced.
func NewBoard() *Board { return &Board{} }

// Publish stores a completed sync.
func (b *Board) Publish(rows []rank.Ranked[model.Member], at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = slices.Clone(rows)
	b.syncedAt = at
	b.lastErr = nil
	metrics.UpdateCollectionSize("leaderboard", len(rows))
}

// Fail records a failed sync and clears the rows.
func (b *Board) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = nil
	b.lastErr = err
	metrics.UpdateCollectionSize("leaderboard", 0)
}

// Snapshot returns a copy of the rows, the time of the last successful sync
// (zero if none) and the error of the last sync, if it failed.
func (b *Board) Snapshot() ([]rank.Ranked[model.Member], time.Time, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.rows), b.syncedAt, b.lastErr
}
