// Package rank computes competition ranks over rated entities.
//
// Entities are ordered by rating descending. Equal ratings share a rank and
// the next distinct rating resumes at its 1-based position, so ratings
// 2012, 1875, 1875, 1420 rank as 1, 2, 2, 4.
package rank

import (
	"cmp"
	"slices"
)

// Entity is the minimal rated shape the leaderboard works with.
type Entity struct {
	ID          string
	DisplayName string
	Rating      int
}

// Ranked pairs an item with its computed rank (>= 1).
type Ranked[T any] struct {
	Item T
	Rank int
}

// By ranks items using rating to read each item's rating. The input slice is
// left untouched. Items with equal ratings keep their input order.
func By[T any](items []T, rating func(T) int) []Ranked[T] {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return cmp.Compare(rating(b), rating(a))
	})

	out := make([]Ranked[T], len(sorted))
	current := 0
	for i, item := range sorted {
		if i == 0 || rating(item) != rating(sorted[i-1]) {
			current = i + 1
		}
		out[i] = Ranked[T]{Item: item, Rank: current}
	}
	return out
}

// Entities ranks plain rated entities.
func Entities(items []Entity) []Ranked[Entity] {
	return By(items, func(e Entity) int { return e.Rating })
}
