// Package listing filters and sorts entity collections for display.
//
// A Schema describes, per entity type, which text projections a free-text
// query is matched against and which fields can be sorted on. Apply never
// mutates its input and always returns the same output for the same input.
package listing

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// MarshalText encodes the direction as "asc" or "desc".
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d Direction) sign() int {
	if d == Descending {
		return -1
	}
	return 1
}

// ParseDirection accepts asc/ascending and desc/descending in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, ErrInvalidDirection
	}
}

// SortState is the single active sort key and its direction.
type SortState struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle returns the state after the user picks key: the same key flips the
// direction, a different key starts ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		if s.Direction == Ascending {
			return SortState{Key: key, Direction: Descending}
		}
		return SortState{Key: key, Direction: Ascending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// FieldKind is the semantic type a sortable field compares by.
type FieldKind int

const (
	KindString FieldKind = iota
	KindNumber
	KindDate
)

// Field is a sortable field of T.
type Field[T any] struct {
	Key     string
	Kind    FieldKind
	compare func(a, b T) int
}

// StringField compares case-insensitively.
func StringField[T any](key string, get func(T) string) Field[T] {
	return Field[T]{Key: key, Kind: KindString, compare: func(a, b T) int {
		return cmp.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
	}}
}

// NumberField compares numerically.
func NumberField[T any, N cmp.Ordered](key string, get func(T) N) Field[T] {
	return Field[T]{Key: key, Kind: KindNumber, compare: func(a, b T) int {
		return cmp.Compare(get(a), get(b))
	}}
}

// DateField compares by instant. Zero times sort first.
func DateField[T any](key string, get func(T) time.Time) Field[T] {
	return Field[T]{Key: key, Kind: KindDate, compare: func(a, b T) int {
		return get(a).Compare(get(b))
	}}
}

// Schema is the listing configuration for one entity type.
type Schema[T any] struct {
	search []func(T) string
	fields []Field[T]
	def    SortState
}

// NewSchema builds a schema. def is the sort used when a request names none.
func NewSchema[T any](search []func(T) string, def SortState, fields ...Field[T]) *Schema[T] {
	return &Schema[T]{search: search, fields: fields, def: def}
}

// Default returns the schema's default sort.
func (s *Schema[T]) Default() SortState { return s.def }

// Keys lists the sortable keys in declaration order.
func (s *Schema[T]) Keys() []string {
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.Key
	}
	return keys
}

// HasKey reports whether key is sortable.
func (s *Schema[T]) HasKey(key string) bool {
	_, ok := s.field(key)
	return ok
}

func (s *Schema[T]) field(key string) (Field[T], bool) {
	for _, f := range s.fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Parse turns request parameters into a SortState. An empty key selects the
// default sort; an empty direction means ascending.
func (s *Schema[T]) Parse(key, dir string) (SortState, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.def, nil
	}
	if !s.HasKey(key) {
		return SortState{}, ErrUnknownSortKey
	}
	if strings.TrimSpace(dir) == "" {
		return SortState{Key: key, Direction: Ascending}, nil
	}
	d, err := ParseDirection(dir)
	if err != nil {
		return SortState{}, err
	}
	return SortState{Key: key, Direction: d}, nil
}

// Matches reports whether item passes the free-text query.
func (s *Schema[T]) Matches(item T, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, project := range s.search {
		if strings.Contains(strings.ToLower(project(item)), q) {
			return true
		}
	}
	return false
}

// Filter returns the items that match query, in input order.
func (s *Schema[T]) Filter(items []T, query string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if s.Matches(item, query) {
			out = append(out, item)
		}
	}
	return out
}

// Sort returns a sorted copy of items. Equal elements keep their relative
// order. An unknown key leaves the order unchanged.
func (s *Schema[T]) Sort(items []T, state SortState) []T {
	out := slices.Clone(items)
	f, ok := s.field(state.Key)
	if !ok {
		return out
	}
	sign := state.Direction.sign()
	slices.SortStableFunc(out, func(a, b T) int {
		return sign * f.compare(a, b)
	})
	return out
}

// Apply filters then sorts.
func (s *Schema[T]) Apply(items []T, query string, state SortState) []T {
	return s.Sort(s.Filter(items, query), state)
}
