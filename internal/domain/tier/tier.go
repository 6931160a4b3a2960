// Package tier maps a rating to its display band (title and color).
package tier

import (
	"slices"
)

// Band is one rating tier. A rating belongs to the first band, in descending
// Min order, whose Min it reaches.
type Band struct {
	Min   int    `json:"min"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// Unrated is returned for ratings below every band.
var Unrated = Band{Min: 0, Title: "Unrated", Color: "black"}

// Table is an ordered set of bands.
type Table struct {
	bands []Band
}

// Codeforces returns the default table using the Codeforces rank names.
func Codeforces() *Table {
	return New([]Band{
		{Min: 4000, Title: "Tourist", Color: "black"},
		{Min: 3000, Title: "Legendary Grandmaster", Color: "red"},
		{Min: 2600, Title: "International Grandmaster", Color: "red"},
		{Min: 2400, Title: "Grandmaster", Color: "red"},
		{Min: 2300, Title: "International Master", Color: "orange"},
		{Min: 2100, Title: "Master", Color: "orange"},
		{Min: 1900, Title: "Candidate Master", Color: "purple"},
		{Min: 1600, Title: "Expert", Color: "blue"},
		{Min: 1400, Title: "Specialist", Color: "cyan"},
		{Min: 1200, Title: "Pupil", Color: "green"},
		{Min: 1, Title: "Newbie", Color: "gray"},
	})
}

// New builds a table from bands in any order.
func New(bands []Band) *Table {
	sorted := slices.Clone(bands)
	slices.SortStableFunc(sorted, func(a, b Band) int { return b.Min - a.Min })
	return &Table{bands: sorted}
}

// Lookup returns the band for rating, or Unrated.
func (t *Table) Lookup(rating int) Band {
	for _, b := range t.bands {
		if rating >= b.Min {
			return b
		}
	}
	return Unrated
}

// Bands returns a copy of the bands, highest first.
func (t *Table) Bands() []Band {
	return slices.Clone(t.bands)
}
