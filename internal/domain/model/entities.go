// Package model contains the portal's entities and mutation inputs.
package model

import (
	"slices"
	"strings"
	"time"
)

// DefaultDifficulty is used when the API omits a difficulty.
const DefaultDifficulty = 3

// Contest formats.
const (
	FormatICPC = "ICPC"
	FormatIOI  = "IOI"
)

// Platforms lists the judges a contest can be hosted on.
var Platforms = []string{"Codeforces", "Vjudge", "Kattis", "SPOJ", "Leetcode", "Atcoder", "CSES", "HackerRank", "Other"}

// ResourceTypes lists the kinds of study resources.
var ResourceTypes = []string{
	"Notebook", "PDF", "Blog", "Video", "Book", "Cheatsheet",
	"Link", "Sheet", "Slideshow", "Repo", "Article", "Other",
}

// Contest is a scheduled programming contest.
type Contest struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Platform   string    `json:"platform"`
	URL        string    `json:"url"`
	Tags       []string  `json:"tags"`
	Difficulty int       `json:"difficulty"`
	Format     string    `json:"format"`
	StartsAt   time.Time `json:"startsAt"`
	EndsAt     time.Time `json:"endsAt"`
	Location   string    `json:"location"`
	Season     string    `json:"season"`
	Notes      string    `json:"notes,omitempty"`
}

// Resource is a shared study resource.
type Resource struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Tags       []string  `json:"tags"`
	Difficulty int       `json:"difficulty"`
	AddedBy    string    `json:"addedBy"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Event is a club event with a banner image.
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	StartsAt      time.Time `json:"startsAt"`
	EndsAt        time.Time `json:"endsAt"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"imageUrl"`
	VideoCallLink string    `json:"videoCallLink,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Member is a club member joined with their Codeforces rating.
type Member struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	Rating      int    `json:"rating"`
	MaxRating   *int   `json:"maxRating,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// EntityID returns the contest id.
func (c Contest) EntityID() string { return c.ID }

// EntityID returns the resource id.
func (r Resource) EntityID() string { return r.ID }

// EntityID returns the event id.
func (e Event) EntityID() string { return e.ID }

// NormalizeTags trims tags, drops blanks and keeps the first of duplicates.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// NormalizePlatform returns the canonical spelling of a known platform, or "Other".
func NormalizePlatform(p string) string {
	return canonical(Platforms, p)
}

// NormalizeResourceType returns the canonical spelling of a known type, or "Other".
func NormalizeResourceType(t string) string {
	return canonical(ResourceTypes, t)
}

// NormalizeFormat returns ICPC or IOI. Anything else becomes ICPC.
func NormalizeFormat(f string) string {
	if strings.EqualFold(strings.TrimSpace(f), FormatIOI) {
		return FormatIOI
	}
	return FormatICPC
}

func canonical(known []string, v string) string {
	v = strings.TrimSpace(v)
	for _, k := range known {
		if strings.EqualFold(k, v) {
			return k
		}
	}
	return "Other"
}
