package model

import (
	"strings"
	"time"
)

// ContestInput is the user-supplied form of a contest for create and update.
type ContestInput struct {
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
	Notes      string    `json:"notes"`
}

// Normalize trims text fields and fills defaults.
func (in ContestInput) Normalize() ContestInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Platform = NormalizePlatform(in.Platform)
	in.URL = strings.TrimSpace(in.URL)
	in.Tags = NormalizeTags(in.Tags)
	if in.Difficulty == 0 {
		in.Difficulty = DefaultDifficulty
	}
	in.Format = NormalizeFormat(in.Format)
	in.Location = strings.TrimSpace(in.Location)
	in.Season = strings.TrimSpace(in.Season)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

// ResourceInput is the user-supplied form of a resource.
type ResourceInput struct {
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Tags       []string `json:"tags"`
	Difficulty int      `json:"difficulty"`
	AddedBy    string   `json:"addedBy"`
	Notes      string   `json:"notes"`
}

// Normalize trims text fields and fills defaults.
func (in ResourceInput) Normalize() ResourceInput {
	in.Type = NormalizeResourceType(in.Type)
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.Tags = NormalizeTags(in.Tags)
	if in.Difficulty == 0 {
		in.Difficulty = DefaultDifficulty
	}
	in.AddedBy = strings.TrimSpace(in.AddedBy)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

// Banner is an uploaded event image.
type Banner struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EventInput is the user-supplied form of an event. Banner is the new image
// to upload, if any; ImageURL keeps the current image on update.
type EventInput struct {
	Title         string    `json:"title"`
	StartsAt      time.Time `json:"startsAt"`
	EndsAt        time.Time `json:"endsAt"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"imageUrl"`
	VideoCallLink string    `json:"videoCallLink"`
	Banner        *Banner   `json:"-"`
}

// Normalize trims text fields.
func (in EventInput) Normalize() EventInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.VideoCallLink = strings.TrimSpace(in.VideoCallLink)
	return in
}
