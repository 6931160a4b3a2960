package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/algoritmia-up/portal/internal/domain/model"
)

var null = []byte("null")

// flexString accepts a JSON string or number. Numeric ids arrive as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, null) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or a numeric string. Empty values decode to 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, null) {
		*f = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*f = 0
			return nil
		}
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("expected integer, got %s", b)
	}
	*f = flexInt(n)
	return nil
}

// flexTime accepts RFC 3339 timestamps, offset-less ISO timestamps (taken as
// UTC), plain dates, empty strings and null.
type flexTime time.Time

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, null) {
		*f = flexTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = flexTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*f = flexTime(t.UTC())
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (f flexTime) time() time.Time { return time.Time(f) }

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func difficultyOrDefault(d flexInt) int {
	if d < 1 || d > 5 {
		return model.DefaultDifficulty
	}
	return int(d)
}

type listEnvelope[T any] struct {
	Items []T `json:"items"`
}

// contestRow is a contest as the API stores it.
type contestRow struct {
	ID         flexString `json:"id"`
	Title      string     `json:"title"`
	Platform   string     `json:"platform"`
	URL        string     `json:"url"`
	Tags       []string   `json:"tags"`
	Difficulty flexInt    `json:"difficulty"`
	AddedBy    flexString `json:"added_by"`
	Format     string     `json:"format"`
	StartAt    flexTime   `json:"start_at"`
	EndAt      flexTime   `json:"end_at"`
	Location   string     `json:"location"`
	Season     string     `json:"season"`
	Notes      string     `json:"notes"`
}

func (r contestRow) toContest() model.Contest {
	return model.Contest{
		ID:         string(r.ID),
		Title:      r.Title,
		Platform:   r.Platform,
		URL:        r.URL,
		Tags:       tagsOrEmpty(r.Tags),
		Difficulty: difficultyOrDefault(r.Difficulty),
		Format:     r.Format,
		StartsAt:   r.StartAt.time(),
		EndsAt:     r.EndAt.time(),
		Location:   r.Location,
		Season:     r.Season,
		Notes:      r.Notes,
	}
}

type contestPayload struct {
	Title      string    `json:"title"`
	Platform   string    `json:"platform"`
	URL        string    `json:"url"`
	Tags       []string  `json:"tags"`
	Difficulty int       `json:"difficulty"`
	Format     string    `json:"format"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	Location   string    `json:"location"`
	Season     string    `json:"season"`
	Notes      string    `json:"notes"`
}

func newContestPayload(in model.ContestInput) contestPayload {
	return contestPayload{
		Title:      in.Title,
		Platform:   in.Platform,
		URL:        in.URL,
		Tags:       tagsOrEmpty(in.Tags),
		Difficulty: in.Difficulty,
		Format:     in.Format,
		StartAt:    in.StartsAt.UTC(),
		EndAt:      in.EndsAt.UTC(),
		Location:   in.Location,
		Season:     in.Season,
		Notes:      in.Notes,
	}
}

// resourceRow is a resource as the API stores it. The API keeps difficulty
// as text and added_by as a user id.
type resourceRow struct {
	ID         flexString `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Tags       []string   `json:"tags"`
	Difficulty flexInt    `json:"difficulty"`
	AddedBy    flexString `json:"added_by"`
	Notes      string     `json:"notes"`
	CreatedAt  flexTime   `json:"created_at"`
}

func (r resourceRow) toResource() model.Resource {
	return model.Resource{
		ID:         string(r.ID),
		Type:       r.Type,
		Title:      r.Title,
		URL:        r.URL,
		Tags:       tagsOrEmpty(r.Tags),
		Difficulty: difficultyOrDefault(r.Difficulty),
		AddedBy:    string(r.AddedBy),
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt.time(),
	}
}

type resourcePayload struct {
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Tags       []string `json:"tags"`
	Difficulty string   `json:"difficulty"`
	AddedBy    any      `json:"added_by,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

func newResourcePayload(in model.ResourceInput) resourcePayload {
	p := resourcePayload{
		Type:       in.Type,
		Title:      in.Title,
		URL:        in.URL,
		Tags:       tagsOrEmpty(in.Tags),
		Difficulty: strconv.Itoa(in.Difficulty),
		Notes:      in.Notes,
	}
	if by := strings.TrimSpace(in.AddedBy); by != "" {
		if id, err := strconv.ParseInt(by, 10, 64); err == nil {
			p.AddedBy = id
		} else {
			p.AddedBy = by
		}
	}
	return p
}

// eventRow is an event as the API stores it.
type eventRow struct {
	ID            flexString `json:"id"`
	Title         string     `json:"title"`
	StartsAt      flexTime   `json:"starts_at"`
	EndsAt        flexTime   `json:"ends_at"`
	Location      string     `json:"location"`
	Description   string     `json:"description"`
	ImageURL      string     `json:"image_url"`
	VideoCallLink string     `json:"video_call_link"`
	CreatedAt     flexTime   `json:"created_at"`
}

// toEvent adapts the row. Missing bounds fall back to the submitted ones.
func (r eventRow) toEvent(sent model.EventInput) model.Event {
	e := model.Event{
		ID:            string(r.ID),
		Title:         r.Title,
		StartsAt:      r.StartsAt.time(),
		EndsAt:        r.EndsAt.time(),
		Location:      r.Location,
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		VideoCallLink: r.VideoCallLink,
		CreatedAt:     r.CreatedAt.time(),
	}
	if e.StartsAt.IsZero() {
		e.StartsAt = sent.StartsAt.UTC()
	}
	if e.EndsAt.IsZero() {
		e.EndsAt = sent.EndsAt.UTC()
	}
	return e
}

type eventPayload struct {
	Title         string    `json:"title"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	VideoCallLink string    `json:"video_call_link,omitempty"`
}

func newEventPayload(in model.EventInput) eventPayload {
	return eventPayload{
		Title:         in.Title,
		StartsAt:      in.StartsAt.UTC(),
		EndsAt:        in.EndsAt.UTC(),
		Location:      in.Location,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		VideoCallLink: in.VideoCallLink,
	}
}

// User is a registered club member.
type User struct {
	ID               string
	FullName         string
	CodeforcesHandle string
	Country          string
	ProfileImageURL  string
}

type userRow struct {
	ID               flexString `json:"id"`
	FullName         string     `json:"full_name"`
	CodeforcesHandle string     `json:"codeforces_handle"`
	Country          string     `json:"country"`
	ProfileImageURL  string     `json:"profile_image_url"`
}

func (r userRow) toUser() User {
	return User{
		ID:               string(r.ID),
		FullName:         r.FullName,
		CodeforcesHandle: strings.TrimSpace(r.CodeforcesHandle),
		Country:          r.Country,
		ProfileImageURL:  r.ProfileImageURL,
	}
}
