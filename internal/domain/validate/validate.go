// Package validate holds the per-entity form rules checked before any
// network call. Rules run in a fixed order and the first failure is reported.
package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/algoritmia-up/portal/internal/domain/model"
)

// Mode distinguishes create from update where rules differ.
type Mode int

const (
	Create Mode = iota
	Update
)

var (
	httpURL     = regexp.MustCompile(`(?i)^https?://`)
	googleMeet  = regexp.MustCompile(`(?i)^https://meet\.google\.com/.+`)
	zoomMeeting = regexp.MustCompile(`(?i)^https://(?:[\w-]+\.)*zoom\.us/.+`)
)

type rule func() *Error

func check(field, message string, ok bool) rule {
	return func() *Error {
		if ok {
			return nil
		}
		return &Error{Field: field, Message: message}
	}
}

func first(rules ...rule) error {
	for _, r := range rules {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func ordered(start, end time.Time) bool { return start.Before(end) }

func difficulty(d int) bool { return d == 0 || (d >= 1 && d <= 5) }

// Contest checks a contest form.
func Contest(in model.ContestInput) error {
	return first(
		check("title", "Title is required.", !blank(in.Title)),
		check("url", "Valid URL is required.", !blank(in.URL) && httpURL.MatchString(strings.TrimSpace(in.URL))),
		check("startsAt", "Start and end times are required.", !in.StartsAt.IsZero() && !in.EndsAt.IsZero()),
		check("endsAt", "End time must be after start time.", ordered(in.StartsAt, in.EndsAt)),
		check("location", "Location is required.", !blank(in.Location)),
		check("season", `Season is required (e.g., "Fall 2025").`, !blank(in.Season)),
		check("difficulty", "Difficulty must be between 1 and 5.", difficulty(in.Difficulty)),
	)
}

// Resource checks a resource form. The author is only required on create.
func Resource(in model.ResourceInput, mode Mode) error {
	return first(
		check("title", "Title is required.", !blank(in.Title)),
		check("url", "Valid URL is required (http/https).", httpURL.MatchString(strings.TrimSpace(in.URL))),
		check("addedBy", "Added by is required.", mode == Update || !blank(in.AddedBy)),
		check("difficulty", "Difficulty must be between 1 and 5.", difficulty(in.Difficulty)),
	)
}

// Event checks an event form. A banner image is required on create; on
// update a new banner is optional but must still be an image.
func Event(in model.EventInput, mode Mode) error {
	link := strings.TrimSpace(in.VideoCallLink)
	return first(
		check("title", "Title is required.", !blank(in.Title)),
		check("startsAt", "Start date and time are required.", !in.StartsAt.IsZero()),
		check("endsAt", "End date and time are required.", !in.EndsAt.IsZero()),
		check("endsAt", "End must be after start.", ordered(in.StartsAt, in.EndsAt)),
		check("location", "Location is required.", !blank(in.Location)),
		check("description", "Description is required.", !blank(in.Description)),
		check("banner", "An event image is required.", mode == Update || in.Banner != nil),
		check("banner", "The banner must be an image file.", in.Banner == nil || isImage(in.Banner.ContentType)),
		check("videoCallLink", "The video call link must be a Google Meet or Zoom link.",
			link == "" || googleMeet.MatchString(link) || zoomMeeting.MatchString(link)),
	)
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
