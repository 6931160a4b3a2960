package validate_test

import (
	"errors"
	"testing"
	"time"

	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

var start = time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)

func validContest() model.ContestInput {
	return model.ContestInput{
		Title:    "Selectivo ICPC",
		URL:      "https://vjudge.net/contest/1",
		StartsAt: start,
		EndsAt:   start.Add(5 * time.Hour),
		Location: "Lab 1",
		Season:   "Fall 2026",
	}
}

func validEvent() model.EventInput {
	return model.EventInput{
		Title:       "Intro to DP",
		StartsAt:    start,
		EndsAt:      start.Add(2 * time.Hour),
		Location:    "Aula 3",
		Description: "Workshop",
		Banner:      &model.Banner{Filename: "dp.png", ContentType: "image/png", Data: []byte{1}},
	}
}

func field(err error) string {
	var ve *validate.Error
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

func TestContestRules(t *testing.T) {
	Convey("Given a contest form", t, func() {
		in := validContest()

		Convey("When every field is valid", func() {
			Convey("Then it passes", func() {
				So(validate.Contest(in), ShouldBeNil)
			})
		})

		Convey("When the title is only whitespace", func() {
			in.Title = "   "
			Convey("Then the title rule fails", func() {
				So(validate.Contest(in).Error(), ShouldEqual, "Title is required.")
			})
		})

		Convey("When the URL uses another scheme", func() {
			in.URL = "ftp://example.com"
			Convey("Then the URL rule fails", func() {
				So(field(validate.Contest(in)), ShouldEqual, "url")
			})
		})

		Convey("When the URL scheme is upper case", func() {
			in.URL = "HTTPS://codeforces.com/contest/1"
			Convey("Then it passes", func() {
				So(validate.Contest(in), ShouldBeNil)
			})
		})

		Convey("When start equals end", func() {
			in.EndsAt = in.StartsAt
			Convey("Then the ordering rule fails", func() {
				So(validate.Contest(in).Error(), ShouldEqual, "End time must be after start time.")
			})
		})

		Convey("When several rules fail", func() {
			in.Title = ""
			in.Location = ""
			in.Season = ""

			Convey("Then the first rule in order is always reported", func() {
				for i := 0; i < 5; i++ {
					So(field(validate.Contest(in)), ShouldEqual, "title")
				}
			})
		})

		Convey("When location is fine but season is missing", func() {
			in.Season = ""
			Convey("Then the season rule fails", func() {
				So(field(validate.Contest(in)), ShouldEqual, "season")
			})
		})

		Convey("When difficulty is out of range", func() {
			in.Difficulty = 6
			Convey("Then the difficulty rule fails", func() {
				So(field(validate.Contest(in)), ShouldEqual, "difficulty")
			})
		})
	})
}

func TestResourceRules(t *testing.T) {
	Convey("Given a resource form without an author", t, func() {
		in := model.ResourceInput{Title: "CP Handbook", URL: "https://cses.fi/book.pdf"}

		Convey("Then create requires the author", func() {
			So(field(validate.Resource(in, validate.Create)), ShouldEqual, "addedBy")
		})

		Convey("Then update does not", func() {
			So(validate.Resource(in, validate.Update), ShouldBeNil)
		})

		Convey("Then a relative URL is rejected before the author", func() {
			in.URL = "/book.pdf"
			So(validate.Resource(in, validate.Create).Error(), ShouldEqual, "Valid URL is required (http/https).")
		})
	})
}

func TestEventRules(t *testing.T) {
	Convey("Given an event form", t, func() {
		in := validEvent()

		Convey("When it is complete", func() {
			Convey("Then it passes", func() {
				So(validate.Event(in, validate.Create), ShouldBeNil)
			})
		})

		Convey("When the end is before the start", func() {
			in.EndsAt = in.StartsAt.Add(-time.Minute)
			Convey("Then the ordering rule fails", func() {
				So(validate.Event(in, validate.Create).Error(), ShouldEqual, "End must be after start.")
			})
		})

		Convey("When the banner is missing", func() {
			in.Banner = nil
			Convey("Then create fails and update passes", func() {
				So(field(validate.Event(in, validate.Create)), ShouldEqual, "banner")
				So(validate.Event(in, validate.Update), ShouldBeNil)
			})
		})

		Convey("When the banner is not an image", func() {
			in.Banner.ContentType = "application/pdf"
			Convey("Then both modes fail", func() {
				So(validate.Event(in, validate.Create).Error(), ShouldEqual, "The banner must be an image file.")
				So(validate.Event(in, validate.Update).Error(), ShouldEqual, "The banner must be an image file.")
			})
		})

		Convey("When a video call link is given", func() {
			cases := map[string]bool{
				"https://meet.google.com/abc-defg-hij": true,
				"https://us02web.zoom.us/j/123":        true,
				"https://zoom.us/j/123":                true,
				"http://meet.google.com/abc":           false,
				"https://teams.microsoft.com/l/123":    false,
				"https://meet.google.com/":             false,
				"https://evilzoom.us.example.com/j/1":  false,
				"https://evilzoom.us/j/1":              false,
				"https://a.b-c.zoom.us/j/1":            true,
				"https://.zoom.us/j/1":                 false,
			}
			for link, ok := range cases {
				in.VideoCallLink = link
				err := validate.Event(in, validate.Create)
				if ok {
					So(err, ShouldBeNil)
				} else {
					So(field(err), ShouldEqual, "videoCallLink")
				}
			}
		})

		Convey("When the description is missing and the link is bad", func() {
			in.Description = ""
			in.VideoCallLink = "https://example.com"
			Convey("Then the description is reported first", func() {
				So(field(validate.Event(in, validate.Create)), ShouldEqual, "description")
			})
		})
	})
}
