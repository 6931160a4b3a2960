package listing

import (
	"strings"
	"time"

	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/internal/domain/rank"
)

func joinTags(tags []string) string { return strings.Join(tags, " ") }

// Contests lists contests, newest start first by default.
var Contests = NewSchema(
	[]func(model.Contest) string{
		func(c model.Contest) string { return c.Title },
		func(c model.Contest) string { return c.Platform },
		func(c model.Contest) string { return joinTags(c.Tags) },
		func(c model.Contest) string { return c.Format },
		func(c model.Contest) string { return c.Location },
		func(c model.Contest) string { return c.Season },
	},
	SortState{Key: "startsAt", Direction: Descending},
	StringField("title", func(c model.Contest) string { return c.Title }),
	StringField("platform", func(c model.Contest) string { return c.Platform }),
	NumberField("difficulty", func(c model.Contest) int { return c.Difficulty }),
	StringField("format", func(c model.Contest) string { return c.Format }),
	DateField("startsAt", func(c model.Contest) time.Time { return c.StartsAt }),
	DateField("endsAt", func(c model.Contest) time.Time { return c.EndsAt }),
	StringField("location", func(c model.Contest) string { return c.Location }),
	StringField("season", func(c model.Contest) string { return c.Season }),
)

// Resources lists resources, most recently added first by default.
var Resources = NewSchema(
	[]func(model.Resource) string{
		func(r model.Resource) string { return r.Title },
		func(r model.Resource) string { return r.AddedBy },
		func(r model.Resource) string { return joinTags(r.Tags) },
		func(r model.Resource) string { return r.Type },
	},
	SortState{Key: "createdAt", Direction: Descending},
	StringField("type", func(r model.Resource) string { return r.Type }),
	StringField("title", func(r model.Resource) string { return r.Title }),
	NumberField("difficulty", func(r model.Resource) int { return r.Difficulty }),
	StringField("addedBy", func(r model.Resource) string { return r.AddedBy }),
	DateField("createdAt", func(r model.Resource) time.Time { return r.CreatedAt }),
)

// Events lists events, latest start first by default.
var Events = NewSchema(
	[]func(model.Event) string{
		func(e model.Event) string { return e.Title },
		func(e model.Event) string { return e.Location },
		func(e model.Event) string { return e.Description },
	},
	SortState{Key: "startsAt", Direction: Descending},
	StringField("title", func(e model.Event) string { return e.Title }),
	DateField("startsAt", func(e model.Event) time.Time { return e.StartsAt }),
	DateField("endsAt", func(e model.Event) time.Time { return e.EndsAt }),
	StringField("location", func(e model.Event) string { return e.Location }),
)

// Leaderboard lists ranked members, best rank first by default.
var Leaderboard = NewSchema(
	[]func(rank.Ranked[model.Member]) string{
		func(r rank.Ranked[model.Member]) string { return r.Item.Handle },
		func(r rank.Ranked[model.Member]) string { return r.Item.Name },
	},
	SortState{Key: "rank", Direction: Ascending},
	NumberField("rank", func(r rank.Ranked[model.Member]) int { return r.Rank }),
	StringField("handle", func(r rank.Ranked[model.Member]) string { return r.Item.Handle }),
	StringField("name", func(r rank.Ranked[model.Member]) string { return r.Item.Name }),
	StringField("country", func(r rank.Ranked[model.Member]) string { return r.Item.CountryCode }),
	NumberField("rating", func(r rank.Ranked[model.Member]) int { return r.Item.Rating }),
	NumberField("maxRating", func(r rank.Ranked[model.Member]) int {
		if r.Item.MaxRating == nil {
			return 0
		}
		return *r.Item.MaxRating
	}),
)
