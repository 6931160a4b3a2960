package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"

	"github.com/algoritmia-up/portal/internal/adapters/codeforces"
	"github.com/algoritmia-up/portal/internal/adapters/http/api"
	"github.com/algoritmia-up/portal/internal/adapters/remote"
	service "github.com/algoritmia-up/portal/internal/app"
	"github.com/algoritmia-up/portal/internal/app/mockremote"
	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/internal/session"
)

var start = time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)

type stubSessions struct {
	state session.State
}

func (s stubSessions) Resolve(context.Context, remote.Credentials) session.State { return s.state }

var coach = session.State{Status: session.StatusAuthenticated, Role: model.RoleCoach, UserID: "7"}

type fixture struct {
	remote  *mockremote.Remote
	ratings *mockremote.Ratings
	handler http.Handler
}

func newFixture(st session.State) fixture {
	r := &mockremote.Remote{}
	r.On("ListContests", mock.Anything, mock.Anything).Return([]model.Contest{
		{ID: "c1", Title: "Beta", StartsAt: start, EndsAt: start.Add(time.Hour)},
		{ID: "c2", Title: "Alpha", StartsAt: start.Add(24 * time.Hour), EndsAt: start.Add(25 * time.Hour)},
	}, nil)
	r.On("ListResources", mock.Anything, mock.Anything).Return([]model.Resource{}, nil)
	r.On("ListEvents", mock.Anything, mock.Anything).Return([]model.Event{}, nil)

	ratings := &mockremote.Ratings{}
	svc := service.New(r, ratings)
	if err := svc.Reload(context.Background(), remote.Credentials{}); err != nil {
		panic(err)
	}
	return fixture{
		remote:  r,
		ratings: ratings,
		handler: api.NewServer(svc, stubSessions{state: st}).Router(),
	}
}

func (f fixture) do(method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc"})
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

func listedIDs(rec *httptest.ResponseRecorder) []string {
	var out struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	ids := make([]string, len(out.Items))
	for i, it := range out.Items {
		ids[i] = it.ID
	}
	return ids
}

func contestJSON(title string) []byte {
	b, _ := json.Marshal(model.ContestInput{
		Title: title, URL: "https://vjudge.net/contest/1",
		StartsAt: start, EndsAt: start.Add(5 * time.Hour),
		Location: "Lab 1", Season: "Fall 2026",
	})
	return b
}

func TestServer_Basics(t *testing.T) {
	Convey("Given the API server", t, func() {
		f := newFixture(coach)

		Convey("When probing health", func() {
			rec := f.do(http.MethodGet, "/healthz", nil, "")
			Convey("Then it reports ok", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decodeBody(rec)["status"], ShouldEqual, "ok")
			})
		})

		Convey("When asking for the session", func() {
			rec := f.do(http.MethodGet, "/api/session", nil, "")
			Convey("Then the role and mutation gate are reported", func() {
				body := decodeBody(rec)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(body["status"], ShouldEqual, "authenticated")
				So(body["role"], ShouldEqual, "coach")
				So(body["canMutate"], ShouldBeTrue)
			})
		})

		Convey("When a route does not exist", func() {
			rec := f.do(http.MethodGet, "/api/nope", nil, "")
			Convey("Then a JSON 404 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decodeBody(rec)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When scraping metrics after a request", func() {
			_ = f.do(http.MethodGet, "/api/contests", nil, "")
			rec := f.do(http.MethodGet, "/metrics", nil, "")
			Convey("Then the route pattern is a label", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `endpoint="/api/contests"`)
			})
		})
	})
}

func TestServer_Contests(t *testing.T) {
	Convey("Given loaded contests", t, func() {
		f := newFixture(coach)

		Convey("When listing sorted by title", func() {
			rec := f.do(http.MethodGet, "/api/contests?sort=title&dir=asc", nil, "")
			Convey("Then the order follows the title", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(listedIDs(rec), ShouldResemble, []string{"c2", "c1"})
			})
		})

		Convey("When the sort key is unknown", func() {
			rec := f.do(http.MethodGet, "/api/contests?sort=organizer", nil, "")
			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When creating a contest", func() {
			f.remote.On("CreateContest", mock.Anything, mock.Anything, mock.Anything).
				Return(model.Contest{ID: "c9", Title: "Selectivo"}, nil)
			rec := f.do(http.MethodPost, "/api/contests", contestJSON("Selectivo"), "application/json")

			Convey("Then it is created and listed first", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				So(decodeBody(rec)["id"], ShouldEqual, "c9")
				So(listedIDs(f.do(http.MethodGet, "/api/contests", nil, "")), ShouldResemble, []string{"c9", "c1", "c2"})
			})
		})

		Convey("When the form is invalid", func() {
			rec := f.do(http.MethodPost, "/api/contests", contestJSON("  "), "application/json")
			Convey("Then the validation message is returned without calling the API", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody(rec)["message"], ShouldEqual, "Title is required.")
				f.remote.AssertNotCalled(t, "CreateContest", mock.Anything, mock.Anything, mock.Anything)
			})
		})

		Convey("When the body is not JSON", func() {
			rec := f.do(http.MethodPost, "/api/contests", []byte("{"), "application/json")
			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody(rec)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the API forbids the update", func() {
			f.remote.On("UpdateContest", mock.Anything, mock.Anything, "c1", mock.Anything).
				Return(model.Contest{}, &remote.Error{Kind: remote.KindForbidden, Op: "contests.update", Status: http.StatusForbidden})
			rec := f.do(http.MethodPatch, "/api/contests/c1", contestJSON("Beta 2"), "application/json")

			Convey("Then 403 is returned and the listing is unchanged", func() {
				So(rec.Code, ShouldEqual, http.StatusForbidden)
				So(decodeBody(rec)["message"], ShouldEqual, "Only coaches and admins can do this.")
				So(listedIDs(f.do(http.MethodGet, "/api/contests", nil, "")), ShouldResemble, []string{"c1", "c2"})
			})
		})

		Convey("When the API cannot be reached on delete", func() {
			f.remote.On("DeleteContest", mock.Anything, mock.Anything, "c2").
				Return(&remote.Error{Kind: remote.KindNetworkFailure, Op: "contests.delete"})
			rec := f.do(http.MethodDelete, "/api/contests/c2", nil, "")

			Convey("Then it is a bad gateway", func() {
				So(rec.Code, ShouldEqual, http.StatusBadGateway)
				So(decodeBody(rec)["code"], ShouldEqual, "network_failure")
			})
		})

		Convey("When deleting a contest", func() {
			f.remote.On("DeleteContest", mock.Anything, mock.Anything, "c1").Return(nil)
			rec := f.do(http.MethodDelete, "/api/contests/c1", nil, "")

			Convey("Then it leaves the listing", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(listedIDs(f.do(http.MethodGet, "/api/contests", nil, "")), ShouldResemble, []string{"c2"})
			})
		})
	})
}

func TestServer_ResourceAuthorDefaultsToCaller(t *testing.T) {
	Convey("Given a signed-in coach", t, func() {
		f := newFixture(coach)
		f.remote.On("CreateResource", mock.Anything, mock.Anything, mock.Anything).
			Return(model.Resource{ID: "r1", Title: "Handbook", AddedBy: "7"}, nil)

		body := []byte(`{"title":"Handbook","url":"https://cses.fi/book.pdf"}`)
		rec := f.do(http.MethodPost, "/api/resources", body, "application/json")

		Convey("Then the resource is sent with the caller as author", func() {
			So(rec.Code, ShouldEqual, http.StatusCreated)
			sent := f.remote.Calls[len(f.remote.Calls)-1].Arguments.Get(2).(model.ResourceInput)
			So(sent.AddedBy, ShouldEqual, "7")
		})
	})

	Convey("Given no session", t, func() {
		f := newFixture(session.State{Status: session.StatusUnauthenticated, Role: model.RoleNone})
		rec := f.do(http.MethodPost, "/api/resources", []byte(`{"title":"Handbook","url":"https://cses.fi/book.pdf"}`), "application/json")

		Convey("Then the missing author is a validation error", func() {
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(rec)["code"], ShouldEqual, "validation")
		})
	})
}

func multipartEvent(payload string, withBanner bool) ([]byte, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("payload", payload)
	if withBanner {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="banner"; filename="dp.png"`)
		h.Set("Content-Type", "image/png")
		part, _ := mw.CreatePart(h)
		_, _ = part.Write([]byte{0x89, 'P', 'N', 'G'})
	}
	_ = mw.Close()
	return buf.Bytes(), mw.FormDataContentType()
}

func TestServer_EventMultipart(t *testing.T) {
	Convey("Given an event form with a banner", t, func() {
		f := newFixture(coach)
		f.remote.On("UploadEventBanner", mock.Anything, mock.Anything, mock.Anything).
			Return("https://cdn.example/dp.png", nil)
		f.remote.On("CreateEvent", mock.Anything, mock.Anything, mock.Anything).
			Return(model.Event{ID: "e1", Title: "Intro to DP", ImageURL: "https://cdn.example/dp.png"}, nil)

		payload := `{"title":"Intro to DP","startsAt":"2026-09-12T09:00:00Z","endsAt":"2026-09-12T11:00:00Z","location":"Aula 3","description":"Workshop"}`
		body, ct := multipartEvent(payload, true)
		rec := f.do(http.MethodPost, "/api/events", body, ct)

		Convey("Then the banner is uploaded before the event is created", func() {
			So(rec.Code, ShouldEqual, http.StatusCreated)
			So(decodeBody(rec)["imageUrl"], ShouldEqual, "https://cdn.example/dp.png")

			banner := f.remote.Calls[len(f.remote.Calls)-2].Arguments.Get(2).(model.Banner)
			So(banner.Filename, ShouldEqual, "dp.png")
			So(banner.ContentType, ShouldEqual, "image/png")

			sent := f.remote.Calls[len(f.remote.Calls)-1].Arguments.Get(2).(model.EventInput)
			So(sent.ImageURL, ShouldEqual, "https://cdn.example/dp.png")
		})
	})

	Convey("Given an event form without a banner", t, func() {
		f := newFixture(coach)
		body, ct := multipartEvent(`{"title":"Intro to DP","startsAt":"2026-09-12T09:00:00Z","endsAt":"2026-09-12T11:00:00Z","location":"Aula 3","description":"Workshop"}`, false)
		rec := f.do(http.MethodPost, "/api/events", body, ct)

		Convey("Then create is rejected before any upload", func() {
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			f.remote.AssertNotCalled(t, "UploadEventBanner", mock.Anything, mock.Anything, mock.Anything)
		})
	})

	Convey("Given a multipart payload with a field the form does not have", t, func() {
		f := newFixture(coach)
		payload := `{"title":"Intro to DP","startsAt":"2026-09-12T09:00:00Z","endsAt":"2026-09-12T11:00:00Z","location":"Aula 3","description":"Workshop","organizer":"x"}`
		body, ct := multipartEvent(payload, true)
		rec := f.do(http.MethodPost, "/api/events", body, ct)

		Convey("Then it is rejected like the same JSON body", func() {
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(rec)["code"], ShouldEqual, "bad_request")
			f.remote.AssertNotCalled(t, "UploadEventBanner", mock.Anything, mock.Anything, mock.Anything)

			jsonRec := f.do(http.MethodPost, "/api/events", []byte(payload), "application/json")
			So(jsonRec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(jsonRec)["code"], ShouldEqual, "bad_request")
		})
	})
}

func TestServer_Leaderboard(t *testing.T) {
	Convey("Given members with Codeforces handles", t, func() {
		f := newFixture(coach)
		f.remote.On("ListUsers", mock.Anything, mock.Anything).Return([]remote.User{
			{ID: "7", FullName: "Ana", CodeforcesHandle: "ana_cf", Country: "mx"},
			{ID: "8", FullName: "Beto", CodeforcesHandle: "beto"},
		}, nil)

		Convey("When a sync succeeds", func() {
			f.ratings.On("UserInfo", mock.Anything, mock.Anything).Return([]codeforces.User{
				{Handle: "ANA_CF", Rating: 1900, MaxRating: 2000},
				{Handle: "beto", Rating: 2100},
			}, nil)
			sync := f.do(http.MethodPost, "/api/leaderboard/sync", nil, "")
			rec := f.do(http.MethodGet, "/api/leaderboard", nil, "")

			Convey("Then ranked rows flag the caller", func() {
				So(sync.Code, ShouldEqual, http.StatusOK)
				So(decodeBody(sync)["members"], ShouldEqual, float64(2))

				var lb service.Leaderboard
				So(json.Unmarshal(rec.Body.Bytes(), &lb), ShouldBeNil)
				So(lb.Rows, ShouldHaveLength, 2)
				So(lb.Rows[0].Member.Handle, ShouldEqual, "beto")
				So(lb.Rows[1].IsCurrentUser, ShouldBeTrue)
				So(lb.Rows[1].Member.CountryCode, ShouldEqual, "MX")
				So(lb.LastSynced, ShouldNotBeNil)
			})
		})

		Convey("When Codeforces fails", func() {
			f.ratings.On("UserInfo", mock.Anything, mock.Anything).Return(nil, codeforces.ErrAPI)
			sync := f.do(http.MethodPost, "/api/leaderboard/sync", nil, "")
			rec := f.do(http.MethodGet, "/api/leaderboard", nil, "")

			Convey("Then the sync is a bad gateway and the board reports the error", func() {
				So(sync.Code, ShouldEqual, http.StatusBadGateway)
				So(decodeBody(rec)["error"], ShouldEqual, "Could not sync with Codeforces.")
				So(strings.Contains(rec.Body.String(), `"items":[]`), ShouldBeTrue)
			})
		})
	})

	Convey("Given the tier table", t, func() {
		f := newFixture(coach)
		rec := f.do(http.MethodGet, "/api/tiers", nil, "")

		Convey("Then the bands are listed", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "Legendary Grandmaster")
		})
	})
}
