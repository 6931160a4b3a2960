package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/internal/domain/rank"
	"github.com/algoritmia-up/portal/pkg/metrics"
)

func ids(cs []model.Contest) string {
	s := ""
	for _, c := range cs {
		s += c.ID
	}
	return s
}

func TestCollection_BasicOperations(t *testing.T) {
	c := NewCollection[model.Contest](WithKind("contests"))

	if n := c.Len(); n != 0 {
		t.Errorf("expected empty collection, got %d", n)
	}

	c.Reset([]model.Contest{{ID: "b"}, {ID: "c"}})
	c.Prepend(model.Contest{ID: "a", Title: "new"})
	if got := ids(c.Snapshot()); got != "abc" {
		t.Errorf("after prepend = %q, want abc", got)
	}

	if err := c.Replace(model.Contest{ID: "b", Title: "edited"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got, _ := c.Get("b"); got.Title != "edited" {
		t.Errorf("replace did not swap the entity: %+v", got)
	}
	if got := ids(c.Snapshot()); got != "abc" {
		t.Errorf("replace moved the entity: %q", got)
	}

	if err := c.Remove("a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := ids(c.Snapshot()); got != "bc" {
		t.Errorf("after remove = %q, want bc", got)
	}

	if err := c.Remove("zz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove unknown: got %v, want ErrNotFound", err)
	}
	if err := c.Replace(model.Contest{ID: "zz"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("replace unknown: got %v, want ErrNotFound", err)
	}
	if _, ok := c.Get("zz"); ok {
		t.Error("get unknown should miss")
	}
}

func TestCollection_PrependDropsStaleCopy(t *testing.T) {
	c := NewCollection[model.Resource]()
	c.Reset([]model.Resource{{ID: "1"}, {ID: "2", Title: "old"}})
	c.Prepend(model.Resource{ID: "2", Title: "new"})

	snap := c.Snapshot()
	if len(snap) != 2 || snap[0].ID != "2" || snap[0].Title != "new" || snap[1].ID != "1" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestCollection_SnapshotIsACopy(t *testing.T) {
	c := NewCollection[model.Event]()
	c.Reset([]model.Event{{ID: "1", Title: "keep"}})

	snap := c.Snapshot()
	snap[0].Title = "changed"
	if got, _ := c.Get("1"); got.Title != "keep" {
		t.Errorf("snapshot aliased the store: %q", got.Title)
	}

	in := []model.Event{{ID: "x"}}
	c.Reset(in)
	in[0].ID = "y"
	if _, ok := c.Get("x"); !ok {
		t.Error("reset aliased the caller's slice")
	}
}

func TestCollection_VersionGuardsReset(t *testing.T) {
	c := NewCollection[model.Contest]()
	c.Reset([]model.Contest{{ID: "a"}})

	v := c.Version()
	c.Prepend(model.Contest{ID: "b"})
	if c.ResetIfUnchanged([]model.Contest{{ID: "a"}}, v) {
		t.Fatal("reset applied over a newer write")
	}
	if got := ids(c.Snapshot()); got != "ba" {
		t.Errorf("after refused reset = %q, want ba", got)
	}

	v = c.Version()
	if !c.ResetIfUnchanged([]model.Contest{{ID: "c"}}, v) {
		t.Fatal("reset refused with a current version")
	}
	if got := ids(c.Snapshot()); got != "c" {
		t.Errorf("after reset = %q, want c", got)
	}
}

func TestCollection_UpsertSkipsLaterRemoval(t *testing.T) {
	c := NewCollection[model.Contest]()
	c.Reset([]model.Contest{{ID: "a"}, {ID: "b"}})

	since := c.Version()
	if err := c.Remove("b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if c.Upsert(model.Contest{ID: "b", Title: "late"}, since) {
		t.Error("upsert restored an id removed after since")
	}

	// unknown to the cache and never removed: goes to the front
	if !c.Upsert(model.Contest{ID: "z"}, since) {
		t.Error("upsert of an unseen id was refused")
	}
	// known: swapped in place
	if !c.Upsert(model.Contest{ID: "a", Title: "edited"}, since) {
		t.Error("upsert of a cached id was refused")
	}
	if got := ids(c.Snapshot()); got != "za" {
		t.Errorf("after upserts = %q, want za", got)
	}

	// a removal of an id the cache never held still counts
	since = c.Version()
	if err := c.Remove("q"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("remove unknown: %v", err)
	}
	if c.Upsert(model.Contest{ID: "q"}, since) {
		t.Error("upsert restored an id removed while absent")
	}

	// the server listing it again clears the removal
	c.Reset([]model.Contest{{ID: "q"}})
	c.Reset(nil)
	if !c.Upsert(model.Contest{ID: "q"}, 0) {
		t.Error("upsert refused an id the server listed again")
	}
}

func TestCollection_ConcurrentAccess(t *testing.T) {
	c := NewCollection[model.Contest]()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("%d-%d", w, i)
				c.Prepend(model.Contest{ID: id})
				_ = c.Snapshot()
				if i%2 == 0 {
					_ = c.Remove(id)
				}
			}
		}(w)
	}
	wg.Wait()

	if n := c.Len(); n != 8*50 {
		t.Errorf("expected %d entities, got %d", 8*50, n)
	}
}

func TestCollection_ReportsSize(t *testing.T) {
	c := NewCollection[model.Contest](WithKind("size_gauge"))
	c.Reset([]model.Contest{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	_ = c.Remove("2")

	if got := collectionGauge(t, "size_gauge"); got != 2 {
		t.Errorf("collection size gauge = %v, want 2", got)
	}
}

func TestBoard(t *testing.T) {
	b := NewBoard()
	rows, at, err := b.Snapshot()
	if len(rows) != 0 || !at.IsZero() || err != nil {
		t.Fatalf("fresh board = %v %v %v", rows, at, err)
	}

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	b.Publish(rank.By([]model.Member{{ID: "1", Rating: 1500}}, func(m model.Member) int { return m.Rating }), now)
	rows, at, err = b.Snapshot()
	if len(rows) != 1 || !at.Equal(now) || err != nil {
		t.Fatalf("published board = %v %v %v", rows, at, err)
	}

	boom := errors.New("codeforces down")
	b.Fail(boom)
	rows, at, err = b.Snapshot()
	if len(rows) != 0 || !errors.Is(err, boom) || !at.Equal(now) {
		t.Errorf("failed board = %v %v %v", rows, at, err)
	}
}

func collectionGauge(t *testing.T, kind string) float64 {
	t.Helper()
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "portal_bff_collection_size" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "kind" && l.GetValue() == kind {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("no collection_size sample for %q", kind)
	return 0
}
