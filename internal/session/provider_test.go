package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"

	"github.com/algoritmia-up/portal/internal/adapters/remote"
	"github.com/algoritmia-up/portal/internal/domain/model"
	"github.com/algoritmia-up/portal/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedResolver answers the i-th Resolve call with whatever is sent on
// replies[i], and announces each call on started.
type scriptedResolver struct {
	mu      sync.Mutex
	calls   int
	replies []chan session.State
	started chan int
}

func newScriptedResolver(n int) *scriptedResolver {
	r := &scriptedResolver{replies: make([]chan session.State, n), started: make(chan int, n)}
	for i := range r.replies {
		r.replies[i] = make(chan session.State, 1)
	}
	return r
}

func (r *scriptedResolver) Resolve(ctx context.Context, _ remote.Credentials) session.State {
	r.mu.Lock()
	i := r.calls
	r.calls++
	r.mu.Unlock()

	r.started <- i
	select {
	case st := <-r.replies[i]:
		return st
	case <-ctx.Done():
		return session.State{Status: session.StatusUnknown}
	}
}

type fixedResolver session.State

func (f fixedResolver) Resolve(context.Context, remote.Credentials) session.State {
	return session.State(f)
}

var coach = session.State{Status: session.StatusAuthenticated, Role: model.RoleCoach, UserID: "1"}

func TestProvider(t *testing.T) {
	Convey("Given a session provider", t, func() {
		p := session.NewProvider(fixedResolver(coach))
		defer p.Close()

		Convey("Then it starts unknown", func() {
			So(p.State().Status, ShouldEqual, session.StatusUnknown)
		})

		Convey("When a subscriber is registered and the session refreshes", func() {
			var got []session.State
			unsubscribe := p.Subscribe(func(st session.State) { got = append(got, st) })
			st, applied := p.Refresh(context.Background(), remote.Credentials{})

			Convey("Then the subscriber sees the new state", func() {
				So(applied, ShouldBeTrue)
				So(st, ShouldResemble, coach)
				So(p.State(), ShouldResemble, coach)
				So(got, ShouldHaveLength, 1)
			})

			Convey("Then an unsubscribed listener is not called again", func() {
				unsubscribe()
				unsubscribe()
				p.Refresh(context.Background(), remote.Credentials{})
				So(got, ShouldHaveLength, 1)
			})
		})

		Convey("When the refresh context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			calls := 0
			p.Subscribe(func(session.State) { calls++ })
			_, applied := p.Refresh(ctx, remote.Credentials{})

			Convey("Then the result is discarded", func() {
				So(applied, ShouldBeFalse)
				So(calls, ShouldEqual, 0)
				So(p.State().Status, ShouldEqual, session.StatusUnknown)
			})
		})
	})
}

func TestProviderDiscardsStaleRefresh(t *testing.T) {
	r := newScriptedResolver(2)
	p := session.NewProvider(r)
	defer p.Close()

	var mu sync.Mutex
	var seen []session.State
	p.Subscribe(func(st session.State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, st)
	})

	staleDone := make(chan bool)
	go func() {
		_, applied := p.Refresh(context.Background(), remote.Credentials{})
		staleDone <- applied
	}()
	<-r.started

	freshDone := make(chan bool)
	go func() {
		_, applied := p.Refresh(context.Background(), remote.Credentials{})
		freshDone <- applied
	}()
	<-r.started

	// the newer check completes first, then the older one
	fresh := session.State{Status: session.StatusUnauthenticated, Role: model.RoleNone}
	r.replies[1] <- fresh
	if !<-freshDone {
		t.Fatal("latest refresh was not applied")
	}
	r.replies[0] <- coach
	if <-staleDone {
		t.Fatal("stale refresh was applied")
	}

	if st := p.State(); st.Status != session.StatusUnauthenticated {
		t.Errorf("state = %s, want unauthenticated", st.Status)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 {
		t.Errorf("subscribers notified %d times, want 1", len(seen))
	}
}

func TestProviderCloseWaitsAndDetaches(t *testing.T) {
	r := newScriptedResolver(1)
	p := session.NewProvider(r)

	var calls atomic.Int32
	p.Subscribe(func(session.State) { calls.Add(1) })
	p.RefreshAsync(context.Background(), remote.Credentials{})
	<-r.started

	go func() {
		time.Sleep(20 * time.Millisecond)
		r.replies[0] <- coach
	}()
	p.Close()

	if n := calls.Load(); n != 0 {
		t.Errorf("subscriber called %d times after close", n)
	}
	if st := p.State(); st.Status != session.StatusUnknown {
		t.Errorf("state after close = %s, want unknown", st.Status)
	}
	if _, applied := p.Refresh(context.Background(), remote.Credentials{}); applied {
		t.Error("refresh after close was applied")
	}
}
