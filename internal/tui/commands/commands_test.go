package commands

import (
	"context"
	"testing"
	"time"

	"github.com/javiermolinar/coursecal/internal/db"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/navigation"
	"github.com/javiermolinar/coursecal/internal/session"
)

var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *db.SQLite {
	t.Helper()
	store, err := db.New(":memory:", db.WithLocation(time.UTC), db.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFetch(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if _, err := store.CreateEvent(ctx, event.Draft{
		Title:     "Lecture",
		Type:      event.TypeLecture,
		StartTime: time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	opts := session.DefaultOptions()
	opts.Now = func() time.Time { return testNow }
	opts.View = navigation.ViewWeek
	s := session.New(store, opts)

	ticket := s.BeginFetch()
	msg := Fetch(ctx, s, ticket)()
	fetched, ok := msg.(FetchedMsg)
	if !ok {
		t.Fatalf("msg = %T, want FetchedMsg", msg)
	}
	if fetched.Err != nil {
		t.Fatalf("fetch error: %v", fetched.Err)
	}
	if fetched.Ticket != ticket {
		t.Fatalf("ticket = %+v, want %+v", fetched.Ticket, ticket)
	}
	if len(fetched.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(fetched.Events))
	}
	if err := s.CompleteFetch(fetched.Ticket, fetched.Events, fetched.Err); err != nil {
		t.Fatalf("CompleteFetch: %v", err)
	}
}

func TestBuildSummary(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for _, day := range []int{10, 11} {
		if _, err := store.CreateEvent(ctx, event.Draft{
			Title:     "Quiz",
			Type:      event.TypeQuiz,
			StartTime: time.Date(2025, 3, day, 14, 0, 0, 0, time.UTC),
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	opts := session.DefaultOptions()
	opts.Now = func() time.Time { return testNow }
	opts.View = navigation.ViewWeek
	s := session.New(store, opts)

	msg := BuildSummary(ctx, store, nil, s.Window(), "", testNow, false)()
	got, ok := msg.(SummaryMsg)
	if !ok {
		t.Fatalf("msg = %T (%v), want SummaryMsg", msg, msg)
	}
	if got.Summary.Total != 2 {
		t.Fatalf("Total = %d, want 2", got.Summary.Total)
	}
}

func TestCopyURL_NoURL(t *testing.T) {
	msg := CopyURL(&event.CalendarEvent{Title: "Exam"})()
	status, ok := msg.(StatusMsgCmd)
	if !ok {
		t.Fatalf("msg = %T, want StatusMsgCmd", msg)
	}
	if status.Msg != "No meeting URL" {
		t.Fatalf("status = %q", status.Msg)
	}
}

func TestStatus(t *testing.T) {
	msg := Status("saved")()
	if got, ok := msg.(StatusMsgCmd); !ok || got.Msg != "saved" {
		t.Fatalf("msg = %#v, want StatusMsgCmd{saved}", msg)
	}
}
