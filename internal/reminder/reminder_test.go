package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/coursecal/internal/event"
)

func at(d, h, m int) time.Time {
	return time.Date(2024, 3, d, h, m, 0, 0, time.UTC)
}

func ev(id string, start time.Time, minutes int) *event.CalendarEvent {
	return &event.CalendarEvent{
		ID: id, Title: id, Type: event.TypeLecture,
		Priority: event.PriorityMedium, Visibility: event.VisibilityPrivate,
		StartTime: start, ReminderMinutes: minutes,
	}
}

func ids(rs []Reminder) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Event.ID
	}
	return out
}

func TestDue(t *testing.T) {
	cancelled := ev("cancelled", at(15, 10, 0), 15)
	cancelled.IsCancelled = true

	events := []*event.CalendarEvent{
		ev("late", at(15, 11, 0), 60),   // fires 10:00
		ev("early", at(15, 10, 0), 15),  // fires 09:45
		ev("none", at(15, 10, 0), 0),    // no reminder
		ev("edge", at(15, 9, 45), 15),   // fires 09:30, excluded bound
		ev("end", at(15, 10, 15), 15),   // fires 10:00, included bound
		ev("day", at(16, 9, 50), 1440),  // fires 15th 09:50
		ev("outside", at(15, 12, 0), 5), // fires 11:55
		cancelled,
	}

	got := Due(events, at(15, 9, 30), at(15, 10, 0))
	want := []string{"early", "day", "end", "late"}
	if g := ids(got); !equal(g, want) {
		t.Fatalf("Due() = %v, want %v", g, want)
	}
	if !got[0].At.Equal(at(15, 9, 45)) {
		t.Errorf("At = %v", got[0].At)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFireTime(t *testing.T) {
	if _, ok := FireTime(ev("x", at(15, 10, 0), 0)); ok {
		t.Error("zero reminder should not fire")
	}
	got, ok := FireTime(ev("x", at(15, 10, 0), 10080))
	if !ok || !got.Equal(at(8, 10, 0)) {
		t.Errorf("FireTime() = %v, %v", got, ok)
	}
}

func TestParseSchedule(t *testing.T) {
	for _, spec := range []string{"@every 1m", "*/5 * * * *", "@hourly"} {
		if _, err := ParseSchedule(spec); err != nil {
			t.Errorf("ParseSchedule(%q): %v", spec, err)
		}
	}
	for _, spec := range []string{"", "every minute", "* * *"} {
		if _, err := ParseSchedule(spec); err == nil {
			t.Errorf("ParseSchedule(%q) should fail", spec)
		}
	}
}

type fakeStore struct {
	event.Store
	events []*event.CalendarEvent
}

func (f *fakeStore) ListEvents(_ context.Context, from, to time.Time, _ string) ([]*event.CalendarEvent, error) {
	return f.events, nil
}

type recorder struct {
	got  []string
	fail string
}

func (r *recorder) Notify(_ context.Context, rem Reminder) error {
	if rem.Event.ID == r.fail {
		r.fail = ""
		return errors.New("notification daemon not running")
	}
	r.got = append(r.got, rem.Event.ID)
	return nil
}

func TestWatcher_Check(t *testing.T) {
	series := ev("seminar", at(4, 10, 0), 30)
	series.Recurrence = &event.Recurrence{Frequency: event.Weekly}
	store := &fakeStore{events: []*event.CalendarEvent{
		ev("exam", at(15, 10, 10), 10),
		series,
		ev("later", at(15, 11, 0), 15),
	}}

	now := at(11, 9, 0)
	rec := &recorder{}
	w, err := NewWatcher(store, rec, Options{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	if n, err := w.Check(context.Background()); err != nil || n != 0 {
		t.Fatalf("first check = %d, %v", n, err)
	}

	now = at(11, 9, 31)
	if n, err := w.Check(context.Background()); err != nil || n != 1 {
		t.Fatalf("second check = %d, %v", n, err)
	}
	if !equal(rec.got, []string{"seminar@2024-03-11"}) {
		t.Errorf("got %v", rec.got)
	}

	// Running again without time passing delivers nothing twice.
	if n, _ := w.Check(context.Background()); n != 0 {
		t.Errorf("repeat check delivered %d", n)
	}
}

func TestWatcher_RetriesFailedNotification(t *testing.T) {
	store := &fakeStore{events: []*event.CalendarEvent{
		ev("a", at(15, 10, 0), 10),
		ev("b", at(15, 10, 5), 10),
	}}
	now := at(15, 9, 0)
	rec := &recorder{fail: "a"}
	w, err := NewWatcher(store, rec, Options{Location: time.UTC, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Check(context.Background()); err != nil {
		t.Fatal(err)
	}

	now = at(15, 10, 0)
	if _, err := w.Check(context.Background()); err == nil {
		t.Fatal("expected the notifier error")
	}
	n, err := w.Check(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("retry = %d, %v", n, err)
	}
	if !equal(rec.got, []string{"a", "b"}) {
		t.Errorf("got %v", rec.got)
	}
}

func TestWatcher_Lookahead(t *testing.T) {
	store := &fakeStore{events: []*event.CalendarEvent{ev("quiz", at(15, 10, 0), 15)}}
	now := at(15, 9, 40)
	rec := &recorder{}
	w, err := NewWatcher(store, rec, Options{
		Location:  time.UTC,
		Lookahead: 5 * time.Minute,
		Now:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatal(err)
	}
	// First check covers (09:40, 09:45]; the 09:45 reminder is delivered early.
	if n, err := w.Check(context.Background()); err != nil || n != 1 {
		t.Fatalf("check = %d, %v", n, err)
	}
}

func TestNewWatcher_Invalid(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	if _, err := NewWatcher(store, rec, Options{Schedule: "not cron"}); err == nil {
		t.Error("expected schedule error")
	}
	if _, err := NewWatcher(store, rec, Options{Lookahead: -time.Minute}); err == nil {
		t.Error("expected lookahead error")
	}
	if _, err := NewWatcher(nil, rec, Options{}); err == nil {
		t.Error("expected missing store error")
	}
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	w, err := NewWatcher(&fakeStore{}, &recorder{}, Options{Schedule: "@every 1h"})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
