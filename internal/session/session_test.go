package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/filter"
	"github.com/javiermolinar/coursecal/internal/navigation"
)

// memStore is an in-memory event.Store for tests.
type memStore struct {
	events map[string]*event.CalendarEvent
	nextID int
	calls  int
	err    error
}

func newMemStore(events ...*event.CalendarEvent) *memStore {
	m := &memStore{events: make(map[string]*event.CalendarEvent)}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *memStore) ListEvents(_ context.Context, from, to time.Time, courseID string) ([]*event.CalendarEvent, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	window := dateutil.DateRange{Start: from, End: to}
	var out []*event.CalendarEvent
	for _, e := range m.events {
		if courseID != "" && e.HasCourse() && e.CourseID != courseID {
			continue
		}
		if e.IsRecurring() {
			if !e.StartTime.After(window.EndExclusive()) {
				out = append(out, e)
			}
			continue
		}
		for _, d := range e.Days() {
			if window.Contains(d) {
				out = append(out, e)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return event.ByStart(out[i], out[j]) < 0 })
	return out, nil
}

func (m *memStore) GetEvent(_ context.Context, id string) (*event.CalendarEvent, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return e, nil
}

func (m *memStore) CreateEvent(_ context.Context, d event.Draft) (*event.CalendarEvent, error) {
	e, err := event.New(d, now)
	if err != nil {
		return nil, err
	}
	m.nextID++
	e.ID = fmt.Sprintf("new%d", m.nextID)
	m.events[e.ID] = e
	return e, nil
}

func (m *memStore) UpdateEvent(_ context.Context, id string, p event.Patch) (*event.CalendarEvent, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	updated, err := e.Apply(p, now)
	if err != nil {
		return nil, err
	}
	m.events[id] = updated
	return updated, nil
}

func (m *memStore) DeleteEvent(_ context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return event.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memStore) Close() error { return nil }

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func ev(id, start string, typ event.Type) *event.CalendarEvent {
	return &event.CalendarEvent{
		ID:         id,
		Title:      "Event " + id,
		Type:       typ,
		StartTime:  at(start),
		EndTime:    ptr(at(start).Add(time.Hour)),
		Priority:   event.PriorityMedium,
		Visibility: event.VisibilityPrivate,
	}
}

func newSession(store event.Store, view navigation.View) *Session {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return now }
	opts.View = view
	return New(store, opts)
}

func ids(events []*event.CalendarEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestRefreshAndNeedsFetch(t *testing.T) {
	store := newMemStore(ev("a", "2024-03-15 09:00", event.TypeLecture))
	s := newSession(store, navigation.ViewMonth)
	ctx := context.Background()

	if !s.NeedsFetch() {
		t.Fatal("a fresh session needs a fetch")
	}
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.NeedsFetch() {
		t.Error("window was just fetched")
	}

	// Week and day views of the same date lie inside the month window.
	if s.SetView(navigation.ViewWeek) {
		t.Error("week inside fetched month window should not need a fetch")
	}
	if s.SelectDay(at("2024-03-20 00:00")) {
		t.Error("day inside fetched window should not need a fetch")
	}
	if s.SetView(navigation.ViewAgenda) == false {
		t.Error("agenda window reaches beyond the month window")
	}

	// Filters and search never need a fetch.
	s.SetView(navigation.ViewMonth)
	s.SetFilters(filter.Filters{EventTypes: []event.Type{event.TypeExam}})
	s.SetSearch("calculus")
	if store.calls != 1 {
		t.Errorf("got %d store calls, want 1", store.calls)
	}
}

func TestCompleteFetch_LastRequestWins(t *testing.T) {
	store := newMemStore()
	s := newSession(store, navigation.ViewMonth)

	march := s.BeginFetch()
	s.Navigate(navigation.Next)
	april := s.BeginFetch()

	stale := []*event.CalendarEvent{ev("march", "2024-03-15 09:00", event.TypeLecture)}
	if err := s.CompleteFetch(march, stale, nil); !errors.Is(err, ErrStaleFetch) {
		t.Fatalf("got %v, want ErrStaleFetch", err)
	}
	if len(s.Snapshot()) != 0 {
		t.Error("stale result must not land in the snapshot")
	}

	fresh := []*event.CalendarEvent{ev("april", "2024-04-15 09:00", event.TypeLecture)}
	if err := s.CompleteFetch(april, fresh, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(s.Snapshot()); !slices.Equal(got, []string{"april"}) {
		t.Errorf("got %v", got)
	}
}

func TestCompleteFetch_NavigationInvalidatesPending(t *testing.T) {
	s := newSession(newMemStore(), navigation.ViewMonth)
	pending := s.BeginFetch()
	s.Navigate(navigation.Next)

	if err := s.CompleteFetch(pending, nil, nil); !errors.Is(err, ErrStaleFetch) {
		t.Errorf("got %v, want ErrStaleFetch", err)
	}
}

func TestCompleteFetch_ErrorKeepsSnapshot(t *testing.T) {
	store := newMemStore(ev("a", "2024-03-15 09:00", event.TypeLecture))
	s := newSession(store, navigation.ViewMonth)
	ctx := context.Background()

	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	offline := errors.New("network unreachable")
	store.err = offline
	err := s.Refresh(ctx)
	if !errors.Is(err, offline) {
		t.Fatalf("got %v, want wrapped network error", err)
	}
	if !errors.Is(s.LastError(), offline) {
		t.Errorf("got last error %v", s.LastError())
	}
	if got := ids(s.Visible()); !slices.Equal(got, []string{"a"}) {
		t.Errorf("projection after failed fetch: got %v, want [a]", got)
	}

	store.err = nil
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LastError() != nil {
		t.Error("successful fetch should clear the last error")
	}
}

func TestVisible_PipelineOrder(t *testing.T) {
	lecture := ev("lecture", "2024-03-11 09:00", event.TypeLecture)
	lecture.Recurrence = &event.Recurrence{Frequency: event.Weekly, Count: 3}
	malformed := ev("bad", "2024-03-12 09:00", event.TypeExam)
	malformed.EndTime = ptr(malformed.StartTime.Add(-time.Hour))
	cancelled := ev("cancelled", "2024-03-13 09:00", event.TypeMeeting)
	cancelled.IsCancelled = true
	exam := ev("exam", "2024-03-14 09:00", event.TypeExam)

	store := newMemStore(lecture, malformed, cancelled, exam)
	s := newSession(store, navigation.ViewMonth)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"lecture@2024-03-11", "lecture@2024-03-18", "lecture@2024-03-25", "exam"}
	got := ids(s.Visible())
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	s.SetSearch("exam")
	if got := ids(s.Visible()); !slices.Equal(got, []string{"exam"}) {
		t.Errorf("search: got %v", got)
	}
}

func TestProjections(t *testing.T) {
	a := ev("a", "2024-03-15 09:00", event.TypeLecture)
	b := ev("b", "2024-03-15 09:30", event.TypeMeeting)
	holiday := &event.CalendarEvent{
		ID: "holiday", Title: "Holiday", Type: event.TypeHoliday,
		StartTime: at("2024-03-15 00:00"), IsAllDay: true,
		Priority: event.PriorityLow, Visibility: event.VisibilityPublic,
	}
	store := newMemStore(a, b, holiday)
	s := newSession(store, navigation.ViewMonth)
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	grid := s.Month()
	if len(grid.Cells) != 42 || grid.Month != time.March {
		t.Fatalf("got %d cells for %s", len(grid.Cells), grid.Month)
	}

	s.SetView(navigation.ViewWeek)
	week := s.Week()
	if len(week.Days) != 7 || !week.ShowsNow {
		t.Fatalf("got %d days, now shown %v", len(week.Days), week.ShowsNow)
	}
	friday := week.Timeline[5]
	if len(friday) != 2 || friday[0].TotalColumns != 2 {
		t.Errorf("got friday placements %+v", friday)
	}
	if len(week.Lanes[5].Events) != 1 {
		t.Errorf("got %d all-day events on friday", len(week.Lanes[5].Events))
	}

	s.Navigate(navigation.Next)
	next := s.Week()
	if next.ShowsNow {
		t.Error("next week does not contain today")
	}
	if !next.IsEmpty {
		t.Error("next week should be empty")
	}

	s.GoToToday()
	s.SetView(navigation.ViewDay)
	day := s.Day()
	if len(day.Days) != 1 || len(day.Timeline[0]) != 2 {
		t.Errorf("got day view %+v", day)
	}

	s.SetView(navigation.ViewAgenda)
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	groups := s.Agenda()
	if len(groups) != 1 || len(groups[0].Events) != 3 || groups[0].Events[0].ID != "holiday" {
		t.Errorf("got agenda %+v", groups)
	}
}

func TestTitle(t *testing.T) {
	s := newSession(newMemStore(), navigation.ViewDay)
	if got := s.Title(); got != "Friday, March 15, 2024" {
		t.Errorf("got %q", got)
	}
}
