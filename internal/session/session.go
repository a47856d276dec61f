// Package session holds the calendar's UI-session state: navigation,
// filters, search and the last successfully fetched event snapshot. It runs
// the render pipeline (expand, sanitize, filter, project) on demand.
//
// A Session is not safe for concurrent use. Fetches may run elsewhere, but
// their results must be handed back through CompleteFetch on the owning
// goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/filter"
	"github.com/javiermolinar/coursecal/internal/layout"
	"github.com/javiermolinar/coursecal/internal/navigation"
	"github.com/javiermolinar/coursecal/internal/recurrence"
)

// Errors.
var (
	// ErrStaleFetch is returned when a fetch result arrives for a ticket that
	// a later navigation has superseded. The result is discarded.
	ErrStaleFetch = errors.New("fetch result superseded by a newer request")
	// ErrNotOccurrence is returned when an id does not name a series occurrence.
	ErrNotOccurrence = errors.New("event is not an occurrence of a recurring series")
)

// Options configure a Session.
type Options struct {
	// Now is the clock. Nil means time.Now.
	Now    func() time.Time
	Logger *zap.Logger

	View       navigation.View
	Navigation navigation.Options
	Layout     layout.Options
	Filters    *filter.Filters // nil means filter.Default()

	// CourseID scopes fetches to one course. Empty means all courses.
	CourseID string
}

// DefaultOptions returns options with the default clock, views and filters.
func DefaultOptions() Options {
	return Options{
		Now:        time.Now,
		Logger:     zap.NewNop(),
		View:       navigation.ViewMonth,
		Navigation: navigation.DefaultOptions(),
		Layout:     layout.DefaultOptions(),
	}
}

// Ticket identifies one fetch request. Only the newest ticket's result is
// accepted.
type Ticket struct {
	Seq    uint64
	Window dateutil.DateRange
}

// Session is the state behind one calendar view.
type Session struct {
	store  event.Store
	now    func() time.Time
	logger *zap.Logger
	opts   Options

	state   navigation.State
	filters filter.Filters
	search  string

	snapshot []*event.CalendarEvent // unexpanded, as returned by the store
	fetched  dateutil.DateRange     // window the snapshot was fetched for
	seq      uint64
	lastErr  error
}

// New creates a session over store. Nothing is fetched until Refresh or
// BeginFetch is called.
func New(store event.Store, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	filters := filter.Default()
	if opts.Filters != nil {
		filters = *opts.Filters
	}
	return &Session{
		store:   store,
		now:     opts.Now,
		logger:  opts.Logger,
		opts:    opts,
		state:   navigation.New(opts.Now(), opts.View),
		filters: filters,
	}
}

// State returns the navigation state.
func (s *Session) State() navigation.State {
	return s.state
}

// Filters returns the active filters.
func (s *Session) Filters() filter.Filters {
	return s.filters
}

// SearchTerm returns the active search text.
func (s *Session) SearchTerm() string {
	return s.search
}

// Title returns the header text for the current state.
func (s *Session) Title() string {
	return s.state.Title(s.opts.Navigation)
}

// Window returns the fetch window of the current state.
func (s *Session) Window() dateutil.DateRange {
	return s.state.FetchWindow(s.opts.Navigation)
}

// LastError returns the error of the last failed fetch, or nil if the last
// completed fetch succeeded.
func (s *Session) LastError() error {
	return s.lastErr
}

// Snapshot returns the raw events of the last successful fetch.
func (s *Session) Snapshot() []*event.CalendarEvent {
	return s.snapshot
}

// NeedsFetch reports whether the current window reaches beyond the last
// successfully fetched one.
func (s *Session) NeedsFetch() bool {
	return s.fetched.IsZero() || !s.fetched.Covers(s.Window())
}

// BeginFetch issues a ticket for the current window, superseding every
// earlier ticket.
func (s *Session) BeginFetch() Ticket {
	s.seq++
	return Ticket{Seq: s.seq, Window: s.Window()}
}

// Load fetches the events of a ticket's window from the store. It does not
// touch session state, so it may run on another goroutine.
func (s *Session) Load(ctx context.Context, t Ticket) ([]*event.CalendarEvent, error) {
	return s.store.ListEvents(ctx, t.Window.Start, t.Window.End, s.opts.CourseID)
}

// CompleteFetch hands a fetch result back to the session.
//
// Results of superseded tickets are dropped with ErrStaleFetch. A failed
// fetch keeps the previous snapshot so projections stay on stale but valid
// data; the error is returned for the caller to surface.
func (s *Session) CompleteFetch(t Ticket, events []*event.CalendarEvent, err error) error {
	if t.Seq != s.seq {
		s.logger.Debug("discarding stale fetch",
			zap.Uint64("ticket", t.Seq),
			zap.Uint64("current", s.seq),
			zap.Stringer("window", t.Window),
		)
		return ErrStaleFetch
	}
	if err != nil {
		s.lastErr = err
		s.logger.Error("fetching events",
			zap.Error(err),
			zap.Stringer("window", t.Window),
		)
		return fmt.Errorf("fetching events for %s: %w", t.Window, err)
	}
	s.snapshot = events
	s.fetched = t.Window
	s.lastErr = nil
	return nil
}

// Refresh fetches the current window synchronously.
func (s *Session) Refresh(ctx context.Context) error {
	t := s.BeginFetch()
	events, err := s.Load(ctx, t)
	return s.CompleteFetch(t, events, err)
}

// Navigate moves by the view's unit. It returns whether a fetch is needed.
func (s *Session) Navigate(dir navigation.Direction) bool {
	return s.move(s.state.Navigate(dir))
}

// GoToToday moves to today's date. It returns whether a fetch is needed.
func (s *Session) GoToToday() bool {
	return s.move(s.state.GoToToday(s.now()))
}

// SetView switches views. It returns whether a fetch is needed.
func (s *Session) SetView(v navigation.View) bool {
	return s.move(s.state.SetView(v))
}

// SelectDay opens date in the day view. It returns whether a fetch is needed.
func (s *Session) SelectDay(date time.Time) bool {
	return s.move(s.state.SelectDay(date))
}

// GoTo moves to date, keeping the view. It returns whether a fetch is needed.
func (s *Session) GoTo(date time.Time) bool {
	next := s.state
	next.CurrentDate = dateutil.TruncateToDay(date)
	return s.move(next)
}

// move switches to next and invalidates any fetch still in flight, since its
// window belongs to the previous state.
func (s *Session) move(next navigation.State) bool {
	if next != s.state {
		s.seq++
	}
	s.state = next
	return s.NeedsFetch()
}

// SetFilters replaces the filters. Filtering never triggers a fetch.
func (s *Session) SetFilters(f filter.Filters) {
	s.filters = f
}

// SetSearch replaces the search text. Searching never triggers a fetch.
func (s *Session) SetSearch(term string) {
	s.search = term
}

// Visible returns the events of the current window after recurrence
// expansion, dropping malformed records, and filtering.
func (s *Session) Visible() []*event.CalendarEvent {
	return s.visibleIn(s.Window(), s.state.View == navigation.ViewAgenda)
}

// visibleIn runs the pipeline over window. The agenda also searches locations.
func (s *Session) visibleIn(window dateutil.DateRange, agenda bool) []*event.CalendarEvent {
	expanded, failed := recurrence.ExpandAll(s.snapshot, window)
	valid, rejected := event.Sanitize(expanded)
	for _, r := range append(failed, rejected...) {
		s.logger.Warn("skipping malformed event",
			zap.String("id", r.Event.ID),
			zap.String("title", r.Event.Title),
			zap.Error(r.Err),
		)
	}
	search := filter.Search{
		Term:          s.search,
		MatchLocation: agenda,
	}
	return filter.Apply(valid, s.filters, search, s.now())
}

// Month projects the current month onto the 42-cell grid.
func (s *Session) Month() layout.MonthGrid {
	d := s.state.CurrentDate
	return layout.BuildMonthGrid(d.Year(), d.Month(), s.Visible(), s.now(), s.layoutOptions())
}

// TimelineView is the projection behind the week and day views.
type TimelineView struct {
	Days      []time.Time
	Lanes     []layout.Lane
	Timeline  [][]layout.Placement
	Now       layout.NowIndicator
	ShowsNow  bool
	IsEmpty   bool
	AllEvents []*event.CalendarEvent
}

// Week projects the week containing the current date.
func (s *Session) Week() TimelineView {
	first, _ := dateutil.WeekRange(s.state.CurrentDate, s.opts.Navigation.WeekStart)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return s.timeline(days)
}

// Day projects the current date.
func (s *Session) Day() TimelineView {
	return s.timeline([]time.Time{dateutil.TruncateToDay(s.state.CurrentDate)})
}

func (s *Session) timeline(days []time.Time) TimelineView {
	window := dateutil.DateRange{Start: days[0], End: days[len(days)-1]}
	events := s.visibleIn(window, false)
	opts := s.layoutOptions()

	v := TimelineView{
		Days:      days,
		Lanes:     layout.AllDayLanes(events, days),
		Timeline:  layout.PositionWeek(events, days, opts),
		AllEvents: events,
	}
	v.Now, v.ShowsNow = layout.Now(days, s.now())

	v.IsEmpty = layout.MaxLaneDepth(v.Lanes) == 0
	for _, day := range v.Timeline {
		if len(day) > 0 {
			v.IsEmpty = false
		}
	}
	return v
}

// Agenda groups the agenda window by day.
func (s *Session) Agenda() []layout.DayGroup {
	window := s.state.SetView(navigation.ViewAgenda).FetchWindow(s.opts.Navigation)
	return layout.GroupAgenda(s.visibleIn(window, true), window)
}

func (s *Session) layoutOptions() layout.Options {
	opts := s.opts.Layout
	opts.WeekStart = s.opts.Navigation.WeekStart
	return opts
}
