// Package navigation tracks which date and view the calendar shows and
// derives the fetch window for it.
package navigation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
)

// ErrUnknownView is returned by ParseView for unrecognized names.
var ErrUnknownView = errors.New("view must be month, week, day or agenda")

// View is one of the four calendar projections.
type View string

const (
	ViewMonth  View = "MONTH"
	ViewWeek   View = "WEEK"
	ViewDay    View = "DAY"
	ViewAgenda View = "AGENDA"
)

// Views lists the views in switcher order.
func Views() []View {
	return []View{ViewMonth, ViewWeek, ViewDay, ViewAgenda}
}

// ParseView parses a view name case-insensitively.
func ParseView(s string) (View, error) {
	v := View(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case ViewMonth, ViewWeek, ViewDay, ViewAgenda:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Label returns the view name in title case, e.g. "Month".
func (v View) Label() string {
	s := strings.ToLower(string(v))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Direction is a navigation step.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Options tune the fetch window.
type Options struct {
	WeekStart        time.Weekday
	AgendaPastDays   int
	AgendaFutureDays int
}

// DefaultOptions returns Sunday-start weeks and a 30/60 day agenda.
func DefaultOptions() Options {
	return Options{
		WeekStart:        time.Sunday,
		AgendaPastDays:   30,
		AgendaFutureDays: 60,
	}
}

// State is the navigation state. It is a value: every transition returns a
// new State and leaves the receiver untouched.
type State struct {
	CurrentDate time.Time
	View        View
}

// New creates a state showing now's date in the given view.
// An empty view defaults to month.
func New(now time.Time, view View) State {
	if view == "" {
		view = ViewMonth
	}
	return State{CurrentDate: dateutil.TruncateToDay(now), View: view}
}

// Navigate moves by the view's natural unit: one month, seven days or one
// day. Month steps keep the day of month, clamped to the month's end.
// The agenda view has no unit and is returned unchanged.
func (s State) Navigate(dir Direction) State {
	n := int(dir)
	switch s.View {
	case ViewMonth:
		s.CurrentDate = dateutil.AddMonthsClamped(s.CurrentDate, n)
	case ViewWeek:
		s.CurrentDate = s.CurrentDate.AddDate(0, 0, 7*n)
	case ViewDay:
		s.CurrentDate = s.CurrentDate.AddDate(0, 0, n)
	}
	return s
}

// GoToToday moves to now's date in any view.
func (s State) GoToToday(now time.Time) State {
	s.CurrentDate = dateutil.TruncateToDay(now)
	return s
}

// SetView switches the view and keeps the current date.
func (s State) SetView(v View) State {
	s.View = v
	return s
}

// SelectDay focuses a specific day and switches to the day view,
// as when a day is picked in the month or week view.
func (s State) SelectDay(date time.Time) State {
	s.CurrentDate = dateutil.TruncateToDay(date)
	s.View = ViewDay
	return s
}

// IsToday reports whether the current date is now's date.
func (s State) IsToday(now time.Time) bool {
	return dateutil.SameDay(s.CurrentDate, now)
}

// FetchWindow returns the inclusive date range to load for the state:
//   - month: first day of the previous month through last day of the next
//   - week: the seven days of the week containing the current date
//   - day: the current date only
//   - agenda: AgendaPastDays before through AgendaFutureDays after
func (s State) FetchWindow(opts Options) dateutil.DateRange {
	d := dateutil.TruncateToDay(s.CurrentDate)
	switch s.View {
	case ViewWeek:
		first, last := dateutil.WeekRange(d, opts.WeekStart)
		return dateutil.DateRange{Start: first, End: last}
	case ViewDay:
		return dateutil.DateRange{Start: d, End: d}
	case ViewAgenda:
		return dateutil.DateRange{
			Start: d.AddDate(0, 0, -opts.AgendaPastDays),
			End:   d.AddDate(0, 0, opts.AgendaFutureDays),
		}
	default:
		first := time.Date(d.Year(), d.Month()-1, 1, 0, 0, 0, 0, d.Location())
		last := time.Date(d.Year(), d.Month()+2, 0, 0, 0, 0, 0, d.Location())
		return dateutil.DateRange{Start: first, End: last}
	}
}

// VisibleRange returns the days the view actually draws. For the month view
// that is the 42-day grid, for the others it matches FetchWindow.
func (s State) VisibleRange(opts Options) dateutil.DateRange {
	if s.View != ViewMonth {
		return s.FetchWindow(opts)
	}
	first, _ := dateutil.MonthRange(s.CurrentDate)
	start, _ := dateutil.WeekRange(first, opts.WeekStart)
	return dateutil.DateRange{Start: start, End: start.AddDate(0, 0, 41)}
}

// Title returns the header text for the state, e.g. "March 2024",
// "March 3-9, 2024", "Feb 25 - Mar 2, 2024" or "Friday, March 15, 2024".
func (s State) Title(opts Options) string {
	d := s.CurrentDate
	switch s.View {
	case ViewWeek:
		first, last := dateutil.WeekRange(d, opts.WeekStart)
		switch {
		case first.Month() == last.Month():
			return fmt.Sprintf("%s %d-%d, %d", first.Month(), first.Day(), last.Day(), first.Year())
		case first.Year() == last.Year():
			return fmt.Sprintf("%s - %s, %d", first.Format("Jan 2"), last.Format("Jan 2"), first.Year())
		default:
			return fmt.Sprintf("%s - %s", first.Format("Jan 2, 2006"), last.Format("Jan 2, 2006"))
		}
	case ViewDay:
		return d.Format("Monday, January 2, 2006")
	default:
		return d.Format("January 2006")
	}
}
