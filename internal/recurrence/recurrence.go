// Package recurrence materializes the occurrences of recurring events
// inside a date window.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
)

// MaxOccurrences caps the occurrences produced for one series in one window.
const MaxOccurrences = 5000

// Expand returns the occurrences of e whose days fall inside window.
// A non-recurring event is returned as-is in a one-element slice.
//
// Each occurrence is a copy of the series with its own id
// (see event.OccurrenceID), SeriesID set to the series id, no recurrence
// rule and the start/end shifted to the occurrence.
func Expand(e *event.CalendarEvent, window dateutil.DateRange) ([]*event.CalendarEvent, error) {
	if !e.IsRecurring() {
		return []*event.CalendarEvent{e}, nil
	}
	starts, err := Starts(e, window)
	if err != nil {
		return nil, err
	}
	out := make([]*event.CalendarEvent, 0, len(starts))
	for _, start := range starts {
		out = append(out, occurrence(e, start))
	}
	return out, nil
}

// ExpandAll expands every event in events. Series whose rule cannot be
// built are reported in failed and left out; the rest keep input order,
// with a series' occurrences in chronological order at its position.
func ExpandAll(events []*event.CalendarEvent, window dateutil.DateRange) (out []*event.CalendarEvent, failed []event.Rejected) {
	out = make([]*event.CalendarEvent, 0, len(events))
	for _, e := range events {
		occ, err := Expand(e, window)
		if err != nil {
			failed = append(failed, event.Rejected{Event: e, Err: err})
			continue
		}
		out = append(out, occ...)
	}
	return out, failed
}

// Starts returns the start instants of e's occurrences that touch window,
// in chronological order.
func Starts(e *event.CalendarEvent, window dateutil.DateRange) ([]time.Time, error) {
	if e.Recurrence == nil {
		return nil, fmt.Errorf("%w: event %q does not recur", event.ErrRecurrenceMismatch, e.ID)
	}
	set, err := buildSet(e)
	if err != nil {
		return nil, err
	}

	loc := e.StartTime.Location()
	// All-day occurrences spanning several days may start before the window
	// and still cover its first day.
	span := len(e.Days()) - 1
	from := dateutil.TruncateToDay(window.Start.In(loc)).AddDate(0, 0, -span)
	to := dateutil.TruncateToDay(window.End.In(loc)).AddDate(0, 0, 1).Add(-time.Nanosecond)

	starts := set.Between(from, to, true)
	if len(starts) > MaxOccurrences {
		starts = starts[:MaxOccurrences]
	}
	return starts, nil
}

// Rule builds the rrule for e's recurrence, anchored at e's start.
// Until is inclusive of its whole day.
func Rule(e *event.CalendarEvent) (*rrule.RRule, error) {
	r := e.Recurrence
	if err := r.Validate(); err != nil {
		return nil, err
	}
	opt := rrule.ROption{
		Freq:      frequencies[r.Frequency],
		Interval:  r.Step(),
		Count:     r.Count,
		Dtstart:   e.StartTime,
		Byweekday: toWeekdays(r.ByWeekday),
	}
	if r.Until != nil {
		until := dateutil.TruncateToDay(r.Until.In(e.StartTime.Location()))
		opt.Until = until.AddDate(0, 0, 1).Add(-time.Second)
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", event.ErrInvalidRecurrence, err)
	}
	return rule, nil
}

func buildSet(e *event.CalendarEvent) (*rrule.Set, error) {
	rule, err := Rule(e)
	if err != nil {
		return nil, err
	}
	set := &rrule.Set{}
	set.RRule(rule)

	// Exceptions are dates; the excluded instant is the series' clock time on that date.
	loc := e.StartTime.Location()
	h, m, s := e.StartTime.Clock()
	for _, ex := range e.Recurrence.Exceptions {
		ex = ex.In(loc)
		set.ExDate(time.Date(ex.Year(), ex.Month(), ex.Day(), h, m, s, e.StartTime.Nanosecond(), loc))
	}
	return set, nil
}

func occurrence(series *event.CalendarEvent, start time.Time) *event.CalendarEvent {
	occ := series.Clone()
	occ.Recurrence = nil
	occ.ID = event.OccurrenceID(series.ID, start)
	occ.SeriesID = series.ID
	occ.OccurrenceDate = dateutil.TruncateToDay(start)
	occ.StartTime = start
	if series.EndTime != nil {
		var end time.Time
		if series.IsAllDay {
			end = start.AddDate(0, 0, dateutil.DaysBetween(series.StartTime, *series.EndTime))
		} else {
			end = start.Add(series.EndTime.Sub(series.StartTime))
		}
		occ.EndTime = &end
	}
	return occ
}

// Series returns the series id an event belongs to: its SeriesID for
// occurrences, its own id otherwise.
func Series(e *event.CalendarEvent) string {
	if e.SeriesID != "" {
		return e.SeriesID
	}
	return e.ID
}
