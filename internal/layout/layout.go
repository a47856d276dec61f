// Package layout projects filtered events onto the month grid, the day and
// week timelines, the all-day lanes and the agenda.
//
// Every function here is pure: it reads the events it is given and returns
// a fresh projection.
package layout

import (
	"cmp"
	"slices"
	"time"

	"github.com/javiermolinar/coursecal/internal/event"
)

// Options tune the projections.
type Options struct {
	WeekStart time.Weekday
	// CellLimit is how many events a month cell shows before "+N more".
	CellLimit int
	// MinHeightPercent is the smallest timeline height of an event.
	MinHeightPercent float64
	// DefaultDuration stands in for a missing end time of timed events.
	DefaultDuration time.Duration
}

// DefaultOptions returns Sunday weeks, three events per cell, a 1% height
// floor and sixty-minute implicit durations.
func DefaultOptions() Options {
	return Options{
		WeekStart:        time.Sunday,
		CellLimit:        3,
		MinHeightPercent: 1,
		DefaultDuration:  event.DefaultDuration,
	}
}

func (o Options) defaultDuration() time.Duration {
	if o.DefaultDuration <= 0 {
		return event.DefaultDuration
	}
	return o.DefaultDuration
}

// dayKey identifies a calendar date independent of location.
type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

// eventDays returns the dates an event occupies as seen from loc.
// Timed events are converted to loc; all-day dates are floating and keep
// their calendar date.
func eventDays(e *event.CalendarEvent, loc *time.Location) []dayKey {
	if !e.IsAllDay {
		return []dayKey{keyOf(e.StartTime.In(loc))}
	}
	days := e.Days()
	keys := make([]dayKey, len(days))
	for i, d := range days {
		keys[i] = keyOf(d)
	}
	return keys
}

// byDayOrder sorts all-day events first, then timed events by start time.
// Ties keep their input order.
func byDayOrder(a, b *event.CalendarEvent) int {
	if a.IsAllDay != b.IsAllDay {
		if a.IsAllDay {
			return -1
		}
		return 1
	}
	if a.IsAllDay {
		return 0
	}
	return a.StartTime.Compare(b.StartTime)
}

// byPriority sorts higher priorities first. Ties keep their input order.
func byPriority(a, b *event.CalendarEvent) int {
	return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
}

// bucket distributes events onto the given days, keeping input order per day.
func bucket(events []*event.CalendarEvent, days []time.Time, keep func(*event.CalendarEvent) bool) [][]*event.CalendarEvent {
	index := make(map[dayKey]int, len(days))
	for i, d := range days {
		index[keyOf(d)] = i
	}
	out := make([][]*event.CalendarEvent, len(days))
	if len(days) == 0 {
		return out
	}
	loc := days[0].Location()
	for _, e := range events {
		if keep != nil && !keep(e) {
			continue
		}
		for _, k := range eventDays(e, loc) {
			if i, ok := index[k]; ok {
				out[i] = append(out[i], e)
			}
		}
	}
	return out
}

func sortedStable(events []*event.CalendarEvent, cmpFn func(a, b *event.CalendarEvent) int) []*event.CalendarEvent {
	out := slices.Clone(events)
	slices.SortStableFunc(out, cmpFn)
	return out
}
