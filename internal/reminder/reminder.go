// Package reminder computes when event reminders fire and delivers them
// on a cron schedule.
package reminder

import (
	"slices"
	"time"

	"github.com/javiermolinar/coursecal/internal/event"
)

// Reminder is one notification for one event (or occurrence).
type Reminder struct {
	Event *event.CalendarEvent
	// At is when the reminder fires: start minus the reminder offset.
	At time.Time
}

// FireTime returns when e's reminder fires and false if e has none.
func FireTime(e *event.CalendarEvent) (time.Time, bool) {
	if e.IsCancelled || e.ReminderMinutes <= 0 {
		return time.Time{}, false
	}
	return e.StartTime.Add(-time.Duration(e.ReminderMinutes) * time.Minute), true
}

// Due returns the reminders firing in (from, to], sorted by fire time.
// Events must already be expanded; cancelled events and events without a
// reminder are skipped.
func Due(events []*event.CalendarEvent, from, to time.Time) []Reminder {
	var out []Reminder
	for _, e := range events {
		at, ok := FireTime(e)
		if !ok {
			continue
		}
		if at.After(from) && !at.After(to) {
			out = append(out, Reminder{Event: e, At: at})
		}
	}
	slices.SortStableFunc(out, func(a, b Reminder) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		return event.ByStart(a.Event, b.Event)
	})
	return out
}
