package layout

import (
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
)

// Lane holds the all-day events of one day.
type Lane struct {
	Date   time.Time
	Events []*event.CalendarEvent
}

// AllDayLanes groups all-day events onto each of days, one lane per day
// (possibly empty). A multi-day event appears in the lane of every day it
// covers. Within a lane higher priorities come first, then input order.
func AllDayLanes(events []*event.CalendarEvent, days []time.Time) []Lane {
	buckets := bucket(events, days, func(e *event.CalendarEvent) bool { return e.IsAllDay })
	lanes := make([]Lane, len(days))
	for i, d := range days {
		lanes[i] = Lane{Date: d, Events: sortedStable(buckets[i], byPriority)}
	}
	return lanes
}

// MaxLaneDepth returns the largest number of events in any lane, which is
// how tall a fixed-height lane row must be to show them all.
func MaxLaneDepth(lanes []Lane) int {
	depth := 0
	for _, l := range lanes {
		depth = max(depth, len(l.Events))
	}
	return depth
}

// DayGroup is one day of the agenda.
type DayGroup struct {
	Date   time.Time
	Events []*event.CalendarEvent
}

// GroupAgenda groups events by day across window, ascending. Within a day
// all-day events come first, then timed events by start time. Days without
// events are left out. Dates are in window.Start's location.
func GroupAgenda(events []*event.CalendarEvent, window dateutil.DateRange) []DayGroup {
	days := window.Days()
	buckets := bucket(events, days, nil)

	var groups []DayGroup
	for i, d := range days {
		if len(buckets[i]) == 0 {
			continue
		}
		groups = append(groups, DayGroup{Date: d, Events: sortedStable(buckets[i], byDayOrder)})
	}
	return groups
}
