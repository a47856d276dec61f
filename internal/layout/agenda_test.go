package layout

import (
	"slices"
	"testing"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
)

func TestAllDayLanes(t *testing.T) {
	days := []time.Time{day("2024-03-10"), day("2024-03-11"), day("2024-03-12")}

	low := allDay("low", "2024-03-10", "")
	low.Priority = event.PriorityLow
	urgent := allDay("urgent", "2024-03-10", "2024-03-11")
	urgent.Priority = event.PriorityUrgent
	medium := allDay("medium", "2024-03-10", "")
	meeting := timed("meeting", "2024-03-10 09:00", "")

	lanes := AllDayLanes([]*event.CalendarEvent{low, urgent, meeting, medium}, days)
	if len(lanes) != 3 {
		t.Fatalf("got %d lanes, want 3", len(lanes))
	}
	if got := ids(lanes[0].Events); !slices.Equal(got, []string{"urgent", "medium", "low"}) {
		t.Errorf("Mar 10: got %v", got)
	}
	if got := ids(lanes[1].Events); !slices.Equal(got, []string{"urgent"}) {
		t.Errorf("Mar 11: got %v", got)
	}
	if len(lanes[2].Events) != 0 {
		t.Errorf("Mar 12: got %v, want empty", ids(lanes[2].Events))
	}
	if MaxLaneDepth(lanes) != 3 {
		t.Errorf("got depth %d, want 3", MaxLaneDepth(lanes))
	}
}

func TestGroupAgenda(t *testing.T) {
	window := dateutil.DateRange{Start: day("2024-05-16"), End: day("2024-08-14")}

	events := []*event.CalendarEvent{
		timed("before-window", "2024-05-15 10:00", ""),
		timed("first-day", "2024-05-16 10:00", ""),
		timed("afternoon", "2024-06-15 15:00", ""),
		allDay("holiday", "2024-06-15", ""),
		timed("morning", "2024-06-15 08:00", ""),
		timed("last-day", "2024-08-14 23:00", ""),
		timed("after-window", "2024-08-15 00:00", ""),
	}

	groups := GroupAgenda(events, window)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	wantDates := []string{"2024-05-16", "2024-06-15", "2024-08-14"}
	for i, g := range groups {
		if g.Date.Format("2006-01-02") != wantDates[i] {
			t.Errorf("group %d: got %s, want %s", i, g.Date.Format("2006-01-02"), wantDates[i])
		}
	}
	if got := ids(groups[1].Events); !slices.Equal(got, []string{"holiday", "morning", "afternoon"}) {
		t.Errorf("Jun 15: got %v", got)
	}
	for _, g := range groups {
		for _, e := range g.Events {
			if e.ID == "before-window" || e.ID == "after-window" {
				t.Errorf("%s should be outside the agenda", e.ID)
			}
		}
	}
}

func TestGroupAgenda_Empty(t *testing.T) {
	window := dateutil.DateRange{Start: day("2024-05-16"), End: day("2024-05-20")}
	if groups := GroupAgenda(nil, window); len(groups) != 0 {
		t.Errorf("got %d groups, want none", len(groups))
	}
}

func TestGroupAgenda_MultiDayAllDay(t *testing.T) {
	window := dateutil.DateRange{Start: day("2024-03-01"), End: day("2024-03-31")}
	groups := GroupAgenda([]*event.CalendarEvent{allDay("trip", "2024-02-28", "2024-03-02")}, window)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want Mar 1 and Mar 2", len(groups))
	}
}
