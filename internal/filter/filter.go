// Package filter narrows an event list by search text, type, course,
// priority, completion and cancellation.
package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/coursecal/internal/event"
)

// Filters is the persisted filter selection. Empty sets mean no restriction.
type Filters struct {
	EventTypes    []event.Type
	CourseIDs     []string
	Priorities    []event.Priority
	ShowCompleted bool
	ShowCancelled bool
}

// Default returns the filters a fresh calendar view starts with:
// past events shown, cancelled events hidden.
func Default() Filters {
	return Filters{ShowCompleted: true}
}

// Search is the session-local free-text search.
type Search struct {
	Term string
	// MatchLocation extends matching to the location field (agenda view).
	MatchLocation bool
}

// IsZero returns true if the filters restrict nothing but cancelled events.
func (f Filters) IsZero() bool {
	return len(f.EventTypes) == 0 && len(f.CourseIDs) == 0 && len(f.Priorities) == 0 &&
		f.ShowCompleted && !f.ShowCancelled
}

// Apply returns the events that pass every engaged predicate, in input order.
// The input slice is not modified.
func Apply(events []*event.CalendarEvent, f Filters, search Search, now time.Time) []*event.CalendarEvent {
	term := strings.ToLower(strings.TrimSpace(search.Term))
	out := make([]*event.CalendarEvent, 0, len(events))
	for _, e := range events {
		if term != "" && !matchesSearch(e, term, search.MatchLocation) {
			continue
		}
		if len(f.EventTypes) > 0 && !slices.Contains(f.EventTypes, e.Type) {
			continue
		}
		if len(f.CourseIDs) > 0 && e.HasCourse() && !slices.Contains(f.CourseIDs, e.CourseID) {
			continue
		}
		if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, e.Priority) {
			continue
		}
		if !f.ShowCompleted && e.IsPast(now) {
			continue
		}
		if !f.ShowCancelled && e.IsCancelled {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Matches reports whether a single event passes the filters.
func Matches(e *event.CalendarEvent, f Filters, search Search, now time.Time) bool {
	return len(Apply([]*event.CalendarEvent{e}, f, search, now)) == 1
}

func matchesSearch(e *event.CalendarEvent, term string, withLocation bool) bool {
	if strings.Contains(strings.ToLower(e.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Description), term) {
		return true
	}
	return withLocation && strings.Contains(strings.ToLower(e.Location), term)
}

// ToggleType adds t to the type set, or removes it if already present.
// The receiver is not modified.
func (f Filters) ToggleType(t event.Type) Filters {
	f.EventTypes = toggle(f.EventTypes, t)
	return f
}

// ToggleCourse adds or removes a course id.
func (f Filters) ToggleCourse(id string) Filters {
	f.CourseIDs = toggle(f.CourseIDs, id)
	return f
}

// TogglePriority adds or removes a priority.
func (f Filters) TogglePriority(p event.Priority) Filters {
	f.Priorities = toggle(f.Priorities, p)
	return f
}

func toggle[T comparable](set []T, v T) []T {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}
