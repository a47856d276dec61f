package tui

import (
	"slices"
	"time"

	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/navigation"
)

// selectable returns the events j/k cycle through, in display order: the
// cursor day's events, or the whole agenda.
func (m Model) selectable() []*event.CalendarEvent {
	if m.session.State().View == navigation.ViewAgenda {
		var out []*event.CalendarEvent
		for _, g := range m.session.Agenda() {
			out = append(out, g.Events...)
		}
		return out
	}

	var out []*event.CalendarEvent
	for _, e := range m.session.Visible() {
		if e.OccursOn(m.cursor()) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, displayOrder)
	return out
}

// displayOrder puts all-day events first, then orders by start and title.
func displayOrder(a, b *event.CalendarEvent) int {
	if a.IsAllDay != b.IsAllDay {
		if a.IsAllDay {
			return -1
		}
		return 1
	}
	if c := a.StartTime.Compare(b.StartTime); c != 0 {
		return c
	}
	switch {
	case a.Title < b.Title:
		return -1
	case a.Title > b.Title:
		return 1
	}
	return 0
}

// selectedEvent returns the highlighted event if it is still selectable.
func (m Model) selectedEvent() *event.CalendarEvent {
	if m.selected == "" {
		return nil
	}
	for _, e := range m.selectable() {
		if e.ID == m.selected {
			return e
		}
	}
	return nil
}

// moveSelection steps through the selectable events, wrapping at both ends.
func (m Model) moveSelection(delta int) Model {
	events := m.selectable()
	if len(events) == 0 {
		m.selected = ""
		return m
	}
	idx := -1
	for i, e := range events {
		if e.ID == m.selected {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && delta < 0:
		idx = len(events) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + delta + len(events)) % len(events)
	}
	m.selected = events[idx].ID
	return m
}

// keepSelection drops the selection once its event is gone.
func (m *Model) keepSelection() {
	if m.selected != "" && m.selectedEvent() == nil {
		m.selected = ""
	}
}

// moveCursor shifts the focused day, which is the session's current date.
// It returns whether the session needs a fetch.
func (m *Model) moveCursor(days int) bool {
	m.selected = ""
	return m.session.GoTo(m.cursor().AddDate(0, 0, days))
}

// cursor is the focused day in the month and week views.
func (m Model) cursor() time.Time {
	return m.session.State().CurrentDate
}
