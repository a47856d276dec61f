package tui

import (
	"fmt"
	"strings"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/tui/view"
)

// renderAgenda lists the agenda window day by day. When the list is taller
// than the body it scrolls to keep the selection in view.
func (m Model) renderAgenda(width, height int) string {
	st := m.styles
	groups := m.session.Agenda()
	if len(groups) == 0 {
		return view.Fit(st.EmptyStyle.Render("  No upcoming events"), width, st.CellStyle)
	}

	now := m.now()
	var lines []string
	selLine := -1
	for _, g := range groups {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		label := g.Date.Format("Mon Jan 2")
		style := st.AgendaDayStyle
		if dateutil.SameDay(g.Date, now) {
			label += " · today"
			style = st.AgendaDayTodayStyle
		}
		lines = append(lines, view.Fit(style.Render(" "+label+" "), width, st.CellStyle))

		for _, e := range g.Events {
			if e.ID == m.selected {
				selLine = len(lines)
			}
			text := fmt.Sprintf("   %-11s %s", e.TimeRange(), m.eventLabel(e))
			if e.CourseID != "" {
				text += "  (" + e.CourseID + ")"
			}
			if e.Location != "" {
				text += "  @ " + e.Location
			}
			lines = append(lines, m.styledEvent(e, text, width))
		}
	}

	offset := 0
	if selLine >= height {
		offset = min(selLine-height/2, len(lines)-height)
	}
	end := min(offset+height, len(lines))
	return strings.Join(lines[offset:end], "\n")
}
