package tui

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/layout"
	"github.com/javiermolinar/coursecal/internal/session"
	"github.com/javiermolinar/coursecal/internal/tui/view"
)

const (
	minutesPerDay = 24 * 60
	// The timeline always shows at least the working day.
	defaultFirstHour = 8
	defaultLastHour  = 20
	maxAllDayRows    = 3
)

// span is a placement in minutes of its day.
type span struct {
	p     layout.Placement
	start int
	end   int
}

func spanOf(p layout.Placement) span {
	start := int(math.Round(p.TopPercent * minutesPerDay / 100))
	end := int(math.Round((p.TopPercent + p.HeightPercent) * minutesPerDay / 100))
	return span{p: p, start: start, end: max(end, start+1)}
}

// hourRange widens the default working hours to fit every placement.
func hourRange(days [][]layout.Placement) (first, last int) {
	first, last = defaultFirstHour, defaultLastHour
	for _, day := range days {
		for _, p := range day {
			s := spanOf(p)
			first = min(first, s.start/60)
			last = max(last, (s.end+59)/60)
		}
	}
	return first, min(last, 24)
}

// rowMinutes picks the minutes each terminal row covers so the hour range
// fits in rows: 15, 30, 60 or whole multiples of an hour.
func rowMinutes(spanMinutes, rows int) int {
	if rows <= 0 {
		return spanMinutes
	}
	for _, step := range []int{15, 30, 60} {
		if spanMinutes/step <= rows {
			return step
		}
	}
	hours := (spanMinutes/60 + rows - 1) / rows
	return hours * 60
}

// renderTimeline draws the week and day views: a header row of days, the
// all-day lanes, then one row per time step with events as colored blocks.
func (m Model) renderTimeline(tv session.TimelineView, width, height int) string {
	st := m.styles
	if len(tv.Days) == 0 {
		return ""
	}

	cols := view.SplitWidth(width-timeColumnWidth, len(tv.Days))
	cursor := m.cursor()
	now := m.now()

	var rows []string

	header := []string{st.TimeColumnStyle.Render("")}
	for i, d := range tv.Days {
		label := d.Format("Mon 2")
		if len(tv.Days) == 1 {
			label = d.Format("Monday, Jan 2")
		}
		style := st.DayHeaderStyle
		switch {
		case len(tv.Days) > 1 && dateutil.SameDay(d, cursor):
			style = st.DayCursorStyle.Align(lipgloss.Center)
		case dateutil.SameDay(d, now):
			style = st.DayHeaderTodayStyle
		}
		header = append(header, style.Width(cols[i]).Render(view.Truncate(label, cols[i])))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	depth := layout.MaxLaneDepth(tv.Lanes)
	shownDepth := min(depth, maxAllDayRows)
	for r := 0; r < shownDepth; r++ {
		label := ""
		if r == 0 {
			label = "all"
		}
		line := []string{st.TimeColumnStyle.Render(label)}
		for i, lane := range tv.Lanes {
			cell := st.CellStyle.Render(strings.Repeat(" ", cols[i]))
			switch {
			case r == shownDepth-1 && len(lane.Events) > shownDepth:
				text := fmt.Sprintf("+%d more", len(lane.Events)-shownDepth+1)
				cell = view.Fit(st.MoreStyle.Render(text), cols[i], st.CellStyle)
			case r < len(lane.Events):
				e := lane.Events[r]
				cell = m.styledEvent(e, " "+m.eventLabel(e), cols[i])
			}
			line = append(line, cell)
		}
		rows = append(rows, strings.Join(line, ""))
	}

	if tv.IsEmpty {
		rows = append(rows, view.Fit(st.EmptyStyle.Render("  No events"), width, st.CellStyle))
	}

	avail := height - len(rows)
	if avail <= 0 {
		return strings.Join(rows[:min(len(rows), max(height, 0))], "\n")
	}

	first, last := hourRange(tv.Timeline)
	step := rowMinutes((last-first)*60, avail)

	spans := make([][]span, len(tv.Timeline))
	for i, day := range tv.Timeline {
		for _, p := range day {
			spans[i] = append(spans[i], spanOf(p))
		}
	}

	nowRow := -1
	if tv.ShowsNow {
		nowMin := int(math.Round(tv.Now.TopPercent * minutesPerDay / 100))
		if nowMin >= first*60 && nowMin < last*60 {
			nowRow = (nowMin - first*60) / step
		}
	}

	for r := 0; first*60+r*step < last*60 && r < avail; r++ {
		from := first*60 + r*step
		to := from + step

		label := ""
		if from%60 == 0 {
			label = fmt.Sprintf("%02d:00", from/60)
		}
		timeStyle := st.TimeColumnStyle
		if r == nowRow {
			label = now.Format("15:04")
			timeStyle = st.NowLineStyle.Width(timeColumnWidth)
		}
		line := []string{timeStyle.Render(label)}

		for i := range tv.Days {
			isNow := r == nowRow && i == tv.Now.DayIndex
			line = append(line, m.renderSlot(spans[i], from, to, cols[i], isNow))
		}
		rows = append(rows, strings.Join(line, ""))
	}
	return strings.Join(rows, "\n")
}

// renderSlot draws one day column for the minutes [from, to). Overlapping
// events share the column side by side, in their layout column order.
func (m Model) renderSlot(spans []span, from, to, width int, isNow bool) string {
	st := m.styles
	var active []span
	for _, s := range spans {
		if s.start < to && s.end > from {
			active = append(active, s)
		}
	}

	if len(active) == 0 {
		fill := " "
		style := st.HourRuleStyle
		if from%60 == 0 {
			fill = "·"
		}
		if isNow {
			fill = "─"
			style = st.NowLineStyle
		}
		return style.Render(fill + strings.Repeat(" ", max(width-1, 0)))
	}

	slices.SortStableFunc(active, func(a, b span) int { return a.p.Column - b.p.Column })
	widths := view.SplitWidth(width, len(active))
	parts := make([]string, len(active))
	step := to - from
	now := m.now()
	for i, s := range active {
		e := s.p.Event
		style := st.BlockStyle(e, e.IsPast(now))
		if e.ID == m.selected {
			style = st.SelectedStyle
		}

		text := ""
		switch {
		case s.start >= from:
			text = " " + m.eventLabel(e)
		case s.start >= from-step:
			// Second row of a block carries the time range.
			text = " " + e.TimeRange()
		}
		if isNow {
			text = "─" + strings.TrimPrefix(text, " ")
		}
		parts[i] = view.Fit(style.Render(text), widths[i], style)
	}
	return strings.Join(parts, "")
}
