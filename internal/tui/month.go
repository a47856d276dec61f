package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/layout"
	"github.com/javiermolinar/coursecal/internal/tui/view"
)

// renderMonth draws the 6x7 grid. Each cell shows its day number and as
// many events as fit, capped by the configured cell limit, with a
// "+N more" line for the rest.
func (m Model) renderMonth(width, height int) string {
	st := m.styles
	grid := m.session.Month()
	weeks := grid.Weeks()
	if len(weeks) == 0 {
		return ""
	}

	cols := view.SplitWidth(width, 7)
	rowH := max((height-1)/len(weeks), 2)

	var b strings.Builder
	header := make([]string, 7)
	for i, c := range weeks[0] {
		label := c.Date.Format("Mon")
		header[i] = st.DayHeaderStyle.Width(cols[i]).Render(view.Truncate(label, cols[i]))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))

	cursor := m.cursor()
	for _, week := range weeks {
		cells := make([]string, 7)
		for i, c := range week {
			cells[i] = m.renderCell(c, cols[i], rowH, dateutil.SameDay(c.Date, cursor))
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return b.String()
}

func (m Model) renderCell(c layout.Cell, width, height int, isCursor bool) string {
	st := m.styles
	base := st.CellStyle
	if !c.IsCurrentMonth {
		base = st.CellOtherStyle
	}

	// One column is kept as a gutter between cells.
	inner := max(width-1, 1)
	lines := make([]string, 0, height)

	num := fmt.Sprintf("%2d", c.Date.Day())
	switch {
	case isCursor:
		num = st.DayCursorStyle.Render("[" + num + "]")
	case c.IsToday:
		num = st.DayTodayStyle.Render(" " + num + " ")
	case c.IsCurrentMonth:
		num = st.DayNumberStyle.Render(" " + num + " ")
	default:
		num = base.Render(" " + num + " ")
	}
	lines = append(lines, view.Fit(num, inner, base))

	limit := height - 1
	if cfg := m.config.Calendar.MonthCellLimit; cfg > 0 && cfg < limit {
		limit = cfg
	}
	shown, more := c.Visible(limit)
	if more > 0 && len(shown) >= height-1 {
		// Make room for the "+N more" line.
		if limit > 1 {
			shown, more = c.Visible(limit - 1)
		} else {
			shown, more = nil, len(c.Events)
		}
	}
	for _, e := range shown {
		lines = append(lines, m.styledEvent(e, m.eventLabel(e), inner))
	}
	if more > 0 {
		lines = append(lines, view.Fit(st.MoreStyle.Render(fmt.Sprintf("+%d more", more)), inner, base))
	}

	for len(lines) < height {
		lines = append(lines, base.Render(strings.Repeat(" ", inner)))
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	gutter := st.GridBorderStyle.Render("│")
	for i := range lines {
		lines[i] += gutter
	}
	return strings.Join(lines, "\n")
}
