package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/layout"
	"github.com/javiermolinar/coursecal/internal/session"
)

const (
	dayHeaderLayout = "Mon Jan 2"
	minCellWidth    = 10
)

// PrintOpts configures event line rendering.
type PrintOpts struct {
	ShowIDs    bool // Prefix each line with the event id
	ShowCourse bool // Append the course id
	Width      int  // Total line width (0 = terminal width)
}

func (o PrintOpts) width() int {
	if o.Width > 0 {
		return o.Width
	}
	return termWidth()
}

// eventLine renders one event as "glyph time title (course) @ location".
func eventLine(e *event.CalendarEvent, opts PrintOpts) string {
	style := event.Appearance(e)

	var b strings.Builder
	if opts.ShowIDs {
		b.WriteString(formatMuted(fmt.Sprintf("%-28s ", e.ID)))
	}
	b.WriteString(formatEvent(e, style.Glyph))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%-11s ", e.TimeRange()))

	title := e.Title
	if e.IsCancelled {
		title += " (cancelled)"
	}
	b.WriteString(formatEvent(e, title))

	switch e.Priority {
	case event.PriorityUrgent:
		b.WriteString(" " + formatError("!!"))
	case event.PriorityHigh:
		b.WriteString(" " + formatInsight("!"))
	}
	if opts.ShowCourse && e.HasCourse() {
		b.WriteString(formatMuted(" (" + e.CourseID + ")"))
	}
	if e.Location != "" {
		b.WriteString(formatMuted(" @ " + e.Location))
	}
	return b.String()
}

// dayHeader renders a day heading, highlighted when it is today.
func dayHeader(d, now time.Time) string {
	s := d.Format(dayHeaderLayout)
	if dateutil.SameDay(d, now) {
		return formatToday(s + " (today)")
	}
	return formatHeader(s)
}

// renderMonth prints the month grid as seven columns with up to limit
// events per cell and a "+N more" line for the rest.
func renderMonth(w io.Writer, grid layout.MonthGrid, limit int, opts PrintOpts) {
	cellWidth := max(opts.width()/7-1, minCellWidth)
	weeks := grid.Weeks()

	var header []string
	for _, c := range weeks[0] {
		header = append(header, formatHeader(fit(c.Date.Format("Mon"), cellWidth)))
	}
	fmt.Fprintln(w, strings.Join(header, " "))

	for _, week := range weeks {
		rows := 1
		for _, c := range week {
			shown, more := c.Visible(limit)
			n := 1 + len(shown)
			if more > 0 {
				n++
			}
			rows = max(rows, n)
		}

		for row := range rows {
			cells := make([]string, len(week))
			for i, c := range week {
				cells[i] = monthCellLine(c, row, limit, cellWidth)
			}
			fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " "))
		}
	}
}

// monthCellLine renders row of a month cell: the day number first, then the
// visible events, then the overflow count.
func monthCellLine(c layout.Cell, row, limit, width int) string {
	if row == 0 {
		day := fit(fmt.Sprintf("%2d", c.Date.Day()), width)
		switch {
		case c.IsToday:
			return formatToday(day)
		case !c.IsCurrentMonth:
			return formatMuted(day)
		default:
			return day
		}
	}

	shown, more := c.Visible(limit)
	i := row - 1
	if i < len(shown) {
		e := shown[i]
		return formatEvent(e, fit(event.Appearance(e).Glyph+" "+e.Title, width))
	}
	if i == len(shown) && more > 0 {
		return formatMuted(fit(fmt.Sprintf("+%d more", more), width))
	}
	return strings.Repeat(" ", width)
}

// renderTimeline prints the week or day view one day at a time: all-day
// lanes first, then timed placements with the now marker between them.
func renderTimeline(w io.Writer, v session.TimelineView, now time.Time, opts PrintOpts) {
	if v.IsEmpty {
		fmt.Fprintln(w, formatMuted("No events"))
		return
	}

	for i, day := range v.Days {
		fmt.Fprintln(w, dayHeader(day, now))

		for _, e := range v.Lanes[i].Events {
			fmt.Fprintln(w, "  "+eventLine(e, opts))
		}

		nowPending := v.ShowsNow && v.Now.DayIndex == i
		for _, p := range v.Timeline[i] {
			if nowPending && p.Start.After(now) {
				fmt.Fprintln(w, nowLine(now))
				nowPending = false
			}
			fmt.Fprintln(w, "  "+placementLine(p, opts))
		}
		if nowPending {
			fmt.Fprintln(w, nowLine(now))
		}
	}
}

// placementLine indents overlapping events by their column.
func placementLine(p layout.Placement, opts PrintOpts) string {
	line := eventLine(p.Event, opts)
	if p.TotalColumns > 1 {
		line = strings.Repeat("  ", p.Column) + line
	}
	return line
}

func nowLine(now time.Time) string {
	return formatToday("  ── now " + now.Format("15:04") + " ──")
}

// renderAgenda prints the agenda grouped by day.
func renderAgenda(w io.Writer, groups []layout.DayGroup, now time.Time, opts PrintOpts) {
	if len(groups) == 0 {
		fmt.Fprintln(w, formatMuted("No events"))
		return
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, dayHeader(g.Date, now))
		for _, e := range g.Events {
			fmt.Fprintln(w, "  "+eventLine(e, opts))
		}
	}
}

// renderEvent prints every field of an event.
func renderEvent(w io.Writer, e *event.CalendarEvent) {
	style := event.Appearance(e)
	fmt.Fprintln(w, formatEvent(e, style.Glyph+" "+e.Title))

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-12s %s\n", formatMuted(name), value)
		}
	}
	field("ID", e.ID)
	field("Type", e.Type.Label())
	field("Date", e.StartTime.Format("Mon Jan 2 2006"))
	field("Time", e.TimeRange())
	field("Priority", string(e.Priority))
	field("Course", e.CourseID)
	field("Location", e.Location)
	field("Meeting", e.MeetingURL)
	field("Tags", strings.Join(e.Tags, ", "))
	field("Attendees", strings.Join(e.Attendees, ", "))
	if e.ReminderMinutes > 0 {
		field("Reminder", formatMinutes(e.ReminderMinutes)+" before")
	}
	if e.Recurrence != nil {
		field("Repeats", e.Recurrence.String())
	}
	field("Series", e.SeriesID)
	field("Visibility", string(e.Visibility))
	if e.IsCancelled {
		field("Status", formatError("cancelled"))
	}
	if e.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, e.Description)
	}
}

// formatMinutes formats minutes as a human-readable duration.
func formatMinutes(minutes int) string {
	switch {
	case minutes%(24*60) == 0:
		days := minutes / (24 * 60)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes%60 == 0:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
}
