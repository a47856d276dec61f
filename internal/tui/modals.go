package tui

import (
	"fmt"
	"strings"

	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/tui/view"
)

var helpKeys = [][2]string{
	{"m w d a", "month, week, day, agenda view"},
	{"h l  [ ]", "previous / next month, week or day"},
	{"arrows", "move the focused day"},
	{"t", "jump to today"},
	{"enter", "open the selected event, or the focused day"},
	{"j k  tab", "select next / previous event"},
	{"/", "search, or run a /command"},
	{"c p", "show or hide cancelled / past events"},
	{"x u", "cancel / restore the selected event"},
	{"D", "delete the selected event"},
	{"y", "copy the meeting link"},
	{"s i", "summary / summary with insight"},
	{"r", "reload from the database"},
	{"q", "quit"},
}

func (m Model) renderModal() string {
	width := modalWidth(m.width)
	frameW, _ := m.styles.ModalStyle.GetFrameSize()
	inner := max(width-frameW, 10)

	var body string
	switch m.modalType {
	case ModalDetail:
		body = m.detailContent(inner)
	case ModalConfirmDelete:
		body = m.confirmDeleteContent(inner)
	case ModalConfirmDraft:
		body = m.draftContent(inner)
	case ModalSummary:
		body = m.summaryContent(inner)
	case ModalHelp:
		body = m.helpContent(inner)
	}
	style := m.styles.ModalStyle
	return style.Width(inner + style.GetHorizontalPadding()).Render(body)
}

// modalLines pads every line to width with the modal background so the
// box stays solid.
func (m Model) modalLines(width int, lines ...string) string {
	bg := m.styles.ModalValueStyle
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = view.Fit(l, width, bg)
	}
	return strings.Join(out, "\n")
}

func (m Model) field(label, value string) string {
	if value == "" {
		return ""
	}
	st := m.styles
	return st.ModalLabelStyle.Render(label) + st.ModalValueStyle.Render(value)
}

func (m Model) detailContent(width int) string {
	e := m.detail
	if e == nil {
		return ""
	}
	st := m.styles
	look := event.Appearance(e)

	title := st.ModalTitleStyle.Foreground(st.palette.Event(look.Color).Fg).Render(look.Glyph + " " + e.Title)
	lines := []string{title, ""}
	add := func(label, value string) {
		if f := m.field(label, value); f != "" {
			lines = append(lines, f)
		}
	}
	add("Type", e.Type.Label())
	add("Date", e.StartTime.Format("Mon Jan 2 2006"))
	add("Time", e.TimeRange())
	add("Priority", strings.ToLower(string(e.Priority)))
	add("Course", e.CourseID)
	add("Location", e.Location)
	add("Meeting", e.MeetingURL)
	add("Tags", strings.Join(e.Tags, ", "))
	add("Attendees", strings.Join(e.Attendees, ", "))
	if e.ReminderMinutes > 0 {
		add("Reminder", fmt.Sprintf("%dm before", e.ReminderMinutes))
	}
	if e.Recurrence != nil {
		add("Repeats", e.Recurrence.String())
	}
	if e.IsCancelled {
		lines = append(lines, st.ModalLabelStyle.Render("Status")+st.ModalWarningStyle.Render("cancelled"))
	}
	if e.Description != "" {
		lines = append(lines, "")
		desc := st.ModalValueStyle.Width(width).Render(e.Description)
		lines = append(lines, strings.Split(desc, "\n")...)
	}

	hint := "esc close · x cancel · D delete"
	if e.MeetingURL != "" {
		hint += " · y copy link"
	}
	lines = append(lines, "", st.ModalHintStyle.Render(hint))
	return m.modalLines(width, lines...)
}

func (m Model) confirmDeleteContent(width int) string {
	e := m.detail
	if e == nil {
		return ""
	}
	st := m.styles
	lines := []string{
		st.ModalWarningStyle.Render("Delete event?"),
		"",
		st.ModalValueStyle.Render(e.Title),
		st.ModalMutedStyle.Render(e.StartTime.Format("Mon Jan 2 2006") + "  " + e.TimeRange()),
		"",
	}
	if e.IsOccurrence() {
		lines = append(lines, st.ModalHintStyle.Render("o this occurrence · f this and following · s whole series · n keep"))
	} else {
		lines = append(lines, st.ModalHintStyle.Render("y delete · n keep"))
	}
	return m.modalLines(width, lines...)
}

func (m Model) draftContent(width int) string {
	d := m.draft
	if d == nil {
		return ""
	}
	st := m.styles
	lines := []string{st.ModalTitleStyle.Render("New event"), ""}
	add := func(label, value string) {
		if f := m.field(label, value); f != "" {
			lines = append(lines, f)
		}
	}
	add("Title", d.Title)
	add("Type", d.Type.Label())
	when := d.StartTime.Format("Mon Jan 2 2006")
	switch {
	case d.IsAllDay:
		when += "  all day"
	case d.EndTime != nil:
		when += "  " + d.StartTime.Format("15:04") + "-" + d.EndTime.Format("15:04")
	default:
		when += "  " + d.StartTime.Format("15:04")
	}
	add("When", when)
	add("Priority", strings.ToLower(string(d.Priority)))
	add("Course", d.CourseID)
	add("Location", d.Location)
	if d.Recurrence != nil {
		add("Repeats", d.Recurrence.String())
	}
	lines = append(lines, "", st.ModalHintStyle.Render("y save · n discard"))
	return m.modalLines(width, lines...)
}

func (m Model) summaryContent(width int) string {
	s := m.summary
	if s == nil {
		return ""
	}
	st := m.styles
	lines := []string{st.ModalTitleStyle.Render("Summary " + s.Window.String()), ""}

	if s.Total == 0 {
		lines = append(lines, st.ModalMutedStyle.Render("No events in this range."))
		lines = append(lines, "", st.ModalHintStyle.Render("esc close"))
		return m.modalLines(width, lines...)
	}

	lines = append(lines, st.ModalValueStyle.Render(fmt.Sprintf(
		"%d events  %d upcoming  %d past  %d cancelled", s.Total, s.Upcoming, s.Past, s.Cancelled)))

	var types []string
	for _, t := range event.Types() {
		if n := s.ByType[t]; n > 0 {
			types = append(types, fmt.Sprintf("%s %d", t.Label(), n))
		}
	}
	if len(types) > 0 {
		lines = append(lines, st.ModalMutedStyle.Render(strings.Join(types, " · ")))
	}
	if urgent, high := s.ByPriority[event.PriorityUrgent], s.ByPriority[event.PriorityHigh]; urgent+high > 0 {
		lines = append(lines, st.ModalWarningStyle.Render(fmt.Sprintf("Priority: %d urgent, %d high", urgent, high)))
	}
	if s.Next != nil {
		lines = append(lines, m.field("Next", s.Next.StartTime.Format("Mon Jan 2 15:04")+"  "+s.Next.Title))
	}
	if s.BusiestCount > 1 {
		lines = append(lines, m.field("Busiest", fmt.Sprintf("%s (%d events)", s.BusiestDay.Format("Mon Jan 2"), s.BusiestCount)))
	}
	if len(s.Rejected) > 0 {
		lines = append(lines, st.ModalMutedStyle.Render(fmt.Sprintf("%d malformed events skipped", len(s.Rejected))))
	}
	if s.Insight != "" {
		lines = append(lines, "", st.ModalTitleStyle.Render("Insight"))
		text := st.ModalValueStyle.Width(width).Render(strings.TrimSpace(s.Insight))
		lines = append(lines, strings.Split(text, "\n")...)
	}
	lines = append(lines, "", st.ModalHintStyle.Render("esc close"))
	return m.modalLines(width, lines...)
}

func (m Model) helpContent(width int) string {
	st := m.styles
	lines := []string{st.ModalTitleStyle.Render("Keys"), ""}
	for _, k := range helpKeys {
		lines = append(lines, st.ModalLabelStyle.Width(10).Render(k[0])+st.ModalValueStyle.Render(k[1]))
	}
	lines = append(lines, "", st.ModalTitleStyle.Render("Commands"), "")
	for _, c := range promptCommands {
		name := c.Name
		if c.Args != "" {
			name += " " + c.Args
		}
		lines = append(lines, st.ModalLabelStyle.Width(16).Render(name)+st.ModalMutedStyle.Render(c.Description))
	}
	return m.modalLines(width, lines...)
}
