package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/navigation"
	"github.com/javiermolinar/coursecal/internal/tui/input"
	"github.com/javiermolinar/coursecal/internal/tui/view"
)

// View renders the TUI.
func (m Model) View() string {
	return view.Render(m.viewState())
}

func (m Model) viewState() view.ViewState {
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyH := m.height - lineCount(header) - lineCount(footer)

	showModal := m.mode == ModeModal && m.modalType != ModalNone
	modal := ""
	if showModal {
		modal = m.renderModal()
	}

	return view.ViewState{
		Width:            m.width,
		Height:           m.height,
		Header:           header,
		Body:             m.renderBody(m.width, bodyH),
		Footer:           footer,
		ModalContent:     modal,
		ShowModal:        showModal,
		Overlay:          m.overlay,
		Bg:               m.styles.colorBg,
		EmptyPlaceholder: "Loading...",
	}
}

func (m Model) renderBody(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	switch m.session.State().View {
	case navigation.ViewWeek:
		return m.renderTimeline(m.session.Week(), width, height)
	case navigation.ViewDay:
		return m.renderTimeline(m.session.Day(), width, height)
	case navigation.ViewAgenda:
		return m.renderAgenda(width, height)
	default:
		return m.renderMonth(width, height)
	}
}

// renderHeader draws the title on the left and the view tabs on the right,
// followed by a rule.
func (m Model) renderHeader() string {
	st := m.styles
	title := m.session.Title()
	if m.session.State().View == navigation.ViewAgenda {
		title = "Agenda " + m.session.Window().String()
	}
	left := st.TitleStyle.Render(" " + title)
	if m.courseID != "" {
		left += st.HelpStyle.Render("  course " + m.courseID)
	}
	if m.loading {
		left += st.HelpStyle.Render("  loading…")
	}

	current := m.session.State().View
	tabs := make([]string, 0, len(navigation.Views()))
	for _, v := range navigation.Views() {
		label := v.Label()
		if v == current {
			tabs = append(tabs, st.TabActiveStyle.Render(label))
			continue
		}
		tabs = append(tabs, st.TabStyle.Render(label))
	}
	right := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	line := left
	if gap > 0 {
		line += st.CellStyle.Render(strings.Repeat(" ", gap)) + right
	}
	rule := st.GridBorderStyle.Render(strings.Repeat("─", max(m.width, 0)))
	return line + "\n" + rule
}

// renderFooter draws filter chips, the prompt when active, the status line
// and the key help.
func (m Model) renderFooter() string {
	st := m.styles
	lines := []string{view.Line(m.width, st.CellStyle, m.filterLine())}

	if m.mode == ModePrompt {
		lines = append(lines, m.renderPrompt())
		for _, c := range input.PromptMatchingCommands(m.prompt.Value(), promptCommands) {
			text := fmt.Sprintf("  %-10s %-6s %s", c.Name, c.Args, c.Description)
			lines = append(lines, view.Line(m.width, st.HelpStyle, text))
		}
	}

	status := m.statusMsg
	statusStyle := st.StatusStyle
	if m.err != nil {
		statusStyle = st.ErrorStyle
	}
	lines = append(lines, view.Line(m.width, statusStyle, " "+status))
	lines = append(lines, view.Line(m.width, st.HelpStyle, " "+m.helpLine()))
	return strings.Join(lines, "\n")
}

func (m Model) renderPrompt() string {
	style := m.styles.PromptFocusedStyle
	frameW, _ := style.GetFrameSize()
	return style.Width(max(m.width-frameW, 1)).Render(m.prompt.View())
}

// filterLine summarizes active filters and the search term.
func (m Model) filterLine() string {
	st := m.styles
	f := m.session.Filters()
	chips := []string{" "}

	if term := m.session.SearchTerm(); term != "" {
		chips = append(chips, st.FilterActiveStyle.Render(fmt.Sprintf("search %q", term)))
	}
	for _, t := range f.EventTypes {
		chips = append(chips, st.FilterActiveStyle.Render(t.Label()))
	}
	for _, c := range f.CourseIDs {
		chips = append(chips, st.FilterActiveStyle.Render("course "+c))
	}
	for _, p := range f.Priorities {
		chips = append(chips, st.PriorityStyle(p).Render(strings.ToLower(string(p))))
	}
	chips = append(chips, toggleChip(st, "past", f.ShowCompleted), toggleChip(st, "cancelled", f.ShowCancelled))
	return strings.Join(chips, st.CellStyle.Render("  "))
}

func toggleChip(st *Styles, label string, on bool) string {
	if on {
		return st.FilterActiveStyle.Render(label)
	}
	return st.FilterInactiveStyle.Render(label)
}

func (m Model) helpLine() string {
	switch m.mode {
	case ModePrompt:
		return "enter run · tab complete · esc cancel · text without / searches"
	case ModeModal:
		return "esc close"
	}
	if m.selected != "" {
		return "enter details · x cancel · u restore · D delete · y copy link · esc deselect · ? help"
	}
	return "m/w/d/a view · h/l prev/next · t today · arrows move · j/k select · / search · ? help · q quit"
}

// eventLabel is the glyph, title and priority marker of an event.
func (m Model) eventLabel(e *event.CalendarEvent) string {
	look := event.Appearance(e)
	label := look.Glyph + " " + e.Title
	switch e.Priority {
	case event.PriorityUrgent:
		label += " !!"
	case event.PriorityHigh:
		label += " !"
	}
	return label
}

// styledEvent renders an event label for list-like contexts (month cells,
// agenda rows), highlighted when it is the selection.
func (m Model) styledEvent(e *event.CalendarEvent, text string, width int) string {
	style := m.styles.EventStyle(e)
	if e.ID == m.selected {
		style = m.styles.SelectedStyle
	}
	return view.Fit(style.Render(text), width, style)
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
