package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/filter"
	"github.com/javiermolinar/coursecal/internal/navigation"
	"github.com/javiermolinar/coursecal/internal/session"
	"github.com/javiermolinar/coursecal/internal/tui/commands"
	"github.com/javiermolinar/coursecal/internal/tui/input"
)

var promptCommands = []input.PromptCommand{
	{Name: "/goto", Args: "DATE", Description: "Jump to a date (today, friday, 2025-03-10)"},
	{Name: "/view", Args: "VIEW", Description: "Switch to month, week, day or agenda"},
	{Name: "/type", Args: "TYPE", Description: "Toggle an event type filter"},
	{Name: "/course", Args: "ID", Description: "Toggle a course filter"},
	{Name: "/priority", Args: "LEVEL", Description: "Toggle a priority filter"},
	{Name: "/clear", Description: "Reset filters and search"},
	{Name: "/add", Args: "TEXT", Description: "Quick-add an event from a sentence"},
	{Name: "/summary", Description: "Summarize the visible range"},
	{Name: "/insight", Description: "Summarize and ask the model for advice"},
	{Name: "/help", Description: "Show key bindings"},
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModePrompt:
		return m.handlePromptKeys(msg)
	case ModeModal:
		return m.handleModalKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.session.State().View

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "m":
		return m.switchView(navigation.ViewMonth)
	case "w":
		return m.switchView(navigation.ViewWeek)
	case "d":
		return m.switchView(navigation.ViewDay)
	case "a":
		return m.switchView(navigation.ViewAgenda)

	case "h", "pgup", "[":
		return m.navigate(navigation.Prev)
	case "l", "pgdown", "]":
		return m.navigate(navigation.Next)

	case "left":
		return m.shiftCursor(-1)
	case "right":
		return m.shiftCursor(1)
	case "up":
		if view == navigation.ViewMonth {
			return m.shiftCursor(-7)
		}
		return m.moveSelection(-1), nil
	case "down":
		if view == navigation.ViewMonth {
			return m.shiftCursor(7)
		}
		return m.moveSelection(1), nil

	case "j", "tab":
		return m.moveSelection(1), nil
	case "k", "shift+tab":
		return m.moveSelection(-1), nil

	case "t":
		m.selected = ""
		if m.session.GoToToday() {
			return m.withFetch()
		}
		return m, nil

	case "enter":
		if e := m.selectedEvent(); e != nil {
			m.detail = e
			return m.openModal(ModalDetail), nil
		}
		if view == navigation.ViewMonth || view == navigation.ViewWeek {
			if m.session.SelectDay(m.cursor()) {
				return m.withFetch()
			}
		}
		return m, nil

	case "esc":
		if m.selected != "" {
			m.selected = ""
			return m, nil
		}
		if m.session.SearchTerm() != "" {
			m.session.SetSearch("")
			m.keepSelection()
			return m.setStatus("Search cleared")
		}
		return m, nil

	case "/":
		m.mode = ModePrompt
		m.prompt.SetValue("")
		return m, m.prompt.Focus()

	case "c":
		f := m.session.Filters()
		f.ShowCancelled = !f.ShowCancelled
		return m.applyFilters(f, onOff("Cancelled events", f.ShowCancelled))
	case "p":
		f := m.session.Filters()
		f.ShowCompleted = !f.ShowCompleted
		return m.applyFilters(f, onOff("Past events", f.ShowCompleted))

	case "x":
		return m.cancelSelected(true)
	case "u":
		return m.cancelSelected(false)
	case "D", "delete":
		if e := m.selectedEvent(); e != nil {
			m.detail = e
			return m.openModal(ModalConfirmDelete), nil
		}
		return m, nil

	case "y":
		if e := m.selectedEvent(); e != nil {
			return m, commands.CopyURL(e)
		}
		return m, nil

	case "s":
		return m.requestSummary(false)
	case "i":
		return m.requestSummary(true)

	case "r":
		m.statusMsg = "Refreshing..."
		return m.withFetch()

	case "?":
		return m.openModal(ModalHelp), nil
	}

	return m, nil
}

func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.prompt.Blur()
		m.prompt.SetValue("")
		return m, nil

	case "tab":
		if value, ok := input.PromptAutocomplete(m.prompt.Value(), promptCommands); ok {
			m.prompt.SetValue(value)
			m.prompt.CursorEnd()
		}
		return m, nil

	case "enter":
		line := m.prompt.Value()
		m.mode = ModeNormal
		m.prompt.Blur()
		m.prompt.SetValue("")
		return m.runPrompt(input.Parse(line))
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.modalType {
	case ModalConfirmDelete:
		switch key {
		case "y", "o":
			return m.deleteDetail(session.ScopeOccurrence)
		case "f":
			if m.detail != nil && m.detail.IsOccurrence() {
				return m.deleteDetail(session.ScopeFollowing)
			}
		case "s":
			if m.detail != nil && m.detail.IsOccurrence() {
				return m.deleteDetail(session.ScopeSeries)
			}
		case "n", "esc", "q":
			return m.closeModal(), nil
		}
		return m, nil

	case ModalConfirmDraft:
		switch key {
		case "y", "enter":
			return m.saveDraft()
		case "n", "esc", "q":
			m = m.closeModal()
			return m.setStatus("Discarded")
		}
		return m, nil

	case ModalDetail:
		switch key {
		case "y":
			return m, commands.CopyURL(m.detail)
		case "x":
			m = m.closeModal()
			return m.cancelSelected(true)
		case "D", "delete":
			m.modalType = ModalConfirmDelete
			return m, nil
		}
	}

	switch key {
	case "esc", "q", "enter", "?":
		return m.closeModal(), nil
	}
	return m, nil
}

// runPrompt executes a submitted prompt line.
func (m Model) runPrompt(p input.Parsed) (tea.Model, tea.Cmd) {
	if p.IsSearch() {
		m.session.SetSearch(p.Arg)
		m.keepSelection()
		if p.Arg == "" {
			return m.setStatus("Search cleared")
		}
		return m.setStatus(fmt.Sprintf("Searching %q", p.Arg))
	}

	switch p.Command {
	case "/goto":
		date, err := dateutil.ParseRelativeDate(p.Arg, m.now())
		if err != nil {
			return m.setError(err)
		}
		m.selected = ""
		if m.session.GoTo(date) {
			return m.withFetch()
		}
		return m, nil

	case "/view":
		v, err := navigation.ParseView(p.Arg)
		if err != nil {
			return m.setError(err)
		}
		return m.switchView(v)

	case "/type":
		t, err := event.ParseType(p.Arg)
		if err != nil {
			return m.setError(err)
		}
		return m.applyFilters(m.session.Filters().ToggleType(t), "Toggled "+t.Label())

	case "/course":
		if p.Arg == "" {
			return m.setError(errors.New("/course needs a course id"))
		}
		return m.applyFilters(m.session.Filters().ToggleCourse(p.Arg), "Toggled course "+p.Arg)

	case "/priority":
		pr, err := event.ParsePriority(p.Arg)
		if err != nil {
			return m.setError(err)
		}
		return m.applyFilters(m.session.Filters().TogglePriority(pr), "Toggled "+strings.ToLower(string(pr))+" priority")

	case "/clear":
		m.session.SetSearch("")
		return m.applyFilters(filter.Default(), "Filters reset")

	case "/add":
		if p.Arg == "" {
			return m.setError(errors.New("/add needs a description, e.g. /add exam friday 10am"))
		}
		m.statusMsg = "Asking " + m.config.LLM.Model + "..."
		return m, commands.QuickAdd(m.ctx, m.config, p.Arg, m.now())

	case "/summary":
		return m.requestSummary(false)
	case "/insight":
		return m.requestSummary(true)

	case "/help":
		return m.openModal(ModalHelp), nil
	}

	return m.setError(fmt.Errorf("unknown command %s", p.Command))
}

func (m Model) switchView(v navigation.View) (tea.Model, tea.Cmd) {
	m.selected = ""
	if m.session.SetView(v) {
		return m.withFetch()
	}
	return m, nil
}

func (m Model) navigate(dir navigation.Direction) (tea.Model, tea.Cmd) {
	m.selected = ""
	if m.session.Navigate(dir) {
		return m.withFetch()
	}
	return m, nil
}

func (m Model) shiftCursor(days int) (tea.Model, tea.Cmd) {
	if m.session.State().View == navigation.ViewAgenda {
		return m, nil
	}
	if m.moveCursor(days) {
		return m.withFetch()
	}
	return m, nil
}

func (m Model) applyFilters(f filter.Filters, status string) (tea.Model, tea.Cmd) {
	m.session.SetFilters(f)
	m.keepSelection()
	return m.setStatus(status)
}

func (m Model) requestSummary(insight bool) (tea.Model, tea.Cmd) {
	m.statusMsg = "Summarizing..."
	if insight {
		m.statusMsg = "Asking " + m.config.LLM.Model + "..."
	}
	window := m.session.State().VisibleRange(m.config.NavigationOptions())
	return m, commands.BuildSummary(m.ctx, m.store, m.config, window, m.courseID, m.now(), insight)
}

// cancelSelected cancels or restores the selected event. Occurrences of a
// recurring event only change that occurrence.
func (m Model) cancelSelected(cancel bool) (tea.Model, tea.Cmd) {
	e := m.selectedEvent()
	if e == nil {
		return m, nil
	}
	if e.IsCancelled == cancel {
		return m, nil
	}
	p := event.Patch{IsCancelled: &cancel}
	updated, err := m.session.Update(m.ctx, e.ID, p, session.ScopeOccurrence)
	if err != nil {
		return m.setError(fmt.Errorf("updating %q: %w", e.Title, err))
	}
	m.selected = updated.ID
	verb := "Restored"
	if cancel {
		verb = "Cancelled"
	}
	m, status := m.setStatus(verb + " " + e.Title)
	m, fetch := m.withFetch()
	return m, tea.Batch(status, fetch)
}

func (m Model) deleteDetail(scope session.Scope) (tea.Model, tea.Cmd) {
	e := m.detail
	m = m.closeModal()
	if e == nil {
		return m, nil
	}
	if err := m.session.Delete(m.ctx, e.ID, scope); err != nil {
		return m.setError(fmt.Errorf("deleting %q: %w", e.Title, err))
	}
	m.selected = ""
	m, status := m.setStatus("Deleted " + e.Title)
	m, fetch := m.withFetch()
	return m, tea.Batch(status, fetch)
}

func (m Model) saveDraft() (tea.Model, tea.Cmd) {
	d := m.draft
	m = m.closeModal()
	if d == nil {
		return m, nil
	}
	created, err := m.session.Create(m.ctx, *d)
	if err != nil {
		return m.setError(fmt.Errorf("creating event: %w", err))
	}
	m.selected = ""
	if m.session.GoTo(created.StartTime) {
		m.logger.Debug("moved to the new event's date")
	}
	m, status := m.setStatus("Created " + created.Title)
	m, fetch := m.withFetch()
	return m, tea.Batch(status, fetch)
}

func onOff(what string, on bool) string {
	if on {
		return what + " shown"
	}
	return what + " hidden"
}
