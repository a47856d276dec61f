package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursecal/internal/session"
	"github.com/javiermolinar/coursecal/internal/tui/commands"
)

const (
	statusDuration = 3 * time.Second
	errorDuration  = 5 * time.Second
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.Width = max(m.width-8, 10)
		return m, nil

	case commands.FetchedMsg:
		err := m.session.CompleteFetch(msg.Ticket, msg.Events, msg.Err)
		if errors.Is(err, session.ErrStaleFetch) {
			return m, nil
		}
		m.loading = false
		if err != nil {
			return m.setError(err)
		}
		m.err = nil
		m.keepSelection()
		return m, nil

	case commands.ErrMsg:
		return m.setError(msg.Err)

	case commands.StatusMsgCmd:
		return m.setStatus(msg.Msg)

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
			m.err = nil
		}
		return m, nil

	case commands.TickMsg:
		return m, commands.Tick(m.now())

	case commands.SummaryMsg:
		m.summary = msg.Summary
		m.statusMsg = ""
		return m.openModal(ModalSummary), nil

	case commands.DraftMsg:
		d := msg.Draft
		if d.CourseID == "" {
			d.CourseID = m.courseID
		}
		m.draft = &d
		m.statusMsg = ""
		return m.openModal(ModalConfirmDraft), nil
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) setStatus(text string) (Model, tea.Cmd) {
	m.statusMsg = text
	m.err = nil
	m.statusTime = m.now().Add(statusDuration)
	return m, commands.ClearStatusAfter(statusDuration)
}

func (m Model) setError(err error) (Model, tea.Cmd) {
	m.logger.Debug("tui error", zap.Error(err))
	m.err = err
	m.statusMsg = fmt.Sprintf("Error: %v", err)
	m.statusTime = m.now().Add(errorDuration)
	return m, commands.ClearStatusAfter(errorDuration)
}

func (m Model) openModal(t ModalType) Model {
	m.mode = ModeModal
	m.modalType = t
	m.overlay.active = true
	return m
}

func (m Model) closeModal() Model {
	m.mode = ModeNormal
	m.modalType = ModalNone
	m.overlay.active = false
	m.detail = nil
	m.summary = nil
	m.draft = nil
	return m
}
