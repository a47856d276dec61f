// Package tui provides the interactive calendar for coursecal.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursecal/internal/config"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/session"
	"github.com/javiermolinar/coursecal/internal/summary"
	"github.com/javiermolinar/coursecal/internal/tui/commands"
	"github.com/javiermolinar/coursecal/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt
	ModeModal
)

// ModalType identifies the type of modal.
type ModalType int

const (
	ModalNone ModalType = iota
	ModalDetail
	ModalConfirmDelete
	ModalConfirmDraft // Review a quick-add draft before saving
	ModalSummary
	ModalHelp
)

// Options configures the TUI.
type Options struct {
	Logger *zap.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
	// CourseID narrows the calendar to one course (plus events without one).
	CourseID string
}

// Model is the main TUI model.
//
// The session is shared by every copy of the model. It is only touched on
// the update loop; commands get what they need up front.
type Model struct {
	ctx      context.Context
	store    event.Store
	config   *config.Config
	session  *session.Session
	logger   *zap.Logger
	now      func() time.Time
	courseID string

	styles  *Styles
	overlay OverlayModel

	width  int
	height int

	mode      Mode
	modalType ModalType
	prompt    textinput.Model

	// selected is the id of the highlighted event, "" for none.
	selected string

	detail  *event.CalendarEvent
	summary *summary.Summary
	draft   *event.Draft

	loading    bool
	statusMsg  string
	statusTime time.Time
	err        error
}

// New creates the model and its session. It does not fetch; Init does.
func New(ctx context.Context, store event.Store, cfg *config.Config, opts Options) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("falling back to the local time zone", zap.Error(err))
		loc = time.Local
	}
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	now := func() time.Time { return clock().In(loc) }

	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		logger.Warn("loading theme", zap.String("theme", cfg.UI.Theme), zap.Error(err))
	}

	s := session.New(store, session.Options{
		Now:        now,
		Logger:     logger,
		View:       cfg.View(),
		Navigation: cfg.NavigationOptions(),
		Layout:     cfg.LayoutOptions(),
		CourseID:   opts.CourseID,
	})

	ti := textinput.New()
	ti.Placeholder = "Search, or /command"
	ti.Prompt = "› "
	ti.CharLimit = 200

	m := Model{
		ctx:      ctx,
		store:    store,
		config:   cfg,
		session:  s,
		logger:   logger,
		now:      now,
		courseID: opts.CourseID,
		styles:   NewStyles(t),
		overlay:  NewOverlayModel(),
		mode:     ModeNormal,
		prompt:   ti,
		loading:  true,
	}
	m.overlay.SetBackground(m.styles.ModalBgColor)
	return m
}

// Init starts the first fetch and the minute tick.
func (m Model) Init() tea.Cmd {
	_, fetch := m.withFetch()
	return tea.Batch(fetch, commands.Tick(m.now()))
}

// withFetch issues a ticket for the session's current window.
func (m Model) withFetch() (Model, tea.Cmd) {
	m.loading = true
	t := m.session.BeginFetch()
	return m, commands.Fetch(m.ctx, m.session, t)
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, store event.Store, cfg *config.Config, opts Options) error {
	model := New(ctx, store, cfg, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
