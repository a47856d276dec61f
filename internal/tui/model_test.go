package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/coursecal/internal/config"
	"github.com/javiermolinar/coursecal/internal/db"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/navigation"
	"github.com/javiermolinar/coursecal/internal/summary"
	"github.com/javiermolinar/coursecal/internal/tui/commands"
)

var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *db.SQLite {
	t.Helper()
	store, err := db.New(":memory:", db.WithLocation(time.UTC), db.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func addEvent(t *testing.T, store *db.SQLite, d event.Draft) *event.CalendarEvent {
	t.Helper()
	e, err := store.CreateEvent(context.Background(), d)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return e
}

// newTestModel builds a loaded model over a store holding one lecture on
// the current day.
func newTestModel(t *testing.T) (Model, *db.SQLite, *event.CalendarEvent) {
	t.Helper()
	store := newTestStore(t)
	lecture := addEvent(t, store, event.Draft{
		Title:     "Lecture",
		Type:      event.TypeLecture,
		StartTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   ptr(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)),
		CourseID:  "MATH101",
	})

	cfg := config.Default()
	cfg.Calendar.Timezone = "UTC"
	m := New(context.Background(), store, cfg, Options{Now: func() time.Time { return testNow }})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return load(t, m), store, lecture
}

func ptr[T any](v T) *T { return &v }

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm
}

// load runs a fetch for the current window to completion.
func load(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := m.withFetch()
	msg := cmd()
	fetched, ok := msg.(commands.FetchedMsg)
	if !ok {
		t.Fatalf("fetch returned %T", msg)
	}
	if fetched.Err != nil {
		t.Fatalf("fetch: %v", fetched.Err)
	}
	return update(t, m, fetched)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, key(k))
	}
	return m
}

func TestNew_Defaults(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.loading {
		t.Error("still loading after the first fetch")
	}
	if got := m.session.State().View; got != navigation.ViewMonth {
		t.Errorf("view = %v, want month", got)
	}
	if got := m.session.Title(); got != "March 2025" {
		t.Errorf("title = %q", got)
	}
	if len(m.session.Visible()) != 1 {
		t.Errorf("visible = %d events, want 1", len(m.session.Visible()))
	}
	if m.Init() == nil {
		t.Error("Init returned no command")
	}
}

func TestUpdate_StaleFetchIgnored(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, cmd := m.withFetch()
	stale := cmd()

	m = press(t, m, "l")
	if !m.loading {
		t.Fatal("navigating did not start a fetch")
	}
	m = update(t, m, stale)
	if !m.loading {
		t.Error("stale fetch ended the pending load")
	}
	if m.err != nil {
		t.Errorf("stale fetch set err: %v", m.err)
	}

	m = load(t, m)
	if got := m.session.Title(); got != "April 2025" {
		t.Errorf("title = %q, want April 2025", got)
	}
	if len(m.session.Visible()) != 0 {
		t.Errorf("April shows %d events, want 0", len(m.session.Visible()))
	}
}

func TestUpdate_FetchError(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, cmd := m.withFetch()
	fetched := cmd().(commands.FetchedMsg)
	fetched.Err = errors.New("disk on fire")

	m = update(t, m, fetched)
	if m.err == nil || !strings.Contains(m.statusMsg, "disk on fire") {
		t.Errorf("err = %v, status = %q", m.err, m.statusMsg)
	}
	if len(m.session.Visible()) != 1 {
		t.Error("failed fetch dropped the previous snapshot")
	}
}

func TestNavigationKeys(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		wantView  navigation.View
		wantTitle string
	}{
		{"next month", []string{"l"}, navigation.ViewMonth, "April 2025"},
		{"previous month", []string{"h"}, navigation.ViewMonth, "February 2025"},
		{"back to today", []string{"l", "l", "t"}, navigation.ViewMonth, "March 2025"},
		{"week view", []string{"w"}, navigation.ViewWeek, "Mar 9 - Mar 15, 2025"},
		{"day view", []string{"d"}, navigation.ViewDay, "Monday, March 10, 2025"},
		{"next day", []string{"d", "]"}, navigation.ViewDay, "Tuesday, March 11, 2025"},
		{"cursor moves day", []string{"right", "d"}, navigation.ViewDay, "Tuesday, March 11, 2025"},
		{"agenda", []string{"a"}, navigation.ViewAgenda, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestModel(t)
			m = press(t, m, tt.keys...)
			if got := m.session.State().View; got != tt.wantView {
				t.Errorf("view = %v, want %v", got, tt.wantView)
			}
			if tt.wantTitle != "" {
				if got := m.session.Title(); got != tt.wantTitle {
					t.Errorf("title = %q, want %q", got, tt.wantTitle)
				}
			}
		})
	}
}

func TestSelectionAndDetail(t *testing.T) {
	m, _, lecture := newTestModel(t)

	m = press(t, m, "j")
	if m.selected != lecture.ID {
		t.Fatalf("selected = %q, want %q", m.selected, lecture.ID)
	}
	// A single event wraps onto itself.
	m = press(t, m, "j")
	if m.selected != lecture.ID {
		t.Errorf("selection wrapped to %q", m.selected)
	}

	m = press(t, m, "enter")
	if m.mode != ModeModal || m.modalType != ModalDetail {
		t.Fatalf("mode = %v, modal = %v", m.mode, m.modalType)
	}
	if m.detail == nil || m.detail.ID != lecture.ID {
		t.Errorf("detail = %+v", m.detail)
	}

	m = press(t, m, "esc")
	if m.mode != ModeNormal || m.detail != nil {
		t.Errorf("esc left mode = %v, detail = %v", m.mode, m.detail)
	}
	m = press(t, m, "esc")
	if m.selected != "" {
		t.Errorf("second esc kept selection %q", m.selected)
	}
}

func TestSelection_EmptyDay(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "right", "j")
	if m.selected != "" {
		t.Errorf("selected %q on a day without events", m.selected)
	}
}

func TestCancelSelected(t *testing.T) {
	m, store, lecture := newTestModel(t)

	m = press(t, m, "j", "x")
	if !strings.HasPrefix(m.statusMsg, "Cancelled Lecture") {
		t.Errorf("status = %q", m.statusMsg)
	}
	got, err := store.GetEvent(context.Background(), lecture.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if !got.IsCancelled {
		t.Error("event not cancelled in the store")
	}

	// Cancelled events are hidden by default, which drops the selection.
	m = load(t, m)
	if m.selected != "" {
		t.Errorf("selection survived a hidden event: %q", m.selected)
	}

	m = press(t, m, "c")
	if !m.session.Filters().ShowCancelled {
		t.Fatal("c did not show cancelled events")
	}
	if m.statusMsg != "Cancelled events shown" {
		t.Errorf("status = %q", m.statusMsg)
	}
	m = press(t, m, "j", "u")
	got, _ = store.GetEvent(context.Background(), lecture.ID)
	if got.IsCancelled {
		t.Error("u did not restore the event")
	}
}

func TestDeleteSelected(t *testing.T) {
	m, store, lecture := newTestModel(t)

	m = press(t, m, "j", "D")
	if m.modalType != ModalConfirmDelete {
		t.Fatalf("modal = %v, want confirm delete", m.modalType)
	}
	m = press(t, m, "n")
	if m.mode != ModeNormal {
		t.Fatal("n did not close the confirmation")
	}
	if _, err := store.GetEvent(context.Background(), lecture.ID); err != nil {
		t.Fatalf("n deleted the event: %v", err)
	}

	m = press(t, m, "D", "y")
	if _, err := store.GetEvent(context.Background(), lecture.ID); !errors.Is(err, event.ErrEventNotFound) {
		t.Errorf("GetEvent after delete: err = %v, want ErrEventNotFound", err)
	}
	m = load(t, m)
	if len(m.session.Visible()) != 0 {
		t.Errorf("visible = %d after delete", len(m.session.Visible()))
	}
}

func TestPrompt_Search(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(t, m, "/")
	if m.mode != ModePrompt {
		t.Fatalf("mode = %v, want prompt", m.mode)
	}
	m = press(t, m, "lec", "enter")
	if m.mode != ModeNormal {
		t.Errorf("mode after enter = %v", m.mode)
	}
	if got := m.session.SearchTerm(); got != "lec" {
		t.Errorf("search = %q, want lec", got)
	}
	if len(m.session.Visible()) != 1 {
		t.Errorf("search hid the lecture")
	}

	m = press(t, m, "/", "zzz", "enter")
	if len(m.session.Visible()) != 0 {
		t.Errorf("search zzz shows %d events", len(m.session.Visible()))
	}

	m = press(t, m, "esc")
	if m.session.SearchTerm() != "" {
		t.Errorf("esc kept search %q", m.session.SearchTerm())
	}
}

func TestPrompt_Commands(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		check   func(t *testing.T, m Model)
		wantErr bool
	}{
		{
			name: "goto",
			line: "/goto 2025-04-15",
			check: func(t *testing.T, m Model) {
				if got := m.session.Title(); got != "April 2025" {
					t.Errorf("title = %q", got)
				}
				if got := m.cursor().Day(); got != 15 {
					t.Errorf("cursor day = %d", got)
				}
			},
		},
		{
			name: "view",
			line: "/view WEEK",
			check: func(t *testing.T, m Model) {
				if m.session.State().View != navigation.ViewWeek {
					t.Errorf("view = %v", m.session.State().View)
				}
			},
		},
		{
			name: "type filter",
			line: "/type exam",
			check: func(t *testing.T, m Model) {
				if len(m.session.Visible()) != 0 {
					t.Error("exam filter kept the lecture")
				}
			},
		},
		{
			name: "course filter",
			line: "/course MATH101",
			check: func(t *testing.T, m Model) {
				if len(m.session.Visible()) != 1 {
					t.Error("course filter hid its own lecture")
				}
			},
		},
		{
			name: "help",
			line: "/help",
			check: func(t *testing.T, m Model) {
				if m.modalType != ModalHelp {
					t.Errorf("modal = %v", m.modalType)
				}
			},
		},
		{name: "unknown", line: "/nope", wantErr: true},
		{name: "bad date", line: "/goto someday", wantErr: true},
		{name: "bad view", line: "/view year", wantErr: true},
		{name: "course without id", line: "/course", wantErr: true},
		{name: "add without text", line: "/add", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestModel(t)
			m = press(t, m, "/")
			m.prompt.SetValue(tt.line)
			m = press(t, m, "enter")
			if m.session.NeedsFetch() {
				m = load(t, m)
			}
			if tt.wantErr {
				if m.err == nil {
					t.Errorf("%s: no error, status %q", tt.line, m.statusMsg)
				}
				return
			}
			if m.err != nil {
				t.Fatalf("%s: %v", tt.line, m.err)
			}
			tt.check(t, m)
		})
	}
}

func TestPrompt_ClearResetsFilters(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "/")
	m.prompt.SetValue("/type exam")
	m = press(t, m, "enter", "/")
	m.prompt.SetValue("/clear")
	m = press(t, m, "enter")
	if len(m.session.Visible()) != 1 {
		t.Errorf("visible = %d after /clear", len(m.session.Visible()))
	}
	if m.statusMsg != "Filters reset" {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestPrompt_Autocomplete(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "/")
	m.prompt.SetValue("/sum")
	m = press(t, m, "tab")
	if got := m.prompt.Value(); got != "/summary " {
		t.Errorf("autocomplete = %q", got)
	}
	m = press(t, m, "esc")
	if m.mode != ModeNormal || m.prompt.Value() != "" {
		t.Errorf("esc left mode %v, value %q", m.mode, m.prompt.Value())
	}
}

func TestDraftMsg(t *testing.T) {
	m, store, _ := newTestModel(t)

	draft := event.Draft{
		Title:     "Essay",
		Type:      event.TypeAssignment,
		StartTime: time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC),
	}
	m = update(t, m, commands.DraftMsg{Input: "essay wednesday 10am", Draft: draft})
	if m.modalType != ModalConfirmDraft {
		t.Fatalf("modal = %v, want confirm draft", m.modalType)
	}

	m = press(t, m, "y")
	if m.mode != ModeNormal {
		t.Errorf("mode = %v after saving", m.mode)
	}
	if m.statusMsg != "Created Essay" {
		t.Errorf("status = %q", m.statusMsg)
	}
	if got := m.cursor().Day(); got != 12 {
		t.Errorf("cursor day = %d, want 12", got)
	}

	events, err := store.ListEvents(context.Background(), testNow, testNow.AddDate(0, 0, 7), "")
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("store has %d events, want 2", len(events))
	}
}

func TestDraftMsg_Discard(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.courseID = "CS50"
	m = update(t, m, commands.DraftMsg{Draft: event.Draft{Title: "Nope", StartTime: testNow}})
	if m.draft == nil || m.draft.CourseID != "CS50" {
		t.Errorf("draft = %+v, want course CS50", m.draft)
	}
	m = press(t, m, "n")
	if m.statusMsg != "Discarded" || m.draft != nil {
		t.Errorf("status = %q, draft = %v", m.statusMsg, m.draft)
	}
}

func TestSummaryMsg(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = update(t, m, commands.SummaryMsg{Summary: &summary.Summary{Window: m.session.Window()}})
	if m.modalType != ModalSummary {
		t.Fatalf("modal = %v, want summary", m.modalType)
	}
	m = press(t, m, "q")
	if m.mode != ModeNormal || m.summary != nil {
		t.Errorf("q left mode %v", m.mode)
	}
}

func TestClearStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = m.setStatus("hello")

	// The status expires relative to the model clock.
	m = update(t, m, commands.ClearStatusMsg{})
	if m.statusMsg != "hello" {
		t.Errorf("status cleared before it expired")
	}
	m.now = func() time.Time { return testNow.Add(time.Minute) }
	m = update(t, m, commands.ClearStatusMsg{})
	if m.statusMsg != "" {
		t.Errorf("status = %q, want cleared", m.statusMsg)
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
