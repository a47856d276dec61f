// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/coursecal/internal/config"
	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/llm"
	"github.com/javiermolinar/coursecal/internal/session"
	"github.com/javiermolinar/coursecal/internal/summary"
)

// FetchedMsg carries the result of a window fetch back to the update loop.
type FetchedMsg struct {
	Ticket session.Ticket
	Events []*event.CalendarEvent
	Err    error
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// SummaryMsg is sent when a window summary is ready.
type SummaryMsg struct {
	Summary *summary.Summary
}

// DraftMsg is sent when the model has turned quick-add text into a draft.
type DraftMsg struct {
	Input string
	Draft event.Draft
}

// TickMsg fires once a minute so the now indicator keeps moving.
type TickMsg struct {
	At time.Time
}

// Fetch loads the window of a ticket. Session.Load does not touch session
// state, so it is safe to run off the update loop.
func Fetch(ctx context.Context, s *session.Session, t session.Ticket) tea.Cmd {
	return func() tea.Msg {
		events, err := s.Load(ctx, t)
		return FetchedMsg{Ticket: t, Events: events, Err: err}
	}
}

// BuildSummary summarizes a window, optionally asking the configured model
// for an insight.
func BuildSummary(ctx context.Context, store event.Store, cfg *config.Config, window dateutil.DateRange, courseID string, now time.Time, insight bool) tea.Cmd {
	return func() tea.Msg {
		opts := summary.BuildOptions{
			Window:         window,
			CourseID:       courseID,
			Now:            now,
			IncludeInsight: insight,
		}
		if cfg != nil {
			opts.Provider = cfg.LLM.Provider
			opts.Model = cfg.LLM.Model
			opts.BaseURL = cfg.LLM.BaseURL
		}
		s, err := summary.Build(ctx, store, opts)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("summarizing %s: %w", window, err)}
		}
		return SummaryMsg{Summary: s}
	}
}

// QuickAdd asks the configured model to parse free text into a draft.
func QuickAdd(ctx context.Context, cfg *config.Config, input string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		client, err := llm.NewClient(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("creating LLM client: %w", err)}
		}
		d, err := llm.QuickAdd(ctx, client, input, now)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("parsing %q: %w", input, err)}
		}
		return DraftMsg{Input: input, Draft: d}
	}
}

// CopyURL puts an event's meeting URL on the clipboard.
func CopyURL(e *event.CalendarEvent) tea.Cmd {
	return func() tea.Msg {
		if e == nil || e.MeetingURL == "" {
			return StatusMsgCmd{Msg: "No meeting URL"}
		}
		if err := clipboard.WriteAll(e.MeetingURL); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsgCmd{Msg: "Copied " + e.MeetingURL}
	}
}

// Status emits a temporary status message.
func Status(msg string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsgCmd{Msg: msg}
	}
}

// ClearStatusAfter schedules a ClearStatusMsg.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// Tick schedules the next TickMsg on the minute boundary.
func Tick(now time.Time) tea.Cmd {
	next := now.Truncate(time.Minute).Add(time.Minute)
	return tea.Tick(next.Sub(now), func(t time.Time) tea.Msg {
		return TickMsg{At: t}
	})
}
