// Package summary aggregates the events of a date range for the day
// overview and the `summary` output of the CLI.
package summary

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/llm"
	"github.com/javiermolinar/coursecal/internal/recurrence"
)

// Summary holds aggregated range data and optional insight.
type Summary struct {
	Window dateutil.DateRange
	Events []*event.CalendarEvent

	Total      int
	ByType     map[event.Type]int
	ByPriority map[event.Priority]int
	Cancelled  int
	AllDay     int
	Upcoming   int
	Past       int

	// Next is the first upcoming event that is not cancelled, or nil.
	Next *event.CalendarEvent
	// BusiestDay is the day with the most active events; zero when empty.
	BusiestDay   time.Time
	BusiestCount int

	Rejected []event.Rejected
	Insight  string
}

// Summarize counts the events that touch window. Events must already be
// expanded. Cancelled events count toward Total and Cancelled only.
func Summarize(events []*event.CalendarEvent, window dateutil.DateRange, now time.Time) *Summary {
	s := &Summary{
		Window:     window,
		ByType:     make(map[event.Type]int),
		ByPriority: make(map[event.Priority]int),
	}
	perDay := make(map[time.Time]int)

	for _, e := range events {
		if !touches(e, window) {
			continue
		}
		s.Events = append(s.Events, e)
		s.Total++
		if e.IsCancelled {
			s.Cancelled++
			continue
		}

		s.ByType[e.Type]++
		s.ByPriority[e.Priority]++
		if e.IsAllDay {
			s.AllDay++
		}
		if e.IsPast(now) {
			s.Past++
		} else {
			s.Upcoming++
			if s.Next == nil || e.StartTime.Before(s.Next.StartTime) {
				s.Next = e
			}
		}
		for _, d := range e.Days() {
			if window.Contains(d) {
				perDay[d]++
			}
		}
	}
	slices.SortStableFunc(s.Events, event.ByStart)

	for day, n := range perDay {
		if n > s.BusiestCount || (n == s.BusiestCount && day.Before(s.BusiestDay)) {
			s.BusiestDay, s.BusiestCount = day, n
		}
	}
	return s
}

func touches(e *event.CalendarEvent, window dateutil.DateRange) bool {
	for _, d := range e.Days() {
		if window.Contains(d) {
			return true
		}
	}
	return false
}

// BuildOptions configures the store-backed summary builder.
type BuildOptions struct {
	Window   dateutil.DateRange
	CourseID string
	Now      time.Time

	IncludeInsight bool
	// Client is used for the insight. When nil one is built from
	// Provider, Model and BaseURL.
	Client   llm.Client
	Provider string
	Model    string
	BaseURL  string
}

// Build loads, expands and sanitizes the window's events, summarizes them
// and optionally adds an LLM review.
func Build(ctx context.Context, store event.Store, opts BuildOptions) (*Summary, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	window := opts.Window
	if window.IsZero() {
		first, last := dateutil.WeekRange(now, time.Sunday)
		window = dateutil.Span(first, last)
	}

	stored, err := store.ListEvents(ctx, window.Start, window.End, opts.CourseID)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	expanded, failed := recurrence.ExpandAll(stored, window)
	valid, rejected := event.Sanitize(expanded)

	s := Summarize(valid, window, now)
	s.Rejected = append(failed, rejected...)

	if opts.IncludeInsight && s.Total > s.Cancelled {
		client := opts.Client
		if client == nil {
			if opts.Model == "" {
				return nil, errors.New("model is required for insight")
			}
			client, err = llm.NewClient(opts.Provider, opts.Model, opts.BaseURL)
			if err != nil {
				return nil, fmt.Errorf("creating LLM client: %w", err)
			}
		}
		insight, err := llm.Review(ctx, client, window, s.Events)
		if err != nil {
			return nil, fmt.Errorf("generating insight: %w", err)
		}
		s.Insight = insight
	}
	return s, nil
}
