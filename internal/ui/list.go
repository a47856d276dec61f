package ui

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/layout"
	"github.com/javiermolinar/coursecal/internal/recurrence"
)

func (a *App) listCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events in a date range",
		Long: `List every event within a date range, with ids, including cancelled ones.

If no dates are specified, lists today's events.
If only --start is specified, lists events for that single day.
If both --start and --end are specified, lists events in that range (inclusive).
Recurring series are expanded; occurrence ids look like SERIES@YYYY-MM-DD.`,
		Example: `  coursecal list
  coursecal list --start=2025-01-15
  coursecal list --start=2025-01-15 --end=2025-01-20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, err := a.dateRange(startDate, endDate)
			if err != nil {
				return err
			}
			if err := a.ensureStore(); err != nil {
				return err
			}

			events, err := a.store.ListEvents(cmd.Context(), window.Start, window.End, a.course)
			if err != nil {
				return fmt.Errorf("listing events: %w", err)
			}
			events = a.expand(events, window)

			w := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(w, "No events found in the specified date range.")
				return nil
			}
			renderAgenda(w, layout.GroupAgenda(events, window), a.nowIn(), PrintOpts{ShowIDs: true, ShowCourse: true})
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD or relative, defaults to today)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD or relative, defaults to start date)")

	return cmd
}

// dateRange parses --start/--end style flags relative to now.
// An empty end means the start day only.
func (a *App) dateRange(start, end string) (dateutil.DateRange, error) {
	from, err := dateutil.ParseRelativeDate(start, a.nowIn())
	if err != nil {
		return dateutil.DateRange{}, fmt.Errorf("start date: %w", err)
	}
	to := from
	if end != "" {
		if to, err = dateutil.ParseRelativeDate(end, a.nowIn()); err != nil {
			return dateutil.DateRange{}, fmt.Errorf("end date: %w", err)
		}
	}
	if to.Before(from) {
		return dateutil.DateRange{}, dateutil.ErrEndDateBeforeStart
	}
	return dateutil.DateRange{Start: from, End: to}, nil
}

// expand materializes series inside window and drops malformed records,
// logging each one.
func (a *App) expand(events []*event.CalendarEvent, window dateutil.DateRange) []*event.CalendarEvent {
	expanded, failed := recurrence.ExpandAll(events, window)
	valid, rejected := event.Sanitize(expanded)
	for _, r := range append(failed, rejected...) {
		a.logger.Warn("skipping malformed event",
			zap.String("id", r.Event.ID),
			zap.Error(r.Err),
		)
	}
	return valid
}
