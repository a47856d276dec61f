package ui

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/ics"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export events as iCalendar",
		Long: `Write events to an .ics file, or to stdout when the file is - or omitted.

Without --start every event is exported. With a range, events overlapping
it are exported, plus every recurring series that has started by its end.`,
		Example: `  coursecal export semester.ics
  coursecal --course=CS101 export --start=2025-01-01 --end=2025-06-30 - > cs101.ics`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			ctx := cmd.Context()

			var (
				events []*event.CalendarEvent
				err    error
			)
			if startDate == "" && endDate == "" {
				events, err = a.store.AllEvents(ctx)
				if err == nil && a.course != "" {
					events = inCourse(events, a.course)
				}
			} else {
				window, rerr := a.dateRange(startDate, endDate)
				if rerr != nil {
					return rerr
				}
				events, err = a.store.ListEvents(ctx, window.Start, window.End, a.course)
			}
			if err != nil {
				return fmt.Errorf("listing events: %w", err)
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			opts := ics.ExportOptions{Now: a.now()}
			if path == "-" {
				return ics.Export(cmd.OutOrStdout(), events, opts)
			}

			if err := writeCalendarFile(path, events, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d events to %s\n", len(events), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD or relative)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD or relative, defaults to start date)")
	return cmd
}

// writeCalendarFile writes events to path as iCalendar. The file is flushed
// and closed before returning, so a failed write is never reported as done.
func writeCalendarFile(path string, events []*event.CalendarEvent, opts ics.ExportOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := ics.Export(w, events, opts); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// inCourse keeps the events of course and the events without a course.
func inCourse(events []*event.CalendarEvent, course string) []*event.CalendarEvent {
	out := events[:0:0]
	for _, e := range events {
		if !e.HasCourse() || e.CourseID == course {
			out = append(out, e)
		}
	}
	return out
}
