package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/recurrence"
	"github.com/javiermolinar/coursecal/internal/session"
)

const scopeUsage = "For occurrences of a recurring event: occurrence, following or series"

func (a *App) editCmd() *cobra.Command {
	var (
		flags    eventFlags
		title    string
		course   string
		noEnd    bool
		noRepeat bool
		restore  bool
		scope    string
	)

	cmd := &cobra.Command{
		Use:   "edit [event-id]",
		Short: "Change fields of an event",
		Long: `Change fields of an event. Only the flags you pass are changed.

Moving the date keeps the start time unless --start is also given.
For an occurrence of a recurring event (id SERIES@YYYY-MM-DD) --scope picks
whether only that occurrence, it and the following ones, or the whole
series changes.`,
		Example: `  coursecal edit 5f0c... --title="Midterm (room change)" --location="Hall B"
  coursecal edit 5f0c...@2025-03-10 --start=10:00 --end=11:30
  coursecal edit 5f0c...@2025-03-10 --scope=following --location=Online`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.ParseScope(scope)
			if err != nil {
				return err
			}
			if err := a.ensureStore(); err != nil {
				return err
			}

			ctx := cmd.Context()
			s := a.newSession("", nil)
			current, err := a.resolve(ctx, s, args[0])
			if err != nil {
				return err
			}

			p, err := flags.patch(cmd, current, a.nowIn())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if cmd.Flags().Changed("course-id") {
				p.CourseID = &course
			}
			if noEnd {
				p.ClearEnd = true
				p.EndTime = nil
			}
			if noRepeat {
				p.ClearRecurrence = true
				p.Recurrence = nil
			}
			if restore {
				cancelled := false
				p.IsCancelled = &cancelled
			}
			if p.IsEmpty() {
				return errors.New("nothing to change: pass at least one field flag")
			}

			e, err := s.Update(ctx, args[0], p, sc)
			if err != nil {
				return fmt.Errorf("updating event: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Updated event %s\n", e.ID)
			fmt.Fprintln(w, "  "+eventLine(e, PrintOpts{ShowCourse: true}))
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&course, "course-id", "", "Move the event to this course (empty removes it)")
	cmd.Flags().BoolVar(&noEnd, "no-end", false, "Remove the end time")
	cmd.Flags().BoolVar(&noRepeat, "no-repeat", false, "Stop the event from repeating")
	cmd.Flags().BoolVar(&restore, "restore", false, "Restore a cancelled event")
	cmd.Flags().StringVar(&scope, "scope", "", scopeUsage+" (default occurrence)")
	cmd.MarkFlagsMutuallyExclusive("end", "no-end")
	cmd.MarkFlagsMutuallyExclusive("repeat", "no-repeat")

	return cmd
}

// patch converts the changed flags into a patch against current.
func (f *eventFlags) patch(cmd *cobra.Command, current *event.CalendarEvent, now time.Time) (event.Patch, error) {
	var p event.Patch
	changed := cmd.Flags().Changed

	loc := current.StartTime.Location()
	date := dateutil.TruncateToDay(current.StartTime)
	if changed("date") {
		d, err := dateutil.ParseRelativeDate(f.date, now.In(loc))
		if err != nil {
			return p, fmt.Errorf("--date: %w", err)
		}
		date = d
	}

	allDay := current.IsAllDay
	if changed("all-day") {
		allDay = f.allDay
		p.IsAllDay = &f.allDay
	}

	if changed("date") || changed("start") || changed("all-day") {
		clock := current.StartTime.Format("15:04")
		if changed("start") {
			clock = f.start
		}
		start := date
		if !allDay {
			t, err := event.At(date, clock)
			if err != nil {
				return p, fmt.Errorf("--start: %w", err)
			}
			start = t
		}
		p.StartTime = &start
	}

	if changed("end") || changed("end-date") {
		endDay := date
		if changed("end-date") {
			d, err := dateutil.ParseRelativeDate(f.endDate, now.In(loc))
			if err != nil {
				return p, fmt.Errorf("--end-date: %w", err)
			}
			endDay = d
		}
		end := endDay
		if !allDay {
			clock := f.end
			if clock == "" {
				clock = current.EffectiveEnd().In(loc).Format("15:04")
			}
			t, err := event.At(endDay, clock)
			if err != nil {
				return p, fmt.Errorf("--end: %w", err)
			}
			end = t
		}
		p.EndTime = &end
	} else if p.StartTime != nil && current.EndTime != nil {
		// Moving the start keeps the duration.
		end := current.EndTime.Add(p.StartTime.Sub(current.StartTime))
		p.EndTime = &end
	}

	if changed("type") {
		t, err := event.ParseType(f.eventType)
		if err != nil {
			return p, err
		}
		p.Type = &t
	}
	if changed("priority") {
		pr, err := event.ParsePriority(f.priority)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if changed("visibility") {
		v, err := event.ParseVisibility(f.visibility)
		if err != nil {
			return p, err
		}
		p.Visibility = &v
	}
	if changed("repeat") {
		r, err := recurrence.ParseRule(f.repeat)
		if err != nil {
			return p, err
		}
		p.Recurrence = r
	}
	if changed("location") {
		p.Location = &f.location
	}
	if changed("url") {
		p.MeetingURL = &f.url
	}
	if changed("description") {
		p.Description = &f.description
	}
	if changed("tag") {
		p.Tags = &f.tags
	}
	if changed("attendee") {
		p.Attendees = &f.attendees
	}
	if changed("reminder") {
		p.ReminderMinutes = &f.reminder
	}
	if changed("color") {
		p.Color = &f.color
	}
	return p, nil
}

// resolve finds the event behind id: a materialized occurrence for
// occurrence ids, the stored event otherwise.
func (a *App) resolve(ctx context.Context, s *session.Session, id string) (*event.CalendarEvent, error) {
	occ, _, err := s.Occurrence(ctx, id)
	if errors.Is(err, session.ErrNotOccurrence) {
		return a.store.GetEvent(ctx, id)
	}
	return occ, err
}
