package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/llm"
	"github.com/javiermolinar/coursecal/internal/recurrence"
)

// eventFlags are the field flags shared by add and edit.
type eventFlags struct {
	date        string
	start       string
	end         string
	endDate     string
	allDay      bool
	eventType   string
	priority    string
	location    string
	url         string
	description string
	tags        []string
	attendees   []string
	reminder    int
	repeat      string
	visibility  string
	color       string
}

func (f *eventFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Date (YYYY-MM-DD or relative, default: today)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time (HH:MM)")
	cmd.Flags().StringVar(&f.endDate, "end-date", "", "End date for events spanning several days (default: --date)")
	cmd.Flags().BoolVar(&f.allDay, "all-day", false, "All-day event")
	cmd.Flags().StringVarP(&f.eventType, "type", "t", "", "Event type: "+typeNames())
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "Priority: low, medium, high, urgent")
	cmd.Flags().StringVarP(&f.location, "location", "l", "", "Location")
	cmd.Flags().StringVar(&f.url, "url", "", "Meeting URL (http or https)")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Description")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Tag (repeatable, at most 5)")
	cmd.Flags().StringSliceVar(&f.attendees, "attendee", nil, "Attendee (repeatable)")
	cmd.Flags().IntVar(&f.reminder, "reminder", event.DefaultReminderMinutes, "Reminder in minutes before the start (0 = none)")
	cmd.Flags().StringVar(&f.repeat, "repeat", "", `Recurrence rule, e.g. "FREQ=WEEKLY;BYDAY=MO,WE;COUNT=10"`)
	cmd.Flags().StringVar(&f.visibility, "visibility", "", "Visibility: private, course, public")
	cmd.Flags().StringVar(&f.color, "color", "", "Color override: blue, red, green, purple, orange, pink, indigo, yellow, gray")
}

func typeNames() string {
	names := make([]string, 0, len(event.Types()))
	for _, t := range event.Types() {
		names = append(names, strings.ToLower(string(t)))
	}
	return strings.Join(names, ", ")
}

// times resolves the date and clock flags into start and end times.
// All-day events start at midnight; their end is the last covered day.
func (f *eventFlags) times(now time.Time) (start time.Time, end *time.Time, err error) {
	date, err := dateutil.ParseRelativeDate(f.date, now)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("--date: %w", err)
	}
	endDay := date
	if f.endDate != "" {
		if endDay, err = dateutil.ParseRelativeDate(f.endDate, now); err != nil {
			return time.Time{}, nil, fmt.Errorf("--end-date: %w", err)
		}
	}

	if f.allDay {
		if f.endDate != "" {
			end = &endDay
		}
		return date, end, nil
	}

	if f.start == "" {
		return time.Time{}, nil, errors.New("--start is required unless --all-day is set")
	}
	if start, err = event.At(date, f.start); err != nil {
		return time.Time{}, nil, fmt.Errorf("--start: %w", err)
	}
	if f.end != "" {
		t, err := event.At(endDay, f.end)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("--end: %w", err)
		}
		end = &t
	}
	return start, end, nil
}

// draft builds a new-event draft from the flags.
func (f *eventFlags) draft(title, course string, now time.Time) (event.Draft, error) {
	d := event.Draft{
		Title:       title,
		Description: f.description,
		Location:    f.location,
		MeetingURL:  f.url,
		IsAllDay:    f.allDay,
		Tags:        f.tags,
		Attendees:   f.attendees,
		CourseID:    course,
		Color:       f.color,
	}

	var err error
	if d.StartTime, d.EndTime, err = f.times(now); err != nil {
		return event.Draft{}, err
	}
	if f.eventType != "" {
		if d.Type, err = event.ParseType(f.eventType); err != nil {
			return event.Draft{}, err
		}
	}
	if f.priority != "" {
		if d.Priority, err = event.ParsePriority(f.priority); err != nil {
			return event.Draft{}, err
		}
	}
	if f.visibility != "" {
		if d.Visibility, err = event.ParseVisibility(f.visibility); err != nil {
			return event.Draft{}, err
		}
	}
	if f.repeat != "" {
		if d.Recurrence, err = recurrence.ParseRule(f.repeat); err != nil {
			return event.Draft{}, err
		}
		d.Recurring = true
	}
	reminder := f.reminder
	d.ReminderMinutes = &reminder
	return d, nil
}

func (a *App) addCmd() *cobra.Command {
	var (
		flags eventFlags
		quick bool
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new event",
		Long: `Add a new event to the calendar.

With --quick the argument is a natural-language description that the
configured language model turns into an event.

The global --course flag assigns the event to a course.`,
		Example: `  coursecal add "Linear algebra" --date=2025-01-10 --start=09:00 --end=10:30 --type=lecture --repeat="FREQ=WEEKLY;BYDAY=MO,WE"
  coursecal add "Finals week" --all-day --date=2025-05-12 --end-date=2025-05-16 --type=exam --priority=urgent
  coursecal --course=CS101 add --quick "lab report due friday at 5pm"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			now := a.nowIn()

			var (
				d   event.Draft
				err error
			)
			if quick {
				d, err = a.quickDraft(cmd, title, now)
				if err != nil {
					return err
				}
				if a.course != "" && d.CourseID == "" {
					d.CourseID = a.course
				}
			} else if d, err = flags.draft(title, a.course, now); err != nil {
				return err
			}

			if err := a.ensureStore(); err != nil {
				return err
			}
			e, err := a.newSession("", nil).Create(cmd.Context(), d)
			if err != nil {
				return fmt.Errorf("creating event: %w", err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Created event %s\n", e.ID)
			fmt.Fprintln(w, "  "+eventLine(e, PrintOpts{ShowCourse: true}))
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVarP(&quick, "quick", "q", false, "Parse the title as a natural-language description")

	return cmd
}

// quickDraft asks the configured model to turn input into a draft.
func (a *App) quickDraft(cmd *cobra.Command, input string, now time.Time) (event.Draft, error) {
	client, err := llm.NewClient(a.config.LLM.Provider, a.config.LLM.Model, a.config.LLM.BaseURL)
	if err != nil {
		return event.Draft{}, fmt.Errorf("creating LLM client: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), formatMuted("Asking "+a.config.LLM.Model+"..."))
	d, err := llm.QuickAdd(cmd.Context(), client, input, now)
	if err != nil {
		return event.Draft{}, fmt.Errorf("parsing %q: %w", input, err)
	}
	return d, nil
}
