package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/filter"
	"github.com/javiermolinar/coursecal/internal/navigation"
	"github.com/javiermolinar/coursecal/internal/session"
)

type viewKind struct {
	view  navigation.View
	use   string
	short string
}

var (
	viewMonth  = viewKind{navigation.ViewMonth, "month", "Show the month grid"}
	viewWeek   = viewKind{navigation.ViewWeek, "week", "Show the week timeline"}
	viewDay    = viewKind{navigation.ViewDay, "day", "Show one day's timeline"}
	viewAgenda = viewKind{navigation.ViewAgenda, "agenda", "Show upcoming and recent events by day"}
)

// viewFlags are the filter and navigation flags shared by the view commands.
type viewFlags struct {
	date          string
	search        string
	types         []string
	courses       []string
	priorities    []string
	hidePast      bool
	showCancelled bool
	ids           bool
}

func (f *viewFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Date to show (YYYY-MM-DD, today, tomorrow, monday, next-week, ...)")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Only show events whose title or description contains this text")
	cmd.Flags().StringSliceVar(&f.types, "type", nil, "Only show these event types (repeatable)")
	cmd.Flags().StringSliceVar(&f.courses, "filter-course", nil, "Only show these courses (repeatable)")
	cmd.Flags().StringSliceVar(&f.priorities, "priority", nil, "Only show these priorities (repeatable)")
	cmd.Flags().BoolVar(&f.hidePast, "hide-past", false, "Hide events that have already ended")
	cmd.Flags().BoolVar(&f.showCancelled, "show-cancelled", false, "Show cancelled events")
	cmd.Flags().BoolVar(&f.ids, "ids", false, "Show event ids")
}

// filters converts the flags into a filter selection.
func (f *viewFlags) filters() (*filter.Filters, error) {
	out := filter.Default()
	out.ShowCompleted = !f.hidePast
	out.ShowCancelled = f.showCancelled
	out.CourseIDs = f.courses

	for _, s := range f.types {
		t, err := event.ParseType(s)
		if err != nil {
			return nil, err
		}
		out.EventTypes = append(out.EventTypes, t)
	}
	for _, s := range f.priorities {
		p, err := event.ParsePriority(s)
		if err != nil {
			return nil, err
		}
		out.Priorities = append(out.Priorities, p)
	}
	return &out, nil
}

func (a *App) viewCmd(k viewKind) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   k.use,
		Short: k.short,
		Example: fmt.Sprintf(`  coursecal %[1]s
  coursecal %[1]s --date=2025-03-10
  coursecal %[1]s --type=exam --type=quiz --hide-past`, k.use),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			s, err := a.openView(cmd, k.view, &flags)
			if err != nil {
				return err
			}
			a.render(cmd.OutOrStdout(), s, PrintOpts{ShowIDs: flags.ids, ShowCourse: a.course == ""})
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

// openView builds a session for view, moves it to the requested date and
// loads its window.
func (a *App) openView(cmd *cobra.Command, view navigation.View, flags *viewFlags) (*session.Session, error) {
	filters, err := flags.filters()
	if err != nil {
		return nil, err
	}
	date, err := dateutil.ParseRelativeDate(flags.date, a.nowIn())
	if err != nil {
		return nil, fmt.Errorf("--date: %w", err)
	}

	s := a.newSession(view, filters)
	s.GoTo(date)
	s.SetSearch(flags.search)
	if err := s.Refresh(cmd.Context()); err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	return s, nil
}

// render prints the session's current view.
func (a *App) render(w io.Writer, s *session.Session, opts PrintOpts) {
	now := a.nowIn()
	view := s.State().View

	title := s.Title()
	if view == navigation.ViewAgenda {
		title = "Agenda " + s.Window().String()
	}
	fmt.Fprintf(w, "\n  %s\n", formatHeader(title))
	fmt.Fprintln(w, strings.Repeat("─", min(opts.width(), 80)))

	switch view {
	case navigation.ViewMonth:
		renderMonth(w, s.Month(), a.config.Calendar.MonthCellLimit, opts)
	case navigation.ViewWeek:
		renderTimeline(w, s.Week(), now, opts)
	case navigation.ViewDay:
		renderTimeline(w, s.Day(), now, opts)
	case navigation.ViewAgenda:
		renderAgenda(w, s.Agenda(), now, opts)
	}
}
