package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/summary"
)

func (a *App) summaryCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		month     bool
		insight   bool
		model     string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize this week's events",
		Long: `Count this week's events by type and priority, show what's next and
which day is busiest.

With --insight the configured language model reviews the range and points
out clashes, crunch days and what to prepare first.`,
		Example: `  coursecal summary
  coursecal summary --month
  coursecal summary --start=2025-05-01 --end=2025-05-31 --insight`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			now := a.nowIn()

			var window dateutil.DateRange
			switch {
			case startDate != "" || endDate != "":
				r, err := a.dateRange(startDate, endDate)
				if err != nil {
					return err
				}
				window = r
			case month:
				first, last := dateutil.MonthRange(now)
				window = dateutil.Span(first, last)
			default:
				ws, err := a.config.WeekStart()
				if err != nil {
					return err
				}
				first, last := dateutil.WeekRange(now, ws)
				window = dateutil.Span(first, last)
			}

			if model == "" {
				model = a.config.LLM.Model
			}
			s, err := summary.Build(cmd.Context(), a.store, summary.BuildOptions{
				Window:         window,
				CourseID:       a.course,
				Now:            now,
				IncludeInsight: insight,
				Provider:       a.config.LLM.Provider,
				Model:          model,
				BaseURL:        a.config.LLM.BaseURL,
			})
			if err != nil {
				return fmt.Errorf("building summary: %w", err)
			}

			printSummary(cmd.OutOrStdout(), s, now)
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD or relative)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD or relative)")
	cmd.Flags().BoolVar(&month, "month", false, "Summarize the current month instead of the week")
	cmd.Flags().BoolVarP(&insight, "insight", "i", false, "Ask the language model for a review")
	cmd.Flags().StringVar(&model, "model", "", "LLM model to use (default from config)")
	return cmd
}

// printSummary prints the summary's header, counts and insight.
func printSummary(w io.Writer, s *summary.Summary, now time.Time) {
	const rule = 74

	header := fmt.Sprintf("%s - %s", s.Window.Start.Format("Mon Jan 2"), s.Window.End.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(w, "\n  %s\n", formatHeader(header))
	fmt.Fprintln(w, strings.Repeat("─", rule))

	if s.Total == 0 {
		fmt.Fprintln(w, "  No events in this range.")
		return
	}

	active := s.Total - s.Cancelled
	fmt.Fprintf(w, "  %s events  %s upcoming  %s past  %s cancelled\n",
		formatStats(fmt.Sprint(active)),
		formatStats(fmt.Sprint(s.Upcoming)),
		fmt.Sprint(s.Past),
		formatMuted(fmt.Sprint(s.Cancelled)),
	)

	var types []string
	for _, t := range event.Types() {
		if n := s.ByType[t]; n > 0 {
			types = append(types, fmt.Sprintf("%s %d", t.Label(), n))
		}
	}
	if len(types) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(types, " · "))
	}

	urgent, high := s.ByPriority[event.PriorityUrgent], s.ByPriority[event.PriorityHigh]
	if urgent+high > 0 {
		fmt.Fprintf(w, "  Priority: %s urgent, %s high\n", formatError(fmt.Sprint(urgent)), formatInsight(fmt.Sprint(high)))
	}

	if s.Next != nil {
		fmt.Fprintf(w, "  Next: %s %s\n", s.Next.StartTime.Format("Mon Jan 2"), eventLine(s.Next, PrintOpts{ShowCourse: true}))
	}
	if s.BusiestCount > 1 {
		fmt.Fprintf(w, "  Busiest day: %s (%d events)\n", dayHeader(s.BusiestDay, now), s.BusiestCount)
	}
	if len(s.Rejected) > 0 {
		fmt.Fprintf(w, "  %s\n", formatError(fmt.Sprintf("%d malformed events skipped", len(s.Rejected))))
	}

	if s.Insight != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", formatHeader("INSIGHT"))
		fmt.Fprintln(w, strings.Repeat("─", rule))
		printInsightWrapped(w, s.Insight, rule-2)
	}
	fmt.Fprintln(w)
}
