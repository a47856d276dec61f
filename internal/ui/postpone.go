package ui

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/session"
)

func (a *App) postponeCmd() *cobra.Command {
	var (
		date  string
		days  int
		scope string
	)

	cmd := &cobra.Command{
		Use:   "postpone <event-id>",
		Short: "Move an event to another day",
		Long: `Move an event to another day, keeping its time of day and duration.

Pass either --date for an absolute or relative day, or --days to shift by a
number of days (negative moves earlier). An event without either is moved
one day later.`,
		Example: `  coursecal postpone 5f0c... --date=next-monday
  coursecal postpone 5f0c... --days=7
  coursecal postpone 5f0c...@2025-03-10 --days=1 --scope=following`,
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

			target := current.StartTime.AddDate(0, 0, days)
			if date != "" {
				day, err := dateutil.ParseRelativeDate(date, a.nowIn())
				if err != nil {
					return fmt.Errorf("invalid date: %w", err)
				}
				target = event.OnDay(current.StartTime, day)
			}
			if target.Equal(current.StartTime) {
				return errors.New("the event is already on that day")
			}

			p := event.Patch{StartTime: &target}
			if current.EndTime != nil {
				end := current.EndTime.Add(target.Sub(current.StartTime))
				p.EndTime = &end
			}

			moved, err := s.Update(ctx, args[0], p, sc)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Postponed %s: %s → %s\n",
				moved.Title,
				current.StartTime.Format("Mon Jan 2"),
				moved.StartTime.Format("Mon Jan 2"),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "New date (YYYY-MM-DD or relative)")
	cmd.Flags().IntVar(&days, "days", 1, "Days to shift by")
	cmd.Flags().StringVar(&scope, "scope", "", scopeUsage+" (default occurrence)")
	cmd.MarkFlagsMutuallyExclusive("date", "days")

	return cmd
}
