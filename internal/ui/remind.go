package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/reminder"
)

func (a *App) remindCmd() *cobra.Command {
	var (
		within time.Duration
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Show or watch for upcoming reminders",
		Long: `List the reminders that fire within the next --within.

With --watch, keep running and print each reminder when it fires. The
check schedule and lookahead come from the [reminders] config section.`,
		Example: `  coursecal remind
  coursecal remind --within=72h
  coursecal remind --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if watch {
				return a.watchReminders(cmd.Context(), w)
			}

			now := a.nowIn()
			rs, err := reminder.Upcoming(cmd.Context(), a.store, now, now.Add(within), a.course)
			if err != nil {
				return fmt.Errorf("finding reminders: %w", err)
			}
			if len(rs) == 0 {
				fmt.Fprintf(w, "No reminders in the next %s.\n", within)
				return nil
			}
			for _, r := range rs {
				fmt.Fprintln(w, reminderLine(r, now))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&within, "within", 24*time.Hour, "How far ahead to look")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and print reminders as they fire")
	return cmd
}

// watchReminders runs the reminder watcher until ctx is cancelled.
func (a *App) watchReminders(ctx context.Context, w io.Writer) error {
	notify := reminder.NotifierFunc(func(_ context.Context, r reminder.Reminder) error {
		_, err := fmt.Fprintln(w, "\a"+reminderLine(r, a.nowIn()))
		return err
	})
	watcher, err := reminder.NewWatcher(a.store, notify, reminder.Options{
		Schedule:  a.config.Reminders.Schedule,
		Lookahead: a.config.ReminderLookahead(),
		CourseID:  a.course,
		Location:  a.loc,
		Now:       a.nowIn,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, formatMuted("Watching for reminders ("+a.config.Reminders.Schedule+"). Press Ctrl+C to stop."))
	return watcher.Run(ctx)
}

// reminderLine renders "HH:MM  title  in 15m" for a reminder.
func reminderLine(r reminder.Reminder, now time.Time) string {
	e := r.Event
	until := e.StartTime.Sub(now).Round(time.Minute)

	when := "now"
	switch {
	case until > 0:
		when = "in " + formatMinutes(int(until.Minutes()))
	case until < 0:
		when = "started"
	}

	line := fmt.Sprintf("%s  %s  %s  %s",
		formatMuted(r.At.Format("Mon 15:04")),
		formatEvent(e, e.Title),
		e.TimeRange(),
		formatInsight(when),
	)
	if e.Location != "" {
		line += formatMuted(" @ " + e.Location)
	}
	return line
}
