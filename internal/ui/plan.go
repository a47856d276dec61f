package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/llm"
)

func (a *App) planCmd() *cobra.Command {
	var (
		modelFlag string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "plan [description]",
		Short: "Add an event from natural language, interactively",
		Long: `Use the configured language model to turn a description into an event,
then review it before saving.

The model understands natural language dates like:
  - "today", "tomorrow", "next Monday"
  - "in 2 days", "next week"
  - "2025-01-15" (explicit YYYY-MM-DD)

After the model proposes an event, you can:
  - [a]ccept: Save the event
  - [m]odify: Describe a correction and ask again
  - [c]ancel: Exit without saving`,
		Example: `  coursecal plan "CS101 midterm next thursday 10 to 12 in hall B, urgent"
  coursecal plan "study group tomorrow evening" --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			model := modelFlag
			if model == "" {
				model = a.config.LLM.Model
			}
			client, err := llm.NewClient(a.config.LLM.Provider, model, a.config.LLM.BaseURL)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}

			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			reader := bufio.NewReader(cmd.InOrStdin())
			input := strings.Join(args, " ")

			for {
				fmt.Fprintln(w, "Planning...")
				d, err := llm.QuickAdd(ctx, client, input, a.nowIn())
				if err != nil {
					return fmt.Errorf("planning: %w", err)
				}
				if a.course != "" && d.CourseID == "" {
					d.CourseID = a.course
				}

				proposal, err := event.New(d, a.nowIn())
				if err != nil {
					fmt.Fprintf(w, "\nThe proposal is not a valid event: %v\n", err)
				} else {
					a.displayProposal(ctx, w, proposal)
				}

				if dryRun {
					fmt.Fprintln(w, "\n(Dry run - event not saved)")
					return nil
				}

				fmt.Fprint(w, "\n[a]ccept / [m]odify / [c]ancel: ")
				choice, err := reader.ReadString('\n')
				if err != nil && choice == "" {
					return fmt.Errorf("reading input: %w", err)
				}

				switch strings.TrimSpace(strings.ToLower(choice)) {
				case "a", "accept":
					if proposal == nil {
						fmt.Fprintln(w, "Cannot save an invalid event. Please [m]odify or [c]ancel.")
						continue
					}
					e, err := a.newSession("", nil).Create(ctx, d)
					if err != nil {
						return fmt.Errorf("saving event: %w", err)
					}
					fmt.Fprintf(w, "\nSaved event %s\n", e.ID)
					return nil

				case "m", "modify":
					fmt.Fprint(w, "What would you like to change? ")
					modification, _ := reader.ReadString('\n')
					modification = strings.TrimSpace(modification)
					if modification == "" {
						fmt.Fprintln(w, "No modification provided.")
						continue
					}
					input += "\nCorrection: " + modification

				case "c", "cancel":
					fmt.Fprintln(w, "Planning cancelled.")
					return nil

				default:
					fmt.Fprintln(w, "Invalid choice. Please enter 'a', 'm', or 'c'.")
				}
			}
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "LLM model to use (from config if not set)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the proposed event without saving")

	return cmd
}

// displayProposal shows a proposed event and any events it overlaps.
func (a *App) displayProposal(ctx context.Context, w io.Writer, e *event.CalendarEvent) {
	fmt.Fprintln(w)
	renderEvent(w, e)

	clashes, err := a.clashes(ctx, e)
	if err != nil {
		a.logger.Sugar().Warnw("checking for clashes", "error", err)
		return
	}
	if len(clashes) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, c := range clashes {
			fmt.Fprintf(w, "  ! overlaps %s\n", eventLine(c, PrintOpts{ShowCourse: true}))
		}
	}
}

// clashes returns the active timed events overlapping e.
func (a *App) clashes(ctx context.Context, e *event.CalendarEvent) ([]*event.CalendarEvent, error) {
	if e.IsAllDay {
		return nil, nil
	}
	day := dateutil.TruncateToDay(e.StartTime)
	stored, err := a.store.ListEvents(ctx, day, day, "")
	if err != nil {
		return nil, err
	}

	var out []*event.CalendarEvent
	for _, other := range a.expand(stored, dateutil.DateRange{Start: day, End: day}) {
		if other.IsAllDay || other.IsCancelled {
			continue
		}
		if overlaps(e.StartTime, e.EffectiveEnd(), other.StartTime, other.EffectiveEnd()) {
			out = append(out, other)
		}
	}
	return out, nil
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
