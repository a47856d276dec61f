package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/session"
)

func (a *App) cancelCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "cancel [event-id]",
		Short: "Cancel an event",
		Long: `Mark an event cancelled. Cancelled events stay in the calendar, grayed
out, and are hidden unless --show-cancelled is passed to a view.

Use 'coursecal edit ID --restore' to undo.`,
		Example: `  coursecal cancel 5f0c...
  coursecal cancel 5f0c...@2025-03-10 --scope=following`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := session.ParseScope(scope)
			if err != nil {
				return err
			}
			if err := a.ensureStore(); err != nil {
				return err
			}

			e, err := a.newSession("", nil).Cancel(cmd.Context(), args[0], sc)
			if err != nil {
				return fmt.Errorf("cancelling event: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s (%s)\n", e.Title, e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", scopeUsage+" (default occurrence)")
	return cmd
}
