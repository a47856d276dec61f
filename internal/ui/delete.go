package ui

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/session"
)

func (a *App) deleteCmd() *cobra.Command {
	var (
		scope string
		yes   bool
	)

	cmd := &cobra.Command{
		Use:     "delete [event-id]",
		Aliases: []string{"rm"},
		Short:   "Delete an event",
		Long: `Delete an event permanently.

For an occurrence of a recurring event --scope picks whether only that
occurrence, it and the following ones, or the whole series is removed.`,
		Example: `  coursecal delete 5f0c...
  coursecal delete 5f0c...@2025-03-10 --scope=series --yes`,
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
			e, err := a.resolve(ctx, s, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !yes {
				reader := bufio.NewReader(cmd.InOrStdin())
				fmt.Fprintf(w, "Delete %q (%s)? [y/N]: ", e.Title, e.StartTime.Format("Mon Jan 2 15:04"))
				answer, _ := reader.ReadString('\n')
				if ans := strings.ToLower(strings.TrimSpace(answer)); ans != "y" && ans != "yes" {
					fmt.Fprintln(w, "Aborted.")
					return nil
				}
			}

			if err := s.Delete(ctx, args[0], sc); err != nil {
				return fmt.Errorf("deleting event: %w", err)
			}
			fmt.Fprintf(w, "Deleted %s\n", e.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", scopeUsage+" (default occurrence)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
