package ui

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

func (a *App) showCmd() *cobra.Command {
	var copyURL bool

	cmd := &cobra.Command{
		Use:   "show [event-id]",
		Short: "Show every detail of an event",
		Example: `  coursecal show 5f0c...
  coursecal show 5f0c...@2025-03-10 --copy-url`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}

			e, err := a.resolve(cmd.Context(), a.newSession("", nil), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			renderEvent(w, e)

			if copyURL {
				if e.MeetingURL == "" {
					return errors.New("event has no meeting URL")
				}
				if err := clipboard.WriteAll(e.MeetingURL); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(w, formatMuted("Meeting URL copied to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyURL, "copy-url", "c", false, "Copy the meeting URL to the clipboard")
	return cmd
}
