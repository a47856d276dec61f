package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/db"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/ics"
)

func (a *App) importCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import events from an iCalendar file or another database",
		Long: `Import events into the current calendar.

An .ics file (or - for stdin) is read as iCalendar. Events that cannot be
parsed are reported and skipped; the rest are stored together or not at all.
Any other file is opened as a coursecal database and all of its events are
copied.`,
		Example: `  coursecal import semester.ics
  curl -s https://example.edu/cs101.ics | coursecal --course=CS101 import -
  coursecal import /path/to/other.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			src := args[0]
			if src != "-" && !strings.EqualFold(filepath.Ext(src), ".ics") {
				sourcePath, err := resolvePath(src)
				if err != nil {
					return err
				}
				destPath, err := resolvePath(a.config.Storage.DBPath)
				if err != nil {
					return err
				}
				if sourcePath == destPath {
					return fmt.Errorf("source database matches current database")
				}
				if err := checkFile(sourcePath); err != nil {
					return err
				}
				count, err := copyEvents(ctx, a.store, sourcePath, a.loc)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Imported %d events from %s\n", count, sourcePath)
				return nil
			}

			var r io.Reader = cmd.InOrStdin()
			if src != "-" {
				f, err := os.Open(src)
				if err != nil {
					return fmt.Errorf("opening calendar: %w", err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			res, err := ics.Import(r, a.loc)
			if err != nil {
				return err
			}
			for _, s := range res.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %q (%s): %v\n", formatError("skipped"), s.Summary, s.UID, s.Err)
			}
			if a.course != "" {
				for i := range res.Drafts {
					if res.Drafts[i].CourseID == "" {
						res.Drafts[i].CourseID = a.course
					}
				}
			}

			if dryRun {
				fmt.Fprintf(w, "Would import %d events (%d skipped)\n", len(res.Drafts), len(res.Skipped))
				return nil
			}
			created, err := a.store.CreateEvents(ctx, res.Drafts)
			if err != nil {
				return fmt.Errorf("storing events: %w", err)
			}
			fmt.Fprintf(w, "Imported %d events (%d skipped)\n", len(created), len(res.Skipped))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse the calendar without storing anything")
	return cmd
}

// copyEvents copies every event of the database at sourcePath into dest.
// Series are stored first so detached occurrences can point at their new ids.
func copyEvents(ctx context.Context, dest Store, sourcePath string, loc *time.Location) (int, error) {
	source, err := db.New(sourcePath, db.WithLocation(loc))
	if err != nil {
		return 0, fmt.Errorf("opening source database: %w", err)
	}
	defer func() { _ = source.Close() }()

	events, err := source.AllEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing source events: %w", err)
	}

	var roots, linked []*event.CalendarEvent
	for _, e := range events {
		if e.SeriesID == "" {
			roots = append(roots, e)
		} else {
			linked = append(linked, e)
		}
	}

	idMap := make(map[string]string, len(events))
	created, err := dest.CreateEvents(ctx, drafts(roots))
	if err != nil {
		return 0, fmt.Errorf("importing events: %w", err)
	}
	for i, e := range created {
		idMap[roots[i].ID] = e.ID
	}

	linkedDrafts := drafts(linked)
	for i := range linkedDrafts {
		// Empty when the series itself is gone; the event stays standalone.
		linkedDrafts[i].SeriesID = idMap[linkedDrafts[i].SeriesID]
	}
	more, err := dest.CreateEvents(ctx, linkedDrafts)
	if err != nil {
		return len(created), fmt.Errorf("importing detached occurrences: %w", err)
	}

	return len(created) + len(more), nil
}

func drafts(events []*event.CalendarEvent) []event.Draft {
	out := make([]event.Draft, len(events))
	for i, e := range events {
		out[i] = e.ToDraft()
	}
	return out
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source database does not exist: %s", path)
		}
		return fmt.Errorf("checking source database: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source database path is a directory: %s", path)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
