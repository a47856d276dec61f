package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursecal/internal/config"
	"github.com/javiermolinar/coursecal/internal/db"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/filter"
	"github.com/javiermolinar/coursecal/internal/navigation"
	"github.com/javiermolinar/coursecal/internal/session"
	"github.com/javiermolinar/coursecal/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// Store is the storage the CLI needs: the event store plus bulk import,
// full export and the course list.
type Store interface {
	event.Store
	CreateEvents(ctx context.Context, drafts []event.Draft) ([]*event.CalendarEvent, error)
	AllEvents(ctx context.Context) ([]*event.CalendarEvent, error)
	Courses(ctx context.Context) ([]string, error)
}

// App holds the CLI application state.
type App struct {
	store  Store
	config *config.Config
	logger *zap.Logger
	now    func() time.Time
	loc    *time.Location
	root   *cobra.Command

	noColor bool
	course  string
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger handed to sessions and the reminder watcher.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the current time, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// NewApp creates a new CLI application. A nil store is opened lazily from
// the configured database path the first time a command needs it.
func NewApp(store Store, cfg *config.Config, opts ...Option) *App {
	a := &App{
		store:  store,
		config: cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	loc, err := cfg.Location()
	if err != nil {
		loc = time.Local
	}
	a.loc = loc

	a.root = &cobra.Command{
		Use:   "coursecal",
		Short: "A course calendar for the terminal",
		Long: `Coursecal keeps lectures, exams, assignments and deadlines in one calendar.

Run without arguments to open the interactive calendar, or use the
subcommands to view and edit events from scripts.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(); err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.store, a.config, tui.Options{
				Logger:   a.logger,
				Now:      a.now,
				CourseID: a.course,
			})
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				DisableColor()
			}
		},
	}

	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")
	a.root.PersistentFlags().StringVar(&a.course, "course", "", "Only show events of this course (plus events without a course)")

	for _, v := range []viewKind{viewMonth, viewWeek, viewDay, viewAgenda} {
		a.root.AddCommand(a.viewCmd(v))
	}
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.editCmd())
	a.root.AddCommand(a.cancelCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.postponeCmd())
	a.root.AddCommand(a.planCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.remindCmd())
	a.root.AddCommand(a.summaryCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.versionCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coursecal %s (commit: %s)\n", Version, Commit)
		},
	}
}

// ensureStore opens the configured database if no store was injected.
func (a *App) ensureStore() error {
	if a.store != nil {
		return nil
	}
	if a.config == nil {
		return errors.New("no configuration loaded")
	}
	store, err := db.New(a.config.Storage.DBPath, db.WithLocation(a.loc))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.store = store
	return nil
}

// newSession creates a session over the store with the configured options.
// An empty view uses the configured default; nil filters use the defaults.
func (a *App) newSession(view navigation.View, filters *filter.Filters) *session.Session {
	if view == "" {
		view = a.config.View()
	}
	return session.New(a.store, session.Options{
		Now:        a.nowIn,
		Logger:     a.logger,
		View:       view,
		Navigation: a.config.NavigationOptions(),
		Layout:     a.config.LayoutOptions(),
		Filters:    filters,
		CourseID:   a.course,
	})
}

// nowIn returns the current time in the configured location.
func (a *App) nowIn() time.Time {
	return a.now().In(a.loc)
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// Root returns the root command, e.g. to set arguments and output in tests.
func (a *App) Root() *cobra.Command {
	return a.root
}

// Close releases the store.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
