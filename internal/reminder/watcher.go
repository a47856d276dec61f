package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/recurrence"
)

// DefaultSchedule checks for due reminders once a minute.
const DefaultSchedule = "@every 1m"

// MaxLead bounds how far ahead of an event its reminder may fire. Events
// starting further out than this are not fetched.
const MaxLead = 7 * 24 * time.Hour

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r Reminder) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, r Reminder) error {
	return f(ctx, r)
}

// ParseSchedule validates a cron spec: five fields or a descriptor such as
// "@hourly" or "@every 30s".
func ParseSchedule(spec string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

// Options configure a Watcher.
type Options struct {
	// Schedule is a cron spec. Empty means DefaultSchedule.
	Schedule string
	// Lookahead delivers reminders this much before they fire.
	Lookahead time.Duration
	// CourseID scopes the fetched events. Empty means all courses.
	CourseID string
	Location *time.Location
	Now      func() time.Time
	Logger   *zap.Logger
}

// Watcher polls the store on a cron schedule and notifies each reminder
// once. Consecutive checks cover adjacent, non-overlapping windows.
type Watcher struct {
	store    event.Store
	notifier Notifier
	opts     Options

	mu   sync.Mutex
	last time.Time
}

// NewWatcher validates opts and creates a watcher.
func NewWatcher(store event.Store, notifier Notifier, opts Options) (*Watcher, error) {
	if store == nil || notifier == nil {
		return nil, errors.New("reminder watcher needs a store and a notifier")
	}
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	if _, err := ParseSchedule(opts.Schedule); err != nil {
		return nil, err
	}
	if opts.Lookahead < 0 {
		return nil, errors.New("reminder lookahead cannot be negative")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Watcher{store: store, notifier: notifier, opts: opts}, nil
}

// Check delivers the reminders that became due since the previous check.
// The first check starts at the current time, so reminders that fired while
// nothing was watching are not replayed. It returns how many were delivered.
func (w *Watcher) Check(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	to := w.opts.Now().In(w.opts.Location).Add(w.opts.Lookahead)
	if w.last.IsZero() {
		w.last = to.Add(-w.opts.Lookahead)
	}
	from := w.last
	if !to.After(from) {
		return 0, nil
	}

	due, err := Upcoming(ctx, w.store, from, to, w.opts.CourseID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range due {
		if err := w.notifier.Notify(ctx, r); err != nil {
			// The window is not advanced, so the failed reminder and the
			// ones after it are retried on the next check.
			w.last = r.At.Add(-time.Nanosecond)
			return sent, fmt.Errorf("notifying %s: %w", r.Event.ID, err)
		}
		sent++
	}
	w.last = to
	return sent, nil
}

// Run checks on the configured schedule until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(w.opts.Location),
		cron.WithLogger(cronLogger{w.opts.Logger.Sugar()}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{w.opts.Logger.Sugar()})),
	)
	_, err := c.AddFunc(w.opts.Schedule, func() {
		n, err := w.Check(ctx)
		if err != nil {
			w.opts.Logger.Error("reminder check failed", zap.Error(err))
			return
		}
		if n > 0 {
			w.opts.Logger.Debug("reminders delivered", zap.Int("count", n))
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling reminder checks: %w", err)
	}

	w.opts.Logger.Info("watching reminders", zap.String("schedule", w.opts.Schedule))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Upcoming loads, expands and sanitizes the events whose reminders could
// fire in (from, to] and returns those reminders.
func Upcoming(ctx context.Context, store event.Store, from, to time.Time, courseID string) ([]Reminder, error) {
	window := dateutil.Span(from, to.Add(MaxLead))
	stored, err := store.ListEvents(ctx, window.Start, window.End, courseID)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	expanded, _ := recurrence.ExpandAll(stored, window)
	valid, _ := event.Sanitize(expanded)
	return Due(valid, from, to), nil
}

// cronLogger routes cron's internal logging through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
