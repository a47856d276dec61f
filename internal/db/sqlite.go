// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
)

// SQLite implements event.Store using SQLite.
type SQLite struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

// Option configures a SQLite store.
type Option func(*SQLite)

// WithLocation sets the location events are read back in. Default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *SQLite) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock sets the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLite) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new SQLite store and runs migrations.
// The parent directory of path is created if needed.
func New(path string, opts ...Option) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

const eventColumns = `
	id, title, description, location, meeting_url, event_type,
	start_time, end_time, start_day, end_day, all_day, priority,
	tags, attendees, reminder_minutes, recurrence, visibility,
	course_id, cancelled, color, series_id, created_at, updated_at`

// ListEvents returns the events overlapping [from, to] plus every recurring
// series starting on or before to, ordered by start time. A non-empty
// courseID keeps that course's events and events without a course.
func (s *SQLite) ListEvents(ctx context.Context, from, to time.Time, courseID string) ([]*event.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE start_day <= ?
		  AND (recurrence IS NOT NULL OR end_day >= ?)
		  AND (? = '' OR course_id = ? OR course_id = '')
	`

	return s.queryEvents(ctx, query,
		to.Format(dateutil.DateLayout),
		from.Format(dateutil.DateLayout),
		courseID, courseID,
	)
}

// AllEvents returns every stored event, unexpanded, ordered by start time.
func (s *SQLite) AllEvents(ctx context.Context) ([]*event.CalendarEvent, error) {
	return s.queryEvents(ctx, `SELECT `+eventColumns+` FROM events`)
}

func (s *SQLite) queryEvents(ctx context.Context, query string, args ...any) ([]*event.CalendarEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []*event.CalendarEvent
	for rows.Next() {
		e, err := s.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	slices.SortFunc(events, event.ByStart)
	return events, nil
}

// GetEvent retrieves an event by id.
// Returns event.ErrEventNotFound if there is no such event.
func (s *SQLite) GetEvent(ctx context.Context, id string) (*event.CalendarEvent, error) {
	return s.getEvent(ctx, s.db, id)
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) getEvent(ctx context.Context, q queryer, id string) (*event.CalendarEvent, error) {
	row := q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := s.scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", event.ErrEventNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateEvent validates a draft, assigns it a new id and stores it.
func (s *SQLite) CreateEvent(ctx context.Context, d event.Draft) (*event.CalendarEvent, error) {
	e, err := event.New(d, s.now())
	if err != nil {
		return nil, err
	}
	e.ID = uuid.NewString()
	if err := s.insert(ctx, s.db, e); err != nil {
		return nil, err
	}
	return e, nil
}

// CreateEvents stores several drafts atomically. Either all are stored or
// none is.
func (s *SQLite) CreateEvents(ctx context.Context, drafts []event.Draft) ([]*event.CalendarEvent, error) {
	now := s.now()
	events := make([]*event.CalendarEvent, 0, len(drafts))
	for i, d := range drafts {
		e, err := event.New(d, now)
		if err != nil {
			return nil, fmt.Errorf("event %d (%q): %w", i+1, d.Title, err)
		}
		e.ID = uuid.NewString()
		events = append(events, e)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range events {
		if err := s.insert(ctx, tx, e); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return events, nil
}

// UpdateEvent applies a patch to a stored event.
func (s *SQLite) UpdateEvent(ctx context.Context, id string, p event.Patch) (*event.CalendarEvent, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := s.getEvent(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	updated, err := current.Apply(p, s.now())
	if err != nil {
		return nil, err
	}

	r, err := toRow(updated, s.loc)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE events SET
			title = ?, description = ?, location = ?, meeting_url = ?, event_type = ?,
			start_time = ?, end_time = ?, start_day = ?, end_day = ?, all_day = ?, priority = ?,
			tags = ?, attendees = ?, reminder_minutes = ?, recurrence = ?, visibility = ?,
			course_id = ?, cancelled = ?, color = ?, series_id = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, query,
		r.title, r.description, r.location, r.meetingURL, r.eventType,
		r.startTime, r.endTime, r.startDay, r.endDay, r.allDay, r.priority,
		r.tags, r.attendees, r.reminderMinutes, r.recurrence, r.visibility,
		r.courseID, r.cancelled, r.color, r.seriesID, r.updatedAt,
		id,
	); err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes an event.
// Returns event.ErrEventNotFound if there is no such event.
func (s *SQLite) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", event.ErrEventNotFound, id)
	}
	return nil
}

// Courses returns the distinct course ids in use, sorted.
func (s *SQLite) Courses(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT course_id FROM events WHERE course_id != '' ORDER BY course_id`)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var courses []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *SQLite) insert(ctx context.Context, q queryer, e *event.CalendarEvent) error {
	r, err := toRow(e, s.loc)
	if err != nil {
		return err
	}
	query := `INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := q.ExecContext(ctx, query,
		r.id, r.title, r.description, r.location, r.meetingURL, r.eventType,
		r.startTime, r.endTime, r.startDay, r.endDay, r.allDay, r.priority,
		r.tags, r.attendees, r.reminderMinutes, r.recurrence, r.visibility,
		r.courseID, r.cancelled, r.color, r.seriesID, r.createdAt, r.updatedAt,
	); err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}
