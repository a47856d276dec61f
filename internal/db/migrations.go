package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS events (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			location         TEXT NOT NULL DEFAULT '',
			meeting_url      TEXT NOT NULL DEFAULT '',
			event_type       TEXT NOT NULL,
			start_time       TEXT NOT NULL,
			end_time         TEXT,
			start_day        DATE NOT NULL,
			end_day          DATE NOT NULL,
			all_day          INTEGER NOT NULL DEFAULT 0,
			priority         TEXT NOT NULL DEFAULT 'MEDIUM' CHECK(priority IN ('LOW', 'MEDIUM', 'HIGH', 'URGENT')),
			tags             TEXT NOT NULL DEFAULT '[]',
			attendees        TEXT NOT NULL DEFAULT '[]',
			reminder_minutes INTEGER NOT NULL DEFAULT 15 CHECK(reminder_minutes >= 0),
			recurrence       TEXT,
			visibility       TEXT NOT NULL DEFAULT 'PRIVATE' CHECK(visibility IN ('PRIVATE', 'COURSE', 'PUBLIC')),
			course_id        TEXT NOT NULL DEFAULT '',
			cancelled        INTEGER NOT NULL DEFAULT 0,
			color            TEXT NOT NULL DEFAULT '',
			series_id        TEXT NOT NULL DEFAULT '',
			created_at       DATETIME NOT NULL,
			updated_at       DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_days ON events(start_day, end_day);
		CREATE INDEX IF NOT EXISTS idx_events_course ON events(course_id);
		CREATE INDEX IF NOT EXISTS idx_events_series ON events(series_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	return nil
}
