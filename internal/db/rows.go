package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
)

// row is the column form of an event.
type row struct {
	id, title, description, location, meetingURL, eventType string
	startTime                                                string
	endTime                                                  sql.NullString
	startDay, endDay                                         string
	allDay                                                   bool
	priority                                                 string
	tags, attendees                                          string
	reminderMinutes                                          int
	recurrence                                               sql.NullString
	visibility, courseID                                     string
	cancelled                                                bool
	color, seriesID                                          string
	createdAt, updatedAt                                     string
}

// recurrenceJSON is the stored form of a recurrence rule.
// Until and exceptions are dates.
type recurrenceJSON struct {
	Frequency  string   `json:"freq"`
	Interval   int      `json:"interval,omitempty"`
	Count      int      `json:"count,omitempty"`
	Until      string   `json:"until,omitempty"`
	ByWeekday  []int    `json:"byweekday,omitempty"`
	Exceptions []string `json:"exdates,omitempty"`
}

func toRow(e *event.CalendarEvent, loc *time.Location) (row, error) {
	start := e.StartTime.In(loc)
	r := row{
		id:              e.ID,
		title:           e.Title,
		description:     e.Description,
		location:        e.Location,
		meetingURL:      e.MeetingURL,
		eventType:       string(e.Type),
		startTime:       start.Format(time.RFC3339),
		startDay:        start.Format(dateutil.DateLayout),
		endDay:          start.Format(dateutil.DateLayout),
		allDay:          e.IsAllDay,
		priority:        string(e.Priority),
		reminderMinutes: e.ReminderMinutes,
		visibility:      string(e.Visibility),
		courseID:        e.CourseID,
		cancelled:       e.IsCancelled,
		color:           e.Color,
		seriesID:        e.SeriesID,
		createdAt:       e.CreatedAt.UTC().Format(time.RFC3339),
		updatedAt:       e.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if e.EndTime != nil {
		end := e.EndTime.In(loc)
		r.endTime = sql.NullString{String: end.Format(time.RFC3339), Valid: true}
		if e.IsAllDay && end.After(start) {
			r.endDay = end.Format(dateutil.DateLayout)
		}
	}

	var err error
	if r.tags, err = marshalList(e.Tags); err != nil {
		return row{}, fmt.Errorf("encoding tags: %w", err)
	}
	if r.attendees, err = marshalList(e.Attendees); err != nil {
		return row{}, fmt.Errorf("encoding attendees: %w", err)
	}
	if e.Recurrence != nil {
		data, err := json.Marshal(encodeRecurrence(e.Recurrence, loc))
		if err != nil {
			return row{}, fmt.Errorf("encoding recurrence: %w", err)
		}
		r.recurrence = sql.NullString{String: string(data), Valid: true}
	}
	return r, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLite) scanEvent(sc scanner) (*event.CalendarEvent, error) {
	var r row
	err := sc.Scan(
		&r.id, &r.title, &r.description, &r.location, &r.meetingURL, &r.eventType,
		&r.startTime, &r.endTime, &r.startDay, &r.endDay, &r.allDay, &r.priority,
		&r.tags, &r.attendees, &r.reminderMinutes, &r.recurrence, &r.visibility,
		&r.courseID, &r.cancelled, &r.color, &r.seriesID, &r.createdAt, &r.updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}
	return r.toEvent(s.loc)
}

func (r row) toEvent(loc *time.Location) (*event.CalendarEvent, error) {
	e := &event.CalendarEvent{
		ID:              r.id,
		Title:           r.title,
		Description:     r.description,
		Location:        r.location,
		MeetingURL:      r.meetingURL,
		Type:            event.Type(r.eventType),
		IsAllDay:        r.allDay,
		Priority:        event.Priority(r.priority),
		ReminderMinutes: r.reminderMinutes,
		Visibility:      event.Visibility(r.visibility),
		CourseID:        r.courseID,
		IsCancelled:     r.cancelled,
		Color:           r.color,
		SeriesID:        r.seriesID,
	}

	var err error
	if e.StartTime, err = parseTime(r.startTime, loc); err != nil {
		return nil, fmt.Errorf("event %s: parsing start: %w", r.id, err)
	}
	if r.endTime.Valid {
		end, err := parseTime(r.endTime.String, loc)
		if err != nil {
			return nil, fmt.Errorf("event %s: parsing end: %w", r.id, err)
		}
		e.EndTime = &end
	}
	if e.CreatedAt, err = parseTime(r.createdAt, loc); err != nil {
		return nil, fmt.Errorf("event %s: parsing created_at: %w", r.id, err)
	}
	if e.UpdatedAt, err = parseTime(r.updatedAt, loc); err != nil {
		return nil, fmt.Errorf("event %s: parsing updated_at: %w", r.id, err)
	}

	if err := json.Unmarshal([]byte(r.tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("event %s: decoding tags: %w", r.id, err)
	}
	if err := json.Unmarshal([]byte(r.attendees), &e.Attendees); err != nil {
		return nil, fmt.Errorf("event %s: decoding attendees: %w", r.id, err)
	}
	if r.recurrence.Valid {
		var rj recurrenceJSON
		if err := json.Unmarshal([]byte(r.recurrence.String), &rj); err != nil {
			return nil, fmt.Errorf("event %s: decoding recurrence: %w", r.id, err)
		}
		if e.Recurrence, err = decodeRecurrence(rj, loc); err != nil {
			return nil, fmt.Errorf("event %s: %w", r.id, err)
		}
	}
	return e, nil
}

func encodeRecurrence(r *event.Recurrence, loc *time.Location) recurrenceJSON {
	rj := recurrenceJSON{
		Frequency: string(r.Frequency),
		Interval:  r.Interval,
		Count:     r.Count,
	}
	if r.Until != nil {
		rj.Until = r.Until.In(loc).Format(dateutil.DateLayout)
	}
	for _, d := range r.ByWeekday {
		rj.ByWeekday = append(rj.ByWeekday, int(d))
	}
	for _, ex := range r.Exceptions {
		rj.Exceptions = append(rj.Exceptions, ex.In(loc).Format(dateutil.DateLayout))
	}
	return rj
}

func decodeRecurrence(rj recurrenceJSON, loc *time.Location) (*event.Recurrence, error) {
	freq, err := event.ParseFrequency(rj.Frequency)
	if err != nil {
		return nil, err
	}
	r := &event.Recurrence{
		Frequency: freq,
		Interval:  rj.Interval,
		Count:     rj.Count,
	}
	if rj.Until != "" {
		until, err := dateutil.ParseDateIn(rj.Until, loc)
		if err != nil {
			return nil, fmt.Errorf("parsing until: %w", err)
		}
		r.Until = &until
	}
	for _, d := range rj.ByWeekday {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: weekday %d", event.ErrInvalidRecurrence, d)
		}
		r.ByWeekday = append(r.ByWeekday, time.Weekday(d))
	}
	for _, s := range rj.Exceptions {
		ex, err := dateutil.ParseDateIn(s, loc)
		if err != nil {
			return nil, fmt.Errorf("parsing exception date: %w", err)
		}
		r.Exceptions = append(r.Exceptions, ex)
	}
	return r, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	return string(data), err
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}
