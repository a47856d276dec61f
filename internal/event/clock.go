package event

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidClock is returned for malformed "HH:MM" times.
var ErrInvalidClock = errors.New("time must be in HH:MM format")

// ClockToMinutes converts "HH:MM" to minutes since midnight.
func ClockToMinutes(s string) (int, error) {
	if len(s) != 5 {
		return 0, ErrInvalidClock
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, ErrInvalidClock
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MinutesToClock converts minutes since midnight to "HH:MM".
// Values are clamped to the day.
func MinutesToClock(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= 24*60 {
		m = 24*60 - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// At returns date's calendar day at the "HH:MM" clock time, in date's location.
func At(date time.Time, clock string) (time.Time, error) {
	m, err := ClockToMinutes(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, date.Location()), nil
}

// OnDay returns t's clock time on date's calendar day, in t's location.
func OnDay(t, date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// TimeRange formats the event's time span for list output,
// e.g. "09:00-10:30", "09:00" without an end, or "all day".
func (e *CalendarEvent) TimeRange() string {
	if e.IsAllDay {
		return "all day"
	}
	start := e.StartTime.Format("15:04")
	if e.EndTime == nil {
		return start
	}
	return start + "-" + e.EndTime.In(e.StartTime.Location()).Format("15:04")
}
