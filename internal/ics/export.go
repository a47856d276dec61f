// Package ics converts events to and from iCalendar (RFC 5545) data.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/recurrence"
)

// ProductID identifies calendars written by Export.
const ProductID = "-//coursecal//coursecal//EN"

// Non-standard properties carrying fields iCalendar has no slot for.
const (
	propCourse     = ical.ComponentProperty("X-COURSECAL-COURSE")
	propVisibility = ical.ComponentProperty("X-COURSECAL-VISIBILITY")
)

const (
	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405"
	utcLayout      = "20060102T150405Z"
)

// ExportOptions configures Export.
type ExportOptions struct {
	// Now stamps DTSTAMP. Zero means time.Now.
	Now time.Time
}

// Export writes events as a VCALENDAR. Recurring events are written once,
// with their RRULE and EXDATEs; occurrences materialized by expansion
// should not be passed in.
func Export(w io.Writer, events []*event.CalendarEvent, opts ExportOptions) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, e := range events {
		if e.IsOccurrence() {
			return fmt.Errorf("exporting %s: expanded occurrences cannot be exported", e.ID)
		}
		addEvent(cal, e, now)
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

func addEvent(cal *ical.Calendar, e *event.CalendarEvent, now time.Time) {
	ve := cal.AddEvent(e.ID)
	ve.SetDtStampTime(now)
	if !e.CreatedAt.IsZero() {
		ve.SetCreatedTime(e.CreatedAt)
	}
	if !e.UpdatedAt.IsZero() {
		ve.SetModifiedAt(e.UpdatedAt)
	}

	ve.SetSummary(e.Title)
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if e.Location != "" {
		ve.SetLocation(e.Location)
	}
	if e.MeetingURL != "" {
		ve.SetURL(e.MeetingURL)
	}

	if e.IsAllDay {
		days := e.Days()
		ve.SetAllDayStartAt(days[0])
		ve.SetAllDayEndAt(days[len(days)-1].AddDate(0, 0, 1))
	} else {
		ve.SetStartAt(e.StartTime)
		if e.EndTime != nil {
			ve.SetEndAt(*e.EndTime)
		}
	}

	if e.Recurrence != nil {
		ve.AddRrule(recurrence.FormatRule(e.Recurrence))
		for _, ex := range e.Recurrence.Exceptions {
			if e.IsAllDay {
				ve.AddExdate(ex.Format(dateLayout), ical.WithValue(string(ical.ValueDataTypeDate)))
				continue
			}
			h, m, s := e.StartTime.Clock()
			ex = ex.In(e.StartTime.Location())
			instant := time.Date(ex.Year(), ex.Month(), ex.Day(), h, m, s, 0, e.StartTime.Location())
			ve.AddExdate(instant.UTC().Format(utcLayout))
		}
	}

	if e.IsCancelled {
		ve.SetStatus(ical.ObjectStatusCancelled)
	} else {
		ve.SetStatus(ical.ObjectStatusConfirmed)
	}
	ve.SetPriority(priorityLevel(e.Priority))

	ve.AddCategory(string(e.Type))
	for _, tag := range e.Tags {
		ve.AddCategory(tag)
	}
	for _, a := range e.Attendees {
		ve.AddAttendee(a)
	}

	class := ical.ClassificationPrivate
	if e.Visibility == event.VisibilityPublic {
		class = ical.ClassificationPublic
	}
	ve.SetClass(class)
	ve.SetProperty(propVisibility, string(e.Visibility))
	if e.CourseID != "" {
		ve.SetProperty(propCourse, e.CourseID)
	}
	if e.Color != "" {
		ve.SetColor(e.Color)
	}
	if e.SeriesID != "" {
		ve.SetProperty(ical.ComponentPropertyRelatedTo, e.SeriesID)
	}

	if e.ReminderMinutes > 0 {
		alarm := ve.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger(formatTrigger(e.ReminderMinutes))
		alarm.SetProperty(ical.ComponentPropertyDescription, e.Title)
	}
}

// priorityLevel maps a priority onto the 1 (highest) to 9 (lowest) scale.
func priorityLevel(p event.Priority) int {
	switch p {
	case event.PriorityUrgent:
		return 1
	case event.PriorityHigh:
		return 3
	case event.PriorityLow:
		return 9
	default:
		return 5
	}
}

func priorityFromLevel(level int) event.Priority {
	switch {
	case level == 0 || level == 5:
		return event.PriorityMedium
	case level <= 2:
		return event.PriorityUrgent
	case level <= 4:
		return event.PriorityHigh
	default:
		return event.PriorityLow
	}
}

// formatTrigger renders a reminder offset as a negative duration, e.g. "-PT15M" or "-P1D".
func formatTrigger(minutes int) string {
	switch {
	case minutes%(7*24*60) == 0:
		return fmt.Sprintf("-P%dW", minutes/(7*24*60))
	case minutes%(24*60) == 0:
		return fmt.Sprintf("-P%dD", minutes/(24*60))
	case minutes%60 == 0:
		return fmt.Sprintf("-PT%dH", minutes/60)
	default:
		return fmt.Sprintf("-PT%dM", minutes)
	}
}

// parseTrigger parses a relative trigger before the start into minutes.
// Triggers after the start or relative to the end are not representable.
func parseTrigger(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "-P") {
		return 0, s == "PT0S" || s == "-PT0S"
	}
	s = s[2:]

	var minutes, n int
	inTime := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
		case r == 'T':
			inTime = true
		case r == 'W':
			minutes += n * 7 * 24 * 60
			n = 0
		case r == 'D':
			minutes += n * 24 * 60
			n = 0
		case r == 'H' && inTime:
			minutes += n * 60
			n = 0
		case r == 'M' && inTime:
			minutes += n
			n = 0
		case r == 'S' && inTime:
			minutes += n / 60
			n = 0
		default:
			return 0, false
		}
	}
	return minutes, true
}
