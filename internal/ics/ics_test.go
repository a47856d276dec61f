package ics

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/coursecal/internal/event"
)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func TestExportImport_RoundTrip(t *testing.T) {
	lecture := &event.CalendarEvent{
		ID:          "lec-1",
		Title:       "Algorithms lecture",
		Description: "Dynamic programming",
		Location:    "Room 101",
		MeetingURL:  "https://meet.example.com/algo",
		Type:        event.TypeLecture,
		StartTime:   at(2024, 3, 4, 10, 0),
		EndTime:     ptr(at(2024, 3, 4, 11, 30)),
		Priority:    event.PriorityHigh,
		Tags:        []string{"algorithms", "cs"},
		Attendees:   []string{"ana@example.com"},
		Recurrence: &event.Recurrence{
			Frequency:  event.Weekly,
			Count:      10,
			ByWeekday:  []time.Weekday{time.Monday, time.Wednesday},
			Exceptions: []time.Time{at(2024, 3, 13, 0, 0)},
		},
		ReminderMinutes: 30,
		Visibility:      event.VisibilityCourse,
		CourseID:        "CS201",
		Color:           "purple",
	}
	holiday := &event.CalendarEvent{
		ID:         "hol-1",
		Title:      "Spring break",
		Type:       event.TypeHoliday,
		StartTime:  at(2024, 3, 25, 0, 0),
		EndTime:    ptr(at(2024, 3, 29, 0, 0)),
		IsAllDay:   true,
		Priority:   event.PriorityLow,
		Visibility: event.VisibilityPublic,
	}
	exam := &event.CalendarEvent{
		ID:              "exam-1",
		Title:           "Physics final",
		Type:            event.TypeExam,
		StartTime:       at(2024, 5, 20, 9, 0),
		EndTime:         ptr(at(2024, 5, 20, 12, 0)),
		Priority:        event.PriorityUrgent,
		ReminderMinutes: 1440,
		Visibility:      event.VisibilityPrivate,
		IsCancelled:     true,
	}

	var buf bytes.Buffer
	if err := Export(&buf, []*event.CalendarEvent{lecture, holiday, exam}, ExportOptions{Now: at(2024, 3, 1, 0, 0)}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(buf.String(), "RRULE:FREQ=WEEKLY;BYDAY=MO,WE;COUNT=10") {
		t.Errorf("missing RRULE in:\n%s", buf.String())
	}

	res, err := Import(&buf, time.UTC)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(res.Skipped) != 0 {
		t.Fatalf("unexpected skipped events: %+v", res.Skipped)
	}
	if len(res.Drafts) != 3 {
		t.Fatalf("got %d drafts, want 3", len(res.Drafts))
	}

	t.Run("recurring lecture", func(t *testing.T) {
		d := res.Drafts[0]
		if d.Title != lecture.Title || d.Description != lecture.Description || d.Location != lecture.Location {
			t.Errorf("got text fields %q %q %q", d.Title, d.Description, d.Location)
		}
		if d.MeetingURL != lecture.MeetingURL || d.CourseID != "CS201" || d.Color != "purple" {
			t.Errorf("got %q %q %q", d.MeetingURL, d.CourseID, d.Color)
		}
		if d.Type != event.TypeLecture || d.Priority != event.PriorityHigh || d.Visibility != event.VisibilityCourse {
			t.Errorf("got type %s priority %s visibility %s", d.Type, d.Priority, d.Visibility)
		}
		if !d.StartTime.Equal(lecture.StartTime) || d.EndTime == nil || !d.EndTime.Equal(*lecture.EndTime) {
			t.Errorf("got times %v - %v", d.StartTime, d.EndTime)
		}
		if !slices.Equal(d.Tags, lecture.Tags) || !slices.Equal(d.Attendees, lecture.Attendees) {
			t.Errorf("got tags %v attendees %v", d.Tags, d.Attendees)
		}
		if d.ReminderMinutes == nil || *d.ReminderMinutes != 30 {
			t.Errorf("got reminder %v", d.ReminderMinutes)
		}
		r := d.Recurrence
		if !d.Recurring || r == nil {
			t.Fatal("expected a recurrence")
		}
		if r.Frequency != event.Weekly || r.Step() != 1 || r.Count != 10 {
			t.Errorf("got rule %+v", r)
		}
		if !slices.Equal(r.ByWeekday, []time.Weekday{time.Monday, time.Wednesday}) {
			t.Errorf("got weekdays %v", r.ByWeekday)
		}
		if len(r.Exceptions) != 1 || !r.Exceptions[0].Equal(at(2024, 3, 13, 0, 0)) {
			t.Errorf("got exceptions %v", r.Exceptions)
		}
	})

	t.Run("all-day holiday", func(t *testing.T) {
		d := res.Drafts[1]
		if !d.IsAllDay || !d.StartTime.Equal(holiday.StartTime) {
			t.Errorf("got start %v all-day %v", d.StartTime, d.IsAllDay)
		}
		if d.EndTime == nil || !d.EndTime.Equal(*holiday.EndTime) {
			t.Errorf("got end %v, want last covered day", d.EndTime)
		}
		if d.Visibility != event.VisibilityPublic || d.Type != event.TypeHoliday {
			t.Errorf("got %s %s", d.Visibility, d.Type)
		}
		if d.ReminderMinutes == nil || *d.ReminderMinutes != 0 {
			t.Errorf("event without alarm should import with no reminder, got %v", d.ReminderMinutes)
		}
	})

	t.Run("cancelled exam", func(t *testing.T) {
		d := res.Drafts[2]
		if !d.IsCancelled || d.Priority != event.PriorityUrgent {
			t.Errorf("got cancelled %v priority %s", d.IsCancelled, d.Priority)
		}
		if d.ReminderMinutes == nil || *d.ReminderMinutes != 1440 {
			t.Errorf("got reminder %v", d.ReminderMinutes)
		}
	})

	for i, d := range res.Drafts {
		if _, err := event.New(d, at(2024, 3, 1, 0, 0)); err != nil {
			t.Errorf("draft %d does not build an event: %v", i, err)
		}
	}
}

func TestExport_RejectsOccurrences(t *testing.T) {
	occ := &event.CalendarEvent{
		ID: "s@2024-03-04", Title: "x", Type: event.TypeLecture,
		StartTime: at(2024, 3, 4, 10, 0), OccurrenceDate: at(2024, 3, 4, 0, 0),
		Priority: event.PriorityMedium, Visibility: event.VisibilityPrivate,
	}
	var buf bytes.Buffer
	if err := Export(&buf, []*event.CalendarEvent{occ}, ExportOptions{}); err == nil {
		t.Error("expected an error for an expanded occurrence")
	}
}

const external = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Example//Campus//EN
BEGIN:VEVENT
UID:seminar@campus
SUMMARY:Research seminar
DTSTART:20240304T090000
DTEND:20240304T100000
RRULE:FREQ=WEEKLY;COUNT=4
CATEGORIES:Seminar,Math
PRIORITY:2
END:VEVENT
BEGIN:VEVENT
UID:seminar@campus
RECURRENCE-ID:20240311T090000
SUMMARY:Research seminar (guest talk)
DTSTART:20240311T140000
DTEND:20240311T150000
END:VEVENT
BEGIN:VEVENT
UID:open-day@campus
SUMMARY:Open day
DTSTART;VALUE=DATE:20240315
DTEND;VALUE=DATE:20240316
CLASS:PUBLIC
END:VEVENT
BEGIN:VEVENT
UID:broken@campus
SUMMARY:No start
END:VEVENT
BEGIN:VEVENT
SUMMARY:No uid
DTSTART:20240320T090000Z
END:VEVENT
END:VCALENDAR
`

func TestImport_ExternalCalendar(t *testing.T) {
	res, err := Import(strings.NewReader(external), time.UTC)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if len(res.Skipped) != 2 {
		t.Fatalf("got %d skipped, want 2: %+v", len(res.Skipped), res.Skipped)
	}
	if res.Skipped[0].UID != "broken@campus" || !errors.Is(res.Skipped[0].Err, event.ErrMissingStart) {
		t.Errorf("got %+v", res.Skipped[0])
	}
	if !errors.Is(res.Skipped[1].Err, ErrMissingUID) {
		t.Errorf("got %+v", res.Skipped[1])
	}

	if len(res.Drafts) != 3 {
		t.Fatalf("got %d drafts, want 3", len(res.Drafts))
	}
	master, guest, openDay := res.Drafts[0], res.Drafts[1], res.Drafts[2]

	if master.Type != event.TypePersonal || !slices.Equal(master.Tags, []string{"seminar", "math"}) {
		t.Errorf("unknown categories: got type %s tags %v", master.Type, master.Tags)
	}
	if master.Priority != event.PriorityUrgent {
		t.Errorf("got priority %s", master.Priority)
	}
	if !master.StartTime.Equal(at(2024, 3, 4, 9, 0)) {
		t.Errorf("floating time should be read in the import location, got %v", master.StartTime)
	}
	if master.Recurrence == nil || len(master.Recurrence.Exceptions) != 1 || !master.Recurrence.Exceptions[0].Equal(at(2024, 3, 11, 0, 0)) {
		t.Errorf("override date should become an exception: %+v", master.Recurrence)
	}

	if guest.Recurring || guest.Recurrence != nil || !guest.StartTime.Equal(at(2024, 3, 11, 14, 0)) {
		t.Errorf("override should import as a standalone event: %+v", guest)
	}

	if !openDay.IsAllDay || openDay.EndTime != nil || !openDay.StartTime.Equal(at(2024, 3, 15, 0, 0)) {
		t.Errorf("got open day %v - %v", openDay.StartTime, openDay.EndTime)
	}
	if openDay.Visibility != event.VisibilityPublic {
		t.Errorf("got visibility %s", openDay.Visibility)
	}
}

func TestImport_Malformed(t *testing.T) {
	if _, err := Import(strings.NewReader("not a calendar"), time.UTC); err == nil {
		t.Error("expected a parse error")
	}
}

func TestTrigger(t *testing.T) {
	tests := []struct {
		minutes int
		trigger string
	}{
		{5, "-PT5M"},
		{90, "-PT90M"},
		{60, "-PT1H"},
		{1440, "-P1D"},
		{10080, "-P1W"},
	}
	for _, tt := range tests {
		t.Run(tt.trigger, func(t *testing.T) {
			if got := formatTrigger(tt.minutes); got != tt.trigger {
				t.Errorf("formatTrigger(%d) = %q, want %q", tt.minutes, got, tt.trigger)
			}
			got, ok := parseTrigger(tt.trigger)
			if !ok || got != tt.minutes {
				t.Errorf("parseTrigger(%q) = %d, %v", tt.trigger, got, ok)
			}
		})
	}

	if got, ok := parseTrigger("-P1DT2H"); !ok || got != 1560 {
		t.Errorf("parseTrigger(-P1DT2H) = %d, %v", got, ok)
	}
	if _, ok := parseTrigger("PT15M"); ok {
		t.Error("triggers after the start are not reminders")
	}
}
