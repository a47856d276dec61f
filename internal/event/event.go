// Package event defines the calendar event model shared by every part of coursecal.
package event

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
)

// Validation errors.
var (
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrMissingStart       = errors.New("start time is required")
	ErrEndBeforeStart     = errors.New("end time must not be before start time")
	ErrUnknownType        = errors.New("unknown event type")
	ErrUnknownPriority    = errors.New("unknown priority")
	ErrUnknownVisibility  = errors.New("unknown visibility")
	ErrTooManyTags        = errors.New("an event can have at most 5 tags")
	ErrNegativeReminder   = errors.New("reminder minutes cannot be negative")
	ErrInvalidMeetingURL  = errors.New("meeting url must be an absolute http(s) url")
	ErrInvalidRecurrence  = errors.New("invalid recurrence rule")
	ErrRecurrenceMismatch = errors.New("recurring events need a recurrence rule")
)

// Domain errors.
var (
	ErrEventNotFound = errors.New("event not found")
)

// MaxTags is the largest number of tags an event may carry.
const MaxTags = 5

// DefaultDuration is assumed for timed events without an end time.
// It only affects layout; the stored event keeps its missing end.
const DefaultDuration = 60 * time.Minute

// Type categorizes an event. It drives default color and icon only.
type Type string

const (
	TypeAssignment   Type = "ASSIGNMENT"
	TypeQuiz         Type = "QUIZ"
	TypeExam         Type = "EXAM"
	TypeLesson       Type = "LESSON"
	TypeLecture      Type = "LECTURE"
	TypeMeeting      Type = "MEETING"
	TypeOfficeHours  Type = "OFFICE_HOURS"
	TypeDeadline     Type = "DEADLINE"
	TypeStudySession Type = "STUDY_SESSION"
	TypePersonal     Type = "PERSONAL"
	TypeHoliday      Type = "HOLIDAY"
	TypeOther        Type = "OTHER"
)

// Types lists every known event type in display order.
func Types() []Type {
	return []Type{
		TypeAssignment, TypeQuiz, TypeExam, TypeLesson, TypeLecture, TypeMeeting,
		TypeOfficeHours, TypeDeadline, TypeStudySession, TypePersonal, TypeHoliday, TypeOther,
	}
}

// Valid returns true if the type is a known value.
func (t Type) Valid() bool {
	return slices.Contains(Types(), t)
}

// ParseType parses a type name case-insensitively. "office-hours" and
// "office hours" are accepted as well as "OFFICE_HOURS".
func ParseType(s string) (Type, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	t := Type(norm)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Priority is a presentation hint only.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Priorities lists priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	return slices.Contains(Priorities(), p)
}

// Rank orders priorities; higher is more important. Unknown values rank 0.
func (p Priority) Rank() int {
	return slices.Index(Priorities(), p) + 1
}

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPriority, s)
	}
	return p, nil
}

// Visibility controls who can see an event.
type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityCourse  Visibility = "COURSE"
	VisibilityPublic  Visibility = "PUBLIC"
)

// Valid returns true if the visibility is a known value.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityCourse, VisibilityPublic:
		return true
	default:
		return false
	}
}

// ParseVisibility parses a visibility name case-insensitively.
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVisibility, s)
	}
	return v, nil
}

// CalendarEvent is one scheduling-relevant entity: an assignment, exam,
// meeting, deadline or personal event.
//
// Events are snapshots. Nothing in the engine mutates one in place; edits go
// through the Store and come back as new values.
type CalendarEvent struct {
	ID          string
	Title       string
	Description string
	Location    string
	MeetingURL  string
	Type        Type

	StartTime time.Time
	EndTime   *time.Time // optional; nil means "no explicit end"
	IsAllDay  bool

	Priority        Priority
	Tags            []string // lower-cased, deduplicated, at most MaxTags
	Attendees       []string // ordered user references
	ReminderMinutes int

	// Recurrence is non-nil exactly when the event is a recurring series.
	Recurrence *Recurrence

	Visibility  Visibility
	CourseID    string // empty when the event is not scoped to a course
	IsCancelled bool
	Color       string // optional override of the type color

	// SeriesID points back at the recurring series an occurrence (or a
	// detached exception) belongs to. Empty for plain events and series.
	SeriesID string
	// OccurrenceDate is set only on occurrences materialized by expansion.
	OccurrenceDate time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRecurring returns true if the event defines a recurring series.
func (e *CalendarEvent) IsRecurring() bool {
	return e.Recurrence != nil
}

// IsOccurrence returns true if the event was materialized from a series.
func (e *CalendarEvent) IsOccurrence() bool {
	return !e.OccurrenceDate.IsZero()
}

// HasCourse returns true if the event is scoped to a course.
func (e *CalendarEvent) HasCourse() bool {
	return e.CourseID != ""
}

// EffectiveEnd returns the end instant used for layout.
// Timed events without an end last DefaultDuration. All-day events end at
// midnight after their last covered day.
func (e *CalendarEvent) EffectiveEnd() time.Time {
	if e.IsAllDay {
		days := e.Days()
		return days[len(days)-1].AddDate(0, 0, 1)
	}
	if e.EndTime == nil {
		return e.StartTime.Add(DefaultDuration)
	}
	return *e.EndTime
}

// Duration returns the layout duration of a timed event.
func (e *CalendarEvent) Duration() time.Duration {
	return e.EffectiveEnd().Sub(e.StartTime)
}

// Days returns the calendar dates the event occupies, at midnight in the
// start time's location. Timed events occupy only their start date; all-day
// events run from the start date through the end date inclusive.
func (e *CalendarEvent) Days() []time.Time {
	first := dateutil.TruncateToDay(e.StartTime)
	if !e.IsAllDay || e.EndTime == nil {
		return []time.Time{first}
	}
	last := dateutil.TruncateToDay(e.EndTime.In(e.StartTime.Location()))
	if last.Before(first) {
		return []time.Time{first}
	}
	return dateutil.Span(first, last).Days()
}

// OccursOn reports whether the event occupies the given date.
func (e *CalendarEvent) OccursOn(date time.Time) bool {
	for _, d := range e.Days() {
		if dateutil.SameDay(d, date) {
			return true
		}
	}
	return false
}

// IsPast returns true if the event starts strictly before now.
func (e *CalendarEvent) IsPast(now time.Time) bool {
	return e.StartTime.Before(now)
}

// Clone returns a deep copy of the event.
func (e *CalendarEvent) Clone() *CalendarEvent {
	c := *e
	if e.EndTime != nil {
		end := *e.EndTime
		c.EndTime = &end
	}
	c.Tags = slices.Clone(e.Tags)
	c.Attendees = slices.Clone(e.Attendees)
	if e.Recurrence != nil {
		c.Recurrence = e.Recurrence.Clone()
	}
	return &c
}

// Validate checks the event invariants. Events that fail are excluded from
// layout instead of aborting a whole projection.
func (e *CalendarEvent) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if e.StartTime.IsZero() {
		return ErrMissingStart
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return ErrEndBeforeStart
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
	if !e.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPriority, e.Priority)
	}
	if !e.Visibility.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownVisibility, e.Visibility)
	}
	if len(e.Tags) > MaxTags {
		return ErrTooManyTags
	}
	if e.ReminderMinutes < 0 {
		return ErrNegativeReminder
	}
	if e.MeetingURL != "" {
		if err := validateMeetingURL(e.MeetingURL); err != nil {
			return err
		}
	}
	if e.Recurrence != nil {
		if err := e.Recurrence.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Rejected pairs a malformed event with the reason it was dropped.
type Rejected struct {
	Event *CalendarEvent
	Err   error
}

// Sanitize splits events into valid ones and rejected ones, preserving order.
func Sanitize(events []*CalendarEvent) (valid []*CalendarEvent, rejected []Rejected) {
	valid = make([]*CalendarEvent, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if err := e.Validate(); err != nil {
			rejected = append(rejected, Rejected{Event: e, Err: err})
			continue
		}
		valid = append(valid, e)
	}
	return valid, rejected
}

// NormalizeTags trims, lower-cases and deduplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

func validateMeetingURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidMeetingURL, raw)
	}
	return nil
}

// ByStart orders events by start time, then title, then id.
func ByStart(a, b *CalendarEvent) int {
	if c := a.StartTime.Compare(b.StartTime); c != 0 {
		return c
	}
	if c := strings.Compare(a.Title, b.Title); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
