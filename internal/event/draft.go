package event

import (
	"strings"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
)

// Defaults applied by New.
const (
	DefaultType            = TypeMeeting
	DefaultPriority        = PriorityMedium
	DefaultReminderMinutes = 15
)

// ReminderOptions are the reminder offsets offered by the add form, in minutes.
var ReminderOptions = []int{0, 5, 15, 30, 60, 1440, 10080}

// Draft holds the user-supplied fields of a new event.
// Zero values fall back to defaults in New.
type Draft struct {
	Title       string
	Description string
	Location    string
	MeetingURL  string
	Type        Type

	StartTime time.Time
	EndTime   *time.Time
	IsAllDay  bool

	Priority  Priority
	Tags      []string
	Attendees []string
	// ReminderMinutes nil means DefaultReminderMinutes.
	ReminderMinutes *int

	// Recurring mirrors an explicit "repeats" flag from forms and imports.
	// It must agree with Recurrence.
	Recurring  bool
	Recurrence *Recurrence

	Visibility  Visibility
	CourseID    string
	IsCancelled bool
	Color       string
	SeriesID    string
}

// New validates a draft and builds an event from it.
// The id is left empty; stores assign it.
func New(d Draft, now time.Time) (*CalendarEvent, error) {
	if d.Recurring && d.Recurrence == nil {
		return nil, ErrRecurrenceMismatch
	}

	tags := NormalizeTags(d.Tags)
	if len(tags) > MaxTags {
		return nil, ErrTooManyTags
	}

	e := &CalendarEvent{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Location:    strings.TrimSpace(d.Location),
		MeetingURL:  strings.TrimSpace(d.MeetingURL),
		Type:        d.Type,
		StartTime:   d.StartTime,
		IsAllDay:    d.IsAllDay,
		Priority:    d.Priority,
		Tags:        tags,
		Attendees:   append([]string(nil), d.Attendees...),
		Visibility:  d.Visibility,
		CourseID:    strings.TrimSpace(d.CourseID),
		IsCancelled: d.IsCancelled,
		Color:       strings.TrimSpace(d.Color),
		SeriesID:    d.SeriesID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if d.EndTime != nil {
		end := *d.EndTime
		e.EndTime = &end
	}
	if d.Recurrence != nil {
		e.Recurrence = d.Recurrence.Clone()
	}

	if e.Type == "" {
		e.Type = DefaultType
	}
	if e.Priority == "" {
		e.Priority = DefaultPriority
	}
	if d.ReminderMinutes == nil {
		e.ReminderMinutes = DefaultReminderMinutes
	} else {
		e.ReminderMinutes = *d.ReminderMinutes
	}
	if e.Visibility == "" {
		e.Visibility = VisibilityPrivate
		if e.HasCourse() {
			e.Visibility = VisibilityCourse
		}
	}

	if e.IsAllDay {
		e.StartTime = dateutil.TruncateToDay(e.StartTime)
		if e.EndTime != nil {
			// A same-day end carries no information for an all-day event.
			if dateutil.SameDay(e.StartTime, *e.EndTime) {
				e.EndTime = nil
			} else {
				end := dateutil.TruncateToDay(e.EndTime.In(e.StartTime.Location()))
				e.EndTime = &end
			}
		}
	} else if e.EndTime != nil && !e.EndTime.After(e.StartTime) && !e.StartTime.IsZero() {
		return nil, ErrEndBeforeStart
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Location    *string
	MeetingURL  *string
	Type        *Type

	StartTime *time.Time
	EndTime   *time.Time
	ClearEnd  bool
	IsAllDay  *bool

	Priority        *Priority
	Tags            *[]string
	Attendees       *[]string
	ReminderMinutes *int

	Recurrence      *Recurrence
	ClearRecurrence bool

	Visibility  *Visibility
	CourseID    *string
	IsCancelled *bool
	Color       *string
}

// IsEmpty returns true if the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == (Patch{})
}

// Apply returns a copy of e with the patch applied and validated.
// e itself is never modified.
func (e *CalendarEvent) Apply(p Patch, now time.Time) (*CalendarEvent, error) {
	c := e.Clone()
	if p.Title != nil {
		c.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.Location != nil {
		c.Location = strings.TrimSpace(*p.Location)
	}
	if p.MeetingURL != nil {
		c.MeetingURL = strings.TrimSpace(*p.MeetingURL)
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.StartTime != nil {
		// Moving the start keeps the duration when no new end is given.
		if c.EndTime != nil && p.EndTime == nil && !p.ClearEnd {
			end := p.StartTime.Add(c.EndTime.Sub(c.StartTime))
			c.EndTime = &end
		}
		c.StartTime = *p.StartTime
	}
	if p.ClearEnd {
		c.EndTime = nil
	}
	if p.EndTime != nil {
		end := *p.EndTime
		c.EndTime = &end
	}
	if p.IsAllDay != nil {
		c.IsAllDay = *p.IsAllDay
		if c.IsAllDay {
			c.StartTime = dateutil.TruncateToDay(c.StartTime)
		}
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.Tags != nil {
		c.Tags = NormalizeTags(*p.Tags)
	}
	if p.Attendees != nil {
		c.Attendees = append([]string(nil), (*p.Attendees)...)
	}
	if p.ReminderMinutes != nil {
		c.ReminderMinutes = *p.ReminderMinutes
	}
	if p.ClearRecurrence {
		c.Recurrence = nil
	}
	if p.Recurrence != nil {
		c.Recurrence = p.Recurrence.Clone()
	}
	if p.Visibility != nil {
		c.Visibility = *p.Visibility
	}
	if p.CourseID != nil {
		c.CourseID = strings.TrimSpace(*p.CourseID)
	}
	if p.IsCancelled != nil {
		c.IsCancelled = *p.IsCancelled
	}
	if p.Color != nil {
		c.Color = strings.TrimSpace(*p.Color)
	}
	c.UpdatedAt = now

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ToDraft converts an event back into a draft, e.g. to recreate it elsewhere.
func (e *CalendarEvent) ToDraft() Draft {
	reminder := e.ReminderMinutes
	d := Draft{
		Title:           e.Title,
		Description:     e.Description,
		Location:        e.Location,
		MeetingURL:      e.MeetingURL,
		Type:            e.Type,
		StartTime:       e.StartTime,
		IsAllDay:        e.IsAllDay,
		Priority:        e.Priority,
		Tags:            append([]string(nil), e.Tags...),
		Attendees:       append([]string(nil), e.Attendees...),
		ReminderMinutes: &reminder,
		Recurring:       e.Recurrence != nil,
		Visibility:      e.Visibility,
		CourseID:        e.CourseID,
		IsCancelled:     e.IsCancelled,
		Color:           e.Color,
		SeriesID:        e.SeriesID,
	}
	if e.EndTime != nil {
		end := *e.EndTime
		d.EndTime = &end
	}
	if e.Recurrence != nil {
		d.Recurrence = e.Recurrence.Clone()
	}
	return d
}
