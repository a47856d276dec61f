package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/recurrence"
)

// ErrMissingUID is reported for VEVENTs without a UID.
var ErrMissingUID = errors.New("missing UID")

// Skipped is a VEVENT that could not be imported.
type Skipped struct {
	UID     string
	Summary string
	Err     error
}

// Result is the outcome of an import.
type Result struct {
	Drafts  []event.Draft
	Skipped []Skipped
}

// Import parses an iCalendar stream into drafts. Times are converted to loc;
// all-day dates are taken as dates in loc. Malformed VEVENTs are skipped and
// reported in the result instead of failing the whole import.
//
// RECURRENCE-ID overrides become standalone drafts, and their original date
// is added to the master series' exceptions.
func Import(r io.Reader, loc *time.Location) (*Result, error) {
	if loc == nil {
		loc = time.Local
	}
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	res := &Result{}
	masters := make(map[string]int) // UID -> index in res.Drafts
	var overrides []override

	for _, ve := range cal.Events() {
		uid := propValue(ve, ical.ComponentPropertyUniqueId)
		d, err := parseVEvent(ve, loc)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{
				UID:     uid,
				Summary: propValue(ve, ical.ComponentPropertySummary),
				Err:     err,
			})
			continue
		}

		if rid := ve.GetProperty(ical.ComponentPropertyRecurrenceId); rid != nil {
			if date, err := parseDate(rid, loc); err == nil {
				overrides = append(overrides, override{uid: uid, date: date})
			}
			d.Recurring = false
			d.Recurrence = nil
		} else if d.Recurrence != nil {
			masters[uid] = len(res.Drafts)
		}
		res.Drafts = append(res.Drafts, d)
	}

	for _, o := range overrides {
		i, ok := masters[o.uid]
		if !ok {
			continue
		}
		rule := res.Drafts[i].Recurrence
		if !rule.IsExcluded(o.date) {
			rule.Exceptions = append(rule.Exceptions, o.date)
		}
	}

	return res, nil
}

type override struct {
	uid  string
	date time.Time
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (event.Draft, error) {
	var d event.Draft

	if propValue(ve, ical.ComponentPropertyUniqueId) == "" {
		return d, ErrMissingUID
	}
	d.Title = propValue(ve, ical.ComponentPropertySummary)
	if strings.TrimSpace(d.Title) == "" {
		d.Title = "(no title)"
	}
	d.Description = propValue(ve, ical.ComponentPropertyDescription)
	d.Location = propValue(ve, ical.ComponentPropertyLocation)
	d.MeetingURL = propValue(ve, ical.ComponentPropertyUrl)
	d.CourseID = propValue(ve, propCourse)
	d.Color = propValue(ve, ical.ComponentPropertyColor)

	start := ve.GetProperty(ical.ComponentPropertyDtStart)
	if start == nil {
		return d, event.ErrMissingStart
	}
	if isDate(start) {
		d.IsAllDay = true
		first, err := parseDate(start, loc)
		if err != nil {
			return d, fmt.Errorf("parsing DTSTART: %w", err)
		}
		d.StartTime = first
		if end := ve.GetProperty(ical.ComponentPropertyDtEnd); end != nil {
			// DTEND is exclusive for dates.
			next, err := parseDate(end, loc)
			if err != nil {
				return d, fmt.Errorf("parsing DTEND: %w", err)
			}
			if last := next.AddDate(0, 0, -1); last.After(first) {
				d.EndTime = &last
			}
		}
	} else {
		t, err := parseDateTime(start, loc)
		if err != nil {
			return d, fmt.Errorf("parsing DTSTART: %w", err)
		}
		d.StartTime = t
		if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
			end, err := parseDateTime(p, loc)
			if err != nil {
				return d, fmt.Errorf("parsing DTEND: %w", err)
			}
			if end.After(d.StartTime) {
				d.EndTime = &end
			}
		}
	}

	if rrule := ve.GetProperty(ical.ComponentPropertyRrule); rrule != nil {
		rule, err := recurrence.ParseRule(rrule.Value)
		if err != nil {
			return d, err
		}
		for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
			dates, err := parseDates(p, loc)
			if err != nil {
				return d, fmt.Errorf("parsing EXDATE: %w", err)
			}
			rule.Exceptions = append(rule.Exceptions, dates...)
		}
		d.Recurring = true
		d.Recurrence = rule
	}

	// The first category names the type when it is one; the rest are tags.
	var categories []string
	for _, p := range ve.GetProperties(ical.ComponentPropertyCategories) {
		categories = append(categories, strings.Split(p.Value, ",")...)
	}
	d.Type = event.TypePersonal
	if len(categories) > 0 {
		if t, err := event.ParseType(categories[0]); err == nil {
			d.Type = t
			categories = categories[1:]
		}
	}
	d.Tags = event.NormalizeTags(categories)
	if len(d.Tags) > event.MaxTags {
		d.Tags = d.Tags[:event.MaxTags]
	}

	for _, a := range ve.GetProperties(ical.ComponentPropertyAttendee) {
		d.Attendees = append(d.Attendees, strings.TrimPrefix(a.Value, "mailto:"))
	}

	if v := propValue(ve, ical.ComponentPropertyPriority); v != "" {
		if level, err := strconv.Atoi(v); err == nil {
			d.Priority = priorityFromLevel(level)
		}
	}
	if propValue(ve, ical.ComponentPropertyStatus) == string(ical.ObjectStatusCancelled) {
		d.IsCancelled = true
	}

	if v, err := event.ParseVisibility(propValue(ve, propVisibility)); err == nil {
		d.Visibility = v
	} else if propValue(ve, ical.ComponentPropertyClass) == string(ical.ClassificationPublic) {
		d.Visibility = event.VisibilityPublic
	}

	reminder := 0
	for _, alarm := range ve.Alarms() {
		if trigger := alarm.GetProperty(ical.ComponentPropertyTrigger); trigger != nil {
			if m, ok := parseTrigger(trigger.Value); ok {
				reminder = max(reminder, m)
			}
		}
	}
	d.ReminderMinutes = &reminder

	return d, nil
}

func propValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return strings.TrimSpace(prop.Value)
	}
	return ""
}

func isDate(p *ical.IANAProperty) bool {
	if v, ok := p.ICalParameters[string(ical.ParameterValue)]; ok && len(v) > 0 && strings.EqualFold(v[0], string(ical.ValueDataTypeDate)) {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseDate returns the calendar date of a DATE or DATE-TIME property in loc.
func parseDate(p *ical.IANAProperty, loc *time.Location) (time.Time, error) {
	dates, err := parseDates(p, loc)
	if err != nil {
		return time.Time{}, err
	}
	if len(dates) == 0 {
		return time.Time{}, fmt.Errorf("empty %s", p.IANAToken)
	}
	return dates[0], nil
}

// parseDateTime parses a DATE-TIME property. UTC values and values with a
// TZID keep their instant; floating values are read in loc.
func parseDateTime(p *ical.IANAProperty, loc *time.Location) (time.Time, error) {
	src, err := sourceLocation(p, loc)
	if err != nil {
		return time.Time{}, err
	}
	v := strings.TrimSpace(p.Value)
	var t time.Time
	if strings.HasSuffix(v, "Z") {
		t, err = time.Parse(utcLayout, v)
	} else {
		t, err = time.ParseInLocation(dateTimeLayout, v, src)
	}
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

func sourceLocation(p *ical.IANAProperty, loc *time.Location) (*time.Location, error) {
	tz, ok := p.ICalParameters[string(ical.ParameterTzid)]
	if !ok || len(tz) != 1 {
		return loc, nil
	}
	return time.LoadLocation(tz[0])
}

// parseDates parses a possibly comma-separated list of dates or date-times
// into calendar dates in loc.
func parseDates(p *ical.IANAProperty, loc *time.Location) ([]time.Time, error) {
	src, err := sourceLocation(p, loc)
	if err != nil {
		return nil, err
	}

	var out []time.Time
	for _, v := range strings.Split(p.Value, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		var (
			t   time.Time
			err error
		)
		switch {
		case strings.HasSuffix(v, "Z"):
			t, err = time.Parse(utcLayout, v)
		case strings.Contains(v, "T"):
			t, err = time.ParseInLocation(dateTimeLayout, v, src)
		default:
			t, err = time.ParseInLocation(dateLayout, v, loc)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, dateutil.TruncateToDay(t.In(loc)))
	}
	return out, nil
}
