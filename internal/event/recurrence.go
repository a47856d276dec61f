package event

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
)

// Frequency is the base unit of a recurrence rule.
type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

// ParseFrequency parses a frequency name case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrence, s)
}

// Recurrence is the rule a recurring event repeats by.
//
// A rule ends after Count occurrences or at Until, whichever comes first.
// Neither set means the series never ends; expansion is always bounded by
// the requested window.
type Recurrence struct {
	Frequency Frequency
	Interval  int // every Interval units; 0 is treated as 1
	Count     int // 0 means no count limit
	Until     *time.Time
	ByWeekday []time.Weekday
	// Exceptions are occurrence dates removed from the series.
	Exceptions []time.Time
}

// Validate checks that the rule is well formed.
func (r *Recurrence) Validate() error {
	switch r.Frequency {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidRecurrence, r.Frequency)
	}
	if r.Interval < 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidRecurrence)
	}
	if r.Count < 0 {
		return fmt.Errorf("%w: count cannot be negative", ErrInvalidRecurrence)
	}
	return nil
}

// Step returns the interval, defaulting to 1.
func (r *Recurrence) Step() int {
	if r.Interval <= 0 {
		return 1
	}
	return r.Interval
}

// IsExcluded reports whether an occurrence on date has been removed.
func (r *Recurrence) IsExcluded(date time.Time) bool {
	for _, ex := range r.Exceptions {
		if dateutil.SameDay(date, ex) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the rule.
func (r *Recurrence) Clone() *Recurrence {
	c := *r
	if r.Until != nil {
		until := *r.Until
		c.Until = &until
	}
	c.ByWeekday = slices.Clone(r.ByWeekday)
	c.Exceptions = slices.Clone(r.Exceptions)
	return &c
}

// String renders the rule in a short human form, e.g. "every 2 weeks on Mon, Wed until 2024-06-01".
func (r *Recurrence) String() string {
	unit := map[Frequency]string{Daily: "day", Weekly: "week", Monthly: "month", Yearly: "year"}[r.Frequency]
	var b strings.Builder
	if step := r.Step(); step == 1 {
		fmt.Fprintf(&b, "every %s", unit)
	} else {
		fmt.Fprintf(&b, "every %d %ss", step, unit)
	}
	if len(r.ByWeekday) > 0 {
		days := make([]string, len(r.ByWeekday))
		for i, d := range r.ByWeekday {
			days[i] = d.String()[:3]
		}
		fmt.Fprintf(&b, " on %s", strings.Join(days, ", "))
	}
	if r.Count > 0 {
		fmt.Fprintf(&b, " for %d times", r.Count)
	}
	if r.Until != nil {
		fmt.Fprintf(&b, " until %s", r.Until.Format(dateutil.DateLayout))
	}
	return b.String()
}

// OccurrenceID derives the id of the occurrence of series starting at start.
func OccurrenceID(seriesID string, start time.Time) string {
	return seriesID + "@" + start.Format(dateutil.DateLayout)
}

// SplitOccurrenceID splits an occurrence id into its series id and date.
// ok is false when id is not an occurrence id.
func SplitOccurrenceID(id string) (seriesID string, date time.Time, ok bool) {
	i := strings.LastIndex(id, "@")
	if i <= 0 {
		return "", time.Time{}, false
	}
	date, err := time.ParseInLocation(dateutil.DateLayout, id[i+1:], time.Local)
	if err != nil {
		return "", time.Time{}, false
	}
	return id[:i], date, true
}
