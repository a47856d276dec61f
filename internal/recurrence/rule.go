package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/javiermolinar/coursecal/internal/event"
)

var frequencies = map[event.Frequency]rrule.Frequency{
	event.Daily:   rrule.DAILY,
	event.Weekly:  rrule.WEEKLY,
	event.Monthly: rrule.MONTHLY,
	event.Yearly:  rrule.YEARLY,
}

var weekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

func toWeekdays(days []time.Weekday) []rrule.Weekday {
	if len(days) == 0 {
		return nil
	}
	out := make([]rrule.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, weekdays[d])
	}
	return out
}

// fromWeekday maps an rrule weekday back, ignoring any ordinal prefix such as "+1MO".
func fromWeekday(w rrule.Weekday) (time.Weekday, bool) {
	code := w.String()
	if len(code) < 2 {
		return 0, false
	}
	code = code[len(code)-2:]
	for d, rw := range weekdays {
		if rw.String() == code {
			return d, true
		}
	}
	return 0, false
}

// FormatRule renders a recurrence as an RRULE value, e.g.
// "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE;UNTIL=20240601T235959Z".
func FormatRule(r *event.Recurrence) string {
	parts := []string{"FREQ=" + string(r.Frequency)}
	if step := r.Step(); step > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", step))
	}
	if len(r.ByWeekday) > 0 {
		days := make([]string, len(r.ByWeekday))
		for i, d := range r.ByWeekday {
			w := weekdays[d]
			days[i] = w.String()
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	if r.Count > 0 {
		parts = append(parts, fmt.Sprintf("COUNT=%d", r.Count))
	}
	if r.Until != nil {
		parts = append(parts, "UNTIL="+r.Until.UTC().Format("20060102T150405Z"))
	}
	return strings.Join(parts, ";")
}

// ParseRule parses an RRULE value into a recurrence. Parts the event model
// cannot express (BYMONTHDAY, BYSETPOS, ordinal weekdays, ...) are dropped.
func ParseRule(s string) (*event.Recurrence, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "RRULE:")
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", event.ErrInvalidRecurrence, err)
	}

	r := &event.Recurrence{
		Interval: opt.Interval,
		Count:    opt.Count,
	}
	for f, rf := range frequencies {
		if rf == opt.Freq {
			r.Frequency = f
		}
	}
	if r.Frequency == "" {
		return nil, fmt.Errorf("%w: unsupported frequency in %q", event.ErrInvalidRecurrence, s)
	}
	if !opt.Until.IsZero() {
		until := opt.Until
		r.Until = &until
	}
	for _, w := range opt.Byweekday {
		if d, ok := fromWeekday(w); ok {
			r.ByWeekday = append(r.ByWeekday, d)
		}
	}
	return r, nil
}
