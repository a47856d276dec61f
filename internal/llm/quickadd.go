package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
)

// ErrEmptyInput is returned when QuickAdd is given nothing to parse.
var ErrEmptyInput = errors.New("quick add input is empty")

const quickAddPrompt = `You turn a student's short note into one calendar event.

Context:
- Current date and time: %s, %s %s (format: DayOfWeek, YYYY-MM-DD HH:MM)
- Today: %s (%s)
- Tomorrow: %s (%s)

User note: "%s"

Date rules:
- "today" ALWAYS means %s, even if it's a weekend
- "tomorrow" ALWAYS means %s
- "monday", "next monday" -> next occurrence of Monday after today
- "in X days" -> add X days to today
- "next week" -> add 7 days to today
- Explicit "YYYY-MM-DD" -> use that exact date

Other rules:
1. "start" and "end" are "YYYY-MM-DD HH:MM" (24-hour). Omit "end" if no duration is given.
2. For events without a time (deadlines, holidays, "all day"), set "all_day": true and use "YYYY-MM-DD" for start.
3. "type" is one of: %s
4. "priority" is one of: %s. Exams and deadlines are at least HIGH.
5. "course" is a course code like "CS201" when one is mentioned, else "".
6. Keep "title" short; do not repeat the date or location in it.

Respond ONLY with valid JSON (no markdown, no explanation):
{
  "title": "string",
  "type": "string",
  "start": "string",
  "end": "string",
  "all_day": false,
  "location": "string",
  "course": "string",
  "priority": "string"
}`

// QuickAddResponse is the model's reading of a quick add note.
type QuickAddResponse struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Start    string `json:"start"`
	End      string `json:"end"`
	AllDay   bool   `json:"all_day"`
	Location string `json:"location"`
	Course   string `json:"course"`
	Priority string `json:"priority"`
}

// QuickAdd asks the model to read a note such as
// "Physics exam next friday 9-11 in room 204" and returns it as a draft.
// Times are interpreted in now's location.
func QuickAdd(ctx context.Context, client Client, input string, now time.Time) (event.Draft, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return event.Draft{}, ErrEmptyInput
	}

	var resp QuickAddResponse
	if err := client.ChatJSON(ctx, buildQuickAddMessages(input, now), &resp); err != nil {
		return event.Draft{}, fmt.Errorf("quick add: %w", err)
	}
	return resp.ToDraft(now.Location())
}

func buildQuickAddMessages(input string, now time.Time) []Message {
	today := now.Format(dateutil.DateLayout)
	tomorrow := now.AddDate(0, 0, 1)

	types := make([]string, 0, len(event.Types()))
	for _, t := range event.Types() {
		types = append(types, string(t))
	}
	priorities := make([]string, 0, len(event.Priorities()))
	for _, p := range event.Priorities() {
		priorities = append(priorities, string(p))
	}

	prompt := fmt.Sprintf(quickAddPrompt,
		now.Weekday(), today, now.Format("15:04"),
		today, now.Weekday(),
		tomorrow.Format(dateutil.DateLayout), tomorrow.Weekday(),
		input,
		today,
		tomorrow.Format(dateutil.DateLayout),
		strings.Join(types, ", "),
		strings.Join(priorities, ", "),
	)
	return []Message{
		{Role: RoleSystem, Content: prompt},
		{Role: RoleUser, Content: input},
	}
}

// ToDraft converts the response into a draft. Unknown types and priorities
// fall back to the event defaults rather than failing.
func (r QuickAddResponse) ToDraft(loc *time.Location) (event.Draft, error) {
	d := event.Draft{
		Title:    strings.TrimSpace(r.Title),
		Location: strings.TrimSpace(r.Location),
		CourseID: strings.TrimSpace(r.Course),
		IsAllDay: r.AllDay,
	}
	if d.Title == "" {
		return d, event.ErrEmptyTitle
	}
	if t, err := event.ParseType(r.Type); err == nil {
		d.Type = t
	}
	if p, err := event.ParsePriority(r.Priority); err == nil {
		d.Priority = p
	}

	start, err := parseModelTime(r.Start, loc)
	if err != nil {
		return d, fmt.Errorf("parsing start %q: %w", r.Start, err)
	}
	if d.IsAllDay {
		start = dateutil.TruncateToDay(start)
	}
	d.StartTime = start

	if strings.TrimSpace(r.End) != "" && !d.IsAllDay {
		end, err := parseModelTime(r.End, loc)
		if err != nil {
			return d, fmt.Errorf("parsing end %q: %w", r.End, err)
		}
		if end.After(start) {
			d.EndTime = &end
		}
	}
	return d, nil
}

// parseModelTime accepts the layouts models tend to produce.
func parseModelTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02T15:04:05", dateutil.DateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, dateutil.ErrInvalidDateFormat
}
