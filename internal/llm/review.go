package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
)

const reviewSystemPrompt = `You are a concise study planner. Output ONLY the exact format shown - no markdown, no extra text.`

const reviewPromptTemplate = `Review this student's calendar and output EXACTLY this format (no markdown, no code blocks):

FOCUS: [ 2-4 word theme ]

⚠️  CRUNCH: The busiest day and why (exams, deadlines, stacked lectures).
📚 PREP: One sentence on which exam or deadline needs preparation time first.

NEXT:
➜  First specific action.
➜  Second specific action.

Data Format:
- ! = HIGH priority, !! = URGENT
- [x] = cancelled, ignore it

Calendar:
%s

Rules:
- Use the exact emoji prefixes shown (⚠️, 📚, ➜)
- Keep each line under 70 characters
- Be specific with days, times and course codes from the data
- If no issue exists for a category, omit that line
- Output plain text only, no markdown formatting`

// Review asks the model for a short workload review of the events in window.
// Events should already be expanded and sorted.
func Review(ctx context.Context, client Client, window dateutil.DateRange, events []*event.CalendarEvent) (string, error) {
	prompt := fmt.Sprintf(reviewPromptTemplate, formatCalendar(window, events))
	return client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: reviewSystemPrompt},
		{Role: RoleUser, Content: prompt},
	})
}

// formatCalendar renders events one per line, grouped under day headers.
func formatCalendar(window dateutil.DateRange, events []*event.CalendarEvent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Range: %s - %s\n\n", window.Start.Format("Mon Jan 2"), window.End.Format("Mon Jan 2, 2006"))

	var current time.Time
	for _, e := range events {
		day := dateutil.TruncateToDay(e.StartTime)
		if !day.Equal(current) {
			if !current.IsZero() {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "%s\n", day.Format("Mon Jan 2"))
			current = day
		}

		mark := "   "
		switch {
		case e.IsCancelled:
			mark = "[x]"
		case e.Priority == event.PriorityUrgent:
			mark = "!! "
		case e.Priority == event.PriorityHigh:
			mark = "!  "
		}

		line := fmt.Sprintf("  %s %-11s  %-13s  %s", mark, e.TimeRange(), e.Type, e.Title)
		if e.CourseID != "" {
			line += "  (" + e.CourseID + ")"
		}
		sb.WriteString(line + "\n")
	}
	if len(events) == 0 {
		sb.WriteString("  (no events)\n")
	}
	return sb.String()
}
