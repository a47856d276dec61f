package ui

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/javiermolinar/coursecal/internal/event"
)

// Color definitions for consistent styling across the UI.
var (
	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Today's date and the now marker
	colorToday = color.New(color.FgCyan, color.Bold)

	// Insight/results: yellow to make it pop
	colorInsight = color.New(color.FgYellow)

	// Stats: green for positive metrics
	colorStats = color.New(color.FgGreen)

	// Muted: for secondary information and cancelled events
	colorMuted = color.New(color.FgWhite, color.Faint)

	// Errors and skipped items
	colorError = color.New(color.FgRed)
)

// eventColors maps palette names onto terminal colors.
var eventColors = map[string]*color.Color{
	event.ColorBlue:   color.New(color.FgBlue),
	event.ColorRed:    color.New(color.FgRed),
	event.ColorGreen:  color.New(color.FgGreen),
	event.ColorPurple: color.New(color.FgMagenta),
	event.ColorOrange: color.New(color.FgHiRed),
	event.ColorPink:   color.New(color.FgHiMagenta),
	event.ColorIndigo: color.New(color.FgHiBlue),
	event.ColorYellow: color.New(color.FgYellow),
	event.ColorGray:   color.New(color.FgWhite, color.Faint),
}

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

// formatEvent colors s with the event's appearance.
func formatEvent(e *event.CalendarEvent, s string) string {
	style := event.Appearance(e)
	if style.Muted {
		return colorMuted.Sprint(s)
	}
	if c, ok := eventColors[style.Color]; ok {
		return c.Sprint(s)
	}
	return s
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

// formatToday highlights today.
func formatToday(s string) string {
	return colorToday.Sprint(s)
}

// formatInsight formats text for insight/coaching output.
func formatInsight(s string) string {
	return colorInsight.Sprint(s)
}

// formatStats formats text for statistics.
func formatStats(s string) string {
	return colorStats.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// formatError formats text as an error.
func formatError(s string) string {
	return colorError.Sprint(s)
}

// fit truncates s to width display cells and pads it to exactly width.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
