package event

import "strings"

// Palette color names used for event styling. Presentation layers map
// them onto whatever their medium supports.
const (
	ColorBlue   = "blue"
	ColorRed    = "red"
	ColorGreen  = "green"
	ColorPurple = "purple"
	ColorOrange = "orange"
	ColorPink   = "pink"
	ColorIndigo = "indigo"
	ColorYellow = "yellow"
	ColorGray   = "gray"
)

// Icon names.
const (
	IconBook     = "book-open"
	IconAward    = "award"
	IconCalendar = "calendar"
	IconUsers    = "users"
	IconAlert    = "alert-triangle"
)

// Style describes how an event should look.
type Style struct {
	Label string
	Icon  string
	Glyph string // single-cell stand-in for Icon in terminals
	Color string
	Muted bool // cancelled events render grayed out
}

var typeStyles = map[Type]Style{
	TypeAssignment:   {Label: "Assignment", Icon: IconBook, Glyph: "✎", Color: ColorBlue},
	TypeQuiz:         {Label: "Quiz", Icon: IconAward, Glyph: "?", Color: ColorRed},
	TypeExam:         {Label: "Exam", Icon: IconAward, Glyph: "!", Color: ColorRed},
	TypeLesson:       {Label: "Lesson", Icon: IconCalendar, Glyph: "•", Color: ColorGreen},
	TypeLecture:      {Label: "Lecture", Icon: IconCalendar, Glyph: "•", Color: ColorGreen},
	TypeMeeting:      {Label: "Meeting", Icon: IconUsers, Glyph: "◆", Color: ColorPurple},
	TypeOfficeHours:  {Label: "Office Hours", Icon: IconUsers, Glyph: "◆", Color: ColorPurple},
	TypeDeadline:     {Label: "Deadline", Icon: IconAlert, Glyph: "▲", Color: ColorOrange},
	TypeStudySession: {Label: "Study Session", Icon: IconCalendar, Glyph: "•", Color: ColorGray},
	TypePersonal:     {Label: "Personal", Icon: IconCalendar, Glyph: "•", Color: ColorIndigo},
	TypeHoliday:      {Label: "Holiday", Icon: IconCalendar, Glyph: "*", Color: ColorPink},
	TypeOther:        {Label: "Other", Icon: IconCalendar, Glyph: "•", Color: ColorGray},
}

var priorityColors = map[Priority]string{
	PriorityUrgent: ColorRed,
	PriorityHigh:   ColorOrange,
	PriorityMedium: ColorYellow,
	PriorityLow:    ColorGreen,
}

// StyleOf returns the base style for a type. Unknown types get the Other style.
func StyleOf(t Type) Style {
	if s, ok := typeStyles[t]; ok {
		return s
	}
	return typeStyles[TypeOther]
}

// Appearance returns the final style for an event: the type's base style
// with the color override applied, then cancellation on top of that.
func Appearance(e *CalendarEvent) Style {
	s := StyleOf(e.Type)
	if e.Color != "" {
		s.Color = e.Color
	}
	if e.IsCancelled {
		s.Color = ColorGray
		s.Muted = true
	}
	return s
}

// PriorityIndicator returns the accent color for a priority, or "" if unknown.
func PriorityIndicator(p Priority) string {
	return priorityColors[p]
}

// Label returns the display label for a type, e.g. "Office Hours".
func (t Type) Label() string {
	if s, ok := typeStyles[t]; ok {
		return s.Label
	}
	return strings.ReplaceAll(string(t), "_", " ")
}
