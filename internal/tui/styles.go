package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/tui/theme"
)

// timeColumnWidth is the width of the hour labels in the timeline views.
const timeColumnWidth = 6

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	colorBg          lipgloss.Color
	colorBgHighlight lipgloss.Color
	colorBgSelection lipgloss.Color
	colorFg          lipgloss.Color
	colorFgMuted     lipgloss.Color
	colorAccent      lipgloss.Color
	colorCurrent     lipgloss.Color
	colorWarning     lipgloss.Color

	TitleStyle lipgloss.Style

	// View switcher in the header
	TabStyle       lipgloss.Style
	TabActiveStyle lipgloss.Style

	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style

	// Month cells
	CellStyle       lipgloss.Style
	CellOtherStyle  lipgloss.Style // Days outside the current month
	DayNumberStyle  lipgloss.Style
	DayTodayStyle   lipgloss.Style
	DayCursorStyle  lipgloss.Style
	MoreStyle       lipgloss.Style
	GridBorderStyle lipgloss.Style

	TimeColumnStyle lipgloss.Style
	HourRuleStyle   lipgloss.Style
	NowLineStyle    lipgloss.Style

	EmptyStyle lipgloss.Style

	// Agenda
	AgendaDayStyle      lipgloss.Style
	AgendaDayTodayStyle lipgloss.Style

	SelectedStyle lipgloss.Style

	// Filter chips in the footer
	FilterActiveStyle   lipgloss.Style
	FilterInactiveStyle lipgloss.Style

	PromptStyle        lipgloss.Style
	PromptFocusedStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	HelpStyle   lipgloss.Style

	ModalStyle        lipgloss.Style
	ModalBgColor      lipgloss.Color
	ModalBackdrop     lipgloss.Color
	ModalTitleStyle   lipgloss.Style
	ModalLabelStyle   lipgloss.Style
	ModalValueStyle   lipgloss.Style
	ModalMutedStyle   lipgloss.Style
	ModalHintStyle    lipgloss.Style
	ModalWarningStyle lipgloss.Style

	AppStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	palette := theme.NewPalette(t)
	s := &Styles{palette: palette}

	s.colorBg = palette.Bg
	s.colorBgHighlight = palette.BgHighlight
	s.colorBgSelection = palette.BgSelection
	s.colorFg = palette.Fg
	s.colorFgMuted = palette.FgMuted
	s.colorAccent = palette.Accent
	s.colorCurrent = palette.Current
	s.colorWarning = palette.Warning

	base := lipgloss.NewStyle().
		Foreground(s.colorFg).
		Background(s.colorBg)

	s.TitleStyle = base.
		Bold(true).
		Foreground(s.colorAccent)

	s.TabStyle = base.
		Foreground(s.colorFgMuted).
		Padding(0, 1)

	s.TabActiveStyle = lipgloss.NewStyle().
		Foreground(palette.TextOnAccent).
		Background(s.colorAccent).
		Bold(true).
		Padding(0, 1)

	s.DayHeaderStyle = base.
		Bold(true).
		Align(lipgloss.Center)

	s.DayHeaderTodayStyle = s.DayHeaderStyle.
		Foreground(s.colorAccent)

	s.CellStyle = base
	s.CellOtherStyle = base.Foreground(s.colorFgMuted)

	s.DayNumberStyle = base.Bold(true)

	s.DayTodayStyle = lipgloss.NewStyle().
		Foreground(palette.TextOnAccent).
		Background(s.colorAccent).
		Bold(true)

	s.DayCursorStyle = lipgloss.NewStyle().
		Foreground(s.colorAccent).
		Background(s.colorBgSelection).
		Bold(true)

	s.MoreStyle = base.
		Foreground(s.colorFgMuted).
		Italic(true)

	s.GridBorderStyle = base.Foreground(s.colorBgSelection)

	s.TimeColumnStyle = base.
		Foreground(s.colorAccent).
		Width(timeColumnWidth)

	s.HourRuleStyle = base.Foreground(s.colorBgHighlight)

	s.NowLineStyle = base.
		Foreground(s.colorCurrent).
		Bold(true)

	s.EmptyStyle = base.
		Foreground(s.colorFgMuted).
		Italic(true)

	s.AgendaDayStyle = base.
		Bold(true).
		Foreground(s.colorAccent)

	s.AgendaDayTodayStyle = lipgloss.NewStyle().
		Foreground(palette.TextOnAccent).
		Background(s.colorAccent).
		Bold(true)

	s.SelectedStyle = lipgloss.NewStyle().
		Background(s.colorWarning).
		Foreground(palette.TextOnWarning).
		Bold(true)

	s.FilterActiveStyle = base.
		Foreground(s.colorAccent).
		Bold(true)

	s.FilterInactiveStyle = base.
		Foreground(s.colorFgMuted).
		Strikethrough(true)

	s.PromptStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.colorFgMuted).
		BorderBackground(s.colorBg).
		Background(s.colorBgHighlight).
		Foreground(s.colorFg).
		Padding(0, 1)

	s.PromptFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.colorAccent).
		BorderBackground(s.colorBg).
		Background(s.colorBgSelection).
		Foreground(s.colorFg).
		Bold(true).
		Padding(0, 1)

	s.StatusStyle = base.Foreground(s.colorAccent)

	s.ErrorStyle = base.
		Foreground(s.colorCurrent).
		Bold(true)

	s.HelpStyle = base.Foreground(s.colorFgMuted)

	modal := palette.Modal
	s.ModalBgColor = modal.Bg
	s.ModalBackdrop = modal.Backdrop

	s.ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modal.Border).
		BorderBackground(modal.Bg).
		Background(modal.Bg).
		Foreground(modal.Text).
		Padding(1, 2)

	modalBase := lipgloss.NewStyle().Background(modal.Bg)

	s.ModalTitleStyle = modalBase.
		Foreground(s.colorAccent).
		Bold(true)

	s.ModalLabelStyle = modalBase.
		Foreground(modal.Muted).
		Width(11)

	s.ModalValueStyle = modalBase.Foreground(modal.Text)
	s.ModalMutedStyle = modalBase.Foreground(modal.Muted)

	s.ModalHintStyle = modalBase.
		Foreground(modal.Muted).
		Italic(true)

	s.ModalWarningStyle = modalBase.
		Foreground(s.colorWarning).
		Bold(true)

	s.AppStyle = lipgloss.NewStyle().
		Background(s.colorBg).
		Foreground(s.colorFg)

	return s
}

// EventStyle returns the style for an event's text on the base background.
func (s *Styles) EventStyle(e *event.CalendarEvent) lipgloss.Style {
	look := event.Appearance(e)
	st := lipgloss.NewStyle().
		Background(s.colorBg).
		Foreground(s.palette.Event(look.Color).Fg)
	if look.Muted {
		st = st.Foreground(s.colorFgMuted).Strikethrough(true)
	}
	return st
}

// BlockStyle returns the filled style for an event block in the timeline.
func (s *Styles) BlockStyle(e *event.CalendarEvent, past bool) lipgloss.Style {
	look := event.Appearance(e)
	c := s.palette.Event(look.Color)
	bg := c.Bg
	if past || look.Muted {
		bg = c.PastBg
	}
	st := lipgloss.NewStyle().
		Background(bg).
		Foreground(c.Text)
	if look.Muted {
		st = st.Strikethrough(true)
	}
	return st
}

// PriorityStyle colors a priority marker.
func (s *Styles) PriorityStyle(p event.Priority) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(s.colorBg).
		Foreground(s.palette.Event(event.PriorityIndicator(p)).Fg).
		Bold(true)
}
