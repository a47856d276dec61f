// Package view provides view composition helpers for the TUI.
package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// OverlayRenderer renders modal overlays on top of base content.
type OverlayRenderer interface {
	Render(base string, width, height int, content string) string
}

// ViewState contains pre-rendered sections and overlay metadata.
type ViewState struct {
	Width            int
	Height           int
	Header           string
	Body             string
	Footer           string
	ModalContent     string
	ShowModal        bool
	Overlay          OverlayRenderer
	Bg               lipgloss.Color
	EmptyPlaceholder string
}

// Render stacks header, body and footer, giving the body whatever height
// the other two leave, and draws the modal over the result.
func Render(state ViewState) string {
	if state.Width == 0 || state.Height == 0 {
		if state.EmptyPlaceholder != "" {
			return state.EmptyPlaceholder
		}
		return "Loading..."
	}

	headerH := lineCount(state.Header)
	footerH := lineCount(state.Footer)
	bodyH := state.Height - headerH - footerH
	if bodyH < 1 {
		return PadLinesWithBackground("Terminal too small", state.Width, state.Height, state.Bg)
	}

	parts := make([]string, 0, 3)
	if headerH > 0 {
		parts = append(parts, PadLinesWithBackground(state.Header, state.Width, headerH, state.Bg))
	}
	parts = append(parts, PlaceBox(state.Width, bodyH, lipgloss.Top, state.Body, state.Bg))
	if footerH > 0 {
		parts = append(parts, PadLinesWithBackground(state.Footer, state.Width, footerH, state.Bg))
	}
	base := strings.Join(parts, "\n")

	if state.ShowModal && state.Overlay != nil {
		return state.Overlay.Render(base, state.Width, state.Height, state.ModalContent)
	}
	return base
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
