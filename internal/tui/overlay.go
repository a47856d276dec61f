package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	overlayMinWidth = 30
	overlayMaxWidth = 72
)

// OverlayModel splices a modal box over the base content.
type OverlayModel struct {
	active  bool
	bgColor lipgloss.Color
}

// NewOverlayModel initializes an overlay model.
func NewOverlayModel() OverlayModel {
	return OverlayModel{}
}

// Active reports whether the overlay is visible.
func (o OverlayModel) Active() bool {
	return o.active
}

// SetBackground updates the color used to fill the modal's ragged lines.
func (o *OverlayModel) SetBackground(color lipgloss.Color) {
	o.bgColor = color
}

// Render centers content over base. Lines of content shorter than the
// widest one are padded with the overlay background.
func (o OverlayModel) Render(base string, width, height int, content string) string {
	if !o.active || width <= 0 || height <= 0 {
		return base
	}
	lines := contentLines(content)
	if len(lines) == 0 {
		return base
	}

	boxW := 0
	for _, line := range lines {
		boxW = max(boxW, lipgloss.Width(line))
	}
	boxW = min(boxW, width)
	if len(lines) > height {
		lines = lines[:height]
	}

	top := max((height-len(lines))/2, 0)
	left := max((width-boxW)/2, 0)

	bgSeq := ""
	if o.bgColor != "" {
		bgSeq = ansi.Style{}.BackgroundColor(ansi.HexColor(string(o.bgColor))).String()
	}

	baseLines := normalizeBase(base, width, height)
	for i, line := range lines {
		w := lipgloss.Width(line)
		if w > boxW {
			line = ansi.Cut(line, 0, boxW)
			w = boxW
		}
		if w < boxW {
			line += bgSeq + strings.Repeat(" ", boxW-w)
		}
		line = applyBackgroundResets(line, bgSeq) + ansi.ResetStyle

		row := top + i
		leftPart := ansi.Cut(baseLines[row], 0, left)
		rightPart := ansi.Cut(baseLines[row], left+boxW, width)
		baseLines[row] = leftPart + line + rightPart
	}
	return strings.Join(baseLines, "\n")
}

// modalWidth picks a modal width for the terminal width.
func modalWidth(termWidth int) int {
	w := termWidth * 2 / 3
	w = max(w, overlayMinWidth)
	w = min(w, overlayMaxWidth)
	return min(w, termWidth)
}

func contentLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// applyBackgroundResets reapplies the background after every ANSI reset
// so styled spans do not punch holes into the modal.
func applyBackgroundResets(line, bgSeq string) string {
	if bgSeq == "" || line == "" {
		return line
	}
	line = strings.ReplaceAll(line, ansi.ResetStyle, ansi.ResetStyle+bgSeq)
	line = strings.ReplaceAll(line, "\x1b[0m", "\x1b[0m"+bgSeq)
	line = strings.ReplaceAll(line, "\x1b[49m", "\x1b[49m"+bgSeq)
	return line
}

func normalizeBase(base string, width, height int) []string {
	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	for i, line := range lines {
		lineWidth := lipgloss.Width(line)
		if lineWidth > width {
			lines[i] = ansi.Cut(line, 0, width)
			continue
		}
		if lineWidth < width {
			lines[i] = line + strings.Repeat(" ", width-lineWidth)
		}
	}
	return lines
}
