package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// printInsightWrapped prints model output as wrapped text, keeping bullets,
// headings, quotes and numbered items readable.
func printInsightWrapped(w io.Writer, text string, width int) {
	text = stripCodeFences(text)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fmt.Fprintln(w)
			continue
		}

		prefix, content, isHeader := parseInsightLine(trimmed)
		if isHeader {
			fmt.Fprintln(w)
			fmt.Fprintln(w, formatHeader("  "+content))
			continue
		}
		for _, l := range wrap(content, width-runewidth.StringWidth(prefix)) {
			fmt.Fprintln(w, formatInsight(prefix+l))
			prefix = strings.Repeat(" ", runewidth.StringWidth(prefix))
		}
	}
}

// parseInsightLine splits a markdown-ish line into its display prefix and
// content.
func parseInsightLine(trimmed string) (prefix, content string, isHeader bool) {
	switch {
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		return "    • ", trimmed[2:], false
	case strings.HasPrefix(trimmed, "#"):
		return "", strings.TrimLeft(trimmed, "# "), true
	case strings.HasPrefix(trimmed, ">"):
		return "  │ ", strings.TrimSpace(strings.TrimPrefix(trimmed, ">")), false
	case isNumberedItem(trimmed):
		idx := strings.Index(trimmed, ".")
		return "  " + trimmed[:idx+1] + " ", strings.TrimSpace(trimmed[idx+1:]), false
	}
	return "  ", trimmed, false
}

// isNumberedItem checks if a line starts with a number followed by a period.
func isNumberedItem(s string) bool {
	if len(s) < 3 || s[0] < '1' || s[0] > '9' {
		return false
	}
	if s[1] == '.' {
		return true
	}
	return s[1] >= '0' && s[1] <= '9' && len(s) > 3 && s[2] == '.'
}

// wrap breaks text into lines of at most width display cells. Words longer
// than width get a line of their own.
func wrap(text string, width int) []string {
	width = max(width, 20)

	var (
		lines []string
		line  string
	)
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// stripCodeFences removes ```...``` blocks from text.
func stripCodeFences(text string) string {
	var (
		result []string
		inCode bool
	)
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			continue
		}
		if !inCode {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
