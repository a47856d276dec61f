// Package input parses what the user types into the TUI prompt.
package input

import "strings"

// PromptCommand describes a command suggestion entry.
type PromptCommand struct {
	Name        string
	Args        string
	Description string
}

// PromptMatchingCommands returns commands that match the current input prefix.
func PromptMatchingCommands(input string, commands []PromptCommand) []PromptCommand {
	if !strings.HasPrefix(strings.TrimSpace(input), "/") {
		return nil
	}
	if strings.Contains(input, " ") {
		return nil
	}

	prefix := strings.ToLower(strings.TrimSpace(input))
	matches := make([]PromptCommand, 0, len(commands))
	for _, cmd := range commands {
		if strings.HasPrefix(strings.ToLower(cmd.Name), prefix) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

// PromptAutocomplete returns the first matching command and whether it exists.
func PromptAutocomplete(input string, commands []PromptCommand) (string, bool) {
	matches := PromptMatchingCommands(input, commands)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Name + " ", true
}

// Parsed is a submitted prompt line.
type Parsed struct {
	// Command is the lower-cased "/name", or "" for a plain search.
	Command string
	// Arg is the trimmed rest of the line. For searches it is the term.
	Arg string
}

// IsSearch reports whether the line was a search rather than a command.
func (p Parsed) IsSearch() bool {
	return p.Command == ""
}

// Parse splits a submitted line into a command and its argument. Lines that
// do not start with "/" are searches; "//x" searches for "/x".
func Parse(line string) Parsed {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return Parsed{Arg: line}
	}
	if strings.HasPrefix(line, "//") {
		return Parsed{Arg: line[1:]}
	}
	name, arg, _ := strings.Cut(line, " ")
	return Parsed{Command: strings.ToLower(name), Arg: strings.TrimSpace(arg)}
}
