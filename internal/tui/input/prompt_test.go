package input

import "testing"

func TestPromptMatchingCommands(t *testing.T) {
	commands := []PromptCommand{
		{Name: "/goto", Description: "Go to date"},
		{Name: "/type", Description: "Toggle type"},
		{Name: "/today", Description: "Today"},
	}

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "no_slash", input: "goto", want: 0},
		{name: "empty", input: "", want: 0},
		{name: "full", input: "/goto", want: 1},
		{name: "shared_prefix", input: "/t", want: 2},
		{name: "case_insensitive", input: "/TY", want: 1},
		{name: "with_space", input: "/goto x", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PromptMatchingCommands(tt.input, commands)
			if len(got) != tt.want {
				t.Fatalf("matches = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestPromptAutocomplete(t *testing.T) {
	commands := []PromptCommand{
		{Name: "/goto", Description: "Go to date"},
		{Name: "/view", Description: "View"},
	}

	value, ok := PromptAutocomplete("/g", commands)
	if !ok {
		t.Fatal("expected autocomplete")
	}
	if value != "/goto " {
		t.Fatalf("value = %q, want %q", value, "/goto ")
	}
	if _, ok := PromptAutocomplete("/x", commands); ok {
		t.Fatal("unexpected autocomplete for /x")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Parsed
		search bool
	}{
		{name: "search", line: "  midterm ", want: Parsed{Arg: "midterm"}, search: true},
		{name: "empty", line: "", want: Parsed{}, search: true},
		{name: "command", line: "/goto 2025-03-10", want: Parsed{Command: "/goto", Arg: "2025-03-10"}},
		{name: "command_no_arg", line: "/summary", want: Parsed{Command: "/summary"}},
		{name: "command_upper", line: "/VIEW  week", want: Parsed{Command: "/view", Arg: "week"}},
		{name: "escaped_slash", line: "//lab", want: Parsed{Arg: "/lab"}, search: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.line)
			if got != tt.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
			if got.IsSearch() != tt.search {
				t.Fatalf("IsSearch = %t, want %t", got.IsSearch(), tt.search)
			}
		})
	}
}
