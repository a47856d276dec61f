package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/coursecal/internal/config"
	"github.com/javiermolinar/coursecal/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var (
		path string
		show bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.`,
		Example: `  coursecal config
  coursecal config --show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runConfigInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), path, show)
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "Config file (default ~/.config/coursecal/config.toml)")
	cmd.Flags().BoolVar(&show, "show", false, "Print the configuration without editing")
	return cmd
}

func runConfigInteractive(in io.Reader, out io.Writer, configPath string, showOnly bool) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) && !showOnly {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)
	if showOnly {
		return nil
	}

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	p := prompter{r: reader, w: out}
	cfg.Calendar.WeekStart = p.value("Week start (sunday or monday)", cfg.Calendar.WeekStart)
	cfg.Calendar.DefaultView = p.value("Default view (month, week, day, agenda)", cfg.Calendar.DefaultView)
	cfg.Calendar.Timezone = p.value("Time zone (IANA name, empty for local)", cfg.Calendar.Timezone)
	cfg.Calendar.AgendaPastDays = p.int("Agenda days back", cfg.Calendar.AgendaPastDays)
	cfg.Calendar.AgendaFutureDays = p.int("Agenda days ahead", cfg.Calendar.AgendaFutureDays)
	cfg.LLM.Provider = p.value("LLM provider (ollama, lmstudio, openai)", cfg.LLM.Provider)
	cfg.LLM.Model = p.value("LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = p.value("LLM base URL (empty for provider default)", cfg.LLM.BaseURL)
	cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	cfg.Reminders.Schedule = p.value("Reminder check schedule (cron)", cfg.Reminders.Schedule)
	cfg.UI.Theme = p.theme(cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[calendar]")
	fmt.Fprintf(w, "  week_start         = %s\n", cfg.Calendar.WeekStart)
	fmt.Fprintf(w, "  default_view       = %s\n", cfg.Calendar.DefaultView)
	fmt.Fprintf(w, "  agenda_past_days   = %d\n", cfg.Calendar.AgendaPastDays)
	fmt.Fprintf(w, "  agenda_future_days = %d\n", cfg.Calendar.AgendaFutureDays)
	fmt.Fprintf(w, "  month_cell_limit   = %d\n", cfg.Calendar.MonthCellLimit)
	if cfg.Calendar.Timezone != "" {
		fmt.Fprintf(w, "  timezone           = %s\n", cfg.Calendar.Timezone)
	}
	fmt.Fprintln(w, "\n[llm]")
	fmt.Fprintf(w, "  provider           = %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "  model              = %s\n", cfg.LLM.Model)
	fmt.Fprintf(w, "  base_url           = %s\n", cfg.LLM.BaseURL)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path            = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[reminders]")
	fmt.Fprintf(w, "  schedule           = %s\n", cfg.Reminders.Schedule)
	fmt.Fprintf(w, "  lookahead_minutes  = %d\n", cfg.Reminders.LookaheadMinutes)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme              = %s\n", cfg.UI.Theme)
}

func promptYesNo(reader *bufio.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func (p prompter) value(label, current string) string {
	if current == "" {
		fmt.Fprintf(p.w, "  %s: ", label)
	} else {
		fmt.Fprintf(p.w, "  %s [%s]: ", label, current)
	}
	input, _ := p.r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func (p prompter) int(label string, current int) int {
	for {
		v := p.value(label, strconv.Itoa(current))
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		fmt.Fprintf(p.w, "  %q is not a number\n", v)
	}
}

func (p prompter) theme(current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(p.value(label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(p.w, "  Invalid theme %q. Available: %s\n", value, options)
	}
}
