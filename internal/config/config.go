// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/coursecal/internal/layout"
	"github.com/javiermolinar/coursecal/internal/llm"
	"github.com/javiermolinar/coursecal/internal/logging"
	"github.com/javiermolinar/coursecal/internal/navigation"
	"github.com/javiermolinar/coursecal/internal/reminder"
)

// Config holds the application configuration.
type Config struct {
	Calendar  CalendarConfig `toml:"calendar"`
	Storage   StorageConfig  `toml:"storage"`
	LLM       LLMConfig      `toml:"llm"`
	UI        UIConfig       `toml:"ui"`
	Log       LogConfig      `toml:"log"`
	Reminders ReminderConfig `toml:"reminders"`
}

// CalendarConfig holds view and layout settings.
type CalendarConfig struct {
	WeekStart              string  `toml:"week_start"`   // "sunday" or "monday"
	DefaultView            string  `toml:"default_view"` // "month", "week", "day", "agenda"
	AgendaPastDays         int     `toml:"agenda_past_days"`
	AgendaFutureDays       int     `toml:"agenda_future_days"`
	MonthCellLimit         int     `toml:"month_cell_limit"`
	MinHeightPercent       float64 `toml:"min_height_percent"`
	DefaultDurationMinutes int     `toml:"default_duration_minutes"`
	Timezone               string  `toml:"timezone"` // IANA name; empty means the host zone
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "ollama", "lmstudio", "openai"
	Model    string `toml:"model"`    // e.g., "llama3.1"
	BaseURL  string `toml:"base_url"` // empty means the provider default
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // empty means stderr
}

// ReminderConfig holds reminder watcher settings.
type ReminderConfig struct {
	Schedule         string `toml:"schedule"` // cron spec
	LookaheadMinutes int    `toml:"lookahead_minutes"`
}

var themes = []string{"mocha", "macchiato", "frappe", "latte"}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Calendar: CalendarConfig{
			WeekStart:              "sunday",
			DefaultView:            "month",
			AgendaPastDays:         30,
			AgendaFutureDays:       60,
			MonthCellLimit:         3,
			MinHeightPercent:       1,
			DefaultDurationMinutes: 60,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		LLM: LLMConfig{
			Provider: llm.ProviderOllama,
			Model:    "llama3.1",
		},
		UI: UIConfig{
			Theme: "frappe",
		},
		Log: LogConfig{
			Level: "info",
		},
		Reminders: ReminderConfig{
			Schedule: reminder.DefaultSchedule,
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "coursecal.db"
	}
	return filepath.Join(home, ".local", "share", "coursecal", "coursecal.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "coursecal", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies COURSECAL_* environment variables.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"COURSECAL_WEEK_START":        &cfg.Calendar.WeekStart,
		"COURSECAL_DEFAULT_VIEW":      &cfg.Calendar.DefaultView,
		"COURSECAL_TIMEZONE":          &cfg.Calendar.Timezone,
		"COURSECAL_DB_PATH":           &cfg.Storage.DBPath,
		"COURSECAL_LLM_PROVIDER":      &cfg.LLM.Provider,
		"COURSECAL_LLM_MODEL":         &cfg.LLM.Model,
		"COURSECAL_LLM_BASE_URL":      &cfg.LLM.BaseURL,
		"COURSECAL_UI_THEME":          &cfg.UI.Theme,
		"COURSECAL_LOG_LEVEL":         &cfg.Log.Level,
		"COURSECAL_LOG_FILE":          &cfg.Log.File,
		"COURSECAL_REMINDER_SCHEDULE": &cfg.Reminders.Schedule,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"COURSECAL_AGENDA_PAST_DAYS":     &cfg.Calendar.AgendaPastDays,
		"COURSECAL_AGENDA_FUTURE_DAYS":   &cfg.Calendar.AgendaFutureDays,
		"COURSECAL_REMINDER_LOOKAHEAD":   &cfg.Reminders.LookaheadMinutes,
		"COURSECAL_MONTH_CELL_LIMIT":     &cfg.Calendar.MonthCellLimit,
		"COURSECAL_DEFAULT_DURATION_MIN": &cfg.Calendar.DefaultDurationMinutes,
	}
	for name, dst := range ints {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", name, v)
		}
		*dst = n
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.WeekStart(); err != nil {
		return err
	}
	if _, err := navigation.ParseView(c.Calendar.DefaultView); err != nil {
		return fmt.Errorf("default_view: %w", err)
	}
	if c.Calendar.AgendaPastDays < 0 || c.Calendar.AgendaFutureDays < 0 {
		return errors.New("agenda_past_days and agenda_future_days cannot be negative")
	}
	if c.Calendar.MonthCellLimit < 1 {
		return errors.New("month_cell_limit must be at least 1")
	}
	if c.Calendar.MinHeightPercent < 0 || c.Calendar.MinHeightPercent > 100 {
		return errors.New("min_height_percent must be between 0 and 100")
	}
	if c.Calendar.DefaultDurationMinutes < 1 {
		return errors.New("default_duration_minutes must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if !slices.Contains(llm.Providers(), strings.ToLower(c.LLM.Provider)) {
		return fmt.Errorf("invalid llm provider: %s", c.LLM.Provider)
	}
	if !slices.Contains(themes, c.UI.Theme) {
		return fmt.Errorf("invalid theme: %s", c.UI.Theme)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if _, err := reminder.ParseSchedule(c.Reminders.Schedule); err != nil {
		return err
	}
	if c.Reminders.LookaheadMinutes < 0 {
		return errors.New("lookahead_minutes cannot be negative")
	}
	return nil
}

// WeekStart returns the configured first day of the week.
func (c *Config) WeekStart() (time.Weekday, error) {
	switch strings.ToLower(c.Calendar.WeekStart) {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	default:
		return 0, fmt.Errorf("week_start must be sunday or monday, got %q", c.Calendar.WeekStart)
	}
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Calendar.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Calendar.Timezone, err)
	}
	return loc, nil
}

// NavigationOptions returns the fetch window settings. Call after Validate.
func (c *Config) NavigationOptions() navigation.Options {
	ws, _ := c.WeekStart()
	return navigation.Options{
		WeekStart:        ws,
		AgendaPastDays:   c.Calendar.AgendaPastDays,
		AgendaFutureDays: c.Calendar.AgendaFutureDays,
	}
}

// LayoutOptions returns the projection settings. Call after Validate.
func (c *Config) LayoutOptions() layout.Options {
	ws, _ := c.WeekStart()
	return layout.Options{
		WeekStart:        ws,
		CellLimit:        c.Calendar.MonthCellLimit,
		MinHeightPercent: c.Calendar.MinHeightPercent,
		DefaultDuration:  time.Duration(c.Calendar.DefaultDurationMinutes) * time.Minute,
	}
}

// View returns the configured default view, falling back to month.
func (c *Config) View() navigation.View {
	v, err := navigation.ParseView(c.Calendar.DefaultView)
	if err != nil {
		return navigation.ViewMonth
	}
	return v
}

// ReminderLookahead returns the reminder lookahead as a duration.
func (c *Config) ReminderLookahead() time.Duration {
	return time.Duration(c.Reminders.LookaheadMinutes) * time.Minute
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
