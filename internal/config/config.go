package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults for timetable conversion. Everything here is a
// default; per-invocation flags override individual fields. The pipeline
// itself receives all of these as explicit parameters and keeps no global
// state.
type Config struct {
	// CalendarName is the X-WR-CALNAME of generated calendars.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// Timezone is the IANA timezone events are localized to (e.g. "UTC",
	// "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// ReminderMinutes is the alarm offset attached to each event. Zero
	// disables the alarm.
	ReminderMinutes int `yaml:"reminder_minutes" json:"reminder_minutes"`

	// Recurrence is the default recurrence applied to emitted events:
	// "none", "weekly", "daily-weekdays" or an upper-case weekday name.
	Recurrence string `yaml:"recurrence" json:"recurrence"`

	// RefreshCron is an optional cron-style schedule (e.g. "*/15 * * * *")
	// for re-running extraction on the same input. Empty disables the loop.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Encodings is the priority list of character encodings tried when
	// decoding delimited text sources.
	Encodings []string `yaml:"encodings" json:"encodings"`

	// ExtraKeywords extends the per-role column-name synonym sets, keyed by
	// role name ("date", "time", "title", "location", "end_time",
	// "description").
	ExtraKeywords map[string][]string `yaml:"extra_keywords,omitempty" json:"extra_keywords,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		CalendarName:    "My Timetable",
		Timezone:        "UTC",
		ReminderMinutes: 45,
		Recurrence:      "none",
		RefreshCron:     "",
		Encodings:       []string{"utf-8", "windows-1252", "iso-8859-1"},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.CalendarName == "" {
		c.CalendarName = "My Timetable"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.ReminderMinutes < 0 {
		c.ReminderMinutes = 0
	}
	if c.Recurrence == "" {
		c.Recurrence = "none"
	}
	if len(c.Encodings) == 0 {
		c.Encodings = []string{"utf-8", "windows-1252", "iso-8859-1"}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (0600)
//     and returned.
//   - Otherwise the YAML is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tabcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
