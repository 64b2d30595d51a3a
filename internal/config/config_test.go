package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "My Timetable", cfg.CalendarName)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 45, cfg.ReminderMinutes)
	assert.Equal(t, "none", cfg.Recurrence)

	// The default file is written with owner-only permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := &Config{
		CalendarName:    "Exams",
		Timezone:        "Europe/Berlin",
		ReminderMinutes: 10,
		Recurrence:      "weekly",
		RefreshCron:     "*/15 * * * *",
		Encodings:       []string{"utf-8"},
		ExtraKeywords:   map[string][]string{"title": {"fach"}},
	}
	require.NoError(t, in.Save(path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadPartialConfigNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar_name: Exams\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Exams", cfg.CalendarName)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "none", cfg.Recurrence)
	assert.NotEmpty(t, cfg.Encodings)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- broken"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalizeClampsReminder(t *testing.T) {
	cfg := &Config{ReminderMinutes: -5}
	cfg.Normalize()
	assert.Zero(t, cfg.ReminderMinutes)
}
