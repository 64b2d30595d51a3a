package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d := Date{Year: 2026, Month: time.January, Day: 5}

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-01-05"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back))

	assert.Error(t, json.Unmarshal([]byte(`"05.01.2026"`), &back))
}

func TestDateWeekdayAndAddDays(t *testing.T) {
	d := Date{Year: 2026, Month: time.January, Day: 12}
	assert.Equal(t, time.Monday, d.Weekday())
	assert.Equal(t, Date{Year: 2026, Month: time.February, Day: 1}, d.AddDays(20))
}

func TestClockTime(t *testing.T) {
	c := ClockTime{Hour: 8, Minute: 5}
	assert.Equal(t, "08:05", c.String())
	assert.Equal(t, 485, c.Minutes())
	assert.True(t, c.Equal(ClockTime{Hour: 8, Minute: 5}))
}

func TestResolvedEventJSONShape(t *testing.T) {
	ev := ResolvedEvent{
		Date:      Date{Year: 2026, Month: time.January, Day: 12},
		Start:     ClockTime{Hour: 8},
		Title:     "Math",
		SourceRow: 7,
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-01-12","start_time":"08:00","title":"Math"}`, string(b))
}

func TestParseRecurrence(t *testing.T) {
	for in, want := range map[string]Recurrence{
		"":               RecurrenceNone,
		"none":           RecurrenceNone,
		"weekly":         RecurrenceWeekly,
		"daily":          RecurrenceWeekdays,
		"daily-weekdays": RecurrenceWeekdays,
		"friday":         "FRIDAY",
		"MONDAY":         "MONDAY",
	} {
		got, err := ParseRecurrence(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRecurrence("fortnightly")
	assert.Error(t, err)
}

func TestRecurrenceWeekday(t *testing.T) {
	wd, ok := Recurrence("WEDNESDAY").Weekday()
	require.True(t, ok)
	assert.Equal(t, time.Wednesday, wd)

	_, ok = RecurrenceWeekly.Weekday()
	assert.False(t, ok)
}
