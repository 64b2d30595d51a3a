package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcal/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
}

func event(rec model.Recurrence, reminder int) model.NormalizedEvent {
	end := model.ClockTime{Hour: 8, Minute: 50}
	return model.NormalizedEvent{
		ResolvedEvent: model.ResolvedEvent{
			Date:     model.Date{Year: 2026, Month: time.January, Day: 12}, // a Monday
			Start:    model.ClockTime{Hour: 8, Minute: 0},
			End:      &end,
			Title:    "Math",
			Location: "R101",
		},
		Recurrence:      rec,
		ReminderMinutes: reminder,
	}
}

func TestEmitCalendarProperties(t *testing.T) {
	out, err := Emit([]model.NormalizedEvent{event(model.RecurrenceNone, 45)},
		EmitOptions{CalendarName: "Spring Timetable", Timezone: "UTC", Now: fixedNow})
	require.NoError(t, err)
	ics := string(out)

	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "METHOD:PUBLISH")
	assert.Contains(t, ics, "X-WR-CALNAME:Spring Timetable")
	assert.Contains(t, ics, "X-WR-TIMEZONE:UTC")
	assert.Contains(t, ics, "SUMMARY:Math")
	assert.Contains(t, ics, "LOCATION:R101")
	assert.Contains(t, ics, "UID:")
	assert.Contains(t, ics, "@tabcal")
}

func TestEmitReminder(t *testing.T) {
	out, err := Emit([]model.NormalizedEvent{event(model.RecurrenceNone, 45)},
		EmitOptions{Now: fixedNow})
	require.NoError(t, err)
	ics := string(out)

	assert.Contains(t, ics, "BEGIN:VALARM")
	assert.Contains(t, ics, "TRIGGER:-PT45M")
	assert.Contains(t, ics, "ACTION:DISPLAY")
}

func TestEmitZeroReminderOmitsAlarm(t *testing.T) {
	out, err := Emit([]model.NormalizedEvent{event(model.RecurrenceNone, 0)},
		EmitOptions{Now: fixedNow})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "VALARM")
}

func TestEmitWeeklyRecurrenceUsesOwnWeekday(t *testing.T) {
	out, err := Emit([]model.NormalizedEvent{event(model.RecurrenceWeekly, 0)},
		EmitOptions{Now: fixedNow})
	require.NoError(t, err)
	assert.Contains(t, string(out), "RRULE:FREQ=WEEKLY;BYDAY=MO")
}

func TestEmitWeekdaysRecurrence(t *testing.T) {
	out, err := Emit([]model.NormalizedEvent{event(model.RecurrenceWeekdays, 0)},
		EmitOptions{Now: fixedNow})
	require.NoError(t, err)
	assert.Contains(t, string(out), "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR")
}

func TestEmitSpecificWeekdayRecurrence(t *testing.T) {
	rec, err := model.ParseRecurrence("friday")
	require.NoError(t, err)

	out, err := Emit([]model.NormalizedEvent{event(rec, 0)}, EmitOptions{Now: fixedNow})
	require.NoError(t, err)
	assert.Contains(t, string(out), "RRULE:FREQ=WEEKLY;BYDAY=FR")
}

func TestEmitNoRecurrenceOmitsRrule(t *testing.T) {
	out, err := Emit([]model.NormalizedEvent{event(model.RecurrenceNone, 0)},
		EmitOptions{Now: fixedNow})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "RRULE")
}

func TestEmitDefaultDuration(t *testing.T) {
	ev := event(model.RecurrenceNone, 0)
	ev.End = nil

	out, err := Emit([]model.NormalizedEvent{ev}, EmitOptions{Now: fixedNow})
	require.NoError(t, err)
	ics := string(out)
	assert.Contains(t, ics, "DTSTART:20260112T080000Z")
	assert.Contains(t, ics, "DTEND:20260112T090000Z")
}

func TestEmitStableUIDs(t *testing.T) {
	opts := EmitOptions{Now: fixedNow}
	a, err := Emit([]model.NormalizedEvent{event(model.RecurrenceNone, 0)}, opts)
	require.NoError(t, err)
	b, err := Emit([]model.NormalizedEvent{event(model.RecurrenceNone, 0)}, opts)
	require.NoError(t, err)
	assert.Equal(t, extractUID(t, string(a)), extractUID(t, string(b)))
}

func TestEmitBadTimezone(t *testing.T) {
	_, err := Emit(nil, EmitOptions{Timezone: "Nowhere/Nope"})
	assert.Error(t, err)
}

func extractUID(t *testing.T, ics string) string {
	t.Helper()
	for _, line := range strings.Split(ics, "\r\n") {
		if strings.HasPrefix(line, "UID:") {
			return line
		}
	}
	t.Fatal("no UID line")
	return ""
}
