package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcal/internal/extract"
	"tabcal/internal/model"
)

var timetableCSV = []byte(`,Monday,Monday,Tuesday,Tuesday
Time,Course,Venue,Course,Venue
08:00 - 08:50,Math,R101,Physics,R202
08:50 - 09:40,Math,R101,Chemistry,R204
`)

func TestRunHierarchicalCSV(t *testing.T) {
	base := model.Date{Year: 2026, Month: time.January, Day: 12} // a Monday

	out, err := Run(Request{
		Data:            timetableCSV,
		Kind:            extract.KindDelimited,
		BaseDate:        &base,
		Recurrence:      model.RecurrenceWeekly,
		ReminderMinutes: 45,
	})
	require.NoError(t, err)

	// Two Monday Math slots merge into one span; Tuesday keeps two events.
	require.Len(t, out.Events, 3)
	assert.Equal(t, 1, out.Stats.Merged)
	assert.Equal(t, 3, out.Stats.Accepted)
	assert.Zero(t, out.Stats.Dropped)

	math := out.Events[0]
	assert.Equal(t, "Math", math.Title)
	assert.Equal(t, "R101", math.Location)
	assert.Equal(t, model.Date{Year: 2026, Month: time.January, Day: 19}, math.Date)
	assert.Equal(t, model.ClockTime{Hour: 8, Minute: 0}, math.Start)
	require.NotNil(t, math.End)
	assert.Equal(t, model.ClockTime{Hour: 9, Minute: 40}, *math.End)
	assert.Equal(t, model.RecurrenceWeekly, math.Recurrence)
	assert.Equal(t, 45, math.ReminderMinutes)

	physics := out.Events[1]
	assert.Equal(t, "Physics", physics.Title)
	assert.Equal(t, model.Date{Year: 2026, Month: time.January, Day: 13}, physics.Date)

	assert.Equal(t, []string{"Day", "Time", "Course", "Venue"}, out.Columns)

	// The synthesized Day column is the date source.
	assert.Equal(t, "Day", out.Mapping[model.RoleDate])
	assert.Equal(t, "Time", out.Mapping[model.RoleTime])
	assert.Equal(t, "Course", out.Mapping[model.RoleTitle])
	assert.Equal(t, "Venue", out.Mapping[model.RoleLocation])
}

func TestRunFlatCSVWithOverrides(t *testing.T) {
	data := []byte("When,Slot,What\n2026-02-03,10:00 - 11:00,Standup\n")

	out, err := Run(Request{
		Data: data,
		Kind: extract.KindDelimited,
		Overrides: map[model.Role]string{
			model.RoleDate:  "When",
			model.RoleTime:  "Slot",
			model.RoleTitle: "What",
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "Standup", out.Events[0].Title)
	assert.Equal(t, model.Date{Year: 2026, Month: time.February, Day: 3}, out.Events[0].Date)
	assert.Equal(t, model.RecurrenceNone, out.Events[0].Recurrence)
}

func TestRunDropsBadRows(t *testing.T) {
	data := []byte("Date,Time,Course\n2026-02-03,10:00,Math\nTBA,11:00,Physics\n")

	out, err := Run(Request{Data: data, Kind: extract.KindDelimited})
	require.NoError(t, err)
	assert.Len(t, out.Events, 1)
	assert.Equal(t, 1, out.Stats.Dropped)
}

func TestRunUnresolvableRoles(t *testing.T) {
	data := []byte("Foo,Bar\n1,2\n")

	_, err := Run(Request{Data: data, Kind: extract.KindDelimited})
	assert.ErrorIs(t, err, model.ErrRoleMappingMissing)
}

func TestRunEmptySource(t *testing.T) {
	_, err := Run(Request{Data: nil, Kind: extract.KindDelimited})
	assert.ErrorIs(t, err, model.ErrNoTableDetected)
}

func TestEmitICS(t *testing.T) {
	base := model.Date{Year: 2026, Month: time.January, Day: 12}

	out, err := Run(Request{
		Data:            timetableCSV,
		Kind:            extract.KindDelimited,
		BaseDate:        &base,
		Recurrence:      model.RecurrenceWeekly,
		ReminderMinutes: 45,
	})
	require.NoError(t, err)

	doc, err := out.EmitICS("Spring Timetable", "UTC")
	require.NoError(t, err)
	ics := string(doc)
	assert.Contains(t, ics, "X-WR-CALNAME:Spring Timetable")
	assert.Contains(t, ics, "SUMMARY:Math")
	assert.Contains(t, ics, "TRIGGER:-PT45M")
	// Merged Monday events recur on their own weekday.
	assert.Contains(t, ics, "RRULE:FREQ=WEEKLY;BYDAY=MO")
}

func TestRunWeekdayCellsWithoutBaseDrop(t *testing.T) {
	out, err := Run(Request{Data: timetableCSV, Kind: extract.KindDelimited})
	require.NoError(t, err)
	assert.Empty(t, out.Events)
	assert.Equal(t, 4, out.Stats.Dropped)
}
