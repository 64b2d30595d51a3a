// Package ics renders a validated event list into an iCalendar document.
package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "tabcal/internal/log"
	"tabcal/internal/model"
)

const prodID = "-//tabcal//EN"

// uidNamespace seeds the SHA-1 UUIDs so that the same event always gets the
// same UID across runs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tabcal"))

var byDayCodes = map[time.Weekday]string{
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
	time.Sunday:    "SU",
}

// defaultDuration fills in DTEND when an event has no end time.
const defaultDuration = time.Hour

// EmitOptions configure calendar-level metadata.
type EmitOptions struct {
	// CalendarName becomes X-WR-CALNAME.
	CalendarName string
	// Timezone is the IANA zone event instants are localized to, and
	// becomes X-WR-TIMEZONE. Empty means UTC.
	Timezone string
	// Now overrides the DTSTAMP clock; nil means time.Now. Useful for
	// deterministic output in tests.
	Now func() time.Time
}

// Emit serializes the events into a single iCalendar document: one VEVENT
// per event, a VALARM per non-zero reminder, and an open-ended RRULE per
// non-none recurrence.
func Emit(events []model.NormalizedEvent, opts EmitOptions) ([]byte, error) {
	tzName := opts.Timezone
	if tzName == "" {
		tzName = "UTC"
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("ics: load timezone %q: %w", tzName, err)
	}

	name := opts.CalendarName
	if name == "" {
		name = "My Timetable"
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)
	cal.SetXWRCalName(name)
	cal.SetXWRTimezone(tzName)

	for _, ev := range events {
		addEvent(cal, ev, loc, now().In(loc))
	}

	appLog.Info("calendar emitted", "name", name, "timezone", tzName, "events", len(events))
	return []byte(cal.Serialize()), nil
}

func addEvent(cal *ical.Calendar, ev model.NormalizedEvent, loc *time.Location, stamp time.Time) {
	start := time.Date(ev.Date.Year, ev.Date.Month, ev.Date.Day,
		ev.Start.Hour, ev.Start.Minute, 0, 0, loc)
	end := start.Add(defaultDuration)
	if ev.End != nil {
		end = time.Date(ev.Date.Year, ev.Date.Month, ev.Date.Day,
			ev.End.Hour, ev.End.Minute, 0, 0, loc)
	}

	ve := cal.AddEvent(eventUID(ev))
	ve.SetDtStampTime(stamp)
	ve.SetStartAt(start)
	ve.SetEndAt(end)
	ve.SetSummary(ev.Title)
	if ev.Location != "" {
		ve.SetLocation(ev.Location)
	}
	if ev.Description != "" {
		ve.SetDescription(ev.Description)
	}

	if rule := recurrenceRule(ev.Recurrence, ev.Date.Weekday()); rule != "" {
		ve.AddRrule(rule)
	}

	if ev.ReminderMinutes > 0 {
		alarm := ve.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", ev.ReminderMinutes))
		alarm.SetProperty(ical.ComponentPropertyDescription, "Reminder: "+ev.Title)
	}
}

// eventUID derives a stable identifier from the fields that make an event
// unique in a timetable.
func eventUID(ev model.NormalizedEvent) string {
	seed := strings.Join([]string{ev.Date.String(), ev.Start.String(), ev.Title, ev.Location}, "|")
	return uuid.NewSHA1(uidNamespace, []byte(seed)).String() + "@tabcal"
}

// recurrenceRule renders the RRULE value for a recurrence mode. Recurrences
// are open-ended; no UNTIL is ever attached.
func recurrenceRule(r model.Recurrence, own time.Weekday) string {
	switch {
	case r.IsNone():
		return ""
	case r == model.RecurrenceWeekly:
		return "FREQ=WEEKLY;BYDAY=" + byDayCodes[own]
	case r == model.RecurrenceWeekdays:
		return "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"
	}
	if wd, ok := r.Weekday(); ok {
		return "FREQ=WEEKLY;BYDAY=" + byDayCodes[wd]
	}
	return ""
}
