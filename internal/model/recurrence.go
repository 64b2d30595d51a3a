package model

import (
	"fmt"
	"strings"
	"time"
)

// Recurrence describes how an event repeats. Recurrences are open-ended;
// no end date is supported.
type Recurrence string

const (
	// RecurrenceNone disables repetition.
	RecurrenceNone Recurrence = "none"
	// RecurrenceWeekly repeats weekly on the event's own weekday.
	RecurrenceWeekly Recurrence = "weekly"
	// RecurrenceWeekdays repeats Monday through Friday.
	RecurrenceWeekdays Recurrence = "daily-weekdays"
)

var recurrenceWeekdays = map[Recurrence]time.Weekday{
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
	"SUNDAY":    time.Sunday,
}

// ParseRecurrence validates and canonicalizes a recurrence value. An empty
// string means none; "daily" is accepted as a legacy alias for
// daily-weekdays.
func ParseRecurrence(s string) (Recurrence, error) {
	switch strings.TrimSpace(s) {
	case "", string(RecurrenceNone):
		return RecurrenceNone, nil
	case string(RecurrenceWeekly):
		return RecurrenceWeekly, nil
	case "daily", string(RecurrenceWeekdays):
		return RecurrenceWeekdays, nil
	}
	r := Recurrence(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := recurrenceWeekdays[r]; ok {
		return r, nil
	}
	return RecurrenceNone, fmt.Errorf("model: invalid recurrence %q", s)
}

// Weekday reports the fixed weekday of a specific-weekday recurrence.
func (r Recurrence) Weekday() (time.Weekday, bool) {
	wd, ok := recurrenceWeekdays[r]
	return wd, ok
}

// IsNone reports whether the recurrence disables repetition.
func (r Recurrence) IsNone() bool { return r == "" || r == RecurrenceNone }
