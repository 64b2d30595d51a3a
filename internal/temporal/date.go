// Package temporal resolves raw date and time cells into calendar dates and
// clock times.
package temporal

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"tabcal/internal/model"
)

// weekdayTokens maps full and abbreviated weekday names (lowercased) to the
// weekday they denote.
var weekdayTokens = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// ordinalSuffix strips "1st"/"2nd"/"3rd"/"4th" style suffixes before date
// parsing.
var ordinalSuffix = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)

// dateLayouts is the permissive chain of explicit date formats, tried in
// order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
}

// yearlessLayouts cover "15 Jan" style cells; the year is taken from the
// base date when supplied, otherwise from the current date.
var yearlessLayouts = []string{
	"2 Jan",
	"02 Jan",
	"Jan 2",
	"2 January",
	"January 2",
}

// ParseWeekday reports whether the cell is exactly a weekday-name token.
func ParseWeekday(cell string) (time.Weekday, bool) {
	wd, ok := weekdayTokens[strings.ToLower(strings.TrimSpace(cell))]
	return wd, ok
}

// NextWeekday returns the date of the next occurrence of wd strictly after
// base. When base itself falls on wd the result is a full week later; the
// base date itself is never returned.
func NextWeekday(base model.Date, wd time.Weekday) model.Date {
	start := base.Time(time.UTC).AddDate(0, 0, 1)
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   start,
		Byweekday: []rrule.Weekday{rruleWeekdays[wd]},
	})
	if err != nil {
		// The option set is static; fall back to plain arithmetic.
		delta := (int(wd) - int(base.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return base.AddDays(delta)
	}
	return model.DateOf(r.After(base.Time(time.UTC), false))
}

// ResolveDate converts a raw date cell into a calendar date.
//
// Weekday-name tokens resolve relative to the base date (and fail without
// one); anything else goes through the permissive explicit-format chain.
// Failure is row-scoped: the caller drops the row and continues.
func ResolveDate(cell string, base *model.Date) (model.Date, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return model.Date{}, fmt.Errorf("temporal: empty date cell: %w", model.ErrDateParse)
	}

	if wd, ok := ParseWeekday(cell); ok {
		if base == nil {
			return model.Date{}, fmt.Errorf("temporal: weekday %q needs a base date: %w", cell, model.ErrDateParse)
		}
		return NextWeekday(*base, wd), nil
	}

	cleaned := ordinalSuffix.ReplaceAllString(cell, "$1")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return model.DateOf(t), nil
		}
	}

	year := time.Now().Year()
	if base != nil {
		year = base.Year
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return model.Date{Year: year, Month: t.Month(), Day: t.Day()}, nil
		}
	}

	return model.Date{}, fmt.Errorf("temporal: unparseable date %q: %w", cell, model.ErrDateParse)
}
