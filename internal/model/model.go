package model

import (
	"fmt"
	"time"
)

// ColumnKind classifies a column of a day-segmented table.
//
// Common columns (a shared time/period column, or any column without a day
// prefix) carry the same meaning across every day segment and are replicated
// into each segment during unpivoting. Attribute columns are day-specific
// (course, venue, ...).
type ColumnKind int

const (
	KindAttribute ColumnKind = iota
	KindCommon
)

func (k ColumnKind) String() string {
	if k == KindCommon {
		return "common"
	}
	return "attribute"
}

// ColumnLabel is a possibly two-level column label. Day is empty for flat
// columns; for hierarchical headers it holds the top-level day name and
// Attribute the bottom-level label.
type ColumnLabel struct {
	Day       string
	Attribute string
}

// Grid is the raw rectangular cell matrix produced by a table extractor,
// before any header detection. Rows may have uneven lengths at this stage.
type Grid [][]string

// RawTable is an extracted table after header-row detection: an ordered set
// of column labels (possibly two-level) plus body rows aligned to them.
//
// Invariant: every row has exactly len(Columns) cells.
type RawTable struct {
	Columns []ColumnLabel
	Rows    [][]string
}

// LongRow is one row of the unpivoted long table: one (original row, day)
// pair. Day is empty when the source table was flat.
//
// All rows of a LongTable share the same cell keys (schema stability);
// missing values are present as empty strings.
type LongRow struct {
	Day    string
	Cells  map[string]string
	Source int // emit order, used for deterministic tie-breaking downstream
}

// LongTable is the normalized long-format table: a stable ordered schema plus
// one LongRow per (original row, day segment).
type LongTable struct {
	Columns []string
	Rows    []LongRow
}

// Role identifies the semantic meaning of a long-table column.
type Role string

const (
	RoleDate        Role = "date"
	RoleTime        Role = "time"
	RoleTitle       Role = "title"
	RoleLocation    Role = "location"
	RoleEndTime     Role = "end_time"
	RoleDescription Role = "description"
)

// RequiredRoles are the roles that must resolve to a column for the pipeline
// to proceed. Absence of any of them is a configuration error, not a parse
// error.
var RequiredRoles = []Role{RoleDate, RoleTime, RoleTitle}

// RoleMapping maps semantic roles to long-table column names.
type RoleMapping map[Role]string

// Column returns the mapped column for a role, or "" if unmapped.
func (m RoleMapping) Column(r Role) string { return m[r] }

// Date is a calendar date without clock time or timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns midnight of the date in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday { return d.Time(time.UTC).Weekday() }

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date { return DateOf(d.Time(time.UTC).AddDate(0, 0, n)) }

func (d Date) Equal(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// String renders the ISO form, e.g. "2026-01-15".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("model: invalid date %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// Minutes returns the offset from midnight in minutes.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

func (c ClockTime) Equal(o ClockTime) bool { return c.Minutes() == o.Minutes() }

// String renders the 24-hour form, e.g. "08:00".
func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// ResolvedEvent is a fully resolved timetable entry. Produced by temporal
// resolution; only the assembler's merge step replaces runs of these with a
// coalesced event.
type ResolvedEvent struct {
	Date        Date       `json:"date"`
	Start       ClockTime  `json:"start_time"`
	End         *ClockTime `json:"end_time,omitempty"`
	Title       string     `json:"title"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`

	// SourceRow is the emit index of the originating long-table row, used
	// for deterministic ordering. Not part of the serialized shape.
	SourceRow int `json:"-"`
}

// NormalizedEvent is the final shape handed to the calendar emitter.
type NormalizedEvent struct {
	ResolvedEvent

	Recurrence      Recurrence `json:"recurrence"`
	ReminderMinutes int        `json:"reminder_minutes"`
}
