// Package pipeline chains extraction, normalization, role inference,
// temporal resolution and assembly into a single conversion pass.
package pipeline

import (
	"fmt"

	"tabcal/internal/assemble"
	"tabcal/internal/extract"
	"tabcal/internal/ics"
	appLog "tabcal/internal/log"
	"tabcal/internal/model"
	"tabcal/internal/normalize"
	"tabcal/internal/roles"
)

// Request carries one conversion job: the raw bytes, how to read them, and
// the knobs that shape the resulting events.
type Request struct {
	// Data is the raw source document.
	Data []byte
	// Kind declares how Data is interpreted.
	Kind extract.SourceKind

	// Sheet optionally selects a spreadsheet sheet by name.
	Sheet string
	// Comma overrides the delimiter for delimited text; zero means comma.
	Comma rune
	// Encodings is the decode priority list for delimited text.
	Encodings []string

	// BaseDate anchors weekday-token resolution. Nil means weekday cells
	// fail row-scoped.
	BaseDate *model.Date
	// Overrides force role-to-column assignments before any heuristics run.
	Overrides map[model.Role]string
	// ExtraKeywords extends the per-role column synonym sets.
	ExtraKeywords map[string][]string

	// Recurrence is applied uniformly to every emitted event.
	Recurrence model.Recurrence
	// ReminderMinutes is attached to every event; zero disables alarms.
	ReminderMinutes int
}

// Outcome is the result of a full pipeline run.
type Outcome struct {
	Events  []model.NormalizedEvent `json:"events"`
	Stats   assemble.Stats          `json:"stats"`
	Mapping model.RoleMapping       `json:"mapping"`

	// Columns is the long-table schema the mapping refers to, so a caller
	// can present correction choices when the heuristics picked wrong.
	Columns []string `json:"columns"`

	// AvailableSheets lists spreadsheet sheets so a caller can reselect and
	// re-run. Empty for non-spreadsheet sources.
	AvailableSheets []string `json:"available_sheets,omitempty"`
	// SheetUsed names the sheet the events came from, if any.
	SheetUsed string `json:"sheet_used,omitempty"`
}

// Run executes the conversion. Fatal errors (unreadable source, no table,
// unresolvable required roles) abort the run; row-level failures only show
// up in Stats.Dropped.
func Run(req Request) (*Outcome, error) {
	res, err := extract.Extract(req.Data, req.Kind, extract.Options{
		Sheet:     req.Sheet,
		Comma:     req.Comma,
		Encodings: req.Encodings,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: extract: %w", err)
	}

	raw, err := normalize.DetectHeader(res.Grid)
	if err != nil {
		return nil, fmt.Errorf("pipeline: header detection: %w", err)
	}

	long := normalize.Unpivot(raw)
	appLog.Debug("table normalized", "columns", len(long.Columns), "rows", len(long.Rows))

	mapping, err := roles.Suggest(long.Columns, structuralHints(long), req.Overrides, req.ExtraKeywords)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	events, stats := assemble.Assemble(long, mapping, req.BaseDate)

	out := &Outcome{
		Stats:           stats,
		Mapping:         mapping,
		Columns:         long.Columns,
		AvailableSheets: res.AvailableSheets,
		SheetUsed:       res.SheetUsed,
	}
	out.Events = make([]model.NormalizedEvent, 0, len(events))
	for _, ev := range events {
		out.Events = append(out.Events, model.NormalizedEvent{
			ResolvedEvent:   ev,
			Recurrence:      req.Recurrence,
			ReminderMinutes: req.ReminderMinutes,
		})
	}
	return out, nil
}

// EmitICS serializes an outcome's events into an iCalendar document.
func (o *Outcome) EmitICS(calendarName, timezone string) ([]byte, error) {
	return ics.Emit(o.Events, ics.EmitOptions{
		CalendarName: calendarName,
		Timezone:     timezone,
	})
}

// structuralHints derives role hints from table shape rather than column
// names: a synthesized Day column from unpivoting is always the date source.
func structuralHints(long model.LongTable) map[model.Role]string {
	for _, col := range long.Columns {
		if col == normalize.DayColumn {
			return map[model.Role]string{model.RoleDate: normalize.DayColumn}
		}
	}
	return nil
}
