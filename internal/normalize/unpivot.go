// Package normalize detects hierarchical timetable headers and unpivots
// wide, day-segmented tables into a long table with one row per
// (original row, day) pair.
package normalize

import (
	"fmt"

	appLog "tabcal/internal/log"
	"tabcal/internal/model"
)

// DayColumn is the synthesized column holding the day-segment key of each
// long row.
const DayColumn = "Day"

// Unpivot transforms a day-segmented wide table into a long table.
//
// Columns are classified Common (no day prefix, or a name from the shared
// time/period vocabulary) or Attribute (day-specific). Attribute columns are
// partitioned into day segments; Common columns are replicated into every
// segment. Each segment contributes one chunk per repeating attribute
// sub-block (multi-period layouts), and chunks are stacked row-wise so the
// result has a single stable schema: Day + each Common name once + the
// union of Attribute names.
//
// A Common label repeated in the raw header is collapsed to its first
// occurrence before any chunk is built; collapsing after stacking would
// silently drop the whole column. Attribute names are never suffixed:
// the same name under different days is the same logical column observed on
// different days. Two genuinely distinct attribute columns colliding under
// one day segment keep the last value (no disambiguation policy exists for
// that shape).
//
// Tables with no day hierarchy pass through unchanged.
func Unpivot(raw model.RawTable) model.LongTable {
	kinds := classify(raw.Columns)

	// Day segments in order of first appearance, attribute columns only.
	var days []string
	segments := map[string][]int{}
	for j, col := range raw.Columns {
		if kinds[j] != model.KindAttribute || col.Day == "" {
			continue
		}
		if _, ok := segments[col.Day]; !ok {
			days = append(days, col.Day)
		}
		segments[col.Day] = append(segments[col.Day], j)
	}

	if len(days) == 0 {
		return passthrough(raw)
	}

	// Collapse repeated Common labels to their first occurrence. This must
	// happen before chunks are concatenated.
	type commonCol struct {
		name string
		idx  int
	}
	var (
		commons     []commonCol
		commonNames []string
	)
	seenCommon := map[string]bool{}
	for j, col := range raw.Columns {
		if kinds[j] != model.KindCommon {
			continue
		}
		if seenCommon[col.Attribute] {
			continue
		}
		seenCommon[col.Attribute] = true
		commons = append(commons, commonCol{name: col.Attribute, idx: j})
		commonNames = append(commonNames, col.Attribute)
	}

	var (
		rows      []model.LongRow
		attrNames []string
	)
	seenAttr := map[string]bool{}
	registerAttr := func(name string) {
		if !seenAttr[name] {
			seenAttr[name] = true
			attrNames = append(attrNames, name)
		}
	}

	for _, day := range days {
		idxs := segments[day]
		names := make([]string, len(idxs))
		for i, j := range idxs {
			names[i] = raw.Columns[j].Attribute
		}

		// A repeating sub-block pattern (e.g. Course,Venue,Course,Venue)
		// means several periods per physical row; each repeat becomes its
		// own chunk.
		width := subBlockWidth(names)
		for block := 0; block*width < len(idxs); block++ {
			sub := idxs[block*width : (block+1)*width]
			for _, j := range sub {
				registerAttr(raw.Columns[j].Attribute)
			}

			// Forward-fill state for Common values, reset per chunk so a
			// merged Time cell covers the rows below it.
			lastCommon := map[string]string{}
			for _, body := range raw.Rows {
				cells := map[string]string{DayColumn: day}
				for _, cc := range commons {
					v := body[cc.idx]
					if v == "" {
						v = lastCommon[cc.name]
					} else {
						lastCommon[cc.name] = v
					}
					cells[cc.name] = v
				}

				allEmpty := true
				for _, j := range sub {
					v := body[j]
					if v != "" {
						allEmpty = false
					}
					cells[raw.Columns[j].Attribute] = v
				}
				if allEmpty {
					continue
				}
				rows = append(rows, model.LongRow{Day: day, Cells: cells, Source: len(rows)})
			}
		}
	}

	columns := append([]string{DayColumn}, commonNames...)
	columns = append(columns, attrNames...)

	// Schema stability: every row carries every column, absent values as "".
	for _, row := range rows {
		for _, name := range columns {
			if _, ok := row.Cells[name]; !ok {
				row.Cells[name] = ""
			}
		}
	}

	appLog.Debug("unpivot completed",
		"days", len(days), "columns", len(columns), "rows", len(rows))

	return model.LongTable{Columns: columns, Rows: rows}
}

func classify(columns []model.ColumnLabel) []model.ColumnKind {
	kinds := make([]model.ColumnKind, len(columns))
	for j, col := range columns {
		if col.Day == "" || isCommonName(col.Attribute) {
			kinds[j] = model.KindCommon
		}
	}
	return kinds
}

// subBlockWidth detects a consistently repeating prefix in a segment's
// attribute names and returns its length; the full length when no clean
// repetition exists.
func subBlockWidth(names []string) int {
	if len(names) < 2 {
		return maxInt(len(names), 1)
	}
	second := -1
	for i := 1; i < len(names); i++ {
		if names[i] == names[0] {
			second = i
			break
		}
	}
	if second < 1 || len(names)%second != 0 {
		return len(names)
	}
	for i := range names {
		if names[i] != names[i%second] {
			return len(names)
		}
	}
	return second
}

// passthrough converts a flat table into long form without unpivoting.
// Duplicate flat column names are suffixed positionally (Venue, Venue_1, ...)
// so no column is lost; the no-suffix rule applies only to day-segment
// attribute columns.
func passthrough(raw model.RawTable) model.LongTable {
	columns := make([]string, len(raw.Columns))
	seen := map[string]int{}
	for j, col := range raw.Columns {
		name := col.Attribute
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		}
		if _, dup := seen[name]; !dup {
			seen[name] = 1
		}
		columns[j] = name
	}

	var rows []model.LongRow
	for _, body := range raw.Rows {
		cells := map[string]string{}
		empty := true
		for j := range raw.Columns {
			v := body[j]
			if v != "" {
				empty = false
			}
			cells[columns[j]] = v
		}
		if empty {
			continue
		}
		rows = append(rows, model.LongRow{Cells: cells, Source: len(rows)})
	}

	return model.LongTable{Columns: columns, Rows: rows}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
