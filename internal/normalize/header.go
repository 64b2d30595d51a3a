package normalize

import (
	"fmt"
	"strings"

	appLog "tabcal/internal/log"
	"tabcal/internal/model"
)

// headerSearchLimit bounds how deep into the grid the day/attribute header
// pair is searched for. Real timetables put it within the first few rows;
// the margin covers title banners and legend rows above it.
const headerSearchLimit = 20

// DetectHeader locates the header row(s) of a raw cell grid and returns the
// table with labeled columns and body rows.
//
// Two layouts are recognized:
//
//   - hierarchical: a row of day names directly above a row of attribute
//     names (course/venue/...). Day cells are forward-filled to cover merged
//     cells, and each column gets a (day, attribute) label. Columns whose
//     day cell is blank or not a day name become flat (day-less) labels.
//   - flat: the first non-empty row is the header.
//
// Blank labels are synthesized positionally (Column_N) so downstream role
// matching always has a name to examine.
func DetectHeader(grid model.Grid) (model.RawTable, error) {
	grid = dropEmpty(grid)
	if len(grid) == 0 {
		return model.RawTable{}, fmt.Errorf("normalize: grid is empty: %w", model.ErrNoTableDetected)
	}

	if idx, ok := findHierarchicalHeader(grid); ok {
		table := buildHierarchical(grid, idx)
		if len(table.Rows) > 0 {
			appLog.Debug("hierarchical header detected",
				"header_row", idx, "columns", len(table.Columns), "rows", len(table.Rows))
			return table, nil
		}
	}

	return buildFlat(grid)
}

// findHierarchicalHeader scans for a row with at least one day name followed
// by a row with at least two attribute names.
func findHierarchicalHeader(grid model.Grid) (int, bool) {
	limit := len(grid)
	if limit > headerSearchLimit {
		limit = headerSearchLimit
	}
	for i := 0; i+1 < limit; i++ {
		days := 0
		for _, cell := range grid[i] {
			if cell = cleanCell(cell); cell != "" && isDayLabel(cell) {
				days++
			}
		}
		if days == 0 {
			continue
		}
		attrs := 0
		for _, cell := range grid[i+1] {
			if cell = cleanCell(cell); cell != "" && containsAnyToken(cell, attrTokens) {
				attrs++
			}
		}
		if attrs >= 2 {
			return i, true
		}
	}
	return 0, false
}

func buildHierarchical(grid model.Grid, headerIdx int) model.RawTable {
	dayRow := grid[headerIdx]
	attrRow := grid[headerIdx+1]
	width := len(dayRow)

	// Forward-fill the day row so attributes under a merged day cell pick
	// up the day name.
	filled := make([]string, width)
	last := ""
	for j := 0; j < width; j++ {
		if v := cleanCell(dayRow[j]); v != "" {
			last = v
		}
		filled[j] = last
	}

	columns := make([]model.ColumnLabel, width)
	for j := 0; j < width; j++ {
		name := cleanCell(attrRow[j])
		day := filled[j]
		if day != "" && isDayLabel(day) {
			if name == "" {
				name = placeholderName(j)
			}
			columns[j] = model.ColumnLabel{Day: day, Attribute: name}
			continue
		}
		// No day prefix: a shared column such as Time/Period. Its name may
		// live in either header row.
		if name == "" {
			name = cleanCell(dayRow[j])
		}
		if name == "" {
			name = placeholderName(j)
		}
		columns[j] = model.ColumnLabel{Attribute: name}
	}

	return model.RawTable{Columns: columns, Rows: copyBody(grid[headerIdx+2:], width)}
}

func buildFlat(grid model.Grid) (model.RawTable, error) {
	headerIdx := -1
	for i, row := range grid {
		for _, cell := range row {
			if cleanCell(cell) != "" {
				headerIdx = i
				break
			}
		}
		if headerIdx >= 0 {
			break
		}
	}
	if headerIdx < 0 || headerIdx+1 >= len(grid) {
		return model.RawTable{}, fmt.Errorf("normalize: no data rows below header: %w", model.ErrNoTableDetected)
	}

	width := len(grid[headerIdx])
	columns := make([]model.ColumnLabel, width)
	for j, cell := range grid[headerIdx] {
		name := cleanCell(cell)
		if name == "" {
			name = placeholderName(j)
		}
		columns[j] = model.ColumnLabel{Attribute: name}
	}

	return model.RawTable{Columns: columns, Rows: copyBody(grid[headerIdx+1:], width)}, nil
}

func copyBody(rows model.Grid, width int) [][]string {
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		out := make([]string, width)
		for j := 0; j < width && j < len(row); j++ {
			out[j] = cleanCell(row[j])
		}
		body = append(body, out)
	}
	return body
}

func placeholderName(idx int) string {
	return fmt.Sprintf("Column_%d", idx+1)
}

// dropEmpty removes rows and columns that contain no non-blank cell.
func dropEmpty(grid model.Grid) model.Grid {
	if len(grid) == 0 {
		return grid
	}
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	keepCol := make([]bool, width)
	for _, row := range grid {
		for j, cell := range row {
			if strings.TrimSpace(cell) != "" {
				keepCol[j] = true
			}
		}
	}

	var out model.Grid
	for _, row := range grid {
		empty := true
		var cells []string
		for j := 0; j < width; j++ {
			var v string
			if j < len(row) {
				v = row[j]
			}
			if !keepCol[j] {
				continue
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			cells = append(cells, v)
		}
		if !empty {
			out = append(out, cells)
		}
	}
	return out
}
