package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	appLog "tabcal/internal/log"
	"tabcal/internal/model"
)

// extractSpreadsheet reads an xlsx workbook. When no sheet is selected it
// scores every sheet by (rows, cols) and keeps the largest, mirroring the
// common case of workbooks with cover or legend sheets next to the actual
// timetable.
func extractSpreadsheet(data []byte, opts Options) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("extract: open workbook: %v: %w", err, model.ErrUnsupportedFormat)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("extract: workbook has no sheets: %w", model.ErrNoTableDetected)
	}

	targets := sheets
	if opts.Sheet != "" {
		targets = nil
		for _, s := range sheets {
			if s == opts.Sheet {
				targets = []string{s}
				break
			}
		}
		if targets == nil {
			return nil, fmt.Errorf("extract: sheet %q not found: %w", opts.Sheet, model.ErrNoTableDetected)
		}
	}

	var (
		best      model.Grid
		bestSheet string
	)
	for _, sheet := range targets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			appLog.Warn("sheet read failed, skipping", "sheet", sheet, "reason", err)
			continue
		}
		grid := padGrid(rows)
		if gridEmpty(grid) {
			continue
		}
		if betterScore(grid, best) {
			best = grid
			bestSheet = sheet
		}
	}

	if best == nil {
		return nil, fmt.Errorf("extract: no usable sheet: %w", model.ErrNoTableDetected)
	}

	appLog.Debug("spreadsheet extracted",
		"sheet", bestSheet, "rows", len(best), "sheets_available", len(sheets))

	return &Result{Grid: best, AvailableSheets: sheets, SheetUsed: bestSheet}, nil
}

func betterScore(g, than model.Grid) bool {
	if than == nil {
		return true
	}
	if len(g) != len(than) {
		return len(g) > len(than)
	}
	return gridWidth(g) > gridWidth(than)
}

func gridWidth(g model.Grid) int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}
