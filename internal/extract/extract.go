// Package extract turns raw source bytes into a rectangular cell grid.
//
// Each adapter (spreadsheet, delimited text, tabular document) produces the
// same shape: an ordered sequence of rows of string cells, untrimmed of
// header rows. Header detection and unpivoting happen downstream in
// internal/normalize.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"tabcal/internal/model"
)

// SourceKind declares how the raw bytes should be interpreted.
type SourceKind string

const (
	// KindDocument is a tabular document (PDF).
	KindDocument SourceKind = "document"
	// KindSpreadsheet is an xlsx workbook, possibly multi-sheet.
	KindSpreadsheet SourceKind = "spreadsheet"
	// KindDelimited is delimited text (CSV/TSV).
	KindDelimited SourceKind = "delimited"
)

// KindFromPath infers a source kind from a file extension. Unknown
// extensions yield an UnsupportedFormat error.
func KindFromPath(path string) (SourceKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return KindDocument, nil
	case ".xlsx", ".xlsm", ".xls":
		return KindSpreadsheet, nil
	case ".csv", ".tsv", ".txt":
		return KindDelimited, nil
	}
	return "", fmt.Errorf("extract: extension %q: %w", filepath.Ext(path), model.ErrUnsupportedFormat)
}

// Options tune extraction. The zero value is usable.
type Options struct {
	// Sheet selects a spreadsheet sheet by name. Empty means "pick the
	// sheet with the most data".
	Sheet string

	// Comma is the delimiter for delimited text. Zero means comma.
	Comma rune

	// Encodings is the priority list of encodings tried for delimited
	// text. Empty means UTF-8, Windows-1252, ISO-8859-1.
	Encodings []string
}

// Result is the outcome of a successful extraction. Extraction is
// idempotent: the same bytes with the same options produce the same result,
// so a caller can reselect a sheet and re-run.
type Result struct {
	Grid model.Grid

	// AvailableSheets lists all sheet names of a spreadsheet source so the
	// caller can reselect. Empty for other kinds.
	AvailableSheets []string

	// SheetUsed names the sheet the grid came from, if any.
	SheetUsed string
}

// Extract runs the adapter for the declared source kind.
func Extract(data []byte, kind SourceKind, opts Options) (*Result, error) {
	switch kind {
	case KindSpreadsheet:
		return extractSpreadsheet(data, opts)
	case KindDelimited:
		return extractDelimited(data, opts)
	case KindDocument:
		return extractDocument(data)
	}
	return nil, fmt.Errorf("extract: source kind %q: %w", kind, model.ErrUnsupportedFormat)
}

// padGrid right-pads every row with empty cells to the width of the widest
// row, so downstream header detection sees a rectangle.
func padGrid(rows [][]string) model.Grid {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	grid := make(model.Grid, 0, len(rows))
	for _, r := range rows {
		row := make([]string, width)
		copy(row, r)
		grid = append(grid, row)
	}
	return grid
}

// gridEmpty reports whether the grid has no non-blank cell.
func gridEmpty(g model.Grid) bool {
	for _, row := range g {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return false
			}
		}
	}
	return true
}
