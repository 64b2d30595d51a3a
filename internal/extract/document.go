package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tsawler/tabula"

	appLog "tabcal/internal/log"
	"tabcal/internal/model"
)

// columnGap splits a text line into cells on runs of two or more spaces,
// which is how column boundaries survive PDF text extraction.
var columnGap = regexp.MustCompile(`\s{2,}`)

// extractDocument pulls text lines out of a PDF and reassembles them into a
// cell grid. The PDF reader works on files, so the payload is spooled to a
// temporary file that is removed before returning.
func extractDocument(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("extract: empty document: %w", model.ErrNoTableDetected)
	}

	tmp, err := os.CreateTemp("", "tabcal-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("extract: spool document: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("extract: spool document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("extract: spool document: %w", err)
	}

	texts, err := documentLines(tmpName)
	if err != nil {
		return nil, fmt.Errorf("extract: read document: %v: %w", err, model.ErrUnsupportedFormat)
	}

	grid := linesToGrid(texts)
	if grid == nil {
		return nil, fmt.Errorf("extract: no table rows in document: %w", model.ErrNoTableDetected)
	}

	appLog.Debug("document extracted", "lines", len(texts), "rows", len(grid))
	return &Result{Grid: grid}, nil
}

// documentLines extracts the text lines of all pages in reading order.
// Line detection is preferred; plain text extraction is the fallback for
// documents whose layout defeats it.
func documentLines(path string) ([]string, error) {
	lines, err := tabula.Open(path).Lines()
	if err == nil && len(lines) > 0 {
		out := make([]string, 0, len(lines))
		for _, ln := range lines {
			out = append(out, ln.Text)
		}
		return out, nil
	}

	text, warnings, terr := tabula.Open(path).Text()
	if terr != nil {
		if err != nil {
			return nil, err
		}
		return nil, terr
	}
	for _, w := range warnings {
		appLog.Warn("document text extraction", "warning", w)
	}
	return strings.Split(text, "\n"), nil
}

// linesToGrid keeps lines that split into at least two cells and pads them
// into a rectangle. A table needs at least a header line and one data line;
// anything less is treated as "no table".
func linesToGrid(lines []string) model.Grid {
	var rows [][]string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cells := columnGap.Split(line, -1)
		if len(cells) < 2 {
			continue
		}
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, cells)
	}
	if len(rows) < 2 {
		return nil
	}
	return padGrid(rows)
}
