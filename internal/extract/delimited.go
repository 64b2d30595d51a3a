package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	appLog "tabcal/internal/log"
	"tabcal/internal/model"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

var defaultEncodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

// extractDelimited parses CSV/TSV bytes, falling back through a prioritized
// list of character encodings. It fails with UnsupportedFormat only when no
// encoding in the list decodes the payload.
func extractDelimited(data []byte, opts Options) (*Result, error) {
	names := opts.Encodings
	if len(names) == 0 {
		names = defaultEncodings
	}

	text, enc, err := decodeWithFallback(data, names)
	if err != nil {
		return nil, err
	}
	if enc != "utf-8" {
		appLog.Debug("delimited source decoded via fallback encoding", "encoding", enc)
	}

	comma := opts.Comma
	if comma == 0 {
		comma = ','
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // ragged rows are padded afterwards

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("extract: read delimited row: %v: %w", err, model.ErrNoTableDetected)
		}
		rows = append(rows, record)
	}

	grid := padGrid(rows)
	if gridEmpty(grid) {
		return nil, fmt.Errorf("extract: delimited source is empty: %w", model.ErrNoTableDetected)
	}

	return &Result{Grid: grid}, nil
}

// decodeWithFallback tries each named encoding in order and returns the
// first successful decode along with the encoding name used.
func decodeWithFallback(data []byte, names []string) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	for _, name := range names {
		switch normalizeEncodingName(name) {
		case "utf-8":
			if utf8.Valid(data) {
				return string(data), "utf-8", nil
			}
		case "windows-1252":
			if out, err := decodeCharmap(data, charmap.Windows1252); err == nil {
				return out, "windows-1252", nil
			}
		case "iso-8859-1":
			if out, err := decodeCharmap(data, charmap.ISO8859_1); err == nil {
				return out, "iso-8859-1", nil
			}
		default:
			appLog.Warn("unknown encoding in priority list, skipping", "encoding", name)
		}
	}

	return "", "", fmt.Errorf("extract: no encoding in %v decodes the payload: %w",
		names, model.ErrUnsupportedFormat)
}

func decodeCharmap(data []byte, cm *charmap.Charmap) (string, error) {
	var dec *encoding.Decoder = cm.NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func normalizeEncodingName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return "utf-8"
	case "windows-1252", "cp1252":
		return "windows-1252"
	case "iso-8859-1", "latin-1", "latin1":
		return "iso-8859-1"
	}
	return strings.ToLower(strings.TrimSpace(name))
}
