package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tabcal/internal/model"
)

// Free-form time cells: "HH:MM", optionally "HH:MM - HH:MM", optionally with
// AM/PM markers; dash, en dash, em dash and tilde all separate ranges.
var (
	timeRangeRe  = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*([AaPp][Mm])?\s*[-–—~]\s*(\d{1,2}):(\d{2})\s*([AaPp][Mm])?`)
	timeSingleRe = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*([AaPp][Mm])?`)
)

// ResolveTime extracts a start time and optional end time from a free-form
// cell. A cell with no recognizable HH:MM pattern fails row-scoped.
func ResolveTime(cell string) (model.ClockTime, *model.ClockTime, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return model.ClockTime{}, nil, fmt.Errorf("temporal: empty time cell: %w", model.ErrTimeParse)
	}

	if m := timeRangeRe.FindStringSubmatch(cell); m != nil {
		start, err := clockFrom(m[1], m[2], m[3])
		if err != nil {
			return model.ClockTime{}, nil, err
		}
		end, err := clockFrom(m[4], m[5], m[6])
		if err != nil {
			return model.ClockTime{}, nil, err
		}
		return start, &end, nil
	}

	if m := timeSingleRe.FindStringSubmatch(cell); m != nil {
		start, err := clockFrom(m[1], m[2], m[3])
		if err != nil {
			return model.ClockTime{}, nil, err
		}
		return start, nil, nil
	}

	return model.ClockTime{}, nil, fmt.Errorf("temporal: no time pattern in %q: %w", cell, model.ErrTimeParse)
}

func clockFrom(hourStr, minStr, marker string) (model.ClockTime, error) {
	hour, _ := strconv.Atoi(hourStr)
	minute, _ := strconv.Atoi(minStr)

	switch strings.ToLower(marker) {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 {
		return model.ClockTime{}, fmt.Errorf("temporal: out-of-range time %s:%s%s: %w",
			hourStr, minStr, marker, model.ErrTimeParse)
	}
	return model.ClockTime{Hour: hour, Minute: minute}, nil
}
