// Package roles infers which long-table column plays which semantic role.
package roles

import (
	"fmt"
	"strings"

	appLog "tabcal/internal/log"
	"tabcal/internal/model"
)

// roleOrder fixes the resolution order of roles during keyword fallback.
// Title resolves before end_time/description so that broad synonyms of the
// later roles cannot claim a course/subject column first.
var roleOrder = []model.Role{
	model.RoleDate,
	model.RoleTime,
	model.RoleTitle,
	model.RoleLocation,
	model.RoleEndTime,
	model.RoleDescription,
}

// keywords are the closed, curated synonym sets per role, matched by
// substring against lowercased column names. Date tokens include day/date
// words in several languages.
var keywords = map[model.Role][]string{
	model.RoleDate: {
		"date", "day", "weekday", "day name", "datum", "fecha",
	},
	model.RoleTime: {
		"time", "times", "period", "session", "slot", "start", "begin", "start time",
	},
	model.RoleTitle: {
		"title", "event", "name", "subject", "course", "course title", "class",
		"module", "topic", "activity",
	},
	model.RoleLocation: {
		"location", "room", "room no", "rm", "venue", "place", "hall", "building",
		"lab", "address", "classroom",
	},
	model.RoleEndTime: {
		"end", "finish", "until", "end time", "finish time",
	},
	model.RoleDescription: {
		"description", "notes", "details", "desc", "instructor", "teacher",
		"lecturer", "tutor",
	},
}

// exactMatches are column names that claim a role outright before any fuzzy
// matching runs.
var exactMatches = map[string]model.Role{
	"day":     model.RoleDate,
	"weekday": model.RoleDate,
	"date":    model.RoleDate,
	"time":    model.RoleTime,
	"course":  model.RoleTitle,
	"subject": model.RoleTitle,
	"venue":   model.RoleLocation,
}

// Suggest resolves a RoleMapping for the given column names.
//
// Resolution order per role: explicit override, then structural hint (kept
// only if the hinted column exists), then exact-name match, then the first
// left-to-right column whose lowercased name contains a role synonym. The
// heuristic stages never assign one column to two roles. Missing required
// roles (date/time/title) are a configuration error, not a parse error.
//
// extra extends the keyword sets per role and may be nil.
func Suggest(columns []string, hints, overrides map[model.Role]string, extra map[string][]string) (model.RoleMapping, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("roles: no columns to map: %w", model.ErrHeaderAmbiguous)
	}

	exists := make(map[string]bool, len(columns))
	for _, c := range columns {
		exists[c] = true
	}

	mapping := model.RoleMapping{}
	used := map[string]bool{}

	// Overrides win unconditionally; referencing an unknown column is an
	// error the caller has to see rather than a silent fallback.
	for role, col := range overrides {
		if col == "" {
			continue
		}
		if !exists[col] {
			return nil, fmt.Errorf("roles: override for %s references unknown column %q", role, col)
		}
		mapping[role] = col
		used[col] = true
	}

	// Structural hints from the extraction layer are best-effort.
	for role, col := range hints {
		if _, done := mapping[role]; done || col == "" || !exists[col] || used[col] {
			continue
		}
		mapping[role] = col
		used[col] = true
	}

	// Exact-name matches take priority over substring scans.
	for _, col := range columns {
		role, ok := exactMatches[strings.ToLower(strings.TrimSpace(col))]
		if !ok || used[col] {
			continue
		}
		if _, done := mapping[role]; done {
			continue
		}
		mapping[role] = col
		used[col] = true
	}

	// Keyword fallback: first left-to-right column containing a synonym.
	for _, role := range roleOrder {
		if _, done := mapping[role]; done {
			continue
		}
		syns := keywords[role]
		if extra != nil {
			syns = append(append([]string{}, syns...), extra[string(role)]...)
		}
		for _, col := range columns {
			if used[col] {
				continue
			}
			if containsAny(strings.ToLower(col), syns) {
				mapping[role] = col
				used[col] = true
				break
			}
		}
	}

	var missing []string
	for _, role := range model.RequiredRoles {
		if mapping[role] == "" {
			missing = append(missing, string(role))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("roles: unresolved required roles %s: %w",
			strings.Join(missing, ","), model.ErrRoleMappingMissing)
	}

	appLog.Debug("role mapping resolved",
		"date", mapping[model.RoleDate],
		"time", mapping[model.RoleTime],
		"title", mapping[model.RoleTitle],
		"location", mapping[model.RoleLocation])

	return mapping, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
