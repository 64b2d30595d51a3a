// Package assemble filters resolved timetable rows into a validated event
// list, merging temporally adjacent entries into single spans.
package assemble

import (
	"sort"

	appLog "tabcal/internal/log"
	"tabcal/internal/model"
	"tabcal/internal/temporal"
)

// Stats reports what happened to the candidate rows, for user-facing
// reporting and mapping correction.
type Stats struct {
	// Accepted is the number of events in the final list.
	Accepted int `json:"accepted"`
	// Dropped counts rows rejected for a missing or unparseable date, time
	// or title.
	Dropped int `json:"dropped"`
	// Merged counts rows folded into an adjacent predecessor.
	Merged int `json:"merged"`
}

// Assemble resolves each long row through the role mapping, drops incomplete
// candidates, merges exactly-adjacent same-slot entries and returns the
// final ordered event list.
//
// Date, time and title are mandatory; location, end time and description
// are optional and simply omitted when absent. Row-level failures never
// abort the batch.
func Assemble(table model.LongTable, mapping model.RoleMapping, base *model.Date) ([]model.ResolvedEvent, Stats) {
	var (
		events []model.ResolvedEvent
		stats  Stats
	)

	for _, row := range table.Rows {
		ev, ok := resolveRow(row, mapping, base)
		if !ok {
			stats.Dropped++
			continue
		}
		events = append(events, ev)
	}

	merged, folds := mergeAdjacent(events)
	stats.Merged = folds
	stats.Accepted = len(merged)

	appLog.Info("events assembled",
		"accepted", stats.Accepted, "dropped", stats.Dropped, "merged", stats.Merged)

	return merged, stats
}

func resolveRow(row model.LongRow, mapping model.RoleMapping, base *model.Date) (model.ResolvedEvent, bool) {
	title := row.Cells[mapping.Column(model.RoleTitle)]
	if title == "" {
		return model.ResolvedEvent{}, false
	}

	date, err := temporal.ResolveDate(row.Cells[mapping.Column(model.RoleDate)], base)
	if err != nil {
		appLog.Warn("row dropped", "row", row.Source, "reason", err)
		return model.ResolvedEvent{}, false
	}

	start, end, err := temporal.ResolveTime(row.Cells[mapping.Column(model.RoleTime)])
	if err != nil {
		appLog.Warn("row dropped", "row", row.Source, "reason", err)
		return model.ResolvedEvent{}, false
	}

	// A separate end-time column only fills the gap when the time cell did
	// not already carry a range.
	if end == nil {
		if col := mapping.Column(model.RoleEndTime); col != "" {
			if endStart, _, eerr := temporal.ResolveTime(row.Cells[col]); eerr == nil {
				end = &endStart
			}
		}
	}

	return model.ResolvedEvent{
		Date:        date,
		Start:       start,
		End:         end,
		Title:       title,
		Location:    row.Cells[mapping.Column(model.RoleLocation)],
		Description: row.Cells[mapping.Column(model.RoleDescription)],
		SourceRow:   row.Source,
	}, true
}

// mergeAdjacent coalesces runs of events sharing (date, title, location)
// whose spans touch exactly: the first event's end equals the next event's
// start. Open-ended events (no end time) never merge. Returns the merged
// list in first-encounter order and the number of rows folded away.
func mergeAdjacent(events []model.ResolvedEvent) ([]model.ResolvedEvent, int) {
	groups := map[string][]model.ResolvedEvent{}
	var order []string
	for _, ev := range events {
		key := ev.Date.String() + "\x00" + ev.Title + "\x00" + ev.Location
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], ev)
	}

	var (
		out   []model.ResolvedEvent
		folds int
	)
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Start.Minutes() != group[j].Start.Minutes() {
				return group[i].Start.Minutes() < group[j].Start.Minutes()
			}
			return group[i].SourceRow < group[j].SourceRow
		})

		i := 0
		for i < len(group) {
			cur := group[i]
			j := i + 1
			for j < len(group) {
				next := group[j]
				if cur.End == nil || next.End == nil || !cur.End.Equal(next.Start) {
					break
				}
				end := *next.End
				cur.End = &end
				folds++
				j++
			}
			if j > i+1 {
				appLog.Debug("adjacent slots merged",
					"title", cur.Title, "date", cur.Date.String(),
					"span", cur.Start.String()+"-"+cur.End.String(), "slots", j-i)
			}
			out = append(out, cur)
			i = j
		}
	}

	// Final order: original encounter order, interleaved by date as rows
	// appeared in the source.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SourceRow < out[j].SourceRow
	})

	return out, folds
}
