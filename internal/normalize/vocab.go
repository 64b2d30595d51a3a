package normalize

import "strings"

// dayTokens are the weekday names (full and abbreviated) used to recognize
// the day row of a hierarchical header.
var dayTokens = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"mon", "tue", "tues", "wed", "thu", "thur", "thurs", "fri", "sat", "sun",
}

// attrTokens are attribute names expected in the row directly below the day
// row. Two or more matches there confirm a hierarchical header.
var attrTokens = []string{
	"course", "subject", "module", "title", "class", "type",
	"venue", "room", "rm", "location", "building", "hall", "lab", "address",
	"teacher", "instructor", "lecturer", "tutor", "code",
}

// commonNameTokens is the small fixed vocabulary of column names that apply
// identically across every day segment (time-like, period-like). Everything
// else under a day prefix is day-specific.
var commonNameTokens = []string{
	"time", "period", "session", "slot", "hour",
}

func containsAnyToken(cell string, tokens []string) bool {
	cell = strings.ToLower(cell)
	for _, tok := range tokens {
		if strings.Contains(cell, tok) {
			return true
		}
	}
	return false
}

func isDayLabel(cell string) bool { return containsAnyToken(cell, dayTokens) }

func isCommonName(name string) bool { return containsAnyToken(name, commonNameTokens) }

// cleanCell trims whitespace and maps textual null markers to the empty
// string.
func cleanCell(cell string) string {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "nan", "none", "null":
		return ""
	}
	return cell
}
