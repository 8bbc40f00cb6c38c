package parser

import (
	"regexp"
	"strings"
	"time"
)

// ParsedShift represents a shift parsed from a quick-entry line
type ParsedShift struct {
	WorkDate string
	In       time.Time
	Out      time.Time
	Notes    string
	Errors   []string
}

var shiftLineRegex = regexp.MustCompile(`^(\S+(?:\s+days?\s+ago)?)\s+(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})(?:\s+(.*))?$`)

// ParseShiftLine extracts a shift from a single line
// Syntax: "<date> <HH:MM>-<HH:MM> [notes]", e.g. "2024-02-01 08:00-19:00 client visit".
// An end time earlier than the start time ends on the following day.
func ParseShiftLine(input string, now time.Time) ParsedShift {
	result := ParsedShift{Errors: []string{}}

	input = strings.TrimSpace(input)
	m := shiftLineRegex.FindStringSubmatch(input)
	if m == nil {
		result.Errors = append(result.Errors, "Expected: <date> <HH:MM>-<HH:MM> [notes]")
		return result
	}

	workDate, err := ParseWorkDate(m[1], now)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.WorkDate = workDate
	result.Notes = strings.TrimSpace(m[4])

	in, err := At(workDate, m[2])
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}
	out, err := At(workDate, m[3])
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}
	if len(result.Errors) > 0 {
		return result
	}

	// Cross-midnight shift
	if !out.After(in) {
		out = out.AddDate(0, 0, 1)
	}
	result.In = in
	result.Out = out
	return result
}
