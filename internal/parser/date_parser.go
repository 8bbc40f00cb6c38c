package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/punch/internal/timemath"
)

var (
	isoDateRegex  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	euroDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	daysAgoRegex  = regexp.MustCompile(`^(\d+)\s*(day|days|d)\s+ago$`)
	timeRegex     = regexp.MustCompile(`^([0-1]?\d|2[0-3]):([0-5]\d)$`)
	monthRegex    = regexp.MustCompile(`^(\d{4})-(0?[1-9]|1[0-2])$`)
)

// ParseWorkDate parses a work date relative to now and returns it as YYYY-MM-DD
// Supported formats:
// - yyyy-mm-dd (e.g., "2024-02-01")
// - dd/mm/yyyy (e.g., "01/02/2024")
// - today, yesterday
// - X days ago (e.g., "3 days ago")
func ParseWorkDate(input string, now time.Time) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", fmt.Errorf("work date is required")
	}

	now = now.Local()
	switch input {
	case "today":
		return timemath.WorkDateOf(now), nil
	case "yesterday":
		return timemath.WorkDateOf(now.AddDate(0, 0, -1)), nil
	}

	if m := daysAgoRegex.FindStringSubmatch(input); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n > 366 {
			return "", fmt.Errorf("days ago must be between 0 and 366")
		}
		return timemath.WorkDateOf(now.AddDate(0, 0, -n)), nil
	}

	var year, month, day int
	if m := isoDateRegex.FindStringSubmatch(input); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else if m := euroDateRegex.FindStringSubmatch(input); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else {
		return "", fmt.Errorf("invalid date %q. Use: yyyy-mm-dd, dd/mm/yyyy, today, yesterday or X days ago", input)
	}

	if month < 1 || month > 12 {
		return "", fmt.Errorf("month must be between 1 and 12")
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)

	// Catches 31/02 and friends
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return "", fmt.Errorf("invalid date %q", input)
	}
	return date.Format(timemath.DateLayout), nil
}

// ParseClock parses HH:MM into hours and minutes
func ParseClock(input string) (int, int, error) {
	m := timeRegex.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time %q. Use HH:MM (24h)", input)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h, mm, nil
}

// At combines a YYYY-MM-DD work date and an HH:MM time into a local instant
func At(workDate, clock string) (time.Time, error) {
	date, err := time.ParseInLocation(timemath.DateLayout, workDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", workDate)
	}
	h, mm, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, mm, 0, 0, time.Local), nil
}

// ParseDateTime parses "yyyy-mm-dd HH:MM" or "yyyy-mm-ddTHH:MM" as a local instant
func ParseDateTime(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	sep := strings.IndexAny(input, " T")
	if sep < 0 {
		return time.Time{}, fmt.Errorf("invalid date and time %q. Use: yyyy-mm-dd HH:MM", input)
	}
	date, err := ParseWorkDate(input[:sep], time.Now())
	if err != nil {
		return time.Time{}, err
	}
	return At(date, strings.TrimSpace(input[sep+1:]))
}

// ParseMonth normalizes a month key such as "2024-2" to "2024-02"
func ParseMonth(input string) (string, error) {
	m := monthRegex.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return "", fmt.Errorf("invalid month %q. Use: yyyy-mm", input)
	}
	month, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s-%02d", m[1], month), nil
}

// FormatDuration renders a running duration as "3h 05m"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %02dm", h, m)
}
