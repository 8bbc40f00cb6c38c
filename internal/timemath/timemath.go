package timemath

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical work-date format
	DateLayout = "2006-01-02"
	// MonthLayout is the canonical month key format
	MonthLayout = "2006-01"

	msPerHour = 3_600_000
	msPerDay  = 86_400_000
)

var timeOfDayRegex = regexp.MustCompile(`^([0-1]?\d|2[0-3]):([0-5]\d)$`)

// WorkDateOf returns the local calendar date containing t.
// A shift that starts at t belongs to this date even if it ends after midnight.
func WorkDateOf(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// MonthKeyOf returns the local year-month containing t, e.g. "2024-01"
func MonthKeyOf(t time.Time) string {
	return t.Local().Format(MonthLayout)
}

// InMonth reports whether a work-date falls in the given month key
func InMonth(workDate, monthKey string) bool {
	return strings.HasPrefix(workDate, monthKey+"-")
}

// ElapsedHours returns the hours between start and end, never negative
func ElapsedHours(start, end time.Time) float64 {
	ms := end.UnixMilli() - start.UnixMilli()
	return math.Max(0, float64(ms)/msPerHour)
}

// OvertimeHours returns the hours worked beyond the standard threshold
func OvertimeHours(total, threshold float64) float64 {
	return math.Max(0, total-threshold)
}

// Round2 rounds half up at the second decimal
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// Totals computes the rounded total and overtime hours of a shift
func Totals(in, out time.Time, threshold float64) (total, overtime float64) {
	raw := ElapsedHours(in, out)
	return Round2(raw), Round2(OvertimeHours(raw, threshold))
}

// FormatHours renders hours with two decimals, e.g. "5.50"
func FormatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}

// MinutesSinceMidnight returns the local minute of day of t
func MinutesSinceMidnight(t time.Time) int {
	t = t.Local()
	return t.Hour()*60 + t.Minute()
}

// DaysBetween returns the fractional number of days from a to b
func DaysBetween(a, b time.Time) float64 {
	return float64(b.UnixMilli()-a.UnixMilli()) / msPerDay
}

// FromMillis converts Unix milliseconds to a local time
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).Local()
}

// WeekRange returns local midnight of the Monday starting t's week and of the following Monday
func WeekRange(t time.Time) (time.Time, time.Time) {
	t = t.Local()
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := time.Date(t.Year(), t.Month(), t.Day()-(wd-1), 0, 0, 0, 0, t.Location())
	return monday, monday.AddDate(0, 0, 7)
}

// ParseTimeOfDay converts HH:MM (hour may be one digit) to minutes since midnight
func ParseTimeOfDay(s string) (int, bool) {
	m := timeOfDayRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm, true
}
