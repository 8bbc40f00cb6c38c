package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/timemath"
)

var dayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekSheet holds the hours per weekday of one calendar week, Monday first
type WeekSheet struct {
	Start    time.Time
	Hours    [7]float64
	Overtime [7]float64
	Total    float64
	OtTotal  float64
}

// WeeklySheet buckets records into the week starting at weekStart by work date
func WeeklySheet(records []models.ShiftRecord, weekStart time.Time) WeekSheet {
	sheet := WeekSheet{Start: weekStart}

	index := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		index[weekStart.AddDate(0, 0, i).Format(timemath.DateLayout)] = i
	}

	var total, ot float64
	for _, r := range records {
		i, ok := index[r.WorkDate]
		if !ok {
			continue
		}
		sheet.Hours[i] += r.TotalH
		sheet.Overtime[i] += r.OtH
		total += r.TotalH
		ot += r.OtH
	}
	for i := range sheet.Hours {
		sheet.Hours[i] = timemath.Round2(sheet.Hours[i])
		sheet.Overtime[i] = timemath.Round2(sheet.Overtime[i])
	}
	sheet.Total = timemath.Round2(total)
	sheet.OtTotal = timemath.Round2(ot)
	return sheet
}

// Render writes the sheet as a fixed-width table.
// Weekends are shown only when they have hours.
func (s WeekSheet) Render(w io.Writer) {
	var days []int
	for i := range dayNames {
		if i < 5 || s.Hours[i] > 0 {
			days = append(days, i)
		}
	}

	labelWidth := 10
	colWidth := 7

	fmt.Fprintf(w, "%-*s", labelWidth, "")
	for _, i := range days {
		fmt.Fprintf(w, "%*s", colWidth, dayNames[i])
	}
	fmt.Fprintf(w, "%*s\n", colWidth, "Total")

	fmt.Fprintln(w, strings.Repeat("-", labelWidth+colWidth*(len(days)+1)))

	printRow := func(label string, values [7]float64, total float64) {
		fmt.Fprintf(w, "%-*s", labelWidth, label)
		for _, i := range days {
			if values[i] > 0 {
				fmt.Fprintf(w, "%*s", colWidth, timemath.FormatHours(values[i]))
			} else {
				fmt.Fprintf(w, "%*s", colWidth, "-")
			}
		}
		fmt.Fprintf(w, "%*s\n", colWidth, timemath.FormatHours(total))
	}
	printRow("Hours", s.Hours, s.Total)
	printRow("Overtime", s.Overtime, s.OtTotal)

	fmt.Fprintf(w, "\nWeek of %s to %s\n",
		s.Start.Format("Jan 2"),
		s.Start.AddDate(0, 0, 6).Format("Jan 2, 2006"))
}
