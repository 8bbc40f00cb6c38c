package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/timemath"
)

// CSVHeader is the column order of an export
var CSVHeader = []string{"Date", "TimeIn", "TimeOut", "TotalHours", "OvertimeHours", "Notes"}

// CSVRow is one exported shift, already formatted
type CSVRow struct {
	Date          string
	TimeIn        string
	TimeOut       string
	TotalHours    string
	OvertimeHours string
	Notes         string
}

func (r CSVRow) fields() []string {
	return []string{r.Date, r.TimeIn, r.TimeOut, r.TotalHours, r.OvertimeHours, r.Notes}
}

// ToCSVRows formats records for export, times as local HH:MM
func ToCSVRows(records []models.ShiftRecord) []CSVRow {
	rows := make([]CSVRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, CSVRow{
			Date:          r.WorkDate,
			TimeIn:        r.In().Format("15:04"),
			TimeOut:       r.Out().Format("15:04"),
			TotalHours:    timemath.FormatHours(r.TotalH),
			OvertimeHours: timemath.FormatHours(r.OtH),
			Notes:         r.Notes,
		})
	}
	return rows
}

// WriteCSV writes the header and rows with standard quoting
func WriteCSV(w io.Writer, rows []CSVRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.fields()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFileName is the default export file name for a month key
func CSVFileName(monthKey string) string {
	return fmt.Sprintf("time-tracker-%s.csv", strings.ReplaceAll(monthKey, "-", ""))
}

// CSVFileNameFor is CSVFileName for the month containing t
func CSVFileNameFor(t time.Time) string {
	return CSVFileName(timemath.MonthKeyOf(t))
}
