package tui

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/timemath"
)

// ShiftCloser ends the open shift
type ShiftCloser interface {
	ClockOut() (*models.ShiftRecord, error)
}

// RunTimerTUI shows the running shift and clocks out if the user asks to
func RunTimerTUI(w io.Writer, open models.OpenShift, c clock.Clock, tooLongHours float64, closer ShiftCloser) error {
	p := tea.NewProgram(NewTimerModel(open, c, tooLongHours), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}

	m := final.(TimerModel)
	if !m.clockingOut {
		fmt.Fprintf(w, "Shift still running since %s. Use 'punch out' to clock out.\n", open.In().Format("15:04"))
		return nil
	}

	rec, err := closer.ClockOut()
	if err != nil {
		return fmt.Errorf("failed to clock out: %w", err)
	}
	PrintClockOut(w, rec)
	return nil
}

// PrintClockOut reports a closed shift
func PrintClockOut(w io.Writer, rec *models.ShiftRecord) {
	fmt.Fprintf(w, "Clocked out at %s (work date %s)\n", rec.Out().Format("15:04"), rec.WorkDate)
	fmt.Fprintf(w, "Worked %sh, overtime %sh\n", timemath.FormatHours(rec.TotalH), timemath.FormatHours(rec.OtH))
}

// RunShiftFormTUI runs the add/edit form and returns the saved record, or nil if cancelled
func RunShiftFormTUI(w io.Writer, model ShiftFormModel) (*models.ShiftRecord, error) {
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := final.(ShiftFormModel)
	if m.saved == nil {
		fmt.Fprintln(w, "Shift not saved.")
		return nil, nil
	}
	verb := "Added"
	if model.editingID != "" {
		verb = "Updated"
	}
	PrintSaved(w, verb, m.saved)
	return m.saved, nil
}

// PrintSaved reports an added or updated shift
func PrintSaved(w io.Writer, verb string, rec *models.ShiftRecord) {
	fmt.Fprintf(w, "%s shift %s on %s: %sh (overtime %sh)\n", verb, ShortID(rec.ID), rec.WorkDate,
		timemath.FormatHours(rec.TotalH), timemath.FormatHours(rec.OtH))
}

// RunMonthTUI browses a month and returns the id of a shift the user wants to edit
func RunMonthTUI(source MonthSource, monthKey, search string) (string, error) {
	model, err := NewMonthModel(source, monthKey, search)
	if err != nil {
		return "", err
	}
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	return final.(MonthModel).EditID(), nil
}

// FormatRunning renders how long a shift has been open
func FormatRunning(open models.OpenShift, now time.Time) string {
	return parser.FormatDuration(now.Sub(open.In()))
}
