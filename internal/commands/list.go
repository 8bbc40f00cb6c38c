package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/report"
	"github.com/balkashynov/punch/internal/timemath"
	"github.com/balkashynov/punch/internal/tui"
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "Browse the shifts of a month",
	Long: `Browse the shifts of a month with totals and overtime.

Opens the interactive browser by default (←/→ month, / search, e edit, d delete).

Examples:
  punch ls                       # This month
  punch ls --month 2024-02       # Another month
  punch ls --search "client"     # Filter by notes or date
  punch ls --no-ui               # Plain table
  punch ls --json                # Machine readable`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		monthKey, err := monthFlag(cmd, a.clock.Now())
		if err != nil {
			fail(cmd, err)
			return
		}
		search, _ := cmd.Flags().GetString("search")
		asJSON, _ := cmd.Flags().GetBool("json")
		noUI, _ := cmd.Flags().GetBool("no-ui")

		if !asJSON && !noUI {
			editID, err := tui.RunMonthTUI(a.store, monthKey, search)
			if err != nil {
				fail(cmd, err)
				return
			}
			if editID == "" {
				return
			}
			rec, err := a.store.Get(editID)
			if err != nil {
				fail(cmd, err)
				return
			}
			if _, err := tui.RunShiftFormTUI(out, tui.NewEditShiftFormModel(a.store, a.clock.Now(), *rec)); err != nil {
				fail(cmd, err)
			}
			return
		}

		records, err := report.FilteredRows(a.store, monthKey, search)
		if err != nil {
			fail(cmd, err)
			return
		}
		agg := report.MonthlyAggregate(records, monthKey)

		if asJSON {
			if err := writeMonthJSON(out, monthKey, agg, records); err != nil {
				fail(cmd, err)
			}
			return
		}
		printMonthTable(out, monthKey, agg, records)
	}),
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the totals of a month",
	Args:  cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		monthKey, err := monthFlag(cmd, a.clock.Now())
		if err != nil {
			fail(cmd, err)
			return
		}
		search, _ := cmd.Flags().GetString("search")
		records, err := report.FilteredRows(a.store, monthKey, search)
		if err != nil {
			fail(cmd, err)
			return
		}
		agg := report.MonthlyAggregate(records, monthKey)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Month:    %s\n", monthKey)
		fmt.Fprintf(out, "Days:     %d\n", agg.DayCount)
		fmt.Fprintf(out, "Total:    %sh\n", timemath.FormatHours(agg.TotalHours))
		fmt.Fprintf(out, "Overtime: %sh\n", timemath.FormatHours(agg.OvertimeHours))
	}),
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show hours per day for a week",
	Long: `Show a Monday-to-Sunday timesheet with hours and overtime per work date.

Examples:
  punch week                     # This week
  punch week --date 2024-02-07   # The week containing that date
  punch week --last              # Last week`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		now := a.clock.Now()
		day := now
		if d, _ := cmd.Flags().GetString("date"); d != "" {
			workDate, err := parser.ParseWorkDate(d, now)
			if err != nil {
				fail(cmd, err)
				return
			}
			day, _ = time.ParseInLocation(timemath.DateLayout, workDate, time.Local)
		}
		if last, _ := cmd.Flags().GetBool("last"); last {
			day = day.AddDate(0, 0, -7)
		}

		start, end := timemath.WeekRange(day)
		records, err := a.store.Range(start.Format(timemath.DateLayout), end.Format(timemath.DateLayout))
		if err != nil {
			fail(cmd, err)
			return
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Week of %s - %s\n\n", start.Format("Jan 2"), end.AddDate(0, 0, -1).Format("Jan 2, 2006"))
		report.WeeklySheet(records, start).Render(out)
	}),
}

// monthFlag reads --month, defaulting to the month of now
func monthFlag(cmd *cobra.Command, now time.Time) (string, error) {
	month, _ := cmd.Flags().GetString("month")
	if month == "" {
		return timemath.MonthKeyOf(now), nil
	}
	return parser.ParseMonth(month)
}

type monthJSON struct {
	Month  string               `json:"month"`
	Totals report.Aggregate     `json:"totals"`
	Shifts []models.ShiftRecord `json:"shifts"`
}

func writeMonthJSON(w io.Writer, monthKey string, agg report.Aggregate, records []models.ShiftRecord) error {
	if records == nil {
		records = []models.ShiftRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(monthJSON{Month: monthKey, Totals: agg, Shifts: records})
}

func printMonthTable(w io.Writer, monthKey string, agg report.Aggregate, records []models.ShiftRecord) {
	if len(records) == 0 {
		fmt.Fprintf(w, "No shifts in %s. Use 'punch in' or 'punch add' to record one.\n", monthKey)
		return
	}

	fmt.Fprintf(w, "%-8s %-10s %-5s %-5s %6s %6s %s\n", "ID", "DATE", "IN", "OUT", "TOTAL", "OT", "NOTES")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range records {
		notes := r.Notes
		if rs := []rune(notes); len(rs) > 30 {
			notes = string(rs[:27]) + "..."
		}
		fmt.Fprintf(w, "%-8s %-10s %-5s %-5s %6s %6s %s\n",
			tui.ShortID(r.ID),
			r.WorkDate,
			r.In().Format("15:04"),
			r.Out().Format("15:04"),
			timemath.FormatHours(r.TotalH),
			timemath.FormatHours(r.OtH),
			notes)
	}
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintf(w, "%d days, %sh total, %sh overtime\n",
		agg.DayCount, timemath.FormatHours(agg.TotalHours), timemath.FormatHours(agg.OvertimeHours))
}

func init() {
	for _, c := range []*cobra.Command{listCmd, summaryCmd} {
		c.Flags().StringP("month", "m", "", "Month to show (yyyy-mm, default this month)")
		c.Flags().StringP("search", "s", "", "Only shifts whose date or notes contain this text")
	}
	listCmd.Flags().Bool("json", false, "Output as JSON")
	listCmd.Flags().Bool("no-ui", false, "Plain table output")

	weekCmd.Flags().StringP("date", "d", "", "Any date in the week (default today)")
	weekCmd.Flags().Bool("last", false, "Show the week before")
}
