package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/parser"
	"github.com/balkashynov/punch/internal/tui"
)

var addCmd = &cobra.Command{
	Use:   "add [date in-out notes]",
	Short: "Record a shift manually",
	Long: `Record a shift you forgot to clock, either from one line or with flags.
Without enough information the interactive form opens.

Quick syntax:
  <date> <HH:MM>-<HH:MM> [notes]
  An end time earlier than the start time ends on the next day.

Examples:
  punch add 2024-02-01 08:00-17:30 client visit
  punch add yesterday 22:00-06:00 night shift
  punch add --date 2024-02-01 --in 08:00 --out 17:30 --notes "client visit"
  punch add                          # Interactive form
  punch add -i --date yesterday      # Form with the date filled in`,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		noUI, _ := cmd.Flags().GetBool("no-ui")
		now := a.clock.Now()

		if len(args) > 0 {
			parsed := parser.ParseShiftLine(strings.Join(args, " "), now)
			if len(parsed.Errors) > 0 {
				for _, e := range parsed.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "Error: %s\n", e)
				}
				return
			}
			saveManual(cmd, a, db.ManualShift{
				WorkDate: parsed.WorkDate,
				In:       parsed.In,
				Out:      parsed.Out,
				Notes:    parsed.Notes,
			}, "Added")
			return
		}

		f := shiftFlagsOf(cmd)
		interactive, _ := cmd.Flags().GetBool("interactive")
		if !interactive && (f.complete() || noUI) {
			ms, err := f.manual(now)
			if err != nil {
				fail(cmd, err)
				return
			}
			saveManual(cmd, a, ms, "Added")
			return
		}

		model := tui.NewShiftFormModel(a.store, now, f.prefilled())
		if _, err := tui.RunShiftFormTUI(cmd.OutOrStdout(), model); err != nil {
			fail(cmd, err)
		}
	}),
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a recorded shift",
	Long: `Edit a shift by its id or a unique id prefix (as shown by 'punch ls').

With flags only the given fields change. Without flags the interactive form
opens prefilled with the current values.

Examples:
  punch edit 3f2a9c1d --out 18:00
  punch edit 3f2a --notes "on call"
  punch edit 3f2a                    # Interactive form`,
	Args: cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		rec, err := a.store.Resolve(args[0])
		if err != nil {
			fail(cmd, fmt.Errorf("shift %q: %w", args[0], err))
			return
		}

		f := shiftFlagsOf(cmd)
		if !f.any() {
			model := tui.NewEditShiftFormModel(a.store, a.clock.Now(), *rec)
			if _, err := tui.RunShiftFormTUI(cmd.OutOrStdout(), model); err != nil {
				fail(cmd, err)
			}
			return
		}

		// Unset flags keep the stored values; a new date moves the stored times with it
		layout := "2006-01-02 15:04"
		if f.date != "" {
			layout = "15:04"
		} else {
			f.date = rec.WorkDate
		}
		if f.in == "" {
			f.in = rec.In().Format(layout)
		}
		if f.out == "" {
			f.out = rec.Out().Format(layout)
		}
		if !f.notesSet {
			f.notes = rec.Notes
		}
		ms, err := f.manual(a.clock.Now())
		if err != nil {
			fail(cmd, err)
			return
		}
		ms.EditingID = rec.ID
		saveManual(cmd, a, ms, "Updated")
	}),
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a recorded shift",
	Args:    cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		rec, err := a.store.Resolve(args[0])
		if err != nil {
			fail(cmd, fmt.Errorf("shift %q: %w", args[0], err))
			return
		}
		if err := a.store.Delete(rec.ID); err != nil {
			fail(cmd, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted shift %s on %s\n", tui.ShortID(rec.ID), rec.WorkDate)
	}),
}

func saveManual(cmd *cobra.Command, a *app, ms db.ManualShift, verb string) {
	rec, err := a.store.UpsertManual(ms)
	if err != nil {
		fail(cmd, err)
		return
	}
	tui.PrintSaved(cmd.OutOrStdout(), verb, rec)
}

// shiftFlags are the --date/--in/--out/--notes values of add and edit
type shiftFlags struct {
	date     string
	in       string
	out      string
	notes    string
	notesSet bool
}

func shiftFlagsOf(cmd *cobra.Command) shiftFlags {
	var f shiftFlags
	f.date, _ = cmd.Flags().GetString("date")
	f.in, _ = cmd.Flags().GetString("in")
	f.out, _ = cmd.Flags().GetString("out")
	f.notes, _ = cmd.Flags().GetString("notes")
	f.notesSet = cmd.Flags().Changed("notes")
	return f
}

func (f shiftFlags) any() bool {
	return f.date != "" || f.in != "" || f.out != "" || f.notesSet
}

func (f shiftFlags) complete() bool {
	return f.in != "" && f.out != ""
}

func (f shiftFlags) prefilled() map[string]string {
	prefilled := make(map[string]string)
	if f.date != "" {
		prefilled["date"] = f.date
	}
	if f.in != "" {
		prefilled["in"] = f.in
	}
	if f.out != "" {
		prefilled["out"] = f.out
	}
	if f.notes != "" {
		prefilled["notes"] = f.notes
	}
	return prefilled
}

// manual turns the flags into a shift. The date defaults to today. Times are
// HH:MM on the work date or a full "yyyy-mm-dd HH:MM"; a bare out time not
// after the in time ends on the next day.
func (f shiftFlags) manual(now time.Time) (db.ManualShift, error) {
	dateInput := f.date
	if dateInput == "" {
		dateInput = "today"
	}
	workDate, err := parser.ParseWorkDate(dateInput, now)
	if err != nil {
		return db.ManualShift{}, err
	}
	if f.in == "" {
		return db.ManualShift{}, fmt.Errorf("--in is required")
	}
	if f.out == "" {
		return db.ManualShift{}, fmt.Errorf("--out is required")
	}

	in, _, err := instant(workDate, f.in)
	if err != nil {
		return db.ManualShift{}, err
	}
	out, bare, err := instant(workDate, f.out)
	if err != nil {
		return db.ManualShift{}, err
	}
	if bare && !out.After(in) {
		out = out.AddDate(0, 0, 1)
	}
	return db.ManualShift{WorkDate: workDate, In: in, Out: out, Notes: strings.TrimSpace(f.notes)}, nil
}

// instant parses HH:MM on workDate or a full date and time; bare is true for HH:MM
func instant(workDate, value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if strings.ContainsAny(value, " T") {
		t, err := parser.ParseDateTime(value)
		return t, false, err
	}
	t, err := parser.At(workDate, value)
	return t, true, err
}

func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringP("date", "d", "", "Work date (yyyy-mm-dd, dd/mm/yyyy, today, yesterday)")
		c.Flags().String("in", "", "Clock-in time, HH:MM or 'yyyy-mm-dd HH:MM'")
		c.Flags().String("out", "", "Clock-out time, HH:MM or 'yyyy-mm-dd HH:MM'")
		c.Flags().StringP("notes", "n", "", "Notes for the shift")
	}
	addCmd.Flags().BoolP("interactive", "i", false, "Open the interactive form prefilled with the flags")
	addCmd.Flags().Bool("no-ui", false, "Never open the interactive form")
}
