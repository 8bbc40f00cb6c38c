package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/backup"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month as CSV",
	Long: `Export the shifts of a month as CSV with the columns
Date, TimeIn, TimeOut, TotalHours, OvertimeHours, Notes.

Examples:
  punch export                        # This month to time-tracker-YYYYMM.csv
  punch export --month 2024-02 -o -   # February to stdout
  punch export --search client`,
	Args: cobra.NoArgs,
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

		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			path = report.CSVFileName(monthKey)
		}
		err = writeTo(cmd, path, func(w io.Writer) error {
			return report.WriteCSV(w, report.ToCSVRows(records))
		})
		if err != nil {
			fail(cmd, err)
			return
		}
		if path != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d shifts to %s\n", len(records), path)
		}
	}),
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a JSON backup of every shift",
	Long: `Write every recorded shift to a JSON backup file and remember when it was made.

Examples:
  punch backup                    # time-tracker-backup-YYYYMMDD.json in this directory
  punch backup -o ~/shifts.json`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		now := a.clock.Now()
		records, err := a.store.All()
		if err != nil {
			fail(cmd, err)
			return
		}
		data, err := backup.Marshal(backup.Serialize(records, now))
		if err != nil {
			fail(cmd, err)
			return
		}

		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			path = backup.FileName(now)
		}
		err = writeTo(cmd, path, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})
		if err != nil {
			fail(cmd, err)
			return
		}
		if err := a.settings.MarkBackup(now); err != nil {
			fail(cmd, err)
			return
		}
		if path != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d shifts to %s\n", len(records), path)
		}
	}),
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace every shift with a JSON backup",
	Long: `Replace the whole ledger with the shifts in a backup file ("-" reads stdin).
Entries without a work date or clock times are skipped. A running shift is discarded.`,
	Args: cobra.ExactArgs(1),
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			fail(cmd, fmt.Errorf("failed to read backup: %w", err))
			return
		}

		records, err := backup.Deserialize(data, a.clock.Now(), db.NewID, a.log)
		if err != nil {
			fail(cmd, err)
			return
		}

		open, err := a.store.OpenShift()
		if err != nil {
			fail(cmd, err)
			return
		}
		if err := a.store.ReplaceAll(records); err != nil {
			fail(cmd, err)
			return
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Restored %d shifts from %s\n", len(records), args[0])
		if open != nil {
			fmt.Fprintf(out, "The shift running since %s was discarded.\n", open.In().Format("2006-01-02 15:04"))
		}
	}),
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every shift",
	Args:  cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintln(out, "This deletes every shift and the running one. Re-run with --yes to confirm.")
			return
		}
		if err := a.store.Wipe(); err != nil {
			fail(cmd, err)
			return
		}
		fmt.Fprintln(out, "All shifts deleted.")
	}),
}

// writeTo writes to path, or to the command's output for "-"
func writeTo(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	exportCmd.Flags().StringP("month", "m", "", "Month to export (yyyy-mm, default this month)")
	exportCmd.Flags().StringP("search", "s", "", "Only shifts whose date or notes contain this text")
	exportCmd.Flags().StringP("output", "o", "", "Output file, - for stdout")

	backupCmd.Flags().StringP("output", "o", "", "Output file, - for stdout")

	wipeCmd.Flags().Bool("yes", false, "Confirm deleting everything")
}
