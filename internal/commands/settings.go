package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/timemath"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change reminder settings",
	Long: `Show the reminder settings, or change them with flags.

Examples:
  punch settings
  punch settings --no-in-time 09:30 --too-long 11
  punch settings --interval 10 --backup-days 0   # 0 turns the backup reminder off`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		flags := cmd.Flags()
		changed := flags.Changed("no-in-time") || flags.Changed("too-long") ||
			flags.Changed("interval") || flags.Changed("backup-days")

		var (
			settings models.Settings
			err      error
		)
		if changed {
			settings, err = a.settings.Update(func(s *models.Settings) {
				if flags.Changed("no-in-time") {
					s.NoInTime, _ = flags.GetString("no-in-time")
				}
				if flags.Changed("too-long") {
					s.TooLongHours, _ = flags.GetFloat64("too-long")
				}
				if flags.Changed("interval") {
					s.IntervalMin, _ = flags.GetInt("interval")
				}
				if flags.Changed("backup-days") {
					s.BackupDays, _ = flags.GetInt("backup-days")
				}
			})
		} else {
			settings, err = a.settings.Load()
		}
		if err != nil {
			fail(cmd, err)
			return
		}
		if changed {
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
		}
		printSettings(cmd.OutOrStdout(), settings)
	}),
}

func printSettings(w io.Writer, s models.Settings) {
	backupLine := "off"
	if s.BackupDays > 0 {
		last := "never"
		if s.LastBackupISO != nil {
			last = s.LastBackupISO.Local().Format("2006-01-02 15:04")
		}
		backupLine = fmt.Sprintf("every %d days (last: %s)", s.BackupDays, last)
	}
	notifications := "off"
	if s.NotificationsEnabled {
		notifications = "on"
	}

	fmt.Fprintf(w, "Missed clock-in after: %s\n", s.NoInTime)
	fmt.Fprintf(w, "Too long after:        %sh\n", timemath.FormatHours(s.TooLongHours))
	fmt.Fprintf(w, "Check every:           %d min\n", s.IntervalMin)
	fmt.Fprintf(w, "Backup reminder:       %s\n", backupLine)
	fmt.Fprintf(w, "Notifications:         %s\n", notifications)
}

func init() {
	settingsCmd.Flags().String("no-in-time", "", "Remind if not clocked in by HH:MM")
	settingsCmd.Flags().Float64("too-long", 0, "Warn when a shift runs longer than this many hours")
	settingsCmd.Flags().Int("interval", 0, "Minutes between reminder checks")
	settingsCmd.Flags().Int("backup-days", 0, "Remind to back up after this many days, 0 for never")
}
