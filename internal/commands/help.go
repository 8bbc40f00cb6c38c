package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show comprehensive help for punch",
	Long:  `Display detailed help for all punch commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		showCustomHelp(cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the punch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "punch %s (commit %s, built %s)\n", version, commit, date)
	},
}

func showCustomHelp(w io.Writer) {
	fmt.Fprint(w, `
██████╗ ██╗   ██╗███╗   ██╗ ██████╗██╗  ██╗
██╔══██╗██║   ██║████╗  ██║██╔════╝██║  ██║
██████╔╝██║   ██║██╔██╗ ██║██║     ███████║
██╔═══╝ ██║   ██║██║╚██╗██║██║     ██╔══██║
██║     ╚██████╔╝██║ ╚████║╚██████╗██║  ██║
╚═╝      ╚═════╝ ╚═╝  ╚═══╝ ╚═════╝╚═╝  ╚═╝

punch - CLI Work Shift Tracker

COMMANDS:

  in                      Clock in and start a shift
    --no-ui               Skip the interactive timer
  out                     Clock out and record the shift
  status                  Show the running shift
    -w, --watch           Open the interactive timer

  add [line]              Record a shift manually
    -d, --date            Work date (yyyy-mm-dd, dd/mm/yyyy, today, yesterday, 3 days ago)
    --in, --out           HH:MM, or 'yyyy-mm-dd HH:MM'
    -n, --notes           Notes
    -i, --interactive     Open the form prefilled with the flags
    --no-ui               Never open the form

    Quick syntax:
      <date> <HH:MM>-<HH:MM> [notes]
      An end time earlier than the start time ends on the next day.

    Example:
      punch add yesterday 22:00-06:00 night shift

  edit <id>               Edit a shift (id or unique prefix)
    same flags as add     Only the given fields change; none opens the form
  rm <id>                 Delete a shift

  ls                      Browse a month with totals
    -m, --month           Month (yyyy-mm)
    -s, --search          Filter by date or notes
    --no-ui               Plain table
    --json                JSON output

    Quick actions:
      ↑/↓           Select shift
      ←/→           Previous/next month
      /             Search
      e             Edit selected shift
      d             Delete selected shift
      esc/q         Quit

  summary                 Month totals (--month, --search)
  week                    Hours per day for a week (--date, --last)
  export                  Month as CSV (--month, --search, -o file or -)

  backup                  JSON backup of every shift (-o file or -)
  restore <file>          Replace every shift with a backup
  wipe --yes              Delete every shift

  settings                Show or change reminder settings
    --no-in-time          Remind if not clocked in by HH:MM
    --too-long            Warn after this many hours on shift
    --interval            Minutes between checks
    --backup-days         Days between backup reminders, 0 for never
  notify                  Turn notifications on (--off to turn off)
  remind                  Watch for reminders until Ctrl+C
    --once                Run one check and exit
    --sink                auto, desktop, terminal or log

  version                 Print version
  help                    Show this help

GLOBAL FLAGS:
  --db                    Database file (default $PUNCH_DB or ~/.punch/punch.db)
  -v, --verbose           Debug logging on stderr

`)
}
