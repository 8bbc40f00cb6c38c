package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/timemath"
	"github.com/balkashynov/punch/internal/tui"
)

var inCmd = &cobra.Command{
	Use:   "in",
	Short: "Clock in and start a shift",
	Long: `Clock in now. Opens the interactive shift timer by default, use --no-ui for a plain clock-in.

Examples:
  punch in           # Clock in and watch the timer
  punch in --no-ui   # Clock in and return`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		open, err := a.store.ClockIn()
		if err != nil {
			fail(cmd, err)
			return
		}

		noUI, _ := cmd.Flags().GetBool("no-ui")
		if noUI {
			fmt.Fprintf(out, "Clocked in at %s (work date %s)\n", open.In().Format("15:04"), open.WorkDate)
			return
		}

		settings, err := a.settings.Load()
		if err != nil {
			fail(cmd, err)
			return
		}
		if err := tui.RunTimerTUI(out, *open, a.clock, settings.TooLongHours, a.store); err != nil {
			fail(cmd, err)
		}
	}),
}

var outCmd = &cobra.Command{
	Use:   "out",
	Short: "Clock out and record the shift",
	Args:  cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		rec, err := a.store.ClockOut()
		if err != nil {
			fail(cmd, err)
			return
		}
		tui.PrintClockOut(cmd.OutOrStdout(), rec)
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running shift",
	Long: `Show whether a shift is running and for how long.

Examples:
  punch status          # One-line status
  punch status --watch  # Open the interactive timer for the running shift`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		open, err := a.store.OpenShift()
		if err != nil {
			fail(cmd, err)
			return
		}
		if open == nil {
			fmt.Fprintln(out, "Not clocked in. Use 'punch in' to start a shift.")
			return
		}

		settings, err := a.settings.Load()
		if err != nil {
			fail(cmd, err)
			return
		}

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			if err := tui.RunTimerTUI(out, *open, a.clock, settings.TooLongHours, a.store); err != nil {
				fail(cmd, err)
			}
			return
		}

		now := a.clock.Now()
		fmt.Fprintf(out, "On shift since %s (work date %s)\n", open.In().Format("15:04"), open.WorkDate)
		fmt.Fprintf(out, "Elapsed: %s\n", tui.FormatRunning(*open, now))
		if h := timemath.ElapsedHours(open.In(), now); h >= settings.TooLongHours {
			fmt.Fprintf(out, "Warning: clocked in for more than %sh\n", timemath.FormatHours(settings.TooLongHours))
		}
	}),
}

func init() {
	inCmd.Flags().Bool("no-ui", false, "Clock in without the interactive timer")
	statusCmd.Flags().BoolP("watch", "w", false, "Open the interactive timer")
}
