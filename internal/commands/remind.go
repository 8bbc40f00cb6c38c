package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/notify"
	"github.com/balkashynov/punch/internal/reminder"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Turn reminder notifications on or off",
	Long: `Turn reminder notifications on. punch checks that notifications can be shown
and sends a confirmation. Use --off to turn them off again.

Examples:
  punch notify
  punch notify --sink terminal
  punch notify --off`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		if off, _ := cmd.Flags().GetBool("off"); off {
			if err := a.settings.SetNotifications(false); err != nil {
				fail(cmd, err)
				return
			}
			fmt.Fprintln(out, "Notifications disabled.")
			return
		}

		sink, err := sinkFor(cmd, a.log)
		if err != nil {
			fail(cmd, err)
			return
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := sink.RequestPermission(ctx); err != nil {
			fail(cmd, fmt.Errorf("notifications unavailable: %w", err))
			return
		}
		if err := a.settings.SetNotifications(true); err != nil {
			fail(cmd, err)
			return
		}
		if err := sink.Show(ctx, reminder.Title, "Notifications enabled."); err != nil {
			a.log.Warn("confirmation notification failed", slog.String("error", err.Error()))
		}
		fmt.Fprintln(out, "Notifications enabled.")
	}),
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Watch for missed clock-ins, long shifts and stale backups",
	Long: `Check the reminder rules every few minutes (see 'punch settings') and show a
notification when you have not clocked in, have been clocked in too long,
or have not made a backup in a while. Each reminder fires once per day or shift.

Examples:
  punch remind                 # Run until Ctrl+C
  punch remind --once          # Check once, e.g. from cron
  punch remind --sink log      # Log reminders instead of showing them`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		out := cmd.OutOrStdout()
		settings, err := a.settings.Load()
		if err != nil {
			fail(cmd, err)
			return
		}
		if !settings.NotificationsEnabled {
			fmt.Fprintln(out, "Notifications are off. Run 'punch notify' to turn them on.")
			return
		}

		sink, err := sinkFor(cmd, a.log)
		if err != nil {
			fail(cmd, err)
			return
		}
		engine := reminder.NewEngine(a.store, a.settings, sink, a.clock, a.log)

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}

		if once, _ := cmd.Flags().GetBool("once"); once {
			alerts, err := engine.Tick(parent)
			if err != nil {
				fail(cmd, err)
				return
			}
			fmt.Fprintf(out, "%d reminder(s) sent\n", len(alerts))
			return
		}

		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(out, "Watching for reminders every %d min. Press Ctrl+C to stop.\n", settings.IntervalMin)
		if err := reminder.NewScheduler(engine, a.settings, a.log).Run(ctx); err != nil {
			fail(cmd, err)
		}
	}),
}

// sinkFor builds the notification sink named by --sink
func sinkFor(cmd *cobra.Command, log *slog.Logger) (notify.Sink, error) {
	name, _ := cmd.Flags().GetString("sink")
	switch name {
	case "", "auto":
		return notify.Fallback{notify.NewDesktop(), notify.NewTerminal(cmd.ErrOrStderr())}, nil
	case "desktop":
		return notify.NewDesktop(), nil
	case "terminal":
		return notify.NewTerminal(cmd.ErrOrStderr()), nil
	case "log":
		return notify.NewLog(log), nil
	}
	return nil, fmt.Errorf("unknown sink %q. Use auto, desktop, terminal or log", name)
}

func init() {
	for _, c := range []*cobra.Command{notifyCmd, remindCmd} {
		c.Flags().String("sink", "auto", "Where reminders go: auto, desktop, terminal, log")
	}
	notifyCmd.Flags().Bool("off", false, "Turn notifications off")
	remindCmd.Flags().Bool("once", false, "Run one check and exit")
}
