package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/db"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	dbPath  string
	verbose bool

	// appClock is replaced in tests
	appClock clock.Clock = clock.System{}
)

var rootCmd = &cobra.Command{
	Use:   "punch",
	Short: "A CLI work-shift tracker",
	Long: `punch records when you clock in and out, keeps a ledger of worked shifts
with overtime, reminds you when you forget to clock in or stay too long,
and exports monthly reports and JSON backups, all from the terminal.`,
	SilenceUsage: true,
}

// app is what a command gets once the database is open
type app struct {
	db       *gorm.DB
	store    *db.Store
	settings *db.SettingsStore
	clock    clock.Clock
	log      *slog.Logger
}

// newLogger writes text logs to w at info level, debug when verbose
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openApp opens the database named by --db, PUNCH_DB or the default path
func openApp(cmd *cobra.Command) (*app, error) {
	log := newLogger(cmd.ErrOrStderr())

	path, err := db.ResolvePath(dbPath)
	if err != nil {
		return nil, err
	}
	gdb, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	log.Debug("database opened", slog.String("path", path))

	return &app{
		db:       gdb,
		store:    db.NewStore(gdb, appClock, log),
		settings: db.NewSettingsStore(gdb, log),
		clock:    appClock,
		log:      log,
	}, nil
}

func (a *app) close() {
	if err := db.Close(a.db); err != nil {
		a.log.Warn("failed to close database", slog.String("error", err.Error()))
	}
}

// withApp wraps a command function to open the database first
func withApp(fn func(*cobra.Command, []string, *app)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			fail(cmd, err)
			return
		}
		defer a.close()
		fn(cmd, args, a)
	}
}

// fail reports a command error the way every command does
func fail(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (default $PUNCH_DB or ~/.punch/punch.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(wipeCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
