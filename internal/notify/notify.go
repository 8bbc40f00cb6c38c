package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ErrUnsupported is returned when the host has no way to show notifications
var ErrUnsupported = errors.New("notifications not supported here")

// Sink delivers user-facing reminders
type Sink interface {
	// RequestPermission checks that notifications can be shown
	RequestPermission(ctx context.Context) error
	// Show delivers one notification
	Show(ctx context.Context, title, body string) error
}

// Desktop shows notifications through notify-send on Linux or osascript on macOS
type Desktop struct {
	// lookPath and run are replaced in tests
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewDesktop returns a sink backed by the host notification daemon
func NewDesktop() *Desktop {
	return &Desktop{
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

func (d *Desktop) command(title, body string) (string, []string, error) {
	if runtime.GOOS == "darwin" {
		if _, err := d.lookPath("osascript"); err != nil {
			return "", nil, ErrUnsupported
		}
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(body), strconv.Quote(title))
		return "osascript", []string{"-e", script}, nil
	}
	if _, err := d.lookPath("notify-send"); err != nil {
		return "", nil, ErrUnsupported
	}
	return "notify-send", []string{"--app-name=punch", title, body}, nil
}

// RequestPermission reports ErrUnsupported when no notifier binary is installed
func (d *Desktop) RequestPermission(ctx context.Context) error {
	_, _, err := d.command("", "")
	return err
}

// Show sends the notification to the desktop
func (d *Desktop) Show(ctx context.Context, title, body string) error {
	name, args, err := d.command(title, body)
	if err != nil {
		return err
	}
	if err := d.run(ctx, name, args...); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A78BFA"))
	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E6EAF2"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)
)

// Terminal prints notifications as a styled box
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal writes notifications to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// RequestPermission always succeeds
func (t *Terminal) RequestPermission(ctx context.Context) error {
	return nil
}

// Show prints the notification
func (t *Terminal) Show(ctx context.Context, title, body string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	box := boxStyle.Render(titleStyle.Render(title) + "\n" + bodyStyle.Render(body))
	_, err := fmt.Fprintln(t.w, box)
	return err
}

// Log records notifications in the structured log
type Log struct {
	log *slog.Logger
}

// NewLog returns a sink writing to log
func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

// RequestPermission always succeeds
func (l *Log) RequestPermission(ctx context.Context) error {
	return nil
}

// Show logs the notification at info level
func (l *Log) Show(ctx context.Context, title, body string) error {
	l.log.InfoContext(ctx, "notification", slog.String("title", title), slog.String("body", body))
	return nil
}

// Fallback tries each sink in order and stops at the first that succeeds
type Fallback []Sink

// RequestPermission succeeds when any sink grants permission
func (f Fallback) RequestPermission(ctx context.Context) error {
	var errs []error
	for _, s := range f {
		err := s.RequestPermission(ctx)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return ErrUnsupported
	}
	return errors.Join(errs...)
}

// Show delivers through the first sink that accepts the notification
func (f Fallback) Show(ctx context.Context, title, body string) error {
	var errs []error
	for _, s := range f {
		err := s.Show(ctx, title, body)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return ErrUnsupported
	}
	return errors.Join(errs...)
}
