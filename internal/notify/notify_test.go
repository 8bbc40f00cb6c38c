package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingSink struct {
	err   error
	shown []string
}

func (r *recordingSink) RequestPermission(ctx context.Context) error { return r.err }

func (r *recordingSink) Show(ctx context.Context, title, body string) error {
	if r.err != nil {
		return r.err
	}
	r.shown = append(r.shown, title+": "+body)
	return nil
}

func TestDesktopUnsupported(t *testing.T) {
	d := &Desktop{
		lookPath: func(string) (string, error) { return "", errors.New("not found") },
		run: func(ctx context.Context, name string, args ...string) error {
			t.Fatalf("run called without a notifier")
			return nil
		},
	}
	if err := d.RequestPermission(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("RequestPermission error = %v, want ErrUnsupported", err)
	}
	if err := d.Show(context.Background(), "Time Tracker", "hi"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Show error = %v, want ErrUnsupported", err)
	}
}

func TestDesktopShow(t *testing.T) {
	var gotName string
	var gotArgs []string
	d := &Desktop{
		lookPath: func(name string) (string, error) { return "/usr/bin/" + name, nil },
		run: func(ctx context.Context, name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		},
	}
	if err := d.Show(context.Background(), "Time Tracker", "Consider clocking out."); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if gotName != "notify-send" && gotName != "osascript" {
		t.Fatalf("ran %q", gotName)
	}
	if !strings.Contains(strings.Join(gotArgs, " "), "Consider clocking out.") {
		t.Errorf("args %v missing body", gotArgs)
	}
}

func TestTerminalShow(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTerminal(&buf).Show(context.Background(), "Time Tracker", "Backup due"); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if !strings.Contains(buf.String(), "Backup due") {
		t.Errorf("output %q missing body", buf.String())
	}
}

func TestFallback(t *testing.T) {
	broken := &recordingSink{err: ErrUnsupported}
	working := &recordingSink{}

	f := Fallback{broken, working}
	if err := f.RequestPermission(context.Background()); err != nil {
		t.Errorf("RequestPermission: %v", err)
	}
	if err := f.Show(context.Background(), "t", "b"); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if len(working.shown) != 1 {
		t.Errorf("working sink shown %v", working.shown)
	}

	if err := (Fallback{broken}).Show(context.Background(), "t", "b"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("all-broken Show error = %v", err)
	}
	if err := (Fallback{}).Show(context.Background(), "t", "b"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("empty Show error = %v", err)
	}
}
