package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
)

type captureSink struct {
	mu     sync.Mutex
	err    error
	bodies []string
}

func (c *captureSink) RequestPermission(ctx context.Context) error { return nil }

func (c *captureSink) Show(ctx context.Context, title, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies = append(c.bodies, body)
	return c.err
}

func (c *captureSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bodies)
}

type fixture struct {
	store    *db.Store
	settings *db.SettingsStore
	clock    *clock.Mock
	sink     *captureSink
	engine   *Engine
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	gdb, err := db.Open(filepath.Join(t.TempDir(), "punch.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close(gdb) })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewMock(now)
	f := &fixture{
		store:    db.NewStore(gdb, clk, log),
		settings: db.NewSettingsStore(gdb, log),
		clock:    clk,
		sink:     &captureSink{},
	}
	if err := f.settings.SetNotifications(true); err != nil {
		t.Fatalf("SetNotifications: %v", err)
	}
	f.engine = NewEngine(f.store, f.settings, f.sink, clk, log)
	return f
}

func localTime(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestMissedClockInFiresOncePerDay(t *testing.T) {
	f := newFixture(t, localTime(2024, 2, 1, 9, 30))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.engine.Tick(ctx); err != nil {
			t.Fatalf("Tick %d: %v", i, err)
		}
		f.clock.Advance(5 * time.Minute)
	}
	if f.sink.count() != 1 {
		t.Fatalf("notifications on day one = %d, want 1", f.sink.count())
	}

	stamps, err := f.settings.LoadStamps()
	if err != nil {
		t.Fatalf("LoadStamps: %v", err)
	}
	if stamps.LastFiredNoIn != "2024-02-01" {
		t.Errorf("stamp = %q, want 2024-02-01", stamps.LastFiredNoIn)
	}

	// next day it may fire again
	f.clock.Set(localTime(2024, 2, 2, 10, 0))
	if _, err := f.engine.Tick(ctx); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if f.sink.count() != 2 {
		t.Errorf("notifications after day two = %d, want 2", f.sink.count())
	}
}

func TestClockInSilencesReminder(t *testing.T) {
	f := newFixture(t, localTime(2024, 2, 1, 8, 55))

	if _, err := f.store.ClockIn(); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	f.clock.Set(localTime(2024, 2, 1, 9, 30))
	alerts, err := f.engine.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(alerts) != 0 || f.sink.count() != 0 {
		t.Errorf("alerts = %v, want none", alerts)
	}
}

func TestTickStampsDespiteSinkFailure(t *testing.T) {
	f := newFixture(t, localTime(2024, 2, 1, 9, 30))
	f.sink.err = errors.New("daemon down")

	alerts, err := f.engine.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("alerts = %v, want one", alerts)
	}

	if _, err := f.engine.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if f.sink.count() != 1 {
		t.Errorf("delivery attempts = %d, want 1", f.sink.count())
	}
}

func TestSchedulerRunsUntilCancelled(t *testing.T) {
	f := newFixture(t, localTime(2024, 2, 1, 9, 30))
	if _, err := f.settings.Update(func(s *models.Settings) { s.IntervalMin = 1 }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	sched := NewScheduler(f.engine, f.settings, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sched.unit = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for f.sink.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("scheduler never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	// further ticks on the same day stay silent
	if f.sink.count() != 1 {
		t.Errorf("notifications = %d, want 1", f.sink.count())
	}
}
