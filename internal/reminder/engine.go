package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/notify"
	"github.com/balkashynov/punch/internal/timemath"
)

// Ledger is the read side of the shift store the rules need
type Ledger interface {
	OpenShift() (*models.OpenShift, error)
	HasRecordOn(workDate string) (bool, error)
}

// SettingsSource provides the settings and persists the alert stamps
type SettingsSource interface {
	Load() (models.Settings, error)
	LoadStamps() (models.AlertStamps, error)
	SaveStamps(models.AlertStamps) error
}

// Engine evaluates the reminder rules against live state and delivers alerts
type Engine struct {
	ledger   Ledger
	settings SettingsSource
	sink     notify.Sink
	clock    clock.Clock
	log      *slog.Logger
}

// NewEngine wires the reminder engine
func NewEngine(ledger Ledger, settings SettingsSource, sink notify.Sink, c clock.Clock, log *slog.Logger) *Engine {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{ledger: ledger, settings: settings, sink: sink, clock: c, log: log}
}

// Tick runs one evaluation pass. Delivery failures are logged and do not stop
// the stamp from being recorded.
func (e *Engine) Tick(ctx context.Context) ([]Alert, error) {
	now := e.clock.Now()

	settings, err := e.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	stamps, err := e.settings.LoadStamps()
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder stamps: %w", err)
	}
	open, err := e.ledger.OpenShift()
	if err != nil {
		return nil, fmt.Errorf("failed to load open shift: %w", err)
	}
	hasToday, err := e.ledger.HasRecordOn(timemath.WorkDateOf(now))
	if err != nil {
		return nil, fmt.Errorf("failed to check today's shifts: %w", err)
	}

	alerts, next := Evaluate(now, State{
		Settings:       settings,
		Open:           open,
		HasRecordToday: hasToday,
		Stamps:         stamps,
	})

	for _, a := range alerts {
		if err := e.sink.Show(ctx, a.Title, a.Body); err != nil {
			e.log.Warn("notification failed", slog.String("kind", string(a.Kind)), slog.String("error", err.Error()))
			continue
		}
		e.log.Debug("notification sent", slog.String("kind", string(a.Kind)))
	}

	if next != stamps {
		if err := e.settings.SaveStamps(next); err != nil {
			return alerts, fmt.Errorf("failed to save reminder stamps: %w", err)
		}
	}
	return alerts, nil
}

// Scheduler runs the engine periodically at the configured interval
type Scheduler struct {
	engine   *Engine
	settings SettingsSource
	log      *slog.Logger
	unit     time.Duration // length of one interval step, a minute outside tests
}

// NewScheduler creates a scheduler for engine
func NewScheduler(engine *Engine, settings SettingsSource, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{engine: engine, settings: settings, log: log, unit: time.Minute}
}

// Run ticks immediately and then every intervalMin minutes until ctx is done.
// The interval is re-read after every tick.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if _, err := s.engine.Tick(ctx); err != nil {
			s.log.Error("reminder tick failed", slog.String("error", err.Error()))
		}

		wait := s.interval()
		s.log.Debug("next reminder check", slog.Duration("in", wait))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("reminders stopped")
			return nil
		case <-timer.C:
		}
	}
}

func (s *Scheduler) interval() time.Duration {
	minutes := models.DefaultSettings().IntervalMin
	if settings, err := s.settings.Load(); err != nil {
		s.log.Warn("using default reminder interval", slog.String("error", err.Error()))
	} else if settings.IntervalMin >= 1 {
		minutes = settings.IntervalMin
	} else {
		minutes = 1
	}
	return time.Duration(minutes) * s.unit
}
