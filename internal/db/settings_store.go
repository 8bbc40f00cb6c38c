package db

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/timemath"
)

// SettingsStore persists the reminder settings and the alert stamps
type SettingsStore struct {
	mu  sync.Mutex
	db  *gorm.DB
	log *slog.Logger
}

// NewSettingsStore wraps an open database
func NewSettingsStore(db *gorm.DB, log *slog.Logger) *SettingsStore {
	if log == nil {
		log = slog.Default()
	}
	return &SettingsStore{db: db, log: log}
}

// Load returns the persisted settings merged over the defaults
func (s *SettingsStore) Load() (models.Settings, error) {
	settings := models.DefaultSettings()
	if _, err := getJSON(s.db, KeySettings, &settings); err != nil {
		return models.DefaultSettings(), err
	}
	return settings, nil
}

// Save normalizes and persists settings, returning what was stored
func (s *SettingsStore) Save(settings models.Settings) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized, err := NormalizeSettings(settings)
	if err != nil {
		return settings, err
	}
	if err := setJSON(s.db, KeySettings, normalized); err != nil {
		return settings, err
	}
	s.log.Debug("settings saved",
		slog.String("no_in_time", normalized.NoInTime),
		slog.Int("interval_min", normalized.IntervalMin))
	return normalized, nil
}

// Update loads the settings, applies fn and saves the result
func (s *SettingsStore) Update(fn func(*models.Settings)) (models.Settings, error) {
	current, err := s.Load()
	if err != nil {
		return current, err
	}
	fn(&current)
	return s.Save(current)
}

// MarkBackup records that a backup was written at t
func (s *SettingsStore) MarkBackup(t time.Time) error {
	_, err := s.Update(func(st *models.Settings) {
		utc := t.UTC()
		st.LastBackupISO = &utc
	})
	return err
}

// SetNotifications turns reminder delivery on or off
func (s *SettingsStore) SetNotifications(enabled bool) error {
	_, err := s.Update(func(st *models.Settings) {
		st.NotificationsEnabled = enabled
	})
	return err
}

// LoadStamps returns the reminder stamps, zero-valued when none are stored
func (s *SettingsStore) LoadStamps() (models.AlertStamps, error) {
	var stamps models.AlertStamps
	if _, err := getJSON(s.db, KeyAlertStamps, &stamps); err != nil {
		return models.AlertStamps{}, err
	}
	return stamps, nil
}

// SaveStamps persists the reminder stamps
func (s *SettingsStore) SaveStamps(stamps models.AlertStamps) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setJSON(s.db, KeyAlertStamps, stamps)
}

// NormalizeSettings applies the defaults and lower bounds, rejecting a malformed
// clock-in time
func NormalizeSettings(st models.Settings) (models.Settings, error) {
	st.NoInTime = strings.TrimSpace(st.NoInTime)
	if st.NoInTime == "" {
		st.NoInTime = models.DefaultSettings().NoInTime
	}
	if _, ok := timemath.ParseTimeOfDay(st.NoInTime); !ok {
		return st, invalid("noInTime", fmt.Sprintf("clock-in reminder time %q must be HH:MM", st.NoInTime))
	}
	if st.TooLongHours <= 0 {
		st.TooLongHours = models.DefaultSettings().TooLongHours
	}
	if st.IntervalMin == 0 {
		st.IntervalMin = models.DefaultSettings().IntervalMin
	}
	if st.IntervalMin < 1 {
		st.IntervalMin = 1
	}
	if st.BackupDays < 0 {
		st.BackupDays = 0
	}
	return st, nil
}
