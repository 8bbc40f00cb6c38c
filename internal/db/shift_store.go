package db

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/timemath"
)

var monthKeyRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Store owns the shift ledger: the closed records and the open-shift slot.
// It is the only writer of either.
type Store struct {
	mu    sync.Mutex
	db    *gorm.DB
	clock clock.Clock
	log   *slog.Logger
}

// ManualShift holds the fields of a manual add or edit
type ManualShift struct {
	WorkDate  string
	In        time.Time
	Out       time.Time
	Notes     string
	EditingID string // empty for a new shift
}

// NewStore creates a ledger store on top of an open database
func NewStore(db *gorm.DB, c clock.Clock, log *slog.Logger) *Store {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, clock: c, log: log}
}

// NewID mints a fresh shift identifier
func NewID() string {
	return uuid.NewString()
}

// ClockIn opens a new shift at the current instant
func (s *Store) ClockIn() (*models.OpenShift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var open models.OpenShift
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.OpenShift
		found, err := getJSON(tx, KeyOpenShift, &existing)
		if err != nil {
			return err
		}
		if found {
			return ErrAlreadyOpen
		}

		now := s.clock.Now()
		open = models.OpenShift{
			InMs:     now.UnixMilli(),
			WorkDate: timemath.WorkDateOf(now),
		}
		return setJSON(tx, KeyOpenShift, open)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("clocked in", slog.String("work_date", open.WorkDate))
	return &open, nil
}

// ClockOut closes the open shift and appends it to the ledger
func (s *Store) ClockOut() (*models.ShiftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec models.ShiftRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var open models.OpenShift
		found, err := getJSON(tx, KeyOpenShift, &open)
		if err != nil {
			return err
		}
		if !found {
			return ErrNoOpenShift
		}

		now := s.clock.Now()
		if now.UnixMilli() <= open.InMs {
			return ErrInvalidInterval
		}

		total, ot := timemath.Totals(open.In(), now, models.StandardHours)
		rec = models.ShiftRecord{
			ID:        NewID(),
			WorkDate:  open.WorkDate,
			InMs:      open.InMs,
			OutMs:     now.UnixMilli(),
			TotalH:    total,
			OtH:       ot,
			CreatedAt: now,
			UpdatedAt: now,
			IsManual:  false,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return setRaw(tx, KeyOpenShift, []byte("null"))
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("clocked out", slog.String("id", rec.ID), slog.Float64("total_h", rec.TotalH))
	return &rec, nil
}

// OpenShift returns the in-progress shift, if any. No open shift is not an error.
func (s *Store) OpenShift() (*models.OpenShift, error) {
	var open models.OpenShift
	found, err := getJSON(s.db, KeyOpenShift, &open)
	if err != nil || !found {
		return nil, err
	}
	return &open, nil
}

// UpsertManual validates and saves a manually entered or corrected shift
func (s *Store) UpsertManual(in ManualShift) (*models.ShiftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateManualFields(in); err != nil {
		return nil, err
	}

	var rec models.ShiftRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// One shift per work date
		q := tx.Model(&models.ShiftRecord{}).Where("work_date = ?", in.WorkDate)
		if in.EditingID != "" {
			q = q.Where("id <> ?", in.EditingID)
		}
		var clashes int64
		if err := q.Count(&clashes).Error; err != nil {
			return err
		}
		if clashes > 0 {
			return invalid("workDate", "a shift already exists for this work date, edit it instead (one shift per day)")
		}

		now := s.clock.Now()
		total, ot := timemath.Totals(in.In, in.Out, models.StandardHours)

		if in.EditingID != "" {
			if err := tx.First(&rec, "id = ?", in.EditingID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
		} else {
			rec = models.ShiftRecord{ID: NewID(), CreatedAt: now}
		}

		rec.WorkDate = in.WorkDate
		rec.InMs = in.In.UnixMilli()
		rec.OutMs = in.Out.UnixMilli()
		rec.TotalH = total
		rec.OtH = ot
		rec.Notes = in.Notes
		rec.UpdatedAt = now
		rec.IsManual = true

		return tx.Save(&rec).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("saved manual shift", slog.String("id", rec.ID), slog.String("work_date", rec.WorkDate))
	return &rec, nil
}

// validateManualFields checks the rules that need no ledger lookup, in order
func validateManualFields(in ManualShift) error {
	if strings.TrimSpace(in.WorkDate) == "" {
		return invalid("workDate", "work date is required")
	}
	if _, err := time.ParseInLocation(timemath.DateLayout, in.WorkDate, time.Local); err != nil {
		return invalid("workDate", fmt.Sprintf("work date %q must be YYYY-MM-DD", in.WorkDate))
	}
	if in.In.IsZero() {
		return invalid("in", "time in is required")
	}
	if in.Out.IsZero() {
		return invalid("out", "time out is required")
	}
	if in.Out.UnixMilli() <= in.In.UnixMilli() {
		return invalid("out", "time out must be after time in")
	}
	if inDate := timemath.WorkDateOf(in.In); inDate != in.WorkDate {
		return invalid("workDate", fmt.Sprintf("work date must match the local date of time in (%s)", inDate))
	}
	return nil
}

// Get retrieves a shift by ID
func (s *Store) Get(id string) (*models.ShiftRecord, error) {
	var rec models.ShiftRecord
	err := s.db.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Resolve finds the shift whose ID is ref or starts with it.
// A prefix matching more than one shift is a validation error.
func (s *Store) Resolve(ref string) (*models.ShiftRecord, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, invalid("id", "shift id is required")
	}
	if rec, err := s.Get(ref); !errors.Is(err, ErrNotFound) {
		return rec, err
	}

	var records []models.ShiftRecord
	if err := s.db.Where("id LIKE ?", ref+"%").Limit(2).Find(&records).Error; err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &records[0], nil
	}
	return nil, invalid("id", fmt.Sprintf("id prefix %q matches more than one shift", ref))
}

// Delete removes the shift with the given ID
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.Delete(&models.ShiftRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.log.Debug("deleted shift", slog.String("id", id))
	return nil
}

// All returns every record, most recent clock-in first
func (s *Store) All() ([]models.ShiftRecord, error) {
	var records []models.ShiftRecord
	if err := s.db.Order("in_ms DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Query returns the month's records matching search, most recent clock-in first.
// Search is a case-insensitive substring match on work date or notes.
func (s *Store) Query(monthKey, search string) ([]models.ShiftRecord, error) {
	if !monthKeyRegex.MatchString(monthKey) {
		return nil, invalid("month", fmt.Sprintf("month %q must be YYYY-MM", monthKey))
	}

	var records []models.ShiftRecord
	err := s.db.Where("work_date LIKE ?", monthKey+"-%").
		Order("in_ms DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return records, nil
	}
	filtered := records[:0]
	for _, r := range records {
		if strings.Contains(r.WorkDate, needle) || strings.Contains(strings.ToLower(r.Notes), needle) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// Range returns records with work dates in [fromDate, toDate), oldest first
func (s *Store) Range(fromDate, toDate string) ([]models.ShiftRecord, error) {
	var records []models.ShiftRecord
	err := s.db.Where("work_date >= ? AND work_date < ?", fromDate, toDate).
		Order("in_ms ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// HasRecordOn reports whether a closed shift exists for the work date
func (s *Store) HasRecordOn(workDate string) (bool, error) {
	var n int64
	err := s.db.Model(&models.ShiftRecord{}).Where("work_date = ?", workDate).Count(&n).Error
	return n > 0, err
}

// ReplaceAll swaps the whole ledger for records and clears any open shift.
// Records are stored as given; sanitizing is the caller's job.
func (s *Store) ReplaceAll(records []models.ShiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ShiftRecord{}).Error; err != nil {
			return err
		}
		if len(records) > 0 {
			if err := tx.CreateInBatches(records, 200).Error; err != nil {
				return err
			}
		}
		return setRaw(tx, KeyOpenShift, []byte("null"))
	})
	if err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}

	s.log.Info("ledger replaced", slog.Int("count", len(records)))
	return nil
}

// Wipe removes every record and the open shift
func (s *Store) Wipe() error {
	return s.ReplaceAll(nil)
}
