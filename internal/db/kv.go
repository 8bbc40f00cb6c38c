package db

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/punch/internal/models"
)

// Keys of the single-value slots
const (
	KeyOpenShift   = "open_shift"
	KeySettings    = "settings"
	KeyAlertStamps = "alert_stamps"
)

// KV is a key/value slot store. Each Set is a single atomic upsert.
type KV struct {
	db *gorm.DB
}

// NewKV wraps a database handle
func NewKV(db *gorm.DB) *KV {
	return &KV{db: db}
}

// Get returns the raw value under key, or nil when nothing is stored
func (kv *KV) Get(key string) ([]byte, error) {
	return getRaw(kv.db, key)
}

// Set stores raw under key, replacing any previous value
func (kv *KV) Set(key string, raw []byte) error {
	return setRaw(kv.db, key, raw)
}

func getRaw(tx *gorm.DB, key string) ([]byte, error) {
	var entry models.KVEntry
	err := tx.Where(&models.KVEntry{Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

func setRaw(tx *gorm.DB, key string, raw []byte) error {
	entry := models.KVEntry{Key: key, Value: string(raw)}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// getJSON decodes the value under key into v. It reports false when the slot is
// empty or holds JSON null.
func getJSON(tx *gorm.DB, key string, v any) (bool, error) {
	raw, err := getRaw(tx, key)
	if err != nil || raw == nil || string(raw) == "null" {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("corrupt %s value: %w", key, err)
	}
	return true, nil
}

func setJSON(tx *gorm.DB, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return setRaw(tx, key, raw)
}
