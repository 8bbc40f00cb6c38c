package models

import (
	"time"
)

// ShiftRecord represents a closed work shift.
// JSON names match the backup file format.
type ShiftRecord struct {
	ID       string  `gorm:"primaryKey" json:"id"`
	WorkDate string  `gorm:"not null;index" json:"workDate"` // YYYY-MM-DD of the clock-in instant
	InMs     int64   `gorm:"not null;index" json:"inMs"`
	OutMs    int64   `gorm:"not null" json:"outMs"`
	TotalH   float64 `json:"totalH"`
	OtH      float64 `json:"otH"`
	Notes    string  `json:"notes"`

	// Timestamps come from the injected clock, never from gorm
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`

	IsManual bool `gorm:"default:false" json:"isManual"`
}

// TableName keeps the table name stable across renames of the struct
func (ShiftRecord) TableName() string {
	return "shifts"
}

// In returns the clock-in instant in local time
func (r ShiftRecord) In() time.Time {
	return time.UnixMilli(r.InMs).Local()
}

// Out returns the clock-out instant in local time
func (r ShiftRecord) Out() time.Time {
	return time.UnixMilli(r.OutMs).Local()
}

// OpenShift is the in-progress shift between clock-in and clock-out
type OpenShift struct {
	InMs     int64  `json:"inMs"`
	WorkDate string `json:"workDate"`
}

// In returns the clock-in instant in local time
func (o OpenShift) In() time.Time {
	return time.UnixMilli(o.InMs).Local()
}

// KVEntry is a single persisted value addressed by key
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName for the key/value slot table
func (KVEntry) TableName() string {
	return "kv_entries"
}
