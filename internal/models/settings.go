package models

import "time"

// StandardHours is the daily threshold above which hours count as overtime
const StandardHours = 8.5

// Settings holds the user-tunable reminder configuration
type Settings struct {
	NoInTime             string     `json:"noInTime"`     // HH:MM after which a missing clock-in is reported
	TooLongHours         float64    `json:"tooLongHours"` // open-shift duration that triggers a warning
	IntervalMin          int        `json:"intervalMin"`  // reminder poll interval, >= 1
	BackupDays           int        `json:"backupDays"`   // 0 disables the backup reminder
	LastBackupISO        *time.Time `json:"lastBackupISO"`
	NotificationsEnabled bool       `json:"notificationsEnabled"`
}

// DefaultSettings returns the settings used before anything is persisted
func DefaultSettings() Settings {
	return Settings{
		NoInTime:     "09:15",
		TooLongHours: 10,
		IntervalMin:  5,
		BackupDays:   7,
	}
}

// AlertStamps remembers, per reminder kind, the key it last fired for
type AlertStamps struct {
	LastFiredNoIn    string `json:"lastFiredNoIn"`
	LastFiredTooLong string `json:"lastFiredTooLong"`
	LastFiredBackup  string `json:"lastFiredBackup"`
}
