package reminder

import (
	"fmt"
	"strconv"
	"time"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/timemath"
)

// Title is shown on every reminder notification
const Title = "Time Tracker"

// Kind identifies a reminder rule
type Kind string

const (
	KindMissedClockIn Kind = "missed_clock_in"
	KindTooLong       Kind = "too_long"
	KindStaleBackup   Kind = "stale_backup"
)

// Alert is a reminder that should be delivered now
type Alert struct {
	Kind  Kind
	Title string
	Body  string
}

// State is everything the rules look at besides the current time
type State struct {
	Settings       models.Settings
	Open           *models.OpenShift
	HasRecordToday bool
	Stamps         models.AlertStamps
}

// Evaluate applies the three reminder rules independently and returns the alerts
// to deliver along with the updated stamps. Each rule fires at most once per stamp.
func Evaluate(now time.Time, st State) ([]Alert, models.AlertStamps) {
	stamps := st.Stamps
	if !st.Settings.NotificationsEnabled {
		return nil, stamps
	}

	var alerts []Alert
	today := timemath.WorkDateOf(now)

	// Missed clock-in
	if target, ok := timemath.ParseTimeOfDay(st.Settings.NoInTime); ok {
		clockedInToday := st.HasRecordToday || (st.Open != nil && st.Open.WorkDate == today)
		if timemath.MinutesSinceMidnight(now) >= target && !clockedInToday && stamps.LastFiredNoIn != today {
			alerts = append(alerts, Alert{
				Kind:  KindMissedClockIn,
				Title: Title,
				Body:  "No clock-in recorded today. Did you forget to clock in?",
			})
			stamps.LastFiredNoIn = today
		}
	}

	// Open shift running too long, once per open shift per day
	if st.Open != nil {
		running := timemath.ElapsedHours(st.Open.In(), now)
		limit := st.Settings.TooLongHours
		if limit <= 0 {
			limit = models.DefaultSettings().TooLongHours
		}
		stamp := st.Open.WorkDate + ":" + today
		if running >= limit && stamps.LastFiredTooLong != stamp {
			alerts = append(alerts, Alert{
				Kind:  KindTooLong,
				Title: Title,
				Body: fmt.Sprintf("You are still clocked in for %sh. Consider clocking out.",
					strconv.FormatFloat(timemath.Round2(running), 'f', -1, 64)),
			})
			stamps.LastFiredTooLong = stamp
		}
	}

	// Backup overdue
	if days := st.Settings.BackupDays; days > 0 && st.Settings.LastBackupISO != nil {
		since := timemath.DaysBetween(*st.Settings.LastBackupISO, now)
		if since >= float64(days) && stamps.LastFiredBackup != today {
			alerts = append(alerts, Alert{
				Kind:  KindStaleBackup,
				Title: Title,
				Body:  "Reminder: consider making a backup (punch backup).",
			})
			stamps.LastFiredBackup = today
		}
	}

	return alerts, stamps
}
