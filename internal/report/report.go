package report

import (
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/timemath"
)

// Aggregate holds the month totals shown above the shift table
type Aggregate struct {
	TotalHours    float64 `json:"totalHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	DayCount      int     `json:"dayCount"`
}

// Querier is the read side of the ledger used by the views
type Querier interface {
	Query(monthKey, search string) ([]models.ShiftRecord, error)
}

// MonthlyAggregate sums the records of a month. Totals are rounded once, after summing.
func MonthlyAggregate(records []models.ShiftRecord, monthKey string) Aggregate {
	var agg Aggregate
	var total, ot float64
	for _, r := range records {
		if !timemath.InMonth(r.WorkDate, monthKey) {
			continue
		}
		total += r.TotalH
		ot += r.OtH
		agg.DayCount++
	}
	agg.TotalHours = timemath.Round2(total)
	agg.OvertimeHours = timemath.Round2(ot)
	return agg
}

// FilteredRows returns the month's records matching search, most recent first
func FilteredRows(q Querier, monthKey, search string) ([]models.ShiftRecord, error) {
	return q.Query(monthKey, search)
}
