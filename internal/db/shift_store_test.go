package db_test

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/clock"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
)

func local(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(filepath.Join(t.TempDir(), "punch.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close(gdb) })
	return gdb
}

func newTestStore(t *testing.T, now time.Time) (*db.Store, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock(now)
	return db.NewStore(openTestDB(t), clk, quietLogger()), clk
}

func TestClockInOut(t *testing.T) {
	store, clk := newTestStore(t, local(2024, 2, 1, 8, 0))

	open, err := store.ClockIn()
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if open.WorkDate != "2024-02-01" {
		t.Errorf("open work date = %q, want 2024-02-01", open.WorkDate)
	}

	clk.Set(local(2024, 2, 1, 19, 0))
	rec, err := store.ClockOut()
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if rec.TotalH != 11 || rec.OtH != 2.5 {
		t.Errorf("totals = %v/%v, want 11/2.5", rec.TotalH, rec.OtH)
	}
	if rec.IsManual {
		t.Error("clock-out record marked manual")
	}

	got, err := store.OpenShift()
	if err != nil {
		t.Fatalf("OpenShift: %v", err)
	}
	if got != nil {
		t.Errorf("open shift after clock-out = %+v, want nil", got)
	}

	all, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || all[0].ID != rec.ID {
		t.Errorf("ledger = %+v, want single record %s", all, rec.ID)
	}
}

func TestClockInCrossMidnight(t *testing.T) {
	store, clk := newTestStore(t, local(2024, 1, 15, 22, 0))

	if _, err := store.ClockIn(); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	clk.Set(local(2024, 1, 16, 3, 30))
	rec, err := store.ClockOut()
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if rec.WorkDate != "2024-01-15" {
		t.Errorf("work date = %q, want 2024-01-15", rec.WorkDate)
	}
	if rec.TotalH != 5.5 || rec.OtH != 0 {
		t.Errorf("totals = %v/%v, want 5.5/0", rec.TotalH, rec.OtH)
	}
}

func TestClockInAlreadyOpen(t *testing.T) {
	store, clk := newTestStore(t, local(2024, 2, 1, 8, 0))

	first, err := store.ClockIn()
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}

	clk.Advance(time.Hour)
	if _, err := store.ClockIn(); !errors.Is(err, db.ErrAlreadyOpen) {
		t.Fatalf("second ClockIn error = %v, want ErrAlreadyOpen", err)
	}

	open, err := store.OpenShift()
	if err != nil {
		t.Fatalf("OpenShift: %v", err)
	}
	if open == nil || open.InMs != first.InMs {
		t.Errorf("open shift = %+v, want unchanged %+v", open, first)
	}
}

func TestClockOutErrors(t *testing.T) {
	store, clk := newTestStore(t, local(2024, 2, 1, 8, 0))

	if _, err := store.ClockOut(); !errors.Is(err, db.ErrNoOpenShift) {
		t.Fatalf("ClockOut without open shift error = %v, want ErrNoOpenShift", err)
	}
	all, _ := store.All()
	if len(all) != 0 {
		t.Errorf("ledger has %d records, want 0", len(all))
	}

	if _, err := store.ClockIn(); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	clk.Advance(-time.Minute)
	if _, err := store.ClockOut(); !errors.Is(err, db.ErrInvalidInterval) {
		t.Fatalf("ClockOut before clock-in error = %v, want ErrInvalidInterval", err)
	}
	if open, _ := store.OpenShift(); open == nil {
		t.Error("open shift cleared after rejected clock-out")
	}
}

func TestUpsertManualValidation(t *testing.T) {
	store, _ := newTestStore(t, local(2024, 2, 10, 12, 0))

	existing, err := store.UpsertManual(db.ManualShift{
		WorkDate: "2024-02-01",
		In:       local(2024, 2, 1, 8, 0),
		Out:      local(2024, 2, 1, 16, 0),
	})
	if err != nil {
		t.Fatalf("UpsertManual: %v", err)
	}

	tests := []struct {
		name  string
		in    db.ManualShift
		field string
	}{
		{"missing date", db.ManualShift{In: local(2024, 2, 2, 8, 0), Out: local(2024, 2, 2, 9, 0)}, "workDate"},
		{"bad date", db.ManualShift{WorkDate: "02/02/2024", In: local(2024, 2, 2, 8, 0), Out: local(2024, 2, 2, 9, 0)}, "workDate"},
		{"missing in", db.ManualShift{WorkDate: "2024-02-02", Out: local(2024, 2, 2, 9, 0)}, "in"},
		{"missing out", db.ManualShift{WorkDate: "2024-02-02", In: local(2024, 2, 2, 8, 0)}, "out"},
		{"out before in", db.ManualShift{WorkDate: "2024-02-02", In: local(2024, 2, 2, 9, 0), Out: local(2024, 2, 2, 8, 0)}, "out"},
		{"out equals in", db.ManualShift{WorkDate: "2024-02-02", In: local(2024, 2, 2, 9, 0), Out: local(2024, 2, 2, 9, 0)}, "out"},
		{"date mismatch", db.ManualShift{WorkDate: "2024-02-03", In: local(2024, 2, 2, 8, 0), Out: local(2024, 2, 2, 9, 0)}, "workDate"},
		{"duplicate date", db.ManualShift{WorkDate: "2024-02-01", In: local(2024, 2, 1, 9, 0), Out: local(2024, 2, 1, 10, 0)}, "workDate"},
		// interval order is checked before date consistency
		{"order beats mismatch", db.ManualShift{WorkDate: "2024-02-03", In: local(2024, 2, 2, 9, 0), Out: local(2024, 2, 2, 8, 0)}, "out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.UpsertManual(tt.in)
			if !errors.Is(err, db.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			var verr *db.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %T is not *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}

	all, _ := store.All()
	if len(all) != 1 || all[0].ID != existing.ID {
		t.Errorf("ledger changed by rejected upserts: %+v", all)
	}
}

func TestUpsertManualEdit(t *testing.T) {
	store, clk := newTestStore(t, local(2024, 2, 10, 12, 0))

	rec, err := store.UpsertManual(db.ManualShift{
		WorkDate: "2024-02-01",
		In:       local(2024, 2, 1, 8, 0),
		Out:      local(2024, 2, 1, 16, 0),
		Notes:    "first",
	})
	if err != nil {
		t.Fatalf("UpsertManual: %v", err)
	}
	if !rec.IsManual || rec.TotalH != 8 || rec.OtH != 0 {
		t.Errorf("new record = %+v", rec)
	}

	// editing a record keeps its own work date
	clk.Advance(time.Hour)
	edited, err := store.UpsertManual(db.ManualShift{
		WorkDate:  "2024-02-01",
		In:        local(2024, 2, 1, 8, 0),
		Out:       local(2024, 2, 1, 19, 0),
		Notes:     "stayed late",
		EditingID: rec.ID,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.ID != rec.ID {
		t.Errorf("edit changed id from %s to %s", rec.ID, edited.ID)
	}
	if edited.TotalH != 11 || edited.OtH != 2.5 {
		t.Errorf("edited totals = %v/%v, want 11/2.5", edited.TotalH, edited.OtH)
	}

	got, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Notes != "stayed late" || got.TotalH != 11 {
		t.Errorf("stored record = %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("updatedAt %v not after createdAt %v", got.UpdatedAt, got.CreatedAt)
	}

	_, err = store.UpsertManual(db.ManualShift{
		WorkDate:  "2024-02-05",
		In:        local(2024, 2, 5, 8, 0),
		Out:       local(2024, 2, 5, 9, 0),
		EditingID: "missing",
	})
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("edit of unknown id error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore(t, local(2024, 2, 10, 12, 0))

	rec, err := store.UpsertManual(db.ManualShift{
		WorkDate: "2024-02-01",
		In:       local(2024, 2, 1, 8, 0),
		Out:      local(2024, 2, 1, 16, 0),
	})
	if err != nil {
		t.Fatalf("UpsertManual: %v", err)
	}

	if err := store.Delete(rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(rec.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if _, err := store.Get(rec.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
}

func TestQuery(t *testing.T) {
	store, _ := newTestStore(t, local(2024, 3, 10, 12, 0))

	shifts := []db.ManualShift{
		{WorkDate: "2024-02-01", In: local(2024, 2, 1, 8, 0), Out: local(2024, 2, 1, 16, 0), Notes: "Client VISIT"},
		{WorkDate: "2024-02-02", In: local(2024, 2, 2, 8, 0), Out: local(2024, 2, 2, 17, 30)},
		{WorkDate: "2024-02-12", In: local(2024, 2, 12, 8, 0), Out: local(2024, 2, 12, 18, 15), Notes: "inventory"},
		{WorkDate: "2024-03-01", In: local(2024, 3, 1, 8, 0), Out: local(2024, 3, 1, 16, 0), Notes: "client call"},
	}
	for _, s := range shifts {
		if _, err := store.UpsertManual(s); err != nil {
			t.Fatalf("UpsertManual(%s): %v", s.WorkDate, err)
		}
	}

	tests := []struct {
		name   string
		month  string
		search string
		want   []string
	}{
		{"whole month newest first", "2024-02", "", []string{"2024-02-12", "2024-02-02", "2024-02-01"}},
		{"notes case-insensitive", "2024-02", "  client ", []string{"2024-02-01"}},
		{"date substring", "2024-02", "02-1", []string{"2024-02-12"}},
		{"no match", "2024-02", "holiday", nil},
		{"other month", "2024-03", "", []string{"2024-03-01"}},
		{"empty month", "2023-12", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := store.Query(tt.month, tt.search)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("got %d rows, want %d", len(rows), len(tt.want))
			}
			for i, r := range rows {
				if r.WorkDate != tt.want[i] {
					t.Errorf("row %d = %s, want %s", i, r.WorkDate, tt.want[i])
				}
			}
		})
	}

	if _, err := store.Query("2024-13", ""); !errors.Is(err, db.ErrValidation) {
		t.Errorf("Query with bad month error = %v, want ErrValidation", err)
	}
}

func TestReplaceAllClosesOpenShift(t *testing.T) {
	store, _ := newTestStore(t, local(2024, 2, 10, 8, 0))

	if _, err := store.ClockIn(); err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if _, err := store.UpsertManual(db.ManualShift{
		WorkDate: "2024-02-01",
		In:       local(2024, 2, 1, 8, 0),
		Out:      local(2024, 2, 1, 16, 0),
	}); err != nil {
		t.Fatalf("UpsertManual: %v", err)
	}

	restored := []models.ShiftRecord{
		{ID: "a", WorkDate: "2024-01-05", InMs: local(2024, 1, 5, 8, 0).UnixMilli(), OutMs: local(2024, 1, 5, 16, 0).UnixMilli(), TotalH: 8},
		{ID: "b", WorkDate: "2024-01-06", InMs: local(2024, 1, 6, 8, 0).UnixMilli(), OutMs: local(2024, 1, 6, 17, 0).UnixMilli(), TotalH: 9, OtH: 0.5},
	}
	if err := store.ReplaceAll(restored); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	if open, _ := store.OpenShift(); open != nil {
		t.Errorf("open shift survived ReplaceAll: %+v", open)
	}
	all, err := store.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 || all[0].ID != "b" || all[1].ID != "a" {
		t.Errorf("ledger after ReplaceAll = %+v", all)
	}

	if err := store.Wipe(); err != nil {
		t.Fatalf("Wipe: %v", err)
	}
	if all, _ := store.All(); len(all) != 0 {
		t.Errorf("ledger after Wipe has %d records", len(all))
	}
}

func TestRangeAndHasRecordOn(t *testing.T) {
	store, _ := newTestStore(t, local(2024, 2, 10, 12, 0))

	for _, d := range []int{4, 5, 11} {
		if _, err := store.UpsertManual(db.ManualShift{
			WorkDate: local(2024, 2, d, 0, 0).Format("2006-01-02"),
			In:       local(2024, 2, d, 8, 0),
			Out:      local(2024, 2, d, 16, 0),
		}); err != nil {
			t.Fatalf("UpsertManual: %v", err)
		}
	}

	rows, err := store.Range("2024-02-05", "2024-02-12")
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(rows) != 2 || rows[0].WorkDate != "2024-02-05" || rows[1].WorkDate != "2024-02-11" {
		t.Errorf("Range = %+v", rows)
	}

	ok, err := store.HasRecordOn("2024-02-04")
	if err != nil || !ok {
		t.Errorf("HasRecordOn(2024-02-04) = %v, %v", ok, err)
	}
	ok, err = store.HasRecordOn("2024-02-06")
	if err != nil || ok {
		t.Errorf("HasRecordOn(2024-02-06) = %v, %v", ok, err)
	}
}

func TestResolve(t *testing.T) {
	store, _ := newTestStore(t, local(2024, 2, 10, 12, 0))

	mk := func(id, date string) models.ShiftRecord {
		return models.ShiftRecord{ID: id, WorkDate: date, InMs: 1, OutMs: 2}
	}
	if err := store.ReplaceAll([]models.ShiftRecord{
		mk("abc12345", "2024-02-01"),
		mk("abd99999", "2024-02-02"),
	}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{"exact", "abc12345", "abc12345", nil},
		{"unique prefix", "abd", "abd99999", nil},
		{"ambiguous prefix", "ab", "", db.ErrValidation},
		{"unknown", "zzz", "", db.ErrNotFound},
		{"empty", "  ", "", db.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := store.Resolve(tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.ref, err)
			}
			if rec.ID != tt.wantID {
				t.Errorf("Resolve(%q) = %s, want %s", tt.ref, rec.ID, tt.wantID)
			}
		})
	}
}
