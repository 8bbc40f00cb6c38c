package parser

import (
	"testing"
	"time"
)

var refNow = time.Date(2024, 2, 10, 12, 0, 0, 0, time.Local)

func TestParseWorkDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-02-01", "2024-02-01", false},
		{"2024-2-1", "2024-02-01", false},
		{"01/02/2024", "2024-02-01", false},
		{" Today ", "2024-02-10", false},
		{"yesterday", "2024-02-09", false},
		{"3 days ago", "2024-02-07", false},
		{"0 days ago", "2024-02-10", false},
		{"2024-02-30", "", true},
		{"31/04/2024", "", true},
		{"2024-13-01", "", true},
		{"next week", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseWorkDate(tt.in, refNow)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWorkDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWorkDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAtAndParseDateTime(t *testing.T) {
	got, err := At("2024-02-01", "8:05")
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if want := time.Date(2024, 2, 1, 8, 5, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("At = %v, want %v", got, want)
	}

	if _, err := At("2024-02-01", "25:00"); err == nil {
		t.Error("At accepted 25:00")
	}

	got, err = ParseDateTime("2024-01-15T22:00")
	if err != nil {
		t.Fatalf("ParseDateTime: %v", err)
	}
	if want := time.Date(2024, 1, 15, 22, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("ParseDateTime = %v, want %v", got, want)
	}

	if _, err := ParseDateTime("2024-01-15"); err == nil {
		t.Error("ParseDateTime accepted a date without time")
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-02", "2024-02", false},
		{"2024-2", "2024-02", false},
		{"2024-12", "2024-12", false},
		{"2024-13", "", true},
		{"24-02", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMonth(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMonth(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestParseShiftLine(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		workDate  string
		inAt      time.Time
		outAt     time.Time
		notes     string
		wantError bool
	}{
		{
			name:     "with notes",
			in:       "2024-02-01 08:00-19:00 client visit, late",
			workDate: "2024-02-01",
			inAt:     time.Date(2024, 2, 1, 8, 0, 0, 0, time.Local),
			outAt:    time.Date(2024, 2, 1, 19, 0, 0, 0, time.Local),
			notes:    "client visit, late",
		},
		{
			name:     "cross midnight",
			in:       "2024-01-15 22:00 - 3:30",
			workDate: "2024-01-15",
			inAt:     time.Date(2024, 1, 15, 22, 0, 0, 0, time.Local),
			outAt:    time.Date(2024, 1, 16, 3, 30, 0, 0, time.Local),
		},
		{
			name:     "relative date",
			in:       "2 days ago 09:00-17:00",
			workDate: "2024-02-08",
			inAt:     time.Date(2024, 2, 8, 9, 0, 0, 0, time.Local),
			outAt:    time.Date(2024, 2, 8, 17, 0, 0, 0, time.Local),
		},
		{name: "missing range", in: "2024-02-01 notes", wantError: true},
		{name: "bad time", in: "2024-02-01 08:00-24:10", wantError: true},
		{name: "bad date", in: "2024-02-31 08:00-09:00", wantError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseShiftLine(tt.in, refNow)
			if tt.wantError {
				if len(got.Errors) == 0 {
					t.Fatalf("expected errors, got %+v", got)
				}
				return
			}
			if len(got.Errors) > 0 {
				t.Fatalf("unexpected errors: %v", got.Errors)
			}
			if got.WorkDate != tt.workDate || !got.In.Equal(tt.inAt) || !got.Out.Equal(tt.outAt) || got.Notes != tt.notes {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(3*time.Hour + 5*time.Minute + 40*time.Second); got != "3h 05m" {
		t.Errorf("FormatDuration = %q", got)
	}
	if got := FormatDuration(-time.Minute); got != "0h 00m" {
		t.Errorf("FormatDuration(negative) = %q", got)
	}
}
