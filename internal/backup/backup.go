package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/timemath"
)

// Version of the payload written by Serialize
const Version = 2

// ISOLayout matches the millisecond UTC timestamps of older backups
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrMalformedPayload is returned when a backup cannot be read at all
var ErrMalformedPayload = errors.New("malformed backup payload")

// Payload is the backup file document
type Payload struct {
	Version       int                  `json:"version"`
	ExportedAt    string               `json:"exportedAt"`
	StandardHours float64              `json:"standardHours"`
	Logs          []models.ShiftRecord `json:"logs"`
}

// Serialize builds the backup document for records
func Serialize(records []models.ShiftRecord, exportedAt time.Time) Payload {
	logs := make([]models.ShiftRecord, len(records))
	copy(logs, records)
	return Payload{
		Version:       Version,
		ExportedAt:    exportedAt.UTC().Format(ISOLayout),
		StandardHours: models.StandardHours,
		Logs:          logs,
	}
}

// Marshal encodes the payload as indented JSON
func Marshal(p Payload) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return append(data, '\n'), nil
}

// FileName is the default backup file name for a backup taken at t
func FileName(t time.Time) string {
	return fmt.Sprintf("time-tracker-backup-%s.json", t.Local().Format("20060102"))
}

// Deserialize reads a backup document and returns the records worth keeping.
// Entries without a string workDate or numeric inMs/outMs are dropped; supplied
// totals are kept as-is and recomputed only when missing.
func Deserialize(data []byte, now time.Time, newID func() string, log *slog.Logger) ([]models.ShiftRecord, error) {
	if log == nil {
		log = slog.Default()
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedPayload)
	}
	rawLogs, ok := doc["logs"]
	if !ok {
		return nil, fmt.Errorf("%w: logs missing", ErrMalformedPayload)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(rawLogs, &entries); err != nil || entries == nil {
		return nil, fmt.Errorf("%w: logs is not an array", ErrMalformedPayload)
	}

	records := make([]models.ShiftRecord, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	dropped := 0
	for i, raw := range entries {
		entry, err := decodeEntry(raw)
		if err != nil {
			dropped++
			continue
		}
		rec, ok := sanitize(entry, now)
		if !ok {
			dropped++
			continue
		}

		if rec.ID == "" || seen[rec.ID] {
			rec.ID = newID()
		}
		seen[rec.ID] = true

		total, ot := timemath.Totals(rec.In(), rec.Out(), models.StandardHours)
		if tv, ok := number(entry["totalH"]); ok {
			rec.TotalH = tv
		} else {
			rec.TotalH = total
		}
		if ov, ok := number(entry["otH"]); ok {
			rec.OtH = ov
		} else {
			rec.OtH = ot
		}
		if rec.TotalH != total || rec.OtH != ot {
			log.Warn("restored totals differ from interval",
				slog.Int("index", i),
				slog.String("work_date", rec.WorkDate),
				slog.Float64("total_h", rec.TotalH),
				slog.Float64("computed_h", total))
		}

		records = append(records, rec)
	}

	if dropped > 0 {
		log.Info("skipped malformed backup entries", slog.Int("count", dropped))
	}
	return records, nil
}

func decodeEntry(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var entry map[string]any
	if err := dec.Decode(&entry); err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.New("null entry")
	}
	return entry, nil
}

// sanitize maps a loosely typed entry onto a record, without id or totals
func sanitize(entry map[string]any, now time.Time) (models.ShiftRecord, bool) {
	workDate, ok := entry["workDate"].(string)
	if !ok {
		return models.ShiftRecord{}, false
	}
	inMs, ok := millis(entry["inMs"])
	if !ok {
		return models.ShiftRecord{}, false
	}
	outMs, ok := millis(entry["outMs"])
	if !ok {
		return models.ShiftRecord{}, false
	}

	rec := models.ShiftRecord{
		ID:        idOf(entry["id"]),
		WorkDate:  workDate,
		InMs:      inMs,
		OutMs:     outMs,
		CreatedAt: now,
		UpdatedAt: now,
		IsManual:  truthy(entry["isManual"]),
	}
	if notes, ok := entry["notes"].(string); ok {
		rec.Notes = notes
	}
	if s, ok := entry["createdAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			rec.CreatedAt = t
		}
	}
	return rec, true
}

func number(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func millis(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, ok := number(v)
	if !ok {
		return 0, false
	}
	return int64(math.Round(f)), true
}

func idOf(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		if f, ok := number(id); ok && f != 0 {
			return id.String()
		}
	}
	return ""
}

// truthy follows the loose boolean coercion older backups relied on
func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	case json.Number:
		f, ok := number(b)
		return ok && f != 0
	default:
		return true
	}
}
