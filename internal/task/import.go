package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidImport = errors.New("invalid JSON format")

// ParseImport decodes a task export. A single object is treated as a batch of one.
// Any malformed record rejects the whole batch.
func ParseImport(data []byte) ([]Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrInvalidImport
	}

	var records []map[string]any
	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		for i, item := range raw {
			var rec map[string]any
			if err := json.Unmarshal(item, &rec); err != nil || rec == nil {
				return nil, fmt.Errorf("%w: item %d is not an object", ErrInvalidImport, i)
			}
			records = append(records, rec)
		}
	case '{':
		var rec map[string]any
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		records = append(records, rec)
	default:
		return nil, ErrInvalidImport
	}

	out := make([]Task, 0, len(records))
	for _, rec := range records {
		out = append(out, fromRecord(rec))
	}
	return out, nil
}

func fromRecord(rec map[string]any) Task {
	t := Task{
		ID:          scalarString(rec["id"]),
		Title:       scalarString(rec["title"]),
		Category:    ParseCategory(scalarString(rec["category"])),
		Duration:    duration(rec["duration"]),
		IsAllDay:    truthy(rec["isAllDay"]),
		IsCompleted: truthy(rec["isCompleted"]),
		StartTime:   timestamp(rec["startTime"]),
		EndTime:     timestamp(rec["endTime"]),
		Notes:       scalarString(rec["notes"]),
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if strings.TrimSpace(t.Title) == "" {
		t.Title = "Untitled Task"
	}
	return t
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func duration(v any) int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return DefaultDuration
		}
		f = parsed
	default:
		return DefaultDuration
	}
	if math.IsNaN(f) || f <= 0 {
		return DefaultDuration
	}
	return int(math.Round(f))
}

// truthy follows loose boolean coercion: zero values, empty strings and null are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

func timestamp(v any) *time.Time {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return &t
		}
	}
	return nil
}
