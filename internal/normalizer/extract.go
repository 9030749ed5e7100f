package normalizer

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"cwa-dashboard/internal/models"
)

// PickNumeric extracts a channel value from a daily entry.
//
// Candidate field names are tried first, in order. If none of them holds a
// number, the entry's fields are walked in document order and the first one
// that parses as a finite float wins; the date field, nested objects and lists
// are skipped. The fallback cannot tell an oddly named value field from a
// second, unrelated numeric field, so the candidate list should name the real
// field whenever it is known.
func PickNumeric(entry models.DailyEntry, dateField string, candidates []string) (float64, bool) {
	for _, name := range candidates {
		if name == dateField {
			continue
		}
		if raw, ok := entry.Get(name); ok {
			if v, ok := numericValue(raw); ok {
				return v, true
			}
		}
	}

	for _, f := range entry.Fields {
		if f.Name == dateField {
			continue
		}
		if v, ok := numericValue(f.Value); ok {
			return v, true
		}
	}

	return 0, false
}

func numericValue(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var text string
	switch raw[0] {
	case '{', '[', 'n', 't', 'f':
		return 0, false
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
	default:
		text = string(raw)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Single-digit month and day layouts also accept zero-padded values.
var dateLayouts = []string{
	"2006-1-2",
	time.RFC3339,
	"2006-1-2T15:04:05",
	"2006-1-2 15:04:05",
	"2006/1/2",
	"2006/1/2 15:04:05",
}

// parseDay reads the calendar day of a date field value.
func parseDay(s string) (models.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), true
		}
	}
	return models.Date{}, false
}
