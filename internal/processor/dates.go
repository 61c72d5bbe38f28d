package processor

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// dateLayouts are tried in order after the ISO-8601 forms; the first match wins.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006/01/02",
	"20060102",
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// DateFields lists the payload keys inspected, in order, when looking for a result date.
var DateFields = []string{
	"created_at",
	"updated_at",
	"date",
	"timestamp",
	"created",
	"modified",
	"last_modified",
	"document_date",
}

// NormalizeDate converts epoch seconds, time values, ISO-8601 strings and a fixed set
// of textual formats into a UTC time. Unparseable input reports false.
func NormalizeDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	case string:
		return parseDateString(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(f)
	}

	if f, ok := toFloat(v); ok {
		return fromEpoch(f)
	}
	return time.Time{}, false
}

func fromEpoch(seconds float64) (time.Time, bool) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return time.Time{}, false
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC(), true
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResultDate returns the first recognizable date among DateFields.
func ResultDate(payload map[string]any) (time.Time, bool) {
	for _, field := range DateFields {
		if v, ok := payload[field]; ok {
			if t, ok := NormalizeDate(v); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// StartOfDay truncates t to 00:00:00 UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of t's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}
