package domain

import (
	"strings"
	"time"
)

// TimestampLayout is the wire format for interval bounds: ISO 8601 in UTC
// with millisecond precision, e.g. 2020-01-22T17:00:00.000Z
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// accepted input layouts, tried in order; layouts without a zone are UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO 8601 date or date-time string and returns it in UTC
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t in the wire format
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
