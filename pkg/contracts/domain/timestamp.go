package domain

import (
	"strings"
	"time"
)

// NoRecord is the RecordIndex of events decoded outside of a dataset.
const NoRecord = -1

// timestampLayouts are the layouts seen across message trace export
// versions, tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"02/01/2006 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a timestamp in any of the known export layouts.
// The second result is false when no layout matches.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
