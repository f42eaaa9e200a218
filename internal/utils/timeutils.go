package utils

import (
	"fmt"
	"time"
)

// TimestampLayout is the local-time wire format used by tool inputs, log
// lines and result documents ("2025-09-12 16:00:00").
const TimestampLayout = "2006-01-02 15:04:05"

// ParseLocalTimestamp parses a "YYYY-MM-DD HH:MM:SS" string in local time.
// An unparseable value wraps ErrInvalidTimestamp.
func ParseLocalTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty time value", ErrInvalidTimestamp)
	}
	t, err := time.ParseInLocation(TimestampLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	return t, nil
}

// FormatLocalTimestamp renders a time in the tool wire format.
func FormatLocalTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
