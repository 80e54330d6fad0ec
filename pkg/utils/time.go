package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseUserTime parses a time string that can be either RFC3339 or YYYY-MM-DD format.
// For YYYY-MM-DD format, if isEndTime is true, it will set the time to end of day (23:59:59).
// The result is always UTC.
func ParseUserTime(timeStr string, isEndTime bool) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, timeStr)
	if err == nil {
		return t.UTC(), nil
	}

	t, err = time.Parse(DateLayout, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format, expected RFC3339 or YYYY-MM-DD, got %s", timeStr)
	}

	if isEndTime {
		t = t.Add(24*time.Hour - time.Second)
	}

	return t, nil
}

// ParseDate parses a calendar date (YYYY-MM-DD) and rejects dates in the future.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date, expected YYYY-MM-DD, got %s", dateStr)
	}
	if t.After(time.Now().UTC()) {
		return time.Time{}, fmt.Errorf("date %s is in the future", dateStr)
	}
	return t, nil
}
