package helper_util

import (
	"fmt"
	"time"
)

// Helper function to parse time
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	return t, err
}

// ParseNullableTime accepts a time.Time, an RFC3339 string or epoch
// milliseconds. nil yields nil. Results are in UTC.
func ParseNullableTime(value interface{}) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}

	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		t = parsed
	case int64:
		t = time.UnixMilli(v)
	default:
		return nil, fmt.Errorf("unsupported type for time parsing: %T", value)
	}
	t = t.UTC()
	return &t, nil
}

// ParseTimeRange reads an optional RFC3339 from/to pair. Missing bounds default
// to the last 24h ending at now.
func ParseTimeRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	end := now
	if to != "" {
		parsed, err := ParseTime(to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'to': %w", err)
		}
		end = parsed
	}
	start := end.Add(-24 * time.Hour)
	if from != "" {
		parsed, err := ParseTime(from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'from': %w", err)
		}
		start = parsed
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("'from' must not be after 'to'")
	}
	return start, end, nil
}
