package utils

import "time"

// ParseDate parses a YYYY-MM-DD string into a civil date in UTC.
func ParseDate(dateStr string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, dateStr, time.UTC)
}

// Day truncates a timestamp to its calendar day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DatesBetween returns every calendar day from start to end inclusive.
// The result is empty when start is after end.
func DatesBetween(start, end time.Time) []time.Time {
	first := Day(start)
	last := Day(end)

	dates := make([]time.Time, 0)
	for current := first; !current.After(last); current = current.AddDate(0, 0, 1) {
		dates = append(dates, current)
	}

	return dates
}
