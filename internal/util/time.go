package util

import "time"

// TruncateToDay drops the clock part of t, keeping its location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same wall-clock calendar day.
func SameDay(a time.Time, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// StartOfWeek returns the most recent weekStart day at midnight, counting t
// itself when it already falls on weekStart.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := TruncateToDay(t)
	diff := int(day.Weekday()) - int(weekStart)
	if diff < 0 {
		diff += 7
	}
	return day.AddDate(0, 0, -diff)
}
