// Package dateutil provides calendar-date helpers for session bucketing.
// All dates are plain YYYY-MM-DD strings with no time-of-day component;
// callers normalize before handing a date in, so time zones never shift a
// session across a day boundary inside this package.
package dateutil

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

// weekdayNames is a fixed table indexed by time.Weekday (0=Sunday) so
// labels do not depend on the environment locale.
var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// BucketKey returns the canonical grouping key for a normalized day
// string. It is the identity today; keeping it as a named operation pins
// the bucketing contract in one place.
func BucketKey(day string) string {
	return day
}

// ParseDay validates a YYYY-MM-DD string and returns it normalized.
func ParseDay(day string) (string, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return "", fmt.Errorf("dateutil: invalid day %q: %w", day, err)
	}
	return t.Format(DayLayout), nil
}

// WeekdayLabel returns the short weekday name for a normalized day
// string. Invalid input yields an empty label.
func WeekdayLabel(day string) string {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return ""
	}
	return weekdayNames[int(t.Weekday())]
}

// LastNDates returns the n calendar dates ending at referenceDay
// inclusive, oldest first.
func LastNDates(n int, referenceDay string) []string {
	ref, err := time.Parse(DayLayout, referenceDay)
	if err != nil || n <= 0 {
		return nil
	}
	days := make([]string, n)
	for i := 0; i < n; i++ {
		days[n-1-i] = ref.AddDate(0, 0, -i).Format(DayLayout)
	}
	return days
}

// DaysAgo returns the day n calendar days before referenceDay.
func DaysAgo(n int, referenceDay string) string {
	ref, err := time.Parse(DayLayout, referenceDay)
	if err != nil {
		return ""
	}
	return ref.AddDate(0, 0, -n).Format(DayLayout)
}

// Today returns the current UTC calendar date.
func Today() string {
	return time.Now().UTC().Format(DayLayout)
}
