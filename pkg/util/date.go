package util

import (
	"fmt"
	"time"
)

// DayBounds returns the start of the local day containing t in loc and the
// start of the next one.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseClock validates a 24h "HH:MM" wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("clock must be HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

// ParseUnix converts unix seconds to UTC; non-positive values yield the zero time.
func ParseUnix(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
