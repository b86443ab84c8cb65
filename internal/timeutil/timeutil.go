// Package timeutil holds the calendar arithmetic the scheduling engine
// is built on. Everything here works on local calendar fields, never
// UTC-normalized instants, so a date never shifts across a timezone
// boundary.
package timeutil

import (
	"fmt"
	"regexp"
	"time"
)

const SecondsPerDay = 24 * 60 * 60

var isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// SecondsToClock renders an offset from midnight as a zero-padded
// 24-hour "HH:MM" string. Offsets outside [0, 86400) are rejected, not
// clamped.
func SecondsToClock(seconds int) (string, error) {
	if seconds < 0 || seconds >= SecondsPerDay {
		return "", fmt.Errorf("offset %d outside [0, %d)", seconds, SecondsPerDay)
	}
	return fmt.Sprintf("%02d:%02d", seconds/3600, (seconds%3600)/60), nil
}

// ClockToSeconds converts an hour/minute pair to an offset from
// midnight.
func ClockToSeconds(hour, minute int) (int, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour %d outside [0, 23]", hour)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute %d outside [0, 59]", minute)
	}
	return hour*3600 + minute*60, nil
}

// ToISODate formats t's local calendar fields as "YYYY-MM-DD".
func ToISODate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseISODate builds a local-time date from a "YYYY-MM-DD" string.
// Only the shape is validated; out-of-range components roll over the
// way time.Date normalizes them.
func ParseISODate(s string) (time.Time, error) {
	m := isoDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	var year, month, day int
	fmt.Sscanf(s, "%4d-%2d-%2d", &year, &month, &day)
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsPastDate reports whether t's calendar day is strictly before
// today's. Time of day is ignored on both sides.
func IsPastDate(t time.Time) bool {
	return StartOfDay(t).Before(StartOfDay(time.Now()))
}

// IsToday reports whether t falls on today's calendar day.
func IsToday(t time.Time) bool {
	now := time.Now()
	return t.Year() == now.Year() && t.Month() == now.Month() && t.Day() == now.Day()
}

// AddDays returns t shifted by n calendar days. The input is not
// mutated; time.Time is a value.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// Weekday returns t's day of week as 0=Sunday..6=Saturday.
func Weekday(t time.Time) int {
	return int(t.Weekday())
}

// DaysBetween counts the calendar days in [start, end] inclusive
// without materializing them. Computed on UTC midnights built from
// calendar fields so DST transitions never skew the count. An
// inverted range yields 0.
func DaysBetween(start, end time.Time) int {
	a := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if b.Before(a) {
		return 0
	}
	return int((b.Unix()-a.Unix())/(24*60*60)) + 1
}

// ExpandRange lists every calendar day in [start, end] inclusive as
// ascending ISO date strings. Callers must ensure start <= end; an
// inverted range yields nil.
func ExpandRange(start, end time.Time) []string {
	start, end = StartOfDay(start), StartOfDay(end)
	if end.Before(start) {
		return nil
	}
	var out []string
	for d := start; !d.After(end); d = AddDays(d, 1) {
		out = append(out, ToISODate(d))
	}
	return out
}
