package timeutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondsToClock(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{60, "00:01"},
		{3600, "01:00"},
		{3660, "01:01"},
		{45296, "12:34"},
		{86340, "23:59"},
		{86399, "23:59"}, // seconds truncate to the minute
	}
	for _, tc := range cases {
		got, err := SecondsToClock(tc.seconds)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "seconds=%d", tc.seconds)
	}
}

func TestSecondsToClockRejectsOutOfRange(t *testing.T) {
	_, err := SecondsToClock(-1)
	assert.Error(t, err)
	_, err = SecondsToClock(86400)
	assert.Error(t, err)
}

func TestClockToSecondsInverse(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			seconds, err := ClockToSeconds(h, m)
			require.NoError(t, err)
			clock, err := SecondsToClock(seconds)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("%02d:%02d", h, m), clock)
		}
	}
}

func TestClockToSecondsRejectsOutOfRange(t *testing.T) {
	_, err := ClockToSeconds(24, 0)
	assert.Error(t, err)
	_, err = ClockToSeconds(-1, 0)
	assert.Error(t, err)
	_, err = ClockToSeconds(0, 60)
	assert.Error(t, err)
}

func TestISODateRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
		time.Date(2025, 12, 31, 23, 59, 59, 0, time.Local),
		time.Date(2024, 2, 29, 12, 0, 0, 0, time.Local), // leap day
		time.Date(1999, 7, 4, 6, 30, 0, 0, time.Local),
	}
	for _, d := range dates {
		parsed, err := ParseISODate(ToISODate(d))
		require.NoError(t, err)
		assert.Equal(t, d.Year(), parsed.Year())
		assert.Equal(t, d.Month(), parsed.Month())
		assert.Equal(t, d.Day(), parsed.Day())
	}
}

func TestToISODateUsesLocalCalendarFields(t *testing.T) {
	// 23:30 local must not shift to the next day the way a UTC
	// conversion could
	d := time.Date(2025, 6, 15, 23, 30, 0, 0, time.Local)
	assert.Equal(t, "2025-06-15", ToISODate(d))
}

func TestParseISODateRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "2025-1-5", "20250105", "2025/01/05", "yesterday", "2025-01-05T00:00:00Z"} {
		_, err := ParseISODate(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestAddDaysDoesNotMutate(t *testing.T) {
	d := time.Date(2025, 1, 31, 0, 0, 0, 0, time.Local)
	next := AddDays(d, 1)
	assert.Equal(t, "2025-02-01", ToISODate(next))
	assert.Equal(t, "2025-01-31", ToISODate(d))
}

func TestDaysBetween(t *testing.T) {
	day := func(s string) time.Time {
		d, err := ParseISODate(s)
		require.NoError(t, err)
		return d
	}
	assert.Equal(t, 1, DaysBetween(day("2025-03-10"), day("2025-03-10")))
	assert.Equal(t, 4, DaysBetween(day("2025-01-30"), day("2025-02-02")))
	assert.Equal(t, 366, DaysBetween(day("2024-01-01"), day("2024-12-31")))
	assert.Equal(t, 0, DaysBetween(day("2025-03-11"), day("2025-03-10")))
	// counting is arithmetic, so extreme windows cost nothing
	assert.Equal(t, 3652059, DaysBetween(day("0001-01-01"), day("9999-12-31")))
}

func TestDaysBetweenMatchesExpandRange(t *testing.T) {
	start, _ := ParseISODate("2024-02-25")
	end, _ := ParseISODate("2024-03-05")
	assert.Len(t, ExpandRange(start, end), DaysBetween(start, end))
}

func TestExpandRangeCrossesMonthBoundary(t *testing.T) {
	start, _ := ParseISODate("2025-01-30")
	end, _ := ParseISODate("2025-02-02")
	assert.Equal(t,
		[]string{"2025-01-30", "2025-01-31", "2025-02-01", "2025-02-02"},
		ExpandRange(start, end))
}

func TestExpandRangeCrossesYearBoundary(t *testing.T) {
	start, _ := ParseISODate("2024-12-30")
	end, _ := ParseISODate("2025-01-02")
	got := ExpandRange(start, end)
	assert.Len(t, got, 4)
	assert.Equal(t, "2024-12-30", got[0])
	assert.Equal(t, "2025-01-02", got[3])
}

func TestExpandRangeSingleDayAndInverted(t *testing.T) {
	d, _ := ParseISODate("2025-03-10")
	assert.Equal(t, []string{"2025-03-10"}, ExpandRange(d, d))
	assert.Nil(t, ExpandRange(AddDays(d, 1), d))
}

func TestPastAndToday(t *testing.T) {
	now := time.Now()
	assert.True(t, IsToday(now))
	assert.False(t, IsPastDate(now))
	assert.True(t, IsPastDate(AddDays(now, -1)))
	assert.False(t, IsPastDate(AddDays(now, 1)))
	assert.False(t, IsToday(AddDays(now, 1)))
}

func TestWeekday(t *testing.T) {
	// 2025-06-15 is a Sunday
	sunday, _ := ParseISODate("2025-06-15")
	assert.Equal(t, 0, Weekday(sunday))
	assert.Equal(t, 3, Weekday(AddDays(sunday, 3))) // Wednesday
}
