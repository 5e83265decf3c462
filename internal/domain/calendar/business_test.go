package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCountBusinessDaysSkipsWeekends(t *testing.T) {
	// Mon 2025-06-02 .. Sun 2025-06-08: five weekdays.
	got := CountBusinessDays(date(2025, 6, 2), date(2025, 6, 8), nil)
	assert.Equal(t, 5.0, got)
}

func TestCountBusinessDaysSkipsHolidays(t *testing.T) {
	holidays := NewHolidaySet([]time.Time{date(2025, 7, 14)}) // a Monday
	got := CountBusinessDays(date(2025, 7, 14), date(2025, 7, 18), holidays)
	assert.Equal(t, 4.0, got)
}

func TestCountBusinessDaysHolidayOnWeekendNotDoubleCounted(t *testing.T) {
	holidays := NewHolidaySet([]time.Time{date(2025, 6, 7)}) // a Saturday
	got := CountBusinessDays(date(2025, 6, 2), date(2025, 6, 8), holidays)
	assert.Equal(t, 5.0, got)
}

func TestCountBusinessDaysInvertedRange(t *testing.T) {
	got := CountBusinessDays(date(2025, 6, 5), date(2025, 6, 2), nil)
	assert.Equal(t, 0.0, got)
}

func TestCountBusinessDaysExcludesExactlyWeekendsAndHolidays(t *testing.T) {
	holidays := NewHolidaySet([]time.Time{date(2025, 5, 1), date(2025, 5, 8)})
	start, end := date(2025, 5, 1), date(2025, 5, 15)

	expected := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if holidays[DateKey(d)] {
			continue
		}
		expected++
	}
	require.Equal(t, expected, CountBusinessDays(start, end, holidays))
}

func TestAdjustForHalfDays(t *testing.T) {
	// Single day: afternoon-only or morning-only is half a day.
	assert.Equal(t, 0.5, AdjustForHalfDays(1, true, false))
	assert.Equal(t, 0.5, AdjustForHalfDays(1, false, true))
	// Full single day carries no markers.
	assert.Equal(t, 1.0, AdjustForHalfDays(1, false, false))
	// Multi-day range trimmed on both sides.
	assert.Equal(t, 4.0, AdjustForHalfDays(5, true, true))
	// Floored at zero.
	assert.Equal(t, 0.0, AdjustForHalfDays(0.5, true, true))
}

func TestRequestDaysSingleHalfDay(t *testing.T) {
	day := date(2025, 9, 10) // a Wednesday
	got := RequestDays(day, day, false, true, nil)
	assert.Equal(t, 0.5, got)
}

func TestRequestDaysRangeWithHolidayAndHalves(t *testing.T) {
	holidays := NewHolidaySet([]time.Time{date(2025, 11, 11)}) // a Tuesday
	got := RequestDays(date(2025, 11, 10), date(2025, 11, 14), true, false, holidays)
	assert.Equal(t, 3.5, got)
}
