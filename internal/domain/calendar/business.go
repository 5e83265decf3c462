package calendar

import "time"

// DateKey normalizes a timestamp to its calendar day, the granularity
// every holiday and leave boundary is stored at.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// HolidaySet is a lookup of non-working reference dates.
type HolidaySet map[string]bool

func NewHolidaySet(dates []time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[DateKey(d)] = true
	}
	return set
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// CountBusinessDays counts the days in [start, end] inclusive that are
// neither a weekend day nor a holiday. This is the authoritative count
// used for persistence and balance deduction.
func CountBusinessDays(start, end time.Time, holidays HolidaySet) float64 {
	if end.Before(start) {
		return 0
	}
	count := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if isWeekend(d) {
			continue
		}
		if holidays[DateKey(d)] {
			continue
		}
		count++
	}
	return count
}

// AdjustForHalfDays applies the half-day boundary markers to a business
// day count. startHalf means the first day starts in the afternoon,
// endHalf means the last day ends at noon; a full single day carries
// neither marker, so no same-day special case is needed. The result is
// floored at zero.
func AdjustForHalfDays(count float64, startHalf, endHalf bool) float64 {
	if startHalf {
		count -= 0.5
	}
	if endHalf {
		count -= 0.5
	}
	if count < 0 {
		return 0
	}
	return count
}

// RequestDays is the full authoritative calculation for one request.
func RequestDays(start, end time.Time, startHalf, endHalf bool, holidays HolidaySet) float64 {
	return AdjustForHalfDays(CountBusinessDays(start, end, holidays), startHalf, endHalf)
}
