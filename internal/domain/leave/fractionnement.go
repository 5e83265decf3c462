package leave

import "time"

// The main vacation period runs May 1 to October 31. Weekdays of
// validated leave taken outside it earn the fractionnement bonus.

func inMainPeriod(m time.Month) bool {
	return m >= time.May && m <= time.October
}

// OutOfPeriodDays counts, over the validated requests attributed to
// the year, the weekdays falling outside the main period. Holidays are
// deliberately not excluded here: the rule counts calendar weekdays,
// not deductible business days.
func OutOfPeriodDays(requests []LeaveRequest, year int) int {
	count := 0
	for _, req := range requests {
		if req.Status != StatusValidated || req.Year() != year {
			continue
		}
		for d := req.StartDate; !d.After(req.EndDate); d = d.AddDate(0, 0, 1) {
			if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
				continue
			}
			if inMainPeriod(d.Month()) {
				continue
			}
			count++
		}
	}
	return count
}

// BonusForDays maps an out-of-period day count to bonus days:
// fewer than 3 earns nothing, 3 to 5 earn one day, 6 or more earn two.
func BonusForDays(days int) float64 {
	switch {
	case days >= 6:
		return 2
	case days >= 3:
		return 1
	}
	return 0
}

// FractionnementBonus computes the value that replaces the stored
// bonus on each recompute. It is never incremented.
func FractionnementBonus(requests []LeaveRequest, year int) float64 {
	return BonusForDays(OutOfPeriodDays(requests, year))
}
