package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validated(start, end time.Time) LeaveRequest {
	return LeaveRequest{Status: StatusValidated, StartDate: start, EndDate: end}
}

func TestOutOfPeriodDays(t *testing.T) {
	t.Run("weekdays inside the main period do not count", func(t *testing.T) {
		requests := []LeaveRequest{validated(date(2025, 7, 7), date(2025, 7, 18))}
		assert.Equal(t, 0, OutOfPeriodDays(requests, 2025))
	})

	t.Run("weekends outside the main period do not count", func(t *testing.T) {
		// Sat Nov 1 to Sun Nov 2.
		requests := []LeaveRequest{validated(date(2025, 11, 1), date(2025, 11, 2))}
		assert.Equal(t, 0, OutOfPeriodDays(requests, 2025))
	})

	t.Run("request straddling the period boundary", func(t *testing.T) {
		// Wed Oct 29 to Tue Nov 4: only Nov 3 and 4 are out of period.
		requests := []LeaveRequest{validated(date(2025, 10, 29), date(2025, 11, 4))}
		assert.Equal(t, 2, OutOfPeriodDays(requests, 2025))
	})

	t.Run("pending and refused requests do not count", func(t *testing.T) {
		requests := []LeaveRequest{
			{Status: StatusPending, StartDate: date(2025, 11, 3), EndDate: date(2025, 11, 7)},
			{Status: StatusRefused, StartDate: date(2025, 12, 1), EndDate: date(2025, 12, 5)},
		}
		assert.Equal(t, 0, OutOfPeriodDays(requests, 2025))
	})

	t.Run("requests of another year do not count", func(t *testing.T) {
		requests := []LeaveRequest{validated(date(2024, 11, 4), date(2024, 11, 8))}
		assert.Equal(t, 0, OutOfPeriodDays(requests, 2025))
	})

	t.Run("counts accumulate across requests", func(t *testing.T) {
		requests := []LeaveRequest{
			validated(date(2025, 2, 3), date(2025, 2, 4)),   // Mon, Tue
			validated(date(2025, 11, 3), date(2025, 11, 5)), // Mon to Wed
		}
		assert.Equal(t, 5, OutOfPeriodDays(requests, 2025))
	})
}

func TestBonusForDays(t *testing.T) {
	assert.Equal(t, 0.0, BonusForDays(0))
	assert.Equal(t, 0.0, BonusForDays(2))
	assert.Equal(t, 1.0, BonusForDays(3))
	assert.Equal(t, 1.0, BonusForDays(5))
	assert.Equal(t, 2.0, BonusForDays(6))
	assert.Equal(t, 2.0, BonusForDays(15))
}

func TestFractionnementBonusReplacesValue(t *testing.T) {
	requests := []LeaveRequest{validated(date(2025, 11, 3), date(2025, 11, 7))}
	assert.Equal(t, 1.0, FractionnementBonus(requests, 2025))

	// Dropping the request drops the bonus on the next recompute.
	assert.Equal(t, 0.0, FractionnementBonus(nil, 2025))
}
