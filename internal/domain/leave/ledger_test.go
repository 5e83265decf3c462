package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conges/internal/domain/employee"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func TestTotalTaken(t *testing.T) {
	requests := []LeaveRequest{
		{Status: StatusValidated, StartDate: date(2025, 3, 3), BusinessDays: 5},
		{Status: StatusValidated, StartDate: date(2025, 7, 7), BusinessDays: 2.5},
		{Status: StatusPending, StartDate: date(2025, 8, 4), BusinessDays: 3},
		{Status: StatusRefused, StartDate: date(2025, 9, 1), BusinessDays: 4},
		{Status: StatusValidated, StartDate: date(2024, 12, 30), BusinessDays: 2},
	}

	assert.Equal(t, 7.5, TotalTaken(requests, 2025))
	assert.Equal(t, 2.0, TotalTaken(requests, 2024))
	assert.Equal(t, 0.0, TotalTaken(requests, 2023))
}

func TestRemainingOf(t *testing.T) {
	b := LeaveBalance{
		Acquired:            25,
		CarriedOver:         3,
		FractionnementBonus: 2,
		Compensatory:        1.5,
		Taken:               10,
	}
	assert.Equal(t, 21.5, RemainingOf(b))
}

func TestDefaultAcquiredPermanent(t *testing.T) {
	emp := employee.Employee{ContractType: employee.ContractPermanent}
	assert.Equal(t, 25.0, DefaultAcquired(emp, 2025))
}

func TestDefaultAcquiredFixedTermFullYear(t *testing.T) {
	emp := employee.Employee{
		ContractType:  employee.ContractFixedTerm,
		ContractStart: datePtr(2025, 1, 1),
		ContractEnd:   datePtr(2025, 12, 31),
	}
	assert.Equal(t, 25.0, DefaultAcquired(emp, 2025))
}

func TestDefaultAcquiredFixedTermHalfYear(t *testing.T) {
	// 182 days of contract inside the year.
	emp := employee.Employee{
		ContractType:  employee.ContractFixedTerm,
		ContractStart: datePtr(2025, 1, 1),
		ContractEnd:   datePtr(2025, 7, 1),
	}
	assert.Equal(t, 12.44, DefaultAcquired(emp, 2025))
}

func TestDefaultAcquiredFixedTermClampedToYear(t *testing.T) {
	// Multi-year contract: the slice inside 2025 covers the whole year.
	emp := employee.Employee{
		ContractType:  employee.ContractFixedTerm,
		ContractStart: datePtr(2024, 6, 1),
		ContractEnd:   datePtr(2026, 5, 31),
	}
	assert.Equal(t, 25.0, DefaultAcquired(emp, 2025))
}

func TestDefaultAcquiredFixedTermOutsideYear(t *testing.T) {
	emp := employee.Employee{
		ContractType:  employee.ContractFixedTerm,
		ContractStart: datePtr(2024, 1, 1),
		ContractEnd:   datePtr(2024, 6, 30),
	}
	assert.Equal(t, 0.0, DefaultAcquired(emp, 2025))
}

func TestDefaultAcquiredFixedTermNoStartDate(t *testing.T) {
	emp := employee.Employee{ContractType: employee.ContractFixedTerm}
	assert.Equal(t, 25.0, DefaultAcquired(emp, 2025))
}

func TestApplyAdjustment(t *testing.T) {
	base := LeaveBalance{Acquired: 25, Taken: 10, Remaining: 15}

	t.Run("acquired", func(t *testing.T) {
		out, err := ApplyAdjustment(base, FieldAcquired, -5)
		require.NoError(t, err)
		assert.Equal(t, 20.0, out.Acquired)
		assert.Equal(t, 10.0, out.Remaining)
	})

	t.Run("acquired cannot go negative", func(t *testing.T) {
		_, err := ApplyAdjustment(base, FieldAcquired, -30)
		require.ErrorIs(t, err, ErrAcquiredNegative)
	})

	t.Run("carried over", func(t *testing.T) {
		out, err := ApplyAdjustment(base, FieldCarriedOver, 3)
		require.NoError(t, err)
		assert.Equal(t, 3.0, out.CarriedOver)
		assert.Equal(t, 18.0, out.Remaining)
	})

	t.Run("carried over cannot go negative", func(t *testing.T) {
		_, err := ApplyAdjustment(base, FieldCarriedOver, -1)
		require.ErrorIs(t, err, ErrCarryNegative)
	})

	t.Run("compensatory shortfall spills onto acquired", func(t *testing.T) {
		b := base
		b.Compensatory = 2
		out, err := ApplyAdjustment(b, FieldCompensatory, -5)
		require.NoError(t, err)
		assert.Equal(t, 0.0, out.Compensatory)
		assert.Equal(t, 22.0, out.Acquired)
		assert.Equal(t, 12.0, out.Remaining)
	})

	t.Run("remaining cannot go negative", func(t *testing.T) {
		b := LeaveBalance{Acquired: 25, CarriedOver: 5, Taken: 28}
		_, err := ApplyAdjustment(b, FieldCarriedOver, -4)
		require.ErrorIs(t, err, ErrRemainingNegative)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ApplyAdjustment(base, AdjustField("taken"), 1)
		require.ErrorIs(t, err, ErrUnknownField)
	})
}
