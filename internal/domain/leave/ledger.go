package leave

import (
	"time"

	"github.com/shopspring/decimal"

	"conges/internal/domain/employee"
)

const (
	fullAnnualAllotment = 25.0
	accrualPerMonth     = 2.08
	daysPerMonth        = 30.44
)

// TotalTaken re-derives the taken counter from the validated requests
// attributed to the year. Balances are never incremented in place:
// summing from source makes a re-validated request a no-op and lets a
// later deletion heal the ledger on the next recompute.
func TotalTaken(requests []LeaveRequest, year int) float64 {
	total := 0.0
	for _, req := range requests {
		if req.Status != StatusValidated || req.Year() != year {
			continue
		}
		total += req.BusinessDays
	}
	return total
}

// RemainingOf applies the ledger identity:
// remaining = acquired + carriedOver + fractionnementBonus + compensatory - taken.
func RemainingOf(b LeaveBalance) float64 {
	return b.Acquired + b.CarriedOver + b.FractionnementBonus + b.Compensatory - b.Taken
}

// DefaultAcquired is the base allotment for a new ledger year.
// Permanent staff get the full allotment; fixed-term contracts are
// pro-rated on the slice of the year the contract covers.
func DefaultAcquired(emp employee.Employee, year int) float64 {
	if emp.ContractType != employee.ContractFixedTerm || emp.ContractStart == nil {
		return fullAnnualAllotment
	}

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	start := *emp.ContractStart
	if start.Before(yearStart) {
		start = yearStart
	}
	end := yearEnd
	if emp.ContractEnd != nil && emp.ContractEnd.Before(yearEnd) {
		end = *emp.ContractEnd
	}
	if end.Before(start) {
		return 0
	}

	spanDays := end.Sub(start).Hours()/24 + 1
	if spanDays >= 365 {
		return fullAnnualAllotment
	}

	months := decimal.NewFromFloat(spanDays).Div(decimal.NewFromFloat(daysPerMonth))
	acquired := months.Mul(decimal.NewFromFloat(accrualPerMonth)).Round(2)
	if acquired.GreaterThan(decimal.NewFromFloat(fullAnnualAllotment)) {
		return fullAnnualAllotment
	}
	return acquired.InexactFloat64()
}

type AdjustField string

const (
	FieldAcquired     AdjustField = "acquired"
	FieldCarriedOver  AdjustField = "carriedOver"
	FieldCompensatory AdjustField = "compensatory"
)

// ApplyAdjustment applies a manual RH correction to one balance
// component. Compensatory floors at zero with the shortfall moved onto
// acquired; acquired itself can never go negative, and no adjustment
// may drive the remaining balance below zero.
func ApplyAdjustment(b LeaveBalance, field AdjustField, delta float64) (LeaveBalance, error) {
	switch field {
	case FieldAcquired:
		b.Acquired += delta
		if b.Acquired < 0 {
			return LeaveBalance{}, ErrAcquiredNegative
		}
	case FieldCarriedOver:
		b.CarriedOver += delta
		if b.CarriedOver < 0 {
			return LeaveBalance{}, ErrCarryNegative
		}
	case FieldCompensatory:
		b.Compensatory += delta
		if b.Compensatory < 0 {
			shortfall := -b.Compensatory
			b.Compensatory = 0
			b.Acquired -= shortfall
			if b.Acquired < 0 {
				return LeaveBalance{}, ErrAcquiredNegative
			}
		}
	default:
		return LeaveBalance{}, ErrUnknownField
	}

	b.Remaining = RemainingOf(b)
	if b.Remaining < 0 {
		return LeaveBalance{}, ErrRemainingNegative
	}
	return b, nil
}
