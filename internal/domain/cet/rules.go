package cet

import (
	"time"

	"conges/internal/domain/employee"
)

const (
	// minSeniorityDays is one mean year, so February 29 hires are not
	// eligible a few hours early.
	minSeniorityDays = 365.25
	minTakenDays     = 20.0
	annualCreditCap  = 5.0
	ceilingDays      = 60.0
)

// CreditContext carries the facts the credit rule needs, gathered by
// the caller inside the deciding transaction.
type CreditContext struct {
	Employee       employee.Employee
	TakenThisYear  float64
	CreditsBooked  float64 // validated plus pending credit days this year
	AccountBalance float64
}

// CheckCredit validates a credit request (annual leave moving into the
// account). Conditions are checked from the most personal to the most
// global so the caller can surface the most specific refusal reason.
func CheckCredit(cc CreditContext, days float64, now time.Time) error {
	if days <= 0 {
		return ErrInvalidDays
	}
	if cc.Employee.SeniorityDate == nil {
		return ErrSeniorityUnknown
	}
	if now.Sub(*cc.Employee.SeniorityDate).Hours()/24 < minSeniorityDays {
		return ErrInsufficientSeniority
	}
	if cc.TakenThisYear < minTakenDays {
		return ErrInsufficientTakenDays
	}
	if cc.CreditsBooked >= annualCreditCap {
		return ErrAnnualCapReached
	}
	if cc.AccountBalance+days > ceilingDays {
		return ErrCeilingReached
	}
	return nil
}

// CheckDebit validates a debit request (account days released back to
// annual leave). Seniority and taken-days conditions do not apply.
func CheckDebit(accountBalance, days float64) error {
	if days <= 0 {
		return ErrInvalidDays
	}
	if days > accountBalance {
		return ErrInsufficientCET
	}
	return nil
}
