package cet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conges/internal/domain/employee"
)

var testNow = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func eligibleContext() CreditContext {
	seniority := testNow.AddDate(-3, 0, 0)
	return CreditContext{
		Employee:       employee.Employee{ID: "emp", SeniorityDate: &seniority},
		TakenThisYear:  22,
		CreditsBooked:  0,
		AccountBalance: 10,
	}
}

func TestCheckCreditPasses(t *testing.T) {
	require.NoError(t, CheckCredit(eligibleContext(), 3, testNow))
}

func TestCheckCreditNonPositiveDays(t *testing.T) {
	assert.ErrorIs(t, CheckCredit(eligibleContext(), 0, testNow), ErrInvalidDays)
	assert.ErrorIs(t, CheckCredit(eligibleContext(), -2, testNow), ErrInvalidDays)
}

func TestCheckCreditSeniorityUnknown(t *testing.T) {
	cc := eligibleContext()
	cc.Employee.SeniorityDate = nil
	assert.ErrorIs(t, CheckCredit(cc, 3, testNow), ErrSeniorityUnknown)
}

func TestCheckCreditInsufficientSeniority(t *testing.T) {
	cc := eligibleContext()
	recent := testNow.AddDate(0, -6, 0)
	cc.Employee.SeniorityDate = &recent
	assert.ErrorIs(t, CheckCredit(cc, 3, testNow), ErrInsufficientSeniority)

	// Exactly 365 calendar days is still a few hours short of the
	// mean-year threshold.
	almost := testNow.AddDate(0, 0, -365)
	cc.Employee.SeniorityDate = &almost
	assert.ErrorIs(t, CheckCredit(cc, 3, testNow), ErrInsufficientSeniority)

	enough := testNow.AddDate(0, 0, -366)
	cc.Employee.SeniorityDate = &enough
	assert.NoError(t, CheckCredit(cc, 3, testNow))
}

func TestCheckCreditInsufficientTakenDays(t *testing.T) {
	cc := eligibleContext()
	cc.TakenThisYear = 19.5
	// The taken-days reason wins even when later conditions would also
	// fail.
	cc.CreditsBooked = 5
	cc.AccountBalance = 59
	assert.ErrorIs(t, CheckCredit(cc, 3, testNow), ErrInsufficientTakenDays)
}

func TestCheckCreditAnnualCap(t *testing.T) {
	cc := eligibleContext()
	cc.CreditsBooked = 5
	assert.ErrorIs(t, CheckCredit(cc, 1, testNow), ErrAnnualCapReached)

	cc.CreditsBooked = 4
	assert.NoError(t, CheckCredit(cc, 1, testNow))
}

func TestCheckCreditCeiling(t *testing.T) {
	cc := eligibleContext()
	cc.AccountBalance = 58
	assert.ErrorIs(t, CheckCredit(cc, 3, testNow), ErrCeilingReached)
	assert.NoError(t, CheckCredit(cc, 2, testNow))
}

func TestCheckDebit(t *testing.T) {
	assert.NoError(t, CheckDebit(10, 10))
	assert.NoError(t, CheckDebit(10, 4))
	assert.ErrorIs(t, CheckDebit(10, 10.5), ErrInsufficientCET)
	assert.ErrorIs(t, CheckDebit(0, 1), ErrInsufficientCET)
	assert.ErrorIs(t, CheckDebit(10, 0), ErrInvalidDays)
}
