package cet

import "time"

// Kind is the direction of a transfer between the annual leave ledger
// and the time-savings account.
type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

func (k Kind) Valid() bool {
	return k == KindCredit || k == KindDebit
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusRefused   Status = "refused"
)

type Outcome string

const (
	OutcomeValidate Outcome = "validate"
	OutcomeRefuse   Outcome = "refuse"
)

// Account is the long-term day store. Its balance stays within
// [0, ceilingDays] at all times.
type Account struct {
	EmployeeID string    `json:"employeeId"`
	Balance    float64   `json:"balance"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Request struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employeeId"`
	Kind        Kind       `json:"kind"`
	Days        float64    `json:"days"`
	Reason      string     `json:"reason,omitempty"`
	Status      Status     `json:"status"`
	Decider     string     `json:"decider,omitempty"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
}

func (r Request) Year() int {
	return r.RequestedAt.Year()
}
