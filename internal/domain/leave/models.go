package leave

import (
	"time"

	"conges/internal/domain/employee"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusRefused   Status = "refused"
)

// LevelStatus tracks one hierarchical step of a request. A level is
// either untouched or validated; a refusal terminates the whole
// request instead of being recorded per level.
type LevelStatus string

const (
	LevelNone      LevelStatus = ""
	LevelValidated LevelStatus = "validated"
)

type Outcome string

const (
	OutcomeValidate Outcome = "validate"
	OutcomeRefuse   Outcome = "refuse"
)

// Approval levels. LevelFinal is the closing step held by RH or
// direction regardless of circuit depth.
const (
	Level1     = 1
	Level2     = 2
	LevelFinal = 3
)

type Stage int

const (
	StageAwaitingLevel1 Stage = iota
	StageAwaitingLevel2
	StageAwaitingFinal
	StageValidated
	StageRefused
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingLevel1:
		return "awaiting_level1"
	case StageAwaitingLevel2:
		return "awaiting_level2"
	case StageAwaitingFinal:
		return "awaiting_rh"
	case StageValidated:
		return "validated"
	case StageRefused:
		return "refused"
	}
	return "unknown"
}

type LeaveRequest struct {
	ID              string      `json:"id"`
	EmployeeID      string      `json:"employeeId"`
	StartDate       time.Time   `json:"startDate"`
	EndDate         time.Time   `json:"endDate"`
	StartHalf       bool        `json:"startHalf"`
	EndHalf         bool        `json:"endHalf"`
	BusinessDays    float64     `json:"businessDays"`
	Reason          string      `json:"reason,omitempty"`
	Status          Status      `json:"status"`
	Level1Status    LevelStatus `json:"level1Status,omitempty"`
	Level1Validator string      `json:"level1Validator,omitempty"`
	Level1At        *time.Time  `json:"level1At,omitempty"`
	Level2Status    LevelStatus `json:"level2Status,omitempty"`
	Level2Validator string      `json:"level2Validator,omitempty"`
	Level2At        *time.Time  `json:"level2At,omitempty"`
	FinalValidator  string      `json:"finalValidator,omitempty"`
	ValidatedAt     *time.Time  `json:"validatedAt,omitempty"`
	Comment         string      `json:"comment,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Year is the ledger year a request is attributed to: the year of its
// start date.
func (r LeaveRequest) Year() int {
	return r.StartDate.Year()
}

type LeaveBalance struct {
	EmployeeID          string  `json:"employeeId"`
	Year                int     `json:"year"`
	Acquired            float64 `json:"acquired"`
	CarriedOver         float64 `json:"carriedOver"`
	FractionnementBonus float64 `json:"fractionnementBonus"`
	Compensatory        float64 `json:"compensatory"`
	Taken               float64 `json:"taken"`
	Remaining           float64 `json:"remaining"`
}

// Circuit is the ordered approver chain for one requester: up to two
// hierarchical levels, always closed by the RH step.
type Circuit struct {
	Level1 *employee.Employee
	Level2 *employee.Employee
}

func (c Circuit) Depth() int {
	switch {
	case c.Level2 != nil:
		return 2
	case c.Level1 != nil:
		return 1
	}
	return 0
}

// Decision is the outcome of one approval step.
type Decision struct {
	RequestID  string `json:"requestId"`
	EmployeeID string `json:"employeeId"`
	NewStatus  Status `json:"newStatus"`
	Final      bool   `json:"isFinal"`
	NextLevel  int    `json:"nextLevel,omitempty"`
}

type CreateResult struct {
	ID              string  `json:"id"`
	BusinessDays    float64 `json:"businessDays"`
	ReplacedPending int     `json:"replacedPendingCount"`
	NextLevel       int     `json:"-"`
}
