package notifications

import "time"

// Event kinds, used both as the notification row kind and as the
// dispatch task label.
const (
	KindNewRequest    = "leave.new_request"
	KindLevelProgress = "leave.level_progress"
	KindFinalDecision = "leave.final_decision"
	KindCETDecision   = "cet.decision"
)

type Notification struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Event is one outbound notification fanned out to its recipients.
type Event struct {
	Kind       string
	Recipients []string
	Subject    string
	Body       string
}
