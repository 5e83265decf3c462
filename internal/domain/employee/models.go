package employee

import "time"

type Role string

const (
	RoleAgent     Role = "agent"
	RoleRH        Role = "rh"
	RoleDirection Role = "direction"
)

// CanFinalize reports whether the role can act as the final step of a
// validation circuit.
func (r Role) CanFinalize() bool {
	return r == RoleRH || r == RoleDirection
}

type ContractType string

const (
	ContractPermanent ContractType = "cdi"
	ContractFixedTerm ContractType = "cdd"
)

type Employee struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	FirstName       string       `json:"firstName"`
	LastName        string       `json:"lastName"`
	Role            Role         `json:"role"`
	SupervisorID    string       `json:"supervisorId,omitempty"`
	ValidationLevel int          `json:"validationLevel"`
	SeniorityDate   *time.Time   `json:"seniorityDate,omitempty"`
	ContractType    ContractType `json:"contractType"`
	ContractStart   *time.Time   `json:"contractStart,omitempty"`
	ContractEnd     *time.Time   `json:"contractEnd,omitempty"`
	Active          bool         `json:"active"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}
