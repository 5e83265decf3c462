package leave

import (
	"context"

	"conges/internal/domain/employee"
)

// Directory is the read side of the employee store the circuit
// resolution and the approval engine depend on.
type Directory interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

type Resolver struct {
	Directory Directory
}

func NewResolver(directory Directory) *Resolver {
	return &Resolver{Directory: directory}
}

// Resolve walks the requester's supervisor chain: the direct
// supervisor is level 1, that supervisor's own supervisor is level 2.
// The RH step always closes the circuit, so an employee without a
// supervisor still has a one-step circuit.
func (r *Resolver) Resolve(ctx context.Context, employeeID string) (Circuit, error) {
	emp, err := r.Directory.Get(ctx, employeeID)
	if err != nil {
		return Circuit{}, err
	}

	var circuit Circuit
	if emp.SupervisorID == "" || emp.SupervisorID == emp.ID {
		return circuit, nil
	}

	level1, err := r.Directory.Get(ctx, emp.SupervisorID)
	if err != nil {
		return Circuit{}, err
	}
	circuit.Level1 = &level1

	if level1.SupervisorID == "" || level1.SupervisorID == level1.ID || level1.SupervisorID == emp.ID {
		return circuit, nil
	}

	level2, err := r.Directory.Get(ctx, level1.SupervisorID)
	if err != nil {
		return Circuit{}, err
	}
	circuit.Level2 = &level2

	return circuit, nil
}
