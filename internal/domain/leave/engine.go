package leave

import (
	"context"
	"fmt"
	"time"

	"conges/internal/domain/employee"
)

// TxStore runs a unit of work in one transaction. Every multi-statement
// mutation (decision + ledger recompute, creation + pending
// replacement) goes through it so a crash or concurrent call can never
// leave a partial state.
type TxStore interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the store surface available inside a transaction.
type Tx interface {
	InsertRequest(ctx context.Context, req LeaveRequest) (string, error)
	RequestForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	DeleteRequest(ctx context.Context, id string) error
	HasValidatedOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	ReplacePendingOverlaps(ctx context.Context, employeeID string, start, end time.Time) (int, error)
	StampLevel(ctx context.Context, id string, level int, validatorID string, at time.Time) error
	MarkValidated(ctx context.Context, id, validatorID string, at time.Time) error
	MarkRefused(ctx context.Context, id, validatorID, comment string, at time.Time) error
	ValidatedRequests(ctx context.Context, employeeID string, year int) ([]LeaveRequest, error)
	EnsureBalance(ctx context.Context, emp employee.Employee, year int) (LeaveBalance, error)
	SaveBalanceTotals(ctx context.Context, b LeaveBalance) error
	SaveBalanceComponents(ctx context.Context, b LeaveBalance) error
}

// CurrentStage derives the request's position in its circuit from the
// per-level sub-statuses, never from stored state machine flags.
func CurrentStage(req LeaveRequest, circuit Circuit) Stage {
	switch req.Status {
	case StatusRefused:
		return StageRefused
	case StatusValidated:
		return StageValidated
	}
	if circuit.Level1 != nil && req.Level1Status != LevelValidated {
		return StageAwaitingLevel1
	}
	if circuit.Level2 != nil && req.Level2Status != LevelValidated {
		return StageAwaitingLevel2
	}
	return StageAwaitingFinal
}

// CanValidate reports which level the validator may act at, or why the
// action is denied. An RH actor may not jump a hierarchical level that
// is still outstanding: the denial names the pending level instead of
// silently overriding it.
func CanValidate(validator employee.Employee, req LeaveRequest, circuit Circuit) (int, error) {
	switch CurrentStage(req, circuit) {
	case StageRefused, StageValidated:
		return 0, ErrAlreadyProcessed
	case StageAwaitingLevel1:
		if circuit.Level1 != nil && validator.ID == circuit.Level1.ID {
			return Level1, nil
		}
		if validator.Role.CanFinalize() {
			return 0, fmt.Errorf("%w: level 1 validation pending", ErrCircuitIncomplete)
		}
		return 0, ErrNotExpectedApprover
	case StageAwaitingLevel2:
		if circuit.Level2 != nil && validator.ID == circuit.Level2.ID {
			return Level2, nil
		}
		if validator.Role.CanFinalize() {
			return 0, fmt.Errorf("%w: level 2 validation pending", ErrCircuitIncomplete)
		}
		return 0, ErrNotExpectedApprover
	default: // StageAwaitingFinal
		if validator.Role.CanFinalize() {
			return LevelFinal, nil
		}
		return 0, ErrNotExpectedApprover
	}
}

// Engine drives a request through its circuit.
type Engine struct {
	Store     TxStore
	Directory Directory
	Resolver  *Resolver
	Now       func() time.Time
}

func NewEngine(store TxStore, directory Directory) *Engine {
	return &Engine{
		Store:     store,
		Directory: directory,
		Resolver:  NewResolver(directory),
		Now:       time.Now,
	}
}

// Decide applies one approver's outcome to a request.
//
// A refusal at any level is terminal and touches no balance. An
// intermediate validation stamps its level and reports the next
// expected one. The final validation flips the aggregate status and
// recomputes the ledger and the fractionnement bonus from the set of
// validated requests, all inside the same transaction. Re-validating
// an already validated request succeeds without re-applying anything.
func (e *Engine) Decide(ctx context.Context, requestID, validatorID string, outcome Outcome, comment string) (Decision, error) {
	validator, err := e.Directory.Get(ctx, validatorID)
	if err != nil {
		return Decision{}, err
	}

	var decision Decision
	err = e.Store.WithTx(ctx, func(tx Tx) error {
		req, err := tx.RequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		decision = Decision{RequestID: req.ID, EmployeeID: req.EmployeeID, NewStatus: req.Status}

		circuit, err := e.Resolver.Resolve(ctx, req.EmployeeID)
		if err != nil {
			return err
		}

		// Idempotent re-entry of the final approval.
		if req.Status == StatusValidated && outcome == OutcomeValidate && validator.Role.CanFinalize() {
			decision.Final = true
			return nil
		}

		level, err := CanValidate(validator, req, circuit)
		if err != nil {
			return err
		}

		now := e.Now()

		if outcome == OutcomeRefuse {
			if err := tx.MarkRefused(ctx, req.ID, validator.ID, comment, now); err != nil {
				return err
			}
			decision.NewStatus = StatusRefused
			decision.Final = true
			return nil
		}

		switch level {
		case Level1:
			if err := tx.StampLevel(ctx, req.ID, Level1, validator.ID, now); err != nil {
				return err
			}
			decision.NextLevel = LevelFinal
			if circuit.Level2 != nil {
				decision.NextLevel = Level2
			}
			return nil
		case Level2:
			if err := tx.StampLevel(ctx, req.ID, Level2, validator.ID, now); err != nil {
				return err
			}
			decision.NextLevel = LevelFinal
			return nil
		}

		// Final step.
		if err := tx.MarkValidated(ctx, req.ID, validator.ID, now); err != nil {
			return err
		}
		requester, err := e.Directory.Get(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		if err := RecomputeYear(ctx, tx, requester, req.Year()); err != nil {
			return err
		}
		decision.NewStatus = StatusValidated
		decision.Final = true
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	return decision, nil
}

// RecomputeYear re-derives taken, the fractionnement bonus and the
// remaining balance for one employee-year from the validated requests,
// the system's single source of truth.
func RecomputeYear(ctx context.Context, tx Tx, emp employee.Employee, year int) error {
	requests, err := tx.ValidatedRequests(ctx, emp.ID, year)
	if err != nil {
		return err
	}
	balance, err := tx.EnsureBalance(ctx, emp, year)
	if err != nil {
		return err
	}

	balance.Taken = TotalTaken(requests, year)
	balance.FractionnementBonus = FractionnementBonus(requests, year)
	balance.Remaining = RemainingOf(balance)
	return tx.SaveBalanceTotals(ctx, balance)
}
