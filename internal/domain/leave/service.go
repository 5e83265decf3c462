package leave

import (
	"context"
	"strings"
	"time"

	"conges/internal/domain/calendar"
)

// HolidayProvider supplies the non-working reference dates for a
// range. The calendar store implements it; tests use a literal set.
type HolidayProvider interface {
	SetForRange(ctx context.Context, start, end time.Time) (calendar.HolidaySet, error)
}

type Service struct {
	Store          TxStore
	Engine         *Engine
	Resolver       *Resolver
	Directory      Directory
	Holidays       HolidayProvider
	MinAdvanceDays int
	Now            func() time.Time
}

func NewService(store TxStore, directory Directory, holidays HolidayProvider, minAdvanceDays int) *Service {
	return &Service{
		Store:          store,
		Engine:         NewEngine(store, directory),
		Resolver:       NewResolver(directory),
		Directory:      directory,
		Holidays:       holidays,
		MinAdvanceDays: minAdvanceDays,
		Now:            time.Now,
	}
}

func (s *Service) validateRange(start, end time.Time, enforceNotice bool) error {
	if start.IsZero() || end.IsZero() {
		return ErrInvalidDates
	}
	if end.Before(start) {
		return ErrInvalidDates
	}
	if enforceNotice && s.MinAdvanceDays > 0 {
		today := s.Now().Truncate(24 * time.Hour)
		if start.Before(today.AddDate(0, 0, s.MinAdvanceDays)) {
			return ErrTooShortNotice
		}
	}
	return nil
}

func (s *Service) countDays(ctx context.Context, start, end time.Time, startHalf, endHalf bool) (float64, error) {
	holidays, err := s.Holidays.SetForRange(ctx, start, end)
	if err != nil {
		return 0, err
	}
	days := calendar.RequestDays(start, end, startHalf, endHalf, holidays)
	if days <= 0 {
		return 0, ErrZeroBusinessDays
	}
	return days, nil
}

// CreateRequest runs the submission pipeline: date validation,
// authoritative day count, sufficiency check against the ledger year
// (created on demand), then the overlap policy. A range intersecting a
// validated request is rejected outright; intersecting pending
// requests are replaced by the new submission and their count is
// reported back.
func (s *Service) CreateRequest(ctx context.Context, employeeID string, start, end time.Time, startHalf, endHalf bool, reason string) (CreateResult, error) {
	if err := s.validateRange(start, end, true); err != nil {
		return CreateResult{}, err
	}
	days, err := s.countDays(ctx, start, end, startHalf, endHalf)
	if err != nil {
		return CreateResult{}, err
	}

	emp, err := s.Directory.Get(ctx, employeeID)
	if err != nil {
		return CreateResult{}, err
	}

	result := CreateResult{BusinessDays: days}
	err = s.Store.WithTx(ctx, func(tx Tx) error {
		balance, err := tx.EnsureBalance(ctx, emp, start.Year())
		if err != nil {
			return err
		}
		if days > balance.Remaining {
			return ErrInsufficientBalance
		}

		overlaps, err := tx.HasValidatedOverlap(ctx, emp.ID, start, end)
		if err != nil {
			return err
		}
		if overlaps {
			return ErrOverlapsValidated
		}

		replaced, err := tx.ReplacePendingOverlaps(ctx, emp.ID, start, end)
		if err != nil {
			return err
		}
		result.ReplacedPending = replaced

		id, err := tx.InsertRequest(ctx, LeaveRequest{
			EmployeeID:   emp.ID,
			StartDate:    start,
			EndDate:      end,
			StartHalf:    startHalf,
			EndHalf:      endHalf,
			BusinessDays: days,
			Reason:       strings.TrimSpace(reason),
			Status:       StatusPending,
		})
		if err != nil {
			return err
		}
		result.ID = id
		return nil
	})
	if err != nil {
		return CreateResult{}, err
	}

	circuit, err := s.Resolver.Resolve(ctx, emp.ID)
	if err == nil {
		result.NextLevel = LevelFinal
		if circuit.Level1 != nil {
			result.NextLevel = Level1
		}
	}
	return result, nil
}

// CreateValidated is the RH direct-entry path: the request is created
// already stamped at every level and the ledger recompute runs in the
// same transaction. The advance-notice rule does not apply since these
// entries are typically retroactive.
func (s *Service) CreateValidated(ctx context.Context, actorID, employeeID string, start, end time.Time, startHalf, endHalf bool, comment string) (CreateResult, error) {
	if err := s.validateRange(start, end, false); err != nil {
		return CreateResult{}, err
	}
	days, err := s.countDays(ctx, start, end, startHalf, endHalf)
	if err != nil {
		return CreateResult{}, err
	}

	emp, err := s.Directory.Get(ctx, employeeID)
	if err != nil {
		return CreateResult{}, err
	}
	circuit, err := s.Resolver.Resolve(ctx, emp.ID)
	if err != nil {
		return CreateResult{}, err
	}

	result := CreateResult{BusinessDays: days}
	err = s.Store.WithTx(ctx, func(tx Tx) error {
		balance, err := tx.EnsureBalance(ctx, emp, start.Year())
		if err != nil {
			return err
		}
		if days > balance.Remaining {
			return ErrInsufficientBalance
		}

		overlaps, err := tx.HasValidatedOverlap(ctx, emp.ID, start, end)
		if err != nil {
			return err
		}
		if overlaps {
			return ErrOverlapsValidated
		}

		replaced, err := tx.ReplacePendingOverlaps(ctx, emp.ID, start, end)
		if err != nil {
			return err
		}
		result.ReplacedPending = replaced

		now := s.Now()
		req := LeaveRequest{
			EmployeeID:     emp.ID,
			StartDate:      start,
			EndDate:        end,
			StartHalf:      startHalf,
			EndHalf:        endHalf,
			BusinessDays:   days,
			Comment:        strings.TrimSpace(comment),
			Status:         StatusValidated,
			FinalValidator: actorID,
			ValidatedAt:    &now,
		}
		if circuit.Level1 != nil {
			req.Level1Status = LevelValidated
			req.Level1Validator = actorID
			req.Level1At = &now
		}
		if circuit.Level2 != nil {
			req.Level2Status = LevelValidated
			req.Level2Validator = actorID
			req.Level2At = &now
		}

		id, err := tx.InsertRequest(ctx, req)
		if err != nil {
			return err
		}
		result.ID = id

		return RecomputeYear(ctx, tx, emp, start.Year())
	})
	if err != nil {
		return CreateResult{}, err
	}
	return result, nil
}

// Decide delegates to the engine.
func (s *Service) Decide(ctx context.Context, requestID, validatorID string, outcome Outcome, comment string) (Decision, error) {
	return s.Engine.Decide(ctx, requestID, validatorID, outcome, comment)
}

// Delete removes a request (RH action). Deleting a validated request
// recomputes the year so the balance is restored through the same
// source-of-truth derivation as any other mutation.
func (s *Service) Delete(ctx context.Context, requestID string) error {
	return s.Store.WithTx(ctx, func(tx Tx) error {
		req, err := tx.RequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if err := tx.DeleteRequest(ctx, req.ID); err != nil {
			return err
		}
		if req.Status != StatusValidated {
			return nil
		}
		emp, err := s.Directory.Get(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		return RecomputeYear(ctx, tx, emp, req.Year())
	})
}

// AdjustBalance applies a manual correction to one component of the
// ledger year.
func (s *Service) AdjustBalance(ctx context.Context, employeeID string, year int, field AdjustField, delta float64) (LeaveBalance, error) {
	emp, err := s.Directory.Get(ctx, employeeID)
	if err != nil {
		return LeaveBalance{}, err
	}

	var adjusted LeaveBalance
	err = s.Store.WithTx(ctx, func(tx Tx) error {
		balance, err := tx.EnsureBalance(ctx, emp, year)
		if err != nil {
			return err
		}
		adjusted, err = ApplyAdjustment(balance, field, delta)
		if err != nil {
			return err
		}
		return tx.SaveBalanceComponents(ctx, adjusted)
	})
	if err != nil {
		return LeaveBalance{}, err
	}
	return adjusted, nil
}

// Balance returns the ledger year, creating it with the default
// allotment when read for the first time.
func (s *Service) Balance(ctx context.Context, employeeID string, year int) (LeaveBalance, error) {
	emp, err := s.Directory.Get(ctx, employeeID)
	if err != nil {
		return LeaveBalance{}, err
	}
	var balance LeaveBalance
	err = s.Store.WithTx(ctx, func(tx Tx) error {
		balance, err = tx.EnsureBalance(ctx, emp, year)
		return err
	})
	return balance, err
}

// NextApprovers lists who should be notified for a request sitting at
// the given level: the matching supervisor, or the RH group for the
// final step.
func (s *Service) NextApprovers(ctx context.Context, employeeID string, level int, rhIDs []string) ([]string, error) {
	circuit, err := s.Resolver.Resolve(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	switch level {
	case Level1:
		if circuit.Level1 != nil {
			return []string{circuit.Level1.ID}, nil
		}
	case Level2:
		if circuit.Level2 != nil {
			return []string{circuit.Level2.ID}, nil
		}
	}
	return rhIDs, nil
}
