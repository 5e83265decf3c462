package cet

import (
	"context"
	"strings"
	"time"

	"conges/internal/domain/employee"
	"conges/internal/domain/leave"
)

// TxStore runs a unit of work against the account, request and leave
// ledger tables in one transaction.
type TxStore interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

type Tx interface {
	InsertRequest(ctx context.Context, req Request) (string, error)
	RequestForUpdate(ctx context.Context, id string) (Request, error)
	HasPendingOfKind(ctx context.Context, employeeID string, kind Kind) (bool, error)
	// CreditDaysBooked sums the validated and pending credit days
	// requested by the employee during the year.
	CreditDaysBooked(ctx context.Context, employeeID string, year int) (float64, error)
	MarkDecided(ctx context.Context, id string, status Status, deciderID, comment string, at time.Time) error

	AccountForUpdate(ctx context.Context, employeeID string) (Account, error)
	SaveAccountBalance(ctx context.Context, employeeID string, balance float64, at time.Time) error

	LeaveBalanceForUpdate(ctx context.Context, emp employee.Employee, year int) (leave.LeaveBalance, error)
	SaveLeaveComponents(ctx context.Context, b leave.LeaveBalance) error
}

type Service struct {
	Store     TxStore
	Directory leave.Directory
	Now       func() time.Time
}

func NewService(store TxStore, directory leave.Directory) *Service {
	return &Service{Store: store, Directory: directory, Now: time.Now}
}

// RequestTransfer records a pending credit or debit request after the
// eligibility rules pass. The balance mutation itself waits for the RH
// decision.
func (s *Service) RequestTransfer(ctx context.Context, employeeID string, kind Kind, days float64, reason string) (Request, error) {
	if !kind.Valid() {
		return Request{}, ErrUnknownKind
	}
	if days <= 0 {
		return Request{}, ErrInvalidDays
	}

	emp, err := s.Directory.Get(ctx, employeeID)
	if err != nil {
		return Request{}, err
	}

	now := s.Now()
	req := Request{
		EmployeeID:  emp.ID,
		Kind:        kind,
		Days:        days,
		Reason:      strings.TrimSpace(reason),
		Status:      StatusPending,
		RequestedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx Tx) error {
		pending, err := tx.HasPendingOfKind(ctx, emp.ID, kind)
		if err != nil {
			return err
		}
		if pending {
			return ErrPendingExists
		}

		account, err := tx.AccountForUpdate(ctx, emp.ID)
		if err != nil {
			return err
		}

		switch kind {
		case KindCredit:
			balance, err := tx.LeaveBalanceForUpdate(ctx, emp, now.Year())
			if err != nil {
				return err
			}
			booked, err := tx.CreditDaysBooked(ctx, emp.ID, now.Year())
			if err != nil {
				return err
			}
			cc := CreditContext{
				Employee:       emp,
				TakenThisYear:  balance.Taken,
				CreditsBooked:  booked,
				AccountBalance: account.Balance,
			}
			if err := CheckCredit(cc, days, now); err != nil {
				return err
			}
		case KindDebit:
			if err := CheckDebit(account.Balance, days); err != nil {
				return err
			}
		}

		id, err := tx.InsertRequest(ctx, req)
		if err != nil {
			return err
		}
		req.ID = id
		return nil
	})
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

// DecideRequest applies the RH decision. A validation moves the days
// between the account and the annual ledger in the same transaction as
// the status change, so a crash can never half-apply a transfer.
func (s *Service) DecideRequest(ctx context.Context, requestID, deciderID string, outcome Outcome, comment string) (Request, error) {
	var decided Request
	err := s.Store.WithTx(ctx, func(tx Tx) error {
		req, err := tx.RequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return ErrAlreadyProcessed
		}

		now := s.Now()
		if outcome == OutcomeRefuse {
			if err := tx.MarkDecided(ctx, req.ID, StatusRefused, deciderID, comment, now); err != nil {
				return err
			}
			decided = req
			decided.Status = StatusRefused
			decided.Decider = deciderID
			decided.DecidedAt = &now
			decided.Comment = comment
			return nil
		}

		emp, err := s.Directory.Get(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		account, err := tx.AccountForUpdate(ctx, emp.ID)
		if err != nil {
			return err
		}
		balance, err := tx.LeaveBalanceForUpdate(ctx, emp, req.Year())
		if err != nil {
			return err
		}

		// Conditions are re-checked against the present state: the
		// ledger may have moved since the request was filed.
		switch req.Kind {
		case KindCredit:
			if account.Balance+req.Days > ceilingDays {
				return ErrCeilingReached
			}
			if balance.Remaining < req.Days {
				return ErrInsufficientRemaining
			}
			account.Balance += req.Days
			balance.Acquired -= req.Days
		case KindDebit:
			if err := CheckDebit(account.Balance, req.Days); err != nil {
				return err
			}
			account.Balance -= req.Days
			balance.Compensatory += req.Days
		}
		balance.Remaining = leave.RemainingOf(balance)

		if err := tx.SaveAccountBalance(ctx, emp.ID, account.Balance, now); err != nil {
			return err
		}
		if err := tx.SaveLeaveComponents(ctx, balance); err != nil {
			return err
		}
		if err := tx.MarkDecided(ctx, req.ID, StatusValidated, deciderID, comment, now); err != nil {
			return err
		}

		decided = req
		decided.Status = StatusValidated
		decided.Decider = deciderID
		decided.DecidedAt = &now
		decided.Comment = comment
		return nil
	})
	if err != nil {
		return Request{}, err
	}
	return decided, nil
}

// Balance returns the account, creating it empty on first read.
func (s *Service) Balance(ctx context.Context, employeeID string) (Account, error) {
	var account Account
	err := s.Store.WithTx(ctx, func(tx Tx) error {
		var err error
		account, err = tx.AccountForUpdate(ctx, employeeID)
		return err
	})
	return account, err
}
