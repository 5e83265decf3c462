package cet

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"conges/internal/domain/employee"
	"conges/internal/domain/leave"
	"conges/internal/platform/querier"
)

type Store struct {
	DB querier.Beginner
}

func NewStore(db querier.Beginner) *Store {
	return &Store{DB: db}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	pgtx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(&storeTx{q: pgtx}); err != nil {
		_ = pgtx.Rollback(ctx)
		return err
	}
	return pgtx.Commit(ctx)
}

type storeTx struct {
	q querier.Querier
}

var _ Tx = (*storeTx)(nil)

var _ TxStore = (*Store)(nil)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

const requestColumns = `
  id, employee_id, kind, days, COALESCE(reason, ''), status,
  COALESCE(decider::text, ''), decided_at, COALESCE(comment, ''), requested_at`

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.Kind, &req.Days, &req.Reason, &req.Status,
		&req.Decider, &req.DecidedAt, &req.Comment, &req.RequestedAt,
	)
	return req, err
}

func (t *storeTx) InsertRequest(ctx context.Context, req Request) (string, error) {
	var id string
	err := t.q.QueryRow(ctx, `
    INSERT INTO cet_requests (employee_id, kind, days, reason, status, requested_at)
    VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
    RETURNING id
  `, req.EmployeeID, string(req.Kind), req.Days, req.Reason, string(req.Status), req.RequestedAt).Scan(&id)
	return id, err
}

func (t *storeTx) RequestForUpdate(ctx context.Context, id string) (Request, error) {
	req, err := scanRequest(t.q.QueryRow(ctx,
		"SELECT "+requestColumns+" FROM cet_requests WHERE id = $1 FOR UPDATE", id))
	if isNoRows(err) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (t *storeTx) HasPendingOfKind(ctx context.Context, employeeID string, kind Kind) (bool, error) {
	var exists bool
	err := t.q.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM cet_requests
      WHERE employee_id = $1 AND kind = $2 AND status = $3
    )
  `, employeeID, string(kind), string(StatusPending)).Scan(&exists)
	return exists, err
}

func (t *storeTx) CreditDaysBooked(ctx context.Context, employeeID string, year int) (float64, error) {
	var days float64
	err := t.q.QueryRow(ctx, `
    SELECT COALESCE(SUM(days), 0) FROM cet_requests
    WHERE employee_id = $1 AND kind = $2 AND status IN ($3, $4)
      AND EXTRACT(YEAR FROM requested_at) = $5
  `, employeeID, string(KindCredit), string(StatusPending), string(StatusValidated), year).Scan(&days)
	return days, err
}

func (t *storeTx) MarkDecided(ctx context.Context, id string, status Status, deciderID, comment string, at time.Time) error {
	_, err := t.q.Exec(ctx, `
    UPDATE cet_requests
    SET status = $2, decider = $3, decided_at = $4, comment = NULLIF($5, '')
    WHERE id = $1
  `, id, string(status), deciderID, at, comment)
	return err
}

func (t *storeTx) AccountForUpdate(ctx context.Context, employeeID string) (Account, error) {
	account := Account{EmployeeID: employeeID}
	err := t.q.QueryRow(ctx,
		"SELECT balance, updated_at FROM cet_accounts WHERE employee_id = $1 FOR UPDATE",
		employeeID).Scan(&account.Balance, &account.UpdatedAt)
	if err == nil {
		return account, nil
	}
	if !isNoRows(err) {
		return Account{}, err
	}

	err = t.q.QueryRow(ctx, `
    INSERT INTO cet_accounts (employee_id, balance)
    VALUES ($1, 0)
    ON CONFLICT (employee_id) DO UPDATE SET employee_id = EXCLUDED.employee_id
    RETURNING balance, updated_at
  `, employeeID).Scan(&account.Balance, &account.UpdatedAt)
	return account, err
}

func (t *storeTx) SaveAccountBalance(ctx context.Context, employeeID string, balance float64, at time.Time) error {
	_, err := t.q.Exec(ctx,
		"UPDATE cet_accounts SET balance = $2, updated_at = $3 WHERE employee_id = $1",
		employeeID, balance, at)
	return err
}

const balanceColumns = "employee_id, year, acquired, carried_over, fractionnement_bonus, compensatory, taken, remaining"

func scanBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.EmployeeID, &b.Year, &b.Acquired, &b.CarriedOver,
		&b.FractionnementBonus, &b.Compensatory, &b.Taken, &b.Remaining,
	)
	return b, err
}

// LeaveBalanceForUpdate mirrors the leave ledger's ensure-on-read,
// locking the row so the transfer and the ledger move together.
func (t *storeTx) LeaveBalanceForUpdate(ctx context.Context, emp employee.Employee, year int) (leave.LeaveBalance, error) {
	b, err := scanBalance(t.q.QueryRow(ctx,
		"SELECT "+balanceColumns+" FROM leave_balances WHERE employee_id = $1 AND year = $2 FOR UPDATE",
		emp.ID, year))
	if err == nil {
		return b, nil
	}
	if !isNoRows(err) {
		return leave.LeaveBalance{}, err
	}

	acquired := leave.DefaultAcquired(emp, year)
	return scanBalance(t.q.QueryRow(ctx, `
    INSERT INTO leave_balances (employee_id, year, acquired, carried_over, fractionnement_bonus, compensatory, taken, remaining)
    VALUES ($1, $2, $3, 0, 0, 0, 0, $3)
    ON CONFLICT (employee_id, year) DO UPDATE SET year = EXCLUDED.year
    RETURNING `+balanceColumns+`
  `, emp.ID, year, acquired))
}

func (t *storeTx) SaveLeaveComponents(ctx context.Context, b leave.LeaveBalance) error {
	_, err := t.q.Exec(ctx, `
    UPDATE leave_balances
    SET acquired = $3, carried_over = $4, compensatory = $5, remaining = $6, updated_at = now()
    WHERE employee_id = $1 AND year = $2
  `, b.EmployeeID, b.Year, b.Acquired, b.CarriedOver, b.Compensatory, b.Remaining)
	return err
}

// Reads outside a transaction.

func (s *Store) GetRequest(ctx context.Context, id string) (Request, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx,
		"SELECT "+requestColumns+" FROM cet_requests WHERE id = $1", id))
	if isNoRows(err) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (s *Store) ListRequests(ctx context.Context, employeeID string, limit, offset int) ([]Request, error) {
	query := "SELECT " + requestColumns + " FROM cet_requests"
	args := []any{}
	if employeeID != "" {
		args = append(args, employeeID)
		query += " WHERE employee_id = $1"
		query += " ORDER BY requested_at DESC LIMIT $2 OFFSET $3"
	} else {
		query += " ORDER BY requested_at DESC LIMIT $1 OFFSET $2"
	}
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
