package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"conges/internal/domain/employee"
)

const requestColumns = `
  id, employee_id, start_date, end_date, start_half, end_half, business_days,
  COALESCE(reason, ''), status,
  COALESCE(level1_status, ''), COALESCE(level1_validator::text, ''), level1_at,
  COALESCE(level2_status, ''), COALESCE(level2_validator::text, ''), level2_at,
  COALESCE(final_validator::text, ''), validated_at, COALESCE(comment, ''), created_at`

func scanRequest(row pgx.Row) (LeaveRequest, error) {
	var r LeaveRequest
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.StartDate, &r.EndDate, &r.StartHalf, &r.EndHalf,
		&r.BusinessDays, &r.Reason, &r.Status,
		&r.Level1Status, &r.Level1Validator, &r.Level1At,
		&r.Level2Status, &r.Level2Validator, &r.Level2At,
		&r.FinalValidator, &r.ValidatedAt, &r.Comment, &r.CreatedAt,
	)
	if isNoRows(err) {
		return LeaveRequest{}, ErrNotFound
	}
	return r, err
}

func (t *storeTx) InsertRequest(ctx context.Context, req LeaveRequest) (string, error) {
	var id string
	err := t.q.QueryRow(ctx, `
    INSERT INTO leave_requests (
      employee_id, start_date, end_date, start_half, end_half, business_days,
      reason, status, level1_status, level1_validator, level1_at,
      level2_status, level2_validator, level2_at, final_validator, validated_at, comment)
    VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,
            NULLIF($9,''), NULLIF($10,'')::uuid, $11,
            NULLIF($12,''), NULLIF($13,'')::uuid, $14,
            NULLIF($15,'')::uuid, $16, NULLIF($17,''))
    RETURNING id
  `, req.EmployeeID, req.StartDate, req.EndDate, req.StartHalf, req.EndHalf,
		req.BusinessDays, req.Reason, req.Status,
		string(req.Level1Status), req.Level1Validator, req.Level1At,
		string(req.Level2Status), req.Level2Validator, req.Level2At,
		req.FinalValidator, req.ValidatedAt, req.Comment).Scan(&id)
	return id, err
}

func (t *storeTx) RequestForUpdate(ctx context.Context, id string) (LeaveRequest, error) {
	return scanRequest(t.q.QueryRow(ctx, "SELECT "+requestColumns+" FROM leave_requests WHERE id = $1 FOR UPDATE", id))
}

func (t *storeTx) DeleteRequest(ctx context.Context, id string) error {
	tag, err := t.q.Exec(ctx, "DELETE FROM leave_requests WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *storeTx) HasValidatedOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	var count int
	err := t.q.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests
    WHERE employee_id = $1 AND status = $2 AND start_date <= $4 AND end_date >= $3
  `, employeeID, StatusValidated, start, end).Scan(&count)
	return count > 0, err
}

// ReplacePendingOverlaps deletes the pending requests intersecting the
// new range: a resubmission over a pending request supersedes it.
func (t *storeTx) ReplacePendingOverlaps(ctx context.Context, employeeID string, start, end time.Time) (int, error) {
	tag, err := t.q.Exec(ctx, `
    DELETE FROM leave_requests
    WHERE employee_id = $1 AND status = $2 AND start_date <= $4 AND end_date >= $3
  `, employeeID, StatusPending, start, end)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (t *storeTx) StampLevel(ctx context.Context, id string, level int, validatorID string, at time.Time) error {
	var sql string
	switch level {
	case Level1:
		sql = "UPDATE leave_requests SET level1_status = $2, level1_validator = $3, level1_at = $4 WHERE id = $1"
	case Level2:
		sql = "UPDATE leave_requests SET level2_status = $2, level2_validator = $3, level2_at = $4 WHERE id = $1"
	default:
		return ErrUnknownField
	}
	_, err := t.q.Exec(ctx, sql, id, LevelValidated, validatorID, at)
	return err
}

func (t *storeTx) MarkValidated(ctx context.Context, id, validatorID string, at time.Time) error {
	_, err := t.q.Exec(ctx, `
    UPDATE leave_requests
    SET status = $2, final_validator = $3, validated_at = $4
    WHERE id = $1
  `, id, StatusValidated, validatorID, at)
	return err
}

func (t *storeTx) MarkRefused(ctx context.Context, id, validatorID, comment string, at time.Time) error {
	_, err := t.q.Exec(ctx, `
    UPDATE leave_requests
    SET status = $2, final_validator = $3, validated_at = $4, comment = NULLIF($5,'')
    WHERE id = $1
  `, id, StatusRefused, validatorID, at, comment)
	return err
}

func (t *storeTx) ValidatedRequests(ctx context.Context, employeeID string, year int) ([]LeaveRequest, error) {
	rows, err := t.q.Query(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests
    WHERE employee_id = $1 AND status = $2 AND EXTRACT(YEAR FROM start_date) = $3
    ORDER BY start_date
  `, employeeID, StatusValidated, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const balanceColumns = `employee_id, year, acquired, carried_over, fractionnement_bonus, compensatory, taken, remaining`

func scanBalance(row pgx.Row) (LeaveBalance, error) {
	var b LeaveBalance
	err := row.Scan(&b.EmployeeID, &b.Year, &b.Acquired, &b.CarriedOver,
		&b.FractionnementBonus, &b.Compensatory, &b.Taken, &b.Remaining)
	return b, err
}

// EnsureBalance returns the ledger year, creating it with the default
// allotment on first touch. The row is locked for the rest of the
// transaction.
func (t *storeTx) EnsureBalance(ctx context.Context, emp employee.Employee, year int) (LeaveBalance, error) {
	b, err := scanBalance(t.q.QueryRow(ctx,
		"SELECT "+balanceColumns+" FROM leave_balances WHERE employee_id = $1 AND year = $2 FOR UPDATE",
		emp.ID, year))
	if err == nil {
		return b, nil
	}
	if !isNoRows(err) {
		return LeaveBalance{}, err
	}

	acquired := DefaultAcquired(emp, year)
	return scanBalance(t.q.QueryRow(ctx, `
    INSERT INTO leave_balances (employee_id, year, acquired, carried_over, fractionnement_bonus, compensatory, taken, remaining)
    VALUES ($1, $2, $3, 0, 0, 0, 0, $3)
    ON CONFLICT (employee_id, year) DO UPDATE SET year = EXCLUDED.year
    RETURNING `+balanceColumns+`
  `, emp.ID, year, acquired))
}

func (t *storeTx) SaveBalanceTotals(ctx context.Context, b LeaveBalance) error {
	_, err := t.q.Exec(ctx, `
    UPDATE leave_balances
    SET taken = $3, fractionnement_bonus = $4, remaining = $5, updated_at = now()
    WHERE employee_id = $1 AND year = $2
  `, b.EmployeeID, b.Year, b.Taken, b.FractionnementBonus, b.Remaining)
	return err
}

func (t *storeTx) SaveBalanceComponents(ctx context.Context, b LeaveBalance) error {
	_, err := t.q.Exec(ctx, `
    UPDATE leave_balances
    SET acquired = $3, carried_over = $4, compensatory = $5, remaining = $6, updated_at = now()
    WHERE employee_id = $1 AND year = $2
  `, b.EmployeeID, b.Year, b.Acquired, b.CarriedOver, b.Compensatory, b.Remaining)
	return err
}

// Reads outside a transaction.

func (s *Store) GetRequest(ctx context.Context, id string) (LeaveRequest, error) {
	return scanRequest(s.DB.QueryRow(ctx, "SELECT "+requestColumns+" FROM leave_requests WHERE id = $1", id))
}

// ListScope restricts a listing to one employee or one supervisor's
// team; zero values list everything (RH view).
type ListScope struct {
	EmployeeID   string
	SupervisorID string
}

func (s *Store) ListRequests(ctx context.Context, scope ListScope, limit, offset int) ([]LeaveRequest, error) {
	query := "SELECT " + requestColumns + " FROM leave_requests WHERE 1=1"
	args := []any{}
	if scope.EmployeeID != "" {
		args = append(args, scope.EmployeeID)
		query += " AND employee_id = $1"
	}
	if scope.SupervisorID != "" {
		args = append(args, scope.SupervisorID)
		query += fmt.Sprintf(" AND employee_id IN (SELECT id FROM employees WHERE supervisor_id = $%d)", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

