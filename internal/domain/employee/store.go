package employee

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"conges/internal/platform/querier"
)

var ErrNotFound = errors.New("employee not found")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
  id, email, first_name, last_name, role, COALESCE(supervisor_id::text, ''),
  validation_level, seniority_date, contract_type, contract_start, contract_end,
  active, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.Email, &e.FirstName, &e.LastName, &e.Role, &e.SupervisorID,
		&e.ValidationLevel, &e.SeniorityDate, &e.ContractType, &e.ContractStart,
		&e.ContractEnd, &e.Active, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", id))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (Employee, string, error) {
	var e Employee
	var hash string
	err := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`, password_hash
    FROM employees
    WHERE email = $1 AND active
  `, email).Scan(
		&e.ID, &e.Email, &e.FirstName, &e.LastName, &e.Role, &e.SupervisorID,
		&e.ValidationLevel, &e.SeniorityDate, &e.ContractType, &e.ContractStart,
		&e.ContractEnd, &e.Active, &e.CreatedAt, &e.UpdatedAt, &hash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, "", ErrNotFound
	}
	return e, hash, err
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    ORDER BY last_name, first_name
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, e Employee, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (email, password_hash, first_name, last_name, role, supervisor_id,
      validation_level, seniority_date, contract_type, contract_start, contract_end, active)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6,'')::uuid,$7,$8,$9,$10,$11,true)
    RETURNING id
  `, e.Email, passwordHash, e.FirstName, e.LastName, e.Role, e.SupervisorID,
		e.ValidationLevel, e.SeniorityDate, e.ContractType, e.ContractStart, e.ContractEnd).Scan(&id)
	return id, err
}

func (s *Store) Update(ctx context.Context, e Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $2, last_name = $3, role = $4, supervisor_id = NULLIF($5,'')::uuid,
        validation_level = $6, seniority_date = $7, contract_type = $8,
        contract_start = $9, contract_end = $10, active = $11, updated_at = now()
    WHERE id = $1
  `, e.ID, e.FirstName, e.LastName, e.Role, e.SupervisorID, e.ValidationLevel,
		e.SeniorityDate, e.ContractType, e.ContractStart, e.ContractEnd, e.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RHIDs returns the employees able to close a circuit, used for
// notification fan-out on requests awaiting the final step.
func (s *Store) RHIDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id FROM employees WHERE role IN ($1,$2) AND active", RoleRH, RoleDirection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Email(ctx context.Context, id string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, "SELECT email FROM employees WHERE id = $1", id).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return email, err
}
