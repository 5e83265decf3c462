package reports

import (
	"context"

	"conges/internal/platform/querier"
)

// BalanceRow is one line of the annual balance report, one employee
// per row for the requested year.
type BalanceRow struct {
	EmployeeID          string  `json:"employeeId"`
	FirstName           string  `json:"firstName"`
	LastName            string  `json:"lastName"`
	Year                int     `json:"year"`
	Acquired            float64 `json:"acquired"`
	CarriedOver         float64 `json:"carriedOver"`
	FractionnementBonus float64 `json:"fractionnementBonus"`
	Compensatory        float64 `json:"compensatory"`
	Taken               float64 `json:"taken"`
	Remaining           float64 `json:"remaining"`
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// BalanceRows lists every active employee with a ledger year, ordered
// by name for stable export output.
func (s *Store) BalanceRows(ctx context.Context, year int) ([]BalanceRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.first_name, e.last_name, b.year,
           b.acquired, b.carried_over, b.fractionnement_bonus,
           b.compensatory, b.taken, b.remaining
    FROM leave_balances b
    JOIN employees e ON e.id = b.employee_id
    WHERE b.year = $1 AND e.active
    ORDER BY e.last_name, e.first_name
  `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceRow
	for rows.Next() {
		var r BalanceRow
		err := rows.Scan(
			&r.EmployeeID, &r.FirstName, &r.LastName, &r.Year,
			&r.Acquired, &r.CarriedOver, &r.FractionnementBonus,
			&r.Compensatory, &r.Taken, &r.Remaining,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
