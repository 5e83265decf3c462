package calendar

import (
	"context"
	"time"

	"conges/internal/platform/querier"
)

type Holiday struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Year  int       `json:"year"`
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context, year int) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, date, label, year
    FROM holidays
    WHERE $1 = 0 OR year = $1
    ORDER BY date
  `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Label, &h.Year); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, date time.Time, label string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (date, label, year)
    VALUES ($1, $2, $3)
    ON CONFLICT (date) DO UPDATE SET label = EXCLUDED.label
    RETURNING id
  `, date, label, date.Year()).Scan(&id)
	return id, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM holidays WHERE id = $1", id)
	return err
}

// SetForRange loads the holiday dates intersecting [start, end], the
// input the business day count needs.
func (s *Store) SetForRange(ctx context.Context, start, end time.Time) (HolidaySet, error) {
	rows, err := s.DB.Query(ctx, "SELECT date FROM holidays WHERE date BETWEEN $1 AND $2", start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := HolidaySet{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		set[DateKey(d)] = true
	}
	return set, rows.Err()
}
