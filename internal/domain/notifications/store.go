package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"conges/internal/platform/querier"
)

var ErrNotFound = errors.New("notification not found")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const columns = "id, employee_id, kind, subject, COALESCE(body, ''), read, created_at"

func scan(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.EmployeeID, &n.Kind, &n.Subject, &n.Body, &n.Read, &n.CreatedAt)
	return n, err
}

func (s *Store) Insert(ctx context.Context, n Notification) (Notification, error) {
	return scan(s.DB.QueryRow(ctx, `
    INSERT INTO notifications (employee_id, kind, subject, body)
    VALUES ($1, $2, $3, NULLIF($4, ''))
    RETURNING `+columns+`
  `, n.EmployeeID, n.Kind, n.Subject, n.Body))
}

func (s *Store) ListForEmployee(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	query := "SELECT " + columns + " FROM notifications WHERE employee_id = $1"
	if unreadOnly {
		query += " AND read = false"
	}
	query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"

	rows, err := s.DB.Query(ctx, query, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountUnread(ctx context.Context, employeeID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE employee_id = $1 AND read = false",
		employeeID).Scan(&count)
	return count, err
}

// MarkRead is scoped to the owner so one employee cannot touch
// another's notifications.
func (s *Store) MarkRead(ctx context.Context, id, employeeID string) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE notifications SET read = true WHERE id = $1 AND employee_id = $2",
		id, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, employeeID string) (int, error) {
	tag, err := s.DB.Exec(ctx,
		"UPDATE notifications SET read = true WHERE employee_id = $1 AND read = false",
		employeeID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
