package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"conges/internal/platform/querier"
)

// Actions recorded in the trail.
const (
	ActionLeaveSubmitted   = "leave.submitted"
	ActionLeaveDecided     = "leave.decided"
	ActionLeaveDirectEntry = "leave.direct_entry"
	ActionLeaveDeleted     = "leave.deleted"
	ActionBalanceAdjusted  = "balance.adjusted"
	ActionCETRequested     = "cet.requested"
	ActionCETDecided       = "cet.decided"
	ActionEmployeeCreated  = "employee.created"
	ActionEmployeeUpdated  = "employee.updated"
	ActionHolidayCreated   = "holiday.created"
	ActionHolidayDeleted   = "holiday.deleted"
)

type Entry struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actorId"`
	Action    string          `json:"action"`
	TargetID  string          `json:"targetId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// Record appends to the trail. Auditing rides alongside the business
// write and must never fail it, so errors are logged and swallowed.
func (s *Store) Record(ctx context.Context, actorID, action, targetID string, payload any) {
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			slog.Warn("audit payload marshal failed", "action", action, "err", err)
			raw = nil
		}
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_log (actor_id, action, target_id, payload)
    VALUES (NULLIF($1, '')::uuid, $2, NULLIF($3, ''), $4)
  `, actorID, action, targetID, raw)
	if err != nil {
		slog.Warn("audit insert failed", "action", action, "err", err)
	}
}

const columns = "id, COALESCE(actor_id::text, ''), action, COALESCE(target_id, ''), payload, created_at"

func (s *Store) List(ctx context.Context, action string, limit, offset int) ([]Entry, error) {
	query := "SELECT " + columns + " FROM audit_log"
	args := []any{}
	if action != "" {
		args = append(args, action)
		query += " WHERE action = $1"
		query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"
	} else {
		query += " ORDER BY created_at DESC LIMIT $1 OFFSET $2"
	}
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func scan(row pgx.Row) (Entry, error) {
	var entry Entry
	err := row.Scan(&entry.ID, &entry.ActorID, &entry.Action, &entry.TargetID, &entry.Payload, &entry.CreatedAt)
	return entry, err
}
