package leave

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"conges/internal/platform/querier"
)

type Store struct {
	DB querier.Beginner
}

func NewStore(db querier.Beginner) *Store {
	return &Store{DB: db}
}

// WithTx wraps fn in one transaction; commit only when fn succeeds.
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

// storeTx implements Tx over a live pgx transaction.
type storeTx struct {
	q querier.Querier
}

var _ Tx = (*storeTx)(nil)

var _ TxStore = (*Store)(nil)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
