package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxManager exposes database transaction control to services that
// orchestrate multi-repository units of work. Every multi-step ledger
// operation runs between one Begin and one Commit; Rollback after a commit
// is a no-op.
type TxManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	Rollback(ctx context.Context, tx pgx.Tx) error
}
