package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// LedgerRepositoryFacade persists the append-only transaction log.
type LedgerRepositoryFacade interface {
	// InsertTransactionInTx appends one transaction row within tx.
	// Transactions are immutable; there is no update or delete path.
	InsertTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// FindTransactionByID retrieves one transaction.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByAccount retrieves transactions for an account in
	// creation order (newest first) using token pagination.
	ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// LedgerRepositoryWithTx extends the facade with transaction control.
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TxManager
}
