package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
)

// LedgerEntry describes one balance movement against an already locked
// account. The account pointer is mutated in place so callers see the new
// balance and blocked amount after the call.
type LedgerEntry struct {
	Account       *domain.Account
	Amount        decimal.Decimal
	Type          domain.TransactionType
	ReferenceType domain.ReferenceType
	ReferenceID   string
	Notes         string
}

// LedgerReaderSvc defines read operations over the transaction log.
type LedgerReaderSvc interface {
	// GetTransactionByID retrieves one ledger transaction.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// GetStatement retrieves an account's transactions newest first with
	// token pagination.
	GetStatement(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error)
}

// LedgerWriterSvc defines the externally invoked money movements. Each call
// runs in its own database transaction.
type LedgerWriterSvc interface {
	// Deposit credits an account.
	Deposit(ctx context.Context, actor domain.Actor, accountID string, req dto.MoveFundsRequest) (*domain.Transaction, error)

	// Withdraw debits an account. Fails with ErrInsufficientFunds when the
	// amount exceeds the available (unblocked) balance.
	Withdraw(ctx context.Context, actor domain.Actor, accountID string, req dto.MoveFundsRequest) (*domain.Transaction, error)
}

// LedgerTxSvc defines the in-transaction movement primitives other services
// compose into larger units of work. The caller owns tx and must have
// locked the entry's account row already.
type LedgerTxSvc interface {
	// CreditInTx raises the balance and appends the transaction.
	CreditInTx(ctx context.Context, tx pgx.Tx, actorID string, entry LedgerEntry) (*domain.Transaction, error)

	// DebitInTx lowers the balance and appends the transaction. Fails with
	// ErrInsufficientFunds when the amount exceeds the available balance.
	DebitInTx(ctx context.Context, tx pgx.Tx, actorID string, entry LedgerEntry) (*domain.Transaction, error)

	// BlockFundsInTx raises the blocked amount without moving the balance
	// and appends a zero-amount audit transaction. Fails with
	// ErrInsufficientFunds when the amount exceeds the available balance.
	BlockFundsInTx(ctx context.Context, tx pgx.Tx, actorID string, entry LedgerEntry) (*domain.Transaction, error)

	// ReleaseFundsInTx lowers the blocked amount without moving the
	// balance and appends a zero-amount audit transaction.
	ReleaseFundsInTx(ctx context.Context, tx pgx.Tx, actorID string, entry LedgerEntry) (*domain.Transaction, error)

	// ConsumeBlockedInTx settles a previously blocked amount: the blocked
	// amount and the balance both drop by the entry amount.
	ConsumeBlockedInTx(ctx context.Context, tx pgx.Tx, actorID string, entry LedgerEntry) (*domain.Transaction, error)
}

// LedgerSvcFacade combines all ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerTxSvc
}
