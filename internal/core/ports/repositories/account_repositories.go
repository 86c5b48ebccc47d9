package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByCustomer retrieves all accounts owned by a customer.
	FindAccountsByCustomer(ctx context.Context, customerID string) ([]domain.Account, error)

	// FindOfficeAccount retrieves the office fee account.
	FindOfficeAccount(ctx context.Context) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccountDetails updates non-monetary account fields
	// (account number, status, primary flag). Balances are never touched
	// through this path.
	UpdateAccountDetails(ctx context.Context, account domain.Account) error
}

// AccountTxSupport defines the locking and balance mutation primitives
// used inside ledger transactions.
type AccountTxSupport interface {
	// SaveAccountInTx persists a new account within tx, for flows that
	// create an account together with its owner.
	SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error

	// FindAccountForUpdate locks one account row for the duration of tx.
	FindAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// FindAccountsForUpdate locks multiple account rows, acquiring the
	// locks in ascending account id order to avoid deadlocks between
	// overlapping operations.
	FindAccountsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateBalancesInTx writes the account's balance and blocked amount
	// within tx. The row must already be locked.
	UpdateBalancesInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error

	// UpdateAccountDetailsInTx writes non-monetary account fields within
	// tx, for approval replays that resolve the request in the same unit
	// of work.
	UpdateAccountDetailsInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTxSupport
}

// AccountRepositoryWithTx extends the facade with transaction control.
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TxManager
}
