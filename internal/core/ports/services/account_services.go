package services

import (
	"context"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
)

// AccountReaderSvc defines read operations for account data.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccountsByCustomer retrieves all accounts owned by a customer.
	ListAccountsByCustomer(ctx context.Context, customerID string) ([]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data. Updates and
// closures on accounts are governed: when the actor is a maker, the change
// is recorded as a pending modification request instead of being applied,
// and the returned request is non-nil.
type AccountWriterSvc interface {
	// CreateAccount opens an additional account for an existing customer.
	CreateAccount(ctx context.Context, actor domain.Actor, req dto.CreateAccountRequest) (*domain.Account, error)

	// UpdateAccount changes non-monetary account fields.
	UpdateAccount(ctx context.Context, actor domain.Actor, accountID string, req dto.UpdateAccountRequest) (*domain.Account, *domain.ModificationRequest, error)

	// CloseAccount retires an account that holds no funds. The row is kept
	// for its transaction history.
	CloseAccount(ctx context.Context, actor domain.Actor, accountID string) (*domain.ModificationRequest, error)
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
