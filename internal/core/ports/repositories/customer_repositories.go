package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// CustomerRepositoryFacade persists customer records.
type CustomerRepositoryFacade interface {
	SaveCustomer(ctx context.Context, customer domain.Customer) error

	// SaveCustomerInTx persists a new customer within tx, for onboarding
	// flows that open the primary account in the same unit of work.
	SaveCustomerInTx(ctx context.Context, tx pgx.Tx, customer domain.Customer) error

	FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)

	UpdateCustomer(ctx context.Context, customer domain.Customer) error

	// UpdateCustomerInTx writes customer fields within tx, for approval
	// replays that resolve the request in the same unit of work.
	UpdateCustomerInTx(ctx context.Context, tx pgx.Tx, customer domain.Customer) error

	ListCustomers(ctx context.Context, limit int, offset int) ([]domain.Customer, error)
}

// UserRepositoryFacade persists back-office users.
type UserRepositoryFacade interface {
	SaveUser(ctx context.Context, user domain.User) error

	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	UpdateUser(ctx context.Context, user domain.User) error

	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}
