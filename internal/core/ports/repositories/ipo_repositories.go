package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// IPORepositoryFacade persists IPO applications.
type IPORepositoryFacade interface {
	SaveApplication(ctx context.Context, app domain.IPOApplication) error

	FindApplicationByID(ctx context.Context, applicationID string) (*domain.IPOApplication, error)

	// FindApplicationForUpdate locks the application row for the duration
	// of tx so concurrent state transitions serialize.
	FindApplicationForUpdate(ctx context.Context, tx pgx.Tx, applicationID string) (*domain.IPOApplication, error)

	// UpdateApplicationInTx writes status, allotment fields and amounts
	// within tx.
	UpdateApplicationInTx(ctx context.Context, tx pgx.Tx, app domain.IPOApplication) error

	// DeleteApplicationInTx removes the application row within tx. Any
	// outstanding block must have been released first.
	DeleteApplicationInTx(ctx context.Context, tx pgx.Tx, applicationID string) error

	ListApplicationsByCustomer(ctx context.Context, customerID string, limit int, offset int) ([]domain.IPOApplication, error)

	ListApplicationsByStatus(ctx context.Context, status domain.IPOStatus, limit int, offset int) ([]domain.IPOApplication, error)
}

// IPORepositoryWithTx extends the facade with transaction control.
type IPORepositoryWithTx interface {
	IPORepositoryFacade
	TxManager
}
