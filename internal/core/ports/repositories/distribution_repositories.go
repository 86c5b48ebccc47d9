package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// DistributionRepositoryFacade persists profit distribution records.
// Distributions are immutable once written.
type DistributionRepositoryFacade interface {
	InsertDistributionInTx(ctx context.Context, tx pgx.Tx, dist domain.ProfitDistribution) error

	FindDistributionByID(ctx context.Context, distributionID string) (*domain.ProfitDistribution, error)

	ListDistributionsByInvestment(ctx context.Context, investmentID string, limit int, offset int) ([]domain.ProfitDistribution, error)
}

// FeeRepositoryFacade persists customer-owed charges.
type FeeRepositoryFacade interface {
	SaveFee(ctx context.Context, fee domain.Fee) error

	FindFeeByID(ctx context.Context, feeID string) (*domain.Fee, error)

	// ListPendingFeesForUpdate locks the customer's pending fee rows
	// (oldest first) so a concurrent sweep cannot double-pay them.
	ListPendingFeesForUpdate(ctx context.Context, tx pgx.Tx, customerID string) ([]domain.Fee, error)

	// MarkFeePaidInTx marks one fee paid out of a distribution within tx.
	MarkFeePaidInTx(ctx context.Context, tx pgx.Tx, feeID string, distributionID string, userID string) error

	// UpdateFeeStatus sets a pending fee to waived (or back) outside any
	// distribution.
	UpdateFeeStatus(ctx context.Context, fee domain.Fee) error

	ListFeesByCustomer(ctx context.Context, customerID string, limit int, offset int) ([]domain.Fee, error)
}
