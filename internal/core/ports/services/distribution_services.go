package services

import (
	"context"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
)

// DistributionSvcFacade settles share sales. A distribution is one atomic
// unit of work: the sale split is computed, every touched account is
// credited, swept fees are marked paid, the investor pool and investment
// are updated, and the immutable distribution row is written, all inside a
// single database transaction.
type DistributionSvcFacade interface {
	// DistributeProfit settles a sale of shares from an investment.
	DistributeProfit(ctx context.Context, actor domain.Actor, req dto.DistributeProfitRequest) (*domain.ProfitDistribution, error)

	// GetDistributionByID retrieves one settled distribution.
	GetDistributionByID(ctx context.Context, distributionID string) (*domain.ProfitDistribution, error)

	// ListDistributionsByInvestment retrieves an investment's distributions.
	ListDistributionsByInvestment(ctx context.Context, investmentID string, limit int, offset int) ([]domain.ProfitDistribution, error)
}
