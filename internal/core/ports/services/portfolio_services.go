package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
)

// PortfolioSvcFacade maintains customer portfolios. Holding mutations are
// governed; aggregate totals follow every holding change and never go
// negative.
type PortfolioSvcFacade interface {
	// GetPortfolio retrieves a customer's portfolio with its holdings.
	GetPortfolio(ctx context.Context, customerID string) (*domain.Portfolio, []domain.Holding, error)

	// GetHoldingByID retrieves one holding.
	GetHoldingByID(ctx context.Context, holdingID string) (*domain.Holding, error)

	// AddSharesInTx merges allotted shares into the customer's portfolio
	// inside a caller owned transaction, upserting the holding and
	// adjusting the aggregates.
	AddSharesInTx(ctx context.Context, tx pgx.Tx, actorID string, customerID string, symbol string, quantity int64, pricePerShare decimal.Decimal) (*domain.Holding, error)

	// UpdateHolding changes a holding's quantity or purchase price;
	// governed. Aggregates are recomputed when the change applies.
	UpdateHolding(ctx context.Context, actor domain.Actor, holdingID string, req dto.UpdateHoldingRequest) (*domain.Holding, *domain.ModificationRequest, error)

	// DeleteHolding removes a holding; governed. Aggregates drop by the
	// holding's investment and market value when the change applies.
	DeleteHolding(ctx context.Context, actor domain.Actor, holdingID string) (*domain.ModificationRequest, error)
}
