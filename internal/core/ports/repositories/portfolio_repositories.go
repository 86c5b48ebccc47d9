package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// PortfolioRepositoryFacade persists portfolios and their holdings.
type PortfolioRepositoryFacade interface {
	FindPortfolioByCustomer(ctx context.Context, customerID string) (*domain.Portfolio, error)

	// FindPortfolioForUpdate locks the customer's portfolio row (creating
	// it first if absent) so aggregate adjustments serialize.
	FindPortfolioForUpdate(ctx context.Context, tx pgx.Tx, customerID string) (*domain.Portfolio, error)

	// UpdateAggregatesInTx writes totalInvestment/totalValue within tx.
	UpdateAggregatesInTx(ctx context.Context, tx pgx.Tx, portfolio domain.Portfolio) error

	// UpsertHoldingInTx merges quantity into an existing holding of the
	// same symbol and purchase price, or inserts a new holding row.
	UpsertHoldingInTx(ctx context.Context, tx pgx.Tx, holding domain.Holding) (*domain.Holding, error)

	FindHoldingByID(ctx context.Context, holdingID string) (*domain.Holding, error)

	FindHoldingForUpdate(ctx context.Context, tx pgx.Tx, holdingID string) (*domain.Holding, error)

	UpdateHoldingInTx(ctx context.Context, tx pgx.Tx, holding domain.Holding) error

	DeleteHoldingInTx(ctx context.Context, tx pgx.Tx, holdingID string) error

	ListHoldingsByPortfolio(ctx context.Context, portfolioID string) ([]domain.Holding, error)
}

// PortfolioRepositoryWithTx extends the facade with transaction control.
type PortfolioRepositoryWithTx interface {
	PortfolioRepositoryFacade
	TxManager
}
