package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// InvestorRepositoryFacade persists investor capital pools.
type InvestorRepositoryFacade interface {
	SaveInvestor(ctx context.Context, investor domain.Investor) error

	// SaveInvestorInTx persists a new investor within tx, for registration
	// flows that open the escrow account in the same unit of work.
	SaveInvestorInTx(ctx context.Context, tx pgx.Tx, investor domain.Investor) error

	FindInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error)

	// FindInvestorForUpdate locks the investor row so concurrent capital
	// mutations serialize.
	FindInvestorForUpdate(ctx context.Context, tx pgx.Tx, investorID string) (*domain.Investor, error)

	// UpdateCapitalInTx writes total/available/invested/profit within tx.
	UpdateCapitalInTx(ctx context.Context, tx pgx.Tx, investor domain.Investor) error

	ListInvestors(ctx context.Context, limit int, offset int) ([]domain.Investor, error)
}

// InvestmentRepositoryFacade persists funded stakes.
type InvestmentRepositoryFacade interface {
	// SaveInvestmentInTx inserts the investment created by a capital
	// reservation, within the same tx as the capital move.
	SaveInvestmentInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error

	FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error)

	// FindInvestmentForUpdate locks the investment row for a sale
	// settlement.
	FindInvestmentForUpdate(ctx context.Context, tx pgx.Tx, investmentID string) (*domain.Investment, error)

	// UpdateRealizationInTx writes shares held, cumulative sold/profit/fee
	// figures, market price and status within tx.
	UpdateRealizationInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error

	ListInvestmentsByInvestor(ctx context.Context, investorID string, limit int, offset int) ([]domain.Investment, error)
}

// InvestorRepositoryWithTx extends the investor facade with transaction
// control.
type InvestorRepositoryWithTx interface {
	InvestorRepositoryFacade
	TxManager
}
