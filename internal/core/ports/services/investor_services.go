package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
)

// InvestorSvcFacade manages investor capital pools and their funded stakes.
type InvestorSvcFacade interface {
	// CreateInvestor registers a capital partner and opens their escrow
	// account in a single unit of work.
	CreateInvestor(ctx context.Context, actor domain.Actor, req dto.CreateInvestorRequest) (*domain.Investor, error)

	// GetInvestorByID retrieves one investor.
	GetInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error)

	// ListInvestors retrieves a paginated list of investors.
	ListInvestors(ctx context.Context, limit int, offset int) ([]domain.Investor, error)

	// AddCapital tops up the pool: total and available capital rise
	// together and the escrow account is credited.
	AddCapital(ctx context.Context, actor domain.Actor, investorID string, req dto.AddCapitalRequest) (*domain.Investor, error)

	// ReserveForInvestment moves capital from available to invested and
	// creates the Investment. Fails with ErrInsufficientCapital when the
	// cost exceeds the available capital.
	ReserveForInvestment(ctx context.Context, actor domain.Actor, req dto.ReserveInvestmentRequest) (*domain.Investment, error)

	// ReserveForInvestmentInTx is the same reservation inside a caller
	// owned transaction, used when an allotment funds the stake in the
	// same unit of work.
	ReserveForInvestmentInTx(ctx context.Context, tx pgx.Tx, actorID string, req dto.ReserveInvestmentRequest) (*domain.Investment, error)

	// SettleSaleInTx applies one distribution's outcome to the investor
	// pool and the investment row inside a caller owned transaction. The
	// investment is mutated in place with its post-sale figures.
	SettleSaleInTx(ctx context.Context, tx pgx.Tx, actorID string, investment *domain.Investment, sharesSold int64, salePrice decimal.Decimal, breakdown domain.DistributionBreakdown) error

	// GetInvestmentByID retrieves one funded stake.
	GetInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error)

	// ListInvestmentsByInvestor retrieves an investor's stakes.
	ListInvestmentsByInvestor(ctx context.Context, investorID string, limit int, offset int) ([]domain.Investment, error)
}
