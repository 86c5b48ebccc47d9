package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portsrepo "github.com/sajhapunji/broker-backoffice/internal/core/ports/repositories"
	"github.com/sajhapunji/broker-backoffice/internal/models"
)

const portfolioColumns = `portfolio_id, customer_id, total_investment, total_value, created_at, created_by, last_updated_at, last_updated_by`

const holdingColumns = `holding_id, portfolio_id, customer_id, symbol, quantity, purchase_price, current_price, created_at, created_by, last_updated_at, last_updated_by`

type PgxPortfolioRepository struct {
	BaseRepository
}

// newPgxPortfolioRepository creates a new repository for portfolios and holdings.
func newPgxPortfolioRepository(pool *pgxpool.Pool) *PgxPortfolioRepository {
	return &PgxPortfolioRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.PortfolioRepositoryWithTx = (*PgxPortfolioRepository)(nil)

func toDomainPortfolio(m models.Portfolio) domain.Portfolio {
	return domain.Portfolio{
		PortfolioID:     m.PortfolioID,
		CustomerID:      m.CustomerID,
		TotalInvestment: m.TotalInvestment,
		TotalValue:      m.TotalValue,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toDomainHolding(m models.Holding) domain.Holding {
	return domain.Holding{
		HoldingID:     m.HoldingID,
		PortfolioID:   m.PortfolioID,
		CustomerID:    m.CustomerID,
		Symbol:        m.Symbol,
		Quantity:      m.Quantity,
		PurchasePrice: m.PurchasePrice,
		CurrentPrice:  m.CurrentPrice,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanPortfolioRow(row pgx.Row) (models.Portfolio, error) {
	var m models.Portfolio
	err := row.Scan(
		&m.PortfolioID,
		&m.CustomerID,
		&m.TotalInvestment,
		&m.TotalValue,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanHoldingRow(row pgx.Row) (models.Holding, error) {
	var m models.Holding
	err := row.Scan(
		&m.HoldingID,
		&m.PortfolioID,
		&m.CustomerID,
		&m.Symbol,
		&m.Quantity,
		&m.PurchasePrice,
		&m.CurrentPrice,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindPortfolioByCustomer retrieves a customer's portfolio.
func (r *PgxPortfolioRepository) FindPortfolioByCustomer(ctx context.Context, customerID string) (*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE customer_id = $1;`

	m, err := scanPortfolioRow(r.Pool.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: portfolio for customer %s", apperrors.ErrNotFound, customerID)
		}
		return nil, fmt.Errorf("failed to find portfolio for customer %s: %w", customerID, err)
	}
	p := toDomainPortfolio(m)
	return &p, nil
}

// FindPortfolioForUpdate locks the customer's portfolio row, creating an
// empty one first if the customer has never held shares. The insert uses
// ON CONFLICT so two concurrent first allotments converge on one row.
func (r *PgxPortfolioRepository) FindPortfolioForUpdate(ctx context.Context, tx pgx.Tx, customerID string) (*domain.Portfolio, error) {
	now := time.Now()
	insert := `
		INSERT INTO portfolios (` + portfolioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (customer_id) DO NOTHING;
	`
	_, err := tx.Exec(ctx, insert,
		uuid.NewString(),
		customerID,
		decimal.Zero,
		decimal.Zero,
		now,
		customerID,
		now,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure portfolio for customer %s: %w", customerID, err)
	}

	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE customer_id = $1 FOR UPDATE;`
	m, err := scanPortfolioRow(tx.QueryRow(ctx, query, customerID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock portfolio for customer %s: %w", customerID, err)
	}
	p := toDomainPortfolio(m)
	return &p, nil
}

// UpdateAggregatesInTx writes the portfolio totals within tx.
func (r *PgxPortfolioRepository) UpdateAggregatesInTx(ctx context.Context, tx pgx.Tx, portfolio domain.Portfolio) error {
	query := `
		UPDATE portfolios
		SET total_investment = $2, total_value = $3, last_updated_at = $4, last_updated_by = $5
		WHERE portfolio_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		portfolio.PortfolioID,
		portfolio.TotalInvestment,
		portfolio.TotalValue,
		portfolio.LastUpdatedAt,
		portfolio.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio %s: %w", portfolio.PortfolioID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: portfolio %s", apperrors.ErrNotFound, portfolio.PortfolioID)
	}
	return nil
}

// UpsertHoldingInTx merges quantity into an existing holding of the same
// symbol and purchase price, or inserts a new holding row. Returns the row
// as stored.
func (r *PgxPortfolioRepository) UpsertHoldingInTx(ctx context.Context, tx pgx.Tx, holding domain.Holding) (*domain.Holding, error) {
	query := `
		INSERT INTO holdings (` + holdingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (portfolio_id, symbol, purchase_price) DO UPDATE
		SET quantity = holdings.quantity + EXCLUDED.quantity,
		    current_price = EXCLUDED.current_price,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by
		RETURNING ` + holdingColumns + `;
	`
	m, err := scanHoldingRow(tx.QueryRow(ctx, query,
		holding.HoldingID,
		holding.PortfolioID,
		holding.CustomerID,
		holding.Symbol,
		holding.Quantity,
		holding.PurchasePrice,
		holding.CurrentPrice,
		holding.CreatedAt,
		holding.CreatedBy,
		holding.LastUpdatedAt,
		holding.LastUpdatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert holding %s/%s: %w", holding.PortfolioID, holding.Symbol, err)
	}
	h := toDomainHolding(m)
	return &h, nil
}

// FindHoldingByID retrieves one holding.
func (r *PgxPortfolioRepository) FindHoldingByID(ctx context.Context, holdingID string) (*domain.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE holding_id = $1;`

	m, err := scanHoldingRow(r.Pool.QueryRow(ctx, query, holdingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: holding %s", apperrors.ErrNotFound, holdingID)
		}
		return nil, fmt.Errorf("failed to find holding %s: %w", holdingID, err)
	}
	h := toDomainHolding(m)
	return &h, nil
}

// FindHoldingForUpdate locks one holding row for the duration of tx.
func (r *PgxPortfolioRepository) FindHoldingForUpdate(ctx context.Context, tx pgx.Tx, holdingID string) (*domain.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE holding_id = $1 FOR UPDATE;`

	m, err := scanHoldingRow(tx.QueryRow(ctx, query, holdingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: holding %s", apperrors.ErrNotFound, holdingID)
		}
		return nil, fmt.Errorf("failed to lock holding %s: %w", holdingID, err)
	}
	h := toDomainHolding(m)
	return &h, nil
}

// UpdateHoldingInTx writes the holding's quantity and prices within tx.
func (r *PgxPortfolioRepository) UpdateHoldingInTx(ctx context.Context, tx pgx.Tx, holding domain.Holding) error {
	query := `
		UPDATE holdings
		SET quantity = $2, purchase_price = $3, current_price = $4, last_updated_at = $5, last_updated_by = $6
		WHERE holding_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		holding.HoldingID,
		holding.Quantity,
		holding.PurchasePrice,
		holding.CurrentPrice,
		holding.LastUpdatedAt,
		holding.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding %s: %w", holding.HoldingID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: holding %s", apperrors.ErrNotFound, holding.HoldingID)
	}
	return nil
}

// DeleteHoldingInTx removes one holding row within tx.
func (r *PgxPortfolioRepository) DeleteHoldingInTx(ctx context.Context, tx pgx.Tx, holdingID string) error {
	query := `DELETE FROM holdings WHERE holding_id = $1;`

	cmdTag, err := tx.Exec(ctx, query, holdingID)
	if err != nil {
		return fmt.Errorf("failed to delete holding %s: %w", holdingID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: holding %s", apperrors.ErrNotFound, holdingID)
	}
	return nil
}

// ListHoldingsByPortfolio retrieves all holdings in a portfolio.
func (r *PgxPortfolioRepository) ListHoldingsByPortfolio(ctx context.Context, portfolioID string) ([]domain.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE portfolio_id = $1 ORDER BY symbol ASC, purchase_price ASC;`

	rows, err := r.Pool.Query(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings for portfolio %s: %w", portfolioID, err)
	}
	defer rows.Close()

	var holdings []domain.Holding
	for rows.Next() {
		m, err := scanHoldingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding row: %w", err)
		}
		holdings = append(holdings, toDomainHolding(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("holding row iteration failed: %w", err)
	}
	return holdings, nil
}
