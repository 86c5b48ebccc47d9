package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portsrepo "github.com/sajhapunji/broker-backoffice/internal/core/ports/repositories"
	"github.com/sajhapunji/broker-backoffice/internal/models"
)

const investmentColumns = `investment_id, investor_id, customer_id, application_id, symbol, principal_amount, shares_allocated, cost_per_share, shares_held, current_market_price, sold_amount, profit_earned, fees_paid, status, created_at, created_by, last_updated_at, last_updated_by`

type PgxInvestmentRepository struct {
	BaseRepository
}

// newPgxInvestmentRepository creates a new repository for funded stakes.
func newPgxInvestmentRepository(pool *pgxpool.Pool) *PgxInvestmentRepository {
	return &PgxInvestmentRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.InvestmentRepositoryFacade = (*PgxInvestmentRepository)(nil)

func toModelInvestment(d domain.Investment) models.Investment {
	return models.Investment{
		InvestmentID:       d.InvestmentID,
		InvestorID:         d.InvestorID,
		CustomerID:         d.CustomerID,
		ApplicationID:      d.ApplicationID,
		Symbol:             d.Symbol,
		PrincipalAmount:    d.PrincipalAmount,
		SharesAllocated:    d.SharesAllocated,
		CostPerShare:       d.CostPerShare,
		SharesHeld:         d.SharesHeld,
		CurrentMarketPrice: d.CurrentMarketPrice,
		SoldAmount:         d.SoldAmount,
		ProfitEarned:       d.ProfitEarned,
		FeesPaid:           d.FeesPaid,
		Status:             string(d.Status),
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainInvestment(m models.Investment) domain.Investment {
	return domain.Investment{
		InvestmentID:       m.InvestmentID,
		InvestorID:         m.InvestorID,
		CustomerID:         m.CustomerID,
		ApplicationID:      m.ApplicationID,
		Symbol:             m.Symbol,
		PrincipalAmount:    m.PrincipalAmount,
		SharesAllocated:    m.SharesAllocated,
		CostPerShare:       m.CostPerShare,
		SharesHeld:         m.SharesHeld,
		CurrentMarketPrice: m.CurrentMarketPrice,
		SoldAmount:         m.SoldAmount,
		ProfitEarned:       m.ProfitEarned,
		FeesPaid:           m.FeesPaid,
		Status:             domain.InvestmentStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanInvestmentRow(row pgx.Row) (models.Investment, error) {
	var m models.Investment
	var applicationID sql.NullString
	err := row.Scan(
		&m.InvestmentID,
		&m.InvestorID,
		&m.CustomerID,
		&applicationID,
		&m.Symbol,
		&m.PrincipalAmount,
		&m.SharesAllocated,
		&m.CostPerShare,
		&m.SharesHeld,
		&m.CurrentMarketPrice,
		&m.SoldAmount,
		&m.ProfitEarned,
		&m.FeesPaid,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Investment{}, err
	}
	m.ApplicationID = applicationID.String
	return m, nil
}

// SaveInvestmentInTx inserts the investment created by a capital
// reservation, within the same tx as the capital move.
func (r *PgxInvestmentRepository) SaveInvestmentInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error {
	m := toModelInvestment(investment)

	query := `
		INSERT INTO investments (` + investmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	var applicationID sql.NullString
	if m.ApplicationID != "" {
		applicationID = sql.NullString{String: m.ApplicationID, Valid: true}
	}

	_, err := tx.Exec(ctx, query,
		m.InvestmentID,
		m.InvestorID,
		m.CustomerID,
		applicationID,
		m.Symbol,
		m.PrincipalAmount,
		m.SharesAllocated,
		m.CostPerShare,
		m.SharesHeld,
		m.CurrentMarketPrice,
		m.SoldAmount,
		m.ProfitEarned,
		m.FeesPaid,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: investment %s", apperrors.ErrDuplicate, m.InvestmentID)
		}
		return fmt.Errorf("failed to save investment %s: %w", m.InvestmentID, err)
	}
	return nil
}

// FindInvestmentByID retrieves an investment by its ID.
func (r *PgxInvestmentRepository) FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investment_id = $1;`

	m, err := scanInvestmentRow(r.Pool.QueryRow(ctx, query, investmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: investment %s", apperrors.ErrNotFound, investmentID)
		}
		return nil, fmt.Errorf("failed to find investment %s: %w", investmentID, err)
	}
	inv := toDomainInvestment(m)
	return &inv, nil
}

// FindInvestmentForUpdate locks the investment row for a sale settlement.
func (r *PgxInvestmentRepository) FindInvestmentForUpdate(ctx context.Context, tx pgx.Tx, investmentID string) (*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investment_id = $1 FOR UPDATE;`

	m, err := scanInvestmentRow(tx.QueryRow(ctx, query, investmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: investment %s", apperrors.ErrNotFound, investmentID)
		}
		return nil, fmt.Errorf("failed to lock investment %s: %w", investmentID, err)
	}
	inv := toDomainInvestment(m)
	return &inv, nil
}

// UpdateRealizationInTx writes shares held, cumulative realization figures,
// market price and status within tx.
func (r *PgxInvestmentRepository) UpdateRealizationInTx(ctx context.Context, tx pgx.Tx, investment domain.Investment) error {
	m := toModelInvestment(investment)

	query := `
		UPDATE investments
		SET shares_held = $2, current_market_price = $3, sold_amount = $4, profit_earned = $5,
		    fees_paid = $6, status = $7, last_updated_at = $8, last_updated_by = $9
		WHERE investment_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.InvestmentID,
		m.SharesHeld,
		m.CurrentMarketPrice,
		m.SoldAmount,
		m.ProfitEarned,
		m.FeesPaid,
		m.Status,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update investment %s: %w", m.InvestmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: investment %s", apperrors.ErrNotFound, m.InvestmentID)
	}
	return nil
}

// ListInvestmentsByInvestor retrieves an investor's funded stakes.
func (r *PgxInvestmentRepository) ListInvestmentsByInvestor(ctx context.Context, investorID string, limit int, offset int) ([]domain.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE investor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, investorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments for investor %s: %w", investorID, err)
	}
	defer rows.Close()

	var investments []domain.Investment
	for rows.Next() {
		m, err := scanInvestmentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment row: %w", err)
		}
		investments = append(investments, toDomainInvestment(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("investment row iteration failed: %w", err)
	}
	return investments, nil
}
