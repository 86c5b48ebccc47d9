package pgsql

import (
	"context"
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

const distributionColumns = `distribution_id, investment_id, investor_id, customer_id, shares_sold, sale_price_per_share, sale_amount, principal_returned, total_profit, investor_share, customer_share, fees_deducted, policy_kind, status, created_at, created_by, last_updated_at, last_updated_by`

type PgxDistributionRepository struct {
	BaseRepository
}

// newPgxDistributionRepository creates a new repository for distribution records.
func newPgxDistributionRepository(pool *pgxpool.Pool) *PgxDistributionRepository {
	return &PgxDistributionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.DistributionRepositoryFacade = (*PgxDistributionRepository)(nil)

func toModelDistribution(d domain.ProfitDistribution) models.ProfitDistribution {
	return models.ProfitDistribution{
		DistributionID:    d.DistributionID,
		InvestmentID:      d.InvestmentID,
		InvestorID:        d.InvestorID,
		CustomerID:        d.CustomerID,
		SharesSold:        d.SharesSold,
		SalePricePerShare: d.SalePricePerShare,
		SaleAmount:        d.SaleAmount,
		PrincipalReturned: d.PrincipalReturned,
		TotalProfit:       d.TotalProfit,
		InvestorShare:     d.InvestorShare,
		CustomerShare:     d.CustomerShare,
		FeesDeducted:      d.FeesDeducted,
		PolicyKind:        string(d.PolicyKind),
		Status:            string(d.Status),
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainDistribution(m models.ProfitDistribution) domain.ProfitDistribution {
	return domain.ProfitDistribution{
		DistributionID:    m.DistributionID,
		InvestmentID:      m.InvestmentID,
		InvestorID:        m.InvestorID,
		CustomerID:        m.CustomerID,
		SharesSold:        m.SharesSold,
		SalePricePerShare: m.SalePricePerShare,
		SaleAmount:        m.SaleAmount,
		PrincipalReturned: m.PrincipalReturned,
		TotalProfit:       m.TotalProfit,
		InvestorShare:     m.InvestorShare,
		CustomerShare:     m.CustomerShare,
		FeesDeducted:      m.FeesDeducted,
		PolicyKind:        domain.FeePolicyKind(m.PolicyKind),
		Status:            domain.DistributionStatus(m.Status),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanDistributionRow(row pgx.Row) (models.ProfitDistribution, error) {
	var m models.ProfitDistribution
	err := row.Scan(
		&m.DistributionID,
		&m.InvestmentID,
		&m.InvestorID,
		&m.CustomerID,
		&m.SharesSold,
		&m.SalePricePerShare,
		&m.SaleAmount,
		&m.PrincipalReturned,
		&m.TotalProfit,
		&m.InvestorShare,
		&m.CustomerShare,
		&m.FeesDeducted,
		&m.PolicyKind,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// InsertDistributionInTx writes the immutable distribution record within
// the settlement transaction.
func (r *PgxDistributionRepository) InsertDistributionInTx(ctx context.Context, tx pgx.Tx, dist domain.ProfitDistribution) error {
	m := toModelDistribution(dist)

	query := `
		INSERT INTO profit_distributions (` + distributionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		m.DistributionID,
		m.InvestmentID,
		m.InvestorID,
		m.CustomerID,
		m.SharesSold,
		m.SalePricePerShare,
		m.SaleAmount,
		m.PrincipalReturned,
		m.TotalProfit,
		m.InvestorShare,
		m.CustomerShare,
		m.FeesDeducted,
		m.PolicyKind,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: distribution %s", apperrors.ErrDuplicate, m.DistributionID)
		}
		return fmt.Errorf("failed to insert distribution %s: %w", m.DistributionID, err)
	}
	return nil
}

// FindDistributionByID retrieves one distribution record.
func (r *PgxDistributionRepository) FindDistributionByID(ctx context.Context, distributionID string) (*domain.ProfitDistribution, error) {
	query := `SELECT ` + distributionColumns + ` FROM profit_distributions WHERE distribution_id = $1;`

	m, err := scanDistributionRow(r.Pool.QueryRow(ctx, query, distributionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: distribution %s", apperrors.ErrNotFound, distributionID)
		}
		return nil, fmt.Errorf("failed to find distribution %s: %w", distributionID, err)
	}
	d := toDomainDistribution(m)
	return &d, nil
}

// ListDistributionsByInvestment retrieves the settlement history for one
// investment, oldest first.
func (r *PgxDistributionRepository) ListDistributionsByInvestment(ctx context.Context, investmentID string, limit int, offset int) ([]domain.ProfitDistribution, error) {
	query := `
		SELECT ` + distributionColumns + `
		FROM profit_distributions
		WHERE investment_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, investmentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list distributions for investment %s: %w", investmentID, err)
	}
	defer rows.Close()

	var dists []domain.ProfitDistribution
	for rows.Next() {
		m, err := scanDistributionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan distribution row: %w", err)
		}
		dists = append(dists, toDomainDistribution(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("distribution row iteration failed: %w", err)
	}
	return dists, nil
}
