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

const investorColumns = `investor_id, name, email, account_id, total_capital, available_capital, invested_amount, total_profit, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxInvestorRepository struct {
	BaseRepository
}

// newPgxInvestorRepository creates a new repository for investor capital pools.
func newPgxInvestorRepository(pool *pgxpool.Pool) *PgxInvestorRepository {
	return &PgxInvestorRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.InvestorRepositoryWithTx = (*PgxInvestorRepository)(nil)

func toModelInvestor(d domain.Investor) models.Investor {
	return models.Investor{
		InvestorID:       d.InvestorID,
		Name:             d.Name,
		Email:            d.Email,
		AccountID:        d.AccountID,
		TotalCapital:     d.TotalCapital,
		AvailableCapital: d.AvailableCapital,
		InvestedAmount:   d.InvestedAmount,
		TotalProfit:      d.TotalProfit,
		IsActive:         d.IsActive,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainInvestor(m models.Investor) domain.Investor {
	return domain.Investor{
		InvestorID:       m.InvestorID,
		Name:             m.Name,
		Email:            m.Email,
		AccountID:        m.AccountID,
		TotalCapital:     m.TotalCapital,
		AvailableCapital: m.AvailableCapital,
		InvestedAmount:   m.InvestedAmount,
		TotalProfit:      m.TotalProfit,
		IsActive:         m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanInvestorRow(row pgx.Row) (models.Investor, error) {
	var m models.Investor
	err := row.Scan(
		&m.InvestorID,
		&m.Name,
		&m.Email,
		&m.AccountID,
		&m.TotalCapital,
		&m.AvailableCapital,
		&m.InvestedAmount,
		&m.TotalProfit,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func insertInvestor(ctx context.Context, q querier, investor domain.Investor) error {
	m := toModelInvestor(investor)

	query := `
		INSERT INTO investors (` + investorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := q.Exec(ctx, query,
		m.InvestorID,
		m.Name,
		m.Email,
		m.AccountID,
		m.TotalCapital,
		m.AvailableCapital,
		m.InvestedAmount,
		m.TotalProfit,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: investor %s", apperrors.ErrDuplicate, m.InvestorID)
		}
		return fmt.Errorf("failed to save investor %s: %w", m.InvestorID, err)
	}
	return nil
}

// SaveInvestor inserts a new investor.
func (r *PgxInvestorRepository) SaveInvestor(ctx context.Context, investor domain.Investor) error {
	return insertInvestor(ctx, r.Pool, investor)
}

// SaveInvestorInTx inserts a new investor within an existing transaction.
func (r *PgxInvestorRepository) SaveInvestorInTx(ctx context.Context, tx pgx.Tx, investor domain.Investor) error {
	return insertInvestor(ctx, tx, investor)
}

// FindInvestorByID retrieves an investor by its ID.
func (r *PgxInvestorRepository) FindInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investors WHERE investor_id = $1;`

	m, err := scanInvestorRow(r.Pool.QueryRow(ctx, query, investorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: investor %s", apperrors.ErrNotFound, investorID)
		}
		return nil, fmt.Errorf("failed to find investor %s: %w", investorID, err)
	}
	inv := toDomainInvestor(m)
	return &inv, nil
}

// FindInvestorForUpdate locks the investor row so concurrent capital
// mutations serialize.
func (r *PgxInvestorRepository) FindInvestorForUpdate(ctx context.Context, tx pgx.Tx, investorID string) (*domain.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investors WHERE investor_id = $1 FOR UPDATE;`

	m, err := scanInvestorRow(tx.QueryRow(ctx, query, investorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: investor %s", apperrors.ErrNotFound, investorID)
		}
		return nil, fmt.Errorf("failed to lock investor %s: %w", investorID, err)
	}
	inv := toDomainInvestor(m)
	return &inv, nil
}

// UpdateCapitalInTx writes the capital figures within tx. The row must
// already be locked.
func (r *PgxInvestorRepository) UpdateCapitalInTx(ctx context.Context, tx pgx.Tx, investor domain.Investor) error {
	m := toModelInvestor(investor)

	query := `
		UPDATE investors
		SET total_capital = $2, available_capital = $3, invested_amount = $4, total_profit = $5,
		    is_active = $6, last_updated_at = $7, last_updated_by = $8
		WHERE investor_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.InvestorID,
		m.TotalCapital,
		m.AvailableCapital,
		m.InvestedAmount,
		m.TotalProfit,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update capital for investor %s: %w", m.InvestorID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: investor %s", apperrors.ErrNotFound, m.InvestorID)
	}
	return nil
}

// ListInvestors retrieves a paginated list of investors.
func (r *PgxInvestorRepository) ListInvestors(ctx context.Context, limit int, offset int) ([]domain.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investors ORDER BY created_at DESC LIMIT $1 OFFSET $2;`

	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}
	defer rows.Close()

	var investors []domain.Investor
	for rows.Next() {
		m, err := scanInvestorRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investor row: %w", err)
		}
		investors = append(investors, toDomainInvestor(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("investor row iteration failed: %w", err)
	}
	return investors, nil
}
