package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portsrepo "github.com/sajhapunji/broker-backoffice/internal/core/ports/repositories"
	"github.com/sajhapunji/broker-backoffice/internal/models"
)

const feeColumns = `fee_id, customer_id, account_id, description, amount, status, paid_from_distribution, distribution_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxFeeRepository struct {
	BaseRepository
}

// newPgxFeeRepository creates a new repository for customer fees.
func newPgxFeeRepository(pool *pgxpool.Pool) *PgxFeeRepository {
	return &PgxFeeRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.FeeRepositoryFacade = (*PgxFeeRepository)(nil)

func toModelFee(d domain.Fee) models.Fee {
	return models.Fee{
		FeeID:                d.FeeID,
		CustomerID:           d.CustomerID,
		AccountID:            d.AccountID,
		Description:          d.Description,
		Amount:               d.Amount,
		Status:               string(d.Status),
		PaidFromDistribution: d.PaidFromDistribution,
		DistributionID:       d.DistributionID,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainFee(m models.Fee) domain.Fee {
	return domain.Fee{
		FeeID:                m.FeeID,
		CustomerID:           m.CustomerID,
		AccountID:            m.AccountID,
		Description:          m.Description,
		Amount:               m.Amount,
		Status:               domain.FeeStatus(m.Status),
		PaidFromDistribution: m.PaidFromDistribution,
		DistributionID:       m.DistributionID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanFeeRow(row pgx.Row) (models.Fee, error) {
	var m models.Fee
	err := row.Scan(
		&m.FeeID,
		&m.CustomerID,
		&m.AccountID,
		&m.Description,
		&m.Amount,
		&m.Status,
		&m.PaidFromDistribution,
		&m.DistributionID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveFee inserts a new fee.
func (r *PgxFeeRepository) SaveFee(ctx context.Context, fee domain.Fee) error {
	m := toModelFee(fee)

	query := `
		INSERT INTO fees (` + feeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.FeeID,
		m.CustomerID,
		m.AccountID,
		m.Description,
		m.Amount,
		m.Status,
		m.PaidFromDistribution,
		m.DistributionID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: fee %s", apperrors.ErrDuplicate, m.FeeID)
		}
		return fmt.Errorf("failed to save fee %s: %w", m.FeeID, err)
	}
	return nil
}

// FindFeeByID retrieves a fee by its ID.
func (r *PgxFeeRepository) FindFeeByID(ctx context.Context, feeID string) (*domain.Fee, error) {
	query := `SELECT ` + feeColumns + ` FROM fees WHERE fee_id = $1;`

	m, err := scanFeeRow(r.Pool.QueryRow(ctx, query, feeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: fee %s", apperrors.ErrNotFound, feeID)
		}
		return nil, fmt.Errorf("failed to find fee %s: %w", feeID, err)
	}
	f := toDomainFee(m)
	return &f, nil
}

// ListPendingFeesForUpdate locks the customer's pending fee rows, oldest
// first, so a concurrent sweep cannot double-pay them.
func (r *PgxFeeRepository) ListPendingFeesForUpdate(ctx context.Context, tx pgx.Tx, customerID string) ([]domain.Fee, error) {
	query := `
		SELECT ` + feeColumns + `
		FROM fees
		WHERE customer_id = $1 AND status = 'PENDING'
		ORDER BY created_at ASC
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock pending fees for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	var fees []domain.Fee
	for rows.Next() {
		m, err := scanFeeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fee row: %w", err)
		}
		fees = append(fees, toDomainFee(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fee row iteration failed: %w", err)
	}
	return fees, nil
}

// MarkFeePaidInTx marks one fee paid out of a distribution within tx. The
// status guard keeps a fee from being swept twice.
func (r *PgxFeeRepository) MarkFeePaidInTx(ctx context.Context, tx pgx.Tx, feeID string, distributionID string, userID string) error {
	query := `
		UPDATE fees
		SET status = 'PAID', paid_from_distribution = TRUE, distribution_id = $2,
		    last_updated_at = $3, last_updated_by = $4
		WHERE fee_id = $1 AND status = 'PENDING';
	`
	cmdTag, err := tx.Exec(ctx, query, feeID, distributionID, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to mark fee %s paid: %w", feeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fee %s is not pending", apperrors.ErrConflict, feeID)
	}
	return nil
}

// UpdateFeeStatus writes a fee's status outside any distribution.
func (r *PgxFeeRepository) UpdateFeeStatus(ctx context.Context, fee domain.Fee) error {
	m := toModelFee(fee)

	query := `
		UPDATE fees
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE fee_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.FeeID, m.Status, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update fee %s: %w", m.FeeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: fee %s", apperrors.ErrNotFound, m.FeeID)
	}
	return nil
}

// ListFeesByCustomer retrieves a customer's fees, newest first.
func (r *PgxFeeRepository) ListFeesByCustomer(ctx context.Context, customerID string, limit int, offset int) ([]domain.Fee, error) {
	query := `
		SELECT ` + feeColumns + `
		FROM fees
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list fees for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	var fees []domain.Fee
	for rows.Next() {
		m, err := scanFeeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fee row: %w", err)
		}
		fees = append(fees, toDomainFee(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fee row iteration failed: %w", err)
	}
	return fees, nil
}
