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

const applicationColumns = `application_id, customer_id, account_id, symbol, company_name, quantity, price_per_share, total_amount, status, allotment_status, allotment_quantity, created_at, created_by, last_updated_at, last_updated_by`

type PgxIPORepository struct {
	BaseRepository
}

// newPgxIPORepository creates a new repository for IPO applications.
func newPgxIPORepository(pool *pgxpool.Pool) *PgxIPORepository {
	return &PgxIPORepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.IPORepositoryWithTx = (*PgxIPORepository)(nil)

func toModelApplication(d domain.IPOApplication) models.IPOApplication {
	return models.IPOApplication{
		ApplicationID:     d.ApplicationID,
		CustomerID:        d.CustomerID,
		AccountID:         d.AccountID,
		Symbol:            d.Symbol,
		CompanyName:       d.CompanyName,
		Quantity:          d.Quantity,
		PricePerShare:     d.PricePerShare,
		TotalAmount:       d.TotalAmount,
		Status:            string(d.Status),
		AllotmentStatus:   string(d.AllotmentStatus),
		AllotmentQuantity: d.AllotmentQuantity,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainApplication(m models.IPOApplication) domain.IPOApplication {
	return domain.IPOApplication{
		ApplicationID:     m.ApplicationID,
		CustomerID:        m.CustomerID,
		AccountID:         m.AccountID,
		Symbol:            m.Symbol,
		CompanyName:       m.CompanyName,
		Quantity:          m.Quantity,
		PricePerShare:     m.PricePerShare,
		TotalAmount:       m.TotalAmount,
		Status:            domain.IPOStatus(m.Status),
		AllotmentStatus:   domain.AllotmentStatus(m.AllotmentStatus),
		AllotmentQuantity: m.AllotmentQuantity,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanApplicationRow(row pgx.Row) (models.IPOApplication, error) {
	var m models.IPOApplication
	err := row.Scan(
		&m.ApplicationID,
		&m.CustomerID,
		&m.AccountID,
		&m.Symbol,
		&m.CompanyName,
		&m.Quantity,
		&m.PricePerShare,
		&m.TotalAmount,
		&m.Status,
		&m.AllotmentStatus,
		&m.AllotmentQuantity,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveApplication inserts a new application.
func (r *PgxIPORepository) SaveApplication(ctx context.Context, app domain.IPOApplication) error {
	m := toModelApplication(app)

	query := `
		INSERT INTO ipo_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ApplicationID,
		m.CustomerID,
		m.AccountID,
		m.Symbol,
		m.CompanyName,
		m.Quantity,
		m.PricePerShare,
		m.TotalAmount,
		m.Status,
		m.AllotmentStatus,
		m.AllotmentQuantity,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: application %s", apperrors.ErrDuplicate, m.ApplicationID)
		}
		return fmt.Errorf("failed to save application %s: %w", m.ApplicationID, err)
	}
	return nil
}

// FindApplicationByID retrieves an application by its ID.
func (r *PgxIPORepository) FindApplicationByID(ctx context.Context, applicationID string) (*domain.IPOApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM ipo_applications WHERE application_id = $1;`

	m, err := scanApplicationRow(r.Pool.QueryRow(ctx, query, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: application %s", apperrors.ErrNotFound, applicationID)
		}
		return nil, fmt.Errorf("failed to find application %s: %w", applicationID, err)
	}
	app := toDomainApplication(m)
	return &app, nil
}

// FindApplicationForUpdate locks the application row for the duration of
// tx so concurrent state transitions serialize.
func (r *PgxIPORepository) FindApplicationForUpdate(ctx context.Context, tx pgx.Tx, applicationID string) (*domain.IPOApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM ipo_applications WHERE application_id = $1 FOR UPDATE;`

	m, err := scanApplicationRow(tx.QueryRow(ctx, query, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: application %s", apperrors.ErrNotFound, applicationID)
		}
		return nil, fmt.Errorf("failed to lock application %s: %w", applicationID, err)
	}
	app := toDomainApplication(m)
	return &app, nil
}

// UpdateApplicationInTx writes the mutable application fields within tx.
func (r *PgxIPORepository) UpdateApplicationInTx(ctx context.Context, tx pgx.Tx, app domain.IPOApplication) error {
	m := toModelApplication(app)

	query := `
		UPDATE ipo_applications
		SET quantity = $2, price_per_share = $3, total_amount = $4, status = $5,
		    allotment_status = $6, allotment_quantity = $7, last_updated_at = $8, last_updated_by = $9
		WHERE application_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.ApplicationID,
		m.Quantity,
		m.PricePerShare,
		m.TotalAmount,
		m.Status,
		m.AllotmentStatus,
		m.AllotmentQuantity,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update application %s: %w", m.ApplicationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: application %s", apperrors.ErrNotFound, m.ApplicationID)
	}
	return nil
}

// DeleteApplicationInTx removes the application row within tx.
func (r *PgxIPORepository) DeleteApplicationInTx(ctx context.Context, tx pgx.Tx, applicationID string) error {
	query := `DELETE FROM ipo_applications WHERE application_id = $1;`

	cmdTag, err := tx.Exec(ctx, query, applicationID)
	if err != nil {
		return fmt.Errorf("failed to delete application %s: %w", applicationID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: application %s", apperrors.ErrNotFound, applicationID)
	}
	return nil
}

// ListApplicationsByCustomer retrieves a customer's applications.
func (r *PgxIPORepository) ListApplicationsByCustomer(ctx context.Context, customerID string, limit int, offset int) ([]domain.IPOApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM ipo_applications
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListApplicationsByStatus retrieves applications in one lifecycle state.
func (r *PgxIPORepository) ListApplicationsByStatus(ctx context.Context, status domain.IPOStatus, limit int, offset int) ([]domain.IPOApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM ipo_applications
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by status %s: %w", status, err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

func collectApplications(rows pgx.Rows) ([]domain.IPOApplication, error) {
	var apps []domain.IPOApplication
	for rows.Next() {
		m, err := scanApplicationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		apps = append(apps, toDomainApplication(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("application row iteration failed: %w", err)
	}
	return apps, nil
}
