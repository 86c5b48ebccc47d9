package pgsql

import (
	"context"
	"database/sql"
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

const requestColumns = `request_id, entity_type, entity_id, change_type, changes, status, requested_by, reviewed_by, review_notes, created_at, created_by, last_updated_at, last_updated_by`

type PgxModificationRepository struct {
	BaseRepository
}

// newPgxModificationRepository creates a new repository for maker change-sets.
func newPgxModificationRepository(pool *pgxpool.Pool) *PgxModificationRepository {
	return &PgxModificationRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ModificationRepositoryWithTx = (*PgxModificationRepository)(nil)

func toDomainRequest(m models.ModificationRequest) domain.ModificationRequest {
	return domain.ModificationRequest{
		RequestID:   m.RequestID,
		EntityType:  domain.GovernedEntity(m.EntityType),
		EntityID:    m.EntityID,
		ChangeType:  domain.ChangeType(m.ChangeType),
		Changes:     m.Changes,
		Status:      domain.RequestStatus(m.Status),
		RequestedBy: m.RequestedBy,
		ReviewedBy:  m.ReviewedBy,
		ReviewNotes: m.ReviewNotes,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func scanRequestRow(row pgx.Row) (models.ModificationRequest, error) {
	var m models.ModificationRequest
	var reviewedBy, reviewNotes sql.NullString
	err := row.Scan(
		&m.RequestID,
		&m.EntityType,
		&m.EntityID,
		&m.ChangeType,
		&m.Changes,
		&m.Status,
		&m.RequestedBy,
		&reviewedBy,
		&reviewNotes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.ModificationRequest{}, err
	}
	m.ReviewedBy = reviewedBy.String
	m.ReviewNotes = reviewNotes.String
	return m, nil
}

// SaveRequest inserts a new pending request.
func (r *PgxModificationRepository) SaveRequest(ctx context.Context, req domain.ModificationRequest) error {
	query := `
		INSERT INTO modification_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	var reviewedBy, reviewNotes sql.NullString
	if req.ReviewedBy != "" {
		reviewedBy = sql.NullString{String: req.ReviewedBy, Valid: true}
	}
	if req.ReviewNotes != "" {
		reviewNotes = sql.NullString{String: req.ReviewNotes, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		req.RequestID,
		string(req.EntityType),
		req.EntityID,
		string(req.ChangeType),
		[]byte(req.Changes),
		string(req.Status),
		req.RequestedBy,
		reviewedBy,
		reviewNotes,
		req.CreatedAt,
		req.CreatedBy,
		req.LastUpdatedAt,
		req.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: request %s", apperrors.ErrDuplicate, req.RequestID)
		}
		return fmt.Errorf("failed to save modification request %s: %w", req.RequestID, err)
	}
	return nil
}

// FindRequestByID retrieves one request.
func (r *PgxModificationRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.ModificationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM modification_requests WHERE request_id = $1;`

	m, err := scanRequestRow(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: modification request %s", apperrors.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to find modification request %s: %w", requestID, err)
	}
	req := toDomainRequest(m)
	return &req, nil
}

// FindRequestForUpdate locks the request row so two checkers cannot
// resolve it concurrently.
func (r *PgxModificationRepository) FindRequestForUpdate(ctx context.Context, tx pgx.Tx, requestID string) (*domain.ModificationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM modification_requests WHERE request_id = $1 FOR UPDATE;`

	m, err := scanRequestRow(tx.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: modification request %s", apperrors.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to lock modification request %s: %w", requestID, err)
	}
	req := toDomainRequest(m)
	return &req, nil
}

// ResolveRequestInTx records the terminal status, reviewer and notes within
// tx. The status guard makes resolution idempotence-safe at the row level.
func (r *PgxModificationRepository) ResolveRequestInTx(ctx context.Context, tx pgx.Tx, requestID string, status domain.RequestStatus, reviewerID string, notes string) error {
	query := `
		UPDATE modification_requests
		SET status = $2, reviewed_by = $3, review_notes = $4, last_updated_at = $5, last_updated_by = $3
		WHERE request_id = $1 AND status = 'PENDING';
	`
	var reviewNotes sql.NullString
	if notes != "" {
		reviewNotes = sql.NullString{String: notes, Valid: true}
	}

	cmdTag, err := tx.Exec(ctx, query, requestID, string(status), reviewerID, reviewNotes, time.Now())
	if err != nil {
		return fmt.Errorf("failed to resolve modification request %s: %w", requestID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: modification request %s", apperrors.ErrAlreadyResolved, requestID)
	}
	return nil
}

// ListRequestsByStatus retrieves requests in one state, oldest first so
// checkers see the queue in arrival order.
func (r *PgxModificationRepository) ListRequestsByStatus(ctx context.Context, status domain.RequestStatus, limit int, offset int) ([]domain.ModificationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM modification_requests
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list modification requests: %w", err)
	}
	defer rows.Close()

	var reqs []domain.ModificationRequest
	for rows.Next() {
		m, err := scanRequestRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan modification request row: %w", err)
		}
		reqs = append(reqs, toDomainRequest(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("modification request row iteration failed: %w", err)
	}
	return reqs, nil
}
