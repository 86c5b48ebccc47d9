package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// ModificationRepositoryFacade persists maker change-sets.
type ModificationRepositoryFacade interface {
	SaveRequest(ctx context.Context, req domain.ModificationRequest) error

	FindRequestByID(ctx context.Context, requestID string) (*domain.ModificationRequest, error)

	// FindRequestForUpdate locks the request row so two checkers cannot
	// resolve it concurrently.
	FindRequestForUpdate(ctx context.Context, tx pgx.Tx, requestID string) (*domain.ModificationRequest, error)

	// ResolveRequestInTx records the terminal status, reviewer and notes
	// within tx.
	ResolveRequestInTx(ctx context.Context, tx pgx.Tx, requestID string, status domain.RequestStatus, reviewerID string, notes string) error

	ListRequestsByStatus(ctx context.Context, status domain.RequestStatus, limit int, offset int) ([]domain.ModificationRequest, error)
}

// ModificationRepositoryWithTx extends the facade with transaction control.
type ModificationRepositoryWithTx interface {
	ModificationRepositoryFacade
	TxManager
}
