package services

import (
	"context"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// ApprovalSvcFacade is the checker side of the maker-checker workflow.
// Approving a request replays its typed change-set against the live entity;
// rejecting discards it. Either way the request resolves exactly once.
type ApprovalSvcFacade interface {
	// SubmitRequest records a maker's change-set as pending. Governed
	// services call this when they divert a maker mutation.
	SubmitRequest(ctx context.Context, actor domain.Actor, entityType domain.GovernedEntity, entityID string, changeType domain.ChangeType, changes any) (*domain.ModificationRequest, error)

	// GetRequestByID retrieves one modification request.
	GetRequestByID(ctx context.Context, requestID string) (*domain.ModificationRequest, error)

	// ListRequestsByStatus retrieves requests in one state, oldest first.
	ListRequestsByStatus(ctx context.Context, status domain.RequestStatus, limit int, offset int) ([]domain.ModificationRequest, error)

	// ApproveRequest applies the change-set and marks the request
	// approved. The actor must be able to resolve requests and must not
	// be the requester.
	ApproveRequest(ctx context.Context, actor domain.Actor, requestID string, notes string) (*domain.ModificationRequest, error)

	// RejectRequest marks the request rejected without touching the
	// entity. Same actor rules as approval.
	RejectRequest(ctx context.Context, actor domain.Actor, requestID string, notes string) (*domain.ModificationRequest, error)
}
