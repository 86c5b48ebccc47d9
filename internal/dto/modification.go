package dto

import (
	"encoding/json"
	"time"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// ResolveModificationRequest carries a checker's decision on a pending request.
type ResolveModificationRequest struct {
	ReviewNotes string `json:"reviewNotes" binding:"omitempty,max=500"`
}

// ModificationRequestResponse defines the data returned for a modification request.
type ModificationRequestResponse struct {
	RequestID   string          `json:"requestID"`
	EntityType  string          `json:"entityType"`
	EntityID    string          `json:"entityID"`
	ChangeType  string          `json:"changeType"`
	Changes     json.RawMessage `json:"changes,omitempty"`
	Status      string          `json:"status"`
	RequestedBy string          `json:"requestedBy"`
	ReviewedBy  string          `json:"reviewedBy,omitempty"`
	ReviewNotes string          `json:"reviewNotes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	ResolvedAt  *time.Time      `json:"resolvedAt,omitempty"`
}

// PendingChangeResponse wraps a newly created modification request so callers
// can tell a diverted write apart from an applied one.
type PendingChangeResponse struct {
	Message string                      `json:"message"`
	Request ModificationRequestResponse `json:"request"`
}

// ToModificationRequestResponse converts a domain.ModificationRequest.
func ToModificationRequestResponse(r *domain.ModificationRequest) ModificationRequestResponse {
	var resolvedAt *time.Time
	if r.IsResolved() {
		t := r.LastUpdatedAt
		resolvedAt = &t
	}
	return ModificationRequestResponse{
		RequestID:   r.RequestID,
		EntityType:  string(r.EntityType),
		EntityID:    r.EntityID,
		ChangeType:  string(r.ChangeType),
		Changes:     r.Changes,
		Status:      string(r.Status),
		RequestedBy: r.RequestedBy,
		ReviewedBy:  r.ReviewedBy,
		ReviewNotes: r.ReviewNotes,
		CreatedAt:   r.CreatedAt,
		ResolvedAt:  resolvedAt,
	}
}

// ToModificationRequestResponses converts a slice of requests.
func ToModificationRequestResponses(reqs []domain.ModificationRequest) []ModificationRequestResponse {
	out := make([]ModificationRequestResponse, len(reqs))
	for i := range reqs {
		out[i] = ToModificationRequestResponse(&reqs[i])
	}
	return out
}
