package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// GovernedEntity enumerates the entity types whose mutations are subject
// to maker-checker approval.
type GovernedEntity string

const (
	GovernedAccount        GovernedEntity = "ACCOUNT"
	GovernedCustomer       GovernedEntity = "CUSTOMER"
	GovernedHolding        GovernedEntity = "HOLDING"
	GovernedIPOApplication GovernedEntity = "IPO_APPLICATION"
)

// ChangeType says what the maker asked for.
type ChangeType string

const (
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// RequestStatus is the maker-checker state machine: pending resolves
// exactly once to approved or rejected.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// ModificationRequest is a pending change-set proposed by a maker. Changes
// is the JSON encoding of the typed per-entity change struct below; replay
// decodes it with DecodeChanges and applies it through an exhaustive switch
// rather than an untyped field merge.
type ModificationRequest struct {
	RequestID   string          `json:"requestID"`
	EntityType  GovernedEntity  `json:"entityType"`
	EntityID    string          `json:"entityID"`
	ChangeType  ChangeType      `json:"changeType"`
	Changes     json.RawMessage `json:"changes,omitempty"`
	Status      RequestStatus   `json:"status"`
	RequestedBy string          `json:"requestedBy"`
	ReviewedBy  string          `json:"reviewedBy,omitempty"`
	ReviewNotes string          `json:"reviewNotes,omitempty"`
	AuditFields
}

// IsResolved reports whether the request reached a terminal state.
func (r ModificationRequest) IsResolved() bool {
	return r.Status == RequestApproved || r.Status == RequestRejected
}

// AccountChanges is the governed field set for account updates. A nil
// field is left unchanged on replay.
type AccountChanges struct {
	AccountNumber *string        `json:"accountNumber,omitempty"`
	Status        *AccountStatus `json:"status,omitempty"`
	IsPrimary     *bool          `json:"isPrimary,omitempty"`
}

// CustomerChanges is the governed field set for customer updates.
type CustomerChanges struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// HoldingChanges is the governed field set for holding updates. Changing
// quantity or purchase price forces a portfolio aggregate recomputation on
// replay.
type HoldingChanges struct {
	Quantity      *int64           `json:"quantity,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice,omitempty"`
}

// IPOApplicationChanges is the governed field set for application updates.
// Status transitions away from VERIFIED release the block on replay; a
// TotalAmount change while VERIFIED blocks or releases the difference.
type IPOApplicationChanges struct {
	Quantity      *int64           `json:"quantity,omitempty"`
	PricePerShare *decimal.Decimal `json:"pricePerShare,omitempty"`
	Status        *IPOStatus       `json:"status,omitempty"`
}

// EncodeChanges marshals a typed change struct into the request payload.
func EncodeChanges(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode change-set: %w", err)
	}
	return raw, nil
}

// DecodeChanges unmarshals the request payload into the typed change
// struct for its entity type. The returned value is one of
// *AccountChanges, *CustomerChanges, *HoldingChanges or
// *IPOApplicationChanges.
func DecodeChanges(r ModificationRequest) (any, error) {
	var dst any
	switch r.EntityType {
	case GovernedAccount:
		dst = &AccountChanges{}
	case GovernedCustomer:
		dst = &CustomerChanges{}
	case GovernedHolding:
		dst = &HoldingChanges{}
	case GovernedIPOApplication:
		dst = &IPOApplicationChanges{}
	default:
		return nil, fmt.Errorf("unknown governed entity type %q", r.EntityType)
	}
	if len(r.Changes) == 0 {
		return dst, nil
	}
	if err := json.Unmarshal(r.Changes, dst); err != nil {
		return nil, fmt.Errorf("failed to decode change-set for %s %s: %w", r.EntityType, r.EntityID, err)
	}
	return dst, nil
}
