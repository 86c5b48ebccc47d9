package models

import (
	"encoding/json"
)

// ModificationRequest is the persisted form of a maker's pending
// change-set. Changes holds the typed JSON payload as written.
type ModificationRequest struct {
	RequestID   string          `db:"request_id"`
	EntityType  string          `db:"entity_type"`
	EntityID    string          `db:"entity_id"`
	ChangeType  string          `db:"change_type"`
	Changes     json.RawMessage `db:"changes"`
	Status      string          `db:"status"`
	RequestedBy string          `db:"requested_by"`
	ReviewedBy  string          `db:"reviewed_by"` // NULL while pending
	ReviewNotes string          `db:"review_notes"`
	AuditFields
}
