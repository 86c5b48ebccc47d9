package models

import (
	"github.com/shopspring/decimal"
)

// Transaction is the persisted form of one immutable ledger entry.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"`
	Type          string          `db:"transaction_type"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	ReferenceType string          `db:"reference_type"` // NULL when unreferenced
	ReferenceID   string          `db:"reference_id"`
	Notes         string          `db:"notes"`
	AuditFields
}
