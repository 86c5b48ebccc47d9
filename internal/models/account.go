package models

import (
	"github.com/shopspring/decimal"
)

// Account is the persisted form of a customer, investor escrow or office
// account. Balance and blocked_amount are written together under a row
// lock, never independently.
type Account struct {
	AccountID     string          `db:"account_id"`
	CustomerID    string          `db:"customer_id"` // NULL for special accounts
	AccountNumber string          `db:"account_number"`
	Kind          string          `db:"kind"`
	Balance       decimal.Decimal `db:"balance"`
	BlockedAmount decimal.Decimal `db:"blocked_amount"`
	Status        string          `db:"status"`
	IsPrimary     bool            `db:"is_primary"`
	AuditFields
}
