package domain

import (
	"github.com/shopspring/decimal"
)

// AccountKind distinguishes ordinary customer accounts from the special
// investor escrow and office fee accounts.
type AccountKind string

const (
	AccountCustomer AccountKind = "CUSTOMER"
	AccountInvestor AccountKind = "INVESTOR"
	AccountOffice   AccountKind = "OFFICE"
)

// AccountStatus is the lifecycle state of an account. Accounts are
// soft-retired via status and never physically removed while referenced
// by transactions.
type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountFrozen AccountStatus = "FROZEN"
	AccountClosed AccountStatus = "CLOSED"
)

// Account represents one bank/brokerage account. Balance carries the full
// amount held; BlockedAmount is the portion escrowed against pending IPO
// obligations. Invariant: 0 <= BlockedAmount <= Balance.
//
// Balance and BlockedAmount are mutated only through ledger operations
// that append a Transaction, never by direct field assignment.
type Account struct {
	AccountID     string          `json:"accountID"`
	CustomerID    string          `json:"customerID"` // Empty for special accounts
	AccountNumber string          `json:"accountNumber"`
	Kind          AccountKind     `json:"kind"`
	Balance       decimal.Decimal `json:"balance"`
	BlockedAmount decimal.Decimal `json:"blockedAmount"`
	Status        AccountStatus   `json:"status"`
	IsPrimary     bool            `json:"isPrimary"`
	AuditFields
}

// AvailableBalance is the portion of the balance not reserved against a
// pending obligation.
func (a Account) AvailableBalance() decimal.Decimal {
	return a.Balance.Sub(a.BlockedAmount)
}

// CheckInvariant verifies 0 <= blocked <= balance for the current state.
func (a Account) CheckInvariant() bool {
	return !a.BlockedAmount.IsNegative() && a.BlockedAmount.LessThanOrEqual(a.Balance)
}
