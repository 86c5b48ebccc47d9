package domain

import "github.com/shopspring/decimal"

// FeeStatus is the lifecycle state of a customer-owed charge.
type FeeStatus string

const (
	FeePending FeeStatus = "PENDING"
	FeePaid    FeeStatus = "PAID"
	FeeWaived  FeeStatus = "WAIVED"
)

// Fee is a customer-owed charge, optionally satisfied out of a profit
// distribution's customer share (the pending-fee sweep policy).
type Fee struct {
	FeeID                string          `json:"feeID"`
	CustomerID           string          `json:"customerID"`
	AccountID            string          `json:"accountID"`
	Description          string          `json:"description"`
	Amount               decimal.Decimal `json:"amount"`
	Status               FeeStatus       `json:"status"`
	PaidFromDistribution bool            `json:"paidFromDistribution"`
	DistributionID       *string         `json:"distributionID,omitempty"`
	AuditFields
}
