package models

import (
	"github.com/shopspring/decimal"
)

// ProfitDistribution is the persisted record of one sale-and-split event.
// Rows are immutable once written.
type ProfitDistribution struct {
	DistributionID    string          `db:"distribution_id"`
	InvestmentID      string          `db:"investment_id"`
	InvestorID        string          `db:"investor_id"`
	CustomerID        string          `db:"customer_id"`
	SharesSold        int64           `db:"shares_sold"`
	SalePricePerShare decimal.Decimal `db:"sale_price_per_share"`
	SaleAmount        decimal.Decimal `db:"sale_amount"`
	PrincipalReturned decimal.Decimal `db:"principal_returned"`
	TotalProfit       decimal.Decimal `db:"total_profit"`
	InvestorShare     decimal.Decimal `db:"investor_share"`
	CustomerShare     decimal.Decimal `db:"customer_share"`
	FeesDeducted      decimal.Decimal `db:"fees_deducted"`
	PolicyKind        string          `db:"policy_kind"`
	Status            string          `db:"status"`
	AuditFields
}

// Fee is the persisted form of a customer-owed charge.
type Fee struct {
	FeeID                string          `db:"fee_id"`
	CustomerID           string          `db:"customer_id"`
	AccountID            string          `db:"account_id"`
	Description          string          `db:"description"`
	Amount               decimal.Decimal `db:"amount"`
	Status               string          `db:"status"`
	PaidFromDistribution bool            `db:"paid_from_distribution"`
	DistributionID       *string         `db:"distribution_id"` // NULL until swept
	AuditFields
}
