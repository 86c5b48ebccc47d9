package models

import (
	"github.com/shopspring/decimal"
)

// Portfolio is the persisted aggregate over a customer's holdings.
type Portfolio struct {
	PortfolioID     string          `db:"portfolio_id"`
	CustomerID      string          `db:"customer_id"`
	TotalInvestment decimal.Decimal `db:"total_investment"`
	TotalValue      decimal.Decimal `db:"total_value"`
	AuditFields
}

// Holding is the persisted form of one security position.
type Holding struct {
	HoldingID     string          `db:"holding_id"`
	PortfolioID   string          `db:"portfolio_id"`
	CustomerID    string          `db:"customer_id"`
	Symbol        string          `db:"symbol"`
	Quantity      int64           `db:"quantity"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	CurrentPrice  decimal.Decimal `db:"current_price"`
	AuditFields
}
