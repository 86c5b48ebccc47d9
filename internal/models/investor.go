package models

import (
	"github.com/shopspring/decimal"
)

// Investor is the persisted form of a capital partner.
type Investor struct {
	InvestorID       string          `db:"investor_id"`
	Name             string          `db:"name"`
	Email            string          `db:"email"`
	AccountID        string          `db:"account_id"`
	TotalCapital     decimal.Decimal `db:"total_capital"`
	AvailableCapital decimal.Decimal `db:"available_capital"`
	InvestedAmount   decimal.Decimal `db:"invested_amount"`
	TotalProfit      decimal.Decimal `db:"total_profit"`
	IsActive         bool            `db:"is_active"`
	AuditFields
}

// Investment is the persisted form of one funded stake.
type Investment struct {
	InvestmentID       string          `db:"investment_id"`
	InvestorID         string          `db:"investor_id"`
	CustomerID         string          `db:"customer_id"`
	ApplicationID      string          `db:"application_id"` // NULL for stakes created outside an IPO
	Symbol             string          `db:"symbol"`
	PrincipalAmount    decimal.Decimal `db:"principal_amount"`
	SharesAllocated    int64           `db:"shares_allocated"`
	CostPerShare       decimal.Decimal `db:"cost_per_share"`
	SharesHeld         int64           `db:"shares_held"`
	CurrentMarketPrice decimal.Decimal `db:"current_market_price"`
	SoldAmount         decimal.Decimal `db:"sold_amount"`
	ProfitEarned       decimal.Decimal `db:"profit_earned"`
	FeesPaid           decimal.Decimal `db:"fees_paid"`
	Status             string          `db:"status"`
	AuditFields
}
