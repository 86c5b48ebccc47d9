package domain

import "github.com/shopspring/decimal"

// Investor is a capital-providing partner. Capital additions increase both
// TotalCapital and AvailableCapital; investing moves funds from available
// to invested; a realized sale returns principal plus the net profit share
// to available and reduces invested by the principal portion only.
//
// Invariant after every mutation: AvailableCapital + InvestedAmount <= TotalCapital.
type Investor struct {
	InvestorID       string          `json:"investorID"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	AccountID        string          `json:"accountID"` // Special escrow account for profit credits
	TotalCapital     decimal.Decimal `json:"totalCapital"`
	AvailableCapital decimal.Decimal `json:"availableCapital"`
	InvestedAmount   decimal.Decimal `json:"investedAmount"`
	TotalProfit      decimal.Decimal `json:"totalProfit"`
	IsActive         bool            `json:"isActive"`
	AuditFields
}

// CheckInvariant verifies the capital identity for the current state.
func (i Investor) CheckInvariant() bool {
	return i.AvailableCapital.Add(i.InvestedAmount).LessThanOrEqual(i.TotalCapital) &&
		!i.AvailableCapital.IsNegative() && !i.InvestedAmount.IsNegative()
}
