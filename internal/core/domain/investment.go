package domain

import "github.com/shopspring/decimal"

// InvestmentStatus tracks how much of a funded stake has been realized.
type InvestmentStatus string

const (
	InvestmentActive        InvestmentStatus = "ACTIVE"
	InvestmentPartiallySold InvestmentStatus = "PARTIALLY_SOLD"
	InvestmentFullyRealized InvestmentStatus = "FULLY_REALIZED"
)

// Investment is one investor's funded stake in one customer's allotted
// shares. Created at allotment time against the investor's available
// capital.
type Investment struct {
	InvestmentID       string           `json:"investmentID"`
	InvestorID         string           `json:"investorID"`
	CustomerID         string           `json:"customerID"`
	ApplicationID      string           `json:"applicationID,omitempty"`
	Symbol             string           `json:"symbol"`
	PrincipalAmount    decimal.Decimal  `json:"principalAmount"`
	SharesAllocated    int64            `json:"sharesAllocated"`
	CostPerShare       decimal.Decimal  `json:"costPerShare"`
	SharesHeld         int64            `json:"sharesHeld"`
	CurrentMarketPrice decimal.Decimal  `json:"currentMarketPrice"`
	SoldAmount         decimal.Decimal  `json:"soldAmount"`
	ProfitEarned       decimal.Decimal  `json:"profitEarned"`
	FeesPaid           decimal.Decimal  `json:"feesPaid"`
	Status             InvestmentStatus `json:"status"`
	AuditFields
}

// RecomputeStatus derives the status from shares held vs allocated.
func (inv *Investment) RecomputeStatus() {
	switch {
	case inv.SharesHeld <= 0:
		inv.Status = InvestmentFullyRealized
	case inv.SharesHeld < inv.SharesAllocated:
		inv.Status = InvestmentPartiallySold
	default:
		inv.Status = InvestmentActive
	}
}
