package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// DistributeProfitRequest settles a share sale against an investment.
// Policy selects the fee-deduction strategy; FixedFee is required for the
// FIXED_FEE kind and ignored otherwise.
type DistributeProfitRequest struct {
	InvestmentID      string               `json:"investmentID" binding:"required"`
	SharesSold        int64                `json:"sharesSold" binding:"required,gt=0"`
	SalePricePerShare decimal.Decimal      `json:"salePricePerShare" binding:"required,dgt0"`
	PolicyKind        domain.FeePolicyKind `json:"policyKind" binding:"required,oneof=FIXED_FEE PENDING_FEE_SWEEP"`
	FixedFee          decimal.Decimal      `json:"fixedFee"`
}

// Policy builds the domain fee policy variant from the request.
func (r DistributeProfitRequest) Policy() domain.FeePolicy {
	return domain.FeePolicy{Kind: r.PolicyKind, FixedFee: r.FixedFee}
}

// DistributionResponse defines the data returned for a settled sale.
type DistributionResponse struct {
	DistributionID    string          `json:"distributionID"`
	InvestmentID      string          `json:"investmentID"`
	InvestorID        string          `json:"investorID"`
	CustomerID        string          `json:"customerID"`
	SharesSold        int64           `json:"sharesSold"`
	SalePricePerShare decimal.Decimal `json:"salePricePerShare"`
	SaleAmount        decimal.Decimal `json:"saleAmount"`
	PrincipalReturned decimal.Decimal `json:"principalReturned"`
	TotalProfit       decimal.Decimal `json:"totalProfit"`
	InvestorShare     decimal.Decimal `json:"investorShare"`
	CustomerShare     decimal.Decimal `json:"customerShare"`
	FeesDeducted      decimal.Decimal `json:"feesDeducted"`
	PolicyKind        string          `json:"policyKind"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ToDistributionResponse converts a domain.ProfitDistribution.
func ToDistributionResponse(d *domain.ProfitDistribution) DistributionResponse {
	return DistributionResponse{
		DistributionID:    d.DistributionID,
		InvestmentID:      d.InvestmentID,
		InvestorID:        d.InvestorID,
		CustomerID:        d.CustomerID,
		SharesSold:        d.SharesSold,
		SalePricePerShare: d.SalePricePerShare,
		SaleAmount:        d.SaleAmount,
		PrincipalReturned: d.PrincipalReturned,
		TotalProfit:       d.TotalProfit,
		InvestorShare:     d.InvestorShare,
		CustomerShare:     d.CustomerShare,
		FeesDeducted:      d.FeesDeducted,
		PolicyKind:        string(d.PolicyKind),
		CreatedAt:         d.CreatedAt,
	}
}

// ToDistributionResponses converts a slice of distributions.
func ToDistributionResponses(list []domain.ProfitDistribution) []DistributionResponse {
	res := make([]DistributionResponse, len(list))
	for i := range list {
		res[i] = ToDistributionResponse(&list[i])
	}
	return res
}
