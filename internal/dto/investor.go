package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// CreateInvestorRequest registers a capital partner and opens their escrow
// account.
type CreateInvestorRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	AccountNumber string `json:"accountNumber" binding:"required"`
}

// AddCapitalRequest tops up an investor's capital pool.
type AddCapitalRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// ReserveInvestmentRequest moves capital from available to invested and
// creates the Investment.
type ReserveInvestmentRequest struct {
	InvestorID    string          `json:"investorID" binding:"required"`
	CustomerID    string          `json:"customerID" binding:"required"`
	ApplicationID string          `json:"applicationID"`
	Symbol        string          `json:"symbol" binding:"required"`
	Shares        int64           `json:"shares" binding:"required,gt=0"`
	CostPerShare  decimal.Decimal `json:"costPerShare" binding:"required,dgt0"`
}

// InvestorResponse defines the data returned for an investor.
type InvestorResponse struct {
	InvestorID       string          `json:"investorID"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	AccountID        string          `json:"accountID"`
	TotalCapital     decimal.Decimal `json:"totalCapital"`
	AvailableCapital decimal.Decimal `json:"availableCapital"`
	InvestedAmount   decimal.Decimal `json:"investedAmount"`
	TotalProfit      decimal.Decimal `json:"totalProfit"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
}

// ToInvestorResponse converts a domain.Investor.
func ToInvestorResponse(inv *domain.Investor) InvestorResponse {
	return InvestorResponse{
		InvestorID:       inv.InvestorID,
		Name:             inv.Name,
		Email:            inv.Email,
		AccountID:        inv.AccountID,
		TotalCapital:     inv.TotalCapital,
		AvailableCapital: inv.AvailableCapital,
		InvestedAmount:   inv.InvestedAmount,
		TotalProfit:      inv.TotalProfit,
		IsActive:         inv.IsActive,
		CreatedAt:        inv.CreatedAt,
		LastUpdatedAt:    inv.LastUpdatedAt,
	}
}

// InvestmentResponse defines the data returned for a funded stake.
type InvestmentResponse struct {
	InvestmentID       string          `json:"investmentID"`
	InvestorID         string          `json:"investorID"`
	CustomerID         string          `json:"customerID"`
	ApplicationID      string          `json:"applicationID,omitempty"`
	Symbol             string          `json:"symbol"`
	PrincipalAmount    decimal.Decimal `json:"principalAmount"`
	SharesAllocated    int64           `json:"sharesAllocated"`
	CostPerShare       decimal.Decimal `json:"costPerShare"`
	SharesHeld         int64           `json:"sharesHeld"`
	CurrentMarketPrice decimal.Decimal `json:"currentMarketPrice"`
	SoldAmount         decimal.Decimal `json:"soldAmount"`
	ProfitEarned       decimal.Decimal `json:"profitEarned"`
	FeesPaid           decimal.Decimal `json:"feesPaid"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`
	LastUpdatedAt      time.Time       `json:"lastUpdatedAt"`
}

// ToInvestmentResponse converts a domain.Investment.
func ToInvestmentResponse(inv *domain.Investment) InvestmentResponse {
	return InvestmentResponse{
		InvestmentID:       inv.InvestmentID,
		InvestorID:         inv.InvestorID,
		CustomerID:         inv.CustomerID,
		ApplicationID:      inv.ApplicationID,
		Symbol:             inv.Symbol,
		PrincipalAmount:    inv.PrincipalAmount,
		SharesAllocated:    inv.SharesAllocated,
		CostPerShare:       inv.CostPerShare,
		SharesHeld:         inv.SharesHeld,
		CurrentMarketPrice: inv.CurrentMarketPrice,
		SoldAmount:         inv.SoldAmount,
		ProfitEarned:       inv.ProfitEarned,
		FeesPaid:           inv.FeesPaid,
		Status:             string(inv.Status),
		CreatedAt:          inv.CreatedAt,
		LastUpdatedAt:      inv.LastUpdatedAt,
	}
}

// ToInvestmentResponses converts a slice of investments.
func ToInvestmentResponses(list []domain.Investment) []InvestmentResponse {
	res := make([]InvestmentResponse, len(list))
	for i := range list {
		res[i] = ToInvestmentResponse(&list[i])
	}
	return res
}
