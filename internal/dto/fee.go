package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// CreateFeeRequest raises a charge against a customer.
type CreateFeeRequest struct {
	CustomerID  string          `json:"customerID" binding:"required"`
	AccountID   string          `json:"accountID" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// BulkAnnualFeeRequest raises the same annual charge against many
// customers, each in its own transaction.
type BulkAnnualFeeRequest struct {
	CustomerIDs []string        `json:"customerIDs" binding:"required,min=1"`
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// FeeResponse defines the data returned for a fee.
type FeeResponse struct {
	FeeID                string          `json:"feeID"`
	CustomerID           string          `json:"customerID"`
	AccountID            string          `json:"accountID"`
	Description          string          `json:"description"`
	Amount               decimal.Decimal `json:"amount"`
	Status               string          `json:"status"`
	PaidFromDistribution bool            `json:"paidFromDistribution"`
	DistributionID       *string         `json:"distributionID,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	LastUpdatedAt        time.Time       `json:"lastUpdatedAt"`
}

// ToFeeResponse converts a domain.Fee.
func ToFeeResponse(f *domain.Fee) FeeResponse {
	return FeeResponse{
		FeeID:                f.FeeID,
		CustomerID:           f.CustomerID,
		AccountID:            f.AccountID,
		Description:          f.Description,
		Amount:               f.Amount,
		Status:               string(f.Status),
		PaidFromDistribution: f.PaidFromDistribution,
		DistributionID:       f.DistributionID,
		CreatedAt:            f.CreatedAt,
		LastUpdatedAt:        f.LastUpdatedAt,
	}
}

// ToFeeResponses converts a slice of fees.
func ToFeeResponses(fees []domain.Fee) []FeeResponse {
	res := make([]FeeResponse, len(fees))
	for i := range fees {
		res[i] = ToFeeResponse(&fees[i])
	}
	return res
}
