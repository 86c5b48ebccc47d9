package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// UpdateHoldingRequest is the governed field set for holding updates.
type UpdateHoldingRequest struct {
	Quantity      *int64           `json:"quantity" binding:"omitempty,gt=0"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
}

// HoldingResponse defines the data returned for a holding.
type HoldingResponse struct {
	HoldingID     string          `json:"holdingID"`
	PortfolioID   string          `json:"portfolioID"`
	CustomerID    string          `json:"customerID"`
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ToHoldingResponse converts a domain.Holding.
func ToHoldingResponse(h *domain.Holding) HoldingResponse {
	return HoldingResponse{
		HoldingID:     h.HoldingID,
		PortfolioID:   h.PortfolioID,
		CustomerID:    h.CustomerID,
		Symbol:        h.Symbol,
		Quantity:      h.Quantity,
		PurchasePrice: h.PurchasePrice,
		CurrentPrice:  h.CurrentPrice,
		CreatedAt:     h.CreatedAt,
		LastUpdatedAt: h.LastUpdatedAt,
	}
}

// PortfolioResponse defines the data returned for a portfolio, optionally
// with its holdings.
type PortfolioResponse struct {
	PortfolioID     string            `json:"portfolioID"`
	CustomerID      string            `json:"customerID"`
	TotalInvestment decimal.Decimal   `json:"totalInvestment"`
	TotalValue      decimal.Decimal   `json:"totalValue"`
	Holdings        []HoldingResponse `json:"holdings,omitempty"`
	LastUpdatedAt   time.Time         `json:"lastUpdatedAt"`
}

// ToPortfolioResponse converts a domain.Portfolio with its holdings.
func ToPortfolioResponse(p *domain.Portfolio, holdings []domain.Holding) PortfolioResponse {
	resp := PortfolioResponse{
		PortfolioID:     p.PortfolioID,
		CustomerID:      p.CustomerID,
		TotalInvestment: p.TotalInvestment,
		TotalValue:      p.TotalValue,
		LastUpdatedAt:   p.LastUpdatedAt,
	}
	if len(holdings) > 0 {
		resp.Holdings = make([]HoldingResponse, len(holdings))
		for i := range holdings {
			resp.Holdings[i] = ToHoldingResponse(&holdings[i])
		}
	}
	return resp
}
