package domain

import "github.com/shopspring/decimal"

// Portfolio aggregates a customer's holdings. TotalInvestment is the sum of
// quantity*purchasePrice over holdings; TotalValue the sum of
// quantity*currentPrice.
type Portfolio struct {
	PortfolioID     string          `json:"portfolioID"`
	CustomerID      string          `json:"customerID"`
	TotalInvestment decimal.Decimal `json:"totalInvestment"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	AuditFields
}

// Holding is a quantity of one security owned within a portfolio.
type Holding struct {
	HoldingID     string          `json:"holdingID"`
	PortfolioID   string          `json:"portfolioID"`
	CustomerID    string          `json:"customerID"`
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	AuditFields
}

// InvestmentValue is quantity * purchasePrice for the holding.
func (h Holding) InvestmentValue() decimal.Decimal {
	return h.PurchasePrice.Mul(decimal.NewFromInt(h.Quantity))
}

// MarketValue is quantity * currentPrice for the holding.
func (h Holding) MarketValue() decimal.Decimal {
	return h.CurrentPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// PortfolioDeltas is the aggregate adjustment produced by a holding
// mutation replay.
type PortfolioDeltas struct {
	Investment decimal.Decimal
	Value      decimal.Decimal
}

// HoldingUpdateDeltas recomputes the portfolio aggregate adjustment for a
// holding whose quantity and/or purchase price changed:
// investment delta = newQty*newPrice - oldQty*oldPrice,
// value delta = (newQty-oldQty)*currentPrice.
func HoldingUpdateDeltas(old Holding, newQuantity int64, newPurchasePrice decimal.Decimal) PortfolioDeltas {
	newInvestment := newPurchasePrice.Mul(decimal.NewFromInt(newQuantity))
	newValue := old.CurrentPrice.Mul(decimal.NewFromInt(newQuantity))
	return PortfolioDeltas{
		Investment: newInvestment.Sub(old.InvestmentValue()),
		Value:      newValue.Sub(old.MarketValue()),
	}
}

// HoldingDeleteDeltas is the aggregate decrement for removing a holding.
func HoldingDeleteDeltas(h Holding) PortfolioDeltas {
	return PortfolioDeltas{
		Investment: h.InvestmentValue().Neg(),
		Value:      h.MarketValue().Neg(),
	}
}

// ApplyDeltas adds the deltas to the portfolio aggregates, flooring both at
// zero. It returns true when a floor actually changed a value, which means
// the aggregates had drifted upstream and the caller should log it.
func (p *Portfolio) ApplyDeltas(d PortfolioDeltas) bool {
	clamped := false
	p.TotalInvestment = p.TotalInvestment.Add(d.Investment)
	if p.TotalInvestment.IsNegative() {
		p.TotalInvestment = decimal.Zero
		clamped = true
	}
	p.TotalValue = p.TotalValue.Add(d.Value)
	if p.TotalValue.IsNegative() {
		p.TotalValue = decimal.Zero
		clamped = true
	}
	return clamped
}
