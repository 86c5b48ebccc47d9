package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

func TestHoldingUpdateDeltas(t *testing.T) {
	old := domain.Holding{
		HoldingID:     "h-1",
		Quantity:      10,
		PurchasePrice: dec("100"),
		CurrentPrice:  dec("120"),
	}

	tests := []struct {
		name           string
		newQuantity    int64
		newPrice       decimal.Decimal
		wantInvestment decimal.Decimal
		wantValue      decimal.Decimal
	}{
		{
			name:           "quantity increased",
			newQuantity:    15,
			newPrice:       dec("100"),
			wantInvestment: dec("500"),
			wantValue:      dec("600"),
		},
		{
			name:           "price corrected down",
			newQuantity:    10,
			newPrice:       dec("90"),
			wantInvestment: dec("-100"),
			wantValue:      dec("0"),
		},
		{
			name:           "both changed",
			newQuantity:    5,
			newPrice:       dec("110"),
			wantInvestment: dec("-450"),
			wantValue:      dec("-600"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := domain.HoldingUpdateDeltas(old, tt.newQuantity, tt.newPrice)
			assert.True(t, d.Investment.Equal(tt.wantInvestment), "investment delta %s", d.Investment)
			assert.True(t, d.Value.Equal(tt.wantValue), "value delta %s", d.Value)
		})
	}
}

func TestHoldingDeleteDeltas(t *testing.T) {
	h := domain.Holding{
		Quantity:      10,
		PurchasePrice: dec("100"),
		CurrentPrice:  dec("120"),
	}

	d := domain.HoldingDeleteDeltas(h)
	assert.True(t, d.Investment.Equal(dec("-1000")))
	assert.True(t, d.Value.Equal(dec("-1200")))
}

func TestPortfolio_ApplyDeltas(t *testing.T) {
	p := domain.Portfolio{
		TotalInvestment: dec("1000"),
		TotalValue:      dec("1200"),
	}

	clamped := p.ApplyDeltas(domain.PortfolioDeltas{Investment: dec("-400"), Value: dec("300")})
	assert.False(t, clamped)
	assert.True(t, p.TotalInvestment.Equal(dec("600")))
	assert.True(t, p.TotalValue.Equal(dec("1500")))
}

func TestPortfolio_ApplyDeltas_FloorsAtZero(t *testing.T) {
	p := domain.Portfolio{
		TotalInvestment: dec("100"),
		TotalValue:      dec("100"),
	}

	// A decrement larger than the aggregate means drift upstream; the
	// aggregates clamp at zero and the caller is told about it.
	clamped := p.ApplyDeltas(domain.PortfolioDeltas{Investment: dec("-150"), Value: dec("-50")})
	assert.True(t, clamped)
	assert.True(t, p.TotalInvestment.IsZero())
	assert.True(t, p.TotalValue.Equal(dec("50")))
}
