package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

func TestAccount_AvailableBalance(t *testing.T) {
	a := domain.Account{Balance: dec("1000"), BlockedAmount: dec("250")}
	assert.True(t, a.AvailableBalance().Equal(dec("750")))
}

func TestAccount_CheckInvariant(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		blocked string
		want    bool
	}{
		{"nothing blocked", "100", "0", true},
		{"fully blocked", "100", "100", true},
		{"partially blocked", "100", "40", true},
		{"blocked exceeds balance", "100", "101", false},
		{"negative blocked", "100", "-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := domain.Account{Balance: dec(tt.balance), BlockedAmount: dec(tt.blocked)}
			assert.Equal(t, tt.want, a.CheckInvariant())
		})
	}
}

func TestInvestor_CheckInvariant(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		available string
		invested  string
		want      bool
	}{
		{"fresh pool", "1000", "1000", "0", true},
		{"partially invested", "1000", "400", "600", true},
		{"profit kept outside total", "1000", "500", "400", true},
		{"over-allocated", "1000", "600", "600", false},
		{"negative available", "1000", "-5", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := domain.Investor{
				TotalCapital:     dec(tt.total),
				AvailableCapital: dec(tt.available),
				InvestedAmount:   dec(tt.invested),
			}
			assert.Equal(t, tt.want, i.CheckInvariant())
		})
	}
}
