package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyPrecision is the number of decimal places carried by all money
// amounts (paisa precision). The system is single-currency (NPR).
const CurrencyPrecision = 2

// InvestorShareRatio is the investor's fraction of realized profit before
// fees; the customer keeps the remainder.
var InvestorShareRatio = decimal.NewFromFloat(0.60)

// FeePolicyKind selects how fees are taken out of a distribution.
type FeePolicyKind string

const (
	// FeePolicyFixed deducts a fixed admin fee from the investor's gross
	// share; the customer share is untouched.
	FeePolicyFixed FeePolicyKind = "FIXED_FEE"
	// FeePolicyPendingSweep settles the customer's pending fees out of the
	// customer's share, capped at that share; the investor share is
	// untouched.
	FeePolicyPendingSweep FeePolicyKind = "PENDING_FEE_SWEEP"
)

// FeePolicy is the tagged fee-deduction variant carried by a distribution
// request. FixedFee is consulted only for FeePolicyFixed.
type FeePolicy struct {
	Kind     FeePolicyKind   `json:"kind"`
	FixedFee decimal.Decimal `json:"fixedFee,omitempty"`
}

// DistributionStatus - distributions are immutable once settled.
type DistributionStatus string

const (
	DistributionSettled DistributionStatus = "SETTLED"
)

// ProfitDistribution is the immutable record of one sale-and-split event.
type ProfitDistribution struct {
	DistributionID    string             `json:"distributionID"`
	InvestmentID      string             `json:"investmentID"`
	InvestorID        string             `json:"investorID"`
	CustomerID        string             `json:"customerID"`
	SharesSold        int64              `json:"sharesSold"`
	SalePricePerShare decimal.Decimal    `json:"salePricePerShare"`
	SaleAmount        decimal.Decimal    `json:"saleAmount"`
	PrincipalReturned decimal.Decimal    `json:"principalReturned"`
	TotalProfit       decimal.Decimal    `json:"totalProfit"`
	InvestorShare     decimal.Decimal    `json:"investorShare"` // Net of any fixed fee
	CustomerShare     decimal.Decimal    `json:"customerShare"` // Net of any swept fees
	FeesDeducted      decimal.Decimal    `json:"feesDeducted"`  // Credited to the office account
	PolicyKind        FeePolicyKind      `json:"policyKind"`
	Status            DistributionStatus `json:"status"`
	AuditFields
}

// DistributionBreakdown is the computed split for one sale, before any row
// is written. Closure holds exactly:
//
//	PrincipalReturned + InvestorShareGross + CustomerShareBase = SaleAmount
//
// and every rupee of the sale is attributed to the customer, the investor
// or the office:
//
//	PrincipalReturned + NetInvestorShare + CustomerShare + FeesDeducted = SaleAmount
type DistributionBreakdown struct {
	SaleAmount         decimal.Decimal
	PrincipalReturned  decimal.Decimal
	TotalProfit        decimal.Decimal
	InvestorShareGross decimal.Decimal
	CustomerShareBase  decimal.Decimal
	NetInvestorShare   decimal.Decimal
	CustomerShare      decimal.Decimal
	FeesDeducted       decimal.Decimal
}

// ComputeDistribution performs the sale split for sharesSold of inv at
// salePrice under the given fee policy. pendingFees is the customer's total
// pending fee amount; it is consulted only for FeePolicyPendingSweep.
//
// Rounding: principal is returned pro rata and rounded to currency
// precision; the investor gross share is profit * ratio rounded likewise;
// the customer base share is derived as the remainder so the closure above
// never drifts.
func ComputeDistribution(inv Investment, sharesSold int64, salePrice decimal.Decimal, policy FeePolicy, pendingFees decimal.Decimal) (DistributionBreakdown, error) {
	if sharesSold <= 0 {
		return DistributionBreakdown{}, fmt.Errorf("shares sold must be positive, got %d", sharesSold)
	}
	if sharesSold > inv.SharesHeld {
		return DistributionBreakdown{}, fmt.Errorf("shares sold %d exceeds shares held %d", sharesSold, inv.SharesHeld)
	}
	if salePrice.IsNegative() {
		return DistributionBreakdown{}, fmt.Errorf("sale price must not be negative, got %s", salePrice)
	}
	if inv.SharesAllocated <= 0 {
		return DistributionBreakdown{}, fmt.Errorf("investment %s has no allocated shares", inv.InvestmentID)
	}

	sold := decimal.NewFromInt(sharesSold)
	saleAmount := salePrice.Mul(sold).Round(CurrencyPrecision)

	// Pro-rata principal for the sold portion.
	principalReturned := inv.PrincipalAmount.Mul(sold).
		Div(decimal.NewFromInt(inv.SharesAllocated)).
		Round(CurrencyPrecision)
	if sharesSold == inv.SharesHeld && inv.SharesHeld == inv.SharesAllocated {
		// Selling the whole allocation returns the principal exactly.
		principalReturned = inv.PrincipalAmount
	}

	totalProfit := saleAmount.Sub(principalReturned)
	investorGross := totalProfit.Mul(InvestorShareRatio).Round(CurrencyPrecision)
	// Remainder, not profit*0.40: keeps the closure exact after rounding.
	customerBase := totalProfit.Sub(investorGross)

	b := DistributionBreakdown{
		SaleAmount:         saleAmount,
		PrincipalReturned:  principalReturned,
		TotalProfit:        totalProfit,
		InvestorShareGross: investorGross,
		CustomerShareBase:  customerBase,
		NetInvestorShare:   investorGross,
		CustomerShare:      customerBase,
	}

	switch policy.Kind {
	case FeePolicyFixed:
		if policy.FixedFee.IsNegative() {
			return DistributionBreakdown{}, fmt.Errorf("fixed fee must not be negative, got %s", policy.FixedFee)
		}
		if policy.FixedFee.GreaterThan(investorGross) {
			return DistributionBreakdown{}, fmt.Errorf("fixed fee %s exceeds investor share %s", policy.FixedFee, investorGross)
		}
		b.FeesDeducted = policy.FixedFee
		b.NetInvestorShare = investorGross.Sub(policy.FixedFee)
	case FeePolicyPendingSweep:
		if pendingFees.IsNegative() {
			pendingFees = decimal.Zero
		}
		b.FeesDeducted = decimal.Min(customerBase, pendingFees)
		if b.FeesDeducted.IsNegative() {
			// Loss-making sale: nothing to sweep.
			b.FeesDeducted = decimal.Zero
		}
		b.CustomerShare = customerBase.Sub(b.FeesDeducted)
	default:
		return DistributionBreakdown{}, fmt.Errorf("unknown fee policy %q", policy.Kind)
	}

	return b, nil
}
