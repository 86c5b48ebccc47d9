package domain

import "github.com/shopspring/decimal"

// IPOStatus is the top-level lifecycle state of an application.
type IPOStatus string

const (
	IPOPending  IPOStatus = "PENDING"
	IPOVerified IPOStatus = "VERIFIED"
	IPORejected IPOStatus = "REJECTED"
	IPOAllotted IPOStatus = "ALLOTTED"
)

// AllotmentStatus records the outcome of the IPO draw. It is orthogonal to
// IPOStatus: a fully refunded application still ends with status ALLOTTED
// and allotment status NOT_ALLOTTED. The two axes must not be collapsed.
type AllotmentStatus string

const (
	AllotmentNone        AllotmentStatus = "NONE"
	AllotmentAllotted    AllotmentStatus = "ALLOTTED"
	AllotmentNotAllotted AllotmentStatus = "NOT_ALLOTTED"
)

// IPOApplication is a customer's subscription request for a share offering.
// While VERIFIED, TotalAmount is mirrored into the owning account's
// blocked amount.
type IPOApplication struct {
	ApplicationID     string          `json:"applicationID"`
	CustomerID        string          `json:"customerID"`
	AccountID         string          `json:"accountID"`
	Symbol            string          `json:"symbol"`
	CompanyName       string          `json:"companyName"`
	Quantity          int64           `json:"quantity"`
	PricePerShare     decimal.Decimal `json:"pricePerShare"`
	TotalAmount       decimal.Decimal `json:"totalAmount"` // Quantity * PricePerShare
	Status            IPOStatus       `json:"status"`
	AllotmentStatus   AllotmentStatus `json:"allotmentStatus"`
	AllotmentQuantity int64           `json:"allotmentQuantity"`
	AuditFields
}

// IsResolved reports whether the application has reached a terminal state.
func (a IPOApplication) IsResolved() bool {
	return a.Status == IPORejected || a.Status == IPOAllotted
}

// AllottedAmount is the debit owed for the shares actually received.
func (a IPOApplication) AllottedAmount() decimal.Decimal {
	return a.PricePerShare.Mul(decimal.NewFromInt(a.AllotmentQuantity))
}
