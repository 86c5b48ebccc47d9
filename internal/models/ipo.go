package models

import (
	"github.com/shopspring/decimal"
)

// IPOApplication is the persisted form of a subscription request. Status
// and allotment_status are stored as separate columns; a refunded
// application reads ALLOTTED / NOT_ALLOTTED.
type IPOApplication struct {
	ApplicationID     string          `db:"application_id"`
	CustomerID        string          `db:"customer_id"`
	AccountID         string          `db:"account_id"`
	Symbol            string          `db:"symbol"`
	CompanyName       string          `db:"company_name"`
	Quantity          int64           `db:"quantity"`
	PricePerShare     decimal.Decimal `db:"price_per_share"`
	TotalAmount       decimal.Decimal `db:"total_amount"`
	Status            string          `db:"status"`
	AllotmentStatus   string          `db:"allotment_status"`
	AllotmentQuantity int64           `db:"allotment_quantity"`
	AuditFields
}
