package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// CreateIPOApplicationRequest subscribes a customer to a share offering.
type CreateIPOApplicationRequest struct {
	CustomerID    string          `json:"customerID" binding:"required"`
	AccountID     string          `json:"accountID" binding:"required"`
	Symbol        string          `json:"symbol" binding:"required"`
	CompanyName   string          `json:"companyName"`
	Quantity      int64           `json:"quantity" binding:"required,gt=0"`
	PricePerShare decimal.Decimal `json:"pricePerShare" binding:"required,dgt0"`
}

// UpdateIPOApplicationRequest is the governed field set for application
// updates.
type UpdateIPOApplicationRequest struct {
	Quantity      *int64            `json:"quantity" binding:"omitempty,gt=0"`
	PricePerShare *decimal.Decimal  `json:"pricePerShare"`
	Status        *domain.IPOStatus `json:"status" binding:"omitempty,oneof=PENDING VERIFIED REJECTED ALLOTTED"`
}

// RejectApplicationRequest carries the optional reason for a rejection.
type RejectApplicationRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// AllotmentOutcome selects the result of the IPO draw for one application.
type AllotmentOutcome string

const (
	OutcomeAllotted    AllotmentOutcome = "ALLOTTED"
	OutcomeNotAllotted AllotmentOutcome = "NOT_ALLOTTED"
)

// AllotApplicationRequest records the draw outcome. InvestorID is optional:
// when set, the allotted shares are funded from that investor's capital
// pool and an Investment is created in the same unit of work.
type AllotApplicationRequest struct {
	Outcome           AllotmentOutcome `json:"outcome" binding:"required,oneof=ALLOTTED NOT_ALLOTTED"`
	AllotmentQuantity int64            `json:"allotmentQuantity" binding:"gte=0"`
	InvestorID        string           `json:"investorID"`
}

// BulkAllotmentItem is one application's outcome within a bulk allotment.
type BulkAllotmentItem struct {
	ApplicationID     string           `json:"applicationID" binding:"required"`
	Outcome           AllotmentOutcome `json:"outcome" binding:"required,oneof=ALLOTTED NOT_ALLOTTED"`
	AllotmentQuantity int64            `json:"allotmentQuantity" binding:"gte=0"`
	InvestorID        string           `json:"investorID"`
}

// BulkAllotmentRequest processes many applications, each in its own
// transaction.
type BulkAllotmentRequest struct {
	Items []BulkAllotmentItem `json:"items" binding:"required,min=1,dive"`
}

// BulkItemResult reports one unit's outcome of a bulk operation.
type BulkItemResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkResult summarizes a bulk operation; failures never abort the batch.
type BulkResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Items     []BulkItemResult `json:"items"`
}

// IPOApplicationResponse defines the data returned for an application.
type IPOApplicationResponse struct {
	ApplicationID     string          `json:"applicationID"`
	CustomerID        string          `json:"customerID"`
	AccountID         string          `json:"accountID"`
	Symbol            string          `json:"symbol"`
	CompanyName       string          `json:"companyName"`
	Quantity          int64           `json:"quantity"`
	PricePerShare     decimal.Decimal `json:"pricePerShare"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Status            string          `json:"status"`
	AllotmentStatus   string          `json:"allotmentStatus"`
	AllotmentQuantity int64           `json:"allotmentQuantity"`
	CreatedAt         time.Time       `json:"createdAt"`
	LastUpdatedAt     time.Time       `json:"lastUpdatedAt"`
}

// ToIPOApplicationResponse converts a domain.IPOApplication.
func ToIPOApplicationResponse(a *domain.IPOApplication) IPOApplicationResponse {
	return IPOApplicationResponse{
		ApplicationID:     a.ApplicationID,
		CustomerID:        a.CustomerID,
		AccountID:         a.AccountID,
		Symbol:            a.Symbol,
		CompanyName:       a.CompanyName,
		Quantity:          a.Quantity,
		PricePerShare:     a.PricePerShare,
		TotalAmount:       a.TotalAmount,
		Status:            string(a.Status),
		AllotmentStatus:   string(a.AllotmentStatus),
		AllotmentQuantity: a.AllotmentQuantity,
		CreatedAt:         a.CreatedAt,
		LastUpdatedAt:     a.LastUpdatedAt,
	}
}

// ToIPOApplicationResponses converts a slice of applications.
func ToIPOApplicationResponses(apps []domain.IPOApplication) []IPOApplicationResponse {
	res := make([]IPOApplicationResponse, len(apps))
	for i := range apps {
		res[i] = ToIPOApplicationResponse(&apps[i])
	}
	return res
}
