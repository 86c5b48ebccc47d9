package services

import (
	"context"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
)

// FeeSvcFacade raises and resolves customer charges. Pending fees are
// settled either explicitly (waive) or by a pending-fee-sweep
// distribution; this facade covers the explicit paths.
type FeeSvcFacade interface {
	// CreateFee raises a pending charge against a customer.
	CreateFee(ctx context.Context, actor domain.Actor, req dto.CreateFeeRequest) (*domain.Fee, error)

	// WaiveFee marks a pending fee waived. Paid fees cannot be waived.
	WaiveFee(ctx context.Context, actor domain.Actor, feeID string) (*domain.Fee, error)

	// ApplyAnnualFees raises the same charge against many customers'
	// primary accounts, one transaction per customer. A failed customer
	// never rolls back the others.
	ApplyAnnualFees(ctx context.Context, actor domain.Actor, req dto.BulkAnnualFeeRequest) (*dto.BulkResult, error)

	// GetFeeByID retrieves one fee.
	GetFeeByID(ctx context.Context, feeID string) (*domain.Fee, error)

	// ListFeesByCustomer retrieves a customer's fees.
	ListFeesByCustomer(ctx context.Context, customerID string, limit int, offset int) ([]domain.Fee, error)
}
