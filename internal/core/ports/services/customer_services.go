package services

import (
	"context"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
)

// CustomerSvcFacade manages customer records. Updates and deactivations are
// governed: maker changes come back as a pending modification request.
type CustomerSvcFacade interface {
	// OnboardCustomer creates the customer and opens their primary account
	// in a single unit of work.
	OnboardCustomer(ctx context.Context, actor domain.Actor, req dto.CreateCustomerRequest) (*domain.Customer, *domain.Account, error)

	// GetCustomerByID retrieves one customer.
	GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)

	// ListCustomers retrieves a paginated list of customers.
	ListCustomers(ctx context.Context, limit int, offset int) ([]domain.Customer, error)

	// UpdateCustomer changes customer profile fields.
	UpdateCustomer(ctx context.Context, actor domain.Actor, customerID string, req dto.UpdateCustomerRequest) (*domain.Customer, *domain.ModificationRequest, error)

	// DeactivateCustomer marks the customer inactive. Customer rows are
	// never hard-deleted; their ledger history must stay reachable.
	DeactivateCustomer(ctx context.Context, actor domain.Actor, customerID string) (*domain.ModificationRequest, error)
}
