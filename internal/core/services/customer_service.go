package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portsrepo "github.com/sajhapunji/broker-backoffice/internal/core/ports/repositories"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

type customerService struct {
	customerRepo portsrepo.CustomerRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	approvalSvc  portssvc.ApprovalSvcFacade
	txm          portsrepo.TxManager
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customerRepo portsrepo.CustomerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, approvalSvc portssvc.ApprovalSvcFacade, txm portsrepo.TxManager) portssvc.CustomerSvcFacade {
	return &customerService{
		customerRepo: customerRepo,
		accountRepo:  accountRepo,
		approvalSvc:  approvalSvc,
		txm:          txm,
	}
}

var _ portssvc.CustomerSvcFacade = (*customerService)(nil)

// applyCustomerChanges merges a change-set into the customer. Shared by the
// direct update path and approval replay.
func applyCustomerChanges(customer *domain.Customer, ch domain.CustomerChanges) {
	if ch.Name != nil {
		customer.Name = *ch.Name
	}
	if ch.Email != nil {
		customer.Email = *ch.Email
	}
	if ch.Phone != nil {
		customer.Phone = *ch.Phone
	}
}

// OnboardCustomer creates the customer and opens their primary account in a
// single unit of work.
func (s *customerService) OnboardCustomer(ctx context.Context, actor domain.Actor, req dto.CreateCustomerRequest) (*domain.Customer, *domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor.UserID,
		LastUpdatedAt: now,
		LastUpdatedBy: actor.UserID,
	}

	customer := domain.Customer{
		CustomerID:  uuid.NewString(),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		BOID:        req.BOID,
		IsActive:    true,
		AuditFields: audit,
	}
	account := domain.Account{
		AccountID:     uuid.NewString(),
		CustomerID:    customer.CustomerID,
		AccountNumber: req.AccountNumber,
		Kind:          domain.AccountCustomer,
		Balance:       decimal.Zero,
		BlockedAmount: decimal.Zero,
		Status:        domain.AccountActive,
		IsPrimary:     true,
		AuditFields:   audit,
	}

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	if err := s.customerRepo.SaveCustomerInTx(ctx, tx, customer); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save customer", slog.String("error", err.Error()), slog.String("customer_id", customer.CustomerID))
		}
		return nil, nil, err
	}
	if err := s.accountRepo.SaveAccountInTx(ctx, tx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save primary account", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		}
		return nil, nil, err
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	logger.Info("Customer onboarded",
		slog.String("customer_id", customer.CustomerID),
		slog.String("account_id", account.AccountID),
	)
	return &customer, &account, nil
}

// GetCustomerByID retrieves one customer.
func (s *customerService) GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	return s.customerRepo.FindCustomerByID(ctx, customerID)
}

// ListCustomers retrieves a paginated list of customers.
func (s *customerService) ListCustomers(ctx context.Context, limit int, offset int) ([]domain.Customer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	customers, err := s.customerRepo.ListCustomers(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list customers", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	if customers == nil {
		return []domain.Customer{}, nil
	}
	return customers, nil
}

// UpdateCustomer changes customer profile fields. Maker changes are
// diverted into a pending modification request.
func (s *customerService) UpdateCustomer(ctx context.Context, actor domain.Actor, customerID string, req dto.UpdateCustomerRequest) (*domain.Customer, *domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}

	changes := domain.CustomerChanges{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	if actor.Role == domain.RoleMaker {
		pending, err := s.approvalSvc.SubmitRequest(ctx, actor, domain.GovernedCustomer, customerID, domain.ChangeUpdate, changes)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Customer update diverted to approval", slog.String("customer_id", customerID), slog.String("request_id", pending.RequestID))
		return nil, pending, nil
	}

	applyCustomerChanges(customer, changes)
	customer.LastUpdatedAt = time.Now()
	customer.LastUpdatedBy = actor.UserID

	if err := s.customerRepo.UpdateCustomer(ctx, *customer); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to update customer", slog.String("error", err.Error()), slog.String("customer_id", customerID))
		}
		return nil, nil, err
	}

	logger.Info("Customer updated", slog.String("customer_id", customerID))
	return customer, nil, nil
}

// DeactivateCustomer marks the customer inactive. Maker requests are
// diverted; the row itself is never removed.
func (s *customerService) DeactivateCustomer(ctx context.Context, actor domain.Actor, customerID string) (*domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, fmt.Errorf("%w: customer %s is already inactive", apperrors.ErrConflict, customerID)
	}

	if actor.Role == domain.RoleMaker {
		pending, err := s.approvalSvc.SubmitRequest(ctx, actor, domain.GovernedCustomer, customerID, domain.ChangeDelete, nil)
		if err != nil {
			return nil, err
		}
		logger.Info("Customer deactivation diverted to approval", slog.String("customer_id", customerID), slog.String("request_id", pending.RequestID))
		return pending, nil
	}

	customer.IsActive = false
	customer.LastUpdatedAt = time.Now()
	customer.LastUpdatedBy = actor.UserID

	if err := s.customerRepo.UpdateCustomer(ctx, *customer); err != nil {
		logger.Error("Failed to deactivate customer", slog.String("error", err.Error()), slog.String("customer_id", customerID))
		return nil, err
	}

	logger.Info("Customer deactivated", slog.String("customer_id", customerID))
	return nil, nil
}
