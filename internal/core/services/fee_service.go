package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portsrepo "github.com/sajhapunji/broker-backoffice/internal/core/ports/repositories"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

type feeService struct {
	feeRepo      portsrepo.FeeRepositoryFacade
	customerRepo portsrepo.CustomerRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
}

// NewFeeService creates a new fee service.
func NewFeeService(feeRepo portsrepo.FeeRepositoryFacade, customerRepo portsrepo.CustomerRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade) portssvc.FeeSvcFacade {
	return &feeService{
		feeRepo:      feeRepo,
		customerRepo: customerRepo,
		accountRepo:  accountRepo,
	}
}

var _ portssvc.FeeSvcFacade = (*feeService)(nil)

// findPrimaryAccount picks the customer's primary active account, falling
// back to any active one.
func findPrimaryAccount(ctx context.Context, accountRepo portsrepo.AccountRepositoryFacade, customerID string) (*domain.Account, error) {
	accounts, err := accountRepo.FindAccountsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	var fallback *domain.Account
	for i := range accounts {
		acc := &accounts[i]
		if acc.Status != domain.AccountActive {
			continue
		}
		if acc.IsPrimary {
			return acc, nil
		}
		if fallback == nil {
			fallback = acc
		}
	}
	if fallback == nil {
		return nil, fmt.Errorf("%w: customer %s has no active account", apperrors.ErrConflict, customerID)
	}
	return fallback, nil
}

// CreateFee raises a pending charge against a customer. No funds move
// until the fee is swept by a distribution.
func (s *feeService) CreateFee(ctx context.Context, actor domain.Actor, req dto.CreateFeeRequest) (*domain.Fee, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: fee amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}

	if _, err := s.customerRepo.FindCustomerByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.CustomerID != req.CustomerID {
		return nil, fmt.Errorf("%w: account %s does not belong to customer %s", apperrors.ErrValidation, req.AccountID, req.CustomerID)
	}

	now := time.Now()
	fee := domain.Fee{
		FeeID:       uuid.NewString(),
		CustomerID:  req.CustomerID,
		AccountID:   req.AccountID,
		Description: req.Description,
		Amount:      req.Amount,
		Status:      domain.FeePending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	if err := s.feeRepo.SaveFee(ctx, fee); err != nil {
		logger.Error("Failed to save fee", slog.String("error", err.Error()), slog.String("fee_id", fee.FeeID))
		return nil, err
	}

	logger.Info("Fee raised",
		slog.String("fee_id", fee.FeeID),
		slog.String("customer_id", req.CustomerID),
		slog.String("amount", req.Amount.String()),
	)
	return &fee, nil
}

// WaiveFee marks a pending fee waived.
func (s *feeService) WaiveFee(ctx context.Context, actor domain.Actor, feeID string) (*domain.Fee, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	fee, err := s.feeRepo.FindFeeByID(ctx, feeID)
	if err != nil {
		return nil, err
	}
	if fee.Status != domain.FeePending {
		return nil, fmt.Errorf("%w: fee %s is %s, only pending fees can be waived", apperrors.ErrConflict, feeID, fee.Status)
	}

	fee.Status = domain.FeeWaived
	fee.LastUpdatedAt = time.Now()
	fee.LastUpdatedBy = actor.UserID

	if err := s.feeRepo.UpdateFeeStatus(ctx, *fee); err != nil {
		logger.Error("Failed to waive fee", slog.String("error", err.Error()), slog.String("fee_id", feeID))
		return nil, err
	}

	logger.Info("Fee waived", slog.String("fee_id", feeID))
	return fee, nil
}

// ApplyAnnualFees raises the same charge against many customers' primary
// accounts. One failed customer never blocks the rest.
func (s *feeService) ApplyAnnualFees(ctx context.Context, actor domain.Actor, req dto.BulkAnnualFeeRequest) (*dto.BulkResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: fee amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}

	result := &dto.BulkResult{Items: make([]dto.BulkItemResult, 0, len(req.CustomerIDs))}
	for _, customerID := range req.CustomerIDs {
		err := s.applyAnnualFee(ctx, actor, customerID, req)
		if err != nil {
			result.Failed++
			result.Items = append(result.Items, dto.BulkItemResult{ID: customerID, OK: false, Error: err.Error()})
			logger.Warn("Annual fee failed for customer", slog.String("customer_id", customerID), slog.String("error", err.Error()))
			continue
		}
		result.Succeeded++
		result.Items = append(result.Items, dto.BulkItemResult{ID: customerID, OK: true})
	}

	logger.Info("Annual fee run finished", slog.Int("succeeded", result.Succeeded), slog.Int("failed", result.Failed))
	return result, nil
}

func (s *feeService) applyAnnualFee(ctx context.Context, actor domain.Actor, customerID string, req dto.BulkAnnualFeeRequest) error {
	customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return err
	}
	if !customer.IsActive {
		return fmt.Errorf("%w: customer %s is inactive", apperrors.ErrConflict, customerID)
	}
	account, err := findPrimaryAccount(ctx, s.accountRepo, customerID)
	if err != nil {
		return err
	}
	_, err = s.CreateFee(ctx, actor, dto.CreateFeeRequest{
		CustomerID:  customerID,
		AccountID:   account.AccountID,
		Description: req.Description,
		Amount:      req.Amount,
	})
	return err
}

// GetFeeByID retrieves one fee.
func (s *feeService) GetFeeByID(ctx context.Context, feeID string) (*domain.Fee, error) {
	return s.feeRepo.FindFeeByID(ctx, feeID)
}

// ListFeesByCustomer retrieves a customer's fees.
func (s *feeService) ListFeesByCustomer(ctx context.Context, customerID string, limit int, offset int) ([]domain.Fee, error) {
	fees, err := s.feeRepo.ListFeesByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if fees == nil {
		fees = []domain.Fee{}
	}
	return fees, nil
}
