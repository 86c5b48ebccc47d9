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

type accountService struct {
	accountRepo  portsrepo.AccountRepositoryFacade
	customerRepo portsrepo.CustomerRepositoryFacade
	approvalSvc  portssvc.ApprovalSvcFacade
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, customerRepo portsrepo.CustomerRepositoryFacade, approvalSvc portssvc.ApprovalSvcFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
		approvalSvc:  approvalSvc,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// applyAccountChanges merges a change-set into the account. Shared by the
// direct update path and approval replay.
func applyAccountChanges(account *domain.Account, ch domain.AccountChanges) {
	if ch.AccountNumber != nil {
		account.AccountNumber = *ch.AccountNumber
	}
	if ch.Status != nil {
		account.Status = *ch.Status
	}
	if ch.IsPrimary != nil {
		account.IsPrimary = *ch.IsPrimary
	}
}

// CreateAccount opens an additional account for an existing customer.
func (s *accountService) CreateAccount(ctx context.Context, actor domain.Actor, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	customer, err := s.customerRepo.FindCustomerByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, fmt.Errorf("%w: customer %s is inactive", apperrors.ErrConflict, customer.CustomerID)
	}

	now := time.Now()
	account := domain.Account{
		AccountID:     uuid.NewString(),
		CustomerID:    req.CustomerID,
		AccountNumber: req.AccountNumber,
		Kind:          domain.AccountCustomer,
		Balance:       decimal.Zero,
		BlockedAmount: decimal.Zero,
		Status:        domain.AccountActive,
		IsPrimary:     req.IsPrimary,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		}
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("customer_id", req.CustomerID))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// ListAccountsByCustomer retrieves all accounts owned by a customer.
func (s *accountService) ListAccountsByCustomer(ctx context.Context, customerID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// ListAccounts retrieves a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// UpdateAccount changes non-monetary account fields. Maker changes are
// diverted into a pending modification request.
func (s *accountService) UpdateAccount(ctx context.Context, actor domain.Actor, accountID string, req dto.UpdateAccountRequest) (*domain.Account, *domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	changes := domain.AccountChanges{
		AccountNumber: req.AccountNumber,
		Status:        req.Status,
		IsPrimary:     req.IsPrimary,
	}

	if actor.Role == domain.RoleMaker {
		pending, err := s.approvalSvc.SubmitRequest(ctx, actor, domain.GovernedAccount, accountID, domain.ChangeUpdate, changes)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Account update diverted to approval", slog.String("account_id", accountID), slog.String("request_id", pending.RequestID))
		return nil, pending, nil
	}

	applyAccountChanges(account, changes)
	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = actor.UserID

	if err := s.accountRepo.UpdateAccountDetails(ctx, *account); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, nil, err
	}

	logger.Info("Account updated", slog.String("account_id", accountID))
	return account, nil, nil
}

// CloseAccount retires an account that holds no funds. Maker requests are
// diverted; the row stays for its transaction history.
func (s *accountService) CloseAccount(ctx context.Context, actor domain.Actor, accountID string) (*domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == domain.AccountClosed {
		return nil, fmt.Errorf("%w: account %s is already closed", apperrors.ErrConflict, accountID)
	}
	if !account.Balance.IsZero() || !account.BlockedAmount.IsZero() {
		return nil, fmt.Errorf("%w: account %s still holds funds", apperrors.ErrConflict, accountID)
	}

	if actor.Role == domain.RoleMaker {
		pending, err := s.approvalSvc.SubmitRequest(ctx, actor, domain.GovernedAccount, accountID, domain.ChangeDelete, nil)
		if err != nil {
			return nil, err
		}
		logger.Info("Account closure diverted to approval", slog.String("account_id", accountID), slog.String("request_id", pending.RequestID))
		return pending, nil
	}

	account.Status = domain.AccountClosed
	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = actor.UserID

	if err := s.accountRepo.UpdateAccountDetails(ctx, *account); err != nil {
		logger.Error("Failed to close account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	logger.Info("Account closed", slog.String("account_id", accountID))
	return nil, nil
}
