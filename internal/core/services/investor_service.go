package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portsrepo "github.com/sajhapunji/broker-backoffice/internal/core/ports/repositories"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

// investorService manages capital pools. Capital moves between the
// available and invested buckets under a row lock; the pool invariant
// (available + invested <= total) is re-checked after every mutation.
type investorService struct {
	investorRepo   portsrepo.InvestorRepositoryFacade
	investmentRepo portsrepo.InvestmentRepositoryFacade
	accountRepo    portsrepo.AccountRepositoryFacade
	ledgerSvc      portssvc.LedgerTxSvc
	notifier       portssvc.Notifier
	txm            portsrepo.TxManager
}

// NewInvestorService creates a new investor service.
func NewInvestorService(
	investorRepo portsrepo.InvestorRepositoryFacade,
	investmentRepo portsrepo.InvestmentRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	ledgerSvc portssvc.LedgerTxSvc,
	notifier portssvc.Notifier,
	txm portsrepo.TxManager,
) portssvc.InvestorSvcFacade {
	return &investorService{
		investorRepo:   investorRepo,
		investmentRepo: investmentRepo,
		accountRepo:    accountRepo,
		ledgerSvc:      ledgerSvc,
		notifier:       notifier,
		txm:            txm,
	}
}

var _ portssvc.InvestorSvcFacade = (*investorService)(nil)

// CreateInvestor registers a capital partner and opens their escrow account
// in a single unit of work.
func (s *investorService) CreateInvestor(ctx context.Context, actor domain.Actor, req dto.CreateInvestorRequest) (*domain.Investor, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actor.UserID,
		LastUpdatedAt: now,
		LastUpdatedBy: actor.UserID,
	}

	account := domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: req.AccountNumber,
		Kind:          domain.AccountInvestor,
		Balance:       decimal.Zero,
		BlockedAmount: decimal.Zero,
		Status:        domain.AccountActive,
		AuditFields:   audit,
	}
	investor := domain.Investor{
		InvestorID:       uuid.NewString(),
		Name:             req.Name,
		Email:            req.Email,
		AccountID:        account.AccountID,
		TotalCapital:     decimal.Zero,
		AvailableCapital: decimal.Zero,
		InvestedAmount:   decimal.Zero,
		TotalProfit:      decimal.Zero,
		IsActive:         true,
		AuditFields:      audit,
	}

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	if err := s.accountRepo.SaveAccountInTx(ctx, tx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save escrow account", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		}
		return nil, err
	}
	if err := s.investorRepo.SaveInvestorInTx(ctx, tx, investor); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save investor", slog.String("error", err.Error()), slog.String("investor_id", investor.InvestorID))
		}
		return nil, err
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Investor registered",
		slog.String("investor_id", investor.InvestorID),
		slog.String("account_id", account.AccountID),
	)
	return &investor, nil
}

// GetInvestorByID retrieves one investor.
func (s *investorService) GetInvestorByID(ctx context.Context, investorID string) (*domain.Investor, error) {
	return s.investorRepo.FindInvestorByID(ctx, investorID)
}

// ListInvestors retrieves a paginated list of investors.
func (s *investorService) ListInvestors(ctx context.Context, limit int, offset int) ([]domain.Investor, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	investors, err := s.investorRepo.ListInvestors(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list investors", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}
	if investors == nil {
		return []domain.Investor{}, nil
	}
	return investors, nil
}

// AddCapital tops up the pool and credits the escrow account in one unit of
// work.
func (s *investorService) AddCapital(ctx context.Context, actor domain.Actor, investorID string, req dto.AddCapitalRequest) (*domain.Investor, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: capital amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	investor, err := s.investorRepo.FindInvestorForUpdate(ctx, tx, investorID)
	if err != nil {
		return nil, err
	}
	if !investor.IsActive {
		return nil, fmt.Errorf("%w: investor %s is inactive", apperrors.ErrConflict, investorID)
	}

	account, err := s.accountRepo.FindAccountForUpdate(ctx, tx, investor.AccountID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledgerSvc.CreditInTx(ctx, tx, actor.UserID, portssvc.LedgerEntry{
		Account: account,
		Amount:  req.Amount,
		Type:    domain.TxnDeposit,
		Notes:   "Capital contribution",
	}); err != nil {
		return nil, err
	}

	investor.TotalCapital = investor.TotalCapital.Add(req.Amount)
	investor.AvailableCapital = investor.AvailableCapital.Add(req.Amount)
	investor.LastUpdatedAt = time.Now()
	investor.LastUpdatedBy = actor.UserID
	if err := s.investorRepo.UpdateCapitalInTx(ctx, tx, *investor); err != nil {
		return nil, err
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Capital added",
		slog.String("investor_id", investorID),
		slog.String("amount", req.Amount.String()),
		slog.String("available_capital", investor.AvailableCapital.String()),
	)

	s.notifyCapitalAdded(ctx, investor, req.Amount)
	return investor, nil
}

// notifyCapitalAdded confirms the contribution after commit. Delivery
// failures are logged, never propagated.
func (s *investorService) notifyCapitalAdded(ctx context.Context, investor *domain.Investor, amount decimal.Decimal) {
	if s.notifier == nil {
		return
	}
	logger := middleware.GetLoggerFromCtx(ctx)
	n := portssvc.Notification{
		RecipientID: investor.InvestorID,
		Subject:     "Capital contribution received",
		Body:        fmt.Sprintf("Contribution of %s credited to escrow. Available capital is now %s.", amount, investor.AvailableCapital),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		logger.Warn("Failed to deliver capital notification",
			slog.String("investor_id", investor.InvestorID),
			slog.String("error", err.Error()),
		)
	}
}

// ReserveForInvestment moves capital from available to invested and creates
// the Investment in its own transaction.
func (s *investorService) ReserveForInvestment(ctx context.Context, actor domain.Actor, req dto.ReserveInvestmentRequest) (*domain.Investment, error) {
	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	investment, err := s.ReserveForInvestmentInTx(ctx, tx, actor.UserID, req)
	if err != nil {
		return nil, err
	}
	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return investment, nil
}

// ReserveForInvestmentInTx performs the reservation inside a caller owned
// transaction.
func (s *investorService) ReserveForInvestmentInTx(ctx context.Context, tx pgx.Tx, actorID string, req dto.ReserveInvestmentRequest) (*domain.Investment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Shares <= 0 {
		return nil, fmt.Errorf("%w: shares must be positive, got %d", apperrors.ErrValidation, req.Shares)
	}
	if !req.CostPerShare.IsPositive() {
		return nil, fmt.Errorf("%w: cost per share must be positive, got %s", apperrors.ErrValidation, req.CostPerShare)
	}

	investor, err := s.investorRepo.FindInvestorForUpdate(ctx, tx, req.InvestorID)
	if err != nil {
		return nil, err
	}
	if !investor.IsActive {
		return nil, fmt.Errorf("%w: investor %s is inactive", apperrors.ErrConflict, req.InvestorID)
	}

	principal := req.CostPerShare.Mul(decimal.NewFromInt(req.Shares)).Round(domain.CurrencyPrecision)
	if principal.GreaterThan(investor.AvailableCapital) {
		return nil, fmt.Errorf("%w: investor %s has %s available, %s required",
			apperrors.ErrInsufficientCapital, req.InvestorID, investor.AvailableCapital, principal)
	}

	now := time.Now()
	investor.AvailableCapital = investor.AvailableCapital.Sub(principal)
	investor.InvestedAmount = investor.InvestedAmount.Add(principal)
	investor.LastUpdatedAt = now
	investor.LastUpdatedBy = actorID
	if !investor.CheckInvariant() {
		return nil, fmt.Errorf("%w: capital pool invariant violated for investor %s", apperrors.ErrInternal, req.InvestorID)
	}
	if err := s.investorRepo.UpdateCapitalInTx(ctx, tx, *investor); err != nil {
		return nil, err
	}

	investment := domain.Investment{
		InvestmentID:       uuid.NewString(),
		InvestorID:         req.InvestorID,
		CustomerID:         req.CustomerID,
		ApplicationID:      req.ApplicationID,
		Symbol:             req.Symbol,
		PrincipalAmount:    principal,
		SharesAllocated:    req.Shares,
		CostPerShare:       req.CostPerShare,
		SharesHeld:         req.Shares,
		CurrentMarketPrice: req.CostPerShare,
		SoldAmount:         decimal.Zero,
		ProfitEarned:       decimal.Zero,
		FeesPaid:           decimal.Zero,
		Status:             domain.InvestmentActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if err := s.investmentRepo.SaveInvestmentInTx(ctx, tx, investment); err != nil {
		return nil, err
	}

	logger.Info("Capital reserved for investment",
		slog.String("investor_id", req.InvestorID),
		slog.String("investment_id", investment.InvestmentID),
		slog.String("principal", principal.String()),
	)
	return &investment, nil
}

// SettleSaleInTx applies one distribution's outcome: the principal portion
// moves from invested back to available, and the net profit share grows
// total, available and lifetime profit together so the pool identity holds.
func (s *investorService) SettleSaleInTx(ctx context.Context, tx pgx.Tx, actorID string, investment *domain.Investment, sharesSold int64, salePrice decimal.Decimal, breakdown domain.DistributionBreakdown) error {
	investor, err := s.investorRepo.FindInvestorForUpdate(ctx, tx, investment.InvestorID)
	if err != nil {
		return err
	}

	now := time.Now()
	investor.InvestedAmount = investor.InvestedAmount.Sub(breakdown.PrincipalReturned)
	investor.AvailableCapital = investor.AvailableCapital.Add(breakdown.PrincipalReturned).Add(breakdown.NetInvestorShare)
	investor.TotalCapital = investor.TotalCapital.Add(breakdown.NetInvestorShare)
	investor.TotalProfit = investor.TotalProfit.Add(breakdown.NetInvestorShare)
	investor.LastUpdatedAt = now
	investor.LastUpdatedBy = actorID
	if !investor.CheckInvariant() {
		return fmt.Errorf("%w: capital pool invariant violated for investor %s", apperrors.ErrInternal, investor.InvestorID)
	}
	if err := s.investorRepo.UpdateCapitalInTx(ctx, tx, *investor); err != nil {
		return err
	}

	// The investor-paid fee is whatever separates the gross share from the
	// net one; the sweep policy charges the customer instead, leaving the
	// two equal.
	investorFee := breakdown.InvestorShareGross.Sub(breakdown.NetInvestorShare)

	investment.SharesHeld -= sharesSold
	investment.SoldAmount = investment.SoldAmount.Add(breakdown.SaleAmount)
	investment.ProfitEarned = investment.ProfitEarned.Add(breakdown.NetInvestorShare)
	investment.FeesPaid = investment.FeesPaid.Add(investorFee)
	investment.CurrentMarketPrice = salePrice
	investment.RecomputeStatus()
	investment.LastUpdatedAt = now
	investment.LastUpdatedBy = actorID
	return s.investmentRepo.UpdateRealizationInTx(ctx, tx, *investment)
}

// GetInvestmentByID retrieves one funded stake.
func (s *investorService) GetInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	return s.investmentRepo.FindInvestmentByID(ctx, investmentID)
}

// ListInvestmentsByInvestor retrieves an investor's stakes.
func (s *investorService) ListInvestmentsByInvestor(ctx context.Context, investorID string, limit int, offset int) ([]domain.Investment, error) {
	investments, err := s.investmentRepo.ListInvestmentsByInvestor(ctx, investorID, limit, offset)
	if err != nil {
		return nil, err
	}
	if investments == nil {
		investments = []domain.Investment{}
	}
	return investments, nil
}
