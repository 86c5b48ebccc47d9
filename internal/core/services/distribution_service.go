package services

import (
	"context"
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

// distributionService settles share sales. One distribution is one
// database transaction: the split is computed under row locks, the
// customer, investor escrow and office accounts are moved, swept fees are
// marked paid, the investor pool and investment are updated, and the
// immutable distribution row is written. Account locks are taken in
// ascending account id order.
type distributionService struct {
	investmentRepo   portsrepo.InvestmentRepositoryFacade
	investorRepo     portsrepo.InvestorRepositoryFacade
	accountRepo      portsrepo.AccountRepositoryFacade
	feeRepo          portsrepo.FeeRepositoryFacade
	distributionRepo portsrepo.DistributionRepositoryFacade
	ledgerSvc        portssvc.LedgerTxSvc
	investorSvc      portssvc.InvestorSvcFacade
	notifier         portssvc.Notifier
	txm              portsrepo.TxManager
}

// NewDistributionService creates a new distribution service.
func NewDistributionService(
	investmentRepo portsrepo.InvestmentRepositoryFacade,
	investorRepo portsrepo.InvestorRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	feeRepo portsrepo.FeeRepositoryFacade,
	distributionRepo portsrepo.DistributionRepositoryFacade,
	ledgerSvc portssvc.LedgerTxSvc,
	investorSvc portssvc.InvestorSvcFacade,
	notifier portssvc.Notifier,
	txm portsrepo.TxManager,
) portssvc.DistributionSvcFacade {
	return &distributionService{
		investmentRepo:   investmentRepo,
		investorRepo:     investorRepo,
		accountRepo:      accountRepo,
		feeRepo:          feeRepo,
		distributionRepo: distributionRepo,
		ledgerSvc:        ledgerSvc,
		investorSvc:      investorSvc,
		notifier:         notifier,
		txm:              txm,
	}
}

var _ portssvc.DistributionSvcFacade = (*distributionService)(nil)

// moveShare credits positive amounts and debits negative ones (loss
// absorption on a below-principal sale). Zero amounts write nothing.
func (s *distributionService) moveShare(ctx context.Context, tx pgx.Tx, actorID string, entry portssvc.LedgerEntry) error {
	if entry.Amount.IsZero() {
		return nil
	}
	if entry.Amount.IsNegative() {
		entry.Amount = entry.Amount.Neg()
		_, err := s.ledgerSvc.DebitInTx(ctx, tx, actorID, entry)
		return err
	}
	_, err := s.ledgerSvc.CreditInTx(ctx, tx, actorID, entry)
	return err
}

// DistributeProfit settles a sale of shares from an investment.
func (s *distributionService) DistributeProfit(ctx context.Context, actor domain.Actor, req dto.DistributeProfitRequest) (*domain.ProfitDistribution, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	investment, err := s.investmentRepo.FindInvestmentForUpdate(ctx, tx, req.InvestmentID)
	if err != nil {
		return nil, err
	}
	if investment.Status == domain.InvestmentFullyRealized {
		return nil, fmt.Errorf("%w: investment %s is fully realized", apperrors.ErrInvalidStateTransition, req.InvestmentID)
	}

	investor, err := s.investorRepo.FindInvestorByID(ctx, investment.InvestorID)
	if err != nil {
		return nil, err
	}
	customerAccount, err := findPrimaryAccount(ctx, s.accountRepo, investment.CustomerID)
	if err != nil {
		return nil, err
	}
	officeAccount, err := s.accountRepo.FindOfficeAccount(ctx)
	if err != nil {
		return nil, err
	}

	// Lock all three accounts up front, in ascending id order.
	locked, err := s.accountRepo.FindAccountsForUpdate(ctx, tx, []string{
		customerAccount.AccountID, investor.AccountID, officeAccount.AccountID,
	})
	if err != nil {
		return nil, err
	}
	custAcc := locked[customerAccount.AccountID]
	invAcc := locked[investor.AccountID]
	offAcc := locked[officeAccount.AccountID]

	// The sweep policy settles pending fees out of the customer share;
	// lock the fee rows before computing so a concurrent sweep cannot
	// double-pay them.
	var pendingFees []domain.Fee
	pendingTotal := decimal.Zero
	if req.PolicyKind == domain.FeePolicyPendingSweep {
		pendingFees, err = s.feeRepo.ListPendingFeesForUpdate(ctx, tx, investment.CustomerID)
		if err != nil {
			return nil, err
		}
		for _, fee := range pendingFees {
			pendingTotal = pendingTotal.Add(fee.Amount)
		}
	}

	breakdown, err := domain.ComputeDistribution(*investment, req.SharesSold, req.SalePricePerShare, req.Policy(), pendingTotal)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := time.Now()
	distributionID := uuid.NewString()
	saleNote := fmt.Sprintf("Sale of %d %s shares", req.SharesSold, investment.Symbol)

	// Customer: principal comes back first, then their profit share.
	if err := s.moveShare(ctx, tx, actor.UserID, portssvc.LedgerEntry{
		Account:       &custAcc,
		Amount:        breakdown.PrincipalReturned,
		Type:          domain.TxnPrincipalReturn,
		ReferenceType: domain.RefDistribution,
		ReferenceID:   distributionID,
		Notes:         saleNote,
	}); err != nil {
		return nil, err
	}
	if err := s.moveShare(ctx, tx, actor.UserID, portssvc.LedgerEntry{
		Account:       &custAcc,
		Amount:        breakdown.CustomerShare,
		Type:          domain.TxnProfitDistribution,
		ReferenceType: domain.RefDistribution,
		ReferenceID:   distributionID,
		Notes:         saleNote,
	}); err != nil {
		return nil, err
	}

	// Investor escrow: net profit share.
	if err := s.moveShare(ctx, tx, actor.UserID, portssvc.LedgerEntry{
		Account:       &invAcc,
		Amount:        breakdown.NetInvestorShare,
		Type:          domain.TxnProfitDistribution,
		ReferenceType: domain.RefDistribution,
		ReferenceID:   distributionID,
		Notes:         saleNote,
	}); err != nil {
		return nil, err
	}

	// Office: deducted fees under either policy.
	if err := s.moveShare(ctx, tx, actor.UserID, portssvc.LedgerEntry{
		Account:       &offAcc,
		Amount:        breakdown.FeesDeducted,
		Type:          domain.TxnFeeDeduction,
		ReferenceType: domain.RefDistribution,
		ReferenceID:   distributionID,
		Notes:         saleNote,
	}); err != nil {
		return nil, err
	}

	// Mark swept fees paid oldest first while they fit entirely within the
	// deducted amount; a partially covered fee stays pending.
	if req.PolicyKind == domain.FeePolicyPendingSweep {
		remaining := breakdown.FeesDeducted
		for _, fee := range pendingFees {
			if fee.Amount.GreaterThan(remaining) {
				break
			}
			if err := s.feeRepo.MarkFeePaidInTx(ctx, tx, fee.FeeID, distributionID, actor.UserID); err != nil {
				return nil, err
			}
			remaining = remaining.Sub(fee.Amount)
		}
	}

	if err := s.investorSvc.SettleSaleInTx(ctx, tx, actor.UserID, investment, req.SharesSold, req.SalePricePerShare, breakdown); err != nil {
		return nil, err
	}

	dist := domain.ProfitDistribution{
		DistributionID:    distributionID,
		InvestmentID:      investment.InvestmentID,
		InvestorID:        investment.InvestorID,
		CustomerID:        investment.CustomerID,
		SharesSold:        req.SharesSold,
		SalePricePerShare: req.SalePricePerShare,
		SaleAmount:        breakdown.SaleAmount,
		PrincipalReturned: breakdown.PrincipalReturned,
		TotalProfit:       breakdown.TotalProfit,
		InvestorShare:     breakdown.NetInvestorShare,
		CustomerShare:     breakdown.CustomerShare,
		FeesDeducted:      breakdown.FeesDeducted,
		PolicyKind:        req.PolicyKind,
		Status:            domain.DistributionSettled,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.distributionRepo.InsertDistributionInTx(ctx, tx, dist); err != nil {
		return nil, err
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Distribution settled",
		slog.String("distribution_id", distributionID),
		slog.String("investment_id", investment.InvestmentID),
		slog.String("sale_amount", breakdown.SaleAmount.String()),
		slog.String("investor_share", breakdown.NetInvestorShare.String()),
		slog.String("customer_share", breakdown.CustomerShare.String()),
		slog.String("fees_deducted", breakdown.FeesDeducted.String()),
	)
	s.notifyDistribution(ctx, &dist)
	return &dist, nil
}

// notifyDistribution delivers the outcome after commit. Delivery failures
// are logged, never propagated.
func (s *distributionService) notifyDistribution(ctx context.Context, dist *domain.ProfitDistribution) {
	if s.notifier == nil {
		return
	}
	logger := middleware.GetLoggerFromCtx(ctx)
	notifications := []portssvc.Notification{
		{
			RecipientID: dist.CustomerID,
			Subject:     "Share sale settled",
			Body:        fmt.Sprintf("Sale of %d shares settled: principal %s and profit share %s credited.", dist.SharesSold, dist.PrincipalReturned, dist.CustomerShare),
		},
		{
			RecipientID: dist.InvestorID,
			Subject:     "Share sale settled",
			Body:        fmt.Sprintf("Sale of %d shares settled: profit share %s credited to escrow.", dist.SharesSold, dist.InvestorShare),
		},
	}
	for _, n := range notifications {
		if err := s.notifier.Notify(ctx, n); err != nil {
			logger.Warn("Failed to deliver distribution notification",
				slog.String("distribution_id", dist.DistributionID),
				slog.String("recipient_id", n.RecipientID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// GetDistributionByID retrieves one settled distribution.
func (s *distributionService) GetDistributionByID(ctx context.Context, distributionID string) (*domain.ProfitDistribution, error) {
	return s.distributionRepo.FindDistributionByID(ctx, distributionID)
}

// ListDistributionsByInvestment retrieves an investment's distributions.
func (s *distributionService) ListDistributionsByInvestment(ctx context.Context, investmentID string, limit int, offset int) ([]domain.ProfitDistribution, error) {
	dists, err := s.distributionRepo.ListDistributionsByInvestment(ctx, investmentID, limit, offset)
	if err != nil {
		return nil, err
	}
	if dists == nil {
		dists = []domain.ProfitDistribution{}
	}
	return dists, nil
}
