package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portsrepo "github.com/sajhapunji/broker-backoffice/internal/core/ports/repositories"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

type portfolioService struct {
	portfolioRepo portsrepo.PortfolioRepositoryFacade
	approvalSvc   portssvc.ApprovalSvcFacade
	txm           portsrepo.TxManager
}

// NewPortfolioService creates a new portfolio service.
func NewPortfolioService(portfolioRepo portsrepo.PortfolioRepositoryFacade, approvalSvc portssvc.ApprovalSvcFacade, txm portsrepo.TxManager) portssvc.PortfolioSvcFacade {
	return &portfolioService{
		portfolioRepo: portfolioRepo,
		approvalSvc:   approvalSvc,
		txm:           txm,
	}
}

var _ portssvc.PortfolioSvcFacade = (*portfolioService)(nil)

// applyAggregateDeltas adjusts and persists the portfolio totals under the
// row lock, logging when the zero floor fires since that means the
// aggregates had drifted upstream.
func applyAggregateDeltas(ctx context.Context, tx pgx.Tx, portfolioRepo portsrepo.PortfolioRepositoryFacade, actorID string, portfolio *domain.Portfolio, deltas domain.PortfolioDeltas) error {
	if portfolio.ApplyDeltas(deltas) {
		middleware.GetLoggerFromCtx(ctx).Warn("Portfolio aggregate clamped at zero",
			slog.String("portfolio_id", portfolio.PortfolioID),
			slog.String("investment_delta", deltas.Investment.String()),
			slog.String("value_delta", deltas.Value.String()),
		)
	}
	portfolio.LastUpdatedAt = time.Now()
	portfolio.LastUpdatedBy = actorID
	return portfolioRepo.UpdateAggregatesInTx(ctx, tx, *portfolio)
}

// applyHoldingChangesInTx merges a governed change-set into the holding and
// recomputes the portfolio aggregates. Shared by the direct update path and
// approval replay. The holding row must already be locked.
func applyHoldingChangesInTx(ctx context.Context, tx pgx.Tx, portfolioRepo portsrepo.PortfolioRepositoryFacade, actorID string, holding *domain.Holding, ch domain.HoldingChanges) error {
	portfolio, err := portfolioRepo.FindPortfolioForUpdate(ctx, tx, holding.CustomerID)
	if err != nil {
		return err
	}

	newQuantity := holding.Quantity
	if ch.Quantity != nil {
		newQuantity = *ch.Quantity
	}
	newPurchasePrice := holding.PurchasePrice
	if ch.PurchasePrice != nil {
		newPurchasePrice = *ch.PurchasePrice
	}

	deltas := domain.HoldingUpdateDeltas(*holding, newQuantity, newPurchasePrice)

	holding.Quantity = newQuantity
	holding.PurchasePrice = newPurchasePrice
	holding.LastUpdatedAt = time.Now()
	holding.LastUpdatedBy = actorID
	if err := portfolioRepo.UpdateHoldingInTx(ctx, tx, *holding); err != nil {
		return err
	}

	return applyAggregateDeltas(ctx, tx, portfolioRepo, actorID, portfolio, deltas)
}

// deleteHoldingInTx removes the holding and decrements the aggregates.
// Shared by the direct delete path and approval replay.
func deleteHoldingInTx(ctx context.Context, tx pgx.Tx, portfolioRepo portsrepo.PortfolioRepositoryFacade, actorID string, holding *domain.Holding) error {
	portfolio, err := portfolioRepo.FindPortfolioForUpdate(ctx, tx, holding.CustomerID)
	if err != nil {
		return err
	}
	if err := portfolioRepo.DeleteHoldingInTx(ctx, tx, holding.HoldingID); err != nil {
		return err
	}
	return applyAggregateDeltas(ctx, tx, portfolioRepo, actorID, portfolio, domain.HoldingDeleteDeltas(*holding))
}

// GetPortfolio retrieves a customer's portfolio with its holdings.
func (s *portfolioService) GetPortfolio(ctx context.Context, customerID string) (*domain.Portfolio, []domain.Holding, error) {
	portfolio, err := s.portfolioRepo.FindPortfolioByCustomer(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	holdings, err := s.portfolioRepo.ListHoldingsByPortfolio(ctx, portfolio.PortfolioID)
	if err != nil {
		return nil, nil, err
	}
	if holdings == nil {
		holdings = []domain.Holding{}
	}
	return portfolio, holdings, nil
}

// GetHoldingByID retrieves one holding.
func (s *portfolioService) GetHoldingByID(ctx context.Context, holdingID string) (*domain.Holding, error) {
	return s.portfolioRepo.FindHoldingByID(ctx, holdingID)
}

// AddSharesInTx merges allotted shares into the customer's portfolio
// inside a caller owned transaction.
func (s *portfolioService) AddSharesInTx(ctx context.Context, tx pgx.Tx, actorID string, customerID string, symbol string, quantity int64, pricePerShare decimal.Decimal) (*domain.Holding, error) {
	portfolio, err := s.portfolioRepo.FindPortfolioForUpdate(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	holding, err := s.portfolioRepo.UpsertHoldingInTx(ctx, tx, domain.Holding{
		HoldingID:     uuid.NewString(),
		PortfolioID:   portfolio.PortfolioID,
		CustomerID:    customerID,
		Symbol:        symbol,
		Quantity:      quantity,
		PurchasePrice: pricePerShare,
		CurrentPrice:  pricePerShare,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	})
	if err != nil {
		return nil, err
	}

	added := pricePerShare.Mul(decimal.NewFromInt(quantity))
	if err := applyAggregateDeltas(ctx, tx, s.portfolioRepo, actorID, portfolio, domain.PortfolioDeltas{
		Investment: added,
		Value:      added,
	}); err != nil {
		return nil, err
	}
	return holding, nil
}

// UpdateHolding changes a holding's quantity or purchase price. Maker
// changes are diverted into a pending modification request.
func (s *portfolioService) UpdateHolding(ctx context.Context, actor domain.Actor, holdingID string, req dto.UpdateHoldingRequest) (*domain.Holding, *domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	changes := domain.HoldingChanges{
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
	}

	if actor.Role == domain.RoleMaker {
		if _, err := s.portfolioRepo.FindHoldingByID(ctx, holdingID); err != nil {
			return nil, nil, err
		}
		pending, err := s.approvalSvc.SubmitRequest(ctx, actor, domain.GovernedHolding, holdingID, domain.ChangeUpdate, changes)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Holding update diverted to approval", slog.String("holding_id", holdingID), slog.String("request_id", pending.RequestID))
		return nil, pending, nil
	}

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	holding, err := s.portfolioRepo.FindHoldingForUpdate(ctx, tx, holdingID)
	if err != nil {
		return nil, nil, err
	}
	if err := applyHoldingChangesInTx(ctx, tx, s.portfolioRepo, actor.UserID, holding, changes); err != nil {
		return nil, nil, err
	}
	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	logger.Info("Holding updated", slog.String("holding_id", holdingID))
	return holding, nil, nil
}

// DeleteHolding removes a holding. Maker requests are diverted into a
// pending modification request.
func (s *portfolioService) DeleteHolding(ctx context.Context, actor domain.Actor, holdingID string) (*domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actor.Role == domain.RoleMaker {
		if _, err := s.portfolioRepo.FindHoldingByID(ctx, holdingID); err != nil {
			return nil, err
		}
		pending, err := s.approvalSvc.SubmitRequest(ctx, actor, domain.GovernedHolding, holdingID, domain.ChangeDelete, nil)
		if err != nil {
			return nil, err
		}
		logger.Info("Holding deletion diverted to approval", slog.String("holding_id", holdingID), slog.String("request_id", pending.RequestID))
		return pending, nil
	}

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	holding, err := s.portfolioRepo.FindHoldingForUpdate(ctx, tx, holdingID)
	if err != nil {
		return nil, err
	}
	if err := deleteHoldingInTx(ctx, tx, s.portfolioRepo, actor.UserID, holding); err != nil {
		return nil, err
	}
	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Holding deleted", slog.String("holding_id", holdingID))
	return nil, nil
}
