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

// ipoService drives applications through PENDING -> VERIFIED ->
// ALLOTTED/REJECTED, keeping the funding account's blocked amount in step
// with the application state at every transition.
type ipoService struct {
	ipoRepo      portsrepo.IPORepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	customerRepo portsrepo.CustomerRepositoryFacade
	ledgerSvc    portssvc.LedgerTxSvc
	investorSvc  portssvc.InvestorSvcFacade
	portfolioSvc portssvc.PortfolioSvcFacade
	approvalSvc  portssvc.ApprovalSvcFacade
	notifier     portssvc.Notifier
	txm          portsrepo.TxManager
}

// NewIPOService creates a new IPO application service.
func NewIPOService(
	ipoRepo portsrepo.IPORepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	customerRepo portsrepo.CustomerRepositoryFacade,
	ledgerSvc portssvc.LedgerTxSvc,
	investorSvc portssvc.InvestorSvcFacade,
	portfolioSvc portssvc.PortfolioSvcFacade,
	approvalSvc portssvc.ApprovalSvcFacade,
	notifier portssvc.Notifier,
	txm portsrepo.TxManager,
) portssvc.IPOSvcFacade {
	return &ipoService{
		ipoRepo:      ipoRepo,
		accountRepo:  accountRepo,
		customerRepo: customerRepo,
		ledgerSvc:    ledgerSvc,
		investorSvc:  investorSvc,
		portfolioSvc: portfolioSvc,
		approvalSvc:  approvalSvc,
		notifier:     notifier,
		txm:          txm,
	}
}

var _ portssvc.IPOSvcFacade = (*ipoService)(nil)

// CreateApplication records a pending subscription. No funds move until
// verification.
func (s *ipoService) CreateApplication(ctx context.Context, actor domain.Actor, req dto.CreateIPOApplicationRequest) (*domain.IPOApplication, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.PricePerShare.IsPositive() {
		return nil, fmt.Errorf("%w: price per share must be positive, got %s", apperrors.ErrValidation, req.PricePerShare)
	}

	customer, err := s.customerRepo.FindCustomerByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, fmt.Errorf("%w: customer %s is inactive", apperrors.ErrConflict, customer.CustomerID)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.CustomerID != req.CustomerID {
		return nil, fmt.Errorf("%w: account %s does not belong to customer %s", apperrors.ErrValidation, req.AccountID, req.CustomerID)
	}
	if account.Status != domain.AccountActive {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountInactive, req.AccountID)
	}

	now := time.Now()
	app := domain.IPOApplication{
		ApplicationID:   uuid.NewString(),
		CustomerID:      req.CustomerID,
		AccountID:       req.AccountID,
		Symbol:          req.Symbol,
		CompanyName:     req.CompanyName,
		Quantity:        req.Quantity,
		PricePerShare:   req.PricePerShare,
		TotalAmount:     req.PricePerShare.Mul(decimal.NewFromInt(req.Quantity)).Round(domain.CurrencyPrecision),
		Status:          domain.IPOPending,
		AllotmentStatus: domain.AllotmentNone,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	if err := s.ipoRepo.SaveApplication(ctx, app); err != nil {
		logger.Error("Failed to save application", slog.String("error", err.Error()), slog.String("application_id", app.ApplicationID))
		return nil, err
	}

	logger.Info("IPO application created",
		slog.String("application_id", app.ApplicationID),
		slog.String("symbol", app.Symbol),
		slog.String("total_amount", app.TotalAmount.String()),
	)
	return &app, nil
}

// VerifyApplication moves PENDING to VERIFIED and blocks the subscription
// amount on the funding account.
func (s *ipoService) VerifyApplication(ctx context.Context, actor domain.Actor, applicationID string) (*domain.IPOApplication, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	app, err := s.ipoRepo.FindApplicationForUpdate(ctx, tx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.IPOPending {
		return nil, fmt.Errorf("%w: cannot verify application %s in status %s", apperrors.ErrInvalidStateTransition, applicationID, app.Status)
	}

	account, err := s.accountRepo.FindAccountForUpdate(ctx, tx, app.AccountID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledgerSvc.BlockFundsInTx(ctx, tx, actor.UserID, portssvc.LedgerEntry{
		Account:       account,
		Amount:        app.TotalAmount,
		Type:          domain.TxnFundsBlock,
		ReferenceType: domain.RefIPOApplication,
		ReferenceID:   app.ApplicationID,
		Notes:         fmt.Sprintf("IPO subscription %s", app.Symbol),
	}); err != nil {
		return nil, err
	}

	app.Status = domain.IPOVerified
	app.LastUpdatedAt = time.Now()
	app.LastUpdatedBy = actor.UserID
	if err := s.ipoRepo.UpdateApplicationInTx(ctx, tx, *app); err != nil {
		return nil, err
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("IPO application verified",
		slog.String("application_id", applicationID),
		slog.String("blocked_amount", app.TotalAmount.String()),
	)
	return app, nil
}

// RejectApplication moves an unresolved application to REJECTED. A block
// taken at verification is released in the same transaction.
func (s *ipoService) RejectApplication(ctx context.Context, actor domain.Actor, applicationID string, reason string) (*domain.IPOApplication, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	app, err := s.ipoRepo.FindApplicationForUpdate(ctx, tx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.IsResolved() {
		return nil, fmt.Errorf("%w: application %s is already %s", apperrors.ErrInvalidStateTransition, applicationID, app.Status)
	}

	if app.Status == domain.IPOVerified {
		account, err := s.accountRepo.FindAccountForUpdate(ctx, tx, app.AccountID)
		if err != nil {
			return nil, err
		}
		if _, err := s.ledgerSvc.ReleaseFundsInTx(ctx, tx, actor.UserID, portssvc.LedgerEntry{
			Account:       account,
			Amount:        app.TotalAmount,
			Type:          domain.TxnIPORelease,
			ReferenceType: domain.RefIPOApplication,
			ReferenceID:   app.ApplicationID,
			Notes:         fmt.Sprintf("IPO application rejected: %s", reason),
		}); err != nil {
			return nil, err
		}
	}

	app.Status = domain.IPORejected
	app.LastUpdatedAt = time.Now()
	app.LastUpdatedBy = actor.UserID
	if err := s.ipoRepo.UpdateApplicationInTx(ctx, tx, *app); err != nil {
		return nil, err
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("IPO application rejected", slog.String("application_id", applicationID), slog.String("reason", reason))
	return app, nil
}

// AllotApplication records the draw outcome for a VERIFIED application.
func (s *ipoService) AllotApplication(ctx context.Context, actor domain.Actor, applicationID string, req dto.AllotApplicationRequest) (*domain.IPOApplication, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	app, err := s.ipoRepo.FindApplicationForUpdate(ctx, tx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.IPOVerified {
		return nil, fmt.Errorf("%w: cannot allot application %s in status %s", apperrors.ErrInvalidStateTransition, applicationID, app.Status)
	}

	account, err := s.accountRepo.FindAccountForUpdate(ctx, tx, app.AccountID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	switch req.Outcome {
	case dto.OutcomeNotAllotted:
		if _, err := s.ledgerSvc.ReleaseFundsInTx(ctx, tx, actor.UserID, portssvc.LedgerEntry{
			Account:       account,
			Amount:        app.TotalAmount,
			Type:          domain.TxnIPORelease,
			ReferenceType: domain.RefIPOApplication,
			ReferenceID:   app.ApplicationID,
			Notes:         fmt.Sprintf("IPO %s not allotted, full refund", app.Symbol),
		}); err != nil {
			return nil, err
		}
		app.AllotmentStatus = domain.AllotmentNotAllotted
		app.AllotmentQuantity = 0

	case dto.OutcomeAllotted:
		if req.AllotmentQuantity <= 0 || req.AllotmentQuantity > app.Quantity {
			return nil, fmt.Errorf("%w: allotment quantity %d out of range 1..%d", apperrors.ErrValidation, req.AllotmentQuantity, app.Quantity)
		}

		allottedAmount := app.PricePerShare.Mul(decimal.NewFromInt(req.AllotmentQuantity)).Round(domain.CurrencyPrecision)
		if _, err := s.ledgerSvc.ConsumeBlockedInTx(ctx, tx, actor.UserID, portssvc.LedgerEntry{
			Account:       account,
			Amount:        allottedAmount,
			Type:          domain.TxnIPOAllotment,
			ReferenceType: domain.RefIPOApplication,
			ReferenceID:   app.ApplicationID,
			Notes:         fmt.Sprintf("IPO %s allotted %d shares", app.Symbol, req.AllotmentQuantity),
		}); err != nil {
			return nil, err
		}

		// Partial allotment: refund the unfilled remainder of the block.
		remainder := app.TotalAmount.Sub(allottedAmount)
		if remainder.IsPositive() {
			if _, err := s.ledgerSvc.ReleaseFundsInTx(ctx, tx, actor.UserID, portssvc.LedgerEntry{
				Account:       account,
				Amount:        remainder,
				Type:          domain.TxnIPORelease,
				ReferenceType: domain.RefIPOApplication,
				ReferenceID:   app.ApplicationID,
				Notes:         fmt.Sprintf("IPO %s partial allotment refund", app.Symbol),
			}); err != nil {
				return nil, err
			}
		}

		if _, err := s.portfolioSvc.AddSharesInTx(ctx, tx, actor.UserID, app.CustomerID, app.Symbol, req.AllotmentQuantity, app.PricePerShare); err != nil {
			return nil, err
		}

		// When an investor funds the allotment, reserve their capital and
		// create the stake in the same unit of work.
		if req.InvestorID != "" {
			if _, err := s.investorSvc.ReserveForInvestmentInTx(ctx, tx, actor.UserID, dto.ReserveInvestmentRequest{
				InvestorID:    req.InvestorID,
				CustomerID:    app.CustomerID,
				ApplicationID: app.ApplicationID,
				Symbol:        app.Symbol,
				Shares:        req.AllotmentQuantity,
				CostPerShare:  app.PricePerShare,
			}); err != nil {
				return nil, err
			}
		}

		app.AllotmentStatus = domain.AllotmentAllotted
		app.AllotmentQuantity = req.AllotmentQuantity

	default:
		return nil, fmt.Errorf("%w: unknown allotment outcome %q", apperrors.ErrValidation, req.Outcome)
	}

	app.Status = domain.IPOAllotted
	app.LastUpdatedAt = now
	app.LastUpdatedBy = actor.UserID
	if err := s.ipoRepo.UpdateApplicationInTx(ctx, tx, *app); err != nil {
		return nil, err
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("IPO application allotted",
		slog.String("application_id", applicationID),
		slog.String("outcome", string(req.Outcome)),
		slog.Int64("allotment_quantity", app.AllotmentQuantity),
	)
	s.notifyAllotment(ctx, app)
	return app, nil
}

// notifyAllotment delivers the outcome to the customer after commit.
// Delivery failures are logged, never propagated.
func (s *ipoService) notifyAllotment(ctx context.Context, app *domain.IPOApplication) {
	if s.notifier == nil {
		return
	}
	body := fmt.Sprintf("Your application for %s was not allotted; blocked funds have been released.", app.Symbol)
	if app.AllotmentStatus == domain.AllotmentAllotted {
		body = fmt.Sprintf("You have been allotted %d shares of %s.", app.AllotmentQuantity, app.Symbol)
	}
	if err := s.notifier.Notify(ctx, portssvc.Notification{
		RecipientID: app.CustomerID,
		Subject:     fmt.Sprintf("IPO allotment result for %s", app.Symbol),
		Body:        body,
	}); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to deliver allotment notification",
			slog.String("application_id", app.ApplicationID),
			slog.String("error", err.Error()),
		)
	}
}

// BulkAllot processes many draw outcomes, one transaction per application.
func (s *ipoService) BulkAllot(ctx context.Context, actor domain.Actor, req dto.BulkAllotmentRequest) (*dto.BulkResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	result := &dto.BulkResult{Items: make([]dto.BulkItemResult, 0, len(req.Items))}
	for _, item := range req.Items {
		_, err := s.AllotApplication(ctx, actor, item.ApplicationID, dto.AllotApplicationRequest{
			Outcome:           item.Outcome,
			AllotmentQuantity: item.AllotmentQuantity,
			InvestorID:        item.InvestorID,
		})
		if err != nil {
			result.Failed++
			result.Items = append(result.Items, dto.BulkItemResult{ID: item.ApplicationID, OK: false, Error: err.Error()})
			logger.Warn("Bulk allotment item failed", slog.String("application_id", item.ApplicationID), slog.String("error", err.Error()))
			continue
		}
		result.Succeeded++
		result.Items = append(result.Items, dto.BulkItemResult{ID: item.ApplicationID, OK: true})
	}

	logger.Info("Bulk allotment finished", slog.Int("succeeded", result.Succeeded), slog.Int("failed", result.Failed))
	return result, nil
}

// applyApplicationChangesInTx merges a governed change-set into the
// application and keeps the funding account's blocked amount in step.
// Shared by the direct update path and approval replay. The application
// row must already be locked.
func applyApplicationChangesInTx(
	ctx context.Context,
	tx pgx.Tx,
	ledgerSvc portssvc.LedgerTxSvc,
	accountRepo portsrepo.AccountRepositoryFacade,
	ipoRepo portsrepo.IPORepositoryFacade,
	actorID string,
	app *domain.IPOApplication,
	ch domain.IPOApplicationChanges,
) error {
	if app.IsResolved() {
		return fmt.Errorf("%w: application %s is already %s", apperrors.ErrInvalidStateTransition, app.ApplicationID, app.Status)
	}

	oldStatus := app.Status
	oldTotal := app.TotalAmount

	if ch.Quantity != nil {
		if *ch.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive, got %d", apperrors.ErrValidation, *ch.Quantity)
		}
		app.Quantity = *ch.Quantity
	}
	if ch.PricePerShare != nil {
		if !ch.PricePerShare.IsPositive() {
			return fmt.Errorf("%w: price per share must be positive, got %s", apperrors.ErrValidation, *ch.PricePerShare)
		}
		app.PricePerShare = *ch.PricePerShare
	}
	app.TotalAmount = app.PricePerShare.Mul(decimal.NewFromInt(app.Quantity)).Round(domain.CurrencyPrecision)

	if ch.Status != nil {
		switch *ch.Status {
		case domain.IPOPending, domain.IPOVerified:
			app.Status = *ch.Status
		default:
			// Terminal transitions go through the reject/allot flows where
			// the full settlement logic lives.
			return fmt.Errorf("%w: status %s cannot be set through an update", apperrors.ErrInvalidStateTransition, *ch.Status)
		}
	}

	// Reconcile the blocked amount with the application's new shape.
	var wantBlocked, haveBlocked decimal.Decimal
	if app.Status == domain.IPOVerified {
		wantBlocked = app.TotalAmount
	}
	if oldStatus == domain.IPOVerified {
		haveBlocked = oldTotal
	}
	diff := wantBlocked.Sub(haveBlocked)

	if !diff.IsZero() {
		account, err := accountRepo.FindAccountForUpdate(ctx, tx, app.AccountID)
		if err != nil {
			return err
		}
		entry := portssvc.LedgerEntry{
			Account:       account,
			ReferenceType: domain.RefIPOApplication,
			ReferenceID:   app.ApplicationID,
			Notes:         "IPO application amended",
		}
		if diff.IsPositive() {
			entry.Amount = diff
			entry.Type = domain.TxnFundsBlock
			if _, err := ledgerSvc.BlockFundsInTx(ctx, tx, actorID, entry); err != nil {
				return err
			}
		} else {
			entry.Amount = diff.Neg()
			entry.Type = domain.TxnIPORelease
			if _, err := ledgerSvc.ReleaseFundsInTx(ctx, tx, actorID, entry); err != nil {
				return err
			}
		}
	}

	app.LastUpdatedAt = time.Now()
	app.LastUpdatedBy = actorID
	return ipoRepo.UpdateApplicationInTx(ctx, tx, *app)
}

// deleteApplicationInTx releases any outstanding block and removes the
// application row. Shared by the direct delete path and approval replay.
func deleteApplicationInTx(
	ctx context.Context,
	tx pgx.Tx,
	ledgerSvc portssvc.LedgerTxSvc,
	accountRepo portsrepo.AccountRepositoryFacade,
	ipoRepo portsrepo.IPORepositoryFacade,
	actorID string,
	app *domain.IPOApplication,
) error {
	if app.IsResolved() {
		return fmt.Errorf("%w: application %s is already %s", apperrors.ErrInvalidStateTransition, app.ApplicationID, app.Status)
	}

	if app.Status == domain.IPOVerified {
		account, err := accountRepo.FindAccountForUpdate(ctx, tx, app.AccountID)
		if err != nil {
			return err
		}
		if _, err := ledgerSvc.ReleaseFundsInTx(ctx, tx, actorID, portssvc.LedgerEntry{
			Account:       account,
			Amount:        app.TotalAmount,
			Type:          domain.TxnIPORelease,
			ReferenceType: domain.RefIPOApplication,
			ReferenceID:   app.ApplicationID,
			Notes:         "IPO application removed",
		}); err != nil {
			return err
		}
	}

	return ipoRepo.DeleteApplicationInTx(ctx, tx, app.ApplicationID)
}

// UpdateApplication changes application fields. Maker changes are diverted
// into a pending modification request.
func (s *ipoService) UpdateApplication(ctx context.Context, actor domain.Actor, applicationID string, req dto.UpdateIPOApplicationRequest) (*domain.IPOApplication, *domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	changes := domain.IPOApplicationChanges{
		Quantity:      req.Quantity,
		PricePerShare: req.PricePerShare,
		Status:        req.Status,
	}

	if actor.Role == domain.RoleMaker {
		if _, err := s.ipoRepo.FindApplicationByID(ctx, applicationID); err != nil {
			return nil, nil, err
		}
		pending, err := s.approvalSvc.SubmitRequest(ctx, actor, domain.GovernedIPOApplication, applicationID, domain.ChangeUpdate, changes)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Application update diverted to approval", slog.String("application_id", applicationID), slog.String("request_id", pending.RequestID))
		return nil, pending, nil
	}

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	app, err := s.ipoRepo.FindApplicationForUpdate(ctx, tx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if err := applyApplicationChangesInTx(ctx, tx, s.ledgerSvc, s.accountRepo, s.ipoRepo, actor.UserID, app, changes); err != nil {
		return nil, nil, err
	}
	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, nil, err
	}

	logger.Info("IPO application updated", slog.String("application_id", applicationID))
	return app, nil, nil
}

// DeleteApplication removes an unresolved application. Maker requests are
// diverted into a pending modification request.
func (s *ipoService) DeleteApplication(ctx context.Context, actor domain.Actor, applicationID string) (*domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actor.Role == domain.RoleMaker {
		if _, err := s.ipoRepo.FindApplicationByID(ctx, applicationID); err != nil {
			return nil, err
		}
		pending, err := s.approvalSvc.SubmitRequest(ctx, actor, domain.GovernedIPOApplication, applicationID, domain.ChangeDelete, nil)
		if err != nil {
			return nil, err
		}
		logger.Info("Application deletion diverted to approval", slog.String("application_id", applicationID), slog.String("request_id", pending.RequestID))
		return pending, nil
	}

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	app, err := s.ipoRepo.FindApplicationForUpdate(ctx, tx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := deleteApplicationInTx(ctx, tx, s.ledgerSvc, s.accountRepo, s.ipoRepo, actor.UserID, app); err != nil {
		return nil, err
	}
	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("IPO application deleted", slog.String("application_id", applicationID))
	return nil, nil
}

// GetApplicationByID retrieves one application.
func (s *ipoService) GetApplicationByID(ctx context.Context, applicationID string) (*domain.IPOApplication, error) {
	return s.ipoRepo.FindApplicationByID(ctx, applicationID)
}

// ListApplicationsByCustomer retrieves a customer's applications.
func (s *ipoService) ListApplicationsByCustomer(ctx context.Context, customerID string, limit int, offset int) ([]domain.IPOApplication, error) {
	apps, err := s.ipoRepo.ListApplicationsByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []domain.IPOApplication{}
	}
	return apps, nil
}

// ListApplicationsByStatus retrieves applications in one verification state.
func (s *ipoService) ListApplicationsByStatus(ctx context.Context, status domain.IPOStatus, limit int, offset int) ([]domain.IPOApplication, error) {
	apps, err := s.ipoRepo.ListApplicationsByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []domain.IPOApplication{}
	}
	return apps, nil
}
