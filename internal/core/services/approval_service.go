package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portsrepo "github.com/sajhapunji/broker-backoffice/internal/core/ports/repositories"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/middleware"
)

// approvalService resolves maker change-sets. Approval decodes the typed
// payload and replays it against the live entity in the same transaction
// that flips the request to its terminal state, so a request can never be
// applied twice or applied without being resolved.
type approvalService struct {
	modRepo       portsrepo.ModificationRepositoryFacade
	accountRepo   portsrepo.AccountRepositoryFacade
	customerRepo  portsrepo.CustomerRepositoryFacade
	ipoRepo       portsrepo.IPORepositoryFacade
	portfolioRepo portsrepo.PortfolioRepositoryFacade
	ledgerSvc     portssvc.LedgerTxSvc
	txm           portsrepo.TxManager
}

// NewApprovalService creates a new approval service.
func NewApprovalService(
	modRepo portsrepo.ModificationRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	customerRepo portsrepo.CustomerRepositoryFacade,
	ipoRepo portsrepo.IPORepositoryFacade,
	portfolioRepo portsrepo.PortfolioRepositoryFacade,
	ledgerSvc portssvc.LedgerTxSvc,
	txm portsrepo.TxManager,
) portssvc.ApprovalSvcFacade {
	return &approvalService{
		modRepo:       modRepo,
		accountRepo:   accountRepo,
		customerRepo:  customerRepo,
		ipoRepo:       ipoRepo,
		portfolioRepo: portfolioRepo,
		ledgerSvc:     ledgerSvc,
		txm:           txm,
	}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// SubmitRequest records a maker's change-set as pending.
func (s *approvalService) SubmitRequest(ctx context.Context, actor domain.Actor, entityType domain.GovernedEntity, entityID string, changeType domain.ChangeType, changes any) (*domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Delete requests carry no field changes, but the payload column
	// requires a JSON document, so they persist an empty object.
	payload := []byte("{}")
	if changes != nil {
		raw, err := domain.EncodeChanges(changes)
		if err != nil {
			return nil, err
		}
		payload = raw
	}

	now := time.Now()
	req := domain.ModificationRequest{
		RequestID:   uuid.NewString(),
		EntityType:  entityType,
		EntityID:    entityID,
		ChangeType:  changeType,
		Changes:     payload,
		Status:      domain.RequestPending,
		RequestedBy: actor.UserID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	if err := s.modRepo.SaveRequest(ctx, req); err != nil {
		logger.Error("Failed to save modification request", slog.String("error", err.Error()), slog.String("request_id", req.RequestID))
		return nil, err
	}

	logger.Info("Modification request submitted",
		slog.String("request_id", req.RequestID),
		slog.String("entity_type", string(entityType)),
		slog.String("entity_id", entityID),
		slog.String("change_type", string(changeType)),
	)
	return &req, nil
}

// GetRequestByID retrieves one modification request.
func (s *approvalService) GetRequestByID(ctx context.Context, requestID string) (*domain.ModificationRequest, error) {
	return s.modRepo.FindRequestByID(ctx, requestID)
}

// ListRequestsByStatus retrieves requests in one state, oldest first.
func (s *approvalService) ListRequestsByStatus(ctx context.Context, status domain.RequestStatus, limit int, offset int) ([]domain.ModificationRequest, error) {
	reqs, err := s.modRepo.ListRequestsByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.ModificationRequest{}
	}
	return reqs, nil
}

// checkReviewer enforces the two-person rule: only checkers and admins
// resolve, and never their own requests.
func checkReviewer(actor domain.Actor, req *domain.ModificationRequest) error {
	if !actor.Role.CanResolveRequests() {
		return fmt.Errorf("%w: role %s cannot resolve modification requests", apperrors.ErrForbidden, actor.Role)
	}
	if actor.UserID == req.RequestedBy {
		return fmt.Errorf("%w: requests cannot be resolved by their requester", apperrors.ErrForbidden)
	}
	if req.IsResolved() {
		return fmt.Errorf("%w: request %s is already %s", apperrors.ErrAlreadyResolved, req.RequestID, req.Status)
	}
	return nil
}

// ApproveRequest applies the change-set and marks the request approved, in
// one transaction.
func (s *approvalService) ApproveRequest(ctx context.Context, actor domain.Actor, requestID string, notes string) (*domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	req, err := s.modRepo.FindRequestForUpdate(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if err := checkReviewer(actor, req); err != nil {
		return nil, err
	}

	if err := s.replay(ctx, tx, actor.UserID, req); err != nil {
		return nil, err
	}

	if err := s.modRepo.ResolveRequestInTx(ctx, tx, requestID, domain.RequestApproved, actor.UserID, notes); err != nil {
		return nil, err
	}
	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = domain.RequestApproved
	req.ReviewedBy = actor.UserID
	req.ReviewNotes = notes
	req.LastUpdatedAt = now
	req.LastUpdatedBy = actor.UserID

	logger.Info("Modification request approved",
		slog.String("request_id", requestID),
		slog.String("entity_type", string(req.EntityType)),
		slog.String("entity_id", req.EntityID),
	)
	return req, nil
}

// RejectRequest marks the request rejected without touching the entity.
func (s *approvalService) RejectRequest(ctx context.Context, actor domain.Actor, requestID string, notes string) (*domain.ModificationRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	req, err := s.modRepo.FindRequestForUpdate(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if err := checkReviewer(actor, req); err != nil {
		return nil, err
	}

	if err := s.modRepo.ResolveRequestInTx(ctx, tx, requestID, domain.RequestRejected, actor.UserID, notes); err != nil {
		return nil, err
	}
	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = domain.RequestRejected
	req.ReviewedBy = actor.UserID
	req.ReviewNotes = notes
	req.LastUpdatedAt = now
	req.LastUpdatedBy = actor.UserID

	logger.Info("Modification request rejected", slog.String("request_id", requestID))
	return req, nil
}

// replay applies one request's change-set to its entity inside tx. The
// typed decode plus this exhaustive switch is what stands between a stored
// payload and a silent wrong-field merge.
func (s *approvalService) replay(ctx context.Context, tx pgx.Tx, actorID string, req *domain.ModificationRequest) error {
	decoded, err := domain.DecodeChanges(*req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	switch req.EntityType {
	case domain.GovernedAccount:
		return s.replayAccount(ctx, tx, actorID, req, decoded.(*domain.AccountChanges))
	case domain.GovernedCustomer:
		return s.replayCustomer(ctx, tx, actorID, req, decoded.(*domain.CustomerChanges))
	case domain.GovernedHolding:
		return s.replayHolding(ctx, tx, actorID, req, decoded.(*domain.HoldingChanges))
	case domain.GovernedIPOApplication:
		return s.replayApplication(ctx, tx, actorID, req, decoded.(*domain.IPOApplicationChanges))
	default:
		return fmt.Errorf("%w: unknown governed entity type %q", apperrors.ErrValidation, req.EntityType)
	}
}

func (s *approvalService) replayAccount(ctx context.Context, tx pgx.Tx, actorID string, req *domain.ModificationRequest, ch *domain.AccountChanges) error {
	account, err := s.accountRepo.FindAccountForUpdate(ctx, tx, req.EntityID)
	if err != nil {
		return err
	}

	switch req.ChangeType {
	case domain.ChangeUpdate:
		applyAccountChanges(account, *ch)
	case domain.ChangeDelete:
		// Closing is the delete: the row stays for its transaction history.
		if !account.Balance.IsZero() || !account.BlockedAmount.IsZero() {
			return fmt.Errorf("%w: account %s still holds funds", apperrors.ErrConflict, account.AccountID)
		}
		account.Status = domain.AccountClosed
	default:
		return fmt.Errorf("%w: unknown change type %q", apperrors.ErrValidation, req.ChangeType)
	}

	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = actorID
	return s.accountRepo.UpdateAccountDetailsInTx(ctx, tx, *account)
}

func (s *approvalService) replayCustomer(ctx context.Context, tx pgx.Tx, actorID string, req *domain.ModificationRequest, ch *domain.CustomerChanges) error {
	customer, err := s.customerRepo.FindCustomerByID(ctx, req.EntityID)
	if err != nil {
		return err
	}

	switch req.ChangeType {
	case domain.ChangeUpdate:
		applyCustomerChanges(customer, *ch)
	case domain.ChangeDelete:
		customer.IsActive = false
	default:
		return fmt.Errorf("%w: unknown change type %q", apperrors.ErrValidation, req.ChangeType)
	}

	customer.LastUpdatedAt = time.Now()
	customer.LastUpdatedBy = actorID
	return s.customerRepo.UpdateCustomerInTx(ctx, tx, *customer)
}

func (s *approvalService) replayHolding(ctx context.Context, tx pgx.Tx, actorID string, req *domain.ModificationRequest, ch *domain.HoldingChanges) error {
	holding, err := s.portfolioRepo.FindHoldingForUpdate(ctx, tx, req.EntityID)
	if err != nil {
		return err
	}

	switch req.ChangeType {
	case domain.ChangeUpdate:
		return applyHoldingChangesInTx(ctx, tx, s.portfolioRepo, actorID, holding, *ch)
	case domain.ChangeDelete:
		return deleteHoldingInTx(ctx, tx, s.portfolioRepo, actorID, holding)
	default:
		return fmt.Errorf("%w: unknown change type %q", apperrors.ErrValidation, req.ChangeType)
	}
}

func (s *approvalService) replayApplication(ctx context.Context, tx pgx.Tx, actorID string, req *domain.ModificationRequest, ch *domain.IPOApplicationChanges) error {
	app, err := s.ipoRepo.FindApplicationForUpdate(ctx, tx, req.EntityID)
	if err != nil {
		return err
	}

	switch req.ChangeType {
	case domain.ChangeUpdate:
		return applyApplicationChangesInTx(ctx, tx, s.ledgerSvc, s.accountRepo, s.ipoRepo, actorID, app, *ch)
	case domain.ChangeDelete:
		return deleteApplicationInTx(ctx, tx, s.ledgerSvc, s.accountRepo, s.ipoRepo, actorID, app)
	default:
		return fmt.Errorf("%w: unknown change type %q", apperrors.ErrValidation, req.ChangeType)
	}
}
