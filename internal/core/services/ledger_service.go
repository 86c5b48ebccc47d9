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

// maxStatementPageSize caps statement pages regardless of the requested
// limit.
const maxStatementPageSize = 100

// ledgerService implements the balance movement primitives. Every mutation
// appends exactly one transaction row and writes the account's balance and
// blocked amount under a row lock taken by the caller (for the InTx
// primitives) or by this service (for Deposit and Withdraw).
type ledgerService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	txm         portsrepo.TxManager
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerRepositoryFacade, txm portsrepo.TxManager) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		txm:         txm,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// checkMutable rejects movements on closed accounts, and outgoing
// movements on frozen ones. Releases stay allowed on frozen accounts so a
// rejection can still free blocked funds.
func checkMutable(account *domain.Account, outgoing bool) error {
	switch account.Status {
	case domain.AccountActive:
		return nil
	case domain.AccountFrozen:
		if outgoing {
			return fmt.Errorf("%w: account %s is frozen", apperrors.ErrAccountInactive, account.AccountID)
		}
		return nil
	default:
		return fmt.Errorf("%w: account %s is closed", apperrors.ErrAccountInactive, account.AccountID)
	}
}

// appendEntry writes the mutated balances and the transaction row. The
// entry's account must already reflect the movement.
func (s *ledgerService) appendEntry(ctx context.Context, tx pgx.Tx, actorID string, entry portssvc.LedgerEntry, amount decimal.Decimal, now time.Time) (*domain.Transaction, error) {
	account := entry.Account
	account.LastUpdatedAt = now
	account.LastUpdatedBy = actorID

	if !account.CheckInvariant() {
		return nil, fmt.Errorf("%w: blocked amount %s exceeds balance %s on account %s",
			apperrors.ErrInternal, account.BlockedAmount, account.Balance, account.AccountID)
	}

	if err := s.accountRepo.UpdateBalancesInTx(ctx, tx, *account); err != nil {
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     account.AccountID,
		Type:          entry.Type,
		Amount:        amount,
		BalanceAfter:  account.Balance,
		ReferenceType: entry.ReferenceType,
		ReferenceID:   entry.ReferenceID,
		Notes:         entry.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if err := s.ledgerRepo.InsertTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func validateEntryAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, amount)
	}
	return nil
}

// CreditInTx raises the balance and appends the transaction.
func (s *ledgerService) CreditInTx(ctx context.Context, tx pgx.Tx, actorID string, entry portssvc.LedgerEntry) (*domain.Transaction, error) {
	if err := validateEntryAmount(entry.Amount); err != nil {
		return nil, err
	}
	if err := checkMutable(entry.Account, false); err != nil {
		return nil, err
	}

	entry.Account.Balance = entry.Account.Balance.Add(entry.Amount)
	return s.appendEntry(ctx, tx, actorID, entry, entry.Amount, time.Now())
}

// DebitInTx lowers the balance and appends the transaction. The blocked
// portion of the balance is untouchable.
func (s *ledgerService) DebitInTx(ctx context.Context, tx pgx.Tx, actorID string, entry portssvc.LedgerEntry) (*domain.Transaction, error) {
	if err := validateEntryAmount(entry.Amount); err != nil {
		return nil, err
	}
	if err := checkMutable(entry.Account, true); err != nil {
		return nil, err
	}
	if entry.Amount.GreaterThan(entry.Account.AvailableBalance()) {
		return nil, fmt.Errorf("%w: account %s has %s available, %s requested",
			apperrors.ErrInsufficientFunds, entry.Account.AccountID, entry.Account.AvailableBalance(), entry.Amount)
	}

	entry.Account.Balance = entry.Account.Balance.Sub(entry.Amount)
	return s.appendEntry(ctx, tx, actorID, entry, entry.Amount.Neg(), time.Now())
}

// BlockFundsInTx moves entry.Amount from available into the blocked
// overlay. The balance itself does not move, so the audit row carries a
// zero amount.
func (s *ledgerService) BlockFundsInTx(ctx context.Context, tx pgx.Tx, actorID string, entry portssvc.LedgerEntry) (*domain.Transaction, error) {
	if err := validateEntryAmount(entry.Amount); err != nil {
		return nil, err
	}
	if err := checkMutable(entry.Account, true); err != nil {
		return nil, err
	}
	if entry.Amount.GreaterThan(entry.Account.AvailableBalance()) {
		return nil, fmt.Errorf("%w: account %s has %s available, %s requested for block",
			apperrors.ErrInsufficientFunds, entry.Account.AccountID, entry.Account.AvailableBalance(), entry.Amount)
	}

	entry.Account.BlockedAmount = entry.Account.BlockedAmount.Add(entry.Amount)
	return s.appendEntry(ctx, tx, actorID, entry, decimal.Zero, time.Now())
}

// ReleaseFundsInTx returns entry.Amount from the blocked overlay to the
// available balance.
func (s *ledgerService) ReleaseFundsInTx(ctx context.Context, tx pgx.Tx, actorID string, entry portssvc.LedgerEntry) (*domain.Transaction, error) {
	if err := validateEntryAmount(entry.Amount); err != nil {
		return nil, err
	}
	if err := checkMutable(entry.Account, false); err != nil {
		return nil, err
	}
	if entry.Amount.GreaterThan(entry.Account.BlockedAmount) {
		return nil, fmt.Errorf("%w: release of %s exceeds blocked amount %s on account %s",
			apperrors.ErrConflict, entry.Amount, entry.Account.BlockedAmount, entry.Account.AccountID)
	}

	entry.Account.BlockedAmount = entry.Account.BlockedAmount.Sub(entry.Amount)
	return s.appendEntry(ctx, tx, actorID, entry, decimal.Zero, time.Now())
}

// ConsumeBlockedInTx settles a previously blocked amount: both the blocked
// overlay and the balance drop by entry.Amount.
func (s *ledgerService) ConsumeBlockedInTx(ctx context.Context, tx pgx.Tx, actorID string, entry portssvc.LedgerEntry) (*domain.Transaction, error) {
	if err := validateEntryAmount(entry.Amount); err != nil {
		return nil, err
	}
	if err := checkMutable(entry.Account, false); err != nil {
		return nil, err
	}
	if entry.Amount.GreaterThan(entry.Account.BlockedAmount) {
		return nil, fmt.Errorf("%w: settlement of %s exceeds blocked amount %s on account %s",
			apperrors.ErrConflict, entry.Amount, entry.Account.BlockedAmount, entry.Account.AccountID)
	}

	entry.Account.BlockedAmount = entry.Account.BlockedAmount.Sub(entry.Amount)
	entry.Account.Balance = entry.Account.Balance.Sub(entry.Amount)
	return s.appendEntry(ctx, tx, actorID, entry, entry.Amount.Neg(), time.Now())
}

// Deposit credits an account in its own transaction.
func (s *ledgerService) Deposit(ctx context.Context, actor domain.Actor, accountID string, req dto.MoveFundsRequest) (*domain.Transaction, error) {
	return s.moveFunds(ctx, actor, accountID, req, domain.TxnDeposit)
}

// Withdraw debits an account in its own transaction.
func (s *ledgerService) Withdraw(ctx context.Context, actor domain.Actor, accountID string, req dto.MoveFundsRequest) (*domain.Transaction, error) {
	return s.moveFunds(ctx, actor, accountID, req, domain.TxnWithdrawal)
}

func (s *ledgerService) moveFunds(ctx context.Context, actor domain.Actor, accountID string, req dto.MoveFundsRequest, txnType domain.TransactionType) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txm.Rollback(ctx, tx)

	account, err := s.accountRepo.FindAccountForUpdate(ctx, tx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to lock account for movement", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}

	entry := portssvc.LedgerEntry{
		Account: account,
		Amount:  req.Amount,
		Type:    txnType,
		Notes:   req.Notes,
	}

	var txn *domain.Transaction
	if txnType == domain.TxnDeposit {
		txn, err = s.CreditInTx(ctx, tx, actor.UserID, entry)
	} else {
		txn, err = s.DebitInTx(ctx, tx, actor.UserID, entry)
	}
	if err != nil {
		return nil, err
	}

	if err := s.txm.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Funds moved",
		slog.String("account_id", accountID),
		slog.String("type", string(txnType)),
		slog.String("amount", req.Amount.String()),
		slog.String("balance_after", txn.BalanceAfter.String()),
	)
	return txn, nil
}

// GetTransactionByID retrieves one ledger transaction.
func (s *ledgerService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.ledgerRepo.FindTransactionByID(ctx, transactionID)
}

// GetStatement retrieves an account's transactions newest first.
func (s *ledgerService) GetStatement(ctx context.Context, accountID string, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > maxStatementPageSize {
		limit = maxStatementPageSize
	}

	txns, nextToken, err := s.ledgerRepo.ListTransactionsByAccount(ctx, accountID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, nextToken, nil
}
