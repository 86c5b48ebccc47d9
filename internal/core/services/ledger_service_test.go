package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/core/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockLedgerRepo  *MockLedgerRepository
	mockTxm         *MockTxManager
	service         portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockTxm = new(MockTxManager)
	suite.service = services.NewLedgerService(suite.mockAccountRepo, suite.mockLedgerRepo, suite.mockTxm)
}

func (suite *LedgerServiceTestSuite) testAccount(balance, blocked string) *domain.Account {
	return &domain.Account{
		AccountID:     "acc-1",
		AccountNumber: "ACC-0001",
		Kind:          domain.AccountCustomer,
		Balance:       dec(balance),
		BlockedAmount: dec(blocked),
		Status:        domain.AccountActive,
	}
}

// expectOwnTx stubs the Begin/Commit/Rollback cycle for a movement that
// runs in its own transaction. Rollback always fires via defer, committed
// or not.
func (suite *LedgerServiceTestSuite) expectOwnTx(ctx context.Context, commits bool) {
	suite.mockTxm.On("Begin", ctx).Return(nil, nil).Once()
	if commits {
		suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()
	}
	suite.mockTxm.On("Rollback", ctx, mock.Anything).Return(nil)
}

func (suite *LedgerServiceTestSuite) TestDeposit_Success() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "maker-1", Role: domain.RoleMaker}
	account := suite.testAccount("100.00", "0")

	suite.expectOwnTx(ctx, true)
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(dec("150.00")) && a.LastUpdatedBy == "maker-1"
	})).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Type == domain.TxnDeposit && txn.Amount.Equal(dec("50.00")) && txn.BalanceAfter.Equal(dec("150.00"))
	})).Return(nil).Once()

	txn, err := suite.service.Deposit(ctx, actor, "acc-1", dto.MoveFundsRequest{Amount: dec("50.00")})

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal("acc-1", txn.AccountID)
	suite.True(txn.BalanceAfter.Equal(dec("150.00")))
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockTxm.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestWithdraw_BlockedFundsAreUntouchable() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "maker-1", Role: domain.RoleMaker}
	// 100 on the books but 80 blocked leaves only 20 available.
	account := suite.testAccount("100.00", "80.00")

	suite.expectOwnTx(ctx, false)
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()

	txn, err := suite.service.Withdraw(ctx, actor, "acc-1", dto.MoveFundsRequest{Amount: dec("50.00")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Nil(txn)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateBalancesInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxm.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestWithdraw_RejectsNonPositiveAmount() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "maker-1", Role: domain.RoleMaker}
	account := suite.testAccount("100.00", "0")

	suite.expectOwnTx(ctx, false)
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()

	_, err := suite.service.Withdraw(ctx, actor, "acc-1", dto.MoveFundsRequest{Amount: dec("-5")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestBlockFunds_InsufficientAvailable() {
	ctx := context.Background()
	account := suite.testAccount("100.00", "90.00")

	_, err := suite.service.BlockFundsInTx(ctx, nil, "maker-1", portssvc.LedgerEntry{
		Account: account,
		Amount:  dec("20.00"),
		Type:    domain.TxnFundsBlock,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *LedgerServiceTestSuite) TestBlockFunds_AppendsZeroAmountAudit() {
	ctx := context.Background()
	account := suite.testAccount("100.00", "0")

	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(dec("100.00")) && a.BlockedAmount.Equal(dec("40.00"))
	})).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Type == domain.TxnFundsBlock && txn.Amount.IsZero() && txn.BalanceAfter.Equal(dec("100.00"))
	})).Return(nil).Once()

	txn, err := suite.service.BlockFundsInTx(ctx, nil, "maker-1", portssvc.LedgerEntry{
		Account:       account,
		Amount:        dec("40.00"),
		Type:          domain.TxnFundsBlock,
		ReferenceType: domain.RefIPOApplication,
		ReferenceID:   "app-1",
	})

	suite.Require().NoError(err)
	suite.True(txn.Amount.IsZero())
	suite.True(account.BlockedAmount.Equal(dec("40.00")))
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReleaseFunds_ExceedsBlocked() {
	ctx := context.Background()
	account := suite.testAccount("100.00", "30.00")

	_, err := suite.service.ReleaseFundsInTx(ctx, nil, "checker-1", portssvc.LedgerEntry{
		Account: account,
		Amount:  dec("31.00"),
		Type:    domain.TxnIPORelease,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.True(account.BlockedAmount.Equal(dec("30.00")))
}

func (suite *LedgerServiceTestSuite) TestConsumeBlocked_DropsBalanceAndBlocked() {
	ctx := context.Background()
	account := suite.testAccount("100.00", "40.00")

	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(dec("60.00")) && a.BlockedAmount.IsZero()
	})).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Type == domain.TxnIPOAllotment && txn.Amount.Equal(dec("-40.00"))
	})).Return(nil).Once()

	_, err := suite.service.ConsumeBlockedInTx(ctx, nil, "checker-1", portssvc.LedgerEntry{
		Account:       account,
		Amount:        dec("40.00"),
		Type:          domain.TxnIPOAllotment,
		ReferenceType: domain.RefIPOApplication,
		ReferenceID:   "app-1",
	})

	suite.Require().NoError(err)
	suite.True(account.Balance.Equal(dec("60.00")))
	suite.True(account.BlockedAmount.IsZero())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestFrozenAccount_RejectsOutgoingAllowsRelease() {
	ctx := context.Background()
	account := suite.testAccount("100.00", "40.00")
	account.Status = domain.AccountFrozen

	_, err := suite.service.DebitInTx(ctx, nil, "maker-1", portssvc.LedgerEntry{
		Account: account, Amount: dec("10.00"), Type: domain.TxnWithdrawal,
	})
	suite.ErrorIs(err, apperrors.ErrAccountInactive)

	_, err = suite.service.BlockFundsInTx(ctx, nil, "maker-1", portssvc.LedgerEntry{
		Account: account, Amount: dec("10.00"), Type: domain.TxnFundsBlock,
	})
	suite.ErrorIs(err, apperrors.ErrAccountInactive)

	// A rejection must still be able to free blocked funds.
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	_, err = suite.service.ReleaseFundsInTx(ctx, nil, "checker-1", portssvc.LedgerEntry{
		Account: account, Amount: dec("40.00"), Type: domain.TxnIPORelease,
	})
	suite.Require().NoError(err)
	suite.True(account.BlockedAmount.IsZero())
}

func (suite *LedgerServiceTestSuite) TestClosedAccount_RejectsEverything() {
	ctx := context.Background()
	account := suite.testAccount("0", "0")
	account.Status = domain.AccountClosed

	_, err := suite.service.CreditInTx(ctx, nil, "maker-1", portssvc.LedgerEntry{
		Account: account, Amount: dec("10.00"), Type: domain.TxnDeposit,
	})
	suite.ErrorIs(err, apperrors.ErrAccountInactive)
}

func (suite *LedgerServiceTestSuite) TestGetStatement_CapsPageSize() {
	ctx := context.Background()
	account := suite.testAccount("100.00", "0")

	suite.mockAccountRepo.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Twice()
	// Asking for 500 rows must be clamped to the maximum page size.
	suite.mockLedgerRepo.On("ListTransactionsByAccount", ctx, "acc-1", 100, (*string)(nil)).
		Return([]domain.Transaction{}, nil, nil).Once()
	// A zero limit falls back to the default.
	suite.mockLedgerRepo.On("ListTransactionsByAccount", ctx, "acc-1", 20, (*string)(nil)).
		Return([]domain.Transaction{}, nil, nil).Once()

	txns, _, err := suite.service.GetStatement(ctx, "acc-1", dto.ListTransactionsParams{Limit: 500})
	suite.Require().NoError(err)
	suite.NotNil(txns)

	txns, _, err = suite.service.GetStatement(ctx, "acc-1", dto.ListTransactionsParams{})
	suite.Require().NoError(err)
	suite.NotNil(txns)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
