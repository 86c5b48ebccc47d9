package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/core/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
)

type IPOServiceTestSuite struct {
	suite.Suite
	mockIPORepo        *MockIPORepository
	mockAccountRepo    *MockAccountRepository
	mockCustomerRepo   *MockCustomerRepository
	mockPortfolioRepo  *MockPortfolioRepository
	mockInvestorRepo   *MockInvestorRepository
	mockInvestmentRepo *MockInvestmentRepository
	mockLedgerRepo     *MockLedgerRepository
	mockModRepo        *MockModificationRepository
	mockNotifier       *MockNotifier
	mockTxm            *MockTxManager
	service            portssvc.IPOSvcFacade
}

func (suite *IPOServiceTestSuite) SetupTest() {
	suite.mockIPORepo = new(MockIPORepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCustomerRepo = new(MockCustomerRepository)
	suite.mockPortfolioRepo = new(MockPortfolioRepository)
	suite.mockInvestorRepo = new(MockInvestorRepository)
	suite.mockInvestmentRepo = new(MockInvestmentRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockModRepo = new(MockModificationRepository)
	suite.mockNotifier = new(MockNotifier)
	suite.mockTxm = new(MockTxManager)

	ledgerSvc := services.NewLedgerService(suite.mockAccountRepo, suite.mockLedgerRepo, suite.mockTxm)
	approvalSvc := services.NewApprovalService(
		suite.mockModRepo, suite.mockAccountRepo, suite.mockCustomerRepo,
		suite.mockIPORepo, suite.mockPortfolioRepo, ledgerSvc, suite.mockTxm,
	)
	investorSvc := services.NewInvestorService(
		suite.mockInvestorRepo, suite.mockInvestmentRepo, suite.mockAccountRepo, ledgerSvc, suite.mockNotifier, suite.mockTxm,
	)
	portfolioSvc := services.NewPortfolioService(suite.mockPortfolioRepo, approvalSvc, suite.mockTxm)

	suite.service = services.NewIPOService(
		suite.mockIPORepo,
		suite.mockAccountRepo,
		suite.mockCustomerRepo,
		ledgerSvc,
		investorSvc,
		portfolioSvc,
		approvalSvc,
		suite.mockNotifier,
		suite.mockTxm,
	)
}

func (suite *IPOServiceTestSuite) testApplication(status domain.IPOStatus) *domain.IPOApplication {
	return &domain.IPOApplication{
		ApplicationID:   "app-1",
		CustomerID:      "cust-1",
		AccountID:       "acc-1",
		Symbol:          "NABIL",
		Quantity:        10,
		PricePerShare:   dec("100.00"),
		TotalAmount:     dec("1000.00"),
		Status:          status,
		AllotmentStatus: domain.AllotmentNone,
	}
}

func (suite *IPOServiceTestSuite) fundingAccount(balance, blocked string) *domain.Account {
	return &domain.Account{
		AccountID:     "acc-1",
		CustomerID:    "cust-1",
		Kind:          domain.AccountCustomer,
		Balance:       dec(balance),
		BlockedAmount: dec(blocked),
		Status:        domain.AccountActive,
	}
}

func (suite *IPOServiceTestSuite) expectOwnTx(ctx context.Context, commits bool) {
	suite.mockTxm.On("Begin", ctx).Return(nil, nil).Once()
	if commits {
		suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()
	}
	suite.mockTxm.On("Rollback", ctx, mock.Anything).Return(nil)
}

func (suite *IPOServiceTestSuite) TestVerifyApplication_BlocksSubscriptionAmount() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	app := suite.testApplication(domain.IPOPending)
	account := suite.fundingAccount("1500.00", "0")

	suite.expectOwnTx(ctx, true)
	suite.mockIPORepo.On("FindApplicationForUpdate", ctx, mock.Anything, "app-1").Return(app, nil).Once()
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(dec("1500.00")) && a.BlockedAmount.Equal(dec("1000.00"))
	})).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Type == domain.TxnFundsBlock && txn.Amount.IsZero() && txn.ReferenceID == "app-1"
	})).Return(nil).Once()
	suite.mockIPORepo.On("UpdateApplicationInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.IPOApplication) bool {
		return a.Status == domain.IPOVerified && a.AllotmentStatus == domain.AllotmentNone
	})).Return(nil).Once()

	verified, err := suite.service.VerifyApplication(ctx, actor, "app-1")

	suite.Require().NoError(err)
	suite.Equal(domain.IPOVerified, verified.Status)
	suite.mockIPORepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *IPOServiceTestSuite) TestVerifyApplication_InsufficientAvailableKeepsPending() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	app := suite.testApplication(domain.IPOPending)
	// 1200 on the books but 500 already blocked leaves only 700 available.
	account := suite.fundingAccount("1200.00", "500.00")

	suite.expectOwnTx(ctx, false)
	suite.mockIPORepo.On("FindApplicationForUpdate", ctx, mock.Anything, "app-1").Return(app, nil).Once()
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()

	_, err := suite.service.VerifyApplication(ctx, actor, "app-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Equal(domain.IPOPending, app.Status)
	suite.mockIPORepo.AssertNotCalled(suite.T(), "UpdateApplicationInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxm.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *IPOServiceTestSuite) TestVerifyApplication_AlreadyVerified() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	app := suite.testApplication(domain.IPOVerified)

	suite.expectOwnTx(ctx, false)
	suite.mockIPORepo.On("FindApplicationForUpdate", ctx, mock.Anything, "app-1").Return(app, nil).Once()

	_, err := suite.service.VerifyApplication(ctx, actor, "app-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

func (suite *IPOServiceTestSuite) TestRejectApplication_ReleasesBlockTakenAtVerification() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	app := suite.testApplication(domain.IPOVerified)
	account := suite.fundingAccount("1500.00", "1000.00")

	suite.expectOwnTx(ctx, true)
	suite.mockIPORepo.On("FindApplicationForUpdate", ctx, mock.Anything, "app-1").Return(app, nil).Once()
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(dec("1500.00")) && a.BlockedAmount.IsZero()
	})).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Type == domain.TxnIPORelease && txn.Amount.IsZero()
	})).Return(nil).Once()
	suite.mockIPORepo.On("UpdateApplicationInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.IPOApplication) bool {
		return a.Status == domain.IPORejected
	})).Return(nil).Once()

	rejected, err := suite.service.RejectApplication(ctx, actor, "app-1", "incomplete KYC")

	suite.Require().NoError(err)
	suite.Equal(domain.IPORejected, rejected.Status)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *IPOServiceTestSuite) TestRejectApplication_PendingSkipsRelease() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	app := suite.testApplication(domain.IPOPending)

	suite.expectOwnTx(ctx, true)
	suite.mockIPORepo.On("FindApplicationForUpdate", ctx, mock.Anything, "app-1").Return(app, nil).Once()
	suite.mockIPORepo.On("UpdateApplicationInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.IPOApplication) bool {
		return a.Status == domain.IPORejected
	})).Return(nil).Once()

	// Nothing was blocked for a pending application, so no ledger work.
	_, err := suite.service.RejectApplication(ctx, actor, "app-1", "withdrawn")

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountForUpdate", mock.Anything, mock.Anything, mock.Anything)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "InsertTransactionInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IPOServiceTestSuite) TestAllotApplication_PartialRefundsRemainder() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	app := suite.testApplication(domain.IPOVerified)
	account := suite.fundingAccount("1500.00", "1000.00")
	portfolio := &domain.Portfolio{PortfolioID: "pf-1", CustomerID: "cust-1", TotalInvestment: decimal.Zero, TotalValue: decimal.Zero}

	suite.expectOwnTx(ctx, true)
	suite.mockIPORepo.On("FindApplicationForUpdate", ctx, mock.Anything, "app-1").Return(app, nil).Once()
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()
	// Consume for 6 shares, then refund of the 4-share remainder.
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, mock.Anything, mock.Anything).Return(nil).Twice()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Type == domain.TxnIPOAllotment && txn.Amount.Equal(dec("-600.00"))
	})).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Type == domain.TxnIPORelease && txn.Amount.IsZero()
	})).Return(nil).Once()
	suite.mockPortfolioRepo.On("FindPortfolioForUpdate", ctx, mock.Anything, "cust-1").Return(portfolio, nil).Once()
	suite.mockPortfolioRepo.On("UpsertHoldingInTx", ctx, mock.Anything, mock.MatchedBy(func(h domain.Holding) bool {
		return h.Symbol == "NABIL" && h.Quantity == 6 && h.PurchasePrice.Equal(dec("100.00"))
	})).Return(&domain.Holding{HoldingID: "h-1", Symbol: "NABIL", Quantity: 6}, nil).Once()
	suite.mockPortfolioRepo.On("UpdateAggregatesInTx", ctx, mock.Anything, mock.MatchedBy(func(p domain.Portfolio) bool {
		return p.TotalInvestment.Equal(dec("600.00")) && p.TotalValue.Equal(dec("600.00"))
	})).Return(nil).Once()
	suite.mockIPORepo.On("UpdateApplicationInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.IPOApplication) bool {
		return a.Status == domain.IPOAllotted &&
			a.AllotmentStatus == domain.AllotmentAllotted &&
			a.AllotmentQuantity == 6
	})).Return(nil).Once()
	suite.mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n portssvc.Notification) bool {
		return n.RecipientID == "cust-1"
	})).Return(nil).Once()

	allotted, err := suite.service.AllotApplication(ctx, actor, "app-1", dto.AllotApplicationRequest{
		Outcome:           dto.OutcomeAllotted,
		AllotmentQuantity: 6,
	})

	suite.Require().NoError(err)
	suite.Equal(domain.AllotmentAllotted, allotted.AllotmentStatus)
	suite.Equal(int64(6), allotted.AllotmentQuantity)
	// 600 settled and 400 released: nothing stays blocked.
	suite.True(account.Balance.Equal(dec("900.00")))
	suite.True(account.BlockedAmount.IsZero())
	suite.mockPortfolioRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *IPOServiceTestSuite) TestAllotApplication_NotAllottedRefundsEverything() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	app := suite.testApplication(domain.IPOVerified)
	account := suite.fundingAccount("1500.00", "1000.00")

	suite.expectOwnTx(ctx, true)
	suite.mockIPORepo.On("FindApplicationForUpdate", ctx, mock.Anything, "app-1").Return(app, nil).Once()
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(dec("1500.00")) && a.BlockedAmount.IsZero()
	})).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockIPORepo.On("UpdateApplicationInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.IPOApplication) bool {
		return a.Status == domain.IPOAllotted && a.AllotmentStatus == domain.AllotmentNotAllotted && a.AllotmentQuantity == 0
	})).Return(nil).Once()
	suite.mockNotifier.On("Notify", ctx, mock.Anything).Return(nil).Once()

	allotted, err := suite.service.AllotApplication(ctx, actor, "app-1", dto.AllotApplicationRequest{
		Outcome: dto.OutcomeNotAllotted,
	})

	suite.Require().NoError(err)
	suite.Equal(domain.AllotmentNotAllotted, allotted.AllotmentStatus)
	suite.True(account.BlockedAmount.IsZero())
	suite.mockPortfolioRepo.AssertNotCalled(suite.T(), "UpsertHoldingInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IPOServiceTestSuite) TestAllotApplication_RequiresVerified() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	app := suite.testApplication(domain.IPOPending)

	suite.expectOwnTx(ctx, false)
	suite.mockIPORepo.On("FindApplicationForUpdate", ctx, mock.Anything, "app-1").Return(app, nil).Once()

	_, err := suite.service.AllotApplication(ctx, actor, "app-1", dto.AllotApplicationRequest{
		Outcome:           dto.OutcomeAllotted,
		AllotmentQuantity: 10,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

func (suite *IPOServiceTestSuite) TestAllotApplication_QuantityOutOfRange() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	app := suite.testApplication(domain.IPOVerified)
	account := suite.fundingAccount("1500.00", "1000.00")

	suite.expectOwnTx(ctx, false)
	suite.mockIPORepo.On("FindApplicationForUpdate", ctx, mock.Anything, "app-1").Return(app, nil).Once()
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()

	_, err := suite.service.AllotApplication(ctx, actor, "app-1", dto.AllotApplicationRequest{
		Outcome:           dto.OutcomeAllotted,
		AllotmentQuantity: 11,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestIPOServiceTestSuite(t *testing.T) {
	suite.Run(t, new(IPOServiceTestSuite))
}
