package services_test

import (
	"context"
	"errors"
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

type InvestorServiceTestSuite struct {
	suite.Suite
	mockInvestorRepo   *MockInvestorRepository
	mockInvestmentRepo *MockInvestmentRepository
	mockAccountRepo    *MockAccountRepository
	mockLedgerRepo     *MockLedgerRepository
	mockNotifier       *MockNotifier
	mockTxm            *MockTxManager
	service            portssvc.InvestorSvcFacade
}

func (suite *InvestorServiceTestSuite) SetupTest() {
	suite.mockInvestorRepo = new(MockInvestorRepository)
	suite.mockInvestmentRepo = new(MockInvestmentRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockNotifier = new(MockNotifier)
	suite.mockTxm = new(MockTxManager)

	ledgerSvc := services.NewLedgerService(suite.mockAccountRepo, suite.mockLedgerRepo, suite.mockTxm)
	suite.service = services.NewInvestorService(
		suite.mockInvestorRepo,
		suite.mockInvestmentRepo,
		suite.mockAccountRepo,
		ledgerSvc,
		suite.mockNotifier,
		suite.mockTxm,
	)
}

func (suite *InvestorServiceTestSuite) testInvestor(total, available, invested string) *domain.Investor {
	return &domain.Investor{
		InvestorID:       "inv-1",
		Name:             "Partner One",
		AccountID:        "escrow-1",
		TotalCapital:     dec(total),
		AvailableCapital: dec(available),
		InvestedAmount:   dec(invested),
		TotalProfit:      decimal.Zero,
		IsActive:         true,
	}
}

func (suite *InvestorServiceTestSuite) expectOwnTx(ctx context.Context, commits bool) {
	suite.mockTxm.On("Begin", ctx).Return(nil, nil).Once()
	if commits {
		suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()
	}
	suite.mockTxm.On("Rollback", ctx, mock.Anything).Return(nil)
}

func (suite *InvestorServiceTestSuite) TestCreateInvestor_OpensEscrowAccount() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}

	suite.expectOwnTx(ctx, true)
	suite.mockAccountRepo.On("SaveAccountInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Kind == domain.AccountInvestor && a.Balance.IsZero() && a.Status == domain.AccountActive
	})).Return(nil).Once()
	suite.mockInvestorRepo.On("SaveInvestorInTx", ctx, mock.Anything, mock.MatchedBy(func(i domain.Investor) bool {
		return i.Name == "Partner One" && i.IsActive && i.TotalCapital.IsZero()
	})).Return(nil).Once()

	investor, err := suite.service.CreateInvestor(ctx, actor, dto.CreateInvestorRequest{
		Name:          "Partner One",
		Email:         "partner@example.com",
		AccountNumber: "INV-0001",
	})

	suite.Require().NoError(err)
	suite.NotEmpty(investor.InvestorID)
	suite.NotEmpty(investor.AccountID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockInvestorRepo.AssertExpectations(suite.T())
}

func (suite *InvestorServiceTestSuite) TestAddCapital_GrowsPoolAndCreditsEscrow() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	investor := suite.testInvestor("1000.00", "400.00", "600.00")
	escrow := &domain.Account{
		AccountID:     "escrow-1",
		Kind:          domain.AccountInvestor,
		Balance:       dec("1000.00"),
		BlockedAmount: decimal.Zero,
		Status:        domain.AccountActive,
	}

	suite.expectOwnTx(ctx, true)
	suite.mockInvestorRepo.On("FindInvestorForUpdate", ctx, mock.Anything, "inv-1").Return(investor, nil).Once()
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "escrow-1").Return(escrow, nil).Once()
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Balance.Equal(dec("1500.00"))
	})).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Type == domain.TxnDeposit && txn.Amount.Equal(dec("500.00"))
	})).Return(nil).Once()
	suite.mockInvestorRepo.On("UpdateCapitalInTx", ctx, mock.Anything, mock.MatchedBy(func(i domain.Investor) bool {
		return i.TotalCapital.Equal(dec("1500.00")) && i.AvailableCapital.Equal(dec("900.00"))
	})).Return(nil).Once()
	suite.mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n portssvc.Notification) bool {
		return n.RecipientID == "inv-1"
	})).Return(nil).Once()

	updated, err := suite.service.AddCapital(ctx, actor, "inv-1", dto.AddCapitalRequest{Amount: dec("500.00")})

	suite.Require().NoError(err)
	suite.True(updated.TotalCapital.Equal(dec("1500.00")))
	suite.True(updated.AvailableCapital.Equal(dec("900.00")))
	suite.mockInvestorRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *InvestorServiceTestSuite) TestAddCapital_NotificationFailureDoesNotFailCall() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	investor := suite.testInvestor("1000.00", "400.00", "600.00")
	escrow := &domain.Account{
		AccountID:     "escrow-1",
		Kind:          domain.AccountInvestor,
		Balance:       dec("1000.00"),
		BlockedAmount: decimal.Zero,
		Status:        domain.AccountActive,
	}

	suite.expectOwnTx(ctx, true)
	suite.mockInvestorRepo.On("FindInvestorForUpdate", ctx, mock.Anything, "inv-1").Return(investor, nil).Once()
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "escrow-1").Return(escrow, nil).Once()
	suite.mockAccountRepo.On("UpdateBalancesInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockLedgerRepo.On("InsertTransactionInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockInvestorRepo.On("UpdateCapitalInTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockNotifier.On("Notify", ctx, mock.Anything).Return(errors.New("smtp down")).Once()

	updated, err := suite.service.AddCapital(ctx, actor, "inv-1", dto.AddCapitalRequest{Amount: dec("500.00")})

	suite.Require().NoError(err)
	suite.True(updated.TotalCapital.Equal(dec("1500.00")))
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *InvestorServiceTestSuite) TestAddCapital_RejectsNonPositiveAmount() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}

	_, err := suite.service.AddCapital(ctx, actor, "inv-1", dto.AddCapitalRequest{Amount: dec("0")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxm.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *InvestorServiceTestSuite) TestAddCapital_InactiveInvestor() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	investor := suite.testInvestor("1000.00", "400.00", "600.00")
	investor.IsActive = false

	suite.expectOwnTx(ctx, false)
	suite.mockInvestorRepo.On("FindInvestorForUpdate", ctx, mock.Anything, "inv-1").Return(investor, nil).Once()

	_, err := suite.service.AddCapital(ctx, actor, "inv-1", dto.AddCapitalRequest{Amount: dec("500.00")})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockNotifier.AssertNotCalled(suite.T(), "Notify", mock.Anything, mock.Anything)
}

func (suite *InvestorServiceTestSuite) TestReserveForInvestment_MovesCapitalToInvested() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "maker-1", Role: domain.RoleMaker}
	investor := suite.testInvestor("1000.00", "700.00", "300.00")

	suite.expectOwnTx(ctx, true)
	suite.mockInvestorRepo.On("FindInvestorForUpdate", ctx, mock.Anything, "inv-1").Return(investor, nil).Once()
	suite.mockInvestorRepo.On("UpdateCapitalInTx", ctx, mock.Anything, mock.MatchedBy(func(i domain.Investor) bool {
		return i.AvailableCapital.Equal(dec("200.00")) && i.InvestedAmount.Equal(dec("800.00"))
	})).Return(nil).Once()
	suite.mockInvestmentRepo.On("SaveInvestmentInTx", ctx, mock.Anything, mock.MatchedBy(func(inv domain.Investment) bool {
		return inv.PrincipalAmount.Equal(dec("500.00")) &&
			inv.SharesHeld == 50 &&
			inv.Status == domain.InvestmentActive
	})).Return(nil).Once()

	investment, err := suite.service.ReserveForInvestment(ctx, actor, dto.ReserveInvestmentRequest{
		InvestorID:   "inv-1",
		CustomerID:   "cust-1",
		Symbol:       "NABIL",
		Shares:       50,
		CostPerShare: dec("10.00"),
	})

	suite.Require().NoError(err)
	suite.Equal(int64(50), investment.SharesAllocated)
	suite.True(investment.CostPerShare.Equal(dec("10.00")))
	suite.mockInvestorRepo.AssertExpectations(suite.T())
	suite.mockInvestmentRepo.AssertExpectations(suite.T())
}

func (suite *InvestorServiceTestSuite) TestReserveForInvestment_InsufficientCapital() {
	ctx := context.Background()
	actor := domain.Actor{UserID: "maker-1", Role: domain.RoleMaker}
	investor := suite.testInvestor("1000.00", "499.99", "500.01")

	suite.expectOwnTx(ctx, false)
	suite.mockInvestorRepo.On("FindInvestorForUpdate", ctx, mock.Anything, "inv-1").Return(investor, nil).Once()

	_, err := suite.service.ReserveForInvestment(ctx, actor, dto.ReserveInvestmentRequest{
		InvestorID:   "inv-1",
		CustomerID:   "cust-1",
		Symbol:       "NABIL",
		Shares:       50,
		CostPerShare: dec("10.00"),
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientCapital)
	suite.mockInvestmentRepo.AssertNotCalled(suite.T(), "SaveInvestmentInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvestorServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvestorServiceTestSuite))
}
