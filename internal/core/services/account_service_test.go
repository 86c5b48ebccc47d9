package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/core/services"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo   *MockAccountRepository
	mockCustomerRepo  *MockCustomerRepository
	mockModRepo       *MockModificationRepository
	mockIPORepo       *MockIPORepository
	mockPortfolioRepo *MockPortfolioRepository
	mockLedgerRepo    *MockLedgerRepository
	mockTxm           *MockTxManager
	service           portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCustomerRepo = new(MockCustomerRepository)
	suite.mockModRepo = new(MockModificationRepository)
	suite.mockIPORepo = new(MockIPORepository)
	suite.mockPortfolioRepo = new(MockPortfolioRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockTxm = new(MockTxManager)

	ledgerSvc := services.NewLedgerService(suite.mockAccountRepo, suite.mockLedgerRepo, suite.mockTxm)
	approvalSvc := services.NewApprovalService(
		suite.mockModRepo,
		suite.mockAccountRepo,
		suite.mockCustomerRepo,
		suite.mockIPORepo,
		suite.mockPortfolioRepo,
		ledgerSvc,
		suite.mockTxm,
	)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockCustomerRepo, approvalSvc)
}

func (suite *AccountServiceTestSuite) emptyAccount() *domain.Account {
	return &domain.Account{
		AccountID:     "acc-1",
		CustomerID:    "cust-1",
		Balance:       decimal.Zero,
		BlockedAmount: decimal.Zero,
		Status:        domain.AccountActive,
	}
}

func (suite *AccountServiceTestSuite) TestCloseAccount_MakerDivertsWithJSONPayload() {
	ctx := context.Background()
	maker := domain.Actor{UserID: "maker-1", Role: domain.RoleMaker}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "acc-1").Return(suite.emptyAccount(), nil).Once()
	suite.mockModRepo.On("SaveRequest", ctx, mock.MatchedBy(func(req domain.ModificationRequest) bool {
		return req.EntityType == domain.GovernedAccount &&
			req.EntityID == "acc-1" &&
			req.ChangeType == domain.ChangeDelete &&
			len(req.Changes) > 0 &&
			json.Valid(req.Changes)
	})).Return(nil).Once()

	pending, err := suite.service.CloseAccount(ctx, maker, "acc-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(pending)
	suite.Equal(domain.RequestPending, pending.Status)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountDetails", mock.Anything, mock.Anything)
	suite.mockModRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCloseAccount_AdminClosesDirectly() {
	ctx := context.Background()
	admin := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}

	suite.mockAccountRepo.On("FindAccountByID", ctx, "acc-1").Return(suite.emptyAccount(), nil).Once()
	suite.mockAccountRepo.On("UpdateAccountDetails", ctx, mock.MatchedBy(func(account domain.Account) bool {
		return account.AccountID == "acc-1" &&
			account.Status == domain.AccountClosed &&
			account.LastUpdatedBy == "admin-1"
	})).Return(nil).Once()

	pending, err := suite.service.CloseAccount(ctx, admin, "acc-1")

	suite.Require().NoError(err)
	suite.Nil(pending)
	suite.mockModRepo.AssertNotCalled(suite.T(), "SaveRequest", mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCloseAccount_RefusesWhenFundsHeld() {
	ctx := context.Background()
	maker := domain.Actor{UserID: "maker-1", Role: domain.RoleMaker}
	account := suite.emptyAccount()
	account.BlockedAmount = dec("25.00")

	suite.mockAccountRepo.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()

	pending, err := suite.service.CloseAccount(ctx, maker, "acc-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(pending)
	suite.mockModRepo.AssertNotCalled(suite.T(), "SaveRequest", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCloseAccount_AlreadyClosed() {
	ctx := context.Background()
	admin := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	account := suite.emptyAccount()
	account.Status = domain.AccountClosed

	suite.mockAccountRepo.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()

	pending, err := suite.service.CloseAccount(ctx, admin, "acc-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(pending)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountDetails", mock.Anything, mock.Anything)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
