package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/core/services"
)

type ApprovalServiceTestSuite struct {
	suite.Suite
	mockModRepo       *MockModificationRepository
	mockAccountRepo   *MockAccountRepository
	mockCustomerRepo  *MockCustomerRepository
	mockIPORepo       *MockIPORepository
	mockPortfolioRepo *MockPortfolioRepository
	mockLedgerRepo    *MockLedgerRepository
	mockTxm           *MockTxManager
	service           portssvc.ApprovalSvcFacade
}

func (suite *ApprovalServiceTestSuite) SetupTest() {
	suite.mockModRepo = new(MockModificationRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCustomerRepo = new(MockCustomerRepository)
	suite.mockIPORepo = new(MockIPORepository)
	suite.mockPortfolioRepo = new(MockPortfolioRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockTxm = new(MockTxManager)

	ledgerSvc := services.NewLedgerService(suite.mockAccountRepo, suite.mockLedgerRepo, suite.mockTxm)
	suite.service = services.NewApprovalService(
		suite.mockModRepo,
		suite.mockAccountRepo,
		suite.mockCustomerRepo,
		suite.mockIPORepo,
		suite.mockPortfolioRepo,
		ledgerSvc,
		suite.mockTxm,
	)
}

func (suite *ApprovalServiceTestSuite) pendingRequest(entityType domain.GovernedEntity, entityID string, changeType domain.ChangeType, changes any) *domain.ModificationRequest {
	req := &domain.ModificationRequest{
		RequestID:   "req-1",
		EntityType:  entityType,
		EntityID:    entityID,
		ChangeType:  changeType,
		Status:      domain.RequestPending,
		RequestedBy: "maker-1",
		AuditFields: domain.AuditFields{CreatedAt: time.Now(), CreatedBy: "maker-1"},
	}
	if changes != nil {
		raw, err := domain.EncodeChanges(changes)
		suite.Require().NoError(err)
		req.Changes = raw
	}
	return req
}

func (suite *ApprovalServiceTestSuite) expectResolveTx(ctx context.Context, commits bool) {
	suite.mockTxm.On("Begin", ctx).Return(nil, nil).Once()
	if commits {
		suite.mockTxm.On("Commit", ctx, mock.Anything).Return(nil).Once()
	}
	suite.mockTxm.On("Rollback", ctx, mock.Anything).Return(nil)
}

func (suite *ApprovalServiceTestSuite) TestSubmitRequest_Success() {
	ctx := context.Background()
	maker := domain.Actor{UserID: "maker-1", Role: domain.RoleMaker}
	name := "Renamed Customer"

	suite.mockModRepo.On("SaveRequest", ctx, mock.MatchedBy(func(req domain.ModificationRequest) bool {
		return req.EntityType == domain.GovernedCustomer &&
			req.EntityID == "cust-1" &&
			req.Status == domain.RequestPending &&
			req.RequestedBy == "maker-1" &&
			len(req.Changes) > 0
	})).Return(nil).Once()

	req, err := suite.service.SubmitRequest(ctx, maker, domain.GovernedCustomer, "cust-1", domain.ChangeUpdate, &domain.CustomerChanges{Name: &name})

	suite.Require().NoError(err)
	suite.Equal(domain.RequestPending, req.Status)
	suite.NotEmpty(req.RequestID)
	suite.mockModRepo.AssertExpectations(suite.T())
}

// Delete submissions carry no change-set, but the payload column refuses
// NULL, so the request must still reach the repository with a JSON document.
func (suite *ApprovalServiceTestSuite) TestSubmitRequest_DeletePersistsJSONPayload() {
	ctx := context.Background()
	maker := domain.Actor{UserID: "maker-1", Role: domain.RoleMaker}

	suite.mockModRepo.On("SaveRequest", ctx, mock.MatchedBy(func(req domain.ModificationRequest) bool {
		return req.ChangeType == domain.ChangeDelete &&
			len(req.Changes) > 0 &&
			json.Valid(req.Changes)
	})).Return(nil).Once()

	req, err := suite.service.SubmitRequest(ctx, maker, domain.GovernedCustomer, "cust-1", domain.ChangeDelete, nil)

	suite.Require().NoError(err)
	suite.JSONEq("{}", string(req.Changes))
	suite.mockModRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestApproveRequest_RequesterCannotSelfApprove() {
	ctx := context.Background()
	// The maker also carries the checker role here; the two-person rule
	// still blocks them from resolving their own request.
	requester := domain.Actor{UserID: "maker-1", Role: domain.RoleChecker}
	req := suite.pendingRequest(domain.GovernedCustomer, "cust-1", domain.ChangeDelete, nil)

	suite.expectResolveTx(ctx, false)
	suite.mockModRepo.On("FindRequestForUpdate", ctx, mock.Anything, "req-1").Return(req, nil).Once()

	_, err := suite.service.ApproveRequest(ctx, requester, "req-1", "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockModRepo.AssertNotCalled(suite.T(), "ResolveRequestInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestApproveRequest_MakerRoleCannotResolve() {
	ctx := context.Background()
	otherMaker := domain.Actor{UserID: "maker-2", Role: domain.RoleMaker}
	req := suite.pendingRequest(domain.GovernedCustomer, "cust-1", domain.ChangeDelete, nil)

	suite.expectResolveTx(ctx, false)
	suite.mockModRepo.On("FindRequestForUpdate", ctx, mock.Anything, "req-1").Return(req, nil).Once()

	_, err := suite.service.ApproveRequest(ctx, otherMaker, "req-1", "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ApprovalServiceTestSuite) TestApproveRequest_AlreadyResolved() {
	ctx := context.Background()
	checker := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	req := suite.pendingRequest(domain.GovernedCustomer, "cust-1", domain.ChangeDelete, nil)
	req.Status = domain.RequestRejected

	suite.expectResolveTx(ctx, false)
	suite.mockModRepo.On("FindRequestForUpdate", ctx, mock.Anything, "req-1").Return(req, nil).Once()

	_, err := suite.service.ApproveRequest(ctx, checker, "req-1", "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyResolved)
}

func (suite *ApprovalServiceTestSuite) TestApproveRequest_ReplaysCustomerUpdate() {
	ctx := context.Background()
	checker := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	newName := "Renamed Customer"
	req := suite.pendingRequest(domain.GovernedCustomer, "cust-1", domain.ChangeUpdate, &domain.CustomerChanges{Name: &newName})
	customer := &domain.Customer{CustomerID: "cust-1", Name: "Old Name", IsActive: true}

	suite.expectResolveTx(ctx, true)
	suite.mockModRepo.On("FindRequestForUpdate", ctx, mock.Anything, "req-1").Return(req, nil).Once()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, "cust-1").Return(customer, nil).Once()
	suite.mockCustomerRepo.On("UpdateCustomerInTx", ctx, mock.Anything, mock.MatchedBy(func(c domain.Customer) bool {
		return c.Name == newName && c.LastUpdatedBy == "checker-1"
	})).Return(nil).Once()
	suite.mockModRepo.On("ResolveRequestInTx", ctx, mock.Anything, "req-1", domain.RequestApproved, "checker-1", "looks right").Return(nil).Once()

	resolved, err := suite.service.ApproveRequest(ctx, checker, "req-1", "looks right")

	suite.Require().NoError(err)
	suite.Equal(domain.RequestApproved, resolved.Status)
	suite.Equal("checker-1", resolved.ReviewedBy)
	suite.mockModRepo.AssertExpectations(suite.T())
	suite.mockCustomerRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestApproveRequest_AccountCloseWithFundsFails() {
	ctx := context.Background()
	checker := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	req := suite.pendingRequest(domain.GovernedAccount, "acc-1", domain.ChangeDelete, nil)
	account := &domain.Account{
		AccountID: "acc-1",
		Balance:   dec("10.00"),
		Status:    domain.AccountActive,
	}

	suite.expectResolveTx(ctx, false)
	suite.mockModRepo.On("FindRequestForUpdate", ctx, mock.Anything, "req-1").Return(req, nil).Once()
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()

	_, err := suite.service.ApproveRequest(ctx, checker, "req-1", "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockModRepo.AssertNotCalled(suite.T(), "ResolveRequestInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxm.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestApproveRequest_AccountCloseSucceedsWhenEmpty() {
	ctx := context.Background()
	checker := domain.Actor{UserID: "checker-1", Role: domain.RoleChecker}
	req := suite.pendingRequest(domain.GovernedAccount, "acc-1", domain.ChangeDelete, nil)
	account := &domain.Account{
		AccountID:     "acc-1",
		Balance:       decimal.Zero,
		BlockedAmount: decimal.Zero,
		Status:        domain.AccountActive,
	}

	suite.expectResolveTx(ctx, true)
	suite.mockModRepo.On("FindRequestForUpdate", ctx, mock.Anything, "req-1").Return(req, nil).Once()
	suite.mockAccountRepo.On("FindAccountForUpdate", ctx, mock.Anything, "acc-1").Return(account, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountDetailsInTx", ctx, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.Status == domain.AccountClosed
	})).Return(nil).Once()
	suite.mockModRepo.On("ResolveRequestInTx", ctx, mock.Anything, "req-1", domain.RequestApproved, "checker-1", "").Return(nil).Once()

	resolved, err := suite.service.ApproveRequest(ctx, checker, "req-1", "")

	suite.Require().NoError(err)
	suite.Equal(domain.RequestApproved, resolved.Status)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRejectRequest_LeavesEntityUntouched() {
	ctx := context.Background()
	admin := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	newName := "Renamed Customer"
	req := suite.pendingRequest(domain.GovernedCustomer, "cust-1", domain.ChangeUpdate, &domain.CustomerChanges{Name: &newName})

	suite.expectResolveTx(ctx, true)
	suite.mockModRepo.On("FindRequestForUpdate", ctx, mock.Anything, "req-1").Return(req, nil).Once()
	suite.mockModRepo.On("ResolveRequestInTx", ctx, mock.Anything, "req-1", domain.RequestRejected, "admin-1", "not approved").Return(nil).Once()

	resolved, err := suite.service.RejectRequest(ctx, admin, "req-1", "not approved")

	suite.Require().NoError(err)
	suite.Equal(domain.RequestRejected, resolved.Status)
	suite.Equal("admin-1", resolved.ReviewedBy)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "FindCustomerByID", mock.Anything, mock.Anything)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "UpdateCustomerInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockModRepo.AssertExpectations(suite.T())
}

func TestApprovalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}
