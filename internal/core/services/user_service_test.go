package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/sajhapunji/broker-backoffice/internal/apperrors"
	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
	portssvc "github.com/sajhapunji/broker-backoffice/internal/core/ports/services"
	"github.com/sajhapunji/broker-backoffice/internal/core/services"
	"github.com/sajhapunji/broker-backoffice/internal/dto"
	"github.com/sajhapunji/broker-backoffice/internal/utils"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)
}

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	ctx := context.Background()
	admin := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	req := dto.CreateUserRequest{
		Username: "jdoe",
		Password: "password123",
		Name:     "J. Doe",
		Role:     "MAKER",
	}

	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(user domain.User) bool {
		return user.Username == "jdoe" && user.Role == domain.RoleMaker && user.PasswordHash != "password123"
	})).Return(nil).Once()

	created, err := suite.service.CreateUser(ctx, admin, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.UserID)
	suite.Equal(domain.RoleMaker, created.Role)
	suite.NotEqual("password123", created.PasswordHash)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_NonAdminForbidden() {
	ctx := context.Background()
	maker := domain.Actor{UserID: "maker-1", Role: domain.RoleMaker}

	_, err := suite.service.CreateUser(ctx, maker, dto.CreateUserRequest{
		Username: "jdoe", Password: "password123", Name: "J. Doe", Role: "MAKER",
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateUser_UnknownRole() {
	ctx := context.Background()
	admin := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}

	_, err := suite.service.CreateUser(ctx, admin, dto.CreateUserRequest{
		Username: "jdoe", Password: "password123", Name: "J. Doe", Role: "SUPERVISOR",
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateUsername() {
	ctx := context.Background()
	admin := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}

	suite.mockUserRepo.On("SaveUser", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateUser(ctx, admin, dto.CreateUserRequest{
		Username: "jdoe", Password: "password123", Name: "J. Doe", Role: "CHECKER",
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("password123")
	suite.Require().NoError(err)
	user := &domain.User{UserID: "u-1", Username: "jdoe", PasswordHash: hash, Role: domain.RoleMaker}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "jdoe").Return(user, nil).Once()

	authed, err := suite.service.AuthenticateUser(ctx, "jdoe", "password123")

	suite.Require().NoError(err)
	suite.Equal("u-1", authed.UserID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("password123")
	suite.Require().NoError(err)
	user := &domain.User{UserID: "u-1", Username: "jdoe", PasswordHash: hash, Role: domain.RoleMaker}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "jdoe").Return(user, nil).Once()

	_, err = suite.service.AuthenticateUser(ctx, "jdoe", "hunter2")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_UnknownUsername() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByUsername", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.AuthenticateUser(ctx, "ghost", "password123")

	// Unknown usernames read exactly like wrong passwords.
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_DeletedUser() {
	ctx := context.Background()
	hash, err := utils.HashPassword("password123")
	suite.Require().NoError(err)
	deletedAt := time.Now()
	user := &domain.User{UserID: "u-1", Username: "jdoe", PasswordHash: hash, Role: domain.RoleMaker, DeletedAt: &deletedAt}

	suite.mockUserRepo.On("FindUserByUsername", ctx, "jdoe").Return(user, nil).Once()

	_, err = suite.service.AuthenticateUser(ctx, "jdoe", "password123")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
