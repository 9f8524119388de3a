package services

import (
	"context"
	"errors"
	"testing"

	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	userRepo *MockUserRepository
	service  UserService
	acme     fixture
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.userRepo = &MockUserRepository{}
	suite.userRepo.Test(suite.T())
	suite.service = NewUserService(suite.userRepo, nil, bcrypt.MinCost)
	suite.acme = newFixture("acme")
}

func (suite *UserServiceTestSuite) TearDownTest() {
	suite.userRepo.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (suite *UserServiceTestSuite) TestProvision_Success() {
	var stored *models.User
	suite.userRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.User")).Return(nil).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.User)
		assert.True(suite.T(), VerifyPassword("password", stored.PasswordHash))
	}).Once()

	user, err := suite.service.Provision(suite.ctx, &CreateUserRequest{
		TenantID: suite.acme.tenant.ID,
		Email:    " New@Acme.test",
		Password: "password",
		Role:     models.RoleMember,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "new@acme.test", user.Email)
	assert.Empty(suite.T(), user.PasswordHash)
	assert.True(suite.T(), user.IsActive)
}

func (suite *UserServiceTestSuite) TestProvision_Validation() {
	cases := []*CreateUserRequest{
		{TenantID: suite.acme.tenant.ID, Email: "not-an-email", Password: "password", Role: models.RoleMember},
		{TenantID: suite.acme.tenant.ID, Email: "a@acme.test", Password: "123", Role: models.RoleMember},
		{TenantID: suite.acme.tenant.ID, Email: "a@acme.test", Password: "password", Role: models.Role("owner")},
		{Email: "a@acme.test", Password: "password", Role: models.RoleAdmin},
	}
	for _, req := range cases {
		_, err := suite.service.Provision(suite.ctx, req)
		var vErr *ValidationError
		assert.True(suite.T(), errors.As(err, &vErr))
	}
}

func (suite *UserServiceTestSuite) TestProvision_DuplicateEmail() {
	suite.userRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.User")).Return(repositories.ErrDuplicate).Once()

	_, err := suite.service.Provision(suite.ctx, &CreateUserRequest{
		TenantID: suite.acme.tenant.ID,
		Email:    "admin@acme.test",
		Password: "password",
		Role:     models.RoleAdmin,
	})
	var vErr *ValidationError
	assert.True(suite.T(), errors.As(err, &vErr))
}

func (suite *UserServiceTestSuite) TestSetActive_CannotDeactivateSelf() {
	admin := suite.acme.admin
	_, err := suite.service.SetActive(suite.ctx, suite.acme.principal(admin), admin.ID, false)
	var vErr *ValidationError
	assert.True(suite.T(), errors.As(err, &vErr))
}

func (suite *UserServiceTestSuite) TestSetActive_Member() {
	member := suite.acme.member
	member.IsActive = false
	suite.userRepo.On("SetActive", suite.ctx, suite.acme.tenant.ID, member.ID, false).Return(&member, nil).Once()

	user, err := suite.service.SetActive(suite.ctx, suite.acme.principal(suite.acme.admin), member.ID, false)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), user.IsActive)
}

func (suite *UserServiceTestSuite) TestSetActive_UnknownUser() {
	id := uuid.New()
	suite.userRepo.On("SetActive", suite.ctx, suite.acme.tenant.ID, id, true).Return(nil, repositories.ErrNotFound).Once()

	_, err := suite.service.SetActive(suite.ctx, suite.acme.principal(suite.acme.admin), id, true)
	assert.ErrorIs(suite.T(), err, ErrUserNotFound)
}

func (suite *UserServiceTestSuite) TestSetActive_InvalidatesCachedPrincipals() {
	cache := &MockPrincipalCache{}
	cache.Test(suite.T())
	service := NewUserService(suite.userRepo, cache, bcrypt.MinCost)

	member := suite.acme.member
	member.IsActive = false
	suite.userRepo.On("SetActive", suite.ctx, suite.acme.tenant.ID, member.ID, false).Return(&member, nil).Once()
	cache.On("InvalidateTenantPrincipals", suite.ctx, suite.acme.tenant.ID).Return(nil).Once()

	_, err := service.SetActive(suite.ctx, suite.acme.principal(suite.acme.admin), member.ID, false)
	require.NoError(suite.T(), err)
	cache.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestSetActive_CacheFailureDoesNotFail() {
	cache := &MockPrincipalCache{}
	service := NewUserService(suite.userRepo, cache, bcrypt.MinCost)

	member := suite.acme.member
	member.IsActive = false
	suite.userRepo.On("SetActive", suite.ctx, suite.acme.tenant.ID, member.ID, false).Return(&member, nil).Once()
	cache.On("InvalidateTenantPrincipals", suite.ctx, suite.acme.tenant.ID).Return(errors.New("redis down")).Once()

	user, err := service.SetActive(suite.ctx, suite.acme.principal(suite.acme.admin), member.ID, false)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), user.IsActive)
}

func (suite *UserServiceTestSuite) TestSetActive_NotFoundSkipsInvalidation() {
	cache := &MockPrincipalCache{}
	cache.Test(suite.T())
	service := NewUserService(suite.userRepo, cache, bcrypt.MinCost)

	id := uuid.New()
	suite.userRepo.On("SetActive", suite.ctx, suite.acme.tenant.ID, id, false).Return(nil, repositories.ErrNotFound).Once()

	_, err := service.SetActive(suite.ctx, suite.acme.principal(suite.acme.admin), id, false)
	assert.ErrorIs(suite.T(), err, ErrUserNotFound)
	cache.AssertNotCalled(suite.T(), "InvalidateTenantPrincipals", mock.Anything, mock.Anything)
}
