package services

import (
	"context"
	"errors"
	"testing"

	"notesaas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestCanCreate_Free(t *testing.T) {
	tenant := newFixture("acme").tenant
	for limit := 0; limit <= 5; limit++ {
		tenant.NoteLimit = limit
		for count := 0; count <= 7; count++ {
			assert.Equal(t, count < limit, CanCreate(tenant, count), "limit=%d count=%d", limit, count)
		}
	}
}

func TestCanCreate_ProIgnoresCount(t *testing.T) {
	tenant := newFixture("acme").tenant
	tenant.Subscription = models.SubscriptionPro
	tenant.NoteLimit = models.UnlimitedNotes
	for _, count := range []int{0, 3, 1000, 1 << 30} {
		assert.True(t, CanCreate(tenant, count))
	}
}

func TestCanCreate_UnknownSubscriptionDenied(t *testing.T) {
	tenant := newFixture("acme").tenant
	tenant.Subscription = models.Subscription("enterprise")
	assert.False(t, CanCreate(tenant, 0))
}

type QuotaServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	noteRepo *MockNoteRepository
	service  QuotaService
	acme     fixture
}

func (suite *QuotaServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.noteRepo = &MockNoteRepository{}
	suite.noteRepo.Test(suite.T())
	suite.service = NewQuotaService(suite.noteRepo)
	suite.acme = newFixture("acme")
}

func (suite *QuotaServiceTestSuite) TearDownTest() {
	suite.noteRepo.AssertExpectations(suite.T())
}

func TestQuotaServiceTestSuite(t *testing.T) {
	suite.Run(t, new(QuotaServiceTestSuite))
}

func (suite *QuotaServiceTestSuite) TestCheck_UnderLimit() {
	suite.noteRepo.On("CountActive", suite.ctx, suite.acme.tenant.ID).Return(2, nil).Once()

	decision, err := suite.service.Check(suite.ctx, suite.acme.tenant)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), decision.Allowed)
	assert.NoError(suite.T(), decision.Err())
}

func (suite *QuotaServiceTestSuite) TestCheck_AtLimit() {
	suite.noteRepo.On("CountActive", suite.ctx, suite.acme.tenant.ID).Return(3, nil).Once()

	decision, err := suite.service.Check(suite.ctx, suite.acme.tenant)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), decision.Allowed)

	var quotaErr *QuotaExceededError
	require.True(suite.T(), errors.As(decision.Err(), &quotaErr))
	assert.Equal(suite.T(), 3, quotaErr.CurrentCount)
	assert.Equal(suite.T(), 3, quotaErr.Limit)
	assert.Equal(suite.T(), models.SubscriptionFree, quotaErr.Subscription)
}

func (suite *QuotaServiceTestSuite) TestCheck_ProAlwaysAllowed() {
	tenant := suite.acme.tenant
	tenant.Subscription = models.SubscriptionPro
	tenant.NoteLimit = models.UnlimitedNotes
	suite.noteRepo.On("CountActive", suite.ctx, tenant.ID).Return(500, nil).Once()

	decision, err := suite.service.Check(suite.ctx, tenant)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), decision.Allowed)
	assert.Equal(suite.T(), models.UnlimitedNotes, decision.Limit)
}

func (suite *QuotaServiceTestSuite) TestCheck_CountFailure() {
	suite.noteRepo.On("CountActive", suite.ctx, suite.acme.tenant.ID).Return(0, errors.New("timeout")).Once()

	decision, err := suite.service.Check(suite.ctx, suite.acme.tenant)
	assert.ErrorIs(suite.T(), err, ErrInternal)
	assert.Nil(suite.T(), decision)
}
