package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"notesaas/internal/models"
	"notesaas/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) UpgradeToPro(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ListUsage(ctx context.Context, subscription models.Subscription) ([]models.TenantUsage, error) {
	args := m.Called(ctx, subscription)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TenantUsage), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByIDWithTenant(ctx context.Context, id uuid.UUID) (*models.UserWithTenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserWithTenant), args.Error(1)
}

func (m *MockUserRepository) FindByEmailWithTenant(ctx context.Context, email string) (*models.UserWithTenant, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserWithTenant), args.Error(1)
}

func (m *MockUserRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) (*models.User, error) {
	args := m.Called(ctx, tenantID, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Note, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteRepository) List(ctx context.Context, tenantID uuid.UUID, filter repositories.NoteFilter) ([]*models.Note, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Note), args.Error(1)
}

func (m *MockNoteRepository) Count(ctx context.Context, tenantID uuid.UUID, archived bool) (int, error) {
	args := m.Called(ctx, tenantID, archived)
	return args.Int(0), args.Error(1)
}

func (m *MockNoteRepository) CountActive(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, note *models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) SetArchived(ctx context.Context, tenantID, id uuid.UUID, archived bool) (*models.Note, error) {
	args := m.Called(ctx, tenantID, id, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockPrincipalCache struct {
	mock.Mock
}

func (m *MockPrincipalCache) TenantGeneration(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPrincipalCache) GetPrincipal(ctx context.Context, tenantID uuid.UUID, generation int64, tokenKey string) (*models.Principal, error) {
	args := m.Called(ctx, tenantID, generation, tokenKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *MockPrincipalCache) SetPrincipal(ctx context.Context, tenantID uuid.UUID, generation int64, tokenKey string, principal *models.Principal, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, generation, tokenKey, principal, ttl)
	return args.Error(0)
}

func (m *MockPrincipalCache) InvalidateTenantPrincipals(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

// memPrincipalCache keeps principals in a map keyed like the redis cache.
type memPrincipalCache struct {
	mu          sync.Mutex
	generations map[uuid.UUID]int64
	entries     map[string]models.Principal
}

func newMemPrincipalCache() *memPrincipalCache {
	return &memPrincipalCache{
		generations: map[uuid.UUID]int64{},
		entries:     map[string]models.Principal{},
	}
}

func memCacheKey(tenantID uuid.UUID, generation int64, tokenKey string) string {
	return fmt.Sprintf("%s:%d:%s", tenantID, generation, tokenKey)
}

func (c *memPrincipalCache) TenantGeneration(_ context.Context, tenantID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[tenantID], nil
}

func (c *memPrincipalCache) GetPrincipal(_ context.Context, tenantID uuid.UUID, generation int64, tokenKey string) (*models.Principal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[memCacheKey(tenantID, generation, tokenKey)]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *memPrincipalCache) SetPrincipal(_ context.Context, tenantID uuid.UUID, generation int64, tokenKey string, principal *models.Principal, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[memCacheKey(tenantID, generation, tokenKey)] = *principal
	return nil
}

func (c *memPrincipalCache) InvalidateTenantPrincipals(_ context.Context, tenantID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[tenantID]++
	return nil
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) UploadObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) DeleteObject(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

// fixture builds a tenant with one admin and one member.
type fixture struct {
	tenant models.Tenant
	admin  models.User
	member models.User
}

func newFixture(slug string) fixture {
	tenant := models.Tenant{
		ID:           uuid.New(),
		Name:         slug + " corp",
		Slug:         slug,
		Subscription: models.SubscriptionFree,
		NoteLimit:    models.DefaultFreeNoteLimit,
	}
	return fixture{
		tenant: tenant,
		admin:  models.User{ID: uuid.New(), TenantID: tenant.ID, Email: "admin@" + slug + ".test", Role: models.RoleAdmin, IsActive: true},
		member: models.User{ID: uuid.New(), TenantID: tenant.ID, Email: "user@" + slug + ".test", Role: models.RoleMember, IsActive: true},
	}
}

func (f fixture) principal(u models.User) *models.Principal {
	return &models.Principal{User: u, Tenant: f.tenant}
}
